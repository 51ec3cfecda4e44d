// Package titles resolves display titles for owners from their translations,
// walking languages in priority order under a fallback policy.
package titles

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-polyglot/internal/domain"
	"github.com/goliatone/go-polyglot/internal/languages"
	"github.com/goliatone/go-polyglot/internal/translations"
)

// FallbackPolicy decides when title resolution stops walking languages.
type FallbackPolicy string

const (
	// FallbackNever stops at the first language tried.
	FallbackNever FallbackPolicy = "never"
	// FallbackEither stops at the first language with a title or alt title.
	FallbackEither FallbackPolicy = "either"
	// FallbackBoth keeps walking until both title and alt title are found.
	FallbackBoth FallbackPolicy = "both"
)

// ParseFallbackPolicy maps user input onto a policy. Blank input means either.
func ParseFallbackPolicy(value string) (FallbackPolicy, error) {
	switch FallbackPolicy(strings.ToLower(strings.TrimSpace(value))) {
	case "", FallbackEither:
		return FallbackEither, nil
	case FallbackNever:
		return FallbackNever, nil
	case FallbackBoth:
		return FallbackBoth, nil
	default:
		return "", fmt.Errorf("titles: unknown fallback policy %q", value)
	}
}

// Value is one resolved string and the language that supplied it.
type Value struct {
	Text  string
	Lang  string
	Found bool
}

func (v Value) String() string {
	return v.Text
}

// Titles is the pair returned by ResolveTitles.
type Titles struct {
	Title    Value
	AltTitle Value
}

// Order returns the language walk order for an owner's translations.
func Order(list []*translations.Translation, locales []string, lang string) []string {
	return languages.Priority(translations.BestByLanguage(list), languages.Options{
		Preferred: lang,
		Locales:   locales,
	})
}

// ResolveTitles resolves title and alt_title. Missing values are replaced by def.
func ResolveTitles(list []*translations.Translation, locales []string, lang string, policy FallbackPolicy, def string) Titles {
	best := translations.BestByLanguage(list)
	out := Titles{}

	for _, code := range Order(list, locales, lang) {
		tr := best[code]
		switch policy {
		case FallbackNever:
			fill(&out.Title, tr, translations.FieldTitle, code)
			fill(&out.AltTitle, tr, translations.FieldAltTitle, code)
		case FallbackBoth:
			fill(&out.Title, tr, translations.FieldTitle, code)
			fill(&out.AltTitle, tr, translations.FieldAltTitle, code)
			if !out.Title.Found || !out.AltTitle.Found {
				continue
			}
		default:
			if !tr.Significant() {
				continue
			}
			fill(&out.Title, tr, translations.FieldTitle, code)
			fill(&out.AltTitle, tr, translations.FieldAltTitle, code)
		}
		break
	}

	if !out.Title.Found {
		out.Title.Text = def
	}
	if !out.AltTitle.Found {
		out.AltTitle.Text = def
	}
	return out
}

// ResolveSingle resolves one text field. Without fallback only the first
// language in priority order is consulted.
func ResolveSingle(list []*translations.Translation, locales []string, field translations.Field, lang string, allowFallback bool, def *string) *string {
	best := translations.BestByLanguage(list)
	for _, code := range Order(list, locales, lang) {
		if value := best[code].Field(field); !domain.IsBlank(value) {
			text := *value
			return &text
		}
		if !allowFallback {
			break
		}
	}
	return def
}

func fill(target *Value, tr *translations.Translation, field translations.Field, lang string) {
	if target.Found {
		return
	}
	value := tr.Field(field)
	if domain.IsBlank(value) {
		return
	}
	*target = Value{Text: *value, Lang: lang, Found: true}
}

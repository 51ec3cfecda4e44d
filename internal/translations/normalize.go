package translations

import (
	"strings"

	"github.com/goliatone/go-polyglot/internal/domain"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// NormalizeText trims and NFKC-folds a text field, returning nil for blank input.
func NormalizeText(value string) *string {
	folded := norm.NFKC.String(strings.TrimSpace(value))
	return domain.StringPtr(folded)
}

func normalizePtr(value *string) *string {
	if value == nil {
		return nil
	}
	return NormalizeText(*value)
}

// NormalizeLangcode reduces a BCP 47 tag to its lowercase two-letter base.
// The second return value is false when the input cannot be parsed.
func NormalizeLangcode(value string) (string, bool) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", false
	}
	tag, err := language.Parse(trimmed)
	if err != nil {
		return strings.ToLower(trimmed), false
	}
	base, _ := tag.Base()
	code := strings.ToLower(base.String())
	if len(code) != 2 {
		return code, false
	}
	return code, true
}

// NormalizeLocales normalizes and de-duplicates a configured locale list,
// dropping entries that cannot be parsed.
func NormalizeLocales(locales []string) []string {
	seen := make(map[string]struct{}, len(locales))
	out := make([]string, 0, len(locales))
	for _, locale := range locales {
		code, ok := NormalizeLangcode(locale)
		if !ok {
			continue
		}
		if _, dup := seen[code]; dup {
			continue
		}
		seen[code] = struct{}{}
		out = append(out, code)
	}
	return out
}

// normalizeInput turns a caller payload into an unsaved translation. It never
// fails; invalid values are reported by validation.
func normalizeInput(owner domain.OwnerRef, input Input) *Translation {
	code, _ := NormalizeLangcode(input.Langcode)
	return &Translation{
		OwnerKind:     owner.Kind,
		OwnerID:       owner.ID,
		Title:         NormalizeText(input.Title),
		AltTitle:      NormalizeText(input.AltTitle),
		Ruby:          NormalizeText(input.Ruby),
		Romaji:        NormalizeText(input.Romaji),
		AltRuby:       NormalizeText(input.AltRuby),
		AltRomaji:     NormalizeText(input.AltRomaji),
		Langcode:      code,
		IsOrig:        input.IsOrig,
		OrderingScore: input.OrderingScore,
		Note:          domain.StringPtr(input.Note),
	}
}

// normalizeRecord re-applies text normalization on an existing record before an update.
func normalizeRecord(tr *Translation) *Translation {
	out := tr.Clone()
	for _, f := range Fields {
		out.SetField(f, normalizePtr(tr.Field(f)))
	}
	if code, ok := NormalizeLangcode(tr.Langcode); ok {
		out.Langcode = code
	}
	if tr.Note != nil {
		out.Note = domain.StringPtr(*tr.Note)
	}
	return out
}

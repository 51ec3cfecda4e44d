// Package languages orders the languages of an owner's translations by
// caller preference, original language and the configured locale list.
package languages

import (
	"math"
	"slices"
	"sort"
	"strings"

	"github.com/goliatone/go-polyglot/internal/translations"
)

// Options tune Priority.
type Options struct {
	// Preferred is the caller-requested language, if any.
	Preferred string
	// PrioritizeOrig ranks the original language ahead of the preferred one.
	PrioritizeOrig bool
	// RemoveInvalid drops languages with no translation, and languages outside
	// Locales when Locales is not empty.
	RemoveInvalid bool
	// Locales is the static fallback order.
	Locales []string
}

type rank struct {
	lang   string
	keys   [2]int
	static float64
}

// Priority returns the candidate languages (the preferred language plus every
// key of best) in preference order. It is pure and deterministic.
func Priority(best map[string]*translations.Translation, opts Options) []string {
	preferred := normalize(opts.Preferred)
	candidates := candidatesOf(best, preferred)
	if len(candidates) == 0 {
		return []string{}
	}

	original := OriginalLanguage(best)
	locales := make([]string, 0, len(opts.Locales))
	for _, locale := range opts.Locales {
		locales = append(locales, normalize(locale))
	}

	ranks := make([]rank, 0, len(candidates))
	for _, lang := range candidates {
		if opts.RemoveInvalid {
			if _, ok := best[lang]; !ok {
				continue
			}
			if len(locales) > 0 && !slices.Contains(locales, lang) {
				continue
			}
		}
		caller, orig := 1, 1
		if preferred != "" && lang == preferred {
			caller = 0
		}
		if original != "" && lang == original {
			orig = 0
		}
		r := rank{lang: lang, keys: [2]int{caller, orig}, static: math.Inf(1)}
		if opts.PrioritizeOrig {
			r.keys = [2]int{orig, caller}
		}
		if idx := slices.Index(locales, lang); idx >= 0 {
			r.static = float64(idx)
		}
		ranks = append(ranks, r)
	}

	sort.SliceStable(ranks, func(i, j int) bool {
		a, b := ranks[i], ranks[j]
		if a.keys[0] != b.keys[0] {
			return a.keys[0] < b.keys[0]
		}
		if a.keys[1] != b.keys[1] {
			return a.keys[1] < b.keys[1]
		}
		return a.static < b.static
	})

	out := make([]string, 0, len(ranks))
	for _, r := range ranks {
		out = append(out, r.lang)
	}
	return out
}

// OriginalLanguage returns the language whose best translation is flagged
// original. When several are, the alphabetically first wins.
func OriginalLanguage(best map[string]*translations.Translation) string {
	langs := make([]string, 0, len(best))
	for lang, tr := range best {
		if tr.Original() {
			langs = append(langs, lang)
		}
	}
	if len(langs) == 0 {
		return ""
	}
	sort.Strings(langs)
	return normalize(langs[0])
}

// OriginalOf returns the language of the owner's current original translation.
func OriginalOf(list []*translations.Translation) string {
	if orig := translations.CurrentOriginal(list); orig != nil {
		return orig.Langcode
	}
	return ""
}

func candidatesOf(best map[string]*translations.Translation, preferred string) []string {
	keys := make([]string, 0, len(best))
	for lang := range best {
		keys = append(keys, normalize(lang))
	}
	sort.Strings(keys)

	out := make([]string, 0, len(keys)+1)
	seen := map[string]struct{}{}
	if preferred != "" {
		out = append(out, preferred)
		seen[preferred] = struct{}{}
	}
	for _, lang := range keys {
		if lang == "" {
			continue
		}
		if _, ok := seen[lang]; ok {
			continue
		}
		seen[lang] = struct{}{}
		out = append(out, lang)
	}
	return out
}

func normalize(lang string) string {
	return strings.ToLower(strings.TrimSpace(lang))
}

package translations

import (
	"sort"
	"strings"
)

// Less orders two translations of the same language: originals first, then
// ascending ordering score (nil last), then creation time and id.
func Less(a, b *Translation) bool {
	if a.Original() != b.Original() {
		return a.Original()
	}
	switch {
	case a.OrderingScore == nil && b.OrderingScore != nil:
		return false
	case a.OrderingScore != nil && b.OrderingScore == nil:
		return true
	case a.OrderingScore != nil && b.OrderingScore != nil && *a.OrderingScore != *b.OrderingScore:
		return *a.OrderingScore < *b.OrderingScore
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.ID.String() < b.ID.String()
}

// Sort orders a translation list by langcode and then by Less.
func Sort(list []*Translation) {
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].Langcode != list[j].Langcode {
			return list[i].Langcode < list[j].Langcode
		}
		return Less(list[i], list[j])
	})
}

// SortByLanguages orders a translation list for display: originals first,
// then by the position of their language in order, then by Less. Languages
// missing from order follow alphabetically.
func SortByLanguages(list []*Translation, order []string) {
	rank := make(map[string]int, len(order))
	for i, lang := range order {
		lang = strings.ToLower(strings.TrimSpace(lang))
		if _, ok := rank[lang]; !ok {
			rank[lang] = i
		}
	}
	position := func(lang string) int {
		if idx, ok := rank[lang]; ok {
			return idx
		}
		return len(order)
	}
	sort.SliceStable(list, func(i, j int) bool {
		a, b := list[i], list[j]
		if a.Original() != b.Original() {
			return a.Original()
		}
		if a.Langcode != b.Langcode {
			pa, pb := position(a.Langcode), position(b.Langcode)
			if pa != pb {
				return pa < pb
			}
			return a.Langcode < b.Langcode
		}
		return Less(a, b)
	})
}

// ByLanguage groups translations per langcode, each group sorted by Less.
func ByLanguage(list []*Translation) map[string][]*Translation {
	out := make(map[string][]*Translation)
	for _, tr := range list {
		if tr == nil {
			continue
		}
		out[tr.Langcode] = append(out[tr.Langcode], tr)
	}
	for _, group := range out {
		sort.SliceStable(group, func(i, j int) bool { return Less(group[i], group[j]) })
	}
	return out
}

// BestByLanguage returns the best-scored translation of every language.
func BestByLanguage(list []*Translation) map[string]*Translation {
	groups := ByLanguage(list)
	out := make(map[string]*Translation, len(groups))
	for lang, group := range groups {
		out[lang] = group[0]
	}
	return out
}

// CurrentOriginal returns the best-scored translation flagged original, or nil.
func CurrentOriginal(list []*Translation) *Translation {
	var best *Translation
	for _, tr := range list {
		if !tr.Original() {
			continue
		}
		if best == nil || Less(tr, best) {
			best = tr
		}
	}
	return best
}

// Originals returns every translation flagged original.
func Originals(list []*Translation) []*Translation {
	var out []*Translation
	for _, tr := range list {
		if tr.Original() {
			out = append(out, tr)
		}
	}
	return out
}

// Scores collects the non-nil ordering scores of one language, skipping the
// translations whose ids are listed in exclude.
func Scores(list []*Translation, langcode string, exclude ...*Translation) []float64 {
	skip := make(map[string]struct{}, len(exclude))
	for _, tr := range exclude {
		if tr != nil {
			skip[tr.ID.String()] = struct{}{}
		}
	}
	langcode = strings.ToLower(strings.TrimSpace(langcode))
	var out []float64
	for _, tr := range list {
		if tr == nil || tr.Langcode != langcode || tr.OrderingScore == nil {
			continue
		}
		if _, ok := skip[tr.ID.String()]; ok {
			continue
		}
		out = append(out, *tr.OrderingScore)
	}
	return out
}

package translations_test

import (
	"testing"

	"github.com/goliatone/go-polyglot/internal/domain"
	"github.com/goliatone/go-polyglot/internal/translations"
)

func scored(title, lang string, score float64, orig bool) *translations.Translation {
	return &translations.Translation{Title: &title, Langcode: lang, OrderingScore: &score, IsOrig: &orig}
}

func TestSortByLanguagesFollowsPriority(t *testing.T) {
	list := []*translations.Translation{
		scored("Imagine (Live)", "en", 2000, false),
		scored("Imagine", "en", 1000, false),
		scored("Imagina", "es", 1000, false),
		scored("Imaginez", "fr", 1000, false),
		scored("イマジン", "ja", 0, true),
		scored("이매진", "ko", 1000, false),
	}

	translations.SortByLanguages(list, []string{"fr", "en"})

	want := []string{"イマジン", "Imaginez", "Imagine", "Imagine (Live)", "Imagina", "이매진"}
	for i, title := range want {
		if got := domain.StringValue(list[i].Title); got != title {
			t.Fatalf("position %d: expected %q, got %q", i, title, got)
		}
	}
}

package translations_test

import (
	"reflect"
	"testing"

	"github.com/goliatone/go-polyglot/internal/translations"
)

func TestNormalizeLangcode(t *testing.T) {
	cases := map[string]struct {
		want string
		ok   bool
	}{
		"en":      {"en", true},
		"EN-us":   {"en", true},
		"zh-Hant": {"zh", true},
		" ja ":    {"ja", true},
		"":        {"", false},
		"english": {"english", false},
	}
	for input, tc := range cases {
		got, ok := translations.NormalizeLangcode(input)
		if got != tc.want || ok != tc.ok {
			t.Fatalf("NormalizeLangcode(%q) = %q, %v; want %q, %v", input, got, ok, tc.want, tc.ok)
		}
	}
}

func TestNormalizeTextFoldsWidthAndBlank(t *testing.T) {
	if got := translations.NormalizeText("   "); got != nil {
		t.Fatalf("expected nil for blank, got %q", *got)
	}
	got := translations.NormalizeText(" ＡＢＣ ")
	if got == nil || *got != "ABC" {
		t.Fatalf("expected NFKC folded text, got %v", got)
	}
}

func TestNormalizeLocalesDeduplicates(t *testing.T) {
	got := translations.NormalizeLocales([]string{"en", "EN-gb", "ja", "??"})
	if !reflect.DeepEqual(got, []string{"en", "ja"}) {
		t.Fatalf("unexpected locales %v", got)
	}
}

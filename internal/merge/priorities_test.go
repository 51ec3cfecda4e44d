package merge_test

import (
	"reflect"
	"testing"

	"github.com/goliatone/go-polyglot/internal/domain"
	"github.com/goliatone/go-polyglot/internal/merge"
)

func TestPrioritiesDefaultCoversEveryKey(t *testing.T) {
	p := merge.Priorities{merge.KeyDefault: domain.SideOther, merge.KeyNote: domain.SideSelf}
	if missing := p.Missing(domain.OwnerKindArtist); len(missing) != 0 {
		t.Fatalf("expected default to cover every key, got %v", missing)
	}
	if got := p.Side(merge.KeySex); got != domain.SideOther {
		t.Fatalf("expected default side, got %q", got)
	}
	if got := p.Side(merge.KeyNote); got != domain.SideSelf {
		t.Fatalf("expected explicit side, got %q", got)
	}
}

func TestPrioritiesMissingIsSorted(t *testing.T) {
	p := merge.Priorities{merge.KeyLangOrig: domain.SideSelf, merge.KeyLangTrans: domain.SideSelf, merge.KeyNote: domain.SideOther}
	want := []string{merge.KeyCreatedAt, merge.KeyParent}
	if got := p.Missing(domain.OwnerKindPlace); !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestParsePriorities(t *testing.T) {
	p, err := merge.ParsePriorities(map[string]string{" Default ": "self", "lang_orig": "1"})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if p[merge.KeyDefault] != domain.SideSelf || p[merge.KeyLangOrig] != domain.SideOther {
		t.Fatalf("unexpected priorities %v", p)
	}
	if _, err := merge.ParsePriorities(map[string]string{"note": "both"}); err == nil {
		t.Fatalf("expected invalid side to fail")
	}
}

func TestSupportedKinds(t *testing.T) {
	for _, kind := range []domain.OwnerKind{domain.OwnerKindArtist, domain.OwnerKindMusic, domain.OwnerKindPlace} {
		if !merge.Supported(kind) {
			t.Fatalf("expected %s to be mergeable", kind)
		}
	}
	if merge.Supported("video") {
		t.Fatalf("expected unknown kind to be rejected")
	}
}

package identity_test

import (
	"testing"

	"github.com/goliatone/go-polyglot/internal/domain"
	"github.com/goliatone/go-polyglot/internal/identity"
	"github.com/google/uuid"
)

func TestUUIDIsStableAndBlankIsNil(t *testing.T) {
	if identity.UUID("  ") != uuid.Nil {
		t.Fatal("expected nil uuid for blank key")
	}
	if identity.ActorUUID("CLI") != identity.ActorUUID(" cli ") {
		t.Fatal("expected actor ids to ignore case and spacing")
	}
	if identity.ActorUUID("cli") == identity.UUID("cli") {
		t.Fatal("expected prefixes to keep record types apart")
	}
}

func TestReviewFlagUUIDDependsOnOwner(t *testing.T) {
	a := domain.Ref(domain.OwnerKindArtist, uuid.MustParse("11111111-1111-1111-1111-111111111111"))
	b := domain.Ref(domain.OwnerKindArtist, uuid.MustParse("22222222-2222-2222-2222-222222222222"))

	if identity.ReviewFlagUUID(a, "needs-source") == identity.ReviewFlagUUID(b, "needs-source") {
		t.Fatal("expected different owners to yield different flag ids")
	}
	if identity.ReviewFlagUUID(a, "needs-source") != identity.ReviewFlagUUID(a, "needs-source") {
		t.Fatal("expected deterministic flag id")
	}
}

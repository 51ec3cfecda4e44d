package domain

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// OwnerKind names the concrete entity type a translation hangs off.
type OwnerKind string

const (
	OwnerKindArtist OwnerKind = "artist"
	OwnerKindMusic  OwnerKind = "music"
	OwnerKindPlace  OwnerKind = "place"
)

// NormalizeOwnerKind coerces arbitrary kind strings into a comparable representation.
func NormalizeOwnerKind(input string) OwnerKind {
	return OwnerKind(strings.ToLower(strings.TrimSpace(input)))
}

// OwnerRef is the tagged reference (kind + id) stored on every translation.
type OwnerRef struct {
	Kind OwnerKind
	ID   uuid.UUID
}

// Ref builds an OwnerRef.
func Ref(kind OwnerKind, id uuid.UUID) OwnerRef {
	return OwnerRef{Kind: kind, ID: id}
}

// IsZero reports whether the reference points nowhere.
func (r OwnerRef) IsZero() bool {
	return r.Kind == "" || r.ID == uuid.Nil
}

func (r OwnerRef) String() string {
	return fmt.Sprintf("%s:%s", r.Kind, r.ID)
}

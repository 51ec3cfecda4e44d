package records

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/goliatone/go-polyglot/internal/domain"
	"github.com/goliatone/go-polyglot/internal/translations"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type ownerHandler[T translations.Owner] struct {
	kind     domain.OwnerKind
	newOwner func() T
}

func (h ownerHandler[T]) Kind() domain.OwnerKind {
	return h.kind
}

func (h ownerHandler[T]) Exists(ctx context.Context, db bun.IDB, id uuid.UUID) (bool, error) {
	exists, err := db.NewSelect().Model(h.newOwner()).Where("id = ?", id).Exists(ctx)
	if err != nil {
		return false, fmt.Errorf("records: %s exists: %w", h.kind, err)
	}
	return exists, nil
}

func (h ownerHandler[T]) Load(ctx context.Context, db bun.IDB, id uuid.UUID) (translations.Owner, error) {
	owner := h.newOwner()
	err := db.NewSelect().Model(owner).Where("id = ?", id).Limit(1).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &translations.NotFoundError{Resource: string(h.kind), Key: id.String()}
	}
	if err != nil {
		return nil, fmt.Errorf("records: load %s %s: %w", h.kind, id, err)
	}
	return owner, nil
}

// ArtistHandler resolves artist owner references.
func ArtistHandler() translations.OwnerHandler {
	return ownerHandler[*Artist]{kind: domain.OwnerKindArtist, newOwner: func() *Artist { return &Artist{} }}
}

// MusicHandler resolves music owner references.
func MusicHandler() translations.OwnerHandler {
	return ownerHandler[*Music]{kind: domain.OwnerKindMusic, newOwner: func() *Music { return &Music{} }}
}

// PlaceHandler resolves place owner references.
func PlaceHandler() translations.OwnerHandler {
	return ownerHandler[*Place]{kind: domain.OwnerKindPlace, newOwner: func() *Place { return &Place{} }}
}

// Registry returns an owner registry holding every owner kind.
func Registry() *translations.Registry {
	return translations.NewRegistry(ArtistHandler(), MusicHandler(), PlaceHandler())
}

// NewOwner returns an empty model for kind.
func NewOwner(kind domain.OwnerKind) (translations.Owner, error) {
	switch domain.NormalizeOwnerKind(string(kind)) {
	case domain.OwnerKindArtist:
		return &Artist{}, nil
	case domain.OwnerKindMusic:
		return &Music{}, nil
	case domain.OwnerKindPlace:
		return &Place{}, nil
	default:
		return nil, fmt.Errorf("%w: %s", translations.ErrOwnerUnknown, kind)
	}
}

// Models lists every table model, in creation order.
func Models() []any {
	return []any{
		(*Place)(nil),
		(*Artist)(nil),
		(*Music)(nil),
		(*translations.Translation)(nil),
		(*Engage)(nil),
		(*MusicAssoc)(nil),
		(*Performance)(nil),
		(*ChannelOwner)(nil),
		(*Channel)(nil),
		(*ReviewFlag)(nil),
	}
}

package records

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-polyglot/internal/translations"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

const maxPlaceDepth = 32

type excludedPlacesKey struct{}

// WithExcludedPlaces makes sibling title checks ignore the listed places,
// such as a place being merged into another.
func WithExcludedPlaces(ctx context.Context, ids ...uuid.UUID) context.Context {
	if len(ids) == 0 {
		return ctx
	}
	return context.WithValue(ctx, excludedPlacesKey{}, append(excludedPlaces(ctx), ids...))
}

func excludedPlaces(ctx context.Context) []uuid.UUID {
	ids, _ := ctx.Value(excludedPlacesKey{}).([]uuid.UUID)
	return ids
}

// ValidateTranslation rejects a title already used, in the same language, by
// another place under the same parent.
func (p *Place) ValidateTranslation(ctx context.Context, db bun.IDB, tr *translations.Translation) error {
	if tr == nil || tr.Title == nil {
		return nil
	}
	siblings := db.NewSelect().Model((*Place)(nil)).Column("id").Where("id != ?", p.ID)
	for _, id := range excludedPlaces(ctx) {
		siblings = siblings.Where("id != ?", id)
	}
	if p.ParentID == nil {
		siblings = siblings.Where("parent_id IS NULL")
	} else {
		siblings = siblings.Where("parent_id = ?", *p.ParentID)
	}

	q := db.NewSelect().
		Model((*translations.Translation)(nil)).
		Where("owner_kind = ?", p.OwnerKind()).
		Where("owner_id IN (?)", siblings).
		Where("langcode = ?", tr.Langcode).
		Where("title = ?", *tr.Title)
	if tr.ID != uuid.Nil {
		q = q.Where("id != ?", tr.ID)
	}
	taken, err := q.Exists(ctx)
	if err != nil {
		return fmt.Errorf("records: place sibling titles: %w", err)
	}
	if taken {
		return validation.NewError(translations.CodeOwnerScope, "title already used by another place under the same parent")
	}
	return nil
}

// LoadPlace loads one place.
func LoadPlace(ctx context.Context, db bun.IDB, id uuid.UUID) (*Place, error) {
	place := &Place{}
	err := db.NewSelect().Model(place).Where("id = ?", id).Limit(1).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &translations.NotFoundError{Resource: "place", Key: id.String()}
	}
	if err != nil {
		return nil, fmt.Errorf("records: load place %s: %w", id, err)
	}
	return place, nil
}

// Ancestors returns the ids of every ancestor of place id, nearest first.
func Ancestors(ctx context.Context, db bun.IDB, id uuid.UUID) ([]uuid.UUID, error) {
	var out []uuid.UUID
	current := id
	for depth := 0; depth < maxPlaceDepth; depth++ {
		place, err := LoadPlace(ctx, db, current)
		if err != nil {
			return nil, err
		}
		if place.ParentID == nil {
			return out, nil
		}
		out = append(out, *place.ParentID)
		current = *place.ParentID
	}
	return out, nil
}

// MoreSpecific reports whether candidate is strictly more specific than base:
// base is missing, an unknown placeholder, or an ancestor of candidate.
func MoreSpecific(ctx context.Context, db bun.IDB, candidate, base *uuid.UUID) (bool, error) {
	if candidate == nil {
		return false, nil
	}
	if base == nil {
		return true, nil
	}
	if *candidate == *base {
		return false, nil
	}
	basePlace, err := LoadPlace(ctx, db, *base)
	if err != nil {
		return false, err
	}
	if basePlace.IsUnknown() {
		candidatePlace, err := LoadPlace(ctx, db, *candidate)
		if err != nil {
			return false, err
		}
		if !candidatePlace.IsUnknown() {
			return true, nil
		}
	}
	ancestors, err := Ancestors(ctx, db, *candidate)
	if err != nil {
		return false, err
	}
	for _, ancestor := range ancestors {
		if ancestor == *base {
			return true, nil
		}
	}
	return false, nil
}

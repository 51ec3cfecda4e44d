package merge

import (
	"context"
	"fmt"
	"sort"

	"github.com/goliatone/go-polyglot/internal/domain"
	"github.com/goliatone/go-polyglot/internal/ordering"
	"github.com/goliatone/go-polyglot/internal/translations"
	"github.com/uptrace/bun"
)

// side returns the owner reference playing s.
func (r *run) side(s domain.Side) domain.OwnerRef {
	if s == domain.SideOther {
		return r.other
	}
	return r.self
}

// mergeOriginal settles which translation ends up as the survivor's original.
func (r *run) mergeOriginal(ctx context.Context, db bun.IDB) error {
	store := r.store(db)
	entry := r.report.Entry(KeyLangOrig)

	selfList, err := store.ListByOwner(ctx, r.self)
	if err != nil {
		return err
	}
	otherList, err := store.ListByOwner(ctx, r.other)
	if err != nil {
		return err
	}

	winner := r.priorities.Side(KeyLangOrig)
	originals := map[domain.Side]*translations.Translation{
		domain.SideSelf:  translations.CurrentOriginal(selfList),
		domain.SideOther: translations.CurrentOriginal(otherList),
	}
	kept, dropped := originals[winner], originals[winner.Opposite()]

	survivor := kept
	if survivor == nil {
		survivor = dropped
		dropped = nil
	}

	modified := false
	if dropped != nil && dropped.Langcode == survivor.Langcode {
		modified = absorbOriginal(survivor, dropped)
		if err := r.destroyTranslation(ctx, db, entry, dropped); err != nil {
			return err
		}
		dropped = nil
	}

	// Every remaining original flag other than the survivor's is cleared on both sides.
	for _, tr := range append(translations.Originals(selfList), translations.Originals(otherList)...) {
		if survivor != nil && tr.ID == survivor.ID {
			continue
		}
		if r.wasDestroyed(tr) {
			continue
		}
		if err := r.setOriginal(ctx, db, tr, false); err != nil {
			return err
		}
	}

	if survivor == nil {
		return nil
	}

	placed, err := r.placeOriginal(ctx, db, entry, survivor, modified)
	if err != nil {
		return err
	}
	ref := translationRef(placed)
	entry.Original = &ref
	entry.Remained = append(entry.Remained, ref)
	entry.Value = placed.Langcode
	return nil
}

// absorbOriginal copies the losing original's alt title onto the survivor
// when the survivor lacks one. It reports whether survivor changed.
func absorbOriginal(survivor, loser *translations.Translation) bool {
	if domain.IsBlank(loser.AltTitle) || !domain.IsBlank(survivor.AltTitle) || domain.IsBlank(survivor.Title) {
		return false
	}
	survivor.AltTitle = loser.AltTitle
	for _, f := range translations.AltPhonetics {
		survivor.SetField(f, loser.Field(f))
	}
	survivor.Note = joinNotes(survivor.Note, loser.Note)
	if !loser.CreatedAt.IsZero() && loser.CreatedAt.Before(survivor.CreatedAt) {
		survivor.CreatedAt = loser.CreatedAt
	}
	return true
}

// placeOriginal binds survivor to self as its original on score 0, moving
// self's same-language translations out of the non-positive range first. A
// self translation left identical to the survivor is destroyed and the
// placement retried once.
func (r *run) placeOriginal(ctx context.Context, db bun.IDB, entry *Entry, survivor *translations.Translation, modified bool) (*translations.Translation, error) {
	onSelf := survivor.OwnerID == r.self.ID
	inPlace := onSelf && survivor.Original() && survivor.OrderingScore != nil && *survivor.OrderingScore == 0
	if inPlace && !modified {
		return survivor, nil
	}

	flag := true
	zero := 0.0
	survivor.IsOrig = &flag

	var placed *translations.Translation
	attempt := func() error {
		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			if !inPlace {
				if err := r.displaceFront(ctx, tx, survivor); err != nil {
					return err
				}
			}
			var err error
			if onSelf {
				survivor.OrderingScore = &zero
				placed, err = r.store(tx).Update(ctx, r.actor, survivor)
			} else {
				placed, err = r.store(tx).Reassign(ctx, r.actor, survivor, r.self, &zero)
			}
			return err
		})
	}

	err := attempt()
	if err != nil && translations.IsDuplicate(err) {
		twin, lookupErr := r.identicalOnSelf(ctx, db, survivor)
		if lookupErr != nil {
			return nil, lookupErr
		}
		if twin != nil {
			if err := r.destroyTranslation(ctx, db, entry, twin); err != nil {
				return nil, err
			}
			err = attempt()
		}
	}
	if err != nil {
		return nil, fmt.Errorf("place original %s: %w", survivor.ID, err)
	}
	return placed, nil
}

// displaceFront rescores non-positive siblings so score 0 stays free for the original.
func (r *run) displaceFront(ctx context.Context, db bun.IDB, survivor *translations.Translation) error {
	siblings, err := r.store(db).ListByOwner(ctx, r.self)
	if err != nil {
		return err
	}
	var same []*translations.Translation
	for _, tr := range siblings {
		if tr.Langcode == survivor.Langcode && tr.ID != survivor.ID {
			same = append(same, tr)
		}
	}
	alloc, err := ordering.Allocate(translations.Scores(same, survivor.Langcode), nil, ordering.PriorityHighest)
	if err != nil {
		return err
	}
	return r.rescoreDisplaced(ctx, db, same, alloc.Displaced, 0)
}

// rescoreDisplaced moves the siblings holding displaced scores right behind
// the score after, keeping their relative order.
func (r *run) rescoreDisplaced(ctx context.Context, db bun.IDB, siblings []*translations.Translation, displaced []float64, after float64) error {
	if len(displaced) == 0 {
		return nil
	}
	hit := make(map[float64]struct{}, len(displaced))
	for _, score := range displaced {
		hit[score] = struct{}{}
	}
	var moving []*translations.Translation
	kept := []float64{after}
	for _, tr := range siblings {
		if tr.OrderingScore == nil {
			continue
		}
		if _, ok := hit[*tr.OrderingScore]; ok {
			moving = append(moving, tr)
			continue
		}
		kept = append(kept, *tr.OrderingScore)
	}
	sort.SliceStable(moving, func(i, j int) bool { return translations.Less(moving[i], moving[j]) })

	store := r.store(db)
	prev := after
	for _, tr := range moving {
		alloc, err := ordering.Allocate(kept, &prev, ordering.PriorityLow)
		if err != nil {
			return err
		}
		score := alloc.Score
		tr.OrderingScore = &score
		if _, err := store.Update(ctx, r.actor, tr); err != nil {
			return fmt.Errorf("rescore %s: %w", tr.ID, err)
		}
		kept = append(kept, score)
		prev = score
	}
	return nil
}

func (r *run) identicalOnSelf(ctx context.Context, db bun.IDB, incoming *translations.Translation) (*translations.Translation, error) {
	list, err := r.store(db).ListByOwner(ctx, r.self)
	if err != nil {
		return nil, err
	}
	for _, tr := range list {
		if tr.ID != incoming.ID && tr.Identical(incoming) {
			return tr, nil
		}
	}
	return nil, nil
}

func (r *run) setOriginal(ctx context.Context, db bun.IDB, tr *translations.Translation, value bool) error {
	tr.IsOrig = &value
	tr.UpdatedBy = r.actor
	tr.UpdatedAt = r.engine.now()
	_, err := db.NewUpdate().
		Model(tr).
		Column("is_orig", "updated_by", "updated_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("clear original %s: %w", tr.ID, err)
	}
	return nil
}

func (r *run) wasDestroyed(tr *translations.Translation) bool {
	ref := translationRef(tr)
	for _, destroyed := range r.destroyed {
		if destroyed == ref {
			return true
		}
	}
	return false
}

package merge

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/goliatone/go-polyglot/internal/domain"
	"github.com/goliatone/go-polyglot/internal/ordering"
	"github.com/goliatone/go-polyglot/internal/translations"
	"github.com/uptrace/bun"
)

// mergeRest moves every translation still bound to other onto self.
func (r *run) mergeRest(ctx context.Context, db bun.IDB) error {
	store := r.store(db)
	entry := r.report.Entry(KeyLangTrans)
	winner := r.priorities.Side(KeyLangTrans)

	incoming, err := store.ListByOwner(ctx, r.other)
	if err != nil {
		return err
	}
	groups := translations.ByLanguage(incoming)
	langs := make([]string, 0, len(groups))
	for lang := range groups {
		langs = append(langs, lang)
	}
	sort.Strings(langs)

	for _, lang := range langs {
		group := groups[lang]
		// Promoted translations are placed in reverse so the group keeps its
		// relative order in front of self's own.
		if winner == domain.SideOther {
			for i, j := 0, len(group)-1; i < j; i, j = i+1, j-1 {
				group[i], group[j] = group[j], group[i]
			}
		}
		for _, tr := range group {
			if err := r.relocate(ctx, db, entry, tr, winner); err != nil {
				return err
			}
		}
	}

	remained, err := store.ListByOwner(ctx, r.self)
	if err != nil {
		return err
	}
	for _, tr := range remained {
		if !tr.Original() {
			entry.Remained = append(entry.Remained, translationRef(tr))
		}
	}
	return nil
}

// relocate reassigns one translation to self. Duplicate conflicts are
// resolved by priority; exhausted retries and other validation failures
// destroy the incoming translation and leave a warning.
func (r *run) relocate(ctx context.Context, db bun.IDB, entry *Entry, tr *translations.Translation, winner domain.Side) error {
	priority := ordering.PriorityLow
	if winner == domain.SideOther {
		priority = ordering.PriorityHigh
	}
	var hint *float64
	if tr.OrderingScore != nil && *tr.OrderingScore > 0 {
		value := *tr.OrderingScore
		hint = &value
	}
	flag := false
	tr.IsOrig = &flag

	for retries := 0; ; retries++ {
		err := db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			store := r.store(tx)
			siblings, err := store.ListByOwner(ctx, r.self)
			if err != nil {
				return err
			}
			var same []*translations.Translation
			for _, sibling := range siblings {
				if sibling.Langcode == tr.Langcode && !sibling.Original() {
					same = append(same, sibling)
				}
			}
			alloc, err := ordering.Allocate(translations.Scores(same, tr.Langcode), hint, priority)
			if err != nil {
				return err
			}
			if err := r.rescoreDisplaced(ctx, tx, same, alloc.Displaced, alloc.Score); err != nil {
				return err
			}
			score := alloc.Score
			_, err = store.Reassign(ctx, r.actor, tr, r.self, &score)
			return err
		})
		if err == nil {
			return nil
		}

		switch {
		case translations.IsDuplicate(err):
			twin, lookupErr := r.identicalOnSelf(ctx, db, tr)
			if lookupErr != nil {
				return lookupErr
			}
			if winner == domain.SideSelf || twin == nil || twin.Original() {
				return r.destroyTranslation(ctx, db, entry, tr)
			}
			if retries >= r.engine.maxRetries {
				return r.discard(ctx, db, entry, tr, fmt.Sprintf("duplicate after %d retries", retries))
			}
			if err := r.destroyTranslation(ctx, db, entry, twin); err != nil {
				return err
			}
		case errors.Is(err, translations.ErrValidation):
			return r.discard(ctx, db, entry, tr, err.Error())
		default:
			return fmt.Errorf("relocate %s: %w", tr.ID, err)
		}
	}
}

func (r *run) discard(ctx context.Context, db bun.IDB, entry *Entry, tr *translations.Translation, message string) error {
	ref := translationRef(tr)
	r.report.warn(KeyLangTrans, ref, message)
	r.logger.Warn("merge.translation.discarded", "translation_id", tr.ID, "reason", message)
	return r.destroyTranslation(ctx, db, entry, tr)
}

package merge

import (
	"context"
	"fmt"

	"github.com/goliatone/go-polyglot/internal/records"
	"github.com/uptrace/bun"
)

// commit persists the survivor, destroys the flagged records and finally
// the merged owner with whatever translations it still holds.
func (r *run) commit(ctx context.Context, db bun.IDB) error {
	if err := r.persistSurvivor(ctx, db); err != nil {
		return err
	}

	destroyed := append([]RecordRef(nil), r.destroyed...)
	for _, pending := range r.pending {
		if r.report.Remains(pending.ref) {
			r.logger.Warn("merge.commit.kept", "table", pending.ref.Table, "id", pending.ref.ID)
			continue
		}
		if _, err := db.NewDelete().Model(pending.model).WherePK().Exec(ctx); err != nil {
			return fmt.Errorf("destroy %s %s: %w", pending.ref.Table, pending.ref.ID, err)
		}
		destroyed = append(destroyed, pending.ref)
	}

	leftovers, err := r.store(db).ListByOwner(ctx, r.other)
	if err != nil {
		return err
	}
	if _, err := r.store(db).DestroyByOwner(ctx, r.other); err != nil {
		return err
	}
	for _, tr := range leftovers {
		destroyed = append(destroyed, translationRef(tr))
	}

	if _, err := db.NewDelete().Model(r.otherOwner).WherePK().Exec(ctx); err != nil {
		return fmt.Errorf("destroy %s: %w", r.other, err)
	}
	destroyed = append(destroyed, RecordRef{Table: ownerTable(r.other.Kind), ID: r.other.ID})
	r.report.Destroyed = destroyed
	return nil
}

func (r *run) persistSurvivor(ctx context.Context, db bun.IDB) error {
	now := r.engine.now()
	switch owner := r.selfOwner.(type) {
	case *records.Artist:
		owner.UpdatedBy, owner.UpdatedAt = r.actor, now
	case *records.Music:
		owner.UpdatedBy, owner.UpdatedAt = r.actor, now
	case *records.Place:
		owner.UpdatedBy, owner.UpdatedAt = r.actor, now
	}
	if _, err := db.NewUpdate().Model(r.selfOwner).WherePK().Exec(ctx); err != nil {
		return fmt.Errorf("update %s: %w", r.self, err)
	}
	return nil
}

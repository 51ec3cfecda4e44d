package merge

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/goliatone/go-polyglot/internal/records"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

func loadChannelOwner(ctx context.Context, db bun.IDB, artist uuid.UUID) (*records.ChannelOwner, error) {
	owner := &records.ChannelOwner{}
	err := db.NewSelect().Model(owner).Where("artist_id = ?", artist).Limit(1).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load channel owner of %s: %w", artist, err)
	}
	return owner, nil
}

// mergeChannelOwner keeps a single channel owner for the survivor and moves
// the channels of the dropped one onto it.
func (r *run) mergeChannelOwner(ctx context.Context, db bun.IDB) error {
	entry := r.report.Entry(KeyChannelOwner)
	selfOwner, err := loadChannelOwner(ctx, db, r.self.ID)
	if err != nil {
		return err
	}
	otherOwner, err := loadChannelOwner(ctx, db, r.other.ID)
	if err != nil {
		return err
	}
	now := r.engine.now()

	var keep, drop *records.ChannelOwner
	switch {
	case otherOwner == nil && selfOwner == nil:
		return nil
	case otherOwner == nil:
		keep = selfOwner
	case selfOwner == nil:
		keep = otherOwner
	default:
		keep, drop = ordered(r.priorities.Side(KeyChannelOwner), selfOwner, otherOwner)
	}

	if drop != nil {
		if err := r.moveChannels(ctx, db, keep, drop); err != nil {
			return err
		}
		keep.Themselves = keep.Themselves || drop.Themselves
		keep.Note = joinNotes(keep.Note, drop.Note)
		drop.ArtistID = nil
		drop.UpdatedAt = now
		if _, err := db.NewUpdate().Model(drop).Column("artist_id", "updated_at").WherePK().Exec(ctx); err != nil {
			return fmt.Errorf("detach channel owner %s: %w", drop.ID, err)
		}
		r.flag(entry, RecordRef{Table: "channel_owners", ID: drop.ID}, drop)
	}

	selfID := r.self.ID
	keep.ArtistID = &selfID
	keep.UpdatedAt = now
	if _, err := db.NewUpdate().Model(keep).WherePK().Exec(ctx); err != nil {
		return fmt.Errorf("update channel owner %s: %w", keep.ID, err)
	}
	entry.Remained = append(entry.Remained, RecordRef{Table: "channel_owners", ID: keep.ID})
	return nil
}

// moveChannels repoints drop's channels to keep; channels keep already has
// for the same platform and handle are flagged instead.
func (r *run) moveChannels(ctx context.Context, db bun.IDB, keep, drop *records.ChannelOwner) error {
	entry := r.report.Entry(EntryChannels)
	var kept, moving []*records.Channel
	if err := db.NewSelect().Model(&kept).Where("channel_owner_id = ?", keep.ID).Scan(ctx); err != nil {
		return fmt.Errorf("load channels of %s: %w", keep.ID, err)
	}
	if err := db.NewSelect().Model(&moving).Where("channel_owner_id = ?", drop.ID).Order("created_at ASC").Scan(ctx); err != nil {
		return fmt.Errorf("load channels of %s: %w", drop.ID, err)
	}

	known := map[string]bool{}
	for _, ch := range kept {
		known[naturalKey(ch.Platform, ch.Handle)] = true
		entry.Remained = append(entry.Remained, RecordRef{Table: "channels", ID: ch.ID})
	}
	for _, ch := range moving {
		key := naturalKey(ch.Platform, ch.Handle)
		if known[key] {
			r.flag(entry, RecordRef{Table: "channels", ID: ch.ID}, ch)
			continue
		}
		ch.ChannelOwnerID = keep.ID
		ch.UpdatedAt = r.engine.now()
		if _, err := db.NewUpdate().Model(ch).Column("channel_owner_id", "updated_at").WherePK().Exec(ctx); err != nil {
			return fmt.Errorf("repoint channel %s: %w", ch.ID, err)
		}
		known[key] = true
		entry.Remained = append(entry.Remained, RecordRef{Table: "channels", ID: ch.ID})
	}
	return nil
}

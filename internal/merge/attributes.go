package merge

import (
	"context"
	"fmt"
	"time"

	"github.com/goliatone/go-polyglot/internal/domain"
	"github.com/goliatone/go-polyglot/internal/records"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Attribute stages only change the loaded self model; commit persists it.

func (r *run) mergeArtistAttributes(ctx context.Context, db bun.IDB) error {
	self, ok := r.selfOwner.(*records.Artist)
	other, ok2 := r.otherOwner.(*records.Artist)
	if !ok || !ok2 {
		return fmt.Errorf("%w: expected artists", ErrKindMismatch)
	}

	win, lose := ordered(r.priorities.Side(KeySex), self.Sex, other.Sex)
	if win == records.SexUnknown {
		win = lose
	}
	self.Sex = win
	r.report.Entry(KeySex).Value = self.Sex

	side := r.priorities.Side(KeyBirthday)
	winYear, loseYear := ordered(side, self.BirthYear, other.BirthYear)
	winMonth, loseMonth := ordered(side, self.BirthMonth, other.BirthMonth)
	winDay, loseDay := ordered(side, self.BirthDay, other.BirthDay)
	self.BirthYear = pick(winYear, loseYear)
	self.BirthMonth = pick(winMonth, loseMonth)
	self.BirthDay = pick(winDay, loseDay)
	r.report.Entry(KeyBirthday).Value = [3]*int{self.BirthYear, self.BirthMonth, self.BirthDay}

	place, err := r.choosePlace(ctx, db, self.PlaceID, other.PlaceID)
	if err != nil {
		return err
	}
	self.PlaceID = place
	r.report.Entry(KeyPlace).Value = place

	self.Note = joinNotes(ordered(r.priorities.Side(KeyNote), self.Note, other.Note))
	r.report.Entry(KeyNote).Value = self.Note

	self.CreatedAt = chooseCreatedAt(r.priorities.Side(KeyCreatedAt), self.CreatedAt, other.CreatedAt)
	r.report.Entry(KeyCreatedAt).Value = self.CreatedAt
	return nil
}

func (r *run) mergeMusicAttributes(ctx context.Context, db bun.IDB) error {
	self, ok := r.selfOwner.(*records.Music)
	other, ok2 := r.otherOwner.(*records.Music)
	if !ok || !ok2 {
		return fmt.Errorf("%w: expected musics", ErrKindMismatch)
	}

	winYear, loseYear := ordered(r.priorities.Side(KeyYear), self.Year, other.Year)
	self.Year = pick(winYear, loseYear)
	r.report.Entry(KeyYear).Value = self.Year

	place, err := r.choosePlace(ctx, db, self.PlaceID, other.PlaceID)
	if err != nil {
		return err
	}
	self.PlaceID = place
	r.report.Entry(KeyPlace).Value = place

	self.Note = joinNotes(ordered(r.priorities.Side(KeyNote), self.Note, other.Note))
	r.report.Entry(KeyNote).Value = self.Note

	self.CreatedAt = chooseCreatedAt(r.priorities.Side(KeyCreatedAt), self.CreatedAt, other.CreatedAt)
	r.report.Entry(KeyCreatedAt).Value = self.CreatedAt
	return nil
}

func (r *run) mergePlaceAttributes(ctx context.Context, db bun.IDB) error {
	self, ok := r.selfOwner.(*records.Place)
	other, ok2 := r.otherOwner.(*records.Place)
	if !ok || !ok2 {
		return fmt.Errorf("%w: expected places", ErrKindMismatch)
	}

	win, lose := ordered(r.priorities.Side(KeyParent), self.ParentID, other.ParentID)
	var parent *uuid.UUID
	for _, candidate := range []*uuid.UUID{win, lose} {
		if candidate == nil {
			continue
		}
		valid, err := r.validParent(ctx, db, *candidate)
		if err != nil {
			return err
		}
		if valid {
			parent = candidate
			break
		}
	}
	self.ParentID = parent
	r.report.Entry(KeyParent).Value = parent

	self.Note = joinNotes(ordered(r.priorities.Side(KeyNote), self.Note, other.Note))
	r.report.Entry(KeyNote).Value = self.Note

	self.CreatedAt = chooseCreatedAt(r.priorities.Side(KeyCreatedAt), self.CreatedAt, other.CreatedAt)
	r.report.Entry(KeyCreatedAt).Value = self.CreatedAt
	return nil
}

// validParent rejects parents that would make the survivor its own ancestor
// or that point at the place being removed.
func (r *run) validParent(ctx context.Context, db bun.IDB, candidate uuid.UUID) (bool, error) {
	if candidate == r.self.ID || candidate == r.other.ID {
		return false, nil
	}
	ancestors, err := records.Ancestors(ctx, db, candidate)
	if err != nil {
		return false, err
	}
	for _, ancestor := range ancestors {
		if ancestor == r.self.ID || ancestor == r.other.ID {
			return false, nil
		}
	}
	return true, nil
}

// choosePlace keeps the winner's place unless it is missing or the loser's
// place is more specific.
func (r *run) choosePlace(ctx context.Context, db bun.IDB, self, other *uuid.UUID) (*uuid.UUID, error) {
	win, lose := ordered(r.priorities.Side(KeyPlace), self, other)
	if win == nil {
		return lose, nil
	}
	specific, err := records.MoreSpecific(ctx, db, lose, win)
	if err != nil {
		return nil, err
	}
	if specific {
		return lose, nil
	}
	return win, nil
}

func chooseCreatedAt(side domain.Side, self, other time.Time) time.Time {
	win, lose := ordered(side, self, other)
	if win.IsZero() {
		return lose
	}
	return win
}

// mergePlaceReferences repoints every record referencing other to self.
func (r *run) mergePlaceReferences(ctx context.Context, db bun.IDB) error {
	entry := r.report.Entry(EntryReferences)
	refs := []struct {
		model  any
		table  string
		column string
	}{
		{(*records.Artist)(nil), "artists", "place_id"},
		{(*records.Music)(nil), "musics", "place_id"},
		{(*records.Place)(nil), "places", "parent_id"},
	}
	for _, ref := range refs {
		var ids []string
		err := db.NewSelect().
			Model(ref.model).
			Column("id").
			Where("? = ?", bun.Ident(ref.column), r.other.ID).
			Scan(ctx, &ids)
		if err != nil {
			return fmt.Errorf("scan %s references: %w", ref.table, err)
		}
		if len(ids) == 0 {
			continue
		}
		_, err = db.NewUpdate().
			Model(ref.model).
			Set("? = ?", bun.Ident(ref.column), r.self.ID).
			Where("? = ?", bun.Ident(ref.column), r.other.ID).
			Where("id != ?", r.self.ID).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("repoint %s: %w", ref.table, err)
		}
		for _, raw := range ids {
			id, err := uuid.Parse(raw)
			if err != nil {
				return fmt.Errorf("%s id %q: %w", ref.table, raw, err)
			}
			if id == r.self.ID {
				continue
			}
			entry.Remained = append(entry.Remained, RecordRef{Table: ref.table, ID: id})
		}
	}
	return nil
}

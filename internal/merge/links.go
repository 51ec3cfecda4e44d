package merge

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-polyglot/internal/domain"
	"github.com/goliatone/go-polyglot/internal/records"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// linkSpec describes how one class of dependent record is merged.
type linkSpec[T any] struct {
	key     string
	table   string
	column  string
	scope   func(*bun.SelectQuery) *bun.SelectQuery
	id      func(*T) uuid.UUID
	natural func(*T) string
	// combine folds other into self; win tells which side takes conflicts.
	combine func(self, other *T, win domain.Side)
	repoint func(*T, uuid.UUID)
	touch   func(*T, time.Time)
	// prune returns the merged rows that became redundant.
	prune func([]*T) []*T
}

func loadLinks[T any](ctx context.Context, db bun.IDB, spec linkSpec[T], owner uuid.UUID) ([]*T, error) {
	var rows []*T
	q := db.NewSelect().
		Model(&rows).
		Where("? = ?", bun.Ident(spec.column), owner).
		OrderExpr("created_at ASC").
		OrderExpr("id ASC")
	if spec.scope != nil {
		q = spec.scope(q)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("load %s: %w", spec.table, err)
	}
	return rows, nil
}

// mergeLinks unifies rows sharing a natural key and repoints the rest of
// other's rows to self.
func mergeLinks[T any](ctx context.Context, db bun.IDB, r *run, spec linkSpec[T]) error {
	entry := r.report.Entry(spec.key)
	win := r.priorities.Side(spec.key)

	selfRows, err := loadLinks(ctx, db, spec, r.self.ID)
	if err != nil {
		return err
	}
	otherRows, err := loadLinks(ctx, db, spec, r.other.ID)
	if err != nil {
		return err
	}

	index := make(map[string]*T, len(selfRows))
	merged := make([]*T, 0, len(selfRows)+len(otherRows))
	for _, row := range selfRows {
		merged = append(merged, row)
		if _, ok := index[spec.natural(row)]; !ok {
			index[spec.natural(row)] = row
		}
	}

	now := r.engine.now()
	for _, row := range otherRows {
		key := spec.natural(row)
		if match, ok := index[key]; ok {
			spec.combine(match, row, win)
			spec.touch(match, now)
			if _, err := db.NewUpdate().Model(match).WherePK().Exec(ctx); err != nil {
				return fmt.Errorf("update %s %s: %w", spec.table, spec.id(match), err)
			}
			r.flag(entry, RecordRef{Table: spec.table, ID: spec.id(row)}, row)
			continue
		}
		spec.repoint(row, r.self.ID)
		spec.touch(row, now)
		if _, err := db.NewUpdate().Model(row).WherePK().Exec(ctx); err != nil {
			return fmt.Errorf("repoint %s %s: %w", spec.table, spec.id(row), err)
		}
		index[key] = row
		merged = append(merged, row)
	}

	pruned := map[uuid.UUID]struct{}{}
	if spec.prune != nil {
		for _, row := range spec.prune(merged) {
			pruned[spec.id(row)] = struct{}{}
			r.flag(entry, RecordRef{Table: spec.table, ID: spec.id(row)}, row)
		}
	}
	for _, row := range merged {
		if _, ok := pruned[spec.id(row)]; ok {
			continue
		}
		entry.Remained = append(entry.Remained, RecordRef{Table: spec.table, ID: spec.id(row)})
	}
	return nil
}

func naturalKey(parts ...string) string {
	return strings.Join(parts, "|")
}

func (r *run) mergeEngages(ctx context.Context, db bun.IDB) error {
	spec := linkSpec[records.Engage]{
		key:   KeyEngages,
		table: "engages",
		id:    func(e *records.Engage) uuid.UUID { return e.ID },
		combine: func(self, other *records.Engage, win domain.Side) {
			a, b := ordered(win, self, other)
			self.Year = pick(a.Year, b.Year)
			self.Contribution = pick(a.Contribution, b.Contribution)
			self.Note = joinNotes(a.Note, b.Note)
		},
		touch: func(e *records.Engage, at time.Time) { e.UpdatedAt = at },
		prune: pruneUnknownEngages,
	}
	if r.self.Kind == domain.OwnerKindArtist {
		spec.column = "artist_id"
		spec.natural = func(e *records.Engage) string { return naturalKey(e.MusicID.String(), e.EngageHow) }
		spec.repoint = func(e *records.Engage, id uuid.UUID) { e.ArtistID = id }
	} else {
		spec.column = "music_id"
		spec.natural = func(e *records.Engage) string { return naturalKey(e.ArtistID.String(), e.EngageHow) }
		spec.repoint = func(e *records.Engage, id uuid.UUID) { e.MusicID = id }
	}
	return mergeLinks(ctx, db, r, spec)
}

// pruneUnknownEngages drops placeholder roles once a specific role exists
// for the same artist and music.
func pruneUnknownEngages(rows []*records.Engage) []*records.Engage {
	specific := map[string]bool{}
	for _, e := range rows {
		if e.EngageHow != records.EngageUnknown {
			specific[naturalKey(e.ArtistID.String(), e.MusicID.String())] = true
		}
	}
	var out []*records.Engage
	for _, e := range rows {
		if e.EngageHow == records.EngageUnknown && specific[naturalKey(e.ArtistID.String(), e.MusicID.String())] {
			out = append(out, e)
		}
	}
	return out
}

func (r *run) mergePerformances(ctx context.Context, db bun.IDB) error {
	spec := linkSpec[records.Performance]{
		key:   KeyPerformances,
		table: "performances",
		id:    func(p *records.Performance) uuid.UUID { return p.ID },
		combine: func(self, other *records.Performance, win domain.Side) {
			a, b := ordered(win, self, other)
			self.CoverRatio = pick(a.CoverRatio, b.CoverRatio)
			self.Note = joinNotes(a.Note, b.Note)
		},
		touch: func(p *records.Performance, at time.Time) { p.UpdatedAt = at },
	}
	if r.self.Kind == domain.OwnerKindArtist {
		spec.column = "artist_id"
		spec.natural = func(p *records.Performance) string {
			return naturalKey(p.EventItemID.String(), p.MusicID.String(), p.Instrument, p.PlayRole)
		}
		spec.repoint = func(p *records.Performance, id uuid.UUID) { p.ArtistID = id }
	} else {
		spec.column = "music_id"
		spec.natural = func(p *records.Performance) string {
			return naturalKey(p.EventItemID.String(), p.ArtistID.String(), p.Instrument, p.PlayRole)
		}
		spec.repoint = func(p *records.Performance, id uuid.UUID) { p.MusicID = id }
	}
	return mergeLinks(ctx, db, r, spec)
}

func (r *run) mergeMusicAssocs(ctx context.Context, db bun.IDB) error {
	return mergeLinks(ctx, db, r, linkSpec[records.MusicAssoc]{
		key:     KeyMusicAssocs,
		table:   "music_assocs",
		column:  "music_id",
		id:      func(a *records.MusicAssoc) uuid.UUID { return a.ID },
		natural: func(a *records.MusicAssoc) string { return a.VideoID.String() },
		combine: func(self, other *records.MusicAssoc, win domain.Side) {
			a, b := ordered(win, self, other)
			self.Timing = pick(a.Timing, b.Timing)
			self.Completeness = pick(a.Completeness, b.Completeness)
			self.Note = joinNotes(a.Note, b.Note)
		},
		repoint: func(a *records.MusicAssoc, id uuid.UUID) { a.MusicID = id },
		touch:   func(a *records.MusicAssoc, at time.Time) { a.UpdatedAt = at },
	})
}

func (r *run) mergeReviewFlags(ctx context.Context, db bun.IDB) error {
	kind := r.self.Kind
	return mergeLinks(ctx, db, r, linkSpec[records.ReviewFlag]{
		key:    KeyReviewFlags,
		table:  "review_flags",
		column: "owner_id",
		scope: func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("owner_kind = ?", kind)
		},
		id:      func(f *records.ReviewFlag) uuid.UUID { return f.ID },
		natural: func(f *records.ReviewFlag) string { return records.ReasonKey(f.Reason) },
		combine: func(self, other *records.ReviewFlag, win domain.Side) {
			a, b := ordered(win, self, other)
			self.Resolved = self.Resolved && other.Resolved
			self.Note = joinNotes(a.Note, b.Note)
		},
		repoint: func(f *records.ReviewFlag, id uuid.UUID) { f.OwnerID = id },
		touch:   func(f *records.ReviewFlag, at time.Time) { f.UpdatedAt = at },
	})
}

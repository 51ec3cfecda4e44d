// Package merge folds one owner (other) into another (self) together with
// its translations and dependent records, inside a single transaction.
package merge

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/goliatone/go-polyglot/internal/domain"
	"github.com/goliatone/go-polyglot/internal/logging"
	"github.com/goliatone/go-polyglot/internal/records"
	"github.com/goliatone/go-polyglot/internal/translations"
	"github.com/goliatone/go-polyglot/pkg/interfaces"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// DefaultMaxRetries bounds destroy-and-retry rounds for one relocated translation.
const DefaultMaxRetries = 3

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(e *Engine) {
		e.logger = logging.EnsureLogger(logger)
	}
}

// WithMaxRetries overrides DefaultMaxRetries. Negative values are ignored.
func WithMaxRetries(n int) Option {
	return func(e *Engine) {
		if n >= 0 {
			e.maxRetries = n
		}
	}
}

// WithClock overrides the time source.
func WithClock(clock func() time.Time) Option {
	return func(e *Engine) {
		if clock != nil {
			e.now = clock
		}
	}
}

// Engine runs merges.
type Engine struct {
	db         bun.IDB
	store      *translations.Store
	logger     interfaces.Logger
	maxRetries int
	now        func() time.Time
}

// NewEngine builds an engine. store is rebound to the merge transaction.
func NewEngine(db bun.IDB, store *translations.Store, opts ...Option) *Engine {
	e := &Engine{
		db:         db,
		store:      store,
		logger:     logging.NoOp(),
		maxRetries: DefaultMaxRetries,
		now:        func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Merge folds other into self. The survivor is always self; priorities
// decide whose values win. When commit is false every change is rolled back
// and the report is a preview.
func (e *Engine) Merge(ctx context.Context, actor uuid.UUID, self, other domain.OwnerRef, priorities Priorities, commit bool) (*Report, error) {
	if self.IsZero() || other.IsZero() {
		return nil, ErrOwnerNotPersisted
	}
	if self.Kind != other.Kind {
		return nil, fmt.Errorf("%w: %s and %s", ErrKindMismatch, self.Kind, other.Kind)
	}
	if self.ID == other.ID {
		return nil, ErrSameEntity
	}
	if !Supported(self.Kind) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedKind, self.Kind)
	}
	if missing := priorities.Missing(self.Kind); len(missing) > 0 {
		return nil, &MissingPriorityError{Kind: self.Kind, Keys: missing}
	}

	logger := logging.WithMergeContext(e.logger, self.String(), other.String(), "")
	r := &run{
		engine:     e,
		actor:      actor,
		self:       self,
		other:      other,
		priorities: priorities,
		report:     newReport(self, other),
		logger:     logger,
	}

	if self.Kind == domain.OwnerKindPlace {
		ctx = records.WithExcludedPlaces(ctx, other.ID)
	}
	err := e.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := r.load(ctx, tx); err != nil {
			return err
		}
		for _, stage := range r.stages() {
			if err := r.runStage(ctx, tx, stage); err != nil {
				return err
			}
		}
		if !commit {
			return errDryRun
		}
		return r.runStage(ctx, tx, stage{name: "commit", fn: r.commit})
	})

	switch {
	case errors.Is(err, errDryRun):
		logger.Info("merge.preview", "warnings", len(r.report.Warnings))
		return r.report, nil
	case err != nil:
		logger.Error("merge.failed", "error", err)
		return nil, err
	}
	r.report.Committed = true
	logger.Info("merge.committed", "destroyed", len(r.report.Destroyed), "warnings", len(r.report.Warnings))
	return r.report, nil
}

type stage struct {
	name string
	fn   func(ctx context.Context, db bun.IDB) error
}

type pendingDestroy struct {
	ref   RecordRef
	model any
}

// run carries the state of one merge.
type run struct {
	engine     *Engine
	actor      uuid.UUID
	self       domain.OwnerRef
	other      domain.OwnerRef
	priorities Priorities
	report     *Report
	logger     interfaces.Logger

	selfOwner  translations.Owner
	otherOwner translations.Owner

	pending   []pendingDestroy
	destroyed []RecordRef
}

func (r *run) stages() []stage {
	out := []stage{
		{name: KeyLangOrig, fn: r.mergeOriginal},
		{name: KeyLangTrans, fn: r.mergeRest},
	}
	switch r.self.Kind {
	case domain.OwnerKindArtist:
		out = append(out,
			stage{name: "attributes", fn: r.mergeArtistAttributes},
			stage{name: KeyEngages, fn: r.mergeEngages},
			stage{name: KeyPerformances, fn: r.mergePerformances},
			stage{name: KeyChannelOwner, fn: r.mergeChannelOwner},
			stage{name: KeyReviewFlags, fn: r.mergeReviewFlags},
		)
	case domain.OwnerKindMusic:
		out = append(out,
			stage{name: "attributes", fn: r.mergeMusicAttributes},
			stage{name: KeyEngages, fn: r.mergeEngages},
			stage{name: KeyMusicAssocs, fn: r.mergeMusicAssocs},
			stage{name: KeyPerformances, fn: r.mergePerformances},
			stage{name: KeyReviewFlags, fn: r.mergeReviewFlags},
		)
	case domain.OwnerKindPlace:
		out = append(out,
			stage{name: "attributes", fn: r.mergePlaceAttributes},
			stage{name: EntryReferences, fn: r.mergePlaceReferences},
		)
	}
	return out
}

// runStage executes one stage inside a savepoint.
func (r *run) runStage(ctx context.Context, tx bun.Tx, s stage) error {
	logger := logging.WithMergeContext(r.logger, "", "", s.name)
	logger.Debug("merge.stage.start")
	err := tx.RunInTx(ctx, nil, func(ctx context.Context, sp bun.Tx) error {
		return s.fn(ctx, sp)
	})
	if err != nil {
		return fmt.Errorf("merge: stage %s: %w", s.name, err)
	}
	logger.Debug("merge.stage.done")
	return nil
}

func (r *run) load(ctx context.Context, db bun.IDB) error {
	var err error
	if r.selfOwner, err = loadOwner(ctx, db, r.self); err != nil {
		return err
	}
	if r.otherOwner, err = loadOwner(ctx, db, r.other); err != nil {
		return err
	}
	return nil
}

func loadOwner(ctx context.Context, db bun.IDB, ref domain.OwnerRef) (translations.Owner, error) {
	owner, err := records.NewOwner(ref.Kind)
	if err != nil {
		return nil, err
	}
	err = db.NewSelect().Model(owner).Where("id = ?", ref.ID).Limit(1).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &translations.NotFoundError{Resource: string(ref.Kind), Key: ref.ID.String()}
	}
	if err != nil {
		return nil, fmt.Errorf("merge: load %s: %w", ref, err)
	}
	return owner, nil
}

func (r *run) store(db bun.IDB) *translations.Store {
	return r.engine.store.WithDB(db)
}

// flag schedules a record for destruction on commit.
func (r *run) flag(entry *Entry, ref RecordRef, model any) {
	entry.Destroyed = append(entry.Destroyed, ref)
	r.pending = append(r.pending, pendingDestroy{ref: ref, model: model})
}

// destroyTranslation removes a translation immediately.
func (r *run) destroyTranslation(ctx context.Context, db bun.IDB, entry *Entry, tr *translations.Translation) error {
	if err := r.store(db).Destroy(ctx, tr); err != nil {
		return err
	}
	ref := translationRef(tr)
	entry.Destroyed = append(entry.Destroyed, ref)
	r.destroyed = append(r.destroyed, ref)
	return nil
}

func translationRef(tr *translations.Translation) RecordRef {
	return RecordRef{Table: "translations", ID: tr.ID}
}

func ownerTable(kind domain.OwnerKind) string {
	switch kind {
	case domain.OwnerKindArtist:
		return "artists"
	case domain.OwnerKindMusic:
		return "musics"
	case domain.OwnerKindPlace:
		return "places"
	}
	return string(kind)
}

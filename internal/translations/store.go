package translations

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-polyglot/internal/domain"
	"github.com/goliatone/go-polyglot/internal/logging"
	"github.com/goliatone/go-polyglot/internal/ordering"
	"github.com/goliatone/go-polyglot/pkg/interfaces"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// IDGenerator produces identifiers for new translations and owners.
type IDGenerator func() uuid.UUID

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithLocales sets the locale list langcodes are validated against.
func WithLocales(locales []string) StoreOption {
	return func(s *Store) {
		s.locales = NormalizeLocales(locales)
	}
}

// WithOwnerRegistry enables owner existence checks and owner validation hooks.
func WithOwnerRegistry(registry OwnerRegistry) StoreOption {
	return func(s *Store) {
		s.registry = registry
	}
}

// WithClock overrides the time source.
func WithClock(clock func() time.Time) StoreOption {
	return func(s *Store) {
		if clock != nil {
			s.now = clock
		}
	}
}

// WithIDGenerator overrides the id source.
func WithIDGenerator(generator IDGenerator) StoreOption {
	return func(s *Store) {
		if generator != nil {
			s.id = generator
		}
	}
}

// WithLogger sets the logger used for integrity reports.
func WithLogger(logger interfaces.Logger) StoreOption {
	return func(s *Store) {
		s.logger = logging.EnsureLogger(logger)
	}
}

// WithCacheInvalidator registers a callback run after every successful write,
// typically dropping a read cache.
func WithCacheInvalidator(invalidate func(ctx context.Context) error) StoreOption {
	return func(s *Store) {
		s.invalidate = invalidate
	}
}

// Store persists translations through a normalize, validate, persist pipeline.
type Store struct {
	db         bun.IDB
	locales    []string
	registry   OwnerRegistry
	now        func() time.Time
	id         IDGenerator
	logger     interfaces.Logger
	invalidate func(ctx context.Context) error
}

// NewStore builds a Store over db.
func NewStore(db bun.IDB, opts ...StoreOption) *Store {
	s := &Store{
		db:     db,
		now:    func() time.Time { return time.Now().UTC() },
		id:     uuid.New,
		logger: logging.NoOp(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// WithDB returns a copy of the store bound to db, typically a transaction.
func (s *Store) WithDB(db bun.IDB) *Store {
	cp := *s
	cp.db = db
	return &cp
}

// DB exposes the handle the store is bound to.
func (s *Store) DB() bun.IDB {
	return s.db
}

// Locales returns the normalized locale list.
func (s *Store) Locales() []string {
	return slices.Clone(s.locales)
}

// Create validates and inserts a translation for an existing owner.
func (s *Store) Create(ctx context.Context, actor uuid.UUID, owner domain.OwnerRef, input Input) (*Translation, error) {
	if owner.IsZero() {
		return nil, ErrOwnerRequired
	}
	tr := normalizeInput(owner, input)
	if err := s.insert(ctx, s.db, actor, tr); err != nil {
		return nil, err
	}
	if err := s.invalidateCache(ctx); err != nil {
		return nil, err
	}
	return tr, nil
}

// Update re-validates and persists changes to an existing translation.
func (s *Store) Update(ctx context.Context, actor uuid.UUID, tr *Translation) (*Translation, error) {
	if tr == nil {
		return nil, ErrTranslationNil
	}
	record := normalizeRecord(tr)
	if err := s.validate(ctx, s.db, record); err != nil {
		return nil, err
	}
	record.UpdatedBy = actor
	record.UpdatedAt = s.now()
	if _, err := s.db.NewUpdate().Model(record).WherePK().Exec(ctx); err != nil {
		return nil, fmt.Errorf("translations: update %s: %w", record.ID, err)
	}
	if err := s.invalidateCache(ctx); err != nil {
		return nil, err
	}
	return record, nil
}

// Reassign moves a translation to another owner with the supplied ordering
// score. The move is validated against the destination's translations.
func (s *Store) Reassign(ctx context.Context, actor uuid.UUID, tr *Translation, owner domain.OwnerRef, score *float64) (*Translation, error) {
	if tr == nil {
		return nil, ErrTranslationNil
	}
	if owner.IsZero() {
		return nil, ErrOwnerRequired
	}
	moved := tr.Clone()
	moved.OwnerKind = owner.Kind
	moved.OwnerID = owner.ID
	moved.OrderingScore = score
	return s.Update(ctx, actor, moved)
}

// Destroy removes one translation.
func (s *Store) Destroy(ctx context.Context, tr *Translation) error {
	if tr == nil {
		return ErrTranslationNil
	}
	if _, err := s.db.NewDelete().Model(tr).WherePK().Exec(ctx); err != nil {
		return fmt.Errorf("translations: destroy %s: %w", tr.ID, err)
	}
	return s.invalidateCache(ctx)
}

// DestroyByOwner removes every translation of an owner.
func (s *Store) DestroyByOwner(ctx context.Context, owner domain.OwnerRef) (int, error) {
	res, err := s.db.NewDelete().
		Model((*Translation)(nil)).
		Where("owner_kind = ?", owner.Kind).
		Where("owner_id = ?", owner.ID).
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("translations: destroy for %s: %w", owner, err)
	}
	affected, _ := res.RowsAffected()
	if err := s.invalidateCache(ctx); err != nil {
		return int(affected), err
	}
	return int(affected), nil
}

// Get loads one translation by id.
func (s *Store) Get(ctx context.Context, id uuid.UUID) (*Translation, error) {
	record := &Translation{}
	err := s.db.NewSelect().Model(record).Where("id = ?", id).Limit(1).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &NotFoundError{Resource: "translation", Key: id.String()}
	}
	if err != nil {
		return nil, fmt.Errorf("translations: get %s: %w", id, err)
	}
	return record, nil
}

// ListByOwner returns the owner's translations sorted per language. When an
// owner registry is configured and the owner row is gone the translations are
// reported as integrity errors and skipped.
func (s *Store) ListByOwner(ctx context.Context, owner domain.OwnerRef) ([]*Translation, error) {
	list, err := s.listRaw(ctx, s.db, owner)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 || s.registry == nil {
		return list, nil
	}
	handler, ok := s.registry.Handler(owner.Kind)
	if !ok {
		return list, nil
	}
	exists, err := handler.Exists(ctx, s.db, owner.ID)
	if err != nil {
		return nil, err
	}
	if !exists {
		for _, tr := range list {
			s.reportOrphan(tr)
		}
		return nil, nil
	}
	return list, nil
}

func (s *Store) listRaw(ctx context.Context, db bun.IDB, owner domain.OwnerRef) ([]*Translation, error) {
	var list []*Translation
	err := db.NewSelect().
		Model(&list).
		Where("owner_kind = ?", owner.Kind).
		Where("owner_id = ?", owner.ID).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("translations: list for %s: %w", owner, err)
	}
	Sort(list)
	return list, nil
}

// RepairOriginals clears extra original flags so at most one remains, keeping
// the best-scored one. It returns the surviving original, if any.
func (s *Store) RepairOriginals(ctx context.Context, actor uuid.UUID, owner domain.OwnerRef) (*Translation, error) {
	list, err := s.listRaw(ctx, s.db, owner)
	if err != nil {
		return nil, err
	}
	keep := CurrentOriginal(list)
	repaired := 0
	for _, tr := range Originals(list) {
		if tr.ID == keep.ID {
			continue
		}
		repaired++
		flag := false
		tr.IsOrig = &flag
		tr.UpdatedBy = actor
		tr.UpdatedAt = s.now()
		if _, err := s.db.NewUpdate().
			Model(tr).
			Column("is_orig", "updated_by", "updated_at").
			WherePK().
			Exec(ctx); err != nil {
			return nil, fmt.Errorf("translations: repair original %s: %w", tr.ID, err)
		}
		logging.WithOwnerContext(s.logger, string(owner.Kind), owner.ID.String()).
			Warn("translations.original.repaired", "translation_id", tr.ID)
	}
	if repaired > 0 {
		if err := s.invalidateCache(ctx); err != nil {
			return nil, err
		}
	}
	return keep, nil
}

// OwnerCreation is the result of a two-phase owner creation.
type OwnerCreation struct {
	Owner        domain.OwnerRef
	Translations []*Translation
}

// CreateOwner inserts owner and flushes its pending translations in a single
// transaction. Any invalid translation rejects the owner as well.
func (s *Store) CreateOwner(ctx context.Context, actor uuid.UUID, owner Owner, inputs []Input) (*OwnerCreation, error) {
	if owner == nil {
		return nil, ErrOwnerRequired
	}
	if len(inputs) == 0 {
		return nil, ErrNoTranslations
	}
	if owner.OwnerID() != uuid.Nil {
		return nil, ErrOwnerPersisted
	}

	result := &OwnerCreation{}
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		owner.AssignOwnerID(s.id())
		ref := domain.Ref(owner.OwnerKind(), owner.OwnerID())
		if _, err := tx.NewInsert().Model(owner).Exec(ctx); err != nil {
			return fmt.Errorf("translations: insert owner %s: %w", ref, err)
		}
		for _, input := range inputs {
			tr := normalizeInput(ref, input)
			if err := s.insert(ctx, tx, actor, tr); err != nil {
				return err
			}
			result.Translations = append(result.Translations, tr)
		}
		result.Owner = ref
		return nil
	})
	if err != nil {
		owner.AssignOwnerID(uuid.Nil)
		return nil, err
	}
	if err := s.invalidateCache(ctx); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Store) invalidateCache(ctx context.Context) error {
	if s.invalidate == nil {
		return nil
	}
	if err := s.invalidate(ctx); err != nil {
		return fmt.Errorf("translations: invalidate cache: %w", err)
	}
	return nil
}

// FindOwnerByTitle identifies the unique owner of kind carrying title (or
// alt_title) in langcode. An empty langcode matches any language.
func (s *Store) FindOwnerByTitle(ctx context.Context, kind domain.OwnerKind, title, langcode string) (domain.OwnerRef, error) {
	text := NormalizeText(title)
	if text == nil {
		return domain.OwnerRef{}, &NotFoundError{Resource: string(kind), Key: title}
	}
	q := s.db.NewSelect().
		Model((*Translation)(nil)).
		ColumnExpr("DISTINCT owner_id").
		Where("owner_kind = ?", kind).
		WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("title = ?", *text).WhereOr("alt_title = ?", *text)
		})
	code := ""
	if strings.TrimSpace(langcode) != "" {
		code, _ = NormalizeLangcode(langcode)
		q = q.Where("langcode = ?", code)
	}
	var raw []string
	if err := q.Scan(ctx, &raw); err != nil {
		return domain.OwnerRef{}, fmt.Errorf("translations: find %s by title: %w", kind, err)
	}
	ids := make([]uuid.UUID, 0, len(raw))
	for _, value := range raw {
		id, err := uuid.Parse(value)
		if err != nil {
			return domain.OwnerRef{}, fmt.Errorf("translations: owner id %q: %w", value, err)
		}
		ids = append(ids, id)
	}
	switch len(ids) {
	case 0:
		return domain.OwnerRef{}, &NotFoundError{Resource: string(kind), Key: *text}
	case 1:
		return domain.Ref(kind, ids[0]), nil
	default:
		return domain.OwnerRef{}, &AmbiguousMatchError{Kind: kind, Title: *text, Langcode: code, Matches: ids}
	}
}

// Orphans returns translations of kind whose owner row is missing. Each one
// is logged as an integrity error; nothing is repaired.
func (s *Store) Orphans(ctx context.Context, kind domain.OwnerKind) ([]*Translation, error) {
	if s.registry == nil {
		return nil, ErrOwnerUnknown
	}
	handler, ok := s.registry.Handler(kind)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrOwnerUnknown, kind)
	}
	var list []*Translation
	if err := s.db.NewSelect().Model(&list).Where("owner_kind = ?", kind).Scan(ctx); err != nil {
		return nil, fmt.Errorf("translations: scan %s: %w", kind, err)
	}
	known := map[uuid.UUID]bool{}
	var orphans []*Translation
	for _, tr := range list {
		exists, seen := known[tr.OwnerID]
		if !seen {
			var err error
			exists, err = handler.Exists(ctx, s.db, tr.OwnerID)
			if err != nil {
				return nil, err
			}
			known[tr.OwnerID] = exists
		}
		if !exists {
			s.reportOrphan(tr)
			orphans = append(orphans, tr)
		}
	}
	Sort(orphans)
	return orphans, nil
}

func (s *Store) reportOrphan(tr *Translation) {
	err := &IntegrityError{TranslationID: tr.ID, Owner: tr.Owner()}
	logging.WithOwnerContext(s.logger, string(tr.OwnerKind), tr.OwnerID.String()).
		Error("translations.integrity.orphan", "error", err)
}

func (s *Store) insert(ctx context.Context, db bun.IDB, actor uuid.UUID, tr *Translation) error {
	if tr.OrderingScore == nil {
		score, err := s.initialScore(ctx, db, tr)
		if err != nil {
			return err
		}
		tr.OrderingScore = &score
	}
	if err := s.validate(ctx, db, tr); err != nil {
		return err
	}
	now := s.now()
	tr.ID = s.id()
	tr.CreatedBy = actor
	tr.UpdatedBy = actor
	tr.CreatedAt = now
	tr.UpdatedAt = now
	if _, err := db.NewInsert().Model(tr).Exec(ctx); err != nil {
		return fmt.Errorf("translations: insert for %s: %w", tr.Owner(), err)
	}
	return nil
}

// initialScore places originals on 0 and appends everything else after its
// same-language siblings.
func (s *Store) initialScore(ctx context.Context, db bun.IDB, tr *Translation) (float64, error) {
	siblings, err := s.listRaw(ctx, db, tr.Owner())
	if err != nil {
		return 0, err
	}
	scores := Scores(siblings, tr.Langcode)
	if tr.Original() && !slices.Contains(scores, 0) {
		return 0, nil
	}
	priority := ordering.PriorityLowest
	if tr.Original() {
		priority = ordering.PriorityHighest
	}
	alloc, err := ordering.Allocate(scores, nil, priority)
	if err != nil {
		return 0, err
	}
	return alloc.Score, nil
}

func (s *Store) validate(ctx context.Context, db bun.IDB, tr *Translation) error {
	if tr.Owner().IsZero() {
		return ErrOwnerRequired
	}

	fields := validation.Errors{}
	if err := validation.Validate(tr.Langcode, validation.Required, validation.By(s.checkLangcode)); err != nil {
		fields["langcode"] = err
	}
	if !tr.Significant() {
		fields["title"] = validation.NewError(CodeInsignificant, "title or alt_title must be present")
	}
	if len(fields) > 0 {
		return newValidationError(tr.Owner(), fields)
	}

	duplicates, err := s.duplicateQuery(db, tr).Count(ctx)
	if err != nil {
		return fmt.Errorf("translations: uniqueness check: %w", err)
	}
	if duplicates > 0 {
		fields["title"] = validation.NewError(CodeDuplicate, "an identical translation already exists for this owner")
	}

	if tr.OrderingScore != nil {
		q := db.NewSelect().
			Model((*Translation)(nil)).
			Where("owner_kind = ?", tr.OwnerKind).
			Where("owner_id = ?", tr.OwnerID).
			Where("langcode = ?", tr.Langcode).
			Where("ordering_score = ?", *tr.OrderingScore)
		if tr.ID != uuid.Nil {
			q = q.Where("id != ?", tr.ID)
		}
		taken, err := q.Count(ctx)
		if err != nil {
			return fmt.Errorf("translations: ordering score check: %w", err)
		}
		if taken > 0 {
			fields["ordering_score"] = validation.NewError(CodeScoreTaken, "ordering score already used in this language")
		}
	}

	if err := s.validateOwnerScope(ctx, db, tr, fields); err != nil {
		return err
	}
	return newValidationError(tr.Owner(), fields)
}

func (s *Store) duplicateQuery(db bun.IDB, tr *Translation) *bun.SelectQuery {
	q := db.NewSelect().
		Model((*Translation)(nil)).
		Where("owner_kind = ?", tr.OwnerKind).
		Where("owner_id = ?", tr.OwnerID).
		Where("langcode = ?", tr.Langcode)
	for _, f := range Fields {
		if value := tr.Field(f); value != nil {
			q = q.Where("? = ?", bun.Ident(string(f)), *value)
		} else {
			q = q.Where("? IS NULL", bun.Ident(string(f)))
		}
	}
	if tr.ID != uuid.Nil {
		q = q.Where("id != ?", tr.ID)
	}
	return q
}

func (s *Store) validateOwnerScope(ctx context.Context, db bun.IDB, tr *Translation, fields validation.Errors) error {
	if s.registry == nil {
		return nil
	}
	handler, ok := s.registry.Handler(tr.OwnerKind)
	if !ok {
		return fmt.Errorf("%w: %s", ErrOwnerUnknown, tr.OwnerKind)
	}
	owner, err := handler.Load(ctx, db, tr.OwnerID)
	if err != nil {
		return err
	}
	hook, ok := owner.(TranslationValidator)
	if !ok {
		return nil
	}
	err = hook.ValidateTranslation(ctx, db, tr)
	if err == nil {
		return nil
	}
	var single validation.Error
	var many validation.Errors
	switch {
	case errors.As(err, &many):
		for key, value := range many {
			fields[key] = value
		}
	case errors.As(err, &single):
		fields["title"] = single
	default:
		return err
	}
	return nil
}

func (s *Store) checkLangcode(value any) error {
	raw, _ := value.(string)
	code, ok := NormalizeLangcode(raw)
	if !ok {
		return validation.NewError(CodeLangcodeInvalid, "langcode must be a two-letter language code")
	}
	if len(s.locales) == 0 {
		return nil
	}
	if !slices.Contains(s.locales, code) {
		return validation.NewError(CodeLangcodeUnknown, fmt.Sprintf("langcode %q is not a configured locale", code))
	}
	return nil
}

package translations_test

import (
	"context"
	"errors"
	"testing"

	"github.com/goliatone/go-polyglot/internal/domain"
	"github.com/goliatone/go-polyglot/internal/records"
	"github.com/goliatone/go-polyglot/internal/translations"
	"github.com/goliatone/go-polyglot/pkg/testsupport"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

var actor = uuid.MustParse("aaaaaaaa-aaaa-aaaa-aaaa-aaaaaaaaaaaa")

func newStore(t *testing.T) (*translations.Store, *bun.DB) {
	t.Helper()
	db, err := testsupport.NewBunDB(context.Background())
	if err != nil {
		t.Fatalf("new bun db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	store := translations.NewStore(db,
		translations.WithLocales([]string{"en", "ja", "fr"}),
		translations.WithOwnerRegistry(records.Registry()),
	)
	return store, db
}

func boolPtr(v bool) *bool { return &v }

func createMusic(t *testing.T, store *translations.Store, inputs ...translations.Input) domain.OwnerRef {
	t.Helper()
	created, err := store.CreateOwner(context.Background(), actor, &records.Music{}, inputs)
	if err != nil {
		t.Fatalf("create music: %v", err)
	}
	return created.Owner
}

func TestCreateOwnerFlushesTranslations(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()

	ref := createMusic(t, store,
		translations.Input{Title: "  Imagine ", Langcode: "en-US", IsOrig: boolPtr(true)},
		translations.Input{Title: "イマジン", Langcode: "ja"},
	)

	list, err := store.ListByOwner(ctx, ref)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 translations, got %d", len(list))
	}
	orig := translations.CurrentOriginal(list)
	if orig == nil || domain.StringValue(orig.Title) != "Imagine" || orig.Langcode != "en" {
		t.Fatalf("expected normalized english original, got %+v", orig)
	}
	if orig.OrderingScore == nil || *orig.OrderingScore != 0 {
		t.Fatalf("expected original on score 0, got %v", orig.OrderingScore)
	}
	if orig.CreatedBy != actor {
		t.Fatalf("expected actor stamped, got %s", orig.CreatedBy)
	}
}

func TestCreateOwnerIsAllOrNothing(t *testing.T) {
	store, db := newStore(t)
	ctx := context.Background()

	music := &records.Music{}
	_, err := store.CreateOwner(ctx, actor, music, []translations.Input{
		{Title: "Imagine", Langcode: "en"},
		{Title: "Imagine", Langcode: "en"},
	})
	if !errors.Is(err, translations.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if !translations.IsDuplicate(err) {
		t.Fatalf("expected duplicate failure, got %v", err)
	}
	if music.ID != uuid.Nil {
		t.Fatalf("expected owner id reset, got %s", music.ID)
	}

	count, err := db.NewSelect().Model((*records.Music)(nil)).Count(ctx)
	if err != nil {
		t.Fatalf("count musics: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected owner insert rolled back, found %d", count)
	}
	trCount, err := db.NewSelect().Model((*translations.Translation)(nil)).Count(ctx)
	if err != nil {
		t.Fatalf("count translations: %v", err)
	}
	if trCount != 0 {
		t.Fatalf("expected no translations, found %d", trCount)
	}
}

func TestCreateValidatesSignificanceAndLocale(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()
	ref := createMusic(t, store, translations.Input{Title: "Imagine", Langcode: "en"})

	_, err := store.Create(ctx, actor, ref, translations.Input{Ruby: "いまじん", Langcode: "ja"})
	var verr *translations.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if _, ok := verr.Fields["title"]; !ok {
		t.Fatalf("expected title field error, got %v", verr.Fields)
	}

	_, err = store.Create(ctx, actor, ref, translations.Input{Title: "Imagine", Langcode: "ko"})
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError for unknown locale, got %v", err)
	}
	if _, ok := verr.Fields["langcode"]; !ok {
		t.Fatalf("expected langcode field error, got %v", verr.Fields)
	}
}

func TestUniquenessConsidersEveryVariantField(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()
	ref := createMusic(t, store, translations.Input{Title: "Imagine", Langcode: "en"})

	if _, err := store.Create(ctx, actor, ref, translations.Input{Title: "Imagine", Romaji: "imajin", Langcode: "en"}); err != nil {
		t.Fatalf("expected distinct romaji to pass, got %v", err)
	}
	if _, err := store.Create(ctx, actor, ref, translations.Input{Title: "Imagine", Langcode: "fr"}); err != nil {
		t.Fatalf("expected other language to pass, got %v", err)
	}
	_, err := store.Create(ctx, actor, ref, translations.Input{Title: "Imagine ", Langcode: "EN"})
	if !translations.IsDuplicate(err) {
		t.Fatalf("expected duplicate after normalization, got %v", err)
	}
}

func TestOrderingScoreUniquePerLanguage(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()
	ref := createMusic(t, store, translations.Input{Title: "Imagine", Langcode: "en"})

	list, err := store.ListByOwner(ctx, ref)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	taken := *list[0].OrderingScore

	_, err = store.Create(ctx, actor, ref, translations.Input{Title: "Imagine 2", Langcode: "en", OrderingScore: &taken})
	var verr *translations.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if _, ok := verr.Fields["ordering_score"]; !ok {
		t.Fatalf("expected ordering_score error, got %v", verr.Fields)
	}

	second, err := store.Create(ctx, actor, ref, translations.Input{Title: "Imagine 2", Langcode: "en"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if *second.OrderingScore <= taken {
		t.Fatalf("expected appended score after %v, got %v", taken, *second.OrderingScore)
	}
}

func TestReassignAndDestroyByOwner(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()
	a := createMusic(t, store, translations.Input{Title: "A", Langcode: "en"})
	b := createMusic(t, store, translations.Input{Title: "B", Langcode: "en"})

	list, err := store.ListByOwner(ctx, b)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	score := 5.0
	moved, err := store.Reassign(ctx, actor, list[0], a, &score)
	if err != nil {
		t.Fatalf("reassign: %v", err)
	}
	if moved.OwnerID != a.ID {
		t.Fatalf("expected owner %s, got %s", a.ID, moved.OwnerID)
	}

	removed, err := store.DestroyByOwner(ctx, a)
	if err != nil {
		t.Fatalf("destroy by owner: %v", err)
	}
	if removed != 2 {
		t.Fatalf("expected 2 removed, got %d", removed)
	}
	if _, err := store.Get(ctx, moved.ID); !errors.Is(err, translations.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestRepairOriginalsKeepsBestScored(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()
	one, two := 1.0, 2.0
	ref := createMusic(t, store,
		translations.Input{Title: "Imagine", Langcode: "en", IsOrig: boolPtr(true), OrderingScore: &two},
		translations.Input{Title: "イマジン", Langcode: "ja", IsOrig: boolPtr(true), OrderingScore: &one},
	)

	kept, err := store.RepairOriginals(ctx, actor, ref)
	if err != nil {
		t.Fatalf("repair: %v", err)
	}
	if kept == nil || kept.Langcode != "ja" {
		t.Fatalf("expected ja original kept, got %+v", kept)
	}
	list, err := store.ListByOwner(ctx, ref)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if n := len(translations.Originals(list)); n != 1 {
		t.Fatalf("expected a single original, got %d", n)
	}
}

func TestFindOwnerByTitle(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()
	a := createMusic(t, store, translations.Input{Title: "Imagine", Langcode: "en"})
	createMusic(t, store, translations.Input{Title: "Yesterday", Langcode: "en"}, translations.Input{AltTitle: "Imagine", Langcode: "fr"})

	ref, err := store.FindOwnerByTitle(ctx, domain.OwnerKindMusic, "Imagine", "en")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if ref != a {
		t.Fatalf("expected %s, got %s", a, ref)
	}

	_, err = store.FindOwnerByTitle(ctx, domain.OwnerKindMusic, "Imagine", "")
	var ambiguous *translations.AmbiguousMatchError
	if !errors.As(err, &ambiguous) || len(ambiguous.Matches) != 2 {
		t.Fatalf("expected ambiguous match over 2 owners, got %v", err)
	}

	if _, err := store.FindOwnerByTitle(ctx, domain.OwnerKindMusic, "Let It Be", ""); !errors.Is(err, translations.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestOrphansAreReportedAndSkipped(t *testing.T) {
	store, db := newStore(t)
	ctx := context.Background()
	ref := createMusic(t, store, translations.Input{Title: "Ghost", Langcode: "en"})

	if _, err := db.NewDelete().Model((*records.Music)(nil)).Where("id = ?", ref.ID).Exec(ctx); err != nil {
		t.Fatalf("delete owner: %v", err)
	}

	orphans, err := store.Orphans(ctx, domain.OwnerKindMusic)
	if err != nil {
		t.Fatalf("orphans: %v", err)
	}
	if len(orphans) != 1 {
		t.Fatalf("expected 1 orphan, got %d", len(orphans))
	}

	list, err := store.ListByOwner(ctx, ref)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("expected orphaned translations skipped, got %d", len(list))
	}
}

func TestPlaceRejectsSiblingTitle(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()

	world, err := store.CreateOwner(ctx, actor, &records.Place{}, []translations.Input{{Title: "World", Langcode: "en"}})
	if err != nil {
		t.Fatalf("create world: %v", err)
	}
	parent := world.Owner.ID
	if _, err := store.CreateOwner(ctx, actor, &records.Place{ParentID: &parent}, []translations.Input{{Title: "Springfield", Langcode: "en"}}); err != nil {
		t.Fatalf("create first place: %v", err)
	}

	_, err = store.CreateOwner(ctx, actor, &records.Place{ParentID: &parent}, []translations.Input{{Title: "Springfield", Langcode: "en"}})
	var verr *translations.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected sibling title rejected, got %v", err)
	}
	if translations.IsDuplicate(err) {
		t.Fatalf("expected owner-scope failure rather than duplicate, got %v", err)
	}
}

func TestWritesRunCacheInvalidator(t *testing.T) {
	db, err := testsupport.NewBunDB(context.Background())
	if err != nil {
		t.Fatalf("new bun db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	calls := 0
	store := translations.NewStore(db,
		translations.WithLocales([]string{"en", "ja"}),
		translations.WithOwnerRegistry(records.Registry()),
		translations.WithCacheInvalidator(func(context.Context) error {
			calls++
			return nil
		}),
	)
	ctx := context.Background()

	ref := createMusic(t, store, translations.Input{Title: "Imagine", Langcode: "en", IsOrig: boolPtr(true)})
	if calls != 1 {
		t.Fatalf("expected owner creation to invalidate once, got %d", calls)
	}

	tr, err := store.Create(ctx, actor, ref, translations.Input{Title: "イマジン", Langcode: "ja"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	title := "イマジン (新)"
	tr.Title = &title
	if _, err := store.Update(ctx, actor, tr); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := store.Destroy(ctx, tr); err != nil {
		t.Fatalf("destroy: %v", err)
	}
	if calls != 4 {
		t.Fatalf("expected every write to invalidate, got %d calls", calls)
	}

	if _, err := store.Create(ctx, actor, ref, translations.Input{Langcode: "ja"}); err == nil {
		t.Fatal("expected insignificant translation to be rejected")
	}
	if calls != 4 {
		t.Fatalf("expected failed writes to keep the cache, got %d calls", calls)
	}
}

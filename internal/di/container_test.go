package di_test

import (
	"context"
	"testing"

	mergecmd "github.com/goliatone/go-polyglot/internal/commands/merge"
	"github.com/goliatone/go-polyglot/internal/di"
	"github.com/goliatone/go-polyglot/internal/domain"
	"github.com/goliatone/go-polyglot/internal/logging/gologger"
	"github.com/goliatone/go-polyglot/internal/merge"
	"github.com/goliatone/go-polyglot/internal/records"
	"github.com/goliatone/go-polyglot/internal/runtimeconfig"
	"github.com/goliatone/go-polyglot/internal/translations"
	"github.com/goliatone/go-polyglot/pkg/testsupport"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

func newDB(t *testing.T) *bun.DB {
	t.Helper()
	db, err := testsupport.NewBunDB(context.Background())
	if err != nil {
		t.Fatalf("new bun db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func testConfig() runtimeconfig.Config {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Locales = []string{"en", "ja", "fr"}
	return cfg
}

func TestNewContainerRejectsInvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.DefaultLocale = ""
	if _, err := di.NewContainer(cfg); err == nil {
		t.Fatal("expected invalid config to be rejected")
	}
}

func TestNewContainerWiresServices(t *testing.T) {
	container, err := di.NewContainer(testConfig(), di.WithBunDB(newDB(t)))
	if err != nil {
		t.Fatalf("new container: %v", err)
	}
	if container.TranslationStore() == nil || container.TranslationReader() == nil {
		t.Fatal("expected translation services")
	}
	if container.TitleResolver() == nil || container.MergeEngine() == nil || container.MergeHandler() == nil {
		t.Fatal("expected resolver and merge services")
	}
	if container.LoggerProvider() != nil {
		t.Fatalf("expected no logger provider when feature disabled, got %T", container.LoggerProvider())
	}
	if err := container.Close(); err != nil {
		t.Fatalf("close borrowed db: %v", err)
	}
	if err := container.DB().Ping(); err != nil {
		t.Fatalf("expected borrowed db to stay open: %v", err)
	}
}

func TestNewContainerSelectsGoLogger(t *testing.T) {
	cfg := testConfig()
	cfg.Features.Logger = true
	cfg.Logging.Provider = "gologger"
	cfg.Logging.Format = "json"

	container, err := di.NewContainer(cfg, di.WithBunDB(newDB(t)))
	if err != nil {
		t.Fatalf("new container: %v", err)
	}
	if _, ok := container.LoggerProvider().(*gologger.Provider); !ok {
		t.Fatalf("expected gologger provider, got %T", container.LoggerProvider())
	}
}

func TestContainerOpensAndMigratesStorage(t *testing.T) {
	cfg := testConfig()
	cfg.Storage.DSN = "file:" + uuid.NewString() + "?mode=memory&cache=shared"

	container, err := di.NewContainer(cfg)
	if err != nil {
		t.Fatalf("new container: %v", err)
	}
	defer container.Close()

	ctx := context.Background()
	if err := container.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if _, err := container.TranslationStore().CreateOwner(ctx, uuid.Nil, &records.Artist{}, []translations.Input{{Title: "Lennon", Langcode: "en"}}); err != nil {
		t.Fatalf("create owner: %v", err)
	}
}

func TestMergeHandlerInvalidatesCachedReads(t *testing.T) {
	cfg := testConfig()
	cfg.Features.Cache = true

	var reports []*merge.Report
	container, err := di.NewContainer(cfg,
		di.WithBunDB(newDB(t)),
		di.WithMergeReportSink(func(_ context.Context, _ mergecmd.MergeOwnersCommand, r *merge.Report) {
			reports = append(reports, r)
		}),
	)
	if err != nil {
		t.Fatalf("new container: %v", err)
	}

	ctx := context.Background()
	store := container.TranslationStore()
	self, err := store.CreateOwner(ctx, uuid.Nil, &records.Music{}, []translations.Input{{Title: "Imagine", Langcode: "en"}})
	if err != nil {
		t.Fatalf("create self: %v", err)
	}
	other, err := store.CreateOwner(ctx, uuid.Nil, &records.Music{}, []translations.Input{{Title: "イマジン", Langcode: "ja"}})
	if err != nil {
		t.Fatalf("create other: %v", err)
	}
	moving := other.Translations[0]

	cached, err := container.TranslationReader().Get(ctx, moving.ID)
	if err != nil {
		t.Fatalf("warm cache: %v", err)
	}
	if cached.OwnerID != other.Owner.ID {
		t.Fatalf("expected translation on other before merge")
	}

	err = container.MergeHandler().Execute(ctx, mergecmd.MergeOwnersCommand{
		Kind:       domain.OwnerKindMusic,
		SelfID:     self.Owner.ID,
		OtherID:    other.Owner.ID,
		Priorities: map[string]string{"default": "self"},
		Commit:     true,
	})
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if len(reports) != 1 || !reports[0].Committed {
		t.Fatalf("expected one committed report, got %+v", reports)
	}

	fresh, err := container.TranslationReader().Get(ctx, moving.ID)
	if err != nil {
		t.Fatalf("read after merge: %v", err)
	}
	if fresh.OwnerID != self.Owner.ID {
		t.Fatalf("expected cache invalidated and translation on self, got owner %s", fresh.OwnerID)
	}
}

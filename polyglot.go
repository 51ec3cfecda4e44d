// Package polyglot stores multilingual titles on artists, musics and places,
// resolves display titles by language priority and merges duplicate owners.
package polyglot

import (
	"context"

	mergecmd "github.com/goliatone/go-polyglot/internal/commands/merge"
	"github.com/goliatone/go-polyglot/internal/di"
	"github.com/goliatone/go-polyglot/internal/languages"
	"github.com/goliatone/go-polyglot/internal/logging"
	"github.com/goliatone/go-polyglot/internal/merge"
	"github.com/goliatone/go-polyglot/internal/translations"
	"github.com/google/uuid"
)

// Module is the top level polyglot runtime facade.
type Module struct {
	container *di.Container
}

// New constructs a module from cfg and optional DI overrides.
func New(cfg Config, opts ...di.Option) (*Module, error) {
	container, err := di.NewContainer(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Module{container: container}, nil
}

// Container exposes the underlying DI container for advanced integrations.
func (m *Module) Container() *di.Container {
	return m.container
}

// Migrate creates the tables the module needs.
func (m *Module) Migrate(ctx context.Context) error {
	return m.container.Migrate(ctx)
}

// Close releases resources the module opened itself.
func (m *Module) Close() error {
	return m.container.Close()
}

// Translations returns the translation store.
func (m *Module) Translations() *translations.Store {
	return m.container.TranslationStore()
}

// CreateOwner inserts owner together with its initial translations.
func (m *Module) CreateOwner(ctx context.Context, actor uuid.UUID, owner Owner, inputs []TranslationInput) (*OwnerCreation, error) {
	return m.container.TranslationStore().CreateOwner(ctx, actor, owner, inputs)
}

// AddTranslation attaches a new translation to an existing owner.
func (m *Module) AddTranslation(ctx context.Context, actor uuid.UUID, owner OwnerRef, input TranslationInput) (*Translation, error) {
	return m.container.TranslationStore().Create(ctx, actor, owner, input)
}

// Translation reads one translation through the read cache.
func (m *Module) Translation(ctx context.Context, id uuid.UUID) (*Translation, error) {
	return m.container.TranslationReader().Get(ctx, id)
}

// TranslationsOf lists an owner's translations in display order.
func (m *Module) TranslationsOf(ctx context.Context, owner OwnerRef) ([]*Translation, error) {
	return m.TranslationsFor(ctx, owner, "")
}

// TranslationsFor lists an owner's translations with originals first, then by
// the language priority for lang, then by ordering score.
func (m *Module) TranslationsFor(ctx context.Context, owner OwnerRef, lang string) ([]*Translation, error) {
	list, err := m.container.TranslationReader().ListByOwner(ctx, owner)
	if err != nil {
		return nil, err
	}
	order := languages.Priority(translations.BestByLanguage(list), languages.Options{
		Preferred: lang,
		Locales:   m.container.TranslationStore().Locales(),
	})
	translations.SortByLanguages(list, order)
	return list, nil
}

// Titles resolves the title and alt title of owner for lang.
func (m *Module) Titles(ctx context.Context, owner OwnerRef, lang string, policy FallbackPolicy, def string) (Titles, error) {
	return m.container.TitleResolver().Titles(ctx, owner, lang, policy, def)
}

// Title resolves a single display string for owner.
func (m *Module) Title(ctx context.Context, owner OwnerRef, lang string, policy FallbackPolicy, def string) (string, error) {
	return m.container.TitleResolver().Title(ctx, owner, lang, policy, def)
}

// OriginalLanguage returns the language of owner's original translation, or
// the empty string when none is flagged.
func (m *Module) OriginalLanguage(ctx context.Context, owner OwnerRef) (string, error) {
	return m.container.TitleResolver().OriginalLanguage(ctx, owner)
}

// LanguagePriority orders owner's languages for display.
func (m *Module) LanguagePriority(ctx context.Context, owner OwnerRef, lang string, prioritizeOrig, removeInvalid bool) ([]string, error) {
	list, err := m.container.TranslationStore().ListByOwner(ctx, owner)
	if err != nil {
		return nil, err
	}
	return languages.Priority(translations.BestByLanguage(list), languages.Options{
		Preferred:      lang,
		PrioritizeOrig: prioritizeOrig,
		RemoveInvalid:  removeInvalid,
		Locales:        m.container.TranslationStore().Locales(),
	}), nil
}

// Merge folds other into self. Configured dry-run mode downgrades commit to
// a preview.
func (m *Module) Merge(ctx context.Context, actor uuid.UUID, self, other OwnerRef, priorities map[string]string, commit bool) (*MergeReport, error) {
	parsed, err := merge.ParsePriorities(priorities)
	if err != nil {
		return nil, err
	}
	if m.container.Config.Merge.DryRun {
		commit = false
	}
	report, err := m.container.MergeEngine().Merge(ctx, actor, self, other, parsed, commit)
	if err != nil {
		return nil, err
	}
	if report.Committed {
		if err := m.container.TranslationReader().InvalidateCache(ctx); err != nil {
			logging.MergeLogger(m.container.LoggerProvider()).Warn("merge.cache.invalidate_failed", "error", err)
		}
	}
	return report, nil
}

// MergeJSON validates a JSON merge request and runs it through the command handler.
func (m *Module) MergeJSON(ctx context.Context, raw []byte) error {
	msg, err := mergecmd.DecodeMergeOwners(raw)
	if err != nil {
		return err
	}
	if m.container.Config.Merge.DryRun {
		msg.Commit = false
	}
	return m.container.MergeHandler().Execute(ctx, msg)
}

// RepairOriginals collapses several original flags on owner down to one.
func (m *Module) RepairOriginals(ctx context.Context, actor uuid.UUID, owner OwnerRef) (*Translation, error) {
	return m.container.TranslationStore().RepairOriginals(ctx, actor, owner)
}

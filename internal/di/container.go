package di

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-polyglot/internal/commands"
	mergecmd "github.com/goliatone/go-polyglot/internal/commands/merge"
	"github.com/goliatone/go-polyglot/internal/logging"
	"github.com/goliatone/go-polyglot/internal/logging/gologger"
	"github.com/goliatone/go-polyglot/internal/merge"
	"github.com/goliatone/go-polyglot/internal/records"
	"github.com/goliatone/go-polyglot/internal/runtimeconfig"
	"github.com/goliatone/go-polyglot/internal/storage"
	"github.com/goliatone/go-polyglot/internal/titles"
	"github.com/goliatone/go-polyglot/internal/translations"
	"github.com/goliatone/go-polyglot/pkg/interfaces"
	repocache "github.com/goliatone/go-repository-cache/cache"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Container wires storage, translations, resolvers and the merge engine.
type Container struct {
	Config runtimeconfig.Config

	loggerProvider interfaces.LoggerProvider
	bunDB          *bun.DB
	ownsDB         bool
	clock          func() time.Time
	idGenerator    func() uuid.UUID

	cacheService  repocache.CacheService
	keySerializer repocache.KeySerializer

	store        *translations.Store
	reader       *storage.TranslationReader
	resolver     *titles.Resolver
	engine       *merge.Engine
	mergeHandler *mergecmd.MergeOwnersHandler
	reportSink   mergecmd.ReportSink
}

// Option mutates the container before services are built.
type Option func(*Container)

// WithBunDB supplies an already opened database. The container never closes it.
func WithBunDB(db *bun.DB) Option {
	return func(c *Container) {
		c.bunDB = db
	}
}

// WithLoggerProvider overrides the provider selected by configuration.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(c *Container) {
		c.loggerProvider = provider
	}
}

// WithCache overrides the cache service used by the translation reader.
func WithCache(service repocache.CacheService, serializer repocache.KeySerializer) Option {
	return func(c *Container) {
		c.cacheService = service
		c.keySerializer = serializer
	}
}

// WithClock overrides the time source of every write path.
func WithClock(clock func() time.Time) Option {
	return func(c *Container) {
		c.clock = clock
	}
}

// WithIDGenerator overrides translation id generation.
func WithIDGenerator(generator func() uuid.UUID) Option {
	return func(c *Container) {
		c.idGenerator = generator
	}
}

// WithMergeReportSink receives the report of every merge run through the command handler.
func WithMergeReportSink(sink mergecmd.ReportSink) Option {
	return func(c *Container) {
		c.reportSink = sink
	}
}

// NewContainer validates cfg and builds every service.
func NewContainer(cfg runtimeconfig.Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	c := &Container{Config: cfg}
	for _, opt := range opts {
		opt(c)
	}

	if err := c.configureLoggerProvider(); err != nil {
		return nil, err
	}
	if err := c.configureStorage(); err != nil {
		return nil, err
	}
	c.configureCacheDefaults()
	c.configureServices()
	return c, nil
}

func (c *Container) configureLoggerProvider() error {
	if c.loggerProvider != nil || !c.Config.Features.Logger {
		return nil
	}
	switch strings.ToLower(strings.TrimSpace(c.Config.Logging.Provider)) {
	case "gologger":
		provider, err := gologger.NewProvider(gologger.Config{
			Level:     c.Config.Logging.Level,
			Format:    c.Config.Logging.Format,
			AddSource: c.Config.Logging.AddSource,
			Focus:     c.Config.Logging.Focus,
		})
		if err != nil {
			return fmt.Errorf("di: logger provider: %w", err)
		}
		c.loggerProvider = provider
	}
	return nil
}

func (c *Container) configureStorage() error {
	if c.bunDB != nil {
		return nil
	}
	db, err := storage.Open(context.Background(), c.Config.Storage, logging.StorageLogger(c.loggerProvider))
	if err != nil {
		return err
	}
	c.bunDB = db
	c.ownsDB = true
	return nil
}

func (c *Container) configureCacheDefaults() {
	if !c.Config.CacheEnabled() {
		return
	}
	if c.cacheService == nil {
		cfg := repocache.DefaultConfig()
		if c.Config.Cache.TTL > 0 {
			cfg.TTL = c.Config.Cache.TTL
		}
		service, err := repocache.NewCacheService(cfg)
		if err == nil {
			c.cacheService = service
		}
	}
	if c.cacheService != nil && c.keySerializer == nil {
		c.keySerializer = repocache.NewDefaultKeySerializer()
	}
}

func (c *Container) configureServices() {
	c.reader = storage.NewTranslationReaderWithCache(c.bunDB, c.cacheService, c.keySerializer)
	storeOpts := []translations.StoreOption{
		translations.WithLocales(c.Config.Locales),
		translations.WithOwnerRegistry(records.Registry()),
		translations.WithLogger(logging.TranslationsLogger(c.loggerProvider)),
		translations.WithCacheInvalidator(c.reader.InvalidateCache),
	}
	engineOpts := []merge.Option{
		merge.WithLogger(logging.MergeLogger(c.loggerProvider)),
		merge.WithMaxRetries(c.Config.Merge.MaxRetries),
	}
	if c.clock != nil {
		storeOpts = append(storeOpts, translations.WithClock(c.clock))
		engineOpts = append(engineOpts, merge.WithClock(c.clock))
	}
	if c.idGenerator != nil {
		storeOpts = append(storeOpts, translations.WithIDGenerator(c.idGenerator))
	}

	c.store = translations.NewStore(c.bunDB, storeOpts...)
	c.resolver = titles.NewResolver(c.store, c.Config.Locales, logging.TitlesLogger(c.loggerProvider))
	c.engine = merge.NewEngine(c.bunDB, c.store, engineOpts...)
	c.mergeHandler = mergecmd.NewMergeOwnersHandler(c.engine, c.invalidateAfterMerge,
		commands.CommandLogger(c.loggerProvider, "merge"))
}

// invalidateAfterMerge drops cached reads touched by a committed merge
// before handing the report to the configured sink.
func (c *Container) invalidateAfterMerge(ctx context.Context, msg mergecmd.MergeOwnersCommand, report *merge.Report) {
	if report != nil && report.Committed {
		if err := c.reader.InvalidateCache(ctx); err != nil {
			logging.MergeLogger(c.loggerProvider).Warn("merge.cache.invalidate_failed", "error", err)
		}
	}
	if c.reportSink != nil {
		c.reportSink(ctx, msg, report)
	}
}

// Migrate creates missing tables and indexes.
func (c *Container) Migrate(ctx context.Context) error {
	return storage.EnsureSchema(ctx, c.bunDB)
}

// Close releases the database when the container opened it.
func (c *Container) Close() error {
	if c == nil || !c.ownsDB || c.bunDB == nil {
		return nil
	}
	return c.bunDB.Close()
}

func (c *Container) DB() *bun.DB                                   { return c.bunDB }
func (c *Container) LoggerProvider() interfaces.LoggerProvider     { return c.loggerProvider }
func (c *Container) TranslationStore() *translations.Store         { return c.store }
func (c *Container) TranslationReader() *storage.TranslationReader { return c.reader }
func (c *Container) TitleResolver() *titles.Resolver               { return c.resolver }
func (c *Container) MergeEngine() *merge.Engine                    { return c.engine }
func (c *Container) MergeHandler() *mergecmd.MergeOwnersHandler    { return c.mergeHandler }

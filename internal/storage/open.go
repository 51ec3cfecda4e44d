package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-polyglot/internal/logging"
	"github.com/goliatone/go-polyglot/internal/runtimeconfig"
	"github.com/goliatone/go-polyglot/pkg/interfaces"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

var ErrProviderUnknown = errors.New("storage: unknown provider")

// Open connects to the configured database and returns a bun handle. Debug
// mode logs every query through logger.
func Open(ctx context.Context, cfg runtimeconfig.StorageConfig, logger interfaces.Logger) (*bun.DB, error) {
	provider := strings.ToLower(strings.TrimSpace(cfg.Provider))
	var (
		db  *bun.DB
		err error
	)
	switch provider {
	case "sqlite", "sqlite3":
		db, err = openSQLite(cfg.DSN)
	case "postgres", "postgresql", "pgx":
		db, err = openPostgres(cfg.DSN)
	default:
		return nil, fmt.Errorf("%w: %q", ErrProviderUnknown, cfg.Provider)
	}
	if err != nil {
		return nil, err
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("storage: ping %s: %w", provider, err)
	}
	if cfg.Debug {
		db.AddQueryHook(NewQueryLogger(logger))
	}
	logging.EnsureLogger(logger).Debug("storage.open", "provider", provider)
	return db, nil
}

// Wrap binds an existing sql.DB to bun with the dialect matching provider.
func Wrap(sqlDB *sql.DB, provider string) (*bun.DB, error) {
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case "sqlite", "sqlite3":
		db := bun.NewDB(sqlDB, sqlitedialect.New())
		db.SetMaxOpenConns(1)
		return db, nil
	case "postgres", "postgresql", "pgx":
		return bun.NewDB(sqlDB, pgdialect.New()), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrProviderUnknown, provider)
	}
}

func openSQLite(dsn string) (*bun.DB, error) {
	sqlDB, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("storage: open sqlite: %w", err)
	}
	return Wrap(sqlDB, "sqlite")
}

func openPostgres(dsn string) (*bun.DB, error) {
	sqlDB, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("storage: open postgres: %w", err)
	}
	return Wrap(sqlDB, "postgres")
}

// QueryLogger is a bun query hook that logs statements at debug level.
type QueryLogger struct {
	logger interfaces.Logger
}

var _ bun.QueryHook = (*QueryLogger)(nil)

// NewQueryLogger builds a query hook over logger.
func NewQueryLogger(logger interfaces.Logger) *QueryLogger {
	return &QueryLogger{logger: logging.EnsureLogger(logger)}
}

func (h *QueryLogger) BeforeQuery(ctx context.Context, _ *bun.QueryEvent) context.Context {
	return ctx
}

func (h *QueryLogger) AfterQuery(_ context.Context, event *bun.QueryEvent) {
	args := []any{
		"operation", event.Operation(),
		"duration_ms", time.Since(event.StartTime).Milliseconds(),
		"query", event.Query,
	}
	if event.Err != nil && !errors.Is(event.Err, sql.ErrNoRows) {
		h.logger.Warn("storage.query.failed", append(args, "error", event.Err)...)
		return
	}
	h.logger.Debug("storage.query", args...)
}

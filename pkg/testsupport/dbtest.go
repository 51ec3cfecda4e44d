package testsupport

import (
	"context"
	"database/sql"

	"github.com/goliatone/go-polyglot/internal/storage"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
)

// NewSQLiteMemoryDB opens a private in-memory sqlite database. Every call
// gets its own database so tests never share state.
func NewSQLiteMemoryDB() (*sql.DB, error) {
	return sql.Open("sqlite3", "file:"+uuid.NewString()+"?mode=memory&cache=shared")
}

// NewBunDB opens a private in-memory database with the full schema applied.
func NewBunDB(ctx context.Context) (*bun.DB, error) {
	sqlDB, err := NewSQLiteMemoryDB()
	if err != nil {
		return nil, err
	}
	db, err := storage.Wrap(sqlDB, "sqlite")
	if err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	if err := storage.EnsureSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

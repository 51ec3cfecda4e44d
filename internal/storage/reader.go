package storage

import (
	"context"
	"fmt"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-polyglot/internal/domain"
	"github.com/goliatone/go-polyglot/internal/translations"
	repository "github.com/goliatone/go-repository-bun"
	cache "github.com/goliatone/go-repository-cache/cache"
	repositorycache "github.com/goliatone/go-repository-cache/repositorycache"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

const translationNamespace = "translation"

// NewTranslationRepository builds the go-repository-bun repository for translations.
func NewTranslationRepository(db *bun.DB) repository.Repository[*translations.Translation] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*translations.Translation]{
		NewRecord: func() *translations.Translation { return &translations.Translation{} },
		GetID: func(tr *translations.Translation) uuid.UUID {
			return tr.ID
		},
		SetID: func(tr *translations.Translation, id uuid.UUID) {
			tr.ID = id
		},
		GetIdentifier: func() string {
			return "id"
		},
		GetIdentifierValue: func(tr *translations.Translation) string {
			if tr == nil {
				return ""
			}
			return tr.ID.String()
		},
	})
}

// TranslationReader serves read paths outside transactions, optionally
// caching single-record lookups.
type TranslationReader struct {
	base         repository.Repository[*translations.Translation]
	repo         repository.Repository[*translations.Translation]
	cacheService cache.CacheService
	cachePrefix  string
}

// NewTranslationReader creates a reader without caching.
func NewTranslationReader(db *bun.DB) *TranslationReader {
	return NewTranslationReaderWithCache(db, nil, nil)
}

// NewTranslationReaderWithCache creates a reader whose lookups by id go through the cache.
func NewTranslationReaderWithCache(db *bun.DB, cacheService cache.CacheService, serializer cache.KeySerializer) *TranslationReader {
	base := NewTranslationRepository(db)
	reader := &TranslationReader{base: base, repo: base}
	if cacheService != nil && serializer != nil {
		reader.repo = repositorycache.New(base, cacheService, serializer)
		reader.cacheService = cacheService
		reader.cachePrefix = translationNamespace + cache.KeySeparator
	}
	return reader
}

// Get loads one translation.
func (r *TranslationReader) Get(ctx context.Context, id uuid.UUID) (*translations.Translation, error) {
	record, err := r.repo.GetByID(ctx, id.String())
	if err != nil {
		return nil, mapRepositoryError(err, "translation", id.String())
	}
	return record, nil
}

// ListByOwner returns an owner's translations sorted per language.
func (r *TranslationReader) ListByOwner(ctx context.Context, owner domain.OwnerRef) ([]*translations.Translation, error) {
	records, _, err := r.base.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.owner_kind = ?", owner.Kind).Where("?TableAlias.owner_id = ?", owner.ID)
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("translation repository error: %w", err)
	}
	translations.Sort(records)
	return records, nil
}

// InvalidateCache drops cached translation lookups.
func (r *TranslationReader) InvalidateCache(ctx context.Context) error {
	if r.cacheService == nil || r.cachePrefix == "" {
		return nil
	}
	return r.cacheService.DeleteByPrefix(ctx, r.cachePrefix)
}

func mapRepositoryError(err error, resource, key string) error {
	if err == nil {
		return nil
	}
	if goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) {
		return &translations.NotFoundError{Resource: resource, Key: key}
	}
	return fmt.Errorf("%s repository error: %w", resource, err)
}

package titles

import (
	"context"

	"github.com/goliatone/go-polyglot/internal/domain"
	"github.com/goliatone/go-polyglot/internal/languages"
	"github.com/goliatone/go-polyglot/internal/logging"
	"github.com/goliatone/go-polyglot/internal/translations"
	"github.com/goliatone/go-polyglot/pkg/interfaces"
)

// Lister loads an owner's translations.
type Lister interface {
	ListByOwner(ctx context.Context, owner domain.OwnerRef) ([]*translations.Translation, error)
}

// Resolver binds the pure resolution functions to persisted translations.
type Resolver struct {
	lister  Lister
	locales []string
	logger  interfaces.Logger
}

// NewResolver builds a Resolver. locales is the static fallback order.
func NewResolver(lister Lister, locales []string, logger interfaces.Logger) *Resolver {
	return &Resolver{
		lister:  lister,
		locales: translations.NormalizeLocales(locales),
		logger:  logging.EnsureLogger(logger),
	}
}

// Titles resolves title and alt title for owner.
func (r *Resolver) Titles(ctx context.Context, owner domain.OwnerRef, lang string, policy FallbackPolicy, def string) (Titles, error) {
	list, err := r.lister.ListByOwner(ctx, owner)
	if err != nil {
		return Titles{}, err
	}
	out := ResolveTitles(list, r.locales, lang, policy, def)
	if !out.Title.Found && !out.AltTitle.Found {
		logging.WithOwnerContext(r.logger, string(owner.Kind), owner.ID.String()).
			Debug("titles.resolve.default", "lang", lang, "policy", policy)
	}
	return out, nil
}

// Title resolves the display title: the title, falling back to the alt title
// found under the same policy, then def.
func (r *Resolver) Title(ctx context.Context, owner domain.OwnerRef, lang string, policy FallbackPolicy, def string) (string, error) {
	out, err := r.Titles(ctx, owner, lang, policy, def)
	if err != nil {
		return "", err
	}
	switch {
	case out.Title.Found:
		return out.Title.Text, nil
	case out.AltTitle.Found:
		return out.AltTitle.Text, nil
	default:
		return def, nil
	}
}

// Single resolves one text field for owner.
func (r *Resolver) Single(ctx context.Context, owner domain.OwnerRef, field translations.Field, lang string, allowFallback bool, def *string) (*string, error) {
	list, err := r.lister.ListByOwner(ctx, owner)
	if err != nil {
		return nil, err
	}
	return ResolveSingle(list, r.locales, field, lang, allowFallback, def), nil
}

// OriginalLanguage returns the owner's original language, or "" when unknown.
func (r *Resolver) OriginalLanguage(ctx context.Context, owner domain.OwnerRef) (string, error) {
	list, err := r.lister.ListByOwner(ctx, owner)
	if err != nil {
		return "", err
	}
	return languages.OriginalOf(list), nil
}

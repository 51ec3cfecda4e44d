package polyglot

import (
	"github.com/goliatone/go-polyglot/internal/domain"
	"github.com/goliatone/go-polyglot/internal/merge"
	"github.com/goliatone/go-polyglot/internal/records"
	"github.com/goliatone/go-polyglot/internal/runtimeconfig"
	"github.com/goliatone/go-polyglot/internal/titles"
	"github.com/goliatone/go-polyglot/internal/translations"
)

// Config aliases the runtime configuration.
type Config = runtimeconfig.Config

// LoadOptions aliases the configuration loader options.
type LoadOptions = runtimeconfig.LoadOptions

// DefaultConfig returns defaults suitable for local sqlite use.
func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}

// LoadConfig layers a YAML file and the environment over the defaults.
func LoadConfig(opts LoadOptions) (Config, error) {
	return runtimeconfig.Load(opts)
}

type (
	OwnerKind        = domain.OwnerKind
	OwnerRef         = domain.OwnerRef
	Owner            = translations.Owner
	OwnerCreation    = translations.OwnerCreation
	Translation      = translations.Translation
	TranslationInput = translations.Input
	FallbackPolicy   = titles.FallbackPolicy
	Titles           = titles.Titles
	MergeReport      = merge.Report
	Artist           = records.Artist
	Music            = records.Music
	Place            = records.Place
)

const (
	OwnerKindArtist = domain.OwnerKindArtist
	OwnerKindMusic  = domain.OwnerKindMusic
	OwnerKindPlace  = domain.OwnerKindPlace

	FallbackNever  = titles.FallbackNever
	FallbackEither = titles.FallbackEither
	FallbackBoth   = titles.FallbackBoth
)

// Ref builds an owner reference.
var Ref = domain.Ref

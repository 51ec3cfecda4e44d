package translations

import (
	"context"
	"time"

	"github.com/goliatone/go-polyglot/internal/domain"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Translation is one language-specific text variant of an owner.
type Translation struct {
	bun.BaseModel `bun:"table:translations,alias:tr"`

	ID            uuid.UUID        `bun:",pk,type:uuid" json:"id"`
	OwnerKind     domain.OwnerKind `bun:"owner_kind,notnull" json:"owner_kind"`
	OwnerID       uuid.UUID        `bun:"owner_id,notnull,type:uuid" json:"owner_id"`
	Title         *string          `bun:"title" json:"title,omitempty"`
	AltTitle      *string          `bun:"alt_title" json:"alt_title,omitempty"`
	Ruby          *string          `bun:"ruby" json:"ruby,omitempty"`
	Romaji        *string          `bun:"romaji" json:"romaji,omitempty"`
	AltRuby       *string          `bun:"alt_ruby" json:"alt_ruby,omitempty"`
	AltRomaji     *string          `bun:"alt_romaji" json:"alt_romaji,omitempty"`
	Langcode      string           `bun:"langcode,notnull" json:"langcode"`
	IsOrig        *bool            `bun:"is_orig" json:"is_orig,omitempty"`
	OrderingScore *float64         `bun:"ordering_score" json:"ordering_score,omitempty"`
	Note          *string          `bun:"note" json:"note,omitempty"`
	CreatedBy     uuid.UUID        `bun:"created_by,type:uuid" json:"created_by"`
	UpdatedBy     uuid.UUID        `bun:"updated_by,type:uuid" json:"updated_by"`
	CreatedAt     time.Time        `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt     time.Time        `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updated_at"`
}

// Owner returns the tagged owner reference.
func (t *Translation) Owner() domain.OwnerRef {
	if t == nil {
		return domain.OwnerRef{}
	}
	return domain.OwnerRef{Kind: t.OwnerKind, ID: t.OwnerID}
}

// Original reports whether the translation is flagged as the owner's original.
func (t *Translation) Original() bool {
	return t != nil && t.IsOrig != nil && *t.IsOrig
}

// Significant reports whether title or alt_title carries text.
func (t *Translation) Significant() bool {
	return t != nil && (!domain.IsBlank(t.Title) || !domain.IsBlank(t.AltTitle))
}

// Field returns the text field addressed by f.
func (t *Translation) Field(f Field) *string {
	if t == nil {
		return nil
	}
	switch f {
	case FieldTitle:
		return t.Title
	case FieldAltTitle:
		return t.AltTitle
	case FieldRuby:
		return t.Ruby
	case FieldRomaji:
		return t.Romaji
	case FieldAltRuby:
		return t.AltRuby
	case FieldAltRomaji:
		return t.AltRomaji
	}
	return nil
}

// SetField overwrites the text field addressed by f.
func (t *Translation) SetField(f Field, value *string) {
	switch f {
	case FieldTitle:
		t.Title = value
	case FieldAltTitle:
		t.AltTitle = value
	case FieldRuby:
		t.Ruby = value
	case FieldRomaji:
		t.Romaji = value
	case FieldAltRuby:
		t.AltRuby = value
	case FieldAltRomaji:
		t.AltRomaji = value
	}
}

// Identical reports whether both translations share the uniqueness tuple.
func (t *Translation) Identical(other *Translation) bool {
	if t == nil || other == nil || t.Langcode != other.Langcode {
		return false
	}
	for _, f := range Fields {
		if domain.StringValue(t.Field(f)) != domain.StringValue(other.Field(f)) {
			return false
		}
	}
	return true
}

// Clone returns a shallow copy safe to mutate.
func (t *Translation) Clone() *Translation {
	if t == nil {
		return nil
	}
	cp := *t
	return &cp
}

// Field names one of the six text columns of a translation.
type Field string

const (
	FieldTitle     Field = "title"
	FieldAltTitle  Field = "alt_title"
	FieldRuby      Field = "ruby"
	FieldRomaji    Field = "romaji"
	FieldAltRuby   Field = "alt_ruby"
	FieldAltRomaji Field = "alt_romaji"
)

// Fields lists the text columns that make up the per-owner uniqueness tuple
// (together with langcode).
var Fields = []Field{FieldTitle, FieldAltTitle, FieldRuby, FieldRomaji, FieldAltRuby, FieldAltRomaji}

// AltPhonetics lists the phonetic variants that travel with alt_title.
var AltPhonetics = []Field{FieldAltRuby, FieldAltRomaji}

// Input is the caller-facing payload for creating a translation.
type Input struct {
	Title         string   `json:"title,omitempty"`
	AltTitle      string   `json:"alt_title,omitempty"`
	Ruby          string   `json:"ruby,omitempty"`
	Romaji        string   `json:"romaji,omitempty"`
	AltRuby       string   `json:"alt_ruby,omitempty"`
	AltRomaji     string   `json:"alt_romaji,omitempty"`
	Langcode      string   `json:"langcode"`
	IsOrig        *bool    `json:"is_orig,omitempty"`
	OrderingScore *float64 `json:"ordering_score,omitempty"`
	Note          string   `json:"note,omitempty"`
}

// Owner is any persisted entity that can carry translations.
type Owner interface {
	OwnerKind() domain.OwnerKind
	OwnerID() uuid.UUID
	AssignOwnerID(id uuid.UUID)
}

// TranslationValidator is an optional capability owners implement to add
// checks for incoming translations.
type TranslationValidator interface {
	ValidateTranslation(ctx context.Context, db bun.IDB, tr *Translation) error
}

// OwnerHandler resolves a tagged owner reference for one owner kind.
type OwnerHandler interface {
	Kind() domain.OwnerKind
	Exists(ctx context.Context, db bun.IDB, id uuid.UUID) (bool, error)
	Load(ctx context.Context, db bun.IDB, id uuid.UUID) (Owner, error)
}

// OwnerRegistry maps owner kinds to their handlers.
type OwnerRegistry interface {
	Handler(kind domain.OwnerKind) (OwnerHandler, bool)
}

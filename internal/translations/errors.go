package translations

import (
	"errors"
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-polyglot/internal/domain"
	"github.com/google/uuid"
)

var (
	ErrValidation     = errors.New("translations: validation failed")
	ErrAmbiguousMatch = errors.New("translations: ambiguous owner match")
	ErrIntegrity      = errors.New("translations: owner missing")
	ErrNotFound       = errors.New("translations: not found")
	ErrOwnerRequired  = errors.New("translations: owner reference required")
	ErrOwnerUnknown   = errors.New("translations: unknown owner kind")
	ErrOwnerPersisted = errors.New("translations: owner already persisted")
	ErrNoTranslations = errors.New("translations: at least one translation is required")
	ErrTranslationNil = errors.New("translations: translation is nil")
)

const (
	CodeDuplicate       = "translation.duplicate"
	CodeInsignificant   = "translation.insignificant"
	CodeLangcodeInvalid = "translation.langcode_invalid"
	CodeLangcodeUnknown = "translation.langcode_unknown"
	CodeScoreTaken      = "translation.ordering_score_taken"
	CodeOwnerScope      = "translation.owner_scope"
)

// ValidationError reports every field that failed validation.
type ValidationError struct {
	Owner  domain.OwnerRef
	Fields validation.Errors
}

func (e *ValidationError) Error() string {
	if e == nil || len(e.Fields) == 0 {
		return ErrValidation.Error()
	}
	return fmt.Sprintf("%s: %s", ErrValidation.Error(), e.Fields.Error())
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// Duplicate reports whether the failure is a uniqueness conflict.
func (e *ValidationError) Duplicate() bool {
	if e == nil {
		return false
	}
	for _, fieldErr := range e.Fields {
		var verr validation.Error
		if errors.As(fieldErr, &verr) && verr.Code() == CodeDuplicate {
			return true
		}
	}
	return false
}

// IsDuplicate reports whether err is a uniqueness ValidationError.
func IsDuplicate(err error) bool {
	var verr *ValidationError
	return errors.As(err, &verr) && verr.Duplicate()
}

func newValidationError(owner domain.OwnerRef, fields validation.Errors) error {
	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{Owner: owner, Fields: fields}
}

// AmbiguousMatchError is returned when an owner lookup matches more than one owner.
type AmbiguousMatchError struct {
	Kind     domain.OwnerKind
	Title    string
	Langcode string
	Matches  []uuid.UUID
}

func (e *AmbiguousMatchError) Error() string {
	if e == nil {
		return ErrAmbiguousMatch.Error()
	}
	ids := make([]string, 0, len(e.Matches))
	for _, id := range e.Matches {
		ids = append(ids, id.String())
	}
	return fmt.Sprintf("%s: %s %q (%s) matches %s", ErrAmbiguousMatch.Error(), e.Kind, e.Title, e.Langcode, strings.Join(ids, ", "))
}

func (e *AmbiguousMatchError) Unwrap() error {
	return ErrAmbiguousMatch
}

// IntegrityError describes a translation whose owner row no longer exists.
type IntegrityError struct {
	TranslationID uuid.UUID
	Owner         domain.OwnerRef
}

func (e *IntegrityError) Error() string {
	if e == nil {
		return ErrIntegrity.Error()
	}
	return fmt.Sprintf("%s: translation %s references %s", ErrIntegrity.Error(), e.TranslationID, e.Owner)
}

func (e *IntegrityError) Unwrap() error {
	return ErrIntegrity
}

// NotFoundError is returned when a lookup has no result.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	if e == nil {
		return ErrNotFound.Error()
	}
	return fmt.Sprintf("%s %q not found", e.Resource, e.Key)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

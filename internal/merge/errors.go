package merge

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-polyglot/internal/domain"
)

var (
	ErrMissingPriority   = errors.New("merge: missing priority")
	ErrKindMismatch      = errors.New("merge: owners are of different kinds")
	ErrSameEntity        = errors.New("merge: cannot merge an owner with itself")
	ErrUnsupportedKind   = errors.New("merge: owner kind cannot be merged")
	ErrOwnerNotPersisted = errors.New("merge: owner is not persisted")

	errDryRun = errors.New("merge: dry run")
)

// MissingPriorityError lists the priority keys the caller did not resolve.
type MissingPriorityError struct {
	Kind domain.OwnerKind
	Keys []string
}

func (e *MissingPriorityError) Error() string {
	if e == nil || len(e.Keys) == 0 {
		return ErrMissingPriority.Error()
	}
	return fmt.Sprintf("%s for %s: %s", ErrMissingPriority.Error(), e.Kind, strings.Join(e.Keys, ", "))
}

func (e *MissingPriorityError) Unwrap() error {
	return ErrMissingPriority
}

package records

import (
	"strings"

	"github.com/goliatone/go-polyglot/internal/domain"
	"github.com/goliatone/go-polyglot/internal/identity"
	"github.com/goliatone/go-slug"
)

// ReasonKey normalizes a review flag reason into the slug used as its natural key.
func ReasonKey(reason string) string {
	normalized, err := slug.Normalize(reason)
	if err != nil || normalized == "" {
		return strings.ToLower(strings.TrimSpace(reason))
	}
	return normalized
}

// NewReviewFlag builds an unresolved flag with a deterministic id.
func NewReviewFlag(owner domain.OwnerRef, reason string) *ReviewFlag {
	key := ReasonKey(reason)
	return &ReviewFlag{
		ID:        identity.ReviewFlagUUID(owner, key),
		OwnerKind: owner.Kind,
		OwnerID:   owner.ID,
		Reason:    key,
	}
}

package identity

import (
	"strings"

	"github.com/goliatone/go-polyglot/internal/domain"
	hashid "github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

// UUID derives a deterministic UUID from a stable key using go-hashid.
//
// Callers must prefix keys by record type so different tables never collide.
func UUID(key string) uuid.UUID {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return uuid.Nil
	}
	uid, err := hashid.NewUUID(trimmed, hashid.WithHashAlgorithm(hashid.SHA256), hashid.WithNormalization(true))
	if err != nil || uid == uuid.Nil {
		return uuid.NewSHA1(uuid.NameSpaceOID, []byte(trimmed))
	}
	return uid
}

// ReviewFlagUUID identifies the flag raised on owner for a slugged reason.
func ReviewFlagUUID(owner domain.OwnerRef, reason string) uuid.UUID {
	return UUID("polyglot:review_flag:" + owner.String() + ":" + strings.ToLower(strings.TrimSpace(reason)))
}

// ActorUUID identifies a system actor such as the CLI.
func ActorUUID(name string) uuid.UUID {
	return UUID("polyglot:actor:" + strings.ToLower(strings.TrimSpace(name)))
}

package merge

import (
	"fmt"
	"sort"
	"strings"

	"github.com/goliatone/go-polyglot/internal/domain"
)

// Priority keys. KeyDefault backs every key without an explicit entry.
const (
	KeyDefault      = "default"
	KeyLangOrig     = "lang_orig"
	KeyLangTrans    = "lang_trans"
	KeySex          = "sex"
	KeyBirthday     = "birthday"
	KeyPlace        = "place"
	KeyYear         = "year"
	KeyNote         = "note"
	KeyCreatedAt    = "created_at"
	KeyEngages      = "engages"
	KeyMusicAssocs  = "music_assocs"
	KeyPerformances = "performances"
	KeyChannelOwner = "channel_owner"
	KeyReviewFlags  = "review_flags"
	KeyParent       = "parent"
)

// Report-only entries that do not take a priority.
const (
	EntryChannels   = "channels"
	EntryReferences = "references"
)

var requiredKeys = map[domain.OwnerKind][]string{
	domain.OwnerKindArtist: {
		KeyLangOrig, KeyLangTrans, KeySex, KeyBirthday, KeyPlace, KeyNote, KeyCreatedAt,
		KeyEngages, KeyPerformances, KeyChannelOwner, KeyReviewFlags,
	},
	domain.OwnerKindMusic: {
		KeyLangOrig, KeyLangTrans, KeyYear, KeyPlace, KeyNote, KeyCreatedAt,
		KeyEngages, KeyMusicAssocs, KeyPerformances, KeyReviewFlags,
	},
	domain.OwnerKindPlace: {
		KeyLangOrig, KeyLangTrans, KeyParent, KeyNote, KeyCreatedAt,
	},
}

// RequiredKeys lists the priority keys a merge of kind consults.
func RequiredKeys(kind domain.OwnerKind) []string {
	keys := requiredKeys[kind]
	out := make([]string, len(keys))
	copy(out, keys)
	return out
}

// Supported reports whether kind can be merged.
func Supported(kind domain.OwnerKind) bool {
	_, ok := requiredKeys[kind]
	return ok
}

// Priorities maps attribute keys to the side whose value wins.
type Priorities map[string]domain.Side

// ParsePriorities converts raw key/value pairs into Priorities.
func ParsePriorities(raw map[string]string) (Priorities, error) {
	out := make(Priorities, len(raw))
	for key, value := range raw {
		side := domain.NormalizeSide(value)
		if !side.Valid() {
			return nil, fmt.Errorf("merge: priority %q has invalid side %q", key, value)
		}
		out[strings.ToLower(strings.TrimSpace(key))] = side
	}
	return out, nil
}

// Side returns the winning side for key, falling back to the default entry.
func (p Priorities) Side(key string) domain.Side {
	if side, ok := p[key]; ok && side.Valid() {
		return side
	}
	return p[KeyDefault]
}

// Missing returns the keys of kind that resolve to no side.
func (p Priorities) Missing(kind domain.OwnerKind) []string {
	if side, ok := p[KeyDefault]; ok && side.Valid() {
		return nil
	}
	var missing []string
	for _, key := range requiredKeys[kind] {
		if side, ok := p[key]; !ok || !side.Valid() {
			missing = append(missing, key)
		}
	}
	sort.Strings(missing)
	return missing
}

package domain

import "strings"

// Side identifies one of the two entities taking part in a merge.
type Side string

const (
	// SideSelf is the entity that survives the merge.
	SideSelf Side = "self"
	// SideOther is the entity folded into self and destroyed on commit.
	SideOther Side = "other"
)

// NormalizeSide coerces user supplied values (self/other, 0/1) into a Side.
// Unknown input yields an empty Side.
func NormalizeSide(input string) Side {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "self", "0", "s":
		return SideSelf
	case "other", "1", "o":
		return SideOther
	default:
		return ""
	}
}

// Opposite returns the other side.
func (s Side) Opposite() Side {
	if s == SideOther {
		return SideSelf
	}
	return SideOther
}

// Valid reports whether the side is one of the known values.
func (s Side) Valid() bool {
	return s == SideSelf || s == SideOther
}

// IsBlank reports whether the string pointer carries no significant text.
func IsBlank(value *string) bool {
	return value == nil || strings.TrimSpace(*value) == ""
}

// StringValue dereferences a string pointer, returning "" for nil.
func StringValue(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

// StringPtr returns a pointer to a trimmed copy of value, or nil when blank.
func StringPtr(value string) *string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

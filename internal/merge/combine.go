package merge

import (
	"strings"

	"github.com/goliatone/go-polyglot/internal/domain"
)

// noteSeparator joins merged free-text notes.
const noteSeparator = "\n"

// joinNotes concatenates the non-blank lines of both notes, first wins on
// duplicates. A nil result means both sides were blank.
func joinNotes(first, second *string) *string {
	seen := map[string]struct{}{}
	var lines []string
	for _, note := range []*string{first, second} {
		if domain.IsBlank(note) {
			continue
		}
		for _, line := range strings.Split(*note, noteSeparator) {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			if _, dup := seen[line]; dup {
				continue
			}
			seen[line] = struct{}{}
			lines = append(lines, line)
		}
	}
	if len(lines) == 0 {
		return nil
	}
	joined := strings.Join(lines, noteSeparator)
	return &joined
}

// pick returns winner unless it is nil.
func pick[T any](winner, loser *T) *T {
	if winner != nil {
		return winner
	}
	return loser
}

// ordered returns (winner, loser) for a pair of self and other values.
func ordered[T any](side domain.Side, self, other T) (T, T) {
	if side == domain.SideOther {
		return other, self
	}
	return self, other
}

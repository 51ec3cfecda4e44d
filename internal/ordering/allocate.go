// Package ordering allocates fractional ordering scores for sibling
// translations (same owner, same language) without renumbering the set.
package ordering

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
)

// DefaultScore seeds empty sibling sets and backs out of degenerate inputs.
const DefaultScore = 1000.0

// Priority expresses where an incoming translation should land in its sibling set.
type Priority string

const (
	PriorityHighest Priority = "highest"
	PriorityLowest  Priority = "lowest"
	PriorityHigh    Priority = "high"
	PriorityLow     Priority = "low"
)

var ErrUnknownPriority = errors.New("ordering: unknown priority")

// ParsePriority maps user input onto a Priority.
func ParsePriority(value string) (Priority, error) {
	switch Priority(strings.ToLower(strings.TrimSpace(value))) {
	case PriorityHighest:
		return PriorityHighest, nil
	case PriorityLowest:
		return PriorityLowest, nil
	case PriorityHigh:
		return PriorityHigh, nil
	case PriorityLow:
		return PriorityLow, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownPriority, value)
	}
}

// Allocation is the outcome of a single allocation. Displaced lists existing
// scores the caller must move out of the way (a previous original marker).
type Allocation struct {
	Score     float64
	Displaced []float64
}

// Allocate returns a score for a translation entering a sibling set. The
// existing slice is never modified; infinite and NaN values are ignored.
func Allocate(existing []float64, hint *float64, priority Priority) (Allocation, error) {
	scores := finiteSorted(existing)
	if hint != nil && !isFinite(*hint) {
		hint = nil
	}

	switch priority {
	case PriorityHighest:
		return highest(scores), nil
	case PriorityLowest:
		return lowest(scores), nil
	case PriorityHigh:
		if hint == nil {
			return highest(scores), nil
		}
		return high(scores, *hint), nil
	case PriorityLow:
		if hint == nil {
			return lowest(scores), nil
		}
		return low(scores, *hint), nil
	default:
		return Allocation{}, fmt.Errorf("%w: %q", ErrUnknownPriority, priority)
	}
}

func highest(scores []float64) Allocation {
	base := DefaultScore
	for _, score := range scores {
		if score > 0 {
			base = score
			break
		}
	}
	return Allocation{Score: base / 2, Displaced: nonPositive(scores)}
}

func lowest(scores []float64) Allocation {
	if len(scores) == 0 {
		return Allocation{Score: DefaultScore}
	}
	largest := scores[len(scores)-1]
	if largest <= 0 {
		return Allocation{Score: DefaultScore}
	}
	return Allocation{Score: largest * 2}
}

func high(scores []float64, hint float64) Allocation {
	if hint <= 0 {
		return Allocation{Score: hint, Displaced: nonPositive(scores)}
	}
	idx, found := search(scores, hint)
	if !found {
		return Allocation{Score: hint}
	}
	if idx == 0 {
		return Allocation{Score: hint / 2}
	}
	return Allocation{Score: (scores[idx-1] + hint) / 2}
}

func low(scores []float64, hint float64) Allocation {
	idx, found := search(scores, hint)
	if !found {
		return Allocation{Score: hint}
	}
	next := idx + 1
	for next < len(scores) && scores[next] == hint {
		next++
	}
	if next < len(scores) {
		return Allocation{Score: (hint + scores[next]) / 2}
	}
	if hint > 0 {
		return Allocation{Score: hint * 2}
	}
	return Allocation{Score: DefaultScore}
}

func search(scores []float64, value float64) (int, bool) {
	idx := sort.SearchFloat64s(scores, value)
	return idx, idx < len(scores) && scores[idx] == value
}

func nonPositive(scores []float64) []float64 {
	var out []float64
	for _, score := range scores {
		if score > 0 {
			break
		}
		out = append(out, score)
	}
	return out
}

func finiteSorted(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, value := range values {
		if isFinite(value) {
			out = append(out, value)
		}
	}
	sort.Float64s(out)
	return out
}

func isFinite(value float64) bool {
	return !math.IsNaN(value) && !math.IsInf(value, 0)
}

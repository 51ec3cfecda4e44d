package ordering_test

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/goliatone/go-polyglot/internal/ordering"
)

func ptr(v float64) *float64 { return &v }

func TestAllocateHighCollisionWithoutLowerNeighbour(t *testing.T) {
	existing := []float64{1.0, 2.0}

	got, err := ordering.Allocate(existing, ptr(1.0), ordering.PriorityHigh)
	if err != nil {
		t.Fatalf("allocate: %v", err)
	}
	if got.Score != 0.5 {
		t.Fatalf("expected 0.5, got %v", got.Score)
	}
	if existing[0] != 1.0 || existing[1] != 2.0 {
		t.Fatalf("existing scores mutated: %v", existing)
	}
}

func TestAllocateTable(t *testing.T) {
	cases := []struct {
		name      string
		existing  []float64
		hint      *float64
		priority  ordering.Priority
		want      float64
		displaced int
	}{
		{name: "highest empty", priority: ordering.PriorityHighest, want: ordering.DefaultScore / 2},
		{name: "highest halves smallest", existing: []float64{4, 8}, priority: ordering.PriorityHighest, want: 2},
		{name: "highest displaces original marker", existing: []float64{0, 4}, priority: ordering.PriorityHighest, want: 2, displaced: 1},
		{name: "highest ignores infinity", existing: []float64{math.Inf(1)}, priority: ordering.PriorityHighest, want: ordering.DefaultScore / 2},
		{name: "lowest empty", priority: ordering.PriorityLowest, want: ordering.DefaultScore},
		{name: "lowest doubles largest", existing: []float64{1, 3}, priority: ordering.PriorityLowest, want: 6},
		{name: "lowest with only original", existing: []float64{0}, priority: ordering.PriorityLowest, want: ordering.DefaultScore},
		{name: "high keeps free hint", existing: []float64{1, 2}, hint: ptr(1.5), priority: ordering.PriorityHigh, want: 1.5},
		{name: "high midpoint with lower", existing: []float64{1, 2}, hint: ptr(2), priority: ordering.PriorityHigh, want: 1.5},
		{name: "high zero hint displaces", existing: []float64{0, 2}, hint: ptr(0), priority: ordering.PriorityHigh, want: 0, displaced: 1},
		{name: "high nil hint acts as highest", existing: []float64{2}, priority: ordering.PriorityHigh, want: 1},
		{name: "low keeps free hint", existing: []float64{1, 2}, hint: ptr(3), priority: ordering.PriorityLow, want: 3},
		{name: "low midpoint with higher", existing: []float64{1, 2}, hint: ptr(1), priority: ordering.PriorityLow, want: 1.5},
		{name: "low doubles when last", existing: []float64{1, 2}, hint: ptr(2), priority: ordering.PriorityLow, want: 4},
		{name: "low nil hint acts as lowest", existing: []float64{5}, priority: ordering.PriorityLow, want: 10},
		{name: "nan hint ignored", existing: []float64{5}, hint: ptr(math.NaN()), priority: ordering.PriorityLow, want: 10},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ordering.Allocate(tc.existing, tc.hint, tc.priority)
			if err != nil {
				t.Fatalf("allocate: %v", err)
			}
			if got.Score != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, got.Score)
			}
			if len(got.Displaced) != tc.displaced {
				t.Fatalf("expected %d displaced, got %v", tc.displaced, got.Displaced)
			}
		})
	}
}

func TestAllocateUnknownPriority(t *testing.T) {
	_, err := ordering.Allocate(nil, nil, ordering.Priority("middle"))
	if !errors.Is(err, ordering.ErrUnknownPriority) {
		t.Fatalf("expected ErrUnknownPriority, got %v", err)
	}
	if _, err := ordering.ParsePriority(" HIGH "); err != nil {
		t.Fatalf("parse priority: %v", err)
	}
}

func TestAllocateExtremesBoundEverySibling(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 200; i++ {
		existing := make([]float64, rng.Intn(8))
		for j := range existing {
			existing[j] = 0.001 + rng.Float64()*100
		}

		first, err := ordering.Allocate(existing, nil, ordering.PriorityHighest)
		if err != nil {
			t.Fatalf("highest: %v", err)
		}
		last, err := ordering.Allocate(existing, nil, ordering.PriorityLowest)
		if err != nil {
			t.Fatalf("lowest: %v", err)
		}
		for _, score := range existing {
			if first.Score >= score {
				t.Fatalf("highest %v not below %v in %v", first.Score, score, existing)
			}
			if last.Score <= score {
				t.Fatalf("lowest %v not above %v in %v", last.Score, score, existing)
			}
		}
	}
}

func TestAllocateKeepsFreeHintAndResolvesCollisions(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 200; i++ {
		existing := make([]float64, 1+rng.Intn(6))
		for j := range existing {
			existing[j] = float64(1 + rng.Intn(20))
		}
		hint := float64(1 + rng.Intn(20))

		for _, p := range []ordering.Priority{ordering.PriorityHigh, ordering.PriorityLow} {
			got, err := ordering.Allocate(existing, &hint, p)
			if err != nil {
				t.Fatalf("allocate: %v", err)
			}
			collides := false
			for _, score := range existing {
				if score == hint {
					collides = true
				}
				if score == got.Score {
					t.Fatalf("%s allocation %v collides with %v", p, got.Score, existing)
				}
			}
			if !collides && got.Score != hint {
				t.Fatalf("%s expected free hint %v to be kept, got %v", p, hint, got.Score)
			}
			if collides && p == ordering.PriorityHigh && got.Score >= hint {
				t.Fatalf("high allocation %v should sort before %v", got.Score, hint)
			}
			if collides && p == ordering.PriorityLow && got.Score <= hint {
				t.Fatalf("low allocation %v should sort after %v", got.Score, hint)
			}
		}
	}
}

package dice

import (
	"fmt"
	"strings"
	"testing"

	"pgregory.net/rapid"
)

// TestRollTotalBounds_Property checks that an unmodified NdM roll always
// totals within [N, N*M].
func TestRollTotalBounds_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		count := rapid.IntRange(1, 12).Draw(rt, "count")
		sides := rapid.IntRange(1, 100).Draw(rt, "sides")
		seed := rapid.Int64().Draw(rt, "seed")

		text := fmt.Sprintf("%dd%d", count, sides)
		result, err := Roll(text, Options{}, NewSeededSource(seed))
		if err != nil {
			rt.Fatalf("Roll(%q): %v", text, err)
		}
		if result.Total < count || result.Total > count*sides {
			rt.Fatalf("Roll(%q) = %d, outside [%d, %d]", text, result.Total, count, count*sides)
		}
		if len(result.Dice) != count {
			rt.Fatalf("Roll(%q) produced %d dice, want %d", text, len(result.Dice), count)
		}
	})
}

// TestKeepHighest_Property checks that khK keeps exactly min(K, N) dice and
// the total is the sum of the kept values.
func TestKeepHighest_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		count := rapid.IntRange(1, 10).Draw(rt, "count")
		keep := rapid.IntRange(1, 12).Draw(rt, "keep")
		seed := rapid.Int64().Draw(rt, "seed")

		text := fmt.Sprintf("%dd6kh%d", count, keep)
		result, err := Roll(text, Options{}, NewSeededSource(seed))
		if err != nil {
			rt.Fatalf("Roll(%q): %v", text, err)
		}

		wantKept := keep
		if wantKept > count {
			wantKept = count
		}
		kept := 0
		sum := 0
		for _, die := range result.Dice {
			if die.Kept {
				kept++
				sum += die.Value
			}
		}
		if kept != wantKept {
			rt.Fatalf("Roll(%q) kept %d dice, want %d", text, kept, wantKept)
		}
		if sum != result.Total {
			rt.Fatalf("Roll(%q) total %d != sum of kept dice %d", text, result.Total, sum)
		}
	})
}

// TestKeepHighestDominates_Property checks that the kept set under kh is at
// least as large, die for die, as any other subset of the same size.
func TestKeepHighestDominates_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		seed := rapid.Int64().Draw(rt, "seed")

		result, err := Roll("6d10kh3", Options{}, NewSeededSource(seed))
		if err != nil {
			rt.Fatalf("Roll: %v", err)
		}

		minKept := 11
		maxDropped := 0
		for _, die := range result.Dice {
			if die.Kept && die.Value < minKept {
				minKept = die.Value
			}
			if !die.Kept && die.Value > maxDropped {
				maxDropped = die.Value
			}
		}
		if maxDropped > minKept {
			rt.Fatalf("dropped die %d exceeds kept die %d", maxDropped, minKept)
		}
	})
}

// TestFloorDiv_Property checks the floored-division invariant
// q*b <= a < q*b + |b|.
func TestFloorDiv_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		a := rapid.IntRange(-10000, 10000).Draw(rt, "a")
		b := rapid.IntRange(-100, 100).Filter(func(v int) bool { return v != 0 }).Draw(rt, "b")

		q := floorDiv(a, b)
		abs := b
		if abs < 0 {
			abs = -abs
		}
		if q*b > a || a >= q*b+abs {
			rt.Fatalf("floorDiv(%d, %d) = %d violates q*b <= a < q*b + |b|", a, b, q)
		}
	})
}

// TestFormatRoundTrip_Property checks that the rendering always starts with
// the dice term and ends with the total.
func TestFormatRoundTrip_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		count := rapid.IntRange(1, 8).Draw(rt, "count")
		sides := rapid.IntRange(2, 20).Draw(rt, "sides")
		seed := rapid.Int64().Draw(rt, "seed")

		text := fmt.Sprintf("%dd%d", count, sides)
		result, err := Roll(text, Options{}, NewSeededSource(seed))
		if err != nil {
			rt.Fatalf("Roll(%q): %v", text, err)
		}
		if !strings.HasPrefix(result.Rendered, text+" (") {
			rt.Fatalf("Rendered %q does not start with %q", result.Rendered, text)
		}
		if !strings.HasSuffix(result.Rendered, fmt.Sprintf(" = %d", result.Total)) {
			rt.Fatalf("Rendered %q does not end with the total %d", result.Rendered, result.Total)
		}
	})
}

// TestParseRejectsGarbage_Property checks that parse failures are always
// structured RollError values, never panics or bare errors.
func TestParseRejectsGarbage_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		text := rapid.String().Draw(rt, "text")

		_, err := Parse(text, Options{})
		if err == nil {
			return
		}
		if KindOf(err) == "" {
			rt.Fatalf("Parse(%q) returned unstructured error %v", text, err)
		}
	})
}

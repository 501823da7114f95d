package dice

import "sort"

// maxTermIterations caps the dice rolled per term: the initial pool plus
// rerolls and explosions. Conditions like "rr<21" on a d20 can never be
// satisfied, and a count like "1000000d6" is unbounded allocation; the cap
// turns both into a RerollLimitExceeded error instead of runaway work.
const maxTermIterations = 1000

// DieResult records one physical die in generation order together with
// its final disposition after modifier resolution.
type DieResult struct {
	Value    int
	Sides    int
	Kept     bool
	Rerolled bool // replaced by a reroll; never counts toward the total
	Exploded bool // triggered an extra die
}

// resolveTerm rolls a dice term and applies its modifier chain in declared
// order. Dice dropped by an earlier modifier are excluded from later
// modifiers; dice generated by explosions are fully considered by the
// modifiers that follow the explode.
func resolveTerm(term *DiceTerm, src Source) ([]DieResult, error) {
	if term.Count > maxTermIterations {
		return nil, rollLimitErr(term.Pos, term.Count)
	}

	roll := func() int {
		return src.Intn(term.Sides) + 1
	}

	dice := make([]DieResult, 0, term.Count)
	for i := 0; i < term.Count; i++ {
		dice = append(dice, DieResult{Value: roll(), Sides: term.Sides, Kept: true})
	}

	iterations := 0
	spend := func(mod Modifier) error {
		iterations++
		if iterations > maxTermIterations {
			return rerollLimitErr(mod.Pos, mod.Code())
		}
		return nil
	}

	for _, mod := range term.Mods {
		switch mod.Kind {
		case ModKeepHighest:
			keepExtreme(dice, mod.N, true)
		case ModKeepLowest:
			keepExtreme(dice, mod.N, false)
		case ModDropLowest:
			dropExtreme(dice, mod.N, false)
		case ModDropHighest:
			dropExtreme(dice, mod.N, true)

		case ModRerollOnce:
			// Single pass: replacements are not re-checked.
			limit := len(dice)
			for i := 0; i < limit; i++ {
				if !dice[i].Kept || !mod.Cond.Matches(dice[i].Value) {
					continue
				}
				if err := spend(mod); err != nil {
					return nil, err
				}
				dice[i].Kept = false
				dice[i].Rerolled = true
				dice = append(dice, DieResult{Value: roll(), Sides: term.Sides, Kept: true})
			}

		case ModRerollUntil:
			// Replacements are re-checked until no kept die matches.
			for i := 0; i < len(dice); i++ {
				if !dice[i].Kept || !mod.Cond.Matches(dice[i].Value) {
					continue
				}
				if err := spend(mod); err != nil {
					return nil, err
				}
				dice[i].Kept = false
				dice[i].Rerolled = true
				dice = append(dice, DieResult{Value: roll(), Sides: term.Sides, Kept: true})
			}

		case ModExplode:
			matches := func(value int) bool {
				if mod.Cond != nil {
					return mod.Cond.Matches(value)
				}
				return value == term.Sides
			}
			// Chained: extra dice can themselves explode.
			for i := 0; i < len(dice); i++ {
				if !dice[i].Kept || dice[i].Exploded || !matches(dice[i].Value) {
					continue
				}
				if err := spend(mod); err != nil {
					return nil, err
				}
				dice[i].Exploded = true
				dice = append(dice, DieResult{Value: roll(), Sides: term.Sides, Kept: true})
			}

		case ModMin:
			for i := range dice {
				if dice[i].Kept && dice[i].Value < mod.N {
					dice[i].Value = mod.N
				}
			}
		case ModMax:
			for i := range dice {
				if dice[i].Kept && dice[i].Value > mod.N {
					dice[i].Value = mod.N
				}
			}
		}
	}

	return dice, nil
}

// keptIndices returns indices of currently kept dice sorted by value,
// descending when highestFirst is set. Ties preserve generation order.
func keptIndices(dice []DieResult, highestFirst bool) []int {
	indices := make([]int, 0, len(dice))
	for i := range dice {
		if dice[i].Kept {
			indices = append(indices, i)
		}
	}
	sort.SliceStable(indices, func(a, b int) bool {
		if highestFirst {
			return dice[indices[a]].Value > dice[indices[b]].Value
		}
		return dice[indices[a]].Value < dice[indices[b]].Value
	})
	return indices
}

// keepExtreme keeps the n highest (or lowest) kept dice and drops the
// rest. Counts larger than the kept pool keep everything.
func keepExtreme(dice []DieResult, n int, highest bool) {
	indices := keptIndices(dice, highest)
	if n > len(indices) {
		n = len(indices)
	}
	for _, idx := range indices[n:] {
		dice[idx].Kept = false
	}
}

// dropExtreme drops the n lowest (or highest) kept dice. Counts larger
// than the kept pool drop everything.
func dropExtreme(dice []DieResult, n int, highest bool) {
	indices := keptIndices(dice, highest)
	if n > len(indices) {
		n = len(indices)
	}
	for _, idx := range indices[:n] {
		dice[idx].Kept = false
	}
}

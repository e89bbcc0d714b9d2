package systems

import (
	"cmp"
	"slices"
)

// GrazeBudget returns the vegetation a group of n herbivores may take from a
// cell holding available units.
func GrazeBudget(available, rate, n int) int {
	return max(min(available, rate*n), 0)
}

// AllocateFood splits budget across members with the given energies by
// water-filling from the hungriest upwards. The result holds each member's
// share in input order. No member is raised above maxEnergy; budget that
// would overflow the cap is left unallocated. When the budget cannot lift the
// whole floor to the next level it is split evenly and any remainder goes one
// unit at a time to the hungriest first.
func AllocateFood(energies []int, budget, maxEnergy int) []int {
	n := len(energies)
	shares := make([]int, n)
	if n == 0 || budget <= 0 {
		return shares
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		return cmp.Compare(energies[a], energies[b])
	})

	level := energies[order[0]]
	floor := 1
	for floor < n && energies[order[floor]] <= level {
		floor++
	}

	for budget > 0 && level < maxEnergy {
		next := maxEnergy
		if floor < n {
			next = min(energies[order[floor]], maxEnergy)
		}
		gap := next - level
		need := gap * floor

		if budget >= need {
			for _, i := range order[:floor] {
				shares[i] += gap
			}
			budget -= need
			level = next
			for floor < n && energies[order[floor]] <= level {
				floor++
			}
			continue
		}

		each, rem := budget/floor, budget%floor
		for k, i := range order[:floor] {
			shares[i] += each
			if k < rem {
				shares[i]++
			}
		}
		break
	}
	return shares
}

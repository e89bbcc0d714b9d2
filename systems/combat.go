package systems

import (
	"cmp"
	"math"
	"slices"
)

// PrideStrength is the hunting strength of a pride.
func PrideStrength(meanEnergy float64, size int, meanSociality float64) float64 {
	return meanEnergy * float64(size) * meanSociality
}

// SoloStrength is the hunting strength of a lone carnivore. Aggressive
// (low attitude) hunters hit harder.
func SoloStrength(energy int, attitude float64) float64 {
	return float64(energy) * (2 - attitude)
}

// HuntProbability maps the strength advantage over the prey through a
// logistic curve and scales it by luck, clamped to [0, 1].
func HuntProbability(strength float64, preyEnergy int, steepness, luck float64) float64 {
	p := 1 / (1 + math.Exp(-steepness*(strength-float64(preyEnergy))))
	return min(max(p*luck, 0), 1)
}

// SplitKill divides a kill's energy across hunters with the given energies:
// every hunter gets an equal share and the remainder goes one unit at a time
// to the hungriest. Shares are returned in input order.
func SplitKill(energy int, hunters []int) []int {
	n := len(hunters)
	shares := make([]int, n)
	if n == 0 || energy <= 0 {
		return shares
	}
	each, rem := energy/n, energy%n

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		return cmp.Compare(hunters[a], hunters[b])
	})
	for k, i := range order {
		shares[i] = each
		if k < rem {
			shares[i]++
		}
	}
	return shares
}

// DuelResult is the outcome of two animals fighting.
type DuelResult int

const (
	DuelTie DuelResult = iota // both die
	DuelFirst
	DuelSecond
)

// Duel compares two energies; the stronger wins.
func Duel(a, b int) DuelResult {
	switch {
	case a > b:
		return DuelFirst
	case b > a:
		return DuelSecond
	}
	return DuelTie
}

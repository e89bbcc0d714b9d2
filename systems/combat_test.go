package systems

import (
	"math"
	"slices"
	"testing"
)

func TestHuntProbability(t *testing.T) {
	tests := []struct {
		name     string
		strength float64
		prey     int
		k        float64
		luck     float64
		want     float64
	}{
		{"even match", 50, 50, 0.1, 1, 0.5},
		{"luck scales", 50, 50, 0.1, 0.5, 0.25},
		{"clamped high", 500, 10, 1, 1.5, 1},
		{"hopeless", 0, 100, 1, 1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := HuntProbability(tt.strength, tt.prey, tt.k, tt.luck)
			if math.Abs(got-tt.want) > 1e-6 {
				t.Errorf("HuntProbability = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStrength(t *testing.T) {
	if got := PrideStrength(40, 3, 0.5); got != 60 {
		t.Errorf("PrideStrength = %v, want 60", got)
	}
	if got := SoloStrength(40, 0.25); got != 70 {
		t.Errorf("SoloStrength = %v, want 70", got)
	}
}

func TestSplitKill(t *testing.T) {
	tests := []struct {
		name    string
		energy  int
		hunters []int
		want    []int
	}{
		{"even", 30, []int{10, 20, 30}, []int{10, 10, 10}},
		{"remainder to hungriest", 32, []int{50, 10, 30}, []int{10, 11, 11}},
		{"solo", 7, []int{90}, []int{7}},
		{"nothing", 0, []int{1, 2}, []int{0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SplitKill(tt.energy, tt.hunters); !slices.Equal(got, tt.want) {
				t.Errorf("SplitKill = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDuel(t *testing.T) {
	if Duel(5, 3) != DuelFirst || Duel(3, 5) != DuelSecond || Duel(4, 4) != DuelTie {
		t.Error("Duel compares energies")
	}
}

package systems

import (
	"math"

	"github.com/ojrac/opensimplex-go"

	"github.com/pthm-cable/planisuss/config"
)

// TerrainGenerator classifies grid cells into land (true) and water.
// It is consulted once when a world is built.
type TerrainGenerator interface {
	Generate(rows, cols int, seed int64) [][]bool
}

// AllLand is a generator with no water at all.
type AllLand struct{}

// Generate returns an all-true mask.
func (AllLand) Generate(rows, cols int, _ int64) [][]bool {
	mask := make([][]bool, rows)
	for r := range mask {
		mask[r] = make([]bool, cols)
		for c := range mask[r] {
			mask[r][c] = true
		}
	}
	return mask
}

// FBMTerrain sums octaves of OpenSimplex noise and thresholds the result.
type FBMTerrain struct {
	Octaves       int
	Persistence   float64
	Lacunarity    float64
	Scale         float64
	Threshold     float64
	Island        bool
	IslandFalloff float64
}

// NewFBMTerrain builds a generator from configuration.
func NewFBMTerrain(cfg config.TerrainConfig) FBMTerrain {
	return FBMTerrain{
		Octaves:       cfg.Octaves,
		Persistence:   cfg.Persistence,
		Lacunarity:    cfg.Lacunarity,
		Scale:         cfg.Scale,
		Threshold:     cfg.Threshold,
		Island:        cfg.Island,
		IslandFalloff: cfg.IslandFalloff,
	}
}

// Field returns the fBm field normalized to [0, 1].
func (t FBMTerrain) Field(rows, cols int, seed int64) [][]float64 {
	noise := opensimplex.New(seed)
	octaves := max(t.Octaves, 1)

	field := make([][]float64, rows)
	lo, hi := math.Inf(1), math.Inf(-1)
	for r := range field {
		field[r] = make([]float64, cols)
		for c := range field[r] {
			var sum float64
			amp, freq := 1.0, t.Scale
			for o := 0; o < octaves; o++ {
				sum += amp * noise.Eval2(float64(c)*freq, float64(r)*freq)
				amp *= t.Persistence
				freq *= t.Lacunarity
			}
			field[r][c] = sum
			lo = math.Min(lo, sum)
			hi = math.Max(hi, sum)
		}
	}

	span := hi - lo
	for r := range field {
		for c := range field[r] {
			if span > 0 {
				field[r][c] = (field[r][c] - lo) / span
			} else {
				field[r][c] = 1
			}
		}
	}
	return field
}

// Generate returns the land mask for the given seed.
func (t FBMTerrain) Generate(rows, cols int, seed int64) [][]bool {
	field := t.Field(rows, cols, seed)
	cr, cc := float64(rows-1)/2, float64(cols-1)/2
	maxDist := math.Hypot(cr, cc)

	mask := make([][]bool, rows)
	for r := range mask {
		mask[r] = make([]bool, cols)
		for c := range mask[r] {
			threshold := t.Threshold
			if t.Island && maxDist > 0 {
				d := math.Hypot(float64(r)-cr, float64(c)-cc) / maxDist
				threshold += t.IslandFalloff * d * d
			}
			mask[r][c] = field[r][c] > threshold
		}
	}
	return mask
}

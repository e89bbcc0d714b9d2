package systems

import (
	"testing"

	"github.com/pthm-cable/planisuss/config"
)

func TestFBMTerrainDeterministic(t *testing.T) {
	gen := NewFBMTerrain(config.Cfg().Terrain)

	a := gen.Generate(20, 30, 7)
	b := gen.Generate(20, 30, 7)

	if len(a) != 20 || len(a[0]) != 30 {
		t.Fatalf("mask shape %dx%d, want 20x30", len(a), len(a[0]))
	}
	for r := range a {
		for c := range a[r] {
			if a[r][c] != b[r][c] {
				t.Fatalf("mask differs at (%d,%d) for the same seed", r, c)
			}
		}
	}
}

func TestFBMTerrainFieldNormalized(t *testing.T) {
	gen := NewFBMTerrain(config.Cfg().Terrain)
	field := gen.Field(16, 16, 3)

	sawLo, sawHi := false, false
	for r := range field {
		for c := range field[r] {
			v := field[r][c]
			if v < 0 || v > 1 {
				t.Fatalf("field value %v outside [0, 1]", v)
			}
			sawLo = sawLo || v == 0
			sawHi = sawHi || v == 1
		}
	}
	if !sawLo || !sawHi {
		t.Error("normalized field should reach both 0 and 1")
	}
}

func TestFBMTerrainIslandFavoursCentre(t *testing.T) {
	gen := FBMTerrain{Octaves: 1, Persistence: 0.5, Lacunarity: 2, Scale: 0.0001, Threshold: -1, Island: true, IslandFalloff: 10}
	mask := gen.Generate(21, 21, 1)

	if !mask[10][10] {
		t.Error("centre should be land")
	}
	if mask[0][0] {
		t.Error("corner should be water with a steep falloff")
	}
}

func TestAllLand(t *testing.T) {
	mask := AllLand{}.Generate(3, 4, 0)
	for r := range mask {
		for c := range mask[r] {
			if !mask[r][c] {
				t.Fatalf("(%d,%d) is water", r, c)
			}
		}
	}
}

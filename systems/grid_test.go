package systems

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/pthm-cable/planisuss/components"
	"github.com/pthm-cable/planisuss/config"
)

func init() {
	config.MustInit("")
}

func testGrid(t *testing.T, land [][]bool) *Grid {
	t.Helper()
	veg := config.VegetationConfig{MaxGrowth: 200, Growing: 1, InitialMin: 40, InitialMax: 40}
	g, err := NewGrid(land, veg, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("NewGrid: %v", err)
	}
	return g
}

func TestNewGridSeedsLandOnly(t *testing.T) {
	land := [][]bool{
		{true, false},
		{false, true},
	}
	g := testGrid(t, land)

	if !g.IsLand(components.Coords{0, 0}) || g.IsLand(components.Coords{0, 1}) {
		t.Error("land mask not honoured")
	}
	if d := g.Cell(components.Coords{1, 1}).Vegetation.Density; d != 40 {
		t.Errorf("land density = %d, want 40", d)
	}
	if d := g.Cell(components.Coords{1, 0}).Vegetation.Density; d != 0 {
		t.Errorf("water density = %d, want 0", d)
	}
}

func TestNewGridInitialBand(t *testing.T) {
	veg := config.VegetationConfig{MaxGrowth: 200, InitialMin: 10, InitialMax: 80}
	g, err := NewGrid(AllLand{}.Generate(10, 10, 0), veg, rand.New(rand.NewSource(3)))
	if err != nil {
		t.Fatal(err)
	}
	for _, c := range g.LandCells() {
		if d := c.Vegetation.Density; d < 10 || d > 80 {
			t.Fatalf("density %d outside [10, 80] at %v", d, c.Coords)
		}
	}
}

func TestNewGridRejectsRagged(t *testing.T) {
	_, err := NewGrid([][]bool{{true, true}, {true}}, config.VegetationConfig{MaxGrowth: 1}, rand.New(rand.NewSource(1)))
	if !errors.Is(err, ErrTerrainShape) {
		t.Errorf("err = %v, want ErrTerrainShape", err)
	}
}

func TestCellOutOfBounds(t *testing.T) {
	g := testGrid(t, AllLand{}.Generate(3, 3, 0))

	for _, c := range []components.Coords{{-1, 0}, {0, -1}, {3, 0}, {0, 3}} {
		if g.Cell(c) != nil {
			t.Errorf("Cell(%v) should be nil", c)
		}
		if g.IsLand(c) {
			t.Errorf("IsLand(%v) should be false", c)
		}
	}
}

func TestNeighborhood(t *testing.T) {
	g := testGrid(t, AllLand{}.Generate(5, 5, 0))

	tests := []struct {
		name    string
		at      components.Coords
		radius  int
		center  bool
		wantLen int
	}{
		{"interior r1", components.Coords{2, 2}, 1, true, 9},
		{"interior r1 no center", components.Coords{2, 2}, 1, false, 8},
		{"corner r1", components.Coords{0, 0}, 1, true, 4},
		{"edge r2", components.Coords{0, 2}, 2, true, 15},
		{"whole grid", components.Coords{2, 2}, 5, true, 25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cells := g.Neighborhood(tt.at, tt.radius, tt.center)
			if len(cells) != tt.wantLen {
				t.Errorf("len = %d, want %d", len(cells), tt.wantLen)
			}
			for _, c := range cells {
				if c.Coords.Chebyshev(tt.at) > tt.radius {
					t.Errorf("cell %v outside radius", c.Coords)
				}
				if !tt.center && c.Coords == tt.at {
					t.Error("center included")
				}
			}
		})
	}
}

func TestVegetationBounds(t *testing.T) {
	v := Vegetation{Density: 198}
	v.Grow(5, 200)
	if v.Density != 200 {
		t.Errorf("Grow overshot: %d", v.Density)
	}
	if got := v.Reduce(250); got != 200 || v.Density != 0 {
		t.Errorf("Reduce(250) = %d leaving %d, want 200 leaving 0", got, v.Density)
	}
	if got := v.Reduce(-3); got != 0 {
		t.Errorf("negative reduce removed %d", got)
	}
}

func TestPruneDead(t *testing.T) {
	c := &Cell{Dead: []components.DeadCreature{{ID: 1, Day: 1}, {ID: 2, Day: 3}, {ID: 3, Day: 4}}}
	c.PruneDead(5, 3)

	if len(c.Dead) != 2 || c.Dead[0].ID != 2 || c.Dead[1].ID != 3 {
		t.Errorf("Dead = %+v, want ids 2 and 3", c.Dead)
	}
}

func TestMeanDensity(t *testing.T) {
	g := testGrid(t, [][]bool{{true, false, true}})
	g.Cell(components.Coords{0, 2}).Vegetation.Density = 20

	if got := g.MeanDensity(); got != 30 {
		t.Errorf("MeanDensity = %v, want 30", got)
	}
}

package systems

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/planisuss/components"
	"github.com/pthm-cable/planisuss/config"
)

// CellType classifies a grid cell.
type CellType uint8

const (
	CellWater CellType = iota // inert, never holds animals
	CellLand
)

// Vegetation is the plant density of a land cell.
type Vegetation struct {
	Density int
}

// Grow adds step to the density, capped at maxGrowth.
func (v *Vegetation) Grow(step, maxGrowth int) {
	v.Density = min(v.Density+step, maxGrowth)
}

// Reduce removes up to amount and returns what was actually removed.
func (v *Vegetation) Reduce(amount int) int {
	amount = min(max(amount, 0), v.Density)
	v.Density -= amount
	return amount
}

// Cell is one square of the world. Only land cells carry occupants.
// Occupant lists hold entity handles; the Environment owns the entities.
type Cell struct {
	Coords     components.Coords
	Type       CellType
	Vegetation Vegetation

	Herbivores []ecs.Entity // lone and affiliated
	Carnivores []ecs.Entity // lone and affiliated
	Herd       ecs.Entity
	HasHerd    bool
	Prides     []ecs.Entity
	Dead       []components.DeadCreature
}

// IsLand reports whether the cell can hold animals.
func (c *Cell) IsLand() bool {
	return c.Type == CellLand
}

// Count returns how many animals of kind k stand in the cell.
func (c *Cell) Count(k components.Kind) int {
	if k == components.KindCarnivore {
		return len(c.Carnivores)
	}
	return len(c.Herbivores)
}

// PruneDead drops tombstones older than keep days.
func (c *Cell) PruneDead(day, keep int) {
	kept := c.Dead[:0]
	for _, d := range c.Dead {
		if day-d.Day < keep {
			kept = append(kept, d)
		}
	}
	clear(c.Dead[len(kept):])
	c.Dead = kept
}

// ErrTerrainShape is returned when a land mask does not match the requested grid.
var ErrTerrainShape = errors.New("terrain mask shape mismatch")

// Grid is the fixed rectangular world. Cells are created once and never replaced.
type Grid struct {
	rows, cols int
	cells      []Cell
}

// NewGrid builds land and water cells from a land mask and seeds each land
// cell with a random density in the configured initial band.
func NewGrid(land [][]bool, veg config.VegetationConfig, rng *rand.Rand) (*Grid, error) {
	rows := len(land)
	if rows == 0 || len(land[0]) == 0 {
		return nil, fmt.Errorf("empty land mask: %w", ErrTerrainShape)
	}
	cols := len(land[0])

	g := &Grid{rows: rows, cols: cols, cells: make([]Cell, rows*cols)}
	for r := 0; r < rows; r++ {
		if len(land[r]) != cols {
			return nil, fmt.Errorf("row %d has %d columns, want %d: %w", r, len(land[r]), cols, ErrTerrainShape)
		}
		for c := 0; c < cols; c++ {
			cell := &g.cells[r*cols+c]
			cell.Coords = components.Coords{Row: r, Col: c}
			if !land[r][c] {
				continue
			}
			cell.Type = CellLand
			density := veg.InitialMin
			if span := veg.InitialMax - veg.InitialMin; span > 0 {
				density += rng.Intn(span + 1)
			}
			cell.Vegetation.Density = min(max(density, 0), veg.MaxGrowth)
		}
	}
	return g, nil
}

// Rows returns the grid height.
func (g *Grid) Rows() int { return g.rows }

// Cols returns the grid width.
func (g *Grid) Cols() int { return g.cols }

// InBounds reports whether c lies on the grid.
func (g *Grid) InBounds(c components.Coords) bool {
	return c.Row >= 0 && c.Row < g.rows && c.Col >= 0 && c.Col < g.cols
}

// Cell returns the cell at c, or nil when c is off the grid.
func (g *Grid) Cell(c components.Coords) *Cell {
	if !g.InBounds(c) {
		return nil
	}
	return &g.cells[c.Row*g.cols+c.Col]
}

// IsLand reports whether c is an on-grid land cell.
func (g *Grid) IsLand(c components.Coords) bool {
	cell := g.Cell(c)
	return cell != nil && cell.IsLand()
}

// Neighborhood returns the cells in the square window of the given radius
// around c, clipped to the grid, in row-major order.
func (g *Grid) Neighborhood(c components.Coords, radius int, includeCenter bool) []*Cell {
	r0, r1 := max(c.Row-radius, 0), min(c.Row+radius, g.rows-1)
	c0, c1 := max(c.Col-radius, 0), min(c.Col+radius, g.cols-1)

	var out []*Cell
	for r := r0; r <= r1; r++ {
		for col := c0; col <= c1; col++ {
			if !includeCenter && r == c.Row && col == c.Col {
				continue
			}
			out = append(out, &g.cells[r*g.cols+col])
		}
	}
	return out
}

// Cells returns every cell in row-major order.
func (g *Grid) Cells() []*Cell {
	out := make([]*Cell, len(g.cells))
	for i := range g.cells {
		out[i] = &g.cells[i]
	}
	return out
}

// LandCells returns the land cells in row-major order.
func (g *Grid) LandCells() []*Cell {
	var out []*Cell
	for i := range g.cells {
		if g.cells[i].IsLand() {
			out = append(out, &g.cells[i])
		}
	}
	return out
}

// GrowAll advances vegetation on every land cell by one day.
func (g *Grid) GrowAll(step, maxGrowth int) {
	for i := range g.cells {
		if g.cells[i].IsLand() {
			g.cells[i].Vegetation.Grow(step, maxGrowth)
		}
	}
}

// MeanDensity returns the average vegetation density over land cells.
func (g *Grid) MeanDensity() float64 {
	var sum, n int
	for i := range g.cells {
		if g.cells[i].IsLand() {
			sum += g.cells[i].Vegetation.Density
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return float64(sum) / float64(n)
}

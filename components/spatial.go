package components

import "fmt"

// Coords locates an animal, group or cell on the grid.
type Coords struct {
	Row, Col int
}

// Add returns the coordinates one step in direction d.
func (c Coords) Add(d Direction) Coords {
	return Coords{Row: c.Row + d.DRow, Col: c.Col + d.DCol}
}

// Chebyshev returns the ring distance between two coordinates.
func (c Coords) Chebyshev(o Coords) int {
	return max(abs(c.Row-o.Row), abs(c.Col-o.Col))
}

func (c Coords) String() string {
	return fmt.Sprintf("(%d,%d)", c.Row, c.Col)
}

// Direction is a single compass step; the zero value means "stay".
type Direction struct {
	DRow, DCol int
}

// Compass lists the eight neighbouring steps, clockwise from north.
var Compass = [8]Direction{
	{-1, 0}, {-1, 1}, {0, 1}, {1, 1},
	{1, 0}, {1, -1}, {0, -1}, {-1, -1},
}

// IsZero reports whether d is the stay direction.
func (d Direction) IsZero() bool {
	return d.DRow == 0 && d.DCol == 0
}

// Away returns the compass direction leading from pos away from threat.
// Co-located coordinates yield the zero direction.
func Away(pos, threat Coords) Direction {
	return Direction{DRow: sign(pos.Row - threat.Row), DCol: sign(pos.Col - threat.Col)}
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

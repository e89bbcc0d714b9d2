package components

import (
	"slices"

	"github.com/mlange-42/ark/ecs"
)

// Group is the membership record of a herd or pride entity.
type Group struct {
	Members []ecs.Entity
	History History
	Radius  int // awareness radius used when ranking moves
}

// Size returns the number of members.
func (g *Group) Size() int {
	return len(g.Members)
}

// Contains reports whether e is a member.
func (g *Group) Contains(e ecs.Entity) bool {
	return slices.Contains(g.Members, e)
}

// Drop removes e from the member list, preserving order.
func (g *Group) Drop(e ecs.Entity) bool {
	i := slices.Index(g.Members, e)
	if i < 0 {
		return false
	}
	g.Members = slices.Delete(g.Members, i, i+1)
	return true
}

// History is a fixed-capacity ring buffer of previously occupied cells.
type History struct {
	buf  []Coords
	next int
	size int
}

// NewHistory creates a ring buffer holding the last capacity coordinates.
func NewHistory(capacity int) History {
	if capacity < 1 {
		capacity = 1
	}
	return History{buf: make([]Coords, capacity)}
}

// Push records c, overwriting the oldest entry when full.
func (h *History) Push(c Coords) {
	if len(h.buf) == 0 {
		*h = NewHistory(1)
	}
	h.buf[h.next] = c
	h.next = (h.next + 1) % len(h.buf)
	if h.size < len(h.buf) {
		h.size++
	}
}

// Contains reports whether c is remembered.
func (h *History) Contains(c Coords) bool {
	return slices.Contains(h.Slice(), c)
}

// Len returns the number of remembered cells.
func (h *History) Len() int {
	return h.size
}

// Slice returns the remembered cells, oldest first.
func (h *History) Slice() []Coords {
	out := make([]Coords, 0, h.size)
	start := (h.next - h.size + len(h.buf)) % max(len(h.buf), 1)
	for i := 0; i < h.size; i++ {
		out = append(out, h.buf[(start+i)%len(h.buf)])
	}
	return out
}

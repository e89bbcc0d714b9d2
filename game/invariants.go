package game

import (
	"errors"
	"fmt"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/planisuss/components"
)

// CheckInvariants cross-checks registries, cells and groups. Every problem
// found is reported; each wraps ErrInvariant.
func (env *Environment) CheckInvariants() error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: %s", ErrInvariant, fmt.Sprintf(format, args...)))
	}

	// Every placed animal appears exactly once, in the cell it claims.
	seen := make(map[ecs.Entity]components.Coords)
	cellCounts := [2]int{}
	for _, cell := range env.grid.Cells() {
		if !cell.IsLand() {
			if len(cell.Herbivores)+len(cell.Carnivores)+len(cell.Prides) > 0 || cell.HasHerd {
				fail("water cell %s holds animals", cell.Coords)
			}
			continue
		}
		if d := cell.Vegetation.Density; d < 0 || d > env.cfg.Vegetation.MaxGrowth {
			fail("cell %s vegetation %d out of [0, %d]", cell.Coords, d, env.cfg.Vegetation.MaxGrowth)
		}

		for kind, list := range [][]ecs.Entity{cell.Herbivores, cell.Carnivores} {
			for _, a := range list {
				cellCounts[kind]++
				if prev, dup := seen[a]; dup {
					fail("animal %v listed at %s and %s", a, prev, cell.Coords)
					continue
				}
				seen[a] = cell.Coords
				if !env.IsAnimal(a) {
					fail("cell %s lists a removed animal", cell.Coords)
					continue
				}
				if components.Kind(kind) != env.kindOf(a) {
					fail("%s %d listed with the wrong kind at %s", env.kindOf(a), env.idOf(a), cell.Coords)
				}
				if *env.posMap.Get(a) != cell.Coords {
					fail("%s %d at %s listed in %s", env.kindOf(a), env.idOf(a), *env.posMap.Get(a), cell.Coords)
				}
				if !env.animals[kind].has(a) {
					fail("%s %d in %s is not registered", env.kindOf(a), env.idOf(a), cell.Coords)
				}
			}
		}

		// Herd rule: herbivores sharing a cell form exactly one herd.
		switch n := len(cell.Herbivores); {
		case n >= 2 && !cell.HasHerd:
			fail("cell %s has %d herbivores and no herd", cell.Coords, n)
		case cell.HasHerd:
			if !env.groups[components.KindHerbivore].has(cell.Herd) {
				fail("cell %s points at an unregistered herd", cell.Coords)
				break
			}
			if size := env.groupMap.Get(cell.Herd).Size(); size != n {
				fail("cell %s herd has %d of its %d herbivores", cell.Coords, size, n)
			}
		}
		for _, p := range cell.Prides {
			if !env.groups[components.KindCarnivore].has(p) {
				fail("cell %s lists an unregistered pride", cell.Coords)
			}
		}
	}

	for kind, r := range env.animals {
		if r.len() != cellCounts[kind] {
			fail("%d %ss registered, %d in cells", r.len(), components.Kind(kind), cellCounts[kind])
		}
		for _, a := range r.list() {
			vit := env.vitalsMap.Get(a)
			if !vit.Alive || vit.Energy <= 0 || vit.Energy > vit.MaxEnergy {
				fail("%s %d has energy %d/%d alive=%v", components.Kind(kind), env.idOf(a), vit.Energy, vit.MaxEnergy, vit.Alive)
			}
			if att := env.socialMap.Get(a).Attitude; att < 0 || att > 1 {
				fail("%s %d attitude %.3f out of [0, 1]", components.Kind(kind), env.idOf(a), att)
			}
			if m := env.memberMap.Get(a); m.InGroup && !env.IsGroup(m.Group) {
				fail("%s %d belongs to a removed group", components.Kind(kind), env.idOf(a))
			}
		}
	}

	// Groups: at least two members, shared coordinates, consistent back-references.
	owner := make(map[ecs.Entity]ecs.Entity)
	for kind, r := range env.groups {
		for _, g := range r.list() {
			id := *env.idMap.Get(g)
			pos := *env.posMap.Get(g)
			grp := env.groupMap.Get(g)
			if grp.Size() < 2 {
				fail("%s %d has %d members", id.Kind.GroupName(), id.ID, grp.Size())
			}
			for _, m := range grp.Members {
				if other, dup := owner[m]; dup {
					fail("animal %v in groups %d and %d", m, env.idOf(other), id.ID)
					continue
				}
				owner[m] = g
				if !env.IsAnimal(m) {
					fail("%s %d holds a removed animal", id.Kind.GroupName(), id.ID)
					continue
				}
				if env.kindOf(m) != components.Kind(kind) {
					fail("%s %d holds a %s", id.Kind.GroupName(), id.ID, env.kindOf(m))
				}
				if *env.posMap.Get(m) != pos {
					fail("%s %d at %s has member %d at %s", id.Kind.GroupName(), id.ID, pos, env.idOf(m), *env.posMap.Get(m))
				}
				if mb := env.memberMap.Get(m); !mb.InGroup || mb.Group != g {
					fail("member %d of %s %d points elsewhere", env.idOf(m), id.Kind.GroupName(), id.ID)
				}
				if !env.animals[kind].has(m) {
					fail("member %d of %s %d is not placed", env.idOf(m), id.Kind.GroupName(), id.ID)
				}
			}
		}
	}

	return errors.Join(errs...)
}

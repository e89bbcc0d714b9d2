package game

import (
	"fmt"
	"slices"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/planisuss/components"
	"github.com/pthm-cable/planisuss/telemetry"
)

// AnimalSpec describes an animal to create.
type AnimalSpec struct {
	Kind     components.Kind
	At       components.Coords
	Energy   int // 0 = species maximum
	Attitude float64
	Lifetime int // 0 = drawn from the species range
}

// NewAnimal creates an unplaced animal. Pass it to Add to put it in the world.
func (env *Environment) NewAnimal(spec AnimalSpec) ecs.Entity {
	return env.newAnimal(spec, 0)
}

func (env *Environment) newAnimal(spec AnimalSpec, parentID uint32) ecs.Entity {
	sc := env.cfg.Derived.Species[spec.Kind]

	energy := spec.Energy
	if energy <= 0 || energy > sc.MaxEnergy {
		energy = sc.MaxEnergy
	}
	lifetime := spec.Lifetime
	if lifetime <= 0 {
		lifetime = sc.LifetimeMin
		if span := sc.LifetimeMax - sc.LifetimeMin; span > 0 {
			lifetime += env.rng.Intn(span + 1)
		}
	}

	id := components.Identity{ID: env.allocID(), Kind: spec.Kind}
	pos := spec.At
	vitals := components.Vitals{
		Energy:    energy,
		MaxEnergy: sc.MaxEnergy,
		Lifetime:  lifetime,
		Alive:     true,
	}
	social := components.Social{Attitude: min(max(spec.Attitude, 0), 1)}
	escape := components.Escape{}
	member := components.Membership{}

	e := env.animalMapper.NewEntity(&id, &pos, &vitals, &social, &escape, &member)
	env.lifetimes.Register(id.ID, spec.Kind, parentID, env.day, energy)
	return e
}

// Spawn creates an animal and places it.
func (env *Environment) Spawn(spec AnimalSpec) (ecs.Entity, error) {
	e := env.NewAnimal(spec)
	if err := env.Add(e); err != nil {
		env.lifetimes.Retire(env.idOf(e), env.day, "")
		env.world.RemoveEntity(e)
		return ecs.Entity{}, err
	}
	return e, nil
}

// NewGroup creates an unplaced herd or pride from at least two unplaced,
// unaffiliated animals of the same kind standing on the same coordinates.
func (env *Environment) NewGroup(kind components.Kind, members []ecs.Entity) (ecs.Entity, error) {
	if len(members) < 2 {
		return ecs.Entity{}, fmt.Errorf("new %s with %d members: %w", kind.GroupName(), len(members), ErrInvalidGroup)
	}
	if err := env.checkRecruits(kind, members); err != nil {
		return ecs.Entity{}, err
	}
	for _, m := range members {
		if env.IsPlaced(m) {
			return ecs.Entity{}, fmt.Errorf("new %s: member %d: %w", kind.GroupName(), env.idOf(m), ErrAlreadyPlaced)
		}
	}
	return env.createGroup(kind, members), nil
}

// checkRecruits validates animals about to be grouped together.
func (env *Environment) checkRecruits(kind components.Kind, members []ecs.Entity) error {
	var at components.Coords
	for i, m := range members {
		if !env.IsAnimal(m) {
			return fmt.Errorf("group member %v: %w", m, ErrUnknownEntity)
		}
		id := env.idMap.Get(m)
		if id.Kind != kind {
			return fmt.Errorf("%s %d cannot join a %s: %w", id.Kind, id.ID, kind.GroupName(), ErrInvalidGroup)
		}
		if env.memberMap.Get(m).InGroup {
			return fmt.Errorf("%s %d already belongs to a group: %w", id.Kind, id.ID, ErrInvalidGroup)
		}
		if slices.Index(members, m) != i {
			return fmt.Errorf("%s %d listed twice: %w", id.Kind, id.ID, ErrInvalidGroup)
		}
		pos := *env.posMap.Get(m)
		if i == 0 {
			at = pos
		} else if pos != at {
			return fmt.Errorf("%s %d at %s, group at %s: %w", id.Kind, id.ID, pos, at, ErrInvalidGroup)
		}
	}
	return nil
}

// createGroup builds the group entity and points every member at it.
func (env *Environment) createGroup(kind components.Kind, members []ecs.Entity) ecs.Entity {
	gc := env.cfg.Derived.Groups[kind]
	id := components.Identity{ID: env.allocID(), Kind: kind}
	pos := *env.posMap.Get(members[0])
	grp := components.Group{
		Members: slices.Clone(members),
		History: components.NewHistory(gc.Memory),
		Radius:  gc.Neighborhood,
	}
	g := env.groupMapper.NewEntity(&id, &pos, &grp)

	for _, m := range members {
		*env.memberMap.Get(m) = components.Membership{Group: g, InGroup: true}
	}
	return g
}

// formGroup groups placed animals on one cell and registers the new group.
func (env *Environment) formGroup(kind components.Kind, members []ecs.Entity) ecs.Entity {
	g := env.createGroup(kind, members)
	env.registerGroup(g)

	id := env.idOf(g)
	env.record(telemetry.NewGroupEvent(telemetry.EventGroupFormed, env.day, id, kind, 0))
	env.logger.Debug(kind.GroupName()+" formed",
		"day", env.day,
		"id", id,
		"size", len(members),
		"cell", env.posMap.Get(g).String(),
	)
	return g
}

// registerGroup adds a group to its registry and its cell.
func (env *Environment) registerGroup(g ecs.Entity) {
	kind := env.kindOf(g)
	env.groups[kind].add(g)
	cell := env.grid.Cell(*env.posMap.Get(g))
	if kind == components.KindHerbivore {
		cell.Herd = g
		cell.HasHerd = true
	} else {
		cell.Prides = append(cell.Prides, g)
	}
}

// unregisterGroup removes a group from its registry and its cell. Members
// stay where they are.
func (env *Environment) unregisterGroup(g ecs.Entity) {
	kind := env.kindOf(g)
	if !env.groups[kind].remove(g) {
		return
	}
	cell := env.grid.Cell(*env.posMap.Get(g))
	if kind == components.KindHerbivore {
		if cell.HasHerd && cell.Herd == g {
			cell.Herd = ecs.Entity{}
			cell.HasHerd = false
		}
		return
	}
	if i := slices.Index(cell.Prides, g); i >= 0 {
		cell.Prides = slices.Delete(cell.Prides, i, i+1)
	}
}

// destroyGroup unregisters a group and removes its entity. Remaining members
// must already be detached.
func (env *Environment) destroyGroup(g ecs.Entity) {
	env.unregisterGroup(g)
	env.world.RemoveEntity(g)
}

// Populate places the initial population uniformly over land cells with
// attitudes drawn from U(0, 1).
func (env *Environment) Populate(herbivores, carnivores int) error {
	land := env.grid.LandCells()
	if len(land) == 0 {
		if herbivores+carnivores > 0 {
			return fmt.Errorf("populate: no land cells: %w", ErrNotLand)
		}
		return nil
	}

	for _, batch := range []struct {
		kind  components.Kind
		count int
	}{
		{components.KindHerbivore, herbivores},
		{components.KindCarnivore, carnivores},
	} {
		for i := 0; i < batch.count; i++ {
			cell := land[env.rng.Intn(len(land))]
			spec := AnimalSpec{
				Kind:     batch.kind,
				At:       cell.Coords,
				Attitude: env.rng.Float64(),
			}
			if _, err := env.Spawn(spec); err != nil {
				return fmt.Errorf("populate %s %d: %w", batch.kind, i, err)
			}
		}
	}

	h, c := env.Population()
	env.logger.Info("population seeded", "herbivores", h, "carnivores", c, "herds", len(env.Herds()))
	return nil
}

package game

import (
	"fmt"
	"slices"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/planisuss/components"
	"github.com/pthm-cable/planisuss/systems"
	"github.com/pthm-cable/planisuss/telemetry"
)

// Move asks the environment to relocate a lone animal or a group.
type Move struct {
	Entity ecs.Entity
	To     components.Coords
}

// Add places an unaffiliated animal or a group (with its members) into the
// registries and its cell. A herbivore arriving on a lone herbivore forms a
// herd with it; herbivores arriving on a herd join it, and two herds merge.
func (env *Environment) Add(e ecs.Entity) error {
	switch {
	case env.IsAnimal(e):
		return env.addAnimal(e)
	case env.IsGroup(e):
		return env.addGroup(e)
	}
	return fmt.Errorf("add %v: %w", e, ErrUnknownEntity)
}

func (env *Environment) addAnimal(e ecs.Entity) error {
	id := *env.idMap.Get(e)
	if !env.vitalsMap.Get(e).Alive {
		return fmt.Errorf("add %s %d: %w", id.Kind, id.ID, ErrDeadAnimal)
	}
	if env.animals[id.Kind].has(e) {
		return fmt.Errorf("add %s %d: %w", id.Kind, id.ID, ErrAlreadyPlaced)
	}
	if env.memberMap.Get(e).InGroup {
		return fmt.Errorf("add %s %d: affiliated animals are placed with their group: %w", id.Kind, id.ID, ErrInvalidGroup)
	}
	pos := *env.posMap.Get(e)
	if !env.grid.IsLand(pos) {
		return fmt.Errorf("add %s %d at %s: %w", id.Kind, id.ID, pos, ErrNotLand)
	}

	env.placeAnimal(e)
	if id.Kind == components.KindHerbivore {
		env.settleHerbivore(env.grid.Cell(pos), e)
	}
	return nil
}

// placeAnimal registers an animal and appends it to its cell.
func (env *Environment) placeAnimal(e ecs.Entity) {
	kind := env.kindOf(e)
	env.animals[kind].add(e)
	cell := env.grid.Cell(*env.posMap.Get(e))
	if kind == components.KindHerbivore {
		cell.Herbivores = append(cell.Herbivores, e)
	} else {
		cell.Carnivores = append(cell.Carnivores, e)
	}
}

// unplaceAnimal removes an animal from its registry and its cell.
func (env *Environment) unplaceAnimal(e ecs.Entity) {
	kind := env.kindOf(e)
	if !env.animals[kind].remove(e) {
		return
	}
	cell := env.grid.Cell(*env.posMap.Get(e))
	list := &cell.Herbivores
	if kind == components.KindCarnivore {
		list = &cell.Carnivores
	}
	if i := slices.Index(*list, e); i >= 0 {
		*list = slices.Delete(*list, i, i+1)
	}
}

// settleHerbivore restores the herd rule after a lone herbivore arrives.
func (env *Environment) settleHerbivore(cell *systems.Cell, e ecs.Entity) {
	if cell.HasHerd {
		env.attach(cell.Herd, e)
		return
	}
	var loners []ecs.Entity
	for _, h := range cell.Herbivores {
		if h != e && !env.memberMap.Get(h).InGroup {
			loners = append(loners, h)
		}
	}
	if len(loners) == 0 {
		return
	}
	env.formGroup(components.KindHerbivore, append(loners, e))
}

func (env *Environment) addGroup(g ecs.Entity) error {
	id := *env.idMap.Get(g)
	if env.groups[id.Kind].has(g) {
		return fmt.Errorf("add %s %d: %w", id.Kind.GroupName(), id.ID, ErrAlreadyPlaced)
	}
	pos := *env.posMap.Get(g)
	if !env.grid.IsLand(pos) {
		return fmt.Errorf("add %s %d at %s: %w", id.Kind.GroupName(), id.ID, pos, ErrNotLand)
	}
	members := env.Members(g)
	if len(members) < 2 {
		return fmt.Errorf("add %s %d with %d members: %w", id.Kind.GroupName(), id.ID, len(members), ErrInvalidGroup)
	}
	for _, m := range members {
		if !env.IsAnimal(m) || !env.vitalsMap.Get(m).Alive {
			return fmt.Errorf("add %s %d: member %v: %w", id.Kind.GroupName(), id.ID, m, ErrDeadAnimal)
		}
		if env.animals[id.Kind].has(m) {
			return fmt.Errorf("add %s %d: member %d: %w", id.Kind.GroupName(), id.ID, env.idOf(m), ErrAlreadyPlaced)
		}
		if mb := env.memberMap.Get(m); !mb.InGroup || mb.Group != g || *env.posMap.Get(m) != pos {
			return fmt.Errorf("add %s %d: member %d out of place: %w", id.Kind.GroupName(), id.ID, env.idOf(m), ErrInvalidGroup)
		}
	}

	for _, m := range members {
		env.placeAnimal(m)
	}
	cell := env.grid.Cell(pos)

	if id.Kind == components.KindCarnivore {
		env.registerGroup(g)
		return nil
	}

	if cell.HasHerd {
		env.groups[id.Kind].add(g)
		env.mergeGroups(cell.Herd, g)
		return nil
	}
	env.registerGroup(g)
	for _, h := range slices.Clone(cell.Herbivores) {
		if !env.memberMap.Get(h).InGroup {
			env.attach(g, h)
		}
	}
	return nil
}

// Remove takes an animal or a group out of the world. An affiliated animal
// leaves its group first, which may disband it; a removed group takes its
// members with it and keeps them as members.
func (env *Environment) Remove(e ecs.Entity) error {
	switch {
	case env.IsAnimal(e):
		id := *env.idMap.Get(e)
		if !env.animals[id.Kind].has(e) {
			return fmt.Errorf("remove %s %d: %w", id.Kind, id.ID, ErrNotPlaced)
		}
		if m := *env.memberMap.Get(e); m.InGroup {
			if _, err := env.RemoveComponent(m.Group, e); err != nil {
				return fmt.Errorf("remove %s %d: %w", id.Kind, id.ID, err)
			}
		}
		env.unplaceAnimal(e)
		return nil
	case env.IsGroup(e):
		id := *env.idMap.Get(e)
		if !env.groups[id.Kind].has(e) {
			return fmt.Errorf("remove %s %d: %w", id.Kind.GroupName(), id.ID, ErrNotPlaced)
		}
		env.unregisterGroup(e)
		for _, m := range env.groupMap.Get(e).Members {
			env.unplaceAnimal(m)
		}
		return nil
	}
	return fmt.Errorf("remove %v: %w", e, ErrUnknownEntity)
}

// Move relocates lone animals and groups: every entity is removed, its
// coordinates updated (groups remember where they were), then re-added in
// order. Handles that died and groups that fell below two members are
// skipped, as are moves onto the current cell.
func (env *Environment) Move(moves []Move) error {
	var live []Move
	seen := make(map[ecs.Entity]bool, len(moves))
	for _, mv := range moves {
		if seen[mv.Entity] {
			continue
		}
		seen[mv.Entity] = true

		switch {
		case env.IsAnimal(mv.Entity):
			id := *env.idMap.Get(mv.Entity)
			if !env.vitalsMap.Get(mv.Entity).Alive {
				continue
			}
			if env.memberMap.Get(mv.Entity).InGroup {
				return fmt.Errorf("move %s %d: member moves with its group: %w", id.Kind, id.ID, ErrInvalidGroup)
			}
			if !env.animals[id.Kind].has(mv.Entity) {
				return fmt.Errorf("move %s %d: %w", id.Kind, id.ID, ErrNotPlaced)
			}
		case env.IsGroup(mv.Entity):
			id := *env.idMap.Get(mv.Entity)
			if env.groupMap.Get(mv.Entity).Size() < 2 {
				continue
			}
			if !env.groups[id.Kind].has(mv.Entity) {
				return fmt.Errorf("move %s %d: %w", id.Kind.GroupName(), id.ID, ErrNotPlaced)
			}
		case mv.Entity != (ecs.Entity{}) && env.world.Alive(mv.Entity):
			return fmt.Errorf("move %v: %w", mv.Entity, ErrUnknownEntity)
		default:
			continue // stale handle
		}
		if !env.grid.IsLand(mv.To) {
			return fmt.Errorf("move to %s: %w", mv.To, ErrNotLand)
		}
		if *env.posMap.Get(mv.Entity) == mv.To {
			continue
		}
		live = append(live, mv)
	}

	for _, mv := range live {
		if err := env.Remove(mv.Entity); err != nil {
			return fmt.Errorf("move: %w", err)
		}
	}

	for _, mv := range live {
		if !env.IsGroup(mv.Entity) {
			*env.posMap.Get(mv.Entity) = mv.To
			continue
		}
		pos := env.posMap.Get(mv.Entity)
		grp := env.groupMap.Get(mv.Entity)
		grp.History.Push(*pos)
		*pos = mv.To
		for _, m := range grp.Members {
			*env.posMap.Get(m) = mv.To
		}
	}

	for _, mv := range live {
		if err := env.Add(mv.Entity); err != nil {
			return fmt.Errorf("move: %w", err)
		}
	}
	return nil
}

// kill ends an animal's life: it leaves its group and cell, a tombstone is
// left behind and its entity is removed.
func (env *Environment) kill(e ecs.Entity, cause components.DeathCause) {
	if !env.IsAnimal(e) {
		return
	}
	id := *env.idMap.Get(e)
	pos := *env.posMap.Get(e)
	vit := env.vitalsMap.Get(e)
	vit.Energy = 0
	vit.Alive = false
	dead := components.DeadCreature{
		ID:       id.ID,
		Kind:     id.Kind,
		Coords:   pos,
		Day:      env.day,
		Cause:    cause,
		Age:      vit.Age,
		Lifetime: vit.Lifetime,
		Attitude: env.socialMap.Get(e).Attitude,
	}

	if env.animals[id.Kind].has(e) {
		_ = env.Remove(e) // cannot fail for a placed animal
	} else if m := *env.memberMap.Get(e); m.InGroup {
		_, _ = env.RemoveComponent(m.Group, e)
	}

	if cell := env.grid.Cell(pos); cell != nil && cell.IsLand() {
		cell.Dead = append(cell.Dead, dead)
	}
	env.deaths = append(env.deaths, dead)

	env.record(telemetry.NewDeathEvent(env.day, id.ID, id.Kind, cause))
	env.collector.RecordLifespan(dead.Age)
	if stats := env.lifetimes.Retire(id.ID, env.day, cause); stats != nil {
		if err := env.output.WriteLifetime(*stats); err != nil {
			env.logger.Error("failed to write lifetime", "error", err)
		}
	}

	env.world.RemoveEntity(e)
}

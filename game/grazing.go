package game

import (
	"fmt"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/planisuss/components"
	"github.com/pthm-cable/planisuss/systems"
	"github.com/pthm-cable/planisuss/telemetry"
)

// Graze feeds a herd or a lone herbivore from its cell and returns the
// vegetation consumed. A herd shares its budget by feeding the hungriest
// first; members left without food lose some of their gregariousness.
func (env *Environment) Graze(e ecs.Entity) (int, error) {
	var eaters []ecs.Entity
	switch {
	case env.IsAnimal(e):
		id := *env.idMap.Get(e)
		if id.Kind != components.KindHerbivore {
			return 0, fmt.Errorf("graze %s %d: %w", id.Kind, id.ID, ErrNotHerbivore)
		}
		if env.memberMap.Get(e).InGroup {
			return 0, fmt.Errorf("graze herbivore %d: members graze with their herd: %w", id.ID, ErrInvalidGroup)
		}
		if !env.animals[id.Kind].has(e) {
			return 0, fmt.Errorf("graze herbivore %d: %w", id.ID, ErrNotPlaced)
		}
		eaters = []ecs.Entity{e}
	case env.IsGroup(e):
		id := *env.idMap.Get(e)
		if id.Kind != components.KindHerbivore {
			return 0, fmt.Errorf("graze pride %d: %w", id.ID, ErrNotHerbivore)
		}
		if !env.groups[id.Kind].has(e) {
			return 0, fmt.Errorf("graze herd %d: %w", id.ID, ErrNotPlaced)
		}
		eaters = env.Members(e)
	default:
		return 0, fmt.Errorf("graze %v: %w", e, ErrUnknownEntity)
	}

	cell := env.grid.Cell(*env.posMap.Get(e))
	budget := systems.GrazeBudget(cell.Vegetation.Density, env.cfg.Grazing.Rate, len(eaters))

	energies := make([]int, len(eaters))
	for i, a := range eaters {
		energies[i] = env.vitalsMap.Get(a).Energy
	}
	maxEnergy := env.cfg.Derived.Species[components.KindHerbivore].MaxEnergy
	shares := systems.AllocateFood(energies, budget, maxEnergy)

	eaten := 0
	for i, a := range eaters {
		if shares[i] == 0 {
			if len(eaters) > 1 {
				env.socialMap.Get(a).Shift(-env.cfg.Grazing.StarvingAttitudeDrop)
			}
			continue
		}
		got := env.vitalsMap.Get(a).Gain(shares[i])
		env.lifetimes.RecordGraze(env.idOf(a), got)
		eaten += got
	}
	cell.Vegetation.Reduce(eaten)

	if eaten > 0 {
		env.record(telemetry.NewGrazeEvent(env.day, env.idOf(e), eaten))
	}
	return eaten, nil
}

// grazingPhase feeds every herd and lone herbivore that stayed put today.
// Herds graze if any member stayed; a herd that arrived whole skips the day.
func (env *Environment) grazingPhase(moved map[ecs.Entity]bool) error {
	for _, cell := range env.grid.LandCells() {
		if len(cell.Herbivores) == 0 {
			continue
		}
		stayed := false
		for _, h := range cell.Herbivores {
			if !moved[h] {
				stayed = true
				break
			}
		}
		if !stayed {
			continue
		}

		var eaters []ecs.Entity
		if cell.HasHerd {
			eaters = []ecs.Entity{cell.Herd}
		}
		for _, h := range cell.Herbivores {
			if !env.memberMap.Get(h).InGroup && !moved[h] {
				eaters = append(eaters, h)
			}
		}
		for _, e := range eaters {
			if _, err := env.Graze(e); err != nil {
				return fmt.Errorf("grazing at %s: %w", cell.Coords, err)
			}
		}
	}
	return nil
}

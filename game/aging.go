package game

import (
	"fmt"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/planisuss/components"
	"github.com/pthm-cable/planisuss/telemetry"
)

// AgeStep ages an animal by days. Every full month of age costs the species'
// aging energy; an animal that outlives its lifetime dies and leaves two
// offspring on its cell. It reports whether the animal is still alive.
func (env *Environment) AgeStep(e ecs.Entity, days int) (bool, []ecs.Entity, error) {
	if !env.IsAnimal(e) || !env.vitalsMap.Get(e).Alive {
		return false, nil, fmt.Errorf("age %v: %w", e, ErrDeadAnimal)
	}
	id := *env.idMap.Get(e)
	sc := env.cfg.Derived.Species[id.Kind]
	month := max(env.cfg.World.DaysPerMonth, 1)

	for range days {
		vit := env.vitalsMap.Get(e)
		vit.Age++
		if vit.Age > vit.Lifetime {
			return false, env.reproduce(e), nil
		}
		if vit.Age%month == 0 && !vit.Spend(sc.Aging) {
			env.kill(e, components.CauseStarvation)
			return false, nil, nil
		}
	}
	return true, nil, nil
}

// reproduce ends a life of old age and places two offspring where the parent
// stood. Each child inherits half the parent's energy, at least the species
// minimum, and an attitude jittered around the parent's.
func (env *Environment) reproduce(parent ecs.Entity) []ecs.Entity {
	id := *env.idMap.Get(parent)
	pos := *env.posMap.Get(parent)
	energy := env.vitalsMap.Get(parent).Energy
	attitude := env.socialMap.Get(parent).Attitude
	sc := env.cfg.Derived.Species[id.Kind]

	env.lifetimes.RecordChild(id.ID)
	env.lifetimes.RecordChild(id.ID)
	env.kill(parent, components.CauseOldAge)

	childEnergy := min(max(energy/2, sc.OffspringMinEnergy), sc.MaxEnergy)
	offspring := make([]ecs.Entity, 0, 2)
	for range 2 {
		jitter := (env.rng.Float64()*2 - 1) * sc.AttitudeJitter
		child := env.newAnimal(AnimalSpec{
			Kind:     id.Kind,
			At:       pos,
			Energy:   childEnergy,
			Attitude: attitude + jitter,
		}, id.ID)
		if err := env.Add(child); err != nil {
			// The parent's cell is land, so this only fails on a broken registry.
			env.logger.Error("failed to place offspring", "parent", id.ID, "error", err)
			env.lifetimes.Retire(env.idOf(child), env.day, "")
			env.world.RemoveEntity(child)
			continue
		}
		env.record(telemetry.NewBirthEvent(env.day, env.idOf(child), id.ID, id.Kind))
		offspring = append(offspring, child)
	}
	return offspring
}

// agingPhase ages every animal alive at the start of the phase by one day.
func (env *Environment) agingPhase() error {
	population := append(env.Herbivores(), env.Carnivores()...)
	for _, a := range population {
		if !env.IsAnimal(a) {
			continue
		}
		if _, _, err := env.AgeStep(a, 1); err != nil {
			return fmt.Errorf("aging: %w", err)
		}
	}
	return nil
}

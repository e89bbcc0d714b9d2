package game

import (
	"fmt"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/planisuss/components"
	"github.com/pthm-cable/planisuss/systems"
	"github.com/pthm-cable/planisuss/telemetry"
)

// huntingPhase lets the first pride (or, failing that, the first lone
// carnivore) of every cell hunt the herbivores it shares the cell with.
func (env *Environment) huntingPhase() error {
	for _, cell := range env.grid.LandCells() {
		if len(cell.Carnivores) == 0 || len(cell.Herbivores) == 0 {
			continue
		}
		var hunter ecs.Entity
		if len(cell.Prides) > 0 {
			hunter = cell.Prides[0]
		} else {
			for _, c := range cell.Carnivores {
				if !env.memberMap.Get(c).InGroup {
					hunter = c
					break
				}
			}
		}
		if hunter == (ecs.Entity{}) {
			continue
		}
		if _, err := env.Hunt(hunter); err != nil {
			return fmt.Errorf("hunting at %s: %w", cell.Coords, err)
		}
	}
	return nil
}

// Hunt runs one hunt for a pride or a lone carnivore against the herbivores
// on its cell. Luck is drawn once; strength is recomputed every attempt as
// failures drain the hunters. It reports whether prey was taken.
func (env *Environment) Hunt(hunter ecs.Entity) (bool, error) {
	var party []ecs.Entity
	switch {
	case env.IsGroup(hunter):
		if env.kindOf(hunter) != components.KindCarnivore {
			return false, fmt.Errorf("hunt with herd %d: %w", env.idOf(hunter), ErrInvalidGroup)
		}
		party = env.Members(hunter)
	case env.IsAnimal(hunter):
		if env.kindOf(hunter) != components.KindCarnivore {
			return false, fmt.Errorf("hunt with herbivore %d: %w", env.idOf(hunter), ErrInvalidGroup)
		}
		if env.memberMap.Get(hunter).InGroup {
			return false, fmt.Errorf("carnivore %d hunts with its pride: %w", env.idOf(hunter), ErrInvalidGroup)
		}
		party = []ecs.Entity{hunter}
	default:
		return false, fmt.Errorf("hunt %v: %w", hunter, ErrUnknownEntity)
	}
	if !env.IsPlaced(hunter) {
		return false, fmt.Errorf("hunt: %w", ErrNotPlaced)
	}

	hc := env.cfg.Hunt
	cell := env.grid.Cell(*env.posMap.Get(hunter))
	luck := hc.LuckMin + env.rng.Float64()*(hc.LuckMax-hc.LuckMin)

	for range hc.MaxAttempts {
		prey := env.fattest(cell.Herbivores)
		if prey == (ecs.Entity{}) {
			return false, nil
		}

		pride := env.IsGroup(hunter) && env.groupMap.Get(hunter).Size() >= 2
		var hunters []ecs.Entity
		var strength float64
		if pride {
			hunters = env.Members(hunter)
			strength = systems.PrideStrength(env.GroupEnergy(hunter), len(hunters), env.GroupSociality(hunter))
		} else {
			for _, c := range party {
				if env.IsAnimal(c) {
					hunters = []ecs.Entity{c}
					break
				}
			}
			if len(hunters) == 0 {
				return false, nil
			}
			solo := hunters[0]
			strength = systems.SoloStrength(env.vitalsMap.Get(solo).Energy, env.socialMap.Get(solo).Attitude)
		}
		huntID := env.idOf(hunters[0])
		if pride {
			huntID = env.idOf(hunter)
		}

		preyID := env.idOf(prey)
		preyEnergy := env.vitalsMap.Get(prey).Energy
		p := systems.HuntProbability(strength, preyEnergy, hc.Steepness, luck)

		env.record(telemetry.NewHuntAttemptEvent(env.day, huntID, preyID))
		for _, h := range hunters {
			env.lifetimes.RecordHuntAttempt(env.idOf(h))
		}

		shift := hc.SocialityShift
		if !pride {
			shift = -shift
		}

		if env.rng.Float64() < p {
			env.kill(prey, components.CausePredation)
			energies := make([]int, len(hunters))
			for i, h := range hunters {
				energies[i] = env.vitalsMap.Get(h).Energy
			}
			for i, share := range systems.SplitKill(preyEnergy, energies) {
				h := hunters[i]
				env.vitalsMap.Get(h).Gain(share)
				env.socialMap.Get(h).Shift(shift)
				env.lifetimes.RecordKill(env.idOf(h))
			}
			env.record(telemetry.NewKillEvent(env.day, huntID, preyID, preyEnergy))
			return true, nil
		}

		for _, h := range hunters {
			env.socialMap.Get(h).Shift(-shift)
			if !env.vitalsMap.Get(h).Spend(hc.FailureCost) {
				env.kill(h, components.CauseStarvation)
			}
		}
	}
	return false, nil
}

// fattest returns the highest-energy animal in list, first on ties.
func (env *Environment) fattest(list []ecs.Entity) ecs.Entity {
	var best ecs.Entity
	bestEnergy := -1
	for _, e := range list {
		if en := env.vitalsMap.Get(e).Energy; en > bestEnergy {
			best, bestEnergy = e, en
		}
	}
	return best
}

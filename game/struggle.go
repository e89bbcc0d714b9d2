package game

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/planisuss/components"
	"github.com/pthm-cable/planisuss/systems"
	"github.com/pthm-cable/planisuss/telemetry"
)

// FightOutcome reports how a fight between two carnivore sides ended.
type FightOutcome struct {
	Winner    ecs.Entity // surviving pride, zero when no pride remains
	Survivors []ecs.Entity
	Deaths    []uint32
}

// Fight pits two prides (or lone carnivores) against each other. The
// strongest of each side duel; the loser dies and the winner absorbs its
// energy. Equal energies kill both. It ends when one side is gone.
func (env *Environment) Fight(a, b ecs.Entity) (FightOutcome, error) {
	sideA, err := env.fighters(a)
	if err != nil {
		return FightOutcome{}, err
	}
	sideB, err := env.fighters(b)
	if err != nil {
		return FightOutcome{}, err
	}
	if a == b {
		return FightOutcome{}, fmt.Errorf("fight %v with itself: %w", a, ErrInvalidGroup)
	}
	if *env.posMap.Get(a) != *env.posMap.Get(b) {
		return FightOutcome{}, fmt.Errorf("fight across cells: %w", ErrInvalidGroup)
	}
	idA, idB := env.idOf(a), env.idOf(b)

	var out FightOutcome
	for len(sideA) > 0 && len(sideB) > 0 {
		fa, fb := env.strongest(sideA), env.strongest(sideB)
		va, vb := env.vitalsMap.Get(sideA[fa]), env.vitalsMap.Get(sideB[fb])
		switch systems.Duel(va.Energy, vb.Energy) {
		case systems.DuelFirst:
			va.Gain(vb.Energy)
			out.Deaths = append(out.Deaths, env.idOf(sideB[fb]))
			env.kill(sideB[fb], components.CauseCombat)
			sideB = slices.Delete(sideB, fb, fb+1)
		case systems.DuelSecond:
			vb.Gain(va.Energy)
			out.Deaths = append(out.Deaths, env.idOf(sideA[fa]))
			env.kill(sideA[fa], components.CauseCombat)
			sideA = slices.Delete(sideA, fa, fa+1)
		default:
			loserA, loserB := sideA[fa], sideB[fb]
			out.Deaths = append(out.Deaths, env.idOf(loserA), env.idOf(loserB))
			env.kill(loserA, components.CauseCombat)
			env.kill(loserB, components.CauseCombat)
			sideA = slices.Delete(sideA, fa, fa+1)
			sideB = slices.Delete(sideB, fb, fb+1)
		}
	}

	env.record(telemetry.NewGroupEvent(telemetry.EventFight, env.day, idA, components.KindCarnivore, idB))

	switch {
	case len(sideA) > 0:
		out.Survivors = sideA
		if env.IsGroup(a) {
			out.Winner = a
		}
	case len(sideB) > 0:
		out.Survivors = sideB
		if env.IsGroup(b) {
			out.Winner = b
		}
	}
	return out, nil
}

// fighters lists the carnivores that fight for e.
func (env *Environment) fighters(e ecs.Entity) ([]ecs.Entity, error) {
	switch {
	case env.IsGroup(e):
		if env.kindOf(e) != components.KindCarnivore {
			return nil, fmt.Errorf("fight with herd %d: %w", env.idOf(e), ErrInvalidGroup)
		}
		return env.Members(e), nil
	case env.IsAnimal(e):
		if env.kindOf(e) != components.KindCarnivore {
			return nil, fmt.Errorf("fight with herbivore %d: %w", env.idOf(e), ErrInvalidGroup)
		}
		if env.memberMap.Get(e).InGroup {
			return nil, fmt.Errorf("carnivore %d fights with its pride: %w", env.idOf(e), ErrInvalidGroup)
		}
		return []ecs.Entity{e}, nil
	}
	return nil, fmt.Errorf("fight %v: %w", e, ErrUnknownEntity)
}

// strongest returns the index of the highest-energy animal, first on ties.
func (env *Environment) strongest(side []ecs.Entity) int {
	best := 0
	for i := 1; i < len(side); i++ {
		if env.vitalsMap.Get(side[i]).Energy > env.vitalsMap.Get(side[best]).Energy {
			best = i
		}
	}
	return best
}

// strugglePhase settles carnivores that share a cell. A coin flip picks
// whether prides or lone carnivores are resolved first.
func (env *Environment) strugglePhase() error {
	steps := []func() error{env.resolvePrides, env.resolveLoneCarnivores}
	if env.rng.Intn(2) == 1 {
		steps[0], steps[1] = steps[1], steps[0]
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return fmt.Errorf("struggle: %w", err)
		}
	}
	return nil
}

// resolvePrides reduces every cell to at most one pride: the two largest
// prides join when sociable enough, otherwise they fight.
func (env *Environment) resolvePrides() error {
	for _, cell := range env.grid.LandCells() {
		for len(cell.Prides) >= 2 {
			prides := slices.Clone(cell.Prides)
			slices.SortStableFunc(prides, func(x, y ecs.Entity) int {
				return cmp.Compare(env.groupMap.Get(y).Size(), env.groupMap.Get(x).Size())
			})
			a, b := prides[0], prides[1]
			if env.GroupSociality(a)+env.GroupSociality(b) >= env.cfg.Struggle.JoinThreshold {
				if _, err := env.JoinGroups(a, b); err != nil {
					return err
				}
				continue
			}
			out, err := env.Fight(a, b)
			if err != nil {
				return err
			}
			env.logger.Debug("prides fought",
				"day", env.day,
				"cell", cell.Coords.String(),
				"deaths", len(out.Deaths),
				"survivors", len(out.Survivors),
			)
			// a pride left with one member has disbanded into a lone carnivore
		}
	}
	return nil
}

// resolveLoneCarnivores settles unaffiliated carnivores cell by cell. They
// join the most sociable pride present; without one they either form a
// pride or fight until a single carnivore remains.
func (env *Environment) resolveLoneCarnivores() error {
	for _, cell := range env.grid.LandCells() {
		var loners []ecs.Entity
		for _, c := range cell.Carnivores {
			if !env.memberMap.Get(c).InGroup {
				loners = append(loners, c)
			}
		}
		if len(loners) == 0 {
			continue
		}

		if len(cell.Prides) > 0 {
			pride := cell.Prides[0]
			for _, p := range cell.Prides[1:] {
				if env.GroupSociality(p) > env.GroupSociality(pride) {
					pride = p
				}
			}
			for _, c := range loners {
				if err := env.AddComponent(pride, c); err != nil {
					return err
				}
			}
			continue
		}
		if len(loners) < 2 {
			continue
		}

		var sum float64
		for _, c := range loners {
			sum += env.socialMap.Get(c).Attitude
		}
		if sum >= env.cfg.Struggle.FormRatio*float64(len(loners)) {
			env.formGroup(components.KindCarnivore, loners)
			continue
		}
		env.duelLoners(loners)
	}
	return nil
}

// duelLoners leaves one lone carnivore standing: all but the two strongest
// die, then those two duel.
func (env *Environment) duelLoners(loners []ecs.Entity) {
	slices.SortStableFunc(loners, func(x, y ecs.Entity) int {
		return cmp.Compare(env.vitalsMap.Get(y).Energy, env.vitalsMap.Get(x).Energy)
	})
	for _, c := range loners[2:] {
		env.kill(c, components.CauseCombat)
	}
	a, b := loners[0], loners[1]
	idA, idB := env.idOf(a), env.idOf(b)
	va, vb := env.vitalsMap.Get(a), env.vitalsMap.Get(b)
	switch systems.Duel(va.Energy, vb.Energy) {
	case systems.DuelFirst:
		va.Gain(vb.Energy)
		env.kill(b, components.CauseCombat)
	case systems.DuelSecond:
		vb.Gain(va.Energy)
		env.kill(a, components.CauseCombat)
	default:
		env.kill(a, components.CauseCombat)
		env.kill(b, components.CauseCombat)
	}
	env.record(telemetry.NewGroupEvent(telemetry.EventFight, env.day, idA, components.KindCarnivore, idB))
}

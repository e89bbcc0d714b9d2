package game

import (
	"fmt"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/planisuss/components"
	"github.com/pthm-cable/planisuss/systems"
	"github.com/pthm-cable/planisuss/telemetry"
)

// Plan is what an animal or group wants to do this day: members leaving
// their group, then the moves to commit once they have left.
type Plan struct {
	Group      ecs.Entity // zero for lone animals
	Departures []ecs.Entity
	Moves      []Move
}

// MoveChoice ranks the next step of a lone animal or a group. For a group,
// every member also ranks the group's destination for itself and leaves when
// its own best cell beats the destination by more than its loyalty. A group
// that would be left with a single member dissolves for the day.
func (env *Environment) MoveChoice(e ecs.Entity) (Plan, error) {
	switch {
	case env.IsAnimal(e):
		if !env.vitalsMap.Get(e).Alive {
			return Plan{}, fmt.Errorf("move choice: %w", ErrDeadAnimal)
		}
		if m := env.memberMap.Get(e); m.InGroup {
			return Plan{}, fmt.Errorf("move choice for member %d: %w", env.idOf(e), ErrInvalidGroup)
		}
		pos := *env.posMap.Get(e)
		best := env.rank(env.animalMover(e, false)).Best()
		if best.Coords == pos {
			return Plan{}, nil
		}
		return Plan{Moves: []Move{{Entity: e, To: best.Coords}}}, nil
	case env.IsGroup(e):
		return env.groupChoice(e), nil
	}
	return Plan{}, fmt.Errorf("move choice %v: %w", e, ErrUnknownEntity)
}

func (env *Environment) groupChoice(g ecs.Entity) Plan {
	plan := Plan{Group: g}
	pos := *env.posMap.Get(g)
	dest := env.rank(env.groupMover(g)).Best().Coords

	w := env.cfg.Derived.Ranking[env.kindOf(g)]
	members := env.Members(g)
	size := len(members)

	var stayers []ecs.Entity
	var leaves []Move
	for _, m := range members {
		rk := env.rank(env.animalMover(m, true))
		own := rk.Best()
		if own.Coords == dest {
			stayers = append(stayers, m)
			continue
		}
		score, _ := rk.Score(dest)
		loyalty := env.socialMap.Get(m).Attitude * w.LoyaltyWeight
		if float64(size) > rk.Tolerance {
			loyalty -= w.OversizePenalty
		}
		if score < own.Score-loyalty {
			plan.Departures = append(plan.Departures, m)
			if own.Coords != pos {
				leaves = append(leaves, Move{Entity: m, To: own.Coords})
			}
			continue
		}
		stayers = append(stayers, m)
	}

	if len(stayers) == 1 {
		plan.Departures = append(plan.Departures, stayers[0])
		stayers = nil
	}
	plan.Moves = leaves
	if len(stayers) >= 2 && dest != pos {
		plan.Moves = append(plan.Moves, Move{Entity: g, To: dest})
	}
	return plan
}

// animalMover builds the ranking view of one animal. Members rank as
// individuals but remember nothing of their own while grouped.
func (env *Environment) animalMover(e ecs.Entity, member bool) *systems.Mover {
	id := env.idMap.Get(e)
	vit := env.vitalsMap.Get(e)
	m := &systems.Mover{
		Kind:      id.Kind,
		Pos:       *env.posMap.Get(e),
		Energy:    float64(vit.Energy),
		MaxEnergy: float64(vit.MaxEnergy),
		Attitude:  env.socialMap.Get(e).Attitude,
		Size:      1,
		Radius:    env.cfg.Derived.Species[id.Kind].Neighborhood,
	}
	if id.Kind == components.KindHerbivore && !member {
		m.Escape = env.escapeMap.Get(e)
	}
	return m
}

func (env *Environment) groupMover(g ecs.Entity) *systems.Mover {
	id := env.idMap.Get(g)
	grp := env.groupMap.Get(g)
	return &systems.Mover{
		Kind:      id.Kind,
		Pos:       *env.posMap.Get(g),
		Energy:    env.GroupEnergy(g),
		MaxEnergy: float64(env.cfg.Derived.Species[id.Kind].MaxEnergy),
		Attitude:  env.GroupSociality(g),
		Size:      grp.Size(),
		Group:     true,
		Radius:    grp.Radius,
		History:   &grp.History,
	}
}

func (env *Environment) rank(m *systems.Mover) systems.Ranking {
	return systems.RankMoves(m, env.grid, systems.RankParams{
		Weights:   env.cfg.Derived.Ranking[m.Kind],
		MaxGrowth: env.cfg.Vegetation.MaxGrowth,
	}, env.rng)
}

// movementPhase plans every lone animal and group, detaches departing
// members, charges movers and commits the moves. It returns the animals that
// changed cell.
func (env *Environment) movementPhase() (map[ecs.Entity]bool, error) {
	var actors []ecs.Entity
	for _, kind := range []components.Kind{components.KindHerbivore, components.KindCarnivore} {
		for _, a := range env.animals[kind].list() {
			if !env.memberMap.Get(a).InGroup {
				actors = append(actors, a)
			}
		}
		actors = append(actors, env.groups[kind].list()...)
	}

	plans := make([]Plan, 0, len(actors))
	for _, a := range actors {
		plan, err := env.MoveChoice(a)
		if err != nil {
			return nil, err
		}
		plans = append(plans, plan)
	}

	var moves []Move
	for _, plan := range plans {
		for _, d := range plan.Departures {
			if !env.IsGroup(plan.Group) || !env.IsAnimal(d) {
				continue
			}
			if m := env.memberMap.Get(d); !m.InGroup || m.Group != plan.Group {
				continue
			}
			groupID, kind := env.idOf(plan.Group), env.kindOf(plan.Group)
			if _, err := env.RemoveComponent(plan.Group, d); err != nil {
				return nil, err
			}
			env.record(telemetry.NewGroupEvent(telemetry.EventDeparture, env.day, groupID, kind, env.idOf(d)))
		}
		moves = append(moves, plan.Moves...)
	}

	for _, mv := range moves {
		env.chargeMove(mv.Entity)
	}

	moved := make(map[ecs.Entity]bool)
	var live []Move
	for _, mv := range moves {
		switch {
		case env.IsAnimal(mv.Entity):
			if env.memberMap.Get(mv.Entity).InGroup {
				continue
			}
			moved[mv.Entity] = true
		case env.IsGroup(mv.Entity):
			members := env.groupMap.Get(mv.Entity).Members
			if len(members) < 2 {
				continue
			}
			for _, m := range members {
				moved[m] = true
			}
		default:
			continue
		}
		live = append(live, mv)
	}

	if err := env.Move(live); err != nil {
		return nil, err
	}
	env.restoreHerds()
	return moved, nil
}

// chargeMove takes the move cost from a lone mover or every member of a
// moving group; those left without energy starve on the spot.
func (env *Environment) chargeMove(e ecs.Entity) {
	var payers []ecs.Entity
	switch {
	case env.IsAnimal(e):
		payers = []ecs.Entity{e}
	case env.IsGroup(e):
		payers = env.Members(e)
	}
	for _, p := range payers {
		if !env.IsAnimal(p) {
			continue
		}
		cost := env.cfg.Derived.Species[env.kindOf(p)].MoveCost
		if !env.vitalsMap.Get(p).Spend(cost) {
			env.kill(p, components.CauseStarvation)
		}
	}
}

// restoreHerds re-applies the herd rule on every cell: loose herbivores join
// the cell's herd, or form one when two or more share a cell without one.
func (env *Environment) restoreHerds() {
	for _, cell := range env.grid.LandCells() {
		if len(cell.Herbivores) == 0 {
			continue
		}
		var loners []ecs.Entity
		for _, h := range cell.Herbivores {
			if !env.memberMap.Get(h).InGroup {
				loners = append(loners, h)
			}
		}
		switch {
		case len(loners) == 0:
		case cell.HasHerd:
			for _, h := range loners {
				env.attach(cell.Herd, h)
			}
		case len(loners) >= 2:
			env.formGroup(components.KindHerbivore, loners)
		}
	}
}

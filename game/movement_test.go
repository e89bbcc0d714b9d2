package game

import (
	"errors"
	"slices"
	"testing"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/planisuss/components"
	"github.com/pthm-cable/planisuss/config"
)

// grazersOnly makes herbivores rank cells by vegetation alone, punish
// revisits heavily and stay as loyal as their attitude allows.
func grazersOnly(cfg *config.Config) {
	cfg.Ranking.Herbivore = config.RankingConfig{
		RingDecay:           []float64{1, 0.6, 0.4},
		VegetationWeight:    1,
		BacktrackPenalty:    1000,
		LoyaltyWeight:       100,
		ToleranceIndividual: 100,
		ToleranceGroup:      100,
	}
}

func setDensities(env *Environment, densities ...int) {
	for c, d := range densities {
		env.Grid().Cell(at(0, c)).Vegetation.Density = d
	}
}

func TestMoveChoiceLoneAnimal(t *testing.T) {
	env := newTestEnv(t, 1, 3, grazersOnly)
	setDensities(env, 10, 100, 50)
	h := spawn(t, env, AnimalSpec{Kind: components.KindHerbivore, At: at(0, 0)})

	plan, err := env.MoveChoice(h)
	if err != nil {
		t.Fatalf("MoveChoice: %v", err)
	}
	want := []Move{{Entity: h, To: at(0, 1)}}
	if !slices.Equal(plan.Moves, want) || len(plan.Departures) != 0 {
		t.Errorf("plan = %+v, want moves %+v", plan, want)
	}

	// Already on the best cell: nothing to do.
	setDensities(env, 100, 10, 50)
	plan, err = env.MoveChoice(h)
	if err != nil {
		t.Fatalf("MoveChoice: %v", err)
	}
	if len(plan.Moves) != 0 {
		t.Errorf("staying animal planned moves %+v", plan.Moves)
	}
}

func TestMoveChoiceRejects(t *testing.T) {
	env := newTestEnv(t, 1, 3, nil)
	a := spawn(t, env, AnimalSpec{Kind: components.KindHerbivore, At: at(0, 0)})
	spawn(t, env, AnimalSpec{Kind: components.KindHerbivore, At: at(0, 0)})

	if _, err := env.MoveChoice(a); !errors.Is(err, ErrInvalidGroup) {
		t.Errorf("member: got %v, want ErrInvalidGroup", err)
	}
	if _, err := env.MoveChoice(ecs.Entity{}); !errors.Is(err, ErrUnknownEntity) {
		t.Errorf("zero entity: got %v, want ErrUnknownEntity", err)
	}
}

// newHerd spawns one herbivore per attitude at pos. The herd remembers
// (0,2), so as a group it will not go back there.
func newHerd(t *testing.T, env *Environment, pos components.Coords, attitudes ...float64) (ecs.Entity, []ecs.Entity) {
	t.Helper()
	var members []ecs.Entity
	for _, att := range attitudes {
		members = append(members, spawn(t, env, AnimalSpec{Kind: components.KindHerbivore, At: pos, Attitude: att}))
	}
	herd := env.Herds()[0]
	env.groupMap.Get(herd).History.Push(at(0, 2))
	return herd, members
}

func TestMoveChoiceDisloyalMemberLeaves(t *testing.T) {
	env := newTestEnv(t, 1, 3, grazersOnly)
	setDensities(env, 0, 50, 100)
	herd, m := newHerd(t, env, at(0, 1), 0, 1, 1)

	plan, err := env.MoveChoice(herd)
	if err != nil {
		t.Fatalf("MoveChoice: %v", err)
	}
	if plan.Group != herd {
		t.Errorf("plan group mismatch")
	}
	if !slices.Equal(plan.Departures, []ecs.Entity{m[0]}) {
		t.Errorf("departures = %v, want only the disloyal member", plan.Departures)
	}
	if want := []Move{{Entity: m[0], To: at(0, 2)}}; !slices.Equal(plan.Moves, want) {
		t.Errorf("moves = %+v, want %+v", plan.Moves, want)
	}
}

func TestMoveChoiceLastStayerIsEjected(t *testing.T) {
	env := newTestEnv(t, 1, 3, grazersOnly)
	setDensities(env, 0, 50, 100)
	herd, m := newHerd(t, env, at(0, 1), 0, 0, 1)

	plan, err := env.MoveChoice(herd)
	if err != nil {
		t.Fatalf("MoveChoice: %v", err)
	}
	if len(plan.Departures) != 3 || !slices.Contains(plan.Departures, m[2]) {
		t.Errorf("departures = %v, want every member", plan.Departures)
	}
	for _, mv := range plan.Moves {
		if mv.Entity == herd {
			t.Errorf("dissolving herd still plans to move")
		}
	}
}

func TestMovementPhaseAppliesDepartures(t *testing.T) {
	env := newTestEnv(t, 1, 3, grazersOnly)
	setDensities(env, 0, 50, 100)
	herd, m := newHerd(t, env, at(0, 1), 0, 1, 1)
	moveCost := env.Config().Herbivore.MoveCost

	moved, err := env.movementPhase()
	if err != nil {
		t.Fatalf("movementPhase: %v", err)
	}

	if !moved[m[0]] || moved[m[1]] || moved[m[2]] {
		t.Errorf("moved set = %v, want only the leaver", moved)
	}
	if pos, _ := env.Coords(m[0]); pos != at(0, 2) {
		t.Errorf("leaver at %s, want (0,2)", pos)
	}
	if _, grouped := env.GroupOf(m[0]); grouped {
		t.Errorf("leaver still affiliated")
	}
	if got := len(env.Members(herd)); got != 2 {
		t.Errorf("herd size = %d, want 2", got)
	}
	if got := energyOf(t, env, m[0]); got != env.Config().Herbivore.MaxEnergy-moveCost {
		t.Errorf("leaver energy = %d, want %d", got, env.Config().Herbivore.MaxEnergy-moveCost)
	}
	if got := energyOf(t, env, m[1]); got != env.Config().Herbivore.MaxEnergy {
		t.Errorf("staying member paid for a move: energy %d", got)
	}
	if stats := env.collector.Flush(env.Day(), env.census()); stats.Departures != 1 {
		t.Errorf("departures recorded = %d, want 1", stats.Departures)
	}
	mustInvariants(t, env)
}

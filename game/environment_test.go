package game

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/planisuss/components"
	"github.com/pthm-cable/planisuss/config"
	"github.com/pthm-cable/planisuss/systems"
)

func init() {
	config.MustInit("")
}

// maskTerrain is a fixed land mask; '#' is water.
type maskTerrain []string

func (m maskTerrain) Generate(rows, cols int, _ int64) [][]bool {
	land := make([][]bool, rows)
	for r := range land {
		land[r] = make([]bool, cols)
		for c := range land[r] {
			land[r][c] = m[r][c] != '#'
		}
	}
	return land
}

// newTestEnv builds a small all-land environment. tweak may adjust a private
// copy of the default configuration.
func newTestEnv(t *testing.T, rows, cols int, tweak func(*config.Config)) *Environment {
	t.Helper()
	return newTestEnvWith(t, rows, cols, systems.AllLand{}, tweak)
}

func newTestEnvWith(t *testing.T, rows, cols int, terrain systems.TerrainGenerator, tweak func(*config.Config)) *Environment {
	t.Helper()
	cfg := config.Cfg().Clone()
	cfg.World.Rows = rows
	cfg.World.Cols = cols
	if tweak != nil {
		tweak(cfg)
		cfg = cfg.Clone()
	}
	env, err := New(Options{
		Seed:    7,
		Config:  cfg,
		Terrain: terrain,
		Logger:  quietLogger(),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return env
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func spawn(t *testing.T, env *Environment, spec AnimalSpec) ecs.Entity {
	t.Helper()
	e, err := env.Spawn(spec)
	if err != nil {
		t.Fatalf("Spawn(%+v): %v", spec, err)
	}
	return e
}

func mustInvariants(t *testing.T, env *Environment) {
	t.Helper()
	if err := env.CheckInvariants(); err != nil {
		t.Fatalf("invariants: %v", err)
	}
}

func at(r, c int) components.Coords { return components.Coords{Row: r, Col: c} }

func TestSecondHerbivoreFormsHerd(t *testing.T) {
	env := newTestEnv(t, 3, 3, nil)
	a := spawn(t, env, AnimalSpec{Kind: components.KindHerbivore, At: at(1, 1), Attitude: 0.5})
	if len(env.Herds()) != 0 {
		t.Fatalf("lone herbivore formed a herd")
	}
	b := spawn(t, env, AnimalSpec{Kind: components.KindHerbivore, At: at(1, 1), Attitude: 0.5})

	herds := env.Herds()
	if len(herds) != 1 {
		t.Fatalf("herds = %d, want 1", len(herds))
	}
	cell := env.Grid().Cell(at(1, 1))
	if !cell.HasHerd || cell.Herd != herds[0] {
		t.Errorf("cell does not point at the herd")
	}
	for _, h := range []ecs.Entity{a, b} {
		if g, ok := env.GroupOf(h); !ok || g != herds[0] {
			t.Errorf("herbivore not affiliated with the herd")
		}
	}

	// A third herbivore joins the standing herd.
	spawn(t, env, AnimalSpec{Kind: components.KindHerbivore, At: at(1, 1)})
	if got := len(env.Members(herds[0])); got != 3 {
		t.Errorf("herd size = %d, want 3", got)
	}
	mustInvariants(t, env)
}

func TestCarnivoresDoNotGroupOnArrival(t *testing.T) {
	env := newTestEnv(t, 3, 3, nil)
	spawn(t, env, AnimalSpec{Kind: components.KindCarnivore, At: at(0, 0)})
	spawn(t, env, AnimalSpec{Kind: components.KindCarnivore, At: at(0, 0)})
	if len(env.Prides()) != 0 {
		t.Errorf("carnivores formed a pride on arrival")
	}
	if _, c := env.Population(); c != 2 {
		t.Errorf("carnivores = %d, want 2", c)
	}
	mustInvariants(t, env)
}

func TestMutationErrors(t *testing.T) {
	env := newTestEnvWith(t, 2, 2, maskTerrain{"..", ".#"}, nil)

	herb := spawn(t, env, AnimalSpec{Kind: components.KindHerbivore, At: at(0, 0)})
	carn := spawn(t, env, AnimalSpec{Kind: components.KindCarnivore, At: at(0, 1)})

	unplaced := env.NewAnimal(AnimalSpec{Kind: components.KindHerbivore, At: at(1, 0)})
	onWater := env.NewAnimal(AnimalSpec{Kind: components.KindHerbivore, At: at(1, 1)})
	offGrid := env.NewAnimal(AnimalSpec{Kind: components.KindCarnivore, At: at(5, 5)})

	tests := []struct {
		name string
		err  error
		want error
	}{
		{"add on water", env.Add(onWater), ErrNotLand},
		{"add off grid", env.Add(offGrid), ErrNotLand},
		{"add twice", env.Add(herb), ErrAlreadyPlaced},
		{"remove unplaced", env.Remove(unplaced), ErrNotPlaced},
		{"remove zero entity", env.Remove(ecs.Entity{}), ErrUnknownEntity},
		{"move onto water", env.Move([]Move{{Entity: herb, To: at(1, 1)}}), ErrNotLand},
		{"move unplaced", env.Move([]Move{{Entity: unplaced, To: at(0, 0)}}), ErrNotPlaced},
		{"carnivore into herd", func() error {
			_, err := env.NewGroup(components.KindHerbivore, []ecs.Entity{carn, unplaced})
			return err
		}(), ErrInvalidGroup},
		{"group of one", func() error {
			_, err := env.NewGroup(components.KindHerbivore, []ecs.Entity{unplaced})
			return err
		}(), ErrInvalidGroup},
		{"graze carnivore", func() error {
			_, err := env.Graze(carn)
			return err
		}(), ErrNotHerbivore},
		{"graze unplaced", func() error {
			_, err := env.Graze(unplaced)
			return err
		}(), ErrNotPlaced},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !errors.Is(tt.err, tt.want) {
				t.Errorf("got %v, want %v", tt.err, tt.want)
			}
		})
	}
	mustInvariants(t, env)
}

func TestStaleHandleIsUnknown(t *testing.T) {
	env := newTestEnv(t, 3, 3, nil)
	a := spawn(t, env, AnimalSpec{Kind: components.KindCarnivore, At: at(0, 0), Energy: 10})
	b := spawn(t, env, AnimalSpec{Kind: components.KindCarnivore, At: at(0, 0), Energy: 20})
	if _, err := env.Fight(a, b); err != nil {
		t.Fatalf("Fight: %v", err)
	}
	if env.IsAnimal(a) {
		t.Fatalf("loser still alive")
	}
	if err := env.Add(a); !errors.Is(err, ErrUnknownEntity) {
		t.Errorf("Add(dead) = %v, want ErrUnknownEntity", err)
	}
	if _, _, err := env.AgeStep(a, 1); !errors.Is(err, ErrDeadAnimal) {
		t.Errorf("AgeStep(dead) = %v, want ErrDeadAnimal", err)
	}
}

func TestMoveToCurrentCellIsNoop(t *testing.T) {
	env := newTestEnv(t, 3, 3, nil)
	spawn(t, env, AnimalSpec{Kind: components.KindHerbivore, At: at(1, 1)})
	spawn(t, env, AnimalSpec{Kind: components.KindHerbivore, At: at(1, 1)})
	herd := env.Herds()[0]
	before := env.Snapshot()

	for range 3 {
		if err := env.Move([]Move{{Entity: herd, To: at(1, 1)}}); err != nil {
			t.Fatalf("Move: %v", err)
		}
	}

	after := env.Snapshot()
	if len(after.Animals) != len(before.Animals) || len(after.Groups) != 1 {
		t.Fatalf("population changed: %d animals, %d groups", len(after.Animals), len(after.Groups))
	}
	if env.groupMap.Get(herd).History.Len() != 0 {
		t.Errorf("stay recorded history")
	}
	mustInvariants(t, env)
}

func TestMoveGroupCarriesMembers(t *testing.T) {
	env := newTestEnv(t, 3, 3, nil)
	a := spawn(t, env, AnimalSpec{Kind: components.KindHerbivore, At: at(1, 1)})
	b := spawn(t, env, AnimalSpec{Kind: components.KindHerbivore, At: at(1, 1)})
	herd := env.Herds()[0]

	if err := env.Move([]Move{{Entity: herd, To: at(0, 1)}}); err != nil {
		t.Fatalf("Move: %v", err)
	}

	for _, e := range []ecs.Entity{herd, a, b} {
		if pos, _ := env.Coords(e); pos != at(0, 1) {
			t.Errorf("entity at %s, want (0,1)", pos)
		}
	}
	if env.Grid().Cell(at(1, 1)).HasHerd || len(env.Grid().Cell(at(1, 1)).Herbivores) != 0 {
		t.Errorf("old cell still occupied")
	}
	if !env.groupMap.Get(herd).History.Contains(at(1, 1)) {
		t.Errorf("history does not remember the old cell")
	}
	mustInvariants(t, env)
}

func TestHerdArrivingOnHerdMerges(t *testing.T) {
	env := newTestEnv(t, 3, 3, nil)
	for range 3 {
		spawn(t, env, AnimalSpec{Kind: components.KindHerbivore, At: at(0, 0)})
	}
	for range 2 {
		spawn(t, env, AnimalSpec{Kind: components.KindHerbivore, At: at(0, 1)})
	}
	big, small := env.Grid().Cell(at(0, 0)).Herd, env.Grid().Cell(at(0, 1)).Herd

	if err := env.Move([]Move{{Entity: small, To: at(0, 0)}}); err != nil {
		t.Fatalf("Move: %v", err)
	}

	if env.IsGroup(small) {
		t.Errorf("smaller herd survived the merge")
	}
	if got := len(env.Members(big)); got != 5 {
		t.Errorf("merged herd size = %d, want 5", got)
	}
	mustInvariants(t, env)
}

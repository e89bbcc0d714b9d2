// Package game owns the ecosystem: the grid, every animal and group, and the
// day pipeline that advances them.
package game

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"slices"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/planisuss/components"
	"github.com/pthm-cable/planisuss/config"
	"github.com/pthm-cable/planisuss/systems"
	"github.com/pthm-cable/planisuss/telemetry"
)

// Sentinel errors returned by the mutation API.
var (
	ErrDeadAnimal    = errors.New("animal is dead")
	ErrNotPlaced     = errors.New("entity is not placed")
	ErrAlreadyPlaced = errors.New("entity is already placed")
	ErrNotLand       = errors.New("coordinates are not land")
	ErrUnknownEntity = errors.New("unknown entity")
	ErrInvalidGroup  = errors.New("invalid group operation")
	ErrNotHerbivore  = errors.New("only herbivores graze")
	ErrInvariant     = errors.New("invariant violated")
)

// Options configures a new Environment.
type Options struct {
	Seed    int64
	Config  *config.Config           // nil uses config.Cfg()
	Terrain systems.TerrainGenerator // nil uses fBm terrain from Config
	Logger  *slog.Logger             // nil uses slog.Default()

	// Observation
	Output        *telemetry.OutputManager
	SnapshotDir   string
	SnapshotEvery int // days between periodic snapshots (0 = only on bookmarks)
	LogStats      bool
	StatsCallback func(telemetry.DayStats)
}

// Environment is the single authority over where animals and groups live.
// Animals and groups are ark entities; cells and groups refer to them by handle.
type Environment struct {
	cfg    *config.Config
	world  *ecs.World
	rng    *rand.Rand
	seed   int64
	logger *slog.Logger

	animalMapper *ecs.Map6[
		components.Identity,
		components.Coords,
		components.Vitals,
		components.Social,
		components.Escape,
		components.Membership,
	]
	animalFilter *ecs.Filter6[
		components.Identity,
		components.Coords,
		components.Vitals,
		components.Social,
		components.Escape,
		components.Membership,
	]
	groupMapper *ecs.Map3[components.Identity, components.Coords, components.Group]
	groupFilter *ecs.Filter3[components.Identity, components.Coords, components.Group]

	// Individual component mappers for lookups
	idMap     *ecs.Map[components.Identity]
	posMap    *ecs.Map[components.Coords]
	vitalsMap *ecs.Map[components.Vitals]
	socialMap *ecs.Map[components.Social]
	escapeMap *ecs.Map[components.Escape]
	memberMap *ecs.Map[components.Membership]
	groupMap  *ecs.Map[components.Group]

	grid   *systems.Grid
	phases *systems.PhaseRegistry

	// Placed entities by kind, in insertion order
	animals [2]*roster
	groups  [2]*roster

	day    int
	nextID uint32
	deaths []components.DeadCreature

	// Telemetry
	collector        *telemetry.Collector
	perf             *telemetry.PerfCollector
	lifetimes        *telemetry.LifetimeTracker
	bookmarkDetector *telemetry.BookmarkDetector
	lastStats        telemetry.DayStats

	output        *telemetry.OutputManager
	snapshotDir   string
	snapshotEvery int
	logStats      bool
	statsCallback func(telemetry.DayStats)
}

// New builds an environment: terrain, grid and vegetation, with no animals.
func New(opts Options) (*Environment, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Cfg()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	terrain := opts.Terrain
	if terrain == nil {
		terrain = systems.NewFBMTerrain(cfg.Terrain)
	}

	rng := rand.New(rand.NewSource(opts.Seed))
	land := terrain.Generate(cfg.World.Rows, cfg.World.Cols, opts.Seed)
	grid, err := systems.NewGrid(land, cfg.Vegetation, rng)
	if err != nil {
		return nil, fmt.Errorf("building grid: %w", err)
	}

	world := ecs.NewWorld()
	env := &Environment{
		cfg:    cfg,
		world:  world,
		rng:    rng,
		seed:   opts.Seed,
		logger: logger,
		animalMapper: ecs.NewMap6[
			components.Identity,
			components.Coords,
			components.Vitals,
			components.Social,
			components.Escape,
			components.Membership,
		](world),
		animalFilter: ecs.NewFilter6[
			components.Identity,
			components.Coords,
			components.Vitals,
			components.Social,
			components.Escape,
			components.Membership,
		](world),
		groupMapper: ecs.NewMap3[components.Identity, components.Coords, components.Group](world),
		groupFilter: ecs.NewFilter3[components.Identity, components.Coords, components.Group](world),
		idMap:       ecs.NewMap[components.Identity](world),
		posMap:      ecs.NewMap[components.Coords](world),
		vitalsMap:   ecs.NewMap[components.Vitals](world),
		socialMap:   ecs.NewMap[components.Social](world),
		escapeMap:   ecs.NewMap[components.Escape](world),
		memberMap:   ecs.NewMap[components.Membership](world),
		groupMap:    ecs.NewMap[components.Group](world),
		grid:        grid,
		phases:      systems.NewPhaseRegistry(),
		nextID:      1, // 0 means "no group" in snapshots

		collector:        telemetry.NewCollector(cfg.Telemetry.StatsWindow),
		perf:             telemetry.NewPerfCollector(cfg.Telemetry.PerfWindow),
		lifetimes:        telemetry.NewLifetimeTracker(),
		bookmarkDetector: telemetry.NewBookmarkDetector(cfg.Telemetry.BookmarkHistorySize, cfg.Bookmarks),

		output:        opts.Output,
		snapshotDir:   opts.SnapshotDir,
		snapshotEvery: opts.SnapshotEvery,
		logStats:      opts.LogStats,
		statsCallback: opts.StatsCallback,
	}
	if env.snapshotEvery == 0 {
		env.snapshotEvery = cfg.Telemetry.SnapshotEvery
	}
	for k := range env.animals {
		env.animals[k] = newRoster()
		env.groups[k] = newRoster()
	}

	logger.Info("environment created",
		"seed", opts.Seed,
		"rows", grid.Rows(),
		"cols", grid.Cols(),
		"land_cells", len(grid.LandCells()),
	)
	return env, nil
}

// Day returns the number of completed days.
func (env *Environment) Day() int { return env.day }

// Seed returns the seed the environment was built with.
func (env *Environment) Seed() int64 { return env.seed }

// Grid returns the world grid. Callers must not edit occupant lists.
func (env *Environment) Grid() *systems.Grid { return env.grid }

// Config returns the environment's configuration.
func (env *Environment) Config() *config.Config { return env.cfg }

// Herbivores returns every placed herbivore in registry order.
func (env *Environment) Herbivores() []ecs.Entity {
	return env.animals[components.KindHerbivore].list()
}

// Carnivores returns every placed carnivore in registry order.
func (env *Environment) Carnivores() []ecs.Entity {
	return env.animals[components.KindCarnivore].list()
}

// Herds returns every placed herd in registry order.
func (env *Environment) Herds() []ecs.Entity {
	return env.groups[components.KindHerbivore].list()
}

// Prides returns every placed pride in registry order.
func (env *Environment) Prides() []ecs.Entity {
	return env.groups[components.KindCarnivore].list()
}

// Population returns the number of placed animals of each kind.
func (env *Environment) Population() (herbivores, carnivores int) {
	return env.animals[components.KindHerbivore].len(), env.animals[components.KindCarnivore].len()
}

// Deaths returns the tombstones still within their retention window.
func (env *Environment) Deaths() []components.DeadCreature {
	return slices.Clone(env.deaths)
}

// LastStats returns the most recently flushed statistics window.
func (env *Environment) LastStats() telemetry.DayStats { return env.lastStats }

// IsAnimal reports whether e is a live animal entity.
func (env *Environment) IsAnimal(e ecs.Entity) bool {
	return e != (ecs.Entity{}) && env.world.Alive(e) && env.vitalsMap.Has(e)
}

// IsGroup reports whether e is a standing group entity.
func (env *Environment) IsGroup(e ecs.Entity) bool {
	return e != (ecs.Entity{}) && env.world.Alive(e) && env.groupMap.Has(e)
}

// Identity returns the id and kind of an animal or group.
func (env *Environment) Identity(e ecs.Entity) (components.Identity, bool) {
	if !env.IsAnimal(e) && !env.IsGroup(e) {
		return components.Identity{}, false
	}
	return *env.idMap.Get(e), true
}

// Coords returns where an animal or group stands.
func (env *Environment) Coords(e ecs.Entity) (components.Coords, bool) {
	if !env.IsAnimal(e) && !env.IsGroup(e) {
		return components.Coords{}, false
	}
	return *env.posMap.Get(e), true
}

// Vitals returns a copy of an animal's vitals.
func (env *Environment) Vitals(e ecs.Entity) (components.Vitals, bool) {
	if !env.IsAnimal(e) {
		return components.Vitals{}, false
	}
	return *env.vitalsMap.Get(e), true
}

// Attitude returns an animal's social attitude.
func (env *Environment) Attitude(e ecs.Entity) (float64, bool) {
	if !env.IsAnimal(e) {
		return 0, false
	}
	return env.socialMap.Get(e).Attitude, true
}

// GroupOf returns the group an animal belongs to.
func (env *Environment) GroupOf(e ecs.Entity) (ecs.Entity, bool) {
	if !env.IsAnimal(e) {
		return ecs.Entity{}, false
	}
	m := env.memberMap.Get(e)
	return m.Group, m.InGroup
}

// Members returns a copy of a group's member list.
func (env *Environment) Members(g ecs.Entity) []ecs.Entity {
	if !env.IsGroup(g) {
		return nil
	}
	return slices.Clone(env.groupMap.Get(g).Members)
}

// IsPlaced reports whether an animal or group is registered in the world.
func (env *Environment) IsPlaced(e ecs.Entity) bool {
	switch {
	case env.IsAnimal(e):
		return env.animals[env.idMap.Get(e).Kind].has(e)
	case env.IsGroup(e):
		return env.groups[env.idMap.Get(e).Kind].has(e)
	}
	return false
}

func (env *Environment) allocID() uint32 {
	id := env.nextID
	env.nextID++
	return id
}

func (env *Environment) kindOf(e ecs.Entity) components.Kind {
	return env.idMap.Get(e).Kind
}

func (env *Environment) idOf(e ecs.Entity) uint32 {
	return env.idMap.Get(e).ID
}

func (env *Environment) record(ev telemetry.Event) {
	env.collector.Record(ev)
}

// roster is an ordered set of entity handles. Removal preserves order so
// registry iteration stays deterministic.
type roster struct {
	items []ecs.Entity
	index map[ecs.Entity]int
}

func newRoster() *roster {
	return &roster{index: make(map[ecs.Entity]int)}
}

func (r *roster) add(e ecs.Entity) bool {
	if _, ok := r.index[e]; ok {
		return false
	}
	r.index[e] = len(r.items)
	r.items = append(r.items, e)
	return true
}

func (r *roster) remove(e ecs.Entity) bool {
	i, ok := r.index[e]
	if !ok {
		return false
	}
	delete(r.index, e)
	r.items = slices.Delete(r.items, i, i+1)
	for j := i; j < len(r.items); j++ {
		r.index[r.items[j]] = j
	}
	return true
}

func (r *roster) has(e ecs.Entity) bool {
	_, ok := r.index[e]
	return ok
}

func (r *roster) len() int { return len(r.items) }

func (r *roster) list() []ecs.Entity { return slices.Clone(r.items) }

package game

import (
	"cmp"
	"slices"

	"github.com/pthm-cable/planisuss/components"
	"github.com/pthm-cable/planisuss/telemetry"
)

// flushTelemetry closes the stats window when due and handles bookmarks and
// periodic snapshots.
func (env *Environment) flushTelemetry() {
	if !env.collector.ShouldFlush(env.day) {
		return
	}

	stats := env.collector.Flush(env.day, env.census())
	perfStats := env.perf.Stats()

	if env.statsCallback != nil {
		env.statsCallback(stats)
	}

	if env.logStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	if err := env.output.WriteStats(stats); err != nil {
		env.logger.Error("failed to write stats", "error", err)
	}
	if err := env.output.WritePerf(perfStats, env.day); err != nil {
		env.logger.Error("failed to write perf", "error", err)
	}

	for _, bm := range env.bookmarkDetector.Check(stats) {
		if env.logStats {
			bm.LogBookmark()
		}
		if err := env.output.WriteBookmark(bm); err != nil {
			env.logger.Error("failed to write bookmark", "error", err)
		}
		if env.snapshotDir != "" {
			env.saveSnapshot(&bm)
		}
	}

	if env.snapshotDir != "" && env.snapshotEvery > 0 && env.day%env.snapshotEvery == 0 {
		env.saveSnapshot(nil)
	}

	env.lastStats = stats
}

// census samples population, energy and attitude distributions. It also
// feeds current energies to the lifetime tracker.
func (env *Environment) census() telemetry.Census {
	var c telemetry.Census

	query := env.animalFilter.Query()
	for query.Next() {
		id, _, vit, social, _, _ := query.Get()
		if !vit.Alive {
			continue
		}
		energy, attitude := float64(vit.Energy), social.Attitude
		if id.Kind == components.KindHerbivore {
			c.HerbivoreEnergies = append(c.HerbivoreEnergies, energy)
			c.HerbivoreAttitudes = append(c.HerbivoreAttitudes, attitude)
		} else {
			c.CarnivoreEnergies = append(c.CarnivoreEnergies, energy)
			c.CarnivoreAttitudes = append(c.CarnivoreAttitudes, attitude)
		}
		env.lifetimes.UpdateEnergy(id.ID, vit.Energy)
	}

	c.Herbivores, c.Carnivores = env.Population()
	for _, h := range env.Herds() {
		c.HerdSizes = append(c.HerdSizes, env.groupMap.Get(h).Size())
	}
	for _, p := range env.Prides() {
		c.PrideSizes = append(c.PrideSizes, env.groupMap.Get(p).Size())
	}
	c.MeanVegetation = env.grid.MeanDensity()
	return c
}

// saveSnapshot writes the current state to the snapshot directory.
func (env *Environment) saveSnapshot(bookmark *telemetry.Bookmark) {
	snap := env.Snapshot()
	snap.Bookmark = bookmark

	path, err := telemetry.SaveSnapshot(snap, env.snapshotDir)
	if err != nil {
		env.logger.Error("failed to save snapshot", "error", err)
		return
	}
	env.logger.Info("snapshot saved", "path", path, "day", env.day)
}

// Snapshot builds a read-only copy of the whole ecosystem. Animals and groups
// are ordered by id.
func (env *Environment) Snapshot() *telemetry.Snapshot {
	snap := &telemetry.Snapshot{
		Version: telemetry.SnapshotVersion,
		Seed:    env.seed,
		Day:     env.day,
		Rows:    env.grid.Rows(),
		Cols:    env.grid.Cols(),
		Deaths:  env.Deaths(),
	}

	for _, cell := range env.grid.Cells() {
		cs := telemetry.CellState{Row: cell.Coords.Row, Col: cell.Coords.Col, Land: cell.IsLand()}
		if cs.Land {
			cs.Density = cell.Vegetation.Density
		}
		snap.Cells = append(snap.Cells, cs)
	}

	query := env.animalFilter.Query()
	for query.Next() {
		id, pos, vit, social, _, member := query.Get()
		if !vit.Alive || !env.animals[id.Kind].has(query.Entity()) {
			continue
		}
		state := telemetry.AnimalState{
			ID:       id.ID,
			Kind:     id.Kind,
			Row:      pos.Row,
			Col:      pos.Col,
			Energy:   vit.Energy,
			Age:      vit.Age,
			Lifetime: vit.Lifetime,
			Attitude: social.Attitude,
		}
		if member.InGroup {
			state.GroupID = env.idMap.Get(member.Group).ID
		}
		if ls := env.lifetimes.Get(id.ID); ls != nil {
			copied := *ls
			state.Stats = &copied
		}
		snap.Animals = append(snap.Animals, state)
	}

	groups := env.groupFilter.Query()
	for groups.Next() {
		id, pos, grp := groups.Get()
		if !env.groups[id.Kind].has(groups.Entity()) {
			continue
		}
		state := telemetry.GroupState{ID: id.ID, Kind: id.Kind, Row: pos.Row, Col: pos.Col}
		for _, m := range grp.Members {
			state.Members = append(state.Members, env.idMap.Get(m).ID)
		}
		snap.Groups = append(snap.Groups, state)
	}

	slices.SortFunc(snap.Animals, func(a, b telemetry.AnimalState) int { return cmp.Compare(a.ID, b.ID) })
	slices.SortFunc(snap.Groups, func(a, b telemetry.GroupState) int { return cmp.Compare(a.ID, b.ID) })
	return snap
}

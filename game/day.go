package game

import (
	"fmt"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/planisuss/telemetry"
)

// NextDay advances the ecosystem by one day: growth, movement, grazing,
// struggle, hunting, then aging and reproduction, followed by bookkeeping.
// It returns the statistics of the most recently closed window, which is
// today's when the window is one day long.
func (env *Environment) NextDay() (telemetry.DayStats, error) {
	env.day++
	env.perf.StartDay()

	var moved map[ecs.Entity]bool
	for _, phase := range env.phases.IDs() {
		env.perf.StartPhase(phase)
		var err error
		switch phase {
		case telemetry.PhaseGrowth:
			env.grid.GrowAll(env.cfg.Vegetation.Growing, env.cfg.Vegetation.MaxGrowth)
		case telemetry.PhaseMovement:
			moved, err = env.movementPhase()
		case telemetry.PhaseGrazing:
			err = env.grazingPhase(moved)
		case telemetry.PhaseStruggle:
			err = env.strugglePhase()
		case telemetry.PhaseHunt:
			err = env.huntingPhase()
		case telemetry.PhaseAging:
			err = env.agingPhase()
		case telemetry.PhaseTelemetry:
			env.pruneTombstones()
			env.flushTelemetry()
		}
		if err != nil {
			env.perf.EndDay()
			return env.lastStats, fmt.Errorf("day %d, %s: %w", env.day, env.phases.GetName(phase), err)
		}
	}
	env.perf.EndDay()

	if env.cfg.Debug.CheckInvariants {
		if err := env.CheckInvariants(); err != nil {
			return env.lastStats, fmt.Errorf("day %d: %w", env.day, err)
		}
	}
	return env.lastStats, nil
}

// Run advances up to days days, stopping early once both species are gone.
// It returns the number of days simulated.
func (env *Environment) Run(days int) (int, error) {
	for i := range days {
		if _, err := env.NextDay(); err != nil {
			return i, err
		}
		if h, c := env.Population(); h == 0 && c == 0 {
			env.logger.Info("ecosystem extinct", "day", env.day)
			return i + 1, nil
		}
	}
	return days, nil
}

// pruneTombstones forgets deaths older than the retention window.
func (env *Environment) pruneTombstones() {
	keep := env.cfg.World.TombstoneDays
	for _, cell := range env.grid.LandCells() {
		if len(cell.Dead) > 0 {
			cell.PruneDead(env.day, keep)
		}
	}
	kept := env.deaths[:0]
	for _, d := range env.deaths {
		if env.day-d.Day < keep {
			kept = append(kept, d)
		}
	}
	clear(env.deaths[len(kept):])
	env.deaths = kept
}

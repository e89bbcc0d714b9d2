package telemetry

import "github.com/pthm-cable/planisuss/components"

// Census is the population state sampled when a window is flushed.
type Census struct {
	Herbivores int
	Carnivores int
	HerdSizes  []int
	PrideSizes []int

	HerbivoreEnergies  []float64
	CarnivoreEnergies  []float64
	HerbivoreAttitudes []float64
	CarnivoreAttitudes []float64

	MeanVegetation float64
}

// Collector accumulates events within day windows and produces DayStats.
type Collector struct {
	windowDays int

	// Current window tracking
	windowStartDay int

	// Event counters for current window
	births       [2]int
	deaths       [2]int
	causes       map[components.DeathCause]int
	lifespans    []float64
	huntAttempts int
	kills        int
	formed       [2]int
	merges       int
	disbands     int
	fights       int
	departures   int
	grazed       int
}

// NewCollector creates a new stats collector that flushes every windowDays.
func NewCollector(windowDays int) *Collector {
	if windowDays < 1 {
		windowDays = 1
	}
	return &Collector{
		windowDays: windowDays,
		causes:     make(map[components.DeathCause]int),
	}
}

// Record counts an event in the current window.
func (c *Collector) Record(ev Event) {
	switch ev.Type {
	case EventBirth:
		c.births[ev.Kind]++
	case EventDeath:
		c.deaths[ev.Kind]++
		c.causes[ev.Cause]++
	case EventHuntAttempt:
		c.huntAttempts++
	case EventKill:
		c.kills++
	case EventGraze:
		c.grazed += ev.Amount
	case EventGroupFormed:
		c.formed[ev.Kind]++
	case EventGroupMerged:
		c.merges++
	case EventGroupDisbanded:
		c.disbands++
	case EventFight:
		c.fights++
	case EventDeparture:
		c.departures++
	}
}

// RecordLifespan records the age of an animal that died in this window.
func (c *Collector) RecordLifespan(age int) {
	c.lifespans = append(c.lifespans, float64(age))
}

// ShouldFlush returns true if enough days have passed to flush the window.
func (c *Collector) ShouldFlush(day int) bool {
	return day-c.windowStartDay >= c.windowDays
}

// Flush produces a DayStats and resets counters for the next window.
func (c *Collector) Flush(day int, census Census) DayStats {
	var killRate float64
	if c.huntAttempts > 0 {
		killRate = float64(c.kills) / float64(c.huntAttempts)
	}

	herbEnergy := ComputeDistribution(census.HerbivoreEnergies)
	carnEnergy := ComputeDistribution(census.CarnivoreEnergies)
	herbAttitude := ComputeDistribution(census.HerbivoreAttitudes)
	carnAttitude := ComputeDistribution(census.CarnivoreAttitudes)

	stats := DayStats{
		WindowStartDay: c.windowStartDay,
		Day:            day,

		Herbivores:    census.Herbivores,
		Carnivores:    census.Carnivores,
		Herds:         len(census.HerdSizes),
		Prides:        len(census.PrideSizes),
		MeanHerdSize:  meanSize(census.HerdSizes),
		MeanPrideSize: meanSize(census.PrideSizes),

		HerbivoreBirths: c.births[components.KindHerbivore],
		CarnivoreBirths: c.births[components.KindCarnivore],
		HerbivoreDeaths: c.deaths[components.KindHerbivore],
		CarnivoreDeaths: c.deaths[components.KindCarnivore],
		Starved:         c.causes[components.CauseStarvation],
		DiedOfAge:       c.causes[components.CauseOldAge],
		Preyed:          c.causes[components.CausePredation],
		Fallen:          c.causes[components.CauseCombat],
		MeanLifespan:    ComputeDistribution(c.lifespans).Mean,

		HuntAttempts: c.huntAttempts,
		Kills:        c.kills,
		KillRate:     killRate,

		HerdsFormed:  c.formed[components.KindHerbivore],
		PridesFormed: c.formed[components.KindCarnivore],
		Merges:       c.merges,
		Disbands:     c.disbands,
		Fights:       c.fights,
		Departures:   c.departures,

		HerbEnergyMean: herbEnergy.Mean,
		HerbEnergyP10:  herbEnergy.P10,
		HerbEnergyP50:  herbEnergy.P50,
		HerbEnergyP90:  herbEnergy.P90,

		CarnEnergyMean: carnEnergy.Mean,
		CarnEnergyP10:  carnEnergy.P10,
		CarnEnergyP50:  carnEnergy.P50,
		CarnEnergyP90:  carnEnergy.P90,

		HerbAttitudeMean: herbAttitude.Mean,
		HerbAttitudeStd:  herbAttitude.Std,
		CarnAttitudeMean: carnAttitude.Mean,
		CarnAttitudeStd:  carnAttitude.Std,

		MeanVegetation: census.MeanVegetation,
		Grazed:         c.grazed,
	}

	// Reset for next window
	c.windowStartDay = day
	c.births = [2]int{}
	c.deaths = [2]int{}
	clear(c.causes)
	c.lifespans = c.lifespans[:0]
	c.huntAttempts = 0
	c.kills = 0
	c.formed = [2]int{}
	c.merges = 0
	c.disbands = 0
	c.fights = 0
	c.departures = 0
	c.grazed = 0

	return stats
}

// WindowDays returns the number of days per window.
func (c *Collector) WindowDays() int {
	return c.windowDays
}

func meanSize(sizes []int) float64 {
	if len(sizes) == 0 {
		return 0
	}
	total := 0
	for _, s := range sizes {
		total += s
	}
	return float64(total) / float64(len(sizes))
}

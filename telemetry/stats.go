package telemetry

import (
	"log/slog"
	"slices"

	"gonum.org/v1/gonum/stat"
)

// DayStats holds aggregated statistics for a stats window ending on Day.
type DayStats struct {
	WindowStartDay int `csv:"-"`
	Day            int `csv:"day"`

	// Population at window end
	Herbivores    int     `csv:"herbivores"`
	Carnivores    int     `csv:"carnivores"`
	Herds         int     `csv:"herds"`
	Prides        int     `csv:"prides"`
	MeanHerdSize  float64 `csv:"mean_herd_size"`
	MeanPrideSize float64 `csv:"mean_pride_size"`

	// Events during window
	HerbivoreBirths int     `csv:"herbivore_births"`
	CarnivoreBirths int     `csv:"carnivore_births"`
	HerbivoreDeaths int     `csv:"herbivore_deaths"`
	CarnivoreDeaths int     `csv:"carnivore_deaths"`
	Starved         int     `csv:"deaths_starvation"`
	DiedOfAge       int     `csv:"deaths_old_age"`
	Preyed          int     `csv:"deaths_predation"`
	Fallen          int     `csv:"deaths_combat"`
	MeanLifespan    float64 `csv:"mean_lifespan"`

	// Hunting
	HuntAttempts int     `csv:"hunt_attempts"`
	Kills        int     `csv:"kills"`
	KillRate     float64 `csv:"kill_rate"`

	// Social restructuring
	HerdsFormed  int `csv:"herds_formed"`
	PridesFormed int `csv:"prides_formed"`
	Merges       int `csv:"merges"`
	Disbands     int `csv:"disbands"`
	Fights       int `csv:"fights"`
	Departures   int `csv:"departures"`

	// Energy distribution (sampled at window end)
	HerbEnergyMean float64 `csv:"herbivore_energy_mean"`
	HerbEnergyP10  float64 `csv:"herbivore_energy_p10"`
	HerbEnergyP50  float64 `csv:"herbivore_energy_p50"`
	HerbEnergyP90  float64 `csv:"herbivore_energy_p90"`

	CarnEnergyMean float64 `csv:"carnivore_energy_mean"`
	CarnEnergyP10  float64 `csv:"carnivore_energy_p10"`
	CarnEnergyP50  float64 `csv:"carnivore_energy_p50"`
	CarnEnergyP90  float64 `csv:"carnivore_energy_p90"`

	// Attitude distribution
	HerbAttitudeMean float64 `csv:"herbivore_attitude_mean"`
	HerbAttitudeStd  float64 `csv:"herbivore_attitude_std"`
	CarnAttitudeMean float64 `csv:"carnivore_attitude_mean"`
	CarnAttitudeStd  float64 `csv:"carnivore_attitude_std"`

	// Vegetation
	MeanVegetation float64 `csv:"mean_vegetation"`
	Grazed         int     `csv:"grazed"`
}

// Distribution summarises a sample.
type Distribution struct {
	Mean, Std     float64
	P10, P50, P90 float64
}

// ComputeDistribution calculates mean, standard deviation and empirical
// quantiles. An empty sample yields zeros.
func ComputeDistribution(values []float64) Distribution {
	n := len(values)
	if n == 0 {
		return Distribution{}
	}

	sorted := slices.Clone(values)
	slices.Sort(sorted)

	var d Distribution
	if n > 1 {
		d.Mean, d.Std = stat.MeanStdDev(sorted, nil)
	} else {
		d.Mean = sorted[0]
	}
	d.P10 = stat.Quantile(0.10, stat.Empirical, sorted, nil)
	d.P50 = stat.Quantile(0.50, stat.Empirical, sorted, nil)
	d.P90 = stat.Quantile(0.90, stat.Empirical, sorted, nil)
	return d
}

// LogValue implements slog.LogValuer for structured logging.
func (s DayStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_start", s.WindowStartDay),
		slog.Int("day", s.Day),
		slog.Int("herbivores", s.Herbivores),
		slog.Int("carnivores", s.Carnivores),
		slog.Int("herds", s.Herds),
		slog.Int("prides", s.Prides),
		slog.Float64("mean_herd_size", s.MeanHerdSize),
		slog.Float64("mean_pride_size", s.MeanPrideSize),
		slog.Int("herbivore_births", s.HerbivoreBirths),
		slog.Int("carnivore_births", s.CarnivoreBirths),
		slog.Int("herbivore_deaths", s.HerbivoreDeaths),
		slog.Int("carnivore_deaths", s.CarnivoreDeaths),
		slog.Int("hunt_attempts", s.HuntAttempts),
		slog.Int("kills", s.Kills),
		slog.Float64("kill_rate", s.KillRate),
		slog.Int("merges", s.Merges),
		slog.Int("fights", s.Fights),
		slog.Float64("herbivore_energy_mean", s.HerbEnergyMean),
		slog.Float64("carnivore_energy_mean", s.CarnEnergyMean),
		slog.Float64("mean_vegetation", s.MeanVegetation),
	)
}

// LogStats logs the day stats using slog.
func (s DayStats) LogStats() {
	slog.Info("stats",
		"day", s.Day,
		"herbivores", s.Herbivores,
		"carnivores", s.Carnivores,
		"herds", s.Herds,
		"prides", s.Prides,
		"mean_herd_size", s.MeanHerdSize,
		"mean_pride_size", s.MeanPrideSize,
		"herbivore_births", s.HerbivoreBirths,
		"carnivore_births", s.CarnivoreBirths,
		"herbivore_deaths", s.HerbivoreDeaths,
		"carnivore_deaths", s.CarnivoreDeaths,
		"deaths_starvation", s.Starved,
		"deaths_old_age", s.DiedOfAge,
		"deaths_predation", s.Preyed,
		"deaths_combat", s.Fallen,
		"hunt_attempts", s.HuntAttempts,
		"kills", s.Kills,
		"kill_rate", s.KillRate,
		"herds_formed", s.HerdsFormed,
		"prides_formed", s.PridesFormed,
		"merges", s.Merges,
		"disbands", s.Disbands,
		"fights", s.Fights,
		"departures", s.Departures,
		"herbivore_energy_mean", s.HerbEnergyMean,
		"herbivore_energy_p50", s.HerbEnergyP50,
		"carnivore_energy_mean", s.CarnEnergyMean,
		"carnivore_energy_p50", s.CarnEnergyP50,
		"herbivore_attitude_mean", s.HerbAttitudeMean,
		"carnivore_attitude_mean", s.CarnAttitudeMean,
		"mean_vegetation", s.MeanVegetation,
		"grazed", s.Grazed,
	)
}

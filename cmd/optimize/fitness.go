package main

import (
	"io"
	"log/slog"
	"math"
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/planisuss/config"
	"github.com/pthm-cable/planisuss/game"
	"github.com/pthm-cable/planisuss/telemetry"
)

// FitnessEvaluator runs simulations and computes fitness.
type FitnessEvaluator struct {
	params     *ParamVector
	maxDays    int
	seeds      []int64
	baseConfig *config.Config
	logger     *slog.Logger

	mu          sync.Mutex
	lastQuality float64 // quality from most recent Evaluate call
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, maxDays int, seeds []int64, baseCfg *config.Config) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:     params,
		maxDays:    maxDays,
		seeds:      seeds,
		baseConfig: baseCfg,
		logger:     slog.New(slog.NewJSONHandler(io.Discard, nil)),
	}
}

// LastQuality returns the quality score from the most recent evaluation.
func (fe *FitnessEvaluator) LastQuality() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastQuality
}

// A species below this population for extinctionGraceDays consecutive days
// counts as functionally extinct.
const (
	minViablePop        = 3
	extinctionGraceDays = 30
	warmupDays          = 10
)

// runResult holds the results from a single simulation run.
type runResult struct {
	survivalDays int
	dayStats     []telemetry.DayStats // collected via StatsCallback each window
}

// seedResult holds the result from one seed evaluation.
type seedResult struct {
	fitness float64
	quality float64
}

// Evaluate computes fitness for a parameter vector (lower = better).
// Seeds run in parallel; each owns its environment.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	cfg := fe.params.ApplyToConfig(fe.baseConfig.Clone(), x)

	results := make([]seedResult, len(fe.seeds))
	var wg sync.WaitGroup
	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			result := fe.runSimulation(cfg.Clone(), s)
			quality := computeQuality(result.dayStats)
			results[idx] = seedResult{
				fitness: computeFitness(result.survivalDays, quality),
				quality: quality,
			}
		}(i, seed)
	}
	wg.Wait()

	var totalFitness, totalQuality float64
	for _, r := range results {
		totalFitness += r.fitness
		totalQuality += r.quality
	}
	n := float64(len(fe.seeds))

	fe.mu.Lock()
	fe.lastQuality = totalQuality / n
	fe.mu.Unlock()

	return totalFitness / n
}

// runSimulation executes a single run until functional extinction or maxDays.
func (fe *FitnessEvaluator) runSimulation(cfg *config.Config, seed int64) *runResult {
	result := &runResult{}
	cfg.Debug.CheckInvariants = false

	env, err := game.New(game.Options{
		Seed:   seed,
		Config: cfg,
		Logger: fe.logger,
		StatsCallback: func(stats telemetry.DayStats) {
			result.dayStats = append(result.dayStats, stats)
		},
	})
	if err != nil {
		return result
	}
	if err := env.Populate(cfg.Population.Herbivores, cfg.Population.Carnivores); err != nil {
		return result
	}

	var herbBelow, carnBelow int
	for env.Day() < fe.maxDays {
		if _, err := env.NextDay(); err != nil {
			break
		}
		day := env.Day()
		herb, carn := env.Population()

		// Hard extinction: either species completely gone
		if herb == 0 || carn == 0 {
			result.survivalDays = day
			return result
		}
		if day < warmupDays {
			continue
		}

		herbBelow = countBelow(herbBelow, herb)
		carnBelow = countBelow(carnBelow, carn)
		if herbBelow >= extinctionGraceDays || carnBelow >= extinctionGraceDays {
			result.survivalDays = day
			return result
		}
	}

	result.survivalDays = env.Day()
	return result
}

func countBelow(streak, pop int) int {
	if pop < minViablePop {
		return streak + 1
	}
	return 0
}

// computeFitness calculates the scalar fitness (lower = better):
// -(survivalDays × (1 + 0.2 × quality)).
func computeFitness(survivalDays int, quality float64) float64 {
	return -(float64(survivalDays) * (1.0 + 0.2*quality))
}

// Quality component weights.
const (
	qualityWeightRatio     = 0.30
	qualityWeightStability = 0.25
	qualityWeightEnergy    = 0.25
	qualityWeightHunting   = 0.20

	qualityWarmupWindows = 3 // skip first N windows (warmup)
	qualityMinPop        = 3 // exclude windows where either species < this
	targetRatio          = 5.0
	targetKillRate       = 0.3
	targetEnergy         = 60.0
)

// computeQuality computes ecosystem quality in [0, 1] from window stats.
func computeQuality(windows []telemetry.DayStats) float64 {
	if len(windows) <= qualityWarmupWindows {
		return 0
	}

	var ratioSum, energySum, huntSum float64
	var ratioCount, huntCount int
	var herbCounts, carnCounts []float64

	for _, w := range windows[qualityWarmupWindows:] {
		if w.Herbivores < qualityMinPop || w.Carnivores < qualityMinPop {
			continue
		}
		herbCounts = append(herbCounts, float64(w.Herbivores))
		carnCounts = append(carnCounts, float64(w.Carnivores))

		logErr := math.Log(float64(w.Herbivores) / float64(w.Carnivores) / targetRatio)
		ratioSum += math.Exp(-logErr * logErr)
		ratioCount++

		herbH := math.Exp(-math.Pow((w.HerbEnergyP50-targetEnergy)/30, 2))
		carnH := math.Exp(-math.Pow((w.CarnEnergyP50-targetEnergy)/30, 2))
		energySum += (herbH + carnH) / 2

		if w.HuntAttempts > 0 {
			huntSum += math.Exp(-math.Pow((w.KillRate-targetKillRate)/0.2, 2))
			huntCount++
		}
	}
	if ratioCount == 0 {
		return 0
	}

	stability := 0.0
	if len(herbCounts) >= 2 {
		cvHerb, cvCarn := cv(herbCounts), cv(carnCounts)
		stability = math.Exp(-(cvHerb*cvHerb + cvCarn*cvCarn))
	}
	hunting := 0.0
	if huntCount > 0 {
		hunting = huntSum / float64(huntCount)
	}

	quality := qualityWeightRatio*ratioSum/float64(ratioCount) +
		qualityWeightStability*stability +
		qualityWeightEnergy*energySum/float64(ratioCount) +
		qualityWeightHunting*hunting
	return min(max(quality, 0), 1)
}

// cv computes the coefficient of variation (std/mean).
func cv(values []float64) float64 {
	mean, std := stat.PopMeanStdDev(values, nil)
	if mean == 0 {
		return 0
	}
	return std / mean
}

// Package main searches for ecosystem parameters under which herbivores and
// carnivores coexist, using CMA-ES over headless runs.
package main

import (
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gonum.org/v1/gonum/optimize"

	"github.com/pthm-cable/planisuss/config"
)

type options struct {
	configPath string
	outputDir  string
	maxDays    int
	seeds      int
	maxEvals   int
	population int
}

func main() {
	var opts options
	flag.StringVar(&opts.configPath, "config", "", "Base config YAML file (empty = use defaults)")
	flag.StringVar(&opts.outputDir, "output", "", "Output directory for results")
	flag.IntVar(&opts.maxDays, "max-days", 2000, "Day cap per run")
	flag.IntVar(&opts.seeds, "seeds", 3, "Seeds per evaluation")
	flag.IntVar(&opts.maxEvals, "max-evals", 200, "Evaluation budget")
	flag.IntVar(&opts.population, "population", 0, "CMA-ES population size (0 = 4 + 1.5*dim)")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, nil)))

	if err := run(opts); err != nil {
		slog.Error("optimization failed", "error", err)
		os.Exit(1)
	}
}

func run(opts options) error {
	if opts.outputDir == "" {
		return errors.New("-output is required")
	}
	if err := os.MkdirAll(opts.outputDir, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	if err := config.Init(opts.configPath); err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	base := config.Cfg()

	params := NewParamVector()
	seeds := make([]int64, opts.seeds)
	for i := range seeds {
		seeds[i] = int64(42 + 1000*i)
	}
	evaluator := NewFitnessEvaluator(params, opts.maxDays, seeds, base)

	elog, err := newEvalLog(filepath.Join(opts.outputDir, "optimize_log.csv"), params)
	if err != nil {
		return err
	}
	defer elog.Close()

	pop := opts.population
	if pop == 0 {
		pop = 4 + 3*params.Dim()/2
	}

	best := evalRecord{Fitness: 1e9}
	started := time.Now()
	evals := 0

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			values := params.Clamp(params.Denormalize(x))
			rec := evalRecord{
				Fitness: evaluator.Evaluate(values),
				Quality: evaluator.LastQuality(),
				Values:  values,
			}
			evals++
			if rec.Fitness < best.Fitness {
				best = rec
			}
			if err := elog.Write(evals, rec); err != nil {
				slog.Warn("eval log write failed", "error", err)
			}

			elapsed := time.Since(started)
			eta := elapsed / time.Duration(evals) * time.Duration(max(opts.maxEvals-evals, 0))
			slog.Info("eval",
				"n", evals,
				"of", opts.maxEvals,
				"days", rec.SurvivalDays(),
				"quality", fmt.Sprintf("%.2f", rec.Quality),
				"best_days", best.SurvivalDays(),
				"elapsed", elapsed.Round(time.Second).String(),
				"eta", eta.Round(time.Second).String(),
			)
			return rec.Fitness
		},
	}

	slog.Info("starting CMA-ES",
		"params", params.Dim(),
		"population", pop,
		"max_evals", opts.maxEvals,
		"seeds", opts.seeds,
		"max_days", opts.maxDays,
	)

	x0 := params.Normalize(params.ExtractFromConfig(base))
	settings := &optimize.Settings{FuncEvaluations: opts.maxEvals}
	method := &optimize.CmaEsChol{InitStepSize: 0.3, Population: pop}
	result, err := optimize.Minimize(problem, x0, settings, method)
	if err != nil {
		// Hitting the evaluation budget ends the search with an error too.
		slog.Info("search stopped", "reason", err)
	}
	if best.Values == nil && result != nil {
		best.Values = params.Clamp(params.Denormalize(result.X))
	}
	if best.Values == nil {
		return errors.New("no evaluation completed")
	}

	slog.Info("optimization complete",
		"evals", evals,
		"elapsed", time.Since(started).Round(time.Second).String(),
		"best_fitness", best.Fitness,
		"best_days", best.SurvivalDays(),
	)
	for i, spec := range params.Specs {
		slog.Info("best", "param", spec.Path, "value", best.Values[i])
	}

	out := filepath.Join(opts.outputDir, "best_config.yaml")
	if err := params.ApplyToConfig(base.Clone(), best.Values).WriteYAML(out); err != nil {
		return fmt.Errorf("writing best config: %w", err)
	}
	slog.Info("best config saved", "path", out)
	return nil
}

// evalRecord is one evaluated parameter vector.
type evalRecord struct {
	Fitness float64
	Quality float64
	Values  []float64
}

// SurvivalDays recovers the mean coexistence time from the fitness.
func (r evalRecord) SurvivalDays() int {
	return int(-r.Fitness / (1 + 0.2*r.Quality))
}

// evalLog appends one CSV row per evaluation, flushed immediately so an
// interrupted search keeps its history.
type evalLog struct {
	f *os.File
	w *csv.Writer
}

func newEvalLog(path string, params *ParamVector) (*evalLog, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating eval log: %w", err)
	}
	header := []string{"eval", "fitness", "quality"}
	for _, spec := range params.Specs {
		header = append(header, spec.Name)
	}
	l := &evalLog{f: f, w: csv.NewWriter(f)}
	if err := l.w.Write(header); err != nil {
		f.Close()
		return nil, fmt.Errorf("writing eval log header: %w", err)
	}
	return l, nil
}

func (l *evalLog) Write(n int, rec evalRecord) error {
	row := []string{
		strconv.Itoa(n),
		strconv.FormatFloat(rec.Fitness, 'f', 6, 64),
		strconv.FormatFloat(rec.Quality, 'f', 4, 64),
	}
	for _, v := range rec.Values {
		row = append(row, strconv.FormatFloat(v, 'f', 6, 64))
	}
	if err := l.w.Write(row); err != nil {
		return err
	}
	l.w.Flush()
	return l.w.Error()
}

func (l *evalLog) Close() error {
	l.w.Flush()
	return l.f.Close()
}

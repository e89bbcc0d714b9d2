package telemetry

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pthm-cable/planisuss/components"
)

func TestComputeDistribution(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   Distribution
	}{
		{"empty", nil, Distribution{}},
		{"single", []float64{7}, Distribution{Mean: 7, P10: 7, P50: 7, P90: 7}},
		{
			"one to ten",
			[]float64{10, 9, 8, 7, 6, 5, 4, 3, 2, 1},
			Distribution{Mean: 5.5, Std: math.Sqrt(55.0 / 6), P10: 1, P50: 5, P90: 9},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeDistribution(tt.values)
			for _, f := range []struct {
				field     string
				got, want float64
			}{
				{"mean", got.Mean, tt.want.Mean},
				{"std", got.Std, tt.want.Std},
				{"p10", got.P10, tt.want.P10},
				{"p50", got.P50, tt.want.P50},
				{"p90", got.P90, tt.want.P90},
			} {
				if math.Abs(f.got-f.want) > 1e-9 {
					t.Errorf("%s = %v, want %v", f.field, f.got, f.want)
				}
			}
		})
	}
}

func TestComputeDistributionDoesNotReorder(t *testing.T) {
	values := []float64{3, 1, 2}
	ComputeDistribution(values)
	if values[0] != 3 || values[1] != 1 || values[2] != 2 {
		t.Errorf("input reordered: %v", values)
	}
}

func TestCollectorFlush(t *testing.T) {
	c := NewCollector(1)

	c.Record(NewBirthEvent(1, 10, 1, components.KindHerbivore))
	c.Record(NewBirthEvent(1, 11, 1, components.KindHerbivore))
	c.Record(NewDeathEvent(1, 1, components.KindHerbivore, components.CauseOldAge))
	c.Record(NewDeathEvent(1, 5, components.KindHerbivore, components.CausePredation))
	c.Record(NewDeathEvent(1, 6, components.KindCarnivore, components.CauseCombat))
	c.RecordLifespan(90)
	c.RecordLifespan(30)
	c.Record(NewHuntAttemptEvent(1, 7, 5))
	c.Record(NewHuntAttemptEvent(1, 7, 5))
	c.Record(NewKillEvent(1, 7, 5, 40))
	c.Record(NewGrazeEvent(1, 3, 25))
	c.Record(NewGroupEvent(EventGroupFormed, 1, 3, components.KindHerbivore, 0))
	c.Record(NewGroupEvent(EventGroupMerged, 1, 3, components.KindHerbivore, 8))

	if !c.ShouldFlush(1) {
		t.Fatal("expected flush after one day")
	}

	stats := c.Flush(1, Census{
		Herbivores:        3,
		Carnivores:        1,
		HerdSizes:         []int{2},
		HerbivoreEnergies: []float64{10, 20, 30},
		CarnivoreEnergies: []float64{50},
		MeanVegetation:    12.5,
	})

	checks := []struct {
		name      string
		got, want float64
	}{
		{"herbivores", float64(stats.Herbivores), 3},
		{"herds", float64(stats.Herds), 1},
		{"mean herd size", stats.MeanHerdSize, 2},
		{"prides", float64(stats.Prides), 0},
		{"herbivore births", float64(stats.HerbivoreBirths), 2},
		{"herbivore deaths", float64(stats.HerbivoreDeaths), 2},
		{"carnivore deaths", float64(stats.CarnivoreDeaths), 1},
		{"old age", float64(stats.DiedOfAge), 1},
		{"predation", float64(stats.Preyed), 1},
		{"combat", float64(stats.Fallen), 1},
		{"mean lifespan", stats.MeanLifespan, 60},
		{"kill rate", stats.KillRate, 0.5},
		{"herds formed", float64(stats.HerdsFormed), 1},
		{"merges", float64(stats.Merges), 1},
		{"grazed", float64(stats.Grazed), 25},
		{"herbivore energy mean", stats.HerbEnergyMean, 20},
		{"carnivore energy p50", stats.CarnEnergyP50, 50},
		{"mean vegetation", stats.MeanVegetation, 12.5},
	}
	for _, chk := range checks {
		if chk.got != chk.want {
			t.Errorf("%s = %v, want %v", chk.name, chk.got, chk.want)
		}
	}

	// Counters reset for the next window.
	next := c.Flush(2, Census{})
	if next.HerbivoreBirths != 0 || next.Kills != 0 || next.Starved != 0 || next.MeanLifespan != 0 {
		t.Errorf("counters not reset: %+v", next)
	}
	if next.WindowStartDay != 1 {
		t.Errorf("WindowStartDay = %d, want 1", next.WindowStartDay)
	}
}

func TestCollectorWindow(t *testing.T) {
	c := NewCollector(5)
	if c.ShouldFlush(4) {
		t.Error("flushed before window elapsed")
	}
	if !c.ShouldFlush(5) {
		t.Error("did not flush at window end")
	}
	if NewCollector(0).WindowDays() != 1 {
		t.Error("window clamps to 1 day")
	}
}

func TestOutputManagerWritesHeaderOnce(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "run")
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatalf("NewOutputManager: %v", err)
	}

	for day := 1; day <= 3; day++ {
		if err := om.WriteStats(DayStats{Day: day, Herbivores: 10 * day}); err != nil {
			t.Fatalf("WriteStats: %v", err)
		}
	}
	if err := om.WriteLifetime(LifetimeStats{ID: 4, Kind: components.KindCarnivore, Cause: components.CauseOldAge}); err != nil {
		t.Fatalf("WriteLifetime: %v", err)
	}
	if err := om.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "stats.csv"))
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 4 {
		t.Fatalf("stats.csv has %d lines, want header + 3", len(lines))
	}
	if !strings.HasPrefix(lines[0], "day,herbivores,") {
		t.Errorf("header = %q", lines[0])
	}
	if !strings.HasPrefix(lines[3], "3,30,") {
		t.Errorf("last row = %q", lines[3])
	}

	data, err = os.ReadFile(filepath.Join(dir, "lifetimes.csv"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "carnivore") || !strings.Contains(string(data), "old_age") {
		t.Errorf("lifetimes.csv = %q", data)
	}
}

func TestOutputManagerDisabled(t *testing.T) {
	om, err := NewOutputManager("")
	if err != nil || om != nil {
		t.Fatalf("NewOutputManager(\"\") = %v, %v", om, err)
	}
	if err := om.WriteStats(DayStats{}); err != nil {
		t.Errorf("nil manager should be a no-op: %v", err)
	}
	if om.Dir() != "" {
		t.Error("nil manager has no dir")
	}
}

func TestLifetimeTracker(t *testing.T) {
	lt := NewLifetimeTracker()
	lt.Register(1, components.KindCarnivore, 0, 0, 60)
	lt.RecordHuntAttempt(1)
	lt.RecordKill(1)
	lt.RecordChild(1)
	lt.UpdateEnergy(1, 90)
	lt.UpdateEnergy(1, 40)
	lt.RecordKill(99) // unknown ids are ignored

	s := lt.Retire(1, 77, components.CauseOldAge)
	if s == nil {
		t.Fatal("Retire returned nil")
	}
	if s.HuntAttempts != 1 || s.Kills != 1 || s.Children != 1 || s.PeakEnergy != 90 {
		t.Errorf("stats = %+v", s)
	}
	if s.DeathDay != 77 || s.Cause != components.CauseOldAge {
		t.Errorf("death not stamped: %+v", s)
	}
	if lt.Count() != 0 || lt.Retire(1, 78, components.CauseOldAge) != nil {
		t.Error("retired animal still tracked")
	}
}

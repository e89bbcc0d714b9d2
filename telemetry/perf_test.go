package telemetry

import (
	"testing"
	"time"
)

func TestPerfCollector_BasicTiming(t *testing.T) {
	pc := NewPerfCollector(10)

	for i := 0; i < 5; i++ {
		pc.StartDay()
		pc.StartPhase(PhaseMovement)
		time.Sleep(100 * time.Microsecond)
		pc.StartPhase(PhaseHunt)
		time.Sleep(200 * time.Microsecond)
		pc.EndDay()
	}

	stats := pc.Stats()
	if stats.AvgDayDuration <= 0 {
		t.Error("expected positive average day duration")
	}
	for _, phase := range []string{PhaseMovement, PhaseHunt} {
		if _, ok := stats.PhaseAvg[phase]; !ok {
			t.Errorf("expected %s phase to be tracked", phase)
		}
	}
	if _, ok := stats.PhaseAvg[PhaseGrazing]; ok {
		t.Error("grazing was never started and should not be tracked")
	}
}

func TestPerfCollector_RollingWindow(t *testing.T) {
	pc := NewPerfCollector(5)

	for i := 0; i < 10; i++ {
		pc.StartDay()
		pc.StartPhase(PhaseGrowth)
		time.Sleep(10 * time.Microsecond)
		pc.EndDay()
	}

	stats := pc.Stats()
	if stats.AvgDayDuration <= 0 {
		t.Error("expected positive average day duration after window filled")
	}
	if stats.DaysPerSecond <= 0 {
		t.Error("expected positive days per second")
	}
	if stats.MinDayDuration > stats.MaxDayDuration {
		t.Errorf("min %v > max %v", stats.MinDayDuration, stats.MaxDayDuration)
	}
}

func TestPerfCollector_PhasePercentages(t *testing.T) {
	pc := NewPerfCollector(10)

	for i := 0; i < 5; i++ {
		pc.StartDay()
		pc.StartPhase(PhaseGrowth)
		time.Sleep(10 * time.Microsecond)
		pc.StartPhase(PhaseStruggle)
		time.Sleep(500 * time.Microsecond)
		pc.EndDay()
	}

	stats := pc.Stats()
	if stats.PhasePct[PhaseStruggle] <= stats.PhasePct[PhaseGrowth] {
		t.Errorf("expected struggle (%v%%) > growth (%v%%)",
			stats.PhasePct[PhaseStruggle], stats.PhasePct[PhaseGrowth])
	}

	row := stats.ToCSV(42)
	if row.Day != 42 || row.StrugglePct != stats.PhasePct[PhaseStruggle] {
		t.Errorf("ToCSV = %+v", row)
	}
}

func TestPerfCollector_EmptyStats(t *testing.T) {
	stats := NewPerfCollector(10).Stats()

	if stats.AvgDayDuration != 0 {
		t.Error("expected zero avg day duration for empty collector")
	}
	if stats.PhaseAvg == nil || stats.PhasePct == nil {
		t.Error("expected non-nil phase maps")
	}
}

// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	World      WorldConfig      `yaml:"world"`
	Terrain    TerrainConfig    `yaml:"terrain"`
	Vegetation VegetationConfig `yaml:"vegetation"`
	Herbivore  SpeciesConfig    `yaml:"herbivore"`
	Carnivore  SpeciesConfig    `yaml:"carnivore"`
	Herd       GroupConfig      `yaml:"herd"`
	Pride      GroupConfig      `yaml:"pride"`
	Ranking    RankingSet       `yaml:"ranking"`
	Grazing    GrazingConfig    `yaml:"grazing"`
	Struggle   StruggleConfig   `yaml:"struggle"`
	Hunt       HuntConfig       `yaml:"hunt"`
	Population PopulationConfig `yaml:"population"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`
	Bookmarks  BookmarksConfig  `yaml:"bookmarks"`
	Debug      DebugConfig      `yaml:"debug"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// WorldConfig holds grid dimensions and calendar settings.
type WorldConfig struct {
	Rows          int `yaml:"rows"`
	Cols          int `yaml:"cols"`
	DaysPerMonth  int `yaml:"days_per_month"` // Aging energy loss is applied once per month of age
	TombstoneDays int `yaml:"tombstone_days"` // Days a dead creature stays listed in its cell
}

// TerrainConfig holds fractal noise parameters for land/water classification.
type TerrainConfig struct {
	Octaves       int     `yaml:"octaves"`
	Persistence   float64 `yaml:"persistence"`
	Lacunarity    float64 `yaml:"lacunarity"`
	Scale         float64 `yaml:"scale"`
	Threshold     float64 `yaml:"threshold"`      // Normalized noise above this is land
	Island        bool    `yaml:"island"`         // Raise the threshold towards the borders
	IslandFalloff float64 `yaml:"island_falloff"` // Threshold increase at the grid corners
}

// VegetationConfig holds plant density bounds.
type VegetationConfig struct {
	MaxGrowth  int `yaml:"max_growth"`
	Growing    int `yaml:"growing"` // Density added per day
	InitialMin int `yaml:"initial_min"`
	InitialMax int `yaml:"initial_max"`
}

// SpeciesConfig holds per-kind animal parameters.
type SpeciesConfig struct {
	MaxEnergy          int     `yaml:"max_energy"`
	MoveCost           int     `yaml:"move_cost"`
	Aging              int     `yaml:"aging"` // Energy lost per month of age
	LifetimeMin        int     `yaml:"lifetime_min"`
	LifetimeMax        int     `yaml:"lifetime_max"`
	Neighborhood       int     `yaml:"neighborhood"` // Awareness radius of a lone animal
	OffspringMinEnergy int     `yaml:"offspring_min_energy"`
	AttitudeJitter     float64 `yaml:"attitude_jitter"`
}

// GroupConfig holds herd or pride parameters.
type GroupConfig struct {
	Neighborhood int `yaml:"neighborhood"`
	Memory       int `yaml:"memory"` // Length of the visited-cell history
}

// RankingSet holds movement weights for both kinds.
type RankingSet struct {
	Herbivore RankingConfig `yaml:"herbivore"`
	Carnivore RankingConfig `yaml:"carnivore"`
}

// RankingConfig holds the additive weights of the movement desirability score.
type RankingConfig struct {
	DangerWeight         float64   `yaml:"danger_weight"`
	RingDecay            []float64 `yaml:"ring_decay"` // Share of a threat felt 0, 1, 2 rings away
	SocialWeight         float64   `yaml:"social_weight"`
	ToleranceIndividual  float64   `yaml:"tolerance_individual"` // Tolerated crowd = attitude * this
	ToleranceGroup       float64   `yaml:"tolerance_group"`
	ToleranceJitter      float64   `yaml:"tolerance_jitter"`
	RepulsionWeight      float64   `yaml:"repulsion_weight"`
	VegetationWeight     float64   `yaml:"vegetation_weight"`
	PreyWeight           float64   `yaml:"prey_weight"`
	StayEnergyWeight     float64   `yaml:"stay_energy_weight"`
	StayVegetationWeight float64   `yaml:"stay_vegetation_weight"`
	EscapeWeight         float64   `yaml:"escape_weight"`
	EscapeThreshold      float64   `yaml:"escape_threshold"`
	EscapeDecay          float64   `yaml:"escape_decay"`
	BacktrackPenalty     float64   `yaml:"backtrack_penalty"`
	LoyaltyWeight        float64   `yaml:"loyalty_weight"`
	OversizePenalty      float64   `yaml:"oversize_penalty"`
}

// GrazingConfig holds herbivore feeding parameters.
type GrazingConfig struct {
	Rate                 int     `yaml:"rate"` // Max vegetation eaten per herbivore per day
	StarvingAttitudeDrop float64 `yaml:"starving_attitude_drop"`
}

// StruggleConfig holds carnivore social resolution thresholds.
type StruggleConfig struct {
	JoinThreshold float64 `yaml:"join_threshold"` // Two prides merge when their sociality sum reaches this
	FormRatio     float64 `yaml:"form_ratio"`     // Lone carnivores form a pride when sum(attitude) >= ratio * n
}

// HuntConfig holds predation parameters.
type HuntConfig struct {
	Steepness      float64 `yaml:"steepness"` // Logistic slope over (strength - prey energy)
	LuckMin        float64 `yaml:"luck_min"`
	LuckMax        float64 `yaml:"luck_max"`
	MaxAttempts    int     `yaml:"max_attempts"`
	FailureCost    int     `yaml:"failure_cost"`
	SocialityShift float64 `yaml:"sociality_shift"`
}

// PopulationConfig holds the initial population.
type PopulationConfig struct {
	Herbivores int `yaml:"herbivores"`
	Carnivores int `yaml:"carnivores"`
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow         int `yaml:"stats_window"`   // Days per stats row
	SnapshotEvery       int `yaml:"snapshot_every"` // Days between snapshots (0 = bookmarks only)
	BookmarkHistorySize int `yaml:"bookmark_history_size"`
	PerfWindow          int `yaml:"perf_window"`
}

// BookmarksConfig holds bookmark detection thresholds.
type BookmarksConfig struct {
	CrashDrop      float64 `yaml:"crash_drop"`     // Fractional drop from peak
	CrashMinLoss   int     `yaml:"crash_min_loss"` // Absolute drop from peak
	RecoveryFloor  int     `yaml:"recovery_floor"`
	RecoveryFactor int     `yaml:"recovery_factor"`
	RecoveryMin    int     `yaml:"recovery_min"`
	StableWindows  int     `yaml:"stable_windows"`
	StableCV2      float64 `yaml:"stable_cv2"` // Squared coefficient of variation
}

// DebugConfig holds development switches.
type DebugConfig struct {
	CheckInvariants bool `yaml:"check_invariants"`
}

// DerivedConfig holds values computed from other config values.
// Arrays are indexed by components.Kind (0 = herbivore, 1 = carnivore).
type DerivedConfig struct {
	Species [2]*SpeciesConfig
	Groups  [2]*GroupConfig
	Ranking [2]*RankingConfig
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Only overwrites fields present in the file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.computeDerived()

	return cfg, nil
}

// Clone returns a deep copy with derived values recomputed.
func (c *Config) Clone() *Config {
	out := *c
	out.Ranking.Herbivore.RingDecay = append([]float64(nil), c.Ranking.Herbivore.RingDecay...)
	out.Ranking.Carnivore.RingDecay = append([]float64(nil), c.Ranking.Carnivore.RingDecay...)
	out.computeDerived()
	return &out
}

// Validate rejects configurations the engine cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.World.Rows < 1 || c.World.Cols < 1 {
		errs = append(errs, fmt.Errorf("world: grid must be at least 1x1, got %dx%d", c.World.Rows, c.World.Cols))
	}
	if c.World.DaysPerMonth < 1 {
		errs = append(errs, errors.New("world: days_per_month must be positive"))
	}
	if c.Vegetation.MaxGrowth < 1 {
		errs = append(errs, errors.New("vegetation: max_growth must be positive"))
	}
	if c.Vegetation.InitialMin > c.Vegetation.InitialMax {
		errs = append(errs, errors.New("vegetation: initial_min exceeds initial_max"))
	}
	for name, s := range map[string]SpeciesConfig{"herbivore": c.Herbivore, "carnivore": c.Carnivore} {
		if s.MaxEnergy < 1 {
			errs = append(errs, fmt.Errorf("%s: max_energy must be positive", name))
		}
		if s.LifetimeMin < 1 || s.LifetimeMin > s.LifetimeMax {
			errs = append(errs, fmt.Errorf("%s: invalid lifetime range [%d, %d]", name, s.LifetimeMin, s.LifetimeMax))
		}
	}
	if c.Herd.Memory < 1 || c.Pride.Memory < 1 {
		errs = append(errs, errors.New("herd/pride: memory must be positive"))
	}
	if c.Hunt.LuckMin > c.Hunt.LuckMax {
		errs = append(errs, errors.New("hunt: luck_min exceeds luck_max"))
	}
	return errors.Join(errs...)
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.Species = [2]*SpeciesConfig{&c.Herbivore, &c.Carnivore}
	c.Derived.Groups = [2]*GroupConfig{&c.Herd, &c.Pride}
	c.Derived.Ranking = [2]*RankingConfig{&c.Ranking.Herbivore, &c.Ranking.Carnivore}

	for _, r := range c.Derived.Ranking {
		for len(r.RingDecay) < 3 {
			r.RingDecay = append(r.RingDecay, 0)
		}
	}
	if c.Telemetry.StatsWindow < 1 {
		c.Telemetry.StatsWindow = 1
	}
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

package telemetry

import "github.com/pthm-cable/planisuss/components"

// LifetimeStats tracks per-animal statistics over its lifetime.
type LifetimeStats struct {
	ID       uint32          `csv:"id" json:"id"`
	Kind     components.Kind `csv:"kind" json:"kind"`
	ParentID uint32          `csv:"parent_id" json:"parent_id"`
	BirthDay int             `csv:"birth_day" json:"birth_day"`
	DeathDay int             `csv:"death_day" json:"death_day"`

	Cause components.DeathCause `csv:"cause" json:"cause,omitempty"`

	// Hunting (carnivores)
	HuntAttempts int `csv:"hunt_attempts" json:"hunt_attempts"`
	Kills        int `csv:"kills" json:"kills"`

	Children   int `csv:"children" json:"children"`
	PeakEnergy int `csv:"peak_energy" json:"peak_energy"`
	Grazed     int `csv:"grazed" json:"grazed"` // herbivores only
}

// LifetimeTracker manages per-animal lifetime statistics, keyed by animal ID.
type LifetimeTracker struct {
	stats map[uint32]*LifetimeStats
}

// NewLifetimeTracker creates a new lifetime tracker.
func NewLifetimeTracker() *LifetimeTracker {
	return &LifetimeTracker{
		stats: make(map[uint32]*LifetimeStats),
	}
}

// Register creates lifetime stats for a new animal. parentID is 0 for the
// founding population.
func (lt *LifetimeTracker) Register(id uint32, kind components.Kind, parentID uint32, birthDay, energy int) {
	lt.stats[id] = &LifetimeStats{
		ID:         id,
		Kind:       kind,
		ParentID:   parentID,
		BirthDay:   birthDay,
		PeakEnergy: energy,
	}
}

// Get returns the lifetime stats for an animal, or nil if not found.
func (lt *LifetimeTracker) Get(id uint32) *LifetimeStats {
	return lt.stats[id]
}

// Retire removes an animal's stats, stamping its death, and returns them.
func (lt *LifetimeTracker) Retire(id uint32, day int, cause components.DeathCause) *LifetimeStats {
	s := lt.stats[id]
	if s == nil {
		return nil
	}
	delete(lt.stats, id)
	s.DeathDay = day
	s.Cause = cause
	return s
}

// RecordHuntAttempt increments the hunt attempt count.
func (lt *LifetimeTracker) RecordHuntAttempt(id uint32) {
	if s := lt.stats[id]; s != nil {
		s.HuntAttempts++
	}
}

// RecordKill increments the kill count.
func (lt *LifetimeTracker) RecordKill(id uint32) {
	if s := lt.stats[id]; s != nil {
		s.Kills++
	}
}

// RecordChild increments the children count.
func (lt *LifetimeTracker) RecordChild(parentID uint32) {
	if s := lt.stats[parentID]; s != nil {
		s.Children++
	}
}

// RecordGraze adds vegetation eaten to the running total.
func (lt *LifetimeTracker) RecordGraze(id uint32, amount int) {
	if s := lt.stats[id]; s != nil {
		s.Grazed += amount
	}
}

// UpdateEnergy tracks peak energy.
func (lt *LifetimeTracker) UpdateEnergy(id uint32, energy int) {
	if s := lt.stats[id]; s != nil && energy > s.PeakEnergy {
		s.PeakEnergy = energy
	}
}

// Count returns the number of tracked animals.
func (lt *LifetimeTracker) Count() int {
	return len(lt.stats)
}

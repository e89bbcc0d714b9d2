package components

import "github.com/mlange-42/ark/ecs"

// Vitals tracks an animal's energy budget and age.
type Vitals struct {
	Energy    int
	MaxEnergy int
	Age       int // days
	Lifetime  int // days; exceeding it ends the life with reproduction
	Alive     bool
}

// EnergyGap returns how much energy the animal can still absorb.
func (v *Vitals) EnergyGap() int {
	return v.MaxEnergy - v.Energy
}

// Gain adds energy capped at MaxEnergy and returns the amount absorbed.
func (v *Vitals) Gain(amount int) int {
	amount = min(amount, v.EnergyGap())
	if amount < 0 {
		amount = 0
	}
	v.Energy += amount
	return amount
}

// Spend removes energy floored at zero and reports whether any remains.
func (v *Vitals) Spend(amount int) bool {
	v.Energy = max(v.Energy-amount, 0)
	return v.Energy > 0
}

// Social holds the attitude scalar in [0, 1]. Herbivores read it as
// gregariousness, carnivores as tolerance.
type Social struct {
	Attitude float64
}

// Shift moves the attitude by delta, clamped to [0, 1].
func (s *Social) Shift(delta float64) {
	s.Attitude = min(max(s.Attitude+delta, 0), 1)
}

// Escape remembers the direction of the last fled threat.
type Escape struct {
	Dir       Direction
	Intensity float64
}

// Membership is the weak back-reference from an animal to its group.
type Membership struct {
	Group   ecs.Entity
	InGroup bool
}

// Clear detaches the animal from any group.
func (m *Membership) Clear() {
	m.Group = ecs.Entity{}
	m.InGroup = false
}

// DeathCause records why an animal died.
type DeathCause string

const (
	CauseStarvation DeathCause = "starvation"
	CauseOldAge     DeathCause = "old_age"
	CausePredation  DeathCause = "predation"
	CauseCombat     DeathCause = "combat"
)

// DeadCreature is the immutable tombstone left behind by a dead animal.
type DeadCreature struct {
	ID       uint32     `json:"id"`
	Kind     Kind       `json:"kind"`
	Coords   Coords     `json:"coords"`
	Day      int        `json:"day"`
	Cause    DeathCause `json:"cause"`
	Age      int        `json:"age"`
	Lifetime int        `json:"lifetime"`
	Attitude float64    `json:"attitude"`
}

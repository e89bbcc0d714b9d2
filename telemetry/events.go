// Package telemetry provides ecosystem health tracking, bookmarking, and snapshots.
package telemetry

import "github.com/pthm-cable/planisuss/components"

// EventType identifies telemetry events.
type EventType uint8

const (
	EventBirth EventType = iota
	EventDeath
	EventHuntAttempt
	EventKill
	EventGraze
	EventGroupFormed
	EventGroupMerged
	EventGroupDisbanded
	EventFight
	EventDeparture
)

// Event represents a single telemetry event.
type Event struct {
	Type     EventType
	Day      int
	EntityID uint32
	Kind     components.Kind

	// Optional fields depending on event type
	TargetID uint32                // prey for hunts, parent for births, absorbed group for merges
	Amount   int                   // energy transferred or vegetation eaten
	Cause    components.DeathCause // deaths only
}

// NewBirthEvent creates a birth event.
func NewBirthEvent(day int, childID, parentID uint32, kind components.Kind) Event {
	return Event{
		Type:     EventBirth,
		Day:      day,
		EntityID: childID,
		Kind:     kind,
		TargetID: parentID, // parent ID stored in TargetID
	}
}

// NewDeathEvent creates a death event.
func NewDeathEvent(day int, entityID uint32, kind components.Kind, cause components.DeathCause) Event {
	return Event{
		Type:     EventDeath,
		Day:      day,
		EntityID: entityID,
		Kind:     kind,
		Cause:    cause,
	}
}

// NewHuntAttemptEvent creates a hunt attempt event. hunterID is the pride or
// the lone carnivore.
func NewHuntAttemptEvent(day int, hunterID, preyID uint32) Event {
	return Event{
		Type:     EventHuntAttempt,
		Day:      day,
		EntityID: hunterID,
		Kind:     components.KindCarnivore,
		TargetID: preyID,
	}
}

// NewKillEvent creates a kill event.
func NewKillEvent(day int, hunterID, preyID uint32, energy int) Event {
	return Event{
		Type:     EventKill,
		Day:      day,
		EntityID: hunterID,
		Kind:     components.KindCarnivore,
		TargetID: preyID,
		Amount:   energy,
	}
}

// NewGrazeEvent creates a grazing event for a herd or lone herbivore.
func NewGrazeEvent(day int, entityID uint32, amount int) Event {
	return Event{
		Type:     EventGraze,
		Day:      day,
		EntityID: entityID,
		Kind:     components.KindHerbivore,
		Amount:   amount,
	}
}

// NewGroupEvent creates a herd or pride lifecycle event.
func NewGroupEvent(t EventType, day int, groupID uint32, kind components.Kind, otherID uint32) Event {
	return Event{
		Type:     t,
		Day:      day,
		EntityID: groupID,
		Kind:     kind,
		TargetID: otherID,
	}
}

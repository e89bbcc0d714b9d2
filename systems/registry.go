package systems

import "github.com/pthm-cable/planisuss/telemetry"

// PhaseInfo describes one phase of the day pipeline.
type PhaseInfo struct {
	ID          string // Internal identifier (used for perf tracking)
	Name        string // Display name
	Description string // What this phase does
}

// PhaseRegistry holds the day phases in execution order.
// This centralizes phase naming so the pipeline and perf tracker stay in sync.
type PhaseRegistry struct {
	phases []PhaseInfo
	byID   map[string]PhaseInfo
}

// NewPhaseRegistry creates a registry with the standard day phases.
func NewPhaseRegistry() *PhaseRegistry {
	reg := &PhaseRegistry{
		byID: make(map[string]PhaseInfo),
	}
	reg.Register(PhaseInfo{ID: telemetry.PhaseGrowth, Name: "Growth", Description: "Vegetation grows on every land cell"})
	reg.Register(PhaseInfo{ID: telemetry.PhaseMovement, Name: "Movement", Description: "Lone animals and groups choose and commit moves"})
	reg.Register(PhaseInfo{ID: telemetry.PhaseGrazing, Name: "Grazing", Description: "Herbivores that stayed put eat vegetation"})
	reg.Register(PhaseInfo{ID: telemetry.PhaseStruggle, Name: "Struggle", Description: "Prides merge or fight; lone carnivores join, form or duel"})
	reg.Register(PhaseInfo{ID: telemetry.PhaseHunt, Name: "Hunt", Description: "Carnivores hunt herbivores sharing their cell"})
	reg.Register(PhaseInfo{ID: telemetry.PhaseAging, Name: "Aging", Description: "Animals age, pay monthly upkeep and reproduce at end of life"})
	reg.Register(PhaseInfo{ID: telemetry.PhaseTelemetry, Name: "Telemetry", Description: "Tombstones expire and statistics are flushed"})
	return reg
}

// Register appends a phase to the registry.
func (r *PhaseRegistry) Register(info PhaseInfo) {
	r.phases = append(r.phases, info)
	r.byID[info.ID] = info
}

// Get returns phase info by ID.
func (r *PhaseRegistry) Get(id string) (PhaseInfo, bool) {
	info, ok := r.byID[id]
	return info, ok
}

// GetName returns the display name for a phase ID.
// Falls back to the ID itself if not found.
func (r *PhaseRegistry) GetName(id string) string {
	if info, ok := r.byID[id]; ok {
		return info.Name
	}
	return id
}

// All returns all registered phases in execution order.
func (r *PhaseRegistry) All() []PhaseInfo {
	return r.phases
}

// IDs returns all phase IDs in execution order.
func (r *PhaseRegistry) IDs() []string {
	ids := make([]string, len(r.phases))
	for i, info := range r.phases {
		ids[i] = info.ID
	}
	return ids
}

package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pthm-cable/planisuss/components"
)

// SnapshotVersion is incremented when the format changes.
const SnapshotVersion = 1

// Snapshot is a read-only view of the whole ecosystem on one day.
type Snapshot struct {
	Version int   `json:"version"`
	Seed    int64 `json:"seed"`
	Day     int   `json:"day"`

	Rows  int         `json:"rows"`
	Cols  int         `json:"cols"`
	Cells []CellState `json:"cells"`

	Animals []AnimalState             `json:"animals"`
	Groups  []GroupState              `json:"groups"`
	Deaths  []components.DeadCreature `json:"deaths"`

	Bookmark *Bookmark `json:"bookmark,omitempty"`
}

// CellState holds one cell. Water cells carry no density.
type CellState struct {
	Row     int  `json:"row"`
	Col     int  `json:"col"`
	Land    bool `json:"land"`
	Density int  `json:"density,omitempty"`
}

// AnimalState holds one live animal. GroupID is 0 for unaffiliated animals.
type AnimalState struct {
	ID       uint32          `json:"id"`
	Kind     components.Kind `json:"kind"`
	Row      int             `json:"row"`
	Col      int             `json:"col"`
	Energy   int             `json:"energy"`
	Age      int             `json:"age"`
	Lifetime int             `json:"lifetime"`
	Attitude float64         `json:"attitude"`
	GroupID  uint32          `json:"group_id,omitempty"`

	Stats *LifetimeStats `json:"stats,omitempty"`
}

// GroupState holds one herd or pride.
type GroupState struct {
	ID      uint32          `json:"id"`
	Kind    components.Kind `json:"kind"`
	Row     int             `json:"row"`
	Col     int             `json:"col"`
	Members []uint32        `json:"members"`
}

// Population counts live animals by kind.
func (s *Snapshot) Population() (herbivores, carnivores int) {
	for _, a := range s.Animals {
		if a.Kind == components.KindHerbivore {
			herbivores++
		} else {
			carnivores++
		}
	}
	return herbivores, carnivores
}

// SaveSnapshot writes a snapshot to dir and returns the file path.
func SaveSnapshot(snapshot *Snapshot, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create snapshot dir: %w", err)
	}

	name := fmt.Sprintf("snapshot_%d", snapshot.Day)
	if snapshot.Bookmark != nil {
		sanitized := strings.ReplaceAll(string(snapshot.Bookmark.Type), " ", "_")
		name = fmt.Sprintf("snapshot_%d_%s", snapshot.Day, sanitized)
	}
	path := filepath.Join(dir, name+".json")

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}
	return path, nil
}

// LoadSnapshot reads a snapshot from disk.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	if snapshot.Version != SnapshotVersion {
		return nil, fmt.Errorf("snapshot version %d, want %d", snapshot.Version, SnapshotVersion)
	}
	return &snapshot, nil
}

// Package components defines ECS components for the simulation.
package components

import "fmt"

// Kind distinguishes the two animal species.
type Kind uint8

const (
	KindHerbivore Kind = iota // Erbast; groups into herds
	KindCarnivore             // Carviz; groups into prides
)

// String returns the species name.
func (k Kind) String() string {
	switch k {
	case KindHerbivore:
		return "herbivore"
	case KindCarnivore:
		return "carnivore"
	default:
		return "unknown"
	}
}

// GroupName returns the name of a standing group of this kind.
func (k Kind) GroupName() string {
	if k == KindCarnivore {
		return "pride"
	}
	return "herd"
}

// MarshalText encodes the kind by name for JSON snapshots.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText decodes a kind written by MarshalText.
func (k *Kind) UnmarshalText(text []byte) error {
	switch string(text) {
	case "herbivore":
		*k = KindHerbivore
	case "carnivore":
		*k = KindCarnivore
	default:
		return fmt.Errorf("unknown kind %q", text)
	}
	return nil
}

// Identity is shared by animals and groups.
type Identity struct {
	ID   uint32
	Kind Kind
}

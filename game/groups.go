package game

import (
	"fmt"
	"slices"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/planisuss/components"
	"github.com/pthm-cable/planisuss/telemetry"
)

// AddComponent makes an unaffiliated animal a member of g. The animal must be
// of the group's kind, stand on the group's cell and share its placement.
func (env *Environment) AddComponent(g, a ecs.Entity) error {
	if !env.IsGroup(g) {
		return fmt.Errorf("add member to %v: %w", g, ErrUnknownEntity)
	}
	if err := env.checkRecruits(env.kindOf(g), []ecs.Entity{a}); err != nil {
		return fmt.Errorf("add member to %s %d: %w", env.kindOf(g).GroupName(), env.idOf(g), err)
	}
	if *env.posMap.Get(a) != *env.posMap.Get(g) {
		return fmt.Errorf("add member %d: not on the %s's cell: %w", env.idOf(a), env.kindOf(g).GroupName(), ErrInvalidGroup)
	}
	if env.IsPlaced(a) != env.IsPlaced(g) {
		return fmt.Errorf("add member %d: placement differs from the %s: %w", env.idOf(a), env.kindOf(g).GroupName(), ErrInvalidGroup)
	}
	env.attach(g, a)
	return nil
}

// attach appends a member without validation.
func (env *Environment) attach(g, a ecs.Entity) {
	grp := env.groupMap.Get(g)
	grp.Members = append(grp.Members, a)
	m := env.memberMap.Get(a)
	m.Group = g
	m.InGroup = true
}

// RemoveComponent detaches a member from g. If fewer than two members remain
// the group is disbanded and the freed animals are returned; they stay where
// they stand, unaffiliated.
func (env *Environment) RemoveComponent(g, a ecs.Entity) ([]ecs.Entity, error) {
	if !env.IsGroup(g) {
		return nil, fmt.Errorf("remove member from %v: %w", g, ErrUnknownEntity)
	}
	grp := env.groupMap.Get(g)
	if !grp.Drop(a) {
		return nil, fmt.Errorf("remove member %v from %s %d: not a member: %w", a, env.kindOf(g).GroupName(), env.idOf(g), ErrInvalidGroup)
	}
	if env.IsAnimal(a) {
		env.memberMap.Get(a).Clear()
	}
	if grp.Size() >= 2 {
		return nil, nil
	}

	freed := slices.Clone(grp.Members)
	for _, m := range freed {
		env.memberMap.Get(m).Clear()
	}
	grp.Members = nil
	env.disband(g)
	return freed, nil
}

// disband records and destroys a group whose members are already detached.
func (env *Environment) disband(g ecs.Entity) {
	id := *env.idMap.Get(g)
	env.record(telemetry.NewGroupEvent(telemetry.EventGroupDisbanded, env.day, id.ID, id.Kind, 0))
	env.logger.Debug(id.Kind.GroupName()+" disbanded", "day", env.day, "id", id.ID)
	env.destroyGroup(g)
}

// JoinGroups merges two groups of the same kind on the same cell. The larger
// absorbs the smaller (a wins ties); the absorbed group is destroyed. Returns
// the surviving group.
func (env *Environment) JoinGroups(a, b ecs.Entity) (ecs.Entity, error) {
	if !env.IsGroup(a) || !env.IsGroup(b) {
		return ecs.Entity{}, fmt.Errorf("join %v and %v: %w", a, b, ErrUnknownEntity)
	}
	if a == b {
		return ecs.Entity{}, fmt.Errorf("join %s %d with itself: %w", env.kindOf(a).GroupName(), env.idOf(a), ErrInvalidGroup)
	}
	if env.kindOf(a) != env.kindOf(b) {
		return ecs.Entity{}, fmt.Errorf("join a herd and a pride: %w", ErrInvalidGroup)
	}
	if *env.posMap.Get(a) != *env.posMap.Get(b) || env.IsPlaced(a) != env.IsPlaced(b) {
		return ecs.Entity{}, fmt.Errorf("join groups on different cells: %w", ErrInvalidGroup)
	}
	return env.mergeGroups(a, b), nil
}

// mergeGroups folds the smaller group into the larger one.
func (env *Environment) mergeGroups(a, b ecs.Entity) ecs.Entity {
	into, from := a, b
	if env.groupMap.Get(b).Size() > env.groupMap.Get(a).Size() {
		into, from = b, a
	}

	moved := env.groupMap.Get(from).Members
	for _, m := range moved {
		env.memberMap.Get(m).Group = into
	}
	dst := env.groupMap.Get(into)
	dst.Members = append(dst.Members, moved...)
	env.groupMap.Get(from).Members = nil

	kind := env.kindOf(into)
	placed := env.groups[kind].has(into)
	intoID, fromID := env.idOf(into), env.idOf(from)
	env.destroyGroup(from)
	if placed && kind == components.KindHerbivore {
		cell := env.grid.Cell(*env.posMap.Get(into))
		cell.Herd = into
		cell.HasHerd = true
	}

	env.record(telemetry.NewGroupEvent(telemetry.EventGroupMerged, env.day, intoID, kind, fromID))
	env.logger.Debug(kind.GroupName()+" merged",
		"day", env.day,
		"id", intoID,
		"absorbed", fromID,
		"size", env.groupMap.Get(into).Size(),
	)
	return into
}

// GroupSociality is the mean attitude of a group's members.
func (env *Environment) GroupSociality(g ecs.Entity) float64 {
	if !env.IsGroup(g) {
		return 0
	}
	members := env.groupMap.Get(g).Members
	if len(members) == 0 {
		return 0
	}
	var sum float64
	for _, m := range members {
		sum += env.socialMap.Get(m).Attitude
	}
	return sum / float64(len(members))
}

// GroupEnergy is the mean energy of a group's members.
func (env *Environment) GroupEnergy(g ecs.Entity) float64 {
	if !env.IsGroup(g) {
		return 0
	}
	members := env.groupMap.Get(g).Members
	if len(members) == 0 {
		return 0
	}
	var sum int
	for _, m := range members {
		sum += env.vitalsMap.Get(m).Energy
	}
	return float64(sum) / float64(len(members))
}

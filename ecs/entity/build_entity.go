package entity

import (
	"errors"
	"fmt"
	"sort"

	"github.com/milk9111/questmark/common"
	"github.com/milk9111/questmark/ecs"
	"github.com/milk9111/questmark/ecs/component"
	"github.com/milk9111/questmark/prefabs"
	"github.com/milk9111/questmark/pursuit"
)

var ErrUnknownEntityType = errors.New("entity: unknown entity type")

type buildContext struct {
	PrefabPath string
}

type componentBuildFn func(w *ecs.World, e ecs.Entity, raw any, ctx *buildContext) error

var componentRegistry = map[string]componentBuildFn{
	"player_tag":      addPlayerTag,
	"enemy_tag":       addEnemyTag,
	"collidable":      addCollidable,
	"transform":       addTransform,
	"source_position": addSourcePosition,
	"velocity":        addVelocity,
	"speed":           addSpeed,
	"input":           addInput,
	"aggression":      addAggression,
	"bounding_box":    addBoundingBox,
	"pursuit_agent":   addPursuitAgent,
	"physics_body":    addPhysicsBody,
	"script":          addScript,
}

// transform comes before anything that reads the spawn position
var componentBuildOrder = []string{
	"player_tag",
	"enemy_tag",
	"collidable",
	"transform",
	"source_position",
	"velocity",
	"speed",
	"input",
	"aggression",
	"bounding_box",
	"pursuit_agent",
	"physics_body",
	"script",
}

func BuildEntity(w *ecs.World, prefabPath string) (ecs.Entity, error) {
	if w == nil {
		return 0, fmt.Errorf("build entity: world is nil")
	}

	spec, err := prefabs.LoadEntityBuildSpec(prefabPath)
	if err != nil {
		return 0, fmt.Errorf("build entity: load %q: %w", prefabPath, err)
	}
	if len(spec.Components) == 0 {
		return 0, fmt.Errorf("build entity: prefab %q does not define components", prefabPath)
	}

	e := ecs.CreateEntity(w)
	ctx := &buildContext{PrefabPath: prefabPath}

	remaining := make(map[string]any, len(spec.Components))
	for k, v := range spec.Components {
		remaining[k] = v
	}

	for _, name := range componentBuildOrder {
		raw, ok := remaining[name]
		if !ok {
			continue
		}
		if err := componentRegistry[name](w, e, raw, ctx); err != nil {
			ecs.DestroyEntity(w, e)
			return 0, fmt.Errorf("build entity: %q: add %q: %w", prefabPath, name, err)
		}
		delete(remaining, name)
	}

	if len(remaining) > 0 {
		names := make([]string, 0, len(remaining))
		for name := range remaining {
			names = append(names, name)
		}
		sort.Strings(names)
		ecs.DestroyEntity(w, e)
		return 0, fmt.Errorf("build entity: %q: no builder for components %v", prefabPath, names)
	}

	return e, nil
}

// SetEntityTransform moves e and everything that follows its spawn point.
func SetEntityTransform(w *ecs.World, e ecs.Entity, x, y float64) error {
	t, ok := ecs.Get(w, e, component.TransformComponent.Kind())
	if !ok {
		t = &component.Transform{}
	}
	t.Position.X = x
	t.Position.Y = y
	if err := ecs.Add(w, e, component.TransformComponent.Kind(), t); err != nil {
		return err
	}
	if src, ok := ecs.Get(w, e, component.SourcePositionComponent.Kind()); ok {
		src.Position = t.Position
	}
	if bb, ok := ecs.Get(w, e, component.BoundingBoxComponent.Kind()); ok {
		bb.Rect = bb.Rect.At(x+bb.OffsetX, y+bb.OffsetY)
	}
	return nil
}

func addPlayerTag(w *ecs.World, e ecs.Entity, _ any, _ *buildContext) error {
	return ecs.Add(w, e, component.PlayerTagComponent.Kind(), &component.PlayerTag{})
}

func addEnemyTag(w *ecs.World, e ecs.Entity, _ any, _ *buildContext) error {
	return ecs.Add(w, e, component.EnemyTagComponent.Kind(), &component.EnemyTag{})
}

func addCollidable(w *ecs.World, e ecs.Entity, _ any, _ *buildContext) error {
	return ecs.Add(w, e, component.CollidableComponent.Kind(), &component.Collidable{})
}

type transformSpec = prefabs.TransformComponentSpec

func addTransform(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[transformSpec](raw)
	if err != nil {
		return fmt.Errorf("decode transform spec: %w", err)
	}
	t := &component.Transform{}
	t.Position.X = spec.X
	t.Position.Y = spec.Y
	return ecs.Add(w, e, component.TransformComponent.Kind(), t)
}

func addSourcePosition(w *ecs.World, e ecs.Entity, _ any, _ *buildContext) error {
	src := &component.SourcePosition{}
	if t, ok := ecs.Get(w, e, component.TransformComponent.Kind()); ok {
		src.Position = t.Position
	}
	return ecs.Add(w, e, component.SourcePositionComponent.Kind(), src)
}

func addVelocity(w *ecs.World, e ecs.Entity, _ any, _ *buildContext) error {
	return ecs.Add(w, e, component.VelocityComponent.Kind(), &component.Velocity{})
}

type speedSpec = prefabs.SpeedComponentSpec

func addSpeed(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[speedSpec](raw)
	if err != nil {
		return fmt.Errorf("decode speed spec: %w", err)
	}
	if spec.Value < 0 {
		return fmt.Errorf("negative speed %v", spec.Value)
	}
	return ecs.Add(w, e, component.SpeedComponent.Kind(), &component.Speed{Value: spec.Value})
}

func addInput(w *ecs.World, e ecs.Entity, _ any, _ *buildContext) error {
	return ecs.Add(w, e, component.InputComponent.Kind(), &component.Input{})
}

type aggressionSpec = prefabs.AggressionComponentSpec

func addAggression(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[aggressionSpec](raw)
	if err != nil {
		return fmt.Errorf("decode aggression spec: %w", err)
	}
	aggr := pursuit.Global()
	if spec.Range != "" {
		aggr, err = pursuit.ParseAggression(spec.Range)
		if err != nil {
			return err
		}
	}
	return ecs.Add(w, e, component.AggressionComponent.Kind(), &component.Aggression{Range: aggr, AtSource: true})
}

type boundingBoxSpec = prefabs.BoundingBoxComponentSpec

func addBoundingBox(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[boundingBoxSpec](raw)
	if err != nil {
		return fmt.Errorf("decode bounding box spec: %w", err)
	}
	if spec.Width <= 0 {
		spec.Width = common.TileSize
	}
	if spec.Height <= 0 {
		spec.Height = common.TileSize
	}
	bb := &component.BoundingBox{
		Rect:    common.NewRect(spec.OffsetX, spec.OffsetY, spec.Width, spec.Height),
		OffsetX: spec.OffsetX,
		OffsetY: spec.OffsetY,
	}
	if t, ok := ecs.Get(w, e, component.TransformComponent.Kind()); ok {
		bb.Rect = bb.Rect.At(t.Position.X+spec.OffsetX, t.Position.Y+spec.OffsetY)
	}
	return ecs.Add(w, e, component.BoundingBoxComponent.Kind(), bb)
}

func addPursuitAgent(w *ecs.World, e ecs.Entity, _ any, _ *buildContext) error {
	return ecs.Add(w, e, component.PursuitAgentComponent.Kind(), &component.PursuitAgent{})
}

func addPhysicsBody(w *ecs.World, e ecs.Entity, _ any, _ *buildContext) error {
	return ecs.Add(w, e, component.PhysicsBodyComponent.Kind(), &component.PhysicsBody{})
}

type scriptSpec = prefabs.ScriptComponentSpec

func addScript(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[scriptSpec](raw)
	if err != nil {
		return fmt.Errorf("decode script spec: %w", err)
	}
	if spec.Path == "" {
		return fmt.Errorf("script path is empty")
	}
	return ecs.Add(w, e, component.ScriptComponent.Kind(), &component.Script{Path: spec.Path})
}

package entity

import (
	"fmt"

	"github.com/milk9111/questmark/ecs"
	"github.com/milk9111/questmark/ecs/component"
	"github.com/milk9111/questmark/levels"
	"github.com/milk9111/questmark/pursuit"
)

func NewPlayerAt(w *ecs.World, x, y float64) (ecs.Entity, error) {
	e, err := BuildEntity(w, "player.yaml")
	if err != nil {
		return 0, err
	}
	if err := SetEntityTransform(w, e, x, y); err != nil {
		return 0, fmt.Errorf("player: override transform: %w", err)
	}
	return e, nil
}

// NewEnemyAt spawns an enemy at x, y. Level props "aggression" and "speed"
// override the prefab values.
func NewEnemyAt(w *ecs.World, x, y float64, props levels.Entity) (ecs.Entity, error) {
	e, err := BuildEntity(w, "enemy.yaml")
	if err != nil {
		return 0, err
	}
	if err := SetEntityTransform(w, e, x, y); err != nil {
		ecs.DestroyEntity(w, e)
		return 0, fmt.Errorf("enemy: override transform: %w", err)
	}
	if s, ok := props.String("aggression"); ok {
		aggr, err := pursuit.ParseAggression(s)
		if err != nil {
			ecs.DestroyEntity(w, e)
			return 0, fmt.Errorf("enemy: %w", err)
		}
		if a, ok := ecs.Get(w, e, component.AggressionComponent.Kind()); ok {
			a.Range = aggr
		}
	}
	if v, ok := props.Float("speed"); ok {
		if s, ok := ecs.Get(w, e, component.SpeedComponent.Kind()); ok {
			s.Value = v
		}
	}
	return e, nil
}

// LoadLevelToWorld adds the level bounds entity and spawns every level entity.
// The player entity is returned, or 0 when the level has none.
func LoadLevelToWorld(w *ecs.World, lvl *levels.Level) (ecs.Entity, error) {
	width, height := lvl.PixelSize()
	bounds := ecs.CreateEntity(w)
	if err := ecs.Add(w, bounds, component.LevelBoundsComponent.Kind(), &component.LevelBounds{
		Width:  width,
		Height: height,
	}); err != nil {
		return 0, err
	}

	var player ecs.Entity
	for _, spawn := range lvl.Entities {
		x, y := lvl.Position(spawn)
		switch spawn.Type {
		case "player":
			e, err := NewPlayerAt(w, x, y)
			if err != nil {
				return 0, err
			}
			player = e
		case "enemy":
			if _, err := NewEnemyAt(w, x, y, spawn); err != nil {
				return 0, err
			}
		default:
			return 0, fmt.Errorf("%w: %q", ErrUnknownEntityType, spawn.Type)
		}
	}
	return player, nil
}

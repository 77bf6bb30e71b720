package entity

import (
	"errors"
	"testing"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/questmark/ecs"
	"github.com/milk9111/questmark/ecs/component"
	"github.com/milk9111/questmark/levels"
)

func TestBuildPrefabs(t *testing.T) {
	cases := []struct {
		prefab string
		kinds  []component.Key
	}{
		{"player.yaml", []component.Key{
			component.PlayerTagComponent.Kind(),
			component.TransformComponent.Kind(),
			component.VelocityComponent.Kind(),
			component.InputComponent.Kind(),
			component.BoundingBoxComponent.Kind(),
		}},
		{"enemy.yaml", []component.Key{
			component.EnemyTagComponent.Kind(),
			component.CollidableComponent.Kind(),
			component.SourcePositionComponent.Kind(),
			component.AggressionComponent.Kind(),
			component.PursuitAgentComponent.Kind(),
		}},
	}
	for _, c := range cases {
		t.Run(c.prefab, func(t *testing.T) {
			w := ecs.NewWorld()
			e, err := BuildEntity(w, c.prefab)
			if err != nil {
				t.Fatalf("build: %v", err)
			}
			got := w.Query(c.kinds...)
			if len(got) != 1 || got[0] != e {
				t.Fatalf("expected %v to carry every component, got %v", e, got)
			}
		})
	}
}

func TestBuildEntityMissingPrefab(t *testing.T) {
	w := ecs.NewWorld()
	if _, err := BuildEntity(w, "nope.yaml"); err == nil {
		t.Fatalf("expected error for missing prefab")
	}
	if w.Len() != 0 {
		t.Fatalf("expected no entity to leak, got %d", w.Len())
	}
}

func TestLoadLevelToWorld(t *testing.T) {
	lvl, err := levels.Load("arena.json")
	if err != nil {
		t.Fatalf("load level: %v", err)
	}
	w := ecs.NewWorld()
	player, err := LoadLevelToWorld(w, lvl)
	if err != nil {
		t.Fatalf("load to world: %v", err)
	}
	if !player.Valid() || !ecs.Has(w, player, component.PlayerTagComponent.Kind()) {
		t.Fatalf("expected a player entity")
	}
	pt, _ := ecs.Get(w, player, component.TransformComponent.Kind())
	if pt.Position != (cp.Vector{X: 96, Y: 384}) {
		t.Fatalf("expected player at (96,384), got %v", pt.Position)
	}

	type enemy struct {
		global bool
		radius float64
		speed  float64
	}
	want := map[cp.Vector]enemy{
		{X: 576, Y: 96}:  {radius: 160, speed: 64},
		{X: 640, Y: 384}: {global: true, speed: 48},
		{X: 352, Y: 384}: {radius: 96, speed: 64},
	}
	n := 0
	ecs.ForEach(w, component.EnemyTagComponent.Kind(), func(e ecs.Entity, _ *component.EnemyTag) {
		n++
		tr, _ := ecs.Get(w, e, component.TransformComponent.Kind())
		exp, ok := want[tr.Position]
		if !ok {
			t.Fatalf("unexpected enemy at %v", tr.Position)
		}
		src, _ := ecs.Get(w, e, component.SourcePositionComponent.Kind())
		if src.Position != tr.Position {
			t.Fatalf("expected home at spawn, got %v", src.Position)
		}
		aggr, _ := ecs.Get(w, e, component.AggressionComponent.Kind())
		if aggr.Range.IsGlobal() != exp.global {
			t.Fatalf("enemy at %v: global=%v", tr.Position, aggr.Range.IsGlobal())
		}
		if r, ok := aggr.Range.Radius(); ok && r != exp.radius {
			t.Fatalf("enemy at %v: radius=%v want %v", tr.Position, r, exp.radius)
		}
		speed, _ := ecs.Get(w, e, component.SpeedComponent.Kind())
		if speed.Value != exp.speed {
			t.Fatalf("enemy at %v: speed=%v want %v", tr.Position, speed.Value, exp.speed)
		}
		bb, _ := ecs.Get(w, e, component.BoundingBoxComponent.Kind())
		if bb.Rect.X != tr.Position.X+4 || bb.Rect.Y != tr.Position.Y+4 {
			t.Fatalf("expected box offset from spawn, got %v", bb.Rect)
		}
	})
	if n != 3 {
		t.Fatalf("expected 3 enemies, got %d", n)
	}
	if _, ok := ecs.First(w, component.LevelBoundsComponent.Kind()); !ok {
		t.Fatalf("expected level bounds entity")
	}
}

func TestLoadLevelUnknownType(t *testing.T) {
	lvl := &levels.Level{Width: 2, Height: 2, TileSize: 32, Entities: []levels.Entity{{Type: "dragon"}}}
	if _, err := LoadLevelToWorld(ecs.NewWorld(), lvl); !errors.Is(err, ErrUnknownEntityType) {
		t.Fatalf("expected ErrUnknownEntityType, got %v", err)
	}
}

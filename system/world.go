// Package system assembles the ECS world for a level and keeps it in sync
// with edits to levels, prefabs and scripts on disk.
package system

import (
	"fmt"
	"io"
	"log"
	"path/filepath"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/questmark/common"
	"github.com/milk9111/questmark/ecs"
	"github.com/milk9111/questmark/ecs/component"
	"github.com/milk9111/questmark/ecs/entity"
	ecssystem "github.com/milk9111/questmark/ecs/system"
	"github.com/milk9111/questmark/levels"
	"github.com/milk9111/questmark/prefabs"
	"github.com/milk9111/questmark/pursuit"
)

// Options configures a World.
type Options struct {
	// Level overrides the level named in pathfinding.yaml.
	Level string
	// Input drives the player; nil leaves the player to its script.
	Input ecssystem.InputReader
	// PlayerScript, when set, attaches a tengo script to the player.
	PlayerScript string
	Logger       *log.Logger
}

var discard = log.New(io.Discard, "", 0)

// AgentView is a snapshot of one pursuit agent.
type AgentView struct {
	Entity   ecs.Entity
	Position cp.Vector
	Bounds   common.Rect
	Mode     pursuit.Mode
	AtSource bool
	Path     []cp.Vector
}

// World owns the ECS world built from one level.
type World struct {
	ECS       *ecs.World
	Level     *levels.Level
	LevelName string
	Player    ecs.Entity

	opts      Options
	base      *log.Logger
	logger    *log.Logger
	spec      prefabs.PathfindingSpec
	pursuit   *ecssystem.PursuitSystem
	scripts   *ecssystem.ScriptSystem
	receivers []ecssystem.MapReceiver
}

// NewWorld loads the configured level and spawns its entities.
func NewWorld(opts Options) (*World, error) {
	logger := opts.Logger
	if logger == nil {
		logger = discard
	}
	w := &World{opts: opts, base: logger, logger: logger}
	if err := w.Load(); err != nil {
		return nil, err
	}
	return w, nil
}

// Load rebuilds everything from the current files.
func (w *World) Load() error {
	spec, err := prefabs.LoadPathfindingSpec()
	if err != nil {
		return err
	}
	w.logger = w.base
	if enabled, _ := spec.Logging(); !enabled {
		w.logger = discard
	}

	name := spec.Level
	if w.opts.Level != "" {
		name = w.opts.Level
	}
	lvl, err := levels.Load(name)
	if err != nil {
		return err
	}

	world := ecs.NewWorld()
	world.SetPhysicsWorld(ecs.NewPhysicsWorld())

	ps := ecssystem.NewPursuitSystem(spec.Planner)
	ps.SetLogger(w.logger)
	ss := ecssystem.NewScriptSystem(prefabs.LoadScript)
	ss.SetLogger(w.logger)

	world.AddSystem(ecssystem.NewInputSystem(w.opts.Input))
	world.AddSystem(ss)
	world.AddSystem(ps)
	world.AddSystem(ecssystem.NewMovementSystem())

	player, err := entity.LoadLevelToWorld(world, lvl)
	if err != nil {
		return fmt.Errorf("system: spawn %s: %w", name, err)
	}
	if player.Valid() && w.opts.PlayerScript != "" {
		if err := ecs.Add(world, player, component.ScriptComponent.Kind(), &component.Script{Path: w.opts.PlayerScript}); err != nil {
			return fmt.Errorf("system: attach player script: %w", err)
		}
	}

	w.ECS = world
	w.Level = lvl
	w.LevelName = name
	w.Player = player
	w.spec = spec
	w.pursuit = ps
	w.scripts = ss
	w.receivers = []ecssystem.MapReceiver{ps}
	w.deliverMap()

	w.logger.Printf("World: loaded %s (%dx%d, %d entities)", name, lvl.Width, lvl.Height, world.Len())
	return nil
}

func (w *World) deliverMap() {
	static := w.Level.Obstacles()
	w.ECS.PhysicsWorld().SetStatic(static)
	for _, r := range w.receivers {
		r.SetMapData(w.Level.Width, w.Level.Height, w.Level.TileSize, static)
	}
}

// Step advances the simulation and returns the events it raised.
func (w *World) Step(dt float64) []ecs.Event {
	w.ECS.Update(dt)
	return w.ECS.Events().Drain()
}

// HandleFileChange reacts to a file reported by prefabs.Watcher. An edit to
// the current level only replaces the map data so agents keep their state;
// prefab edits respawn the level; script edits recompile on the next tick.
func (w *World) HandleFileChange(path string) error {
	switch {
	case prefabs.IsScriptFile(path):
		w.scripts.Invalidate(filepath.Base(path))
		w.logger.Printf("World: script %s changed", path)
		return nil
	case prefabs.IsLevelFile(path):
		if filepath.Base(path) != filepath.Base(w.LevelName) {
			return nil
		}
		lvl, err := levels.Load(w.LevelName)
		if err != nil {
			return err
		}
		w.Level = lvl
		w.deliverMap()
		w.logger.Printf("World: map data of %s reloaded", w.LevelName)
		return nil
	case prefabs.IsSpecFile(path):
		w.logger.Printf("World: prefab %s changed, reloading", path)
		return w.Load()
	}
	return nil
}

// Agents returns a snapshot of every pursuit agent.
func (w *World) Agents() []AgentView {
	var out []AgentView
	ecs.ForEach(w.ECS, component.PursuitAgentComponent.Kind(), func(e ecs.Entity, agent *component.PursuitAgent) {
		view := AgentView{Entity: e, Mode: agent.Mode}
		if t, ok := ecs.Get(w.ECS, e, component.TransformComponent.Kind()); ok {
			view.Position = t.Position
		}
		if bb, ok := ecs.Get(w.ECS, e, component.BoundingBoxComponent.Kind()); ok {
			view.Bounds = bb.Rect
		}
		if st, ok := w.pursuit.Controller().State(agent.Handle); ok {
			view.AtSource = st.AtSource
			view.Path = append([]cp.Vector(nil), st.Path...)
		}
		out = append(out, view)
	})
	return out
}

// PlayerBounds returns the player's box, if there is a player.
func (w *World) PlayerBounds() (common.Rect, bool) {
	if !w.Player.Valid() {
		return common.Rect{}, false
	}
	bb, ok := ecs.Get(w.ECS, w.Player, component.BoundingBoxComponent.Kind())
	if !ok {
		return common.Rect{}, false
	}
	return bb.Rect, true
}

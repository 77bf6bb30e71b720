package system

import (
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"github.com/milk9111/questmark/ecs"
	"github.com/milk9111/questmark/ecs/component"
)

// ScriptLoader returns the source of a script by path.
type ScriptLoader func(path string) ([]byte, error)

type scriptRuntime struct {
	path      string
	compiled  *tengo.Compiled
	stateData *tengo.Map
}

const scriptDispatch = `
if __phase == "update" {
	update(__engine, __state)
}
`

// ScriptSystem runs a tengo script's update(engine, state) function once per
// tick for every entity with a Script component. The engine exposes:
//
//	position()          -> [x, y]
//	target()            -> [x, y] of the player, or undefined
//	speed()             -> speed of the entity
//	delta()             -> tick length in seconds
//	elapsed()           -> simulated seconds
//	set_velocity(x, y)  -> sets velocity in world units per second
//	log(msg)
type ScriptSystem struct {
	load    ScriptLoader
	logger  *log.Logger
	runtime map[ecs.Entity]*scriptRuntime
	failed  map[ecs.Entity]string
}

func NewScriptSystem(load ScriptLoader) *ScriptSystem {
	return &ScriptSystem{
		load:    load,
		logger:  log.New(io.Discard, "", 0),
		runtime: make(map[ecs.Entity]*scriptRuntime),
		failed:  make(map[ecs.Entity]string),
	}
}

func (ss *ScriptSystem) SetLogger(l *log.Logger) {
	if l == nil {
		l = log.New(io.Discard, "", 0)
	}
	ss.logger = l
}

// Invalidate drops compiled scripts so the next tick reloads them. An empty
// path drops all of them.
func (ss *ScriptSystem) Invalidate(path string) {
	for e, rt := range ss.runtime {
		if path == "" || sameScript(rt.path, path) {
			delete(ss.runtime, e)
		}
	}
	clear(ss.failed)
}

func sameScript(a, b string) bool {
	return strings.TrimSuffix(a, ".tengo") == strings.TrimSuffix(b, ".tengo") ||
		strings.HasSuffix(b, a) || strings.HasSuffix(a, b)
}

func (ss *ScriptSystem) Update(w *ecs.World) {
	if ss == nil || w == nil {
		return
	}
	for e := range ss.runtime {
		if !w.IsAlive(e) {
			delete(ss.runtime, e)
			delete(ss.failed, e)
		}
	}

	ecs.ForEach(w, component.ScriptComponent.Kind(), func(e ecs.Entity, sc *component.Script) {
		if sc.Path == "" || ss.failed[e] == sc.Path {
			return
		}
		rt, err := ss.runtimeFor(e, sc)
		if err != nil {
			ss.failed[e] = sc.Path
			ss.logger.Printf("ScriptSystem: entity %v load %q: %v", e, sc.Path, err)
			return
		}
		if err := rt.run("update", buildScriptEngine(w, e, ss.logger)); err != nil {
			delete(ss.runtime, e)
			ss.failed[e] = sc.Path
			ss.logger.Printf("ScriptSystem: entity %v update %q: %v", e, sc.Path, err)
			return
		}
		sc.State = stateToAny(rt.stateData)
	})
}

func (ss *ScriptSystem) runtimeFor(e ecs.Entity, sc *component.Script) (*scriptRuntime, error) {
	if rt, ok := ss.runtime[e]; ok && rt.path == sc.Path {
		return rt, nil
	}
	if ss.load == nil {
		return nil, fmt.Errorf("no script loader")
	}
	src, err := ss.load(sc.Path)
	if err != nil {
		return nil, err
	}

	script := tengo.NewScript([]byte(string(src) + "\n" + scriptDispatch))
	_ = script.Add("__phase", "")
	_ = script.Add("__engine", map[string]any{})
	_ = script.Add("__state", map[string]any{})
	script.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))

	compiled, err := script.Compile()
	if err != nil {
		return nil, err
	}

	state := &tengo.Map{Value: map[string]tengo.Object{}}
	for k, v := range sc.State {
		obj, err := tengo.FromInterface(v)
		if err != nil {
			continue
		}
		state.Value[k] = obj
	}

	rt := &scriptRuntime{path: sc.Path, compiled: compiled, stateData: state}
	ss.runtime[e] = rt
	return rt, nil
}

func (rt *scriptRuntime) run(phase string, engine *tengo.ImmutableMap) error {
	if err := rt.compiled.Set("__phase", phase); err != nil {
		return err
	}
	if err := rt.compiled.Set("__engine", engine); err != nil {
		return err
	}
	if err := rt.compiled.Set("__state", rt.stateData); err != nil {
		return err
	}
	return rt.compiled.Run()
}

func buildScriptEngine(w *ecs.World, e ecs.Entity, logger *log.Logger) *tengo.ImmutableMap {
	values := map[string]tengo.Object{}

	values["position"] = &tengo.UserFunction{Name: "position", Value: func(args ...tengo.Object) (tengo.Object, error) {
		t, ok := ecs.Get(w, e, component.TransformComponent.Kind())
		if !ok {
			return tengo.UndefinedValue, nil
		}
		return vectorObject(t.Position.X, t.Position.Y), nil
	}}

	values["target"] = &tengo.UserFunction{Name: "target", Value: func(args ...tengo.Object) (tengo.Object, error) {
		player, ok := ecs.First(w, component.PlayerTagComponent.Kind())
		if !ok || player == e {
			return tengo.UndefinedValue, nil
		}
		t, ok := ecs.Get(w, player, component.TransformComponent.Kind())
		if !ok {
			return tengo.UndefinedValue, nil
		}
		return vectorObject(t.Position.X, t.Position.Y), nil
	}}

	values["speed"] = &tengo.UserFunction{Name: "speed", Value: func(args ...tengo.Object) (tengo.Object, error) {
		s, ok := ecs.Get(w, e, component.SpeedComponent.Kind())
		if !ok {
			return &tengo.Float{Value: 0}, nil
		}
		return &tengo.Float{Value: s.Value}, nil
	}}

	values["delta"] = &tengo.UserFunction{Name: "delta", Value: func(args ...tengo.Object) (tengo.Object, error) {
		return &tengo.Float{Value: w.DeltaTime()}, nil
	}}

	values["elapsed"] = &tengo.UserFunction{Name: "elapsed", Value: func(args ...tengo.Object) (tengo.Object, error) {
		return &tengo.Float{Value: w.Elapsed()}, nil
	}}

	values["set_velocity"] = &tengo.UserFunction{Name: "set_velocity", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) != 2 {
			return nil, tengo.ErrWrongNumArguments
		}
		x, ok := tengo.ToFloat64(args[0])
		if !ok {
			return nil, tengo.ErrInvalidArgumentType{Name: "x", Expected: "float", Found: args[0].TypeName()}
		}
		y, ok := tengo.ToFloat64(args[1])
		if !ok {
			return nil, tengo.ErrInvalidArgumentType{Name: "y", Expected: "float", Found: args[1].TypeName()}
		}
		vel, ok := ecs.Get(w, e, component.VelocityComponent.Kind())
		if !ok {
			return tengo.FalseValue, nil
		}
		vel.Value.X = x
		vel.Value.Y = y
		return tengo.TrueValue, nil
	}}

	values["log"] = &tengo.UserFunction{Name: "log", Value: func(args ...tengo.Object) (tengo.Object, error) {
		parts := make([]string, 0, len(args))
		for _, a := range args {
			parts = append(parts, objectAsString(a))
		}
		logger.Printf("script: entity %v: %s", e, strings.Join(parts, " "))
		return tengo.UndefinedValue, nil
	}}

	return &tengo.ImmutableMap{Value: values}
}

func vectorObject(x, y float64) tengo.Object {
	return &tengo.Array{Value: []tengo.Object{&tengo.Float{Value: x}, &tengo.Float{Value: y}}}
}

func objectAsString(obj tengo.Object) string {
	if obj == nil {
		return ""
	}
	switch v := obj.(type) {
	case *tengo.String:
		return v.Value
	default:
		return strings.Trim(v.String(), "\"")
	}
}

func stateToAny(m *tengo.Map) map[string]any {
	out := make(map[string]any, len(m.Value))
	for k, v := range m.Value {
		out[k] = tengo.ToInterface(v)
	}
	return out
}

package prefabs

import "gopkg.in/yaml.v3"

// EntityBuildSpec lists the components of a prefab by registry name.
type EntityBuildSpec struct {
	Name       string         `yaml:"name"`
	Components map[string]any `yaml:"components"`
}

func LoadEntityBuildSpec(filename string) (EntityBuildSpec, error) {
	return LoadSpec[EntityBuildSpec](filename)
}

func DecodeComponentSpec[T any](raw any) (T, error) {
	var zero T
	if raw == nil {
		return zero, nil
	}
	b, err := yaml.Marshal(raw)
	if err != nil {
		return zero, err
	}
	var out T
	if err := yaml.Unmarshal(b, &out); err != nil {
		return zero, err
	}
	return out, nil
}

type TransformComponentSpec struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

type SpeedComponentSpec struct {
	Value float64 `yaml:"value"`
}

type BoundingBoxComponentSpec struct {
	Width   float64 `yaml:"width"`
	Height  float64 `yaml:"height"`
	OffsetX float64 `yaml:"offset_x"`
	OffsetY float64 `yaml:"offset_y"`
}

// AggressionComponentSpec takes "global", "-1" or a radius in world units.
type AggressionComponentSpec struct {
	Range string `yaml:"range"`
}

type ScriptComponentSpec struct {
	Path string `yaml:"path"`
}

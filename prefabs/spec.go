package prefabs

import (
	"errors"
	"fmt"
	"strings"

	"github.com/milk9111/questmark/pathfinding"
	"gopkg.in/yaml.v3"
)

func LoadSpec[T any](filename string) (T, error) {
	var zero T
	data, err := Load(filename)
	if err != nil {
		return zero, fmt.Errorf("prefabs: load %s: %w", filename, err)
	}

	var spec T
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return zero, fmt.Errorf("prefabs: unmarshal %s: %w", filename, err)
	}

	return spec, nil
}

var ErrInvalidLogLevel = errors.New("prefabs: invalid log level")

// PathfindingSpec tunes the planner shared by every pursuit agent.
type PathfindingSpec struct {
	Level    string             `yaml:"level"`
	Planner  pathfinding.Config `yaml:"planner"`
	LogLevel string             `yaml:"log_level"`
}

func LoadPathfindingSpec() (PathfindingSpec, error) {
	spec, err := LoadSpec[PathfindingSpec]("pathfinding.yaml")
	if err != nil {
		return PathfindingSpec{}, err
	}
	if spec.Level == "" {
		spec.Level = "arena.json"
	}
	if _, err := spec.Logging(); err != nil {
		return PathfindingSpec{}, err
	}
	return spec, nil
}

// Logging reports whether the log level lets diagnostics through. An empty
// level means info.
func (s PathfindingSpec) Logging() (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s.LogLevel)) {
	case "", "info", "debug":
		return true, nil
	case "off", "none", "quiet":
		return false, nil
	}
	return false, fmt.Errorf("%w: %q", ErrInvalidLogLevel, s.LogLevel)
}

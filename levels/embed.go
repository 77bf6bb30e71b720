// Package levels loads tile maps. A level is a JSON grid of tile layers;
// non-zero tiles in layers flagged as physics become static obstacles.
package levels

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/milk9111/questmark/common"
)

//go:embed *.json
var LevelsFS embed.FS

var ErrInvalidLevel = errors.New("levels: invalid level")

type Level struct {
	Width     int         `json:"width"`
	Height    int         `json:"height"`
	TileSize  int         `json:"tile_size,omitempty"`
	Layers    [][]int     `json:"layers"`
	LayerMeta []LayerMeta `json:"layer_meta,omitempty"`
	Entities  []Entity    `json:"entities,omitempty"`
}

type LayerMeta struct {
	Physics bool `json:"physics"`
}

// Entity is a spawn entry in tile coordinates.
type Entity struct {
	Type  string                 `json:"type"`
	X     int                    `json:"x"`
	Y     int                    `json:"y"`
	Props map[string]interface{} `json:"props,omitempty"`
}

// Load reads name from levels/ on disk, falling back to the embedded copy.
func Load(name string) (*Level, error) {
	clean := cleanLevelPath(name)
	data, err := os.ReadFile(filepath.Join("levels", filepath.FromSlash(clean)))
	if err != nil {
		data, err = LevelsFS.ReadFile(clean)
		if err != nil {
			return nil, fmt.Errorf("levels: read %s: %w", clean, err)
		}
	}
	lvl, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("levels: %s: %w", clean, err)
	}
	return lvl, nil
}

// Parse decodes and validates a level.
func Parse(data []byte) (*Level, error) {
	var lvl Level
	if err := json.Unmarshal(data, &lvl); err != nil {
		return nil, fmt.Errorf("unmarshal level: %w", err)
	}
	if lvl.TileSize <= 0 {
		lvl.TileSize = common.TileSize
	}
	if err := lvl.validate(); err != nil {
		return nil, err
	}
	return &lvl, nil
}

func (l *Level) validate() error {
	if l.Width <= 0 || l.Height <= 0 {
		return fmt.Errorf("%w: size %dx%d", ErrInvalidLevel, l.Width, l.Height)
	}
	for i, layer := range l.Layers {
		if len(layer) != l.Width*l.Height {
			return fmt.Errorf("%w: layer %d has %d tiles, want %d", ErrInvalidLevel, i, len(layer), l.Width*l.Height)
		}
	}
	if len(l.LayerMeta) > len(l.Layers) {
		return fmt.Errorf("%w: %d layer_meta entries for %d layers", ErrInvalidLevel, len(l.LayerMeta), len(l.Layers))
	}
	for _, e := range l.Entities {
		if e.X < 0 || e.Y < 0 || e.X >= l.Width || e.Y >= l.Height {
			return fmt.Errorf("%w: entity %q at %d,%d is outside the map", ErrInvalidLevel, e.Type, e.X, e.Y)
		}
	}
	return nil
}

// Solid reports whether tile x, y is filled in any physics layer.
func (l *Level) Solid(x, y int) bool {
	if x < 0 || y < 0 || x >= l.Width || y >= l.Height {
		return false
	}
	idx := y*l.Width + x
	for i, layer := range l.Layers {
		if i < len(l.LayerMeta) && l.LayerMeta[i].Physics && layer[idx] > 0 {
			return true
		}
	}
	return false
}

// Obstacles returns one tile-sized box per solid tile.
func (l *Level) Obstacles() []common.Rect {
	ts := float64(l.TileSize)
	var out []common.Rect
	for y := 0; y < l.Height; y++ {
		for x := 0; x < l.Width; x++ {
			if l.Solid(x, y) {
				out = append(out, common.NewRect(float64(x)*ts, float64(y)*ts, ts, ts))
			}
		}
	}
	return out
}

// PixelSize returns the level extent in world units.
func (l *Level) PixelSize() (float64, float64) {
	return float64(l.Width * l.TileSize), float64(l.Height * l.TileSize)
}

// Position converts e's tile coordinates to world units.
func (l *Level) Position(e Entity) (float64, float64) {
	return float64(e.X * l.TileSize), float64(e.Y * l.TileSize)
}

// String returns a prop as text, accepting JSON numbers too.
func (e Entity) String(key string) (string, bool) {
	v, ok := e.Props[key]
	if !ok {
		return "", false
	}
	switch t := v.(type) {
	case string:
		return t, true
	case float64:
		return fmt.Sprintf("%g", t), true
	}
	return "", false
}

func (e Entity) Float(key string) (float64, bool) {
	v, ok := e.Props[key].(float64)
	return v, ok
}

func cleanLevelPath(name string) string {
	s := filepath.ToSlash(name)
	s = strings.TrimPrefix(s, "levels/")
	if !strings.HasSuffix(s, ".json") {
		s += ".json"
	}
	return s
}

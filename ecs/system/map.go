package system

import "github.com/milk9111/questmark/common"

// MapReceiver is implemented by systems that need the tile map. Hosts call
// SetMapData on every receiver after a level is loaded or reloaded.
type MapReceiver interface {
	SetMapData(width, height, tileSize int, static []common.Rect)
}

package main

import (
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

const stickDeadZone = 0.2

// Input polls the keyboard and the first gamepad. It feeds the player's
// movement through ecs/system.InputReader.
type Input struct {
	MoveX float64
	MoveY float64

	DebugPressed  bool
	ReloadPressed bool
	PausePressed  bool
}

func NewInput() *Input {
	return &Input{}
}

func (i *Input) Update() {
	if inpututil.IsKeyJustPressed(ebiten.KeyF12) {
		os.Exit(0)
	}

	var x, y float64
	if ebiten.IsKeyPressed(ebiten.KeyA) || ebiten.IsKeyPressed(ebiten.KeyLeft) {
		x -= 1
	}
	if ebiten.IsKeyPressed(ebiten.KeyD) || ebiten.IsKeyPressed(ebiten.KeyRight) {
		x += 1
	}
	if ebiten.IsKeyPressed(ebiten.KeyW) || ebiten.IsKeyPressed(ebiten.KeyUp) {
		y -= 1
	}
	if ebiten.IsKeyPressed(ebiten.KeyS) || ebiten.IsKeyPressed(ebiten.KeyDown) {
		y += 1
	}

	if ids := ebiten.AppendGamepadIDs(nil); len(ids) > 0 && x == 0 && y == 0 {
		gid := ids[0]
		if ebiten.IsStandardGamepadLayoutAvailable(gid) {
			sx := ebiten.StandardGamepadAxisValue(gid, ebiten.StandardGamepadAxisLeftStickHorizontal)
			sy := ebiten.StandardGamepadAxisValue(gid, ebiten.StandardGamepadAxisLeftStickVertical)
			if sx > stickDeadZone || sx < -stickDeadZone {
				x = sx
			}
			if sy > stickDeadZone || sy < -stickDeadZone {
				y = sy
			}
		}
	}

	i.MoveX, i.MoveY = x, y
	i.DebugPressed = inpututil.IsKeyJustPressed(ebiten.KeyF3)
	i.ReloadPressed = inpututil.IsKeyJustPressed(ebiten.KeyR)
	i.PausePressed = inpututil.IsKeyJustPressed(ebiten.KeyEscape) || inpututil.IsKeyJustPressed(ebiten.KeyP)
}

func (i *Input) Axis() (float64, float64) {
	return i.MoveX, i.MoveY
}

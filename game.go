package main

import (
	"fmt"
	"image/color"
	"log"

	"github.com/ebitenui/ebitenui"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/milk9111/questmark/common"
	"github.com/milk9111/questmark/prefabs"
	"github.com/milk9111/questmark/pursuit"
	"github.com/milk9111/questmark/system"
	"golang.org/x/image/colornames"
)

const (
	baseWidth  = 1280
	baseHeight = 720
)

type Game struct {
	frames int
	debug  bool
	paused bool

	input   *Input
	world   *system.World
	watcher *prefabs.Watcher
	pauseUI *ebitenui.UI

	lastEvent string
}

func NewGame(levelName string, debug bool, watch bool) *Game {
	input := NewInput()
	world, err := system.NewWorld(system.Options{
		Level:  levelName,
		Input:  input,
		Logger: log.Default(),
	})
	if err != nil {
		log.Fatalf("failed to load world: %v", err)
	}

	g := &Game{
		debug: debug,
		input: input,
		world: world,
	}
	if watch {
		w, err := prefabs.NewWatcher("levels", "prefabs", "prefabs/scripts")
		if err != nil {
			log.Printf("hot reload disabled: %v", err)
		} else {
			g.watcher = w
		}
	}
	g.pauseUI = NewPauseUI(g)
	return g
}

func (g *Game) Update() error {
	g.frames++

	g.input.Update()
	if g.input.DebugPressed {
		g.debug = !g.debug
	}
	if g.input.PausePressed {
		g.paused = !g.paused
	}
	if g.input.ReloadPressed {
		if err := g.world.Load(); err != nil {
			log.Printf("reload failed: %v", err)
		}
	}
	g.drainWatcher()

	if g.paused {
		g.pauseUI.Update()
		return nil
	}

	for _, ev := range g.world.Step(1.0 / float64(ebiten.TPS())) {
		if ev.Type == "pursuit.replan" {
			continue
		}
		g.lastEvent = fmt.Sprintf("%s %v", ev.Type, ev.Entity)
	}
	return nil
}

func (g *Game) drainWatcher() {
	if g.watcher == nil {
		return
	}
	for {
		select {
		case path, ok := <-g.watcher.Events:
			if !ok {
				g.watcher = nil
				return
			}
			if err := g.world.HandleFileChange(path); err != nil {
				log.Printf("reload %s failed: %v", path, err)
			}
		case err, ok := <-g.watcher.Errors:
			if ok {
				log.Printf("watcher: %v", err)
			}
			return
		default:
			return
		}
	}
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(colornames.Black)

	lvl := g.world.Level
	w, h := lvl.PixelSize()
	ox := (baseWidth - w) / 2
	oy := (baseHeight - h) / 2

	vector.DrawFilledRect(screen, float32(ox), float32(oy), float32(w), float32(h), colornames.Darkslategray, false)
	for _, r := range lvl.Obstacles() {
		fillRect(screen, r, ox, oy, colornames.Dimgray)
	}

	for _, a := range g.world.Agents() {
		clr := colornames.Steelblue
		switch {
		case a.Mode == pursuit.ModePursuing:
			clr = colornames.Orangered
		case a.AtSource:
			clr = colornames.Seagreen
		}
		fillRect(screen, a.Bounds, ox, oy, clr)
		if g.debug {
			c := a.Bounds.Center()
			prevX, prevY := c.X, c.Y
			for i := len(a.Path) - 1; i >= 0; i-- {
				p := a.Path[i]
				x := p.X + float64(lvl.TileSize)/2
				y := p.Y + float64(lvl.TileSize)/2
				vector.StrokeLine(screen, float32(prevX+ox), float32(prevY+oy), float32(x+ox), float32(y+oy), 1, colornames.Gold, true)
				prevX, prevY = x, y
			}
		}
	}

	if bb, ok := g.world.PlayerBounds(); ok {
		fillRect(screen, bb, ox, oy, colornames.Crimson)
	}
	if g.debug {
		drawPhysics(screen, g.world.ECS.PhysicsWorld().Space(), ox, oy)
	}

	ebitenutil.DebugPrint(screen, fmt.Sprintf("Frames: %d    FPS: %.2f", g.frames, ebiten.ActualFPS()))
	if g.debug {
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("Level: %s  Entities: %d  Last: %s", g.world.LevelName, g.world.ECS.Len(), g.lastEvent), 0, 20)
	}
	if g.paused {
		g.pauseUI.Draw(screen)
	}
}

func fillRect(screen *ebiten.Image, r common.Rect, ox, oy float64, clr color.Color) {
	vector.DrawFilledRect(screen, float32(r.X+ox), float32(r.Y+oy), float32(r.Width), float32(r.Height), clr, false)
}

func (g *Game) LayoutF(outsideWidth, outsideHeight float64) (float64, float64) {
	return baseWidth, baseHeight
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	panic("shouldn't use Layout")
}

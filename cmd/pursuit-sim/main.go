// Command pursuit-sim runs a level headless at a fixed step and logs what the
// pursuit agents do while a scripted player walks around.
package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/milk9111/questmark/prefabs"
	"github.com/milk9111/questmark/pursuit"
	"github.com/milk9111/questmark/system"
)

func main() {
	levelName := flag.String("level", "", "level name in levels/ (basename, .json optional)")
	ticks := flag.Int("ticks", 600, "number of simulation ticks, 0 runs until interrupted")
	dt := flag.Float64("dt", 1.0/60, "seconds per tick")
	script := flag.String("script", "patrol", "tengo script driving the player")
	every := flag.Int("every", 60, "print agent states every n ticks, 0 disables")
	verbose := flag.Bool("v", false, "log replans and system diagnostics")
	watch := flag.Bool("watch", false, "reload levels, prefabs and scripts when they change on disk")
	realtime := flag.Bool("realtime", false, "sleep dt between ticks")
	flag.Parse()

	opts := system.Options{
		Level:        *levelName,
		PlayerScript: *script,
	}
	if *verbose {
		opts.Logger = log.Default()
	}
	world, err := system.NewWorld(opts)
	if err != nil {
		log.Fatalf("pursuit-sim: %v", err)
	}

	var watcher *prefabs.Watcher
	if *watch {
		watcher, err = prefabs.NewWatcher("levels", "prefabs", "prefabs/scripts")
		if err != nil {
			log.Fatalf("pursuit-sim: watch: %v", err)
		}
		defer watcher.Close()
	}

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)

	log.Printf("pursuit-sim: level=%s ticks=%d dt=%.4f", world.LevelName, *ticks, *dt)
	for tick := 1; *ticks == 0 || tick <= *ticks; tick++ {
		select {
		case <-interrupt:
			log.Printf("pursuit-sim: interrupted at tick %d", tick)
			return
		default:
		}
		if watcher != nil {
			drain(world, watcher)
		}

		for _, ev := range world.Step(*dt) {
			if !*verbose && ev.Type == "pursuit.replan" {
				continue
			}
			log.Printf("tick %5d  %-18s %v", tick, ev.Type, ev.Entity)
		}

		if *every > 0 && tick%*every == 0 {
			report(world, tick)
		}
		if *realtime {
			time.Sleep(time.Duration(*dt * float64(time.Second)))
		}
	}
}

func drain(world *system.World, watcher *prefabs.Watcher) {
	for {
		select {
		case path, ok := <-watcher.Events:
			if !ok {
				return
			}
			if err := world.HandleFileChange(path); err != nil {
				log.Printf("pursuit-sim: reload %s: %v", path, err)
			}
		default:
			return
		}
	}
}

func report(world *system.World, tick int) {
	if bb, ok := world.PlayerBounds(); ok {
		log.Printf("tick %5d  player at (%.1f, %.1f)", tick, bb.X, bb.Y)
	}
	for _, a := range world.Agents() {
		state := a.Mode.String()
		if a.Mode == pursuit.ModeReturning && a.AtSource {
			state = "idle"
		}
		log.Printf("tick %5d  agent %-8v %-10s pos=(%.1f, %.1f) steps=%d", tick, a.Entity, state, a.Position.X, a.Position.Y, len(a.Path))
	}
}

// Command framedump renders one frame of a dungeon floor to a PNG without
// opening a window.
package main

import (
	"context"
	"flag"
	"fmt"
	"image/png"
	"log"
	"os"

	"dungeonview/internal/config"
	"dungeonview/internal/dungeon"
	"dungeonview/internal/graphics"
	"dungeonview/internal/monster"
	"dungeonview/internal/telemetry"
	"dungeonview/internal/view"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Note: .env file not loaded: %v", err)
	}

	configPath := flag.String("config", "config.yaml", "Configuration file")
	floor := flag.Int("floor", 1, "Floor to render, starting at 1")
	facing := flag.String("facing", "North", "Viewer facing: North, East, South or West")
	steps := flag.Int("steps", 0, "Tiles to walk forward before rendering")
	revealAll := flag.Bool("reveal", false, "Mark the whole floor explored")
	out := flag.String("out", "frame.png", "Output PNG path")
	flag.Parse()

	if err := run(*configPath, *floor, *facing, *steps, *revealAll, *out); err != nil {
		log.Fatalf("framedump: %v", err)
	}
}

func run(configPath string, floor int, facing string, steps int, revealAll bool, out string) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return err
	}

	ctx := context.Background()
	shutdown, err := telemetry.Setup(ctx, cfg.Telemetry)
	if err != nil {
		log.Printf("Warning: telemetry setup failed: %v", err)
	} else {
		defer shutdown(ctx)
	}

	tiles, err := dungeon.LoadTileRegistry(cfg.Dungeon.Tiles)
	if err != nil {
		return err
	}
	monsters, err := monster.LoadRegistry(cfg.Dungeon.Monsters)
	if err != nil {
		return err
	}
	floors, err := dungeon.LoadFloors(cfg.Dungeon.Floors, tiles, monsters)
	if err != nil {
		return err
	}
	d, err := dungeon.New(floors, tiles, dungeon.Options{
		MaxViewDistance: cfg.View.MaxViewDistance,
		LateralRange:    cfg.View.LateralRange,
	})
	if err != nil {
		return err
	}

	if err := position(d, floor, facing, steps, revealAll); err != nil {
		return err
	}

	surface := graphics.NewRasterSurface(cfg.GetScreenWidth(), cfg.GetScreenHeight())
	r := view.NewRenderer(cfg, monsters, view.WithTracer(telemetry.Tracer("framedump")))
	r.Render(ctx, surface, d)

	f, err := os.Create(out)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := png.Encode(f, surface.Image()); err != nil {
		return fmt.Errorf("failed to encode %s: %w", out, err)
	}
	log.Printf("[FrameDump] Wrote %s (%s)", out, d.Position())
	return nil
}

// position places the viewer on floor (1-based), turns to facing and walks
// forward
func position(d *dungeon.Dungeon, floor int, facing string, steps int, revealAll bool) error {
	if err := d.EnterFloor(floor - 1); err != nil {
		return err
	}
	valid := false
	for dir := dungeon.North; dir <= dungeon.West; dir++ {
		valid = valid || dir.String() == facing
	}
	if !valid {
		return fmt.Errorf("unknown facing %q", facing)
	}
	for d.PlayerDirection().String() != facing {
		d.TurnRight()
	}
	for i := 0; i < steps; i++ {
		if !d.Step(true) {
			log.Printf("[FrameDump] Blocked after %d steps", i)
			break
		}
	}
	if revealAll {
		fd := d.CurrentFloorData()
		for y := 0; y < fd.Height; y++ {
			for x := 0; x < fd.Width; x++ {
				d.MarkExplored(d.CurrentFloor(), x, y)
			}
		}
	}
	return nil
}

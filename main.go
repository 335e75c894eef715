package main

import (
	"flag"
	"log/slog"
	"os"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/windy/config"
	"github.com/pthm-cable/windy/game"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Run without graphics on a virtual clock")
	logStats := flag.Bool("log-stats", false, "Output stats via slog")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	seed := flag.Int64("seed", 0, "Particle RNG seed (0 = config, then time-based)")
	maxFrames := flag.Int("max-frames", 0, "Stop after N frames (0 = unlimited)")
	snapshot := flag.String("snapshot", "", "Write a PNG of the final frame (headless)")
	debug := flag.Bool("debug", false, "Enable debug logging")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})))

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	opts := game.Options{
		Seed:      *seed,
		LogStats:  *logStats,
		OutputDir: *outputDir,
		Headless:  *headless,
	}

	if *headless {
		// Headless mode - CPU rasters only, no raylib window
		g, err := game.NewGame(opts)
		if err != nil {
			slog.Error("failed to start", "error", err)
			os.Exit(1)
		}
		defer g.Unload()

		frames := *maxFrames
		if frames <= 0 {
			frames = cfg.Telemetry.LogIntervalFrames
		}
		slog.Info("starting headless run", "seed", *seed, "max_frames", frames)

		for g.Frame() < frames {
			g.UpdateHeadless()
		}
		slog.Info("max frames reached", "frame", g.Frame())

		if *snapshot != "" {
			if err := g.WriteSnapshot(*snapshot); err != nil {
				slog.Error("failed to write snapshot", "error", err)
				os.Exit(1)
			}
			slog.Info("snapshot saved", "path", *snapshot)
		}
		return
	}

	// Graphical mode
	rl.SetConfigFlags(rl.FlagWindowResizable)
	rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), "Windy")
	defer rl.CloseWindow()

	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

	g, err := game.NewGame(opts)
	if err != nil {
		slog.Error("failed to start", "error", err)
		return
	}
	defer g.Unload()

	for !rl.WindowShouldClose() {
		g.Update()
		g.Draw()

		if *maxFrames > 0 && g.Frame() >= *maxFrames {
			break
		}
	}
}

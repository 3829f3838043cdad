// Command hexforge generates hex-grid worlds and serves them over HTTP.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/talgya/hexforge/internal/api"
	"github.com/talgya/hexforge/internal/diagnostics"
	"github.com/talgya/hexforge/internal/ecs"
	"github.com/talgya/hexforge/internal/engine"
	"github.com/talgya/hexforge/internal/entropy"
	"github.com/talgya/hexforge/internal/persistence"
	"github.com/talgya/hexforge/internal/worldgen"
)

func main() {
	configPath := flag.String("config", "", "YAML world settings (defaults when empty)")
	dbPath := flag.String("db", "data/hexforge.db", "SQLite database path")
	errorDir := flag.String("error-dir", "data/errors", "directory for failure reports")
	port := flag.Int("port", 8080, "HTTP API port")
	logLevel := flag.String("log-level", "info", "debug, info, warn or error")
	seed := flag.Int64("seed", -1, "override the configured seed (0 = random)")
	generate := flag.Bool("generate", false, "start generating at boot")
	headless := flag.Bool("headless", false, "generate once without the HTTP API, then exit")
	flag.Parse()

	var level slog.Level
	if err := level.UnmarshalText([]byte(*logLevel)); err != nil {
		fmt.Fprintf(os.Stderr, "invalid -log-level %q\n", *logLevel)
		os.Exit(2)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})))

	if err := run(options{
		configPath: *configPath,
		dbPath:     *dbPath,
		errorDir:   *errorDir,
		port:       *port,
		seed:       *seed,
		generate:   *generate || *headless,
		headless:   *headless,
	}); err != nil {
		slog.Error("hexforge failed", "error", err)
		os.Exit(1)
	}
}

type options struct {
	configPath string
	dbPath     string
	errorDir   string
	port       int
	seed       int64
	generate   bool
	headless   bool
}

func run(opts options) error {
	settings := worldgen.DefaultSettings()
	if opts.configPath != "" {
		var err error
		if settings, err = worldgen.LoadSettings(opts.configPath); err != nil {
			return fmt.Errorf("load settings: %w", err)
		}
	}
	if opts.seed >= 0 {
		settings.Seed = opts.seed
	}

	// ── Database ──────────────────────────────────────────────────────
	if dir := filepath.Dir(opts.dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create data dir: %w", err)
		}
	}
	db, err := persistence.Open(opts.dbPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()
	slog.Info("database opened", "path", opts.dbPath)

	// ── Generation ────────────────────────────────────────────────────
	states := engine.NewStateMachine(worldgen.GameMainMenu)
	eng := engine.NewEngine(states)

	randomKey := os.Getenv("RANDOM_ORG_API_KEY")
	if randomKey == "" {
		slog.Info("RANDOM_ORG_API_KEY not set, random seeds come from crypto/rand")
	}
	orch := worldgen.New(worldgen.Config{
		Sink:         diagnostics.Tee{diagnostics.FileSink{Dir: opts.errorDir}, persistence.ErrorSink{DB: db}},
		RequestState: states.Request,
		Entropy:      entropy.NewClient(randomKey),
	})

	ecsWorld := ecs.NewWorld()
	eng.OnTick = func(tick uint64, now time.Time) {
		for _, p := range orch.Poll(ecsWorld, now) {
			slog.Debug("generation progress", "step", p.Step, "fraction", fmt.Sprintf("%.2f", p.Fraction))
		}
	}

	states.OnEnter(worldgen.GameInGame, func(worldgen.GameState) {
		gw := orch.World()
		if gw == nil {
			return
		}
		slog.Info("world ready",
			"name", gw.Settings.Name,
			"seed", gw.Seed,
			"provinces", humanize.Comma(int64(gw.Stats.Total)),
			"entities", humanize.Comma(int64(ecsWorld.Len())),
			"generated_in", gw.Elapsed.Round(time.Millisecond),
		)
		if err := db.SaveWorld(gw); err != nil {
			slog.Error("save world failed", "error", err)
		}
		if opts.headless {
			eng.Stop()
		}
	})
	states.OnEnter(worldgen.GameWorldGenerationFailed, func(worldgen.GameState) {
		if ec := orch.LastError(); ec != nil {
			fmt.Fprintln(os.Stderr, ec.FormatForDisplay())
		}
		if opts.headless {
			eng.Stop()
		}
	})
	states.OnEnter(worldgen.GameMainMenu, func(from worldgen.GameState) {
		if opts.headless && from == worldgen.GameWorldGeneration {
			eng.Stop()
		}
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── HTTP API ──────────────────────────────────────────────────────
	if !opts.headless {
		adminKey := os.Getenv("HEXFORGE_ADMIN_KEY")
		if adminKey == "" {
			slog.Warn("HEXFORGE_ADMIN_KEY not set, admin POST endpoints are disabled")
		}
		srv := (&api.Server{Orch: orch, Eng: eng, DB: db, Port: opts.port, AdminKey: adminKey}).Start()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				slog.Error("HTTP shutdown failed", "error", err)
			}
		}()
		fmt.Printf("API: http://localhost:%d/api/v1/status\n", opts.port)
	}

	if opts.generate {
		if err := orch.Start(ctx, settings); err != nil {
			return fmt.Errorf("start generation: %w", err)
		}
		slog.Info("generation started", "name", settings.Name, "size", settings.SizeLabel(), "seed", orch.Settings().Seed)
	}

	eng.Run(ctx)

	if orch.Cancel() {
		slog.Info("cancelling world generation")
	}
	if err := orch.Wait(); err != nil {
		slog.Error("generation task", "error", err)
	}
	if opts.headless && orch.State() != worldgen.StateComplete {
		return fmt.Errorf("generation ended in state %s", orch.State())
	}
	return nil
}

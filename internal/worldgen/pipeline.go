package worldgen

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/talgya/hexforge/internal/climate"
	"github.com/talgya/hexforge/internal/culture"
	"github.com/talgya/hexforge/internal/diagnostics"
	"github.com/talgya/hexforge/internal/nations"
	"github.com/talgya/hexforge/internal/tectonics"
	"github.com/talgya/hexforge/internal/world"
)

// ErrCancelled is the error a run reports after Cancel.
var ErrCancelled = errors.New("world generation cancelled")

// GeneratedWorld is everything the background task hands to the main loop.
// It is plain data with no ECS handles.
type GeneratedWorld struct {
	Settings   Settings
	Seed       int64
	Dimensions world.MapDimensions
	SeaLevel   float64
	Tectonics  *tectonics.System
	Provinces  []world.Province
	Regions    []culture.Region
	Climate    *climate.Storage
	Political  *nations.Result
	Rivers     int
	Islands    int // Provinces sunk by the small-island filter
	Stats      world.Stats
	Elapsed    time.Duration
}

// GenerationError is a failed run with whatever metrics were collected
// before it stopped.
type GenerationError struct {
	Err     error
	Metrics *diagnostics.GenerationMetrics
}

func (e *GenerationError) Error() string { return e.Err.Error() }
func (e *GenerationError) Unwrap() error { return e.Err }

// Generator runs a whole pipeline, reporting progress through report.
type Generator func(ctx context.Context, s Settings, report func(Progress)) (*GeneratedWorld, error)

type pipeline struct {
	settings  Settings
	dims      world.MapDimensions
	seaLevel  float64
	provinces []world.Province
	start     time.Time
	report    func(Progress)
}

// Generate runs every generation step in order on data it owns. It checks
// ctx between steps and inside the parallel passes; a cancelled run returns
// ErrCancelled. Failures are *GenerationError values carrying metrics.
func Generate(ctx context.Context, s Settings, report func(Progress)) (*GeneratedWorld, error) {
	if report == nil {
		report = func(Progress) {}
	}
	p := &pipeline{settings: s, dims: s.Dimensions(), seaLevel: world.SeaLevel(s.OceanCoverage), start: time.Now(), report: report}
	gw, err := p.run(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			err = ErrCancelled
		}
		return nil, &GenerationError{Err: err, Metrics: p.metrics()}
	}
	return gw, nil
}

func (p *pipeline) step(ctx context.Context, m Milestone) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.report(progressAt(m))
	return nil
}

func (p *pipeline) run(ctx context.Context) (*GeneratedWorld, error) {
	s := p.settings
	if err := p.step(ctx, MilestoneStart); err != nil {
		return nil, err
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	slog.Info("generating world", "name", s.Name, "seed", s.Seed, "size", s.SizeLabel(),
		"provinces", humanize.Comma(int64(p.dims.ProvinceCount())))

	if err := p.step(ctx, MilestoneTectonics); err != nil {
		return nil, err
	}
	sys := tectonics.Build(tectonics.BuildConfig{
		Width:         p.dims.WidthPixels,
		Height:        p.dims.HeightPixels,
		Plates:        s.Plates,
		LandFraction:  1 - s.OceanCoverage,
		Hotspots:      -1,
		Seed:          s.Seed,
		JitterPercent: 0.3,
	})

	if err := p.step(ctx, MilestoneProvinces); err != nil {
		return nil, err
	}
	noise := world.NewSimplexSampler(s.Seed, p.dims, s.Continents)
	provinces, err := world.GenerateProvinces(ctx, sys, p.dims, noise, s.OceanCoverage)
	if err != nil {
		return nil, fmt.Errorf("generate provinces: %w", err)
	}
	p.provinces = provinces

	if err := p.step(ctx, MilestoneErosion); err != nil {
		return nil, err
	}
	islands := world.FilterSmallIslands(provinces, s.MinIslandSize)
	if err := world.CalculateOceanDepths(ctx, provinces, p.dims); err != nil {
		return nil, fmt.Errorf("ocean depths: %w", err)
	}

	if err := p.step(ctx, MilestoneClimate); err != nil {
		return nil, err
	}
	cl, err := climate.Build(ctx, provinces, p.dims, s.Seed)
	if err != nil {
		return nil, err
	}

	if err := p.step(ctx, MilestoneRivers); err != nil {
		return nil, err
	}
	rivers := world.PlaceRivers(provinces, s.RiverDensity, s.Seed)
	world.ComputeFreshWater(provinces)

	if err := p.step(ctx, MilestoneCultures); err != nil {
		return nil, err
	}
	if err := culture.AssignAll(ctx, provinces, s.Culture, s.Seed); err != nil {
		return nil, fmt.Errorf("assign cultures: %w", err)
	}
	regions := culture.DetectRegions(provinces, s.Culture)

	if err := p.step(ctx, MilestoneNations); err != nil {
		return nil, err
	}
	political, err := nations.Generate(ctx, provinces, regions, s.Nations, s.Seed)
	if err != nil {
		return nil, err
	}
	for i, owner := range political.Owner {
		provinces[i].Owner = owner
	}

	stats := world.Summarize(provinces)
	if stats.Land == 0 {
		return nil, errors.New("generated world has no land")
	}

	gw := &GeneratedWorld{
		Settings:   s,
		Seed:       s.Seed,
		Dimensions: p.dims,
		SeaLevel:   p.seaLevel,
		Tectonics:  sys,
		Provinces:  provinces,
		Regions:    regions,
		Climate:    cl,
		Political:  political,
		Rivers:     rivers,
		Islands:    islands,
		Stats:      stats,
		Elapsed:    time.Since(p.start),
	}
	slog.Info("world generated",
		"land", humanize.Comma(int64(stats.Land)),
		"ocean", humanize.Comma(int64(stats.Ocean)),
		"regions", len(regions),
		"nations", len(political.Nations),
		"rivers", rivers,
		"elapsed", gw.Elapsed.Round(time.Millisecond))
	return gw, nil
}

func (p *pipeline) metrics() *diagnostics.GenerationMetrics {
	return diagnostics.CollectMetrics(p.provinces, p.seaLevel, time.Since(p.start), diagnostics.RunSettings{
		WorldSize:     p.settings.SizeLabel(),
		Continents:    p.settings.Continents,
		OceanCoverage: p.settings.OceanCoverage,
		RiverDensity:  p.settings.RiverDensity,
	})
}

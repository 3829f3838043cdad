// Package culture assigns cultures to provinces by geography and finds the
// contiguous same-culture regions that seed nations.
package culture

import (
	"context"
	"fmt"
	"math"
	"math/rand"

	"github.com/talgya/hexforge/internal/geom"
	"github.com/talgya/hexforge/internal/parallel"
	"github.com/talgya/hexforge/internal/world"
)

// Config tunes assignment and region detection.
type Config struct {
	AncientPercentage    float64 `yaml:"ancient_percentage"`  // Chance a province is Ancient
	MysticalPercentage   float64 `yaml:"mystical_percentage"` // Chance a province is Mystical
	IslandDistance       float64 `yaml:"island_distance"`     // Normalized distance from center beyond which land is Island
	Fuzziness            float64 `yaml:"fuzziness"`           // Per-axis jitter on quadrant borders
	MinRegionSize        int     `yaml:"min_region_size"`
	MaxRegionsPerCulture int     `yaml:"max_regions_per_culture"`
}

// DefaultConfig returns the standard culture distribution.
func DefaultConfig() Config {
	return Config{
		AncientPercentage:    0.10,
		MysticalPercentage:   0.05,
		IslandDistance:       0.3,
		Fuzziness:            0.15,
		MinRegionSize:        10,
		MaxRegionsPerCulture: 20,
	}
}

// DefaultBaseSeed seeds per-province culture draws when none is configured.
const DefaultBaseSeed int64 = 42

// Assign picks a culture for one province. The random draw comes first so
// Ancient and Mystical pockets appear anywhere; remaining land is Island far
// from the center and otherwise one of four jittered quadrants.
func Assign(pos geom.Vec2, bounds world.Bounds, cfg Config, rng *rand.Rand) world.Culture {
	roll := rng.Float64()
	if roll < cfg.AncientPercentage {
		return world.CultureAncient
	}
	if roll < cfg.AncientPercentage+cfg.MysticalPercentage {
		return world.CultureMystical
	}

	nx, ny := 0.5, 0.5
	if w := bounds.Width(); w > 0 {
		nx = (pos.X - bounds.XMin) / w
	}
	if h := bounds.Height(); h > 0 {
		ny = (pos.Y - bounds.YMin) / h
	}

	if math.Hypot(nx-0.5, ny-0.5) > cfg.IslandDistance {
		return world.CultureIsland
	}

	half := cfg.Fuzziness / 2
	bx := nx + rng.Float64()*cfg.Fuzziness - half
	by := ny + rng.Float64()*cfg.Fuzziness - half

	switch {
	case bx < 0.5 && by < 0.5:
		return world.CultureWestern
	case by < 0.5:
		return world.CultureNorthern
	case bx < 0.5:
		return world.CultureSouthern
	default:
		return world.CultureEastern
	}
}

// CalculateBounds returns the bounding box of all province positions as a
// parallel min/max reduction. An empty slice yields zero bounds.
func CalculateBounds(ctx context.Context, provinces []world.Province) (world.Bounds, error) {
	empty := world.Bounds{
		XMin: math.Inf(1), XMax: math.Inf(-1),
		YMin: math.Inf(1), YMax: math.Inf(-1),
	}
	b, err := parallel.Reduce(ctx, len(provinces), empty,
		func(lo, hi int) world.Bounds {
			acc := empty
			for i := lo; i < hi; i++ {
				p := provinces[i].Position
				acc.XMin = math.Min(acc.XMin, p.X)
				acc.XMax = math.Max(acc.XMax, p.X)
				acc.YMin = math.Min(acc.YMin, p.Y)
				acc.YMax = math.Max(acc.YMax, p.Y)
			}
			return acc
		},
		func(a, b world.Bounds) world.Bounds {
			return world.Bounds{
				XMin: math.Min(a.XMin, b.XMin), XMax: math.Max(a.XMax, b.XMax),
				YMin: math.Min(a.YMin, b.YMin), YMax: math.Max(a.YMax, b.YMax),
			}
		},
	)
	if err != nil {
		return world.Bounds{}, fmt.Errorf("world bounds: %w", err)
	}
	if len(provinces) == 0 {
		return world.Bounds{}, nil
	}
	return b, nil
}

// AssignAll sets Culture on every province, ocean included, so open sea far
// from the center reads as Island. Province i draws from its own source
// seeded with baseSeed+i, so the result does not depend on scheduling.
func AssignAll(ctx context.Context, provinces []world.Province, cfg Config, baseSeed int64) error {
	bounds, err := CalculateBounds(ctx, provinces)
	if err != nil {
		return err
	}

	err = parallel.For(ctx, len(provinces), func(i int) {
		p := &provinces[i]
		rng := rand.New(rand.NewSource(baseSeed + int64(i)))
		p.Culture = Assign(p.Position, bounds, cfg, rng)
	})
	if err != nil {
		return fmt.Errorf("assign cultures: %w", err)
	}
	return nil
}

// Counts tallies provinces per assigned culture.
func Counts(provinces []world.Province) map[world.Culture]int {
	counts := make(map[world.Culture]int)
	for i := range provinces {
		if provinces[i].HasCulture() {
			counts[provinces[i].Culture]++
		}
	}
	return counts
}

package world

import (
	"context"
	"fmt"
	"math"

	"github.com/talgya/hexforge/internal/geom"
	"github.com/talgya/hexforge/internal/parallel"
)

// Ocean depth bands, stored in Province.Elevation for ocean provinces.
const (
	DepthShallow     = 0.12
	DepthContinental = 0.07
	DepthDeep        = 0.02
)

type cellKey struct{ cx, cy int }

// landGrid buckets land positions into square cells of side cellSize.
type landGrid struct {
	cellSize float64
	cells    map[cellKey][]geom.Vec2
}

func newLandGrid(provinces []Province, cellSize float64) *landGrid {
	g := &landGrid{cellSize: cellSize, cells: make(map[cellKey][]geom.Vec2)}
	for i := range provinces {
		if provinces[i].Terrain.IsLand() {
			k := g.key(provinces[i].Position)
			g.cells[k] = append(g.cells[k], provinces[i].Position)
		}
	}
	return g
}

func (g *landGrid) key(p geom.Vec2) cellKey {
	return cellKey{int(math.Floor(p.X / g.cellSize)), int(math.Floor(p.Y / g.cellSize))}
}

// nearest scans the 3×3 cells around p and returns the smallest land distance
// found, stopping early once anything is within stopAt. +Inf if none.
func (g *landGrid) nearest(p geom.Vec2, stopAt float64) float64 {
	k := g.key(p)
	best := math.Inf(1)
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			for _, land := range g.cells[cellKey{k.cx + dx, k.cy + dy}] {
				d := p.Dist(land)
				if d <= stopAt {
					return d
				}
				best = math.Min(best, d)
			}
		}
	}
	return best
}

// DepthForDistance bands a distance to land, measured in hexes.
func DepthForDistance(hexDistance float64) float64 {
	switch {
	case hexDistance <= 1.8:
		return DepthShallow
	case hexDistance <= 5.0:
		return DepthContinental
	default:
		return DepthDeep
	}
}

// CalculateOceanDepths replaces the elevation of every ocean province with a
// banded depth from its distance to the nearest land. Land is bucketed into
// cells three hexes wide and only the surrounding 3×3 cells are searched, so
// anything farther than that reads as deep water. Depths are computed in
// parallel into a separate slice and written back after the pass.
func CalculateOceanDepths(ctx context.Context, provinces []Province, dims MapDimensions) error {
	hex := dims.HexSize
	grid := newLandGrid(provinces, hex*3)

	var oceans []int
	for i := range provinces {
		if provinces[i].IsOcean() {
			oceans = append(oceans, i)
		}
	}

	depths := make([]float64, len(oceans))
	err := parallel.For(ctx, len(oceans), func(j int) {
		p := provinces[oceans[j]].Position
		d := grid.nearest(p, hex*1.5)
		if d <= hex*1.5 {
			depths[j] = DepthShallow
			return
		}
		depths[j] = DepthForDistance(d / hex)
	})
	if err != nil {
		return fmt.Errorf("ocean depths: %w", err)
	}

	for j, idx := range oceans {
		provinces[idx].Elevation = depths[j]
	}
	return nil
}

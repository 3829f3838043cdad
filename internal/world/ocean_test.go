package world

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/hexforge/internal/geom"
)

func TestCalculateOceanDepthBands(t *testing.T) {
	provinces := []Province{
		{ID: 0, Position: geom.V(0, 0), Terrain: TerrainPlains, Elevation: 0.4},
		{ID: 1, Position: geom.V(60, 0), Terrain: TerrainOcean},   // 1.2 hexes
		{ID: 2, Position: geom.V(120, 0), Terrain: TerrainOcean},  // 2.4 hexes
		{ID: 3, Position: geom.V(250, 0), Terrain: TerrainOcean},  // 5.0 hexes
		{ID: 4, Position: geom.V(260, 0), Terrain: TerrainOcean},  // 5.2 hexes
		{ID: 5, Position: geom.V(1000, 0), Terrain: TerrainOcean}, // beyond the search window
		{ID: 6, Position: geom.V(-85, 0), Terrain: TerrainOcean},  // 1.7 hexes, other cell
	}
	dims := MapDimensions{HexSize: HexSize}

	require.NoError(t, CalculateOceanDepths(context.Background(), provinces, dims))

	assert.Equal(t, 0.4, provinces[0].Elevation, "land untouched")
	assert.Equal(t, DepthShallow, provinces[1].Elevation)
	assert.Equal(t, DepthContinental, provinces[2].Elevation)
	assert.Equal(t, DepthContinental, provinces[3].Elevation)
	assert.Equal(t, DepthDeep, provinces[4].Elevation)
	assert.Equal(t, DepthDeep, provinces[5].Elevation)
	assert.Equal(t, DepthShallow, provinces[6].Elevation)
}

func TestOceanDepthsMatchNearestLand(t *testing.T) {
	provinces, dims := generateTestWorld(t, 3)
	require.NoError(t, CalculateOceanDepths(context.Background(), provinces, dims))

	var land []geom.Vec2
	for _, p := range provinces {
		if p.Terrain.IsLand() {
			land = append(land, p.Position)
		}
	}
	window := dims.HexSize * 3 // Anything within one cell width is always found.

	for _, p := range provinces {
		if !p.IsOcean() {
			continue
		}
		require.Contains(t, []float64{DepthShallow, DepthContinental, DepthDeep}, p.Elevation)

		nearest := math.Inf(1)
		for _, l := range land {
			nearest = math.Min(nearest, p.Position.Dist(l))
		}
		if nearest <= window {
			assert.Equal(t, DepthForDistance(nearest/dims.HexSize), p.Elevation, "province %d", p.ID)
		}
	}
}

func TestOceanDepthsNoLand(t *testing.T) {
	provinces := []Province{
		{Position: geom.V(0, 0), Terrain: TerrainOcean, Elevation: 0.1},
		{Position: geom.V(50, 0), Terrain: TerrainOcean, Elevation: 0.1},
	}
	require.NoError(t, CalculateOceanDepths(context.Background(), provinces, MapDimensions{HexSize: HexSize}))
	assert.Equal(t, DepthDeep, provinces[0].Elevation)
	assert.Equal(t, DepthDeep, provinces[1].Elevation)
}

package world

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/hexforge/internal/tectonics"
)

// strip builds a single-row grid where each province links to its left and
// right neighbours.
func strip(terrains []Terrain, elevations []float64) []Province {
	dims := NewDimensions(len(terrains), 1, HexSize)
	provinces := make([]Province, len(terrains))
	for i := range provinces {
		provinces[i] = buildProvince(i, &tectonics.System{}, dims, ConstantSampler(0), 0.15)
		provinces[i].Terrain = terrains[i]
		provinces[i].Elevation = elevations[i]
	}
	return provinces
}

func TestTraceRiverReachesSea(t *testing.T) {
	provinces := strip(
		[]Terrain{TerrainOcean, TerrainPlains, TerrainHills, TerrainHills, TerrainMountains, TerrainOcean},
		[]float64{0.05, 0.2, 0.4, 0.6, 0.8, 0.05},
	)
	traceRiver(provinces, 3)

	assert.Equal(t, TerrainDelta, provinces[1].Terrain)
	assert.Equal(t, TerrainRiver, provinces[2].Terrain)
	assert.Equal(t, TerrainRiver, provinces[3].Terrain)
	assert.Equal(t, TerrainMountains, provinces[4].Terrain)

	ComputeFreshWater(provinces)
	assert.Equal(t, 0.0, provinces[1].FreshWaterDistance)
	assert.Equal(t, 1.0, provinces[4].FreshWaterDistance)
	assert.Equal(t, NoFreshWater, provinces[0].FreshWaterDistance)
	assert.InDelta(t, 0.05+0.5*0.8, provinces[4].Agriculture, 1e-9)
	assert.InDelta(t, 3.0, provinces[1].Agriculture, 1e-9)
	assert.Zero(t, provinces[0].Agriculture)
}

func TestPlaceRiversDensity(t *testing.T) {
	provinces, _ := generateTestWorld(t, 21)
	assert.Zero(t, PlaceRivers(provinces, 0, 1))

	highland := 0
	for _, p := range provinces {
		if p.Terrain.IsLand() && p.Elevation > 0.55 && p.Terrain != TerrainIce {
			highland++
		}
	}
	n := PlaceRivers(provinces, 1, 1)
	assert.LessOrEqual(t, n, highland)
	if highland > 0 {
		assert.Positive(t, n)
	}
}

func TestFilterSmallIslands(t *testing.T) {
	provinces := strip(
		[]Terrain{TerrainOcean, TerrainPlains, TerrainOcean, TerrainPlains, TerrainPlains, TerrainOcean},
		[]float64{0.05, 0.3, 0.05, 0.3, 0.3, 0.05},
	)
	require.Equal(t, 1, FilterSmallIslands(provinces, 2))
	assert.Equal(t, TerrainOcean, provinces[1].Terrain)
	assert.Equal(t, TerrainPlains, provinces[3].Terrain)
	assert.Equal(t, TerrainPlains, provinces[4].Terrain)

	cache := BuildCoastalCache(provinces)
	assert.Equal(t, []int{3, 4}, cache.IDs())
	assert.True(t, cache.IsCoastal(4))
	assert.False(t, cache.IsCoastal(1))
	assert.False(t, cache.IsCoastal(99))
}

func TestSummarize(t *testing.T) {
	provinces := strip(
		[]Terrain{TerrainOcean, TerrainPlains, TerrainMountains, TerrainOcean},
		[]float64{0.05, 0.3, 0.9, 0.05},
	)
	s := Summarize(provinces)
	assert.Equal(t, 2, s.Ocean)
	assert.Equal(t, 2, s.Land)
	assert.Equal(t, 1, s.Mountains)
	assert.Equal(t, 0.3, s.MinElevation)
	assert.Equal(t, 0.9, s.MaxElevation)
	assert.Equal(t, 0.5, s.OceanFraction)

	counts := TerrainCounts(provinces)
	assert.Equal(t, []Terrain{TerrainOcean, TerrainPlains, TerrainMountains}, SortedTerrains(counts))
}

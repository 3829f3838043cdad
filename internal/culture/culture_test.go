package culture

import (
	"context"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/hexforge/internal/geom"
	"github.com/talgya/hexforge/internal/world"
)

func grid(cols, rows int, terrain world.Terrain) []world.Province {
	dims := world.NewDimensions(cols, rows, world.HexSize)
	ps := make([]world.Province, dims.ProvinceCount())
	for i := range ps {
		c, r := dims.ColRow(i)
		x, y := dims.HexPosition(c, r)
		ps[i] = world.Province{
			ID: i, Col: c, Row: r, Position: geom.V(x, y),
			Terrain: terrain, Owner: -1, Neighbors: dims.NeighborIndices(c, r),
		}
	}
	return ps
}

func setBlock(ps []world.Province, cols, c0, c1, r0, r1 int, c world.Culture) {
	for r := r0; r <= r1; r++ {
		for col := c0; col <= c1; col++ {
			ps[r*cols+col].Culture = c
		}
	}
}

func TestAssignRandomDrawFirst(t *testing.T) {
	b := world.Bounds{XMax: 100, YMax: 100}
	rng := rand.New(rand.NewSource(1))

	cfg := Config{AncientPercentage: 1, IslandDistance: 0.3}
	assert.Equal(t, world.CultureAncient, Assign(geom.V(0, 0), b, cfg, rng))

	cfg = Config{MysticalPercentage: 1, IslandDistance: 0.3}
	assert.Equal(t, world.CultureMystical, Assign(geom.V(50, 50), b, cfg, rng))
}

func TestAssignGeography(t *testing.T) {
	b := world.Bounds{XMax: 100, YMax: 100}
	cfg := Config{IslandDistance: 0.3}
	rng := rand.New(rand.NewSource(1))

	tests := []struct {
		pos  geom.Vec2
		want world.Culture
	}{
		{geom.V(0, 0), world.CultureIsland},
		{geom.V(95, 50), world.CultureIsland},
		{geom.V(40, 40), world.CultureWestern},
		{geom.V(60, 40), world.CultureNorthern},
		{geom.V(40, 60), world.CultureSouthern},
		{geom.V(60, 60), world.CultureEastern},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Assign(tt.pos, b, cfg, rng), "pos %v", tt.pos)
	}
}

func TestAssignJitterStaysNearBorder(t *testing.T) {
	b := world.Bounds{XMax: 100, YMax: 100}
	cfg := Config{IslandDistance: 0.3, Fuzziness: 0.15}
	rng := rand.New(rand.NewSource(9))
	// Farther than half the fuzziness from both borders: never flips.
	for i := 0; i < 200; i++ {
		assert.Equal(t, world.CultureWestern, Assign(geom.V(30, 30), b, cfg, rng))
	}
}

func TestCalculateBounds(t *testing.T) {
	ps := grid(5, 4, world.TerrainPlains)
	b, err := CalculateBounds(context.Background(), ps)
	require.NoError(t, err)

	assert.InDelta(t, ps[0].Position.X, b.XMin, 1e-9)
	assert.InDelta(t, ps[4].Position.X, b.XMax, 1e-9)
	assert.InDelta(t, ps[0].Position.Y, b.YMin, 1e-9)

	empty, err := CalculateBounds(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, world.Bounds{}, empty)
}

func TestAssignAllIsReproducible(t *testing.T) {
	a := grid(30, 20, world.TerrainPlains)
	b := grid(30, 20, world.TerrainPlains)
	a[0].Terrain = world.TerrainOcean
	b[0].Terrain = world.TerrainOcean
	cfg := DefaultConfig()

	require.NoError(t, AssignAll(context.Background(), a, cfg, DefaultBaseSeed))
	require.NoError(t, AssignAll(context.Background(), b, cfg, DefaultBaseSeed))

	for i := range a {
		require.Equal(t, a[i].Culture, b[i].Culture)
		assert.True(t, a[i].HasCulture(), "province %d", i)
	}
	counts := Counts(a)
	assert.Positive(t, counts[world.CultureIsland])
}

func TestAssignAllCoversOcean(t *testing.T) {
	ps := grid(20, 20, world.TerrainOcean)
	cfg := Config{IslandDistance: 0.3}
	require.NoError(t, AssignAll(context.Background(), ps, cfg, 7))

	// The corner lies far outside the island radius.
	assert.Equal(t, world.CultureIsland, ps[0].Culture)
	assert.Len(t, Counts(ps), 5, "island plus four quadrants")
}

func TestSmallClusterIsNotARegion(t *testing.T) {
	const cols = 10
	ps := grid(cols, 10, world.TerrainPlains)
	setBlock(ps, cols, 2, 2, 2, 6, world.CultureWestern) // 5 provinces
	setBlock(ps, cols, 6, 9, 0, 4, world.CultureEastern) // 20 provinces

	regions := DetectRegions(ps, DefaultConfig())
	require.Len(t, regions, 1)
	assert.Equal(t, world.CultureEastern, regions[0].Culture)
	assert.Equal(t, 20, regions[0].Size)
	for _, id := range regions[0].Provinces {
		assert.NotEqual(t, world.CultureWestern, ps[id].Culture)
	}
}

func TestRegionsSkipOcean(t *testing.T) {
	const cols = 12
	ps := grid(cols, 4, world.TerrainPlains)
	setBlock(ps, cols, 0, 11, 0, 3, world.CultureNorthern)
	// An unclaimed ocean channel splits the block in two.
	for r := 0; r < 4; r++ {
		ps[r*cols+6].Terrain = world.TerrainOcean
		ps[r*cols+6].Culture = world.CultureNone
	}

	cfg := DefaultConfig()
	cfg.MinRegionSize = 5
	regions := DetectRegions(ps, cfg)
	require.Len(t, regions, 2)

	seen := make(map[int]bool)
	var sizes []int
	for _, r := range regions {
		assert.GreaterOrEqual(t, r.Size, cfg.MinRegionSize)
		assert.Len(t, r.Provinces, r.Size)
		assert.True(t, r.StrategicValue >= 0 && r.StrategicValue <= 1)
		assert.False(t, r.CoastalAccess)
		for _, id := range r.Provinces {
			assert.False(t, seen[id], "province %d in two regions", id)
			seen[id] = true
			assert.True(t, ps[id].HasCulture())
			assert.False(t, ps[id].IsOcean())
		}
		sizes = append(sizes, r.Size)
	}
	assert.ElementsMatch(t, []int{24, 20}, sizes)
}

func TestOceanSeedGrantsCoastalAccess(t *testing.T) {
	const cols = 6
	ps := grid(cols, 3, world.TerrainPlains)
	setBlock(ps, cols, 0, 5, 0, 2, world.CultureSouthern)
	ps[0].Terrain = world.TerrainOcean

	regions := DetectRegions(ps, DefaultConfig())
	require.Len(t, regions, 1)
	r := regions[0]
	assert.Equal(t, 18, r.Size)
	assert.Equal(t, 0, r.Provinces[0], "the ocean province seeds the fill")
	assert.True(t, r.CoastalAccess)
	for _, p := range ps {
		assert.NotEqual(t, world.TerrainBeach, p.Terrain)
	}
}

func TestOceanIsNeverJoinedByFill(t *testing.T) {
	const cols = 6
	ps := grid(cols, 3, world.TerrainPlains)
	setBlock(ps, cols, 0, 5, 0, 2, world.CultureSouthern)
	// Interior ocean with the same culture; land fill from 0 reaches around it.
	ps[8].Terrain = world.TerrainOcean

	regions := DetectRegions(ps, DefaultConfig())
	require.Len(t, regions, 1)
	assert.Equal(t, 17, regions[0].Size)
	assert.NotContains(t, regions[0].Provinces, 8)
	assert.False(t, regions[0].CoastalAccess)
}

func TestRegionCoastalAndIsland(t *testing.T) {
	const cols = 6
	ps := grid(cols, 3, world.TerrainPlains)
	setBlock(ps, cols, 0, 5, 0, 2, world.CultureSouthern)
	ps[0].Terrain = world.TerrainBeach

	cfg := DefaultConfig()
	regions := DetectRegions(ps, cfg)
	require.Len(t, regions, 1)
	assert.True(t, regions[0].CoastalAccess)
	assert.True(t, regions[0].IsIsland, "small coastal region")
}

func TestStrategicValue(t *testing.T) {
	ideal := math.Sqrt(100 / math.Pi)
	r := Region{Size: 100, CoastalAccess: true, Radius: ideal}
	assert.InDelta(t, math.Log(100)/10+0.3+0.2, strategicValue(r), 1e-9)

	// Radius 0 sits a full ideal radius away: no compactness bonus.
	r = Region{Size: 10, CoastalAccess: true, IsIsland: true, Radius: 0}
	assert.InDelta(t, math.Log(10)/10+0.3-0.2, strategicValue(r), 1e-9)

	r = Region{Size: 1, Radius: 1000}
	assert.Zero(t, strategicValue(r))

	r = Region{Size: 1 << 30, CoastalAccess: true, Radius: math.Sqrt(float64(1<<30) / math.Pi)}
	assert.Equal(t, 1.0, strategicValue(r))
}

func TestMaxRegionsPerCulture(t *testing.T) {
	// Three Western islands of growing size separated by unclaimed ocean.
	const cols = 14
	ps := grid(cols, 2, world.TerrainPlains)
	setBlock(ps, cols, 0, 13, 0, 1, world.CultureWestern)
	for r := 0; r < 2; r++ {
		for _, c := range []int{2, 6} {
			ps[r*cols+c].Terrain = world.TerrainOcean
			ps[r*cols+c].Culture = world.CultureNone
		}
	}

	cfg := DefaultConfig()
	cfg.MinRegionSize = 2
	all := DetectRegions(ps, cfg)
	require.Len(t, all, 3)

	cfg.MaxRegionsPerCulture = 2
	regions := DetectRegions(ps, cfg)
	require.Len(t, regions, 2)
	assert.Equal(t, all[:2], regions, "the cap keeps the highest ranked")
	assert.GreaterOrEqual(t, regions[0].StrategicValue, regions[1].StrategicValue)

	largest := LargestByCulture(all)
	assert.Equal(t, 14, largest[world.CultureWestern].Size)

	top := MostStrategic(regions, 1)
	require.Len(t, top, 1)
	assert.Equal(t, regions[0].Size, top[0].Size)
	assert.Len(t, MostStrategic(regions, 10), 2)
	assert.Empty(t, MostStrategic(regions, 0))
}

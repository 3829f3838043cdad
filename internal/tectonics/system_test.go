package tectonics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/hexforge/internal/geom"
)

func square(x0, y0, size float64) []geom.Vec2 {
	return []geom.Vec2{geom.V(x0, y0), geom.V(x0+size, y0), geom.V(x0+size, y0+size), geom.V(x0, y0+size)}
}

func TestVolcanicInfluenceTakesMaximum(t *testing.T) {
	p := geom.V(0, 0)
	sys := &System{Hotspots: []Hotspot{
		{Position: geom.V(5, 0), Radius: 10, Intensity: 1.0},
		{Position: geom.V(0, 15), Radius: 20, Intensity: 0.5},
	}}
	assert.InDelta(t, 0.5, sys.VolcanicInfluence(p), 1e-9)
}

func TestVolcanicInfluenceChain(t *testing.T) {
	sys := &System{Hotspots: []Hotspot{{
		Position: geom.V(1000, 1000),
		Radius:   10,
		Chain: []Volcano{
			{Position: geom.V(25, 0), Elevation: 4000, Active: true},
			{Position: geom.V(0, 25), Elevation: 4000, Active: false},
		},
	}}}
	// Active: 0.5 falloff * 4000/4000; dormant: 0.5 * 4000/8000.
	assert.InDelta(t, 0.5, sys.VolcanicInfluence(geom.V(0, 0)), 1e-9)

	sys.Hotspots[0].Chain[0].Active = false
	assert.InDelta(t, 0.25, sys.VolcanicInfluence(geom.V(0, 0)), 1e-9)
}

func TestVolcanicInfluenceNone(t *testing.T) {
	sys := &System{Hotspots: []Hotspot{{Position: geom.V(100, 100), Radius: 10, Intensity: 1}}}
	assert.Zero(t, sys.VolcanicInfluence(geom.V(0, 0)))
	assert.Zero(t, (&System{}).VolcanicInfluence(geom.V(0, 0)))
}

func TestNearestBoundary(t *testing.T) {
	sys := &System{Boundaries: []Boundary{
		{Kind: Divergent, Segments: []Segment{{Start: geom.V(0, 100), End: geom.V(100, 100)}}},
		{Kind: Transform, Segments: []Segment{
			{Start: geom.V(-500, -500), End: geom.V(-400, -500)},
			{Start: geom.V(50, 0), End: geom.V(50, 30)},
		}},
	}}

	d, b := sys.NearestBoundary(geom.V(60, 10))
	require.NotNil(t, b)
	assert.InDelta(t, 10.0, d, 1e-9)
	assert.Equal(t, Transform, b.Kind)

	d, b = (&System{}).NearestBoundary(geom.V(0, 0))
	assert.Nil(t, b)
	assert.True(t, math.IsInf(d, 1))
}

func TestPlateAt(t *testing.T) {
	sys := &System{Plates: []Plate{
		{ID: 0, Polygon: square(0, 0, 10), Center: geom.V(5, 5)},
		{ID: 1, Polygon: square(0, 0, 20), Center: geom.V(10, 10)},
		{ID: 2, Center: geom.V(100, 100)},
	}}

	// Overlap resolves to input order.
	assert.Equal(t, 0, sys.PlateAt(geom.V(5, 5)).ID)
	assert.Equal(t, 1, sys.PlateAt(geom.V(15, 15)).ID)
	// Outside every polygon: nearest center.
	assert.Equal(t, 2, sys.PlateAt(geom.V(90, 90)).ID)
	assert.Equal(t, 0, sys.PlateAt(geom.V(-3, 5)).ID)

	assert.Nil(t, (&System{}).PlateAt(geom.V(0, 0)))
}

func TestBuildIsDeterministicAndCoversMap(t *testing.T) {
	cfg := BuildConfig{Width: 1000, Height: 600, Plates: 6, LandFraction: 0.5, Hotspots: -1, Seed: 7, JitterPercent: 0.2}
	a := Build(cfg)
	b := Build(cfg)
	require.Equal(t, a, b)

	assert.GreaterOrEqual(t, len(a.Plates), 6)
	assert.NotEmpty(t, a.Boundaries)
	assert.NotEmpty(t, a.Hotspots)

	total := 0.0
	for _, p := range a.Plates {
		total += p.Area
		if p.IsContinental {
			assert.True(t, p.ElevationBoost >= 200 && p.ElevationBoost <= 800)
		} else {
			assert.True(t, p.ElevationBoost >= -4000 && p.ElevationBoost <= -2000)
			assert.False(t, p.HasAncientCore)
		}
	}
	assert.InDelta(t, 1000*600, total, 1e-6)

	for _, bd := range a.Boundaries {
		ca, cb := a.Plates[bd.PlateA].IsContinental, a.Plates[bd.PlateB].IsContinental
		switch {
		case ca && cb:
			assert.Equal(t, Convergent, bd.Kind)
			assert.Equal(t, 8000.0, bd.MountainHeight)
		case !ca && !cb:
			assert.Equal(t, Divergent, bd.Kind)
		default:
			assert.Equal(t, 4000.0, bd.MountainHeight)
		}
	}

	for _, h := range a.Hotspots {
		require.NotEmpty(t, h.Chain)
		assert.True(t, h.Chain[0].Active)
		for _, v := range h.Chain[1:] {
			assert.False(t, v.Active)
		}
	}
}

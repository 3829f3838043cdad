package world

import (
	"math"
	"math/rand"

	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/talgya/hexforge/internal/geom"
)

// NoiseSampler produces the base elevation field before tectonic shaping.
// Implementations must be safe for concurrent use.
type NoiseSampler interface {
	// Elevation returns a value in [0, 1] for a point in map space.
	Elevation(p geom.Vec2) float64
}

// SimplexSampler layers multi-octave simplex noise over a mask of continent
// centers, then fades to ocean near the map edge.
type SimplexSampler struct {
	terrain opensimplex.Noise
	coast   opensimplex.Noise
	centers []geom.Vec2
	radius  float64
	bounds  Bounds
	edge    float64 // Width of the edge fade band in pixels
}

// NewSimplexSampler seeds continent centers inside the middle 70% of the map.
// continents is clamped to at least one.
func NewSimplexSampler(seed int64, dims MapDimensions, continents int) *SimplexSampler {
	continents = max(continents, 1)
	rng := rand.New(rand.NewSource(seed + 300))

	b := dims.Bounds
	centers := make([]geom.Vec2, continents)
	for i := range centers {
		centers[i] = geom.V(
			(rng.Float64()-0.5)*b.Width()*0.7,
			(rng.Float64()-0.5)*b.Height()*0.7,
		)
	}

	// Continents together cover roughly half the map before coastline noise.
	area := b.Width() * b.Height() * 0.5
	radius := math.Sqrt(area/(math.Pi*float64(continents))) * 1.3

	return &SimplexSampler{
		terrain: opensimplex.NewNormalized(seed),
		coast:   opensimplex.NewNormalized(seed + 1),
		centers: centers,
		radius:  radius,
		bounds:  b,
		edge:    dims.HexSize * 4,
	}
}

func (s *SimplexSampler) Elevation(p geom.Vec2) float64 {
	detail := octaveNoise(s.terrain, p.X, p.Y, 5, 0.0015, 0.5)

	// Distort distances so coastlines wander instead of tracing circles.
	wobble := (octaveNoise(s.coast, p.X, p.Y, 3, 0.001, 0.5) - 0.5) * s.radius * 0.6

	mask := 0.0
	for _, c := range s.centers {
		f := geom.LinearFalloff(p.Dist(c)+wobble, s.radius)
		mask = math.Max(mask, math.Pow(f, 0.8))
	}

	elev := detail*0.45 + mask*0.65 - 0.1

	// Quadratic fade to ocean at the map edge.
	edgeDist := math.Min(
		math.Min(p.X-s.bounds.XMin, s.bounds.XMax-p.X),
		math.Min(p.Y-s.bounds.YMin, s.bounds.YMax-p.Y),
	)
	if edgeDist < s.edge {
		f := geom.Clamp01(edgeDist / s.edge)
		elev *= f * f
	}

	return geom.Clamp01(elev)
}

// octaveNoise generates fractal noise by layering multiple frequencies.
// With a normalized source the result stays in [0, 1].
func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0

	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}

	return total / maxVal
}

// ConstantSampler returns the same elevation everywhere.
type ConstantSampler float64

func (c ConstantSampler) Elevation(geom.Vec2) float64 {
	return float64(c)
}

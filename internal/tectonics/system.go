// Package tectonics describes the plate layout that shapes world elevation:
// plates, the boundaries between them, and volcanic hotspots. Queries here
// are read-only and safe to call from many goroutines at once.
package tectonics

import (
	"math"

	"github.com/talgya/hexforge/internal/geom"
)

// BoundaryKind classifies the relative motion of two plates.
type BoundaryKind uint8

const (
	Convergent BoundaryKind = iota // Plates collide, raising mountains
	Divergent                      // Plates separate, opening a rift
	Transform                      // Plates slide past each other
)

func (k BoundaryKind) String() string {
	switch k {
	case Convergent:
		return "convergent"
	case Divergent:
		return "divergent"
	case Transform:
		return "transform"
	default:
		return "unknown"
	}
}

// ChainVolcanoRadius is the reach of a single volcano in a hotspot chain.
const ChainVolcanoRadius = 50.0

// Plate is a polygonal region of crust.
type Plate struct {
	ID             int         `json:"id"`
	Polygon        []geom.Vec2 `json:"polygon"`
	Center         geom.Vec2   `json:"center"`
	Area           float64     `json:"area"`
	IsContinental  bool        `json:"is_continental"`
	ElevationBoost float64     `json:"elevation_boost"` // Continental 200–800, oceanic -4000 to -2000
	HasAncientCore bool        `json:"has_ancient_core"`
}

// Segment is one straight piece of a plate boundary.
type Segment struct {
	Start  geom.Vec2 `json:"start"`
	End    geom.Vec2 `json:"end"`
	Normal geom.Vec2 `json:"normal"`
}

// Boundary is the edge between two plates.
type Boundary struct {
	PlateA         int          `json:"plate_a"`
	PlateB         int          `json:"plate_b"`
	Kind           BoundaryKind `json:"kind"`
	MountainHeight float64      `json:"mountain_height,omitempty"` // Convergent only
	RiftDepth      float64      `json:"rift_depth,omitempty"`      // Divergent only, negative
	Segments       []Segment    `json:"segments"`
	Length         float64      `json:"length"`
}

// Volcano is a single vent in a hotspot chain.
type Volcano struct {
	Position  geom.Vec2 `json:"position"`
	Elevation float64   `json:"elevation"`
	Active    bool      `json:"active"`
}

// Hotspot is a fixed mantle plume with its trail of volcanoes.
type Hotspot struct {
	Position  geom.Vec2 `json:"position"`
	Radius    float64   `json:"radius"`
	Intensity float64   `json:"intensity"`
	Chain     []Volcano `json:"chain"`
}

// System is a complete, already-simulated plate layout.
type System struct {
	Plates     []Plate    `json:"plates"`
	Boundaries []Boundary `json:"boundaries"`
	Hotspots   []Hotspot  `json:"hotspots"`
}

// PlateAt returns the first plate (in input order) whose polygon contains p.
// When no polygon matches, the plate whose center is nearest wins; distances
// are compared as integers in thousandths so near-equal floats tie
// deterministically on input order. Returns nil only for an empty system.
func (s *System) PlateAt(p geom.Vec2) *Plate {
	for i := range s.Plates {
		if geom.PointInPolygon(p, s.Plates[i].Polygon) {
			return &s.Plates[i]
		}
	}

	var best *Plate
	bestDist := int64(math.MaxInt64)
	for i := range s.Plates {
		d := int64(p.Dist(s.Plates[i].Center) * 1000)
		if d < bestDist {
			bestDist = d
			best = &s.Plates[i]
		}
	}
	return best
}

// NearestBoundary returns the distance from p to the closest boundary segment
// and the boundary that owns it. With no segments it returns +Inf and nil.
func (s *System) NearestBoundary(p geom.Vec2) (float64, *Boundary) {
	best := math.Inf(1)
	var nearest *Boundary
	for i := range s.Boundaries {
		b := &s.Boundaries[i]
		for _, seg := range b.Segments {
			if d := geom.DistanceToSegment(p, seg.Start, seg.End); d < best {
				best = d
				nearest = b
			}
		}
	}
	return best, nearest
}

// VolcanicInfluence returns the strongest volcanic effect at p, or 0.
// Hotspots fall off linearly over their radius scaled by intensity. Chain
// volcanoes reach ChainVolcanoRadius and scale by elevation/4000 when active,
// elevation/8000 when dormant.
func (s *System) VolcanicInfluence(p geom.Vec2) float64 {
	influence := 0.0
	for _, h := range s.Hotspots {
		if f := geom.LinearFalloff(p.Dist(h.Position), h.Radius); f > 0 {
			influence = math.Max(influence, h.Intensity*f)
		}
		for _, v := range h.Chain {
			f := geom.LinearFalloff(p.Dist(v.Position), ChainVolcanoRadius)
			if f <= 0 {
				continue
			}
			scale := v.Elevation / 8000
			if v.Active {
				scale = v.Elevation / 4000
			}
			influence = math.Max(influence, f*scale)
		}
	}
	return influence
}

// ContinentalCount returns how many plates carry continental crust.
func (s *System) ContinentalCount() int {
	n := 0
	for _, p := range s.Plates {
		if p.IsContinental {
			n++
		}
	}
	return n
}

// Package geom holds the 2D primitives shared by world generation:
// points, polygon containment, segment distance, and falloff curves.
package geom

import (
	"math"

	"golang.org/x/exp/constraints"
)

// Vec2 is a point or offset in map space (pixels, origin at map center).
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// V is shorthand for Vec2{X: x, Y: y}.
func V(x, y float64) Vec2 {
	return Vec2{X: x, Y: y}
}

func (v Vec2) Add(o Vec2) Vec2 {
	return Vec2{X: v.X + o.X, Y: v.Y + o.Y}
}

func (v Vec2) Sub(o Vec2) Vec2 {
	return Vec2{X: v.X - o.X, Y: v.Y - o.Y}
}

func (v Vec2) Scale(s float64) Vec2 {
	return Vec2{X: v.X * s, Y: v.Y * s}
}

func (v Vec2) Dot(o Vec2) float64 {
	return v.X*o.X + v.Y*o.Y
}

// Len returns the Euclidean length of v.
func (v Vec2) Len() float64 {
	return math.Hypot(v.X, v.Y)
}

// Dist returns the Euclidean distance between v and o.
func (v Vec2) Dist(o Vec2) float64 {
	return math.Hypot(v.X-o.X, v.Y-o.Y)
}

// Normalize returns v scaled to unit length, or the zero vector.
func (v Vec2) Normalize() Vec2 {
	l := v.Len()
	if l == 0 {
		return Vec2{}
	}
	return Vec2{X: v.X / l, Y: v.Y / l}
}

// Clamp bounds v to [lo, hi].
func Clamp[T constraints.Ordered](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Clamp01 bounds v to [0, 1].
func Clamp01(v float64) float64 {
	return Clamp(v, 0, 1)
}

// PointInPolygon reports whether p lies inside poly using ray casting.
// Polygons with fewer than 3 vertices contain nothing. An edge counts toward
// a crossing when p.Y > min(y) && p.Y <= max(y), so points on a shared
// horizontal seam resolve to exactly one side.
func PointInPolygon(p Vec2, poly []Vec2) bool {
	if len(poly) < 3 {
		return false
	}
	inside := false
	j := len(poly) - 1
	for i := range poly {
		a, b := poly[i], poly[j]
		if p.Y > math.Min(a.Y, b.Y) && p.Y <= math.Max(a.Y, b.Y) && p.X <= math.Max(a.X, b.X) {
			// a.Y != b.Y is implied by the strict/inclusive bounds above.
			xCross := (p.Y-a.Y)*(b.X-a.X)/(b.Y-a.Y) + a.X
			if a.X == b.X || p.X <= xCross {
				inside = !inside
			}
		}
		j = i
	}
	return inside
}

// DistanceToSegment returns the shortest distance from p to segment ab.
func DistanceToSegment(p, a, b Vec2) float64 {
	ab := b.Sub(a)
	lenSq := ab.Dot(ab)
	if lenSq == 0 {
		return p.Dist(a)
	}
	t := Clamp(p.Sub(a).Dot(ab)/lenSq, 0, 1)
	return p.Dist(a.Add(ab.Scale(t)))
}

// LinearFalloff is 1 at d=0 and falls to 0 at d=radius.
func LinearFalloff(d, radius float64) float64 {
	if radius <= 0 || d >= radius {
		return 0
	}
	return 1 - d/radius
}

// QuadraticFalloff is (1 - d/radius)^2 inside radius, 0 outside.
func QuadraticFalloff(d, radius float64) float64 {
	f := LinearFalloff(d, radius)
	return f * f
}

// Centroid returns the mean of the polygon's vertices.
func Centroid(poly []Vec2) Vec2 {
	if len(poly) == 0 {
		return Vec2{}
	}
	var sum Vec2
	for _, p := range poly {
		sum = sum.Add(p)
	}
	return sum.Scale(1 / float64(len(poly)))
}

// PolygonArea returns the absolute shoelace area of poly.
func PolygonArea(poly []Vec2) float64 {
	area := 0.0
	j := len(poly) - 1
	for i := range poly {
		area += (poly[j].X + poly[i].X) * (poly[j].Y - poly[i].Y)
		j = i
	}
	return math.Abs(area / 2)
}

// Package mesh precomputes the hex geometry and per-province colours the
// renderer uploads once a world is ready.
package mesh

import (
	"context"
	"fmt"
	"image/color"
	"math"

	"github.com/hsluv/hsluv-go"

	"github.com/talgya/hexforge/internal/geom"
	"github.com/talgya/hexforge/internal/parallel"
	"github.com/talgya/hexforge/internal/world"
)

const (
	VerticesPerHex = 6
	IndicesPerHex  = 12 // Four triangles fanned from vertex 0
)

// Mesh is a flat-top hex mesh, VerticesPerHex vertices per province in
// province order.
type Mesh struct {
	Vertices []geom.Vec2
	Indices  []uint32
	Colors   []color.RGBA // One per province
}

// Len is the number of hexes in the mesh.
func (m *Mesh) Len() int {
	return len(m.Colors)
}

// HexVertices returns the corners of a flat-top hex, counter-clockwise from
// the east.
func HexVertices(center geom.Vec2, size float64) [VerticesPerHex]geom.Vec2 {
	var out [VerticesPerHex]geom.Vec2
	for k := range out {
		a := float64(k) * math.Pi / 3
		out[k] = geom.V(center.X+size*math.Cos(a), center.Y+size*math.Sin(a))
	}
	return out
}

// Build computes vertices, indices, and colours for every province in
// parallel; each province writes only its own slots.
func Build(ctx context.Context, provinces []world.Province, hexSize float64) (*Mesh, error) {
	n := len(provinces)
	m := &Mesh{
		Vertices: make([]geom.Vec2, n*VerticesPerHex),
		Indices:  make([]uint32, n*IndicesPerHex),
		Colors:   make([]color.RGBA, n),
	}

	err := parallel.For(ctx, n, func(i int) {
		p := &provinces[i]
		verts := HexVertices(p.Position, hexSize)
		copy(m.Vertices[i*VerticesPerHex:], verts[:])

		base := uint32(i * VerticesPerHex)
		idx := m.Indices[i*IndicesPerHex : (i+1)*IndicesPerHex]
		for t := 0; t < 4; t++ {
			idx[t*3] = base
			idx[t*3+1] = base + uint32(t+1)
			idx[t*3+2] = base + uint32(t+2)
		}

		m.Colors[i] = TerrainColor(p.Terrain, p.Elevation)
	})
	if err != nil {
		return nil, fmt.Errorf("mesh: %w", err)
	}
	return m, nil
}

type shade struct {
	hue, saturation, lightness float64
}

var terrainShades = map[world.Terrain]shade{
	world.TerrainOcean:     {250, 80, 35},
	world.TerrainBeach:     {70, 60, 85},
	world.TerrainPlains:    {110, 70, 65},
	world.TerrainHills:     {90, 45, 55},
	world.TerrainMountains: {40, 15, 50},
	world.TerrainIce:       {220, 20, 95},
	world.TerrainTundra:    {160, 15, 75},
	world.TerrainDesert:    {60, 65, 80},
	world.TerrainForest:    {130, 75, 40},
	world.TerrainJungle:    {140, 90, 35},
	world.TerrainRiver:     {240, 85, 55},
	world.TerrainDelta:     {180, 60, 60},
}

// TerrainColor shades a terrain by elevation in HSLuv, so equal elevation
// steps look equally bright across hues. Deep ocean is darker, high land
// lighter.
func TerrainColor(t world.Terrain, elevation float64) color.RGBA {
	s, ok := terrainShades[t]
	if !ok {
		s = shade{0, 0, 50}
	}
	l := s.lightness
	if t == world.TerrainOcean {
		l += (elevation - 0.07) * 150
	} else {
		l += (elevation - 0.5) * 20
	}
	l = geom.Clamp(l, 5, 98)

	r, g, b := hsluv.HsluvToRGB(s.hue, s.saturation, l)
	return color.RGBA{
		R: uint8(math.Round(geom.Clamp01(r) * 0xff)),
		G: uint8(math.Round(geom.Clamp01(g) * 0xff)),
		B: uint8(math.Round(geom.Clamp01(b) * 0xff)),
		A: 0xff,
	}
}

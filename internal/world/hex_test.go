package world

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDimensionsFor(t *testing.T) {
	d := DimensionsFor(SizeSmall)
	assert.Equal(t, 1250, d.ProvincesPerRow)
	assert.Equal(t, 800, d.ProvincesPerCol)
	assert.Equal(t, 1_000_000, d.ProvinceCount())
	assert.InDelta(t, 1250*HexSize*1.5, d.WidthPixels, 1e-6)
	assert.InDelta(t, -d.WidthPixels/2, d.Bounds.XMin, 1e-6)
	assert.InDelta(t, d.HeightPixels, d.Bounds.Height(), 1e-6)

	perRow, perCol := SizeLarge.Dimensions()
	assert.Equal(t, 2000, perRow)
	assert.Equal(t, 1500, perCol)
}

func TestParseWorldSize(t *testing.T) {
	assert.Equal(t, SizeSmall, ParseWorldSize("Small"))
	assert.Equal(t, SizeLarge, ParseWorldSize(" large "))
	assert.Equal(t, SizeMedium, ParseWorldSize("medium"))
	assert.Equal(t, SizeMedium, ParseWorldSize("enormous"))
}

func TestWorldSizeYAML(t *testing.T) {
	var v struct {
		Size WorldSize `yaml:"size"`
	}
	require.NoError(t, yaml.Unmarshal([]byte("size: large\n"), &v))
	assert.Equal(t, SizeLarge, v.Size)

	out, err := yaml.Marshal(v)
	require.NoError(t, err)
	assert.Equal(t, "size: large\n", string(out))
}

func TestNeighborIndices(t *testing.T) {
	d := NewDimensions(4, 3, HexSize)

	assert.Equal(t, [6]int{-1, 1, 4, -1, -1, -1}, d.NeighborIndices(0, 0))
	assert.Equal(t, [6]int{6, 10, 9, 8, 4, 1}, d.NeighborIndices(1, 1))
}

func TestNeighborsAreSymmetric(t *testing.T) {
	d := NewDimensions(9, 7, HexSize)
	for id := 0; id < d.ProvinceCount(); id++ {
		col, row := d.ColRow(id)
		require.Equal(t, id, d.Index(col, row))
		for _, n := range d.NeighborIndices(col, row) {
			if n == NoNeighbor {
				continue
			}
			require.True(t, n >= 0 && n < d.ProvinceCount())
			nc, nr := d.ColRow(n)
			assert.Contains(t, d.NeighborIndices(nc, nr), id, "province %d ↔ %d", id, n)
		}
	}
}

func TestNeighborsAreOneHexApart(t *testing.T) {
	d := NewDimensions(6, 6, HexSize)
	for id := 0; id < d.ProvinceCount(); id++ {
		col, row := d.ColRow(id)
		x, y := d.HexPosition(col, row)
		for _, n := range d.NeighborIndices(col, row) {
			if n == NoNeighbor {
				continue
			}
			nx, ny := d.HexPosition(d.ColRow(n))
			dist := (nx-x)*(nx-x) + (ny-y)*(ny-y)
			// Flat-top neighbours are sqrt(3)*size apart.
			assert.InDelta(t, 3*HexSize*HexSize, dist, 1e-6)
		}
	}
}

func TestHexPosition(t *testing.T) {
	d := NewDimensions(4, 3, HexSize)
	x, y := d.HexPosition(0, 0)
	assert.InDelta(t, -150.0, x, 1e-9)
	assert.InDelta(t, -1.5*HexSize*sqrt3, y, 1e-9)

	x, y = d.HexPosition(1, 0)
	assert.InDelta(t, -75.0, x, 1e-9)
	assert.InDelta(t, -1.5*HexSize*sqrt3+HexSize*sqrt3/2, y, 1e-9)
}

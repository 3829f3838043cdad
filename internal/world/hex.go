// Package world provides the hex province grid, terrain classification, and
// the province field and ocean depth passes of world generation.
// Provinces sit on a flat-top hex grid in odd-q offset layout; a province's
// index in the slice is its ID and its neighbours are stored as indices.
package world

import (
	"fmt"
	"math"
	"strings"
)

// HexSize is the default hex radius in pixels (center to corner).
const HexSize = 50.0

// NoNeighbor marks an empty slot in Province.Neighbors.
const NoNeighbor = -1

var sqrt3 = math.Sqrt(3)

// WorldSize selects the province grid dimensions.
type WorldSize uint8

const (
	SizeSmall  WorldSize = iota // 1250 × 800 provinces
	SizeMedium                  // 1600 × 1250 provinces
	SizeLarge                   // 2000 × 1500 provinces
)

func (s WorldSize) String() string {
	switch s {
	case SizeSmall:
		return "small"
	case SizeLarge:
		return "large"
	default:
		return "medium"
	}
}

// ParseWorldSize maps a name to a WorldSize. Unknown names are Medium.
func ParseWorldSize(name string) WorldSize {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "small":
		return SizeSmall
	case "large":
		return SizeLarge
	default:
		return SizeMedium
	}
}

// MarshalText lets WorldSize appear by name in YAML and JSON.
func (s WorldSize) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *WorldSize) UnmarshalText(b []byte) error {
	*s = ParseWorldSize(string(b))
	return nil
}

// Dimensions returns the provinces per row and per column for s.
func (s WorldSize) Dimensions() (perRow, perCol int) {
	switch s {
	case SizeSmall:
		return 1250, 800
	case SizeLarge:
		return 2000, 1500
	default:
		return 1600, 1250
	}
}

// Bounds is an axis-aligned rectangle in map space.
type Bounds struct {
	XMin float64 `json:"x_min"`
	XMax float64 `json:"x_max"`
	YMin float64 `json:"y_min"`
	YMax float64 `json:"y_max"`
}

func (b Bounds) Width() float64  { return b.XMax - b.XMin }
func (b Bounds) Height() float64 { return b.YMax - b.YMin }

// MapDimensions describes the province grid and its extent in pixels.
type MapDimensions struct {
	ProvincesPerRow int     `json:"provinces_per_row"`
	ProvincesPerCol int     `json:"provinces_per_col"`
	HexSize         float64 `json:"hex_size"`
	WidthPixels     float64 `json:"width_pixels"`
	HeightPixels    float64 `json:"height_pixels"`
	Bounds          Bounds  `json:"bounds"`
}

// DimensionsFor returns the grid for a world size at the default hex size.
func DimensionsFor(size WorldSize) MapDimensions {
	perRow, perCol := size.Dimensions()
	return NewDimensions(perRow, perCol, HexSize)
}

// NewDimensions builds a grid of perRow columns by perCol rows, centered on
// the origin.
func NewDimensions(perRow, perCol int, hexSize float64) MapDimensions {
	w := float64(perRow) * hexSize * 1.5
	h := float64(perCol) * hexSize * sqrt3
	return MapDimensions{
		ProvincesPerRow: perRow,
		ProvincesPerCol: perCol,
		HexSize:         hexSize,
		WidthPixels:     w,
		HeightPixels:    h,
		Bounds:          Bounds{XMin: -w / 2, XMax: w / 2, YMin: -h / 2, YMax: h / 2},
	}
}

// ProvinceCount is the total number of provinces in the grid.
func (d MapDimensions) ProvinceCount() int {
	return d.ProvincesPerRow * d.ProvincesPerCol
}

// Index returns the province ID at (col, row).
func (d MapDimensions) Index(col, row int) int {
	return row*d.ProvincesPerRow + col
}

// ColRow is the inverse of Index.
func (d MapDimensions) ColRow(id int) (col, row int) {
	return id % d.ProvincesPerRow, id / d.ProvincesPerRow
}

// InBounds reports whether (col, row) lies on the grid.
func (d MapDimensions) InBounds(col, row int) bool {
	return col >= 0 && col < d.ProvincesPerRow && row >= 0 && row < d.ProvincesPerCol
}

// HexPosition returns the pixel center of (col, row). Odd columns are
// shifted down by half a hex height.
func (d MapDimensions) HexPosition(col, row int) (x, y float64) {
	x = (float64(col) - float64(d.ProvincesPerRow)/2) * d.HexSize * 1.5
	y = (float64(row) - float64(d.ProvincesPerCol)/2) * d.HexSize * sqrt3
	if col%2 == 1 {
		y += d.HexSize * sqrt3 / 2
	}
	return x, y
}

// Odd-q neighbour offsets, clockwise from the upper right.
var (
	evenColOffsets = [6][2]int{{1, -1}, {1, 0}, {0, 1}, {-1, 0}, {-1, -1}, {0, -1}}
	oddColOffsets  = [6][2]int{{1, 0}, {1, 1}, {0, 1}, {-1, 1}, {-1, 0}, {0, -1}}
)

// NeighborIndices returns the six neighbour IDs of (col, row), with
// NoNeighbor for slots that fall off the grid.
func (d MapDimensions) NeighborIndices(col, row int) [6]int {
	offsets := evenColOffsets
	if col%2 == 1 {
		offsets = oddColOffsets
	}
	var out [6]int
	for i, off := range offsets {
		nc, nr := col+off[0], row+off[1]
		if d.InBounds(nc, nr) {
			out[i] = d.Index(nc, nr)
		} else {
			out[i] = NoNeighbor
		}
	}
	return out
}

func (d MapDimensions) String() string {
	return fmt.Sprintf("Grid(%d×%d, hex=%.0f, %.0f×%.0fpx)",
		d.ProvincesPerRow, d.ProvincesPerCol, d.HexSize, d.WidthPixels, d.HeightPixels)
}

// Package climate derives per-province temperature and rainfall from
// latitude, elevation, and prevailing wind, and maps them to the travel and
// harvest modifiers later simulation reads.
package climate

import (
	"context"
	"fmt"
	"math"

	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/talgya/hexforge/internal/geom"
	"github.com/talgya/hexforge/internal/parallel"
	"github.com/talgya/hexforge/internal/world"
)

// Cell is the climate of one province.
type Cell struct {
	Zone        world.ClimateZone `json:"zone"`
	Temperature float64           `json:"temperature"` // Mean annual, Celsius
	Rainfall    float64           `json:"rainfall"`    // 0.0 (arid) to 1.0 (monsoon)
}

// Storage holds one Cell per province, indexed by province ID.
type Storage struct {
	Cells []Cell
}

// Get returns the climate of province id, or a zero Cell when out of range.
func (s *Storage) Get(id int) Cell {
	if s == nil || id < 0 || id >= len(s.Cells) {
		return Cell{}
	}
	return s.Cells[id]
}

// Len is the number of provinces covered.
func (s *Storage) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Cells)
}

// Westerly winds arrive through neighbour slot 3, on the western side.
const windwardSlot = 3

// Build computes climate for every province in parallel.
func Build(ctx context.Context, provinces []world.Province, dims world.MapDimensions, seed int64) (*Storage, error) {
	rain := opensimplex.NewNormalized(seed + 1)
	s := &Storage{Cells: make([]Cell, len(provinces))}

	err := parallel.For(ctx, len(provinces), func(i int) {
		p := &provinces[i]
		zone := world.ZoneAt(p.Position.Y, dims.HeightPixels)
		lat := world.Latitude(p.Position.Y, dims.HeightPixels)

		// 30°C at the equator down to -25°C at the poles, 6.5°C colder per 0.1 of elevation.
		temp := 30 - math.Abs(lat-0.5)*2*55
		if p.Terrain.IsLand() {
			temp -= p.Elevation * 65
		}

		r := baseRainfall(zone) * (0.6 + 0.4*rain.Eval2(p.Position.X*0.002, p.Position.Y*0.002))
		if w := world.Neighbor(provinces, p, windwardSlot); w != nil && w.Terrain == world.TerrainMountains {
			r *= 0.6
		}

		s.Cells[i] = Cell{Zone: zone, Temperature: temp, Rainfall: geom.Clamp01(r)}
	})
	if err != nil {
		return nil, fmt.Errorf("climate: %w", err)
	}
	return s, nil
}

func baseRainfall(z world.ClimateZone) float64 {
	switch z {
	case world.ZoneTropical:
		return 0.9
	case world.ZoneTemperate:
		return 0.6
	case world.ZoneSubtropical, world.ZoneSubarctic:
		return 0.4
	default:
		return 0.2
	}
}

// Modifiers are simulation multipliers derived from a province's climate.
type Modifiers struct {
	TempModifier  float64 // -1 cold to +1 hot
	FoodDecayMod  float64 // Multiplier on food spoilage
	TravelPenalty float64 // Multiplier on travel time
}

// ModifiersFor converts a climate cell to simulation modifiers.
func ModifiersFor(c Cell) Modifiers {
	m := Modifiers{FoodDecayMod: 1.0, TravelPenalty: 1.0}

	// Map celsius to -1..+1 (0C = -1, 20C = 0, 40C = +1).
	m.TempModifier = geom.Clamp((c.Temperature-20)/20, -1, 1)

	// Hot climates spoil food faster.
	switch {
	case c.Temperature > 30:
		m.FoodDecayMod = 1.5
	case c.Temperature > 25:
		m.FoodDecayMod = 1.2
	case c.Temperature < 0:
		m.FoodDecayMod = 0.7 // Cold preserves
	}

	// Snow and monsoon slow travel.
	switch {
	case c.Temperature < 0 && c.Rainfall > 0.3:
		m.TravelPenalty = 1.5
	case c.Rainfall > 0.8:
		m.TravelPenalty = 1.2
	}

	return m
}

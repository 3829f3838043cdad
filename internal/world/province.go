package world

import "github.com/talgya/hexforge/internal/geom"

// Terrain types for provinces.
type Terrain uint8

const (
	TerrainOcean     Terrain = iota // Open water; depth stored in Elevation
	TerrainBeach                    // Low coastal land
	TerrainPlains                   // Fertile lowland
	TerrainHills                    // Rolling highland
	TerrainMountains                // Impassable peaks
	TerrainIce                      // Polar coast
	TerrainTundra                   // Frozen plain
	TerrainDesert                   // Arid lowland
	TerrainForest                   // Temperate or boreal woodland
	TerrainJungle                   // Tropical rainforest
	TerrainRiver                    // Freshwater channel
	TerrainDelta                    // River mouth
)

var terrainNames = [...]string{
	TerrainOcean:     "Ocean",
	TerrainBeach:     "Beach",
	TerrainPlains:    "Plains",
	TerrainHills:     "Hills",
	TerrainMountains: "Mountains",
	TerrainIce:       "Ice",
	TerrainTundra:    "Tundra",
	TerrainDesert:    "Desert",
	TerrainForest:    "Forest",
	TerrainJungle:    "Jungle",
	TerrainRiver:     "River",
	TerrainDelta:     "Delta",
}

func (t Terrain) String() string {
	if int(t) < len(terrainNames) {
		return terrainNames[t]
	}
	return "Unknown"
}

// IsLand is true for every terrain except Ocean.
func (t Terrain) IsLand() bool {
	return t != TerrainOcean
}

// Culture identifies the cultural group living in a province.
type Culture uint8

const (
	CultureNone     Culture = iota // Unassigned (oceans, pre-assignment)
	CultureWestern                 // North-west quadrant
	CultureNorthern                // North-east quadrant
	CultureSouthern                // South-west quadrant
	CultureEastern                 // South-east quadrant
	CultureIsland                  // Far from the map center
	CultureAncient                 // Rare scattered remnants
	CultureMystical                // Rarer still
)

// Cultures lists every assignable culture in declaration order.
var Cultures = []Culture{
	CultureWestern, CultureNorthern, CultureSouthern, CultureEastern,
	CultureIsland, CultureAncient, CultureMystical,
}

func (c Culture) String() string {
	switch c {
	case CultureWestern:
		return "Western"
	case CultureNorthern:
		return "Northern"
	case CultureSouthern:
		return "Southern"
	case CultureEastern:
		return "Eastern"
	case CultureIsland:
		return "Island"
	case CultureAncient:
		return "Ancient"
	case CultureMystical:
		return "Mystical"
	default:
		return "None"
	}
}

// Province is one hex cell of the world map.
type Province struct {
	ID       int       `json:"id"` // Equal to the province's index
	Position geom.Vec2 `json:"position"`
	Col      int       `json:"col"`
	Row      int       `json:"row"`

	// Set during generation and not changed afterwards.
	Elevation float64 `json:"elevation"` // 0.0 (abyss) to 1.0 (peak); banded depth for oceans
	Terrain   Terrain `json:"terrain"`
	Plate     int     `json:"plate"`

	// Mutated by later simulation.
	Population  float64 `json:"population"`
	Agriculture float64 `json:"agriculture"` // 0.0 (barren) to 3.0 (river floodplain)
	Culture     Culture `json:"culture"`
	Owner       int     `json:"owner"` // Nation ID, or -1

	Neighbors          [6]int  `json:"neighbors"`            // Province IDs or NoNeighbor
	FreshWaterDistance float64 `json:"fresh_water_distance"` // Hexes to the nearest river or delta, or NoFreshWater
}

// HasCulture reports whether a culture has been assigned.
func (p *Province) HasCulture() bool {
	return p.Culture != CultureNone
}

// IsOcean is shorthand for p.Terrain == TerrainOcean.
func (p *Province) IsOcean() bool {
	return p.Terrain == TerrainOcean
}

// Neighbor returns the province adjacent to p in slot i, or nil when the slot
// is empty or out of range.
func Neighbor(provinces []Province, p *Province, i int) *Province {
	n := p.Neighbors[i]
	if n < 0 || n >= len(provinces) {
		return nil
	}
	return &provinces[n]
}

// InitialPopulation seeds a province's population from its terrain and elevation.
func InitialPopulation(t Terrain, elevation float64) float64 {
	if t == TerrainOcean {
		return 0
	}
	return 1000 + elevation*49000
}

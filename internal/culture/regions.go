package culture

import (
	"math"
	"sort"

	"github.com/talgya/hexforge/internal/geom"
	"github.com/talgya/hexforge/internal/world"
)

// islandRegionSize is the size below which a coastal region counts as an island.
const islandRegionSize = 50

// Region is a maximal connected set of same-culture land provinces.
type Region struct {
	Culture        world.Culture `json:"culture"`
	Provinces      []int         `json:"provinces"`
	Center         geom.Vec2     `json:"center"`
	Size           int           `json:"size"`
	CoastalAccess  bool          `json:"coastal_access"`
	StrategicValue float64       `json:"strategic_value"` // 0.0 to 1.0
	Radius         float64       `json:"radius"`
	IsIsland       bool          `json:"is_island"`
}

// DetectRegions flood-fills same-culture land through the neighbour graph.
// Any province with a culture can seed a fill, but the fill never crosses
// ocean. It drops components smaller than cfg.MinRegionSize, ranks the rest by
// strategic value, and keeps at most cfg.MaxRegionsPerCulture of each culture.
func DetectRegions(provinces []world.Province, cfg Config) []Region {
	visited := make([]bool, len(provinces))
	var regions []Region

	for i := range provinces {
		if visited[i] || !provinces[i].HasCulture() {
			continue
		}
		members := floodFill(provinces, i, visited)
		if len(members) < cfg.MinRegionSize {
			continue
		}
		regions = append(regions, newRegion(provinces, members))
	}

	sort.SliceStable(regions, func(a, b int) bool {
		return regions[a].StrategicValue > regions[b].StrategicValue
	})

	perCulture := make(map[world.Culture]int)
	kept := regions[:0]
	for _, r := range regions {
		if perCulture[r.Culture] >= cfg.MaxRegionsPerCulture {
			continue
		}
		perCulture[r.Culture]++
		kept = append(kept, r)
	}
	return kept
}

func floodFill(provinces []world.Province, start int, visited []bool) []int {
	culture := provinces[start].Culture
	visited[start] = true
	members := []int{start}

	for head := 0; head < len(members); head++ {
		p := &provinces[members[head]]
		for slot := range p.Neighbors {
			n := world.Neighbor(provinces, p, slot)
			if n == nil || visited[n.ID] || n.Culture != culture || n.IsOcean() {
				continue
			}
			visited[n.ID] = true
			members = append(members, n.ID)
		}
	}
	return members
}

func newRegion(provinces []world.Province, members []int) Region {
	r := Region{
		Culture:   provinces[members[0]].Culture,
		Provinces: members,
		Size:      len(members),
	}

	var sum geom.Vec2
	for _, id := range members {
		p := &provinces[id]
		sum = sum.Add(p.Position)
		// Only the seed can be Ocean; flood fill never adds ocean neighbours.
		if p.Terrain == world.TerrainBeach || p.Terrain == world.TerrainOcean {
			r.CoastalAccess = true
		}
	}
	r.Center = sum.Scale(1 / float64(len(members)))

	for _, id := range members {
		r.Radius = math.Max(r.Radius, provinces[id].Position.Dist(r.Center))
	}

	r.IsIsland = r.Culture == world.CultureIsland || (r.CoastalAccess && r.Size < islandRegionSize)
	r.StrategicValue = strategicValue(r)
	return r
}

// strategicValue favours large, coastal, compact regions and discounts islands.
// Compactness compares the raw radius with sqrt(size/pi).
func strategicValue(r Region) float64 {
	v := math.Log(float64(r.Size)) / 10
	if r.CoastalAccess {
		v += 0.3
	}
	if r.IsIsland {
		v -= 0.2
	}
	ideal := math.Sqrt(float64(r.Size) / math.Pi)
	v += (1 - math.Abs(r.Radius-ideal)/math.Max(ideal, 1)) * 0.2
	return geom.Clamp01(v)
}

// LargestByCulture returns the largest region of each culture present.
// Ties keep the earlier (higher ranked) region.
func LargestByCulture(regions []Region) map[world.Culture]Region {
	out := make(map[world.Culture]Region)
	for _, r := range regions {
		if best, ok := out[r.Culture]; !ok || r.Size > best.Size {
			out[r.Culture] = r
		}
	}
	return out
}

// MostStrategic returns up to n regions in descending strategic value.
func MostStrategic(regions []Region, n int) []Region {
	sorted := make([]Region, len(regions))
	copy(sorted, regions)
	sort.SliceStable(sorted, func(a, b int) bool {
		return sorted[a].StrategicValue > sorted[b].StrategicValue
	})
	if n < len(sorted) {
		sorted = sorted[:max(n, 0)]
	}
	return sorted
}

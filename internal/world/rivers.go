package world

import (
	"math"
	"math/rand"
	"sort"
)

// fertility is the base agricultural yield of a terrain before water access.
func fertility(t Terrain) float64 {
	switch t {
	case TerrainPlains:
		return 1.0
	case TerrainRiver:
		return 2.0
	case TerrainDelta:
		return 2.5
	case TerrainForest:
		return 0.6
	case TerrainHills:
		return 0.5
	case TerrainJungle:
		return 0.5
	case TerrainBeach:
		return 0.4
	case TerrainDesert, TerrainTundra:
		return 0.1
	case TerrainMountains:
		return 0.05
	default:
		return 0
	}
}

// PlaceRivers traces rivers downhill from highland sources, marking their
// course as River and the province where they reach the sea as Delta.
// density in [0, 1] scales how many highland provinces become sources.
// Returns the number of rivers traced.
func PlaceRivers(provinces []Province, density float64, seed int64) int {
	rng := rand.New(rand.NewSource(seed + 100))

	// Highland provinces are candidate sources.
	var sources []int
	for i := range provinces {
		p := &provinces[i]
		if p.Terrain.IsLand() && p.Elevation > 0.55 && p.Terrain != TerrainIce {
			sources = append(sources, i)
		}
	}

	numRivers := int(float64(len(sources)) * density * 0.05)
	if density > 0 && numRivers < 1 && len(sources) > 0 {
		numRivers = 1
	}

	rng.Shuffle(len(sources), func(i, j int) {
		sources[i], sources[j] = sources[j], sources[i]
	})
	if len(sources) > numRivers {
		sources = sources[:numRivers]
	}

	for _, start := range sources {
		traceRiver(provinces, start)
	}
	return len(sources)
}

// traceRiver follows the steepest descent from a source until it reaches the
// ocean or runs out of downhill path.
func traceRiver(provinces []Province, start int) {
	current := start
	visited := make(map[int]bool)
	const maxSteps = 200

	for step := 0; step < maxSteps; step++ {
		visited[current] = true
		p := &provinces[current]

		// Find the lowest neighbour, noting whether the sea is adjacent.
		best := -1
		bestElev := p.Elevation
		reachesSea := false
		for i := range p.Neighbors {
			n := Neighbor(provinces, p, i)
			if n == nil || visited[n.ID] {
				continue
			}
			if n.IsOcean() {
				reachesSea = true
				continue
			}
			if n.Elevation < bestElev {
				bestElev = n.Elevation
				best = n.ID
			}
		}

		if reachesSea {
			if p.Terrain != TerrainMountains {
				p.Terrain = TerrainDelta
			}
			return
		}
		// Peaks stay mountains; the river starts below them.
		if p.Terrain != TerrainMountains && p.Terrain != TerrainBeach {
			p.Terrain = TerrainRiver
		}
		if best < 0 {
			return // Endorheic basin
		}
		current = best
	}
}

// NoFreshWater marks a province with no land path to a river or delta.
const NoFreshWater = -1.0

// ComputeFreshWater sets FreshWaterDistance (in hexes) for every province by
// breadth-first search out from rivers and deltas, then derives agriculture.
func ComputeFreshWater(provinces []Province) {
	queue := make([]int, 0, len(provinces)/8)
	for i := range provinces {
		p := &provinces[i]
		p.FreshWaterDistance = NoFreshWater
		if p.Terrain == TerrainRiver || p.Terrain == TerrainDelta {
			p.FreshWaterDistance = 0
			queue = append(queue, i)
		}
	}

	for head := 0; head < len(queue); head++ {
		p := &provinces[queue[head]]
		for i := range p.Neighbors {
			n := Neighbor(provinces, p, i)
			if n == nil || n.IsOcean() || n.FreshWaterDistance != NoFreshWater {
				continue
			}
			n.FreshWaterDistance = p.FreshWaterDistance + 1
			queue = append(queue, n.ID)
		}
	}

	for i := range provinces {
		p := &provinces[i]
		p.Agriculture = Agriculture(p.Terrain, p.FreshWaterDistance)
	}
}

// Agriculture combines terrain fertility with proximity to fresh water.
// Water within five hexes adds up to 0.5.
func Agriculture(t Terrain, freshWaterDistance float64) float64 {
	base := fertility(t)
	if base == 0 {
		return 0
	}
	bonus := 0.0
	if freshWaterDistance >= 0 && freshWaterDistance < 5 {
		bonus = 0.5 * (1 - freshWaterDistance/5)
	}
	return base + bonus
}

// FilterSmallIslands sinks land masses of fewer than minSize provinces.
// Returns how many provinces were converted to ocean.
func FilterSmallIslands(provinces []Province, minSize int) int {
	visited := make([]bool, len(provinces))
	sunk := 0

	for i := range provinces {
		if visited[i] || provinces[i].IsOcean() {
			continue
		}
		component := landComponent(provinces, i, visited)
		if len(component) >= minSize {
			continue
		}
		for _, idx := range component {
			p := &provinces[idx]
			p.Terrain = TerrainOcean
			p.Population = 0
			p.Agriculture = 0
		}
		sunk += len(component)
	}
	return sunk
}

func landComponent(provinces []Province, start int, visited []bool) []int {
	visited[start] = true
	component := []int{start}
	for head := 0; head < len(component); head++ {
		p := &provinces[component[head]]
		for i := range p.Neighbors {
			n := Neighbor(provinces, p, i)
			if n == nil || visited[n.ID] || n.IsOcean() {
				continue
			}
			visited[n.ID] = true
			component = append(component, n.ID)
		}
	}
	return component
}

// TerrainCounts returns a summary of terrain type distribution.
func TerrainCounts(provinces []Province) map[Terrain]int {
	counts := make(map[Terrain]int)
	for i := range provinces {
		counts[provinces[i].Terrain]++
	}
	return counts
}

// Stats summarises a generated province field.
type Stats struct {
	Total         int
	Ocean         int
	Land          int
	Mountains     int
	MinElevation  float64
	MaxElevation  float64
	OceanFraction float64
}

// Summarize computes Stats over land elevations and terrain counts.
func Summarize(provinces []Province) Stats {
	s := Stats{Total: len(provinces), MinElevation: math.Inf(1), MaxElevation: math.Inf(-1)}
	for i := range provinces {
		p := &provinces[i]
		if p.IsOcean() {
			s.Ocean++
			continue
		}
		s.Land++
		if p.Terrain == TerrainMountains {
			s.Mountains++
		}
		s.MinElevation = math.Min(s.MinElevation, p.Elevation)
		s.MaxElevation = math.Max(s.MaxElevation, p.Elevation)
	}
	if s.Land == 0 {
		s.MinElevation, s.MaxElevation = 0, 0
	}
	if s.Total > 0 {
		s.OceanFraction = float64(s.Ocean) / float64(s.Total)
	}
	return s
}

// SortedTerrains returns the keys of counts in declaration order.
func SortedTerrains(counts map[Terrain]int) []Terrain {
	keys := make([]Terrain, 0, len(counts))
	for t := range counts {
		keys = append(keys, t)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

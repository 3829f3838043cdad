package nations

import (
	"github.com/talgya/hexforge/internal/world"
)

// Infrastructure summarises what a nation starts the game with.
type Infrastructure struct {
	Nation       int     `json:"nation"`
	Provinces    int     `json:"provinces"`
	Territories  int     `json:"territories"`
	Connected    int     `json:"connected"`    // Provinces reachable from the capital over owned land
	Connectivity float64 `json:"connectivity"` // Connected / Provinces
	Coastal      int     `json:"coastal"`
	Ports        []int   `json:"ports"` // Coastal provinces in the core territory
	Population   float64 `json:"population"`
	Agriculture  float64 `json:"agriculture"` // Mean over owned provinces
}

// AnalyzeInfrastructure reports connectivity, coastline, and output for
// every nation. Results are in nation order.
func AnalyzeInfrastructure(provinces []world.Province, owner []int, nations []Nation, territories []Territory, coastal *world.CoastalCache) []Infrastructure {
	index := make(map[int]int, len(nations))
	out := make([]Infrastructure, len(nations))
	for i, n := range nations {
		index[n.ID] = i
		out[i].Nation = n.ID
	}

	for id, nation := range owner {
		i, ok := index[nation]
		if !ok {
			continue
		}
		inf := &out[i]
		p := &provinces[id]
		inf.Provinces++
		inf.Population += p.Population
		inf.Agriculture += p.Agriculture
		if coastal.IsCoastal(id) {
			inf.Coastal++
		}
	}

	for _, t := range territories {
		i, ok := index[t.Nation]
		if !ok {
			continue
		}
		inf := &out[i]
		inf.Territories++
		if !t.IsCore {
			continue
		}
		inf.Connected = len(t.Provinces)
		for _, id := range t.Provinces {
			if coastal.IsCoastal(id) {
				inf.Ports = append(inf.Ports, id)
			}
		}
	}

	for i := range out {
		if out[i].Provinces > 0 {
			out[i].Connectivity = float64(out[i].Connected) / float64(out[i].Provinces)
			out[i].Agriculture /= float64(out[i].Provinces)
		}
	}
	return out
}

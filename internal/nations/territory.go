package nations

import (
	"container/heap"
	"math"

	"github.com/talgya/hexforge/internal/geom"
	"github.com/talgya/hexforge/internal/world"
)

// Unowned marks a province no nation claims.
const Unowned = -1

// MovementCost is the price of expanding into a province of terrain t.
// Ocean is impassable.
func MovementCost(t world.Terrain) float64 {
	switch t {
	case world.TerrainPlains, world.TerrainBeach, world.TerrainDelta, world.TerrainRiver:
		return 1.0
	case world.TerrainForest, world.TerrainHills:
		return 2.0
	case world.TerrainDesert, world.TerrainTundra:
		return 2.5
	case world.TerrainJungle:
		return 3.0
	case world.TerrainMountains:
		return 4.0
	case world.TerrainIce:
		return 6.0
	default:
		return math.Inf(1)
	}
}

// GrowthLimit is how many provinces each nation may claim.
func GrowthLimit(land, nations int, d Density) int {
	if nations <= 0 {
		return 0
	}
	avg := float64(land) / float64(nations)
	switch d {
	case DensitySparse:
		avg *= 0.5
	case DensityFragmented:
		avg *= 0.35
	default:
		avg *= 0.85
	}
	return max(1, int(avg))
}

type frontier struct {
	cost     float64
	province int
	nation   int
}

type frontierQueue []frontier

func (q frontierQueue) Len() int { return len(q) }
func (q frontierQueue) Less(i, j int) bool {
	if q[i].cost != q[j].cost {
		return q[i].cost < q[j].cost
	}
	if q[i].nation != q[j].nation {
		return q[i].nation < q[j].nation
	}
	return q[i].province < q[j].province
}
func (q frontierQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }
func (q *frontierQueue) Push(x any)   { *q = append(*q, x.(frontier)) }
func (q *frontierQueue) Pop() any {
	old := *q
	f := old[len(old)-1]
	*q = old[:len(old)-1]
	return f
}

// GrowTerritory expands every nation outward from its capital at once,
// cheapest frontier first, over land only. The result maps province ID to
// owning nation ID, or Unowned. Ties resolve by nation then province ID so
// the same input always yields the same map.
func GrowTerritory(provinces []world.Province, nations []Nation, limit int) []int {
	owner := make([]int, len(provinces))
	for i := range owner {
		owner[i] = Unowned
	}
	claimed := make(map[int]int, len(nations))

	q := &frontierQueue{}
	for _, n := range nations {
		if n.Capital >= 0 && n.Capital < len(provinces) {
			heap.Push(q, frontier{cost: 0, province: n.Capital, nation: n.ID})
		}
	}

	for q.Len() > 0 {
		f := heap.Pop(q).(frontier)
		if owner[f.province] != Unowned || claimed[f.nation] >= limit {
			continue
		}
		owner[f.province] = f.nation
		claimed[f.nation]++

		p := &provinces[f.province]
		for slot := range p.Neighbors {
			n := world.Neighbor(provinces, p, slot)
			if n == nil || n.IsOcean() || owner[n.ID] != Unowned {
				continue
			}
			heap.Push(q, frontier{cost: f.cost + MovementCost(n.Terrain), province: n.ID, nation: f.nation})
		}
	}
	return owner
}

// BuildTerritories groups each nation's provinces into contiguous blocks.
// The block holding the capital is the core territory.
func BuildTerritories(provinces []world.Province, owner []int, nations []Nation) []Territory {
	capitals := make(map[int]int, len(nations))
	for _, n := range nations {
		capitals[n.ID] = n.Capital
	}

	visited := make([]bool, len(provinces))
	var out []Territory
	for i := range provinces {
		if visited[i] || owner[i] == Unowned {
			continue
		}
		nation := owner[i]
		visited[i] = true
		members := []int{i}
		for head := 0; head < len(members); head++ {
			p := &provinces[members[head]]
			for slot := range p.Neighbors {
				n := world.Neighbor(provinces, p, slot)
				if n == nil || visited[n.ID] || owner[n.ID] != nation {
					continue
				}
				visited[n.ID] = true
				members = append(members, n.ID)
			}
		}

		t := Territory{ID: len(out), Nation: nation, Provinces: members}
		var sum geom.Vec2
		for _, id := range members {
			sum = sum.Add(provinces[id].Position)
			if c, ok := capitals[nation]; ok && c == id {
				t.IsCore = true
			}
		}
		t.Center = sum.Scale(1 / float64(len(members)))
		out = append(out, t)
	}
	return out
}

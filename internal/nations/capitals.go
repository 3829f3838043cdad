package nations

import (
	"math"
	"sort"

	"github.com/talgya/hexforge/internal/culture"
	"github.com/talgya/hexforge/internal/world"
)

// Capital is a province chosen as the seat of a new nation.
type Capital struct {
	Province int           `json:"province"`
	Culture  world.Culture `json:"culture"`
	Score    float64       `json:"score"`
}

type candidate struct {
	id    int
	score float64
}

// SelectCapitals picks up to count capitals. Each ranked region offers its
// best province in turn, so the most strategic regions found nations first;
// any shortfall is filled from the best remaining land anywhere. Capitals
// keep a minimum spacing that shrinks with the number of nations.
func SelectCapitals(provinces []world.Province, regions []culture.Region, count int) []Capital {
	if count <= 0 {
		return nil
	}

	land := 0
	for i := range provinces {
		if eligibleCapital(&provinces[i]) {
			land++
		}
	}
	if land == 0 {
		return nil
	}
	minDist := minCapitalDistance(land, count)

	var caps []Capital
	taken := make(map[int]bool)
	tryAdd := func(c candidate) bool {
		if taken[c.id] || tooClose(provinces, c.id, caps, minDist) {
			return false
		}
		taken[c.id] = true
		caps = append(caps, Capital{Province: c.id, Culture: provinces[c.id].Culture, Score: c.score})
		return true
	}

	// Regions first, one capital per region per pass.
	ranked := culture.MostStrategic(regions, len(regions))
	perRegion := make([][]candidate, len(ranked))
	for i, r := range ranked {
		perRegion[i] = rankCandidates(provinces, r.Provinces)
	}
	for progress := true; progress && len(caps) < count; {
		progress = false
		for i := range perRegion {
			if len(caps) >= count {
				break
			}
			for j, c := range perRegion[i] {
				if tryAdd(c) {
					perRegion[i] = perRegion[i][j+1:]
					progress = true
					break
				}
			}
		}
	}

	if len(caps) < count {
		all := make([]int, len(provinces))
		for i := range all {
			all[i] = i
		}
		global := rankCandidates(provinces, all)
		for _, c := range global {
			if len(caps) >= count {
				break
			}
			tryAdd(c)
		}

		// Too crowded to honour the spacing: take whatever lies farthest
		// from the existing capitals.
		for len(caps) < count {
			best, bestDist := -1, -1.0
			for _, c := range global {
				if taken[c.id] {
					continue
				}
				if d := nearestCapital(provinces, c.id, caps); d > bestDist {
					best, bestDist = c.id, d
				}
			}
			if best < 0 {
				break
			}
			taken[best] = true
			caps = append(caps, Capital{Province: best, Culture: provinces[best].Culture, Score: capitalScore(provinces, &provinces[best])})
		}
	}
	return caps
}

func eligibleCapital(p *world.Province) bool {
	return !p.IsOcean() && p.Terrain != world.TerrainRiver && p.Terrain != world.TerrainIce
}

// minCapitalDistance is the pixel spacing between capitals: half the
// radius of the disc each nation would cover if land were split evenly.
func minCapitalDistance(land, count int) float64 {
	spacing := world.HexSize * math.Sqrt(3)
	return math.Sqrt(float64(land)/float64(count)/math.Pi*0.5) * spacing
}

func rankCandidates(provinces []world.Province, ids []int) []candidate {
	out := make([]candidate, 0, len(ids))
	for _, id := range ids {
		p := &provinces[id]
		if !eligibleCapital(p) {
			continue
		}
		if s := capitalScore(provinces, p); s > 0 {
			out = append(out, candidate{id, s})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].score != out[j].score {
			return out[i].score > out[j].score
		}
		return out[i].id < out[j].id
	})
	return out
}

// capitalScore prefers harbours, river mouths, and fertile plains with
// varied surroundings.
func capitalScore(provinces []world.Province, p *world.Province) float64 {
	score := 0.0
	switch p.Terrain {
	case world.TerrainBeach, world.TerrainDelta:
		score += 4.0
	case world.TerrainPlains:
		score += 3.0
	case world.TerrainForest, world.TerrainHills:
		score += 1.5
	case world.TerrainJungle:
		score += 1.0
	case world.TerrainDesert, world.TerrainTundra:
		score += 0.5
	case world.TerrainMountains:
		score += 0.3
	default:
		return 0
	}

	terrains := make(map[world.Terrain]bool)
	water := false
	for slot := range p.Neighbors {
		n := world.Neighbor(provinces, p, slot)
		if n == nil {
			continue
		}
		if !n.IsOcean() {
			terrains[n.Terrain] = true
		}
		if n.Terrain == world.TerrainRiver || n.IsOcean() {
			water = true
		}
	}
	score += float64(len(terrains)) * 0.3
	if water {
		score += 0.5
	}
	score += p.Agriculture
	score += math.Log1p(p.Population/1000) * 0.2
	return score
}

func tooClose(provinces []world.Province, id int, caps []Capital, minDist float64) bool {
	return nearestCapital(provinces, id, caps) < minDist
}

func nearestCapital(provinces []world.Province, id int, caps []Capital) float64 {
	best := math.Inf(1)
	pos := provinces[id].Position
	for _, c := range caps {
		best = math.Min(best, pos.Dist(provinces[c.Province].Position))
	}
	return best
}

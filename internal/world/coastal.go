package world

// CoastalCache indexes land provinces that touch the ocean.
type CoastalCache struct {
	coastal []bool
	ids     []int
}

// BuildCoastalCache scans every land province for an ocean neighbour.
func BuildCoastalCache(provinces []Province) *CoastalCache {
	c := &CoastalCache{coastal: make([]bool, len(provinces))}
	for i := range provinces {
		p := &provinces[i]
		if p.IsOcean() {
			continue
		}
		for j := range p.Neighbors {
			if n := Neighbor(provinces, p, j); n != nil && n.IsOcean() {
				c.coastal[i] = true
				c.ids = append(c.ids, i)
				break
			}
		}
	}
	return c
}

// IsCoastal reports whether province id is land bordering the ocean.
func (c *CoastalCache) IsCoastal(id int) bool {
	return id >= 0 && id < len(c.coastal) && c.coastal[id]
}

// IDs returns coastal province IDs in ascending order.
func (c *CoastalCache) IDs() []int {
	return c.ids
}

// Len is the number of coastal provinces.
func (c *CoastalCache) Len() int {
	return len(c.ids)
}

package nations

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/talgya/hexforge/internal/culture"
	"github.com/talgya/hexforge/internal/parallel"
	"github.com/talgya/hexforge/internal/world"
)

// Config controls how many nations are founded and how much they claim.
type Config struct {
	Count   int     `yaml:"count" json:"count"`
	Density Density `yaml:"density" json:"density"`
}

// DefaultConfig returns the standard political setup.
func DefaultConfig() Config {
	return Config{Count: 8, Density: DensityBalanced}
}

// Result is the political map of a world.
type Result struct {
	Nations        []Nation         `json:"nations"`
	Houses         []House          `json:"houses"`
	Territories    []Territory      `json:"territories"`
	Infrastructure []Infrastructure `json:"infrastructure"`
	Owner          []int            `json:"-"` // Province ID → nation ID or Unowned
}

// Generate founds nations on the given world. Provinces are read, never
// modified; apply Result.Owner to record ownership.
func Generate(ctx context.Context, provinces []world.Province, regions []culture.Region, cfg Config, seed int64) (*Result, error) {
	caps := SelectCapitals(provinces, regions, cfg.Count)
	res := &Result{
		Nations: make([]Nation, len(caps)),
		Houses:  make([]House, len(caps)),
	}

	err := parallel.For(ctx, len(caps), func(i int) {
		rng := rand.New(rand.NewSource(seed + int64(i)*7919))
		res.Nations[i] = foundNation(i, caps[i], rng)
		res.Houses[i] = foundHouse(i, &res.Nations[i], rng)
	})
	if err != nil {
		return nil, fmt.Errorf("nations: %w", err)
	}
	ensureUniqueNames(res.Nations)
	for i := range res.Houses {
		res.Houses[i].FullName = fmt.Sprintf("House %s of %s", res.Houses[i].Name, res.Nations[i].Name)
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("nations: %w", err)
	}

	land := 0
	for i := range provinces {
		if !provinces[i].IsOcean() {
			land++
		}
	}
	res.Owner = GrowTerritory(provinces, res.Nations, GrowthLimit(land, len(res.Nations), cfg.Density))
	for _, n := range res.Owner {
		if n != Unowned {
			res.Nations[n].Provinces++
		}
	}

	res.Territories = BuildTerritories(provinces, res.Owner, res.Nations)
	res.Infrastructure = AnalyzeInfrastructure(provinces, res.Owner, res.Nations, res.Territories, world.BuildCoastalCache(provinces))
	return res, nil
}

func foundNation(id int, c Capital, rng *rand.Rand) Nation {
	name := NationName(rng, c.Culture)
	return Nation{
		ID:         id,
		Name:       name,
		Adjective:  Adjective(name),
		Culture:    c.Culture,
		Capital:    c.Province,
		Government: governmentFor(c.Culture, rng),
		Color:      NationColor(id),
		Treasury:   1000,
		TaxRate:    0.15 + rng.Float64()*0.2,
		Stability:  0.75,
	}
}

func foundHouse(id int, n *Nation, rng *rand.Rand) House {
	return House{
		ID:           id,
		Nation:       n.ID,
		Name:         HouseName(rng, n.Culture),
		Ruler:        RulerName(rng),
		RulerTitle:   n.Government.RulerTitle(),
		Motto:        Motto(rng),
		YearsInPower: rng.Intn(30),
		Legitimacy:   0.55 + rng.Float64()*0.4,
		Prestige:     0.2 + rng.Float64()*0.6,
	}
}

// governmentFor draws a government type weighted by culture.
func governmentFor(c world.Culture, rng *rand.Rand) Government {
	roll := rng.Float64()
	switch c {
	case world.CultureAncient, world.CultureMystical:
		if roll < 0.5 {
			return GovTheocracy
		}
		return GovMonarchy
	case world.CultureIsland:
		switch {
		case roll < 0.5:
			return GovMerchantRepublic
		case roll < 0.75:
			return GovTribal
		}
		return GovMonarchy
	case world.CultureNorthern:
		if roll < 0.3 {
			return GovTribal
		}
		return GovMonarchy
	}
	switch {
	case roll < 0.5:
		return GovMonarchy
	case roll < 0.7:
		return GovCouncil
	case roll < 0.85:
		return GovMerchantRepublic
	default:
		return GovCommune
	}
}

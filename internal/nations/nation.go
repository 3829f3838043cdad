// Package nations seeds the political map of a generated world: capitals,
// nations with their ruling houses, territorial claims, and the
// infrastructure summary each nation starts with.
package nations

import (
	"image/color"
	"math"
	"strings"

	"github.com/hsluv/hsluv-go"

	"github.com/talgya/hexforge/internal/geom"
	"github.com/talgya/hexforge/internal/world"
)

// Government is how a nation is ruled.
type Government uint8

const (
	GovMonarchy         Government = iota // One ruler, hereditary or seized
	GovCouncil                            // Elected representatives
	GovMerchantRepublic                   // Wealthiest citizens govern
	GovCommune                            // Direct democracy
	GovTheocracy                          // Rule by clergy
	GovTribal                             // Clan elders and a chieftain
)

func (g Government) String() string {
	switch g {
	case GovMonarchy:
		return "Monarchy"
	case GovCouncil:
		return "Council"
	case GovMerchantRepublic:
		return "Merchant Republic"
	case GovCommune:
		return "Commune"
	case GovTheocracy:
		return "Theocracy"
	case GovTribal:
		return "Tribal"
	default:
		return "Unknown"
	}
}

// RulerTitle returns the title held by a head of state under g.
func (g Government) RulerTitle() string {
	switch g {
	case GovCouncil:
		return "Chancellor"
	case GovMerchantRepublic:
		return "Doge"
	case GovCommune:
		return "Speaker"
	case GovTheocracy:
		return "High Priest"
	case GovTribal:
		return "Chieftain"
	default:
		return "King"
	}
}

// Density controls how much land each nation claims at the start.
type Density uint8

const (
	DensityBalanced   Density = iota // Nations claim about their fair share
	DensitySparse                    // Large nations with room between them
	DensityFragmented                // Many small nations
)

// ParseDensity maps a name to a Density. Unknown names are Balanced.
func ParseDensity(name string) Density {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "sparse":
		return DensitySparse
	case "fragmented":
		return DensityFragmented
	default:
		return DensityBalanced
	}
}

func (d Density) String() string {
	switch d {
	case DensitySparse:
		return "sparse"
	case DensityFragmented:
		return "fragmented"
	default:
		return "balanced"
	}
}

func (d Density) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Density) UnmarshalText(b []byte) error {
	*d = ParseDensity(string(b))
	return nil
}

// Nation is a sovereign state.
type Nation struct {
	ID         int           `json:"id"`
	Name       string        `json:"name"`
	Adjective  string        `json:"adjective"`
	Culture    world.Culture `json:"culture"`
	Capital    int           `json:"capital"` // Province ID
	Government Government    `json:"government"`
	Color      color.RGBA    `json:"color"`

	Treasury  float64 `json:"treasury"`
	TaxRate   float64 `json:"tax_rate"`  // 0.15–0.35
	Stability float64 `json:"stability"` // 0.0–1.0
	Provinces int     `json:"provinces"` // Provinces owned after territory growth
}

// House is the dynasty ruling a nation.
type House struct {
	ID           int     `json:"id"`
	Nation       int     `json:"nation"`
	Name         string  `json:"name"`
	FullName     string  `json:"full_name"`
	Ruler        string  `json:"ruler"`
	RulerTitle   string  `json:"ruler_title"`
	Motto        string  `json:"motto"`
	YearsInPower int     `json:"years_in_power"`
	Legitimacy   float64 `json:"legitimacy"` // 0.0–1.0
	Prestige     float64 `json:"prestige"`   // 0.0–1.0
}

// Territory is one contiguous block of a nation's provinces.
type Territory struct {
	ID        int       `json:"id"`
	Nation    int       `json:"nation"`
	Provinces []int     `json:"provinces"`
	Center    geom.Vec2 `json:"center"`
	IsCore    bool      `json:"is_core"`
}

// goldenAngle spreads successive hues as far apart as possible.
const goldenAngle = 137.50776405003785

// NationColor returns a distinct, perceptually even colour for nation id.
func NationColor(id int) color.RGBA {
	hue := math.Mod(float64(id)*goldenAngle, 360)
	r, g, b := hsluv.HsluvToRGB(hue, 85, 55)
	return color.RGBA{
		R: uint8(geom.Clamp01(r) * 0xff),
		G: uint8(geom.Clamp01(g) * 0xff),
		B: uint8(geom.Clamp01(b) * 0xff),
		A: 0xff,
	}
}

package world

import (
	"math"

	"github.com/talgya/hexforge/internal/geom"
)

// ClimateZone is a latitude band.
type ClimateZone uint8

const (
	ZoneArctic ClimateZone = iota
	ZoneSubarctic
	ZoneTemperate
	ZoneSubtropical
	ZoneTropical
)

func (z ClimateZone) String() string {
	switch z {
	case ZoneArctic:
		return "arctic"
	case ZoneSubarctic:
		return "subarctic"
	case ZoneTemperate:
		return "temperate"
	case ZoneSubtropical:
		return "subtropical"
	default:
		return "tropical"
	}
}

// Latitude maps y onto [0, 1] from the top edge to the bottom edge.
func Latitude(y, mapHeight float64) float64 {
	if mapHeight <= 0 {
		return 0.5
	}
	return geom.Clamp01(y/mapHeight + 0.5)
}

// ZoneAt returns the climate zone for a y coordinate. Zones mirror around the
// equator at latitude 0.5.
func ZoneAt(y, mapHeight float64) ClimateZone {
	lat := Latitude(y, mapHeight)
	switch {
	case lat < 0.1 || lat > 0.9:
		return ZoneArctic
	case lat < 0.2 || lat > 0.8:
		return ZoneSubarctic
	case lat < 0.35 || lat > 0.65:
		return ZoneTemperate
	case lat < 0.45 || lat > 0.55:
		return ZoneSubtropical
	default:
		return ZoneTropical
	}
}

// SeaLevel converts a target ocean coverage into an elevation threshold.
// 60% coverage maps to 0.15; each unit of deviation moves it by 0.35.
func SeaLevel(oceanCoverage float64) float64 {
	return geom.Clamp(0.15+(oceanCoverage-0.6)*0.35, 0.05, 0.5)
}

// ClassifyTerrain picks a terrain from elevation, position, and sea level.
// Latitude decides the climate zone; within a zone, smooth trigonometric
// moisture fields over (x, y) break land into forest, plains, desert, or
// jungle bands. Zones that leave a province unclassified fall back to pure
// elevation bands.
func ClassifyTerrain(elevation, x, y, mapHeight, seaLevel float64) Terrain {
	switch ZoneAt(y, mapHeight) {
	case ZoneArctic:
		switch {
		case elevation < seaLevel:
			return TerrainOcean
		case elevation < seaLevel+0.10:
			return TerrainIce
		default:
			return TerrainTundra
		}

	case ZoneSubarctic:
		switch {
		case elevation < seaLevel:
			return TerrainOcean
		case elevation < seaLevel+0.07:
			return TerrainTundra
		case elevation < seaLevel+0.20:
			boreal := math.Abs(math.Sin(y*0.007) * math.Cos(y*0.004))
			if boreal > 0.4 {
				return TerrainForest
			}
		}

	case ZoneTemperate:
		switch {
		case elevation < seaLevel:
			return TerrainOcean
		case elevation < seaLevel+0.03:
			return TerrainBeach
		case elevation < seaLevel+0.20:
			moisture := math.Abs(math.Sin(y*0.006)*math.Cos(x*0.005) + math.Sin(x*0.004)*math.Cos(y*0.003))
			if moisture > 0.55 {
				return TerrainForest
			}
			return TerrainPlains
		case elevation < seaLevel+0.35:
			woods := math.Abs(math.Cos(y*0.005) * math.Sin(y*0.007))
			if woods > 0.6 {
				return TerrainForest
			}
			return TerrainHills
		default:
			return TerrainMountains
		}

	case ZoneSubtropical:
		if elevation > seaLevel+0.05 && elevation < seaLevel+0.20 {
			aridity := math.Abs(math.Sin(x*0.004)*math.Cos(y*0.005) + math.Sin(y*0.003)*math.Cos(x*0.003))
			if aridity > 0.6 {
				return TerrainDesert
			}
			if aridity < 0.3 {
				return TerrainForest
			}
		}

	case ZoneTropical:
		switch {
		case elevation < seaLevel:
			return TerrainOcean
		case elevation < seaLevel+0.03:
			return TerrainBeach
		case elevation < seaLevel+0.25:
			canopy := math.Abs(math.Sin(x*0.003)*math.Cos(y*0.004) + math.Sin(y*0.006)*math.Cos(x*0.005))
			if canopy > 0.2 {
				return TerrainJungle
			}
			return TerrainPlains
		case elevation < seaLevel+0.35:
			canopy := math.Abs(math.Sin(x*0.004) * math.Cos(y*0.005))
			if canopy > 0.5 {
				return TerrainJungle
			}
			return TerrainHills
		default:
			return TerrainMountains
		}
	}

	return classifyByElevation(elevation, seaLevel)
}

func classifyByElevation(elevation, seaLevel float64) Terrain {
	switch {
	case elevation < seaLevel:
		return TerrainOcean
	case elevation < seaLevel+0.05:
		return TerrainBeach
	case elevation < seaLevel+0.30:
		return TerrainPlains
	case elevation < seaLevel+0.50:
		return TerrainHills
	default:
		return TerrainMountains
	}
}

// Package diagnostics captures what went wrong when world generation fails:
// a snapshot of the world's shape, recovery suggestions, and a JSON report
// written to disk.
package diagnostics

import (
	"math"
	"time"

	"github.com/talgya/hexforge/internal/world"
)

// riverMinElevation is the elevation a land province needs to feed a river.
const riverMinElevation = 0.5

// GenerationMetrics describes the world as it stood when generation ended.
type GenerationMetrics struct {
	OceanPercentage      float64 `json:"ocean_percentage"`
	LandPercentage       float64 `json:"land_percentage"`
	ElevationMin         float64 `json:"elevation_min"`
	ElevationMax         float64 `json:"elevation_max"`
	SeaLevel             float64 `json:"sea_level"`
	RiverSourcesFound    int     `json:"river_sources_found"`
	MountainCount        int     `json:"mountain_count"`
	ContinentSeeds       int     `json:"continent_seeds"`
	TotalProvinces       int     `json:"total_provinces"`
	GenerationTimeMS     int64   `json:"generation_time_ms"`
	WorldSize            string  `json:"world_size"`
	OceanCoverageSetting float64 `json:"ocean_coverage_setting"`
	RiverDensity         float64 `json:"river_density"`
}

// RunSettings are the generation settings echoed into the metrics.
type RunSettings struct {
	WorldSize     string
	Continents    int
	OceanCoverage float64
	RiverDensity  float64
}

// ElevationRange is max minus min elevation.
func (m *GenerationMetrics) ElevationRange() float64 {
	return m.ElevationMax - m.ElevationMin
}

// CollectMetrics summarises provinces for an error report.
func CollectMetrics(provinces []world.Province, seaLevel float64, elapsed time.Duration, rs RunSettings) *GenerationMetrics {
	m := &GenerationMetrics{
		SeaLevel:             seaLevel,
		ContinentSeeds:       rs.Continents,
		TotalProvinces:       len(provinces),
		GenerationTimeMS:     elapsed.Milliseconds(),
		WorldSize:            rs.WorldSize,
		OceanCoverageSetting: rs.OceanCoverage,
		RiverDensity:         rs.RiverDensity,
	}
	if len(provinces) == 0 {
		return m
	}

	ocean := 0
	m.ElevationMin, m.ElevationMax = math.Inf(1), math.Inf(-1)
	for i := range provinces {
		p := &provinces[i]
		m.ElevationMin = math.Min(m.ElevationMin, p.Elevation)
		m.ElevationMax = math.Max(m.ElevationMax, p.Elevation)
		if p.IsOcean() {
			ocean++
			continue
		}
		if p.Elevation > riverMinElevation {
			m.RiverSourcesFound++
		}
	}
	// Anything high enough to source a river counts as mountainous here.
	m.MountainCount = m.RiverSourcesFound

	total := float64(len(provinces))
	m.OceanPercentage = float64(ocean) / total * 100
	m.LandPercentage = float64(len(provinces)-ocean) / total * 100
	return m
}

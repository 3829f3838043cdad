// Province field generation: noise elevation shaped by plates, boundaries, and
// hotspots, then classified into terrain against a sea level.
package world

import (
	"context"
	"fmt"
	"math"

	"github.com/talgya/hexforge/internal/geom"
	"github.com/talgya/hexforge/internal/parallel"
	"github.com/talgya/hexforge/internal/tectonics"
)

// Boundary effect reach in pixels.
const (
	ConvergentThreshold = 200.0
	DivergentThreshold  = 150.0
	TransformThreshold  = 50.0

	ancientCoreRadius = 500.0
	ancientCoreBonus  = 0.1
)

// GenerateProvinces builds every province of the grid. Each province is
// computed independently from read-only inputs, so the pass runs as a
// parallel map; a nil system yields pure noise terrain.
func GenerateProvinces(ctx context.Context, sys *tectonics.System, dims MapDimensions, noise NoiseSampler, oceanCoverage float64) ([]Province, error) {
	if sys == nil {
		sys = &tectonics.System{}
	}
	seaLevel := SeaLevel(oceanCoverage)
	provinces := make([]Province, dims.ProvinceCount())

	err := parallel.For(ctx, len(provinces), func(i int) {
		provinces[i] = buildProvince(i, sys, dims, noise, seaLevel)
	})
	if err != nil {
		return nil, fmt.Errorf("generate provinces: %w", err)
	}
	return provinces, nil
}

func buildProvince(id int, sys *tectonics.System, dims MapDimensions, noise NoiseSampler, seaLevel float64) Province {
	col, row := dims.ColRow(id)
	x, y := dims.HexPosition(col, row)
	pos := geom.V(x, y)

	plateID := -1
	elev := noise.Elevation(pos)
	if plate := sys.PlateAt(pos); plate != nil {
		plateID = plate.ID
		elev = applyPlate(elev, plate, pos)
	}
	elev = applyBoundary(elev, sys, pos)
	elev = applyVolcanism(elev, sys.VolcanicInfluence(pos))
	elev = geom.Clamp01(elev)

	terrain := ClassifyTerrain(elev, x, y, dims.HeightPixels, seaLevel)

	return Province{
		ID:                 id,
		Position:           pos,
		Col:                col,
		Row:                row,
		Elevation:          elev,
		Terrain:            terrain,
		Plate:              plateID,
		Population:         InitialPopulation(terrain, elev),
		Agriculture:        fertility(terrain),
		Owner:              -1,
		Neighbors:          dims.NeighborIndices(col, row),
		FreshWaterDistance: NoFreshWater,
	}
}

// applyPlate blends the plate's crust type into the noise elevation.
func applyPlate(elev float64, plate *tectonics.Plate, pos geom.Vec2) float64 {
	var influence float64
	if plate.IsContinental {
		influence = 0.3 + geom.Clamp(plate.ElevationBoost/1000, 0, 0.5)
	} else {
		influence = -0.2 + geom.Clamp(plate.ElevationBoost/5000, -0.3, 0)
	}
	elev = elev*0.7 + influence*0.3

	if plate.HasAncientCore {
		elev += ancientCoreBonus * geom.LinearFalloff(pos.Dist(plate.Center), ancientCoreRadius)
	}
	return elev
}

// applyBoundary applies the nearest boundary's effect with quadratic falloff.
func applyBoundary(elev float64, sys *tectonics.System, pos geom.Vec2) float64 {
	dist, b := sys.NearestBoundary(pos)
	if b == nil {
		return elev
	}

	switch b.Kind {
	case tectonics.Convergent:
		if f := geom.QuadraticFalloff(dist, ConvergentThreshold); f > 0 {
			target := math.Max(elev, 0.5) + geom.Clamp(b.MountainHeight/10000, 0, 0.5)
			elev += (target - elev) * f
		}
	case tectonics.Divergent:
		if f := geom.QuadraticFalloff(dist, DivergentThreshold); f > 0 {
			elev -= geom.Clamp(math.Abs(b.RiftDepth)/10000, 0, 0.4) * f
		}
	case tectonics.Transform:
		if dist < TransformThreshold {
			elev *= 0.95
		}
	}
	return elev
}

func applyVolcanism(elev, influence float64) float64 {
	if influence <= 0 {
		return elev
	}
	return elev + math.Max(influence, 0.1)*0.8
}

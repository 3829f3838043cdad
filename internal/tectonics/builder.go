package tectonics

import (
	"math"
	"math/rand"

	"github.com/talgya/hexforge/internal/geom"
)

// BuildConfig sizes a generated plate layout.
type BuildConfig struct {
	Width         float64 // Map width in pixels; the map is centered on the origin
	Height        float64 // Map height in pixels
	Plates        int     // Approximate plate count (rounded up to fill a lattice)
	LandFraction  float64 // Chance that a plate is continental
	Hotspots      int     // Hotspot count; negative means one per four plates
	Seed          int64
	JitterPercent float64 // Interior lattice jitter as a fraction of cell size (0–0.45)
}

// Build lays plates out on a jittered lattice so neighbouring plates share
// exact edges, then classifies each shared edge by crust type:
// continental pairs converge into high ranges, oceanic pairs diverge, and
// mixed pairs converge into lower coastal ranges. It stands in for a real
// plate simulation and is deterministic in cfg.
func Build(cfg BuildConfig) *System {
	rng := rand.New(rand.NewSource(cfg.Seed))

	n := max(cfg.Plates, 1)
	aspect := 1.0
	if cfg.Height > 0 {
		aspect = cfg.Width / cfg.Height
	}
	cols := max(int(math.Ceil(math.Sqrt(float64(n)*aspect))), 1)
	rows := max((n+cols-1)/cols, 1)

	cellW := cfg.Width / float64(cols)
	cellH := cfg.Height / float64(rows)
	jitter := geom.Clamp(cfg.JitterPercent, 0, 0.45)

	// Lattice corners; only interior corners move so the hull stays the map rectangle.
	corners := make([][]geom.Vec2, cols+1)
	for c := 0; c <= cols; c++ {
		corners[c] = make([]geom.Vec2, rows+1)
		for r := 0; r <= rows; r++ {
			x := -cfg.Width/2 + float64(c)*cellW
			y := -cfg.Height/2 + float64(r)*cellH
			if c > 0 && c < cols && r > 0 && r < rows {
				x += (rng.Float64()*2 - 1) * jitter * cellW
				y += (rng.Float64()*2 - 1) * jitter * cellH
			}
			corners[c][r] = geom.V(x, y)
		}
	}

	sys := &System{}
	plateIndex := func(c, r int) int { return r*cols + c }

	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			poly := []geom.Vec2{corners[c][r], corners[c+1][r], corners[c+1][r+1], corners[c][r+1]}
			p := Plate{
				ID:            plateIndex(c, r),
				Polygon:       poly,
				Center:        geom.Centroid(poly),
				Area:          geom.PolygonArea(poly),
				IsContinental: rng.Float64() < cfg.LandFraction,
			}
			if p.IsContinental {
				p.ElevationBoost = 200 + rng.Float64()*600
				p.HasAncientCore = rng.Float64() < 0.3
			} else {
				p.ElevationBoost = -4000 + rng.Float64()*2000
			}
			sys.Plates = append(sys.Plates, p)
		}
	}

	// Shared edges: right neighbour and lower neighbour of every cell.
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			if c+1 < cols {
				sys.Boundaries = append(sys.Boundaries,
					newBoundary(sys.Plates, plateIndex(c, r), plateIndex(c+1, r), corners[c+1][r], corners[c+1][r+1]))
			}
			if r+1 < rows {
				sys.Boundaries = append(sys.Boundaries,
					newBoundary(sys.Plates, plateIndex(c, r), plateIndex(c, r+1), corners[c][r+1], corners[c+1][r+1]))
			}
		}
	}

	hotspots := cfg.Hotspots
	if hotspots < 0 {
		hotspots = max(n/4, 1)
	}
	for i := 0; i < hotspots; i++ {
		sys.Hotspots = append(sys.Hotspots, newHotspot(rng, cfg.Width, cfg.Height))
	}

	return sys
}

func newBoundary(plates []Plate, a, b int, start, end geom.Vec2) Boundary {
	dir := end.Sub(start)
	bd := Boundary{
		PlateA: a,
		PlateB: b,
		Segments: []Segment{{
			Start:  start,
			End:    end,
			Normal: geom.V(-dir.Y, dir.X).Normalize(),
		}},
		Length: dir.Len(),
	}

	switch ca, cb := plates[a].IsContinental, plates[b].IsContinental; {
	case ca && cb:
		bd.Kind = Convergent
		bd.MountainHeight = 8000
	case !ca && !cb:
		bd.Kind = Divergent
		bd.RiftDepth = -2500
	default:
		bd.Kind = Convergent
		bd.MountainHeight = 4000
	}
	return bd
}

func newHotspot(rng *rand.Rand, width, height float64) Hotspot {
	h := Hotspot{
		Position:  geom.V((rng.Float64()-0.5)*width*0.8, (rng.Float64()-0.5)*height*0.8),
		Intensity: 0.5 + rng.Float64()*0.5,
		Radius:    50 + rng.Float64()*150,
	}

	// Plate motion drags the chain away from the plume; only the newest vent is live.
	angle := rng.Float64() * 2 * math.Pi
	step := geom.V(math.Cos(angle), math.Sin(angle)).Scale(ChainVolcanoRadius)
	chainLen := 3 + rng.Intn(6)
	for i := 0; i < chainLen; i++ {
		h.Chain = append(h.Chain, Volcano{
			Position:  h.Position.Add(step.Scale(float64(i))),
			Elevation: 1000 + rng.Float64()*3000,
			Active:    i == 0,
		})
	}
	return h
}

package worldgen

import (
	"sync"

	"github.com/talgya/hexforge/internal/diagnostics"
)

// Milestone is a fixed point in the pipeline's progress.
type Milestone struct {
	Fraction float64
	Step     string
}

// Pipeline milestones in send order.
var (
	MilestoneStart     = Milestone{0.00, "Starting world generation..."}
	MilestoneTectonics = Milestone{0.05, "Simulating tectonic plates..."}
	MilestoneProvinces = Milestone{0.10, "Generating provinces..."}
	MilestoneErosion   = Milestone{0.25, "Eroding coastlines..."}
	MilestoneClimate   = Milestone{0.40, "Calculating climate zones..."}
	MilestoneRivers    = Milestone{0.50, "Carving rivers..."}
	MilestoneCultures  = Milestone{0.60, "Settling cultures..."}
	MilestoneNations   = Milestone{0.70, "Founding nations..."}
	MilestoneEntities  = Milestone{0.85, "Preparing world entities..."}
	MilestoneOverlays  = Milestone{0.95, "Finishing overlays..."}
	MilestoneComplete  = Milestone{1.00, "World generation complete!"}
)

// Progress is one message from the generation task. Exactly one message
// per run is terminal: Completed with World set, or Err set.
type Progress struct {
	Step      string                         `json:"step"`
	Fraction  float64                        `json:"fraction"`
	Completed bool                           `json:"completed"`
	World     *GeneratedWorld                `json:"-"`
	Err       string                         `json:"error,omitempty"`
	Metrics   *diagnostics.GenerationMetrics `json:"metrics,omitempty"`
}

// Terminal reports whether p ends the run.
func (p Progress) Terminal() bool {
	return p.Completed || p.Err != ""
}

func progressAt(m Milestone) Progress {
	return Progress{Step: m.Step, Fraction: m.Fraction}
}

// progressQueue is an unbounded multi-producer queue. Senders never block;
// the receiver drains everything queued so far in one call.
type progressQueue struct {
	mu     sync.Mutex
	items  []Progress
	closed bool
}

// send appends p. Messages sent after close are dropped and send reports
// false.
func (q *progressQueue) send(p Progress) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return false
	}
	q.items = append(q.items, p)
	return true
}

// drain removes and returns every queued message in send order.
func (q *progressQueue) drain() []Progress {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.items
	q.items = nil
	return out
}

// close stops accepting messages and discards anything still queued.
func (q *progressQueue) close() {
	q.mu.Lock()
	q.closed = true
	q.items = nil
	q.mu.Unlock()
}

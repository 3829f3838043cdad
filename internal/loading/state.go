// Package loading holds the state a loading screen renders while a world is
// being generated.
package loading

import (
	"sync"

	"github.com/talgya/hexforge/internal/geom"
)

// Operation is what the loading screen is waiting on.
type Operation uint8

const (
	OpNone Operation = iota
	OpGeneratingWorld
	OpLoadingSave
)

func (o Operation) String() string {
	switch o {
	case OpGeneratingWorld:
		return "generating world"
	case OpLoadingSave:
		return "loading save"
	default:
		return "idle"
	}
}

// Details are operation-specific facts shown under the progress bar.
type Details struct {
	Seed      int64  `json:"seed,omitempty"`
	WorldSize string `json:"world_size,omitempty"`
	SaveName  string `json:"save_name,omitempty"`
}

// State is safe for concurrent use; the HTTP status endpoint reads it while
// the tick loop writes.
type State struct {
	mu        sync.RWMutex
	operation Operation
	progress  float64
	step      string
	details   Details
}

// Snapshot is a point-in-time copy of State.
type Snapshot struct {
	Operation string  `json:"operation"`
	Progress  float64 `json:"progress"`
	Step      string  `json:"step"`
	Details   Details `json:"details"`
}

// SetLoadingProgress records progress in [0, 1] and the current step label.
func SetLoadingProgress(s *State, fraction float64, label string) {
	s.mu.Lock()
	s.progress = geom.Clamp01(fraction)
	s.step = label
	s.mu.Unlock()
}

// StartWorldGeneration resets s for a new generation run.
func StartWorldGeneration(s *State, seed int64, size string) {
	s.mu.Lock()
	s.operation = OpGeneratingWorld
	s.progress = 0
	s.step = "Initializing world generation..."
	s.details = Details{Seed: seed, WorldSize: size}
	s.mu.Unlock()
}

// Finish marks the current operation done.
func Finish(s *State) {
	s.mu.Lock()
	s.operation = OpNone
	s.progress = 1
	s.mu.Unlock()
}

// Snapshot copies the current state.
func (s *State) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		Operation: s.operation.String(),
		Progress:  s.progress,
		Step:      s.step,
		Details:   s.details,
	}
}

// Progress is the current fraction.
func (s *State) Progress() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.progress
}

// Step is the current label.
func (s *State) Step() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.step
}

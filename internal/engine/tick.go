// Package engine provides the fixed-rate main loop that drives world
// generation polling and game state changes.
package engine

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

// TicksPerSecond is the main loop rate at speed 1.
const TicksPerSecond = 30

// Engine drives the main loop forward.
type Engine struct {
	Tick     uint64        // Current tick counter (monotonic, never resets)
	Speed    float64       // Multiplier: 1.0 = real-time, 0 = paused
	Interval time.Duration // Base tick interval
	States   *StateMachine

	// Callbacks, populated during setup.
	OnTick   func(tick uint64, now time.Time) // Every tick, after state changes apply
	OnSecond func(tick uint64)                // Every TicksPerSecond ticks

	Now func() time.Time

	running  atomic.Bool
	lastTick atomic.Uint64
}

// NewEngine creates an engine with default settings.
func NewEngine(states *StateMachine) *Engine {
	if states == nil {
		states = NewStateMachine(0)
	}
	return &Engine{
		Speed:    1.0,
		Interval: time.Second / TicksPerSecond,
		States:   states,
		Now:      time.Now,
	}
}

// Run steps the loop until ctx is done or Stop is called.
func (e *Engine) Run(ctx context.Context) {
	e.running.Store(true)
	slog.Info("engine started", "tick", e.Tick, "speed", e.Speed, "state", e.States.Current())

	for e.running.Load() {
		if e.Speed <= 0 {
			// Paused; check again shortly.
			if !sleep(ctx, 100*time.Millisecond) {
				break
			}
			continue
		}

		start := time.Now()
		e.Step()

		elapsed := time.Since(start)
		target := time.Duration(float64(e.Interval) / e.Speed)
		wait := time.Duration(0)
		if elapsed < target {
			wait = target - elapsed
		}
		if !sleep(ctx, wait) {
			break
		}
	}

	e.running.Store(false)
	slog.Info("engine stopped", "tick", e.Tick, "state", e.States.Current())
}

// Stop halts the loop after the current tick.
func (e *Engine) Stop() {
	e.running.Store(false)
}

// CurrentTick is Tick, safe to read from other goroutines.
func (e *Engine) CurrentTick() uint64 {
	return e.lastTick.Load()
}

// Running reports whether Run is looping.
func (e *Engine) Running() bool {
	return e.running.Load()
}

// Step advances the loop by one tick.
func (e *Engine) Step() {
	e.Tick++
	e.lastTick.Store(e.Tick)

	// State changes requested during the last tick take effect first.
	e.States.Apply()

	if e.OnTick != nil {
		e.OnTick(e.Tick, e.Now())
	}
	if e.Tick%TicksPerSecond == 0 && e.OnSecond != nil {
		e.OnSecond(e.Tick)
	}
}

// sleep waits for d and reports false if ctx ended first.
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

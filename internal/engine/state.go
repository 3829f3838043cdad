package engine

import (
	"log/slog"
	"sync"

	"github.com/talgya/hexforge/internal/worldgen"
)

// StateMachine holds the application state. Requests are queued and take
// effect at the start of the next tick; the last request in a tick wins.
type StateMachine struct {
	mu      sync.Mutex
	current worldgen.GameState
	next    *worldgen.GameState
	onEnter map[worldgen.GameState][]func(from worldgen.GameState)
}

// NewStateMachine starts in initial.
func NewStateMachine(initial worldgen.GameState) *StateMachine {
	return &StateMachine{
		current: initial,
		onEnter: make(map[worldgen.GameState][]func(worldgen.GameState)),
	}
}

// Request queues a change to s. It satisfies worldgen.StateRequester.
func (m *StateMachine) Request(s worldgen.GameState) {
	m.mu.Lock()
	m.next = &s
	m.mu.Unlock()
}

// OnEnter registers fn to run whenever s is entered.
func (m *StateMachine) OnEnter(s worldgen.GameState, fn func(from worldgen.GameState)) {
	m.mu.Lock()
	m.onEnter[s] = append(m.onEnter[s], fn)
	m.mu.Unlock()
}

// Current returns the active state.
func (m *StateMachine) Current() worldgen.GameState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// Apply performs the queued change, if any, and runs its enter hooks.
// Requesting the current state again is a no-op. It reports whether the
// state changed.
func (m *StateMachine) Apply() bool {
	m.mu.Lock()
	if m.next == nil || *m.next == m.current {
		m.next = nil
		m.mu.Unlock()
		return false
	}
	from := m.current
	m.current = *m.next
	m.next = nil
	hooks := append([]func(worldgen.GameState){}, m.onEnter[m.current]...)
	to := m.current
	m.mu.Unlock()

	slog.Info("state changed", "from", from, "to", to)
	for _, fn := range hooks {
		fn(from)
	}
	return true
}

package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/hexforge/internal/worldgen"
)

func TestStepCallbacks(t *testing.T) {
	e := NewEngine(nil)
	var ticks []uint64
	seconds := 0
	e.OnTick = func(tick uint64, _ time.Time) { ticks = append(ticks, tick) }
	e.OnSecond = func(uint64) { seconds++ }

	for i := 0; i < 2*TicksPerSecond; i++ {
		e.Step()
	}
	assert.Len(t, ticks, 2*TicksPerSecond)
	assert.Equal(t, uint64(1), ticks[0])
	assert.Equal(t, 2, seconds)
	assert.Equal(t, uint64(2*TicksPerSecond), e.CurrentTick())
}

func TestStateRequestsApplyNextTick(t *testing.T) {
	m := NewStateMachine(worldgen.GameMainMenu)
	e := NewEngine(m)

	var seen []worldgen.GameState
	e.OnTick = func(uint64, time.Time) { seen = append(seen, m.Current()) }

	m.Request(worldgen.GameWorldGeneration)
	assert.Equal(t, worldgen.GameMainMenu, m.Current())
	e.Step()
	m.Request(worldgen.GameInGame)
	e.Step()
	assert.Equal(t, []worldgen.GameState{worldgen.GameWorldGeneration, worldgen.GameInGame}, seen)
}

func TestOnEnter(t *testing.T) {
	m := NewStateMachine(worldgen.GameMainMenu)
	var from []worldgen.GameState
	m.OnEnter(worldgen.GameInGame, func(f worldgen.GameState) { from = append(from, f) })

	m.Request(worldgen.GameWorldGeneration)
	require.True(t, m.Apply())
	m.Request(worldgen.GameInGame)
	require.True(t, m.Apply())
	m.Request(worldgen.GameInGame)
	assert.False(t, m.Apply(), "re-entering the current state is a no-op")
	assert.False(t, m.Apply())

	assert.Equal(t, []worldgen.GameState{worldgen.GameWorldGeneration}, from)
}

func TestLastRequestWins(t *testing.T) {
	m := NewStateMachine(worldgen.GameMainMenu)
	m.Request(worldgen.GameInGame)
	m.Request(worldgen.GameWorldGenerationFailed)
	m.Apply()
	assert.Equal(t, worldgen.GameWorldGenerationFailed, m.Current())
}

func TestRunStopsOnContext(t *testing.T) {
	e := NewEngine(nil)
	e.Interval = time.Millisecond
	ctx, cancel := context.WithCancel(context.Background())
	e.OnTick = func(tick uint64, _ time.Time) {
		if tick == 5 {
			cancel()
		}
	}
	e.Run(ctx)
	assert.Equal(t, uint64(5), e.Tick)
	assert.False(t, e.Running())
}

func TestRunStops(t *testing.T) {
	e := NewEngine(nil)
	e.Interval = time.Millisecond
	e.OnTick = func(tick uint64, _ time.Time) {
		if tick == 3 {
			e.Stop()
		}
	}
	e.Run(context.Background())
	assert.Equal(t, uint64(3), e.Tick)
}

package worldgen

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/talgya/hexforge/internal/diagnostics"
	"github.com/talgya/hexforge/internal/ecs"
	"github.com/talgya/hexforge/internal/entropy"
	"github.com/talgya/hexforge/internal/loading"
	"github.com/talgya/hexforge/internal/mesh"
)

// DefaultTransitionDelay is how long a finished world stays on the loading
// screen before the game state changes.
const DefaultTransitionDelay = time.Second

const terminatedMessage = "world generation task terminated unexpectedly without completion message"

// ErrAlreadyRunning is returned by Start while a run is in flight.
var ErrAlreadyRunning = errors.New("world generation already running")

// State is where the orchestrator is in a run.
type State uint8

const (
	StateIdle State = iota
	StateRequested
	StateRunning
	StateComplete
	StateFailed
	StateTerminated // Task ended without a terminal message
	StateCancelled
)

var stateNames = [...]string{"idle", "requested", "running", "complete", "failed", "terminated", "cancelled"}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("State(%d)", s)
}

// Done reports whether s ends a run.
func (s State) Done() bool {
	return s >= StateComplete
}

// GameState is an application state the orchestrator can ask for.
type GameState uint8

const (
	GameMainMenu GameState = iota
	GameWorldGeneration
	GameInGame
	GameWorldGenerationFailed
)

func (g GameState) String() string {
	switch g {
	case GameWorldGeneration:
		return "WorldGeneration"
	case GameInGame:
		return "InGame"
	case GameWorldGenerationFailed:
		return "WorldGenerationFailed"
	default:
		return "MainMenu"
	}
}

// StateRequester asks the application to move to another state.
type StateRequester func(GameState)

// DiagnosticsSink persists failure reports.
type DiagnosticsSink interface {
	Save(*diagnostics.ErrorContext) error
}

// Config wires an Orchestrator to the rest of the application. Every field
// is optional.
type Config struct {
	Loading         *loading.State
	Sink            DiagnosticsSink
	RequestState    StateRequester
	Mesh            MeshBuilder
	Entropy         *entropy.Client
	TransitionDelay time.Duration
	Generator       Generator
	OnComplete      func(*GeneratedWorld)
}

// Orchestrator runs world generation in the background and applies its
// result to an ECS World from the main loop.
//
// Start launches the pipeline. Poll, called once per tick, drains progress
// without blocking and, when the terminal message arrives, materialises the
// world or records the failure.
type Orchestrator struct {
	cfg Config

	mu              sync.Mutex
	state           State
	settings        Settings
	queue           *progressQueue
	finished        *atomic.Bool
	group           *errgroup.Group
	cancel          context.CancelFunc
	cancelRequested bool

	world        *GeneratedWorld
	lastErr      *diagnostics.ErrorContext
	completedAt  time.Time
	transitioned bool
}

// New returns an idle Orchestrator.
func New(cfg Config) *Orchestrator {
	if cfg.Loading == nil {
		cfg.Loading = &loading.State{}
	}
	if cfg.TransitionDelay == 0 {
		cfg.TransitionDelay = DefaultTransitionDelay
	}
	if cfg.Generator == nil {
		cfg.Generator = Generate
	}
	if cfg.Mesh == nil {
		cfg.Mesh = MeshBuilderFunc(mesh.Build)
	}
	return &Orchestrator{cfg: cfg}
}

// Start begins a run with s. A zero seed is replaced by a fresh one before
// anything else sees it. Settings are validated by the pipeline, so invalid
// settings surface as a failed run.
func (o *Orchestrator) Start(ctx context.Context, s Settings) error {
	o.mu.Lock()
	if o.state == StateRequested || o.state == StateRunning {
		o.mu.Unlock()
		return ErrAlreadyRunning
	}
	o.state = StateRequested
	o.world = nil
	o.lastErr = nil
	o.transitioned = false
	o.cancelRequested = false
	o.mu.Unlock()

	s.Seed = entropy.Resolve(ctx, s.Seed, o.cfg.Entropy)
	loading.StartWorldGeneration(o.cfg.Loading, s.Seed, s.SizeLabel())
	o.request(GameWorldGeneration)

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	q := &progressQueue{}
	finished := &atomic.Bool{}
	g := &errgroup.Group{}
	gen := o.cfg.Generator

	o.mu.Lock()
	o.settings = s
	o.queue = q
	o.finished = finished
	o.group = g
	o.cancel = cancel
	o.state = StateRunning
	o.mu.Unlock()

	slog.Info("world generation requested", "name", s.Name, "seed", s.Seed, "size", s.SizeLabel())
	g.Go(func() error {
		defer finished.Store(true)
		runTask(runCtx, gen, s, q)
		return nil
	})
	return nil
}

// runTask runs gen and sends exactly one terminal message, unless gen
// returns neither a world nor an error.
func runTask(ctx context.Context, gen Generator, s Settings, q *progressQueue) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("world generation panicked", "panic", r)
			q.send(Progress{Step: "World generation failed", Err: fmt.Sprintf("world generation panicked: %v", r)})
		}
	}()

	gw, err := gen(ctx, s, func(p Progress) {
		if !p.Terminal() {
			q.send(p)
		}
	})
	if err != nil {
		msg := Progress{Step: "World generation failed", Err: err.Error()}
		var ge *GenerationError
		if errors.As(err, &ge) {
			msg.Metrics = ge.Metrics
		}
		q.send(msg)
		return
	}
	if gw == nil {
		return
	}
	q.send(Progress{
		Step:      MilestoneEntities.Step,
		Fraction:  MilestoneEntities.Fraction,
		Completed: true,
		World:     gw,
	})
}

// Poll drains pending progress and handles the terminal message if it has
// arrived. It returns the messages it consumed. Once a run has ended Poll
// only watches the transition delay and returns nil.
func (o *Orchestrator) Poll(w *ecs.World, now time.Time) []Progress {
	o.mu.Lock()
	msgs, requests, completed := o.poll(w, now)
	o.mu.Unlock()

	if completed != nil && o.cfg.OnComplete != nil {
		o.cfg.OnComplete(completed)
	}
	for _, r := range requests {
		o.request(r)
	}
	return msgs
}

func (o *Orchestrator) poll(w *ecs.World, now time.Time) ([]Progress, []GameState, *GeneratedWorld) {
	switch o.state {
	case StateComplete:
		if !o.transitioned && now.Sub(o.completedAt) >= o.cfg.TransitionDelay {
			o.transitioned = true
			loading.Finish(o.cfg.Loading)
			slog.Info("entering game", "world", o.settings.Name)
			return nil, []GameState{GameInGame}, nil
		}
		return nil, nil, nil
	case StateRunning:
	default:
		return nil, nil, nil
	}

	// Read the flag before draining: a task that finished before this point
	// has already queued its terminal message, if it sent one.
	finished := o.finished.Load()
	msgs := o.queue.drain()
	for i, m := range msgs {
		if !m.Terminal() {
			loading.SetLoadingProgress(o.cfg.Loading, m.Fraction, m.Step)
			continue
		}
		o.queue.close()
		handled := msgs[:i+1]
		if m.Err != "" {
			return handled, o.handleError(m), nil
		}
		if gw := o.handleComplete(w, m.World, now); gw != nil {
			return handled, nil, gw
		}
		return handled, []GameState{GameWorldGenerationFailed}, nil
	}

	if finished {
		o.queue.close()
		slog.Error(terminatedMessage)
		return msgs, o.fail(StateTerminated, terminatedMessage, nil), nil
	}
	return msgs, nil, nil
}

func (o *Orchestrator) handleError(m Progress) []GameState {
	if o.cancelRequested {
		o.state = StateCancelled
		loading.Finish(o.cfg.Loading)
		slog.Info("world generation cancelled", "world", o.settings.Name)
		return []GameState{GameMainMenu}
	}
	slog.Error("world generation failed", "err", m.Err)
	return o.fail(StateFailed, m.Err, m.Metrics)
}

// handleComplete materialises gw into w. It returns nil and records a
// failure if that goes wrong.
func (o *Orchestrator) handleComplete(w *ecs.World, gw *GeneratedWorld, now time.Time) *GeneratedWorld {
	if gw == nil {
		o.fail(StateFailed, "world generation completed without a world", nil)
		return nil
	}
	loading.SetLoadingProgress(o.cfg.Loading, MilestoneEntities.Fraction, MilestoneEntities.Step)
	n := len(phases)
	err := materialize(context.Background(), w, gw, o.cfg.Mesh, func(i int, name string) {
		f := MilestoneEntities.Fraction + (MilestoneOverlays.Fraction-MilestoneEntities.Fraction)*float64(i)/float64(n)
		loading.SetLoadingProgress(o.cfg.Loading, f, MilestoneEntities.Step)
	})
	if err != nil {
		msg := fmt.Sprintf("failed to materialize world: %v", err)
		slog.Error(msg)
		o.fail(StateFailed, msg, diagnostics.CollectMetrics(gw.Provinces, gw.SeaLevel, gw.Elapsed, diagnostics.RunSettings{
			WorldSize:     gw.Settings.SizeLabel(),
			Continents:    gw.Settings.Continents,
			OceanCoverage: gw.Settings.OceanCoverage,
			RiverDensity:  gw.Settings.RiverDensity,
		}))
		return nil
	}

	loading.SetLoadingProgress(o.cfg.Loading, MilestoneComplete.Fraction, MilestoneComplete.Step)
	o.state = StateComplete
	o.world = gw
	o.completedAt = now
	slog.Info("world ready", "world", gw.Settings.Name, "entities", w.Len(), "elapsed", gw.Elapsed.Round(time.Millisecond))
	return gw
}

// fail moves to state, records a failure report and returns the game state
// to request. metrics may be nil.
func (o *Orchestrator) fail(state State, msg string, metrics *diagnostics.GenerationMetrics) []GameState {
	ec := diagnostics.FromGenerationError(msg, metrics, GameWorldGeneration.String())
	o.state = state
	o.lastErr = ec
	if o.cfg.Sink != nil {
		if err := o.cfg.Sink.Save(ec); err != nil {
			slog.Error("failed to save error context", "id", ec.ID, "err", err)
		}
	}
	return []GameState{GameWorldGenerationFailed}
}

// Cancel asks a running pipeline to stop. The run ends as Cancelled once
// the pipeline notices. It reports whether a run was in flight.
func (o *Orchestrator) Cancel() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state != StateRunning || o.cancel == nil {
		return false
	}
	o.cancelRequested = true
	o.cancel()
	slog.Info("world generation cancel requested", "world", o.settings.Name)
	return true
}

// Wait blocks until the background task has returned.
func (o *Orchestrator) Wait() error {
	o.mu.Lock()
	g := o.group
	o.mu.Unlock()
	if g == nil {
		return nil
	}
	return g.Wait()
}

// State returns the current run state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// World returns the last completed world, or nil.
func (o *Orchestrator) World() *GeneratedWorld {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.world
}

// Settings returns the settings of the current or last run, with the seed
// resolved.
func (o *Orchestrator) Settings() Settings {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.settings
}

// LastError returns the failure report of the last run, or nil.
func (o *Orchestrator) LastError() *diagnostics.ErrorContext {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.lastErr
}

// Loading returns the loading state Poll writes to.
func (o *Orchestrator) Loading() *loading.State {
	return o.cfg.Loading
}

func (o *Orchestrator) request(g GameState) {
	if o.cfg.RequestState != nil {
		o.cfg.RequestState(g)
	}
}

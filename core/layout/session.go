// Package layout orchestrates one end-to-end layout run: it seeds initial
// positions, drives integrator ticks on a fixed cadence, refreshes cluster
// assignments, and exposes immutable snapshots to the rendering layer.
package layout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/adalundhe/mindmesh/core/cluster"
	"github.com/adalundhe/mindmesh/core/graph"
	"github.com/adalundhe/mindmesh/core/physics"
)

var (
	// ErrAlreadyStarted indicates Start was called twice on one session.
	ErrAlreadyStarted = errors.New("session already started")

	// ErrNotStarted indicates Wait was called before Start.
	ErrNotStarted = errors.New("session not started")
)

// goldenAngle spaces seed positions around the spiral so no two nodes
// start collinear with the origin.
const goldenAngle = 2.399963229728653

// Config holds the session cadence and seeding parameters.
type Config struct {
	// TickInterval is the wall-clock cadence between ticks. Simulated time
	// always advances by physics.TimeStep per tick regardless.
	TickInterval time.Duration `yaml:"tick_interval"`

	// ClusterEvery is the number of ticks between progressive cluster
	// refreshes during long runs. A final pass always runs on settling.
	ClusterEvery int `yaml:"cluster_every"`

	// HistorySize bounds the retained snapshot history.
	HistorySize int `yaml:"history_size"`

	// SeedRadius bounds the region initial positions are scattered in.
	SeedRadius float64 `yaml:"seed_radius"`

	// Inherit keeps positions from a previous run for layout stability
	// across small graph edits; only nodes still at the origin are seeded.
	Inherit bool `yaml:"inherit"`
}

// DefaultConfig returns the session defaults.
func DefaultConfig() Config {
	return Config{
		TickInterval: time.Second / 60,
		ClusterEvery: 120,
		HistorySize:  16,
		SeedRadius:   300,
	}
}

// Options bundles the collaborator configuration for NewSession.
// Zero values fall back to defaults.
type Options struct {
	Tuning  physics.Tuning
	Cluster cluster.Config
	Config  Config
	Logger  *slog.Logger
}

// Session drives one layout run over a store. A session is single-use:
// once it reaches a terminal state it never ticks again, and a fresh run
// over the same store needs a fresh session.
//
// Concurrency: all ticking happens on one goroutine owned by the session,
// so the integrator never runs in parallel with itself. Multiple sessions
// may run concurrently as long as each owns its store.
type Session struct {
	id        string
	store     *graph.Store
	integr    *physics.Integrator
	detector  *cluster.Detector
	config    Config
	logger    *slog.Logger
	history   *lru.Cache[int, Snapshot]

	mu         sync.Mutex
	started    bool
	cancel     context.CancelFunc
	cancelOnce sync.Once
	done       chan struct{}
}

// NewSession creates a session over the store. Tuning and thresholds are
// validated up front so a malformed configuration fails here rather than
// mid-run.
func NewSession(store *graph.Store, opts Options) (*Session, error) {
	if opts.Tuning == (physics.Tuning{}) {
		opts.Tuning = physics.DefaultTuning()
	}
	if err := opts.Tuning.Validate(); err != nil {
		return nil, fmt.Errorf("new session: %w", err)
	}
	if opts.Cluster == (cluster.Config{}) {
		opts.Cluster = cluster.DefaultConfig()
	}
	if err := opts.Cluster.Validate(); err != nil {
		return nil, fmt.Errorf("new session: %w", err)
	}
	cfg := opts.Config
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = DefaultConfig().TickInterval
	}
	if cfg.ClusterEvery <= 0 {
		cfg.ClusterEvery = DefaultConfig().ClusterEvery
	}
	if cfg.HistorySize <= 0 {
		cfg.HistorySize = DefaultConfig().HistorySize
	}
	if cfg.SeedRadius <= 0 {
		cfg.SeedRadius = DefaultConfig().SeedRadius
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	history, err := lru.New[int, Snapshot](cfg.HistorySize)
	if err != nil {
		return nil, fmt.Errorf("new session: history: %w", err)
	}

	return &Session{
		id:       uuid.New().String(),
		store:    store,
		integr:   physics.NewIntegrator(store, opts.Tuning, logger),
		detector: cluster.NewDetector(opts.Cluster, logger),
		config:   cfg,
		logger:   logger,
		history:  history,
		done:     make(chan struct{}),
	}, nil
}

// ID returns the session identity.
func (s *Session) ID() string {
	return s.id
}

// Start seeds initial positions and begins ticking on a dedicated
// goroutine. The run stops when the integrator reaches a terminal state,
// the context is cancelled, or Cancel is called.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return ErrAlreadyStarted
	}
	s.started = true

	s.seed()

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	go s.run(runCtx)

	s.logger.Debug("layout session started",
		"session", s.id,
		"nodes", s.store.NodeCount(),
		"connections", s.store.ConnectionCount())
	return nil
}

// seed scatters nodes on a golden-angle spiral within the seed radius.
// Node order is sorted by ID, so seeding is deterministic. With Inherit
// set, nodes carrying a position from a previous run keep it.
func (s *Session) seed() {
	nodes := s.store.Nodes()
	total := len(nodes)
	for i, n := range nodes {
		if s.config.Inherit && (n.Pos != r2.Vec{}) {
			continue
		}
		radius := s.config.SeedRadius * math.Sqrt(float64(i+1)/float64(total))
		angle := goldenAngle * float64(i)
		s.store.SetPosition(n.ID, r2.Vec{
			X: radius * math.Cos(angle),
			Y: radius * math.Sin(angle),
		})
	}
}

// run is the tick loop. It owns all simulation progress for the session.
func (s *Session) run(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(s.config.TickInterval)
	defer ticker.Stop()

	lastClusterGen := s.store.Generation()
	for {
		select {
		case <-ctx.Done():
			s.integr.Cancel()
			return
		case <-ticker.C:
			state := s.integr.Step()
			iteration := s.integr.Iterations()

			if state == physics.StateCancelled {
				return
			}
			if state.IsSettled() {
				s.detector.Detect(s.store)
				s.recordSnapshot(iteration)
				s.logger.Debug("layout session settled",
					"session", s.id,
					"state", state.String(),
					"iterations", iteration)
				return
			}

			// Progressive refresh: on cadence, or when topology changed
			// under the running simulation.
			gen := s.store.Generation()
			if iteration%s.config.ClusterEvery == 0 || gen != lastClusterGen {
				s.detector.Detect(s.store)
				lastClusterGen = gen
			}
			s.recordSnapshot(iteration)
		}
	}
}

// Cancel halts ticking. Safe to call from any state and idempotent. After
// the in-flight tick (if any) completes, no further ticks execute.
func (s *Session) Cancel() {
	s.cancelOnce.Do(func() {
		s.integr.Cancel()
		s.mu.Lock()
		cancel := s.cancel
		s.mu.Unlock()
		if cancel != nil {
			cancel()
		}
	})
}

// Wait blocks until the session reaches a terminal state or the context
// expires.
func (s *Session) Wait(ctx context.Context) (physics.State, error) {
	s.mu.Lock()
	started := s.started
	s.mu.Unlock()
	if !started {
		return s.integr.State(), ErrNotStarted
	}

	select {
	case <-s.done:
		return s.integr.State(), nil
	case <-ctx.Done():
		return s.integr.State(), ctx.Err()
	}
}

// State returns the integrator state for progress reporting.
func (s *Session) State() physics.State {
	return s.integr.State()
}

// Iterations returns the tick count so far.
func (s *Session) Iterations() int {
	return s.integr.Iterations()
}

// IsSettled returns true once the run converged or hit the iteration cap.
func (s *Session) IsSettled() bool {
	return s.integr.State().IsSettled()
}

// Snapshot returns an immutable copy of the current node positions,
// connections, and clusters. The copy is taken under one store lock, so
// it always reflects a fully applied tick.
func (s *Session) Snapshot() Snapshot {
	return newSnapshot(s.store.Snapshot(), s.integr.State(), s.integr.Iterations())
}

// History returns the retained snapshot for a given iteration, if still
// cached.
func (s *Session) History(iteration int) (Snapshot, bool) {
	return s.history.Get(iteration)
}

func (s *Session) recordSnapshot(iteration int) {
	s.history.Add(iteration, s.Snapshot())
}

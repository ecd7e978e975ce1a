package turing

import (
	"context"
	_ "embed"
	"log/slog"
	"sync"

	"github.com/aretw0/turing/internal/runtime"
	"github.com/aretw0/turing/pkg/domain"
)

// Version is the release of the module, taken from the VERSION file.
//
//go:embed VERSION
var Version string

// Blank re-exports the reserved blank symbol.
const Blank = domain.Blank

// Direction constants, re-exported for table literals.
const (
	L = domain.Left
	R = domain.Right
)

// Machine is the high-level entry point for the library.
// It wraps the internal runtime engine and keeps the final configuration of
// the most recent Run for inspection.
//
// A Machine is safe for concurrent use: every Run owns a fresh execution
// context, so Reset is never required for correctness.
type Machine[S comparable] struct {
	engine *runtime.Engine[S]

	mu   sync.Mutex
	last *domain.Configuration[S]
}

// Option defines a functional option for configuring the Machine.
type Option func(*options)

type options struct {
	name   string
	logger *slog.Logger
	hooks  domain.LifecycleHooks
}

// WithName labels the machine in logs and lifecycle events.
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

// WithLogger sets a custom structured logger for the machine.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(o *options) {
		o.hooks = o.hooks.Merge(hooks)
	}
}

// New constructs a machine.
//
// It fails only if initial is not a member of states. Accept and reject
// designations and the transition table are checked lazily, as a run reaches
// them, so partial tables can be exercised on the inputs they cover.
func New[S comparable](states []S, initial S, accept, reject []S, transition domain.Table[S], opts ...Option) (*Machine[S], error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	engine, err := runtime.NewEngine(states, initial, accept, reject, transition,
		runtime.WithName(o.name),
		runtime.WithLogger(o.logger),
		runtime.WithLifecycleHooks(o.hooks),
	)
	if err != nil {
		return nil, err
	}
	return &Machine[S]{engine: engine}, nil
}

// Run executes the machine on input and reports whether it halted in an
// accepting state. Input may be given with or without its boundary blanks.
//
// Run returns an error matching domain.ErrUnknownState,
// domain.ErrUnknownSymbol or domain.ErrBadSymbol when the table does not
// cover a reached configuration. It never returns if the machine loops; use
// pkg/runner for bounded execution.
func (m *Machine[S]) Run(input string) (bool, error) {
	accepted, cfg, err := m.engine.Run(context.Background(), input)

	m.mu.Lock()
	m.last = cfg
	m.mu.Unlock()

	return accepted, err
}

// Reset discards the configuration retained from the last Run.
// Runs never depend on it, so Reset is safe at any time, including before
// the first run.
func (m *Machine[S]) Reset() {
	m.mu.Lock()
	m.last = nil
	m.mu.Unlock()
}

// Last returns a copy of the final configuration of the most recent Run,
// or nil if there was none since construction or the last Reset.
func (m *Machine[S]) Last() *domain.Configuration[S] {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.last.Clone()
}

// Start creates a fresh execution context for single-stepping.
func (m *Machine[S]) Start(ctx context.Context, input string) *domain.Configuration[S] {
	return m.engine.Start(ctx, input)
}

// Step advances cfg by exactly one transition. See runtime.Engine.Step.
func (m *Machine[S]) Step(ctx context.Context, cfg *domain.Configuration[S]) (domain.Status, error) {
	return m.engine.Step(ctx, cfg)
}

// Name returns the label given with WithName.
func (m *Machine[S]) Name() string {
	return m.engine.Name()
}

// Initial returns the initial state.
func (m *Machine[S]) Initial() S {
	return m.engine.Initial()
}

// States returns the declared states in no particular order.
func (m *Machine[S]) States() []S {
	return m.engine.States()
}

// AcceptStates returns the accepting states in no particular order.
func (m *Machine[S]) AcceptStates() []S {
	return m.engine.AcceptStates()
}

// RejectStates returns the rejecting states in no particular order.
func (m *Machine[S]) RejectStates() []S {
	return m.engine.RejectStates()
}

// Table returns a copy of the transition table.
func (m *Machine[S]) Table() domain.Table[S] {
	return m.engine.Table()
}

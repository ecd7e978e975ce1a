package runtime

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/aretw0/turing/pkg/domain"
)

// Engine is the core step loop of a single-tape deterministic Turing machine.
// The definition (state sets and transition table) is immutable after
// construction and safe to share between concurrent runs; every run owns
// its own Configuration.
type Engine[S comparable] struct {
	states  map[S]struct{}
	initial S
	accept  map[S]struct{}
	reject  map[S]struct{}
	table   domain.Table[S]

	name   string
	logger *slog.Logger
	hooks  domain.LifecycleHooks
}

// EngineOption configures the Engine.
type EngineOption func(*engineConfig)

type engineConfig struct {
	name   string
	logger *slog.Logger
	hooks  domain.LifecycleHooks
}

// WithName labels events and log lines with the machine name.
func WithName(name string) EngineOption {
	return func(c *engineConfig) {
		c.name = name
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(c *engineConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) EngineOption {
	return func(c *engineConfig) {
		c.hooks = c.hooks.Merge(hooks)
	}
}

// NewEngine builds an engine from a machine definition.
// The only check performed is that initial is a member of states; the
// transition table is validated lazily, entry by entry, as a run reaches it.
func NewEngine[S comparable](states []S, initial S, accept, reject []S, table domain.Table[S], opts ...EngineOption) (*Engine[S], error) {
	cfg := engineConfig{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	e := &Engine[S]{
		states:  toSet(states),
		initial: initial,
		accept:  toSet(accept),
		reject:  toSet(reject),
		table:   table.Clone(),
		name:    cfg.name,
		logger:  cfg.logger,
		hooks:   cfg.hooks,
	}
	if e.name != "" {
		e.logger = e.logger.With("machine", e.name)
	}

	if _, ok := e.states[initial]; !ok {
		return nil, &domain.InitialStateError{State: initial}
	}
	return e, nil
}

func toSet[S comparable](items []S) map[S]struct{} {
	set := make(map[S]struct{}, len(items))
	for _, it := range items {
		set[it] = struct{}{}
	}
	return set
}

// Start creates a fresh execution context for input.
func (e *Engine[S]) Start(ctx context.Context, input string) *domain.Configuration[S] {
	cfg := domain.NewConfiguration(input, e.initial)
	if e.hooks.OnStart != nil {
		e.hooks.OnStart(ctx, &domain.EventBase{
			Timestamp: time.Now(),
			Type:      domain.EventStart,
			Machine:   e.name,
		})
	}
	return cfg
}

// Step performs exactly one iteration of the loop on cfg:
// grow the tape if the head is out of bounds, check for halting, look up
// and validate the transition, then apply it.
//
// On StatusAccepted and StatusRejected cfg is left untouched apart from
// growth. On error the status is StatusFailed and cfg is not modified
// beyond growth. The context only carries hook metadata; Step never blocks.
func (e *Engine[S]) Step(ctx context.Context, cfg *domain.Configuration[S]) (domain.Status, error) {
	grown := cfg.Grow()

	if _, ok := e.accept[cfg.State]; ok {
		return e.halt(ctx, cfg, domain.StatusAccepted, nil)
	}
	if _, ok := e.reject[cfg.State]; ok {
		return e.halt(ctx, cfg, domain.StatusRejected, nil)
	}

	read := cfg.Symbol()
	act, err := e.table.Lookup(cfg.State, read)
	if err != nil {
		return e.halt(ctx, cfg, domain.StatusFailed, err)
	}

	write, ok := domain.ValidateWrite(act.Write)
	if !ok {
		return e.halt(ctx, cfg, domain.StatusFailed, &domain.BadSymbolError{
			State:  cfg.State,
			Symbol: read,
			Write:  act.Write,
		})
	}
	if !act.Move.Valid() {
		return e.halt(ctx, cfg, domain.StatusFailed, &domain.BadDirectionError{
			State:  cfg.State,
			Symbol: read,
			Move:   act.Move,
		})
	}

	from := cfg.State
	cfg.Tape[cfg.Head] = write
	cfg.State = act.Next
	cfg.Head += act.Move.Delta()
	cfg.Steps++

	if e.hooks.OnStep != nil {
		e.hooks.OnStep(ctx, &domain.StepEvent{
			EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventStep, Machine: e.name},
			Step:      cfg.Steps,
			From:      from,
			To:        act.Next,
			Read:      string(read),
			Write:     string(write),
			Move:      act.Move.String(),
			Grown:     grown,
		})
	}
	return domain.StatusRunning, nil
}

func (e *Engine[S]) halt(ctx context.Context, cfg *domain.Configuration[S], status domain.Status, err error) (domain.Status, error) {
	if err != nil {
		e.logger.Debug("run aborted", "state", cfg.State, "head", cfg.Head, "steps", cfg.Steps, "error", err)
	} else {
		e.logger.Debug("run halted", "status", status, "state", cfg.State, "steps", cfg.Steps)
	}

	if e.hooks.OnHalt != nil {
		typ := domain.EventHalt
		if err != nil {
			typ = domain.EventError
		}
		e.hooks.OnHalt(ctx, &domain.HaltEvent{
			EventBase: domain.EventBase{Timestamp: time.Now(), Type: typ, Machine: e.name},
			State:     cfg.State,
			Status:    status,
			Steps:     cfg.Steps,
			TapeSize:  len(cfg.Tape),
			Err:       err,
		})
	}
	return status, err
}

// Run executes the machine on input until it halts or fails.
// It has no step bound: a machine whose transitions loop never returns.
func (e *Engine[S]) Run(ctx context.Context, input string) (bool, *domain.Configuration[S], error) {
	cfg := e.Start(ctx, input)
	for {
		status, err := e.Step(ctx, cfg)
		if err != nil {
			return false, cfg, err
		}
		switch status {
		case domain.StatusAccepted:
			return true, cfg, nil
		case domain.StatusRejected:
			return false, cfg, nil
		}
	}
}

// Name returns the machine label, if any.
func (e *Engine[S]) Name() string {
	return e.name
}

// Initial returns the initial state.
func (e *Engine[S]) Initial() S {
	return e.initial
}

// States returns the declared states in no particular order.
func (e *Engine[S]) States() []S {
	return keys(e.states)
}

// AcceptStates returns the accepting states in no particular order.
func (e *Engine[S]) AcceptStates() []S {
	return keys(e.accept)
}

// RejectStates returns the rejecting states in no particular order.
func (e *Engine[S]) RejectStates() []S {
	return keys(e.reject)
}

// Table returns a copy of the transition table.
func (e *Engine[S]) Table() domain.Table[S] {
	return e.table.Clone()
}

func keys[S comparable](set map[S]struct{}) []S {
	out := make([]S, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	return out
}

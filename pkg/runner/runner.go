package runner

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/turing/pkg/domain"
)

// Stepper is the single-step view of a machine that the runner drives.
// *turing.Machine satisfies it.
type Stepper[S comparable] interface {
	Start(ctx context.Context, input string) *domain.Configuration[S]
	Step(ctx context.Context, cfg *domain.Configuration[S]) (domain.Status, error)
}

// Result is the outcome of a bounded run.
type Result[S comparable] struct {
	Accepted bool
	Status   domain.Status
	Steps    int
	Final    *domain.Configuration[S]
}

// Runner wraps the engine's step loop with the limits the core does not
// impose: a step budget, context cancellation and an optional trace.
type Runner[S comparable] struct {
	// MaxSteps bounds the number of transitions applied. It is checked before
	// every Step, so a run that needs n transitions needs a budget of n+1 to
	// observe its halting state. Zero means unbounded.
	MaxSteps int

	// Trace receives one line per configuration when non-nil.
	Trace io.Writer

	// Logger is used for internal debug logging.
	// If nil, a no-op logger is used.
	Logger *slog.Logger
}

// Option defines a functional option for configuring the Runner.
type Option func(*config)

type config struct {
	maxSteps int
	trace    io.Writer
	logger   *slog.Logger
}

// WithMaxSteps sets the step budget. Zero or negative means unbounded.
func WithMaxSteps(n int) Option {
	return func(c *config) {
		if n < 0 {
			n = 0
		}
		c.maxSteps = n
	}
}

// WithTrace writes every configuration to w.
func WithTrace(w io.Writer) Option {
	return func(c *config) {
		c.trace = w
	}
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// New creates a Runner.
func New[S comparable](opts ...Option) *Runner[S] {
	c := config{}
	for _, opt := range opts {
		opt(&c)
	}
	if c.logger == nil {
		c.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Runner[S]{
		MaxSteps: c.maxSteps,
		Trace:    c.trace,
		Logger:   c.logger,
	}
}

// Run executes m on input until it halts, fails, exceeds the step budget
// or ctx is done. The partial result is returned alongside budget and
// cancellation errors so callers can inspect where the run stopped.
func (r *Runner[S]) Run(ctx context.Context, m Stepper[S], input string) (*Result[S], error) {
	cfg := m.Start(ctx, input)
	return r.Resume(ctx, m, cfg)
}

// Resume continues a run from an existing configuration.
func (r *Runner[S]) Resume(ctx context.Context, m Stepper[S], cfg *domain.Configuration[S]) (*Result[S], error) {
	logger := r.logger()
	res := &Result[S]{Status: domain.StatusRunning, Final: cfg}

	r.trace(cfg)
	for {
		if err := ctx.Err(); err != nil {
			res.Steps = cfg.Steps
			logger.Debug("run canceled", "steps", cfg.Steps, "error", err)
			return res, err
		}
		if r.MaxSteps > 0 && cfg.Steps >= r.MaxSteps {
			res.Steps = cfg.Steps
			logger.Debug("step budget exhausted", "max_steps", r.MaxSteps, "state", cfg.State)
			return res, fmt.Errorf("%w: %d steps", domain.ErrStepLimit, r.MaxSteps)
		}

		status, err := m.Step(ctx, cfg)
		res.Status = status
		res.Steps = cfg.Steps
		if err != nil {
			return res, err
		}
		if status.Halted() {
			res.Accepted = status == domain.StatusAccepted
			return res, nil
		}
		r.trace(cfg)
	}
}

// StepN advances cfg by at most n transitions and returns the last status.
// It stops early when the run halts or fails.
func StepN[S comparable](ctx context.Context, m Stepper[S], cfg *domain.Configuration[S], n int) (domain.Status, error) {
	status := domain.StatusRunning
	for i := 0; i < n; i++ {
		var err error
		status, err = m.Step(ctx, cfg)
		if err != nil || status.Halted() {
			return status, err
		}
	}
	return status, nil
}

func (r *Runner[S]) trace(cfg *domain.Configuration[S]) {
	if r.Trace == nil {
		return
	}
	fmt.Fprintln(r.Trace, cfg.Describe())
}

func (r *Runner[S]) logger() *slog.Logger {
	if r.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return r.Logger
}

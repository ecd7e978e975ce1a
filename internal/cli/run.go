package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/aretw0/turing"
	"github.com/aretw0/turing/internal/presentation/tui"
	"github.com/aretw0/turing/pkg/domain"
	"github.com/aretw0/turing/pkg/runner"
)

// RunOptions contains the configuration for the run command.
type RunOptions struct {
	Target   string // machine name or definition file
	Input    string
	MaxSteps int // negative means unbounded
	Trace    bool
}

// Run executes one machine on one input and prints the outcome to w.
// A rejected input is not an error; table errors and an exhausted budget are.
func Run(ctx context.Context, env *Env, opts RunOptions, w io.Writer) (*runner.Result[string], error) {
	input, err := runner.SanitizeInput(opts.Input)
	if err != nil {
		return nil, err
	}

	def, err := env.Resolve(opts.Target)
	if err != nil {
		return nil, err
	}
	m, err := def.Compile(turing.WithLogger(env.Logger), turing.WithLifecycleHooks(env.Hooks()))
	if err != nil {
		return nil, err
	}

	runOpts := []runner.Option{
		runner.WithMaxSteps(budget(opts.MaxSteps)),
		runner.WithLogger(env.Logger),
	}
	if opts.Trace {
		runOpts = append(runOpts, runner.WithTrace(w))
	}

	res, err := runner.New[string](runOpts...).Run(ctx, m, input)
	if err != nil {
		if res != nil && res.Final != nil {
			fmt.Fprintf(w, "%s  steps=%d  q=%s  %s\n", tui.Status(domain.StatusFailed), res.Steps, res.Final.State, res.Final.String())
		}
		return res, err
	}

	fmt.Fprintf(w, "%s  steps=%d  q=%s  tape=%s\n", tui.Status(res.Status), res.Steps, res.Final.State, quoteTape(res.Final.Content()))
	return res, nil
}

func quoteTape(s string) string {
	if s == "" {
		return `""`
	}
	return s
}

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aretw0/turing/internal/presentation/tui"
	"github.com/aretw0/turing/pkg/domain"
	"github.com/aretw0/turing/pkg/runner"
)

// DefaultSessionID is used by the step command when no --session is given.
const DefaultSessionID = "default"

// StepOptions contains the configuration for the step command.
type StepOptions struct {
	SessionID string
	// Machine and Input start the session when it does not exist yet.
	Machine string
	Input   string
	N       int
	// Fresh discards an existing session first.
	Fresh bool
}

// Step advances a persisted session and prints where it stands. The
// session is started on first use, so repeated invocations walk the run.
func Step(ctx context.Context, env *Env, opts StepOptions, w io.Writer) (*domain.Snapshot, error) {
	if opts.SessionID == "" {
		opts.SessionID = DefaultSessionID
	}

	mgr, closer, err := env.SessionManager(ctx, true, env.Hooks())
	if err != nil {
		return nil, err
	}
	defer closer()

	if opts.Fresh {
		if err := mgr.Delete(ctx, opts.SessionID); err != nil && !errors.Is(err, domain.ErrSessionNotFound) {
			return nil, err
		}
	}

	snap, err := mgr.Load(ctx, opts.SessionID)
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		if opts.Machine == "" {
			return nil, fmt.Errorf("session %q does not exist; give a machine and an input to start it", opts.SessionID)
		}
		input, err := runner.SanitizeInput(opts.Input)
		if err != nil {
			return nil, err
		}
		if snap, err = mgr.Start(ctx, opts.SessionID, opts.Machine, input); err != nil {
			return nil, err
		}
		printSystemMessage(w, "Session '%s' started on '%s'.", snap.ID, snap.Machine)
	case err != nil:
		return nil, err
	case opts.Machine != "" && opts.Machine != snap.Machine:
		return nil, fmt.Errorf("session %q runs %s, not %s (use --fresh to restart)", snap.ID, snap.Machine, opts.Machine)
	}

	if opts.N > 0 {
		if snap, err = mgr.Step(ctx, opts.SessionID, opts.N); err != nil {
			return nil, err
		}
	}

	fmt.Fprintf(w, "%s  step %d  q=%s  %s\n", tui.Status(snap.Status), snap.Steps, snap.State, snap.Render())
	if snap.Error != "" {
		fmt.Fprintf(w, "error (%s): %s\n", snap.ErrorKind, snap.Error)
	}
	return snap, nil
}

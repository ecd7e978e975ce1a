/*
Package runner drives a machine with the limits the core engine leaves out.

The engine only knows how to perform one step. A machine whose transitions loop
never halts, so anything that runs untrusted definitions or serves requests goes
through a Runner, which adds a step budget, context cancellation and an optional
trace of every configuration.

# Key Components

  - Runner: bounded execution of a Stepper (any *turing.Machine).
  - StepN: advance an existing configuration by at most n steps, used by sessions.
  - SanitizeInput: size and character checks for tape inputs coming from outside.

# Usage

	r := runner.New[string](
		runner.WithMaxSteps(100_000),
		runner.WithTrace(os.Stderr),
	)

	res, err := r.Run(ctx, machine, "0110")
	if errors.Is(err, domain.ErrStepLimit) {
		log.Printf("gave up after %d steps", res.Steps)
	}
*/
package runner

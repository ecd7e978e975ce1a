package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/turing"
	"github.com/aretw0/turing/pkg/grading"
)

// GradeOptions contains the configuration for the grade command.
type GradeOptions struct {
	// Problems to grade; empty means all of them.
	Problems []string
	// Machine overrides the machine graded for every problem. By default
	// each problem is graded against the machine of the same name.
	Machine  string
	MaxSteps int
}

// Grade scores machines against the standard problem suites and writes a
// markdown report through render. It reports whether every string passed.
func Grade(ctx context.Context, env *Env, opts GradeOptions, w io.Writer, render func(string) (string, error)) (bool, error) {
	suites := grading.Problems()
	if len(opts.Problems) > 0 {
		suites = suites[:0:0]
		for _, name := range opts.Problems {
			s, ok := grading.Problem(name)
			if !ok {
				return false, fmt.Errorf("unknown problem %q (want problem1, problem2 or problem3)", name)
			}
			suites = append(suites, s)
		}
	}

	var (
		sb             strings.Builder
		score, maximum int
	)
	sb.WriteString("# Grading report\n\n")
	for _, suite := range suites {
		target := suite.Name
		if opts.Machine != "" {
			target = opts.Machine
		}
		def, err := env.Resolve(target)
		if err != nil {
			return false, err
		}
		m, err := def.Compile(turing.WithLogger(env.Logger))
		if err != nil {
			return false, err
		}

		env.Logger.Debug(fmt.Sprintf("Test for %s.", suite.Description), "machine", def.Name)
		report := grading.Grade[string](ctx, m, suite,
			grading.WithMaxSteps(budget(opts.MaxSteps)),
			grading.WithLogger(env.Logger),
		)
		if err := ctx.Err(); err != nil {
			return false, err
		}
		env.Logger.Info(report.Summary(), "suite", suite.Name)

		sb.WriteString(report.Markdown())
		sb.WriteString("\n")
		score += report.Score
		maximum += report.Max
	}
	if len(suites) > 1 {
		fmt.Fprintf(&sb, "**Overall: %d/%d**\n", score, maximum)
	}

	out, err := render(sb.String())
	if err != nil {
		return false, err
	}
	fmt.Fprint(w, out)
	return score == maximum, nil
}

// Package grading scores a machine against labelled example strings.
//
// Every candidate string is run on a fresh configuration, so a failure on
// one string never leaks into the next. A run that errors or exceeds the
// step budget counts as a mismatch and is recorded in the report; it never
// aborts the suite.
package grading

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/aretw0/turing/pkg/domain"
	"github.com/aretw0/turing/pkg/runner"
)

// Suite is a set of strings a machine should accept and strings it should reject.
type Suite struct {
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Accept      []string `json:"accept" yaml:"accept"`
	Reject      []string `json:"reject" yaml:"reject"`
}

// Max is the best achievable score.
func (s Suite) Max() int {
	return len(s.Accept) + len(s.Reject)
}

// Outcome is the verdict on one string.
type Outcome struct {
	Input string `json:"input"`
	Want  bool   `json:"want"`
	Got   bool   `json:"got"`
	Steps int    `json:"steps"`
	Err   error  `json:"-"`
}

// Pass reports whether the machine answered as labelled.
func (o Outcome) Pass() bool {
	return o.Err == nil && o.Got == o.Want
}

// Report is the result of grading one suite.
type Report struct {
	Suite       string    `json:"suite"`
	Description string    `json:"description,omitempty"`
	Score       int       `json:"score"`
	Max         int       `json:"max"`
	Outcomes    []Outcome `json:"outcomes"`
}

// Passed reports whether every string was decided correctly.
func (r *Report) Passed() bool {
	return r.Score == r.Max
}

// Option configures Grade.
type Option func(*config)

type config struct {
	maxSteps int
	logger   *slog.Logger
	pad      bool
}

// WithMaxSteps bounds each run so a looping machine costs one mismatch
// instead of hanging the suite.
func WithMaxSteps(n int) Option {
	return func(c *config) {
		c.maxSteps = n
	}
}

// WithLogger receives one debug line per string and one error line per
// failed run.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithPadding controls whether inputs are wrapped in blanks before running.
// It is on by default, so machines see "_w_".
func WithPadding(on bool) Option {
	return func(c *config) {
		c.pad = on
	}
}

// Grade runs every string of suite on m and counts the correct answers.
func Grade[S comparable](ctx context.Context, m runner.Stepper[S], suite Suite, opts ...Option) *Report {
	c := config{pad: true}
	for _, opt := range opts {
		opt(&c)
	}
	if c.logger == nil {
		c.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	logger := c.logger.With("suite", suite.Name)
	r := runner.New[S](runner.WithMaxSteps(c.maxSteps), runner.WithLogger(c.logger))

	report := &Report{
		Suite:       suite.Name,
		Description: suite.Description,
		Max:         suite.Max(),
	}

	grade := func(w string, want bool) {
		input := w
		if c.pad {
			input = string(domain.Blank) + w + string(domain.Blank)
		}

		o := Outcome{Input: w, Want: want}
		res, err := r.Run(ctx, m, input)
		if res != nil {
			o.Steps = res.Steps
			o.Got = res.Accepted
		}
		o.Err = err

		switch {
		case err != nil:
			logger.Error("run failed", "input", w, "kind", domain.ErrorKind(err), "err", err)
		case o.Pass():
			logger.Debug(fmt.Sprintf("  ✓ %s %q.", verb(want), w))
			report.Score++
		default:
			logger.Debug(fmt.Sprintf("  ✗ %s %q but should have %s.", verb(o.Got), w, strings.ToLower(verb(want))))
		}
		report.Outcomes = append(report.Outcomes, o)
	}

	for _, w := range suite.Accept {
		grade(w, true)
	}
	for _, w := range suite.Reject {
		grade(w, false)
	}
	return report
}

func verb(accepted bool) string {
	if accepted {
		return "Accepted"
	}
	return "Rejected"
}

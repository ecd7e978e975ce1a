package grading

import (
	"fmt"
	"strings"
)

// Markdown renders the report as a section with one table row per string.
func (r *Report) Markdown() string {
	var b strings.Builder
	fmt.Fprintf(&b, "## %s\n\n", r.Suite)
	if r.Description != "" {
		fmt.Fprintf(&b, "Test for %s.\n\n", r.Description)
	}

	b.WriteString("| Input | Expected | Got | Steps | |\n")
	b.WriteString("|---|---|---|---:|---|\n")
	for _, o := range r.Outcomes {
		got := answer(o.Got)
		if o.Err != nil {
			got = "error: " + o.Err.Error()
		}
		mark := "✗"
		if o.Pass() {
			mark = "✓"
		}
		fmt.Fprintf(&b, "| `%q` | %s | %s | %d | %s |\n", o.Input, answer(o.Want), escape(got), o.Steps, mark)
	}

	fmt.Fprintf(&b, "\n**Total score: %d/%d**\n", r.Score, r.Max)
	return b.String()
}

// Summary is the one-line form printed after each suite.
func (r *Report) Summary() string {
	return fmt.Sprintf("Total score: %d/%d", r.Score, r.Max)
}

func answer(accepted bool) string {
	if accepted {
		return "accept"
	}
	return "reject"
}

func escape(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

package schema

import (
	"fmt"
	"unicode/utf8"

	"github.com/aretw0/turing/pkg/domain"
)

// Severity grades a lint finding.
type Severity string

const (
	// SeverityError marks an entry that fails Compile or fails any run that reaches it.
	SeverityError Severity = "error"
	// SeverityWarning marks a suspicious but runnable definition.
	SeverityWarning Severity = "warning"
)

// Finding is one advisory remark about a definition.
type Finding struct {
	Severity Severity `json:"severity"`
	State    string   `json:"state,omitempty"`
	Symbol   string   `json:"symbol,omitempty"`
	Message  string   `json:"message"`
}

func (f Finding) String() string {
	loc := ""
	switch {
	case f.State != "" && f.Symbol != "":
		loc = fmt.Sprintf(" [%s, %q]", f.State, f.Symbol)
	case f.State != "":
		loc = fmt.Sprintf(" [%s]", f.State)
	}
	return fmt.Sprintf("%s%s: %s", f.Severity, loc, f.Message)
}

// Lint checks a definition eagerly. The engine itself only validates entries
// as runs reach them, so a definition with findings may still answer some
// inputs correctly. Findings are ordered by state then symbol.
func Lint(def *Definition) []Finding {
	var out []Finding
	add := func(sev Severity, state, symbol, format string, args ...any) {
		out = append(out, Finding{Severity: sev, State: state, Symbol: symbol, Message: fmt.Sprintf(format, args...)})
	}

	declared := toSet(def.States)
	explicit := len(def.States) > 0
	accept := toSet(def.Accept)
	reject := toSet(def.Reject)

	if explicit {
		if _, ok := declared[def.Initial]; !ok {
			add(SeverityError, def.Initial, "", "initial state is not declared")
		}
		for _, s := range def.Accept {
			if _, ok := declared[s]; !ok {
				add(SeverityWarning, s, "", "accept state is not declared")
			}
		}
		for _, s := range def.Reject {
			if _, ok := declared[s]; !ok {
				add(SeverityWarning, s, "", "reject state is not declared")
			}
		}
	}
	for _, s := range def.Accept {
		if _, ok := reject[s]; ok {
			add(SeverityWarning, s, "", "state is both accepting and rejecting; accept wins")
		}
	}
	if len(def.Accept) == 0 && len(def.Reject) == 0 {
		add(SeverityWarning, "", "", "no accept or reject states; no run can halt")
	}

	for _, from := range def.sortedStates() {
		if _, ok := declared[from]; explicit && !ok {
			add(SeverityWarning, from, "", "transitions from an undeclared state")
		}
		row := def.Transitions[from]
		for _, sym := range sortedSymbols(row) {
			rule := row[sym]
			if utf8.RuneCountInString(sym) != 1 {
				add(SeverityError, from, sym, "symbol must be exactly one character")
			}
			if _, ok := domain.ValidateWrite(rule.Write); !ok {
				add(SeverityError, from, sym, "write symbol %q must be exactly one character", rule.Write)
			}
			if _, err := domain.ParseDirection(rule.Move); err != nil {
				add(SeverityError, from, sym, "%v", err)
			}
			if _, ok := declared[rule.To]; explicit && !ok {
				add(SeverityWarning, from, sym, "target state %q is not declared", rule.To)
			}
			if !halting(rule.To, accept, reject) {
				if _, ok := def.Transitions[rule.To]; !ok {
					add(SeverityWarning, from, sym, "target state %q has no transitions and does not halt", rule.To)
				}
			}
		}
	}

	if !halting(def.Initial, accept, reject) {
		if _, ok := def.Transitions[def.Initial]; !ok && def.Initial != "" {
			add(SeverityWarning, def.Initial, "", "initial state has no transitions and does not halt")
		}
	}
	return out
}

// HasErrors reports whether any finding has error severity.
func HasErrors(findings []Finding) bool {
	for _, f := range findings {
		if f.Severity == SeverityError {
			return true
		}
	}
	return false
}

func halting(s string, accept, reject map[string]struct{}) bool {
	if _, ok := accept[s]; ok {
		return true
	}
	_, ok := reject[s]
	return ok
}

func toSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, s := range items {
		set[s] = struct{}{}
	}
	return set
}

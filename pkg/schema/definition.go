package schema

import (
	"fmt"
	"slices"
	"sort"
	"unicode/utf8"

	"github.com/aretw0/turing"
	"github.com/aretw0/turing/pkg/domain"
)

// Definition is a machine described as data. States are strings; symbols
// are one-character strings keyed under each state.
type Definition struct {
	Name        string                     `json:"name" yaml:"name" mapstructure:"name"`
	Description string                     `json:"description,omitempty" yaml:"description,omitempty" mapstructure:"description"`
	States      []string                   `json:"states" yaml:"states" mapstructure:"states"`
	Initial     string                     `json:"initial" yaml:"initial" mapstructure:"initial"`
	Accept      []string                   `json:"accept" yaml:"accept" mapstructure:"accept"`
	Reject      []string                   `json:"reject" yaml:"reject" mapstructure:"reject"`
	Transitions map[string]map[string]Rule `json:"transitions" yaml:"transitions" mapstructure:"transitions"`
}

// Rule is one transition table entry as written in a document.
// Move is kept as text so that a bad direction is reported with its context.
type Rule struct {
	To    string `json:"to" yaml:"to" mapstructure:"to"`
	Write string `json:"write" yaml:"write" mapstructure:"write"`
	Move  string `json:"move" yaml:"move" mapstructure:"move"`
}

// StateSet returns the declared states, or when none are declared, every
// state the document mentions in a stable order.
func (d *Definition) StateSet() []string {
	if len(d.States) > 0 {
		return slices.Clone(d.States)
	}

	seen := make(map[string]struct{})
	var out []string
	add := func(s string) {
		if _, ok := seen[s]; ok || s == "" {
			return
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}

	add(d.Initial)
	for _, from := range d.sortedStates() {
		add(from)
		for _, sym := range sortedSymbols(d.Transitions[from]) {
			add(d.Transitions[from][sym].To)
		}
	}
	for _, s := range d.Accept {
		add(s)
	}
	for _, s := range d.Reject {
		add(s)
	}
	return out
}

// Table converts the document's transitions into an engine table.
// Malformed entries are carried as written so that the engine rejects them
// only when a run reaches them: an unknown move becomes the zero Direction,
// which fails with ErrBadDirection. Keys that are not one character can never
// match a tape cell and are left out. Lint reports both eagerly.
func (d *Definition) Table() domain.Table[string] {
	table := make(domain.Table[string], len(d.Transitions))

	for _, from := range d.sortedStates() {
		row := make(map[rune]domain.Action[string], len(d.Transitions[from]))
		for _, sym := range sortedSymbols(d.Transitions[from]) {
			if utf8.RuneCountInString(sym) != 1 {
				continue
			}
			rule := d.Transitions[from][sym]
			move, _ := domain.ParseDirection(rule.Move)

			r, _ := utf8.DecodeRuneInString(sym)
			row[r] = domain.Action[string]{Next: rule.To, Write: rule.Write, Move: move}
		}
		table[from] = row
	}
	return table
}

// Compile builds a runnable machine. Options are applied after the name
// taken from the document, so callers may override it.
func (d *Definition) Compile(opts ...turing.Option) (*turing.Machine[string], error) {
	opts = append([]turing.Option{turing.WithName(d.Name)}, opts...)
	m, err := turing.New(d.StateSet(), d.Initial, d.Accept, d.Reject, d.Table(), opts...)
	if err != nil {
		return nil, fmt.Errorf("compile %s: %w", d.Name, err)
	}
	return m, nil
}

func (d *Definition) sortedStates() []string {
	keys := make([]string, 0, len(d.Transitions))
	for k := range d.Transitions {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedSymbols(row map[string]Rule) []string {
	keys := make([]string, 0, len(row))
	for k := range row {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Clone returns a deep copy of the definition.
func (d *Definition) Clone() *Definition {
	if d == nil {
		return nil
	}
	out := *d
	out.States = slices.Clone(d.States)
	out.Accept = slices.Clone(d.Accept)
	out.Reject = slices.Clone(d.Reject)
	if d.Transitions != nil {
		out.Transitions = make(map[string]map[string]Rule, len(d.Transitions))
		for from, row := range d.Transitions {
			r := make(map[string]Rule, len(row))
			for sym, rule := range row {
				r[sym] = rule
			}
			out.Transitions[from] = r
		}
	}
	return &out
}

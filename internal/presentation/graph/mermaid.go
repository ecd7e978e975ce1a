package graph

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/turing/pkg/schema"
)

// Overlay contains run data to visualize on the graph.
type Overlay struct {
	Visited []string
	Current string
}

// GenerateMermaid produces a Mermaid flowchart of a machine definition.
// It applies semantic styling:
// - Initial: ((Circle))
// - Accept: (((Double circle)))
// - Reject: {{Hexagon}}
// - Default: [Rectangle]
// Transitions between the same pair of states are folded into one edge
// labelled "read/write,move" per symbol.
// It also applies overlay styles (Visited/Current) if provided.
func GenerateMermaid(def *schema.Definition, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph LR\n")

	accept := toSet(def.Accept)
	reject := toSet(def.Reject)

	states := def.StateSet()
	known := toSet(states)
	for _, from := range sortedKeys(def.Transitions) {
		if _, ok := known[from]; !ok {
			states = append(states, from)
			known[from] = struct{}{}
		}
	}

	for _, s := range states {
		opener, closer := "[", "]"
		switch {
		case isIn(accept, s):
			// accept wins over reject, as in the engine
			opener, closer = "(((", ")))"
		case isIn(reject, s):
			opener, closer = "{{", "}}"
		case s == def.Initial:
			opener, closer = "((", "))"
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", nodeID(s), opener, escape(s), closer)
	}

	if def.Initial != "" {
		sb.WriteString("    start(( )) --> " + nodeID(def.Initial) + "\n")
	}

	type edge struct{ from, to string }
	var order []edge
	labels := make(map[edge][]string)
	for _, from := range sortedKeys(def.Transitions) {
		row := def.Transitions[from]
		for _, sym := range sortedKeys(row) {
			rule := row[sym]
			e := edge{from, rule.To}
			if _, ok := labels[e]; !ok {
				order = append(order, e)
			}
			labels[e] = append(labels[e], fmt.Sprintf("%s/%s,%s", sym, rule.Write, strings.ToUpper(rule.Move)))
		}
	}
	for _, e := range order {
		label := escape(strings.Join(labels[e], "<br/>"))
		fmt.Fprintf(&sb, "    %s -- \"%s\" --> %s\n", nodeID(e.from), label, nodeID(e.to))
	}

	// Apply Overlay Styles
	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme (Light/Dark)
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		seen := make(map[string]bool)
		for _, s := range overlay.Visited {
			if s == "" || seen[s] {
				continue
			}
			seen[s] = true
			fmt.Fprintf(&sb, "    class %s visited;\n", nodeID(s))
		}
		if overlay.Current != "" {
			fmt.Fprintf(&sb, "    class %s current;\n", nodeID(overlay.Current))
		}
	}

	return sb.String()
}

// nodeID prefixes every state so that names like "end" or "0" never clash
// with Mermaid keywords.
func nodeID(state string) string {
	r := strings.NewReplacer(".", "_", "-", "_", "/", "_", "\\", "_", " ", "_", "\"", "_")
	return "s_" + r.Replace(state)
}

func escape(s string) string {
	return strings.ReplaceAll(s, "\"", "#quot;")
}

func toSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, s := range items {
		set[s] = struct{}{}
	}
	return set
}

func isIn(set map[string]struct{}, s string) bool {
	_, ok := set[s]
	return ok
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

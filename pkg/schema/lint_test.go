package schema_test

import (
	"testing"

	"github.com/aretw0/turing/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLint_Clean(t *testing.T) {
	def, err := schema.Parse([]byte(isEvenYAML))
	require.NoError(t, err)
	assert.Empty(t, schema.Lint(def))
}

func TestLint_Findings(t *testing.T) {
	def, err := schema.Parse([]byte(`
states: [s, t, y, n]
initial: s
accept: [y, both]
reject: [n, both]
transitions:
  s:
    "0": [t, "0", R]
    "1": [ghost, "11", R]
    ab: [s, a, sideways]
  zz:
    _: [y, _, R]
`))
	require.NoError(t, err)

	findings := schema.Lint(def)
	assert.True(t, schema.HasErrors(findings))

	var messages []string
	for _, f := range findings {
		messages = append(messages, f.String())
	}
	assert.Contains(t, messages, `warning [both]: accept state is not declared`)
	assert.Contains(t, messages, `warning [both]: reject state is not declared`)
	assert.Contains(t, messages, `warning [both]: state is both accepting and rejecting; accept wins`)
	assert.Contains(t, messages, `warning [s, "0"]: target state "t" has no transitions and does not halt`)
	assert.Contains(t, messages, `error [s, "1"]: write symbol "11" must be exactly one character`)
	assert.Contains(t, messages, `warning [s, "1"]: target state "ghost" is not declared`)
	assert.Contains(t, messages, `error [s, "ab"]: symbol must be exactly one character`)
	assert.Contains(t, messages, `error [s, "ab"]: invalid direction "sideways" (expected L or R)`)
	assert.Contains(t, messages, `warning [zz]: transitions from an undeclared state`)
}

func TestLint_NoHaltingStates(t *testing.T) {
	def, err := schema.Parse([]byte("initial: s\ntransitions:\n  s:\n    _: [s, _, R]\n"))
	require.NoError(t, err)

	findings := schema.Lint(def)
	require.Len(t, findings, 1)
	assert.Equal(t, schema.SeverityWarning, findings[0].Severity)
	assert.False(t, schema.HasErrors(findings))
}

package runner_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/aretw0/turing"
	"github.com/aretw0/turing/pkg/domain"
	"github.com/aretw0/turing/pkg/runner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isEven(t *testing.T) *turing.Machine[int] {
	t.Helper()
	m, err := turing.New([]int{0, 1, 2, 3}, 0, []int{2}, []int{3}, domain.Table[int]{
		0: {
			'0': {Next: 0, Write: "0", Move: turing.R},
			'1': {Next: 0, Write: "1", Move: turing.R},
			'_': {Next: 1, Write: "_", Move: turing.L},
		},
		1: {
			'0': {Next: 2, Write: "0", Move: turing.L},
			'1': {Next: 3, Write: "1", Move: turing.L},
			'_': {Next: 3, Write: "_", Move: turing.R},
		},
	})
	require.NoError(t, err)
	return m
}

// loop walks right forever over blanks.
func loop(t *testing.T) *turing.Machine[string] {
	t.Helper()
	m, err := turing.New([]string{"q", "y", "n"}, "q", []string{"y"}, []string{"n"}, domain.Table[string]{
		"q": {
			'_': {Next: "q", Write: "_", Move: turing.R},
			'0': {Next: "q", Write: "0", Move: turing.R},
		},
	})
	require.NoError(t, err)
	return m
}

func TestRunner_Halts(t *testing.T) {
	r := runner.New[int]()

	res, err := r.Run(context.Background(), isEven(t), "10")
	require.NoError(t, err)
	assert.True(t, res.Accepted)
	assert.Equal(t, domain.StatusAccepted, res.Status)
	assert.Equal(t, 4, res.Steps)
	assert.Equal(t, "10", res.Final.Content())

	res, err = r.Run(context.Background(), isEven(t), "1")
	require.NoError(t, err)
	assert.False(t, res.Accepted)
	assert.Equal(t, domain.StatusRejected, res.Status)
}

func TestRunner_StepLimit(t *testing.T) {
	r := runner.New[string](runner.WithMaxSteps(50))

	res, err := r.Run(context.Background(), loop(t), "0")
	require.ErrorIs(t, err, domain.ErrStepLimit)
	assert.Equal(t, domain.KindStepLimit, domain.ErrorKind(err))
	assert.Equal(t, 50, res.Steps)
	assert.False(t, res.Accepted)
	assert.Equal(t, domain.StatusRunning, res.Status)
}

func TestRunner_StepLimitCountsTransitions(t *testing.T) {
	// "10" takes 4 transitions, then a fifth Step to observe the accept
	// state. The budget is checked before every Step, so 4 is not enough.
	_, err := runner.New[int](runner.WithMaxSteps(4)).Run(context.Background(), isEven(t), "10")
	assert.ErrorIs(t, err, domain.ErrStepLimit)

	res, err := runner.New[int](runner.WithMaxSteps(5)).Run(context.Background(), isEven(t), "10")
	require.NoError(t, err)
	assert.True(t, res.Accepted)
}

func TestRunner_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := runner.New[string]().Run(ctx, loop(t), "0")
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, domain.KindCanceled, domain.ErrorKind(err))
	assert.Equal(t, 0, res.Steps)
}

func TestRunner_TableErrorsPassThrough(t *testing.T) {
	res, err := runner.New[string]().Run(context.Background(), loop(t), "01")
	require.ErrorIs(t, err, domain.ErrUnknownSymbol)
	assert.Equal(t, domain.StatusFailed, res.Status)
	assert.Equal(t, 1, res.Steps)
}

func TestRunner_Trace(t *testing.T) {
	var buf bytes.Buffer
	_, err := runner.New[int](runner.WithTrace(&buf)).Run(context.Background(), isEven(t), "0")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "step 0  q=0  _[0]", lines[0])
	assert.Equal(t, "step 1  q=0  _0[ ]", lines[1])
	assert.Equal(t, "step 2  q=1  _[0]_", lines[2])
	assert.Equal(t, "step 3  q=2  [_]0_", lines[3])
}

func TestStepN(t *testing.T) {
	ctx := context.Background()
	m := isEven(t)
	cfg := m.Start(ctx, "10")

	status, err := runner.StepN[int](ctx, m, cfg, 2)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRunning, status)
	assert.Equal(t, 2, cfg.Steps)

	status, err = runner.StepN[int](ctx, m, cfg, 100)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusAccepted, status)
	assert.Equal(t, 4, cfg.Steps)
}

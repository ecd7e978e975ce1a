package turing_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/aretw0/turing"
	"github.com/aretw0/turing/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isEvenTable() domain.Table[int] {
	return domain.Table[int]{
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
		// halting states carry rows in the original table; they are never consulted
		2: {
			'0': {Next: 2, Write: "0", Move: turing.L},
			'1': {Next: 2, Write: "1", Move: turing.L},
			'_': {Next: 2, Write: "_", Move: turing.L},
		},
		3: {
			'0': {Next: 3, Write: "0", Move: turing.L},
			'1': {Next: 3, Write: "1", Move: turing.L},
			'_': {Next: 3, Write: "_", Move: turing.L},
		},
	}
}

func TestMachine_IsEven(t *testing.T) {
	isEven, err := turing.New([]int{0, 1, 2, 3}, 0, []int{2}, []int{3}, isEvenTable())
	require.NoError(t, err)

	for _, s := range []string{"_011010_", "_0_", "_1100010_"} {
		ok, err := isEven.Run(s)
		require.NoError(t, err)
		assert.True(t, ok, s)
		isEven.Reset()
	}
	for _, s := range []string{"_1101_", "_1_", "__", "_01001_"} {
		ok, err := isEven.Run(s)
		require.NoError(t, err)
		assert.False(t, ok, s)
		isEven.Reset()
	}
}

func TestMachine_ResetIdempotence(t *testing.T) {
	m, err := turing.New([]int{0, 1, 2, 3}, 0, []int{2}, []int{3}, isEvenTable())
	require.NoError(t, err)

	// reset before the first run is allowed
	m.Reset()
	assert.Nil(t, m.Last())

	for _, in := range []string{"011010", "1101", ""} {
		m.Reset()
		first, err := m.Run(in)
		require.NoError(t, err)
		m.Reset()
		second, err := m.Run(in)
		require.NoError(t, err)
		assert.Equal(t, first, second, in)

		// and without reset, since runs never share context
		third, err := m.Run(in)
		require.NoError(t, err)
		assert.Equal(t, first, third, in)
	}
}

func TestMachine_LastConfiguration(t *testing.T) {
	m, err := turing.New([]int{0, 1, 2, 3}, 0, []int{2}, []int{3}, isEvenTable())
	require.NoError(t, err)

	_, err = m.Run("10")
	require.NoError(t, err)

	last := m.Last()
	require.NotNil(t, last)
	assert.Equal(t, 2, last.State)
	assert.Equal(t, "10", last.Content())

	// Last hands out copies
	last.Tape[1] = 'X'
	assert.Equal(t, "10", m.Last().Content())

	m.Reset()
	assert.Nil(t, m.Last())
}

func TestMachine_ErrorsNeverYieldAResult(t *testing.T) {
	table := domain.Table[string]{
		"q0": {
			'0': {Next: "q0", Write: "??", Move: turing.R},
		},
	}
	m, err := turing.New([]string{"q0", "yes", "no"}, "q0", []string{"yes"}, []string{"no"}, table)
	require.NoError(t, err)

	ok, err := m.Run("0")
	assert.False(t, ok)
	assert.ErrorIs(t, err, domain.ErrBadSymbol)

	ok, err = m.Run("1")
	assert.False(t, ok)
	assert.ErrorIs(t, err, domain.ErrUnknownSymbol)
}

func TestMachine_InitialStateCheck(t *testing.T) {
	_, err := turing.New([]string{"a"}, "b", nil, nil, nil)
	assert.ErrorIs(t, err, domain.ErrInitialState)
}

func TestMachine_SingleStep(t *testing.T) {
	m, err := turing.New([]int{0, 1, 2, 3}, 0, []int{2}, []int{3}, isEvenTable())
	require.NoError(t, err)

	ctx := context.Background()
	cfg := m.Start(ctx, "0")
	assert.Equal(t, 1, cfg.Head)

	var statuses []domain.Status
	for {
		status, err := m.Step(ctx, cfg)
		require.NoError(t, err)
		statuses = append(statuses, status)
		if status.Halted() {
			break
		}
	}
	assert.Equal(t, []domain.Status{
		domain.StatusRunning,
		domain.StatusRunning,
		domain.StatusRunning,
		domain.StatusAccepted,
	}, statuses)
}

func TestMachine_Options(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	halted := 0
	m, err := turing.New([]int{0, 1, 2, 3}, 0, []int{2}, []int{3}, isEvenTable(),
		turing.WithName("is-even"),
		turing.WithLogger(logger),
		turing.WithLifecycleHooks(domain.LifecycleHooks{
			OnHalt: func(ctx context.Context, e *domain.HaltEvent) { halted++ },
		}),
	)
	require.NoError(t, err)

	_, err = m.Run("0")
	require.NoError(t, err)

	assert.Equal(t, "is-even", m.Name())
	assert.Equal(t, 1, halted)
	assert.Contains(t, buf.String(), "machine=is-even")
	assert.Contains(t, buf.String(), "run halted")
}

func TestVersion(t *testing.T) {
	assert.NotEmpty(t, turing.Version)
}

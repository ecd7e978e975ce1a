package grading_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/aretw0/turing"
	"github.com/aretw0/turing/pkg/domain"
	"github.com/aretw0/turing/pkg/grading"
	"github.com/aretw0/turing/pkg/machines"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGrade_Problems(t *testing.T) {
	want := map[string]int{"problem1": 10, "problem2": 10, "problem3": 8}

	for _, suite := range grading.Problems() {
		t.Run(suite.Name, func(t *testing.T) {
			m, err := machines.Get(suite.Name)
			require.NoError(t, err)

			report := grading.Grade[string](context.Background(), m, suite)
			assert.Equal(t, want[suite.Name], report.Max)
			assert.Equal(t, report.Max, report.Score)
			assert.True(t, report.Passed())
			for _, o := range report.Outcomes {
				assert.NoError(t, o.Err, o.Input)
			}
		})
	}
}

func TestGrade_DefaultMachine(t *testing.T) {
	// the always-accept stub earns exactly the accept half of every suite
	m, err := machines.Get("default")
	require.NoError(t, err)

	for _, suite := range grading.Problems() {
		report := grading.Grade[string](context.Background(), m, suite)
		assert.Equal(t, len(suite.Accept), report.Score, suite.Name)
		assert.False(t, report.Passed())
	}
}

func TestGrade_ErrorsCountAsMismatches(t *testing.T) {
	// scans 0s and accepts at the end; any 1 is an unknown symbol
	m, err := turing.New([]string{"s", "y"}, "s", []string{"y"}, nil, domain.Table[string]{
		"s": {
			'0': {Next: "s", Write: "0", Move: turing.R},
			'_': {Next: "y", Write: "_", Move: turing.R},
		},
	})
	require.NoError(t, err)

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	suite := grading.Suite{Name: "zeros", Accept: []string{"", "00", "01"}, Reject: []string{"1"}}
	report := grading.Grade[string](context.Background(), m, suite, grading.WithLogger(logger))

	assert.Equal(t, 2, report.Score)
	assert.Equal(t, 4, report.Max)
	require.Len(t, report.Outcomes, 4)
	assert.ErrorIs(t, report.Outcomes[2].Err, domain.ErrUnknownSymbol)
	assert.ErrorIs(t, report.Outcomes[3].Err, domain.ErrUnknownSymbol)
	assert.False(t, report.Outcomes[3].Pass())

	assert.Contains(t, buf.String(), "level=ERROR")
	assert.Contains(t, buf.String(), "kind=unknown_symbol")
	assert.Contains(t, buf.String(), `✓ Accepted \"00\".`)
}

func TestGrade_StepBudget(t *testing.T) {
	m, err := turing.New([]string{"s", "y"}, "s", []string{"y"}, nil, domain.Table[string]{
		"s": {
			'_': {Next: "s", Write: "_", Move: turing.R},
			'1': {Next: "y", Write: "1", Move: turing.R},
		},
	})
	require.NoError(t, err)

	suite := grading.Suite{Name: "loop", Accept: []string{"1", ""}}
	report := grading.Grade[string](context.Background(), m, suite, grading.WithMaxSteps(1000))

	assert.Equal(t, 1, report.Score)
	assert.ErrorIs(t, report.Outcomes[1].Err, domain.ErrStepLimit)
	assert.Equal(t, 1000, report.Outcomes[1].Steps)
}

func TestGrade_Padding(t *testing.T) {
	// leading blanks are normalized, so padding does not change the verdicts
	m, err := turing.New([]string{"s", "y", "n"}, "s", []string{"y"}, []string{"n"}, domain.Table[string]{
		"s": {
			'_': {Next: "n", Write: "_", Move: turing.R},
			'0': {Next: "y", Write: "0", Move: turing.R},
		},
	})
	require.NoError(t, err)

	suite := grading.Suite{Name: "first", Accept: []string{"0"}, Reject: []string{""}}
	assert.True(t, grading.Grade[string](context.Background(), m, suite).Passed())
	assert.True(t, grading.Grade[string](context.Background(), m, suite, grading.WithPadding(false)).Passed())
}

func TestReport_Markdown(t *testing.T) {
	suite, ok := grading.Problem("problem1")
	require.True(t, ok)
	m, err := machines.Get("problem1")
	require.NoError(t, err)

	md := grading.Grade[string](context.Background(), m, suite).Markdown()
	assert.Contains(t, md, "## problem1")
	assert.Contains(t, md, "Test for L = { 0^2n 1^n | n is a natural number }.")
	assert.Contains(t, md, "| `\"001\"` | accept | accept |")
	assert.Contains(t, md, "**Total score: 10/10**")

	_, ok = grading.Problem("problem9")
	assert.False(t, ok)
}

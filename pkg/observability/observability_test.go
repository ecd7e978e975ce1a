package observability_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/aretw0/turing"
	"github.com/aretw0/turing/pkg/domain"
	"github.com/aretw0/turing/pkg/machines"
	"github.com/aretw0/turing/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Hooks(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := observability.NewMetrics(reg)

	m, err := machines.Get("even", turing.WithLifecycleHooks(metrics.Hooks()))
	require.NoError(t, err)

	_, err = m.Run("10") // 4 steps, accepted
	require.NoError(t, err)
	_, err = m.Run("1") // 3 steps, rejected
	require.NoError(t, err)
	_, err = m.Run("12") // 1 step, unknown symbol
	require.Error(t, err)

	assert.Equal(t, 8.0, testutil.ToFloat64(metrics.Steps.WithLabelValues("even")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Runs.WithLabelValues("even", "accepted")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Runs.WithLabelValues("even", "rejected")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Runs.WithLabelValues("even", "failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Errors.WithLabelValues("even", "unknown_symbol")))

	metrics.ObserveAbort("even", domain.ErrStepLimit)
	metrics.ObserveAbort("even", nil)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Errors.WithLabelValues("even", "step_limit")))

	count, err := testutil.GatherAndCount(reg, "turing_tape_cells")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestLoggingHooks(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	m, err := machines.Get("even", turing.WithLifecycleHooks(observability.LoggingHooks(logger)))
	require.NoError(t, err)

	ctx := context.Background()
	cfg := m.Start(ctx, "0")
	for {
		status, err := m.Step(ctx, cfg)
		require.NoError(t, err)
		if status.Halted() {
			break
		}
	}

	out := buf.String()
	assert.Contains(t, out, "msg=\"run started\" machine=even")
	assert.Contains(t, out, "msg=step machine=even n=1 from=scan read=0 to=scan write=0 move=R")
	assert.Contains(t, out, "msg=\"run finished\" machine=even status=accepted steps=3")

	buf.Reset()
	_, err = m.Run("2")
	require.Error(t, err)
	assert.Contains(t, buf.String(), "level=ERROR")
	assert.Contains(t, buf.String(), "kind=unknown_symbol")
}

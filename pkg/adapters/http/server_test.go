package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	turinghttp "github.com/aretw0/turing/pkg/adapters/http"
	"github.com/aretw0/turing/pkg/adapters/memory"
	"github.com/aretw0/turing/pkg/domain"
	"github.com/aretw0/turing/pkg/machines"
	"github.com/aretw0/turing/pkg/observability"
	"github.com/aretw0/turing/pkg/ports"
	"github.com/aretw0/turing/pkg/runner"
	"github.com/aretw0/turing/pkg/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler(t *testing.T, opts ...turinghttp.Option) http.Handler {
	t.Helper()
	lib, err := machines.Library()
	require.NoError(t, err)
	return turinghttp.NewHandler(lib, opts...)
}

func do(t *testing.T, h http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestListAndGetMachines(t *testing.T) {
	h := newTestHandler(t)

	w := do(t, h, "GET", "/machines", nil)
	require.Equal(t, http.StatusOK, w.Code)
	names := decode[[]string](t, w)
	assert.Contains(t, names, "even")
	assert.Contains(t, names, "problem3")

	w = do(t, h, "GET", "/machines/even", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"initial":"scan"`)

	w = do(t, h, "GET", "/machines/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, domain.KindNotFound, decode[turinghttp.ErrorResponse](t, w).Kind)
}

func TestRunMachine(t *testing.T) {
	h := newTestHandler(t)

	tests := []struct {
		name     string
		input    string
		accepted bool
		status   domain.Status
	}{
		{"even number", "10", true, domain.StatusAccepted},
		{"odd number", "1", false, domain.StatusRejected},
		{"empty tape", "", false, domain.StatusRejected},
		{"trailing newline is dropped", "110\n", true, domain.StatusAccepted},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, h, "POST", "/machines/even/run", turinghttp.RunRequest{Input: tt.input})
			require.Equal(t, http.StatusOK, w.Code, w.Body.String())

			resp := decode[turinghttp.RunResponse](t, w)
			assert.Equal(t, "even", resp.Machine)
			assert.Equal(t, tt.accepted, resp.Accepted)
			assert.Equal(t, tt.status, resp.Status)
			assert.Empty(t, resp.Kind)
		})
	}
}

func TestRunMachine_StepLimit(t *testing.T) {
	h := newTestHandler(t)

	// "10" needs four transitions
	w := do(t, h, "POST", "/machines/even/run", turinghttp.RunRequest{Input: "10", MaxSteps: 2})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	resp := decode[turinghttp.RunResponse](t, w)
	assert.Equal(t, domain.KindStepLimit, resp.Kind)
	assert.Equal(t, domain.StatusFailed, resp.Status)
	assert.Equal(t, 2, resp.Steps)
	assert.False(t, resp.Accepted)
}

func TestRunMachine_ServerBudgetCapsRequest(t *testing.T) {
	h := newTestHandler(t, turinghttp.WithMaxSteps(2))

	w := do(t, h, "POST", "/machines/even/run", turinghttp.RunRequest{Input: "10", MaxSteps: 100})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, domain.KindStepLimit, decode[turinghttp.RunResponse](t, w).Kind)
}

func TestRunMachine_TableErrors(t *testing.T) {
	lib, err := memory.NewLoader(map[string]string{
		"partial": `
initial: scan
accept: done
transitions:
  scan:
    "0": [scan, "0", R]
    "_": [done, "__", R]
`,
		"broken": `
initial: scan
transitions:
  scan:
    "0": [scan, "0", sideways]
`,
		"misdeclared": `
states: [scan]
initial: start
`,
	})
	require.NoError(t, err)
	h := turinghttp.NewHandler(lib)

	w := do(t, h, "POST", "/machines/partial/run", turinghttp.RunRequest{Input: "01"})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	resp := decode[turinghttp.RunResponse](t, w)
	assert.Equal(t, domain.KindUnknownSymbol, resp.Kind)
	assert.Equal(t, "scan", resp.State)
	assert.Equal(t, 1, resp.Steps)

	w = do(t, h, "POST", "/machines/partial/run", turinghttp.RunRequest{Input: "00"})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, domain.KindBadSymbol, decode[turinghttp.RunResponse](t, w).Kind)

	// a bad move only fails the run that reaches it
	w = do(t, h, "POST", "/machines/broken/run", turinghttp.RunRequest{Input: "_0"})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, domain.KindBadDirection, decode[turinghttp.RunResponse](t, w).Kind)

	w = do(t, h, "POST", "/machines/misdeclared/run", turinghttp.RunRequest{Input: "0"})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, turinghttp.KindInvalidDefinition, decode[turinghttp.ErrorResponse](t, w).Kind)
}

func TestRunMachine_BadRequests(t *testing.T) {
	h := newTestHandler(t)

	req := httptest.NewRequest("POST", "/machines/even/run", bytes.NewBufferString("{not json"))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, h, "POST", "/machines/even/run", turinghttp.RunRequest{Input: strings.Repeat("0", runner.DefaultMaxInputSize+1)})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, h, "POST", "/machines/missing/run", turinghttp.RunRequest{Input: "0"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRunMachine_Canceled(t *testing.T) {
	h := newTestHandler(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest("POST", "/machines/even/run", bytes.NewBufferString(`{"input":"10"}`)).WithContext(ctx)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, turinghttp.StatusClientClosedRequest, w.Code)
	assert.Equal(t, domain.KindCanceled, decode[turinghttp.RunResponse](t, w).Kind)
}

func TestSessions(t *testing.T) {
	lib, err := machines.Library()
	require.NoError(t, err)
	mgr := session.NewManager(memory.NewStore(), lib)
	h := turinghttp.NewHandler(lib, turinghttp.WithSessions(mgr))

	w := do(t, h, "POST", "/sessions", turinghttp.CreateSessionRequest{ID: "s1", Machine: "even", Input: "10"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	snap := decode[domain.Snapshot](t, w)
	assert.Equal(t, "s1", snap.ID)
	assert.Equal(t, "scan", snap.State)
	assert.Equal(t, domain.StatusRunning, snap.Status)

	w = do(t, h, "POST", "/sessions", turinghttp.CreateSessionRequest{ID: "s1", Machine: "even", Input: "10"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(t, h, "POST", "/sessions/s1/step", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, decode[domain.Snapshot](t, w).Steps)

	w = do(t, h, "POST", "/sessions/s1/step?n=100", nil)
	require.Equal(t, http.StatusOK, w.Code)
	snap = decode[domain.Snapshot](t, w)
	assert.Equal(t, domain.StatusAccepted, snap.Status)
	assert.Equal(t, 4, snap.Steps)

	w = do(t, h, "POST", "/sessions/s1/step?n=zero", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, h, "GET", "/sessions", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"s1"}, decode[[]string](t, w))

	w = do(t, h, "GET", "/machines/even/graph?session=s1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "class s_accept current;")

	w = do(t, h, "DELETE", "/sessions/s1", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(t, h, "GET", "/sessions/s1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, h, "POST", "/sessions", turinghttp.CreateSessionRequest{Machine: "missing"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, h, "POST", "/sessions", turinghttp.CreateSessionRequest{Input: "0"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSessionsDisabled(t *testing.T) {
	h := newTestHandler(t)
	w := do(t, h, "GET", "/sessions", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGraph(t *testing.T) {
	h := newTestHandler(t)

	w := do(t, h, "GET", "/machines/even/graph", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "graph LR")
	assert.Contains(t, w.Body.String(), `s_scan -- "_/_,L" --> s_last`)
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	h := newTestHandler(t, turinghttp.WithMetrics(observability.NewMetrics(reg), reg))

	do(t, h, "POST", "/machines/even/run", turinghttp.RunRequest{Input: "10"})
	do(t, h, "POST", "/machines/even/run", turinghttp.RunRequest{Input: "10", MaxSteps: 1})

	w := do(t, h, "GET", "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `turing_runs_total{machine="even",status="accepted"} 1`)
	assert.Contains(t, body, `turing_errors_total{kind="step_limit",machine="even"} 1`)
}

func TestHealthInfoAndCORS(t *testing.T) {
	h := newTestHandler(t)

	w := do(t, h, "GET", "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = do(t, h, "GET", "/info", nil)
	assert.Equal(t, "turing-http", decode[map[string]string](t, w)["app"])

	w = do(t, h, "OPTIONS", "/machines/even/run", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

type watchableLibrary struct {
	*memory.Library
}

var _ ports.Watchable = watchableLibrary{}

func (watchableLibrary) Watch(ctx context.Context) (<-chan struct{}, error) {
	ch := make(chan struct{}, 1)
	ch <- struct{}{}
	close(ch)
	return ch, nil
}

func TestSubscribeEvents(t *testing.T) {
	lib, err := machines.Library()
	require.NoError(t, err)

	w := do(t, turinghttp.NewHandler(watchableLibrary{lib}), "GET", "/events", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "event: ping")
	assert.Contains(t, w.Body.String(), "data: reload")

	w = do(t, turinghttp.NewHandler(lib), "GET", "/events", nil)
	assert.Equal(t, http.StatusNotImplemented, w.Code)
}

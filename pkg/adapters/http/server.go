package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/aretw0/turing"
	"github.com/aretw0/turing/internal/logging"
	"github.com/aretw0/turing/internal/presentation/graph"
	"github.com/aretw0/turing/pkg/domain"
	"github.com/aretw0/turing/pkg/observability"
	"github.com/aretw0/turing/pkg/ports"
	"github.com/aretw0/turing/pkg/runner"
	"github.com/aretw0/turing/pkg/schema"
	"github.com/aretw0/turing/pkg/session"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// DefaultMaxSteps is the step budget of a run when neither the server nor
// the request sets one. The HTTP surface never runs unbounded.
const DefaultMaxSteps = 1_000_000

// KindInvalidDefinition is reported when a stored definition does not compile.
const KindInvalidDefinition = "invalid_definition"

// StatusClientClosedRequest answers runs whose request was canceled by the
// client. It is not a net/http constant; nginx uses the same code.
const StatusClientClosedRequest = 499

// Server serves machines from a loader and, optionally, step-wise sessions.
type Server struct {
	Machines ports.MachineLoader
	Sessions *session.Manager

	maxSteps int
	hooks    domain.LifecycleHooks
	metrics  *observability.Metrics
	gatherer prometheus.Gatherer
	logger   *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithSessions enables the /sessions routes.
func WithSessions(m *session.Manager) Option {
	return func(s *Server) {
		s.Sessions = m
	}
}

// WithMaxSteps caps the step budget of every run. Requests may ask for less.
func WithMaxSteps(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxSteps = n
		}
	}
}

// WithMetrics records runs into m and exposes g on /metrics.
func WithMetrics(m *observability.Metrics, g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.metrics = m
		s.gatherer = g
		if m != nil {
			s.hooks = s.hooks.Merge(m.Hooks())
		}
	}
}

// WithLifecycleHooks is passed to every machine the server compiles.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(s *Server) {
		s.hooks = s.hooks.Merge(hooks)
	}
}

// WithLogger configures the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a Server over a machine loader.
func NewServer(machines ports.MachineLoader, opts ...Option) *Server {
	s := &Server{
		Machines: machines,
		maxSteps: DefaultMaxSteps,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewHandler creates a new HTTP handler for the machines of loader.
func NewHandler(machines ports.MachineLoader, opts ...Option) http.Handler {
	return NewServer(machines, opts...).Routes()
}

// Routes builds the chi router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/events", s.SubscribeEvents)

	r.Route("/machines", func(r chi.Router) {
		r.Get("/", s.ListMachines)
		r.Get("/{name}", s.GetMachine)
		r.Get("/{name}/graph", s.GetGraph)
		r.Post("/{name}/run", s.RunMachine)
	})

	if s.Sessions != nil {
		r.Route("/sessions", func(r chi.Router) {
			r.Get("/", s.ListSessions)
			r.Post("/", s.CreateSession)
			r.Get("/{id}", s.GetSession)
			r.Delete("/{id}", s.DeleteSession)
			r.Post("/{id}/step", s.StepSession)
		})
	}

	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Custom-Header")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RunRequest is the body of POST /machines/{name}/run.
type RunRequest struct {
	Input    string `json:"input"`
	MaxSteps int    `json:"max_steps,omitempty"`
}

// RunResponse describes a finished or aborted run.
type RunResponse struct {
	Machine  string        `json:"machine"`
	Accepted bool          `json:"accepted"`
	Status   domain.Status `json:"status"`
	Steps    int           `json:"steps"`
	Tape     string        `json:"tape"`
	Head     int           `json:"head"`
	State    string        `json:"state"`
	Error    string        `json:"error,omitempty"`
	Kind     string        `json:"kind,omitempty"`
}

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

// CreateSessionRequest is the body of POST /sessions.
type CreateSessionRequest struct {
	ID      string `json:"id,omitempty"`
	Machine string `json:"machine"`
	Input   string `json:"input"`
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"app":     "turing-http",
		"version": strings.TrimSpace(turing.Version),
	})
}

// ListMachines handles the GET /machines request.
func (s *Server) ListMachines(w http.ResponseWriter, r *http.Request) {
	names, err := s.Machines.ListMachines()
	if err != nil {
		s.fail(w, "ListMachines", err)
		return
	}
	if names == nil {
		names = []string{}
	}
	writeJSON(w, http.StatusOK, names)
}

// GetMachine handles the GET /machines/{name} request.
func (s *Server) GetMachine(w http.ResponseWriter, r *http.Request) {
	def, err := s.Machines.GetMachine(chi.URLParam(r, "name"))
	if err != nil {
		s.fail(w, "GetMachine", err)
		return
	}
	writeJSON(w, http.StatusOK, def)
}

// GetGraph handles the GET /machines/{name}/graph request.
// With ?session=<id> the session's current state is highlighted.
func (s *Server) GetGraph(w http.ResponseWriter, r *http.Request) {
	def, err := s.Machines.GetMachine(chi.URLParam(r, "name"))
	if err != nil {
		s.fail(w, "GetGraph", err)
		return
	}

	var overlay *graph.Overlay
	if id := r.URL.Query().Get("session"); id != "" && s.Sessions != nil {
		snap, err := s.Sessions.Load(r.Context(), id)
		if err != nil {
			s.fail(w, "GetGraph", err)
			return
		}
		overlay = &graph.Overlay{Visited: []string{def.Initial}, Current: snap.State}
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprint(w, graph.GenerateMermaid(def, overlay))
}

// RunMachine handles the POST /machines/{name}/run request.
func (s *Server) RunMachine(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	var body RunRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", "bad_request")
		s.logger.Warn("RunMachine: Invalid request body", "error", err)
		return
	}
	input, err := runner.SanitizeInput(body.Input)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), "bad_request")
		return
	}

	def, err := s.Machines.GetMachine(name)
	if err != nil {
		s.fail(w, "RunMachine", err)
		return
	}
	m, err := def.Compile(turing.WithLogger(s.logger), turing.WithLifecycleHooks(s.hooks))
	if err != nil {
		s.fail(w, "RunMachine", err)
		return
	}

	run := runner.New[string](
		runner.WithMaxSteps(s.budget(body.MaxSteps)),
		runner.WithLogger(s.logger),
	)
	res, err := run.Run(r.Context(), m, input)

	resp := RunResponse{
		Machine:  name,
		Accepted: res.Accepted,
		Status:   res.Status,
		Steps:    res.Steps,
		Tape:     res.Final.Content(),
		Head:     res.Final.Head,
		State:    res.Final.State,
	}
	if err != nil {
		if s.metrics != nil && (errors.Is(err, domain.ErrStepLimit) || errors.Is(err, context.Canceled)) {
			s.metrics.ObserveAbort(name, err)
		}
		resp.Status = domain.StatusFailed
		resp.Error = err.Error()
		resp.Kind = domain.ErrorKind(err)
		s.logger.Debug("RunMachine: run aborted", "machine", name, "kind", resp.Kind, "error", err)
		status := http.StatusUnprocessableEntity
		if errors.Is(err, context.Canceled) {
			status = StatusClientClosedRequest
		}
		writeJSON(w, status, resp)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// ListSessions handles the GET /sessions request.
func (s *Server) ListSessions(w http.ResponseWriter, r *http.Request) {
	ids, err := s.Sessions.List(r.Context())
	if err != nil {
		s.fail(w, "ListSessions", err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, ids)
}

// CreateSession handles the POST /sessions request.
func (s *Server) CreateSession(w http.ResponseWriter, r *http.Request) {
	var body CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", "bad_request")
		s.logger.Warn("CreateSession: Invalid request body", "error", err)
		return
	}
	if body.Machine == "" {
		writeError(w, http.StatusBadRequest, "machine is required", "bad_request")
		return
	}
	input, err := runner.SanitizeInput(body.Input)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), "bad_request")
		return
	}

	snap, err := s.Sessions.Start(r.Context(), body.ID, body.Machine, input)
	if err != nil {
		s.fail(w, "CreateSession", err)
		return
	}
	writeJSON(w, http.StatusCreated, snap)
}

// GetSession handles the GET /sessions/{id} request.
func (s *Server) GetSession(w http.ResponseWriter, r *http.Request) {
	snap, err := s.Sessions.Load(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, "GetSession", err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// DeleteSession handles the DELETE /sessions/{id} request.
func (s *Server) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.Sessions.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.fail(w, "DeleteSession", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// StepSession handles the POST /sessions/{id}/step?n=k request.
func (s *Server) StepSession(w http.ResponseWriter, r *http.Request) {
	n := 1
	if raw := r.URL.Query().Get("n"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid step count %q", raw), "bad_request")
			return
		}
		n = min(v, s.maxSteps)
	}

	snap, err := s.Sessions.Step(r.Context(), chi.URLParam(r, "id"), n)
	if err != nil {
		s.fail(w, "StepSession", err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// SubscribeEvents handles the GET /events request (SSE).
// It sends one "reload" event whenever the machine source changes.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	watchable, ok := s.Machines.(ports.Watchable)
	if !ok {
		writeError(w, http.StatusNotImplemented, "machine source cannot be watched", "unsupported")
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "Streaming not supported", domain.KindInternal)
		s.logger.Error("SubscribeEvents: Streaming not supported")
		return
	}

	events, err := watchable.Watch(r.Context())
	if err != nil {
		s.fail(w, "SubscribeEvents", err)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.logger.Debug("SSE Client Disconnected")
			return
		case _, ok := <-events:
			if !ok {
				return
			}
			fmt.Fprintf(w, "data: reload\n\n")
			flusher.Flush()
		}
	}
}

func (s *Server) budget(requested int) int {
	if requested > 0 && requested < s.maxSteps {
		return requested
	}
	return s.maxSteps
}

// fail maps an error to a status code and writes it.
func (s *Server) fail(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, domain.ErrMachineNotFound), errors.Is(err, domain.ErrSessionNotFound):
		writeError(w, http.StatusNotFound, err.Error(), domain.KindNotFound)
	case errors.Is(err, session.ErrSessionExists):
		writeError(w, http.StatusConflict, err.Error(), "conflict")
	case errors.Is(err, schema.ErrInvalidDefinition), errors.Is(err, domain.ErrInitialState):
		writeError(w, http.StatusUnprocessableEntity, err.Error(), KindInvalidDefinition)
	default:
		writeError(w, http.StatusInternalServerError, err.Error(), domain.ErrorKind(err))
		s.logger.Error(op+" failed", "error", err)
	}
}

func writeError(w http.ResponseWriter, code int, msg, kind string) {
	writeJSON(w, code, ErrorResponse{Error: msg, Kind: kind})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("response encode failed", "error", err)
	}
}

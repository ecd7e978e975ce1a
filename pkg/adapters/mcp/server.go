package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/turing"
	"github.com/aretw0/turing/internal/logging"
	"github.com/aretw0/turing/internal/presentation/graph"
	"github.com/aretw0/turing/pkg/domain"
	"github.com/aretw0/turing/pkg/ports"
	"github.com/aretw0/turing/pkg/runner"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// DefaultMaxSteps bounds every run started through MCP.
const DefaultMaxSteps = 1_000_000

// RunArgs are the arguments of the run_machine tool.
type RunArgs struct {
	Machine  string `json:"machine"`
	Input    string `json:"input"`
	MaxSteps int    `json:"max_steps,omitempty"`
}

// RunResult provides a unified structure across adapters.
type RunResult struct {
	Machine  string        `json:"machine" jsonschema_description:"The machine that ran"`
	Accepted bool          `json:"accepted" jsonschema_description:"Whether the run halted in an accept state"`
	Status   domain.Status `json:"status" jsonschema_description:"accepted, rejected or failed"`
	Steps    int           `json:"steps" jsonschema_description:"Transitions applied"`
	Tape     string        `json:"tape" jsonschema_description:"Final tape without blank edges"`
	State    string        `json:"state" jsonschema_description:"Final state"`
	Error    string        `json:"error,omitempty" jsonschema_description:"Why the run aborted"`
	Kind     string        `json:"kind,omitempty" jsonschema_description:"Stable error kind"`
}

// GraphArgs are the arguments of the machine_graph tool.
type GraphArgs struct {
	Machine string `json:"machine"`
}

// Server exposes a machine library as an MCP Server.
type Server struct {
	machines  ports.MachineLoader
	maxSteps  int
	hooks     domain.LifecycleHooks
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures the Server.
type Option func(*Server)

// WithMaxSteps caps the step budget of every run.
func WithMaxSteps(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxSteps = n
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

// NewServer creates a new MCP Server instance.
func NewServer(machines ports.MachineLoader, opts ...Option) *Server {
	s := &Server{
		machines:  machines,
		maxSteps:  DefaultMaxSteps,
		logger:    logging.NewNop(),
		mcpServer: server.NewMCPServer("turing-mcp", strings.TrimSpace(turing.Version)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying mcp-go server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	// Channel to listen for errors coming from the listener.
	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	// TOOL: list_machines
	s.mcpServer.AddTool(mcp.NewTool("list_machines",
		mcp.WithDescription("List the names of the Turing machines that can be run."),
	), s.handleListMachines)

	// TOOL: run_machine
	runTool := mcp.NewTool("run_machine",
		mcp.WithDescription("Run a Turing machine on an input string and report whether it accepts."),
		mcp.WithString("machine", mcp.Required(), mcp.Description("Machine name, see list_machines")),
		mcp.WithString("input", mcp.Required(), mcp.Description("Tape input; every character is one cell")),
		mcp.WithNumber("max_steps", mcp.Description("Step budget (optional, capped by the server)")),
		mcp.WithOutputSchema[RunResult](),
	)
	s.mcpServer.AddTool(runTool, mcp.NewStructuredToolHandler(s.handleRunMachine))

	// TOOL: machine_graph
	s.mcpServer.AddTool(mcp.NewTool("machine_graph",
		mcp.WithDescription("Get a Mermaid flowchart of a machine's transition table."),
		mcp.WithString("machine", mcp.Required(), mcp.Description("Machine name")),
	), s.handleMachineGraph)
}

func (s *Server) handleListMachines(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	names, err := s.machines.ListMachines()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("list failed: %v", err)), nil
	}
	if names == nil {
		names = []string{}
	}
	jsonBytes, _ := json.Marshal(names)
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func (s *Server) handleMachineGraph(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args GraphArgs
	if err := request.BindArguments(&args); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
	}
	def, err := s.machines.GetMachine(args.Machine)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(graph.GenerateMermaid(def, nil)), nil
}

// handleRunMachine reports table errors and exhausted budgets in the result
// rather than failing the call, so the client sees where the run stopped.
func (s *Server) handleRunMachine(ctx context.Context, request mcp.CallToolRequest, args RunArgs) (RunResult, error) {
	clean, err := runner.SanitizeInput(args.Input)
	if err != nil {
		s.logger.Warn("MCP RunMachine: Input rejected", "error", err, "size", len(args.Input))
		return RunResult{}, fmt.Errorf("input rejected: %w", err)
	}

	def, err := s.machines.GetMachine(args.Machine)
	if err != nil {
		return RunResult{}, err
	}
	m, err := def.Compile(turing.WithLogger(s.logger), turing.WithLifecycleHooks(s.hooks))
	if err != nil {
		return RunResult{}, err
	}

	budget := s.maxSteps
	if args.MaxSteps > 0 && args.MaxSteps < budget {
		budget = args.MaxSteps
	}
	res, err := runner.New[string](runner.WithMaxSteps(budget), runner.WithLogger(s.logger)).Run(ctx, m, clean)
	if err != nil && errors.Is(err, context.Canceled) {
		return RunResult{}, err
	}

	out := RunResult{
		Machine:  args.Machine,
		Accepted: res.Accepted,
		Status:   res.Status,
		Steps:    res.Steps,
		Tape:     res.Final.Content(),
		State:    res.Final.State,
	}
	if err != nil {
		out.Status = domain.StatusFailed
		out.Error = err.Error()
		out.Kind = domain.ErrorKind(err)
	}
	return out, nil
}

func (s *Server) registerResources() {
	// EXPOSE: turing://machines
	s.mcpServer.AddResource(mcp.NewResource("turing://machines", "Machine Library",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		names, err := s.machines.ListMachines()
		if err != nil {
			return nil, fmt.Errorf("failed to list machines: %w", err)
		}
		defs := make(map[string]any, len(names))
		for _, name := range names {
			def, err := s.machines.GetMachine(name)
			if err != nil {
				return nil, fmt.Errorf("failed to load %s: %w", name, err)
			}
			defs[name] = def
		}
		jsonBytes, _ := json.Marshal(defs)

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "turing://machines",
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}

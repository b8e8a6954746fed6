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

	"github.com/aretw0/mnemo"
	"github.com/aretw0/mnemo/internal/logging"
	"github.com/aretw0/mnemo/pkg/domain"
	"github.com/aretw0/mnemo/pkg/pool"
	"github.com/aretw0/mnemo/pkg/ports"
	"github.com/aretw0/mnemo/pkg/request"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// ModelURI names the resource describing the resident base model.
const ModelURI = "mnemo://model"

// LayersResponse is the structured result of the layer_sizes tool.
type LayersResponse struct {
	Constraint string `json:"constraint" jsonschema_description:"Normalized constraint"`
	LayerSizes []int  `json:"layer_sizes" jsonschema_description:"Surviving tokens per layer, start layer first"`
	Feasible   bool   `json:"feasible" jsonschema_description:"Whether any sentence satisfies the constraint"`
}

// ModelInfo describes the resident base model.
type ModelInfo struct {
	Key       string    `json:"key"`
	Corpus    string    `json:"corpus"`
	Order     int       `json:"order"`
	Sentences int       `json:"sentences"`
	Tokens    int       `json:"tokens"`
	Edges     int       `json:"edges"`
	TrainedAt time.Time `json:"trained_at"`
}

// Engine defines what the MCP server needs from mnemo.
type Engine interface {
	Generate(ctx context.Context, c domain.Constraint, n int) (*mnemo.Result, error)
	Build(ctx context.Context, c domain.Constraint) (ports.ConstrainedModel, error)
	Base() *domain.BaseModel
}

// Server wraps the mnemo Engine and exposes it as an MCP Server.
type Server struct {
	engine    Engine
	pool      *pool.Pool
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures the Server.
type Option func(*Server)

// WithPool runs builds on p.
func WithPool(p *pool.Pool) Option {
	return func(s *Server) {
		s.pool = p
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(engine Engine, opts ...Option) *Server {
	s := &Server{
		engine:    engine,
		logger:    logging.NewNop(),
		mcpServer: server.NewMCPServer("mnemo-mcp", strings.TrimSpace(mnemo.Version)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE and stops when ctx is done.
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

		s.logger.Info("shutting down MCP server")
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

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	generateTool := mcp.NewTool("generate_mnemonic",
		mcp.WithDescription("Generate sentences whose words satisfy a positional constraint, e.g. \"t w d\" for words starting with t, w and d. Use * as a wildcard position."),
		mcp.WithString("constraint", mcp.Required(), mcp.Description("Whitespace or comma separated word prefixes")),
		mcp.WithNumber("count", mcp.Description("Number of sentences to generate (default 1)")),
		mcp.WithOutputSchema[mnemo.Result](),
	)
	s.mcpServer.AddTool(generateTool, mcp.NewStructuredToolHandler(s.handleGenerate))

	layersTool := mcp.NewTool("layer_sizes",
		mcp.WithDescription("Report how many tokens survive in each layer of the constrained chain, to diagnose infeasible constraints."),
		mcp.WithString("constraint", mcp.Required(), mcp.Description("Whitespace or comma separated word prefixes")),
		mcp.WithOutputSchema[LayersResponse](),
	)
	s.mcpServer.AddTool(layersTool, mcp.NewStructuredToolHandler(s.handleLayers))
}

func (s *Server) handleGenerate(ctx context.Context, _ mcp.CallToolRequest, args map[string]interface{}) (mnemo.Result, error) {
	raw, _ := args["constraint"].(string)
	count, _ := args["count"].(float64)

	parsed, err := request.Parse(request.Request{Constraint: raw, Count: int(count)}, request.DefaultCount)
	if err != nil {
		s.logger.Warn("MCP generate: request rejected", "err", err)
		return mnemo.Result{}, fmt.Errorf("request rejected: %w", err)
	}

	res, err := pool.Call(ctx, s.pool, func(ctx context.Context) (*mnemo.Result, error) {
		return s.engine.Generate(ctx, parsed.Constraint, parsed.Count)
	})
	if errors.Is(err, domain.ErrInfeasible) && res != nil {
		return mnemo.Result{}, fmt.Errorf("%w (layer sizes %v)", err, res.LayerSizes)
	}
	if err != nil {
		return mnemo.Result{}, fmt.Errorf("generate failed: %w", err)
	}
	return *res, nil
}

func (s *Server) handleLayers(ctx context.Context, _ mcp.CallToolRequest, args map[string]interface{}) (LayersResponse, error) {
	raw, _ := args["constraint"].(string)
	clean, err := request.Sanitize(raw)
	if err != nil {
		return LayersResponse{}, fmt.Errorf("request rejected: %w", err)
	}
	c := domain.ParseConstraint(clean)

	m, err := pool.Call(ctx, s.pool, func(ctx context.Context) (ports.ConstrainedModel, error) {
		return s.engine.Build(ctx, c)
	})
	if err != nil {
		return LayersResponse{}, fmt.Errorf("build failed: %w", err)
	}
	if !m.Trained() {
		return LayersResponse{}, domain.ErrNotTrained
	}
	return LayersResponse{
		Constraint: c.String(),
		LayerSizes: m.LayerSizes(),
		Feasible:   m.Feasible(),
	}, nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(ModelURI, "Resident base model",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		info, err := s.modelInfo()
		if err != nil {
			return nil, err
		}
		jsonBytes, _ := json.Marshal(info)

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      ModelURI,
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}

func (s *Server) modelInfo() (ModelInfo, error) {
	base := s.engine.Base()
	if !base.Trained() {
		return ModelInfo{}, domain.ErrNotTrained
	}
	return ModelInfo{
		Key:       base.Key(),
		Corpus:    base.Corpus,
		Order:     base.Order,
		Sentences: base.Sentences,
		Tokens:    len(base.Transitions),
		Edges:     base.Transitions.EdgeCount(),
		TrainedAt: base.TrainedAt,
	}, nil
}

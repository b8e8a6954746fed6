package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/mnemo"
	"github.com/aretw0/mnemo/pkg/domain"
	"github.com/aretw0/mnemo/pkg/pool"
	"github.com/aretw0/mnemo/pkg/ports"
	"github.com/aretw0/mnemo/pkg/request"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Engine is the slice of the mnemo engine the HTTP transport drives.
type Engine interface {
	Generate(ctx context.Context, c domain.Constraint, n int) (*mnemo.Result, error)
	Build(ctx context.Context, c domain.Constraint) (ports.ConstrainedModel, error)
}

// RequestRecorder counts served requests by status.
type RequestRecorder interface {
	ObserveRequest(transport, status string)
}

// Server serves generation requests over HTTP.
type Server struct {
	Engine  Engine
	Streams *StreamManager

	pool         *pool.Pool
	recorder     RequestRecorder
	gatherer     prometheus.Gatherer
	defaultCount int
	logger       *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithPool runs every build on p instead of the request goroutine.
func WithPool(p *pool.Pool) Option {
	return func(s *Server) {
		s.pool = p
	}
}

// WithRecorder counts requests.
func WithRecorder(r RequestRecorder) Option {
	return func(s *Server) {
		s.recorder = r
	}
}

// WithGatherer exposes g on /metrics.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

// WithDefaultCount sets the sentence count used when a request names none.
func WithDefaultCount(n int) Option {
	return func(s *Server) {
		s.defaultCount = n
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithStreams shares a StreamManager, typically one whose hooks feed the engine.
func WithStreams(sm *StreamManager) Option {
	return func(s *Server) {
		s.Streams = sm
	}
}

// NewHandler creates a new HTTP handler for the engine.
func NewHandler(engine Engine, opts ...Option) http.Handler {
	server := &Server{
		Engine:       engine,
		defaultCount: request.DefaultCount,
		logger:       slog.New(slog.NewJSONHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(server)
	}
	if server.Streams == nil {
		server.Streams = NewStreamManager(server.logger)
	}

	r := chi.NewRouter()
	r.Get("/health", server.GetHealth)
	r.Get("/info", server.GetInfo)
	if server.gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(server.gatherer, promhttp.HandlerOpts{}))
	}
	r.Route("/v1", func(r chi.Router) {
		r.Post("/mnemonics", server.PostMnemonics)
		r.Get("/layers", server.GetLayers)
		r.Get("/events", server.SubscribeEvents)
	})
	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error      string `json:"error"`
	LayerSizes []int  `json:"layer_sizes,omitempty"`
}

// LayersResponse is the body of GET /v1/layers.
type LayersResponse struct {
	Constraint string `json:"constraint"`
	LayerSizes []int  `json:"layer_sizes"`
	Feasible   bool   `json:"feasible"`
}

// PostMnemonics handles POST /v1/mnemonics.
func (s *Server) PostMnemonics(w http.ResponseWriter, r *http.Request) {
	var body request.Request
	if err := json.NewDecoder(io.LimitReader(r.Body, int64(request.MaxSize())+1024)).Decode(&body); err != nil {
		s.fail(w, http.StatusBadRequest, err, nil)
		s.logger.Warn("PostMnemonics: invalid request body", "err", err)
		return
	}
	parsed, err := request.Parse(body, s.defaultCount)
	if err != nil {
		s.fail(w, http.StatusBadRequest, err, nil)
		s.logger.Warn("PostMnemonics: request rejected", "err", err)
		return
	}

	res, err := pool.Call(r.Context(), s.pool, func(ctx context.Context) (*mnemo.Result, error) {
		return s.Engine.Generate(ctx, parsed.Constraint, parsed.Count)
	})
	if err != nil {
		var sizes []int
		if res != nil {
			sizes = res.LayerSizes
		}
		s.fail(w, statusFor(err), err, sizes)
		return
	}

	s.reply(w, http.StatusOK, res)
}

// GetLayers handles GET /v1/layers.
func (s *Server) GetLayers(w http.ResponseWriter, r *http.Request) {
	raw, err := request.Sanitize(r.URL.Query().Get("constraint"))
	if err != nil {
		s.fail(w, http.StatusBadRequest, err, nil)
		return
	}
	c := domain.ParseConstraint(raw)

	m, err := pool.Call(r.Context(), s.pool, func(ctx context.Context) (ports.ConstrainedModel, error) {
		return s.Engine.Build(ctx, c)
	})
	if err != nil {
		s.fail(w, statusFor(err), err, nil)
		return
	}
	if !m.Trained() {
		s.fail(w, http.StatusServiceUnavailable, domain.ErrNotTrained, nil)
		return
	}

	s.reply(w, http.StatusOK, LayersResponse{
		Constraint: c.String(),
		LayerSizes: m.LayerSizes(),
		Feasible:   m.Feasible(),
	})
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	resp := map[string]string{
		"app":     "mnemo-http",
		"version": strings.TrimSpace(mnemo.Version),
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func (s *Server) reply(w http.ResponseWriter, status int, body any) {
	s.observe(status)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error("response encode failed", "err", err)
	}
}

func (s *Server) fail(w http.ResponseWriter, status int, err error, sizes []int) {
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "status", status, "err", err)
	}
	s.reply(w, status, ErrorResponse{Error: err.Error(), LayerSizes: sizes})
}

func (s *Server) observe(status int) {
	if s.recorder != nil {
		s.recorder.ObserveRequest("http", http.StatusText(status))
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInfeasible):
		return http.StatusConflict
	case errors.Is(err, domain.ErrNotTrained), errors.Is(err, domain.ErrPoolClosed):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

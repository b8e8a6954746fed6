package http

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/aretw0/mnemo/internal/logging"
	"github.com/aretw0/mnemo/pkg/domain"
	"github.com/aretw0/mnemo/pkg/observability"
)

// BuildSummary is the payload pushed to event subscribers after every build.
type BuildSummary struct {
	Timestamp  time.Time `json:"timestamp"`
	Constraint string    `json:"constraint"`
	Outcome    string    `json:"outcome"`
	DurationMS float64   `json:"duration_ms"`
	LayerSizes []int     `json:"layer_sizes,omitempty"`
	Error      string    `json:"error,omitempty"`
}

// StreamManager fans build summaries out to SSE subscribers.
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[chan<- string]struct{}
	logger      *slog.Logger
}

func NewStreamManager(logger *slog.Logger) *StreamManager {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &StreamManager{
		subscribers: make(map[chan<- string]struct{}),
		logger:      logger,
	}
}

func (sm *StreamManager) Subscribe() (chan string, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan string, 10)
	sm.subscribers[ch] = struct{}{}

	return ch, func() {
		sm.mu.Lock()
		defer sm.mu.Unlock()
		if _, ok := sm.subscribers[ch]; ok {
			delete(sm.subscribers, ch)
			close(ch)
		}
	}
}

// Subscribers returns the number of connected clients.
func (sm *StreamManager) Subscribers() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.subscribers)
}

func (sm *StreamManager) Broadcast(msg string) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	for ch := range sm.subscribers {
		select {
		case ch <- msg:
		default:
			// Slow client.
			sm.logger.Warn("SSE: client buffer full, dropping message")
		}
	}
}

// Hooks returns build hooks that broadcast a summary of every finished build.
func (sm *StreamManager) Hooks() domain.BuildHooks {
	return domain.BuildHooks{
		OnBuild: func(_ context.Context, ev *domain.BuildEvent) {
			summary := BuildSummary{
				Timestamp:  ev.Timestamp,
				Constraint: ev.Constraint,
				Outcome:    observability.BuildOutcome(ev),
				DurationMS: float64(ev.Duration.Microseconds()) / 1000,
				LayerSizes: ev.LayerSizes,
			}
			if ev.Err != nil {
				summary.Error = ev.Err.Error()
			}
			b, err := json.Marshal(summary)
			if err != nil {
				return
			}
			sm.Broadcast(string(b))
		},
	}
}

// SubscribeEvents handles GET /v1/events (SSE).
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch, cancel := s.Streams.Subscribe()
	defer cancel()

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.logger.Debug("SSE client disconnected")
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "event: build\ndata: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

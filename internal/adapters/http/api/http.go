// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/riftscope/riftscope/internal/admission"
	service "github.com/riftscope/riftscope/internal/app"
	"github.com/riftscope/riftscope/internal/domain/progress"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Analyze streams the analysis events for one subject. The channel
	// closes after the terminal event or when ctx ends.
	Analyze(ctx context.Context, req service.Request) <-chan progress.Event

	// QueueStats exposes the admission queue snapshot.
	QueueStats() admission.Stats

	// Started reports whether the service accepts new analyses.
	Started() bool
}

// Server wires HTTP routes for the analysis API.
type Server struct {
	healthHandler  *HealthHandler
	queueHandler   *QueueHandler
	analyzeHandler *AnalyzeHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies) *Server {
	return &Server{
		healthHandler:  NewHealthHandler(),
		queueHandler:   NewQueueHandler(deps),
		analyzeHandler: NewAnalyzeHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/api/queue", MetricsMiddleware(s.queueHandler.HandleGetQueue, "queue"))
	mux.HandleFunc("/api/analyze", MetricsMiddleware(s.analyzeHandler.HandleAnalyze, "analyze"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

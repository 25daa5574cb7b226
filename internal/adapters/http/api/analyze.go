package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	service "github.com/riftscope/riftscope/internal/app"
)

// AnalyzeHandler streams analysis progress as NDJSON over one long-lived
// response.
type AnalyzeHandler struct {
	deps Dependencies
}

// NewAnalyzeHandler creates a new analyze handler.
func NewAnalyzeHandler(deps Dependencies) *AnalyzeHandler {
	return &AnalyzeHandler{deps: deps}
}

// analyzeRequest mirrors the POST /api/analyze body.
type analyzeRequest struct {
	RiotID string `json:"riotId"`
	Region string `json:"region"`
}

func (a analyzeRequest) validate() error {
	switch {
	case strings.TrimSpace(a.RiotID) == "":
		return errors.New("missing riotId")
	case !strings.Contains(a.RiotID, "#"):
		return errors.New("invalid Riot ID format")
	case strings.TrimSpace(a.Region) == "":
		return errors.New("missing region")
	}
	return nil
}

// HandleAnalyze handles POST /api/analyze requests. Malformed input fails
// with a plain JSON 400 before the request ever touches the admission queue;
// past that point all failures travel inside the stream.
func (h *AnalyzeHandler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}
	if !h.deps.Started() {
		writeError(w, http.StatusServiceUnavailable, "service_unavailable",
			errors.New("service is not accepting analyses"))
		return
	}

	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err)
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err)
		return
	}

	w.Header().Set("Content-Type", "application/x-ndjson; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache, no-transform")
	w.Header().Set("X-Accel-Buffering", "no")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	flusher, canFlush := w.(http.Flusher)
	enc := json.NewEncoder(w)

	events := h.deps.Analyze(r.Context(), service.Request{RiotID: req.RiotID, Region: req.Region})
	for ev := range events {
		if err := enc.Encode(ev); err != nil {
			// Client went away mid-write; the service observes the
			// request context and stops on its own.
			return
		}
		if canFlush {
			flusher.Flush()
		}
	}
}

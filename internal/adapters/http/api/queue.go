package api

import "net/http"

// QueueHandler serves the admission queue side channel.
type QueueHandler struct {
	deps Dependencies
}

// NewQueueHandler creates a new queue handler.
func NewQueueHandler(deps Dependencies) *QueueHandler {
	return &QueueHandler{deps: deps}
}

// HandleGetQueue handles GET /api/queue requests. Clients poll it to render
// queue depth without opening an analysis stream.
func (h *QueueHandler) HandleGetQueue(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}
	writeJSON(w, http.StatusOK, h.deps.QueueStats())
}

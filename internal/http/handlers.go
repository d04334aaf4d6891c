package http

import (
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/kjstillabower/weather-sampler/internal/lifecycle"
)

// Handler serves the sampler status endpoints.
type Handler struct {
	logger *zap.Logger
	now    func() time.Time
}

// NewHandler returns a new Handler.
func NewHandler(logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{logger: logger, now: time.Now}
}

type healthResponse struct {
	Status    string `json:"status"`
	Phase     string `json:"phase"`
	Collected int    `json:"collected"`
	Target    int    `json:"target"`
	Attempts  int    `json:"attempts"`
	Timestamp string `json:"timestamp"`
	Service   string `json:"service"`
}

// GetHealth handles GET /health. It reports run progress and returns 503 once
// shutdown has started.
func (h *Handler) GetHealth(w http.ResponseWriter, r *http.Request) {
	p := lifecycle.Snapshot()
	status, code := "healthy", http.StatusOK
	if lifecycle.IsShuttingDown() {
		status, code = "shutting-down", http.StatusServiceUnavailable
	}
	loggerFromRequest(r, h.logger).Debug("health check", zap.String("status", status), zap.String("phase", p.Phase.String()))

	writeJSON(w, code, healthResponse{
		Status:    status,
		Phase:     p.Phase.String(),
		Collected: p.Collected,
		Target:    p.Target,
		Attempts:  p.Attempts,
		Timestamp: h.now().UTC().Format(time.RFC3339),
		Service:   "weather-sampler",
	})
}

// writeJSON writes a JSON response with the specified HTTP status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

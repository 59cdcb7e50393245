package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/prodwatch/prodwatch/internal/monitor"
)

// defaultWindow is the performance window used when the query parameter is
// absent or invalid.
const defaultWindow = 60 * time.Minute

// Handler serves all /api/v1/* endpoints from a monitor instance.
type Handler struct {
	mon *monitor.Monitor
	mux *http.ServeMux
}

// New creates a Handler wired to mon and registers all routes.
func New(mon *monitor.Monitor) http.Handler {
	h := &Handler{mon: mon, mux: http.NewServeMux()}

	h.mux.HandleFunc("/api/v1/health", h.health)
	h.mux.HandleFunc("/api/v1/performance", h.performance)
	h.mux.HandleFunc("/api/v1/alerts", h.alerts)
	h.mux.HandleFunc("/api/v1/readiness", h.readiness)
	h.mux.HandleFunc("/api/v1/export", h.export)

	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// health returns GET /api/v1/health — the aggregated health status.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	jsonResp(w, http.StatusOK, h.mon.HealthStatus())
}

// performance returns GET /api/v1/performance?window=60 — the performance
// snapshot for a trailing window given in minutes.
func (h *Handler) performance(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	window := defaultWindow
	if raw := r.URL.Query().Get("window"); raw != "" {
		minutes, err := strconv.Atoi(raw)
		if err != nil || minutes <= 0 {
			jsonErr(w, http.StatusBadRequest, "window must be a positive integer of minutes")
			return
		}
		window = time.Duration(minutes) * time.Minute
	}
	jsonResp(w, http.StatusOK, h.mon.PerformanceMetrics(window))
}

// alerts returns GET /api/v1/alerts — currently active alerts, oldest first.
func (h *Handler) alerts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	jsonResp(w, http.StatusOK, h.mon.ActiveAlerts())
}

// readiness returns GET /api/v1/readiness — the production readiness report.
func (h *Handler) readiness(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	jsonResp(w, http.StatusOK, h.mon.ValidateProductionReadiness())
}

// --- helpers ----------------------------------------------------------------

func jsonResp(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func jsonErr(w http.ResponseWriter, code int, msg string) {
	jsonResp(w, code, errorResponse{Error: msg})
}

// errorResponse is a generic JSON error body.
type errorResponse struct {
	Error string `json:"error"`
}

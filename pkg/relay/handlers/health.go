package handlers

import (
	"encoding/json"
	"net/http"
	"time"
)

// HealthHandler handles health check requests for liveness probes.
type HealthHandler struct{}

// NewHealthHandler creates a new health check handler.
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

// ServeHTTP implements http.Handler for liveness checks.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().Unix(),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(response)
}

// ReadyHandler handles readiness check requests. It reports not-ready when
// the upstream probe has tripped its failure threshold.
type ReadyHandler struct {
	Upstream HealthReporter
}

// NewReadyHandler creates a new readiness check handler.
func NewReadyHandler(reporter HealthReporter) *ReadyHandler {
	return &ReadyHandler{Upstream: reporter}
}

// ServeHTTP implements http.Handler for readiness checks.
func (h *ReadyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	health := h.Upstream.Status()

	status := "ready"
	statusCode := http.StatusOK
	if !health.Healthy {
		status = "not_ready"
		statusCode = http.StatusServiceUnavailable
	}

	var lastError interface{}
	if health.LastError != nil {
		lastError = health.LastError.Error()
	}

	response := map[string]interface{}{
		"status": status,
		"upstream": map[string]interface{}{
			"healthy":              health.Healthy,
			"consecutive_failures": health.ConsecutiveFailures,
			"last_error":           lastError,
		},
		"timestamp": time.Now().Unix(),
	}

	if !health.LastCheck.IsZero() {
		response["last_check"] = health.LastCheck.Unix()
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(response)
}

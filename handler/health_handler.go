package handler

import (
	"encoding/json"
	"net/http"

	"github.com/radhian/ledger-reconciler/usecase/healthcheck"
)

// Health answers 200 for Healthy and Degraded, 503 for Unhealthy.
func (h *ReconciliationHandler) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	result := h.HealthCheck.Check(h.now())

	status := http.StatusOK
	if result.Status == healthcheck.Unhealthy {
		status = http.StatusServiceUnavailable
	}
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(result)
}

func (h *ReconciliationHandler) GetWorkerState(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(APIResponse{
		Status: "success",
		Data:   h.State.Load(),
	})
}

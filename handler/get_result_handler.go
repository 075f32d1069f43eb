package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/labstack/gommon/log"
)

func (h *ReconciliationHandler) GetReconciliationLogs(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	trackerID := r.URL.Query().Get("tracker_id")

	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed <= 0 {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(APIResponse{
				Status:  "error",
				Message: "limit must be a positive integer",
			})
			return
		}
		limit = parsed
	}

	logs, err := h.Usecase.GetReconciliationLogs(trackerID, limit)
	if err != nil {
		log.Errorf("[Handler] Failed to get reconciliation logs for tracker %q: %v", trackerID, err)
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(APIResponse{
			Status:  "error",
			Message: "Failed to get reconciliation logs",
		})
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(APIResponse{
		Status: "success",
		Data:   logs,
	})
}

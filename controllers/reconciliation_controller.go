package controllers

import (
	"github.com/radhian/ledger-reconciler/handler"

	"github.com/gorilla/mux"
)

func RegisterReconciliationRoutes(router *mux.Router, h *handler.ReconciliationHandler) {
	router.HandleFunc("/health", h.Health).Methods("GET")
	router.HandleFunc("/worker_state", h.GetWorkerState).Methods("GET")
	router.HandleFunc("/reconciliation_logs", h.GetReconciliationLogs).Methods("GET")
}

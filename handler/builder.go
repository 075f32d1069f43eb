package handler

import (
	"time"

	"github.com/radhian/ledger-reconciler/infra/workerstate"
	"github.com/radhian/ledger-reconciler/usecase/healthcheck"
	usecase "github.com/radhian/ledger-reconciler/usecase/reconciliation"
)

type ReconciliationHandler struct {
	Usecase     usecase.ReconciliationUsecase
	HealthCheck *healthcheck.HealthCheck
	State       *workerstate.State
	now         func() time.Time
}

func NewReconciliationHandler(uc usecase.ReconciliationUsecase, health *healthcheck.HealthCheck, state *workerstate.State) *ReconciliationHandler {
	return &ReconciliationHandler{Usecase: uc, HealthCheck: health, State: state, now: time.Now}
}

type APIResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

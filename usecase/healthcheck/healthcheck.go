// Package healthcheck derives the worker's reported health from its state.
package healthcheck

import (
	"fmt"
	"time"

	"github.com/radhian/ledger-reconciler/consts"
	"github.com/radhian/ledger-reconciler/infra/workerstate"
)

type Status string

const (
	Healthy   Status = "Healthy"
	Degraded  Status = "Degraded"
	Unhealthy Status = "Unhealthy"
)

type Result struct {
	Status  Status `json:"status"`
	Message string `json:"message"`
}

type StateReader interface {
	Load() workerstate.Snapshot
}

type HealthCheck struct {
	state     StateReader
	threshold time.Duration
}

func NewHealthCheck(state StateReader, threshold time.Duration) *HealthCheck {
	if threshold <= 0 {
		threshold = consts.DefaultDegradedThreshold
	}
	return &HealthCheck{state: state, threshold: threshold}
}

// Check applies the rules in order: a stopped worker is unhealthy, then any
// recorded error is unhealthy, then a stale last run is degraded.
func (h *HealthCheck) Check(now time.Time) Result {
	return Evaluate(h.state.Load(), now, h.threshold)
}

func Evaluate(snap workerstate.Snapshot, now time.Time, threshold time.Duration) Result {
	if !snap.IsRunning {
		return Result{Status: Unhealthy, Message: "Reconciliation worker is not running"}
	}
	if snap.LastErrorMessage != "" {
		return Result{Status: Unhealthy, Message: snap.LastErrorMessage}
	}
	if now.Sub(snap.LastSuccessfulRun) > threshold {
		return Result{Status: Degraded, Message: fmt.Sprintf("Reconciliation worker is stale: last successful run %s ago", now.Sub(snap.LastSuccessfulRun).Truncate(time.Second))}
	}
	return Result{Status: Healthy, Message: "Reconciliation worker is running normally"}
}

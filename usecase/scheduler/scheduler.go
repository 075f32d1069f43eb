// Package scheduler drives the reconciliation engine on a fixed period and
// owns the worker state transitions around each cycle.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/labstack/gommon/log"
	"github.com/radhian/ledger-reconciler/consts"
	"github.com/radhian/ledger-reconciler/infra/workerstate"
	"github.com/radhian/ledger-reconciler/usecase/reconciliation"
)

// Scope holds the dependencies of a single cycle. Close releases them and is
// called once the cycle ends, whatever the outcome.
type Scope struct {
	Usecase reconciliation.ReconciliationUsecase
	Close   func() error
}

type ScopeFactory func(ctx context.Context) (*Scope, error)

type ReconciliationScheduler struct {
	state    *workerstate.State
	newScope ScopeFactory
	interval time.Duration
	now      func() time.Time
	after    func(time.Duration) <-chan time.Time
}

func NewReconciliationScheduler(state *workerstate.State, newScope ScopeFactory, interval time.Duration) *ReconciliationScheduler {
	if interval <= 0 {
		interval = consts.DefaultPollInterval
	}
	return &ReconciliationScheduler{
		state:    state,
		newScope: newScope,
		interval: interval,
		now:      time.Now,
		after:    time.After,
	}
}

// Run executes a cycle immediately and then once per interval until ctx is
// cancelled or a cycle fails. Either way the worker is marked stopped and the
// cause is returned; restarting is left to the supervising process.
//
// Each cycle is due one interval after the previous one started. A cycle that
// overruns its interval delays the next one, which then starts right away.
func (s *ReconciliationScheduler) Run(ctx context.Context) error {
	log.Infof("[Scheduler] Reconciliation worker started, polling every %s", s.interval)

	for {
		started := s.now()
		if err := s.RunOnce(ctx); err != nil {
			return s.stop(ctx, err)
		}

		wait := s.interval - s.now().Sub(started)
		if wait < 0 {
			log.Warnf("[Scheduler] Cycle overran the %s interval by %s, starting the next one now", s.interval, -wait)
			wait = 0
		}

		select {
		case <-ctx.Done():
			return s.stop(ctx, ctx.Err())
		case <-s.after(wait):
		}
	}
}

// RunOnce executes exactly one cycle. A cycle without structural errors or
// isolated failures clears any previously recorded error.
func (s *ReconciliationScheduler) RunOnce(ctx context.Context) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	scope, err := s.newScope(ctx)
	if err != nil {
		err = fmt.Errorf("opening cycle scope: %w", err)
		s.state.RecordError(err.Error())
		return err
	}
	defer func() {
		if scope.Close == nil {
			return
		}
		if closeErr := scope.Close(); closeErr != nil {
			log.Warnf("[Scheduler] Failed to close cycle scope: %v", closeErr)
		}
	}()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("reconciliation cycle panicked: %v", r)
			log.Errorf("[Scheduler] %v", err)
			s.state.RecordError(err.Error())
		}
	}()

	started := s.now()
	s.state.MarkCycleStarted(started)
	log.Infof("[Scheduler] Cycle started at %s", started.UTC().Format(time.RFC3339))

	responses, err := scope.Usecase.ProcessBatch(ctx)
	if err != nil {
		return err
	}

	if !reconciliation.HasIsolatedFailures(responses) {
		s.state.ClearError()
	}
	log.Infof("[Scheduler] Cycle finished in %s, %d trackers processed", s.now().Sub(started), len(responses))
	return nil
}

func (s *ReconciliationScheduler) stop(ctx context.Context, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		cause := context.Cause(ctx)
		if cause == nil {
			cause = err
		}
		s.state.MarkStopped(fmt.Sprintf("reconciliation worker cancelled: %v", cause))
		log.Warnf("[Scheduler] Reconciliation worker cancelled: %v", cause)
		return err
	}

	s.state.MarkStopped(err.Error())
	log.Errorf("[Scheduler] Reconciliation worker stopped: %v", err)
	return err
}

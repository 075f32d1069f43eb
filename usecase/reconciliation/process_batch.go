package reconciliation

import (
	"context"
	"errors"
	"fmt"

	"github.com/labstack/gommon/log"
	"github.com/radhian/ledger-reconciler/consts"
	"github.com/radhian/ledger-reconciler/entity"
	"github.com/radhian/ledger-reconciler/usecase/command"
)

// ProcessBatch reconciles every item the source currently reports, in source
// order. Business rejections stay in the returned outcomes; structural
// failures are recorded on the worker state and returned.
func (u *reconciliationUsecase) ProcessBatch(ctx context.Context) ([]entity.TransactionTrackerResponse, error) {
	log.Infof("[ReconcileEngine] Fetching unreconciled trackers (page %d, size %d)", u.cfg.Query.PageNumber, u.cfg.Query.PageSize)

	items, err := u.source.GetUnreconciled(ctx, u.cfg.Query)
	if err != nil {
		if !errors.Is(err, entity.ErrSourceUnavailable) {
			err = fmt.Errorf("%w: %v", entity.ErrSourceUnavailable, err)
		}
		log.Errorf("[ReconcileEngine] Could not fetch unreconciled trackers: %v", err)
		u.state.RecordError(err.Error())
		return nil, err
	}

	log.Infof("[ReconcileEngine] Processing %d trackers", len(items))

	responses := make([]entity.TransactionTrackerResponse, 0, len(items))
	consecutiveFailures := 0
	for _, item := range items {
		if err := ctx.Err(); err != nil {
			log.Warnf("[ReconcileEngine] Cancelled after %d of %d trackers", len(responses), len(items))
			return responses, err
		}

		resp, err := u.reconcileItem(ctx, item)
		if err == nil {
			consecutiveFailures = 0
			responses = append(responses, resp)
			continue
		}

		if command.IsReconstructionError(err) {
			consecutiveFailures++
			responses = append(responses, resp)
			u.state.RecordError(err.Error())
			if consecutiveFailures < u.cfg.FailFastAfter {
				log.Warnf("[ReconcileEngine] Isolated tracker %s (%d/%d consecutive reconstruction failures)",
					item.ID, consecutiveFailures, u.cfg.FailFastAfter)
				continue
			}
			log.Errorf("[ReconcileEngine] Aborting cycle on tracker %s: %v", item.ID, err)
			return responses, err
		}

		log.Errorf("[ReconcileEngine] Aborting cycle on tracker %s: %v", item.ID, err)
		u.state.RecordError(err.Error())
		return responses, err
	}

	log.Infof("[ReconcileEngine] Batch done: %d trackers processed", len(responses))
	return responses, nil
}

// HasIsolatedFailures reports whether any outcome in a finished batch was a
// reconstruction failure that did not abort the cycle.
func HasIsolatedFailures(responses []entity.TransactionTrackerResponse) bool {
	for _, resp := range responses {
		if resp.Outcome == consts.OutcomeReconstructionFailed {
			return true
		}
	}
	return false
}

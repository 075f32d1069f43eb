package reconciliation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/radhian/ledger-reconciler/consts"
	"github.com/radhian/ledger-reconciler/entity"
	"github.com/radhian/ledger-reconciler/usecase/command"
)

func (u *reconciliationUsecase) reconcileItem(ctx context.Context, item entity.TransactionTracker) (entity.TransactionTrackerResponse, error) {
	if !u.acquireTracker(item.ID) {
		return u.finish(ctx, item, consts.OutcomeSkipped, consts.SeverityInformation,
			"tracker is being reconciled by another cycle"), nil
	}
	defer u.releaseTracker(item.ID)

	current, found, err := u.currentTracker(ctx, item)
	if err != nil {
		return u.response(item, consts.OutcomeSkipped, err.Error()), err
	}
	if !found {
		return u.finish(ctx, item, consts.OutcomeSkipped, consts.SeverityWarning,
			"tracker is unknown to the tracker store, nothing posted"), nil
	}

	if current.HasPassed {
		return u.finish(ctx, current, consts.OutcomeSkipped, consts.SeverityInformation,
			"tracker already reconciled, nothing to replay"), nil
	}
	if u.cfg.MaxRetry > 0 && current.NumberOfRetry >= u.cfg.MaxRetry {
		return u.finish(ctx, current, consts.OutcomeDeadLettered, consts.SeverityWarning,
			fmt.Sprintf("retry ceiling of %d reached, tracker left for manual review", u.cfg.MaxRetry)), nil
	}

	entries, err := u.lookup.GetAccountingEntriesByReference(ctx, current.TransactionReferenceID)
	if err != nil {
		err = fmt.Errorf("%w: accounting lookup for %s: %v", entity.ErrSourceUnavailable, current.TransactionReferenceID, err)
		return u.response(current, consts.OutcomeSkipped, err.Error()), err
	}

	if len(entries) > 0 {
		updated, err := u.persist(ctx, current, true)
		if err != nil {
			return u.response(current, consts.OutcomeReconciled, err.Error()), err
		}
		return u.finish(ctx, updated, consts.OutcomeReconciled, consts.SeverityInformation,
			fmt.Sprintf("accounting already holds %d entries for %s, tracker corrected", len(entries), current.TransactionReferenceID)), nil
	}

	cmd, reconstructErr := command.Reconstruct(current.ID, command.CommandDataType(current.CommandDataType), current.CommandJSONObject)
	if reconstructErr != nil {
		updated, err := u.persist(ctx, current, false)
		if err != nil {
			return u.response(current, consts.OutcomeReconstructionFailed, err.Error()), err
		}
		return u.finish(ctx, updated, consts.OutcomeReconstructionFailed, consts.SeverityError,
			reconstructErr.Error()), reconstructErr
	}

	// an in-flight dispatch is not interrupted by cancellation
	result, dispatchErr := u.bus.Dispatch(context.WithoutCancel(ctx), cmd)
	if dispatchErr != nil {
		updated, err := u.persist(ctx, current, false)
		if err != nil {
			return u.response(current, consts.OutcomeDispatchFailed, err.Error()), err
		}
		dispatchErr = fmt.Errorf("%w: dispatch of %s for tracker %s: %v", entity.ErrSourceUnavailable, cmd.DataType(), current.ID, dispatchErr)
		return u.finish(ctx, updated, consts.OutcomeDispatchFailed, consts.SeverityError, dispatchErr.Error()), dispatchErr
	}

	if !result.Succeeded {
		updated, err := u.persist(ctx, current, false)
		if err != nil {
			return u.response(current, consts.OutcomeRejected, err.Error()), err
		}
		return u.finish(ctx, updated, consts.OutcomeRejected, consts.SeverityWarning,
			fmt.Sprintf("%v: replay of %s for %s: %s", entity.ErrDispatchRejected, cmd.DataType(), current.TransactionReferenceID, result.Reason)), nil
	}

	updated, err := u.persist(ctx, current, true)
	if err != nil {
		return u.response(current, consts.OutcomeReplayed, err.Error()), err
	}
	return u.finish(ctx, updated, consts.OutcomeReplayed, consts.SeverityInformation,
		fmt.Sprintf("replayed %s for %s, accounting entries posted", cmd.DataType(), current.TransactionReferenceID)), nil
}

// currentTracker re-reads the tracker so a stale source copy cannot trigger a
// second replay. A tracker the repository cannot find could never be marked,
// so it is reported as not found and left alone.
func (u *reconciliationUsecase) currentTracker(ctx context.Context, item entity.TransactionTracker) (entity.TransactionTracker, bool, error) {
	current, err := u.trackers.GetTransactionTracker(ctx, item.ID)
	if err == nil {
		return current, true, nil
	}
	if errors.Is(err, entity.ErrRecordNotFound) {
		return item, false, nil
	}
	return item, false, fmt.Errorf("%w: %v", entity.ErrSourceUnavailable, err)
}

// persist increments the retry counter and optionally marks the tracker passed.
// The returned tracker reflects what was saved.
func (u *reconciliationUsecase) persist(ctx context.Context, tracker entity.TransactionTracker, passed bool) (entity.TransactionTracker, error) {
	update := entity.TrackerUpdate{
		ID:            tracker.ID,
		NumberOfRetry: tracker.NumberOfRetry + 1,
		HasPassed:     passed,
	}
	if passed {
		now := u.cfg.Now().UTC().Truncate(time.Second)
		update.DatePassed = &now
	}
	if err := u.trackers.UpdateTransactionTracker(ctx, update); err != nil {
		return tracker, fmt.Errorf("%w: %v", entity.ErrPersistenceFailure, err)
	}

	tracker.NumberOfRetry = update.NumberOfRetry
	tracker.HasPassed = update.HasPassed
	tracker.DatePassed = update.DatePassed
	return tracker, nil
}

func (u *reconciliationUsecase) finish(ctx context.Context, after entity.TransactionTracker, outcome, severity, message string) entity.TransactionTrackerResponse {
	u.audit.Emit(ctx, entity.AuditEntry{
		TrackerID:              after.ID,
		TransactionReferenceID: after.TransactionReferenceID,
		CommandDataType:        after.CommandDataType,
		Outcome:                outcome,
		Severity:               severity,
		Message:                message,
		Item:                   after,
	})
	return u.response(after, outcome, message)
}

func (u *reconciliationUsecase) response(after entity.TransactionTracker, outcome, message string) entity.TransactionTrackerResponse {
	return entity.TransactionTrackerResponse{
		ID:                     uuid.NewString(),
		TransactionReferenceID: after.TransactionReferenceID,
		TransactionTrackerID:   after.ID,
		CommandDataType:        after.CommandDataType,
		NumberOfRetry:          after.NumberOfRetry,
		HasPassed:              after.HasPassed,
		DatePassed:             after.DatePassed,
		Outcome:                outcome,
		Message:                message,
	}
}

package reconciliation

import (
	"context"
	"fmt"
	"sync"

	"github.com/radhian/ledger-reconciler/entity"
	"github.com/radhian/ledger-reconciler/infra/db/dao"
	"github.com/radhian/ledger-reconciler/usecase/command"
)

type fakeSource struct {
	items []entity.TransactionTracker
	err   error
	calls int
	query entity.TrackerQuery
}

func (f *fakeSource) GetUnreconciled(ctx context.Context, query entity.TrackerQuery) ([]entity.TransactionTracker, error) {
	f.calls++
	f.query = query
	if f.err != nil {
		return nil, f.err
	}
	out := make([]entity.TransactionTracker, len(f.items))
	copy(out, f.items)
	return out, nil
}

type fakeLookup struct {
	entries map[string][]entity.AccountingEntry
	err     error
	calls   int
}

func (f *fakeLookup) GetAccountingEntriesByReference(ctx context.Context, referenceID string) ([]entity.AccountingEntry, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.entries[referenceID], nil
}

type fakeBus struct {
	result     entity.DispatchResult
	err        error
	dispatched []command.PostingCommand
	ctxErrs    []error
	onDispatch func()
}

func (f *fakeBus) Dispatch(ctx context.Context, cmd command.PostingCommand) (entity.DispatchResult, error) {
	f.dispatched = append(f.dispatched, cmd)
	if f.onDispatch != nil {
		f.onDispatch()
	}
	f.ctxErrs = append(f.ctxErrs, ctx.Err())
	if f.err != nil {
		return entity.DispatchResult{}, f.err
	}
	return f.result, nil
}

type fakeTrackers struct {
	mu        sync.Mutex
	rows      map[string]entity.TransactionTracker
	updates   []entity.TrackerUpdate
	updateErr error
	getErr    error
}

func newFakeTrackers(items ...entity.TransactionTracker) *fakeTrackers {
	f := &fakeTrackers{rows: map[string]entity.TransactionTracker{}}
	for _, item := range items {
		f.rows[item.ID] = item
	}
	return f
}

func (f *fakeTrackers) GetTransactionTracker(ctx context.Context, trackerID string) (entity.TransactionTracker, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return entity.TransactionTracker{}, f.getErr
	}
	row, ok := f.rows[trackerID]
	if !ok {
		return entity.TransactionTracker{}, fmt.Errorf("tracker %s: %w", trackerID, dao.ErrRecordNotFound)
	}
	return row, nil
}

func (f *fakeTrackers) UpdateTransactionTracker(ctx context.Context, update entity.TrackerUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	row, ok := f.rows[update.ID]
	if !ok {
		return fmt.Errorf("tracker %s: %w", update.ID, dao.ErrRecordNotFound)
	}
	f.updates = append(f.updates, update)
	row.NumberOfRetry = update.NumberOfRetry
	row.HasPassed = update.HasPassed
	row.DatePassed = update.DatePassed
	f.rows[update.ID] = row
	return nil
}

func (f *fakeTrackers) get(id string) entity.TransactionTracker {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rows[id]
}

type fakeAudit struct {
	entries []entity.AuditEntry
}

func (f *fakeAudit) Emit(ctx context.Context, entry entity.AuditEntry) {
	f.entries = append(f.entries, entry)
}

type fakeState struct {
	messages []string
}

func (f *fakeState) RecordError(message string) {
	f.messages = append(f.messages, message)
}

func (f *fakeState) last() string {
	if len(f.messages) == 0 {
		return ""
	}
	return f.messages[len(f.messages)-1]
}

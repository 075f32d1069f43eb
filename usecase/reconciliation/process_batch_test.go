package reconciliation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/radhian/ledger-reconciler/consts"
	"github.com/radhian/ledger-reconciler/entity"
	"github.com/radhian/ledger-reconciler/infra/db/dao"
	"github.com/radhian/ledger-reconciler/infra/locker"
	"github.com/radhian/ledger-reconciler/usecase/command"
	"github.com/shopspring/decimal"
)

var fixedNow = time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC)

const transferPayload = `{"transactionReferenceId":"TRX2","fromAccountNumber":"M-1","toAccountNumber":"M-2","amount":"250","fee":"0","currency":"XAF"}`

func strPtr(s string) *string { return &s }

func tracker(id, ref, dataType string, payload *string, retries int) entity.TransactionTracker {
	return entity.TransactionTracker{
		ID:                     id,
		TransactionReferenceID: ref,
		CommandDataType:        dataType,
		CommandJSONObject:      payload,
		NumberOfRetry:          retries,
	}
}

type harness struct {
	source   *fakeSource
	lookup   *fakeLookup
	bus      *fakeBus
	trackers *fakeTrackers
	audit    *fakeAudit
	state    *fakeState
	locker   *locker.Locker
	cfg      Config
}

func newHarness(items ...entity.TransactionTracker) *harness {
	return &harness{
		source:   &fakeSource{items: items},
		lookup:   &fakeLookup{entries: map[string][]entity.AccountingEntry{}},
		bus:      &fakeBus{result: entity.DispatchResult{Succeeded: true}},
		trackers: newFakeTrackers(items...),
		audit:    &fakeAudit{},
		state:    &fakeState{},
		locker:   locker.New(),
		cfg:      Config{Now: func() time.Time { return fixedNow }},
	}
}

func (h *harness) usecase() ReconciliationUsecase {
	return NewReconciliationUsecase(h.cfg, Dependencies{
		Source:   h.source,
		Lookup:   h.lookup,
		Bus:      h.bus,
		Trackers: h.trackers,
		Audit:    h.audit,
		State:    h.state,
		Locker:   h.locker,
	})
}

func TestAlreadyPostedTrackerIsCorrectedWithoutDispatch(t *testing.T) {
	h := newHarness(tracker("t-1", "TRX1", string(command.AddTransferEventCommand), strPtr(transferPayload), 2))
	h.lookup.entries["TRX1"] = []entity.AccountingEntry{{ID: "e-1", TransactionReferenceID: "TRX1"}}

	responses, err := h.usecase().ProcessBatch(context.Background())
	if err != nil {
		t.Fatalf("process batch: %v", err)
	}
	if len(h.bus.dispatched) != 0 {
		t.Fatalf("dispatch calls = %d, want 0", len(h.bus.dispatched))
	}
	got := h.trackers.get("t-1")
	if !got.HasPassed || got.NumberOfRetry != 3 {
		t.Fatalf("tracker = %+v, want passed with 3 retries", got)
	}
	if got.DatePassed == nil || !got.DatePassed.Equal(fixedNow) {
		t.Fatalf("date passed = %v, want %v", got.DatePassed, fixedNow)
	}
	if len(responses) != 1 || responses[0].Outcome != consts.OutcomeReconciled {
		t.Fatalf("responses = %+v", responses)
	}
	if !strings.Contains(responses[0].Message, "already") {
		t.Fatalf("message = %q, want already-reconciled wording", responses[0].Message)
	}
	if responses[0].TransactionTrackerID != "t-1" || responses[0].ID == "" {
		t.Fatalf("response ids = %+v", responses[0])
	}
}

func TestReconciliationIsIdempotentAcrossCycles(t *testing.T) {
	h := newHarness(tracker("t-1", "TRX1", string(command.AddTransferEventCommand), strPtr(transferPayload), 0))
	h.lookup.entries["TRX1"] = []entity.AccountingEntry{{ID: "e-1"}}
	uc := h.usecase()

	for i := 0; i < 2; i++ {
		if _, err := uc.ProcessBatch(context.Background()); err != nil {
			t.Fatalf("cycle %d: %v", i, err)
		}
	}
	if len(h.trackers.updates) != 1 {
		t.Fatalf("tracker writes = %d, want 1", len(h.trackers.updates))
	}
	if len(h.bus.dispatched) != 0 {
		t.Fatalf("dispatch calls = %d, want 0", len(h.bus.dispatched))
	}
}

func TestReplaySucceeds(t *testing.T) {
	h := newHarness(tracker("t-2", "TRX2", string(command.AddTransferEventCommand), strPtr(transferPayload), 0))

	responses, err := h.usecase().ProcessBatch(context.Background())
	if err != nil {
		t.Fatalf("process batch: %v", err)
	}
	if len(h.bus.dispatched) != 1 {
		t.Fatalf("dispatch calls = %d, want 1", len(h.bus.dispatched))
	}
	transfer, ok := h.bus.dispatched[0].(*command.TransferToMember)
	if !ok {
		t.Fatalf("dispatched %T, want *command.TransferToMember", h.bus.dispatched[0])
	}
	if transfer.TransactionReferenceID != "TRX2" || !transfer.Amount.Equal(decimal.NewFromInt(250)) {
		t.Fatalf("dispatched command = %+v", transfer)
	}
	got := h.trackers.get("t-2")
	if !got.HasPassed || got.NumberOfRetry != 1 {
		t.Fatalf("tracker = %+v, want passed with 1 retry", got)
	}
	if responses[0].Outcome != consts.OutcomeReplayed || !responses[0].HasPassed {
		t.Fatalf("response = %+v", responses[0])
	}
	if len(h.audit.entries) != 1 || h.audit.entries[0].Severity != consts.SeverityInformation {
		t.Fatalf("audit = %+v", h.audit.entries)
	}
}

func TestRejectedReplayStaysEligible(t *testing.T) {
	h := newHarness(tracker("t-2", "TRX2", string(command.AddTransferEventCommand), strPtr(transferPayload), 4))
	h.bus.result = entity.DispatchResult{Succeeded: false, Reason: "insufficient funds"}

	responses, err := h.usecase().ProcessBatch(context.Background())
	if err != nil {
		t.Fatalf("process batch: %v", err)
	}
	got := h.trackers.get("t-2")
	if got.HasPassed || got.NumberOfRetry != 5 {
		t.Fatalf("tracker = %+v, want not passed with 5 retries", got)
	}
	if got.DatePassed != nil {
		t.Fatalf("date passed = %v, want nil", got.DatePassed)
	}
	if responses[0].Outcome != consts.OutcomeRejected || !strings.Contains(responses[0].Message, "insufficient funds") {
		t.Fatalf("response = %+v", responses[0])
	}
	if h.audit.entries[0].Severity != consts.SeverityWarning {
		t.Fatalf("severity = %s, want Warning", h.audit.entries[0].Severity)
	}
	if len(h.state.messages) != 0 {
		t.Fatalf("state errors = %v, want none for a business rejection", h.state.messages)
	}
}

func TestRetryCountGrowsOncePerCycle(t *testing.T) {
	h := newHarness(tracker("t-2", "TRX2", string(command.AddTransferEventCommand), strPtr(transferPayload), 7))
	h.bus.result = entity.DispatchResult{Reason: "account frozen"}
	uc := h.usecase()

	const cycles = 3
	for i := 0; i < cycles; i++ {
		if _, err := uc.ProcessBatch(context.Background()); err != nil {
			t.Fatalf("cycle %d: %v", i, err)
		}
	}
	if got := h.trackers.get("t-2").NumberOfRetry; got != 7+cycles {
		t.Fatalf("retries = %d, want %d", got, 7+cycles)
	}
	if len(h.bus.dispatched) != cycles {
		t.Fatalf("dispatch calls = %d, want %d", len(h.bus.dispatched), cycles)
	}
}

func TestPassedTrackerIsNeverReplayed(t *testing.T) {
	stale := tracker("t-3", "TRX3", string(command.AddTransferEventCommand), strPtr(transferPayload), 1)
	h := newHarness(stale)
	passed := stale
	passed.HasPassed = true
	h.trackers.rows["t-3"] = passed

	responses, err := h.usecase().ProcessBatch(context.Background())
	if err != nil {
		t.Fatalf("process batch: %v", err)
	}
	if len(h.bus.dispatched) != 0 || h.lookup.calls != 0 {
		t.Fatalf("dispatch=%d lookup=%d, want 0 and 0", len(h.bus.dispatched), h.lookup.calls)
	}
	if len(h.trackers.updates) != 0 {
		t.Fatalf("tracker writes = %d, want 0", len(h.trackers.updates))
	}
	if responses[0].Outcome != consts.OutcomeSkipped {
		t.Fatalf("outcome = %s, want skipped", responses[0].Outcome)
	}
}

func TestNullPayloadAbortsCycle(t *testing.T) {
	h := newHarness(
		tracker("t-null", "TRX4", string(command.AddTransferEventCommand), nil, 0),
		tracker("t-next", "TRX5", string(command.AddTransferEventCommand), strPtr(transferPayload), 0),
	)

	responses, err := h.usecase().ProcessBatch(context.Background())
	if !errors.Is(err, command.ErrMissingPayload) {
		t.Fatalf("err = %v, want ErrMissingPayload", err)
	}
	if len(responses) != 1 {
		t.Fatalf("responses = %d, want 1 (second item never started)", len(responses))
	}
	if len(h.bus.dispatched) != 0 {
		t.Fatalf("dispatch calls = %d, want 0", len(h.bus.dispatched))
	}
	msg := h.state.last()
	if !strings.Contains(msg, "t-null") || !strings.Contains(msg, "null") || !strings.Contains(msg, string(command.AddTransferEventCommand)) {
		t.Fatalf("state error = %q, want tracker id, data type and null", msg)
	}
	if got := h.trackers.get("t-null").NumberOfRetry; got != 1 {
		t.Fatalf("retries = %d, want 1", got)
	}
	if h.audit.entries[0].Severity != consts.SeverityError {
		t.Fatalf("severity = %s, want Error", h.audit.entries[0].Severity)
	}
}

func TestReconstructionFailuresAreIsolatedBelowThreshold(t *testing.T) {
	bad := func(id string) entity.TransactionTracker {
		return tracker(id, "REF-"+id, "NotARealCommand", strPtr(`{}`), 0)
	}
	good := tracker("good", "TRX2", string(command.AddTransferEventCommand), strPtr(transferPayload), 0)

	h := newHarness(bad("b1"), good, bad("b2"), bad("b3"))
	h.cfg.FailFastAfter = 2

	responses, err := h.usecase().ProcessBatch(context.Background())
	if !errors.Is(err, command.ErrUnknownCommandType) {
		t.Fatalf("err = %v, want ErrUnknownCommandType", err)
	}
	if len(responses) != 4 {
		t.Fatalf("responses = %d, want 4", len(responses))
	}
	if len(h.bus.dispatched) != 1 {
		t.Fatalf("dispatch calls = %d, want 1", len(h.bus.dispatched))
	}

	h2 := newHarness(bad("b1"), bad("b2"))
	h2.cfg.FailFastAfter = 3
	responses, err = h2.usecase().ProcessBatch(context.Background())
	if err != nil {
		t.Fatalf("process batch: %v", err)
	}
	if !HasIsolatedFailures(responses) {
		t.Fatal("expected isolated failures to be reported")
	}
	if h2.state.last() == "" {
		t.Fatal("expected diagnostic on worker state")
	}
}

func TestSourceFailureIsStructural(t *testing.T) {
	h := newHarness()
	h.source.err = errors.New("connection refused")

	_, err := h.usecase().ProcessBatch(context.Background())
	if !errors.Is(err, entity.ErrSourceUnavailable) {
		t.Fatalf("err = %v, want ErrSourceUnavailable", err)
	}
	if !strings.Contains(h.state.last(), "connection refused") {
		t.Fatalf("state error = %q", h.state.last())
	}
}

func TestLookupAndDispatchFailuresAreStructural(t *testing.T) {
	h := newHarness(tracker("t-2", "TRX2", string(command.AddTransferEventCommand), strPtr(transferPayload), 0))
	h.lookup.err = errors.New("accounting down")
	if _, err := h.usecase().ProcessBatch(context.Background()); !errors.Is(err, entity.ErrSourceUnavailable) {
		t.Fatalf("lookup err = %v, want ErrSourceUnavailable", err)
	}

	h = newHarness(tracker("t-2", "TRX2", string(command.AddTransferEventCommand), strPtr(transferPayload), 0))
	h.bus.err = errors.New("broken pipe")
	_, err := h.usecase().ProcessBatch(context.Background())
	if !errors.Is(err, entity.ErrSourceUnavailable) {
		t.Fatalf("dispatch err = %v, want ErrSourceUnavailable", err)
	}
	if got := h.trackers.get("t-2"); got.HasPassed || got.NumberOfRetry != 1 {
		t.Fatalf("tracker = %+v, want not passed with 1 retry", got)
	}
	if len(h.audit.entries) != 1 || h.audit.entries[0].Outcome != consts.OutcomeDispatchFailed {
		t.Fatalf("audit = %+v", h.audit.entries)
	}
}

func TestPersistenceFailureNeverReportsReconciled(t *testing.T) {
	h := newHarness(tracker("t-2", "TRX2", string(command.AddTransferEventCommand), strPtr(transferPayload), 0))
	h.trackers.updateErr = errors.New("disk full")

	responses, err := h.usecase().ProcessBatch(context.Background())
	if !errors.Is(err, entity.ErrPersistenceFailure) {
		t.Fatalf("err = %v, want ErrPersistenceFailure", err)
	}
	if len(responses) != 0 {
		t.Fatalf("responses = %+v, want none for an aborted item", responses)
	}
	if len(h.audit.entries) != 0 {
		t.Fatalf("audit = %+v, want nothing emitted", h.audit.entries)
	}
}

func TestRetryCeilingDeadLetters(t *testing.T) {
	h := newHarness(tracker("t-2", "TRX2", string(command.AddTransferEventCommand), strPtr(transferPayload), 3))
	h.cfg.MaxRetry = 3

	responses, err := h.usecase().ProcessBatch(context.Background())
	if err != nil {
		t.Fatalf("process batch: %v", err)
	}
	if responses[0].Outcome != consts.OutcomeDeadLettered {
		t.Fatalf("outcome = %s, want dead_lettered", responses[0].Outcome)
	}
	if h.source.query.MaxRetry != 3 {
		t.Fatalf("source query MaxRetry = %d, want 3", h.source.query.MaxRetry)
	}
	if len(h.bus.dispatched) != 0 || len(h.trackers.updates) != 0 {
		t.Fatalf("dispatch=%d writes=%d, want 0 and 0", len(h.bus.dispatched), len(h.trackers.updates))
	}
}

func TestCancellationStopsBeforeNextItem(t *testing.T) {
	h := newHarness(tracker("t-2", "TRX2", string(command.AddTransferEventCommand), strPtr(transferPayload), 0))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	responses, err := h.usecase().ProcessBatch(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if len(responses) != 0 || len(h.bus.dispatched) != 0 {
		t.Fatalf("responses=%d dispatch=%d, want nothing started", len(responses), len(h.bus.dispatched))
	}
}

func TestTrackerInFlightElsewhereIsSkipped(t *testing.T) {
	h := newHarness(tracker("t-2", "TRX2", string(command.AddTransferEventCommand), strPtr(transferPayload), 0))
	h.locker.TryLock("t-2")

	responses, err := h.usecase().ProcessBatch(context.Background())
	if err != nil {
		t.Fatalf("process batch: %v", err)
	}
	if responses[0].Outcome != consts.OutcomeSkipped || len(h.bus.dispatched) != 0 {
		t.Fatalf("response = %+v dispatch = %d", responses[0], len(h.bus.dispatched))
	}
	if h.trackers.get("t-2").NumberOfRetry != 0 {
		t.Fatal("expected retry count untouched")
	}
}

func TestUnknownTrackerIsSkippedWithoutDispatch(t *testing.T) {
	h := newHarness(tracker("t-2", "TRX2", string(command.AddTransferEventCommand), strPtr(transferPayload), 0))
	delete(h.trackers.rows, "t-2")

	responses, err := h.usecase().ProcessBatch(context.Background())
	if err != nil {
		t.Fatalf("process batch: %v", err)
	}
	if len(h.bus.dispatched) != 0 || h.lookup.calls != 0 {
		t.Fatalf("dispatch=%d lookup=%d, want nothing touched", len(h.bus.dispatched), h.lookup.calls)
	}
	if len(responses) != 1 || responses[0].Outcome != consts.OutcomeSkipped {
		t.Fatalf("responses = %+v", responses)
	}
	if len(h.audit.entries) != 1 || h.audit.entries[0].Severity != consts.SeverityWarning {
		t.Fatalf("audit = %+v", h.audit.entries)
	}
}

func TestPersistenceFailureNamesTrackerOnce(t *testing.T) {
	h := newHarness(tracker("t-2", "TRX2", string(command.AddTransferEventCommand), strPtr(transferPayload), 0))
	h.trackers.updateErr = fmt.Errorf("tracker t-2: %w", dao.ErrRecordNotFound)

	_, err := h.usecase().ProcessBatch(context.Background())
	if !errors.Is(err, entity.ErrPersistenceFailure) {
		t.Fatalf("err = %v, want ErrPersistenceFailure", err)
	}
	if n := strings.Count(err.Error(), "t-2"); n != 1 {
		t.Fatalf("err = %q names the tracker %d times, want 1", err, n)
	}
}

func TestCancellationDuringDispatchLetsItFinish(t *testing.T) {
	second := tracker("t-5", "TRX5", string(command.AddTransferEventCommand), strPtr(strings.Replace(transferPayload, "TRX2", "TRX5", 1)), 0)
	h := newHarness(tracker("t-2", "TRX2", string(command.AddTransferEventCommand), strPtr(transferPayload), 0), second)
	ctx, cancel := context.WithCancel(context.Background())
	h.bus.onDispatch = cancel

	responses, err := h.usecase().ProcessBatch(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if len(h.bus.dispatched) != 1 || h.bus.ctxErrs[0] != nil {
		t.Fatalf("dispatch=%d ctxErr=%v, want one uncancelled dispatch", len(h.bus.dispatched), h.bus.ctxErrs)
	}
	if len(responses) != 1 || responses[0].Outcome != consts.OutcomeReplayed {
		t.Fatalf("responses = %+v", responses)
	}
	if !h.trackers.get("t-2").HasPassed {
		t.Fatal("expected first tracker to be committed")
	}
}

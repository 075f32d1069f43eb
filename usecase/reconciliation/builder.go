package reconciliation

import (
	"context"
	"time"

	"github.com/radhian/ledger-reconciler/consts"
	"github.com/radhian/ledger-reconciler/entity"
	"github.com/radhian/ledger-reconciler/infra/db/model"
	"github.com/radhian/ledger-reconciler/infra/locker"
	"github.com/radhian/ledger-reconciler/usecase/command"
)

type ItemSource interface {
	GetUnreconciled(ctx context.Context, query entity.TrackerQuery) ([]entity.TransactionTracker, error)
}

type AccountingLookup interface {
	GetAccountingEntriesByReference(ctx context.Context, referenceID string) ([]entity.AccountingEntry, error)
}

type CommandBus interface {
	Dispatch(ctx context.Context, cmd command.PostingCommand) (entity.DispatchResult, error)
}

type TrackerRepository interface {
	GetTransactionTracker(ctx context.Context, trackerID string) (entity.TransactionTracker, error)
	UpdateTransactionTracker(ctx context.Context, update entity.TrackerUpdate) error
}

// AuditSink receives every per-item outcome. Emit must not fail the caller.
type AuditSink interface {
	Emit(ctx context.Context, entry entity.AuditEntry)
}

type StateRecorder interface {
	RecordError(message string)
}

type AuditLogReader interface {
	GetReconciliationAuditLogs(trackerID string, limit int) ([]model.ReconciliationAuditLog, error)
}

type ReconciliationUsecase interface {
	ProcessBatch(ctx context.Context) ([]entity.TransactionTrackerResponse, error)
	GetReconciliationLogs(trackerID string, limit int) ([]entity.ReconciliationLog, error)
}

type Config struct {
	Query entity.TrackerQuery
	// MaxRetry of zero leaves retries unbounded.
	MaxRetry int
	// FailFastAfter is the number of consecutive reconstruction failures that
	// abort the cycle.
	FailFastAfter int
	Now           func() time.Time
}

type Dependencies struct {
	Source    ItemSource
	Lookup    AccountingLookup
	Bus       CommandBus
	Trackers  TrackerRepository
	Audit     AuditSink
	State     StateRecorder
	Locker    *locker.Locker
	AuditLogs AuditLogReader
}

type reconciliationUsecase struct {
	cfg       Config
	source    ItemSource
	lookup    AccountingLookup
	bus       CommandBus
	trackers  TrackerRepository
	audit     AuditSink
	state     StateRecorder
	locker    *locker.Locker
	auditLogs AuditLogReader
}

func NewReconciliationUsecase(cfg Config, deps Dependencies) ReconciliationUsecase {
	if cfg.FailFastAfter <= 0 {
		cfg.FailFastAfter = consts.DefaultFailFastAfter
	}
	if cfg.MaxRetry < 0 {
		cfg.MaxRetry = consts.DefaultMaxRetry
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Query.PageNumber <= 0 {
		cfg.Query.PageNumber = consts.DefaultPageNumber
	}
	if cfg.Query.PageSize <= 0 {
		cfg.Query.PageSize = consts.DefaultPageSize
	}
	cfg.Query.MaxRetry = cfg.MaxRetry
	if deps.Locker == nil {
		deps.Locker = locker.New()
	}
	return &reconciliationUsecase{
		cfg:       cfg,
		source:    deps.Source,
		lookup:    deps.Lookup,
		bus:       deps.Bus,
		trackers:  deps.Trackers,
		audit:     deps.Audit,
		state:     deps.State,
		locker:    deps.Locker,
		auditLogs: deps.AuditLogs,
	}
}

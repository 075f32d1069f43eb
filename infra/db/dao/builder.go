package dao

import (
	"github.com/radhian/ledger-reconciler/entity"
	"github.com/radhian/ledger-reconciler/infra/db/model"

	"github.com/jinzhu/gorm"
)

var ErrRecordNotFound = entity.ErrRecordNotFound

type DaoMethod interface {
	GetTransactionTrackerByID(trackerID string) (model.TransactionTracker, error)
	GetUnreconciledTransactionTrackers(query entity.TrackerQuery) ([]model.TransactionTracker, error)
	CreateTransactionTracker(payload *model.TransactionTracker) error
	UpdateTransactionTracker(update entity.TrackerUpdate) error

	GetAccountingEntriesByReference(referenceID string) ([]model.AccountingEntry, error)
	GetAccountingEntriesByAccount(accountNumber string) ([]model.AccountingEntry, error)
	CreateAccountingEntries(entries []model.AccountingEntry) error

	CreateReconciliationAuditLog(payload model.ReconciliationAuditLog) error
	GetReconciliationAuditLogs(trackerID string, limit int) ([]model.ReconciliationAuditLog, error)

	ExecTx(fn func(DaoMethod) error) error
}

type dao struct {
	db *gorm.DB
}

func NewDaoMethod(db *gorm.DB) DaoMethod {
	return &dao{db: db}
}

// ExecTx runs fn against a DAO bound to a single database transaction.
func (d *dao) ExecTx(fn func(DaoMethod) error) error {
	return d.db.Transaction(func(tx *gorm.DB) error {
		return fn(&dao{db: tx})
	})
}

// AutoMigrate creates or updates every table the worker touches.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.TransactionTracker{},
		&model.AccountingEntry{},
		&model.ReconciliationAuditLog{},
	).Error
}

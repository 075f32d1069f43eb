package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountingEntry is one posted line on the accounting side.
type AccountingEntry struct {
	ID                     string
	TransactionReferenceID string
	AccountNumber          string
	Direction              string
	Amount                 decimal.Decimal
	Currency               string
	Narration              string
	PostedAt               time.Time
}

// AuditEntry is a per-item outcome handed to the audit sink.
type AuditEntry struct {
	TrackerID              string
	TransactionReferenceID string
	CommandDataType        string
	Outcome                string
	Severity               string
	Message                string
	Item                   TransactionTracker
}

type ReconciliationLog struct {
	ID                     string    `json:"id"`
	TransactionTrackerID   string    `json:"transaction_tracker_id"`
	TransactionReferenceID string    `json:"transaction_reference_id"`
	CommandDataType        string    `json:"command_data_type"`
	Outcome                string    `json:"outcome"`
	Severity               string    `json:"severity"`
	Message                string    `json:"message"`
	Item                   string    `json:"item"`
	CreatedAt              time.Time `json:"created_at"`
}

// DispatchResult is the accounting command bus's verdict on one command. A
// false Succeeded is a business rejection, not a transport failure.
type DispatchResult struct {
	Succeeded bool
	Reason    string
}

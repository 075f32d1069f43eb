package entity

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/radhian/ledger-reconciler/consts"
)

// TransactionTracker is one ledger-side transaction waiting to be confirmed in accounting.
type TransactionTracker struct {
	ID                     string     `json:"id"`
	TransactionReferenceID string     `json:"transactionReferenceId"`
	CommandDataType        string     `json:"commandDataType"`
	CommandJSONObject      *string    `json:"commandJsonObject"`
	NumberOfRetry          int        `json:"numberOfRetry"`
	HasPassed              bool       `json:"hasPassed"`
	DatePassed             *time.Time `json:"datePassed,omitempty"`
}

// TrackerUpdate is the only write the reconciliation engine performs against a tracker.
type TrackerUpdate struct {
	ID            string
	NumberOfRetry int
	HasPassed     bool
	DatePassed    *time.Time
}

type TransactionTrackerResponse struct {
	ID                     string     `json:"id"`
	TransactionReferenceID string     `json:"transactionReferenceId"`
	TransactionTrackerID   string     `json:"transactionTrackerId"`
	CommandDataType        string     `json:"commandDataType"`
	NumberOfRetry          int        `json:"numberOfRetry"`
	HasPassed              bool       `json:"hasPassed"`
	DatePassed             *time.Time `json:"datePassed,omitempty"`
	Outcome                string     `json:"outcome"`
	Message                string     `json:"message"`
}

// TrackerQuery holds the paging/filter parameters sent to the item source.
type TrackerQuery struct {
	PageNumber int        `json:"pageNumber"`
	PageSize   int        `json:"pageSize"`
	FromDate   *time.Time `json:"fromDate,omitempty"`
	ToDate     *time.Time `json:"toDate,omitempty"`
	// MaxRetry excludes trackers that already reached the retry ceiling. Zero
	// keeps every unresolved tracker.
	MaxRetry int `json:"-"`
}

// ParseTrackerQuery decodes the serialized filter blob from worker configuration.
func ParseTrackerQuery(blob string) (TrackerQuery, error) {
	query := TrackerQuery{
		PageNumber: consts.DefaultPageNumber,
		PageSize:   consts.DefaultPageSize,
	}
	if strings.TrimSpace(blob) == "" {
		return query, nil
	}
	if err := json.Unmarshal([]byte(blob), &query); err != nil {
		return TrackerQuery{}, fmt.Errorf("failed to parse item source query: %w", err)
	}
	if query.PageNumber <= 0 {
		query.PageNumber = consts.DefaultPageNumber
	}
	if query.PageSize <= 0 {
		query.PageSize = consts.DefaultPageSize
	}
	if query.FromDate != nil && query.ToDate != nil && query.ToDate.Before(*query.FromDate) {
		return TrackerQuery{}, fmt.Errorf("item source query toDate must not be before fromDate")
	}
	return query, nil
}

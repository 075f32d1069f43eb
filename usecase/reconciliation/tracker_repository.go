package reconciliation

import (
	"context"
	"time"

	"github.com/radhian/ledger-reconciler/entity"
	"github.com/radhian/ledger-reconciler/infra/db/dao"
	"github.com/radhian/ledger-reconciler/infra/db/model"
)

type trackerRepository struct {
	dao dao.DaoMethod
}

// NewTrackerRepository persists tracker updates through the DAO.
func NewTrackerRepository(d dao.DaoMethod) TrackerRepository {
	return &trackerRepository{dao: d}
}

func (r *trackerRepository) GetTransactionTracker(ctx context.Context, trackerID string) (entity.TransactionTracker, error) {
	if err := ctx.Err(); err != nil {
		return entity.TransactionTracker{}, err
	}
	row, err := r.dao.GetTransactionTrackerByID(trackerID)
	if err != nil {
		return entity.TransactionTracker{}, err
	}
	return toTracker(row), nil
}

func (r *trackerRepository) UpdateTransactionTracker(ctx context.Context, update entity.TrackerUpdate) error {
	return r.dao.UpdateTransactionTracker(update)
}

type databaseItemSource struct {
	dao dao.DaoMethod
}

// NewDatabaseItemSource reads unreconciled trackers straight from the tracker table.
func NewDatabaseItemSource(d dao.DaoMethod) ItemSource {
	return &databaseItemSource{dao: d}
}

func (s *databaseItemSource) GetUnreconciled(ctx context.Context, query entity.TrackerQuery) ([]entity.TransactionTracker, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rows, err := s.dao.GetUnreconciledTransactionTrackers(query)
	if err != nil {
		return nil, err
	}
	trackers := make([]entity.TransactionTracker, 0, len(rows))
	for _, row := range rows {
		trackers = append(trackers, toTracker(row))
	}
	return trackers, nil
}

func toTracker(row model.TransactionTracker) entity.TransactionTracker {
	tracker := entity.TransactionTracker{
		ID:                     row.ID,
		TransactionReferenceID: row.TransactionReferenceID,
		CommandDataType:        row.CommandDataType,
		CommandJSONObject:      row.CommandJSONObject,
		NumberOfRetry:          row.NumberOfRetry,
		HasPassed:              row.HasPassed,
	}
	if row.DatePassed > 0 {
		datePassed := time.Unix(row.DatePassed, 0).UTC()
		tracker.DatePassed = &datePassed
	}
	return tracker
}

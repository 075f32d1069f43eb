package dao

import (
	"fmt"
	"time"

	"github.com/radhian/ledger-reconciler/consts"
	"github.com/radhian/ledger-reconciler/entity"
	"github.com/radhian/ledger-reconciler/infra/db/model"

	"github.com/jinzhu/gorm"
)

func (d *dao) GetTransactionTrackerByID(trackerID string) (model.TransactionTracker, error) {
	var tracker model.TransactionTracker
	if err := d.db.Where("id = ?", trackerID).First(&tracker).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return tracker, fmt.Errorf("tracker %s: %w", trackerID, ErrRecordNotFound)
		}
		return tracker, fmt.Errorf("failed to get tracker %s: %w", trackerID, err)
	}
	return tracker, nil
}

func (d *dao) GetUnreconciledTransactionTrackers(query entity.TrackerQuery) ([]model.TransactionTracker, error) {
	var trackers []model.TransactionTracker

	scope := d.db.Where("has_passed = ?", false)
	if query.FromDate != nil {
		scope = scope.Where("create_time >= ?", query.FromDate.Unix())
	}
	if query.ToDate != nil {
		scope = scope.Where("create_time <= ?", query.ToDate.Unix())
	}
	if query.MaxRetry > 0 {
		scope = scope.Where("number_of_retry < ?", query.MaxRetry)
	}

	offset := (query.PageNumber - 1) * query.PageSize
	if err := scope.
		Order("create_time ASC").
		Order("id ASC").
		Offset(offset).
		Limit(query.PageSize).
		Find(&trackers).Error; err != nil {
		return nil, fmt.Errorf("failed to list unreconciled trackers: %w", err)
	}
	return trackers, nil
}

func (d *dao) CreateTransactionTracker(payload *model.TransactionTracker) error {
	now := time.Now().Unix()
	if payload.CreateTime == 0 {
		payload.CreateTime = now
	}
	payload.UpdateTime = now
	if payload.UpdateBy == "" {
		payload.UpdateBy = consts.SystemOperator
	}
	if err := d.db.Create(payload).Error; err != nil {
		return fmt.Errorf("failed to create tracker: %w", err)
	}
	return nil
}

func (d *dao) UpdateTransactionTracker(update entity.TrackerUpdate) error {
	var datePassed int64
	if update.DatePassed != nil {
		datePassed = update.DatePassed.Unix()
	}

	res := d.db.Model(&model.TransactionTracker{}).
		Where("id = ?", update.ID).
		Updates(map[string]interface{}{
			"number_of_retry": update.NumberOfRetry,
			"has_passed":      update.HasPassed,
			"date_passed":     datePassed,
			"update_time":     time.Now().Unix(),
			"update_by":       consts.SystemOperator,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to update tracker %s: %w", update.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("tracker %s: %w", update.ID, ErrRecordNotFound)
	}
	return nil
}

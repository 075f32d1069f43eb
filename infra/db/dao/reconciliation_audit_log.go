package dao

import (
	"fmt"

	"github.com/radhian/ledger-reconciler/infra/db/model"
)

func (d *dao) CreateReconciliationAuditLog(payload model.ReconciliationAuditLog) error {
	if err := d.db.Create(&payload).Error; err != nil {
		return fmt.Errorf("failed to save audit log: %v", err)
	}
	return nil
}

func (d *dao) GetReconciliationAuditLogs(trackerID string, limit int) ([]model.ReconciliationAuditLog, error) {
	var logs []model.ReconciliationAuditLog
	scope := d.db
	if trackerID != "" {
		scope = scope.Where("transaction_tracker_id = ?", trackerID)
	}
	if err := scope.Order("create_time DESC").Limit(limit).Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch audit logs: %w", err)
	}
	return logs, nil
}

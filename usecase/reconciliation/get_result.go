package reconciliation

import (
	"errors"
	"time"

	"github.com/radhian/ledger-reconciler/consts"
	"github.com/radhian/ledger-reconciler/entity"
)

func (u *reconciliationUsecase) GetReconciliationLogs(trackerID string, limit int) ([]entity.ReconciliationLog, error) {
	if u.auditLogs == nil {
		return nil, errors.New("audit log storage is not configured")
	}
	if limit <= 0 {
		limit = consts.DefaultAuditLogLimit
	}

	rows, err := u.auditLogs.GetReconciliationAuditLogs(trackerID, limit)
	if err != nil {
		return nil, err
	}

	logs := make([]entity.ReconciliationLog, 0, len(rows))
	for _, row := range rows {
		logs = append(logs, entity.ReconciliationLog{
			ID:                     row.ID,
			TransactionTrackerID:   row.TransactionTrackerID,
			TransactionReferenceID: row.TransactionReferenceID,
			CommandDataType:        row.CommandDataType,
			Outcome:                row.Outcome,
			Severity:               row.Severity,
			Message:                row.Message,
			Item:                   row.Item,
			CreatedAt:              time.Unix(row.CreateTime, 0).UTC(),
		})
	}
	return logs, nil
}

package reconciliation

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/gommon/log"
	"github.com/radhian/ledger-reconciler/consts"
	"github.com/radhian/ledger-reconciler/entity"
	"github.com/radhian/ledger-reconciler/infra/db/dao"
	"github.com/radhian/ledger-reconciler/infra/db/model"
)

type auditSink struct {
	dao dao.DaoMethod
}

// NewAuditSink logs each outcome and keeps a copy in the audit log table.
// Storage failures are logged and swallowed.
func NewAuditSink(d dao.DaoMethod) AuditSink {
	return &auditSink{dao: d}
}

func (s *auditSink) Emit(ctx context.Context, entry entity.AuditEntry) {
	switch entry.Severity {
	case consts.SeverityError:
		log.Errorf("[Audit] tracker=%s ref=%s outcome=%s: %s", entry.TrackerID, entry.TransactionReferenceID, entry.Outcome, entry.Message)
	case consts.SeverityWarning:
		log.Warnf("[Audit] tracker=%s ref=%s outcome=%s: %s", entry.TrackerID, entry.TransactionReferenceID, entry.Outcome, entry.Message)
	default:
		log.Infof("[Audit] tracker=%s ref=%s outcome=%s: %s", entry.TrackerID, entry.TransactionReferenceID, entry.Outcome, entry.Message)
	}

	item, err := json.Marshal(entry.Item)
	if err != nil {
		log.Errorf("[Audit] Failed to serialize tracker %s: %v", entry.TrackerID, err)
	}

	if err := s.dao.CreateReconciliationAuditLog(model.ReconciliationAuditLog{
		ID:                     uuid.NewString(),
		TransactionTrackerID:   entry.TrackerID,
		TransactionReferenceID: entry.TransactionReferenceID,
		CommandDataType:        entry.CommandDataType,
		Outcome:                entry.Outcome,
		Severity:               entry.Severity,
		Message:                entry.Message,
		Item:                   string(item),
		CreateTime:             time.Now().Unix(),
		CreateBy:               consts.SystemOperator,
	}); err != nil {
		log.Errorf("[Audit] Failed to store audit log for tracker %s: %v", entry.TrackerID, err)
	}
}

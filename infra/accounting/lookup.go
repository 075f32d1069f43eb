package accounting

import (
	"context"
	"time"

	"github.com/radhian/ledger-reconciler/entity"
	"github.com/radhian/ledger-reconciler/infra/db/dao"
)

// Lookup answers whether accounting already holds entries for a reference.
type Lookup struct {
	dao dao.DaoMethod
}

func NewLookup(d dao.DaoMethod) *Lookup {
	return &Lookup{dao: d}
}

func (l *Lookup) GetAccountingEntriesByReference(ctx context.Context, referenceID string) ([]entity.AccountingEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rows, err := l.dao.GetAccountingEntriesByReference(referenceID)
	if err != nil {
		return nil, err
	}
	entries := make([]entity.AccountingEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, entity.AccountingEntry{
			ID:                     row.ID,
			TransactionReferenceID: row.TransactionReferenceID,
			AccountNumber:          row.AccountNumber,
			Direction:              row.Direction,
			Amount:                 row.Amount,
			Currency:               row.Currency,
			Narration:              row.Narration,
			PostedAt:               time.Unix(row.CreateTime, 0).UTC(),
		})
	}
	return entries, nil
}

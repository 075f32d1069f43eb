package dao

import (
	"fmt"

	"github.com/radhian/ledger-reconciler/infra/db/model"
)

func (d *dao) GetAccountingEntriesByReference(referenceID string) ([]model.AccountingEntry, error) {
	var entries []model.AccountingEntry
	if err := d.db.
		Where("transaction_reference_id = ?", referenceID).
		Order("create_time ASC").
		Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch accounting entries for %s: %w", referenceID, err)
	}
	return entries, nil
}

func (d *dao) GetAccountingEntriesByAccount(accountNumber string) ([]model.AccountingEntry, error) {
	var entries []model.AccountingEntry
	if err := d.db.Where("account_number = ?", accountNumber).Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch accounting entries for account %s: %w", accountNumber, err)
	}
	return entries, nil
}

func (d *dao) CreateAccountingEntries(entries []model.AccountingEntry) error {
	for i := range entries {
		if err := d.db.Create(&entries[i]).Error; err != nil {
			return fmt.Errorf("failed to save accounting entry: %w", err)
		}
	}
	return nil
}

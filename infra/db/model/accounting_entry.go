package model

import "github.com/shopspring/decimal"

type AccountingEntry struct {
	ID                     string          `gorm:"primary_key;size:64" json:"id"`
	TransactionReferenceID string          `gorm:"size:100;not null;index" json:"transaction_reference_id"`
	AccountNumber          string          `gorm:"size:50;not null;index" json:"account_number"`
	Direction              string          `gorm:"size:10;not null" json:"direction"`
	Amount                 decimal.Decimal `gorm:"type:numeric(20,4);not null" json:"amount"`
	Currency               string          `gorm:"size:10" json:"currency"`
	CommandDataType        string          `gorm:"size:100;not null" json:"command_data_type"`
	Narration              string          `gorm:"size:255" json:"narration"`
	CreateTime             int64           `gorm:"not null" json:"create_time"`
	CreateBy               string          `gorm:"size:100;not null" json:"create_by"`
}

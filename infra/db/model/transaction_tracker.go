package model

type TransactionTracker struct {
	ID                     string  `gorm:"primary_key;size:64" json:"id"`
	TransactionReferenceID string  `gorm:"size:100;not null;index" json:"transaction_reference_id"`
	CommandDataType        string  `gorm:"size:100;not null" json:"command_data_type"`
	CommandJSONObject      *string `gorm:"column:command_json_object;type:text" json:"command_json_object"`
	NumberOfRetry          int     `gorm:"not null;default:0" json:"number_of_retry"`
	HasPassed              bool    `gorm:"not null;default:false;index" json:"has_passed"`
	DatePassed             int64   `gorm:"not null;default:0" json:"date_passed"`
	CreateTime             int64   `gorm:"not null" json:"create_time"`
	UpdateTime             int64   `gorm:"not null" json:"update_time"`
	UpdateBy               string  `gorm:"size:100;not null" json:"update_by"`
}

package model

type ReconciliationAuditLog struct {
	ID                     string `gorm:"primary_key;size:64" json:"id"`
	TransactionTrackerID   string `gorm:"size:64;not null;index" json:"transaction_tracker_id"`
	TransactionReferenceID string `gorm:"size:100;not null" json:"transaction_reference_id"`
	CommandDataType        string `gorm:"size:100" json:"command_data_type"`
	Outcome                string `gorm:"size:50;not null" json:"outcome"`
	Severity               string `gorm:"size:20;not null" json:"severity"`
	Message                string `gorm:"type:text;not null" json:"message"`
	Item                   string `gorm:"type:text" json:"item"`
	CreateTime             int64  `gorm:"not null" json:"create_time"`
	CreateBy               string `gorm:"size:100;not null" json:"create_by"`
}

package models

import (
	"time"

	"gorm.io/datatypes"
)

type NotificationStatus string

const (
	NotificationStatusReceived     NotificationStatus = "received"
	NotificationStatusHandled      NotificationStatus = "handled"
	NotificationStatusHandleFailed NotificationStatus = "handle_failed"
)

// NotificationLog keeps the raw webhook payload and how it was handled.
type NotificationLog struct {
	ID           string             `gorm:"primarykey;type:varchar(36)" json:"id"`
	ProviderCode string             `gorm:"type:varchar(50);not null" json:"provider_code"`
	TranID       string             `gorm:"type:varchar(64);index" json:"tran_id"`
	Payload      datatypes.JSON     `gorm:"type:json" json:"payload"`
	Status       NotificationStatus `gorm:"type:varchar(20);not null" json:"status"`
	Error        string             `gorm:"type:text" json:"error,omitempty"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
}

func (NotificationLog) TableName() string {
	return "payment_notification_logs"
}

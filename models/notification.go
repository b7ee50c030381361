package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PrivateMessageNotification tells a recipient a message arrived.
// MessageID is a lookup reference only; the message may be purged while the notification lives on.
type PrivateMessageNotification struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID     *string        `gorm:"index" json:"tenant_id,omitempty"`
	RecipientID  uint           `gorm:"not null;index" json:"recipient_id"`
	MessageID    uuid.UUID      `gorm:"type:uuid;not null;index" json:"message_id"`
	TitlePreview string         `gorm:"size:256;not null" json:"title_preview"`
	CreatedAt    time.Time      `json:"created_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"` // dismissal
}

// TableName specifies the table name for the PrivateMessageNotification model
func (PrivateMessageNotification) TableName() string {
	return "private_message_notifications"
}

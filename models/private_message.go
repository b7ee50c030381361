package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PrivateMessage is a direct message between two users. One row carries both the
// sender's view (DeletedBySender) and the receiver's view (DeletedByReceiver, IsRead, ReadAt).
type PrivateMessage struct {
	ID                uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID          *string        `gorm:"index" json:"tenant_id,omitempty"`
	SenderID          *uint          `gorm:"index" json:"sender_id"` // nullable, sender account may be removed
	ReceiverID        uint           `gorm:"not null;index" json:"receiver_id"`
	Title             string         `gorm:"size:256;not null" json:"title"`
	Content           string         `gorm:"type:text;not null" json:"content"`
	DeletedBySender   bool           `gorm:"not null;default:false" json:"-"`
	DeletedByReceiver bool           `gorm:"not null;default:false" json:"-"`
	IsRead            bool           `gorm:"not null;default:false" json:"is_read"`
	ReadAt            *time.Time     `json:"read_at"`
	CreatedAt         time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"` // set once both sides have deleted
}

// TableName specifies the table name for the PrivateMessage model
func (PrivateMessage) TableName() string {
	return "private_messages"
}

// DeletedByBothSides reports whether neither party can see the message any more
func (m *PrivateMessage) DeletedByBothSides() bool {
	return m.DeletedBySender && m.DeletedByReceiver
}

// IsSender reports whether userID sent the message
func (m *PrivateMessage) IsSender(userID uint) bool {
	return m.SenderID != nil && *m.SenderID == userID
}

// IsReceiver reports whether userID is the addressee
func (m *PrivateMessage) IsReceiver(userID uint) bool {
	return m.ReceiverID == userID
}

// TitlePreview returns the title cut to maxRunes characters, marking truncation with "..."
func (m *PrivateMessage) TitlePreview(maxRunes int) string {
	runes := []rune(m.Title)
	if maxRunes <= 0 || len(runes) <= maxRunes {
		return m.Title
	}
	const ellipsis = "..."
	if maxRunes <= len(ellipsis) {
		return string(runes[:maxRunes])
	}
	return string(runes[:maxRunes-len(ellipsis)]) + ellipsis
}

package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/kendall-kelly/private-messaging-api/models"
	"gorm.io/gorm"
)

// NotificationManager owns the private_message_notifications table
type NotificationManager struct {
	db *gorm.DB
}

// NewNotificationManager creates a notification manager on top of db
func NewNotificationManager(db *gorm.DB) *NotificationManager {
	return &NotificationManager{db: db}
}

// WithTx returns a manager bound to the given transaction
func (m *NotificationManager) WithTx(tx *gorm.DB) *NotificationManager {
	return &NotificationManager{db: tx}
}

// Create persists a notification; there is no deduplication
func (m *NotificationManager) Create(ctx context.Context, notification *models.PrivateMessageNotification) (*models.PrivateMessageNotification, error) {
	if notification.ID == uuid.Nil {
		notification.ID = uuid.New()
	}
	if err := m.db.WithContext(ctx).Create(notification).Error; err != nil {
		return nil, storageError("create notification", err)
	}
	return notification, nil
}

// Get fetches a notification, including dismissed ones
func (m *NotificationManager) Get(ctx context.Context, tenantID *string, id uuid.UUID) (*models.PrivateMessageNotification, error) {
	var notification models.PrivateMessageNotification
	err := m.db.WithContext(ctx).Unscoped().
		Scopes(tenantScope(tenantID)).
		Where("id = ?", id).
		First(&notification).Error
	if err != nil {
		if isRecordNotFound(err) {
			return nil, notFoundError("Notification not found")
		}
		return nil, storageError("fetch notification", err)
	}
	return &notification, nil
}

// ListForRecipient returns a page of undismissed notifications, newest first
func (m *NotificationManager) ListForRecipient(ctx context.Context, tenantID *string, recipientID uint, skip, take int) ([]models.PrivateMessageNotification, error) {
	notifications := []models.PrivateMessageNotification{}
	query := m.db.WithContext(ctx).
		Scopes(tenantScope(tenantID)).
		Where("recipient_id = ?", recipientID).
		Order("created_at DESC").
		Offset(skip)
	if take > 0 {
		query = query.Limit(take)
	}
	if err := query.Find(&notifications).Error; err != nil {
		return nil, storageError("list notifications", err)
	}
	return notifications, nil
}

// CountForRecipient counts undismissed notifications
func (m *NotificationManager) CountForRecipient(ctx context.Context, tenantID *string, recipientID uint) (int64, error) {
	var count int64
	err := m.db.WithContext(ctx).Model(&models.PrivateMessageNotification{}).
		Scopes(tenantScope(tenantID)).
		Where("recipient_id = ?", recipientID).
		Count(&count).Error
	if err != nil {
		return 0, storageError("count notifications", err)
	}
	return count, nil
}

// Dismiss soft-deletes the notification; dismissing twice is a no-op
func (m *NotificationManager) Dismiss(ctx context.Context, notification *models.PrivateMessageNotification) error {
	if notification.DeletedAt.Valid {
		return nil
	}
	if err := m.db.WithContext(ctx).Delete(notification).Error; err != nil {
		return storageError("dismiss notification", err)
	}
	return nil
}

package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/kendall-kelly/private-messaging-api/models"
	"gorm.io/gorm"
)

// NotificationService exposes a recipient's notifications
type NotificationService struct {
	manager  *NotificationManager
	messages *MessageService
}

var notificationServiceInstance *NotificationService

// NewNotificationService creates a notification service. Paging limits are
// shared with the message service.
func NewNotificationService(db *gorm.DB, messages *MessageService) *NotificationService {
	return &NotificationService{manager: NewNotificationManager(db), messages: messages}
}

// InitNotificationService creates the shared notification service instance
func InitNotificationService(db *gorm.DB, messages *MessageService) *NotificationService {
	notificationServiceInstance = NewNotificationService(db, messages)
	return notificationServiceInstance
}

// GetNotificationService returns the initialized notification service instance
func GetNotificationService() *NotificationService {
	return notificationServiceInstance
}

// SetNotificationService sets the notification service instance (primarily for testing)
func SetNotificationService(service *NotificationService) {
	notificationServiceInstance = service
}

// List returns the caller's notifications, newest first
func (s *NotificationService) List(ctx context.Context, caller Caller, page PageRequest) (*Page[models.PrivateMessageNotification], error) {
	page, err := s.messages.normalizePage(page)
	if err != nil {
		return nil, err
	}
	items, err := s.manager.ListForRecipient(ctx, caller.TenantID, caller.UserID, page.Skip, page.Take)
	if err != nil {
		return nil, err
	}
	count, err := s.manager.CountForRecipient(ctx, caller.TenantID, caller.UserID)
	if err != nil {
		return nil, err
	}
	return &Page[models.PrivateMessageNotification]{Items: items, TotalCount: count}, nil
}

// Dismiss hides one of the caller's notifications
func (s *NotificationService) Dismiss(ctx context.Context, caller Caller, id uuid.UUID) error {
	notification, err := s.manager.Get(ctx, caller.TenantID, id)
	if err != nil {
		return err
	}
	if notification.RecipientID != caller.UserID {
		return forbiddenError("You do not have permission to dismiss this notification")
	}
	return s.manager.Dismiss(ctx, notification)
}

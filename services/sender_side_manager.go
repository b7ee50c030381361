package services

import (
	"context"

	"github.com/kendall-kelly/private-messaging-api/models"
)

// SenderSideManager interprets messages from the sender's point of view
type SenderSideManager struct {
	store *MessageStore
}

// NewSenderSideManager creates a sender-side manager over store
func NewSenderSideManager(store *MessageStore) *SenderSideManager {
	return &SenderSideManager{store: store}
}

// Create persists a new message. The receiver must already be resolved.
func (m *SenderSideManager) Create(ctx context.Context, message *models.PrivateMessage) (*models.PrivateMessage, error) {
	if err := m.store.Create(ctx, message); err != nil {
		return nil, err
	}
	return message, nil
}

// GetList returns a page of the sender's sent messages, newest first
func (m *SenderSideManager) GetList(ctx context.Context, tenantID *string, senderID uint, skip, take int) ([]models.PrivateMessage, error) {
	return m.store.ListForParty(ctx, PartyQuery{
		Role:     PartySender,
		TenantID: tenantID,
		UserID:   senderID,
		Skip:     skip,
		Take:     take,
	})
}

// Count returns the number of messages in the sender's sent view
func (m *SenderSideManager) Count(ctx context.Context, tenantID *string, senderID uint) (int64, error) {
	return m.store.CountForParty(ctx, PartyQuery{Role: PartySender, TenantID: tenantID, UserID: senderID})
}

// Delete hides the message from the sender only
func (m *SenderSideManager) Delete(ctx context.Context, message *models.PrivateMessage) error {
	if message.DeletedBySender {
		return nil
	}
	if err := m.store.MarkDeleted(ctx, message.ID, PartySender); err != nil {
		return err
	}
	message.DeletedBySender = true
	return nil
}

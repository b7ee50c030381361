package services

import (
	"context"
	"time"

	"github.com/kendall-kelly/private-messaging-api/models"
)

// ReceiverSideManager interprets messages from the receiver's point of view
type ReceiverSideManager struct {
	store *MessageStore
	now   func() time.Time
}

// NewReceiverSideManager creates a receiver-side manager over store
func NewReceiverSideManager(store *MessageStore, now func() time.Time) *ReceiverSideManager {
	if now == nil {
		now = time.Now
	}
	return &ReceiverSideManager{store: store, now: now}
}

// GetList returns a page of the receiver's inbox, newest first
func (m *ReceiverSideManager) GetList(ctx context.Context, tenantID *string, receiverID uint, skip, take int, unreadOnly bool) ([]models.PrivateMessage, error) {
	return m.store.ListForParty(ctx, PartyQuery{
		Role:       PartyReceiver,
		TenantID:   tenantID,
		UserID:     receiverID,
		Skip:       skip,
		Take:       take,
		UnreadOnly: unreadOnly,
	})
}

// Count returns the size of the receiver's inbox, or of its unread part
func (m *ReceiverSideManager) Count(ctx context.Context, tenantID *string, receiverID uint, unreadOnly bool) (int64, error) {
	return m.store.CountForParty(ctx, PartyQuery{
		Role:       PartyReceiver,
		TenantID:   tenantID,
		UserID:     receiverID,
		UnreadOnly: unreadOnly,
	})
}

// SetRead marks the message read. Only the first call stamps ReadAt; later
// calls are no-ops.
func (m *ReceiverSideManager) SetRead(ctx context.Context, message *models.PrivateMessage) error {
	if message.IsRead {
		return nil
	}
	readAt := m.now().UTC()
	updated, err := m.store.MarkRead(ctx, message.ID, readAt)
	if err != nil {
		return err
	}
	if !updated {
		// Someone else got there first; keep their timestamp.
		current, err := m.store.Get(ctx, message.TenantID, message.ID)
		if err != nil {
			return err
		}
		message.IsRead, message.ReadAt = current.IsRead, current.ReadAt
		return nil
	}
	message.IsRead = true
	message.ReadAt = &readAt
	return nil
}

// Delete hides the message from the receiver only
func (m *ReceiverSideManager) Delete(ctx context.Context, message *models.PrivateMessage) error {
	if message.DeletedByReceiver {
		return nil
	}
	if err := m.store.MarkDeleted(ctx, message.ID, PartyReceiver); err != nil {
		return err
	}
	message.DeletedByReceiver = true
	return nil
}

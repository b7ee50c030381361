package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/kendall-kelly/private-messaging-api/models"
	"gorm.io/gorm"
)

// PartyRole selects which side of a message a query looks at
type PartyRole int

const (
	PartySender PartyRole = iota
	PartyReceiver
)

func (r PartyRole) String() string {
	if r == PartySender {
		return "sender"
	}
	return "receiver"
}

// partyColumn is the column identifying the party
func (r PartyRole) partyColumn() string {
	if r == PartySender {
		return "sender_id"
	}
	return "receiver_id"
}

// deletedColumn is the party's own soft-delete flag
func (r PartyRole) deletedColumn() string {
	if r == PartySender {
		return "deleted_by_sender"
	}
	return "deleted_by_receiver"
}

// PartyQuery filters messages from one party's point of view
type PartyQuery struct {
	Role       PartyRole
	TenantID   *string
	UserID     uint
	Skip       int
	Take       int
	UnreadOnly bool // receiver role only
}

// MessageStore owns the private_messages table
type MessageStore struct {
	db *gorm.DB
}

// NewMessageStore creates a store on top of db
func NewMessageStore(db *gorm.DB) *MessageStore {
	return &MessageStore{db: db}
}

// WithTx returns a store bound to the given transaction
func (s *MessageStore) WithTx(tx *gorm.DB) *MessageStore {
	return &MessageStore{db: tx}
}

// tenantScope restricts a query to one tenant; a nil tenant only sees host rows
func tenantScope(tenantID *string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if tenantID == nil {
			return db.Where("tenant_id IS NULL")
		}
		return db.Where("tenant_id = ?", *tenantID)
	}
}

// Create inserts a new message
func (s *MessageStore) Create(ctx context.Context, message *models.PrivateMessage) error {
	if err := s.db.WithContext(ctx).Create(message).Error; err != nil {
		return storageError("create message", err)
	}
	return nil
}

// Get fetches a message by id regardless of either side's delete flags,
// so an authorization check can still see it.
func (s *MessageStore) Get(ctx context.Context, tenantID *string, id uuid.UUID) (*models.PrivateMessage, error) {
	var message models.PrivateMessage
	err := s.db.WithContext(ctx).Unscoped().
		Scopes(tenantScope(tenantID)).
		Where("id = ?", id).
		First(&message).Error
	if err != nil {
		if isRecordNotFound(err) {
			return nil, notFoundError("Message not found")
		}
		return nil, storageError("fetch message", err)
	}
	return &message, nil
}

// GetMany returns the tenant-visible subset of ids, ignoring delete flags.
// Missing ids are omitted; order is unspecified.
func (s *MessageStore) GetMany(ctx context.Context, tenantID *string, ids []uuid.UUID) ([]models.PrivateMessage, error) {
	messages := []models.PrivateMessage{}
	if len(ids) == 0 {
		return messages, nil
	}
	err := s.db.WithContext(ctx).Unscoped().
		Scopes(tenantScope(tenantID)).
		Where("id IN ?", ids).
		Find(&messages).Error
	if err != nil {
		return nil, storageError("fetch messages", err)
	}
	return messages, nil
}

func (s *MessageStore) partyFilter(ctx context.Context, q PartyQuery) *gorm.DB {
	query := s.db.WithContext(ctx).Model(&models.PrivateMessage{}).
		Scopes(tenantScope(q.TenantID)).
		Where(q.Role.partyColumn()+" = ?", q.UserID).
		Where(q.Role.deletedColumn()+" = ?", false)
	if q.UnreadOnly && q.Role == PartyReceiver {
		query = query.Where("is_read = ?", false)
	}
	return query
}

// ListForParty returns one page of the party's visible messages, newest first
func (s *MessageStore) ListForParty(ctx context.Context, q PartyQuery) ([]models.PrivateMessage, error) {
	messages := []models.PrivateMessage{}
	query := s.partyFilter(ctx, q).Order("created_at DESC").Offset(q.Skip)
	if q.Take > 0 {
		query = query.Limit(q.Take)
	}
	if err := query.Find(&messages).Error; err != nil {
		return nil, storageError("list messages", err)
	}
	return messages, nil
}

// CountForParty counts the party's visible messages, ignoring pagination
func (s *MessageStore) CountForParty(ctx context.Context, q PartyQuery) (int64, error) {
	var count int64
	if err := s.partyFilter(ctx, q).Count(&count).Error; err != nil {
		return 0, storageError("count messages", err)
	}
	return count, nil
}

// MarkRead flips is_read once; it reports whether this call did the flip
func (s *MessageStore) MarkRead(ctx context.Context, id uuid.UUID, readAt time.Time) (bool, error) {
	result := s.db.WithContext(ctx).Unscoped().Model(&models.PrivateMessage{}).
		Where("id = ? AND is_read = ?", id, false).
		Updates(map[string]interface{}{"is_read": true, "read_at": readAt})
	if result.Error != nil {
		return false, storageError("mark message read", result.Error)
	}
	return result.RowsAffected > 0, nil
}

// MarkDeleted sets the party's delete flag. Once both flags are set the whole
// row is soft-deleted and becomes eligible for purge.
func (s *MessageStore) MarkDeleted(ctx context.Context, id uuid.UUID, role PartyRole) error {
	db := s.db.WithContext(ctx)
	err := db.Unscoped().Model(&models.PrivateMessage{}).
		Where("id = ?", id).
		Update(role.deletedColumn(), true).Error
	if err != nil {
		return storageError("delete message", err)
	}

	err = db.Where("id = ? AND deleted_by_sender = ? AND deleted_by_receiver = ?", id, true, true).
		Delete(&models.PrivateMessage{}).Error
	if err != nil {
		return storageError("retire message", err)
	}
	return nil
}

// ListPurgeable returns up to limit messages, from every tenant, that both
// sides deleted before the cutoff
func (s *MessageStore) ListPurgeable(ctx context.Context, cutoff time.Time, limit int) ([]models.PrivateMessage, error) {
	messages := []models.PrivateMessage{}
	query := s.db.WithContext(ctx).Unscoped().
		Where("deleted_at IS NOT NULL AND deleted_at < ?", cutoff).
		Where("deleted_by_sender = ? AND deleted_by_receiver = ?", true, true).
		Order("deleted_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&messages).Error; err != nil {
		return nil, storageError("list purgeable messages", err)
	}
	return messages, nil
}

// HardDelete physically removes a message that both sides deleted
func (s *MessageStore) HardDelete(ctx context.Context, id uuid.UUID) (bool, error) {
	result := s.db.WithContext(ctx).Unscoped().
		Where("id = ? AND deleted_by_sender = ? AND deleted_by_receiver = ?", id, true, true).
		Delete(&models.PrivateMessage{})
	if result.Error != nil {
		return false, storageError("purge message", result.Error)
	}
	return result.RowsAffected > 0, nil
}

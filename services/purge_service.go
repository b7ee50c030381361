package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/kendall-kelly/private-messaging-api/models"
	"gorm.io/gorm"
)

const defaultPurgeBatchSize = 500

// PurgeResult summarizes one sweep
type PurgeResult struct {
	Archived int `json:"archived"`
	Purged   int `json:"purged"`
	Failed   int `json:"failed"`
}

// PurgeService physically removes messages that both parties deleted
type PurgeService struct {
	db        *gorm.DB
	archive   ArchiveStore // nil disables archiving
	retention time.Duration
	batchSize int
	now       func() time.Time
}

var purgeServiceInstance *PurgeService

// NewPurgeService creates a purge service. Messages are purged once they
// have been deleted by both sides for longer than retention.
func NewPurgeService(db *gorm.DB, archive ArchiveStore, retention time.Duration) *PurgeService {
	return &PurgeService{
		db:        db,
		archive:   archive,
		retention: retention,
		batchSize: defaultPurgeBatchSize,
		now:       time.Now,
	}
}

// InitPurgeService creates the shared purge service instance
func InitPurgeService(db *gorm.DB, archive ArchiveStore, retention time.Duration) *PurgeService {
	purgeServiceInstance = NewPurgeService(db, archive, retention)
	return purgeServiceInstance
}

// GetPurgeService returns the initialized purge service instance
func GetPurgeService() *PurgeService {
	return purgeServiceInstance
}

// SetPurgeService sets the purge service instance (primarily for testing)
func SetPurgeService(service *PurgeService) {
	purgeServiceInstance = service
}

// archivedMessage is the JSON layout written to the archive store
type archivedMessage struct {
	ID         uuid.UUID  `json:"id"`
	TenantID   *string    `json:"tenant_id,omitempty"`
	SenderID   *uint      `json:"sender_id,omitempty"`
	ReceiverID uint       `json:"receiver_id"`
	Title      string     `json:"title"`
	Content    string     `json:"content"`
	IsRead     bool       `json:"is_read"`
	ReadAt     *time.Time `json:"read_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	DeletedAt  time.Time  `json:"deleted_at"`
	ArchivedAt time.Time  `json:"archived_at"`
}

// ArchiveKey is the object key a purged message is archived under
func ArchiveKey(message *models.PrivateMessage) string {
	tenant := "host"
	if message.TenantID != nil {
		tenant = *message.TenantID
	}
	return fmt.Sprintf("archive/private-messages/%s/%s.json", tenant, message.ID)
}

// Sweep purges one batch of eligible messages across all tenants. A message
// whose archive upload fails stays in place and is counted as failed.
func (s *PurgeService) Sweep(ctx context.Context) (*PurgeResult, error) {
	now := s.now().UTC()
	store := NewMessageStore(s.db)
	result := &PurgeResult{}

	messages, err := store.ListPurgeable(ctx, now.Add(-s.retention), s.batchSize)
	if err != nil {
		return result, err
	}

	for i := range messages {
		message := &messages[i]
		if s.archive != nil {
			if err := s.archiveMessage(ctx, message, now); err != nil {
				log.Printf("Failed to archive message %s: %v", message.ID, err)
				result.Failed++
				continue
			}
			result.Archived++
		}

		purged, err := store.HardDelete(ctx, message.ID)
		if err != nil {
			return result, err
		}
		if purged {
			result.Purged++
		}
	}

	log.Printf("Purge sweep finished: %d purged, %d archived, %d failed", result.Purged, result.Archived, result.Failed)
	return result, nil
}

func (s *PurgeService) archiveMessage(ctx context.Context, message *models.PrivateMessage, now time.Time) error {
	body, err := json.Marshal(archivedMessage{
		ID:         message.ID,
		TenantID:   message.TenantID,
		SenderID:   message.SenderID,
		ReceiverID: message.ReceiverID,
		Title:      message.Title,
		Content:    message.Content,
		IsRead:     message.IsRead,
		ReadAt:     message.ReadAt,
		CreatedAt:  message.CreatedAt,
		DeletedAt:  message.DeletedAt.Time,
		ArchivedAt: now,
	})
	if err != nil {
		return fmt.Errorf("failed to encode archive: %w", err)
	}
	return s.archive.PutArchive(ctx, ArchiveKey(message), body)
}

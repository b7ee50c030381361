package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/kendall-kelly/private-messaging-api/models"
	"github.com/kendall-kelly/private-messaging-api/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// retire marks a message deleted by both sides at deletedAt
func retire(t *testing.T, db *gorm.DB, message models.PrivateMessage, deletedAt time.Time) {
	t.Helper()

	err := db.Unscoped().Model(&models.PrivateMessage{}).
		Where("id = ?", message.ID).
		Updates(map[string]interface{}{
			"deleted_by_sender":   true,
			"deleted_by_receiver": true,
			"deleted_at":          deletedAt,
		}).Error
	require.NoError(t, err)
}

func TestPurgeService_Sweep(t *testing.T) {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	acme := "acme"

	tests := []struct {
		name          string
		withArchive   bool
		failArchive   bool
		wantResult    PurgeResult
		wantRemaining int64
	}{
		{
			name:          "purges without archive",
			wantResult:    PurgeResult{Purged: 2},
			wantRemaining: 2,
		},
		{
			name:          "archives then purges",
			withArchive:   true,
			wantResult:    PurgeResult{Archived: 2, Purged: 2},
			wantRemaining: 2,
		},
		{
			name:          "failed archive keeps the message",
			withArchive:   true,
			failArchive:   true,
			wantResult:    PurgeResult{Archived: 1, Purged: 1, Failed: 1},
			wantRemaining: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := testutil.NewTestDB(t)
			old := now.Add(-60 * 24 * time.Hour)

			hostOld := seedMessage(t, db, nil, 1, 2, "host old", old)
			tenantOld := seedMessage(t, db, &acme, 1, 2, "tenant old", old)
			recent := seedMessage(t, db, nil, 1, 2, "recent", old)
			seedMessage(t, db, nil, 1, 2, "active", old)

			retire(t, db, hostOld, now.Add(-40*24*time.Hour))
			retire(t, db, tenantOld, now.Add(-31*24*time.Hour))
			retire(t, db, recent, now.Add(-time.Hour))

			var archive *MockArchiveStore
			var service *PurgeService
			if tt.withArchive {
				archive = NewMockArchiveStore()
				if tt.failArchive {
					archive.FailOn(ArchiveKey(&tenantOld))
				}
				service = NewPurgeService(db, archive, 30*24*time.Hour)
			} else {
				service = NewPurgeService(db, nil, 30*24*time.Hour)
			}
			service.now = func() time.Time { return now }

			result, err := service.Sweep(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.wantResult, *result)

			var remaining int64
			require.NoError(t, db.Unscoped().Model(&models.PrivateMessage{}).Count(&remaining).Error)
			assert.Equal(t, tt.wantRemaining, remaining)

			if archive != nil {
				assert.True(t, archive.Exists("archive/private-messages/host/"+hostOld.ID.String()+".json"))
				assert.Equal(t, !tt.failArchive, archive.Exists("archive/private-messages/acme/"+tenantOld.ID.String()+".json"))
				assert.False(t, archive.Exists(ArchiveKey(&recent)))
			}
		})
	}
}

func TestPurgeService_ArchiveBody(t *testing.T) {
	db := testutil.NewTestDB(t)
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	message := seedMessage(t, db, nil, 1, 2, "keep a copy", now.Add(-90*24*time.Hour))
	retire(t, db, message, now.Add(-45*24*time.Hour))

	archive := NewMockArchiveStore()
	service := NewPurgeService(db, archive, 30*24*time.Hour)
	service.now = func() time.Time { return now }

	_, err := service.Sweep(context.Background())
	require.NoError(t, err)

	body, ok := archive.Objects()[ArchiveKey(&message)]
	require.True(t, ok)

	var archived map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &archived))
	assert.Equal(t, message.ID.String(), archived["id"])
	assert.Equal(t, "keep a copy", archived["title"])
	assert.Equal(t, "keep a copy body", archived["content"])
	assert.Equal(t, float64(2), archived["receiver_id"])
	assert.NotContains(t, archived, "tenant_id")
}

func TestPurgeService_SweepHonoursBatchSize(t *testing.T) {
	db := testutil.NewTestDB(t)
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		message := seedMessage(t, db, nil, 1, 2, "batch", now.Add(-90*24*time.Hour))
		retire(t, db, message, now.Add(-45*24*time.Hour))
	}

	service := NewPurgeService(db, nil, 30*24*time.Hour)
	service.now = func() time.Time { return now }
	service.batchSize = 2

	result, err := service.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, result.Purged)

	result, err = service.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Purged)
}

func TestArchiveKey(t *testing.T) {
	acme := "acme"
	message := models.PrivateMessage{TenantID: &acme}
	assert.Equal(t, "archive/private-messages/acme/"+message.ID.String()+".json", ArchiveKey(&message))

	message.TenantID = nil
	assert.Equal(t, "archive/private-messages/host/"+message.ID.String()+".json", ArchiveKey(&message))
}

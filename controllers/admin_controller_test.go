package controllers

import (
	"net/http"
	"testing"
	"time"

	"github.com/kendall-kelly/private-messaging-api/middleware"
	"github.com/kendall-kelly/private-messaging-api/models"
	"github.com/kendall-kelly/private-messaging-api/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPurgeMessages(t *testing.T) {
	f := setupMessageFixture(t)
	archive := services.NewMockArchiveStore()
	services.InitPurgeService(f.db, archive, time.Hour)

	id := sendMessage(t, f.alice, "bob", "Hi")
	require.NoError(t, f.db.Unscoped().Model(&models.PrivateMessage{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"deleted_by_sender":   true,
			"deleted_by_receiver": true,
			"deleted_at":          time.Now().UTC().Add(-2 * time.Hour),
		}).Error)

	tests := []struct {
		name           string
		scopes         []string
		expectedStatus int
		expectedPurged float64
	}{
		{"Missing scope is rejected", []string{"read:private_messages"}, http.StatusForbidden, 0},
		{"Admin sweep purges retired messages", []string{"admin:purge"}, http.StatusOK, 1},
		{"Second sweep finds nothing", []string{"admin:purge"}, http.StatusOK, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := setupTestRouter()
			router.POST("/admin/purge",
				mockAuthMiddleware("auth0|operator", nil, "token", tt.scopes...),
				middleware.RequireScope("admin:purge"),
				PurgeMessages,
			)

			w, response := performRequest(t, router, http.MethodPost, "/admin/purge", nil)
			require.Equal(t, tt.expectedStatus, w.Code, "Response body: %s", w.Body.String())
			if tt.expectedStatus != http.StatusOK {
				assert.Equal(t, "INSUFFICIENT_SCOPE", errorCode(response))
				return
			}

			data := response["data"].(map[string]interface{})
			assert.Equal(t, tt.expectedPurged, data["purged"])
			assert.Equal(t, tt.expectedPurged, data["archived"])
		})
	}

	assert.Len(t, archive.Objects(), 1)

	var remaining int64
	require.NoError(t, f.db.Unscoped().Model(&models.PrivateMessage{}).Count(&remaining).Error)
	assert.Equal(t, int64(0), remaining)
}

package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/private-messaging-api/config"
	"github.com/kendall-kelly/private-messaging-api/services"
	"github.com/kendall-kelly/private-messaging-api/tests/testutil"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// setupTestDB opens an in-memory database and wires the services against it
func setupTestDB(t *testing.T) *gorm.DB {
	db := testutil.NewTestDB(t)
	config.SetDB(db)

	// strictly increasing clock so creation order is deterministic
	clock := time.Now().UTC()
	messages := services.InitMessageService(db, services.NewGormUserDirectory(db), services.MessageServiceOptions{
		DefaultPageSize: 10,
		MaxPageSize:     50,
		Now: func() time.Time {
			clock = clock.Add(time.Millisecond)
			return clock
		},
	})
	services.InitNotificationService(db, messages)
	services.InitPurgeService(db, nil, 0)

	return db
}

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	return router
}

// mockAuthMiddleware stands in for EnsureValidToken
func mockAuthMiddleware(auth0ID string, tenantID *string, accessToken string, scopes ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		testutil.SetMockAuthContext(c, auth0ID, tenantID, accessToken, scopes...)
		c.Next()
	}
}

// performRequest sends body (if any) as JSON and decodes the envelope
func performRequest(t *testing.T, router *gin.Engine, method, path string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	var req *http.Request
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		req = httptest.NewRequest(method, path, bytes.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response), "Response body: %s", w.Body.String())
	return w, response
}

func errorCode(response map[string]interface{}) string {
	errorData, ok := response["error"].(map[string]interface{})
	if !ok {
		return ""
	}
	code, _ := errorData["code"].(string)
	return code
}

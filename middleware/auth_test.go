package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/private-messaging-api/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withClaims(scope string) func(*gin.Context) {
	return func(c *gin.Context) {
		c.Set("validated_claims", &validator.ValidatedClaims{
			RegisteredClaims: validator.RegisteredClaims{Subject: "auth0|alice"},
			CustomClaims:     &CustomClaims{Scope: scope},
		})
	}
}

func TestCustomClaims_HasScope(t *testing.T) {
	const granted = "read:private_messages write:private_messages admin:purge"

	tests := []struct {
		scope string
		claim string
		want  bool
	}{
		{"admin:purge", granted, true},
		{"write:private_messages", granted, true},
		{"admin:purge", "read:private_messages", false},
		{"admin", granted, false},
		{"admin:purge", "", false},
		{"", granted, false},
	}

	for _, tt := range tests {
		t.Run(tt.scope+" in "+tt.claim, func(t *testing.T) {
			assert.Equal(t, tt.want, CustomClaims{Scope: tt.claim}.HasScope(tt.scope))
		})
	}
}

func TestContextAccessors(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("empty context", func(t *testing.T) {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())

		_, err := GetUserID(c)
		require.Error(t, err)
		assert.Equal(t, "MISSING_USER_ID", err.(*AuthError).Code)

		_, err = GetClaims(c)
		require.Error(t, err)
		assert.Equal(t, "MISSING_CLAIMS", err.(*AuthError).Code)
	})

	t.Run("wrong value types", func(t *testing.T) {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Set("user_id", 42)
		c.Set("validated_claims", "not-claims")

		_, err := GetUserID(c)
		require.Error(t, err)
		assert.Equal(t, "INVALID_USER_ID", err.(*AuthError).Code)

		_, err = GetClaims(c)
		require.Error(t, err)
		assert.Equal(t, "INVALID_CLAIMS", err.(*AuthError).Code)
	})

	t.Run("authenticated context", func(t *testing.T) {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Set("user_id", "auth0|alice")
		withClaims("read:private_messages")(c)

		userID, err := GetUserID(c)
		require.NoError(t, err)
		assert.Equal(t, "auth0|alice", userID)

		claims, err := GetClaims(c)
		require.NoError(t, err)
		assert.Equal(t, "auth0|alice", claims.RegisteredClaims.Subject)
	})
}

func TestRequireScope(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name       string
		setup      func(*gin.Context)
		wantStatus int
		wantCode   string
	}{
		{
			name:       "operator may purge",
			setup:      withClaims("read:private_messages admin:purge"),
			wantStatus: http.StatusOK,
		},
		{
			name:       "regular user may not purge",
			setup:      withClaims("read:private_messages write:private_messages"),
			wantStatus: http.StatusForbidden,
			wantCode:   "INSUFFICIENT_SCOPE",
		},
		{
			name:       "unauthenticated request",
			setup:      func(*gin.Context) {},
			wantStatus: http.StatusUnauthorized,
			wantCode:   "MISSING_CLAIMS",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.POST("/admin/purge", func(c *gin.Context) {
				tt.setup(c)
				c.Next()
			}, RequireScope("admin:purge"), func(c *gin.Context) {
				c.JSON(http.StatusOK, gin.H{"success": true})
			})

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/admin/purge", nil))

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantCode == "" {
				return
			}

			var body struct {
				Success bool `json:"success"`
				Error   struct {
					Code string `json:"code"`
				} `json:"error"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.False(t, body.Success)
			assert.Equal(t, tt.wantCode, body.Error.Code)
		})
	}
}

func TestEnsureValidToken_RejectsRequests(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{Auth0Domain: "test.auth0.com", Auth0Audience: "https://private-messaging-api"}
	router := gin.New()
	router.GET("/messages", EnsureValidToken(cfg), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true})
	})

	for name, header := range map[string]string{
		"missing header": "",
		"malformed jwt":  "Bearer not.a.jwt",
	} {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/messages", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Contains(t, w.Header().Get("Content-Type"), "application/json")
			assert.JSONEq(t, `{"success":false,"error":{"code":"INVALID_TOKEN","message":"Failed to validate JWT."}}`, w.Body.String())
		})
	}
}

func TestAuthError(t *testing.T) {
	var err error = &AuthError{Code: "MISSING_TOKEN", Message: "Access token not found in context"}
	assert.EqualError(t, err, "Access token not found in context")
}

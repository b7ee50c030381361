package acceptance

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/private-messaging-api/config"
	"github.com/kendall-kelly/private-messaging-api/controllers"
	"github.com/kendall-kelly/private-messaging-api/middleware"
	"github.com/kendall-kelly/private-messaging-api/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// AuthAcceptanceTestSuite checks that a client without a valid Auth0 token
// cannot reach any mailbox over real HTTP
type AuthAcceptanceTestSuite struct {
	suite.Suite
	server *httptest.Server
}

func (suite *AuthAcceptanceTestSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)
	testutil.MustSetTestEnvironment(suite.T())
	suite.T().Setenv("AUTH0_DOMAIN", "test.auth0.com")
	suite.T().Setenv("AUTH0_AUDIENCE", "https://private-messaging-api")

	cfg, err := config.Load()
	suite.Require().NoError(err)

	router := gin.New()
	router.Use(gin.Recovery())
	authed := router.Group("/api/v1", middleware.EnsureValidToken(cfg))
	authed.GET("/messages", controllers.ListMessages)
	authed.GET("/messages/sent", controllers.ListSentMessages)
	authed.POST("/messages", controllers.CreateMessage)
	authed.POST("/messages/delete", controllers.DeleteMessages)
	authed.GET("/notifications", controllers.ListNotifications)
	authed.POST("/admin/purge", middleware.RequireScope("admin:purge"), controllers.PurgeMessages)

	suite.server = httptest.NewServer(router)
}

func (suite *AuthAcceptanceTestSuite) TearDownSuite() {
	suite.server.Close()
}

func (suite *AuthAcceptanceTestSuite) TestRejectsClientsWithoutValidToken() {
	routes := []struct {
		method string
		path   string
		body   string
	}{
		{http.MethodGet, "/api/v1/messages", ""},
		{http.MethodGet, "/api/v1/messages/sent", ""},
		{http.MethodPost, "/api/v1/messages", `{"to_user_name":"bob","title":"hi","content":"hello"}`},
		{http.MethodPost, "/api/v1/messages/delete", `{"ids":["3f2c1e9a-8f1b-4c5e-9d2a-6b7c8d9e0f1a"]}`},
		{http.MethodGet, "/api/v1/notifications", ""},
		{http.MethodPost, "/api/v1/admin/purge", ""},
	}
	headers := map[string]string{
		"no header":    "",
		"opaque token": "Bearer invalid-token",
		"wrong scheme": "Basic YWxpY2U6c2VjcmV0",
		"unsigned jwt": "Bearer eyJhbGciOiJub25lIn0.eyJzdWIiOiJhdXRoMHxhbGljZSJ9.",
		"empty bearer": "Bearer ",
	}

	for _, route := range routes {
		for name, header := range headers {
			suite.T().Run(route.method+" "+route.path+" "+name, func(t *testing.T) {
				req, err := http.NewRequest(route.method, suite.server.URL+route.path, strings.NewReader(route.body))
				require.NoError(t, err)
				req.Header.Set("Content-Type", "application/json")
				if header != "" {
					req.Header.Set("Authorization", header)
				}

				resp, err := http.DefaultClient.Do(req)
				require.NoError(t, err)
				defer resp.Body.Close()

				assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
				assert.Contains(t, resp.Header.Get("Content-Type"), "application/json")

				var response apiResponse
				require.NoError(t, json.NewDecoder(resp.Body).Decode(&response))
				assert.False(t, response.Success)
				if assert.NotNil(t, response.Error) {
					assert.Equal(t, "INVALID_TOKEN", response.Error.Code)
					assert.NotEmpty(t, response.Error.Message)
				}
			})
		}
	}
}

func TestAuthAcceptanceTestSuite(t *testing.T) {
	if os.Getenv("SKIP_AUTH_TESTS") == "true" {
		t.Skip("Skipping auth acceptance tests")
	}

	suite.Run(t, new(AuthAcceptanceTestSuite))
}

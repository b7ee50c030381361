package testutil

import (
	"strings"

	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/private-messaging-api/middleware"
)

// MockValidatedClaims builds the claims EnsureValidToken would store for a
// token issued to subject. A nil tenantID means a host user.
func MockValidatedClaims(subject string, tenantID *string, scopes ...string) *validator.ValidatedClaims {
	claims := &middleware.CustomClaims{Scope: strings.Join(scopes, " ")}
	if tenantID != nil {
		claims.TenantID = *tenantID
	}

	return &validator.ValidatedClaims{
		RegisteredClaims: validator.RegisteredClaims{
			Issuer:  "https://test.auth0.com/",
			Subject: subject,
		},
		CustomClaims: claims,
	}
}

// SetMockAuthContext fills c with the values EnsureValidToken sets after a
// successful token check
func SetMockAuthContext(c *gin.Context, subject string, tenantID *string, accessToken string, scopes ...string) {
	c.Set("user_id", subject)
	c.Set("validated_claims", MockValidatedClaims(subject, tenantID, scopes...))
	if accessToken != "" {
		c.Set("access_token", accessToken)
	}
}

package controllers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/kendall-kelly/private-messaging-api/middleware"
	"github.com/kendall-kelly/private-messaging-api/services"
)

// IDsRequest is the body of the batch endpoints
type IDsRequest struct {
	IDs []string `json:"ids" binding:"required"`
}

// statusForCode maps service error codes to HTTP statuses
var statusForCode = map[string]int{
	services.CodeNotFound:        http.StatusNotFound,
	services.CodeForbidden:       http.StatusForbidden,
	services.CodeUserNotFound:    http.StatusNotFound,
	services.CodeValidationError: http.StatusBadRequest,
	services.CodeStorageError:    http.StatusInternalServerError,
}

// respondError writes err using the standard error envelope
func respondError(c *gin.Context, err error) {
	var svcErr *services.ServiceError
	if !errors.As(err, &svcErr) {
		log.Printf("Unexpected error on %s %s: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INTERNAL_ERROR",
				"message": "An unexpected error occurred",
			},
		})
		return
	}

	status, ok := statusForCode[svcErr.Code]
	if !ok {
		status = http.StatusInternalServerError
	}

	body := gin.H{
		"code":    svcErr.Code,
		"message": svcErr.Message,
	}
	switch {
	case svcErr.Code == services.CodeStorageError:
		log.Printf("Storage error on %s %s: %v", c.Request.Method, c.FullPath(), svcErr)
	case svcErr.Err != nil:
		body["details"] = svcErr.Err.Error()
	}

	c.JSON(status, gin.H{
		"success": false,
		"error":   body,
	})
}

func respondValidationError(c *gin.Context, message string, err error) {
	body := gin.H{
		"code":    services.CodeValidationError,
		"message": message,
	}
	if err != nil {
		body["details"] = err.Error()
	}
	c.JSON(http.StatusBadRequest, gin.H{
		"success": false,
		"error":   body,
	})
}

// resolveCaller maps the authenticated Auth0 subject to a directory user
func resolveCaller(c *gin.Context) (services.Caller, bool) {
	auth0ID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UNAUTHORIZED",
				"message": "Could not extract user information",
			},
		})
		return services.Caller{}, false
	}

	user, err := services.GetMessageService().Directory().FindByAuth0ID(c.Request.Context(), auth0ID)
	if err != nil {
		respondError(c, err)
		return services.Caller{}, false
	}

	tenantID := middleware.GetTenantID(c)
	if !sameTenant(user.TenantID, tenantID) {
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error": gin.H{
				"code":    services.CodeForbidden,
				"message": "Token tenant does not match the user profile",
			},
		})
		return services.Caller{}, false
	}

	return services.Caller{UserID: user.ID, TenantID: tenantID}, true
}

func sameTenant(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// pageFromQuery reads skip and take; missing values fall back to the service defaults
func pageFromQuery(c *gin.Context) (services.PageRequest, bool) {
	var page services.PageRequest
	for _, param := range []struct {
		name string
		dest *int
	}{
		{"skip", &page.Skip},
		{"take", &page.Take},
	} {
		raw := c.Query(param.name)
		if raw == "" {
			continue
		}
		value, err := strconv.Atoi(raw)
		if err != nil {
			respondValidationError(c, fmt.Sprintf("Query parameter %q must be an integer", param.name), err)
			return page, false
		}
		*param.dest = value
	}
	return page, true
}

func parseID(c *gin.Context, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		respondValidationError(c, "Invalid id", err)
		return uuid.Nil, false
	}
	return id, true
}

// bindIDs parses a {"ids": [...]} body into uuids
func bindIDs(c *gin.Context) ([]uuid.UUID, bool) {
	var req IDsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, "Invalid request data", err)
		return nil, false
	}

	ids := make([]uuid.UUID, 0, len(req.IDs))
	for _, raw := range req.IDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			respondValidationError(c, "Invalid request data", fmt.Errorf("invalid id %q: %w", raw, err))
			return nil, false
		}
		ids = append(ids, id)
	}
	return ids, true
}

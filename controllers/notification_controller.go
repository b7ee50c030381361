package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/private-messaging-api/services"
)

// ListNotifications handles GET /api/v1/notifications
func ListNotifications(c *gin.Context) {
	caller, ok := resolveCaller(c)
	if !ok {
		return
	}
	page, ok := pageFromQuery(c)
	if !ok {
		return
	}

	result, err := services.GetNotificationService().List(c.Request.Context(), caller, page)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    result,
	})
}

// DismissNotification handles DELETE /api/v1/notifications/:id
func DismissNotification(c *gin.Context) {
	caller, ok := resolveCaller(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := services.GetNotificationService().Dismiss(c.Request.Context(), caller, id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Notification dismissed",
	})
}

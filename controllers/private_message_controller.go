package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/kendall-kelly/private-messaging-api/services"
)

// CreateMessageRequest represents the request body for sending a private message.
// Field limits are enforced by the message service.
type CreateMessageRequest struct {
	ToUserName string `json:"to_user_name"`
	Title      string `json:"title"`
	Content    string `json:"content"`
}

type listFunc func(ctx context.Context, caller services.Caller, page services.PageRequest) (*services.Page[services.MessageView], error)

func listMessages(c *gin.Context, list listFunc) {
	caller, ok := resolveCaller(c)
	if !ok {
		return
	}
	page, ok := pageFromQuery(c)
	if !ok {
		return
	}

	result, err := list(c.Request.Context(), caller, page)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    result,
	})
}

// ListMessages handles GET /api/v1/messages - the caller's inbox, newest first
func ListMessages(c *gin.Context) {
	listMessages(c, services.GetMessageService().List)
}

// ListUnreadMessages handles GET /api/v1/messages/unread
func ListUnreadMessages(c *gin.Context) {
	listMessages(c, services.GetMessageService().ListUnread)
}

// ListSentMessages handles GET /api/v1/messages/sent
func ListSentMessages(c *gin.Context) {
	listMessages(c, services.GetMessageService().ListSent)
}

// GetMessage handles GET /api/v1/messages/:id
func GetMessage(c *gin.Context) {
	caller, ok := resolveCaller(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	view, err := services.GetMessageService().Get(c.Request.Context(), caller, id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    view,
	})
}

// CreateMessage handles POST /api/v1/messages - sends a message to another user
func CreateMessage(c *gin.Context) {
	caller, ok := resolveCaller(c)
	if !ok {
		return
	}

	var req CreateMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, "Invalid request data", err)
		return
	}

	view, err := services.GetMessageService().Create(c.Request.Context(), caller, services.CreateMessageInput{
		ToUserName: req.ToUserName,
		Title:      req.Title,
		Content:    req.Content,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    view,
	})
}

type batchFunc func(ctx context.Context, caller services.Caller, ids []uuid.UUID) error

func applyBatch(c *gin.Context, apply batchFunc) {
	caller, ok := resolveCaller(c)
	if !ok {
		return
	}
	ids, ok := bindIDs(c)
	if !ok {
		return
	}

	if err := apply(c.Request.Context(), caller, ids); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    gin.H{"ids": ids},
	})
}

// SetMessagesRead handles POST /api/v1/messages/read
func SetMessagesRead(c *gin.Context) {
	applyBatch(c, services.GetMessageService().SetRead)
}

// DeleteMessages handles POST /api/v1/messages/delete - removes messages from the inbox
func DeleteMessages(c *gin.Context) {
	applyBatch(c, services.GetMessageService().Delete)
}

// DeleteSentMessages handles POST /api/v1/messages/sent/delete
func DeleteSentMessages(c *gin.Context) {
	applyBatch(c, services.GetMessageService().DeleteSent)
}

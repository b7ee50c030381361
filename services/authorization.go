package services

import "github.com/kendall-kelly/private-messaging-api/models"

// Action names an operation a user attempts on a message
type Action string

const (
	ActionDefault    Action = "default"     // view
	ActionDelete     Action = "delete"      // remove from the inbox
	ActionSetRead    Action = "set_read"    // mark as read
	ActionDeleteSent Action = "delete_sent" // remove from the sent list
)

// Authorize reports whether actorID may perform action on message
func Authorize(actorID uint, message *models.PrivateMessage, action Action) bool {
	if message == nil {
		return false
	}
	switch action {
	case ActionDefault:
		return message.IsSender(actorID) || message.IsReceiver(actorID)
	case ActionDelete, ActionSetRead:
		return message.IsReceiver(actorID)
	case ActionDeleteSent:
		return message.IsSender(actorID)
	default:
		return false
	}
}

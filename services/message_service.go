package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/kendall-kelly/private-messaging-api/models"
	"github.com/samber/lo"
	"gorm.io/gorm"
)

// Caller identifies the authenticated user an operation runs for
type Caller struct {
	UserID   uint
	TenantID *string
}

// PageRequest selects a page by offset
type PageRequest struct {
	Skip int
	Take int
}

// Page is one page of results plus the total number of matches
type Page[T any] struct {
	Items      []T   `json:"items"`
	TotalCount int64 `json:"total_count"`
}

// UserDisplay is the display information attached to a message participant
type UserDisplay struct {
	ID       uint   `json:"id"`
	UserName string `json:"user_name"`
	Name     string `json:"name"`
}

// MessageView is a message as returned to callers
type MessageView struct {
	ID         uuid.UUID    `json:"id"`
	SenderID   *uint        `json:"sender_id,omitempty"`
	ReceiverID uint         `json:"receiver_id"`
	Title      string       `json:"title"`
	Content    string       `json:"content"`
	IsRead     bool         `json:"is_read"`
	ReadAt     *time.Time   `json:"read_at,omitempty"`
	Sender     *UserDisplay `json:"sender,omitempty"`
	Receiver   *UserDisplay `json:"receiver,omitempty"`
	CreatedAt  time.Time    `json:"created_at"`
}

// CreateMessageInput is the payload for sending a message
type CreateMessageInput struct {
	ToUserName string `validate:"required,max=64"`
	Title      string `validate:"required,max=256"`
	Content    string `validate:"required,max=4096"`
}

// MessageServiceOptions tunes a MessageService
type MessageServiceOptions struct {
	TitlePreviewLength int
	DefaultPageSize    int
	MaxPageSize        int
	Now                func() time.Time
}

// MessageService coordinates the directory, both side managers and the
// notification manager behind the public messaging operations
type MessageService struct {
	db        *gorm.DB
	directory UserDirectory
	validate  *validator.Validate
	opts      MessageServiceOptions
}

var messageServiceInstance *MessageService

// NewMessageService creates a message service
func NewMessageService(db *gorm.DB, directory UserDirectory, opts MessageServiceOptions) *MessageService {
	if opts.TitlePreviewLength <= 0 {
		opts.TitlePreviewLength = 20
	}
	if opts.DefaultPageSize <= 0 {
		opts.DefaultPageSize = 10
	}
	if opts.MaxPageSize < opts.DefaultPageSize {
		opts.MaxPageSize = 100
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &MessageService{
		db:        db,
		directory: directory,
		validate:  validator.New(),
		opts:      opts,
	}
}

// InitMessageService creates the shared message service instance
func InitMessageService(db *gorm.DB, directory UserDirectory, opts MessageServiceOptions) *MessageService {
	messageServiceInstance = NewMessageService(db, directory, opts)
	return messageServiceInstance
}

// GetMessageService returns the initialized message service instance
func GetMessageService() *MessageService {
	return messageServiceInstance
}

// SetMessageService sets the message service instance (primarily for testing)
func SetMessageService(service *MessageService) {
	messageServiceInstance = service
}

// Directory returns the user directory the service resolves identities with
func (s *MessageService) Directory() UserDirectory {
	return s.directory
}

// unitOfWork groups the managers bound to one database handle
type unitOfWork struct {
	store         *MessageStore
	sender        *SenderSideManager
	receiver      *ReceiverSideManager
	notifications *NotificationManager
}

func (s *MessageService) bind(db *gorm.DB) *unitOfWork {
	store := NewMessageStore(db)
	return &unitOfWork{
		store:         store,
		sender:        NewSenderSideManager(store),
		receiver:      NewReceiverSideManager(store, s.opts.Now),
		notifications: NewNotificationManager(db),
	}
}

// transaction runs fn with managers bound to a single transaction
func (s *MessageService) transaction(ctx context.Context, fn func(u *unitOfWork) error) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(s.bind(tx))
	})
	return storageError("commit transaction", err)
}

// Get returns a message the caller sent or received, even if either side deleted it
func (s *MessageService) Get(ctx context.Context, caller Caller, id uuid.UUID) (*MessageView, error) {
	if id == uuid.Nil {
		return nil, validationError(fmt.Errorf("message id is required"))
	}
	message, err := s.bind(s.db).store.Get(ctx, caller.TenantID, id)
	if err != nil {
		return nil, err
	}
	if !Authorize(caller.UserID, message, ActionDefault) {
		return nil, forbiddenError("You do not have permission to view this message")
	}
	return s.toView(ctx, message)
}

// List returns the caller's inbox
func (s *MessageService) List(ctx context.Context, caller Caller, page PageRequest) (*Page[MessageView], error) {
	return s.listReceived(ctx, caller, page, false)
}

// ListUnread returns the unread part of the caller's inbox
func (s *MessageService) ListUnread(ctx context.Context, caller Caller, page PageRequest) (*Page[MessageView], error) {
	return s.listReceived(ctx, caller, page, true)
}

func (s *MessageService) listReceived(ctx context.Context, caller Caller, page PageRequest, unreadOnly bool) (*Page[MessageView], error) {
	page, err := s.normalizePage(page)
	if err != nil {
		return nil, err
	}
	receiver := s.bind(s.db).receiver

	messages, err := receiver.GetList(ctx, caller.TenantID, caller.UserID, page.Skip, page.Take, unreadOnly)
	if err != nil {
		return nil, err
	}
	count, err := receiver.Count(ctx, caller.TenantID, caller.UserID, unreadOnly)
	if err != nil {
		return nil, err
	}
	return s.toPage(ctx, messages, count)
}

// ListSent returns the messages the caller sent and has not deleted
func (s *MessageService) ListSent(ctx context.Context, caller Caller, page PageRequest) (*Page[MessageView], error) {
	page, err := s.normalizePage(page)
	if err != nil {
		return nil, err
	}
	sender := s.bind(s.db).sender

	messages, err := sender.GetList(ctx, caller.TenantID, caller.UserID, page.Skip, page.Take)
	if err != nil {
		return nil, err
	}
	count, err := sender.Count(ctx, caller.TenantID, caller.UserID)
	if err != nil {
		return nil, err
	}
	return s.toPage(ctx, messages, count)
}

// Delete removes messages from the caller's inbox. The batch is atomic: the
// first message the caller did not receive aborts it.
func (s *MessageService) Delete(ctx context.Context, caller Caller, ids []uuid.UUID) error {
	return s.applyToEach(ctx, caller, ids, ActionDelete, func(ctx context.Context, u *unitOfWork, m *models.PrivateMessage) error {
		return u.receiver.Delete(ctx, m)
	})
}

// DeleteSent removes messages from the caller's sent list, with the same
// batch semantics as Delete
func (s *MessageService) DeleteSent(ctx context.Context, caller Caller, ids []uuid.UUID) error {
	return s.applyToEach(ctx, caller, ids, ActionDeleteSent, func(ctx context.Context, u *unitOfWork, m *models.PrivateMessage) error {
		return u.sender.Delete(ctx, m)
	})
}

// SetRead marks received messages as read
func (s *MessageService) SetRead(ctx context.Context, caller Caller, ids []uuid.UUID) error {
	return s.applyToEach(ctx, caller, ids, ActionSetRead, func(ctx context.Context, u *unitOfWork, m *models.PrivateMessage) error {
		return u.receiver.SetRead(ctx, m)
	})
}

func (s *MessageService) applyToEach(
	ctx context.Context,
	caller Caller,
	ids []uuid.UUID,
	action Action,
	apply func(ctx context.Context, u *unitOfWork, m *models.PrivateMessage) error,
) error {
	if len(ids) == 0 {
		return validationError(fmt.Errorf("at least one message id is required"))
	}
	if lo.Contains(ids, uuid.Nil) {
		return validationError(fmt.Errorf("message ids must not be empty"))
	}

	return s.transaction(ctx, func(u *unitOfWork) error {
		messages, err := u.store.GetMany(ctx, caller.TenantID, lo.Uniq(ids))
		if err != nil {
			return err
		}
		for i := range messages {
			if !Authorize(caller.UserID, &messages[i], action) {
				return forbiddenError(fmt.Sprintf("You do not have permission to %s message %s", actionVerb(action), messages[i].ID))
			}
		}
		for i := range messages {
			if err := apply(ctx, u, &messages[i]); err != nil {
				return err
			}
		}
		return nil
	})
}

func actionVerb(action Action) string {
	switch action {
	case ActionSetRead:
		return "mark as read"
	case ActionDelete, ActionDeleteSent:
		return "delete"
	default:
		return "view"
	}
}

// Create sends a message to input.ToUserName and notifies the receiver.
// The message and its notification are committed together or not at all.
func (s *MessageService) Create(ctx context.Context, caller Caller, input CreateMessageInput) (*MessageView, error) {
	input.ToUserName = strings.TrimSpace(input.ToUserName)
	input.Title = strings.TrimSpace(input.Title)
	input.Content = strings.TrimSpace(input.Content)
	if err := s.validate.Struct(input); err != nil {
		return nil, validationError(err)
	}

	toUser, err := s.directory.FindByUserName(ctx, caller.TenantID, input.ToUserName)
	if err != nil {
		return nil, err
	}

	now := s.opts.Now().UTC()
	senderID := caller.UserID
	message := &models.PrivateMessage{
		ID:         uuid.New(),
		TenantID:   caller.TenantID,
		SenderID:   &senderID,
		ReceiverID: toUser.ID,
		Title:      input.Title,
		Content:    input.Content,
		CreatedAt:  now,
	}

	err = s.transaction(ctx, func(u *unitOfWork) error {
		if _, err := u.sender.Create(ctx, message); err != nil {
			return err
		}
		_, err := u.notifications.Create(ctx, &models.PrivateMessageNotification{
			ID:           uuid.New(),
			TenantID:     message.TenantID,
			RecipientID:  toUser.ID,
			MessageID:    message.ID,
			TitlePreview: message.TitlePreview(s.opts.TitlePreviewLength),
			CreatedAt:    now,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	return s.toView(ctx, message)
}

func (s *MessageService) normalizePage(page PageRequest) (PageRequest, error) {
	if page.Skip < 0 {
		return page, validationError(fmt.Errorf("skip must not be negative"))
	}
	if page.Take <= 0 {
		page.Take = s.opts.DefaultPageSize
	}
	if page.Take > s.opts.MaxPageSize {
		return page, validationError(fmt.Errorf("take must not exceed %d", s.opts.MaxPageSize))
	}
	return page, nil
}

func (s *MessageService) toPage(ctx context.Context, messages []models.PrivateMessage, count int64) (*Page[MessageView], error) {
	views, err := s.toViews(ctx, messages)
	if err != nil {
		return nil, err
	}
	return &Page[MessageView]{Items: views, TotalCount: count}, nil
}

func (s *MessageService) toView(ctx context.Context, message *models.PrivateMessage) (*MessageView, error) {
	views, err := s.toViews(ctx, []models.PrivateMessage{*message})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// toViews maps messages and attaches participant display info using a single
// directory lookup for the whole set. Unknown users are left unset.
func (s *MessageService) toViews(ctx context.Context, messages []models.PrivateMessage) ([]MessageView, error) {
	if len(messages) == 0 {
		return []MessageView{}, nil
	}

	userIDs := lo.Uniq(lo.FlatMap(messages, func(m models.PrivateMessage, _ int) []uint {
		if m.SenderID == nil {
			return []uint{m.ReceiverID}
		}
		return []uint{m.ReceiverID, *m.SenderID}
	}))
	users, err := s.directory.GetByIDs(ctx, userIDs)
	if err != nil {
		return nil, err
	}
	displays := lo.SliceToMap(users, func(u models.User) (uint, UserDisplay) {
		return u.ID, UserDisplay{ID: u.ID, UserName: u.UserName, Name: u.Name}
	})

	return lo.Map(messages, func(m models.PrivateMessage, _ int) MessageView {
		view := MessageView{
			ID:         m.ID,
			SenderID:   m.SenderID,
			ReceiverID: m.ReceiverID,
			Title:      m.Title,
			Content:    m.Content,
			IsRead:     m.IsRead,
			ReadAt:     m.ReadAt,
			CreatedAt:  m.CreatedAt,
		}
		if d, ok := displays[m.ReceiverID]; ok {
			view.Receiver = &d
		}
		if m.SenderID != nil {
			if d, ok := displays[*m.SenderID]; ok {
				view.Sender = &d
			}
		}
		return view
	}), nil
}

package service

import (
	"context"
	"errors"

	"octagram/backend/internal/message/domain"
	userdomain "octagram/backend/internal/user/domain"
)

// Sentinel errors for the message service; the handler maps them to HTTP statuses.
var (
	ErrUserNotFound    = errors.New("user not found")
	ErrMessageNotFound = errors.New("message not found")
	ErrNotParticipant  = errors.New("not a participant in this conversation")
)

// MessageRepo is the minimal message repository needed by the service.
type MessageRepo interface {
	GetByID(ctx context.Context, id string) (*domain.Message, error)
	Conversation(ctx context.Context, userA, userB string, limit, offset int) ([]domain.Message, error)
	MarkRead(ctx context.Context, id string) error
}

// UserRepo is the minimal user repository needed by the service.
type UserRepo interface {
	GetByID(ctx context.Context, id string) (*userdomain.User, error)
}

// MessageService reads conversations and marks messages read. Sending goes
// through the realtime dispatcher, which shares the same repository.
type MessageService struct {
	messageRepo MessageRepo
	userRepo    UserRepo
}

// NewMessageService returns a MessageService with the given dependencies.
func NewMessageService(messageRepo MessageRepo, userRepo UserRepo) *MessageService {
	return &MessageService{messageRepo: messageRepo, userRepo: userRepo}
}

// Conversation page size bounds. A page or pageSize outside them falls back
// to the defaults.
const (
	defaultPageSize = 50
	maxPageSize     = 100
)

// Conversation returns one page of the exchange between the caller and the
// other user, oldest first. page is 1-based.
func (s *MessageService) Conversation(ctx context.Context, callerID, otherID string, page, pageSize int) ([]domain.Message, error) {
	other, err := s.userRepo.GetByID(ctx, otherID)
	if err != nil {
		return nil, err
	}
	if other == nil {
		return nil, ErrUserNotFound
	}
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > maxPageSize {
		pageSize = defaultPageSize
	}
	return s.messageRepo.Conversation(ctx, callerID, otherID, pageSize, (page-1)*pageSize)
}

// MarkRead flags a message as read. Only the receiver may do so; the sender
// and third parties get ErrNotParticipant.
func (s *MessageService) MarkRead(ctx context.Context, callerID, messageID string) error {
	m, err := s.messageRepo.GetByID(ctx, messageID)
	if err != nil {
		return err
	}
	if m == nil {
		return ErrMessageNotFound
	}
	if m.ReceiverID != callerID {
		return ErrNotParticipant
	}
	return s.messageRepo.MarkRead(ctx, messageID)
}

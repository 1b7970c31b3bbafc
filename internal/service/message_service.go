package service

import (
	"alcyxob/fitcoach/internal/domain"
	"alcyxob/fitcoach/internal/events"
	"alcyxob/fitcoach/internal/logger"
	"alcyxob/fitcoach/internal/repository"
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const defaultThreadLimit = 100

var (
	ErrMessageNotFound     = errors.New("message not found")
	ErrMessageAccessDenied = errors.New("access denied to this message")
	ErrMessageSelf         = fmt.Errorf("%w: cannot send a message to yourself", ErrValidationFailed)
	ErrMessageEmpty        = fmt.Errorf("%w: message content cannot be empty", ErrValidationFailed)
	ErrMessageTooLong      = fmt.Errorf("%w: message content exceeds %d characters", ErrValidationFailed, domain.MaxMessageLength)
	ErrReceiverNotFound    = errors.New("receiver not found")
)

type MessageService interface {
	SendMessage(ctx context.Context, senderID, receiverID primitive.ObjectID, content string) (*domain.Message, error)
	ListConversations(ctx context.Context, userID primitive.ObjectID) ([]domain.Conversation, error)
	GetThread(ctx context.Context, userID, counterpartID primitive.ObjectID, limit int64) ([]domain.Message, error)
	MarkRead(ctx context.Context, userID, messageID primitive.ObjectID) (*domain.Message, error)
	MarkThreadRead(ctx context.Context, userID, counterpartID primitive.ObjectID) (int64, error)
	UnreadCount(ctx context.Context, userID primitive.ObjectID) (int64, error)
	DeleteMessage(ctx context.Context, userID, messageID primitive.ObjectID) error
}

type messageService struct {
	messageRepo repository.MessageRepository
	userRepo    repository.UserRepository
	publisher   events.Publisher
	log         *logger.Logger
	now         func() time.Time
}

func NewMessageService(messageRepo repository.MessageRepository, userRepo repository.UserRepository, publisher events.Publisher, log *logger.Logger) MessageService {
	return &messageService{
		messageRepo: messageRepo,
		userRepo:    userRepo,
		publisher:   publisher,
		log:         log,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (s *messageService) SendMessage(ctx context.Context, senderID, receiverID primitive.ObjectID, content string) (*domain.Message, error) {
	if senderID == receiverID {
		return nil, ErrMessageSelf
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrMessageEmpty
	}
	if utf8.RuneCountInString(content) > domain.MaxMessageLength {
		return nil, ErrMessageTooLong
	}

	if _, err := s.userRepo.GetByID(ctx, receiverID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrReceiverNotFound
		}
		return nil, err
	}

	message := &domain.Message{
		SenderID:   senderID,
		ReceiverID: receiverID,
		Content:    content,
	}
	id, err := s.messageRepo.Create(ctx, message)
	if err != nil {
		return nil, err
	}
	message.ID = id

	publishEvent(ctx, s.publisher, s.log, events.MessageSent, message)
	return message, nil
}

// ListConversations rolls the user's messages up by counterpart. Messages come
// back newest first, so the first one seen per counterpart is the latest.
func (s *messageService) ListConversations(ctx context.Context, userID primitive.ObjectID) ([]domain.Conversation, error) {
	messages, err := s.messageRepo.GetByParticipant(ctx, userID)
	if err != nil {
		return nil, err
	}

	index := make(map[primitive.ObjectID]int)
	conversations := []domain.Conversation{}
	for _, m := range messages {
		counterpart := m.Counterpart(userID)
		i, ok := index[counterpart]
		if !ok {
			i = len(conversations)
			index[counterpart] = i
			conversations = append(conversations, domain.Conversation{CounterpartID: counterpart, LastMessage: m})
		} else if m.SentAt.After(conversations[i].LastMessage.SentAt) {
			conversations[i].LastMessage = m
		}
		if m.ReceiverID == userID && !m.Read {
			conversations[i].UnreadCount++
		}
	}

	sort.SliceStable(conversations, func(i, j int) bool {
		return conversations[i].LastMessage.SentAt.After(conversations[j].LastMessage.SentAt)
	})

	if err := s.attachCounterparts(ctx, conversations); err != nil {
		return nil, err
	}
	return conversations, nil
}

func (s *messageService) attachCounterparts(ctx context.Context, conversations []domain.Conversation) error {
	if len(conversations) == 0 {
		return nil
	}
	ids := make([]primitive.ObjectID, 0, len(conversations))
	for _, c := range conversations {
		ids = append(ids, c.CounterpartID)
	}
	users, err := s.userRepo.GetByIDs(ctx, ids)
	if err != nil {
		return err
	}
	byID := make(map[primitive.ObjectID]*domain.User, len(users))
	for i := range users {
		users[i].PasswordHash = ""
		users[i].ClientIDs = nil
		byID[users[i].ID] = &users[i]
	}
	for i := range conversations {
		conversations[i].Counterpart = byID[conversations[i].CounterpartID]
	}
	return nil
}

func (s *messageService) GetThread(ctx context.Context, userID, counterpartID primitive.ObjectID, limit int64) ([]domain.Message, error) {
	if limit <= 0 {
		limit = defaultThreadLimit
	}
	return s.messageRepo.GetThread(ctx, userID, counterpartID, limit)
}

// MarkRead is idempotent: a message that is already read keeps its readAt.
func (s *messageService) MarkRead(ctx context.Context, userID, messageID primitive.ObjectID) (*domain.Message, error) {
	message, err := s.getMessage(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if message.ReceiverID != userID {
		return nil, ErrMessageAccessDenied
	}
	if message.Read {
		return message, nil
	}

	at := s.now()
	modified, err := s.messageRepo.MarkRead(ctx, messageID, at)
	if err != nil {
		return nil, err
	}
	if !modified {
		// marked by a concurrent request; return what is stored
		return s.getMessage(ctx, messageID)
	}
	message.Read = true
	message.ReadAt = &at
	return message, nil
}

func (s *messageService) MarkThreadRead(ctx context.Context, userID, counterpartID primitive.ObjectID) (int64, error) {
	return s.messageRepo.MarkThreadRead(ctx, userID, counterpartID, s.now())
}

func (s *messageService) UnreadCount(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	return s.messageRepo.CountUnread(ctx, userID)
}

func (s *messageService) DeleteMessage(ctx context.Context, userID, messageID primitive.ObjectID) error {
	message, err := s.getMessage(ctx, messageID)
	if err != nil {
		return err
	}
	if message.SenderID != userID {
		return ErrMessageAccessDenied
	}
	if err := s.messageRepo.Delete(ctx, messageID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrMessageNotFound
		}
		return err
	}
	return nil
}

func (s *messageService) getMessage(ctx context.Context, messageID primitive.ObjectID) (*domain.Message, error) {
	message, err := s.messageRepo.GetByID(ctx, messageID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrMessageNotFound
		}
		return nil, err
	}
	return message, nil
}

package service

import (
	"context"
	"strings"
	"unicode/utf8"

	repository "github.com/ds124wfegd/learnlink/internal/database/postgres"
	"github.com/ds124wfegd/learnlink/internal/entity"
)

const (
	defaultMessagePage = 50
	maxMessagePage     = 200
)

type messageService struct {
	conversationRepo repository.ConversationRepository
	userRepo         repository.UserRepository
}

func NewMessageService(conversationRepo repository.ConversationRepository, userRepo repository.UserRepository) MessageService {
	return &messageService{
		conversationRepo: conversationRepo,
		userRepo:         userRepo,
	}
}

func (s *messageService) StartConversation(ctx context.Context, p entity.Principal, otherUserID int64) (*entity.Conversation, error) {
	other, err := s.userRepo.GetByID(ctx, otherUserID)
	if err != nil {
		return nil, err
	}

	switch {
	case p.Is(entity.RoleStudent) && other.Role == entity.RoleProfessor:
		return s.conversationRepo.GetOrCreate(ctx, p.ID, other.ID)
	case p.Is(entity.RoleProfessor) && other.Role == entity.RoleStudent:
		return s.conversationRepo.GetOrCreate(ctx, other.ID, p.ID)
	}
	return nil, entity.ErrInvalidParticipants
}

func (s *messageService) SendMessage(ctx context.Context, p entity.Principal, conversationID int64, body string) (*entity.Message, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, entity.Invalidf("message body is required")
	}
	if utf8.RuneCountInString(body) > entity.MaxMessageLength {
		return nil, entity.Invalidf("message body exceeds %d characters", entity.MaxMessageLength)
	}

	if _, err := s.participantConversation(ctx, p, conversationID); err != nil {
		return nil, err
	}

	msg := &entity.Message{
		ConversationID: conversationID,
		SenderID:       p.ID,
		Body:           body,
	}
	if err := s.conversationRepo.AddMessage(ctx, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

func (s *messageService) ListConversations(ctx context.Context, p entity.Principal) ([]*entity.Conversation, error) {
	return s.conversationRepo.ListByUser(ctx, p.ID)
}

func (s *messageService) ListMessages(ctx context.Context, p entity.Principal, conversationID int64, limit int, beforeID int64) ([]*entity.Message, error) {
	if _, err := s.participantConversation(ctx, p, conversationID); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultMessagePage
	}
	if limit > maxMessagePage {
		limit = maxMessagePage
	}
	if beforeID < 0 {
		return nil, entity.Invalidf("before must be a positive message id")
	}
	return s.conversationRepo.ListMessages(ctx, conversationID, limit, beforeID)
}

func (s *messageService) participantConversation(ctx context.Context, p entity.Principal, conversationID int64) (*entity.Conversation, error) {
	conversation, err := s.conversationRepo.GetByID(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if !conversation.IsParticipant(p.ID) {
		return nil, entity.ErrNotOwner
	}
	return conversation, nil
}

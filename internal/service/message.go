package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/crowdforge/crowdforge-backend/internal/domain"
)

type messageRepo interface {
	Create(ctx context.Context, m *domain.Message) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Message, error)
	ListByCampaign(ctx context.Context, campaignID uuid.UUID) ([]domain.Message, error)
	ListByCampaignParticipant(ctx context.Context, campaignID, userID uuid.UUID) ([]domain.Message, error)
}

// MessageSent is published for the delivery collaborator; the core never
// waits on delivery.
type MessageSent struct {
	MessageID  uuid.UUID
	CampaignID uuid.UUID
	ReceiverID uuid.UUID
}

type publisher interface {
	Publish(ctx context.Context, event any)
}

type MessageService struct {
	messages  messageRepo
	campaigns campaignGetter
	users     userGetter
	events    publisher
}

func NewMessageService(messages messageRepo, campaigns campaignGetter, users userGetter, events publisher) *MessageService {
	return &MessageService{messages: messages, campaigns: campaigns, users: users, events: events}
}

func (s *MessageService) SendMessage(ctx context.Context, campaignID, senderID, receiverID uuid.UUID, content string) (*domain.Message, error) {
	if _, err := s.campaigns.GetByID(ctx, campaignID); err != nil {
		return nil, fmt.Errorf("SendMessage: %w", err)
	}

	sender, err := s.users.GetByID(ctx, senderID)
	if err != nil {
		return nil, fmt.Errorf("SendMessage: %w", err)
	}
	if _, err := s.users.GetByID(ctx, receiverID); err != nil {
		return nil, fmt.Errorf("SendMessage: %w", err)
	}

	message := &domain.Message{
		ID:         uuid.New(),
		CampaignID: campaignID,
		SenderID:   sender.ID,
		SenderName: sender.Name,
		ReceiverID: receiverID,
		Content:    content,
		CreatedAt:  time.Now().UTC(),
	}

	if err := s.messages.Create(ctx, message); err != nil {
		return nil, fmt.Errorf("SendMessage: %w", err)
	}

	if s.events != nil {
		s.events.Publish(ctx, MessageSent{
			MessageID:  message.ID,
			CampaignID: campaignID,
			ReceiverID: receiverID,
		})
	}

	return message, nil
}

// ReplyToMessage sends a message back to the sender of an earlier message in
// the same campaign thread.
func (s *MessageService) ReplyToMessage(ctx context.Context, campaignID, messageID, senderID uuid.UUID, content string) (*domain.Message, error) {
	original, err := s.messages.GetByID(ctx, messageID)
	if err != nil {
		return nil, fmt.Errorf("ReplyToMessage: %w", err)
	}
	if original.CampaignID != campaignID {
		return nil, fmt.Errorf("ReplyToMessage: %w", domain.ErrMessageNotFound)
	}

	reply, err := s.SendMessage(ctx, campaignID, senderID, original.SenderID, content)
	if err != nil {
		return nil, fmt.Errorf("ReplyToMessage: %w", err)
	}
	return reply, nil
}

// ListMessages returns the whole thread for the campaign creator and only
// the user's own messages for everyone else.
func (s *MessageService) ListMessages(ctx context.Context, campaignID, userID uuid.UUID) ([]domain.Message, error) {
	campaign, err := s.campaigns.GetByID(ctx, campaignID)
	if err != nil {
		return nil, fmt.Errorf("ListMessages: %w", err)
	}

	if campaign.CreatorID == userID {
		messages, err := s.messages.ListByCampaign(ctx, campaignID)
		if err != nil {
			return nil, fmt.Errorf("ListMessages: %w", err)
		}
		return messages, nil
	}

	messages, err := s.messages.ListByCampaignParticipant(ctx, campaignID, userID)
	if err != nil {
		return nil, fmt.Errorf("ListMessages: %w", err)
	}
	return messages, nil
}

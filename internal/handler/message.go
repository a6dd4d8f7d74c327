package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/crowdforge/crowdforge-backend/internal/auth"
	"github.com/crowdforge/crowdforge-backend/internal/domain"
)

type messageService interface {
	SendMessage(ctx context.Context, campaignID, senderID, receiverID uuid.UUID, content string) (*domain.Message, error)
	ReplyToMessage(ctx context.Context, campaignID, messageID, senderID uuid.UUID, content string) (*domain.Message, error)
	ListMessages(ctx context.Context, campaignID, userID uuid.UUID) ([]domain.Message, error)
}

type MessageHandler struct {
	messages messageService
}

func NewMessageHandler(messages messageService) *MessageHandler {
	return &MessageHandler{messages: messages}
}

type messageDTO struct {
	ID         uuid.UUID `json:"id"`
	CampaignID uuid.UUID `json:"campaign_id"`
	SenderID   uuid.UUID `json:"sender_id"`
	SenderName string    `json:"sender_name"`
	ReceiverID uuid.UUID `json:"receiver_id"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
}

func toMessageDTO(m *domain.Message) messageDTO {
	return messageDTO{
		ID:         m.ID,
		CampaignID: m.CampaignID,
		SenderID:   m.SenderID,
		SenderName: m.SenderName,
		ReceiverID: m.ReceiverID,
		Content:    m.Content,
		CreatedAt:  m.CreatedAt,
	}
}

type sendMessageRequest struct {
	ReceiverID string `json:"receiver_id"`
	Content    string `json:"content"`
}

func (r sendMessageRequest) Validate() []FieldError {
	var errs []FieldError
	if r.ReceiverID == "" {
		errs = append(errs, FieldError{Field: "receiver_id", Message: "required"})
	} else if _, err := uuid.Parse(r.ReceiverID); err != nil {
		errs = append(errs, FieldError{Field: "receiver_id", Message: "must be a valid UUID"})
	}
	if r.Content == "" {
		errs = append(errs, FieldError{Field: "content", Message: "required"})
	}
	return errs
}

func (h *MessageHandler) Send(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		RespondAppError(w, ErrUnauthorized, nil)
		return
	}

	campaignID, ok := pathUUID(r, "id")
	if !ok {
		RespondValidationError(w, []FieldError{{Field: "id", Message: "must be a valid UUID"}})
		return
	}

	var req sendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequestBody, nil)
		return
	}

	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	message, err := h.messages.SendMessage(r.Context(), campaignID, userID, uuid.MustParse(req.ReceiverID), req.Content)
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusCreated, toMessageDTO(message))
}

type replyMessageRequest struct {
	Content string `json:"content"`
}

func (h *MessageHandler) Reply(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		RespondAppError(w, ErrUnauthorized, nil)
		return
	}

	campaignID, ok := pathUUID(r, "id")
	if !ok {
		RespondValidationError(w, []FieldError{{Field: "id", Message: "must be a valid UUID"}})
		return
	}
	messageID, ok := pathUUID(r, "messageID")
	if !ok {
		RespondValidationError(w, []FieldError{{Field: "messageID", Message: "must be a valid UUID"}})
		return
	}

	var req replyMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequestBody, nil)
		return
	}
	if req.Content == "" {
		RespondValidationError(w, []FieldError{{Field: "content", Message: "required"}})
		return
	}

	message, err := h.messages.ReplyToMessage(r.Context(), campaignID, messageID, userID, req.Content)
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusCreated, toMessageDTO(message))
}

func (h *MessageHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		RespondAppError(w, ErrUnauthorized, nil)
		return
	}

	campaignID, ok := pathUUID(r, "id")
	if !ok {
		RespondValidationError(w, []FieldError{{Field: "id", Message: "must be a valid UUID"}})
		return
	}

	messages, err := h.messages.ListMessages(r.Context(), campaignID, userID)
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	out := make([]messageDTO, 0, len(messages))
	for i := range messages {
		out = append(out, toMessageDTO(&messages[i]))
	}
	RespondSuccess(w, http.StatusOK, out)
}

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

type commentService interface {
	ListComments(ctx context.Context, campaignID uuid.UUID) ([]domain.Comment, error)
	AddComment(ctx context.Context, campaignID, authorID uuid.UUID, content string) (*domain.Comment, error)
	ReplyToComment(ctx context.Context, campaignID, commentID, userID uuid.UUID, reply string) (*domain.Comment, error)
}

type CommentHandler struct {
	comments commentService
}

func NewCommentHandler(comments commentService) *CommentHandler {
	return &CommentHandler{comments: comments}
}

type commentDTO struct {
	ID         uuid.UUID `json:"id"`
	CampaignID uuid.UUID `json:"campaign_id"`
	AuthorID   uuid.UUID `json:"author_id"`
	AuthorName string    `json:"author_name"`
	Content    string    `json:"content"`
	Reply      *string   `json:"reply"`
	CreatedAt  time.Time `json:"created_at"`
}

func toCommentDTO(c *domain.Comment) commentDTO {
	return commentDTO{
		ID:         c.ID,
		CampaignID: c.CampaignID,
		AuthorID:   c.AuthorID,
		AuthorName: c.AuthorName,
		Content:    c.Content,
		Reply:      c.Reply,
		CreatedAt:  c.CreatedAt,
	}
}

func (h *CommentHandler) List(w http.ResponseWriter, r *http.Request) {
	campaignID, ok := pathUUID(r, "id")
	if !ok {
		RespondValidationError(w, []FieldError{{Field: "id", Message: "must be a valid UUID"}})
		return
	}

	comments, err := h.comments.ListComments(r.Context(), campaignID)
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	out := make([]commentDTO, 0, len(comments))
	for i := range comments {
		out = append(out, toCommentDTO(&comments[i]))
	}
	RespondSuccess(w, http.StatusOK, out)
}

type addCommentRequest struct {
	Content string `json:"content"`
}

func (h *CommentHandler) Add(w http.ResponseWriter, r *http.Request) {
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

	var req addCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequestBody, nil)
		return
	}
	if req.Content == "" {
		RespondValidationError(w, []FieldError{{Field: "content", Message: "required"}})
		return
	}

	comment, err := h.comments.AddComment(r.Context(), campaignID, userID, req.Content)
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusCreated, toCommentDTO(comment))
}

type replyCommentRequest struct {
	Reply string `json:"reply"`
}

func (h *CommentHandler) Reply(w http.ResponseWriter, r *http.Request) {
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
	commentID, ok := pathUUID(r, "commentID")
	if !ok {
		RespondValidationError(w, []FieldError{{Field: "commentID", Message: "must be a valid UUID"}})
		return
	}

	var req replyCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequestBody, nil)
		return
	}
	if req.Reply == "" {
		RespondValidationError(w, []FieldError{{Field: "reply", Message: "required"}})
		return
	}

	comment, err := h.comments.ReplyToComment(r.Context(), campaignID, commentID, userID, req.Reply)
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, toCommentDTO(comment))
}

package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/mail"
	"time"

	"github.com/google/uuid"

	"github.com/crowdforge/crowdforge-backend/internal/domain"
)

type contactStore interface {
	Create(ctx context.Context, c *domain.Contact) error
}

type ContactHandler struct {
	contacts contactStore
}

func NewContactHandler(contacts contactStore) *ContactHandler {
	return &ContactHandler{contacts: contacts}
}

type contactRequest struct {
	Reason  string  `json:"reason"`
	Name    string  `json:"name"`
	Email   string  `json:"email"`
	Phone   *string `json:"phone"`
	Message string  `json:"message"`
}

func (r contactRequest) Validate() []FieldError {
	var errs []FieldError
	if !domain.ContactReason(r.Reason).IsValid() {
		errs = append(errs, FieldError{Field: "reason", Message: "must be inquiry, feedback, complaint, issue, or other"})
	}
	if r.Name == "" {
		errs = append(errs, FieldError{Field: "name", Message: "required"})
	}
	if r.Email == "" {
		errs = append(errs, FieldError{Field: "email", Message: "required"})
	} else if _, err := mail.ParseAddress(r.Email); err != nil {
		errs = append(errs, FieldError{Field: "email", Message: "must be a valid email address"})
	}
	if r.Message == "" {
		errs = append(errs, FieldError{Field: "message", Message: "required"})
	}
	return errs
}

func (h *ContactHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req contactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequestBody, nil)
		return
	}

	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	contact := &domain.Contact{
		ID:        uuid.New(),
		Reason:    domain.ContactReason(req.Reason),
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
		Message:   req.Message,
		CreatedAt: time.Now().UTC(),
	}

	if err := h.contacts.Create(r.Context(), contact); err != nil {
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusCreated, map[string]string{"id": contact.ID.String()})
}

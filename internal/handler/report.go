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

type reportStore interface {
	Create(ctx context.Context, rep *domain.Report) error
}

type ReportHandler struct {
	reports reportStore
}

func NewReportHandler(reports reportStore) *ReportHandler {
	return &ReportHandler{reports: reports}
}

type reportRequest struct {
	Type          string `json:"type"`
	Reason        string `json:"reason"`
	Details       string `json:"details"`
	ReporterName  string `json:"reporter_name"`
	ReporterEmail string `json:"reporter_email"`
}

func (r reportRequest) Validate() []FieldError {
	var errs []FieldError
	if !domain.ReportType(r.Type).IsValid() {
		errs = append(errs, FieldError{Field: "type", Message: "must be campaign or user"})
	}
	if r.Reason == "" {
		errs = append(errs, FieldError{Field: "reason", Message: "required"})
	}
	if r.ReporterName == "" {
		errs = append(errs, FieldError{Field: "reporter_name", Message: "required"})
	}
	if r.ReporterEmail == "" {
		errs = append(errs, FieldError{Field: "reporter_email", Message: "required"})
	} else if _, err := mail.ParseAddress(r.ReporterEmail); err != nil {
		errs = append(errs, FieldError{Field: "reporter_email", Message: "must be a valid email address"})
	}
	return errs
}

func (h *ReportHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req reportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequestBody, nil)
		return
	}

	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	report := &domain.Report{
		ID:            uuid.New(),
		Type:          domain.ReportType(req.Type),
		Reason:        req.Reason,
		Details:       req.Details,
		ReporterName:  req.ReporterName,
		ReporterEmail: req.ReporterEmail,
		Status:        domain.ReportStatusActive,
		CreatedAt:     time.Now().UTC(),
	}

	if err := h.reports.Create(r.Context(), report); err != nil {
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusCreated, map[string]string{"id": report.ID.String()})
}

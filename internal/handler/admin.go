package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/crowdforge/crowdforge-backend/internal/domain"
	"github.com/crowdforge/crowdforge-backend/internal/logging"
)

type adminUserStore interface {
	List(ctx context.Context) ([]domain.User, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.UserStatus) error
}

type adminCampaignStore interface {
	List(ctx context.Context, category string) ([]domain.Campaign, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Campaign, error)
	UpdateVerification(ctx context.Context, id uuid.UUID, v domain.VerificationStatus, denyReason *string) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type adminReportStore interface {
	List(ctx context.Context) ([]domain.Report, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.ReportStatus) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type AdminHandler struct {
	users     adminUserStore
	campaigns adminCampaignStore
	reports   adminReportStore
}

func NewAdminHandler(users adminUserStore, campaigns adminCampaignStore, reports adminReportStore) *AdminHandler {
	return &AdminHandler{users: users, campaigns: campaigns, reports: reports}
}

func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	out := make([]userDTO, 0, len(users))
	for i := range users {
		out = append(out, toUserDTO(&users[i]))
	}
	RespondSuccess(w, http.StatusOK, out)
}

type updateUserStatusRequest struct {
	Status string `json:"status"`
}

func (r updateUserStatusRequest) Validate() []FieldError {
	switch domain.UserStatus(r.Status) {
	case domain.UserStatusActive, domain.UserStatusBlocked, domain.UserStatusBanned:
		return nil
	default:
		return []FieldError{{Field: "status", Message: "must be active, blocked, or banned"}}
	}
}

func (h *AdminHandler) UpdateUserStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathUUID(r, "id")
	if !ok {
		RespondValidationError(w, []FieldError{{Field: "id", Message: "must be a valid UUID"}})
		return
	}

	var req updateUserStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequestBody, nil)
		return
	}

	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	if err := h.users.UpdateStatus(r.Context(), userID, domain.UserStatus(req.Status)); err != nil {
		RespondDomainError(w, err)
		return
	}

	logging.FromContext(r.Context()).Info("user status updated",
		"target_user_id", userID,
		"status", req.Status,
	)
	RespondSuccess(w, http.StatusOK, map[string]string{"status": req.Status})
}

func (h *AdminHandler) ListCampaigns(w http.ResponseWriter, r *http.Request) {
	campaigns, err := h.campaigns.List(r.Context(), r.URL.Query().Get("category"))
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, toCampaignDTOs(campaigns))
}

type verifyCampaignRequest struct {
	Verification string  `json:"verification"`
	DenyReason   *string `json:"deny_reason"`
}

func (r verifyCampaignRequest) Validate() []FieldError {
	var errs []FieldError
	v := domain.VerificationStatus(r.Verification)
	if v != domain.VerificationApproved && v != domain.VerificationDenied {
		errs = append(errs, FieldError{Field: "verification", Message: "must be approved or denied"})
	}
	if v == domain.VerificationDenied && (r.DenyReason == nil || *r.DenyReason == "") {
		errs = append(errs, FieldError{Field: "deny_reason", Message: "required when denying"})
	}
	return errs
}

func (h *AdminHandler) VerifyCampaign(w http.ResponseWriter, r *http.Request) {
	campaignID, ok := pathUUID(r, "id")
	if !ok {
		RespondValidationError(w, []FieldError{{Field: "id", Message: "must be a valid UUID"}})
		return
	}

	var req verifyCampaignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequestBody, nil)
		return
	}

	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	v := domain.VerificationStatus(req.Verification)
	denyReason := req.DenyReason
	if v == domain.VerificationApproved {
		denyReason = nil
	}

	if err := h.campaigns.UpdateVerification(r.Context(), campaignID, v, denyReason); err != nil {
		RespondDomainError(w, err)
		return
	}

	campaign, err := h.campaigns.GetByID(r.Context(), campaignID)
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, toCampaignDTO(campaign))
}

type deleteCampaignRequest struct {
	Reason string `json:"reason"`
}

func (h *AdminHandler) DeleteCampaign(w http.ResponseWriter, r *http.Request) {
	campaignID, ok := pathUUID(r, "id")
	if !ok {
		RespondValidationError(w, []FieldError{{Field: "id", Message: "must be a valid UUID"}})
		return
	}

	var req deleteCampaignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequestBody, nil)
		return
	}
	if req.Reason == "" {
		RespondValidationError(w, []FieldError{{Field: "reason", Message: "required"}})
		return
	}

	if err := h.campaigns.Delete(r.Context(), campaignID); err != nil {
		RespondDomainError(w, err)
		return
	}

	logging.FromContext(r.Context()).Info("campaign removed by moderator",
		"campaign_id", campaignID,
		"reason", req.Reason,
	)
	RespondSuccess(w, http.StatusOK, map[string]string{"status": "deleted"})
}

type reportDTO struct {
	ID            uuid.UUID `json:"id"`
	Type          string    `json:"type"`
	Reason        string    `json:"reason"`
	Details       string    `json:"details"`
	ReporterName  string    `json:"reporter_name"`
	ReporterEmail string    `json:"reporter_email"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
}

func (h *AdminHandler) ListReports(w http.ResponseWriter, r *http.Request) {
	reports, err := h.reports.List(r.Context())
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	out := make([]reportDTO, 0, len(reports))
	for _, rep := range reports {
		out = append(out, reportDTO{
			ID:            rep.ID,
			Type:          string(rep.Type),
			Reason:        rep.Reason,
			Details:       rep.Details,
			ReporterName:  rep.ReporterName,
			ReporterEmail: rep.ReporterEmail,
			Status:        string(rep.Status),
			CreatedAt:     rep.CreatedAt,
		})
	}
	RespondSuccess(w, http.StatusOK, out)
}

func (h *AdminHandler) ResolveReport(w http.ResponseWriter, r *http.Request) {
	reportID, ok := pathUUID(r, "id")
	if !ok {
		RespondValidationError(w, []FieldError{{Field: "id", Message: "must be a valid UUID"}})
		return
	}

	if err := h.reports.UpdateStatus(r.Context(), reportID, domain.ReportStatusResolved); err != nil {
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, map[string]string{"status": "resolved"})
}

func (h *AdminHandler) DeleteReport(w http.ResponseWriter, r *http.Request) {
	reportID, ok := pathUUID(r, "id")
	if !ok {
		RespondValidationError(w, []FieldError{{Field: "id", Message: "must be a valid UUID"}})
		return
	}

	if err := h.reports.Delete(r.Context(), reportID); err != nil {
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, map[string]string{"status": "deleted"})
}

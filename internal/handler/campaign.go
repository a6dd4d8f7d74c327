package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/crowdforge/crowdforge-backend/internal/auth"
	"github.com/crowdforge/crowdforge-backend/internal/domain"
	"github.com/crowdforge/crowdforge-backend/internal/service"
)

type campaignService interface {
	CreateCampaign(ctx context.Context, creatorID uuid.UUID, in service.CreateCampaignInput) (*domain.Campaign, error)
	UpdateCampaign(ctx context.Context, campaignID, userID uuid.UUID, in service.CreateCampaignInput) (*domain.Campaign, error)
	DeleteCampaign(ctx context.Context, campaignID, userID uuid.UUID) error
	GetCampaign(ctx context.Context, campaignID uuid.UUID) (*domain.Campaign, error)
	ListCampaigns(ctx context.Context, category string) ([]domain.Campaign, error)
	ListUserCampaigns(ctx context.Context, creatorID uuid.UUID) ([]domain.Campaign, error)
}

type fundStateReader interface {
	GetCampaignFundState(ctx context.Context, campaignID uuid.UUID) (*domain.FundState, error)
}

type CampaignHandler struct {
	campaigns campaignService
	funding   fundStateReader
}

func NewCampaignHandler(campaigns campaignService, funding fundStateReader) *CampaignHandler {
	return &CampaignHandler{campaigns: campaigns, funding: funding}
}

type campaignDTO struct {
	ID             uuid.UUID `json:"id"`
	CreatorID      uuid.UUID `json:"creator_id"`
	Title          string    `json:"title"`
	Category       string    `json:"category"`
	Description    string    `json:"description"`
	Story          string    `json:"story"`
	Goal           int64     `json:"goal"`
	Verification   string    `json:"verification"`
	DenyReason     *string   `json:"deny_reason,omitempty"`
	ImageURLs      []string  `json:"image_urls"`
	VideoURLs      []string  `json:"video_urls"`
	RaisedFunds    int64     `json:"raised_funds"`
	Backers        int       `json:"backers"`
	FundsWithdrawn int64     `json:"funds_withdrawn"`
	CreatedAt      time.Time `json:"created_at"`
}

func toCampaignDTO(c *domain.Campaign) campaignDTO {
	return campaignDTO{
		ID:             c.ID,
		CreatorID:      c.CreatorID,
		Title:          c.Title,
		Category:       c.Category,
		Description:    c.Description,
		Story:          c.Story,
		Goal:           c.Goal,
		Verification:   string(c.Verification),
		DenyReason:     c.DenyReason,
		ImageURLs:      c.ImageURLs,
		VideoURLs:      c.VideoURLs,
		RaisedFunds:    c.RaisedFunds,
		Backers:        c.Backers,
		FundsWithdrawn: c.FundsWithdrawn,
		CreatedAt:      c.CreatedAt,
	}
}

func toCampaignDTOs(campaigns []domain.Campaign) []campaignDTO {
	out := make([]campaignDTO, 0, len(campaigns))
	for i := range campaigns {
		out = append(out, toCampaignDTO(&campaigns[i]))
	}
	return out
}

type campaignRequest struct {
	Title       string   `json:"title"`
	Category    string   `json:"category"`
	Description string   `json:"description"`
	Story       string   `json:"story"`
	Goal        int64    `json:"goal"`
	ImageURLs   []string `json:"image_urls"`
	VideoURLs   []string `json:"video_urls"`
}

func (r campaignRequest) Validate() []FieldError {
	var errs []FieldError
	if r.Title == "" {
		errs = append(errs, FieldError{Field: "title", Message: "required"})
	}
	if r.Category == "" {
		errs = append(errs, FieldError{Field: "category", Message: "required"})
	}
	if r.Description == "" {
		errs = append(errs, FieldError{Field: "description", Message: "required"})
	}
	if r.Goal <= 0 {
		errs = append(errs, FieldError{Field: "goal", Message: "must be greater than 0"})
	}
	return errs
}

func (r campaignRequest) toInput() service.CreateCampaignInput {
	return service.CreateCampaignInput{
		Title:       r.Title,
		Category:    r.Category,
		Description: r.Description,
		Story:       r.Story,
		Goal:        r.Goal,
		ImageURLs:   r.ImageURLs,
		VideoURLs:   r.VideoURLs,
	}
}

func pathUUID(r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue(name))
	return id, err == nil
}

func (h *CampaignHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		RespondAppError(w, ErrUnauthorized, nil)
		return
	}

	var req campaignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequestBody, nil)
		return
	}

	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	campaign, err := h.campaigns.CreateCampaign(r.Context(), userID, req.toInput())
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusCreated, toCampaignDTO(campaign))
}

func (h *CampaignHandler) Update(w http.ResponseWriter, r *http.Request) {
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

	var req campaignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequestBody, nil)
		return
	}

	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	campaign, err := h.campaigns.UpdateCampaign(r.Context(), campaignID, userID, req.toInput())
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, toCampaignDTO(campaign))
}

func (h *CampaignHandler) Delete(w http.ResponseWriter, r *http.Request) {
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

	if err := h.campaigns.DeleteCampaign(r.Context(), campaignID, userID); err != nil {
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *CampaignHandler) Get(w http.ResponseWriter, r *http.Request) {
	campaignID, ok := pathUUID(r, "id")
	if !ok {
		RespondValidationError(w, []FieldError{{Field: "id", Message: "must be a valid UUID"}})
		return
	}

	campaign, err := h.campaigns.GetCampaign(r.Context(), campaignID)
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, toCampaignDTO(campaign))
}

func (h *CampaignHandler) List(w http.ResponseWriter, r *http.Request) {
	campaigns, err := h.campaigns.ListCampaigns(r.Context(), r.URL.Query().Get("category"))
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, toCampaignDTOs(campaigns))
}

func (h *CampaignHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		RespondAppError(w, ErrUnauthorized, nil)
		return
	}

	campaigns, err := h.campaigns.ListUserCampaigns(r.Context(), userID)
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, toCampaignDTOs(campaigns))
}

type fundStateDTO struct {
	CampaignID     uuid.UUID `json:"campaign_id"`
	RaisedFunds    int64     `json:"raised_funds"`
	Backers        int       `json:"backers"`
	FundsWithdrawn int64     `json:"funds_withdrawn"`
}

func (h *CampaignHandler) GetFunds(w http.ResponseWriter, r *http.Request) {
	campaignID, ok := pathUUID(r, "id")
	if !ok {
		RespondValidationError(w, []FieldError{{Field: "id", Message: "must be a valid UUID"}})
		return
	}

	state, err := h.funding.GetCampaignFundState(r.Context(), campaignID)
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, fundStateDTO{
		CampaignID:     state.CampaignID,
		RaisedFunds:    state.RaisedFunds,
		Backers:        state.Backers,
		FundsWithdrawn: state.FundsWithdrawn,
	})
}

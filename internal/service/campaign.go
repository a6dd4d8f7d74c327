package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/crowdforge/crowdforge-backend/internal/domain"
	"github.com/crowdforge/crowdforge-backend/internal/logging"
)

type campaignRepo interface {
	Create(ctx context.Context, c *domain.Campaign) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Campaign, error)
	List(ctx context.Context, category string) ([]domain.Campaign, error)
	ListByCreator(ctx context.Context, creatorID uuid.UUID) ([]domain.Campaign, error)
	Update(ctx context.Context, c *domain.Campaign) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type CampaignService struct {
	campaigns campaignRepo
}

func NewCampaignService(campaigns campaignRepo) *CampaignService {
	return &CampaignService{campaigns: campaigns}
}

type CreateCampaignInput struct {
	Title       string
	Category    string
	Description string
	Story       string
	Goal        int64
	ImageURLs   []string
	VideoURLs   []string
}

func (s *CampaignService) CreateCampaign(ctx context.Context, creatorID uuid.UUID, in CreateCampaignInput) (*domain.Campaign, error) {
	log := logging.FromContext(ctx)

	if in.Goal <= 0 {
		return nil, fmt.Errorf("CreateCampaign: %w", domain.ErrInvalidAmount)
	}

	now := time.Now().UTC()
	campaign := &domain.Campaign{
		ID:           uuid.New(),
		CreatorID:    creatorID,
		Title:        in.Title,
		Category:     in.Category,
		Description:  in.Description,
		Story:        in.Story,
		Goal:         in.Goal,
		Verification: domain.VerificationPending,
		ImageURLs:    in.ImageURLs,
		VideoURLs:    in.VideoURLs,
		Version:      1,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.campaigns.Create(ctx, campaign); err != nil {
		return nil, fmt.Errorf("CreateCampaign: %w", err)
	}

	log.Info("campaign created",
		"campaign_id", campaign.ID,
		"creator_id", creatorID,
		"goal", in.Goal,
	)

	return campaign, nil
}

func (s *CampaignService) UpdateCampaign(ctx context.Context, campaignID, userID uuid.UUID, in CreateCampaignInput) (*domain.Campaign, error) {
	campaign, err := s.campaigns.GetByID(ctx, campaignID)
	if err != nil {
		return nil, fmt.Errorf("UpdateCampaign: %w", err)
	}
	if campaign.CreatorID != userID {
		return nil, fmt.Errorf("UpdateCampaign: %w", domain.ErrNotCampaignOwner)
	}
	if in.Goal <= 0 {
		return nil, fmt.Errorf("UpdateCampaign: %w", domain.ErrInvalidAmount)
	}

	campaign.Title = in.Title
	campaign.Category = in.Category
	campaign.Description = in.Description
	campaign.Story = in.Story
	campaign.Goal = in.Goal
	campaign.ImageURLs = in.ImageURLs
	campaign.VideoURLs = in.VideoURLs

	if err := s.campaigns.Update(ctx, campaign); err != nil {
		return nil, fmt.Errorf("UpdateCampaign: %w", err)
	}
	return campaign, nil
}

func (s *CampaignService) DeleteCampaign(ctx context.Context, campaignID, userID uuid.UUID) error {
	campaign, err := s.campaigns.GetByID(ctx, campaignID)
	if err != nil {
		return fmt.Errorf("DeleteCampaign: %w", err)
	}
	if campaign.CreatorID != userID {
		return fmt.Errorf("DeleteCampaign: %w", domain.ErrNotCampaignOwner)
	}

	if err := s.campaigns.Delete(ctx, campaignID); err != nil {
		return fmt.Errorf("DeleteCampaign: %w", err)
	}

	logging.FromContext(ctx).Info("campaign deleted", "campaign_id", campaignID, "creator_id", userID)
	return nil
}

func (s *CampaignService) GetCampaign(ctx context.Context, campaignID uuid.UUID) (*domain.Campaign, error) {
	campaign, err := s.campaigns.GetByID(ctx, campaignID)
	if err != nil {
		return nil, fmt.Errorf("GetCampaign: %w", err)
	}
	return campaign, nil
}

func (s *CampaignService) ListCampaigns(ctx context.Context, category string) ([]domain.Campaign, error) {
	campaigns, err := s.campaigns.List(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("ListCampaigns: %w", err)
	}
	return campaigns, nil
}

func (s *CampaignService) ListUserCampaigns(ctx context.Context, creatorID uuid.UUID) ([]domain.Campaign, error) {
	campaigns, err := s.campaigns.ListByCreator(ctx, creatorID)
	if err != nil {
		return nil, fmt.Errorf("ListUserCampaigns: %w", err)
	}
	return campaigns, nil
}

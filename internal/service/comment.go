package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/crowdforge/crowdforge-backend/internal/domain"
)

type commentRepo interface {
	Create(ctx context.Context, c *domain.Comment) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Comment, error)
	ListByCampaign(ctx context.Context, campaignID uuid.UUID) ([]domain.Comment, error)
	SetReply(ctx context.Context, id uuid.UUID, reply string) error
}

type campaignGetter interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Campaign, error)
}

type userGetter interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
}

type CommentService struct {
	comments  commentRepo
	campaigns campaignGetter
	users     userGetter
}

func NewCommentService(comments commentRepo, campaigns campaignGetter, users userGetter) *CommentService {
	return &CommentService{comments: comments, campaigns: campaigns, users: users}
}

func (s *CommentService) ListComments(ctx context.Context, campaignID uuid.UUID) ([]domain.Comment, error) {
	if _, err := s.campaigns.GetByID(ctx, campaignID); err != nil {
		return nil, fmt.Errorf("ListComments: %w", err)
	}
	comments, err := s.comments.ListByCampaign(ctx, campaignID)
	if err != nil {
		return nil, fmt.Errorf("ListComments: %w", err)
	}
	return comments, nil
}

func (s *CommentService) AddComment(ctx context.Context, campaignID, authorID uuid.UUID, content string) (*domain.Comment, error) {
	if _, err := s.campaigns.GetByID(ctx, campaignID); err != nil {
		return nil, fmt.Errorf("AddComment: %w", err)
	}

	author, err := s.users.GetByID(ctx, authorID)
	if err != nil {
		return nil, fmt.Errorf("AddComment: %w", err)
	}

	comment := &domain.Comment{
		ID:         uuid.New(),
		CampaignID: campaignID,
		AuthorID:   author.ID,
		AuthorName: author.Name,
		Content:    content,
		CreatedAt:  time.Now().UTC(),
	}

	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, fmt.Errorf("AddComment: %w", err)
	}
	return comment, nil
}

// ReplyToComment records the campaign creator's reply. Only the creator may
// reply.
func (s *CommentService) ReplyToComment(ctx context.Context, campaignID, commentID, userID uuid.UUID, reply string) (*domain.Comment, error) {
	campaign, err := s.campaigns.GetByID(ctx, campaignID)
	if err != nil {
		return nil, fmt.Errorf("ReplyToComment: %w", err)
	}
	if campaign.CreatorID != userID {
		return nil, fmt.Errorf("ReplyToComment: %w", domain.ErrNotCampaignOwner)
	}

	comment, err := s.comments.GetByID(ctx, commentID)
	if err != nil {
		return nil, fmt.Errorf("ReplyToComment: %w", err)
	}
	if comment.CampaignID != campaignID {
		return nil, fmt.Errorf("ReplyToComment: %w", domain.ErrCommentNotFound)
	}

	if err := s.comments.SetReply(ctx, commentID, reply); err != nil {
		return nil, fmt.Errorf("ReplyToComment: %w", err)
	}

	comment.Reply = &reply
	return comment, nil
}

package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/crowdforge/crowdforge-backend/internal/domain"
)

const campaignColumns = `id, creator_id, title, category, description, story, goal,
	verification, deny_reason, image_urls, video_urls,
	raised_funds, backers, funds_withdrawn, version, created_at, updated_at`

type CampaignRepository struct {
	db *sql.DB
}

func NewCampaignRepository(db *sql.DB) *CampaignRepository {
	return &CampaignRepository{db: db}
}

func (r *CampaignRepository) Create(ctx context.Context, c *domain.Campaign) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO campaigns (
			id, creator_id, title, category, description, story, goal,
			verification, deny_reason, image_urls, video_urls,
			raised_funds, backers, funds_withdrawn, version, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`,
		c.ID, c.CreatorID, c.Title, c.Category, c.Description, c.Story, c.Goal,
		c.Verification, c.DenyReason, pq.Array(c.ImageURLs), pq.Array(c.VideoURLs),
		c.RaisedFunds, c.Backers, c.FundsWithdrawn, c.Version, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (r *CampaignRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Campaign, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+campaignColumns+` FROM campaigns WHERE id = $1`, id,
	)
	c, err := scanCampaign(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetByID: %w", domain.ErrCampaignNotFound)
		}
		return nil, fmt.Errorf("GetByID: %w", err)
	}
	return c, nil
}

// GetForUpdate locks the campaign row for the duration of tx. All fund
// mutations go through this lock so concurrent donations cannot lose updates.
func (r *CampaignRepository) GetForUpdate(ctx context.Context, tx *sql.Tx, id uuid.UUID) (*domain.Campaign, error) {
	row := tx.QueryRowContext(ctx,
		`SELECT `+campaignColumns+` FROM campaigns WHERE id = $1 FOR UPDATE`, id,
	)
	c, err := scanCampaign(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetForUpdate: %w", domain.ErrCampaignNotFound)
		}
		return nil, fmt.Errorf("GetForUpdate: %w", err)
	}
	return c, nil
}

func (r *CampaignRepository) List(ctx context.Context, category string) ([]domain.Campaign, error) {
	query := `SELECT ` + campaignColumns + ` FROM campaigns`
	args := []any{}
	if category != "" {
		query += ` WHERE category = $1`
		args = append(args, category)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	defer rows.Close()
	return collectCampaigns(rows, "List")
}

func (r *CampaignRepository) ListByCreator(ctx context.Context, creatorID uuid.UUID) ([]domain.Campaign, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+campaignColumns+` FROM campaigns WHERE creator_id = $1 ORDER BY created_at DESC`,
		creatorID,
	)
	if err != nil {
		return nil, fmt.Errorf("ListByCreator: %w", err)
	}
	defer rows.Close()
	return collectCampaigns(rows, "ListByCreator")
}

func (r *CampaignRepository) Update(ctx context.Context, c *domain.Campaign) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE campaigns SET title = $1, category = $2, description = $3, story = $4,
			goal = $5, image_urls = $6, video_urls = $7, updated_at = now()
		WHERE id = $8`,
		c.Title, c.Category, c.Description, c.Story, c.Goal,
		pq.Array(c.ImageURLs), pq.Array(c.VideoURLs), c.ID,
	)
	if err != nil {
		return fmt.Errorf("Update: %w", err)
	}
	return requireRowsAffected(res, "Update")
}

// UpdateFunds applies new running totals under the optimistic version check.
// Callers must hold the row lock from GetForUpdate in the same tx.
func (r *CampaignRepository) UpdateFunds(ctx context.Context, tx *sql.Tx, id uuid.UUID, raised int64, backers int, withdrawn int64, newVersion int64) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE campaigns SET raised_funds = $1, backers = $2, funds_withdrawn = $3,
			version = $4, updated_at = now()
		WHERE id = $5 AND version = $6`,
		raised, backers, withdrawn, newVersion, id, newVersion-1,
	)
	if err != nil {
		return fmt.Errorf("UpdateFunds: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("UpdateFunds: rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("UpdateFunds: %w", domain.ErrVersionConflict)
	}
	return nil
}

func (r *CampaignRepository) UpdateVerification(ctx context.Context, id uuid.UUID, v domain.VerificationStatus, denyReason *string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE campaigns SET verification = $1, deny_reason = $2, updated_at = now() WHERE id = $3`,
		v, denyReason, id,
	)
	if err != nil {
		return fmt.Errorf("UpdateVerification: %w", err)
	}
	return requireRowsAffected(res, "UpdateVerification")
}

func (r *CampaignRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM campaigns WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("Delete: %w", err)
	}
	return requireRowsAffected(res, "Delete")
}

func collectCampaigns(rows *sql.Rows, op string) ([]domain.Campaign, error) {
	var campaigns []domain.Campaign
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		campaigns = append(campaigns, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows: %w", op, err)
	}
	return campaigns, nil
}

func scanCampaign(s scanner) (*domain.Campaign, error) {
	var c domain.Campaign
	err := s.Scan(
		&c.ID, &c.CreatorID, &c.Title, &c.Category, &c.Description, &c.Story, &c.Goal,
		&c.Verification, &c.DenyReason, pq.Array(&c.ImageURLs), pq.Array(&c.VideoURLs),
		&c.RaisedFunds, &c.Backers, &c.FundsWithdrawn, &c.Version, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

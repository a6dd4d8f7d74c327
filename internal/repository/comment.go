package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/crowdforge/crowdforge-backend/internal/domain"
)

const commentColumns = `id, campaign_id, author_id, author_name, content, reply, created_at`

type CommentRepository struct {
	db *sql.DB
}

func NewCommentRepository(db *sql.DB) *CommentRepository {
	return &CommentRepository{db: db}
}

func (r *CommentRepository) Create(ctx context.Context, c *domain.Comment) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO campaign_comments (id, campaign_id, author_id, author_name, content, reply, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		c.ID, c.CampaignID, c.AuthorID, c.AuthorName, c.Content, c.Reply, c.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (r *CommentRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Comment, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+commentColumns+` FROM campaign_comments WHERE id = $1`, id,
	)
	c, err := scanComment(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetByID: %w", domain.ErrCommentNotFound)
		}
		return nil, fmt.Errorf("GetByID: %w", err)
	}
	return c, nil
}

func (r *CommentRepository) ListByCampaign(ctx context.Context, campaignID uuid.UUID) ([]domain.Comment, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+commentColumns+` FROM campaign_comments WHERE campaign_id = $1 ORDER BY created_at`,
		campaignID,
	)
	if err != nil {
		return nil, fmt.Errorf("ListByCampaign: %w", err)
	}
	defer rows.Close()

	var comments []domain.Comment
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("ListByCampaign: scan: %w", err)
		}
		comments = append(comments, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListByCampaign: rows: %w", err)
	}
	return comments, nil
}

func (r *CommentRepository) SetReply(ctx context.Context, id uuid.UUID, reply string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE campaign_comments SET reply = $1 WHERE id = $2`,
		reply, id,
	)
	if err != nil {
		return fmt.Errorf("SetReply: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("SetReply: rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("SetReply: %w", domain.ErrCommentNotFound)
	}
	return nil
}

func scanComment(s scanner) (*domain.Comment, error) {
	var c domain.Comment
	err := s.Scan(&c.ID, &c.CampaignID, &c.AuthorID, &c.AuthorName, &c.Content, &c.Reply, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

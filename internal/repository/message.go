package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/crowdforge/crowdforge-backend/internal/domain"
)

const messageColumns = `id, campaign_id, sender_id, sender_name, receiver_id, content, created_at`

type MessageRepository struct {
	db *sql.DB
}

func NewMessageRepository(db *sql.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) Create(ctx context.Context, m *domain.Message) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO campaign_messages (id, campaign_id, sender_id, sender_name, receiver_id, content, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		m.ID, m.CampaignID, m.SenderID, m.SenderName, m.ReceiverID, m.Content, m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (r *MessageRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Message, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+messageColumns+` FROM campaign_messages WHERE id = $1`, id,
	)
	m, err := scanMessage(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetByID: %w", domain.ErrMessageNotFound)
		}
		return nil, fmt.Errorf("GetByID: %w", err)
	}
	return m, nil
}

func (r *MessageRepository) ListByCampaign(ctx context.Context, campaignID uuid.UUID) ([]domain.Message, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+messageColumns+` FROM campaign_messages WHERE campaign_id = $1 ORDER BY created_at`,
		campaignID,
	)
	if err != nil {
		return nil, fmt.Errorf("ListByCampaign: %w", err)
	}
	defer rows.Close()
	return collectMessages(rows, "ListByCampaign")
}

// ListByCampaignParticipant returns only the messages the user sent or
// received within the campaign thread.
func (r *MessageRepository) ListByCampaignParticipant(ctx context.Context, campaignID, userID uuid.UUID) ([]domain.Message, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+messageColumns+` FROM campaign_messages
		WHERE campaign_id = $1 AND (sender_id = $2 OR receiver_id = $2)
		ORDER BY created_at`,
		campaignID, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("ListByCampaignParticipant: %w", err)
	}
	defer rows.Close()
	return collectMessages(rows, "ListByCampaignParticipant")
}

func collectMessages(rows *sql.Rows, op string) ([]domain.Message, error) {
	var messages []domain.Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		messages = append(messages, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows: %w", op, err)
	}
	return messages, nil
}

func scanMessage(s scanner) (*domain.Message, error) {
	var m domain.Message
	err := s.Scan(&m.ID, &m.CampaignID, &m.SenderID, &m.SenderName, &m.ReceiverID, &m.Content, &m.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

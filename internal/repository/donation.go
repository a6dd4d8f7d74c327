package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/crowdforge/crowdforge-backend/internal/domain"
)

const donationColumns = `id, transaction_id, campaign_id, donor_id, creator_id,
	donor_name, amount, created_at`

type DonationRepository struct {
	db *sql.DB
}

func NewDonationRepository(db *sql.DB) *DonationRepository {
	return &DonationRepository{db: db}
}

// Create inserts the donation inside tx. The unique constraint on
// transaction_id rejects duplicate gateway deliveries; callers translate the
// unique violation into ErrDuplicateTransaction.
func (r *DonationRepository) Create(ctx context.Context, tx *sql.Tx, d *domain.Donation) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO donations (
			id, transaction_id, campaign_id, donor_id, creator_id, donor_name, amount, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		d.ID, d.TransactionID, d.CampaignID, d.DonorID, d.CreatorID,
		d.DonorName, d.Amount, d.CreatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return fmt.Errorf("Create: %w", domain.ErrDuplicateTransaction)
		}
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (r *DonationRepository) GetByTransactionID(ctx context.Context, transactionID string) (*domain.Donation, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+donationColumns+` FROM donations WHERE transaction_id = $1`, transactionID,
	)
	d, err := scanDonation(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetByTransactionID: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetByTransactionID: %w", err)
	}
	return d, nil
}

func (r *DonationRepository) ListByDonor(ctx context.Context, donorID uuid.UUID) ([]domain.Donation, error) {
	return r.list(ctx, `donor_id`, donorID, "ListByDonor")
}

func (r *DonationRepository) ListByCreator(ctx context.Context, creatorID uuid.UUID) ([]domain.Donation, error) {
	return r.list(ctx, `creator_id`, creatorID, "ListByCreator")
}

func (r *DonationRepository) ListByCampaign(ctx context.Context, campaignID uuid.UUID) ([]domain.Donation, error) {
	return r.list(ctx, `campaign_id`, campaignID, "ListByCampaign")
}

func (r *DonationRepository) list(ctx context.Context, column string, id uuid.UUID, op string) ([]domain.Donation, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+donationColumns+` FROM donations WHERE `+column+` = $1 ORDER BY created_at`,
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var donations []domain.Donation
	for rows.Next() {
		d, err := scanDonation(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		donations = append(donations, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows: %w", op, err)
	}
	return donations, nil
}

func scanDonation(s scanner) (*domain.Donation, error) {
	var d domain.Donation
	err := s.Scan(
		&d.ID, &d.TransactionID, &d.CampaignID, &d.DonorID, &d.CreatorID,
		&d.DonorName, &d.Amount, &d.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

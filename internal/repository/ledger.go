package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/crowdforge/crowdforge-backend/internal/domain"
)

const ledgerColumns = `user_id, available_funds, version, created_at, updated_at`

type LedgerRepository struct {
	db *sql.DB
}

func NewLedgerRepository(db *sql.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

func (r *LedgerRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Ledger, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+ledgerColumns+` FROM ledgers WHERE user_id = $1`, userID,
	)
	l, err := scanLedger(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetByUserID: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetByUserID: %w", err)
	}
	return l, nil
}

// GetOrCreateForUpdate returns the user's ledger locked for the duration of
// tx, creating an empty one first if the user has never been credited.
// The lock serializes read-modify-write per user id.
func (r *LedgerRepository) GetOrCreateForUpdate(ctx context.Context, tx *sql.Tx, userID uuid.UUID) (*domain.Ledger, error) {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO ledgers (user_id, available_funds, version, created_at, updated_at)
		VALUES ($1, 0, 1, $2, $2)
		ON CONFLICT (user_id) DO NOTHING`,
		userID, time.Now().UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("GetOrCreateForUpdate: insert: %w", err)
	}

	row := tx.QueryRowContext(ctx,
		`SELECT `+ledgerColumns+` FROM ledgers WHERE user_id = $1 FOR UPDATE`, userID,
	)
	l, err := scanLedger(row)
	if err != nil {
		return nil, fmt.Errorf("GetOrCreateForUpdate: %w", err)
	}
	return l, nil
}

// GetForUpdate locks an existing ledger; a missing row maps to ErrNotFound so
// withdrawal paths do not silently create empty ledgers.
func (r *LedgerRepository) GetForUpdate(ctx context.Context, tx *sql.Tx, userID uuid.UUID) (*domain.Ledger, error) {
	row := tx.QueryRowContext(ctx,
		`SELECT `+ledgerColumns+` FROM ledgers WHERE user_id = $1 FOR UPDATE`, userID,
	)
	l, err := scanLedger(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetForUpdate: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetForUpdate: %w", err)
	}
	return l, nil
}

func (r *LedgerRepository) UpdateFunds(ctx context.Context, tx *sql.Tx, userID uuid.UUID, newFunds int64, newVersion int64) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE ledgers SET available_funds = $1, version = $2, updated_at = now()
		WHERE user_id = $3 AND version = $4`,
		newFunds, newVersion, userID, newVersion-1,
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

func scanLedger(s scanner) (*domain.Ledger, error) {
	var l domain.Ledger
	err := s.Scan(&l.UserID, &l.AvailableFunds, &l.Version, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

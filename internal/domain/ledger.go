package domain

import (
	"time"

	"github.com/google/uuid"
)

// Ledger is the per-user balance record. available_funds accumulates
// donations credited to the user as a campaign creator and is drained by
// completed withdrawals. Created lazily on first credit, never deleted.
type Ledger struct {
	UserID         uuid.UUID
	AvailableFunds int64
	Version        int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Donation is a single applied gateway transaction. TransactionID is
// gateway-supplied and globally unique; the unique constraint on it is the
// idempotency index for duplicate webhook deliveries.
type Donation struct {
	ID            uuid.UUID
	TransactionID string
	CampaignID    uuid.UUID
	DonorID       uuid.UUID
	CreatorID     uuid.UUID
	DonorName     string
	Amount        int64
	CreatedAt     time.Time
}

type Withdrawal struct {
	ID                uuid.UUID
	TransactionID     string
	UserID            uuid.UUID
	CampaignID        uuid.UUID
	Amount            int64
	BankName          string
	AccountHolderName string
	AccountNumber     string
	IFSCCode          string
	CreatedAt         time.Time
}

package funding

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/crowdforge/crowdforge-backend/internal/domain"
)

type campaignRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Campaign, error)
	GetForUpdate(ctx context.Context, tx *sql.Tx, id uuid.UUID) (*domain.Campaign, error)
	UpdateFunds(ctx context.Context, tx *sql.Tx, id uuid.UUID, raised int64, backers int, withdrawn int64, newVersion int64) error
}

type ledgerRepo interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Ledger, error)
	GetOrCreateForUpdate(ctx context.Context, tx *sql.Tx, userID uuid.UUID) (*domain.Ledger, error)
	GetForUpdate(ctx context.Context, tx *sql.Tx, userID uuid.UUID) (*domain.Ledger, error)
	UpdateFunds(ctx context.Context, tx *sql.Tx, userID uuid.UUID, newFunds int64, newVersion int64) error
}

type donationRepo interface {
	Create(ctx context.Context, tx *sql.Tx, d *domain.Donation) error
	GetByTransactionID(ctx context.Context, transactionID string) (*domain.Donation, error)
	ListByDonor(ctx context.Context, donorID uuid.UUID) ([]domain.Donation, error)
	ListByCreator(ctx context.Context, creatorID uuid.UUID) ([]domain.Donation, error)
}

type withdrawalRepo interface {
	Create(ctx context.Context, tx *sql.Tx, w *domain.Withdrawal) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Withdrawal, error)
}

type userRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

// PayoutRequest is what the service hands to the payout gateway collaborator.
type PayoutRequest struct {
	WithdrawalID      uuid.UUID
	Amount            int64
	AccountHolderName string
	AccountNumber     string
	IFSCCode          string
}

// PayoutReceipt is the gateway's verdict. TransactionID is gateway-assigned.
type PayoutReceipt struct {
	TransactionID string
	BankName      string
}

type payoutGateway interface {
	SubmitPayout(ctx context.Context, req PayoutRequest) (*PayoutReceipt, error)
}

type eventPublisher interface {
	Publish(ctx context.Context, event any)
}

// Service owns all mutations of ledger and campaign fund state. Nothing else
// in the codebase writes those tables.
type Service struct {
	campaigns   campaignRepo
	ledgers     ledgerRepo
	donations   donationRepo
	withdrawals withdrawalRepo
	users       userRepo
	gateway     payoutGateway
	events      eventPublisher
	db          *sql.DB
}

func NewService(
	campaigns campaignRepo,
	ledgers ledgerRepo,
	donations donationRepo,
	withdrawals withdrawalRepo,
	users userRepo,
	gateway payoutGateway,
	events eventPublisher,
	db *sql.DB,
) *Service {
	return &Service{
		campaigns:   campaigns,
		ledgers:     ledgers,
		donations:   donations,
		withdrawals: withdrawals,
		users:       users,
		gateway:     gateway,
		events:      events,
		db:          db,
	}
}

func (s *Service) publish(ctx context.Context, event any) {
	if s.events == nil {
		return
	}
	s.events.Publish(ctx, event)
}

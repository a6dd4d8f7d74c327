package funding

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/crowdforge/crowdforge-backend/internal/domain"
	"github.com/crowdforge/crowdforge-backend/internal/logging"
)

type ApplyDonationRequest struct {
	TransactionID string
	Amount        int64
	CampaignID    uuid.UUID
	DonorEmail    string
	DonorName     string
}

type DonationResult struct {
	Donation         *domain.Donation
	AlreadyProcessed bool
}

// DonationApplied is published after a donation commits.
type DonationApplied struct {
	TransactionID string
	CampaignID    uuid.UUID
	DonorID       uuid.UUID
	CreatorID     uuid.UUID
	DonorName     string
	Amount        int64
}

// ApplyDonation applies a gateway completion notification exactly once.
// The donation insert, creator ledger credit and campaign totals update
// happen in a single transaction; the unique index on transaction_id makes
// duplicate deliveries a no-op success instead of a double credit.
func (s *Service) ApplyDonation(ctx context.Context, req ApplyDonationRequest) (*DonationResult, error) {
	log := logging.FromContext(ctx)

	if req.Amount <= 0 {
		return nil, fmt.Errorf("ApplyDonation: %w", domain.ErrInvalidAmount)
	}

	donor, err := s.users.GetByEmail(ctx, req.DonorEmail)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("ApplyDonation: %w", domain.ErrDonorNotFound)
		}
		return nil, fmt.Errorf("ApplyDonation: %w", err)
	}

	result, err := s.applyDonationTx(ctx, req, donor)
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateTransaction) {
			existing, lookupErr := s.donations.GetByTransactionID(ctx, req.TransactionID)
			if lookupErr != nil {
				return nil, fmt.Errorf("ApplyDonation: duplicate lookup: %w", lookupErr)
			}
			log.Info("duplicate donation delivery ignored",
				"transaction_id", req.TransactionID,
				"campaign_id", req.CampaignID,
			)
			return &DonationResult{Donation: existing, AlreadyProcessed: true}, nil
		}
		return nil, fmt.Errorf("ApplyDonation: %w", err)
	}

	s.publish(ctx, DonationApplied{
		TransactionID: result.Donation.TransactionID,
		CampaignID:    result.Donation.CampaignID,
		DonorID:       result.Donation.DonorID,
		CreatorID:     result.Donation.CreatorID,
		DonorName:     result.Donation.DonorName,
		Amount:        result.Donation.Amount,
	})

	log.Info("donation applied",
		"transaction_id", req.TransactionID,
		"campaign_id", req.CampaignID,
		"donor_id", donor.ID,
		"amount", req.Amount,
	)

	return result, nil
}

func (s *Service) applyDonationTx(ctx context.Context, req ApplyDonationRequest, donor *domain.User) (*DonationResult, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("applyDonationTx: begin tx: %w", err)
	}
	defer tx.Rollback()

	campaign, err := s.campaigns.GetForUpdate(ctx, tx, req.CampaignID)
	if err != nil {
		return nil, fmt.Errorf("applyDonationTx: %w", err)
	}

	donorName := req.DonorName
	if donorName == "" {
		donorName = donor.Name
	}

	now := time.Now().UTC()
	donation := &domain.Donation{
		ID:            uuid.New(),
		TransactionID: req.TransactionID,
		CampaignID:    campaign.ID,
		DonorID:       donor.ID,
		CreatorID:     campaign.CreatorID,
		DonorName:     donorName,
		Amount:        req.Amount,
		CreatedAt:     now,
	}

	// Insert before crediting: the unique constraint turns the duplicate
	// check and the apply into one atomic step, so two concurrent deliveries
	// of the same transaction id cannot both credit.
	if err := s.donations.Create(ctx, tx, donation); err != nil {
		return nil, err
	}

	// Donor and creator share one ledger when the creator backs their own
	// campaign; the single credit below covers both roles.
	ledger, err := s.ledgers.GetOrCreateForUpdate(ctx, tx, campaign.CreatorID)
	if err != nil {
		return nil, fmt.Errorf("applyDonationTx: %w", err)
	}

	if err := s.ledgers.UpdateFunds(ctx, tx, campaign.CreatorID, ledger.AvailableFunds+req.Amount, ledger.Version+1); err != nil {
		return nil, fmt.Errorf("applyDonationTx: credit creator: %w", err)
	}

	if err := s.campaigns.UpdateFunds(ctx, tx, campaign.ID,
		campaign.RaisedFunds+req.Amount, campaign.Backers+1, campaign.FundsWithdrawn,
		campaign.Version+1,
	); err != nil {
		return nil, fmt.Errorf("applyDonationTx: update campaign: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("applyDonationTx: commit: %w", err)
	}

	return &DonationResult{Donation: donation}, nil
}

// LedgerStatement is the authenticated user's view of their ledger.
type LedgerStatement struct {
	UserID          uuid.UUID
	AvailableFunds  int64
	Donations       []domain.Donation
	CreditsReceived []domain.Donation
	Withdrawals     []domain.Withdrawal
}

func (s *Service) GetLedgerStatement(ctx context.Context, userID uuid.UUID) (*LedgerStatement, error) {
	statement := &LedgerStatement{UserID: userID}

	ledger, err := s.ledgers.GetByUserID(ctx, userID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("GetLedgerStatement: %w", err)
	}
	if ledger != nil {
		statement.AvailableFunds = ledger.AvailableFunds
	}

	if statement.Donations, err = s.donations.ListByDonor(ctx, userID); err != nil {
		return nil, fmt.Errorf("GetLedgerStatement: %w", err)
	}
	if statement.CreditsReceived, err = s.donations.ListByCreator(ctx, userID); err != nil {
		return nil, fmt.Errorf("GetLedgerStatement: %w", err)
	}
	if statement.Withdrawals, err = s.withdrawals.ListByUser(ctx, userID); err != nil {
		return nil, fmt.Errorf("GetLedgerStatement: %w", err)
	}

	return statement, nil
}

func (s *Service) GetCampaignFundState(ctx context.Context, campaignID uuid.UUID) (*domain.FundState, error) {
	campaign, err := s.campaigns.GetByID(ctx, campaignID)
	if err != nil {
		return nil, fmt.Errorf("GetCampaignFundState: %w", err)
	}
	return &domain.FundState{
		CampaignID:     campaign.ID,
		RaisedFunds:    campaign.RaisedFunds,
		Backers:        campaign.Backers,
		FundsWithdrawn: campaign.FundsWithdrawn,
	}, nil
}

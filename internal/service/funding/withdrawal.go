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

type WithdrawalRequest struct {
	UserID            uuid.UUID
	CampaignID        uuid.UUID
	Amount            int64
	AccountHolderName string
	AccountNumber     string
	IFSCCode          string
}

// WithdrawalCompleted is published after a withdrawal commits.
type WithdrawalCompleted struct {
	TransactionID string
	UserID        uuid.UUID
	CampaignID    uuid.UUID
	Amount        int64
}

// RequestWithdrawal debits the creator's ledger and bumps the campaign's
// withdrawn total after the payout gateway accepts the payout. A gateway
// failure leaves the ledger untouched.
func (s *Service) RequestWithdrawal(ctx context.Context, req WithdrawalRequest) (*domain.Withdrawal, error) {
	log := logging.FromContext(ctx)

	if req.Amount <= 0 {
		return nil, fmt.Errorf("RequestWithdrawal: %w", domain.ErrInvalidAmount)
	}

	campaign, err := s.campaigns.GetByID(ctx, req.CampaignID)
	if err != nil {
		return nil, fmt.Errorf("RequestWithdrawal: %w", err)
	}
	if campaign.CreatorID != req.UserID {
		return nil, fmt.Errorf("RequestWithdrawal: %w", domain.ErrNotCampaignOwner)
	}

	ledger, err := s.ledgers.GetByUserID(ctx, req.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("RequestWithdrawal: %w", domain.ErrInsufficientFunds)
		}
		return nil, fmt.Errorf("RequestWithdrawal: %w", err)
	}
	if ledger.AvailableFunds < req.Amount {
		return nil, fmt.Errorf("RequestWithdrawal: %w", domain.ErrInsufficientFunds)
	}

	withdrawalID := uuid.New()
	receipt, err := s.gateway.SubmitPayout(ctx, PayoutRequest{
		WithdrawalID:      withdrawalID,
		Amount:            req.Amount,
		AccountHolderName: req.AccountHolderName,
		AccountNumber:     req.AccountNumber,
		IFSCCode:          req.IFSCCode,
	})
	if err != nil {
		log.Warn("payout gateway rejected withdrawal",
			"withdrawal_id", withdrawalID,
			"campaign_id", req.CampaignID,
			"error", err,
		)
		return nil, fmt.Errorf("RequestWithdrawal: %w", domain.ErrPayoutFailed)
	}

	withdrawal, err := s.commitWithdrawal(ctx, req, withdrawalID, receipt)
	if err != nil {
		return nil, fmt.Errorf("RequestWithdrawal: %w", err)
	}

	s.publish(ctx, WithdrawalCompleted{
		TransactionID: withdrawal.TransactionID,
		UserID:        withdrawal.UserID,
		CampaignID:    withdrawal.CampaignID,
		Amount:        withdrawal.Amount,
	})

	log.Info("withdrawal completed",
		"withdrawal_id", withdrawal.ID,
		"transaction_id", withdrawal.TransactionID,
		"campaign_id", req.CampaignID,
		"amount", req.Amount,
	)

	return withdrawal, nil
}

func (s *Service) commitWithdrawal(ctx context.Context, req WithdrawalRequest, withdrawalID uuid.UUID, receipt *PayoutReceipt) (*domain.Withdrawal, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("commitWithdrawal: begin tx: %w", err)
	}
	defer tx.Rollback()

	campaign, err := s.campaigns.GetForUpdate(ctx, tx, req.CampaignID)
	if err != nil {
		return nil, fmt.Errorf("commitWithdrawal: %w", err)
	}
	if campaign.CreatorID != req.UserID {
		return nil, fmt.Errorf("commitWithdrawal: %w", domain.ErrNotCampaignOwner)
	}

	ledger, err := s.ledgers.GetForUpdate(ctx, tx, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("commitWithdrawal: %w", err)
	}

	// The gateway already accepted this payout; a balance that shrank in the
	// meantime needs manual reconciliation against the receipt.
	if ledger.AvailableFunds < req.Amount {
		logging.FromContext(ctx).Error("balance changed after gateway accept, payout needs reconciliation",
			"withdrawal_id", withdrawalID,
			"gateway_transaction_id", receipt.TransactionID,
		)
		return nil, fmt.Errorf("commitWithdrawal: %w", domain.ErrInsufficientFunds)
	}

	now := time.Now().UTC()
	withdrawal := &domain.Withdrawal{
		ID:                withdrawalID,
		TransactionID:     receipt.TransactionID,
		UserID:            req.UserID,
		CampaignID:        req.CampaignID,
		Amount:            req.Amount,
		BankName:          receipt.BankName,
		AccountHolderName: req.AccountHolderName,
		AccountNumber:     req.AccountNumber,
		IFSCCode:          req.IFSCCode,
		CreatedAt:         now,
	}

	if err := s.withdrawals.Create(ctx, tx, withdrawal); err != nil {
		return nil, fmt.Errorf("commitWithdrawal: %w", err)
	}

	if err := s.ledgers.UpdateFunds(ctx, tx, req.UserID, ledger.AvailableFunds-req.Amount, ledger.Version+1); err != nil {
		return nil, fmt.Errorf("commitWithdrawal: debit ledger: %w", err)
	}

	if err := s.campaigns.UpdateFunds(ctx, tx, campaign.ID,
		campaign.RaisedFunds, campaign.Backers, campaign.FundsWithdrawn+req.Amount,
		campaign.Version+1,
	); err != nil {
		return nil, fmt.Errorf("commitWithdrawal: update campaign: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commitWithdrawal: commit: %w", err)
	}

	return withdrawal, nil
}

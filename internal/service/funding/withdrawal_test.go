package funding_test

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crowdforge/crowdforge-backend/internal/domain"
	"github.com/crowdforge/crowdforge-backend/internal/service/funding"
	"github.com/crowdforge/crowdforge-backend/internal/testutil"
)

// Raise the campaign's recorded total so the funds_withdrawn check constraint
// holds when the test seeds ledger funds directly.
func seedRaisedFunds(t *testing.T, db *sql.DB, campaignID uuid.UUID, amount int64) {
	t.Helper()
	_, err := db.Exec(`UPDATE campaigns SET raised_funds = $1 WHERE id = $2`, amount, campaignID)
	if err != nil {
		t.Fatalf("seed raised funds: %v", err)
	}
}

func TestRequestWithdrawal_HappyPath(t *testing.T) {
	db := testutil.SetupTestDB(t)
	gateway := &stubGateway{transactionID: "payout_hp_1", bankName: "First Meridian Bank"}
	svc := setupFundingService(t, db, gateway)
	ctx := context.Background()

	creator := testutil.SeedTestUser(t, db, "creator@test.com", "Creator")
	campaign := testutil.SeedTestCampaign(t, db, creator.ID, "Well Project", 100000)
	seedRaisedFunds(t, db, campaign.ID, 10000)
	testutil.SeedLedger(t, db, creator.ID, 10000)

	withdrawal, err := svc.RequestWithdrawal(ctx, funding.WithdrawalRequest{
		UserID:            creator.ID,
		CampaignID:        campaign.ID,
		Amount:            6000,
		AccountHolderName: "Creator",
		AccountNumber:     "1234567890",
		IFSCCode:          "MERI0001234",
	})

	require.NoError(t, err)
	assert.Equal(t, "payout_hp_1", withdrawal.TransactionID)
	assert.Equal(t, "First Meridian Bank", withdrawal.BankName)
	assert.Equal(t, int64(6000), withdrawal.Amount)
	assert.Equal(t, 1, gateway.calls)

	assert.Equal(t, int64(4000), testutil.GetLedgerFunds(t, db, creator.ID))

	raised, _, withdrawn := testutil.GetCampaignTotals(t, db, campaign.ID)
	assert.Equal(t, int64(10000), raised)
	assert.Equal(t, int64(6000), withdrawn)
}

func TestRequestWithdrawal_NotCampaignOwner(t *testing.T) {
	db := testutil.SetupTestDB(t)
	gateway := &stubGateway{transactionID: "payout_no_1"}
	svc := setupFundingService(t, db, gateway)
	ctx := context.Background()

	creator := testutil.SeedTestUser(t, db, "creator@test.com", "Creator")
	other := testutil.SeedTestUser(t, db, "other@test.com", "Other")
	campaign := testutil.SeedTestCampaign(t, db, creator.ID, "Well Project", 100000)
	seedRaisedFunds(t, db, campaign.ID, 10000)
	testutil.SeedLedger(t, db, creator.ID, 10000)
	testutil.SeedLedger(t, db, other.ID, 10000)

	_, err := svc.RequestWithdrawal(ctx, funding.WithdrawalRequest{
		UserID:            other.ID,
		CampaignID:        campaign.ID,
		Amount:            1000,
		AccountHolderName: "Other",
		AccountNumber:     "1234567890",
		IFSCCode:          "MERI0001234",
	})

	require.ErrorIs(t, err, domain.ErrNotCampaignOwner)
	assert.Equal(t, 0, gateway.calls)
	assert.Equal(t, int64(10000), testutil.GetLedgerFunds(t, db, creator.ID))
	assert.Equal(t, int64(10000), testutil.GetLedgerFunds(t, db, other.ID))
}

func TestRequestWithdrawal_InsufficientFunds(t *testing.T) {
	db := testutil.SetupTestDB(t)
	gateway := &stubGateway{transactionID: "payout_if_1"}
	svc := setupFundingService(t, db, gateway)
	ctx := context.Background()

	creator := testutil.SeedTestUser(t, db, "creator@test.com", "Creator")
	campaign := testutil.SeedTestCampaign(t, db, creator.ID, "Well Project", 100000)
	seedRaisedFunds(t, db, campaign.ID, 500)
	testutil.SeedLedger(t, db, creator.ID, 500)

	_, err := svc.RequestWithdrawal(ctx, funding.WithdrawalRequest{
		UserID:            creator.ID,
		CampaignID:        campaign.ID,
		Amount:            1000,
		AccountHolderName: "Creator",
		AccountNumber:     "1234567890",
		IFSCCode:          "MERI0001234",
	})

	require.ErrorIs(t, err, domain.ErrInsufficientFunds)
	assert.Equal(t, 0, gateway.calls)
	assert.Equal(t, int64(500), testutil.GetLedgerFunds(t, db, creator.ID))
}

func TestRequestWithdrawal_NoLedgerMeansNoFunds(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupFundingService(t, db, nil)
	ctx := context.Background()

	creator := testutil.SeedTestUser(t, db, "creator@test.com", "Creator")
	campaign := testutil.SeedTestCampaign(t, db, creator.ID, "Well Project", 100000)

	_, err := svc.RequestWithdrawal(ctx, funding.WithdrawalRequest{
		UserID:            creator.ID,
		CampaignID:        campaign.ID,
		Amount:            1000,
		AccountHolderName: "Creator",
		AccountNumber:     "1234567890",
		IFSCCode:          "MERI0001234",
	})

	require.ErrorIs(t, err, domain.ErrInsufficientFunds)
}

func TestRequestWithdrawal_GatewayFailureLeavesLedgerUntouched(t *testing.T) {
	db := testutil.SetupTestDB(t)
	gateway := &stubGateway{err: errors.New("gateway unavailable")}
	svc := setupFundingService(t, db, gateway)
	ctx := context.Background()

	creator := testutil.SeedTestUser(t, db, "creator@test.com", "Creator")
	campaign := testutil.SeedTestCampaign(t, db, creator.ID, "Well Project", 100000)
	seedRaisedFunds(t, db, campaign.ID, 10000)
	testutil.SeedLedger(t, db, creator.ID, 10000)

	_, err := svc.RequestWithdrawal(ctx, funding.WithdrawalRequest{
		UserID:            creator.ID,
		CampaignID:        campaign.ID,
		Amount:            6000,
		AccountHolderName: "Creator",
		AccountNumber:     "1234567890",
		IFSCCode:          "MERI0001234",
	})

	require.ErrorIs(t, err, domain.ErrPayoutFailed)
	assert.Equal(t, 1, gateway.calls)

	assert.Equal(t, int64(10000), testutil.GetLedgerFunds(t, db, creator.ID))

	_, _, withdrawn := testutil.GetCampaignTotals(t, db, campaign.ID)
	assert.Equal(t, int64(0), withdrawn)

	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM withdrawals WHERE user_id = $1`, creator.ID).Scan(&count))
	assert.Equal(t, 0, count)
}

func TestRequestWithdrawal_ConcurrentOverdraft(t *testing.T) {
	db := testutil.SetupTestDB(t)
	gateway := &stubGateway{transactionID: "payout_co_1", bankName: "First Meridian Bank"}
	svc := setupFundingService(t, db, gateway)
	ctx := context.Background()

	creator := testutil.SeedTestUser(t, db, "creator@test.com", "Creator")
	campaign := testutil.SeedTestCampaign(t, db, creator.ID, "Well Project", 100000)
	seedRaisedFunds(t, db, campaign.ID, 10000)
	testutil.SeedLedger(t, db, creator.ID, 10000)

	var wg sync.WaitGroup
	errs := make(chan error, 2)

	for range 2 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.RequestWithdrawal(ctx, funding.WithdrawalRequest{
				UserID:            creator.ID,
				CampaignID:        campaign.ID,
				Amount:            7000,
				AccountHolderName: "Creator",
				AccountNumber:     "1234567890",
				IFSCCode:          "MERI0001234",
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var succeeded, overdrawn int
	for err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, domain.ErrInsufficientFunds):
			overdrawn++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	// Only one withdrawal can fit in the balance; the locked re-check must
	// reject the other even though both passed the pre-flight check.
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, overdrawn)
	assert.Equal(t, int64(3000), testutil.GetLedgerFunds(t, db, creator.ID))
}

func TestDonateThenWithdraw_EndToEnd(t *testing.T) {
	db := testutil.SetupTestDB(t)
	gateway := &stubGateway{transactionID: "payout_e2e_1", bankName: "First Meridian Bank"}
	svc := setupFundingService(t, db, gateway)
	ctx := context.Background()

	creator := testutil.SeedTestUser(t, db, "creator@test.com", "Creator")
	donor := testutil.SeedTestUser(t, db, "donor@test.com", "Donor")
	campaign := testutil.SeedTestCampaign(t, db, creator.ID, "Well Project", 100000)

	_, err := svc.ApplyDonation(ctx, funding.ApplyDonationRequest{
		TransactionID: "txn_e2e_1",
		Amount:        8000,
		CampaignID:    campaign.ID,
		DonorEmail:    donor.Email,
	})
	require.NoError(t, err)

	withdrawal, err := svc.RequestWithdrawal(ctx, funding.WithdrawalRequest{
		UserID:            creator.ID,
		CampaignID:        campaign.ID,
		Amount:            5000,
		AccountHolderName: "Creator",
		AccountNumber:     "1234567890",
		IFSCCode:          "MERI0001234",
	})
	require.NoError(t, err)
	assert.Equal(t, "payout_e2e_1", withdrawal.TransactionID)

	assert.Equal(t, int64(3000), testutil.GetLedgerFunds(t, db, creator.ID))

	raised, backers, withdrawn := testutil.GetCampaignTotals(t, db, campaign.ID)
	assert.Equal(t, int64(8000), raised)
	assert.Equal(t, 1, backers)
	assert.Equal(t, int64(5000), withdrawn)

	statement, err := svc.GetLedgerStatement(ctx, creator.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3000), statement.AvailableFunds)
	assert.Len(t, statement.CreditsReceived, 1)
	assert.Len(t, statement.Withdrawals, 1)
}

package funding_test

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crowdforge/crowdforge-backend/internal/domain"
	"github.com/crowdforge/crowdforge-backend/internal/repository"
	"github.com/crowdforge/crowdforge-backend/internal/service/funding"
	"github.com/crowdforge/crowdforge-backend/internal/testutil"
)

type stubGateway struct {
	transactionID string
	bankName      string
	err           error
	calls         int
	mu            sync.Mutex
}

func (g *stubGateway) SubmitPayout(_ context.Context, _ funding.PayoutRequest) (*funding.PayoutReceipt, error) {
	g.mu.Lock()
	g.calls++
	g.mu.Unlock()
	if g.err != nil {
		return nil, g.err
	}
	return &funding.PayoutReceipt{TransactionID: g.transactionID, BankName: g.bankName}, nil
}

func setupFundingService(t *testing.T, db *sql.DB, gateway *stubGateway) *funding.Service {
	t.Helper()
	if gateway == nil {
		gateway = &stubGateway{transactionID: "payout_test", bankName: "Test Bank"}
	}
	return funding.NewService(
		repository.NewCampaignRepository(db),
		repository.NewLedgerRepository(db),
		repository.NewDonationRepository(db),
		repository.NewWithdrawalRepository(db),
		repository.NewUserRepository(db),
		gateway,
		nil,
		db,
	)
}

func TestApplyDonation_HappyPath(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupFundingService(t, db, nil)
	ctx := context.Background()

	creator := testutil.SeedTestUser(t, db, "creator@test.com", "Creator")
	donor := testutil.SeedTestUser(t, db, "donor@test.com", "Donor")
	campaign := testutil.SeedTestCampaign(t, db, creator.ID, "Well Project", 100000)

	result, err := svc.ApplyDonation(ctx, funding.ApplyDonationRequest{
		TransactionID: "txn_hp_1",
		Amount:        2500,
		CampaignID:    campaign.ID,
		DonorEmail:    donor.Email,
		DonorName:     donor.Name,
	})

	require.NoError(t, err)
	assert.False(t, result.AlreadyProcessed)
	assert.Equal(t, "txn_hp_1", result.Donation.TransactionID)
	assert.Equal(t, donor.ID, result.Donation.DonorID)
	assert.Equal(t, creator.ID, result.Donation.CreatorID)
	assert.Equal(t, int64(2500), result.Donation.Amount)

	assert.Equal(t, int64(2500), testutil.GetLedgerFunds(t, db, creator.ID))

	raised, backers, withdrawn := testutil.GetCampaignTotals(t, db, campaign.ID)
	assert.Equal(t, int64(2500), raised)
	assert.Equal(t, 1, backers)
	assert.Equal(t, int64(0), withdrawn)
}

func TestApplyDonation_TotalsAreAdditive(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupFundingService(t, db, nil)
	ctx := context.Background()

	creator := testutil.SeedTestUser(t, db, "creator@test.com", "Creator")
	donorA := testutil.SeedTestUser(t, db, "a@test.com", "Alice")
	donorB := testutil.SeedTestUser(t, db, "b@test.com", "Bob")
	campaign := testutil.SeedTestCampaign(t, db, creator.ID, "School Fund", 500000)

	amounts := []struct {
		email  string
		amount int64
	}{
		{donorA.Email, 1000},
		{donorB.Email, 3000},
		{donorA.Email, 500},
	}
	for i, d := range amounts {
		_, err := svc.ApplyDonation(ctx, funding.ApplyDonationRequest{
			TransactionID: fmt.Sprintf("txn_add_%d", i),
			Amount:        d.amount,
			CampaignID:    campaign.ID,
			DonorEmail:    d.email,
		})
		require.NoError(t, err)
	}

	assert.Equal(t, int64(4500), testutil.GetLedgerFunds(t, db, creator.ID))

	raised, backers, _ := testutil.GetCampaignTotals(t, db, campaign.ID)
	assert.Equal(t, int64(4500), raised)
	assert.Equal(t, 3, backers)
}

func TestApplyDonation_DuplicateDeliveryIsNoOp(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupFundingService(t, db, nil)
	ctx := context.Background()

	creator := testutil.SeedTestUser(t, db, "creator@test.com", "Creator")
	donor := testutil.SeedTestUser(t, db, "donor@test.com", "Donor")
	campaign := testutil.SeedTestCampaign(t, db, creator.ID, "Well Project", 100000)

	req := funding.ApplyDonationRequest{
		TransactionID: "txn_dup_1",
		Amount:        2000,
		CampaignID:    campaign.ID,
		DonorEmail:    donor.Email,
	}

	first, err := svc.ApplyDonation(ctx, req)
	require.NoError(t, err)
	assert.False(t, first.AlreadyProcessed)

	second, err := svc.ApplyDonation(ctx, req)
	require.NoError(t, err)
	assert.True(t, second.AlreadyProcessed)
	assert.Equal(t, first.Donation.ID, second.Donation.ID)

	assert.Equal(t, int64(2000), testutil.GetLedgerFunds(t, db, creator.ID))
	assert.Equal(t, 1, testutil.CountDonations(t, db, "txn_dup_1"))

	raised, backers, _ := testutil.GetCampaignTotals(t, db, campaign.ID)
	assert.Equal(t, int64(2000), raised)
	assert.Equal(t, 1, backers)
}

func TestApplyDonation_ConcurrentDuplicateDeliveries(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupFundingService(t, db, nil)
	ctx := context.Background()

	creator := testutil.SeedTestUser(t, db, "creator@test.com", "Creator")
	donor := testutil.SeedTestUser(t, db, "donor@test.com", "Donor")
	campaign := testutil.SeedTestCampaign(t, db, creator.ID, "Well Project", 100000)

	req := funding.ApplyDonationRequest{
		TransactionID: "txn_race_1",
		Amount:        1500,
		CampaignID:    campaign.ID,
		DonorEmail:    donor.Email,
	}

	const deliveries = 4
	var wg sync.WaitGroup
	errs := make(chan error, deliveries)

	for range deliveries {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.ApplyDonation(ctx, req)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	assert.Equal(t, int64(1500), testutil.GetLedgerFunds(t, db, creator.ID))
	assert.Equal(t, 1, testutil.CountDonations(t, db, "txn_race_1"))

	raised, backers, _ := testutil.GetCampaignTotals(t, db, campaign.ID)
	assert.Equal(t, int64(1500), raised)
	assert.Equal(t, 1, backers)
}

func TestApplyDonation_ConcurrentDistinctDonations(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupFundingService(t, db, nil)
	ctx := context.Background()

	creator := testutil.SeedTestUser(t, db, "creator@test.com", "Creator")
	donor := testutil.SeedTestUser(t, db, "donor@test.com", "Donor")
	campaign := testutil.SeedTestCampaign(t, db, creator.ID, "Well Project", 100000)

	const donations = 8
	var wg sync.WaitGroup
	errs := make(chan error, donations)

	for i := range donations {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := svc.ApplyDonation(ctx, funding.ApplyDonationRequest{
				TransactionID: fmt.Sprintf("txn_par_%d", i),
				Amount:        100,
				CampaignID:    campaign.ID,
				DonorEmail:    donor.Email,
			})
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	// No lost updates: every donation must land in the totals.
	assert.Equal(t, int64(800), testutil.GetLedgerFunds(t, db, creator.ID))

	raised, backers, _ := testutil.GetCampaignTotals(t, db, campaign.ID)
	assert.Equal(t, int64(800), raised)
	assert.Equal(t, donations, backers)
}

func TestApplyDonation_SelfDonationCreditsOnce(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupFundingService(t, db, nil)
	ctx := context.Background()

	creator := testutil.SeedTestUser(t, db, "creator@test.com", "Creator")
	campaign := testutil.SeedTestCampaign(t, db, creator.ID, "Well Project", 100000)

	result, err := svc.ApplyDonation(ctx, funding.ApplyDonationRequest{
		TransactionID: "txn_self_1",
		Amount:        1000,
		CampaignID:    campaign.ID,
		DonorEmail:    creator.Email,
	})

	require.NoError(t, err)
	assert.Equal(t, creator.ID, result.Donation.DonorID)
	assert.Equal(t, creator.ID, result.Donation.CreatorID)

	assert.Equal(t, int64(1000), testutil.GetLedgerFunds(t, db, creator.ID))

	raised, backers, _ := testutil.GetCampaignTotals(t, db, campaign.ID)
	assert.Equal(t, int64(1000), raised)
	assert.Equal(t, 1, backers)
}

func TestApplyDonation_UnknownDonor(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupFundingService(t, db, nil)
	ctx := context.Background()

	creator := testutil.SeedTestUser(t, db, "creator@test.com", "Creator")
	campaign := testutil.SeedTestCampaign(t, db, creator.ID, "Well Project", 100000)

	_, err := svc.ApplyDonation(ctx, funding.ApplyDonationRequest{
		TransactionID: "txn_nodonor_1",
		Amount:        1000,
		CampaignID:    campaign.ID,
		DonorEmail:    "nobody@test.com",
	})

	require.ErrorIs(t, err, domain.ErrDonorNotFound)
}

func TestApplyDonation_UnknownCampaign(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupFundingService(t, db, nil)
	ctx := context.Background()

	donor := testutil.SeedTestUser(t, db, "donor@test.com", "Donor")

	_, err := svc.ApplyDonation(ctx, funding.ApplyDonationRequest{
		TransactionID: "txn_nocamp_1",
		Amount:        1000,
		CampaignID:    uuid.New(),
		DonorEmail:    donor.Email,
	})

	require.ErrorIs(t, err, domain.ErrCampaignNotFound)
}

func TestApplyDonation_RejectsNonPositiveAmount(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupFundingService(t, db, nil)
	ctx := context.Background()

	for _, amount := range []int64{0, -500} {
		_, err := svc.ApplyDonation(ctx, funding.ApplyDonationRequest{
			TransactionID: "txn_bad_amount",
			Amount:        amount,
			CampaignID:    uuid.New(),
			DonorEmail:    "donor@test.com",
		})
		require.ErrorIs(t, err, domain.ErrInvalidAmount)
	}
}

func TestGetLedgerStatement(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupFundingService(t, db, nil)
	ctx := context.Background()

	creator := testutil.SeedTestUser(t, db, "creator@test.com", "Creator")
	donor := testutil.SeedTestUser(t, db, "donor@test.com", "Donor")
	campaign := testutil.SeedTestCampaign(t, db, creator.ID, "Well Project", 100000)

	_, err := svc.ApplyDonation(ctx, funding.ApplyDonationRequest{
		TransactionID: "txn_stmt_1",
		Amount:        4000,
		CampaignID:    campaign.ID,
		DonorEmail:    donor.Email,
	})
	require.NoError(t, err)

	creatorStmt, err := svc.GetLedgerStatement(ctx, creator.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(4000), creatorStmt.AvailableFunds)
	assert.Len(t, creatorStmt.CreditsReceived, 1)
	assert.Empty(t, creatorStmt.Donations)

	donorStmt, err := svc.GetLedgerStatement(ctx, donor.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), donorStmt.AvailableFunds)
	assert.Len(t, donorStmt.Donations, 1)
	assert.Empty(t, donorStmt.CreditsReceived)
}

func TestGetCampaignFundState(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupFundingService(t, db, nil)
	ctx := context.Background()

	creator := testutil.SeedTestUser(t, db, "creator@test.com", "Creator")
	donor := testutil.SeedTestUser(t, db, "donor@test.com", "Donor")
	campaign := testutil.SeedTestCampaign(t, db, creator.ID, "Well Project", 100000)

	_, err := svc.ApplyDonation(ctx, funding.ApplyDonationRequest{
		TransactionID: "txn_state_1",
		Amount:        7500,
		CampaignID:    campaign.ID,
		DonorEmail:    donor.Email,
	})
	require.NoError(t, err)

	state, err := svc.GetCampaignFundState(ctx, campaign.ID)
	require.NoError(t, err)
	assert.Equal(t, campaign.ID, state.CampaignID)
	assert.Equal(t, int64(7500), state.RaisedFunds)
	assert.Equal(t, 1, state.Backers)
	assert.Equal(t, int64(0), state.FundsWithdrawn)
}

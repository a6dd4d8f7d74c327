package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crowdforge/crowdforge-backend/internal/repository"
	"github.com/crowdforge/crowdforge-backend/internal/service"
	"github.com/crowdforge/crowdforge-backend/internal/testutil"
)

type recordingPublisher struct {
	events []any
}

func (p *recordingPublisher) Publish(_ context.Context, event any) {
	p.events = append(p.events, event)
}

func TestSendAndListMessages(t *testing.T) {
	db := testutil.SetupTestDB(t)
	pub := &recordingPublisher{}
	svc := service.NewMessageService(
		repository.NewMessageRepository(db),
		repository.NewCampaignRepository(db),
		repository.NewUserRepository(db),
		pub,
	)
	ctx := context.Background()

	creator := testutil.SeedTestUser(t, db, "creator@test.com", "Creator")
	backerA := testutil.SeedTestUser(t, db, "a@test.com", "Alice")
	backerB := testutil.SeedTestUser(t, db, "b@test.com", "Bob")
	campaign := testutil.SeedTestCampaign(t, db, creator.ID, "Well Project", 100000)

	msgA, err := svc.SendMessage(ctx, campaign.ID, backerA.ID, creator.ID, "Can I volunteer?")
	require.NoError(t, err)
	assert.Equal(t, "Alice", msgA.SenderName)

	_, err = svc.SendMessage(ctx, campaign.ID, backerB.ID, creator.ID, "Is there a deadline?")
	require.NoError(t, err)

	require.Len(t, pub.events, 2)
	sent, ok := pub.events[0].(service.MessageSent)
	require.True(t, ok)
	assert.Equal(t, msgA.ID, sent.MessageID)
	assert.Equal(t, creator.ID, sent.ReceiverID)

	// The creator sees the whole thread.
	all, err := svc.ListMessages(ctx, campaign.ID, creator.ID)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	// A backer sees only their own exchange.
	mine, err := svc.ListMessages(ctx, campaign.ID, backerA.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "Can I volunteer?", mine[0].Content)
}

func TestReplyToMessage_GoesBackToOriginalSender(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := service.NewMessageService(
		repository.NewMessageRepository(db),
		repository.NewCampaignRepository(db),
		repository.NewUserRepository(db),
		nil,
	)
	ctx := context.Background()

	creator := testutil.SeedTestUser(t, db, "creator@test.com", "Creator")
	backer := testutil.SeedTestUser(t, db, "backer@test.com", "Backer")
	campaign := testutil.SeedTestCampaign(t, db, creator.ID, "Well Project", 100000)

	original, err := svc.SendMessage(ctx, campaign.ID, backer.ID, creator.ID, "Question about rewards")
	require.NoError(t, err)

	reply, err := svc.ReplyToMessage(ctx, campaign.ID, original.ID, creator.ID, "Happy to explain")
	require.NoError(t, err)
	assert.Equal(t, creator.ID, reply.SenderID)
	assert.Equal(t, backer.ID, reply.ReceiverID)

	mine, err := svc.ListMessages(ctx, campaign.ID, backer.ID)
	require.NoError(t, err)
	assert.Len(t, mine, 2)
}

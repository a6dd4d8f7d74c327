package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crowdforge/crowdforge-backend/internal/domain"
	"github.com/crowdforge/crowdforge-backend/internal/repository"
	"github.com/crowdforge/crowdforge-backend/internal/service"
	"github.com/crowdforge/crowdforge-backend/internal/testutil"
)

func setupCommentService(t *testing.T) (*service.CommentService, *commentFixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)

	svc := service.NewCommentService(
		repository.NewCommentRepository(db),
		repository.NewCampaignRepository(db),
		repository.NewUserRepository(db),
	)

	creator := testutil.SeedTestUser(t, db, "creator@test.com", "Creator")
	backer := testutil.SeedTestUser(t, db, "backer@test.com", "Backer")
	campaign := testutil.SeedTestCampaign(t, db, creator.ID, "Well Project", 100000)

	return svc, &commentFixtures{creator: creator, backer: backer, campaign: campaign}
}

type commentFixtures struct {
	creator  *domain.User
	backer   *domain.User
	campaign *domain.Campaign
}

func TestAddAndListComments(t *testing.T) {
	svc, fx := setupCommentService(t)
	ctx := context.Background()

	comment, err := svc.AddComment(ctx, fx.campaign.ID, fx.backer.ID, "Great cause!")
	require.NoError(t, err)
	assert.Equal(t, "Backer", comment.AuthorName)
	assert.Nil(t, comment.Reply)

	comments, err := svc.ListComments(ctx, fx.campaign.ID)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, "Great cause!", comments[0].Content)
}

func TestReplyToComment_CreatorOnly(t *testing.T) {
	svc, fx := setupCommentService(t)
	ctx := context.Background()

	comment, err := svc.AddComment(ctx, fx.campaign.ID, fx.backer.ID, "When do you break ground?")
	require.NoError(t, err)

	_, err = svc.ReplyToComment(ctx, fx.campaign.ID, comment.ID, fx.backer.ID, "soon")
	require.ErrorIs(t, err, domain.ErrNotCampaignOwner)

	replied, err := svc.ReplyToComment(ctx, fx.campaign.ID, comment.ID, fx.creator.ID, "Next spring.")
	require.NoError(t, err)
	require.NotNil(t, replied.Reply)
	assert.Equal(t, "Next spring.", *replied.Reply)

	comments, err := svc.ListComments(ctx, fx.campaign.ID)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	require.NotNil(t, comments[0].Reply)
	assert.Equal(t, "Next spring.", *comments[0].Reply)
}

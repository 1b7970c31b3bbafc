package service

import (
	"alcyxob/fitcoach/internal/domain"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func intPtr(v int) *int { return &v }

type reviewFixture struct {
	svc     ReviewService
	users   *fakeUserRepo
	trainer *domain.User
}

func newReviewFixture() *reviewFixture {
	users := newFakeUserRepo()
	return &reviewFixture{
		svc:     NewReviewService(newFakeReviewRepo(), users),
		users:   users,
		trainer: users.add("Tomas", "tomas@example.com", domain.RoleTrainer),
	}
}

func (f *reviewFixture) review(t *testing.T, rating int, subs domain.SubScores) *domain.Review {
	t.Helper()
	author := f.users.add("Client", primitive.NewObjectID().Hex()+"@example.com", domain.RoleClient)
	r, err := f.svc.CreateReview(context.Background(), author.ID, f.trainer.ID, ReviewInput{Rating: rating, SubScores: subs})
	require.NoError(t, err)
	return r
}

func TestCreateReview_Validation(t *testing.T) {
	f := newReviewFixture()
	client := f.users.add("Carla", "carla@example.com", domain.RoleClient)
	ctx := context.Background()

	tests := []struct {
		name    string
		author  primitive.ObjectID
		trainer primitive.ObjectID
		input   ReviewInput
		wantErr error
	}{
		{"rating too low", client.ID, f.trainer.ID, ReviewInput{Rating: 0}, ErrInvalidRating},
		{"rating too high", client.ID, f.trainer.ID, ReviewInput{Rating: 6}, ErrInvalidRating},
		{"bad sub-score", client.ID, f.trainer.ID, ReviewInput{Rating: 4, SubScores: domain.SubScores{Results: intPtr(9)}}, ErrInvalidRating},
		{"self review", f.trainer.ID, f.trainer.ID, ReviewInput{Rating: 5}, ErrReviewSelf},
		{"not a trainer", f.trainer.ID, client.ID, ReviewInput{Rating: 5}, ErrNotATrainer},
		{"unknown trainer", client.ID, primitive.NewObjectID(), ReviewInput{Rating: 5}, ErrTrainerNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.CreateReview(ctx, tt.author, tt.trainer, tt.input)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestCreateReview_OnePerAuthor(t *testing.T) {
	f := newReviewFixture()
	client := f.users.add("Carla", "carla@example.com", domain.RoleClient)
	ctx := context.Background()

	_, err := f.svc.CreateReview(ctx, client.ID, f.trainer.ID, ReviewInput{Rating: 5, Comment: "  great  "})
	require.NoError(t, err)

	_, err = f.svc.CreateReview(ctx, client.ID, f.trainer.ID, ReviewInput{Rating: 1})
	assert.ErrorIs(t, err, ErrReviewExists)

	reviews, err := f.svc.ListTrainerReviews(ctx, f.trainer.ID)
	require.NoError(t, err)
	require.Len(t, reviews, 1)
	assert.Equal(t, "great", reviews[0].Comment)
}

func TestUpdateAndDeleteReview_AuthorOnly(t *testing.T) {
	f := newReviewFixture()
	ctx := context.Background()
	r := f.review(t, 3, domain.SubScores{})
	stranger := primitive.NewObjectID()

	_, err := f.svc.UpdateReview(ctx, stranger, r.ID, ReviewInput{Rating: 5})
	assert.ErrorIs(t, err, ErrReviewAccessDenied)
	assert.ErrorIs(t, f.svc.DeleteReview(ctx, stranger, r.ID), ErrReviewAccessDenied)

	updated, err := f.svc.UpdateReview(ctx, r.AuthorID, r.ID, ReviewInput{Rating: 5, Comment: "better now"})
	require.NoError(t, err)
	assert.Equal(t, 5, updated.Rating)

	_, err = f.svc.UpdateReview(ctx, r.AuthorID, r.ID, ReviewInput{Rating: 7})
	assert.ErrorIs(t, err, ErrInvalidRating)

	require.NoError(t, f.svc.DeleteReview(ctx, r.AuthorID, r.ID))
	assert.ErrorIs(t, f.svc.DeleteReview(ctx, r.AuthorID, r.ID), ErrReviewNotFound)
}

func TestTrainerStats(t *testing.T) {
	f := newReviewFixture()
	ctx := context.Background()

	t.Run("no reviews", func(t *testing.T) {
		stats, err := f.svc.TrainerStats(ctx, f.trainer.ID)
		require.NoError(t, err)
		assert.Zero(t, stats.TotalReviews)
		assert.Zero(t, stats.AverageRating)
		assert.Equal(t, map[int]int{1: 0, 2: 0, 3: 0, 4: 0, 5: 0}, stats.Distribution)
		assert.Empty(t, stats.Recent)
		assert.Nil(t, stats.SubScores.Knowledge)
	})

	f.review(t, 5, domain.SubScores{Knowledge: intPtr(5), Results: intPtr(4)})
	f.review(t, 4, domain.SubScores{Knowledge: intPtr(4)})
	f.review(t, 4, domain.SubScores{})
	f.review(t, 2, domain.SubScores{})
	f.review(t, 5, domain.SubScores{})
	newest := f.review(t, 1, domain.SubScores{Knowledge: intPtr(2)})

	stats, err := f.svc.TrainerStats(ctx, f.trainer.ID)
	require.NoError(t, err)

	assert.Equal(t, 6, stats.TotalReviews)
	assert.Equal(t, 3.5, stats.AverageRating)
	assert.Equal(t, map[int]int{1: 1, 2: 1, 3: 0, 4: 2, 5: 2}, stats.Distribution)

	require.NotNil(t, stats.SubScores.Knowledge)
	assert.Equal(t, 3.67, *stats.SubScores.Knowledge)
	require.NotNil(t, stats.SubScores.Results)
	assert.Equal(t, 4.0, *stats.SubScores.Results)
	assert.Nil(t, stats.SubScores.Professionalism)

	require.Len(t, stats.Recent, recentReviewsInStats)
	assert.Equal(t, newest.ID, stats.Recent[0].ID)

	_, err = f.svc.TrainerStats(ctx, primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrTrainerNotFound)
}

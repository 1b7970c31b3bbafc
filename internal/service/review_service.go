package service

import (
	"alcyxob/fitcoach/internal/domain"
	"alcyxob/fitcoach/internal/repository"
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const recentReviewsInStats = 5

var (
	ErrReviewNotFound     = errors.New("review not found")
	ErrReviewAccessDenied = errors.New("only the author can modify this review")
	ErrReviewExists       = errors.New("you have already reviewed this trainer")
	ErrReviewSelf         = fmt.Errorf("%w: cannot review yourself", ErrValidationFailed)
	ErrInvalidRating      = fmt.Errorf("%w: ratings must be between %d and %d", ErrValidationFailed, domain.MinRating, domain.MaxRating)
	ErrTrainerNotFound    = errors.New("trainer not found")
)

type ReviewInput struct {
	Rating    int
	SubScores domain.SubScores
	Comment   string
}

type ReviewService interface {
	CreateReview(ctx context.Context, authorID, trainerID primitive.ObjectID, input ReviewInput) (*domain.Review, error)
	UpdateReview(ctx context.Context, authorID, reviewID primitive.ObjectID, input ReviewInput) (*domain.Review, error)
	DeleteReview(ctx context.Context, authorID, reviewID primitive.ObjectID) error
	ListTrainerReviews(ctx context.Context, trainerID primitive.ObjectID) ([]domain.Review, error)
	TrainerStats(ctx context.Context, trainerID primitive.ObjectID) (*domain.TrainerStats, error)
}

type reviewService struct {
	reviewRepo repository.ReviewRepository
	userRepo   repository.UserRepository
}

func NewReviewService(reviewRepo repository.ReviewRepository, userRepo repository.UserRepository) ReviewService {
	return &reviewService{reviewRepo: reviewRepo, userRepo: userRepo}
}

func validRating(r int) bool {
	return r >= domain.MinRating && r <= domain.MaxRating
}

func (in ReviewInput) validate() error {
	if !validRating(in.Rating) {
		return ErrInvalidRating
	}
	for _, sub := range []*int{in.SubScores.Professionalism, in.SubScores.Knowledge, in.SubScores.Communication, in.SubScores.Results} {
		if sub != nil && !validRating(*sub) {
			return ErrInvalidRating
		}
	}
	return nil
}

func (s *reviewService) CreateReview(ctx context.Context, authorID, trainerID primitive.ObjectID, input ReviewInput) (*domain.Review, error) {
	if authorID == trainerID {
		return nil, ErrReviewSelf
	}
	if err := input.validate(); err != nil {
		return nil, err
	}
	if err := ensureTrainer(ctx, s.userRepo, trainerID); err != nil {
		return nil, err
	}

	// Fast path; the unique index catches concurrent submissions.
	if _, err := s.reviewRepo.GetByAuthorAndTrainer(ctx, authorID, trainerID); err == nil {
		return nil, ErrReviewExists
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	review := &domain.Review{
		AuthorID:  authorID,
		TrainerID: trainerID,
		Rating:    input.Rating,
		SubScores: input.SubScores,
		Comment:   strings.TrimSpace(input.Comment),
	}
	id, err := s.reviewRepo.Create(ctx, review)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrReviewExists
		}
		return nil, err
	}
	review.ID = id
	return review, nil
}

func (s *reviewService) ownedReview(ctx context.Context, authorID, reviewID primitive.ObjectID) (*domain.Review, error) {
	review, err := s.reviewRepo.GetByID(ctx, reviewID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, err
	}
	if review.AuthorID != authorID {
		return nil, ErrReviewAccessDenied
	}
	return review, nil
}

func (s *reviewService) UpdateReview(ctx context.Context, authorID, reviewID primitive.ObjectID, input ReviewInput) (*domain.Review, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	review, err := s.ownedReview(ctx, authorID, reviewID)
	if err != nil {
		return nil, err
	}

	review.Rating = input.Rating
	review.SubScores = input.SubScores
	review.Comment = strings.TrimSpace(input.Comment)
	if err := s.reviewRepo.Update(ctx, review); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, err
	}
	return review, nil
}

func (s *reviewService) DeleteReview(ctx context.Context, authorID, reviewID primitive.ObjectID) error {
	if _, err := s.ownedReview(ctx, authorID, reviewID); err != nil {
		return err
	}
	if err := s.reviewRepo.Delete(ctx, reviewID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrReviewNotFound
		}
		return err
	}
	return nil
}

func (s *reviewService) ListTrainerReviews(ctx context.Context, trainerID primitive.ObjectID) ([]domain.Review, error) {
	if err := ensureTrainer(ctx, s.userRepo, trainerID); err != nil {
		return nil, err
	}
	return s.reviewRepo.GetByTrainerID(ctx, trainerID)
}

func (s *reviewService) TrainerStats(ctx context.Context, trainerID primitive.ObjectID) (*domain.TrainerStats, error) {
	if err := ensureTrainer(ctx, s.userRepo, trainerID); err != nil {
		return nil, err
	}
	reviews, err := s.reviewRepo.GetByTrainerID(ctx, trainerID)
	if err != nil {
		return nil, err
	}
	return computeStats(trainerID, reviews), nil
}

// computeStats expects reviews newest first.
func computeStats(trainerID primitive.ObjectID, reviews []domain.Review) *domain.TrainerStats {
	stats := &domain.TrainerStats{
		TrainerID:    trainerID,
		TotalReviews: len(reviews),
		Distribution: map[int]int{1: 0, 2: 0, 3: 0, 4: 0, 5: 0},
		Recent:       []domain.Review{},
	}
	if len(reviews) == 0 {
		return stats
	}

	var total int
	var prof, know, comm, res subScoreSum
	for _, r := range reviews {
		total += r.Rating
		stats.Distribution[r.Rating]++
		prof.add(r.SubScores.Professionalism)
		know.add(r.SubScores.Knowledge)
		comm.add(r.SubScores.Communication)
		res.add(r.SubScores.Results)
	}

	stats.AverageRating = round2(float64(total) / float64(len(reviews)))
	stats.SubScores = domain.SubScoreAverages{
		Professionalism: prof.mean(),
		Knowledge:       know.mean(),
		Communication:   comm.mean(),
		Results:         res.mean(),
	}

	n := recentReviewsInStats
	if len(reviews) < n {
		n = len(reviews)
	}
	stats.Recent = append(stats.Recent, reviews[:n]...)
	return stats
}

type subScoreSum struct {
	sum, count int
}

func (s *subScoreSum) add(v *int) {
	if v != nil {
		s.sum += *v
		s.count++
	}
}

// mean is nil when no review set the sub-score.
func (s subScoreSum) mean() *float64 {
	if s.count == 0 {
		return nil
	}
	m := round2(float64(s.sum) / float64(s.count))
	return &m
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

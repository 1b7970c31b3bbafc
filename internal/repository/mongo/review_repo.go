package mongo

import (
	"alcyxob/fitcoach/internal/domain"
	"alcyxob/fitcoach/internal/repository"
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const reviewCollectionName = "reviews"

type mongoReviewRepository struct {
	collection *mongo.Collection
}

// NewMongoReviewRepository creates a new Review repository backed by MongoDB.
func NewMongoReviewRepository(db *mongo.Database) repository.ReviewRepository {
	return &mongoReviewRepository{
		collection: db.Collection(reviewCollectionName),
	}
}

// Create inserts a review. The unique (authorId, trainerId) index turns a
// second review by the same author into ErrDuplicate.
func (r *mongoReviewRepository) Create(ctx context.Context, review *domain.Review) (primitive.ObjectID, error) {
	if review.AuthorID == primitive.NilObjectID || review.TrainerID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("review requires authorId and trainerId")
	}

	review.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	review.CreatedAt = now
	review.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, review)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
		return primitive.NilObjectID, err
	}
	return insertedID(result)
}

func (r *mongoReviewRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Review, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *mongoReviewRepository) GetByAuthorAndTrainer(ctx context.Context, authorID, trainerID primitive.ObjectID) (*domain.Review, error) {
	return r.findOne(ctx, bson.M{"authorId": authorID, "trainerId": trainerID})
}

func (r *mongoReviewRepository) findOne(ctx context.Context, filter bson.M) (*domain.Review, error) {
	var review domain.Review
	if err := r.collection.FindOne(ctx, filter).Decode(&review); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &review, nil
}

// GetByTrainerID returns a trainer's reviews, newest first.
func (r *mongoReviewRepository) GetByTrainerID(ctx context.Context, trainerID primitive.ObjectID) ([]domain.Review, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"trainerId": trainerID}, options.Find().SetSort(byNewest))
	if err != nil {
		return nil, err
	}
	return decodeAll[domain.Review](ctx, cursor)
}

// Update rewrites the rating, sub-scores and comment.
func (r *mongoReviewRepository) Update(ctx context.Context, review *domain.Review) error {
	review.UpdatedAt = time.Now().UTC()
	update := bson.M{
		"$set": bson.M{
			"rating":    review.Rating,
			"subScores": review.SubScores,
			"comment":   review.Comment,
			"updatedAt": review.UpdatedAt,
		},
	}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": review.ID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *mongoReviewRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureReviewIndexes creates necessary indexes for the reviews collection.
func EnsureReviewIndexes(ctx context.Context, collection *mongo.Collection) error {
	return createIndexes(ctx, collection, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "authorId", Value: 1}, {Key: "trainerId", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("one_review_per_author"),
		},
		{Keys: bson.D{{Key: "trainerId", Value: 1}, {Key: "createdAt", Value: -1}}},
	})
}

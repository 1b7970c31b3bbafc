package mongo

import (
	"alcyxob/fitcoach/internal/domain"
	"alcyxob/fitcoach/internal/repository"
	"context"
	"errors"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const exerciseCollectionName = "exercises"

// mongoExerciseRepository implements repository.ExerciseRepository
type mongoExerciseRepository struct {
	collection *mongo.Collection
}

// NewMongoExerciseRepository creates a new Exercise repository backed by MongoDB.
func NewMongoExerciseRepository(db *mongo.Database) repository.ExerciseRepository {
	return &mongoExerciseRepository{
		collection: db.Collection(exerciseCollectionName),
	}
}

// Create inserts a new exercise into the database.
func (r *mongoExerciseRepository) Create(ctx context.Context, exercise *domain.Exercise) (primitive.ObjectID, error) {
	if exercise.Name == "" || exercise.TrainerID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("exercise name and trainer ID are required")
	}

	exercise.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	exercise.CreatedAt = now
	exercise.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, exercise)
	if err != nil {
		return primitive.NilObjectID, err
	}
	return insertedID(result)
}

// GetByID retrieves an exercise by its ID.
func (r *mongoExerciseRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Exercise, error) {
	var exercise domain.Exercise
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&exercise)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &exercise, nil
}

func (r *mongoExerciseRepository) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.Exercise, error) {
	if len(ids) == 0 {
		return []domain.Exercise{}, nil
	}
	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	return decodeAll[domain.Exercise](ctx, cursor)
}

// List returns catalog entries matching the filter, sorted by name.
func (r *mongoExerciseRepository) List(ctx context.Context, f domain.ExerciseFilter) ([]domain.Exercise, error) {
	filter := bson.M{}
	if f.TrainerID != nil {
		filter["trainerId"] = *f.TrainerID
	}
	if f.MuscleGroup != "" {
		filter["muscleGroup"] = bson.M{"$regex": "^" + regexp.QuoteMeta(f.MuscleGroup) + "$", "$options": "i"}
	}
	if f.Difficulty != "" {
		filter["difficulty"] = bson.M{"$regex": "^" + regexp.QuoteMeta(f.Difficulty) + "$", "$options": "i"}
	}
	if f.Search != "" {
		filter["name"] = bson.M{"$regex": regexp.QuoteMeta(f.Search), "$options": "i"}
	}

	findOptions := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	if f.Limit > 0 {
		findOptions.SetLimit(f.Limit)
	}

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	return decodeAll[domain.Exercise](ctx, cursor)
}

// Update modifies an existing exercise. The owner (trainerId) is never changed.
func (r *mongoExerciseRepository) Update(ctx context.Context, exercise *domain.Exercise) error {
	if exercise.ID == primitive.NilObjectID {
		return errors.New("exercise ID is required for update")
	}
	if exercise.Name == "" {
		return errors.New("exercise name cannot be empty")
	}

	exercise.UpdatedAt = time.Now().UTC()
	update := bson.M{
		"$set": bson.M{
			"name":             exercise.Name,
			"description":      exercise.Description,
			"muscleGroup":      exercise.MuscleGroup,
			"executionTechnic": exercise.ExecutionTechnic,
			"applicability":    exercise.Applicability,
			"difficulty":       exercise.Difficulty,
			"equipment":        exercise.Equipment,
			"videoUrl":         exercise.VideoURL,
			"updatedAt":        exercise.UpdatedAt,
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": exercise.ID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes an exercise, ensuring it belongs to the specified trainer.
// A missing exercise and one owned by someone else both yield ErrNotFound.
func (r *mongoExerciseRepository) Delete(ctx context.Context, id primitive.ObjectID, trainerID primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id, "trainerId": trainerID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureExerciseIndexes creates necessary indexes for the exercises collection.
func EnsureExerciseIndexes(ctx context.Context, collection *mongo.Collection) error {
	return createIndexes(ctx, collection, []mongo.IndexModel{
		{Keys: bson.D{{Key: "trainerId", Value: 1}}},
		{Keys: bson.D{{Key: "muscleGroup", Value: 1}, {Key: "difficulty", Value: 1}}},
		{
			Keys:    bson.D{{Key: "name", Value: "text"}, {Key: "description", Value: "text"}},
			Options: options.Index().SetName("exercise_text_search"),
		},
	})
}

// internal/repository/mongo/routine_repo.go
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

const (
	routineCollectionName         = "routines"
	routineExerciseCollectionName = "routine_exercises"
)

type mongoRoutineRepository struct {
	routines *mongo.Collection
	links    *mongo.Collection
}

// NewMongoRoutineRepository creates a new Routine repository backed by MongoDB.
func NewMongoRoutineRepository(db *mongo.Database) repository.RoutineRepository {
	return &mongoRoutineRepository{
		routines: db.Collection(routineCollectionName),
		links:    db.Collection(routineExerciseCollectionName),
	}
}

func (r *mongoRoutineRepository) Create(ctx context.Context, routine *domain.Routine) (primitive.ObjectID, error) {
	if routine.Name == "" || routine.TrainerID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("routine requires name and trainerId")
	}

	routine.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	routine.CreatedAt = now
	routine.UpdatedAt = now

	result, err := r.routines.InsertOne(ctx, routine)
	if err != nil {
		return primitive.NilObjectID, err
	}
	return insertedID(result)
}

func (r *mongoRoutineRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Routine, error) {
	var routine domain.Routine
	err := r.routines.FindOne(ctx, bson.M{"_id": id}).Decode(&routine)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &routine, nil
}

// GetByTrainerID lists a trainer's routines, newest first.
func (r *mongoRoutineRepository) GetByTrainerID(ctx context.Context, trainerID primitive.ObjectID) ([]domain.Routine, error) {
	cursor, err := r.routines.Find(ctx, bson.M{"trainerId": trainerID}, options.Find().SetSort(byNewest))
	if err != nil {
		return nil, err
	}
	return decodeAll[domain.Routine](ctx, cursor)
}

func (r *mongoRoutineRepository) Update(ctx context.Context, routine *domain.Routine) error {
	if routine.ID == primitive.NilObjectID {
		return errors.New("routine ID is required for update")
	}
	routine.UpdatedAt = time.Now().UTC()
	update := bson.M{
		"$set": bson.M{
			"name":          routine.Name,
			"description":   routine.Description,
			"goal":          routine.Goal,
			"difficulty":    routine.Difficulty,
			"durationWeeks": routine.DurationWeeks,
			"updatedAt":     routine.UpdatedAt,
		},
	}
	result, err := r.routines.UpdateOne(ctx, bson.M{"_id": routine.ID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes the routine's links first, then the routine, so a failure
// part way never leaves links pointing at a missing routine.
func (r *mongoRoutineRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	if _, err := r.links.DeleteMany(ctx, bson.M{"routineId": id}); err != nil {
		return err
	}
	result, err := r.routines.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *mongoRoutineRepository) AddExercises(ctx context.Context, links []domain.RoutineExercise) error {
	if len(links) == 0 {
		return nil
	}
	docs := make([]interface{}, len(links))
	for i := range links {
		if links[i].RoutineID == primitive.NilObjectID || links[i].ExerciseID == primitive.NilObjectID {
			return errors.New("routine exercise requires routineId and exerciseId")
		}
		links[i].ID = primitive.NewObjectID()
		docs[i] = links[i]
	}
	_, err := r.links.InsertMany(ctx, docs)
	return err
}

// GetExercises returns the routine's links in prescription order.
func (r *mongoRoutineRepository) GetExercises(ctx context.Context, routineID primitive.ObjectID) ([]domain.RoutineExercise, error) {
	cursor, err := r.links.Find(ctx, bson.M{"routineId": routineID}, options.Find().SetSort(bson.D{{Key: "order", Value: 1}}))
	if err != nil {
		return nil, err
	}
	return decodeAll[domain.RoutineExercise](ctx, cursor)
}

func (r *mongoRoutineRepository) RemoveExercise(ctx context.Context, routineID, linkID primitive.ObjectID) error {
	result, err := r.links.DeleteOne(ctx, bson.M{"_id": linkID, "routineId": routineID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *mongoRoutineRepository) CountExercises(ctx context.Context, routineID primitive.ObjectID) (int64, error) {
	return r.links.CountDocuments(ctx, bson.M{"routineId": routineID})
}

func EnsureRoutineIndexes(ctx context.Context, collection *mongo.Collection) error {
	return createIndexes(ctx, collection, []mongo.IndexModel{
		{Keys: bson.D{{Key: "trainerId", Value: 1}, {Key: "createdAt", Value: -1}}},
	})
}

func EnsureRoutineExerciseIndexes(ctx context.Context, collection *mongo.Collection) error {
	return createIndexes(ctx, collection, []mongo.IndexModel{
		{Keys: bson.D{{Key: "routineId", Value: 1}, {Key: "order", Value: 1}}},
		{Keys: bson.D{{Key: "exerciseId", Value: 1}}},
	})
}

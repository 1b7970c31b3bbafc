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

const generatedRoutineCollectionName = "generated_routines"

type mongoGeneratedRoutineRepository struct {
	collection *mongo.Collection
}

// NewMongoGeneratedRoutineRepository stores one snapshot per generator run.
func NewMongoGeneratedRoutineRepository(db *mongo.Database) repository.GeneratedRoutineRepository {
	return &mongoGeneratedRoutineRepository{
		collection: db.Collection(generatedRoutineCollectionName),
	}
}

func (r *mongoGeneratedRoutineRepository) Create(ctx context.Context, gr *domain.GeneratedRoutine) (primitive.ObjectID, error) {
	if gr.UserID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("generated routine requires userId")
	}
	gr.ID = primitive.NewObjectID()
	gr.CreatedAt = time.Now().UTC()

	result, err := r.collection.InsertOne(ctx, gr)
	if err != nil {
		return primitive.NilObjectID, err
	}
	return insertedID(result)
}

func (r *mongoGeneratedRoutineRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.GeneratedRoutine, error) {
	var gr domain.GeneratedRoutine
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&gr); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &gr, nil
}

func (r *mongoGeneratedRoutineRepository) GetByUserID(ctx context.Context, userID primitive.ObjectID) ([]domain.GeneratedRoutine, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"userId": userID}, options.Find().SetSort(byNewest))
	if err != nil {
		return nil, err
	}
	return decodeAll[domain.GeneratedRoutine](ctx, cursor)
}

func (r *mongoGeneratedRoutineRepository) SetSavedRoutine(ctx context.Context, id, routineID primitive.ObjectID) error {
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"savedRoutineId": routineID}})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func EnsureGeneratedRoutineIndexes(ctx context.Context, collection *mongo.Collection) error {
	return createIndexes(ctx, collection, []mongo.IndexModel{
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}}},
	})
}

package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Default connection timeout
const defaultTimeout = 10 * time.Second

// ConnectDB establishes a connection to MongoDB using the provided URI and
// verifies it with a ping against the primary.
func ConnectDB(uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}

	pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer pingCancel()

	if err = client.Ping(pingCtx, readpref.Primary()); err != nil {
		disconnectCtx, disconnectCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer disconnectCancel()
		_ = client.Disconnect(disconnectCtx)
		return nil, err
	}

	return client, nil
}

// DisconnectDB gracefully disconnects the MongoDB client.
func DisconnectDB(client *mongo.Client) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()
	return client.Disconnect(ctx)
}

// EnsureIndexes creates the indexes of every collection. It keeps going after
// a failure and returns all errors joined.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	ensure := map[string]func(context.Context, *mongo.Collection) error{
		userCollectionName:             EnsureUserIndexes,
		exerciseCollectionName:         EnsureExerciseIndexes,
		routineCollectionName:          EnsureRoutineIndexes,
		routineExerciseCollectionName:  EnsureRoutineExerciseIndexes,
		assignmentCollectionName:       EnsureAssignmentIndexes,
		messageCollectionName:          EnsureMessageIndexes,
		reviewCollectionName:           EnsureReviewIndexes,
		paymentCollectionName:          EnsurePaymentIndexes,
		subscriptionCollectionName:     EnsureSubscriptionIndexes,
		generatedRoutineCollectionName: EnsureGeneratedRoutineIndexes,
	}

	var errs []error
	for name, fn := range ensure {
		if err := fn(ctx, db.Collection(name)); err != nil {
			errs = append(errs, fmt.Errorf("indexes for %s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}

func createIndexes(ctx context.Context, collection *mongo.Collection, indexes []mongo.IndexModel) error {
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}

// decodeAll drains a cursor into a slice, returning an empty (non-nil) slice
// when nothing matched.
func decodeAll[T any](ctx context.Context, cursor *mongo.Cursor) ([]T, error) {
	defer cursor.Close(ctx)

	results := []T{}
	if err := cursor.All(ctx, &results); err != nil {
		return nil, err
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

func insertedID(result *mongo.InsertOneResult) (primitive.ObjectID, error) {
	id, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}
	return id, nil
}

var byNewest = bson.D{{Key: "createdAt", Value: -1}}

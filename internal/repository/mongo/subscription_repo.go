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

const subscriptionCollectionName = "subscriptions"

type mongoSubscriptionRepository struct {
	collection *mongo.Collection
}

func NewMongoSubscriptionRepository(db *mongo.Database) repository.SubscriptionRepository {
	return &mongoSubscriptionRepository{
		collection: db.Collection(subscriptionCollectionName),
	}
}

func (r *mongoSubscriptionRepository) Create(ctx context.Context, sub *domain.Subscription) (primitive.ObjectID, error) {
	if sub.ClientID == primitive.NilObjectID || sub.TrainerID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("subscription requires clientId and trainerId")
	}

	sub.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	sub.StartedAt = now
	sub.UpdatedAt = now
	sub.Active = true

	result, err := r.collection.InsertOne(ctx, sub)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
		return primitive.NilObjectID, err
	}
	return insertedID(result)
}

func (r *mongoSubscriptionRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Subscription, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *mongoSubscriptionRepository) GetActive(ctx context.Context, clientID, trainerID primitive.ObjectID) (*domain.Subscription, error) {
	return r.findOne(ctx, bson.M{"clientId": clientID, "trainerId": trainerID, "active": true})
}

func (r *mongoSubscriptionRepository) findOne(ctx context.Context, filter bson.M) (*domain.Subscription, error) {
	var sub domain.Subscription
	if err := r.collection.FindOne(ctx, filter).Decode(&sub); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &sub, nil
}

func (r *mongoSubscriptionRepository) GetByParticipant(ctx context.Context, userID primitive.ObjectID, activeOnly bool) ([]domain.Subscription, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"clientId": userID},
		bson.M{"trainerId": userID},
	}}
	if activeOnly {
		filter["active"] = true
	}
	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "startedAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	return decodeAll[domain.Subscription](ctx, cursor)
}

func (r *mongoSubscriptionRepository) Deactivate(ctx context.Context, id primitive.ObjectID, at time.Time) error {
	update := bson.M{"$set": bson.M{"active": false, "cancelledAt": at, "updatedAt": at}}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id, "active": true}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureSubscriptionIndexes also enforces at most one active subscription
// per client/trainer pair with a partial unique index.
func EnsureSubscriptionIndexes(ctx context.Context, collection *mongo.Collection) error {
	return createIndexes(ctx, collection, []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "clientId", Value: 1}, {Key: "trainerId", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetName("one_active_subscription").
				SetPartialFilterExpression(bson.M{"active": true}),
		},
		{Keys: bson.D{{Key: "trainerId", Value: 1}, {Key: "startedAt", Value: -1}}},
	})
}

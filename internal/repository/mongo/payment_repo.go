package mongo

import (
	"alcyxob/fitcoach/internal/domain"
	"alcyxob/fitcoach/internal/repository"
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const paymentCollectionName = "payments"

type mongoPaymentRepository struct {
	collection *mongo.Collection
}

// NewMongoPaymentRepository creates a new Payment repository backed by MongoDB.
func NewMongoPaymentRepository(db *mongo.Database) repository.PaymentRepository {
	return &mongoPaymentRepository{
		collection: db.Collection(paymentCollectionName),
	}
}

// Create inserts a payment in the pending state.
func (r *mongoPaymentRepository) Create(ctx context.Context, payment *domain.Payment) (primitive.ObjectID, error) {
	if payment.ClientID == primitive.NilObjectID || payment.TrainerID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("payment requires clientId and trainerId")
	}

	payment.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	payment.CreatedAt = now
	payment.UpdatedAt = now
	payment.Status = domain.PaymentPending
	payment.Currency = strings.ToLower(payment.Currency)

	result, err := r.collection.InsertOne(ctx, payment)
	if err != nil {
		return primitive.NilObjectID, err
	}
	return insertedID(result)
}

func (r *mongoPaymentRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Payment, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *mongoPaymentRepository) GetByIntentID(ctx context.Context, intentID string) (*domain.Payment, error) {
	return r.findOne(ctx, bson.M{"processorIntentId": intentID})
}

func (r *mongoPaymentRepository) findOne(ctx context.Context, filter bson.M) (*domain.Payment, error) {
	var payment domain.Payment
	if err := r.collection.FindOne(ctx, filter).Decode(&payment); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &payment, nil
}

// GetByParticipant lists payments where the user is payer or payee, newest first.
func (r *mongoPaymentRepository) GetByParticipant(ctx context.Context, userID primitive.ObjectID) ([]domain.Payment, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"clientId": userID},
		bson.M{"trainerId": userID},
	}}
	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(byNewest))
	if err != nil {
		return nil, err
	}
	return decodeAll[domain.Payment](ctx, cursor)
}

func (r *mongoPaymentRepository) SetIntent(ctx context.Context, id primitive.ObjectID, intentID string) error {
	update := bson.M{"$set": bson.M{"processorIntentId": intentID, "updatedAt": time.Now().UTC()}}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *mongoPaymentRepository) TransitionStatus(ctx context.Context, id primitive.ObjectID, from, to domain.PaymentStatus, at time.Time) error {
	set := bson.M{"status": to, "updatedAt": at}
	switch to {
	case domain.PaymentConfirmed:
		set["confirmedAt"] = at
	case domain.PaymentCancelled:
		set["cancelledAt"] = at
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id, "status": from}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func EnsurePaymentIndexes(ctx context.Context, collection *mongo.Collection) error {
	return createIndexes(ctx, collection, []mongo.IndexModel{
		{Keys: bson.D{{Key: "clientId", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "trainerId", Value: 1}, {Key: "createdAt", Value: -1}}},
		{
			Keys:    bson.D{{Key: "processorIntentId", Value: 1}},
			Options: options.Index().SetSparse(true),
		},
	})
}

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

const messageCollectionName = "messages"

type mongoMessageRepository struct {
	collection *mongo.Collection
}

func NewMongoMessageRepository(db *mongo.Database) repository.MessageRepository {
	return &mongoMessageRepository{
		collection: db.Collection(messageCollectionName),
	}
}

func (r *mongoMessageRepository) Create(ctx context.Context, message *domain.Message) (primitive.ObjectID, error) {
	if message.SenderID == primitive.NilObjectID || message.ReceiverID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("message requires senderId and receiverId")
	}

	message.ID = primitive.NewObjectID()
	message.SentAt = time.Now().UTC()
	message.Read = false
	message.ReadAt = nil

	result, err := r.collection.InsertOne(ctx, message)
	if err != nil {
		return primitive.NilObjectID, err
	}
	return insertedID(result)
}

func (r *mongoMessageRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Message, error) {
	var message domain.Message
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&message)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &message, nil
}

func (r *mongoMessageRepository) GetByParticipant(ctx context.Context, userID primitive.ObjectID) ([]domain.Message, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"senderId": userID},
		bson.M{"receiverId": userID},
	}}
	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "sentAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	return decodeAll[domain.Message](ctx, cursor)
}

// GetThread returns the latest `limit` messages between two users in
// chronological order. limit <= 0 means no limit.
func (r *mongoMessageRepository) GetThread(ctx context.Context, userID, counterpartID primitive.ObjectID, limit int64) ([]domain.Message, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"senderId": userID, "receiverId": counterpartID},
		bson.M{"senderId": counterpartID, "receiverId": userID},
	}}
	findOptions := options.Find().SetSort(bson.D{{Key: "sentAt", Value: -1}})
	if limit > 0 {
		findOptions.SetLimit(limit)
	}

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	messages, err := decodeAll[domain.Message](ctx, cursor)
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

// MarkRead only touches unread messages, so the first readAt is kept.
func (r *mongoMessageRepository) MarkRead(ctx context.Context, id primitive.ObjectID, at time.Time) (bool, error) {
	update := bson.M{"$set": bson.M{"read": true, "readAt": at}}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id, "read": false}, update)
	if err != nil {
		return false, err
	}
	return result.ModifiedCount > 0, nil
}

func (r *mongoMessageRepository) MarkThreadRead(ctx context.Context, receiverID, senderID primitive.ObjectID, at time.Time) (int64, error) {
	filter := bson.M{"receiverId": receiverID, "senderId": senderID, "read": false}
	result, err := r.collection.UpdateMany(ctx, filter, bson.M{"$set": bson.M{"read": true, "readAt": at}})
	if err != nil {
		return 0, err
	}
	return result.ModifiedCount, nil
}

func (r *mongoMessageRepository) CountUnread(ctx context.Context, receiverID primitive.ObjectID) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"receiverId": receiverID, "read": false})
}

func (r *mongoMessageRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func EnsureMessageIndexes(ctx context.Context, collection *mongo.Collection) error {
	return createIndexes(ctx, collection, []mongo.IndexModel{
		{Keys: bson.D{{Key: "senderId", Value: 1}, {Key: "sentAt", Value: -1}}},
		{Keys: bson.D{{Key: "receiverId", Value: 1}, {Key: "sentAt", Value: -1}}},
		{Keys: bson.D{{Key: "receiverId", Value: 1}, {Key: "read", Value: 1}}},
	})
}

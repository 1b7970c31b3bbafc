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

const userCollectionName = "users"

// mongoUserRepository implements the repository.UserRepository interface using MongoDB.
type mongoUserRepository struct {
	collection *mongo.Collection
}

// NewMongoUserRepository creates a new instance of mongoUserRepository.
func NewMongoUserRepository(db *mongo.Database) repository.UserRepository {
	return &mongoUserRepository{
		collection: db.Collection(userCollectionName),
	}
}

// Create inserts a new user into the database.
func (r *mongoUserRepository) Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error) {
	if user.Email == "" || user.PasswordHash == "" || user.Role == "" {
		return primitive.NilObjectID, errors.New("user email, password hash, and role are required")
	}

	user.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
		return primitive.NilObjectID, err
	}
	return insertedID(result)
}

// GetByEmail retrieves a user by their email address.
func (r *mongoUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

// GetByID retrieves a user by their MongoDB ObjectID.
func (r *mongoUserRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *mongoUserRepository) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	var user domain.User
	err := r.collection.FindOne(ctx, filter).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// GetByIDs retrieves every user whose id is in ids. Missing ids are skipped.
func (r *mongoUserRepository) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.User, error) {
	if len(ids) == 0 {
		return []domain.User{}, nil
	}
	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	return decodeAll[domain.User](ctx, cursor)
}

// ListByRole lists users of a role, optionally narrowed by a specialty substring.
func (r *mongoUserRepository) ListByRole(ctx context.Context, role domain.Role, specialty string) ([]domain.User, error) {
	filter := bson.M{"role": role}
	if specialty != "" {
		filter["profile.specialty"] = bson.M{"$regex": regexp.QuoteMeta(specialty), "$options": "i"}
	}
	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, err
	}
	return decodeAll[domain.User](ctx, cursor)
}

// UpdateProfile replaces the editable profile fields and the display name.
func (r *mongoUserRepository) UpdateProfile(ctx context.Context, id primitive.ObjectID, name string, profile domain.Profile) error {
	update := bson.M{
		"$set": bson.M{
			"name":      name,
			"profile":   profile,
			"updatedAt": time.Now().UTC(),
		},
	}
	return r.updateOne(ctx, bson.M{"_id": id}, update)
}

func (r *mongoUserRepository) SetProfileImage(ctx context.Context, id primitive.ObjectID, objectKey string) error {
	update := bson.M{
		"$set": bson.M{
			"profileImageKey": objectKey,
			"updatedAt":       time.Now().UTC(),
		},
	}
	return r.updateOne(ctx, bson.M{"_id": id}, update)
}

// AddClientIDToTrainer adds a client's ID to a trainer's ClientIDs array.
func (r *mongoUserRepository) AddClientIDToTrainer(ctx context.Context, trainerID, clientID primitive.ObjectID) error {
	filter := bson.M{"_id": trainerID, "role": domain.RoleTrainer}
	update := bson.M{
		"$addToSet": bson.M{"clientIds": clientID}, // $addToSet prevents duplicates
		"$set":      bson.M{"updatedAt": time.Now().UTC()},
	}
	return r.updateOne(ctx, filter, update)
}

// GetClientsByTrainerID retrieves all client users associated with a specific trainer.
func (r *mongoUserRepository) GetClientsByTrainerID(ctx context.Context, trainerID primitive.ObjectID) ([]domain.User, error) {
	trainer, err := r.GetByID(ctx, trainerID)
	if err != nil {
		return nil, err
	}
	if !trainer.IsTrainer() {
		return nil, errors.New("user is not a trainer")
	}
	return r.GetByIDs(ctx, trainer.ClientIDs)
}

// SetTrainerForClient sets the TrainerID field for a specific client user.
func (r *mongoUserRepository) SetTrainerForClient(ctx context.Context, clientID, trainerID primitive.ObjectID) error {
	filter := bson.M{"_id": clientID, "role": domain.RoleClient}
	update := bson.M{
		"$set": bson.M{
			"trainerId": trainerID,
			"updatedAt": time.Now().UTC(),
		},
	}
	return r.updateOne(ctx, filter, update)
}

func (r *mongoUserRepository) updateOne(ctx context.Context, filter, update bson.M) error {
	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	// ModifiedCount may be 0 when the values were already set; that is fine.
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureUserIndexes creates necessary indexes for the users collection.
func EnsureUserIndexes(ctx context.Context, collection *mongo.Collection) error {
	return createIndexes(ctx, collection, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "role", Value: 1}},
		},
		{
			Keys:    bson.D{{Key: "trainerId", Value: 1}},
			Options: options.Index().SetSparse(true), // not all users have trainerId
		},
	})
}

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

const assignmentCollectionName = "assignments"

// mongoAssignmentRepository implements repository.AssignmentRepository
type mongoAssignmentRepository struct {
	collection *mongo.Collection
}

// NewMongoAssignmentRepository creates a new Assignment repository backed by MongoDB.
func NewMongoAssignmentRepository(db *mongo.Database) repository.AssignmentRepository {
	return &mongoAssignmentRepository{
		collection: db.Collection(assignmentCollectionName),
	}
}

// Create inserts a new assignment into the database.
func (r *mongoAssignmentRepository) Create(ctx context.Context, assignment *domain.Assignment) (primitive.ObjectID, error) {
	if assignment.RoutineID == primitive.NilObjectID ||
		assignment.ClientID == primitive.NilObjectID ||
		assignment.TrainerID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("assignment requires routineId, clientId and trainerId")
	}

	assignment.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	assignment.AssignedAt = now
	assignment.UpdatedAt = now
	if assignment.Status == "" {
		assignment.Status = domain.StatusActive
	}

	result, err := r.collection.InsertOne(ctx, assignment)
	if err != nil {
		return primitive.NilObjectID, err
	}
	return insertedID(result)
}

// GetByID retrieves an assignment by its ID.
func (r *mongoAssignmentRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Assignment, error) {
	var assignment domain.Assignment
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&assignment)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &assignment, nil
}

// GetByClientID retrieves a client's assignments, newest first. An empty
// status matches every state.
func (r *mongoAssignmentRepository) GetByClientID(ctx context.Context, clientID primitive.ObjectID, status domain.AssignmentStatus) ([]domain.Assignment, error) {
	return r.find(ctx, bson.M{"clientId": clientID}, status)
}

// GetByTrainerID retrieves all assignments managed by a specific trainer.
func (r *mongoAssignmentRepository) GetByTrainerID(ctx context.Context, trainerID primitive.ObjectID, status domain.AssignmentStatus) ([]domain.Assignment, error) {
	return r.find(ctx, bson.M{"trainerId": trainerID}, status)
}

func (r *mongoAssignmentRepository) find(ctx context.Context, filter bson.M, status domain.AssignmentStatus) ([]domain.Assignment, error) {
	if status != "" {
		filter["status"] = status
	}
	findOptions := options.Find().SetSort(bson.D{{Key: "assignedAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	return decodeAll[domain.Assignment](ctx, cursor)
}

// TransitionStatus is a conditional update on the current status, so two
// concurrent transitions cannot both succeed.
func (r *mongoAssignmentRepository) TransitionStatus(ctx context.Context, id primitive.ObjectID, from, to domain.AssignmentStatus, at time.Time) error {
	set := bson.M{"status": to, "updatedAt": at}
	switch to {
	case domain.StatusCompleted:
		set["completedAt"] = at
	case domain.StatusCancelled:
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

// EnsureAssignmentIndexes creates necessary indexes for the assignments collection.
func EnsureAssignmentIndexes(ctx context.Context, collection *mongo.Collection) error {
	return createIndexes(ctx, collection, []mongo.IndexModel{
		{Keys: bson.D{{Key: "clientId", Value: 1}, {Key: "assignedAt", Value: -1}}},
		{Keys: bson.D{{Key: "trainerId", Value: 1}, {Key: "assignedAt", Value: -1}}},
		{Keys: bson.D{{Key: "routineId", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
	})
}

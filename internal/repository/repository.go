package repository

import (
	"alcyxob/fitcoach/internal/domain"
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrNotFound     = RepositoryError("not found")
	ErrDuplicate    = RepositoryError("duplicate key")
	ErrUpdateFailed = RepositoryError("update failed")
	ErrDeleteFailed = RepositoryError("delete failed")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// UserRepository defines the interface for interacting with user data.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.User, error)
	ListByRole(ctx context.Context, role domain.Role, specialty string) ([]domain.User, error)
	UpdateProfile(ctx context.Context, id primitive.ObjectID, name string, profile domain.Profile) error
	SetProfileImage(ctx context.Context, id primitive.ObjectID, objectKey string) error
	AddClientIDToTrainer(ctx context.Context, trainerID, clientID primitive.ObjectID) error
	GetClientsByTrainerID(ctx context.Context, trainerID primitive.ObjectID) ([]domain.User, error)
	SetTrainerForClient(ctx context.Context, clientID, trainerID primitive.ObjectID) error
}

// ExerciseRepository defines the interface for interacting with the exercise catalog.
type ExerciseRepository interface {
	Create(ctx context.Context, exercise *domain.Exercise) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Exercise, error)
	GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.Exercise, error)
	List(ctx context.Context, filter domain.ExerciseFilter) ([]domain.Exercise, error)
	Update(ctx context.Context, exercise *domain.Exercise) error
	Delete(ctx context.Context, id primitive.ObjectID, trainerID primitive.ObjectID) error // trainer must own the exercise
}

// RoutineRepository stores routines and their exercise links.
type RoutineRepository interface {
	Create(ctx context.Context, routine *domain.Routine) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Routine, error)
	GetByTrainerID(ctx context.Context, trainerID primitive.ObjectID) ([]domain.Routine, error)
	Update(ctx context.Context, routine *domain.Routine) error
	// Delete removes the routine and all of its exercise links.
	Delete(ctx context.Context, id primitive.ObjectID) error

	AddExercises(ctx context.Context, links []domain.RoutineExercise) error
	GetExercises(ctx context.Context, routineID primitive.ObjectID) ([]domain.RoutineExercise, error)
	RemoveExercise(ctx context.Context, routineID, linkID primitive.ObjectID) error
	CountExercises(ctx context.Context, routineID primitive.ObjectID) (int64, error)
}

// AssignmentRepository defines the interface for interacting with assignment data.
type AssignmentRepository interface {
	Create(ctx context.Context, assignment *domain.Assignment) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Assignment, error)
	GetByClientID(ctx context.Context, clientID primitive.ObjectID, status domain.AssignmentStatus) ([]domain.Assignment, error)
	GetByTrainerID(ctx context.Context, trainerID primitive.ObjectID, status domain.AssignmentStatus) ([]domain.Assignment, error)
	// TransitionStatus moves an assignment out of `from`. It returns ErrNotFound
	// if no assignment with that id is currently in `from`.
	TransitionStatus(ctx context.Context, id primitive.ObjectID, from, to domain.AssignmentStatus, at time.Time) error
}

// MessageRepository defines the interface for interacting with messages.
type MessageRepository interface {
	Create(ctx context.Context, message *domain.Message) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Message, error)
	// GetByParticipant returns every message sent or received by the user, newest first.
	GetByParticipant(ctx context.Context, userID primitive.ObjectID) ([]domain.Message, error)
	GetThread(ctx context.Context, userID, counterpartID primitive.ObjectID, limit int64) ([]domain.Message, error)
	// MarkRead sets read/readAt only on unread messages. It reports whether a
	// document was modified.
	MarkRead(ctx context.Context, id primitive.ObjectID, at time.Time) (bool, error)
	MarkThreadRead(ctx context.Context, receiverID, senderID primitive.ObjectID, at time.Time) (int64, error)
	CountUnread(ctx context.Context, receiverID primitive.ObjectID) (int64, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// ReviewRepository defines the interface for interacting with reviews.
type ReviewRepository interface {
	// Create returns ErrDuplicate if the author already reviewed the trainer.
	Create(ctx context.Context, review *domain.Review) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Review, error)
	GetByAuthorAndTrainer(ctx context.Context, authorID, trainerID primitive.ObjectID) (*domain.Review, error)
	GetByTrainerID(ctx context.Context, trainerID primitive.ObjectID) ([]domain.Review, error)
	Update(ctx context.Context, review *domain.Review) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// PaymentRepository defines the interface for interacting with payments.
type PaymentRepository interface {
	Create(ctx context.Context, payment *domain.Payment) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Payment, error)
	GetByIntentID(ctx context.Context, intentID string) (*domain.Payment, error)
	GetByParticipant(ctx context.Context, userID primitive.ObjectID) ([]domain.Payment, error)
	SetIntent(ctx context.Context, id primitive.ObjectID, intentID string) error
	// TransitionStatus updates the status only if the payment is currently in
	// `from`, stamping the matching timestamp field. Returns ErrNotFound otherwise.
	TransitionStatus(ctx context.Context, id primitive.ObjectID, from, to domain.PaymentStatus, at time.Time) error
}

// SubscriptionRepository defines the interface for interacting with subscriptions.
type SubscriptionRepository interface {
	Create(ctx context.Context, sub *domain.Subscription) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Subscription, error)
	GetActive(ctx context.Context, clientID, trainerID primitive.ObjectID) (*domain.Subscription, error)
	GetByParticipant(ctx context.Context, userID primitive.ObjectID, activeOnly bool) ([]domain.Subscription, error)
	// Deactivate flips active to false if it is still true. Returns ErrNotFound otherwise.
	Deactivate(ctx context.Context, id primitive.ObjectID, at time.Time) error
}

// GeneratedRoutineRepository stores generator snapshots.
type GeneratedRoutineRepository interface {
	Create(ctx context.Context, gr *domain.GeneratedRoutine) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.GeneratedRoutine, error)
	GetByUserID(ctx context.Context, userID primitive.ObjectID) ([]domain.GeneratedRoutine, error)
	SetSavedRoutine(ctx context.Context, id, routineID primitive.ObjectID) error
}

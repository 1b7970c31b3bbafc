package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AssignmentStatus type for assignment lifecycle
type AssignmentStatus string

const (
	StatusActive    AssignmentStatus = "active"
	StatusCompleted AssignmentStatus = "completed"
	StatusCancelled AssignmentStatus = "cancelled"
)

func (s AssignmentStatus) Valid() bool {
	switch s {
	case StatusActive, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Assignment binds a Routine to a Client, as assigned by a Trainer.
type Assignment struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	RoutineID   primitive.ObjectID `bson:"routineId" json:"routineId"`
	ClientID    primitive.ObjectID `bson:"clientId" json:"clientId"`
	TrainerID   primitive.ObjectID `bson:"trainerId" json:"trainerId"` // denormalized for queries/auth
	Status      AssignmentStatus   `bson:"status" json:"status"`
	StartDate   time.Time          `bson:"startDate" json:"startDate"`
	EndDate     *time.Time         `bson:"endDate,omitempty" json:"endDate,omitempty"`
	Notes       string             `bson:"notes,omitempty" json:"notes,omitempty"`
	AssignedAt  time.Time          `bson:"assignedAt" json:"assignedAt"`
	CompletedAt *time.Time         `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
	CancelledAt *time.Time         `bson:"cancelledAt,omitempty" json:"cancelledAt,omitempty"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// IsParticipant reports whether the user is the client or the trainer.
func (a *Assignment) IsParticipant(userID primitive.ObjectID) bool {
	return a.ClientID == userID || a.TrainerID == userID
}

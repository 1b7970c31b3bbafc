// internal/domain/exercise.go
package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Exercise represents a single exercise definition in the catalog.
type Exercise struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TrainerID   primitive.ObjectID `bson:"trainerId" json:"trainerId"` // author of the catalog entry
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`

	MuscleGroup      string `bson:"muscleGroup,omitempty" json:"muscleGroup,omitempty"`           // e.g., "Chest", "Legs", "Back"
	ExecutionTechnic string `bson:"executionTechnic,omitempty" json:"executionTechnic,omitempty"` // Detailed instructions
	Applicability    string `bson:"applicability,omitempty" json:"applicability,omitempty"`       // e.g., "Home", "Gym"
	Difficulty       string `bson:"difficulty,omitempty" json:"difficulty,omitempty"`             // beginner, intermediate, advanced
	Equipment        string `bson:"equipment,omitempty" json:"equipment,omitempty"`
	VideoURL         string `bson:"videoUrl,omitempty" json:"videoUrl,omitempty"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// ExerciseFilter narrows catalog listings. Empty fields are ignored.
type ExerciseFilter struct {
	TrainerID   *primitive.ObjectID
	MuscleGroup string
	Difficulty  string
	Search      string // case-insensitive substring of the name
	Limit       int64
}

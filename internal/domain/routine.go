// internal/domain/routine.go
package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Difficulty levels shared by routines, catalog entries and the generator.
const (
	LevelBeginner     = "beginner"
	LevelIntermediate = "intermediate"
	LevelAdvanced     = "advanced"
)

// Routine is a named, ordered set of exercises authored by a trainer.
type Routine struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TrainerID     primitive.ObjectID `bson:"trainerId" json:"trainerId"`
	Name          string             `bson:"name" json:"name"`
	Description   string             `bson:"description,omitempty" json:"description,omitempty"`
	Goal          string             `bson:"goal,omitempty" json:"goal,omitempty"`
	Difficulty    string             `bson:"difficulty,omitempty" json:"difficulty,omitempty"`
	DurationWeeks int                `bson:"durationWeeks,omitempty" json:"durationWeeks,omitempty"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// RoutineExercise is the link row carrying the per-exercise prescription.
type RoutineExercise struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	RoutineID   primitive.ObjectID `bson:"routineId" json:"routineId"`
	ExerciseID  primitive.ObjectID `bson:"exerciseId" json:"exerciseId"`
	Order       int                `bson:"order" json:"order"`
	Sets        int                `bson:"sets" json:"sets"`
	Reps        string             `bson:"reps" json:"reps"` // "10" or a range like "8-12"
	RestSeconds int                `bson:"restSeconds" json:"restSeconds"`
	Notes       string             `bson:"notes,omitempty" json:"notes,omitempty"`
}

// RoutineDetail is a routine with its links, each enriched with the exercise.
type RoutineDetail struct {
	Routine
	Exercises []RoutineExerciseDetail `json:"exercises"`
}

type RoutineExerciseDetail struct {
	RoutineExercise
	Exercise *Exercise `json:"exercise,omitempty"` // nil if the catalog entry was deleted
}

package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type GenerationSource string

const (
	SourceAI    GenerationSource = "ai"
	SourceLocal GenerationSource = "local"
)

// GenerationRequest is the input the generator was given.
type GenerationRequest struct {
	Goal            string   `bson:"goal" json:"goal"`
	Level           string   `bson:"level" json:"level"`
	DaysPerWeek     int      `bson:"daysPerWeek" json:"daysPerWeek"`
	DurationMinutes int      `bson:"durationMinutes" json:"durationMinutes"`
	MuscleGroups    []string `bson:"muscleGroups,omitempty" json:"muscleGroups,omitempty"`
	Equipment       []string `bson:"equipment,omitempty" json:"equipment,omitempty"`
}

// GeneratedPlan is the denormalized routine content produced by the generator.
type GeneratedPlan struct {
	Name        string         `bson:"name" json:"name"`
	Description string         `bson:"description,omitempty" json:"description,omitempty"`
	Days        []GeneratedDay `bson:"days" json:"days"`
}

type GeneratedDay struct {
	Day       int                 `bson:"day" json:"day"`
	Focus     string              `bson:"focus,omitempty" json:"focus,omitempty"`
	Exercises []GeneratedExercise `bson:"exercises" json:"exercises"`
}

type GeneratedExercise struct {
	ExerciseID  *primitive.ObjectID `bson:"exerciseId,omitempty" json:"exerciseId,omitempty"` // set when it matches the catalog
	Name        string              `bson:"name" json:"name"`
	MuscleGroup string              `bson:"muscleGroup,omitempty" json:"muscleGroup,omitempty"`
	Sets        int                 `bson:"sets" json:"sets"`
	Reps        string              `bson:"reps" json:"reps"`
	RestSeconds int                 `bson:"restSeconds" json:"restSeconds"`
	Notes       string              `bson:"notes,omitempty" json:"notes,omitempty"`
}

// GeneratedRoutine is an audit snapshot of one generator run.
type GeneratedRoutine struct {
	ID             primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	UserID         primitive.ObjectID  `bson:"userId" json:"userId"`
	Source         GenerationSource    `bson:"source" json:"source"`
	Request        GenerationRequest   `bson:"request" json:"request"`
	Content        GeneratedPlan       `bson:"content" json:"content"`
	SavedRoutineID *primitive.ObjectID `bson:"savedRoutineId,omitempty" json:"savedRoutineId,omitempty"`
	CreatedAt      time.Time           `bson:"createdAt" json:"createdAt"`
}

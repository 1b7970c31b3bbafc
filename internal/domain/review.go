package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	MinRating = 1
	MaxRating = 5
)

// Review is a rating from one user about a trainer.
// At most one review exists per (AuthorID, TrainerID).
type Review struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	AuthorID  primitive.ObjectID `bson:"authorId" json:"authorId"`
	TrainerID primitive.ObjectID `bson:"trainerId" json:"trainerId"`
	Rating    int                `bson:"rating" json:"rating"`
	SubScores SubScores          `bson:"subScores" json:"subScores"`
	Comment   string             `bson:"comment,omitempty" json:"comment,omitempty"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// SubScores are optional 1..5 ratings; nil means not rated.
type SubScores struct {
	Professionalism *int `bson:"professionalism,omitempty" json:"professionalism,omitempty"`
	Knowledge       *int `bson:"knowledge,omitempty" json:"knowledge,omitempty"`
	Communication   *int `bson:"communication,omitempty" json:"communication,omitempty"`
	Results         *int `bson:"results,omitempty" json:"results,omitempty"`
}

// TrainerStats is the rollup shown on a trainer's profile.
type TrainerStats struct {
	TrainerID     primitive.ObjectID `json:"trainerId"`
	TotalReviews  int                `json:"totalReviews"`
	AverageRating float64            `json:"averageRating"`
	SubScores     SubScoreAverages   `json:"subScores"`
	Distribution  map[int]int        `json:"distribution"` // stars -> count
	Recent        []Review           `json:"recent"`
}

// SubScoreAverages holds the mean of each sub-score over the reviews that set it.
type SubScoreAverages struct {
	Professionalism *float64 `json:"professionalism,omitempty"`
	Knowledge       *float64 `json:"knowledge,omitempty"`
	Communication   *float64 `json:"communication,omitempty"`
	Results         *float64 `json:"results,omitempty"`
}

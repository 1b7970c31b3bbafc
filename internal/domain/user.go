package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role type to distinguish between user roles
type Role string

const (
	RoleTrainer Role = "trainer"
	RoleClient  Role = "client"
)

// User represents a user in the system (either a Trainer or a Client).
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	Email        string             `bson:"email" json:"email"`    // unique
	PasswordHash string             `bson:"passwordHash" json:"-"` // never exposed
	Role         Role               `bson:"role" json:"role"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`

	Profile         Profile `bson:"profile" json:"profile"`
	ProfileImageKey string  `bson:"profileImageKey,omitempty" json:"-"` // object key in the bucket

	// --- Trainer-specific ---
	ClientIDs []primitive.ObjectID `bson:"clientIds,omitempty" json:"clientIds,omitempty"`

	// --- Client-specific ---
	TrainerID *primitive.ObjectID `bson:"trainerId,omitempty" json:"trainerId,omitempty"`
}

// Profile holds the optional, user-editable attributes.
// Trainer and client fields share one document; unused ones stay empty.
type Profile struct {
	Bio             string  `bson:"bio,omitempty" json:"bio,omitempty"`
	Phone           string  `bson:"phone,omitempty" json:"phone,omitempty"`
	Specialty       string  `bson:"specialty,omitempty" json:"specialty,omitempty"`
	ExperienceYears int     `bson:"experienceYears,omitempty" json:"experienceYears,omitempty"`
	HourlyRateCents int64   `bson:"hourlyRateCents,omitempty" json:"hourlyRateCents,omitempty"`
	Age             int     `bson:"age,omitempty" json:"age,omitempty"`
	HeightCm        float64 `bson:"heightCm,omitempty" json:"heightCm,omitempty"`
	WeightKg        float64 `bson:"weightKg,omitempty" json:"weightKg,omitempty"`
	Goals           string  `bson:"goals,omitempty" json:"goals,omitempty"`
}

func (u *User) IsTrainer() bool {
	return u.Role == RoleTrainer
}

func (u *User) IsClient() bool {
	return u.Role == RoleClient
}

package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentConfirmed PaymentStatus = "confirmed"
	PaymentCancelled PaymentStatus = "cancelled"
)

// Payment is a single monetary transaction from a client to a trainer.
// Status only moves pending -> confirmed or pending -> cancelled.
type Payment struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ClientID          primitive.ObjectID `bson:"clientId" json:"clientId"`
	TrainerID         primitive.ObjectID `bson:"trainerId" json:"trainerId"`
	AmountCents       int64              `bson:"amountCents" json:"amountCents"`
	Currency          string             `bson:"currency" json:"currency"`
	Description       string             `bson:"description,omitempty" json:"description,omitempty"`
	Status            PaymentStatus      `bson:"status" json:"status"`
	ProcessorIntentID string             `bson:"processorIntentId,omitempty" json:"processorIntentId,omitempty"`
	CreatedAt         time.Time          `bson:"createdAt" json:"createdAt"`
	ConfirmedAt       *time.Time         `bson:"confirmedAt,omitempty" json:"confirmedAt,omitempty"`
	CancelledAt       *time.Time         `bson:"cancelledAt,omitempty" json:"cancelledAt,omitempty"`
	UpdatedAt         time.Time          `bson:"updatedAt" json:"updatedAt"`
}

func (p *Payment) IsParticipant(userID primitive.ObjectID) bool {
	return p.ClientID == userID || p.TrainerID == userID
}

type BillingInterval string

const (
	IntervalWeekly  BillingInterval = "weekly"
	IntervalMonthly BillingInterval = "monthly"
	IntervalYearly  BillingInterval = "yearly"
)

func (i BillingInterval) Valid() bool {
	switch i {
	case IntervalWeekly, IntervalMonthly, IntervalYearly:
		return true
	}
	return false
}

// Subscription is a recurring agreement between a client and a trainer.
// Once Active is false the record is final; re-subscribing creates a new one.
type Subscription struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ClientID        primitive.ObjectID `bson:"clientId" json:"clientId"`
	TrainerID       primitive.ObjectID `bson:"trainerId" json:"trainerId"`
	Plan            string             `bson:"plan" json:"plan"`
	PriceCents      int64              `bson:"priceCents" json:"priceCents"`
	Currency        string             `bson:"currency" json:"currency"`
	BillingInterval BillingInterval    `bson:"billingInterval" json:"billingInterval"`
	Active          bool               `bson:"active" json:"active"`
	StartedAt       time.Time          `bson:"startedAt" json:"startedAt"`
	CancelledAt     *time.Time         `bson:"cancelledAt,omitempty" json:"cancelledAt,omitempty"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updatedAt"`
}

func (s *Subscription) IsParticipant(userID primitive.ObjectID) bool {
	return s.ClientID == userID || s.TrainerID == userID
}

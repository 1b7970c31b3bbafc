package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MaxMessageLength bounds message content, in runes.
const MaxMessageLength = 2000

// Message is a directed text note between two users.
type Message struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SenderID   primitive.ObjectID `bson:"senderId" json:"senderId"`
	ReceiverID primitive.ObjectID `bson:"receiverId" json:"receiverId"`
	Content    string             `bson:"content" json:"content"`
	Read       bool               `bson:"read" json:"read"`
	ReadAt     *time.Time         `bson:"readAt,omitempty" json:"readAt,omitempty"`
	SentAt     time.Time          `bson:"sentAt" json:"sentAt"`
}

// Counterpart returns the other participant from the user's point of view.
func (m *Message) Counterpart(userID primitive.ObjectID) primitive.ObjectID {
	if m.SenderID == userID {
		return m.ReceiverID
	}
	return m.SenderID
}

// Conversation summarizes the messages a user exchanged with one counterpart.
type Conversation struct {
	CounterpartID primitive.ObjectID `json:"counterpartId"`
	Counterpart   *User              `json:"counterpart,omitempty"`
	LastMessage   Message            `json:"lastMessage"`
	UnreadCount   int                `json:"unreadCount"`
}

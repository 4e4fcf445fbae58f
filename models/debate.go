package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Message roles
const (
	RoleUser = "user"
	RoleBot  = "bot"
)

// Debate sides
const (
	SidePro = "PRO"
	SideCon = "CON"
)

// Message represents a single entry in a debate history
type Message struct {
	Role string `json:"role" bson:"role"` // "user" or "bot"
	Text string `json:"text" bson:"text"`
}

// DebateTranscript is the archived snapshot of a debate session
type DebateTranscript struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	SessionID string             `json:"sessionId" bson:"sessionId"`
	Topic     string             `json:"topic" bson:"topic"`
	BotSide   string             `json:"botSide" bson:"botSide"`
	History   []Message          `json:"history" bson:"history"`
	UpdatedAt int64              `json:"updatedAt" bson:"updatedAt"`
}

// OppositeSide returns the stance the bot argues after a switch
func OppositeSide(side string) string {
	if side == SidePro {
		return SideCon
	}
	return SidePro
}

// ValidSide reports whether side is one of the two recognized stances
func ValidSide(side string) bool {
	return side == SidePro || side == SideCon
}

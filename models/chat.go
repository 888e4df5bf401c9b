package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ChatMessage holds the structure for the chatMessages collection in mongo
type ChatMessage struct {
	ID        primitive.ObjectID `json:"-" bson:"_id,omitempty"`
	TeamName  string             `json:"teamName" bson:"teamName"`
	Sender    string             `json:"sender" bson:"sender"`
	Text      string             `json:"text" bson:"text"`
	Timestamp time.Time          `json:"timestamp" bson:"timestamp"`
}

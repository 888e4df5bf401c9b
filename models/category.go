package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Category holds the structure for the categories collection in mongo
type Category struct {
	ID        primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Name      string             `json:"name" bson:"name"`
	Icon      string             `json:"icon" bson:"icon"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt,omitempty" bson:"updatedAt,omitempty"`
}

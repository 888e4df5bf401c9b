package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Event holds the structure for the events collection in mongo. EventID is
// the sequential public id (max existing + 1), distinct from the mongo _id.
type Event struct {
	ID          primitive.ObjectID `json:"-" bson:"_id,omitempty"`
	EventID     int                `json:"id" bson:"id"`
	Name        string             `json:"name" bson:"name"`
	Date        string             `json:"date" bson:"date"`
	Time        string             `json:"time" bson:"time"`
	Location    string             `json:"location" bson:"location"`
	Category    string             `json:"category" bson:"category"`
	Emoji       string             `json:"emoji" bson:"emoji"`
	Difficulty  string             `json:"difficulty" bson:"difficulty"`
	Description string             `json:"description" bson:"description"`
	Team        *Team              `json:"team" bson:"team"`
	CreatedAt   time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt,omitempty" bson:"updatedAt,omitempty"`
}

// Team is the roster embedded in an event document. Members holds full
// names; uniqueness and capacity are enforced at admission time.
type Team struct {
	Name         string           `json:"name" bson:"name"`
	MaxSlots     int              `json:"maxSlots" bson:"maxSlots"`
	Members      []string         `json:"members" bson:"members"`
	Requirements TeamRequirements `json:"requirements" bson:"requirements"`
}

// TeamRequirements are the admission thresholds for a team. MinRegNumber is
// a 4-digit year string; applicants must have enrolled in that year or
// earlier. MinExperience is in years.
type TeamRequirements struct {
	MinRegNumber  string `json:"minRegNumber" bson:"minRegNumber"`
	MinExperience int    `json:"minExperience" bson:"minExperience"`
}

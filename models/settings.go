package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SystemSettings is the single upserted document of app tunables
type SystemSettings struct {
	ID                       primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	AppName                  string             `json:"appName" bson:"appName"`
	MaxTeamSize              int                `json:"maxTeamSize" bson:"maxTeamSize"`
	EmailDomain              string             `json:"emailDomain" bson:"emailDomain"`
	EventDuration            int                `json:"eventDuration" bson:"eventDuration"`
	MinPasswordLength        int                `json:"minPasswordLength" bson:"minPasswordLength"`
	SessionTimeout           int                `json:"sessionTimeout" bson:"sessionTimeout"`
	RequireEmailVerification bool               `json:"requireEmailVerification" bson:"requireEmailVerification"`
	CreatedAt                time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt                time.Time          `json:"updatedAt" bson:"updatedAt"`
}

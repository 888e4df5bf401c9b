package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User holds the structure for the user collection in mongo
type User struct {
	ID            primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	FullName      string             `json:"fullName" bson:"fullName"`
	StudentID     string             `json:"studentID" bson:"studentID"`
	Email         string             `json:"email" bson:"email"`
	Password      string             `json:"password,omitempty" bson:"password"`
	MobileNumber  string             `json:"mobileNumber" bson:"mobileNumber"`
	AvatarURL     string             `json:"avatarUrl" bson:"avatarUrl"`
	JoinedTeams   []JoinedTeam       `json:"joinedTeams" bson:"joinedTeams"`
	TokenVersion  int                `json:"tokenVersion" bson:"tokenVersion"`
	Status        string             `json:"status" bson:"status"`
	Notifications []Notification     `json:"notifications" bson:"notifications"`
	LastLogin     time.Time          `json:"lastLogin,omitempty" bson:"lastLogin,omitempty"`
	CreatedAt     time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt     time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// JoinedTeam is one team membership entry on a user document. The roster on
// the event document is authoritative; this is the mirrored read-side.
type JoinedTeam struct {
	EventID   int       `json:"eventId" bson:"eventId"`
	EventName string    `json:"eventName" bson:"eventName"`
	TeamName  string    `json:"teamName" bson:"teamName"`
	Emoji     string    `json:"emoji" bson:"emoji"`
	JoinedAt  time.Time `json:"joinedAt" bson:"joinedAt"`
}

// Notification is one entry in a user's bounded notification log. Only the
// ten most recent entries are retained per user.
type Notification struct {
	Icon      string    `json:"icon" bson:"icon"`
	Title     string    `json:"title" bson:"title"`
	Body      string    `json:"body" bson:"body"`
	Priority  string    `json:"priority,omitempty" bson:"priority,omitempty"`
	Timestamp time.Time `json:"timestamp" bson:"timestamp"`
	Read      bool      `json:"read" bson:"read"`
}

// UserResponse is the sanitized user shape returned to clients after login
// and profile updates, password excluded
type UserResponse struct {
	ID            primitive.ObjectID `json:"id"`
	FullName      string             `json:"fullName"`
	Email         string             `json:"email"`
	StudentID     string             `json:"studentID"`
	MobileNumber  string             `json:"mobileNumber"`
	AvatarURL     string             `json:"avatarUrl"`
	JoinedTeams   []JoinedTeam       `json:"joinedTeams"`
	Notifications []Notification     `json:"notifications"`
}

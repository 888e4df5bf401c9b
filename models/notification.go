package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notification target selectors
const (
	TargetAll            = "all"
	TargetTeamMembers    = "team-members"
	TargetNonTeamMembers = "non-team-members"
	TargetSpecific       = "specific"
	TargetBulk           = "bulk"
)

// NotificationHistory is the append-only audit record for one fan-out,
// written regardless of delivery success
type NotificationHistory struct {
	ID          primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Title       string             `json:"title" bson:"title"`
	Message     string             `json:"message" bson:"message"`
	Icon        string             `json:"icon" bson:"icon"`
	Target      string             `json:"target" bson:"target"`
	Priority    string             `json:"priority" bson:"priority"`
	SentCount   int64              `json:"sentCount" bson:"sentCount"`
	TargetUsers []string           `json:"targetUsers" bson:"targetUsers"`
	SentAt      time.Time          `json:"sentAt" bson:"sentAt"`
	SentBy      string             `json:"sentBy" bson:"sentBy"`
}

// ScheduledNotification is a pending future-dated send, dispatched by the
// scheduler once SendAt has passed
type ScheduledNotification struct {
	ID            primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Title         string             `json:"title" bson:"title"`
	Message       string             `json:"message" bson:"message"`
	Icon          string             `json:"icon" bson:"icon"`
	Target        string             `json:"target" bson:"target"`
	Priority      string             `json:"priority" bson:"priority"`
	SpecificEmail string             `json:"specificEmail,omitempty" bson:"specificEmail,omitempty"`
	BulkEmails    string             `json:"bulkEmails,omitempty" bson:"bulkEmails,omitempty"`
	SendAt        time.Time          `json:"sendAt" bson:"sendAt"`
	SentBy        string             `json:"sentBy" bson:"sentBy"`
	CreatedAt     time.Time          `json:"createdAt" bson:"createdAt"`
}

package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Admin roles carried in access-token claims
const (
	RoleUser       = "user"
	RoleAdmin      = "admin"
	RoleSuperAdmin = "super_admin"
)

// Admin holds the structure for the admins collection in mongo
type Admin struct {
	ID        primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Email     string             `json:"email" bson:"email"`
	Password  string             `json:"-" bson:"password"`
	FullName  string             `json:"fullName" bson:"fullName"`
	Role      string             `json:"role" bson:"role"`
	LastLogin time.Time          `json:"lastLogin,omitempty" bson:"lastLogin,omitempty"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
}

// internal/domain/models/notification.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notification kinds.
const (
	NotifyCommented = "commented"
	NotifyAssigned  = "assigned"
)

// Notification is an in-app notification delivered to a single user.
type Notification struct {
	ID      primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	UserID  primitive.ObjectID  `bson:"user_id" json:"user_id"`
	Kind    string              `bson:"kind" json:"kind"`
	Message string              `bson:"message" json:"message"`
	IssueID *primitive.ObjectID `bson:"issue_id,omitempty" json:"issue_id,omitempty"`

	ReadAt    *time.Time `bson:"read_at,omitempty" json:"read_at,omitempty"`
	CreatedAt time.Time  `bson:"created_at" json:"created_at"`
}

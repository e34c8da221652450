// internal/domain/models/label.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Label is a team-scoped tag attachable to issues.
type Label struct {
	ID     primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TeamID primitive.ObjectID `bson:"team_id" json:"team_id"`
	Name   string             `bson:"name" json:"name"`
	NameCI string             `bson:"name_ci" json:"-"`
	Color  string             `bson:"color" json:"color"` // hex, e.g. "#d73a4a"

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

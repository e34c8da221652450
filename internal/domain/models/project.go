// internal/domain/models/project.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Project groups issues inside a team. Authorization is always resolved
// through TeamID: a user may read a project only if they are a member of
// its team.
type Project struct {
	ID          primitive.ObjectID `bson:"_id" json:"id"`
	TeamID      primitive.ObjectID `bson:"team_id" json:"team_id"`
	Name        string             `bson:"name" json:"name"`
	NameCI      string             `bson:"name_ci" json:"-"`
	Description string             `bson:"description" json:"description"`

	DeletedAt *time.Time `bson:"deleted_at,omitempty" json:"-"`
	CreatedAt time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time  `bson:"updated_at" json:"updated_at"`
}

// internal/domain/models/comment.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Comment is a discussion entry on an issue. Body is sanitized HTML.
type Comment struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	IssueID  primitive.ObjectID `bson:"issue_id" json:"issue_id"`
	AuthorID primitive.ObjectID `bson:"author_id" json:"author_id"`
	Body     string             `bson:"body" json:"body"`

	DeletedAt *time.Time `bson:"deleted_at,omitempty" json:"-"`
	CreatedAt time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time  `bson:"updated_at" json:"updated_at"`
}

// internal/domain/models/issue.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Issue statuses.
const (
	IssueOpen       = "open"
	IssueInProgress = "in_progress"
	IssueDone       = "done"
	IssueCanceled   = "canceled"
)

// Issue is a unit of work inside a project. Description is sanitized HTML.
// Team scoping is transitive: issue → project → team.
type Issue struct {
	ID          primitive.ObjectID   `bson:"_id" json:"id"`
	ProjectID   primitive.ObjectID   `bson:"project_id" json:"project_id"`
	Title       string               `bson:"title" json:"title"`
	TitleCI     string               `bson:"title_ci" json:"-"`
	Description string               `bson:"description" json:"description"`
	Status      string               `bson:"status" json:"status"`
	ReporterID  primitive.ObjectID   `bson:"reporter_id" json:"reporter_id"`
	AssigneeID  *primitive.ObjectID  `bson:"assignee_id,omitempty" json:"assignee_id,omitempty"`
	LabelIDs    []primitive.ObjectID `bson:"label_ids,omitempty" json:"label_ids,omitempty"`

	DeletedAt *time.Time `bson:"deleted_at,omitempty" json:"-"`
	CreatedAt time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time  `bson:"updated_at" json:"updated_at"`
}

// ValidIssueStatus reports whether s is one of the recognized statuses.
func ValidIssueStatus(s string) bool {
	switch s {
	case IssueOpen, IssueInProgress, IssueDone, IssueCanceled:
		return true
	}
	return false
}

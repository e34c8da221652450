// internal/app/store/logins/loginstore.go
package loginstore

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Login methods recorded per sign-in.
const (
	MethodPassword = "password"
	MethodGoogle   = "google"
)

// Record is one sign-in event, kept for activity history.
type Record struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	UserID    primitive.ObjectID `bson:"user_id"`
	Method    string             `bson:"method"`
	LoginAt   time.Time          `bson:"login_at"`
	IP        string             `bson:"ip"`
	UserAgent string             `bson:"user_agent,omitempty"`
}

// Store manages login history records.
type Store struct {
	c *mongo.Collection
}

// New creates a new login record Store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("login_records")}
}

// Record inserts a sign-in event.
func (s *Store) Record(ctx context.Context, userID primitive.ObjectID, method, ip, userAgent string) error {
	_, err := s.c.InsertOne(ctx, Record{
		UserID:    userID,
		Method:    method,
		LoginAt:   time.Now().UTC(),
		IP:        ip,
		UserAgent: userAgent,
	})
	return err
}

// RecentForUser returns the user's most recent sign-ins, newest first.
func (s *Store) RecentForUser(ctx context.Context, userID primitive.ObjectID, limit int64) ([]Record, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "login_at", Value: -1}}).
		SetLimit(limit)
	cur, err := s.c.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	records := []Record{}
	if err := cur.All(ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}

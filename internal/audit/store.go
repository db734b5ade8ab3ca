package audit

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/flocknet/flocknet/backend/go-services/internal/database"
)

// Event names recorded in the security audit trail.
const (
	EventTwoFactorEnabled  = "2fa.enabled"
	EventTwoFactorDisabled = "2fa.disabled"
	EventSessionRevoked    = "session.revoked"
)

// Entry is the Mongo representation of one security-relevant event.
type Entry struct {
	UserID    string    `bson:"userId" json:"userId"`
	Event     string    `bson:"event" json:"event"`
	Detail    string    `bson:"detail,omitempty" json:"detail,omitempty"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}

// Save appends an audit entry to the security_audit collection.
// If mongoURI is empty the function is a no-op.
func Save(ctx context.Context, mongoURI, databaseName string, e *Entry) error {
	if mongoURI == "" {
		return nil
	}
	client, err := database.ConnectMongo(ctx, mongoURI, 5*time.Second)
	if err != nil {
		return fmt.Errorf("connect mongo: %w", err)
	}
	defer client.Disconnect(ctx)

	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	col := client.Database(databaseName).Collection("security_audit")
	if _, err := col.InsertOne(ctx, e); err != nil {
		return fmt.Errorf("save audit entry: %w", err)
	}
	return nil
}

// LoadRecent fetches the latest entries for a user, newest first.
// Returns an empty slice when nothing is recorded.
func LoadRecent(ctx context.Context, mongoURI, databaseName, userID string, limit int64) ([]Entry, error) {
	if mongoURI == "" {
		return []Entry{}, nil
	}
	client, err := database.ConnectMongo(ctx, mongoURI, 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	defer client.Disconnect(ctx)

	col := client.Database(databaseName).Collection("security_audit")
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}).SetLimit(limit)
	cur, err := col.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []Entry{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

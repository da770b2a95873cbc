// Package mongodb provides the MongoDB implementation of store.Store.
//
// Record ids are ObjectID hex strings. Emails are matched through a
// lower-cased copy that carries the unique index.
package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jonathan/campus-placement/internal/store"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names.
const (
	actorsColl        = "users"
	profilesColl      = "student_profiles"
	drivesColl        = "companies"
	applicationsColl  = "applications"
	interviewsColl    = "interviews"
	notificationsColl = "notifications"
)

// Store is a store.Store backed by one MongoDB database.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
	now    func() time.Time
}

var _ store.Store = (*Store)(nil)

// Connect dials uri, verifies the connection and selects database.
func Connect(ctx context.Context, uri, database string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}
	return &Store{client: client, db: client.Database(database), now: time.Now}, nil
}

// Close disconnects the client.
func (s *Store) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = s.client.Disconnect(ctx)
}

func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx, nil); err != nil {
		return fmt.Errorf("failed to ping mongodb: %w", err)
	}
	return nil
}

// Migrate creates the indexes the store relies on. It is safe to run repeatedly.
func (s *Store) Migrate(ctx context.Context) error {
	indexes := map[string][]mongo.IndexModel{
		actorsColl: {
			{Keys: bson.D{{Key: "email_lower", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "role", Value: 1}, {Key: "status", Value: 1}}},
		},
		profilesColl: {
			{Keys: bson.D{{Key: "gpa", Value: 1}, {Key: "backlogs", Value: 1}}},
		},
		drivesColl: {
			{Keys: bson.D{{Key: "min_gpa", Value: 1}, {Key: "allowed_backlogs", Value: 1}}},
		},
		applicationsColl: {
			{Keys: bson.D{{Key: "student_id", Value: 1}, {Key: "company_id", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "company_id", Value: 1}}},
			{Keys: bson.D{{Key: "status", Value: 1}}},
		},
		interviewsColl: {
			{Keys: bson.D{{Key: "company_id", Value: 1}}},
			{Keys: bson.D{{Key: "student_id", Value: 1}}},
		},
		notificationsColl: {
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
		},
	}
	for coll, models := range indexes {
		if _, err := s.db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("failed to create indexes on %s: %w", coll, err)
		}
	}
	return nil
}

func (s *Store) coll(name string) *mongo.Collection {
	return s.db.Collection(name)
}

// stamp fills a zero time and truncates to the millisecond precision BSON keeps.
func (s *Store) stamp(t time.Time) time.Time {
	if t.IsZero() {
		t = s.now()
	}
	return t.UTC().Truncate(time.Millisecond)
}

func parseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %q", store.ErrMalformedID, id)
	}
	return oid, nil
}

// scopeIDs drops ids that cannot be ObjectIDs; they match no document anyway.
func scopeIDs(ids []string) []primitive.ObjectID {
	out := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if oid, err := primitive.ObjectIDFromHex(id); err == nil {
			out = append(out, oid)
		}
	}
	return out
}

func isNoDocuments(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}

// findAll runs a query and decodes every document into T.
func findAll[T any](ctx context.Context, c *mongo.Collection, filter bson.M, opts *options.FindOptions) ([]T, error) {
	cur, err := c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// matched runs an update and reports whether a document matched.
func matched(res *mongo.UpdateResult, err error) (bool, error) {
	if err != nil {
		return false, err
	}
	return res.MatchedCount == 1, nil
}

package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const storageCollection = "console_storage"

// Store is a key-value store holding one document per key.
type Store struct {
	db   *mongo.Database
	coll *mongo.Collection
}

// NewStore returns a Store over the console_storage collection of db.
func NewStore(db *mongo.Database) *Store {
	return &Store{db: db, coll: db.Collection(storageCollection)}
}

type entryDoc struct {
	Key       string `bson:"_id"`
	Value     string `bson:"value"`
	UpdatedAt int64  `bson:"updated_at"`
}

// Get returns the value stored under key and whether it exists.
func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	var doc entryDoc
	err := s.coll.FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("find %s: %w", key, err)
	}
	return doc.Value, true, nil
}

// SetMany upserts all entries in one ordered bulk write.
func (s *Store) SetMany(ctx context.Context, entries map[string]string) error {
	if len(entries) == 0 {
		return nil
	}
	now := time.Now().Unix()
	models := make([]mongo.WriteModel, 0, len(entries))
	for k, v := range entries {
		models = append(models, mongo.NewReplaceOneModel().
			SetFilter(bson.M{"_id": k}).
			SetReplacement(entryDoc{Key: k, Value: v, UpdatedAt: now}).
			SetUpsert(true))
	}
	if _, err := s.coll.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(true)); err != nil {
		return fmt.Errorf("bulk upsert: %w", err)
	}
	return nil
}

// Delete removes keys. Missing keys are not an error.
func (s *Store) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if _, err := s.coll.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": keys}}); err != nil {
		return fmt.Errorf("delete keys: %w", err)
	}
	return nil
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.RunCommand(ctx, bson.D{{Key: "ping", Value: 1}}).Err()
}

// Close disconnects the underlying client.
func (s *Store) Close(ctx context.Context) error {
	return s.db.Client().Disconnect(ctx)
}

package db

import (
	"context"
	"fmt"

	"cruiseops/models"
	"cruiseops/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// IdempotencyStore keeps Idempotency-Key records in the control plane. A TTL index
// on expires_at removes them.
type IdempotencyStore struct {
	coll *mongo.Collection
}

func NewIdempotencyStore(m *Mongo) *IdempotencyStore {
	return &IdempotencyStore{coll: m.Control().Collection(IdempotencyCollection)}
}

func (s *IdempotencyStore) Insert(ctx context.Context, rec models.IdempotencyRecord) (bool, error) {
	_, err := s.coll.InsertOne(ctx, rec)
	if IsDuplicateKey(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("insert idempotency key: %w", err)
	}
	return true, nil
}

func (s *IdempotencyStore) Find(ctx context.Context, scope, key string) (models.IdempotencyRecord, error) {
	var rec models.IdempotencyRecord
	err := s.coll.FindOne(ctx, bson.M{"scope": scope, "key": key}).Decode(&rec)
	if err == mongo.ErrNoDocuments {
		return rec, utils.NotFound("idempotency key not found")
	}
	return rec, err
}

func (s *IdempotencyStore) SaveResponse(ctx context.Context, scope, key string, resp models.CachedResponse) error {
	_, err := s.coll.UpdateOne(ctx,
		bson.M{"scope": scope, "key": key},
		bson.M{"$set": bson.M{"response": resp}},
	)
	return err
}

func (s *IdempotencyStore) Release(ctx context.Context, scope, key string) error {
	_, err := s.coll.DeleteOne(ctx, bson.M{"scope": scope, "key": key})
	return err
}

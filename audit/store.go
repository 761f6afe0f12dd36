package audit

import (
	"context"
	"fmt"

	"cruiseops/db"
	"cruiseops/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoStore struct {
	m *db.Mongo
}

func NewMongoStore(m *db.Mongo) *MongoStore {
	return &MongoStore{m: m}
}

func (s *MongoStore) Insert(ctx context.Context, tenant string, e models.AuditEntry) error {
	_, err := s.m.Tenant(tenant).Collection(db.AuditCollection).InsertOne(ctx, e)
	return err
}

func (s *MongoStore) List(ctx context.Context, tenant string, f Filter) ([]models.AuditEntry, error) {
	filter := bson.M{}
	if f.EntityType != "" {
		filter["entity_type"] = f.EntityType
	}
	if f.EntityID != "" {
		filter["entity_id"] = f.EntityID
	}
	if f.Action != "" {
		filter["action"] = f.Action
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "occurred_at", Value: -1}}).
		SetLimit(int64(f.Limit))
	cur, err := s.m.Tenant(tenant).Collection(db.AuditCollection).Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list audit: %w", err)
	}
	out := []models.AuditEntry{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

package settings

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

func (s *MongoStore) Get(ctx context.Context, tenant, userID string) (*models.Preferences, error) {
	c := s.m.Tenant(tenant).Collection(db.PreferencesCollection)
	return db.FindOne[models.Preferences](ctx, c, bson.M{"_id": userID})
}

func (s *MongoStore) Put(ctx context.Context, tenant string, p models.Preferences) error {
	c := s.m.Tenant(tenant).Collection(db.PreferencesCollection)
	_, err := c.ReplaceOne(ctx, bson.M{"_id": p.UserID}, p, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("save preferences: %w", err)
	}
	return nil
}

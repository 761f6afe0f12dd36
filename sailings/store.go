package sailings

import (
	"context"
	"fmt"

	"cruiseops/db"
	"cruiseops/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Filter struct {
	ItineraryID string
	Status      string
	ShipID      string
}

type Store interface {
	Insert(ctx context.Context, tenant string, s models.Sailing) error
	List(ctx context.Context, tenant string, f Filter) ([]models.Sailing, error)
	// Get returns nil when the sailing does not exist.
	Get(ctx context.Context, tenant, id string) (*models.Sailing, error)
	Replace(ctx context.Context, tenant string, s models.Sailing) error
	Count(ctx context.Context, tenant, status string) (int64, error)
}

type MongoStore struct {
	m *db.Mongo
}

func NewMongoStore(m *db.Mongo) *MongoStore {
	return &MongoStore{m: m}
}

func (s *MongoStore) coll(tenant string) *mongo.Collection {
	return s.m.Tenant(tenant).Collection(db.SailingsCollection)
}

func (s *MongoStore) Insert(ctx context.Context, tenant string, sl models.Sailing) error {
	return db.Insert(ctx, s.coll(tenant), sl, "Sailing code already exists")
}

func (s *MongoStore) List(ctx context.Context, tenant string, f Filter) ([]models.Sailing, error) {
	filter := bson.M{}
	if f.ItineraryID != "" {
		filter["itinerary_id"] = f.ItineraryID
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.ShipID != "" {
		filter["ship_id"] = f.ShipID
	}
	opts := options.Find().SetSort(bson.D{{Key: "start_date", Value: 1}, {Key: "code", Value: 1}})
	return db.FindAll[models.Sailing](ctx, s.coll(tenant), filter, opts)
}

func (s *MongoStore) Get(ctx context.Context, tenant, id string) (*models.Sailing, error) {
	return db.FindOne[models.Sailing](ctx, s.coll(tenant), bson.M{"_id": id})
}

func (s *MongoStore) Replace(ctx context.Context, tenant string, sl models.Sailing) error {
	_, err := db.Replace(ctx, s.coll(tenant), sl.ID, sl, "Sailing code already exists")
	return err
}

func (s *MongoStore) Count(ctx context.Context, tenant, status string) (int64, error) {
	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}
	n, err := s.coll(tenant).CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("count sailings: %w", err)
	}
	return n, nil
}

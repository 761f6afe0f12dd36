package itinerary

import (
	"context"
	"fmt"

	"cruiseops/db"
	"cruiseops/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store keeps the port registry and itineraries of a tenant. Get methods return nil
// when nothing matches.
type Store interface {
	UpsertPort(ctx context.Context, tenant string, p models.Port) error
	ListPorts(ctx context.Context, tenant string) ([]models.Port, error)
	GetPort(ctx context.Context, tenant, code string) (*models.Port, error)
	PortsByCode(ctx context.Context, tenant string, codes []string) (map[string]models.Port, error)

	InsertItinerary(ctx context.Context, tenant string, it models.Itinerary) error
	ListItineraries(ctx context.Context, tenant string) ([]models.Itinerary, error)
	GetItinerary(ctx context.Context, tenant, id string) (*models.Itinerary, error)
	ReplaceItinerary(ctx context.Context, tenant string, it models.Itinerary) error
	// UpsertItineraryByCode keeps the stored id and created_at of an existing code.
	UpsertItineraryByCode(ctx context.Context, tenant string, it models.Itinerary) error
}

type MongoStore struct {
	m *db.Mongo
}

func NewMongoStore(m *db.Mongo) *MongoStore {
	return &MongoStore{m: m}
}

func (s *MongoStore) ports(tenant string) *mongo.Collection {
	return s.m.Tenant(tenant).Collection(db.PortsCollection)
}

func (s *MongoStore) itineraries(tenant string) *mongo.Collection {
	return s.m.Tenant(tenant).Collection(db.ItinerariesCollection)
}

func (s *MongoStore) UpsertPort(ctx context.Context, tenant string, p models.Port) error {
	_, err := s.ports(tenant).ReplaceOne(ctx, bson.M{"_id": p.Code}, p, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("upsert port %s: %w", p.Code, err)
	}
	return nil
}

func (s *MongoStore) ListPorts(ctx context.Context, tenant string) ([]models.Port, error) {
	return db.FindAll[models.Port](ctx, s.ports(tenant), bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
}

func (s *MongoStore) GetPort(ctx context.Context, tenant, code string) (*models.Port, error) {
	return db.FindOne[models.Port](ctx, s.ports(tenant), bson.M{"_id": code})
}

func (s *MongoStore) PortsByCode(ctx context.Context, tenant string, codes []string) (map[string]models.Port, error) {
	out := make(map[string]models.Port, len(codes))
	if len(codes) == 0 {
		return out, nil
	}
	ports, err := db.FindAll[models.Port](ctx, s.ports(tenant), bson.M{"_id": bson.M{"$in": codes}})
	if err != nil {
		return nil, err
	}
	for _, p := range ports {
		out[p.Code] = p
	}
	return out, nil
}

func (s *MongoStore) InsertItinerary(ctx context.Context, tenant string, it models.Itinerary) error {
	return db.Insert(ctx, s.itineraries(tenant), it, "Itinerary code already exists")
}

func (s *MongoStore) ListItineraries(ctx context.Context, tenant string) ([]models.Itinerary, error) {
	return db.FindAll[models.Itinerary](ctx, s.itineraries(tenant), bson.M{}, options.Find().SetSort(bson.D{{Key: "code", Value: 1}}))
}

func (s *MongoStore) GetItinerary(ctx context.Context, tenant, id string) (*models.Itinerary, error) {
	return db.FindOne[models.Itinerary](ctx, s.itineraries(tenant), bson.M{"_id": id})
}

func (s *MongoStore) ReplaceItinerary(ctx context.Context, tenant string, it models.Itinerary) error {
	_, err := db.Replace(ctx, s.itineraries(tenant), it.ID, it, "Itinerary code already exists")
	return err
}

func (s *MongoStore) UpsertItineraryByCode(ctx context.Context, tenant string, it models.Itinerary) error {
	set := bson.M{
		"titles":        it.Titles,
		"map_image_url": it.MapImageURL,
		"stops":         it.Stops,
		"updated_at":    it.UpdatedAt,
	}
	_, err := s.itineraries(tenant).UpdateOne(ctx,
		bson.M{"code": it.Code},
		bson.M{"$set": set, "$setOnInsert": bson.M{"_id": it.ID, "created_at": it.CreatedAt}},
		options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("upsert itinerary %s: %w", it.Code, err)
	}
	return nil
}

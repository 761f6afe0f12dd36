package ships

import (
	"context"
	"fmt"

	"cruiseops/db"
	"cruiseops/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type CabinFilter struct {
	Deck       *int
	Status     string
	CategoryID string
}

type ShorexFilter struct {
	PortCode   string
	ActiveOnly bool
}

// Store persists fleet data in the tenant database. Get methods return nil when
// nothing matches.
type Store interface {
	InsertShip(ctx context.Context, tenant string, s models.Ship) error
	ListShips(ctx context.Context, tenant string) ([]models.Ship, error)
	GetShip(ctx context.Context, tenant, id string) (*models.Ship, error)
	GetShipByCode(ctx context.Context, tenant, code string) (*models.Ship, error)
	ReplaceShip(ctx context.Context, tenant string, s models.Ship) error
	CountShips(ctx context.Context, tenant, status string) (int64, error)

	InsertCategory(ctx context.Context, tenant string, c models.CabinCategory) error
	ListCategories(ctx context.Context, tenant, shipID string) ([]models.CabinCategory, error)
	GetCategory(ctx context.Context, tenant, id string) (*models.CabinCategory, error)
	// UpsertCategory matches on (ship_id, code) and keeps the stored id.
	UpsertCategory(ctx context.Context, tenant string, c models.CabinCategory) (string, error)

	InsertCabin(ctx context.Context, tenant string, c models.Cabin) error
	ListCabins(ctx context.Context, tenant, shipID string, f CabinFilter) ([]models.Cabin, error)
	GetCabin(ctx context.Context, tenant, id string) (*models.Cabin, error)
	ReplaceCabin(ctx context.Context, tenant string, c models.Cabin) error
	// UpsertCabin matches on (ship_id, cabin_no) and keeps the stored id.
	UpsertCabin(ctx context.Context, tenant string, c models.Cabin) error

	InsertCapability(ctx context.Context, tenant string, c models.Capability) error
	ListCapabilities(ctx context.Context, tenant, shipID string) ([]models.Capability, error)

	InsertRestaurant(ctx context.Context, tenant string, r models.Restaurant) error
	ListRestaurants(ctx context.Context, tenant, shipID string) ([]models.Restaurant, error)

	InsertShorex(ctx context.Context, tenant string, x models.ShoreExcursion) error
	ListShorex(ctx context.Context, tenant, shipID string, f ShorexFilter) ([]models.ShoreExcursion, error)
	GetShorex(ctx context.Context, tenant, id string) (*models.ShoreExcursion, error)
	ReplaceShorex(ctx context.Context, tenant string, x models.ShoreExcursion) error
}

type MongoStore struct {
	m *db.Mongo
}

func NewMongoStore(m *db.Mongo) *MongoStore {
	return &MongoStore{m: m}
}

func (s *MongoStore) coll(tenant, name string) *mongo.Collection {
	return s.m.Tenant(tenant).Collection(name)
}

var byCode = options.Find().SetSort(bson.D{{Key: "code", Value: 1}})

func (s *MongoStore) InsertShip(ctx context.Context, tenant string, sh models.Ship) error {
	return db.Insert(ctx, s.coll(tenant, db.ShipsCollection), sh, "Ship code already exists")
}

func (s *MongoStore) ListShips(ctx context.Context, tenant string) ([]models.Ship, error) {
	return db.FindAll[models.Ship](ctx, s.coll(tenant, db.ShipsCollection), bson.M{}, byCode)
}

func (s *MongoStore) GetShip(ctx context.Context, tenant, id string) (*models.Ship, error) {
	return db.FindOne[models.Ship](ctx, s.coll(tenant, db.ShipsCollection), bson.M{"_id": id})
}

func (s *MongoStore) GetShipByCode(ctx context.Context, tenant, code string) (*models.Ship, error) {
	return db.FindOne[models.Ship](ctx, s.coll(tenant, db.ShipsCollection), bson.M{"code": code})
}

func (s *MongoStore) ReplaceShip(ctx context.Context, tenant string, sh models.Ship) error {
	_, err := db.Replace(ctx, s.coll(tenant, db.ShipsCollection), sh.ID, sh, "Ship code already exists")
	return err
}

func (s *MongoStore) CountShips(ctx context.Context, tenant, status string) (int64, error) {
	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}
	n, err := s.coll(tenant, db.ShipsCollection).CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("count ships: %w", err)
	}
	return n, nil
}

func (s *MongoStore) InsertCategory(ctx context.Context, tenant string, c models.CabinCategory) error {
	return db.Insert(ctx, s.coll(tenant, db.CabinCategoriesCollection), c, "Cabin category code already exists")
}

func (s *MongoStore) ListCategories(ctx context.Context, tenant, shipID string) ([]models.CabinCategory, error) {
	return db.FindAll[models.CabinCategory](ctx, s.coll(tenant, db.CabinCategoriesCollection), bson.M{"ship_id": shipID}, byCode)
}

func (s *MongoStore) GetCategory(ctx context.Context, tenant, id string) (*models.CabinCategory, error) {
	return db.FindOne[models.CabinCategory](ctx, s.coll(tenant, db.CabinCategoriesCollection), bson.M{"_id": id})
}

func (s *MongoStore) UpsertCategory(ctx context.Context, tenant string, c models.CabinCategory) (string, error) {
	coll := s.coll(tenant, db.CabinCategoriesCollection)
	set := bson.M{
		"name":          c.Name,
		"view":          c.View,
		"cabin_class":   c.CabinClass,
		"max_occupancy": c.MaxOccupancy,
	}
	var out models.CabinCategory
	err := coll.FindOneAndUpdate(ctx,
		bson.M{"ship_id": c.ShipID, "code": c.Code},
		bson.M{"$set": set, "$setOnInsert": bson.M{"_id": c.ID}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&out)
	if err != nil {
		return "", fmt.Errorf("upsert cabin category %s: %w", c.Code, err)
	}
	return out.ID, nil
}

func (s *MongoStore) InsertCabin(ctx context.Context, tenant string, c models.Cabin) error {
	return db.Insert(ctx, s.coll(tenant, db.CabinsCollection), c, "Cabin number already exists")
}

func (s *MongoStore) ListCabins(ctx context.Context, tenant, shipID string, f CabinFilter) ([]models.Cabin, error) {
	filter := bson.M{"ship_id": shipID}
	if f.Deck != nil {
		filter["deck"] = *f.Deck
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.CategoryID != "" {
		filter["category_id"] = f.CategoryID
	}
	opts := options.Find().SetSort(bson.D{{Key: "deck", Value: 1}, {Key: "cabin_no", Value: 1}})
	return db.FindAll[models.Cabin](ctx, s.coll(tenant, db.CabinsCollection), filter, opts)
}

func (s *MongoStore) GetCabin(ctx context.Context, tenant, id string) (*models.Cabin, error) {
	return db.FindOne[models.Cabin](ctx, s.coll(tenant, db.CabinsCollection), bson.M{"_id": id})
}

func (s *MongoStore) ReplaceCabin(ctx context.Context, tenant string, c models.Cabin) error {
	_, err := db.Replace(ctx, s.coll(tenant, db.CabinsCollection), c.ID, c, "Cabin number already exists")
	return err
}

func (s *MongoStore) UpsertCabin(ctx context.Context, tenant string, c models.Cabin) error {
	set := bson.M{"category_id": c.CategoryID, "deck": c.Deck, "status": c.Status}
	_, err := s.coll(tenant, db.CabinsCollection).UpdateOne(ctx,
		bson.M{"ship_id": c.ShipID, "cabin_no": c.CabinNo},
		bson.M{"$set": set, "$setOnInsert": bson.M{"_id": c.ID, "accessories": []string{}}},
		options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("upsert cabin %s: %w", c.CabinNo, err)
	}
	return nil
}

func (s *MongoStore) InsertCapability(ctx context.Context, tenant string, c models.Capability) error {
	return db.Insert(ctx, s.coll(tenant, db.CapabilitiesCollection), c, "Capability code already exists")
}

func (s *MongoStore) ListCapabilities(ctx context.Context, tenant, shipID string) ([]models.Capability, error) {
	return db.FindAll[models.Capability](ctx, s.coll(tenant, db.CapabilitiesCollection), bson.M{"ship_id": shipID}, byCode)
}

func (s *MongoStore) InsertRestaurant(ctx context.Context, tenant string, r models.Restaurant) error {
	return db.Insert(ctx, s.coll(tenant, db.RestaurantsCollection), r, "Restaurant code already exists")
}

func (s *MongoStore) ListRestaurants(ctx context.Context, tenant, shipID string) ([]models.Restaurant, error) {
	return db.FindAll[models.Restaurant](ctx, s.coll(tenant, db.RestaurantsCollection), bson.M{"ship_id": shipID}, byCode)
}

func (s *MongoStore) InsertShorex(ctx context.Context, tenant string, x models.ShoreExcursion) error {
	return db.Insert(ctx, s.coll(tenant, db.ShoreExcursionsCollection), x, "Shore excursion code already exists")
}

func (s *MongoStore) ListShorex(ctx context.Context, tenant, shipID string, f ShorexFilter) ([]models.ShoreExcursion, error) {
	filter := bson.M{"ship_id": shipID}
	if f.PortCode != "" {
		filter["port_code"] = f.PortCode
	}
	if f.ActiveOnly {
		filter["active"] = true
	}
	return db.FindAll[models.ShoreExcursion](ctx, s.coll(tenant, db.ShoreExcursionsCollection), filter, byCode)
}

func (s *MongoStore) GetShorex(ctx context.Context, tenant, id string) (*models.ShoreExcursion, error) {
	return db.FindOne[models.ShoreExcursion](ctx, s.coll(tenant, db.ShoreExcursionsCollection), bson.M{"_id": id})
}

func (s *MongoStore) ReplaceShorex(ctx context.Context, tenant string, x models.ShoreExcursion) error {
	_, err := db.Replace(ctx, s.coll(tenant, db.ShoreExcursionsCollection), x.ID, x, "Shore excursion code already exists")
	return err
}

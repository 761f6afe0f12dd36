package customers

import (
	"context"
	"fmt"
	"regexp"

	"cruiseops/db"
	"cruiseops/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store persists customers, their passengers and the booking history projection.
// Get methods return nil when nothing matches.
type Store interface {
	InsertCustomer(ctx context.Context, tenant string, c models.Customer) error
	GetCustomer(ctx context.Context, tenant, id string) (*models.Customer, error)
	ReplaceCustomer(ctx context.Context, tenant string, c models.Customer) error
	SearchCustomers(ctx context.Context, tenant, q string, limit int64) ([]models.Customer, error)
	CountCustomers(ctx context.Context, tenant string) (int64, error)

	InsertPassenger(ctx context.Context, tenant string, p models.Passenger) error
	ListPassengers(ctx context.Context, tenant, customerID string) ([]models.Passenger, error)
	GetPassenger(ctx context.Context, tenant, id string) (*models.Passenger, error)
	ReplacePassenger(ctx context.Context, tenant string, p models.Passenger) error
	DeletePassenger(ctx context.Context, tenant, id string) (bool, error)

	UpsertBooking(ctx context.Context, tenant string, b models.CustomerBooking) error
	ListBookings(ctx context.Context, tenant, customerID string) ([]models.CustomerBooking, error)
}

const dupEmail = "Customer email already exists"

type MongoStore struct {
	m *db.Mongo
}

func NewMongoStore(m *db.Mongo) *MongoStore {
	return &MongoStore{m: m}
}

func (s *MongoStore) coll(tenant, name string) *mongo.Collection {
	return s.m.Tenant(tenant).Collection(name)
}

func (s *MongoStore) InsertCustomer(ctx context.Context, tenant string, c models.Customer) error {
	return db.Insert(ctx, s.coll(tenant, db.CustomersCollection), c, dupEmail)
}

func (s *MongoStore) GetCustomer(ctx context.Context, tenant, id string) (*models.Customer, error) {
	return db.FindOne[models.Customer](ctx, s.coll(tenant, db.CustomersCollection), bson.M{"_id": id})
}

func (s *MongoStore) ReplaceCustomer(ctx context.Context, tenant string, c models.Customer) error {
	_, err := db.Replace(ctx, s.coll(tenant, db.CustomersCollection), c.ID, c, dupEmail)
	return err
}

func (s *MongoStore) SearchCustomers(ctx context.Context, tenant, q string, limit int64) ([]models.Customer, error) {
	filter := bson.M{}
	if q != "" {
		re := bson.M{"$regex": regexp.QuoteMeta(q), "$options": "i"}
		filter["$or"] = bson.A{
			bson.M{"email": re},
			bson.M{"first_name": re},
			bson.M{"last_name": re},
			bson.M{"phone": re},
		}
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetLimit(limit)
	return db.FindAll[models.Customer](ctx, s.coll(tenant, db.CustomersCollection), filter, opts)
}

func (s *MongoStore) CountCustomers(ctx context.Context, tenant string) (int64, error) {
	n, err := s.coll(tenant, db.CustomersCollection).EstimatedDocumentCount(ctx)
	if err != nil {
		return 0, fmt.Errorf("count customers: %w", err)
	}
	return n, nil
}

func (s *MongoStore) InsertPassenger(ctx context.Context, tenant string, p models.Passenger) error {
	return db.Insert(ctx, s.coll(tenant, db.PassengersCollection), p, "")
}

func (s *MongoStore) ListPassengers(ctx context.Context, tenant, customerID string) ([]models.Passenger, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	return db.FindAll[models.Passenger](ctx, s.coll(tenant, db.PassengersCollection), bson.M{"customer_id": customerID}, opts)
}

func (s *MongoStore) GetPassenger(ctx context.Context, tenant, id string) (*models.Passenger, error) {
	return db.FindOne[models.Passenger](ctx, s.coll(tenant, db.PassengersCollection), bson.M{"_id": id})
}

func (s *MongoStore) ReplacePassenger(ctx context.Context, tenant string, p models.Passenger) error {
	_, err := db.Replace(ctx, s.coll(tenant, db.PassengersCollection), p.ID, p, "")
	return err
}

func (s *MongoStore) DeletePassenger(ctx context.Context, tenant, id string) (bool, error) {
	return db.Delete(ctx, s.coll(tenant, db.PassengersCollection), id)
}

func (s *MongoStore) UpsertBooking(ctx context.Context, tenant string, b models.CustomerBooking) error {
	set := bson.M{
		"status":     b.Status,
		"meta":       b.Meta,
		"updated_at": b.UpdatedAt,
	}
	if b.CustomerID != "" {
		set["customer_id"] = b.CustomerID
	}
	if b.SailingID != "" {
		set["sailing_id"] = b.SailingID
	}
	_, err := s.coll(tenant, db.CustomerBookingsCollection).UpdateOne(ctx,
		bson.M{"booking_id": b.BookingID},
		bson.M{"$set": set},
		options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("upsert booking history %s: %w", b.BookingID, err)
	}
	return nil
}

func (s *MongoStore) ListBookings(ctx context.Context, tenant, customerID string) ([]models.CustomerBooking, error) {
	opts := options.Find().SetSort(bson.D{{Key: "updated_at", Value: -1}})
	return db.FindAll[models.CustomerBooking](ctx, s.coll(tenant, db.CustomerBookingsCollection), bson.M{"customer_id": customerID}, opts)
}

package booking

import (
	"context"
	"fmt"
	"time"

	"cruiseops/db"
	"cruiseops/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Filter struct {
	Status     string
	CustomerID string
	SailingID  string
	Limit      int
	Skip       int64
}

// Change is a status transition applied only when the current status matches.
type Change struct {
	Status       string
	CancelReason string
	ClearHold    bool
	At           time.Time
}

type Store interface {
	Insert(ctx context.Context, tenant string, b models.Booking) error
	// Get returns nil when the booking does not exist.
	Get(ctx context.Context, tenant, id string) (*models.Booking, error)
	List(ctx context.Context, tenant string, f Filter) ([]models.Booking, error)
	// Transition reports false when the booking is not in one of the from statuses.
	Transition(ctx context.Context, tenant, id string, from []string, c Change) (bool, error)
	ExpiredHolds(ctx context.Context, tenant string, now time.Time) ([]models.Booking, error)
}

type MongoStore struct {
	m *db.Mongo
}

func NewMongoStore(m *db.Mongo) *MongoStore {
	return &MongoStore{m: m}
}

func (s *MongoStore) coll(tenant string) *mongo.Collection {
	return s.m.Tenant(tenant).Collection(db.BookingsCollection)
}

func (s *MongoStore) Insert(ctx context.Context, tenant string, b models.Booking) error {
	if _, err := s.coll(tenant).InsertOne(ctx, b); err != nil {
		return fmt.Errorf("insert booking: %w", err)
	}
	return nil
}

func (s *MongoStore) Get(ctx context.Context, tenant, id string) (*models.Booking, error) {
	var b models.Booking
	err := s.coll(tenant).FindOne(ctx, bson.M{"_id": id}).Decode(&b)
	if db.IsNoDocuments(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get booking: %w", err)
	}
	return &b, nil
}

func (s *MongoStore) List(ctx context.Context, tenant string, f Filter) ([]models.Booking, error) {
	filter := bson.M{}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.CustomerID != "" {
		filter["customer_id"] = f.CustomerID
	}
	if f.SailingID != "" {
		filter["sailing_id"] = f.SailingID
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if f.Limit > 0 {
		opts.SetLimit(int64(f.Limit)).SetSkip(f.Skip)
	}
	cur, err := s.coll(tenant).Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	out := []models.Booking{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *MongoStore) Transition(ctx context.Context, tenant, id string, from []string, c Change) (bool, error) {
	set := bson.M{"status": c.Status, "updated_at": c.At}
	if c.CancelReason != "" {
		set["cancel_reason"] = c.CancelReason
	}
	if c.ClearHold {
		set["hold_expires_at"] = nil
	}
	res, err := s.coll(tenant).UpdateOne(ctx,
		bson.M{"_id": id, "status": bson.M{"$in": from}},
		bson.M{"$set": set})
	if err != nil {
		return false, fmt.Errorf("update booking %s: %w", id, err)
	}
	return res.ModifiedCount > 0, nil
}

func (s *MongoStore) ExpiredHolds(ctx context.Context, tenant string, now time.Time) ([]models.Booking, error) {
	cur, err := s.coll(tenant).Find(ctx, bson.M{
		"status":          models.BookingHeld,
		"hold_expires_at": bson.M{"$lt": now},
	})
	if err != nil {
		return nil, fmt.Errorf("find expired holds: %w", err)
	}
	var out []models.Booking
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CountByStatus and ConfirmedRevenue feed the dashboard.
func (s *MongoStore) CountByStatus(ctx context.Context, tenant string) (map[string]int64, error) {
	cur, err := s.coll(tenant).Aggregate(ctx, mongo.Pipeline{
		{{Key: "$group", Value: bson.M{"_id": "$status", "n": bson.M{"$sum": 1}}}},
	})
	if err != nil {
		return nil, fmt.Errorf("count bookings: %w", err)
	}
	var rows []struct {
		Status string `bson:"_id"`
		N      int64  `bson:"n"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	out := map[string]int64{}
	for _, r := range rows {
		out[r.Status] = r.N
	}
	return out, nil
}

func (s *MongoStore) ConfirmedRevenue(ctx context.Context, tenant string) (map[string]int64, error) {
	cur, err := s.coll(tenant).Aggregate(ctx, mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"status": models.BookingConfirmed}}},
		{{Key: "$group", Value: bson.M{"_id": "$currency", "total": bson.M{"$sum": "$quote_total"}}}},
	})
	if err != nil {
		return nil, fmt.Errorf("sum revenue: %w", err)
	}
	var rows []struct {
		Currency string `bson:"_id"`
		Total    int64  `bson:"total"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	out := map[string]int64{}
	for _, r := range rows {
		out[r.Currency] = r.Total
	}
	return out, nil
}

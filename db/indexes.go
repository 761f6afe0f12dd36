package db

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func unique(keys bson.D) mongo.IndexModel {
	return mongo.IndexModel{Keys: keys, Options: options.Index().SetUnique(true)}
}

func plain(keys bson.D) mongo.IndexModel {
	return mongo.IndexModel{Keys: keys}
}

var controlIndexes = map[string][]mongo.IndexModel{
	CompaniesCollection: {
		unique(bson.D{{Key: "code", Value: 1}}),
		unique(bson.D{{Key: "tenant_db", Value: 1}}),
	},
	TranslationsCollection: {
		unique(bson.D{{Key: "lang", Value: 1}, {Key: "namespace", Value: 1}, {Key: "key", Value: 1}}),
	},
	IdempotencyCollection: {
		unique(bson.D{{Key: "scope", Value: 1}, {Key: "key", Value: 1}}),
		{Keys: bson.D{{Key: "expires_at", Value: 1}}, Options: options.Index().SetExpireAfterSeconds(0)},
	},
}

var tenantIndexes = map[string][]mongo.IndexModel{
	ShipsCollection:           {unique(bson.D{{Key: "code", Value: 1}})},
	CabinCategoriesCollection: {unique(bson.D{{Key: "ship_id", Value: 1}, {Key: "code", Value: 1}})},
	CabinsCollection: {
		unique(bson.D{{Key: "ship_id", Value: 1}, {Key: "cabin_no", Value: 1}}),
		plain(bson.D{{Key: "ship_id", Value: 1}, {Key: "deck", Value: 1}}),
	},
	CapabilitiesCollection:    {unique(bson.D{{Key: "ship_id", Value: 1}, {Key: "code", Value: 1}})},
	RestaurantsCollection:     {unique(bson.D{{Key: "ship_id", Value: 1}, {Key: "code", Value: 1}})},
	ShoreExcursionsCollection: {unique(bson.D{{Key: "ship_id", Value: 1}, {Key: "code", Value: 1}})},
	ItinerariesCollection:     {unique(bson.D{{Key: "code", Value: 1}})},
	SailingsCollection: {
		unique(bson.D{{Key: "code", Value: 1}}),
		plain(bson.D{{Key: "itinerary_id", Value: 1}, {Key: "start_date", Value: 1}}),
	},
	BookingsCollection: {
		plain(bson.D{{Key: "status", Value: 1}, {Key: "hold_expires_at", Value: 1}}),
		plain(bson.D{{Key: "customer_id", Value: 1}}),
	},
	CustomersCollection:  {unique(bson.D{{Key: "email", Value: 1}})},
	PassengersCollection: {plain(bson.D{{Key: "customer_id", Value: 1}})},
	CustomerBookingsCollection: {
		unique(bson.D{{Key: "booking_id", Value: 1}}),
		plain(bson.D{{Key: "customer_id", Value: 1}, {Key: "updated_at", Value: -1}}),
	},
	StaffUsersCollection:        {unique(bson.D{{Key: "email", Value: 1}})},
	StaffGroupsCollection:       {unique(bson.D{{Key: "code", Value: 1}})},
	GroupMembersCollection:      {unique(bson.D{{Key: "group_id", Value: 1}, {Key: "user_id", Value: 1}})},
	AnnouncementReadsCollection: {unique(bson.D{{Key: "announcement_id", Value: 1}, {Key: "user_id", Value: 1}})},
	AuditCollection:             {plain(bson.D{{Key: "occurred_at", Value: -1}})},
	PriceCategoriesCollection:   {unique(bson.D{{Key: "code", Value: 1}})},
	CategoryPricesCollection: {
		unique(bson.D{
			{Key: "code", Value: 1}, {Key: "price_type", Value: 1}, {Key: "currency", Value: 1},
			{Key: "min_guests", Value: 1}, {Key: "effective_start", Value: 1}, {Key: "effective_end", Value: 1},
		}),
	},
	CruisePricesCollection: {
		unique(bson.D{{Key: "sailing_id", Value: 1}, {Key: "cabin_category_code", Value: 1}, {Key: "price_category_code", Value: 1}}),
	},
	FXRatesCollection: {unique(bson.D{{Key: "base", Value: 1}, {Key: "quote", Value: 1}})},
}

func ensure(ctx context.Context, d *mongo.Database, set map[string][]mongo.IndexModel) error {
	for coll, models := range set {
		if _, err := d.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("indexes %s.%s: %w", d.Name(), coll, err)
		}
	}
	return nil
}

func (m *Mongo) EnsureControlIndexes(ctx context.Context) error {
	return ensure(ctx, m.Control(), controlIndexes)
}

func (m *Mongo) EnsureTenantIndexes(ctx context.Context, tenant string) error {
	return ensure(ctx, m.Tenant(tenant), tenantIndexes)
}

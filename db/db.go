package db

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Control plane collections.
const (
	CompaniesCollection       = "companies"
	CompanySettingsCollection = "company_settings"
	TranslationsCollection    = "translations"
	IdempotencyCollection     = "idempotency_keys"
)

// Tenant collections.
const (
	ShipsCollection             = "ships"
	CabinCategoriesCollection   = "cabin_categories"
	CabinsCollection            = "cabins"
	CapabilitiesCollection      = "capabilities"
	RestaurantsCollection       = "restaurants"
	ShoreExcursionsCollection   = "shore_excursions"
	PortsCollection             = "ports"
	ItinerariesCollection       = "itineraries"
	SailingsCollection          = "sailings"
	BookingsCollection          = "bookings"
	CustomersCollection         = "customers"
	PassengersCollection        = "passengers"
	CustomerBookingsCollection  = "customer_bookings"
	StaffUsersCollection        = "staff_users"
	StaffGroupsCollection       = "staff_groups"
	GroupMembersCollection      = "group_members"
	AnnouncementsCollection     = "announcements"
	AnnouncementReadsCollection = "announcement_reads"
	PreferencesCollection       = "staff_preferences"
	AuditCollection             = "audit_log"
	PricingOverridesCollection  = "pricing_overrides"
	CategoryPricesCollection    = "category_prices"
	PriceCategoriesCollection   = "price_categories"
	CruisePricesCollection      = "cruise_prices"
	FXRatesCollection           = "fx_rates"
)

// Mongo holds the client shared by the control plane and every tenant database.
type Mongo struct {
	Client  *mongo.Client
	control string
}

func Connect(ctx context.Context, uri, controlDB string) (*Mongo, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return &Mongo{Client: client, control: controlDB}, nil
}

func (m *Mongo) Control() *mongo.Database {
	return m.Client.Database(m.control)
}

// Tenant returns the database of one company. name comes from the company record.
func (m *Mongo) Tenant(name string) *mongo.Database {
	return m.Client.Database(name)
}

func (m *Mongo) Disconnect(ctx context.Context) error {
	return m.Client.Disconnect(ctx)
}

func IsDuplicateKey(err error) bool {
	return mongo.IsDuplicateKeyError(err)
}

func IsNoDocuments(err error) bool {
	return err == mongo.ErrNoDocuments
}

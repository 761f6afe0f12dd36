package companies

import (
	"context"
	"fmt"

	"cruiseops/db"
	"cruiseops/models"
	"cruiseops/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store interface {
	InsertCompany(ctx context.Context, c models.Company) error
	ListCompanies(ctx context.Context) ([]models.Company, error)
	// GetCompany and GetSettings return nil when nothing is stored.
	GetCompany(ctx context.Context, id string) (*models.Company, error)
	GetSettings(ctx context.Context, companyID string) (*models.CompanySettings, error)
	SaveSettings(ctx context.Context, s models.CompanySettings) error
}

// MongoStore keeps companies and their settings in the control database.
type MongoStore struct {
	companies *mongo.Collection
	settings  *mongo.Collection
}

func NewMongoStore(m *db.Mongo) *MongoStore {
	return &MongoStore{
		companies: m.Control().Collection(db.CompaniesCollection),
		settings:  m.Control().Collection(db.CompanySettingsCollection),
	}
}

func (s *MongoStore) InsertCompany(ctx context.Context, c models.Company) error {
	_, err := s.companies.InsertOne(ctx, c)
	if db.IsDuplicateKey(err) {
		return utils.Conflict("Company code or tenant database already exists")
	}
	if err != nil {
		return fmt.Errorf("insert company: %w", err)
	}
	return nil
}

func (s *MongoStore) ListCompanies(ctx context.Context) ([]models.Company, error) {
	cur, err := s.companies.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list companies: %w", err)
	}
	out := []models.Company{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *MongoStore) GetCompany(ctx context.Context, id string) (*models.Company, error) {
	var c models.Company
	err := s.companies.FindOne(ctx, bson.M{"_id": id}).Decode(&c)
	if db.IsNoDocuments(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get company: %w", err)
	}
	return &c, nil
}

func (s *MongoStore) GetSettings(ctx context.Context, companyID string) (*models.CompanySettings, error) {
	var cs models.CompanySettings
	err := s.settings.FindOne(ctx, bson.M{"_id": companyID}).Decode(&cs)
	if db.IsNoDocuments(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get company settings: %w", err)
	}
	return &cs, nil
}

func (s *MongoStore) SaveSettings(ctx context.Context, cs models.CompanySettings) error {
	_, err := s.settings.ReplaceOne(ctx, bson.M{"_id": cs.CompanyID}, cs, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("save company settings: %w", err)
	}
	return nil
}

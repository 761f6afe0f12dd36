package pricing

import (
	"context"
	"fmt"
	"time"

	"cruiseops/db"
	"cruiseops/models"
	"cruiseops/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store persists pricing data in the tenant database.
type Store interface {
	GetOverrides(ctx context.Context, tenant, companyID string) (*models.PricingOverrides, error)
	SetOverrideField(ctx context.Context, tenant, companyID, field string, value any) error
	DeleteOverrides(ctx context.Context, tenant, companyID string) (bool, error)

	ListCategoryPrices(ctx context.Context, tenant string) ([]models.CategoryPrice, error)
	UpsertCategoryPrice(ctx context.Context, tenant string, p models.CategoryPrice) error
	DeleteCategoryPrices(ctx context.Context, tenant string) (int64, error)

	ListPriceCategories(ctx context.Context, tenant string) ([]models.PriceCategory, error)
	InsertPriceCategory(ctx context.Context, tenant string, c models.PriceCategory) error
	ReplacePriceCategory(ctx context.Context, tenant string, c models.PriceCategory) error
	SetPriceCategoryOrders(ctx context.Context, tenant string, orders map[string]int, at time.Time) error
	DeletePriceCategory(ctx context.Context, tenant, code string) (bool, error)

	GetCruisePrice(ctx context.Context, tenant, sailingID, cabinCode, priceCode string) (*models.CruisePriceCell, error)
	ListCruisePrices(ctx context.Context, tenant, sailingID string) ([]models.CruisePriceCell, error)
	UpsertCruisePrices(ctx context.Context, tenant string, cells []models.CruisePriceCell) error

	ListFXRates(ctx context.Context, tenant string) ([]models.FXRate, error)
	GetFXRate(ctx context.Context, tenant, base, quote string) (*models.FXRate, error)
	UpsertFXRate(ctx context.Context, tenant string, r models.FXRate) error
	DeleteFXRate(ctx context.Context, tenant, base, quote string) (bool, error)
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

func (s *MongoStore) GetOverrides(ctx context.Context, tenant, companyID string) (*models.PricingOverrides, error) {
	var ov models.PricingOverrides
	err := s.coll(tenant, db.PricingOverridesCollection).FindOne(ctx, bson.M{"_id": companyID}).Decode(&ov)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get overrides: %w", err)
	}
	return &ov, nil
}

// SetOverrideField sets one dotted field of the overrides document, creating it when needed.
func (s *MongoStore) SetOverrideField(ctx context.Context, tenant, companyID, field string, value any) error {
	update := bson.M{"$set": bson.M{field: value, "updated_at": time.Now().UTC()}}
	if value == nil {
		update = bson.M{
			"$unset": bson.M{field: ""},
			"$set":   bson.M{"updated_at": time.Now().UTC()},
		}
	}
	_, err := s.coll(tenant, db.PricingOverridesCollection).UpdateOne(ctx,
		bson.M{"_id": companyID}, update, options.Update().SetUpsert(true))
	return err
}

func (s *MongoStore) DeleteOverrides(ctx context.Context, tenant, companyID string) (bool, error) {
	res, err := s.coll(tenant, db.PricingOverridesCollection).DeleteOne(ctx, bson.M{"_id": companyID})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

var categoryPriceSort = bson.D{
	{Key: "code", Value: 1}, {Key: "price_type", Value: 1}, {Key: "currency", Value: 1},
	{Key: "effective_start", Value: 1}, {Key: "effective_end", Value: 1}, {Key: "min_guests", Value: 1},
}

func (s *MongoStore) ListCategoryPrices(ctx context.Context, tenant string) ([]models.CategoryPrice, error) {
	cur, err := s.coll(tenant, db.CategoryPricesCollection).Find(ctx, bson.M{}, options.Find().SetSort(categoryPriceSort))
	if err != nil {
		return nil, fmt.Errorf("list category prices: %w", err)
	}
	out := []models.CategoryPrice{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *MongoStore) UpsertCategoryPrice(ctx context.Context, tenant string, p models.CategoryPrice) error {
	filter := bson.M{
		"code":            p.Code,
		"price_type":      p.PriceType,
		"currency":        p.Currency,
		"min_guests":      p.MinGuests,
		"effective_start": p.EffectiveStart,
		"effective_end":   p.EffectiveEnd,
	}
	_, err := s.coll(tenant, db.CategoryPricesCollection).ReplaceOne(ctx, filter, p, options.Replace().SetUpsert(true))
	return err
}

func (s *MongoStore) DeleteCategoryPrices(ctx context.Context, tenant string) (int64, error) {
	res, err := s.coll(tenant, db.CategoryPricesCollection).DeleteMany(ctx, bson.M{})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (s *MongoStore) ListPriceCategories(ctx context.Context, tenant string) ([]models.PriceCategory, error) {
	opts := options.Find().SetSort(bson.D{{Key: "order", Value: 1}, {Key: "code", Value: 1}})
	cur, err := s.coll(tenant, db.PriceCategoriesCollection).Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list price categories: %w", err)
	}
	out := []models.PriceCategory{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *MongoStore) InsertPriceCategory(ctx context.Context, tenant string, c models.PriceCategory) error {
	_, err := s.coll(tenant, db.PriceCategoriesCollection).InsertOne(ctx, c)
	if db.IsDuplicateKey(err) {
		return utils.Conflict("Price category code already exists")
	}
	return err
}

func (s *MongoStore) ReplacePriceCategory(ctx context.Context, tenant string, c models.PriceCategory) error {
	res, err := s.coll(tenant, db.PriceCategoriesCollection).ReplaceOne(ctx, bson.M{"code": c.Code}, c)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return utils.NotFound("Price category not found")
	}
	return nil
}

func (s *MongoStore) SetPriceCategoryOrders(ctx context.Context, tenant string, orders map[string]int, at time.Time) error {
	writes := make([]mongo.WriteModel, 0, len(orders))
	for code, order := range orders {
		writes = append(writes, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"code": code}).
			SetUpdate(bson.M{"$set": bson.M{"order": order, "updated_at": at}}))
	}
	if len(writes) == 0 {
		return nil
	}
	_, err := s.coll(tenant, db.PriceCategoriesCollection).BulkWrite(ctx, writes)
	return err
}

// DeletePriceCategory also removes every cruise price cell that uses the category.
func (s *MongoStore) DeletePriceCategory(ctx context.Context, tenant, code string) (bool, error) {
	res, err := s.coll(tenant, db.PriceCategoriesCollection).DeleteOne(ctx, bson.M{"code": code})
	if err != nil {
		return false, err
	}
	if res.DeletedCount == 0 {
		return false, nil
	}
	if _, err := s.coll(tenant, db.CruisePricesCollection).DeleteMany(ctx, bson.M{"price_category_code": code}); err != nil {
		return true, fmt.Errorf("delete cruise prices for %s: %w", code, err)
	}
	return true, nil
}

func (s *MongoStore) GetCruisePrice(ctx context.Context, tenant, sailingID, cabinCode, priceCode string) (*models.CruisePriceCell, error) {
	var cell models.CruisePriceCell
	err := s.coll(tenant, db.CruisePricesCollection).FindOne(ctx, bson.M{
		"sailing_id":          sailingID,
		"cabin_category_code": cabinCode,
		"price_category_code": priceCode,
	}).Decode(&cell)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get cruise price: %w", err)
	}
	return &cell, nil
}

func (s *MongoStore) ListCruisePrices(ctx context.Context, tenant, sailingID string) ([]models.CruisePriceCell, error) {
	opts := options.Find().SetSort(bson.D{
		{Key: "cabin_category_code", Value: 1}, {Key: "price_category_code", Value: 1},
		{Key: "currency", Value: 1}, {Key: "min_guests", Value: 1},
	})
	cur, err := s.coll(tenant, db.CruisePricesCollection).Find(ctx, bson.M{"sailing_id": sailingID}, opts)
	if err != nil {
		return nil, fmt.Errorf("list cruise prices: %w", err)
	}
	out := []models.CruisePriceCell{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *MongoStore) UpsertCruisePrices(ctx context.Context, tenant string, cells []models.CruisePriceCell) error {
	writes := make([]mongo.WriteModel, 0, len(cells))
	for _, c := range cells {
		writes = append(writes, mongo.NewReplaceOneModel().
			SetFilter(bson.M{
				"sailing_id":          c.SailingID,
				"cabin_category_code": c.CabinCategoryCode,
				"price_category_code": c.PriceCategoryCode,
			}).
			SetReplacement(c).
			SetUpsert(true))
	}
	if len(writes) == 0 {
		return nil
	}
	_, err := s.coll(tenant, db.CruisePricesCollection).BulkWrite(ctx, writes, options.BulkWrite().SetOrdered(true))
	return err
}

func (s *MongoStore) ListFXRates(ctx context.Context, tenant string) ([]models.FXRate, error) {
	opts := options.Find().SetSort(bson.D{{Key: "base", Value: 1}, {Key: "quote", Value: 1}})
	cur, err := s.coll(tenant, db.FXRatesCollection).Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list fx rates: %w", err)
	}
	out := []models.FXRate{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *MongoStore) GetFXRate(ctx context.Context, tenant, base, quote string) (*models.FXRate, error) {
	var r models.FXRate
	err := s.coll(tenant, db.FXRatesCollection).FindOne(ctx, bson.M{"base": base, "quote": quote}).Decode(&r)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get fx rate: %w", err)
	}
	return &r, nil
}

func (s *MongoStore) UpsertFXRate(ctx context.Context, tenant string, r models.FXRate) error {
	_, err := s.coll(tenant, db.FXRatesCollection).ReplaceOne(ctx,
		bson.M{"base": r.Base, "quote": r.Quote}, r, options.Replace().SetUpsert(true))
	return err
}

func (s *MongoStore) DeleteFXRate(ctx context.Context, tenant, base, quote string) (bool, error) {
	res, err := s.coll(tenant, db.FXRatesCollection).DeleteOne(ctx, bson.M{"base": base, "quote": quote})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

package translations

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
	Lang      string
	Namespace string
}

// Store keeps translation rows unique by (lang, namespace, key).
type Store interface {
	List(ctx context.Context, f Filter) ([]models.Translation, error)
	Upsert(ctx context.Context, t models.Translation) error
	// InsertMissing writes t only when no row exists for its triple and reports
	// whether it did.
	InsertMissing(ctx context.Context, t models.Translation) (bool, error)
	Delete(ctx context.Context, lang, namespace, key string) (bool, error)
}

type MongoStore struct {
	c *mongo.Collection
}

func NewMongoStore(m *db.Mongo) *MongoStore {
	return &MongoStore{c: m.Control().Collection(db.TranslationsCollection)}
}

func tripleFilter(lang, namespace, key string) bson.M {
	return bson.M{"lang": lang, "namespace": namespace, "key": key}
}

func (s *MongoStore) List(ctx context.Context, f Filter) ([]models.Translation, error) {
	filter := bson.M{}
	if f.Lang != "" {
		filter["lang"] = f.Lang
	}
	if f.Namespace != "" {
		filter["namespace"] = f.Namespace
	}
	opts := options.Find().SetSort(bson.D{{Key: "lang", Value: 1}, {Key: "namespace", Value: 1}, {Key: "key", Value: 1}})
	return db.FindAll[models.Translation](ctx, s.c, filter, opts)
}

func (s *MongoStore) Upsert(ctx context.Context, t models.Translation) error {
	_, err := s.c.UpdateOne(ctx, tripleFilter(t.Lang, t.Namespace, t.Key),
		bson.M{"$set": bson.M{"value": t.Value, "updated_at": t.UpdatedAt}},
		options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("upsert translation %s/%s/%s: %w", t.Lang, t.Namespace, t.Key, err)
	}
	return nil
}

func (s *MongoStore) InsertMissing(ctx context.Context, t models.Translation) (bool, error) {
	res, err := s.c.UpdateOne(ctx, tripleFilter(t.Lang, t.Namespace, t.Key),
		bson.M{"$setOnInsert": bson.M{"value": t.Value, "updated_at": t.UpdatedAt}},
		options.Update().SetUpsert(true))
	if err != nil {
		return false, fmt.Errorf("seed translation %s/%s/%s: %w", t.Lang, t.Namespace, t.Key, err)
	}
	return res.UpsertedCount > 0, nil
}

func (s *MongoStore) Delete(ctx context.Context, lang, namespace, key string) (bool, error) {
	res, err := s.c.DeleteOne(ctx, tripleFilter(lang, namespace, key))
	if err != nil {
		return false, fmt.Errorf("delete translation: %w", err)
	}
	return res.DeletedCount > 0, nil
}

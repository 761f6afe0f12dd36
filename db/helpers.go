package db

import (
	"context"
	"fmt"

	"cruiseops/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Insert writes doc and maps a unique index violation to a conflict with dupMsg.
func Insert(ctx context.Context, c *mongo.Collection, doc any, dupMsg string) error {
	_, err := c.InsertOne(ctx, doc)
	if IsDuplicateKey(err) {
		return utils.Conflict(dupMsg)
	}
	if err != nil {
		return fmt.Errorf("insert %s: %w", c.Name(), err)
	}
	return nil
}

// FindOne returns nil when nothing matches.
func FindOne[T any](ctx context.Context, c *mongo.Collection, filter any) (*T, error) {
	var out T
	err := c.FindOne(ctx, filter).Decode(&out)
	if IsNoDocuments(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", c.Name(), err)
	}
	return &out, nil
}

// FindAll never returns a nil slice so empty lists encode as [].
func FindAll[T any](ctx context.Context, c *mongo.Collection, filter any, opts ...*options.FindOptions) ([]T, error) {
	cur, err := c.Find(ctx, filter, opts...)
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", c.Name(), err)
	}
	out := []T{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode %s: %w", c.Name(), err)
	}
	return out, nil
}

// Replace overwrites the document with _id id and reports whether it existed.
func Replace(ctx context.Context, c *mongo.Collection, id string, doc any, dupMsg string) (bool, error) {
	res, err := c.ReplaceOne(ctx, bson.M{"_id": id}, doc)
	if IsDuplicateKey(err) {
		return false, utils.Conflict(dupMsg)
	}
	if err != nil {
		return false, fmt.Errorf("replace %s: %w", c.Name(), err)
	}
	return res.MatchedCount > 0, nil
}

// Delete removes the document with _id id and reports whether it existed.
func Delete(ctx context.Context, c *mongo.Collection, id string) (bool, error) {
	res, err := c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, fmt.Errorf("delete %s: %w", c.Name(), err)
	}
	return res.DeletedCount > 0, nil
}

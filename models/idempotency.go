package models

import "time"

type IdempotencyRecord struct {
	Key         string          `bson:"key"`
	Scope       string          `bson:"scope"`
	Method      string          `bson:"method"`
	Path        string          `bson:"path"`
	UserID      string          `bson:"user_id"`
	RequestHash string          `bson:"request_hash"`
	Response    *CachedResponse `bson:"response,omitempty"`
	CreatedAt   time.Time       `bson:"created_at"`
	ExpiresAt   time.Time       `bson:"expires_at"`
}

type CachedResponse struct {
	Status      int    `bson:"status"`
	ContentType string `bson:"content_type"`
	Body        []byte `bson:"body"`
}

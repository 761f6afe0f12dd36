package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"cruiseops/models"
	"cruiseops/rdx"

	"github.com/redis/go-redis/v9"
)

// FeedCap is how many notifications are kept per company.
const FeedCap = 500

// Feed stores the newest notifications of each company.
type Feed interface {
	Add(ctx context.Context, n models.Notification) error
	// List returns up to limit notifications newest first, optionally only those for
	// customerID. limit <= 0 means the whole feed.
	List(ctx context.Context, companyID, customerID string, limit int) ([]models.Notification, error)
}

func filter(items []models.Notification, customerID string, limit int) []models.Notification {
	out := []models.Notification{}
	for _, n := range items {
		if customerID != "" && n.CustomerID != customerID {
			continue
		}
		out = append(out, n)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

type MemoryFeed struct {
	mu    sync.RWMutex
	items map[string][]models.Notification
}

func NewMemoryFeed() *MemoryFeed {
	return &MemoryFeed{items: map[string][]models.Notification{}}
}

func (f *MemoryFeed) Add(_ context.Context, n models.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	list := append([]models.Notification{n}, f.items[n.CompanyID]...)
	if len(list) > FeedCap {
		list = list[:FeedCap]
	}
	f.items[n.CompanyID] = list
	return nil
}

func (f *MemoryFeed) List(_ context.Context, companyID, customerID string, limit int) ([]models.Notification, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return filter(f.items[companyID], customerID, limit), nil
}

// RedisFeed keeps one capped list per company so every API replica sees the same feed.
type RedisFeed struct {
	c      redis.Cmdable
	prefix string
}

func NewRedisFeed(c redis.Cmdable) *RedisFeed {
	return &RedisFeed{c: c, prefix: "notifications:"}
}

func (f *RedisFeed) Add(ctx context.Context, n models.Notification) error {
	raw, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}
	if err := rdx.PushCapped(ctx, f.c, f.prefix+n.CompanyID, raw, FeedCap); err != nil {
		return fmt.Errorf("push notification: %w", err)
	}
	return nil
}

func (f *RedisFeed) List(ctx context.Context, companyID, customerID string, limit int) ([]models.Notification, error) {
	rows, err := rdx.Newest(ctx, f.c, f.prefix+companyID, FeedCap)
	if err != nil {
		return nil, fmt.Errorf("read notifications: %w", err)
	}
	items := make([]models.Notification, 0, len(rows))
	for _, r := range rows {
		var n models.Notification
		if err := json.Unmarshal([]byte(r), &n); err != nil {
			continue
		}
		items = append(items, n)
	}
	return filter(items, customerID, limit), nil
}

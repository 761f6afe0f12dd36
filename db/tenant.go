package db

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"cruiseops/models"
	"cruiseops/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

var nonTenantChars = regexp.MustCompile(`[^a-z0-9_]+`)

// TenantNameFromCode derives the tenant database name for a company code.
func TenantNameFromCode(code string) (string, error) {
	s := nonTenantChars.ReplaceAllString(strings.ToLower(strings.TrimSpace(code)), "_")
	s = strings.Trim(s, "_")
	if s == "" {
		return "", utils.Invalid("Invalid company code")
	}
	return "tenant_" + s, nil
}

// Resolver maps company ids to tenant databases and caches the answer for the
// life of the process.
type Resolver struct {
	coll  *mongo.Collection
	mu    sync.RWMutex
	cache map[string]string
}

func NewResolver(m *Mongo) *Resolver {
	return &Resolver{
		coll:  m.Control().Collection(CompaniesCollection),
		cache: make(map[string]string),
	}
}

func (r *Resolver) TenantDB(ctx context.Context, companyID string) (string, error) {
	r.mu.RLock()
	t, ok := r.cache[companyID]
	r.mu.RUnlock()
	if ok {
		return t, nil
	}

	var c models.Company
	err := r.coll.FindOne(ctx, bson.M{"_id": companyID}).Decode(&c)
	if err == mongo.ErrNoDocuments {
		return "", utils.Invalid("Unknown company_id")
	}
	if err != nil {
		return "", fmt.Errorf("resolve tenant: %w", err)
	}

	r.mu.Lock()
	r.cache[companyID] = c.TenantDB
	r.mu.Unlock()
	return c.TenantDB, nil
}

// Tenants lists every company with its tenant database, for background workers.
func (r *Resolver) Tenants(ctx context.Context) ([]models.TenantRef, error) {
	cur, err := r.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("list tenants: %w", err)
	}
	var companies []models.Company
	if err := cur.All(ctx, &companies); err != nil {
		return nil, fmt.Errorf("decode tenants: %w", err)
	}
	out := make([]models.TenantRef, 0, len(companies))
	for _, c := range companies {
		out = append(out, models.TenantRef{CompanyID: c.ID, TenantDB: c.TenantDB})
	}
	return out, nil
}

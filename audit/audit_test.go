package audit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"cruiseops/globals"
	"cruiseops/middleware"
	"cruiseops/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	entries map[string][]models.AuditEntry
	filter  Filter
}

func (m *memStore) Insert(_ context.Context, tenant string, e models.AuditEntry) error {
	if m.entries == nil {
		m.entries = map[string][]models.AuditEntry{}
	}
	m.entries[tenant] = append(m.entries[tenant], e)
	return nil
}

func (m *memStore) List(_ context.Context, tenant string, f Filter) ([]models.AuditEntry, error) {
	m.filter = f
	return m.entries[tenant], nil
}

func staffCtx() context.Context {
	ctx := context.WithValue(context.Background(), globals.UserIDKey, "u-7")
	ctx = context.WithValue(ctx, globals.RoleKey, globals.RoleStaff)
	return middleware.WithTenant(ctx, "c1", "tenant_aurora")
}

func TestRecordCapturesActor(t *testing.T) {
	store := &memStore{}
	l := New(store, nil)
	fixed := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return fixed }

	l.Record(staffCtx(), "ship.create", "ship", "s1", map[string]any{"code": "AUR"})
	l.Record(context.Background(), "ship.create", "ship", "s2", nil)

	require.Len(t, store.entries["tenant_aurora"], 1)
	e := store.entries["tenant_aurora"][0]
	assert.Equal(t, "u-7", e.ActorUserID)
	assert.Equal(t, globals.RoleStaff, e.ActorRole)
	assert.Equal(t, "ship", e.EntityType)
	assert.Equal(t, fixed, e.OccurredAt)
	assert.NotEmpty(t, e.ID)
}

func TestListLimitBounds(t *testing.T) {
	store := &memStore{}
	l := New(store, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/audit?limit=501", nil).WithContext(staffCtx())
	rec := httptest.NewRecorder()
	l.List(rec, req, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/audit?entity_type=ship&action=ship.create&limit=20", nil).WithContext(staffCtx())
	rec = httptest.NewRecorder()
	l.List(rec, req, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, Filter{EntityType: "ship", Action: "ship.create", Limit: 20}, store.filter)
	assert.JSONEq(t, `{"items":null}`, rec.Body.String())
}

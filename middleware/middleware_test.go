package middleware

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"cruiseops/globals"
	"cruiseops/models"
	"cruiseops/utils"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func okHandler(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	p := PrincipalFrom(r.Context())
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"sub": p.UserID, "role": p.Role, "tenant": TenantFrom(r.Context())})
}

func TestRequireRoles(t *testing.T) {
	auth := NewAuth("test-secret")
	h := auth.Require(globals.ManageRoles, okHandler)

	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/", nil), nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"Missing bearer token"}`, rec.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	rec = httptest.NewRecorder()
	h(rec, req, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	guest, err := auth.IssueToken("u1", globals.RoleGuest, "", time.Hour)
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+guest)
	rec = httptest.NewRecorder()
	h(rec, req, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	staff, err := auth.IssueToken("u2", globals.RoleStaff, "", time.Hour)
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+staff)
	rec = httptest.NewRecorder()
	h(rec, req, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"sub":"u2"`)
}

func TestExpiredAndForeignTokens(t *testing.T) {
	auth := NewAuth("test-secret")
	auth.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	old, err := auth.IssueToken("u1", globals.RoleAdmin, "", time.Hour)
	require.NoError(t, err)

	_, err = NewAuth("test-secret").ParseToken(old)
	assert.Error(t, err)

	other, err := NewAuth("other-secret").IssueToken("u1", globals.RoleAdmin, "", time.Hour)
	require.NoError(t, err)
	_, err = auth.ParseToken(other)
	assert.Error(t, err)

	_, err = auth.IssueToken("u1", "captain", "", time.Hour)
	assert.Equal(t, http.StatusBadRequest, utils.Status(err))
}

type mapResolver map[string]string

func (m mapResolver) TenantDB(_ context.Context, companyID string) (string, error) {
	if t, ok := m[companyID]; ok {
		return t, nil
	}
	return "", utils.Invalid("Unknown company_id")
}

func TestTenant(t *testing.T) {
	auth := NewAuth("test-secret")
	res := mapResolver{"c1": "tenant_aurora", "c2": "tenant_boreal"}
	h := auth.Authenticate(Tenant(res, okHandler))

	pinned, err := auth.IssueToken("u1", globals.RoleStaff, "c1", time.Hour)
	require.NoError(t, err)

	do := func(company string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+pinned)
		if company != "" {
			req.Header.Set(globals.CompanyHeader, company)
		}
		rec := httptest.NewRecorder()
		h(rec, req, nil)
		return rec
	}

	rec := do("")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"Missing X-Company-Id header"}`, rec.Body.String())

	rec = do("nope")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"Unknown company_id"}`, rec.Body.String())
	assert.Equal(t, http.StatusForbidden, do("c2").Code)

	rec = do("c1")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"tenant":"tenant_aurora"`)
}

func TestTenantUnknownCompanyWinsOverPin(t *testing.T) {
	auth := NewAuth("test-secret")
	h := auth.Authenticate(Tenant(mapResolver{"c1": "tenant_aurora"}, okHandler))

	for _, role := range []string{globals.RoleStaff, globals.RoleAdmin} {
		tok, err := auth.IssueToken("u1", role, "c1", time.Hour)
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+tok)
		req.Header.Set(globals.CompanyHeader, "ghost")
		rec := httptest.NewRecorder()
		h(rec, req, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, role)
		assert.JSONEq(t, `{"error":"Unknown company_id"}`, rec.Body.String(), role)
	}
}

type memIdempotency struct {
	mu   sync.Mutex
	recs map[string]models.IdempotencyRecord
}

func newMemIdempotency() *memIdempotency {
	return &memIdempotency{recs: map[string]models.IdempotencyRecord{}}
}

func (m *memIdempotency) Insert(_ context.Context, rec models.IdempotencyRecord) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := rec.Scope + "/" + rec.Key
	if _, ok := m.recs[k]; ok {
		return false, nil
	}
	m.recs[k] = rec
	return true, nil
}

func (m *memIdempotency) Find(_ context.Context, scope, key string) (models.IdempotencyRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.recs[scope+"/"+key]
	if !ok {
		return rec, utils.NotFound("missing")
	}
	return rec, nil
}

func (m *memIdempotency) SaveResponse(_ context.Context, scope, key string, resp models.CachedResponse) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec := m.recs[scope+"/"+key]
	rec.Response = &resp
	m.recs[scope+"/"+key] = rec
	return nil
}

func (m *memIdempotency) Release(_ context.Context, scope, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.recs, scope+"/"+key)
	return nil
}

func TestIdempotentReplaysAndConflicts(t *testing.T) {
	store := newMemIdempotency()
	calls := 0
	h := Idempotent(store, func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		calls++
		utils.RespondWithJSON(w, http.StatusCreated, utils.M{"call": calls})
	})

	post := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/holds", strings.NewReader(body))
		req.Header.Set(IdempotencyHeader, "k-1")
		req = req.WithContext(WithTenant(req.Context(), "c1", "tenant_aurora"))
		rec := httptest.NewRecorder()
		h(rec, req, nil)
		return rec
	}

	first := post(`{"sailing_id":"s1"}`)
	assert.Equal(t, http.StatusCreated, first.Code)

	replay := post(`{"sailing_id":"s1"}`)
	assert.Equal(t, http.StatusCreated, replay.Code)
	assert.Equal(t, first.Body.String(), replay.Body.String())
	assert.Equal(t, "true", replay.Header().Get("Idempotent-Replayed"))
	assert.Equal(t, 1, calls)

	conflict := post(`{"sailing_id":"s2"}`)
	assert.Equal(t, http.StatusConflict, conflict.Code)
	assert.Equal(t, 1, calls)
}

func TestIdempotentReleasesServerErrors(t *testing.T) {
	store := newMemIdempotency()
	fail := true
	h := Idempotent(store, func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		if fail {
			utils.RespondWithErr(w, fmt.Errorf("boom"))
			return
		}
		utils.RespondWithJSON(w, http.StatusOK, utils.M{"ok": true})
	})

	send := func() int {
		req := httptest.NewRequest(http.MethodPost, "/api/bookings/b1/confirm", strings.NewReader(`{}`))
		req.Header.Set(IdempotencyHeader, "k-2")
		rec := httptest.NewRecorder()
		h(rec, req, nil)
		return rec.Code
	}

	assert.Equal(t, http.StatusInternalServerError, send())
	fail = false
	assert.Equal(t, http.StatusOK, send())
}

func TestIdempotentRejectsOversizedBody(t *testing.T) {
	store := newMemIdempotency()
	called := false
	h := Idempotent(store, func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		called = true
		utils.RespondWithJSON(w, http.StatusOK, utils.M{"ok": true})
	})

	body := `{"note":"` + strings.Repeat("x", maxIdempotentBody) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/api/bookings", strings.NewReader(body))
	req.Header.Set(IdempotencyHeader, "k-big")
	rec := httptest.NewRecorder()
	h(rec, req, nil)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.JSONEq(t, `{"error":"request body too large"}`, rec.Body.String())
	assert.False(t, called)
	assert.Empty(t, store.recs)

	// A body exactly at the limit still goes through.
	req = httptest.NewRequest(http.MethodPost, "/api/bookings", strings.NewReader(strings.Repeat(" ", maxIdempotentBody)))
	req.Header.Set(IdempotencyHeader, "k-edge")
	rec = httptest.NewRecorder()
	h(rec, req, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, called)
}

func TestRecoverAndChain(t *testing.T) {
	var order []string
	mw := func(name string) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}
	panicky := http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("kaboom") })
	h := Chain(panicky, mw("outer"), Recover(zap.NewNop()), mw("inner"))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, []string{"outer", "inner"}, order)
}

func TestSecurityHeadersAndAccessLog(t *testing.T) {
	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}), AccessLog(zap.NewNop()), SecurityHeaders)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
}

func TestTenantFromQueryOnUpgrade(t *testing.T) {
	h := Tenant(mapResolver{"c1": "tenant_aurora"}, okHandler)

	req := httptest.NewRequest(http.MethodGet, "/api/notifications/ws?company_id=c1", nil)
	rec := httptest.NewRecorder()
	h(rec, req, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req.Header.Set("Connection", "Upgrade")
	req.Header.Set("Upgrade", "websocket")
	rec = httptest.NewRecorder()
	h(rec, req, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"tenant":"tenant_aurora"`)
}

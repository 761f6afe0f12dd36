package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"cruiseops/globals"
	"cruiseops/middleware"
	"cruiseops/models"
	"cruiseops/utils"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUsers map[string]models.StaffUser

func (f fakeUsers) Authenticate(_ context.Context, tenant, email, password string) (models.StaffUser, error) {
	u, ok := f[tenant+"/"+email]
	if !ok || password != "s3cret-pass" {
		return models.StaffUser{}, utils.Unauthorized("Invalid email or password")
	}
	if u.Disabled {
		return models.StaffUser{}, utils.Forbidden("User is disabled")
	}
	return u, nil
}

func TestLogin(t *testing.T) {
	issuer := middleware.NewAuth("test-secret")
	users := fakeUsers{
		"tenant_aurora/ana@example.com": {ID: "u1", Role: globals.RoleStaff},
		"tenant_aurora/off@example.com": {ID: "u2", Role: globals.RoleAgent, Disabled: true},
	}
	h := NewHandler(users, issuer)
	router := httprouter.New()
	router.POST("/api/auth/login", h.Login)

	do := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(body))
		req = req.WithContext(middleware.WithTenant(req.Context(), "c1", "tenant_aurora"))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	rec := do(`{"email":"ana@example.com","password":"s3cret-pass"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp TokenResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "bearer", resp.TokenType)
	assert.Equal(t, globals.RoleStaff, resp.Role)

	claims, err := issuer.ParseToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.Subject)
	assert.Equal(t, "c1", claims.CompanyID)

	assert.Equal(t, http.StatusUnauthorized, do(`{"email":"ana@example.com","password":"nope"}`).Code)
	assert.Equal(t, http.StatusForbidden, do(`{"email":"off@example.com","password":"s3cret-pass"}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(`{"email":"ana@example.com"}`).Code)
}

func TestDevToken(t *testing.T) {
	issuer := middleware.NewAuth("test-secret")
	h := NewHandler(fakeUsers{}, issuer)

	do := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/dev/token", strings.NewReader(body))
		rec := httptest.NewRecorder()
		h.DevToken(rec, req, nil)
		return rec
	}

	rec := do("")
	require.Equal(t, http.StatusOK, rec.Code)
	var resp TokenResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, globals.RoleGuest, resp.Role)
	assert.Equal(t, 3600, resp.ExpiresIn)
	claims, err := issuer.ParseToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "dev-user", claims.Subject)

	rec = do(`{"sub":"ops","role":"Admin"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"role":"admin"`)

	assert.Equal(t, http.StatusBadRequest, do(`{"role":"captain"}`).Code)
}

package companies

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"cruiseops/models"
	"cruiseops/utils"

	"github.com/disintegration/imaging"
	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	mu        sync.Mutex
	companies map[string]models.Company
	settings  map[string]models.CompanySettings
	reads     int
}

func newMemStore() *memStore {
	return &memStore{companies: map[string]models.Company{}, settings: map[string]models.CompanySettings{}}
}

func (m *memStore) InsertCompany(_ context.Context, c models.Company) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, x := range m.companies {
		if x.Code == c.Code || x.TenantDB == c.TenantDB {
			return utils.Conflict("Company code or tenant database already exists")
		}
	}
	m.companies[c.ID] = c
	return nil
}

func (m *memStore) ListCompanies(context.Context) ([]models.Company, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Company{}
	for _, c := range m.companies {
		out = append(out, c)
	}
	return out, nil
}

func (m *memStore) GetCompany(_ context.Context, id string) (*models.Company, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.companies[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (m *memStore) GetSettings(_ context.Context, id string) (*models.CompanySettings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reads++
	cs, ok := m.settings[id]
	if !ok {
		return nil, nil
	}
	return &cs, nil
}

func (m *memStore) SaveSettings(_ context.Context, cs models.CompanySettings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings[cs.CompanyID] = cs
	return nil
}

type memCache struct {
	mu   sync.Mutex
	vals map[string]string
	ttls map[string]time.Duration
}

func newMemCache() *memCache {
	return &memCache{vals: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (c *memCache) Get(_ context.Context, key string) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.vals[key]
	return v, ok, nil
}

func (c *memCache) Set(_ context.Context, key, value string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals[key] = value
	c.ttls[key] = ttl
	return nil
}

func (c *memCache) Del(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.vals, key)
	return nil
}

type indexRecorder struct{ tenants []string }

func (r *indexRecorder) EnsureTenantIndexes(_ context.Context, tenant string) error {
	r.tenants = append(r.tenants, tenant)
	return nil
}

func TestCreateCompany(t *testing.T) {
	idx := &indexRecorder{}
	svc := NewService(newMemStore(), idx, nil, t.TempDir(), nil)
	ctx := context.Background()

	c, err := svc.Create(ctx, CreateInput{Name: "Aurora Lines", Code: "Aurora-Lines!"})
	require.NoError(t, err)
	assert.Equal(t, "tenant_aurora_lines", c.TenantDB)
	assert.NotEmpty(t, c.ID)
	assert.Equal(t, []string{"tenant_aurora_lines"}, idx.tenants)

	_, err = svc.Create(ctx, CreateInput{Name: "Dup", Code: "Aurora-Lines!"})
	assert.Equal(t, http.StatusConflict, utils.Status(err))
	_, err = svc.Create(ctx, CreateInput{Name: "Bad", Code: "!!!"})
	assert.Equal(t, http.StatusBadRequest, utils.Status(err))
	_, err = svc.Create(ctx, CreateInput{Code: "x"})
	assert.Equal(t, http.StatusBadRequest, utils.Status(err))

	_, err = svc.Get(ctx, "missing")
	assert.Equal(t, "Company not found", err.Error())
}

func TestCreateCompanyRejectsCollidingTenantDB(t *testing.T) {
	idx := &indexRecorder{}
	svc := NewService(newMemStore(), idx, nil, t.TempDir(), nil)
	ctx := context.Background()

	first, err := svc.Create(ctx, CreateInput{Name: "Acme", Code: "Acme"})
	require.NoError(t, err)
	require.Equal(t, "tenant_acme", first.TenantDB)

	// Distinct codes that normalize to the same tenant database.
	for _, code := range []string{"acme", "ACME", " Acme "} {
		_, err = svc.Create(ctx, CreateInput{Name: "Other", Code: code})
		assert.Equal(t, http.StatusConflict, utils.Status(err), code)
	}
	first1, err := svc.Create(ctx, CreateInput{Name: "Acme One", Code: "acme-1"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, CreateInput{Name: "Acme Underscore", Code: "acme_1"})
	assert.Equal(t, http.StatusConflict, utils.Status(err))

	list, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)
	assert.Equal(t, "tenant_acme_1", first1.TenantDB)
	assert.Equal(t, []string{"tenant_acme", "tenant_acme_1"}, idx.tenants)
}

func TestSettingsAndDefaultCurrency(t *testing.T) {
	store := newMemStore()
	cache := newMemCache()
	svc := NewService(store, nil, cache, t.TempDir(), nil)
	ctx := context.Background()
	c, err := svc.Create(ctx, CreateInput{ID: "c1", Name: "Aurora", Code: "aurora"})
	require.NoError(t, err)

	cs, err := svc.Settings(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{}, cs.Branding)
	assert.Equal(t, map[string]any{}, cs.Localization)

	assert.Equal(t, "", svc.DefaultCurrency(ctx, "c1"))
	assert.Equal(t, currencyTTL, cache.ttls["currency:c1"])

	_, err = svc.UpdateSettings(ctx, "c1", SettingsInput{Localization: map[string]any{"default_currency": "eur"}})
	require.NoError(t, err)
	assert.Equal(t, "EUR", svc.DefaultCurrency(ctx, "c1"))

	reads := store.reads
	assert.Equal(t, "EUR", svc.DefaultCurrency(ctx, "c1"))
	assert.Equal(t, reads, store.reads, "second lookup is served from the cache")

	_, err = svc.UpdateSettings(ctx, "c1", SettingsInput{Branding: map[string]any{"primary": "#003366"}})
	require.NoError(t, err)
	cs, err = svc.Settings(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "#003366", cs.Branding["primary"])
	assert.Equal(t, "EUR", cs.Localization["default_currency"], "sections not sent are kept")

	_, err = svc.UpdateSettings(ctx, "c1", SettingsInput{Localization: map[string]any{"default_currency": "euro"}})
	assert.Equal(t, http.StatusBadRequest, utils.Status(err))
	_, err = svc.UpdateSettings(ctx, "nope", SettingsInput{})
	assert.Equal(t, http.StatusNotFound, utils.Status(err))
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestUploadLogo(t *testing.T) {
	dir := t.TempDir()
	svc := NewService(newMemStore(), nil, nil, dir, nil)
	_, err := svc.Create(context.Background(), CreateInput{ID: "c1", Name: "Aurora", Code: "aurora"})
	require.NoError(t, err)
	h := NewHandler(svc)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "logo.png")
	require.NoError(t, err)
	_, err = part.Write(pngBytes(t, 600, 200))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/companies/c1/logo", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	h.UploadLogo(rec, req, httprouter.Params{{Key: "id", Value: "c1"}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"logo_url":"/static/uploads/logos/c1.png"}`, rec.Body.String())

	img, err := imaging.Open(filepath.Join(dir, "logos", "c1.png"))
	require.NoError(t, err)
	assert.Equal(t, 300, img.Bounds().Dx())
	assert.Equal(t, 100, img.Bounds().Dy())

	cs, err := svc.Settings(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, "/static/uploads/logos/c1.png", cs.Branding["logo_url"])

	_, err = svc.SaveLogo(context.Background(), "c1", bytes.NewReader([]byte("not an image")))
	assert.Equal(t, http.StatusBadRequest, utils.Status(err))
	_, statErr := os.Stat(filepath.Join(dir, "logos"))
	assert.NoError(t, statErr)
}

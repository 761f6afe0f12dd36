package translations

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"cruiseops/models"
	"cruiseops/utils"

	"github.com/google/go-cmp/cmp"
	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type memStore struct {
	mu   sync.Mutex
	rows map[string]models.Translation
}

func newMemStore() *memStore {
	return &memStore{rows: map[string]models.Translation{}}
}

func rowKey(lang, ns, key string) string { return lang + "|" + ns + "|" + key }

func (m *memStore) List(_ context.Context, f Filter) ([]models.Translation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Translation{}
	for _, r := range m.rows {
		if (f.Lang == "" || r.Lang == f.Lang) && (f.Namespace == "" || r.Namespace == f.Namespace) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memStore) Upsert(_ context.Context, t models.Translation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[rowKey(t.Lang, t.Namespace, t.Key)] = t
	return nil
}

func (m *memStore) InsertMissing(_ context.Context, t models.Translation) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := rowKey(t.Lang, t.Namespace, t.Key)
	if _, ok := m.rows[k]; ok {
		return false, nil
	}
	m.rows[k] = t
	return true, nil
}

func (m *memStore) Delete(_ context.Context, lang, ns, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := rowKey(lang, ns, key)
	_, ok := m.rows[k]
	delete(m.rows, k)
	return ok, nil
}

func (m *memStore) value(lang, ns, key string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rows[rowKey(lang, ns, key)].Value
}

func TestUnflatten(t *testing.T) {
	got := Unflatten(map[string]string{
		"app.title":             "Cruise Management",
		"nav":                   "scalar first",
		"nav.sailings":          "Sailings",
		"nav.menu.open":         "Open",
		"translations_page.key": "Key",
		"plain":                 "x",
	})
	want := map[string]any{
		"app":               map[string]any{"title": "Cruise Management"},
		"nav":               map[string]any{"sailings": "Sailings", "menu": map[string]any{"open": "Open"}},
		"translations_page": map[string]any{"key": "Key"},
		"plain":             "x",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Unflatten mismatch (-want +got):\n%s", diff)
	}
}

func TestUpsertAndDelete(t *testing.T) {
	st := newMemStore()
	s := NewService(st)
	ctx := context.Background()

	row, err := s.Upsert(ctx, models.Translation{Lang: " EN ", Key: "nav.fleet", Value: "Fleet"})
	require.NoError(t, err)
	assert.Equal(t, "en", row.Lang)
	assert.Equal(t, DefaultNamespace, row.Namespace)

	_, err = s.Upsert(ctx, models.Translation{Lang: "en", Key: "nav..fleet"})
	assert.Equal(t, http.StatusBadRequest, utils.Status(err))
	_, err = s.Upsert(ctx, models.Translation{Key: "x"})
	assert.Equal(t, http.StatusBadRequest, utils.Status(err))

	require.NoError(t, s.Delete(ctx, "en", DefaultNamespace, "nav.fleet"))
	assert.Equal(t, http.StatusNotFound, utils.Status(s.Delete(ctx, "en", DefaultNamespace, "nav.fleet")))
}

func TestSeedKeepsEdits(t *testing.T) {
	st := newMemStore()
	s := NewService(st)
	ctx := context.Background()

	_, err := s.Upsert(ctx, models.Translation{Lang: "en", Key: "app.title", Value: "Fleet Desk"})
	require.NoError(t, err)

	n, err := s.Seed(ctx)
	require.NoError(t, err)
	assert.Positive(t, n)
	assert.Equal(t, "Fleet Desk", st.value("en", DefaultNamespace, "app.title"))
	assert.Equal(t, "ניהול הפלגות", st.value("he", DefaultNamespace, "app.title"))

	again, err := s.Seed(ctx)
	require.NoError(t, err)
	assert.Zero(t, again)

	b, err := s.Bundle(ctx, "en", "translations_page")
	require.NoError(t, err)
	assert.Equal(t, "Namespace", b["namespace"])
}

func TestLoadRejectsBadYAML(t *testing.T) {
	s := NewService(newMemStore())
	_, err := s.Load(context.Background(), []byte("en: [1, 2"), true)
	assert.Equal(t, http.StatusBadRequest, utils.Status(err))
}

func TestWatcherReloadsChangedFiles(t *testing.T) {
	dir := t.TempDir()
	st := newMemStore()
	w := NewWatcher(NewService(st), dir, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	path := filepath.Join(dir, "ops.yaml")
	require.NoError(t, os.WriteFile(path, []byte("en:\n  ops:\n    greeting: Ahoy\n"), 0o644))
	require.Eventually(t, func() bool { return st.value("en", "ops", "greeting") == "Ahoy" }, 5*time.Second, 20*time.Millisecond)

	require.NoError(t, os.WriteFile(path, []byte("en:\n  ops:\n    greeting: Welcome aboard\n"), 0o644))
	require.Eventually(t, func() bool { return st.value("en", "ops", "greeting") == "Welcome aboard" }, 5*time.Second, 20*time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644))

	cancel()
	require.NoError(t, <-done)
}

func TestHandlers(t *testing.T) {
	s := NewService(newMemStore())
	h := NewHandler(s)
	router := httprouter.New()
	router.PUT("/api/translations", h.Upsert)
	router.GET("/api/translations", h.List)
	router.DELETE("/api/translations/:lang/:namespace/:key", h.Delete)
	router.GET("/api/translations/bundle/:lang/:namespace", h.Bundle)

	do := func(method, path, body string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(method, path, strings.NewReader(body)))
		return rec
	}

	rec := do(http.MethodPut, "/api/translations", `{"lang":"de","namespace":"translation","key":"nav.ports","value":"Häfen"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(http.MethodGet, "/api/translations/bundle/de/translation", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"nav":{"ports":"Häfen"}}`, rec.Body.String())

	rec = do(http.MethodGet, "/api/translations?lang=de", "")
	assert.Contains(t, rec.Body.String(), `"key":"nav.ports"`)

	assert.Equal(t, http.StatusNoContent, do(http.MethodDelete, "/api/translations/de/translation/nav.ports", "").Code)
	assert.Equal(t, http.StatusNotFound, do(http.MethodDelete, "/api/translations/de/translation/nav.ports", "").Code)

	rec = do(http.MethodGet, "/api/translations/bundle/de/translation", "")
	assert.JSONEq(t, `{}`, rec.Body.String())
}

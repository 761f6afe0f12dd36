package sailings

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"cruiseops/middleware"
	"cruiseops/models"
	"cruiseops/utils"

	"github.com/google/go-cmp/cmp"
	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tenant = "tenant_aurora"

type memStore struct {
	mu    sync.Mutex
	items []models.Sailing
}

func (m *memStore) Insert(_ context.Context, _ string, s models.Sailing) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, x := range m.items {
		if x.Code == s.Code {
			return utils.Conflict("Sailing code already exists")
		}
	}
	m.items = append(m.items, s)
	return nil
}

func (m *memStore) List(_ context.Context, _ string, f Filter) ([]models.Sailing, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Sailing{}
	for _, s := range m.items {
		if (f.ItineraryID != "" && s.ItineraryID != f.ItineraryID) ||
			(f.Status != "" && s.Status != f.Status) ||
			(f.ShipID != "" && s.ShipID != f.ShipID) {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

func (m *memStore) Get(_ context.Context, _ string, id string) (*models.Sailing, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.items {
		if s.ID == id {
			return &s, nil
		}
	}
	return nil, nil
}

func (m *memStore) Replace(_ context.Context, _ string, s models.Sailing) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.items {
		if m.items[i].ID == s.ID {
			m.items[i] = s
		}
	}
	return nil
}

func (m *memStore) Count(_ context.Context, _ string, status string) (int64, error) {
	all, _ := m.List(context.Background(), "", Filter{Status: status})
	return int64(len(all)), nil
}

type portMap map[string]models.Port

func (p portMap) PortsByCode(_ context.Context, _ string, codes []string) (map[string]models.Port, error) {
	out := map[string]models.Port{}
	for _, c := range codes {
		if port, ok := p[c]; ok {
			out[c] = port
		}
	}
	return out, nil
}

var athens = models.Port{
	Code:      "ATH",
	Names:     map[string]string{"en": "Athens (Piraeus)", "ar": "أثينا (بيرايوس)"},
	Cities:    map[string]string{"en": "Athens", "ar": "أثينا"},
	Countries: map[string]string{"en": "Greece", "ar": "اليونان"},
}

func at(day, hour int) time.Time {
	return time.Date(2025, 1, day, hour, 0, 0, 0, time.UTC)
}

func newTestService() *Service {
	return NewService(&memStore{}, portMap{"ATH": athens})
}

func TestCreateDefaultsAndValidation(t *testing.T) {
	s := newTestService()
	ctx := context.Background()

	sl, err := s.Create(ctx, tenant, CreateInput{
		Code: "S001", ShipID: "ship-1", StartDate: "2025-01-10", EndDate: "2025-01-12",
		PortStops: []PortStopInput{
			{PortCode: "ist", Arrival: at(12, 8), Departure: at(12, 18)},
			{PortCode: "ath", Arrival: at(10, 9), Departure: at(10, 20)},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, models.SailingPlanned, sl.Status)
	assert.Equal(t, "ATH", sl.PortStops[0].PortCode)
	assert.Equal(t, "IST", sl.PortStops[1].PortCode)

	_, err = s.Create(ctx, tenant, CreateInput{Code: "S001", ShipID: "ship-1", StartDate: "2025-01-10", EndDate: "2025-01-12"})
	assert.EqualError(t, err, "Sailing code already exists")

	_, err = s.Create(ctx, tenant, CreateInput{Code: "S002", ShipID: "ship-1", StartDate: "2025-01-10", EndDate: "2025-01-09"})
	assert.Equal(t, http.StatusBadRequest, utils.Status(err))

	_, err = s.Create(ctx, tenant, CreateInput{Code: "S003", ShipID: "ship-1", StartDate: "2025-01-10", EndDate: "2025-01-10", Status: "sold"})
	assert.EqualError(t, err, "status must be one of planned|open|closed|cancelled")

	_, err = s.Get(ctx, tenant, "nope")
	assert.EqualError(t, err, "Sailing not found")
}

func TestPortStopsStaySorted(t *testing.T) {
	s := newTestService()
	ctx := context.Background()
	sl, err := s.Create(ctx, tenant, CreateInput{Code: "S1", ShipID: "ship-1", StartDate: "2025-01-10", EndDate: "2025-01-14"})
	require.NoError(t, err)

	_, err = s.AddPortStop(ctx, tenant, sl.ID, PortStopInput{PortCode: "RHO", Arrival: at(13, 8), Departure: at(13, 17)})
	require.NoError(t, err)
	sl, err = s.AddPortStop(ctx, tenant, sl.ID, PortStopInput{PortCode: "ATH", Arrival: at(10, 8), Departure: at(10, 17)})
	require.NoError(t, err)
	got := []string{sl.PortStops[0].PortCode, sl.PortStops[1].PortCode}
	if diff := cmp.Diff([]string{"ATH", "RHO"}, got); diff != "" {
		t.Errorf("order (-want +got):\n%s", diff)
	}

	_, err = s.AddPortStop(ctx, tenant, sl.ID, PortStopInput{PortCode: "MYK", Arrival: at(11, 8), Departure: at(11, 8)})
	assert.EqualError(t, err, "departure must be after arrival")

	p, ok := OnDay(sl, at(13, 0))
	assert.True(t, ok)
	assert.Equal(t, "RHO", p.PortCode)
	_, ok = OnDay(sl, at(12, 0))
	assert.False(t, ok)
}

func TestLocalizedItinerary(t *testing.T) {
	s := newTestService()
	ctx := context.Background()
	sl, err := s.Create(ctx, tenant, CreateInput{
		Code: "S1", ShipID: "ship-1", StartDate: "2025-01-10", EndDate: "2025-01-12",
		PortStops: []PortStopInput{
			{PortCode: "ATH", Arrival: at(10, 9), Departure: at(10, 20)},
			{PortCode: "XYZ", Arrival: at(12, 8), Departure: at(12, 18)},
		},
	})
	require.NoError(t, err)

	stops, err := s.Itinerary(ctx, tenant, sl.ID, "ar")
	require.NoError(t, err)
	require.Len(t, stops, 2)
	assert.Equal(t, "أثينا (بيرايوس)", stops[0].PortName)
	assert.Equal(t, "أثينا", stops[0].PortCity)
	assert.Equal(t, "اليونان", stops[0].PortCountry)
	assert.Equal(t, "XYZ", stops[1].PortName)
	assert.Empty(t, stops[1].PortCity)

	stops, err = s.Itinerary(ctx, tenant, sl.ID, "de")
	require.NoError(t, err)
	assert.Equal(t, "Athens (Piraeus)", stops[0].PortName)
}

func TestHandlers(t *testing.T) {
	s := newTestService()
	h := NewHandler(s, nil)
	router := httprouter.New()
	router.POST("/api/sailings", h.Create)
	router.GET("/api/sailings", h.List)
	router.PATCH("/api/sailings/:id", h.Patch)

	do := func(method, path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		req = req.WithContext(middleware.WithTenant(req.Context(), "c1", tenant))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	rec := do(http.MethodPost, "/api/sailings", `{"code":"S1","ship_id":"ship-1","itinerary_id":"it-1","start_date":"2025-01-10","end_date":"2025-01-12"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	do(http.MethodPost, "/api/sailings", `{"code":"S2","ship_id":"ship-2","start_date":"2025-02-10","end_date":"2025-02-12","status":"open"}`)

	rec = do(http.MethodGet, "/api/sailings?itinerary_id=it-1", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"code":"S1"`)
	assert.NotContains(t, rec.Body.String(), `"code":"S2"`)

	rec = do(http.MethodGet, "/api/sailings?status=OPEN", "")
	assert.Contains(t, rec.Body.String(), `"code":"S2"`)

	rec = do(http.MethodPatch, "/api/sailings/missing", `{"status":"open"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

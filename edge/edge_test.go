package edge

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"cruiseops/middleware"
	"cruiseops/models"
	"cruiseops/sailings"
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

type fakeSailings []models.Sailing

func (f fakeSailings) List(context.Context, string, sailings.Filter) ([]models.Sailing, error) {
	return f, nil
}

func (f fakeSailings) Get(_ context.Context, _ string, id string) (models.Sailing, error) {
	for _, sl := range f {
		if sl.ID == id {
			return sl, nil
		}
	}
	return models.Sailing{}, utils.NotFound("Sailing not found")
}

type fakeShips []models.Ship

func (f fakeShips) Ships(context.Context, string) ([]models.Ship, error) { return f, nil }

func day(d, h int) time.Time { return time.Date(2025, 6, d, h, 0, 0, 0, time.UTC) }

func newTestService() *Service {
	sls := fakeSailings{
		{ID: "s1", Code: "AEG-1", ShipID: "ship-1", PortStops: []models.PortStop{
			{PortCode: "ATH", PortName: "Athens", Arrival: day(10, 8), Departure: day(10, 18)},
			{PortCode: "RHO", Arrival: day(12, 7), Departure: day(12, 17)},
		}},
		{ID: "s2", Code: "GHOST", ShipID: "ship-gone"},
	}
	s := NewService(sls, fakeShips{{ID: "ship-1", Name: "Aurora", Code: "AUR"}})
	s.now = func() time.Time { return day(12, 6) }
	return s
}

func TestCruisesJoinsShips(t *testing.T) {
	items, err := newTestService().Cruises(context.Background(), "tenant_aurora")
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.NotNil(t, items[0].Ship)
	assert.Equal(t, "Aurora", items[0].Ship.Name)
	assert.Nil(t, items[1].Ship)
}

func TestMobileAgenda(t *testing.T) {
	s := newTestService()
	ctx := context.Background()

	agenda, err := s.MobileAgenda(ctx, "tenant_aurora", "cust-1", "s1")
	require.NoError(t, err)
	want := []AgendaItem{
		{Time: "09:00", Title: "Safety drill", Location: "Main Theater", Kind: "info"},
		{Time: "07:00", Title: "Arrive in RHO", Location: "RHO", Kind: "port"},
		{Time: "19:00", Title: "Dinner seating", Location: "Oceanview Restaurant", Kind: "dining"},
	}
	if diff := cmp.Diff(want, agenda.Items); diff != "" {
		t.Errorf("agenda mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "2025-06-12", agenda.Date)

	s.now = func() time.Time { return day(11, 6) }
	agenda, err = s.MobileAgenda(ctx, "tenant_aurora", "cust-1", "s1")
	require.NoError(t, err)
	assert.Len(t, agenda.Items, 2)

	_, err = s.MobileAgenda(ctx, "tenant_aurora", "", "s1")
	assert.Equal(t, http.StatusBadRequest, utils.Status(err))
	_, err = s.MobileAgenda(ctx, "tenant_aurora", "cust-1", "nope")
	assert.Equal(t, http.StatusNotFound, utils.Status(err))
}

func TestHandlers(t *testing.T) {
	h := NewHandler(newTestService())
	router := httprouter.New()
	router.GET("/v1/cruises", h.Cruises)
	router.GET("/v1/mobile/agenda", h.MobileAgenda)

	get := func(path string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req = req.WithContext(middleware.WithTenant(req.Context(), "c1", "tenant_aurora"))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	rec := get("/v1/cruises")
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Items []Cruise `json:"items"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body.Items, 2)

	assert.Equal(t, http.StatusOK, get("/v1/mobile/agenda?customer_id=cust-1&sailing_id=s1").Code)
	assert.Equal(t, http.StatusBadRequest, get("/v1/mobile/agenda?customer_id=cust-1").Code)
}

package customers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"cruiseops/middleware"
	"cruiseops/models"
	"cruiseops/mq"
	"cruiseops/utils"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const tenant = "tenant_aurora"

type memStore struct {
	mu         sync.Mutex
	customers  []models.Customer
	passengers []models.Passenger
	bookings   map[string]models.CustomerBooking
}

func newMemStore() *memStore {
	return &memStore{bookings: map[string]models.CustomerBooking{}}
}

func (m *memStore) InsertCustomer(_ context.Context, _ string, c models.Customer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, x := range m.customers {
		if x.Email == c.Email {
			return utils.Conflict(dupEmail)
		}
	}
	m.customers = append(m.customers, c)
	return nil
}

func (m *memStore) GetCustomer(_ context.Context, _ string, id string) (*models.Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.customers {
		if c.ID == id {
			return &c, nil
		}
	}
	return nil, nil
}

func (m *memStore) ReplaceCustomer(_ context.Context, _ string, c models.Customer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.customers {
		if m.customers[i].ID != c.ID && m.customers[i].Email == c.Email {
			return utils.Conflict(dupEmail)
		}
	}
	for i := range m.customers {
		if m.customers[i].ID == c.ID {
			m.customers[i] = c
		}
	}
	return nil
}

func (m *memStore) SearchCustomers(_ context.Context, _ string, q string, limit int64) ([]models.Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Customer{}
	for _, c := range m.customers {
		if q == "" || utils.ContainsIgnoreCase(c.Email, q) || utils.ContainsIgnoreCase(c.FirstName, q) || utils.ContainsIgnoreCase(c.LastName, q) {
			out = append(out, c)
		}
		if int64(len(out)) == limit {
			break
		}
	}
	return out, nil
}

func (m *memStore) CountCustomers(context.Context, string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.customers)), nil
}

func (m *memStore) InsertPassenger(_ context.Context, _ string, p models.Passenger) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.passengers = append(m.passengers, p)
	return nil
}

func (m *memStore) ListPassengers(_ context.Context, _ string, customerID string) ([]models.Passenger, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Passenger{}
	for _, p := range m.passengers {
		if p.CustomerID == customerID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memStore) GetPassenger(_ context.Context, _ string, id string) (*models.Passenger, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.passengers {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, nil
}

func (m *memStore) ReplacePassenger(_ context.Context, _ string, p models.Passenger) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.passengers {
		if m.passengers[i].ID == p.ID {
			m.passengers[i] = p
		}
	}
	return nil
}

func (m *memStore) DeletePassenger(_ context.Context, _ string, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.passengers {
		if m.passengers[i].ID == id {
			m.passengers = append(m.passengers[:i], m.passengers[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) UpsertBooking(_ context.Context, _ string, b models.CustomerBooking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if old, ok := m.bookings[b.BookingID]; ok {
		if b.CustomerID == "" {
			b.CustomerID = old.CustomerID
		}
		if b.SailingID == "" {
			b.SailingID = old.SailingID
		}
	}
	m.bookings[b.BookingID] = b
	return nil
}

func (m *memStore) ListBookings(_ context.Context, _ string, customerID string) ([]models.CustomerBooking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.CustomerBooking{}
	for _, b := range m.bookings {
		if b.CustomerID == customerID {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

var clock = time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)

func newTestService() (*Service, *memStore) {
	st := newMemStore()
	s := NewService(st)
	s.now = func() time.Time { return clock }
	return s, st
}

func ptr[T any](v T) *T { return &v }

func TestCreateCustomer(t *testing.T) {
	s, _ := newTestService()
	ctx := context.Background()

	c, err := s.Create(ctx, tenant, CustomerInput{Email: "  Jane.Doe@Example.COM ", FirstName: "Jane", LoyaltyTier: "gold"})
	require.NoError(t, err)
	assert.Equal(t, "jane.doe@example.com", c.Email)
	assert.Equal(t, "GOLD", c.LoyaltyTier)
	assert.Equal(t, map[string]any{}, c.Preferences)
	assert.Equal(t, clock, c.CreatedAt)

	_, err = s.Create(ctx, tenant, CustomerInput{Email: "jane.doe@example.com"})
	assert.Equal(t, http.StatusConflict, utils.Status(err))
	assert.EqualError(t, err, "Customer email already exists")

	_, err = s.Create(ctx, tenant, CustomerInput{Email: "not-an-email"})
	assert.Equal(t, http.StatusBadRequest, utils.Status(err))
	_, err = s.Create(ctx, tenant, CustomerInput{Email: "a@b.co", BirthDate: "1990-13-01"})
	assert.EqualError(t, err, "birth_date must be YYYY-MM-DD")

	_, err = s.Get(ctx, tenant, "missing")
	assert.EqualError(t, err, "Customer not found")
}

func TestPatchCustomer(t *testing.T) {
	s, _ := newTestService()
	ctx := context.Background()
	c, err := s.Create(ctx, tenant, CustomerInput{Email: "a@example.com", FirstName: "Ann", Preferences: map[string]any{"dining": "late"}})
	require.NoError(t, err)
	_, err = s.Create(ctx, tenant, CustomerInput{Email: "b@example.com"})
	require.NoError(t, err)

	got, err := s.Patch(ctx, tenant, c.ID, CustomerPatch{LastName: ptr(" Smith "), Phone: ptr("+30 210 000")})
	require.NoError(t, err)
	assert.Equal(t, "Ann", got.FirstName)
	assert.Equal(t, "Smith", got.LastName)
	assert.Equal(t, map[string]any{"dining": "late"}, got.Preferences)

	_, err = s.Patch(ctx, tenant, c.ID, CustomerPatch{Email: ptr("B@example.com")})
	assert.Equal(t, http.StatusConflict, utils.Status(err))
}

func TestSearchLimits(t *testing.T) {
	s, _ := newTestService()
	ctx := context.Background()
	for _, e := range []string{"anna@x.io", "annie@x.io", "bob@x.io"} {
		_, err := s.Create(ctx, tenant, CustomerInput{Email: e})
		require.NoError(t, err)
	}
	got, err := s.Search(ctx, tenant, "ann", 0)
	require.NoError(t, err)
	assert.Len(t, got, 2)
	got, err = s.Search(ctx, tenant, "", 1)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestPassengers(t *testing.T) {
	s, _ := newTestService()
	ctx := context.Background()
	c, err := s.Create(ctx, tenant, CustomerInput{Email: "a@example.com"})
	require.NoError(t, err)
	other, err := s.Create(ctx, tenant, CustomerInput{Email: "b@example.com"})
	require.NoError(t, err)

	p, err := s.AddPassenger(ctx, tenant, c.ID, PassengerInput{FirstName: ptr("Leo"), LastName: ptr("Doe"), Paxtype: ptr("CHILD"), Nationality: ptr("gr")})
	require.NoError(t, err)
	assert.Equal(t, "child", p.Paxtype)
	assert.Equal(t, "GR", p.Nationality)

	_, err = s.AddPassenger(ctx, tenant, c.ID, PassengerInput{FirstName: ptr("X")})
	assert.EqualError(t, err, "first_name and last_name are required")
	_, err = s.AddPassenger(ctx, tenant, c.ID, PassengerInput{FirstName: ptr("X"), LastName: ptr("Y"), Paxtype: ptr("pet")})
	assert.Equal(t, http.StatusBadRequest, utils.Status(err))
	_, err = s.AddPassenger(ctx, tenant, "nobody", PassengerInput{FirstName: ptr("X"), LastName: ptr("Y")})
	assert.Equal(t, http.StatusNotFound, utils.Status(err))

	p, err = s.PatchPassenger(ctx, tenant, c.ID, p.ID, PassengerInput{PassportNo: ptr("P123")})
	require.NoError(t, err)
	assert.Equal(t, "P123", p.PassportNo)
	assert.Equal(t, "child", p.Paxtype)

	_, err = s.PatchPassenger(ctx, tenant, other.ID, p.ID, PassengerInput{})
	assert.EqualError(t, err, "Passenger not found")

	require.NoError(t, s.DeletePassenger(ctx, tenant, c.ID, p.ID))
	list, err := s.Passengers(ctx, tenant, c.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

type staticResolver map[string]string

func (r staticResolver) TenantDB(_ context.Context, companyID string) (string, error) {
	if t, ok := r[companyID]; ok {
		return t, nil
	}
	return "", utils.Invalid("Unknown company_id")
}

func TestConsumerProjectsBookingHistory(t *testing.T) {
	s, st := newTestService()
	bus := mq.NewMemoryBus(zap.NewNop())
	c := NewConsumer(s, staticResolver{"c1": tenant}, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx, bus) }()
	require.Eventually(t, func() bool { return bus.Subscribers() == 1 }, time.Second, 5*time.Millisecond)

	t0 := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
	pub := func(typ string, at time.Time, data map[string]any) {
		require.NoError(t, bus.Publish(context.Background(), mq.Event{Type: typ, CompanyID: "c1", Time: at, Data: data}))
	}
	pub(mq.BookingHeld, t0, map[string]any{"booking_id": "b1", "customer_id": "cust-1", "sailing_id": "s1"})
	pub(mq.BookingHeld, t0.Add(time.Minute), map[string]any{"booking_id": "b2", "customer_id": "cust-1", "sailing_id": "s2"})
	pub(mq.BookingConfirmed, t0.Add(2*time.Minute), map[string]any{"booking_id": "b1", "customer_id": "cust-1"})
	pub(mq.BookingCancelled, t0, map[string]any{"booking_id": "b9", "customer_id": "cust-1"})
	pub(mq.BookingHeld, t0, map[string]any{"customer_id": "cust-1"})
	pub(mq.BookingHeld, t0, map[string]any{"booking_id": "bx"})
	require.NoError(t, bus.Publish(context.Background(), mq.Event{Type: mq.BookingHeld, CompanyID: "ghost", Data: map[string]any{"booking_id": "g1"}}))

	require.Eventually(t, func() bool {
		st.mu.Lock()
		defer st.mu.Unlock()
		_, ok := st.bookings["bx"]
		return ok
	}, time.Second, 5*time.Millisecond)
	cancel()
	require.NoError(t, <-done)

	rows, err := s.Bookings(context.Background(), tenant, "cust-1")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "b1", rows[0].BookingID)
	assert.Equal(t, "confirmed", rows[0].Status)
	assert.Equal(t, "s1", rows[0].SailingID)
	assert.Equal(t, "b2", rows[1].BookingID)
	assert.Equal(t, "cancelled", rows[2].Status)
	assert.NotContains(t, st.bookings, "g1")
}

func TestHandlers(t *testing.T) {
	s, _ := newTestService()
	h := NewHandler(s, nil)
	router := httprouter.New()
	router.POST("/api/customers", h.Create)
	router.GET("/api/customers", h.Search)
	router.DELETE("/api/customers/:id/passengers/:passengerId", h.DeletePassenger)

	do := func(method, path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		req = req.WithContext(middleware.WithTenant(req.Context(), "c1", tenant))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	rec := do(http.MethodPost, "/api/customers", `{"email":"x@example.com"}`)
	assert.Equal(t, http.StatusCreated, rec.Code)
	rec = do(http.MethodPost, "/api/customers", `{"email":"X@example.com"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(http.MethodGet, "/api/customers?q=x@&limit=5", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"email":"x@example.com"`)
	rec = do(http.MethodGet, "/api/customers?limit=zero", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(http.MethodDelete, "/api/customers/none/passengers/p1", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

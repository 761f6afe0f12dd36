package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"cruiseops/globals"
	"cruiseops/middleware"
	"cruiseops/models"
	"cruiseops/mq"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type recordingPush struct {
	mu   sync.Mutex
	msgs map[string][][]byte
}

func (p *recordingPush) Broadcast(room string, data []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.msgs[room] = append(p.msgs[room], data)
}

func (p *recordingPush) count(room string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.msgs[room])
}

func TestFromEvent(t *testing.T) {
	n, ok := FromEvent(mq.Event{Type: mq.BookingHeld, CompanyID: "c1", Data: map[string]any{
		"booking_id": "b1", "customer_id": "cust-1", "hold_expires_at": "2025-05-01T10:15:00Z",
	}})
	require.True(t, ok)
	assert.Equal(t, KindBookingHeld, n.Kind)
	assert.Equal(t, "Booking b1 held until 2025-05-01T10:15:00Z", n.Message)
	assert.Equal(t, "cust-1", n.CustomerID)

	n, ok = FromEvent(mq.Event{Type: mq.BookingConfirmed, Data: map[string]any{"booking_id": "b1"}})
	require.True(t, ok)
	assert.Equal(t, "Booking b1 confirmed.", n.Message)

	n, ok = FromEvent(mq.Event{Type: mq.BookingCancelled, Data: map[string]any{"booking_id": "b2"}})
	require.True(t, ok)
	assert.Equal(t, KindBookingCancelled, n.Kind)
	assert.Equal(t, "Booking b2 cancelled.", n.Message)

	_, ok = FromEvent(mq.Event{Type: "booking.audited"})
	assert.False(t, ok)
}

func TestMemoryFeedCapsAndFilters(t *testing.T) {
	f := NewMemoryFeed()
	ctx := context.Background()
	for i := 0; i < FeedCap+20; i++ {
		cust := "cust-a"
		if i%2 == 1 {
			cust = "cust-b"
		}
		require.NoError(t, f.Add(ctx, models.Notification{ID: fmt.Sprint(i), CompanyID: "c1", CustomerID: cust}))
	}
	require.NoError(t, f.Add(ctx, models.Notification{ID: "other", CompanyID: "c2"}))

	all, err := f.List(ctx, "c1", "", 0)
	require.NoError(t, err)
	require.Len(t, all, FeedCap)
	assert.Equal(t, fmt.Sprint(FeedCap+19), all[0].ID)
	assert.Equal(t, "20", all[FeedCap-1].ID)

	onlyB, err := f.List(ctx, "c1", "cust-b", 3)
	require.NoError(t, err)
	require.Len(t, onlyB, 3)
	for _, n := range onlyB {
		assert.Equal(t, "cust-b", n.CustomerID)
	}

	none, err := f.List(ctx, "c9", "", 0)
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestServiceConsumesBookingEvents(t *testing.T) {
	feed := NewMemoryFeed()
	push := &recordingPush{msgs: map[string][][]byte{}}
	s := NewService(feed, push, zap.NewNop())
	bus := mq.NewMemoryBus(zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx, bus) }()
	require.Eventually(t, func() bool { return bus.Subscribers() == 1 }, time.Second, 5*time.Millisecond)

	pub := func(typ, company string, data map[string]any) {
		require.NoError(t, bus.Publish(context.Background(), mq.Event{Type: typ, CompanyID: company, Data: data}))
	}
	pub(mq.BookingHeld, "c1", map[string]any{"booking_id": "b1", "customer_id": "cust-1", "hold_expires_at": "T"})
	pub(mq.BookingConfirmed, "c1", map[string]any{"booking_id": "b1", "customer_id": "cust-1"})
	pub(mq.BookingHeld, "", map[string]any{"booking_id": "orphan"})
	pub(mq.BookingCancelled, "c2", map[string]any{"booking_id": "b7"})

	require.Eventually(t, func() bool { return push.count("c1") == 2 && push.count("c2") == 1 }, time.Second, 5*time.Millisecond)
	cancel()
	require.NoError(t, <-done)

	items, err := s.List(context.Background(), "c1", "", 0)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, KindBookingConfirmed, items[0].Kind)
	assert.Equal(t, KindBookingHeld, items[1].Kind)
	assert.NotEmpty(t, items[0].ID)

	_, err = s.List(context.Background(), "c1", "", FeedCap+1)
	assert.Error(t, err)
}

func TestHubRegisterBroadcastUnregister(t *testing.T) {
	hub := NewHub(nil)
	go hub.Run()
	defer hub.Stop()

	client := &Client{Send: make(chan []byte, 10), Room: "c1"}
	require.True(t, hub.Register(client))
	other := &Client{Send: make(chan []byte, 10), Room: "c2"}
	require.True(t, hub.Register(other))
	// Register only queues; the run loop applies it asynchronously.
	require.Eventually(t, func() bool { return hub.Clients() == 2 }, time.Second, 5*time.Millisecond)

	data := []byte(`{"kind":"booking_held"}`)
	hub.Broadcast("c1", data)

	select {
	case got := <-client.Send:
		assert.Equal(t, string(data), string(got))
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for message")
	}
	assert.Empty(t, other.Send)

	hub.Unregister(client)
	require.Eventually(t, func() bool { return hub.Clients() == 1 }, time.Second, 5*time.Millisecond)
	_, open := <-client.Send
	assert.False(t, open)

	hub.Stop()
	_, open = <-other.Send
	assert.False(t, open)
	assert.False(t, hub.Register(&Client{Send: make(chan []byte, 1), Room: "c1"}))
	hub.Broadcast("c1", data)
}

func TestWebsocketPush(t *testing.T) {
	hub := NewHub(zap.NewNop())
	go hub.Run()
	s := NewService(NewMemoryFeed(), hub, nil)

	auth := middleware.NewAuth("test-secret")
	bind := func(next httprouter.Handle) httprouter.Handle {
		return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
			next(w, r.WithContext(middleware.WithTenant(r.Context(), "c1", "tenant_aurora")), ps)
		}
	}
	router := httprouter.New()
	router.GET("/api/notifications/ws", auth.Authenticate(bind(hub.ServeWS)))
	router.GET("/api/notifications", auth.Authenticate(bind(NewHandler(s).List)))
	srv := httptest.NewServer(router)
	defer srv.Close()

	token, err := auth.IssueToken("u1", globals.RoleAgent, "c1", time.Hour)
	require.NoError(t, err)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/notifications/ws"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	conn, _, err := websocket.DefaultDialer.Dial(url+"?access_token="+token, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return hub.Clients() == 1 }, time.Second, 5*time.Millisecond)

	require.NoError(t, s.Handle(context.Background(), mq.Event{Type: mq.BookingConfirmed, CompanyID: "c1", Data: map[string]any{"booking_id": "b1"}}))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)
	var got models.Notification
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, "Booking b1 confirmed.", got.Message)

	req := httptest.NewRequest(http.MethodGet, "/api/notifications?limit=5", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"items":[{`)

	req = httptest.NewRequest(http.MethodGet, "/api/notifications?limit=abc", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	hub.Stop()
	_, _, err = conn.ReadMessage()
	assert.Error(t, err)
	require.Eventually(t, func() bool { return hub.Clients() == 0 }, time.Second, 5*time.Millisecond)
}

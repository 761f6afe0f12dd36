package mq

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"cruiseops/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestMemoryBusPatternDelivery(t *testing.T) {
	bus := NewMemoryBus(zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())

	got := make(chan Event, 4)
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = bus.Subscribe(ctx, BookingAll, func(_ context.Context, ev Event) error {
			got <- ev
			return nil
		})
	}()
	require.Eventually(t, func() bool { return bus.Subscribers() == 1 }, time.Second, 5*time.Millisecond)

	require.NoError(t, bus.Publish(ctx, Event{Type: "ship.updated", CompanyID: "c1"}))
	require.NoError(t, bus.Publish(ctx, Event{Type: BookingHeld, CompanyID: "c1", Data: map[string]any{"booking_id": "b1", "total": 1000}}))

	select {
	case ev := <-got:
		assert.Equal(t, BookingHeld, ev.Type)
		assert.Equal(t, "held", ev.Suffix())
		assert.Equal(t, "b1", ev.String("booking_id"))
		// numbers arrive as JSON numbers, as they would over Redis
		assert.Equal(t, float64(1000), ev.Data["total"])
		assert.False(t, ev.Time.IsZero())
	case <-time.After(time.Second):
		t.Fatal("event not delivered")
	}
	assert.Empty(t, got)

	cancel()
	<-done
	assert.Equal(t, 0, bus.Subscribers())
}

type failingPublisher struct{}

func (failingPublisher) Publish(context.Context, Event) error { return errors.New("redis down") }

func TestEmitterStrictness(t *testing.T) {
	ctx := context.Background()

	err := NewEmitter(failingPublisher{}, false, nil).Emit(ctx, "c1", BookingHeld, nil)
	assert.NoError(t, err)

	err = NewEmitter(failingPublisher{}, true, nil).Emit(ctx, "c1", BookingHeld, nil)
	require.Error(t, err)
	assert.Equal(t, http.StatusBadGateway, utils.Status(err))
}

func TestRedisChannelNaming(t *testing.T) {
	b := NewRedisBus(nil, "cruise.events", nil)
	assert.Equal(t, "cruise.events.booking.held", b.Channel(BookingHeld))
	assert.Equal(t, "cruise.events.booking.*", b.Channel(BookingAll))
	assert.True(t, matches(BookingAll, BookingCancelled))
	assert.False(t, matches(BookingAll, "customer.created"))
}

package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"strings"
	"time"

	"cruiseops/utils"

	"go.uber.org/zap"
)

const (
	BookingHeld      = "booking.held"
	BookingConfirmed = "booking.confirmed"
	BookingCancelled = "booking.cancelled"

	// BookingAll matches every booking event.
	BookingAll = "booking.*"
)

type Event struct {
	Type      string         `json:"type"`
	CompanyID string         `json:"company_id"`
	Time      time.Time      `json:"time"`
	Data      map[string]any `json:"data"`
}

// Suffix is the last dotted segment of the type, e.g. "held".
func (e Event) Suffix() string {
	if i := strings.LastIndexByte(e.Type, '.'); i >= 0 {
		return e.Type[i+1:]
	}
	return e.Type
}

func (e Event) String(key string) string {
	v, _ := e.Data[key].(string)
	return v
}

type Handler func(ctx context.Context, ev Event) error

type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

// Subscriber delivers events whose type matches a glob pattern until ctx is done.
type Subscriber interface {
	Subscribe(ctx context.Context, pattern string, h Handler) error
}

type Bus interface {
	Publisher
	Subscriber
}

func encode(ev Event) ([]byte, error) {
	if ev.Time.IsZero() {
		ev.Time = time.Now().UTC()
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("marshal event %s: %w", ev.Type, err)
	}
	return data, nil
}

func decode(payload []byte) (Event, error) {
	var ev Event
	if err := json.Unmarshal(payload, &ev); err != nil {
		return ev, fmt.Errorf("unmarshal event: %w", err)
	}
	return ev, nil
}

func matches(pattern, eventType string) bool {
	ok, err := path.Match(pattern, eventType)
	return err == nil && ok
}

// Emitter publishes domain events. When strict, a failed publish surfaces as an
// upstream error; otherwise it is logged and dropped.
type Emitter struct {
	pub    Publisher
	strict bool
	log    *zap.Logger
}

func NewEmitter(pub Publisher, strict bool, log *zap.Logger) *Emitter {
	if log == nil {
		log = zap.NewNop()
	}
	return &Emitter{pub: pub, strict: strict, log: log}
}

func (e *Emitter) Emit(ctx context.Context, companyID, eventType string, data map[string]any) error {
	ev := Event{Type: eventType, CompanyID: companyID, Time: time.Now().UTC(), Data: data}
	if err := e.pub.Publish(ctx, ev); err != nil {
		if e.strict {
			e.log.Error("publish event", zap.String("type", eventType), zap.Error(err))
			return utils.Upstream("Failed to publish event " + eventType)
		}
		e.log.Warn("publish event (best effort)", zap.String("type", eventType), zap.Error(err))
		return nil
	}
	e.log.Debug("event published", zap.String("type", eventType), zap.String("company_id", companyID))
	return nil
}

package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cruiseops/models"
	"cruiseops/mq"
	"cruiseops/utils"

	"go.uber.org/zap"
)

const (
	KindBookingHeld      = "booking_held"
	KindBookingConfirmed = "booking_confirmed"
	KindBookingCancelled = "booking_cancelled"
)

// Broadcaster pushes a serialized notification to the live connections of a company.
type Broadcaster interface {
	Broadcast(room string, data []byte)
}

type Service struct {
	feed Feed
	push Broadcaster
	log  *zap.Logger
	now  func() time.Time
}

func NewService(feed Feed, push Broadcaster, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{feed: feed, push: push, log: log, now: time.Now}
}

// FromEvent builds the feed entry for a booking event. It reports false for event types
// that do not produce a notification.
func FromEvent(ev mq.Event) (models.Notification, bool) {
	ref := ev.String("booking_id")
	n := models.Notification{
		CompanyID:  ev.CompanyID,
		CustomerID: ev.String("customer_id"),
		BookingID:  ref,
		Data:       ev.Data,
	}
	switch ev.Type {
	case mq.BookingHeld:
		n.Kind = KindBookingHeld
		n.Message = fmt.Sprintf("Booking %s held until %s", ref, ev.String("hold_expires_at"))
	case mq.BookingConfirmed:
		n.Kind = KindBookingConfirmed
		n.Message = fmt.Sprintf("Booking %s confirmed.", ref)
	case mq.BookingCancelled:
		n.Kind = KindBookingCancelled
		n.Message = fmt.Sprintf("Booking %s cancelled.", ref)
	default:
		return n, false
	}
	return n, true
}

// Handle turns a booking event into a notification, stores it and pushes it live.
func (s *Service) Handle(ctx context.Context, ev mq.Event) error {
	n, ok := FromEvent(ev)
	if !ok {
		return nil
	}
	if n.CompanyID == "" {
		s.log.Warn("booking event without company", zap.String("type", ev.Type))
		return nil
	}
	n.ID = utils.NewID()
	n.CreatedAt = s.now().UTC()
	if err := s.feed.Add(ctx, n); err != nil {
		return err
	}
	if s.push != nil {
		raw, err := json.Marshal(n)
		if err != nil {
			return fmt.Errorf("marshal notification: %w", err)
		}
		s.push.Broadcast(n.CompanyID, raw)
	}
	return nil
}

// Run consumes booking events until ctx is cancelled.
func (s *Service) Run(ctx context.Context, sub mq.Subscriber) error {
	return sub.Subscribe(ctx, mq.BookingAll, s.Handle)
}

func (s *Service) List(ctx context.Context, companyID, customerID string, limit int) ([]models.Notification, error) {
	if limit < 0 || limit > FeedCap {
		return nil, utils.Invalid("limit must be between 1 and %d", FeedCap)
	}
	return s.feed.List(ctx, companyID, customerID, limit)
}

// Recent returns the newest n notifications of a company.
func (s *Service) Recent(ctx context.Context, companyID string, n int) ([]models.Notification, error) {
	return s.feed.List(ctx, companyID, "", n)
}

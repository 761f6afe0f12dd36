package customers

import (
	"context"
	"strings"

	"cruiseops/models"
	"cruiseops/mq"

	"go.uber.org/zap"
)

// ApplyBookingEvent upserts the booking history row for a booking.* event. Events
// without a booking_id are ignored.
func (s *Service) ApplyBookingEvent(ctx context.Context, tenant string, ev mq.Event) error {
	id := ev.String("booking_id")
	if id == "" || !strings.HasPrefix(ev.Type, "booking.") {
		return nil
	}
	at := ev.Time
	if at.IsZero() {
		at = s.now()
	}
	meta := ev.Data
	if meta == nil {
		meta = map[string]any{}
	}
	return s.store.UpsertBooking(ctx, tenant, models.CustomerBooking{
		BookingID:  id,
		CustomerID: ev.String("customer_id"),
		SailingID:  ev.String("sailing_id"),
		Status:     ev.Suffix(),
		Meta:       meta,
		UpdatedAt:  at.UTC(),
	})
}

// Bookings lists a customer's booking history, newest first.
func (s *Service) Bookings(ctx context.Context, tenant, customerID string) ([]models.CustomerBooking, error) {
	return s.store.ListBookings(ctx, tenant, customerID)
}

// TenantResolver maps the company on an event to its tenant database.
type TenantResolver interface {
	TenantDB(ctx context.Context, companyID string) (string, error)
}

type Consumer struct {
	svc     *Service
	tenants TenantResolver
	log     *zap.Logger
}

func NewConsumer(svc *Service, tenants TenantResolver, log *zap.Logger) *Consumer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Consumer{svc: svc, tenants: tenants, log: log}
}

// Run projects booking events until ctx is cancelled.
func (c *Consumer) Run(ctx context.Context, sub mq.Subscriber) error {
	return sub.Subscribe(ctx, mq.BookingAll, c.Handle)
}

func (c *Consumer) Handle(ctx context.Context, ev mq.Event) error {
	tenant, err := c.tenants.TenantDB(ctx, ev.CompanyID)
	if err != nil {
		c.log.Warn("booking event for unknown company", zap.String("company_id", ev.CompanyID), zap.Error(err))
		return nil
	}
	if err := c.svc.ApplyBookingEvent(ctx, tenant, ev); err != nil {
		return err
	}
	c.log.Debug("booking history updated", zap.String("type", ev.Type), zap.String("booking_id", ev.String("booking_id")))
	return nil
}

package booking

import (
	"context"
	"errors"
	"slices"
	"strings"
	"time"

	"cruiseops/models"
	"cruiseops/mq"
	"cruiseops/pricing"
	"cruiseops/utils"
)

const (
	defaultHoldMinutes = 15
	minHoldMinutes     = 1
	maxHoldMinutes     = 60

	ReasonHoldExpired = "hold_expired"
)

// Quoter prices a hold request.
type Quoter interface {
	Quote(ctx context.Context, tenant, companyID string, in pricing.QuoteInput) (models.Quote, error)
}

// Emitter publishes booking lifecycle events.
type Emitter interface {
	Emit(ctx context.Context, companyID, eventType string, data map[string]any) error
}

type Service struct {
	store  Store
	quoter Quoter
	events Emitter
	now    func() time.Time
}

func NewService(store Store, quoter Quoter, events Emitter) *Service {
	return &Service{store: store, quoter: quoter, events: events, now: time.Now}
}

type HoldInput struct {
	CustomerID        string              `json:"customer_id"`
	SailingID         string              `json:"sailing_id"`
	SailingDate       string              `json:"sailing_date"`
	CabinType         string              `json:"cabin_type"`
	CabinCategoryCode string              `json:"cabin_category_code"`
	PriceType         string              `json:"price_type"`
	Guests            *models.GuestCounts `json:"guests"`
	CouponCode        string              `json:"coupon_code"`
	LoyaltyTier       string              `json:"loyalty_tier"`
	Currency          string              `json:"currency"`
	HoldMinutes       *int                `json:"hold_minutes"`
}

// View is a booking with its quote summary recomputed from the stored lines.
type View struct {
	models.Booking
	Quote models.Quote `json:"quote"`
}

func NewView(b models.Booking) View {
	q := pricing.Totals(b.Currency, slices.Clone(b.QuoteBreakdown))
	q.Total = b.QuoteTotal
	return View{Booking: b, Quote: q}
}

func clampHold(m *int) int {
	if m == nil {
		return defaultHoldMinutes
	}
	return min(max(*m, minHoldMinutes), maxHoldMinutes)
}

// Hold quotes the request and stores a held booking that expires after the hold window.
func (s *Service) Hold(ctx context.Context, tenant, companyID string, in HoldInput) (View, error) {
	in.SailingID = strings.TrimSpace(in.SailingID)
	if in.SailingID == "" {
		return View{}, utils.Invalid("sailing_id is required")
	}
	cabinType := utils.LowerCode(in.CabinType)
	if cabinType == "" {
		cabinType = "inside"
	}
	guests := models.GuestCounts{Adult: 1}
	if in.Guests != nil {
		guests = *in.Guests
	}
	if guests.Adult < 0 || guests.Child < 0 || guests.Infant < 0 {
		return View{}, utils.Invalid("guest counts must be >= 0")
	}

	pax := make([]pricing.GuestIn, 0, len(guests.Paxtypes()))
	for _, p := range guests.Paxtypes() {
		pax = append(pax, pricing.GuestIn{Paxtype: p})
	}
	q, err := s.quoter.Quote(ctx, tenant, companyID, pricing.QuoteInput{
		SailingID:         in.SailingID,
		SailingDate:       in.SailingDate,
		CabinType:         cabinType,
		CabinCategoryCode: in.CabinCategoryCode,
		PriceType:         in.PriceType,
		Guests:            pax,
		CouponCode:        in.CouponCode,
		LoyaltyTier:       in.LoyaltyTier,
		Currency:          in.Currency,
	})
	if err != nil {
		if utils.Status(err) >= 500 {
			return View{}, err
		}
		return View{}, utils.Invalid("%s", err.Error())
	}

	now := s.now().UTC()
	expires := now.Add(time.Duration(clampHold(in.HoldMinutes)) * time.Minute)
	b := models.Booking{
		ID:                utils.NewID(),
		BookingRef:        utils.GenerateRef(8),
		Status:            models.BookingHeld,
		CustomerID:        strings.TrimSpace(in.CustomerID),
		SailingID:         in.SailingID,
		SailingDate:       strings.TrimSpace(in.SailingDate),
		CabinType:         cabinType,
		CabinCategoryCode: utils.UpperCode(in.CabinCategoryCode),
		PriceType:         utils.LowerCode(in.PriceType),
		Guests:            guests,
		CouponCode:        in.CouponCode,
		LoyaltyTier:       in.LoyaltyTier,
		Currency:          q.Currency,
		QuoteTotal:        q.Total,
		QuoteBreakdown:    q.Lines,
		HoldExpiresAt:     &expires,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := s.store.Insert(ctx, tenant, b); err != nil {
		return View{}, err
	}

	err = s.events.Emit(ctx, companyID, mq.BookingHeld, map[string]any{
		"booking_id":      b.ID,
		"booking_ref":     b.BookingRef,
		"customer_id":     b.CustomerID,
		"sailing_id":      b.SailingID,
		"hold_expires_at": expires.Format(time.RFC3339),
		"total":           b.QuoteTotal,
		"currency":        b.Currency,
	})
	if err != nil {
		return View{}, err
	}
	return NewView(b), nil
}

func (s *Service) Get(ctx context.Context, tenant, id string) (View, error) {
	b, err := s.load(ctx, tenant, id)
	if err != nil {
		return View{}, err
	}
	return NewView(*b), nil
}

func (s *Service) load(ctx context.Context, tenant, id string) (*models.Booking, error) {
	b, err := s.store.Get(ctx, tenant, id)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, utils.NotFound("Booking not found")
	}
	return b, nil
}

func (s *Service) List(ctx context.Context, tenant string, f Filter) ([]View, error) {
	if f.Status != "" && !slices.Contains([]string{models.BookingHeld, models.BookingConfirmed, models.BookingCancelled}, f.Status) {
		return nil, utils.Invalid("status must be one of held|confirmed|cancelled")
	}
	items, err := s.store.List(ctx, tenant, f)
	if err != nil {
		return nil, err
	}
	out := make([]View, 0, len(items))
	for _, b := range items {
		out = append(out, NewView(b))
	}
	return out, nil
}

func (s *Service) eventData(b *models.Booking) map[string]any {
	return map[string]any{
		"booking_id":  b.ID,
		"booking_ref": b.BookingRef,
		"customer_id": b.CustomerID,
		"sailing_id":  b.SailingID,
		"total":       b.QuoteTotal,
		"currency":    b.Currency,
	}
}

// Confirm turns a live hold into a confirmed booking. An expired hold is cancelled
// and reported as a conflict.
func (s *Service) Confirm(ctx context.Context, tenant, companyID, id string) (View, error) {
	b, err := s.load(ctx, tenant, id)
	if err != nil {
		return View{}, err
	}
	if b.Status != models.BookingHeld {
		return View{}, utils.Conflict("Booking is not holdable (status=" + b.Status + ")")
	}

	now := s.now().UTC()
	if b.HoldExpiresAt != nil && b.HoldExpiresAt.Before(now) {
		if _, err := s.expire(ctx, tenant, companyID, b, now); err != nil && !errors.Is(err, utils.ErrUpstream) {
			return View{}, err
		}
		return View{}, utils.Conflict("Hold expired")
	}

	ok, err := s.store.Transition(ctx, tenant, id, []string{models.BookingHeld}, Change{
		Status:    models.BookingConfirmed,
		ClearHold: true,
		At:        now,
	})
	if err != nil {
		return View{}, err
	}
	if !ok {
		return s.conflictAfterRace(ctx, tenant, id)
	}
	b.Status = models.BookingConfirmed
	b.HoldExpiresAt = nil
	b.UpdatedAt = now

	if err := s.events.Emit(ctx, companyID, mq.BookingConfirmed, s.eventData(b)); err != nil {
		return View{}, err
	}
	return NewView(*b), nil
}

func (s *Service) conflictAfterRace(ctx context.Context, tenant, id string) (View, error) {
	cur, err := s.load(ctx, tenant, id)
	if err != nil {
		return View{}, err
	}
	return View{}, utils.Conflict("Booking is not holdable (status=" + cur.Status + ")")
}

// Cancel cancels a held or confirmed booking.
func (s *Service) Cancel(ctx context.Context, tenant, companyID, id, reason string) (View, error) {
	b, err := s.load(ctx, tenant, id)
	if err != nil {
		return View{}, err
	}
	if b.Status == models.BookingCancelled {
		return View{}, utils.Conflict("Booking is already cancelled")
	}
	now := s.now().UTC()
	reason = strings.TrimSpace(reason)
	ok, err := s.store.Transition(ctx, tenant, id, []string{models.BookingHeld, models.BookingConfirmed}, Change{
		Status:       models.BookingCancelled,
		CancelReason: reason,
		ClearHold:    true,
		At:           now,
	})
	if err != nil {
		return View{}, err
	}
	if !ok {
		return View{}, utils.Conflict("Booking is already cancelled")
	}
	b.Status = models.BookingCancelled
	b.CancelReason = reason
	b.HoldExpiresAt = nil
	b.UpdatedAt = now

	data := s.eventData(b)
	if reason != "" {
		data["reason"] = reason
	}
	if err := s.events.Emit(ctx, companyID, mq.BookingCancelled, data); err != nil {
		return View{}, err
	}
	return NewView(*b), nil
}

// expire cancels one expired hold. It reports false when another writer got there first.
func (s *Service) expire(ctx context.Context, tenant, companyID string, b *models.Booking, now time.Time) (bool, error) {
	ok, err := s.store.Transition(ctx, tenant, b.ID, []string{models.BookingHeld}, Change{
		Status:       models.BookingCancelled,
		CancelReason: ReasonHoldExpired,
		ClearHold:    true,
		At:           now,
	})
	if err != nil || !ok {
		return false, err
	}
	b.Status = models.BookingCancelled
	b.CancelReason = ReasonHoldExpired
	data := s.eventData(b)
	data["reason"] = ReasonHoldExpired
	if err := s.events.Emit(context.WithoutCancel(ctx), companyID, mq.BookingCancelled, data); err != nil {
		return true, err
	}
	return true, nil
}

// ExpireHolds cancels every hold in the tenant whose expiry has passed.
func (s *Service) ExpireHolds(ctx context.Context, tenant, companyID string) (int, error) {
	now := s.now().UTC()
	held, err := s.store.ExpiredHolds(ctx, tenant, now)
	if err != nil {
		return 0, err
	}
	n := 0
	for i := range held {
		ok, err := s.expire(ctx, tenant, companyID, &held[i], now)
		if ok {
			n++
		}
		if err != nil {
			return n, err
		}
	}
	return n, nil
}

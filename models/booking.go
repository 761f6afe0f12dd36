package models

import "time"

const (
	BookingHeld      = "held"
	BookingConfirmed = "confirmed"
	BookingCancelled = "cancelled"
)

type GuestCounts struct {
	Adult  int `json:"adult" bson:"adult"`
	Child  int `json:"child" bson:"child"`
	Infant int `json:"infant" bson:"infant"`
}

// Paxtypes expands the counts into one entry per guest, adults first.
func (g GuestCounts) Paxtypes() []string {
	out := make([]string, 0, g.Adult+g.Child+g.Infant)
	for i := 0; i < g.Adult; i++ {
		out = append(out, PaxAdult)
	}
	for i := 0; i < g.Child; i++ {
		out = append(out, PaxChild)
	}
	for i := 0; i < g.Infant; i++ {
		out = append(out, PaxInfant)
	}
	return out
}

type Booking struct {
	ID                string      `json:"id" bson:"_id"`
	BookingRef        string      `json:"booking_ref" bson:"booking_ref"`
	Status            string      `json:"status" bson:"status"`
	CustomerID        string      `json:"customer_id,omitempty" bson:"customer_id,omitempty"`
	SailingID         string      `json:"sailing_id" bson:"sailing_id"`
	SailingDate       string      `json:"sailing_date,omitempty" bson:"sailing_date,omitempty"`
	CabinType         string      `json:"cabin_type" bson:"cabin_type"`
	CabinCategoryCode string      `json:"cabin_category_code,omitempty" bson:"cabin_category_code,omitempty"`
	PriceType         string      `json:"price_type,omitempty" bson:"price_type,omitempty"`
	Guests            GuestCounts `json:"guests" bson:"guests"`
	CouponCode        string      `json:"coupon_code,omitempty" bson:"coupon_code,omitempty"`
	LoyaltyTier       string      `json:"loyalty_tier,omitempty" bson:"loyalty_tier,omitempty"`
	Currency          string      `json:"currency" bson:"currency"`
	QuoteTotal        int64       `json:"quote_total" bson:"quote_total"`
	QuoteBreakdown    []QuoteLine `json:"quote_breakdown" bson:"quote_breakdown"`
	HoldExpiresAt     *time.Time  `json:"hold_expires_at" bson:"hold_expires_at"`
	CancelReason      string      `json:"cancel_reason,omitempty" bson:"cancel_reason,omitempty"`
	CreatedAt         time.Time   `json:"created_at" bson:"created_at"`
	UpdatedAt         time.Time   `json:"updated_at" bson:"updated_at"`
}

package models

import "time"

const (
	PaxAdult  = "adult"
	PaxChild  = "child"
	PaxInfant = "infant"
)

var Paxtypes = []string{PaxAdult, PaxChild, PaxInfant}

var CabinTypes = []string{"inside", "oceanview", "balcony", "suite"}

type QuoteLine struct {
	Code        string `json:"code" bson:"code"`
	Description string `json:"description" bson:"description"`
	Amount      int64  `json:"amount" bson:"amount"`
}

type Quote struct {
	Currency  string      `json:"currency"`
	Subtotal  int64       `json:"subtotal"`
	Discounts int64       `json:"discounts"`
	TaxesFees int64       `json:"taxes_fees"`
	Total     int64       `json:"total"`
	Lines     []QuoteLine `json:"lines"`
}

// CategoryPrice is a negotiated per-person fare for a cabin category. Empty effective
// dates leave that side of the window open.
type CategoryPrice struct {
	Code           string    `json:"category_code" bson:"code"`
	PriceType      string    `json:"price_type" bson:"price_type"`
	Currency       string    `json:"currency" bson:"currency"`
	MinGuests      int       `json:"min_guests" bson:"min_guests"`
	PricePerPerson int64     `json:"price_per_person" bson:"price_per_person"`
	EffectiveStart string    `json:"effective_start_date,omitempty" bson:"effective_start"`
	EffectiveEnd   string    `json:"effective_end_date,omitempty" bson:"effective_end"`
	UpdatedAt      time.Time `json:"updated_at" bson:"updated_at"`
}

type PricingOverrides struct {
	CompanyID        string             `json:"company_id" bson:"_id"`
	BaseByPax        map[string]int64   `json:"base_by_pax,omitempty" bson:"base_by_pax,omitempty"`
	CabinMultiplier  map[string]float64 `json:"cabin_multiplier,omitempty" bson:"cabin_multiplier,omitempty"`
	DemandMultiplier *float64           `json:"demand_multiplier,omitempty" bson:"demand_multiplier,omitempty"`
	CategoryPrices   []CategoryPrice    `json:"category_prices,omitempty" bson:"-"`
	UpdatedAt        time.Time          `json:"updated_at" bson:"updated_at"`
}

type PriceCategory struct {
	Code                  string            `json:"code" bson:"code"`
	Active                bool              `json:"active" bson:"active"`
	Order                 int               `json:"order" bson:"order"`
	EnabledChannels       []string          `json:"enabled_channels" bson:"enabled_channels"`
	RoomSelectionIncluded bool              `json:"room_selection_included" bson:"room_selection_included"`
	RoomCategoryOnly      bool              `json:"room_category_only" bson:"room_category_only"`
	NameI18n              map[string]string `json:"name_i18n" bson:"name_i18n"`
	DescriptionI18n       map[string]string `json:"description_i18n" bson:"description_i18n"`
	CreatedAt             time.Time         `json:"created_at" bson:"created_at"`
	UpdatedAt             time.Time         `json:"updated_at" bson:"updated_at"`
}

// CruisePriceCell is one entry of a sailing's price table.
type CruisePriceCell struct {
	SailingID         string    `json:"sailing_id" bson:"sailing_id"`
	CabinCategoryCode string    `json:"cabin_category_code" bson:"cabin_category_code"`
	PriceCategoryCode string    `json:"price_category_code" bson:"price_category_code"`
	Currency          string    `json:"currency" bson:"currency"`
	MinGuests         int       `json:"min_guests" bson:"min_guests"`
	PricePerPerson    int64     `json:"price_per_person" bson:"price_per_person"`
	UpdatedAt         time.Time `json:"updated_at" bson:"updated_at"`
}

type FXRate struct {
	Base      string    `json:"base" bson:"base"`
	Quote     string    `json:"quote" bson:"quote"`
	Rate      float64   `json:"rate" bson:"rate"`
	AsOf      string    `json:"as_of,omitempty" bson:"as_of,omitempty"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

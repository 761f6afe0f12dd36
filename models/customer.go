package models

import "time"

type Address struct {
	Line1      string `json:"line1,omitempty" bson:"line1,omitempty"`
	Line2      string `json:"line2,omitempty" bson:"line2,omitempty"`
	City       string `json:"city,omitempty" bson:"city,omitempty"`
	State      string `json:"state,omitempty" bson:"state,omitempty"`
	PostalCode string `json:"postal_code,omitempty" bson:"postal_code,omitempty"`
	Country    string `json:"country,omitempty" bson:"country,omitempty"`
}

type Customer struct {
	ID              string         `json:"id" bson:"_id"`
	Email           string         `json:"email" bson:"email"`
	Title           string         `json:"title,omitempty" bson:"title,omitempty"`
	FirstName       string         `json:"first_name,omitempty" bson:"first_name,omitempty"`
	LastName        string         `json:"last_name,omitempty" bson:"last_name,omitempty"`
	BirthDate       string         `json:"birth_date,omitempty" bson:"birth_date,omitempty"`
	LoyaltyTier     string         `json:"loyalty_tier,omitempty" bson:"loyalty_tier,omitempty"`
	Phone           string         `json:"phone,omitempty" bson:"phone,omitempty"`
	Address         *Address       `json:"address,omitempty" bson:"address,omitempty"`
	NationalID      string         `json:"national_id,omitempty" bson:"national_id,omitempty"`
	PassportNo      string         `json:"passport_no,omitempty" bson:"passport_no,omitempty"`
	PassportExpiry  string         `json:"passport_expiry,omitempty" bson:"passport_expiry,omitempty"`
	PassportCountry string         `json:"passport_country,omitempty" bson:"passport_country,omitempty"`
	Preferences     map[string]any `json:"preferences" bson:"preferences"`
	CreatedAt       time.Time      `json:"created_at" bson:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at" bson:"updated_at"`
}

type Passenger struct {
	ID          string    `json:"id" bson:"_id"`
	CustomerID  string    `json:"customer_id" bson:"customer_id"`
	FirstName   string    `json:"first_name" bson:"first_name"`
	LastName    string    `json:"last_name" bson:"last_name"`
	BirthDate   string    `json:"birth_date,omitempty" bson:"birth_date,omitempty"`
	Paxtype     string    `json:"paxtype" bson:"paxtype"`
	PassportNo  string    `json:"passport_no,omitempty" bson:"passport_no,omitempty"`
	Nationality string    `json:"nationality,omitempty" bson:"nationality,omitempty"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" bson:"updated_at"`
}

// CustomerBooking is the booking history row projected from booking events.
type CustomerBooking struct {
	BookingID  string         `json:"booking_id" bson:"booking_id"`
	CustomerID string         `json:"customer_id" bson:"customer_id"`
	SailingID  string         `json:"sailing_id,omitempty" bson:"sailing_id,omitempty"`
	Status     string         `json:"status" bson:"status"`
	Meta       map[string]any `json:"meta" bson:"meta"`
	UpdatedAt  time.Time      `json:"updated_at" bson:"updated_at"`
}

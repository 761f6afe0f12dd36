package models

import "time"

const (
	ShipActive      = "active"
	ShipInactive    = "inactive"
	ShipMaintenance = "maintenance"
)

type Ship struct {
	ID                 string              `json:"id" bson:"_id"`
	Name               string              `json:"name" bson:"name"`
	Code               string              `json:"code" bson:"code"`
	Operator           string              `json:"operator,omitempty" bson:"operator,omitempty"`
	Decks              int                 `json:"decks" bson:"decks"`
	Status             string              `json:"status" bson:"status"`
	Amenities          []Amenity           `json:"amenities" bson:"amenities"`
	MaintenanceRecords []MaintenanceRecord `json:"maintenance_records" bson:"maintenance_records"`
	CreatedAt          time.Time           `json:"created_at" bson:"created_at"`
}

type Amenity struct {
	ID          string `json:"id" bson:"id"`
	Name        string `json:"name" bson:"name"`
	Category    string `json:"category,omitempty" bson:"category,omitempty"`
	Description string `json:"description,omitempty" bson:"description,omitempty"`
}

type MaintenanceRecord struct {
	ID         string    `json:"id" bson:"id"`
	Summary    string    `json:"summary" bson:"summary"`
	Severity   string    `json:"severity" bson:"severity"`
	RecordedAt time.Time `json:"recorded_at" bson:"recorded_at"`
}

type CabinCategory struct {
	ID           string         `json:"id" bson:"_id"`
	ShipID       string         `json:"ship_id" bson:"ship_id"`
	Code         string         `json:"code" bson:"code"`
	Name         string         `json:"name" bson:"name"`
	View         string         `json:"view,omitempty" bson:"view,omitempty"`
	CabinClass   string         `json:"cabin_class,omitempty" bson:"cabin_class,omitempty"`
	MaxOccupancy int            `json:"max_occupancy" bson:"max_occupancy"`
	Meta         map[string]any `json:"meta,omitempty" bson:"meta,omitempty"`
}

type Cabin struct {
	ID          string         `json:"id" bson:"_id"`
	ShipID      string         `json:"ship_id" bson:"ship_id"`
	CategoryID  string         `json:"category_id" bson:"category_id"`
	CabinNo     string         `json:"cabin_no" bson:"cabin_no"`
	Deck        int            `json:"deck" bson:"deck"`
	Status      string         `json:"status" bson:"status"`
	Accessories []string       `json:"accessories" bson:"accessories"`
	Meta        map[string]any `json:"meta,omitempty" bson:"meta,omitempty"`
}

type Capability struct {
	ID          string         `json:"id" bson:"_id"`
	ShipID      string         `json:"ship_id" bson:"ship_id"`
	Code        string         `json:"code" bson:"code"`
	Name        string         `json:"name" bson:"name"`
	Category    string         `json:"category,omitempty" bson:"category,omitempty"`
	Description string         `json:"description,omitempty" bson:"description,omitempty"`
	Meta        map[string]any `json:"meta,omitempty" bson:"meta,omitempty"`
}

type Restaurant struct {
	ID                  string         `json:"id" bson:"_id"`
	ShipID              string         `json:"ship_id" bson:"ship_id"`
	Code                string         `json:"code" bson:"code"`
	Name                string         `json:"name" bson:"name"`
	Cuisine             string         `json:"cuisine,omitempty" bson:"cuisine,omitempty"`
	Deck                int            `json:"deck" bson:"deck"`
	Included            bool           `json:"included" bson:"included"`
	ReservationRequired bool           `json:"reservation_required" bson:"reservation_required"`
	Description         string         `json:"description,omitempty" bson:"description,omitempty"`
	CapabilityCodes     []string       `json:"capability_codes" bson:"capability_codes"`
	Meta                map[string]any `json:"meta,omitempty" bson:"meta,omitempty"`
}

type ShoreExcursion struct {
	ID              string         `json:"id" bson:"_id"`
	ShipID          string         `json:"ship_id" bson:"ship_id"`
	Code            string         `json:"code" bson:"code"`
	Title           string         `json:"title" bson:"title"`
	PortCode        string         `json:"port_code,omitempty" bson:"port_code,omitempty"`
	DurationMinutes int            `json:"duration_minutes" bson:"duration_minutes"`
	Active          bool           `json:"active" bson:"active"`
	Description     string         `json:"description,omitempty" bson:"description,omitempty"`
	CapabilityCodes []string       `json:"capability_codes" bson:"capability_codes"`
	Meta            map[string]any `json:"meta,omitempty" bson:"meta,omitempty"`
	Prices          []ShorexPrice  `json:"prices" bson:"prices"`
}

type ShorexPrice struct {
	Currency   string `json:"currency" bson:"currency"`
	Paxtype    string `json:"paxtype" bson:"paxtype"`
	PriceCents int64  `json:"price_cents" bson:"price_cents"`
}

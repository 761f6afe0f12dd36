package models

import "time"

const (
	SailingPlanned   = "planned"
	SailingOpen      = "open"
	SailingClosed    = "closed"
	SailingCancelled = "cancelled"
)

var SailingStatuses = []string{SailingPlanned, SailingOpen, SailingClosed, SailingCancelled}

type Sailing struct {
	ID             string     `json:"id" bson:"_id"`
	Code           string     `json:"code" bson:"code"`
	ShipID         string     `json:"ship_id" bson:"ship_id"`
	ItineraryID    string     `json:"itinerary_id,omitempty" bson:"itinerary_id,omitempty"`
	StartDate      string     `json:"start_date" bson:"start_date"`
	EndDate        string     `json:"end_date" bson:"end_date"`
	EmbarkPortCode string     `json:"embark_port_code,omitempty" bson:"embark_port_code,omitempty"`
	DebarkPortCode string     `json:"debark_port_code,omitempty" bson:"debark_port_code,omitempty"`
	Status         string     `json:"status" bson:"status"`
	PortStops      []PortStop `json:"port_stops" bson:"port_stops"`
	CreatedAt      time.Time  `json:"created_at" bson:"created_at"`
}

type PortStop struct {
	PortCode  string    `json:"port_code" bson:"port_code"`
	PortName  string    `json:"port_name,omitempty" bson:"port_name,omitempty"`
	Arrival   time.Time `json:"arrival" bson:"arrival"`
	Departure time.Time `json:"departure" bson:"departure"`
}

package models

import "time"

const (
	StopPort = "port"
	StopSea  = "sea"
)

// Port is keyed by its upper-case code. Names, cities and countries are keyed by language.
type Port struct {
	Code      string            `json:"code" bson:"_id"`
	Names     map[string]string `json:"names" bson:"names"`
	Cities    map[string]string `json:"cities" bson:"cities"`
	Countries map[string]string `json:"countries" bson:"countries"`
	UpdatedAt time.Time         `json:"updated_at" bson:"updated_at"`
}

type Itinerary struct {
	ID          string            `json:"id" bson:"_id"`
	Code        string            `json:"code" bson:"code"`
	Titles      map[string]string `json:"titles" bson:"titles"`
	MapImageURL string            `json:"map_image_url,omitempty" bson:"map_image_url,omitempty"`
	Stops       []ItineraryStop   `json:"stops" bson:"stops"`
	CreatedAt   time.Time         `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at" bson:"updated_at"`
}

type ItineraryStop struct {
	DayOffset     int               `json:"day_offset" bson:"day_offset"`
	Kind          string            `json:"kind" bson:"kind"`
	ImageURL      string            `json:"image_url,omitempty" bson:"image_url,omitempty"`
	PortCode      string            `json:"port_code,omitempty" bson:"port_code,omitempty"`
	PortName      string            `json:"port_name,omitempty" bson:"port_name,omitempty"`
	ArrivalTime   string            `json:"arrival_time,omitempty" bson:"arrival_time,omitempty"`
	DepartureTime string            `json:"departure_time,omitempty" bson:"departure_time,omitempty"`
	Labels        map[string]string `json:"labels,omitempty" bson:"labels,omitempty"`
}

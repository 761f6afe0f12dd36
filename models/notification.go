package models

import "time"

type Notification struct {
	ID         string         `json:"id"`
	CompanyID  string         `json:"company_id"`
	Kind       string         `json:"kind"`
	Message    string         `json:"message"`
	CustomerID string         `json:"customer_id,omitempty"`
	BookingID  string         `json:"booking_id,omitempty"`
	Data       map[string]any `json:"data,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}

type Translation struct {
	Lang      string    `json:"lang" bson:"lang" yaml:"lang"`
	Namespace string    `json:"namespace" bson:"namespace" yaml:"namespace"`
	Key       string    `json:"key" bson:"key" yaml:"key"`
	Value     string    `json:"value" bson:"value" yaml:"value"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at" yaml:"-"`
}

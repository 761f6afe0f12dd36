package models

import "time"

type Company struct {
	ID        string    `json:"id" bson:"_id"`
	Name      string    `json:"name" bson:"name"`
	Code      string    `json:"code" bson:"code"`
	TenantDB  string    `json:"tenant_db" bson:"tenant_db"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

// TenantRef pairs a company with its tenant database.
type TenantRef struct {
	CompanyID string
	TenantDB  string
}

type CompanySettings struct {
	CompanyID    string         `json:"company_id" bson:"_id"`
	Branding     map[string]any `json:"branding" bson:"branding"`
	Localization map[string]any `json:"localization" bson:"localization"`
	CreatedAt    time.Time      `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at" bson:"updated_at"`
}

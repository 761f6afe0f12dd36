package models

import "time"

type StaffUser struct {
	ID           string    `json:"id" bson:"_id"`
	Email        string    `json:"email" bson:"email"`
	DisplayName  string    `json:"display_name,omitempty" bson:"display_name,omitempty"`
	Role         string    `json:"role" bson:"role"`
	Disabled     bool      `json:"disabled" bson:"disabled"`
	PasswordHash string    `json:"-" bson:"password_hash"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" bson:"updated_at"`
}

type StaffGroup struct {
	ID          string    `json:"id" bson:"_id"`
	Code        string    `json:"code" bson:"code"`
	Name        string    `json:"name" bson:"name"`
	Description string    `json:"description,omitempty" bson:"description,omitempty"`
	Permissions []string  `json:"permissions" bson:"permissions"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
}

type GroupMember struct {
	GroupID string    `json:"group_id" bson:"group_id"`
	UserID  string    `json:"user_id" bson:"user_id"`
	AddedAt time.Time `json:"added_at" bson:"added_at"`
}

const (
	PriorityNormal = "normal"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

type Announcement struct {
	ID        string     `json:"id" bson:"_id"`
	Title     string     `json:"title" bson:"title"`
	Body      string     `json:"body" bson:"body"`
	Priority  string     `json:"priority" bson:"priority"`
	CreatedBy string     `json:"created_by,omitempty" bson:"created_by,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty" bson:"expires_at,omitempty"`
	CreatedAt time.Time  `json:"created_at" bson:"created_at"`
	Read      bool       `json:"read" bson:"-"`
}

type AnnouncementRead struct {
	AnnouncementID string    `bson:"announcement_id"`
	UserID         string    `bson:"user_id"`
	ReadAt         time.Time `bson:"read_at"`
}

// Preferences is a free-form document per staff user.
type Preferences struct {
	UserID    string         `json:"user_id" bson:"_id"`
	Data      map[string]any `json:"preferences" bson:"data"`
	UpdatedAt time.Time      `json:"updated_at" bson:"updated_at"`
}

type AuditEntry struct {
	ID          string         `json:"id" bson:"_id"`
	OccurredAt  time.Time      `json:"occurred_at" bson:"occurred_at"`
	ActorUserID string         `json:"actor_user_id,omitempty" bson:"actor_user_id,omitempty"`
	ActorRole   string         `json:"actor_role,omitempty" bson:"actor_role,omitempty"`
	Action      string         `json:"action" bson:"action"`
	EntityType  string         `json:"entity_type" bson:"entity_type"`
	EntityID    string         `json:"entity_id,omitempty" bson:"entity_id,omitempty"`
	Meta        map[string]any `json:"meta,omitempty" bson:"meta,omitempty"`
}

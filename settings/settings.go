package settings

import (
	"context"
	"maps"
	"time"

	"cruiseops/models"
	"cruiseops/utils"
)

const PreferencesUpdated = "preferences.updated"

// Defaults returns a fresh copy of the preferences every new staff user starts with.
func Defaults() map[string]any {
	return map[string]any{
		"locale":   "en",
		"currency": "USD",
		"dashboard": map[string]any{
			"layout": []any{},
			"notes":  "",
		},
	}
}

type Store interface {
	// Get returns nil when the user has never saved preferences.
	Get(ctx context.Context, tenant, userID string) (*models.Preferences, error)
	Put(ctx context.Context, tenant string, p models.Preferences) error
}

// Emitter publishes change events; publishing is best effort.
type Emitter interface {
	Emit(ctx context.Context, companyID, eventType string, data map[string]any) error
}

type Service struct {
	store Store
	emit  Emitter
	now   func() time.Time
}

func NewService(store Store, emit Emitter) *Service {
	return &Service{store: store, emit: emit, now: time.Now}
}

// Get initializes missing preferences with the defaults.
func (s *Service) Get(ctx context.Context, tenant, userID string) (models.Preferences, error) {
	if userID == "" {
		return models.Preferences{}, utils.Unauthorized("Missing user")
	}
	p, err := s.store.Get(ctx, tenant, userID)
	if err != nil {
		return models.Preferences{}, err
	}
	if p != nil {
		return *p, nil
	}
	fresh := models.Preferences{UserID: userID, Data: Defaults(), UpdatedAt: s.now().UTC()}
	return fresh, s.store.Put(ctx, tenant, fresh)
}

// Replace stores data as the whole preferences document.
func (s *Service) Replace(ctx context.Context, tenant, companyID, userID string, data map[string]any) (models.Preferences, error) {
	if userID == "" {
		return models.Preferences{}, utils.Unauthorized("Missing user")
	}
	if data == nil {
		return models.Preferences{}, utils.Invalid("preferences must be a JSON object")
	}
	return s.save(ctx, tenant, companyID, models.Preferences{UserID: userID, Data: data})
}

// Merge overwrites only the top-level keys present in patch.
func (s *Service) Merge(ctx context.Context, tenant, companyID, userID string, patch map[string]any) (models.Preferences, error) {
	if patch == nil {
		return models.Preferences{}, utils.Invalid("preferences must be a JSON object")
	}
	p, err := s.Get(ctx, tenant, userID)
	if err != nil {
		return p, err
	}
	if p.Data == nil {
		p.Data = map[string]any{}
	}
	maps.Copy(p.Data, patch)
	return s.save(ctx, tenant, companyID, p)
}

func (s *Service) save(ctx context.Context, tenant, companyID string, p models.Preferences) (models.Preferences, error) {
	p.UpdatedAt = s.now().UTC()
	if err := s.store.Put(ctx, tenant, p); err != nil {
		return p, err
	}
	if s.emit != nil {
		_ = s.emit.Emit(ctx, companyID, PreferencesUpdated, map[string]any{"user_id": p.UserID})
	}
	return p, nil
}

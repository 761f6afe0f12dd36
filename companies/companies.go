package companies

import (
	"context"
	"strings"
	"time"

	"cruiseops/db"
	"cruiseops/models"
	"cruiseops/pricing"
	"cruiseops/utils"

	"go.uber.org/zap"
)

const currencyTTL = 60 * time.Second

// IndexEnsurer prepares a freshly created tenant database.
type IndexEnsurer interface {
	EnsureTenantIndexes(ctx context.Context, tenant string) error
}

// Cache is the short-lived key/value store used for the default currency lookup.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

type Service struct {
	store     Store
	indexes   IndexEnsurer
	cache     Cache
	uploadDir string
	log       *zap.Logger
	now       func() time.Time
}

func NewService(store Store, indexes IndexEnsurer, cache Cache, uploadDir string, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{store: store, indexes: indexes, cache: cache, uploadDir: uploadDir, log: log, now: time.Now}
}

type CreateInput struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Code string `json:"code"`
}

func (s *Service) Create(ctx context.Context, in CreateInput) (models.Company, error) {
	name := strings.TrimSpace(in.Name)
	code := strings.TrimSpace(in.Code)
	if name == "" || code == "" {
		return models.Company{}, utils.Invalid("name and code are required")
	}
	tenant, err := db.TenantNameFromCode(code)
	if err != nil {
		return models.Company{}, err
	}
	id := strings.TrimSpace(in.ID)
	if id == "" {
		id = utils.NewID()
	}
	c := models.Company{ID: id, Name: name, Code: code, TenantDB: tenant, CreatedAt: s.now().UTC()}
	if err := s.store.InsertCompany(ctx, c); err != nil {
		return models.Company{}, err
	}
	if s.indexes != nil {
		if err := s.indexes.EnsureTenantIndexes(ctx, tenant); err != nil {
			s.log.Warn("tenant indexes", zap.String("tenant", tenant), zap.Error(err))
		}
	}
	return c, nil
}

func (s *Service) List(ctx context.Context) ([]models.Company, error) {
	return s.store.ListCompanies(ctx)
}

func (s *Service) Get(ctx context.Context, id string) (models.Company, error) {
	c, err := s.store.GetCompany(ctx, id)
	if err != nil {
		return models.Company{}, err
	}
	if c == nil {
		return models.Company{}, utils.NotFound("Company not found")
	}
	return *c, nil
}

// Settings returns the stored settings or empty sections when none exist.
func (s *Service) Settings(ctx context.Context, companyID string) (models.CompanySettings, error) {
	if _, err := s.Get(ctx, companyID); err != nil {
		return models.CompanySettings{}, err
	}
	cs, err := s.store.GetSettings(ctx, companyID)
	if err != nil {
		return models.CompanySettings{}, err
	}
	if cs == nil {
		cs = &models.CompanySettings{CompanyID: companyID}
	}
	if cs.Branding == nil {
		cs.Branding = map[string]any{}
	}
	if cs.Localization == nil {
		cs.Localization = map[string]any{}
	}
	return *cs, nil
}

type SettingsInput struct {
	Branding     map[string]any `json:"branding"`
	Localization map[string]any `json:"localization"`
}

// UpdateSettings replaces the sections present in the input.
func (s *Service) UpdateSettings(ctx context.Context, companyID string, in SettingsInput) (models.CompanySettings, error) {
	cs, err := s.Settings(ctx, companyID)
	if err != nil {
		return cs, err
	}
	if in.Localization != nil {
		if raw, ok := in.Localization["default_currency"]; ok && raw != nil {
			str, _ := raw.(string)
			cur, err := pricing.NormalizeCurrency(str, "localization.default_currency")
			if err != nil {
				return cs, err
			}
			in.Localization["default_currency"] = cur
		}
		cs.Localization = in.Localization
	}
	if in.Branding != nil {
		cs.Branding = in.Branding
	}
	return cs, s.save(ctx, cs)
}

func (s *Service) save(ctx context.Context, cs models.CompanySettings) error {
	now := s.now().UTC()
	if cs.CreatedAt.IsZero() {
		cs.CreatedAt = now
	}
	cs.UpdatedAt = now
	if err := s.store.SaveSettings(ctx, cs); err != nil {
		return err
	}
	if s.cache != nil {
		if err := s.cache.Del(ctx, currencyKey(cs.CompanyID)); err != nil {
			s.log.Warn("currency cache invalidate", zap.String("company_id", cs.CompanyID), zap.Error(err))
		}
	}
	return nil
}

func currencyKey(companyID string) string { return "currency:" + companyID }

// DefaultCurrency reads localization.default_currency, cached for a minute. It
// returns "" when the company has none or the lookup fails.
func (s *Service) DefaultCurrency(ctx context.Context, companyID string) string {
	if companyID == "" {
		return ""
	}
	if s.cache != nil {
		if v, ok, err := s.cache.Get(ctx, currencyKey(companyID)); err == nil && ok {
			return v
		} else if err != nil {
			s.log.Debug("currency cache get", zap.Error(err))
		}
	}
	cs, err := s.store.GetSettings(ctx, companyID)
	if err != nil {
		s.log.Warn("default currency lookup", zap.String("company_id", companyID), zap.Error(err))
		return ""
	}
	cur := ""
	if cs != nil {
		if v, ok := cs.Localization["default_currency"].(string); ok {
			cur = utils.UpperCode(v)
		}
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, currencyKey(companyID), cur, currencyTTL); err != nil {
			s.log.Debug("currency cache set", zap.Error(err))
		}
	}
	return cur
}

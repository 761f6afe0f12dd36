package customers

import (
	"context"
	"net/mail"
	"strings"
	"time"

	"cruiseops/models"
	"cruiseops/utils"
)

const (
	defaultSearchLimit = 20
	maxSearchLimit     = 100
)

type Service struct {
	store Store
	now   func() time.Time
}

func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

func normalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		return "", utils.Invalid("email is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return "", utils.Invalid("email is not valid")
	}
	return email, nil
}

func optionalDate(field, v string) (string, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return "", nil
	}
	if _, err := utils.ParseDate(v); err != nil {
		return "", utils.Invalid("%s must be YYYY-MM-DD", field)
	}
	return v, nil
}

type CustomerInput struct {
	Email           string          `json:"email"`
	Title           string          `json:"title"`
	FirstName       string          `json:"first_name"`
	LastName        string          `json:"last_name"`
	BirthDate       string          `json:"birth_date"`
	LoyaltyTier     string          `json:"loyalty_tier"`
	Phone           string          `json:"phone"`
	Address         *models.Address `json:"address"`
	NationalID      string          `json:"national_id"`
	PassportNo      string          `json:"passport_no"`
	PassportExpiry  string          `json:"passport_expiry"`
	PassportCountry string          `json:"passport_country"`
	Preferences     map[string]any  `json:"preferences"`
}

func (s *Service) Create(ctx context.Context, tenant string, in CustomerInput) (models.Customer, error) {
	now := s.now().UTC()
	c := models.Customer{
		ID:              utils.NewID(),
		Title:           utils.UpperCode(in.Title),
		FirstName:       strings.TrimSpace(in.FirstName),
		LastName:        strings.TrimSpace(in.LastName),
		LoyaltyTier:     utils.UpperCode(in.LoyaltyTier),
		Phone:           strings.TrimSpace(in.Phone),
		Address:         in.Address,
		NationalID:      strings.TrimSpace(in.NationalID),
		PassportNo:      strings.TrimSpace(in.PassportNo),
		PassportCountry: utils.UpperCode(in.PassportCountry),
		Preferences:     in.Preferences,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	var err error
	if c.Email, err = normalizeEmail(in.Email); err != nil {
		return c, err
	}
	if c.BirthDate, err = optionalDate("birth_date", in.BirthDate); err != nil {
		return c, err
	}
	if c.PassportExpiry, err = optionalDate("passport_expiry", in.PassportExpiry); err != nil {
		return c, err
	}
	if c.Preferences == nil {
		c.Preferences = map[string]any{}
	}
	return c, s.store.InsertCustomer(ctx, tenant, c)
}

func (s *Service) Get(ctx context.Context, tenant, id string) (models.Customer, error) {
	c, err := s.store.GetCustomer(ctx, tenant, id)
	if err != nil {
		return models.Customer{}, err
	}
	if c == nil {
		return models.Customer{}, utils.NotFound("Customer not found")
	}
	return *c, nil
}

type CustomerPatch struct {
	Email           *string         `json:"email"`
	Title           *string         `json:"title"`
	FirstName       *string         `json:"first_name"`
	LastName        *string         `json:"last_name"`
	BirthDate       *string         `json:"birth_date"`
	LoyaltyTier     *string         `json:"loyalty_tier"`
	Phone           *string         `json:"phone"`
	Address         *models.Address `json:"address"`
	NationalID      *string         `json:"national_id"`
	PassportNo      *string         `json:"passport_no"`
	PassportExpiry  *string         `json:"passport_expiry"`
	PassportCountry *string         `json:"passport_country"`
	Preferences     map[string]any  `json:"preferences"`
}

func setTrimmed(dst *string, v *string) {
	if v != nil {
		*dst = strings.TrimSpace(*v)
	}
}

func (s *Service) Patch(ctx context.Context, tenant, id string, p CustomerPatch) (models.Customer, error) {
	c, err := s.Get(ctx, tenant, id)
	if err != nil {
		return c, err
	}
	if p.Email != nil {
		if c.Email, err = normalizeEmail(*p.Email); err != nil {
			return c, err
		}
	}
	if p.BirthDate != nil {
		if c.BirthDate, err = optionalDate("birth_date", *p.BirthDate); err != nil {
			return c, err
		}
	}
	if p.PassportExpiry != nil {
		if c.PassportExpiry, err = optionalDate("passport_expiry", *p.PassportExpiry); err != nil {
			return c, err
		}
	}
	if p.Title != nil {
		c.Title = utils.UpperCode(*p.Title)
	}
	if p.LoyaltyTier != nil {
		c.LoyaltyTier = utils.UpperCode(*p.LoyaltyTier)
	}
	if p.PassportCountry != nil {
		c.PassportCountry = utils.UpperCode(*p.PassportCountry)
	}
	setTrimmed(&c.FirstName, p.FirstName)
	setTrimmed(&c.LastName, p.LastName)
	setTrimmed(&c.Phone, p.Phone)
	setTrimmed(&c.NationalID, p.NationalID)
	setTrimmed(&c.PassportNo, p.PassportNo)
	if p.Address != nil {
		c.Address = p.Address
	}
	if p.Preferences != nil {
		c.Preferences = p.Preferences
	}
	c.UpdatedAt = s.now().UTC()
	return c, s.store.ReplaceCustomer(ctx, tenant, c)
}

// Search matches q against email, names and phone. limit defaults to 20 and is capped
// at 100.
func (s *Service) Search(ctx context.Context, tenant, q string, limit int) ([]models.Customer, error) {
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	limit = min(limit, maxSearchLimit)
	return s.store.SearchCustomers(ctx, tenant, strings.TrimSpace(q), int64(limit))
}

func (s *Service) Count(ctx context.Context, tenant string) (int64, error) {
	return s.store.CountCustomers(ctx, tenant)
}

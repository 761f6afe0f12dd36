package ships

import (
	"context"
	"strings"

	"cruiseops/models"
	"cruiseops/pricing"
	"cruiseops/utils"
)

type CapabilityInput struct {
	Code        string         `json:"code"`
	Name        string         `json:"name"`
	Category    string         `json:"category"`
	Description string         `json:"description"`
	Meta        map[string]any `json:"meta"`
}

func (s *Service) CreateCapability(ctx context.Context, tenant, shipID string, in CapabilityInput) (models.Capability, error) {
	if _, err := s.Ship(ctx, tenant, shipID); err != nil {
		return models.Capability{}, err
	}
	c := models.Capability{
		ID:          utils.NewID(),
		ShipID:      shipID,
		Code:        utils.UpperCode(in.Code),
		Name:        strings.TrimSpace(in.Name),
		Category:    utils.LowerCode(in.Category),
		Description: strings.TrimSpace(in.Description),
		Meta:        in.Meta,
	}
	if c.Code == "" || c.Name == "" {
		return c, utils.Invalid("code and name are required")
	}
	return c, s.store.InsertCapability(ctx, tenant, c)
}

func (s *Service) Capabilities(ctx context.Context, tenant, shipID string) ([]models.Capability, error) {
	if _, err := s.Ship(ctx, tenant, shipID); err != nil {
		return nil, err
	}
	return s.store.ListCapabilities(ctx, tenant, shipID)
}

// capabilityCodes upper-cases codes and checks that each is registered on the ship.
func (s *Service) capabilityCodes(ctx context.Context, tenant, shipID string, codes []string) ([]string, error) {
	out := make([]string, 0, len(codes))
	if len(codes) == 0 {
		return out, nil
	}
	caps, err := s.store.ListCapabilities(ctx, tenant, shipID)
	if err != nil {
		return nil, err
	}
	known := make(map[string]bool, len(caps))
	for _, c := range caps {
		known[c.Code] = true
	}
	for _, raw := range codes {
		code := utils.UpperCode(raw)
		if !known[code] {
			return nil, utils.Invalid("Unknown capability code: %s", raw)
		}
		out = append(out, code)
	}
	return out, nil
}

type RestaurantInput struct {
	Code                string         `json:"code"`
	Name                string         `json:"name"`
	Cuisine             string         `json:"cuisine"`
	Deck                int            `json:"deck"`
	Included            *bool          `json:"included"`
	ReservationRequired bool           `json:"reservation_required"`
	Description         string         `json:"description"`
	CapabilityCodes     []string       `json:"capability_codes"`
	Meta                map[string]any `json:"meta"`
}

func (s *Service) CreateRestaurant(ctx context.Context, tenant, shipID string, in RestaurantInput) (models.Restaurant, error) {
	if _, err := s.Ship(ctx, tenant, shipID); err != nil {
		return models.Restaurant{}, err
	}
	r := models.Restaurant{
		ID:                  utils.NewID(),
		ShipID:              shipID,
		Code:                utils.UpperCode(in.Code),
		Name:                strings.TrimSpace(in.Name),
		Cuisine:             strings.TrimSpace(in.Cuisine),
		Deck:                in.Deck,
		Included:            in.Included == nil || *in.Included,
		ReservationRequired: in.ReservationRequired,
		Description:         strings.TrimSpace(in.Description),
		Meta:                in.Meta,
	}
	if r.Code == "" || r.Name == "" {
		return r, utils.Invalid("code and name are required")
	}
	if r.Deck < 0 {
		return r, utils.Invalid("deck must be >= 0")
	}
	var err error
	if r.CapabilityCodes, err = s.capabilityCodes(ctx, tenant, shipID, in.CapabilityCodes); err != nil {
		return r, err
	}
	return r, s.store.InsertRestaurant(ctx, tenant, r)
}

func (s *Service) Restaurants(ctx context.Context, tenant, shipID string) ([]models.Restaurant, error) {
	if _, err := s.Ship(ctx, tenant, shipID); err != nil {
		return nil, err
	}
	return s.store.ListRestaurants(ctx, tenant, shipID)
}

type ShorexPriceInput struct {
	Currency   string `json:"currency"`
	Paxtype    string `json:"paxtype"`
	PriceCents *int64 `json:"price_cents"`
}

type ShorexInput struct {
	Code            string             `json:"code"`
	Title           string             `json:"title"`
	PortCode        string             `json:"port_code"`
	DurationMinutes int                `json:"duration_minutes"`
	Active          *bool              `json:"active"`
	Description     string             `json:"description"`
	CapabilityCodes []string           `json:"capability_codes"`
	Meta            map[string]any     `json:"meta"`
	Prices          []ShorexPriceInput `json:"prices"`
}

func normalizeShorexPrice(in ShorexPriceInput) (models.ShorexPrice, error) {
	p := models.ShorexPrice{Paxtype: utils.LowerCode(in.Paxtype)}
	cur := in.Currency
	if strings.TrimSpace(cur) == "" {
		cur = pricing.DefaultCurrency
	}
	var err error
	if p.Currency, err = pricing.NormalizeCurrency(cur, "currency"); err != nil {
		return p, err
	}
	if p.Paxtype == "" {
		p.Paxtype = models.PaxAdult
	}
	if !utils.Contains(models.Paxtypes, p.Paxtype) {
		return p, utils.Invalid("paxtype must be one of adult|child|infant")
	}
	if in.PriceCents == nil || *in.PriceCents < 0 {
		return p, utils.Invalid("price_cents must be >= 0")
	}
	p.PriceCents = *in.PriceCents
	return p, nil
}

// mergePrices upserts prices by (currency, paxtype), keeping existing order.
func mergePrices(existing []models.ShorexPrice, in []ShorexPriceInput) ([]models.ShorexPrice, error) {
	out := append([]models.ShorexPrice{}, existing...)
next:
	for _, raw := range in {
		p, err := normalizeShorexPrice(raw)
		if err != nil {
			return nil, err
		}
		for i := range out {
			if out[i].Currency == p.Currency && out[i].Paxtype == p.Paxtype {
				out[i] = p
				continue next
			}
		}
		out = append(out, p)
	}
	return out, nil
}

func (s *Service) CreateShorex(ctx context.Context, tenant, shipID string, in ShorexInput) (models.ShoreExcursion, error) {
	if _, err := s.Ship(ctx, tenant, shipID); err != nil {
		return models.ShoreExcursion{}, err
	}
	x := models.ShoreExcursion{
		ID:              utils.NewID(),
		ShipID:          shipID,
		Code:            utils.UpperCode(in.Code),
		Title:           strings.TrimSpace(in.Title),
		PortCode:        utils.UpperCode(in.PortCode),
		DurationMinutes: in.DurationMinutes,
		Active:          in.Active == nil || *in.Active,
		Description:     strings.TrimSpace(in.Description),
		Meta:            in.Meta,
	}
	if x.Code == "" || x.Title == "" {
		return x, utils.Invalid("code and title are required")
	}
	if x.DurationMinutes < 0 {
		return x, utils.Invalid("duration_minutes must be >= 0")
	}
	var err error
	if x.CapabilityCodes, err = s.capabilityCodes(ctx, tenant, shipID, in.CapabilityCodes); err != nil {
		return x, err
	}
	if x.Prices, err = mergePrices(nil, in.Prices); err != nil {
		return x, err
	}
	return x, s.store.InsertShorex(ctx, tenant, x)
}

func (s *Service) ShoreExcursions(ctx context.Context, tenant, shipID string, f ShorexFilter) ([]models.ShoreExcursion, error) {
	if _, err := s.Ship(ctx, tenant, shipID); err != nil {
		return nil, err
	}
	f.PortCode = utils.UpperCode(f.PortCode)
	return s.store.ListShorex(ctx, tenant, shipID, f)
}

func (s *Service) UpsertShorexPrices(ctx context.Context, tenant, shipID, shorexID string, in []ShorexPriceInput) (models.ShoreExcursion, error) {
	x, err := s.store.GetShorex(ctx, tenant, shorexID)
	if err != nil {
		return models.ShoreExcursion{}, err
	}
	if x == nil || x.ShipID != shipID {
		return models.ShoreExcursion{}, utils.NotFound("Shore excursion not found")
	}
	if len(in) == 0 {
		return *x, utils.Invalid("prices must be a non-empty list")
	}
	if x.Prices, err = mergePrices(x.Prices, in); err != nil {
		return *x, err
	}
	return *x, s.store.ReplaceShorex(ctx, tenant, *x)
}

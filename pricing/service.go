package pricing

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"slices"
	"strconv"
	"strings"
	"time"

	"cruiseops/models"
	"cruiseops/utils"
)

// CurrencySource resolves a company's default quote currency. An empty answer means
// none is configured.
type CurrencySource interface {
	DefaultCurrency(ctx context.Context, companyID string) string
}

var DefaultChannels = []string{"website", "contact_center", "agent", "api", "mobile_app"}

type Service struct {
	store    Store
	currency CurrencySource
	now      func() time.Time
}

func NewService(store Store, currency CurrencySource) *Service {
	return &Service{store: store, currency: currency, now: time.Now}
}

type GuestIn struct {
	Paxtype string `json:"paxtype"`
}

type QuoteInput struct {
	SailingID         string    `json:"sailing_id"`
	SailingDate       string    `json:"sailing_date"`
	CabinType         string    `json:"cabin_type"`
	CabinCategoryCode string    `json:"cabin_category_code"`
	PriceType         string    `json:"price_type"`
	Guests            []GuestIn `json:"guests"`
	CouponCode        string    `json:"coupon_code"`
	LoyaltyTier       string    `json:"loyalty_tier"`
	Currency          string    `json:"currency"`
}

func parseSailingDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if len(s) > len(utils.DateLayout) {
		s = s[:len(utils.DateLayout)]
	}
	t, err := utils.ParseDate(s)
	if err != nil {
		return nil, utils.Invalid("sailing_date must be YYYY-MM-DD")
	}
	return &t, nil
}

// Quote prices a request for a company. Without a tenant only the default tariff
// applies. A cruise price cell for the sailing goes first in the rule list and fixes
// the currency; an explicit currency converts the result.
func (s *Service) Quote(ctx context.Context, tenant, companyID string, in QuoteInput) (models.Quote, error) {
	explicit := strings.TrimSpace(in.Currency)
	cur := utils.UpperCode(explicit)
	if cur == "" && companyID != "" && s.currency != nil {
		cur = s.currency.DefaultCurrency(ctx, companyID)
	}
	if cur == "" {
		cur = DefaultCurrency
	}
	date, err := parseSailingDate(in.SailingDate)
	if err != nil {
		return models.Quote{}, err
	}

	guests := make([]string, 0, len(in.Guests))
	for _, g := range in.Guests {
		guests = append(guests, utils.LowerCode(g.Paxtype))
	}
	priceType := utils.LowerCode(in.PriceType)
	if priceType == "" {
		priceType = DefaultPriceType
	}
	req := Request{
		SailingDate:       date,
		CabinType:         in.CabinType,
		CabinCategoryCode: utils.UpperCode(in.CabinCategoryCode),
		PriceType:         priceType,
		Guests:            guests,
		CouponCode:        in.CouponCode,
		LoyaltyTier:       in.LoyaltyTier,
		Currency:          cur,
	}

	var ov *Overrides
	if tenant != "" {
		if ov, err = s.engineOverrides(ctx, tenant, companyID); err != nil {
			return models.Quote{}, err
		}
		sid := strings.TrimSpace(in.SailingID)
		if sid != "" && req.CabinCategoryCode != "" {
			cell, err := s.store.GetCruisePrice(ctx, tenant, sid, req.CabinCategoryCode, priceType)
			if err != nil {
				return models.Quote{}, err
			}
			if cell != nil {
				cellCur := utils.UpperCode(cell.Currency)
				if cellCur == "" {
					cellCur = cur
				}
				minGuests := cell.MinGuests
				if minGuests == 0 {
					minGuests = 2
				}
				rule := models.CategoryPrice{
					Code:           req.CabinCategoryCode,
					PriceType:      priceType,
					Currency:       cellCur,
					MinGuests:      minGuests,
					PricePerPerson: cell.PricePerPerson,
				}
				if ov == nil {
					ov = &Overrides{}
				}
				ov.CategoryPrices = append([]models.CategoryPrice{rule}, ov.CategoryPrices...)
				req.Currency = cellCur
			}
		}
	}

	q, err := Compute(req, s.now(), ov)
	if err != nil {
		return q, err
	}
	if explicit != "" && tenant != "" {
		return ConvertQuote(q, explicit, s.rateLookup(ctx, tenant))
	}
	return q, nil
}

func (s *Service) rateLookup(ctx context.Context, tenant string) RateLookup {
	return func(base, quote string) (models.FXRate, bool, error) {
		r, err := s.store.GetFXRate(ctx, tenant, base, quote)
		if err != nil || r == nil {
			return models.FXRate{}, false, err
		}
		return *r, true, nil
	}
}

func (s *Service) engineOverrides(ctx context.Context, tenant, companyID string) (*Overrides, error) {
	rules, err := s.store.ListCategoryPrices(ctx, tenant)
	if err != nil {
		return nil, err
	}
	var stored *models.PricingOverrides
	if companyID != "" {
		if stored, err = s.store.GetOverrides(ctx, tenant, companyID); err != nil {
			return nil, err
		}
	}
	if stored == nil && len(rules) == 0 {
		return nil, nil
	}
	ov := &Overrides{CategoryPrices: rules}
	if stored != nil {
		ov.BaseByPax = stored.BaseByPax
		ov.CabinMultiplier = stored.CabinMultiplier
		ov.DemandMultiplier = stored.DemandMultiplier
	}
	return ov, nil
}

// Overrides returns the company's overrides with its category prices attached.
func (s *Service) Overrides(ctx context.Context, tenant, companyID string) (models.PricingOverrides, error) {
	out := models.PricingOverrides{CompanyID: companyID}
	stored, err := s.store.GetOverrides(ctx, tenant, companyID)
	if err != nil {
		return out, err
	}
	if stored != nil {
		out = *stored
	}
	rules, err := s.store.ListCategoryPrices(ctx, tenant)
	if err != nil {
		return out, err
	}
	out.CategoryPrices = rules
	return out, nil
}

func (s *Service) SetCabinMultiplier(ctx context.Context, tenant, companyID, cabinType string, multiplier float64) (models.PricingOverrides, error) {
	cabinType = utils.LowerCode(cabinType)
	if !validCabinType(cabinType) {
		return models.PricingOverrides{}, utils.Invalid("cabin_type must be one of %s", strings.Join(models.CabinTypes, "|"))
	}
	if multiplier <= 0 {
		return models.PricingOverrides{}, utils.Invalid("multiplier must be > 0")
	}
	if err := s.store.SetOverrideField(ctx, tenant, companyID, "cabin_multiplier."+cabinType, multiplier); err != nil {
		return models.PricingOverrides{}, err
	}
	return s.Overrides(ctx, tenant, companyID)
}

func (s *Service) SetBaseFare(ctx context.Context, tenant, companyID, paxtype string, amount int64) (models.PricingOverrides, error) {
	paxtype = utils.LowerCode(paxtype)
	if !slices.Contains(models.Paxtypes, paxtype) {
		return models.PricingOverrides{}, utils.Invalid("paxtype must be one of %s", strings.Join(models.Paxtypes, "|"))
	}
	if amount < 0 {
		return models.PricingOverrides{}, utils.Invalid("amount must be >= 0")
	}
	if err := s.store.SetOverrideField(ctx, tenant, companyID, "base_by_pax."+paxtype, amount); err != nil {
		return models.PricingOverrides{}, err
	}
	return s.Overrides(ctx, tenant, companyID)
}

// SetDemandMultiplier pins the demand multiplier; nil restores the date based bands.
func (s *Service) SetDemandMultiplier(ctx context.Context, tenant, companyID string, multiplier *float64) (models.PricingOverrides, error) {
	var value any
	if multiplier != nil {
		if *multiplier <= 0 {
			return models.PricingOverrides{}, utils.Invalid("multiplier must be > 0")
		}
		value = *multiplier
	}
	if err := s.store.SetOverrideField(ctx, tenant, companyID, "demand_multiplier", value); err != nil {
		return models.PricingOverrides{}, err
	}
	return s.Overrides(ctx, tenant, companyID)
}

// DeleteOverrides drops the company's overrides and category prices.
func (s *Service) DeleteOverrides(ctx context.Context, tenant, companyID string) error {
	removed, err := s.store.DeleteOverrides(ctx, tenant, companyID)
	if err != nil {
		return err
	}
	n, err := s.store.DeleteCategoryPrices(ctx, tenant)
	if err != nil {
		return err
	}
	if !removed && n == 0 {
		return utils.NotFound("No overrides for company")
	}
	return nil
}

type CategoryPriceInput struct {
	CategoryCode       string `json:"category_code"`
	PriceType          string `json:"price_type"`
	Currency           string `json:"currency"`
	MinGuests          *int   `json:"min_guests"`
	PricePerPerson     *int64 `json:"price_per_person"`
	EffectiveStartDate string `json:"effective_start_date"`
	EffectiveEndDate   string `json:"effective_end_date"`
	CompanyID          string `json:"company_id"`
}

func optionalDate(s, field string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", nil
	}
	if _, err := utils.ParseDate(s); err != nil {
		return "", utils.Invalid("%s must be YYYY-MM-DD", field)
	}
	return s, nil
}

func (s *Service) normalizeCategoryPrice(in CategoryPriceInput) (models.CategoryPrice, error) {
	p := models.CategoryPrice{
		Code:      utils.UpperCode(in.CategoryCode),
		PriceType: utils.LowerCode(in.PriceType),
		MinGuests: 2,
		UpdatedAt: s.now().UTC(),
	}
	if p.Code == "" {
		return p, utils.Invalid("category_code is required")
	}
	if p.PriceType == "" {
		p.PriceType = DefaultPriceType
	}
	cur := in.Currency
	if strings.TrimSpace(cur) == "" {
		cur = DefaultCurrency
	}
	var err error
	if p.Currency, err = NormalizeCurrency(cur, "currency"); err != nil {
		return p, err
	}
	if in.MinGuests != nil {
		if *in.MinGuests < 1 {
			return p, utils.Invalid("min_guests must be >= 1")
		}
		p.MinGuests = *in.MinGuests
	}
	if in.PricePerPerson == nil || *in.PricePerPerson < 0 {
		return p, utils.Invalid("price_per_person must be >= 0")
	}
	p.PricePerPerson = *in.PricePerPerson
	if p.EffectiveStart, err = optionalDate(in.EffectiveStartDate, "effective_start_date"); err != nil {
		return p, err
	}
	if p.EffectiveEnd, err = optionalDate(in.EffectiveEndDate, "effective_end_date"); err != nil {
		return p, err
	}
	if p.EffectiveStart != "" && p.EffectiveEnd != "" && p.EffectiveEnd < p.EffectiveStart {
		return p, utils.Invalid("effective_end_date must not be before effective_start_date")
	}
	return p, nil
}

func sameCompany(companyID, requested string) error {
	if r := strings.TrimSpace(requested); r != "" && r != companyID {
		return utils.Invalid("Bulk upsert must target exactly one company_id")
	}
	return nil
}

// UpsertCategoryPrices validates every row before writing any of them.
func (s *Service) UpsertCategoryPrices(ctx context.Context, tenant, companyID string, in []CategoryPriceInput) ([]models.CategoryPrice, error) {
	if len(in) == 0 {
		return nil, utils.Invalid("payload must be a non-empty list")
	}
	rows := make([]models.CategoryPrice, 0, len(in))
	for _, item := range in {
		if err := sameCompany(companyID, item.CompanyID); err != nil {
			return nil, err
		}
		p, err := s.normalizeCategoryPrice(item)
		if err != nil {
			return nil, err
		}
		rows = append(rows, p)
	}
	for _, p := range rows {
		if err := s.store.UpsertCategoryPrice(ctx, tenant, p); err != nil {
			return nil, err
		}
	}
	return s.store.ListCategoryPrices(ctx, tenant)
}

func (s *Service) CategoryPrices(ctx context.Context, tenant string) ([]models.CategoryPrice, error) {
	return s.store.ListCategoryPrices(ctx, tenant)
}

// EnsureDefaultCategories seeds the "regular" price category into an empty tenant.
func (s *Service) EnsureDefaultCategories(ctx context.Context, tenant string) ([]models.PriceCategory, error) {
	cats, err := s.store.ListPriceCategories(ctx, tenant)
	if err != nil || len(cats) > 0 {
		return cats, err
	}
	now := s.now().UTC()
	regular := models.PriceCategory{
		Code:            DefaultPriceType,
		Active:          true,
		Order:           1000,
		EnabledChannels: slices.Clone(DefaultChannels),
		NameI18n:        map[string]string{"en": "Regular"},
		DescriptionI18n: map[string]string{"en": "Standard pricing"},
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.store.InsertPriceCategory(ctx, tenant, regular); err != nil && !errors.Is(err, utils.ErrConflict) {
		return nil, err
	}
	return s.store.ListPriceCategories(ctx, tenant)
}

func (s *Service) PriceCategories(ctx context.Context, tenant, channel string, activeOnly bool) ([]models.PriceCategory, error) {
	cats, err := s.EnsureDefaultCategories(ctx, tenant)
	if err != nil {
		return nil, err
	}
	channel = strings.TrimSpace(channel)
	out := make([]models.PriceCategory, 0, len(cats))
	for _, c := range cats {
		if activeOnly && !c.Active {
			continue
		}
		if channel != "" && !slices.Contains(c.EnabledChannels, channel) {
			continue
		}
		out = append(out, c)
	}
	slices.SortStableFunc(out, func(a, b models.PriceCategory) int { return a.Order - b.Order })
	return out, nil
}

type PriceCategoryInput struct {
	Code                  string            `json:"code"`
	Active                *bool             `json:"active"`
	EnabledChannels       []string          `json:"enabled_channels"`
	RoomSelectionIncluded bool              `json:"room_selection_included"`
	RoomCategoryOnly      bool              `json:"room_category_only"`
	NameI18n              map[string]string `json:"name_i18n"`
	DescriptionI18n       map[string]string `json:"description_i18n"`
}

type PriceCategoryPatch struct {
	Active                *bool              `json:"active"`
	EnabledChannels       *[]string          `json:"enabled_channels"`
	RoomSelectionIncluded *bool              `json:"room_selection_included"`
	RoomCategoryOnly      *bool              `json:"room_category_only"`
	NameI18n              *map[string]string `json:"name_i18n"`
	DescriptionI18n       *map[string]string `json:"description_i18n"`
}

var errExclusiveRoomFlags = utils.Invalid("room_selection_included and room_category_only are mutually exclusive")

func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func orEmptyMap(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	return m
}

func (s *Service) CreatePriceCategory(ctx context.Context, tenant string, in PriceCategoryInput) (models.PriceCategory, error) {
	code := utils.LowerCode(in.Code)
	if code == "" {
		return models.PriceCategory{}, utils.Invalid("code is required")
	}
	if strings.ContainsAny(code, " \t\r\n") {
		return models.PriceCategory{}, utils.Invalid("code must not contain whitespace")
	}
	if in.RoomSelectionIncluded && in.RoomCategoryOnly {
		return models.PriceCategory{}, errExclusiveRoomFlags
	}
	cats, err := s.EnsureDefaultCategories(ctx, tenant)
	if err != nil {
		return models.PriceCategory{}, err
	}
	maxOrder := 0
	for _, c := range cats {
		if c.Code == code {
			return models.PriceCategory{}, utils.Conflict("Price category code already exists")
		}
		maxOrder = max(maxOrder, c.Order)
	}
	now := s.now().UTC()
	c := models.PriceCategory{
		Code:                  code,
		Active:                in.Active == nil || *in.Active,
		Order:                 maxOrder + 10,
		EnabledChannels:       orEmpty(in.EnabledChannels),
		RoomSelectionIncluded: in.RoomSelectionIncluded,
		RoomCategoryOnly:      in.RoomCategoryOnly,
		NameI18n:              orEmptyMap(in.NameI18n),
		DescriptionI18n:       orEmptyMap(in.DescriptionI18n),
		CreatedAt:             now,
		UpdatedAt:             now,
	}
	if err := s.store.InsertPriceCategory(ctx, tenant, c); err != nil {
		return models.PriceCategory{}, err
	}
	return c, nil
}

func (s *Service) findCategory(ctx context.Context, tenant, code string) (models.PriceCategory, error) {
	cats, err := s.EnsureDefaultCategories(ctx, tenant)
	if err != nil {
		return models.PriceCategory{}, err
	}
	code = utils.LowerCode(code)
	for _, c := range cats {
		if c.Code == code {
			return c, nil
		}
	}
	return models.PriceCategory{}, utils.NotFound("Price category not found")
}

func (s *Service) PatchPriceCategory(ctx context.Context, tenant, code string, p PriceCategoryPatch) (models.PriceCategory, error) {
	c, err := s.findCategory(ctx, tenant, code)
	if err != nil {
		return c, err
	}
	if p.RoomSelectionIncluded != nil {
		c.RoomSelectionIncluded = *p.RoomSelectionIncluded
	}
	if p.RoomCategoryOnly != nil {
		c.RoomCategoryOnly = *p.RoomCategoryOnly
	}
	if c.RoomSelectionIncluded && c.RoomCategoryOnly {
		return c, errExclusiveRoomFlags
	}
	if p.Active != nil {
		c.Active = *p.Active
	}
	if p.EnabledChannels != nil {
		c.EnabledChannels = orEmpty(*p.EnabledChannels)
	}
	if p.NameI18n != nil {
		c.NameI18n = orEmptyMap(*p.NameI18n)
	}
	if p.DescriptionI18n != nil {
		c.DescriptionI18n = orEmptyMap(*p.DescriptionI18n)
	}
	c.UpdatedAt = s.now().UTC()
	if err := s.store.ReplacePriceCategory(ctx, tenant, c); err != nil {
		return c, err
	}
	return c, nil
}

func (s *Service) DeletePriceCategory(ctx context.Context, tenant, code string) error {
	ok, err := s.store.DeletePriceCategory(ctx, tenant, utils.LowerCode(code))
	if err != nil {
		return err
	}
	if !ok {
		return utils.NotFound("Price category not found")
	}
	return nil
}

// ReorderPriceCategories assigns orders 10, 20, ... following codes; categories not
// listed keep their relative order after the listed ones.
func (s *Service) ReorderPriceCategories(ctx context.Context, tenant string, codes []string) ([]models.PriceCategory, error) {
	if len(codes) == 0 {
		return nil, utils.Invalid("codes must be a non-empty list")
	}
	cats, err := s.EnsureDefaultCategories(ctx, tenant)
	if err != nil {
		return nil, err
	}
	known := make(map[string]bool, len(cats))
	for _, c := range cats {
		known[c.Code] = true
	}

	var final []string
	listed := map[string]bool{}
	for _, raw := range codes {
		k := utils.LowerCode(raw)
		if k == "" {
			continue
		}
		if !known[k] {
			return nil, utils.Invalid("Unknown category code in reorder list: %s", raw)
		}
		if !listed[k] {
			listed[k] = true
			final = append(final, k)
		}
	}
	for _, c := range cats {
		if !listed[c.Code] {
			final = append(final, c.Code)
		}
	}

	orders := make(map[string]int, len(final))
	for i, k := range final {
		orders[k] = (i + 1) * 10
	}
	if err := s.store.SetPriceCategoryOrders(ctx, tenant, orders, s.now().UTC()); err != nil {
		return nil, err
	}
	return s.PriceCategories(ctx, tenant, "", false)
}

type CruisePriceInput struct {
	SailingID         string `json:"sailing_id"`
	CabinCategoryCode string `json:"cabin_category_code"`
	PriceCategoryCode string `json:"price_category_code"`
	Currency          string `json:"currency"`
	MinGuests         *int   `json:"min_guests"`
	PricePerPerson    *int64 `json:"price_per_person"`
	CompanyID         string `json:"company_id"`
}

func (s *Service) CruisePrices(ctx context.Context, tenant, sailingID string) ([]models.CruisePriceCell, error) {
	sailingID = strings.TrimSpace(sailingID)
	if sailingID == "" {
		return nil, utils.Invalid("sailing_id is required")
	}
	return s.store.ListCruisePrices(ctx, tenant, sailingID)
}

// UpsertCruisePrices writes a batch of cells for one company and returns the price
// table of the first sailing in the batch.
func (s *Service) UpsertCruisePrices(ctx context.Context, tenant, companyID string, in []CruisePriceInput) ([]models.CruisePriceCell, error) {
	if len(in) == 0 {
		return nil, utils.Invalid("payload must be a non-empty list")
	}
	cats, err := s.EnsureDefaultCategories(ctx, tenant)
	if err != nil {
		return nil, err
	}
	known := map[string]bool{}
	for _, c := range cats {
		known[c.Code] = true
	}

	now := s.now().UTC()
	cells := make([]models.CruisePriceCell, 0, len(in))
	for _, p := range in {
		if err := sameCompany(companyID, p.CompanyID); err != nil {
			return nil, err
		}
		cell := models.CruisePriceCell{
			SailingID:         strings.TrimSpace(p.SailingID),
			CabinCategoryCode: utils.UpperCode(p.CabinCategoryCode),
			PriceCategoryCode: utils.LowerCode(p.PriceCategoryCode),
			MinGuests:         2,
			UpdatedAt:         now,
		}
		switch {
		case cell.SailingID == "":
			return nil, utils.Invalid("sailing_id is required")
		case cell.CabinCategoryCode == "":
			return nil, utils.Invalid("cabin_category_code is required")
		case cell.PriceCategoryCode == "":
			return nil, utils.Invalid("price_category_code is required")
		}
		cur := p.Currency
		if strings.TrimSpace(cur) == "" {
			cur = DefaultCurrency
		}
		if cell.Currency, err = NormalizeCurrency(cur, "currency"); err != nil {
			return nil, err
		}
		if !known[cell.PriceCategoryCode] {
			return nil, utils.Invalid("Unknown price_category_code: %s", cell.PriceCategoryCode)
		}
		if p.MinGuests != nil {
			if *p.MinGuests < 1 {
				return nil, utils.Invalid("min_guests must be >= 1")
			}
			cell.MinGuests = *p.MinGuests
		}
		if p.PricePerPerson == nil || *p.PricePerPerson < 0 {
			return nil, utils.Invalid("price_per_person must be >= 0")
		}
		cell.PricePerPerson = *p.PricePerPerson
		cells = append(cells, cell)
	}
	if err := s.store.UpsertCruisePrices(ctx, tenant, cells); err != nil {
		return nil, err
	}
	return s.store.ListCruisePrices(ctx, tenant, cells[0].SailingID)
}

var cruisePriceHeader = []string{"sailing_id", "cabin_category_code", "price_category_code", "currency", "min_guests", "price_per_person"}

// CruisePricesCSV renders a price table with a header row.
func CruisePricesCSV(cells []models.CruisePriceCell) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(cruisePriceHeader); err != nil {
		return nil, err
	}
	for _, c := range cells {
		row := []string{
			c.SailingID, c.CabinCategoryCode, c.PriceCategoryCode, c.Currency,
			strconv.Itoa(c.MinGuests), strconv.FormatInt(c.PricePerPerson, 10),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

type FXInput struct {
	Base  string  `json:"base"`
	Quote string  `json:"quote"`
	Rate  float64 `json:"rate"`
	AsOf  string  `json:"as_of"`
}

func (s *Service) FXRates(ctx context.Context, tenant string) ([]models.FXRate, error) {
	return s.store.ListFXRates(ctx, tenant)
}

func (s *Service) UpsertFXRate(ctx context.Context, tenant string, in FXInput) (models.FXRate, error) {
	base, err := NormalizeCurrency(in.Base, "base")
	if err != nil {
		return models.FXRate{}, err
	}
	quote, err := NormalizeCurrency(in.Quote, "quote")
	if err != nil {
		return models.FXRate{}, err
	}
	if base == quote {
		return models.FXRate{}, utils.Invalid("base and quote must differ")
	}
	if in.Rate <= 0 {
		return models.FXRate{}, utils.Invalid("rate must be > 0")
	}
	asOf, err := optionalDate(in.AsOf, "as_of")
	if err != nil {
		return models.FXRate{}, err
	}
	r := models.FXRate{Base: base, Quote: quote, Rate: in.Rate, AsOf: asOf, UpdatedAt: s.now().UTC()}
	if err := s.store.UpsertFXRate(ctx, tenant, r); err != nil {
		return models.FXRate{}, err
	}
	return r, nil
}

func (s *Service) DeleteFXRate(ctx context.Context, tenant, base, quote string) error {
	ok, err := s.store.DeleteFXRate(ctx, tenant, utils.UpperCode(base), utils.UpperCode(quote))
	if err != nil {
		return err
	}
	if !ok {
		return utils.NotFound("FX rate not found")
	}
	return nil
}

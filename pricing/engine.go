package pricing

import (
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	"cruiseops/models"
	"cruiseops/utils"
)

const (
	DefaultPriceType = "regular"
	DefaultCurrency  = "USD"
	taxRate          = 0.08
)

var defaultBaseByPax = map[string]int64{
	models.PaxAdult:  100_000,
	models.PaxChild:  60_000,
	models.PaxInfant: 10_000,
}

var defaultCabinMultiplier = map[string]float64{
	"inside":    1.0,
	"oceanview": 1.2,
	"balcony":   1.4,
	"suite":     2.0,
}

// Request is the engine input after defaults and normalization.
type Request struct {
	SailingDate       *time.Time
	CabinType         string
	CabinCategoryCode string
	PriceType         string
	Guests            []string
	CouponCode        string
	LoyaltyTier       string
	Currency          string
}

// Overrides replaces parts of the default tariff for one company.
type Overrides struct {
	BaseByPax        map[string]int64
	CabinMultiplier  map[string]float64
	DemandMultiplier *float64
	CategoryPrices   []models.CategoryPrice
}

func round(x float64) int64 { return int64(math.Round(x)) }

func demandMultiplier(sailing *time.Time, today time.Time) float64 {
	if sailing == nil {
		return 1.0
	}
	days := int(dateOnly(*sailing).Sub(dateOnly(today)).Hours() / 24)
	switch {
	case days < 0:
		return 1.25
	case days <= 30:
		return 1.20
	case days <= 90:
		return 1.10
	}
	return 1.0
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func discountRate(coupon, tier string, children int) float64 {
	code := strings.ToUpper(strings.TrimSpace(coupon))
	lt := strings.ToUpper(strings.TrimSpace(tier))

	rate := 0.0
	if code == "WELCOME10" {
		rate = math.Max(rate, 0.10)
	}
	if code == "FAMILY5" && children >= 2 {
		rate = math.Max(rate, 0.05)
	}
	if lt == "GOLD" {
		rate = math.Max(rate, 0.15)
	}
	if lt == "SILVER" {
		rate = math.Max(rate, 0.07)
	}
	return rate
}

// inWindow reports whether date falls inside the rule's effective window. Without a
// sailing date the window is not checked.
func inWindow(r models.CategoryPrice, date string) bool {
	if date == "" {
		return true
	}
	if r.EffectiveStart != "" && date < r.EffectiveStart {
		return false
	}
	if r.EffectiveEnd != "" && date > r.EffectiveEnd {
		return false
	}
	return true
}

func ruleType(r models.CategoryPrice) string {
	if t := utils.LowerCode(r.PriceType); t != "" {
		return t
	}
	return DefaultPriceType
}

// selectCategoryRule picks the occupancy bracket closest to the guest count: the largest
// min_guests not above it, else the smallest. The first rule wins ties.
func selectCategoryRule(req Request, rules []models.CategoryPrice) (models.CategoryPrice, bool) {
	code := utils.UpperCode(req.CabinCategoryCode)
	if code == "" {
		return models.CategoryPrice{}, false
	}
	priceType := utils.LowerCode(req.PriceType)
	if priceType == "" {
		priceType = DefaultPriceType
	}
	var date string
	if req.SailingDate != nil {
		date = req.SailingDate.UTC().Format(utils.DateLayout)
	}

	var matched []models.CategoryPrice
	for _, r := range rules {
		if utils.UpperCode(r.Code) == code && ruleType(r) == priceType && inWindow(r, date) {
			matched = append(matched, r)
		}
	}
	if len(matched) == 0 {
		return models.CategoryPrice{}, false
	}

	if cur := utils.UpperCode(req.Currency); cur != "" {
		var same []models.CategoryPrice
		for _, r := range matched {
			if utils.UpperCode(r.Currency) == cur {
				same = append(same, r)
			}
		}
		if len(same) > 0 {
			matched = same
		}
	}

	n := len(req.Guests)
	best, found := models.CategoryPrice{}, false
	for _, r := range matched {
		if r.MinGuests <= n && (!found || r.MinGuests > best.MinGuests) {
			best, found = r, true
		}
	}
	if found {
		return best, true
	}
	best = matched[0]
	for _, r := range matched[1:] {
		if r.MinGuests < best.MinGuests {
			best = r
		}
	}
	return best, true
}

func countPax(guests []string) (map[string]int, error) {
	counts := map[string]int{models.PaxAdult: 0, models.PaxChild: 0, models.PaxInfant: 0}
	for _, g := range guests {
		if _, ok := counts[g]; !ok {
			return nil, utils.Invalid("paxtype must be one of %s", strings.Join(models.Paxtypes, "|"))
		}
		counts[g]++
	}
	return counts, nil
}

// finish appends the discount and tax lines and totals the quote.
func finish(currency string, subtotal int64, lines []models.QuoteLine, rate float64) models.Quote {
	discounts := round(float64(subtotal) * rate)
	if discounts != 0 {
		lines = append(lines, models.QuoteLine{
			Code:        "discount",
			Description: fmt.Sprintf("Discount (%d%%)", int(math.Round(rate*100))),
			Amount:      -discounts,
		})
	}
	taxable := subtotal - discounts
	taxes := round(float64(taxable) * taxRate)
	if taxes != 0 {
		lines = append(lines, models.QuoteLine{
			Code:        "taxes_fees",
			Description: "Estimated taxes & fees (8%)",
			Amount:      taxes,
		})
	}
	return models.Quote{
		Currency:  currency,
		Subtotal:  subtotal,
		Discounts: discounts,
		TaxesFees: taxes,
		Total:     taxable + taxes,
		Lines:     lines,
	}
}

// Compute prices a request. Category pricing wins when a rule matches the cabin
// category; otherwise fares are built per paxtype from the tariff.
func Compute(req Request, today time.Time, ov *Overrides) (models.Quote, error) {
	if len(req.Guests) == 0 {
		return models.Quote{}, utils.Invalid("At least one guest is required")
	}
	counts, err := countPax(req.Guests)
	if err != nil {
		return models.Quote{}, err
	}
	rate := discountRate(req.CouponCode, req.LoyaltyTier, counts[models.PaxChild])
	currency := utils.UpperCode(req.Currency)
	if currency == "" {
		currency = DefaultCurrency
	}

	if ov != nil && len(ov.CategoryPrices) > 0 {
		if rule, ok := selectCategoryRule(req, ov.CategoryPrices); ok {
			if rule.PricePerPerson < 0 {
				return models.Quote{}, utils.Invalid("Invalid category pricing rule: price_per_person must be >= 0")
			}
			code := utils.UpperCode(req.CabinCategoryCode)
			minGuests := max(1, rule.MinGuests)
			billable := max(len(req.Guests), minGuests)
			subtotal := rule.PricePerPerson * int64(billable)
			if c := utils.UpperCode(rule.Currency); c != "" {
				currency = c
			}
			lines := []models.QuoteLine{{
				Code:        "fare.category." + code,
				Description: fmt.Sprintf("Cabin category %s (%s): %d pax billed (min %d)", code, currency, billable, minGuests),
				Amount:      subtotal,
			}}
			return finish(currency, subtotal, lines, rate), nil
		}
	}

	cabinType := utils.LowerCode(req.CabinType)
	if cabinType == "" {
		cabinType = "inside"
	}
	cabinMult, ok := defaultCabinMultiplier[cabinType]
	if !ok {
		return models.Quote{}, utils.Invalid("cabin_type must be one of %s", strings.Join(models.CabinTypes, "|"))
	}
	demandMult := demandMultiplier(req.SailingDate, today)
	baseByPax := defaultBaseByPax
	if ov != nil {
		if m, ok := ov.CabinMultiplier[cabinType]; ok {
			cabinMult = m
		}
		if ov.DemandMultiplier != nil {
			demandMult = *ov.DemandMultiplier
		}
		if len(ov.BaseByPax) > 0 {
			baseByPax = make(map[string]int64, len(defaultBaseByPax))
			for k, v := range defaultBaseByPax {
				baseByPax[k] = v
			}
			for k, v := range ov.BaseByPax {
				baseByPax[k] = v
			}
		}
	}

	var (
		lines    []models.QuoteLine
		subtotal int64
	)
	for _, pax := range models.Paxtypes {
		n := counts[pax]
		if n == 0 {
			continue
		}
		amount := round(float64(baseByPax[pax])*cabinMult*demandMult) * int64(n)
		subtotal += amount
		lines = append(lines, models.QuoteLine{
			Code:        "fare." + pax,
			Description: fmt.Sprintf("Base fare (%s) x%d", pax, n),
			Amount:      amount,
		})
	}
	return finish(currency, subtotal, lines, rate), nil
}

// Totals recomputes the quote summary from its lines.
func Totals(currency string, lines []models.QuoteLine) models.Quote {
	q := models.Quote{Currency: currency, Lines: lines}
	for _, l := range lines {
		switch {
		case strings.HasPrefix(l.Code, "fare."):
			q.Subtotal += l.Amount
		case l.Code == "discount" && l.Amount < 0:
			q.Discounts -= l.Amount
		case l.Code == "taxes_fees":
			q.TaxesFees += l.Amount
		}
		q.Total += l.Amount
	}
	if q.Lines == nil {
		q.Lines = []models.QuoteLine{}
	}
	return q
}

func validCabinType(t string) bool {
	return slices.Contains(models.CabinTypes, t)
}

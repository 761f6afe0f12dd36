package pricing

import (
	"strings"
	"unicode"

	"cruiseops/models"
	"cruiseops/utils"

	"github.com/shopspring/decimal"
)

// NormalizeCurrency upper-cases a 3-letter alphabetic ISO code.
func NormalizeCurrency(code, field string) (string, error) {
	c := strings.ToUpper(strings.TrimSpace(code))
	if len(c) != 3 || strings.IndexFunc(c, func(r rune) bool { return !unicode.IsLetter(r) }) >= 0 {
		return "", utils.Invalid("%s must be a 3-letter ISO currency code", field)
	}
	return c, nil
}

// ConvertCents applies rate to amount (or divides by it when inverse) and rounds half
// up to whole cents.
func ConvertCents(amount int64, rate float64, inverse bool) (int64, error) {
	r := decimal.NewFromFloat(rate)
	if !r.IsPositive() {
		return 0, utils.Invalid("FX rate must be > 0")
	}
	a := decimal.NewFromInt(amount)
	var out decimal.Decimal
	if inverse {
		out = a.Div(r)
	} else {
		out = a.Mul(r)
	}
	return out.Round(0).IntPart(), nil
}

// RateLookup returns the stored rate for base->quote, if any.
type RateLookup func(base, quote string) (models.FXRate, bool, error)

// ConvertQuote converts every line of q into dst and recomputes the totals. A stored
// inverse pair is used by division.
func ConvertQuote(q models.Quote, dst string, lookup RateLookup) (models.Quote, error) {
	src, err := NormalizeCurrency(q.Currency, "quote.currency")
	if err != nil {
		return q, err
	}
	dst, err = NormalizeCurrency(dst, "currency")
	if err != nil {
		return q, err
	}
	if src == dst {
		return q, nil
	}

	rate, inverse := 0.0, false
	if fx, ok, err := lookup(src, dst); err != nil {
		return q, err
	} else if ok {
		rate = fx.Rate
	} else if fx, ok, err := lookup(dst, src); err != nil {
		return q, err
	} else if ok {
		rate, inverse = fx.Rate, true
	} else {
		return q, utils.Invalid("Missing FX rate for %s->%s", src, dst)
	}

	lines := make([]models.QuoteLine, 0, len(q.Lines))
	for _, l := range q.Lines {
		amount, err := ConvertCents(l.Amount, rate, inverse)
		if err != nil {
			return q, err
		}
		lines = append(lines, models.QuoteLine{Code: l.Code, Description: l.Description, Amount: amount})
	}
	return Totals(dst, lines), nil
}

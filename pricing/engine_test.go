package pricing

import (
	"net/http"
	"testing"
	"time"

	"cruiseops/models"
	"cruiseops/utils"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var today = time.Date(2025, 3, 1, 15, 30, 0, 0, time.UTC)

func day(s string) *time.Time {
	t, err := time.Parse(utils.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return &t
}

func TestComputeDefaultTariff(t *testing.T) {
	q, err := Compute(Request{CabinType: "inside", Guests: []string{"adult", "adult"}}, today, nil)
	require.NoError(t, err)

	want := models.Quote{
		Currency:  "USD",
		Subtotal:  200000,
		TaxesFees: 16000,
		Total:     216000,
		Lines: []models.QuoteLine{
			{Code: "fare.adult", Description: "Base fare (adult) x2", Amount: 200000},
			{Code: "taxes_fees", Description: "Estimated taxes & fees (8%)", Amount: 16000},
		},
	}
	if diff := cmp.Diff(want, q); diff != "" {
		t.Fatalf("quote mismatch (-want +got):\n%s", diff)
	}
}

func TestComputeDemandAndLoyalty(t *testing.T) {
	q, err := Compute(Request{
		SailingDate: day("2025-03-21"),
		CabinType:   "balcony",
		Guests:      []string{"child", "adult"},
		LoyaltyTier: " gold ",
	}, today, nil)
	require.NoError(t, err)

	assert.Equal(t, int64(268800), q.Subtotal)
	assert.Equal(t, int64(40320), q.Discounts)
	assert.Equal(t, int64(18278), q.TaxesFees)
	assert.Equal(t, int64(246758), q.Total)
	require.Len(t, q.Lines, 4)
	assert.Equal(t, "fare.adult", q.Lines[0].Code)
	assert.Equal(t, int64(168000), q.Lines[0].Amount)
	assert.Equal(t, "fare.child", q.Lines[1].Code)
	assert.Equal(t, models.QuoteLine{Code: "discount", Description: "Discount (15%)", Amount: -40320}, q.Lines[2])
}

func TestDemandMultiplierBands(t *testing.T) {
	cases := []struct {
		date string
		want float64
	}{
		{"2025-02-28", 1.25},
		{"2025-03-01", 1.20},
		{"2025-03-31", 1.20},
		{"2025-04-01", 1.10},
		{"2025-05-30", 1.10},
		{"2025-05-31", 1.0},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, demandMultiplier(day(c.date), today), c.date)
	}
	assert.Equal(t, 1.0, demandMultiplier(nil, today))
}

func TestDiscountRate(t *testing.T) {
	assert.Equal(t, 0.10, discountRate("welcome10", "silver", 0))
	assert.Equal(t, 0.0, discountRate("FAMILY5", "", 1))
	assert.Equal(t, 0.05, discountRate("FAMILY5", "", 2))
	assert.Equal(t, 0.15, discountRate("WELCOME10", "GOLD", 0))
	assert.Equal(t, 0.0, discountRate("BOGUS", "BRONZE", 3))

	q, err := Compute(Request{Guests: []string{"adult", "child", "child"}, CouponCode: "family5"}, today, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(220000), q.Subtotal)
	assert.Equal(t, int64(11000), q.Discounts)
	assert.Equal(t, int64(225720), q.Total)
}

func TestComputeValidation(t *testing.T) {
	_, err := Compute(Request{}, today, nil)
	require.Error(t, err)
	assert.Equal(t, "At least one guest is required", err.Error())
	assert.Equal(t, http.StatusBadRequest, utils.Status(err))

	_, err = Compute(Request{CabinType: "penthouse", Guests: []string{"adult"}}, today, nil)
	assert.Error(t, err)

	_, err = Compute(Request{Guests: []string{"senior"}}, today, nil)
	assert.Error(t, err)
}

func TestOverridesMergeWithDefaults(t *testing.T) {
	demand := 1.5
	ov := &Overrides{
		BaseByPax:        map[string]int64{"adult": 80000},
		CabinMultiplier:  map[string]float64{"inside": 1.1},
		DemandMultiplier: &demand,
	}
	q, err := Compute(Request{Guests: []string{"adult", "infant"}, SailingDate: day("2025-12-01")}, today, ov)
	require.NoError(t, err)
	// adult 80000*1.1*1.5, infant keeps the default 10000
	assert.Equal(t, int64(132000), q.Lines[0].Amount)
	assert.Equal(t, int64(16500), q.Lines[1].Amount)
}

func TestCategoryRuleSelection(t *testing.T) {
	rules := []models.CategoryPrice{
		{Code: "co3", Currency: "USD", MinGuests: 2, PricePerPerson: 50000},
		{Code: "CO3", Currency: "USD", MinGuests: 4, PricePerPerson: 45000},
		{Code: "CO3", PriceType: "internet", Currency: "USD", MinGuests: 1, PricePerPerson: 1000},
		{Code: "CO3", Currency: "EUR", MinGuests: 2, PricePerPerson: 47000},
	}
	ov := &Overrides{CategoryPrices: rules}

	cases := []struct {
		guests int
		want   int64
	}{
		{1, 100000},
		{3, 150000},
		{5, 225000},
	}
	for _, c := range cases {
		guests := make([]string, c.guests)
		for i := range guests {
			guests[i] = "adult"
		}
		q, err := Compute(Request{CabinCategoryCode: "co3", Guests: guests, Currency: "USD"}, today, ov)
		require.NoError(t, err)
		require.Len(t, q.Lines, 2)
		assert.Equal(t, "fare.category.CO3", q.Lines[0].Code)
		assert.Equal(t, c.want, q.Subtotal, "guests=%d", c.guests)
	}

	q, err := Compute(Request{CabinCategoryCode: "CO3", Guests: []string{"adult", "adult"}, Currency: "eur"}, today, ov)
	require.NoError(t, err)
	assert.Equal(t, "EUR", q.Currency)
	assert.Equal(t, int64(94000), q.Subtotal)

	q, err = Compute(Request{CabinCategoryCode: "CO3", PriceType: "Internet", Guests: []string{"adult"}}, today, ov)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), q.Subtotal)
}

func TestCategoryRuleEffectiveWindow(t *testing.T) {
	ov := &Overrides{CategoryPrices: []models.CategoryPrice{
		{Code: "B2", Currency: "USD", MinGuests: 1, PricePerPerson: 90000, EffectiveStart: "2025-06-01", EffectiveEnd: "2025-06-30"},
	}}
	q, err := Compute(Request{CabinCategoryCode: "B2", Guests: []string{"adult"}, SailingDate: day("2025-06-15")}, today, ov)
	require.NoError(t, err)
	assert.Equal(t, "fare.category.B2", q.Lines[0].Code)

	q, err = Compute(Request{CabinCategoryCode: "B2", Guests: []string{"adult"}, SailingDate: day("2025-07-10")}, today, ov)
	require.NoError(t, err)
	assert.Equal(t, "fare.adult", q.Lines[0].Code)
}

func TestCategoryRuleNegativePrice(t *testing.T) {
	ov := &Overrides{CategoryPrices: []models.CategoryPrice{{Code: "X", MinGuests: 1, PricePerPerson: -1}}}
	_, err := Compute(Request{CabinCategoryCode: "x", Guests: []string{"adult"}}, today, ov)
	assert.Error(t, err)
}

func TestTotals(t *testing.T) {
	q := Totals("USD", []models.QuoteLine{
		{Code: "fare.adult", Amount: 1000},
		{Code: "fare.child", Amount: 500},
		{Code: "discount", Amount: -150},
		{Code: "taxes_fees", Amount: 108},
	})
	assert.Equal(t, int64(1500), q.Subtotal)
	assert.Equal(t, int64(150), q.Discounts)
	assert.Equal(t, int64(108), q.TaxesFees)
	assert.Equal(t, int64(1458), q.Total)
}

package pricing

import (
	"testing"
	"time"

	"github.com/fatflowers/agrobill/pkg/apperr"
	"github.com/fatflowers/agrobill/pkg/config"
	"github.com/fatflowers/agrobill/pkg/types"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func basicPlan() *types.Plan {
	return &types.Plan{
		ID:     "basic",
		Name:   "Basic",
		Unit:   types.AreaUnitHectare,
		Active: true,
		Pricing: []types.PricingEntry{
			{Currency: "INR", BillingCycle: types.BillingCycleMonthly, Unit: types.AreaUnitHectare, UnitPriceMinor: 5000},
			{Currency: "INR", BillingCycle: types.BillingCycleSeason, Unit: types.AreaUnitHectare, UnitPriceMinor: 3333},
			{Currency: "USD", BillingCycle: types.BillingCycleMonthly, Unit: types.AreaUnitHectare, UnitPriceMinor: 60},
		},
	}
}

func newResolver(t *testing.T, rates map[string]string) *Resolver {
	t.Helper()
	r, err := NewResolver(&config.Config{Gateway: config.GatewayConfig{SettlementCurrency: "INR", ExchangeRates: rates}})
	require.NoError(t, err)
	return r
}

func TestResolveBasicMonthly(t *testing.T) {
	r := newResolver(t, nil)
	q, err := r.Resolve(basicPlan(), Request{
		Currency:     "INR",
		BillingCycle: types.BillingCycleMonthly,
		Quantity:     decimal.RequireFromString("2.5"),
	})
	require.NoError(t, err)
	require.False(t, q.Trial)
	require.Equal(t, int64(5000), q.UnitPriceMinor)
	require.Equal(t, int64(12500), q.AmountMinor)
	require.Equal(t, int64(12500), q.ChargedAmountMinor)
	require.Equal(t, "INR", *q.ChargedCurrency)
	require.Nil(t, q.ExchangeRate)
}

func TestResolveRoundsHalfUp(t *testing.T) {
	r := newResolver(t, nil)
	q, err := r.Resolve(basicPlan(), Request{
		Currency:     "inr",
		BillingCycle: types.BillingCycleSeason,
		Quantity:     decimal.RequireFromString("2.5"),
	})
	require.NoError(t, err)
	require.Equal(t, int64(8333), q.AmountMinor)
	require.Equal(t, "INR", *q.Currency)

	q, err = r.Resolve(basicPlan(), Request{
		Currency:     "INR",
		BillingCycle: types.BillingCycleSeason,
		Quantity:     decimal.NewFromInt(3),
	})
	require.NoError(t, err)
	require.Equal(t, int64(9999), q.AmountMinor)
}

func TestResolveTrialSkipsPricingTable(t *testing.T) {
	r := newResolver(t, nil)
	fixed := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return fixed }

	plan := &types.Plan{ID: "trial", Unit: types.AreaUnitAcre, IsTrial: true, TrialDays: 14}
	q, err := r.Resolve(plan, Request{Currency: "XXX", BillingCycle: types.BillingCycleMonthly})
	require.NoError(t, err)
	require.True(t, q.Trial)
	require.Equal(t, types.BillingCycleTrial, q.BillingCycle)
	require.Zero(t, q.AmountMinor)
	require.Zero(t, q.ChargedAmountMinor)
	require.Nil(t, q.Currency)
	require.Nil(t, q.ChargedCurrency)
	require.Equal(t, fixed.AddDate(0, 0, 14), *q.TrialEnd)
}

func TestResolvePricingNotFound(t *testing.T) {
	r := newResolver(t, nil)
	_, err := r.Resolve(basicPlan(), Request{Currency: "INR", BillingCycle: types.BillingCycleYearly, Quantity: decimal.NewFromInt(1)})
	require.True(t, apperr.IsCode(err, apperr.CodePricingNotFound))

	_, err = r.Resolve(basicPlan(), Request{Currency: "EUR", BillingCycle: types.BillingCycleMonthly, Quantity: decimal.NewFromInt(1)})
	require.True(t, apperr.IsCode(err, apperr.CodePricingNotFound))
}

func TestResolveRejectsNonPositiveQuantity(t *testing.T) {
	r := newResolver(t, nil)
	_, err := r.Resolve(basicPlan(), Request{Currency: "INR", BillingCycle: types.BillingCycleMonthly, Quantity: decimal.Zero})
	require.True(t, apperr.IsCode(err, apperr.CodeValidation))
}

func TestResolveNormalizesAcresToHectares(t *testing.T) {
	r := newResolver(t, nil)
	// 2.47105 acres is exactly one hectare
	q, err := r.Resolve(basicPlan(), Request{
		Currency:     "INR",
		BillingCycle: types.BillingCycleMonthly,
		Quantity:     decimal.RequireFromString("4.942100"),
		Unit:         types.AreaUnitAcre,
	})
	require.NoError(t, err)
	require.Equal(t, types.AreaUnitHectare, q.Unit)
	require.True(t, q.Quantity.Equal(decimal.NewFromInt(2)), q.Quantity.String())
	require.Equal(t, int64(10000), q.AmountMinor)
}

func TestResolveCrossCurrency(t *testing.T) {
	r := newResolver(t, map[string]string{"usd": "83.125"})
	q, err := r.Resolve(basicPlan(), Request{
		Currency:     "USD",
		BillingCycle: types.BillingCycleMonthly,
		Quantity:     decimal.RequireFromString("2.5"),
	})
	require.NoError(t, err)
	require.Equal(t, "USD", *q.Currency)
	require.Equal(t, int64(150), q.AmountMinor)
	require.Equal(t, "INR", *q.ChargedCurrency)
	// 150 * 83.125 = 12468.75
	require.Equal(t, int64(12469), q.ChargedAmountMinor)
	require.Equal(t, "83.125", q.ExchangeRate.String())
}

func TestResolveCrossCurrencyWithoutRate(t *testing.T) {
	r := newResolver(t, nil)
	_, err := r.Resolve(basicPlan(), Request{Currency: "USD", BillingCycle: types.BillingCycleMonthly, Quantity: decimal.NewFromInt(1)})
	require.True(t, apperr.IsCode(err, apperr.CodePricingNotFound))
}

func TestNewResolverRejectsBadRates(t *testing.T) {
	_, err := NewResolver(&config.Config{Gateway: config.GatewayConfig{ExchangeRates: map[string]string{"usd": "abc"}}})
	require.Error(t, err)
	_, err = NewResolver(&config.Config{Gateway: config.GatewayConfig{ExchangeRates: map[string]string{"usd": "-1"}}})
	require.Error(t, err)
}

func TestNormalize(t *testing.T) {
	q, err := Normalize(decimal.NewFromInt(1), types.AreaUnitHectare, types.AreaUnitAcre)
	require.NoError(t, err)
	require.Equal(t, "2.47105", q.String())

	_, err = Normalize(decimal.NewFromInt(1), "sqft", types.AreaUnitAcre)
	require.True(t, apperr.IsCode(err, apperr.CodeValidation))
}

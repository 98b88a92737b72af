package pricing

import (
	"fmt"
	"strings"
	"time"

	"github.com/fatflowers/agrobill/pkg/apperr"
	"github.com/fatflowers/agrobill/pkg/config"
	"github.com/fatflowers/agrobill/pkg/types"

	"github.com/shopspring/decimal"
	"go.uber.org/fx"
)

// AcresPerHectare is the conversion used to normalise areas into the plan's unit.
var AcresPerHectare = decimal.RequireFromString("2.47105")

// Request is one price lookup. Unit is the unit Quantity is expressed in; empty means the plan's unit.
type Request struct {
	Currency     string
	BillingCycle types.BillingCycle
	Quantity     decimal.Decimal
	Unit         types.AreaUnit
}

// Quote is the frozen commercial snapshot for a new subscription.
type Quote struct {
	Trial        bool
	TrialEnd     *time.Time
	BillingCycle types.BillingCycle
	// Unit and Quantity are always in the plan's unit.
	Unit           types.AreaUnit
	Quantity       decimal.Decimal
	Currency       *string
	UnitPriceMinor int64
	AmountMinor    int64
	// Charged* describe what the gateway collects; they differ from the display
	// terms only when Currency is not the settlement currency.
	ChargedCurrency    *string
	ChargedAmountMinor int64
	ExchangeRate       *decimal.Decimal
}

type Resolver struct {
	settlement string
	rates      map[string]decimal.Decimal
	now        func() time.Time
}

// NewResolver parses the configured exchange rates. Rate keys are matched case-insensitively.
func NewResolver(cfg *config.Config) (*Resolver, error) {
	rates := make(map[string]decimal.Decimal, len(cfg.Gateway.ExchangeRates))
	for currency, raw := range cfg.Gateway.ExchangeRates {
		rate, err := decimal.NewFromString(strings.TrimSpace(raw))
		if err != nil {
			return nil, fmt.Errorf("invalid exchange rate for %s: %w", currency, err)
		}
		if !rate.IsPositive() {
			return nil, fmt.Errorf("exchange rate for %s must be positive", currency)
		}
		rates[strings.ToUpper(currency)] = rate
	}
	settlement := strings.ToUpper(cfg.Gateway.SettlementCurrency)
	if settlement == "" {
		settlement = "INR"
	}
	return &Resolver{settlement: settlement, rates: rates, now: time.Now}, nil
}

func (r *Resolver) SettlementCurrency() string { return r.settlement }

// Resolve prices req against plan. Trial plans short-circuit without reading the pricing table.
func (r *Resolver) Resolve(plan *types.Plan, req Request) (*Quote, error) {
	if plan == nil {
		return nil, apperr.New(apperr.CodeNotFound, "plan not found")
	}
	if plan.IsTrial {
		end := r.now().AddDate(0, 0, plan.TrialDays)
		return &Quote{
			Trial:        true,
			TrialEnd:     &end,
			BillingCycle: types.BillingCycleTrial,
			Unit:         plan.Unit,
			Quantity:     normalizeOrZero(req.Quantity, req.Unit, plan.Unit),
		}, nil
	}

	if !req.Quantity.IsPositive() {
		return nil, apperr.New(apperr.CodeValidation, "invalid request").
			WithDetails(map[string]string{"quantity": "must be greater than zero"})
	}
	quantity, err := Normalize(req.Quantity, req.Unit, plan.Unit)
	if err != nil {
		return nil, err
	}

	currency := strings.ToUpper(req.Currency)
	entry := plan.FindPricing(currency, req.BillingCycle, plan.Unit)
	if entry == nil {
		return nil, apperr.Newf(apperr.CodePricingNotFound, "no price for plan %s in %s/%s/%s", plan.ID, currency, req.BillingCycle, plan.Unit)
	}

	total := RoundHalfUp(decimal.NewFromInt(entry.UnitPriceMinor).Mul(quantity))
	q := &Quote{
		BillingCycle:       req.BillingCycle,
		Unit:               plan.Unit,
		Quantity:           quantity,
		Currency:           &currency,
		UnitPriceMinor:     entry.UnitPriceMinor,
		AmountMinor:        total,
		ChargedCurrency:    &currency,
		ChargedAmountMinor: total,
	}
	if currency == r.settlement {
		return q, nil
	}

	rate, ok := r.rates[currency]
	if !ok {
		return nil, apperr.Newf(apperr.CodePricingNotFound, "no exchange rate from %s to %s", currency, r.settlement)
	}
	settlement := r.settlement
	q.ChargedCurrency = &settlement
	q.ChargedAmountMinor = RoundHalfUp(decimal.NewFromInt(total).Mul(rate))
	q.ExchangeRate = &rate
	return q, nil
}

// RoundHalfUp rounds a non-negative minor-unit amount to the nearest integer, halves up.
func RoundHalfUp(d decimal.Decimal) int64 {
	return d.Round(0).IntPart()
}

// Normalize converts quantity from unit into target. An empty unit means target.
func Normalize(quantity decimal.Decimal, from, target types.AreaUnit) (decimal.Decimal, error) {
	if from == "" || from == target {
		return quantity, nil
	}
	switch {
	case from == types.AreaUnitHectare && target == types.AreaUnitAcre:
		return quantity.Mul(AcresPerHectare), nil
	case from == types.AreaUnitAcre && target == types.AreaUnitHectare:
		return quantity.DivRound(AcresPerHectare, 6), nil
	}
	return decimal.Zero, apperr.New(apperr.CodeValidation, "invalid request").
		WithDetails(map[string]string{"unit": fmt.Sprintf("cannot convert %s to %s", from, target)})
}

func normalizeOrZero(quantity decimal.Decimal, from, target types.AreaUnit) decimal.Decimal {
	q, err := Normalize(quantity, from, target)
	if err != nil {
		return decimal.Zero
	}
	return q
}

var Module = fx.Options(
	fx.Provide(NewResolver),
)

package types

import "strings"

type BillingCycle string

const (
	BillingCycleTrial   BillingCycle = "trial"
	BillingCycleMonthly BillingCycle = "monthly"
	BillingCycleYearly  BillingCycle = "yearly"
	BillingCycleSeason  BillingCycle = "season"
)

// Recurring reports whether the cycle is billed through a gateway subscription.
func (c BillingCycle) Recurring() bool {
	return c == BillingCycleMonthly || c == BillingCycleYearly
}

func (c BillingCycle) Valid() bool {
	switch c {
	case BillingCycleTrial, BillingCycleMonthly, BillingCycleYearly, BillingCycleSeason:
		return true
	}
	return false
}

// AreaUnit is the unit a plan is priced in.
type AreaUnit string

const (
	AreaUnitHectare AreaUnit = "hectare"
	AreaUnitAcre    AreaUnit = "acre"
)

func (u AreaUnit) Valid() bool {
	return u == AreaUnitHectare || u == AreaUnitAcre
}

type PaymentProvider string

const (
	PaymentProviderRazorpay PaymentProvider = "razorpay"
	PaymentProviderInner    PaymentProvider = "inner"
)

// PricingEntry is one row of a plan's pricing table.
type PricingEntry struct {
	Currency       string       `json:"currency" mapstructure:"currency"`
	BillingCycle   BillingCycle `json:"billing_cycle" mapstructure:"billing_cycle"`
	Unit           AreaUnit     `json:"unit" mapstructure:"unit"`
	UnitPriceMinor int64        `json:"unit_price_minor" mapstructure:"unit_price_minor"`
}

// Plan is the read-only catalogue entry a subscription is priced against.
type Plan struct {
	ID        string         `json:"id" mapstructure:"id"`
	Name      string         `json:"name" mapstructure:"name"`
	Unit      AreaUnit       `json:"unit" mapstructure:"unit"`
	IsTrial   bool           `json:"is_trial" mapstructure:"is_trial"`
	TrialDays int            `json:"trial_days" mapstructure:"trial_days"`
	Active    bool           `json:"active" mapstructure:"active"`
	Pricing   []PricingEntry `json:"pricing" mapstructure:"pricing"`
}

// FindPricing returns the entry matching currency, cycle and unit, or nil.
func (p *Plan) FindPricing(currency string, cycle BillingCycle, unit AreaUnit) *PricingEntry {
	if p == nil {
		return nil
	}
	for i := range p.Pricing {
		e := &p.Pricing[i]
		if strings.EqualFold(e.Currency, currency) && e.BillingCycle == cycle && e.Unit == unit {
			return e
		}
	}
	return nil
}

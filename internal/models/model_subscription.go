package models

import (
	"time"

	"github.com/fatflowers/agrobill/pkg/types"

	"gorm.io/datatypes"
)

// Subscription is one (user, field, plan) enrollment. The commercial terms are a
// snapshot taken at creation and are never recomputed from the plan afterwards.
type Subscription struct {
	ID     string `gorm:"column:id;type:uuid;primary_key" json:"id"`
	UserID string `gorm:"column:user_id;type:varchar(64);not null;index" json:"user_id"`
	// A field holds at most one active and one pending subscription at a time.
	FieldID string `gorm:"column:field_id;type:varchar(64);not null;index:idx_field_status,priority:1;uniqueIndex:idx_subscription_field_active,where:active;uniqueIndex:idx_subscription_field_pending,where:status = 'pending'" json:"field_id"`
	PlanID  string `gorm:"column:plan_id;type:varchar(64);not null" json:"plan_id"`

	BillingCycle types.BillingCycle `gorm:"column:billing_cycle;type:varchar(16);not null" json:"billing_cycle"`
	Unit         types.AreaUnit     `gorm:"column:unit;type:varchar(16);not null" json:"unit"`
	// Quantity is the area in Unit, stored as a decimal string to keep it exact.
	Quantity       string  `gorm:"column:quantity;type:varchar(32);not null" json:"quantity"`
	Currency       *string `gorm:"column:currency;type:varchar(8)" json:"currency"`
	UnitPriceMinor int64   `gorm:"column:unit_price_minor;type:bigint;not null;default:0" json:"unit_price_minor"`
	AmountMinor    int64   `gorm:"column:amount_minor;type:bigint;not null;default:0" json:"amount_minor"`
	// Settlement snapshot; equals the display terms when no conversion applied.
	ChargedCurrency    *string `gorm:"column:charged_currency;type:varchar(8)" json:"charged_currency"`
	ChargedAmountMinor int64   `gorm:"column:charged_amount_minor;type:bigint;not null;default:0" json:"charged_amount_minor"`
	ExchangeRate       *string `gorm:"column:exchange_rate;type:varchar(32)" json:"exchange_rate"`

	// GatewayRef is the gateway subscription id (recurring) or order id (season).
	GatewayRef        *string `gorm:"column:gateway_ref;type:varchar(64);uniqueIndex" json:"gateway_ref"`
	GatewayPlanID     *string `gorm:"column:gateway_plan_id;type:varchar(64)" json:"gateway_plan_id"`
	GatewayCustomerID *string `gorm:"column:gateway_customer_id;type:varchar(64)" json:"gateway_customer_id"`
	GatewayInvoiceID  *string `gorm:"column:gateway_invoice_id;type:varchar(64)" json:"gateway_invoice_id"`

	Status types.SubscriptionStatus `gorm:"column:status;type:varchar(16);not null;index:idx_field_status,priority:2" json:"status"`
	// Active mirrors Status == active and is only written together with Status.
	Active bool `gorm:"column:active;not null;default:false" json:"active"`

	StartDate     *time.Time `gorm:"column:start_date;default:null" json:"start_date"`
	EndDate       *time.Time `gorm:"column:end_date;default:null" json:"end_date"`
	NextBillingAt *time.Time `gorm:"column:next_billing_at;default:null" json:"next_billing_at"`

	Notes datatypes.JSONMap `gorm:"column:notes;type:jsonb;default:'{}'" json:"notes"`
	// Version is bumped by every compare-and-set write.
	Version   int64     `gorm:"column:version;not null;default:1" json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Subscription) TableName() string {
	return "subscription"
}

func (s *Subscription) IsTrial() bool {
	return s != nil && s.BillingCycle == types.BillingCycleTrial
}

// SetStatus updates Status and keeps Active consistent with it.
func (s *Subscription) SetStatus(status types.SubscriptionStatus) {
	s.Status = status
	s.Active = status == types.SubscriptionStatusActive
}

// Clone returns a copy that shares no mutable state with s.
func (s *Subscription) Clone() *Subscription {
	if s == nil {
		return nil
	}
	cp := *s
	if s.Notes != nil {
		cp.Notes = make(datatypes.JSONMap, len(s.Notes))
		for k, v := range s.Notes {
			cp.Notes[k] = v
		}
	}
	return &cp
}

package models

import (
	"time"

	"github.com/fatflowers/agrobill/pkg/types"

	"gorm.io/datatypes"
)

// Payment is one ledger entry per provider-side payment attempt. Rows are only
// ever inserted; ProviderPaymentID is the dedup key.
type Payment struct {
	ID             string `gorm:"column:id;type:uuid;primary_key" json:"id"`
	SubscriptionID string `gorm:"column:subscription_id;type:uuid;not null;index" json:"subscription_id"`
	UserID         string `gorm:"column:user_id;type:varchar(64);index" json:"user_id"`
	FieldID        string `gorm:"column:field_id;type:varchar(64)" json:"field_id"`

	ProviderID        types.PaymentProvider `gorm:"column:provider_id;type:varchar(32);not null" json:"provider_id"`
	ProviderPaymentID string                `gorm:"column:provider_payment_id;type:varchar(64);not null;uniqueIndex" json:"provider_payment_id"`
	ProviderOrderID   *string               `gorm:"column:provider_order_id;type:varchar(64)" json:"provider_order_id"`
	ProviderInvoiceID *string               `gorm:"column:provider_invoice_id;type:varchar(64)" json:"provider_invoice_id"`

	AmountMinor int64               `gorm:"column:amount_minor;type:bigint;not null" json:"amount_minor"`
	Currency    string              `gorm:"column:currency;type:varchar(8);not null" json:"currency"`
	Status      types.PaymentStatus `gorm:"column:status;type:varchar(16);not null" json:"status"`

	Method    *string `gorm:"column:method;type:varchar(32)" json:"method"`
	CardLast4 *string `gorm:"column:card_last4;type:varchar(4)" json:"card_last4"`
	VPA       *string `gorm:"column:vpa;type:varchar(128)" json:"vpa"`
	Bank      *string `gorm:"column:bank;type:varchar(64)" json:"bank"`

	InvoiceNumber *string    `gorm:"column:invoice_number;type:varchar(64)" json:"invoice_number"`
	InvoiceDate   *time.Time `gorm:"column:invoice_date;default:null" json:"invoice_date"`
	PeriodStart   *time.Time `gorm:"column:period_start;default:null" json:"period_start"`
	PeriodEnd     *time.Time `gorm:"column:period_end;default:null" json:"period_end"`

	// Source names the path that observed the payment first (checkout or webhook).
	Source    string         `gorm:"column:source;type:varchar(16);not null" json:"source"`
	Raw       datatypes.JSON `gorm:"column:raw;type:jsonb" json:"raw"`
	CreatedAt time.Time      `json:"created_at"`
}

func (Payment) TableName() string {
	return "payment"
}

package ledger

import (
	"encoding/json"

	"github.com/fatflowers/agrobill/internal/models"
	"github.com/fatflowers/agrobill/internal/platform/razorpay"
	"github.com/fatflowers/agrobill/pkg/types"

	"github.com/samber/lo"
	"gorm.io/datatypes"
)

// PaymentStatusOf maps a gateway payment status onto the ledger vocabulary.
func PaymentStatusOf(gatewayStatus string) types.PaymentStatus {
	switch gatewayStatus {
	case "authorized":
		return types.PaymentStatusAuthorized
	case "captured":
		return types.PaymentStatusCaptured
	case "failed":
		return types.PaymentStatusFailed
	case "refunded":
		return types.PaymentStatusRefunded
	}
	return types.PaymentStatusCreated
}

// FromGateway builds a ledger row for sub from a gateway payment and, when known, its invoice.
func FromGateway(sub *models.Subscription, p *razorpay.Payment, inv *razorpay.Invoice, source string) *models.Payment {
	row := &models.Payment{
		SubscriptionID:    sub.ID,
		UserID:            sub.UserID,
		FieldID:           sub.FieldID,
		ProviderID:        types.PaymentProviderRazorpay,
		ProviderPaymentID: p.ID,
		ProviderOrderID:   nonEmpty(p.OrderID),
		ProviderInvoiceID: nonEmpty(p.InvoiceID),
		AmountMinor:       p.Amount,
		Currency:          p.Currency,
		Status:            PaymentStatusOf(p.Status),
		Method:            nonEmpty(p.Method),
		VPA:               nonEmpty(p.VPA),
		Bank:              nonEmpty(p.Bank),
		Source:            source,
	}
	if p.Card != nil {
		row.CardLast4 = nonEmpty(p.Card.Last4)
	}
	if inv != nil {
		row.ProviderInvoiceID = lo.CoalesceOrEmpty(nonEmpty(inv.ID), row.ProviderInvoiceID)
		row.InvoiceNumber = inv.InvoiceNumber
		if row.InvoiceNumber == nil {
			row.InvoiceNumber = nonEmpty(inv.Receipt)
		}
		row.InvoiceDate = razorpay.UnixTime(lo.CoalesceOrEmpty(inv.Date, inv.IssuedAt))
		row.PeriodStart = razorpay.UnixTime(inv.BillingStart)
		row.PeriodEnd = razorpay.UnixTime(inv.BillingEnd)
	}
	if raw, err := json.Marshal(p); err == nil {
		row.Raw = datatypes.JSON(raw)
	}
	return row
}

func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

package webhook

import (
	"context"
	"fmt"

	"github.com/fatflowers/agrobill/internal/models"
	"github.com/fatflowers/agrobill/internal/platform/razorpay"
	"github.com/fatflowers/agrobill/pkg/apperr"
	"github.com/fatflowers/agrobill/pkg/logctx"
)

// resolve finds the local subscription an event refers to. It tries, in order, the
// subscription entity, the invoice entity (fetching the invoice when it lacks a
// subscription id), then the payment entity's subscription id and order id, and finally
// the order entity. A nil subscription with a nil error means the event matches nothing.
// The returned invoice is the payload's or the fetched one, for ledger enrichment.
func (r *Router) resolve(ctx context.Context, ev *razorpay.Event) (*models.Subscription, *razorpay.Invoice, error) {
	invoice := ev.Payload.InvoiceEntity()

	if s := ev.Payload.SubscriptionEntity(); s != nil {
		if sub, err := r.lookup(ctx, s.ID); sub != nil || err != nil {
			return sub, invoice, err
		}
	}

	payment := ev.Payload.PaymentEntity()
	invoiceID := ""
	if invoice != nil {
		invoiceID = invoice.ID
	} else if payment != nil {
		invoiceID = payment.InvoiceID
	}

	if invoice != nil && invoice.SubscriptionID != "" {
		if sub, err := r.lookup(ctx, invoice.SubscriptionID); sub != nil || err != nil {
			return sub, invoice, err
		}
	} else if invoiceID != "" && (payment == nil || payment.SubscriptionID == "") {
		fetched, err := r.gateway.FetchInvoice(ctx, invoiceID)
		switch {
		case razorpay.IsNotFound(err):
			logctx.FromCtx(ctx, r.log).Warnw("webhook_invoice_not_found", "invoice_id", invoiceID)
		case err != nil:
			return nil, nil, fmt.Errorf("fetch invoice %s: %w", invoiceID, err)
		default:
			invoice = fetched
			if sub, err := r.lookup(ctx, fetched.SubscriptionID); sub != nil || err != nil {
				return sub, invoice, err
			}
			if sub, err := r.lookup(ctx, fetched.OrderID); sub != nil || err != nil {
				return sub, invoice, err
			}
		}
	}

	if payment != nil {
		for _, ref := range []string{payment.SubscriptionID, payment.OrderID} {
			if sub, err := r.lookup(ctx, ref); sub != nil || err != nil {
				return sub, invoice, err
			}
		}
	}

	if o := ev.Payload.OrderEntity(); o != nil {
		if sub, err := r.lookup(ctx, o.ID); sub != nil || err != nil {
			return sub, invoice, err
		}
	}
	return nil, invoice, nil
}

// lookup returns the subscription with gateway reference ref; unknown refs yield (nil, nil).
func (r *Router) lookup(ctx context.Context, ref string) (*models.Subscription, error) {
	if ref == "" {
		return nil, nil
	}
	sub, err := r.subs.GetByGatewayRef(ctx, ref)
	if apperr.IsCode(err, apperr.CodeNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return sub, nil
}

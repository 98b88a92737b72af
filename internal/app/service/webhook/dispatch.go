package webhook

import (
	"context"
	"fmt"
	"time"

	"github.com/fatflowers/agrobill/internal/app/service/ledger"
	"github.com/fatflowers/agrobill/internal/app/service/subscription"
	"github.com/fatflowers/agrobill/internal/models"
	"github.com/fatflowers/agrobill/internal/platform/razorpay"
	"github.com/fatflowers/agrobill/pkg/apperr"
	"github.com/fatflowers/agrobill/pkg/logctx"
	"github.com/fatflowers/agrobill/pkg/types"

	"github.com/samber/lo"
)

// handledEvents are the event types that change local state. Anything else is acknowledged as a no-op.
var handledEvents = map[string]bool{
	razorpay.EventSubscriptionActivated: true,
	razorpay.EventSubscriptionCharged:   true,
	razorpay.EventSubscriptionPaused:    true,
	razorpay.EventSubscriptionResumed:   true,
	razorpay.EventSubscriptionCancelled: true,
	razorpay.EventSubscriptionCompleted: true,
	razorpay.EventInvoicePaid:           true,
	razorpay.EventPaymentCaptured:       true,
	razorpay.EventPaymentFailed:         true,
	razorpay.EventOrderPaid:             true,
}

func (r *Router) dispatch(ctx context.Context, ev *razorpay.Event) *Result {
	if !handledEvents[ev.Event] {
		return &Result{Outcome: OutcomeIgnored}
	}

	sub, invoice, err := r.resolve(ctx, ev)
	if err != nil {
		return &Result{Outcome: OutcomeFailed, Err: err}
	}
	if sub == nil {
		return &Result{Outcome: OutcomeUnresolved}
	}

	res := &Result{Outcome: OutcomeProcessed, SubscriptionID: sub.ID}
	if err := r.apply(ctx, ev, sub, invoice); err != nil {
		res.Outcome = OutcomeFailed
		res.Err = err
	}
	return res
}

func (r *Router) apply(ctx context.Context, ev *razorpay.Event, sub *models.Subscription, invoice *razorpay.Invoice) error {
	gwSub := ev.Payload.SubscriptionEntity()
	payment := ev.Payload.PaymentEntity()
	extra := map[string]any{"event": ev.Event}

	switch ev.Event {
	case razorpay.EventSubscriptionActivated:
		_, err := r.subs.Activate(ctx, sub.ID, activateInput(types.SubscriptionChangeReasonWebhook, gwSub, invoice, extra))
		return r.fieldTaken(ctx, ev, sub, err)

	case razorpay.EventSubscriptionCharged, razorpay.EventInvoicePaid, razorpay.EventPaymentCaptured, razorpay.EventOrderPaid:
		if err := r.record(ctx, sub, payment, invoice); err != nil {
			return err
		}
		reason := types.SubscriptionChangeReasonWebhook
		if sub.Status == types.SubscriptionStatusActive {
			reason = types.SubscriptionChangeReasonRenewal
		}
		_, err := r.subs.Activate(ctx, sub.ID, activateInput(reason, gwSub, invoice, extra))
		return r.fieldTaken(ctx, ev, sub, err)

	case razorpay.EventPaymentFailed:
		return r.record(ctx, sub, payment, invoice)

	case razorpay.EventSubscriptionPaused:
		_, err := r.subs.Pause(ctx, sub.ID, extra)
		return err

	case razorpay.EventSubscriptionResumed:
		_, err := r.subs.Resume(ctx, sub.ID, nextBilling(gwSub), extra)
		return r.fieldTaken(ctx, ev, sub, err)

	case razorpay.EventSubscriptionCancelled:
		_, err := r.subs.Cancel(ctx, sub.ID, subscription.CancelInput{By: subscription.CancelledByGateway, Extra: extra})
		if apperr.IsCode(err, apperr.CodeConflict) {
			// already completed or expired locally
			return nil
		}
		return err

	case razorpay.EventSubscriptionCompleted:
		_, err := r.subs.Complete(ctx, sub.ID, endedAtOf(gwSub), extra)
		return err
	}
	return nil
}

// fieldTaken acknowledges an activation refused because another subscription is active
// on the field. Redelivery cannot change that, so it is logged for support instead.
func (r *Router) fieldTaken(ctx context.Context, ev *razorpay.Event, sub *models.Subscription, err error) error {
	if !apperr.IsCode(err, apperr.CodeConflict) {
		return err
	}
	logctx.FromCtx(ctx, r.log).Warnw("webhook_activation_refused", "event", ev.Event, "subscription_id", sub.ID,
		"field_id", sub.FieldID, "err", err)
	return nil
}

// record writes the payment carried by the event, if any, to the ledger.
func (r *Router) record(ctx context.Context, sub *models.Subscription, payment *razorpay.Payment, invoice *razorpay.Invoice) error {
	if payment == nil || payment.ID == "" {
		return nil
	}
	if _, err := r.ledger.RecordPayment(ctx, ledger.FromGateway(sub, payment, invoice, ledger.SourceWebhook)); err != nil {
		return fmt.Errorf("record payment %s: %w", payment.ID, err)
	}
	return nil
}

func activateInput(reason types.SubscriptionChangeReason, gwSub *razorpay.Subscription, invoice *razorpay.Invoice, extra map[string]any) subscription.ActivateInput {
	in := subscription.ActivateInput{Reason: reason, Extra: extra}
	if gwSub != nil {
		in.CustomerID = gwSub.CustomerID
		in.StartAt = razorpay.UnixTime(gwSub.CurrentStart)
		in.NextBillingAt = nextBilling(gwSub)
	}
	if invoice != nil {
		in.InvoiceID = invoice.ID
		if in.CustomerID == "" {
			in.CustomerID = invoice.CustomerID
		}
	}
	return in
}

func nextBilling(gwSub *razorpay.Subscription) *time.Time {
	if gwSub == nil {
		return nil
	}
	return lo.CoalesceOrEmpty(razorpay.UnixTime(gwSub.ChargeAt), razorpay.UnixTime(gwSub.CurrentEnd))
}

func endedAtOf(gwSub *razorpay.Subscription) *time.Time {
	if gwSub == nil {
		return nil
	}
	return lo.CoalesceOrEmpty(razorpay.UnixTime(gwSub.EndedAt), razorpay.UnixTime(gwSub.EndAt))
}

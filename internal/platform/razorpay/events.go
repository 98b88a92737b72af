package razorpay

import "encoding/json"

// Webhook event names the router understands.
const (
	EventSubscriptionActivated = "subscription.activated"
	EventSubscriptionCharged   = "subscription.charged"
	EventSubscriptionPaused    = "subscription.paused"
	EventSubscriptionResumed   = "subscription.resumed"
	EventSubscriptionCancelled = "subscription.cancelled"
	EventSubscriptionCompleted = "subscription.completed"
	EventSubscriptionHalted    = "subscription.halted"
	EventInvoicePaid           = "invoice.paid"
	EventPaymentCaptured       = "payment.captured"
	EventPaymentFailed         = "payment.failed"
	EventPaymentRefunded       = "payment.refunded"
	EventOrderPaid             = "order.paid"
)

const (
	HeaderSignature = "X-Razorpay-Signature"
	HeaderEventID   = "X-Razorpay-Event-Id"
)

// Event is a webhook delivery envelope.
type Event struct {
	Entity    string       `json:"entity"`
	AccountID string       `json:"account_id"`
	Event     string       `json:"event"`
	Contains  []string     `json:"contains"`
	Payload   EventPayload `json:"payload"`
	CreatedAt int64        `json:"created_at"`
}

type EventPayload struct {
	Subscription *Wrapped[Subscription] `json:"subscription,omitempty"`
	Payment      *Wrapped[Payment]      `json:"payment,omitempty"`
	Invoice      *Wrapped[Invoice]      `json:"invoice,omitempty"`
	Order        *Wrapped[Order]        `json:"order,omitempty"`
}

type Wrapped[T any] struct {
	Entity *T `json:"entity"`
}

func (p EventPayload) SubscriptionEntity() *Subscription {
	if p.Subscription == nil {
		return nil
	}
	return p.Subscription.Entity
}

func (p EventPayload) PaymentEntity() *Payment {
	if p.Payment == nil {
		return nil
	}
	return p.Payment.Entity
}

func (p EventPayload) InvoiceEntity() *Invoice {
	if p.Invoice == nil {
		return nil
	}
	return p.Invoice.Entity
}

func (p EventPayload) OrderEntity() *Order {
	if p.Order == nil {
		return nil
	}
	return p.Order.Entity
}

// ParseEvent decodes a webhook body. The body must already be authenticated.
func ParseEvent(body []byte) (*Event, error) {
	var ev Event
	if err := json.Unmarshal(body, &ev); err != nil {
		return nil, err
	}
	return &ev, nil
}

// Package razorpaytest provides an in-memory Gateway for service tests.
package razorpaytest

import (
	"context"
	"fmt"
	"sync"

	"github.com/fatflowers/agrobill/internal/platform/razorpay"
)

// Fake records calls and answers with generated ids. Set the *Err fields to make a call fail.
type Fake struct {
	mu sync.Mutex

	CreatePlanErr         error
	CreateSubscriptionErr error
	CreateOrderErr        error
	CancelErr             error
	FetchInvoiceErr       error
	FetchPaymentErr       error

	// Block, when set, makes create calls wait for ctx to end.
	Block bool

	Invoices map[string]*razorpay.Invoice
	Payments map[string]*razorpay.Payment

	Plans          []*razorpay.CreatePlanRequest
	Subscriptions  []*razorpay.CreateSubscriptionRequest
	Orders         []*razorpay.CreateOrderRequest
	Cancelled      []string
	InvoiceFetches int
	PaymentFetches int

	seq int
}

var _ razorpay.Gateway = (*Fake)(nil)

func New() *Fake {
	return &Fake{Invoices: map[string]*razorpay.Invoice{}, Payments: map[string]*razorpay.Payment{}}
}

func (f *Fake) next(prefix string) string {
	f.seq++
	return fmt.Sprintf("%s_%d", prefix, f.seq)
}

func (f *Fake) wait(ctx context.Context) error {
	if !f.Block {
		return nil
	}
	<-ctx.Done()
	return &razorpay.Error{Op: "blocked", Err: ctx.Err()}
}

func (f *Fake) CreatePlan(ctx context.Context, req *razorpay.CreatePlanRequest) (*razorpay.Plan, error) {
	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Plans = append(f.Plans, req)
	if f.CreatePlanErr != nil {
		return nil, f.CreatePlanErr
	}
	return &razorpay.Plan{ID: f.next("plan"), Period: req.Period, Interval: req.Interval, Item: req.Item}, nil
}

func (f *Fake) CreateSubscription(ctx context.Context, req *razorpay.CreateSubscriptionRequest) (*razorpay.Subscription, error) {
	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Subscriptions = append(f.Subscriptions, req)
	if f.CreateSubscriptionErr != nil {
		return nil, f.CreateSubscriptionErr
	}
	id := f.next("sub")
	return &razorpay.Subscription{ID: id, PlanID: req.PlanID, Status: "created", ShortURL: "https://rzp.io/i/" + id}, nil
}

func (f *Fake) CreateOrder(ctx context.Context, req *razorpay.CreateOrderRequest) (*razorpay.Order, error) {
	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Orders = append(f.Orders, req)
	if f.CreateOrderErr != nil {
		return nil, f.CreateOrderErr
	}
	return &razorpay.Order{ID: f.next("order"), Amount: req.Amount, Currency: req.Currency, Receipt: req.Receipt, Status: "created"}, nil
}

func (f *Fake) CancelSubscription(_ context.Context, id string, _ bool) (*razorpay.Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Cancelled = append(f.Cancelled, id)
	if f.CancelErr != nil {
		return nil, f.CancelErr
	}
	return &razorpay.Subscription{ID: id, Status: "cancelled"}, nil
}

func (f *Fake) FetchInvoice(_ context.Context, id string) (*razorpay.Invoice, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.InvoiceFetches++
	if f.FetchInvoiceErr != nil {
		return nil, f.FetchInvoiceErr
	}
	inv, ok := f.Invoices[id]
	if !ok {
		return nil, &razorpay.Error{Op: "fetch_invoice", StatusCode: 404, Description: "not found"}
	}
	return inv, nil
}

func (f *Fake) FetchPayment(_ context.Context, id string) (*razorpay.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.PaymentFetches++
	if f.FetchPaymentErr != nil {
		return nil, f.FetchPaymentErr
	}
	p, ok := f.Payments[id]
	if !ok {
		return nil, &razorpay.Error{Op: "fetch_payment", StatusCode: 404, Description: "not found"}
	}
	return p, nil
}

// CancelledIDs returns a snapshot of cancelled gateway subscription ids.
func (f *Fake) CancelledIDs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.Cancelled...)
}

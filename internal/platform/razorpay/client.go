package razorpay

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/fatflowers/agrobill/pkg/config"
	"github.com/fatflowers/agrobill/pkg/logctx"
	"github.com/fatflowers/agrobill/pkg/metrics"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// Gateway is the subset of the Razorpay API the billing core depends on.
type Gateway interface {
	CreatePlan(ctx context.Context, req *CreatePlanRequest) (*Plan, error)
	CreateSubscription(ctx context.Context, req *CreateSubscriptionRequest) (*Subscription, error)
	CreateOrder(ctx context.Context, req *CreateOrderRequest) (*Order, error)
	CancelSubscription(ctx context.Context, subscriptionID string, atCycleEnd bool) (*Subscription, error)
	FetchInvoice(ctx context.Context, invoiceID string) (*Invoice, error)
	FetchPayment(ctx context.Context, paymentID string) (*Payment, error)
}

type CreatePlanRequest struct {
	Period   string            `json:"period"`
	Interval int               `json:"interval"`
	Item     Item              `json:"item"`
	Notes    map[string]string `json:"notes,omitempty"`
}

type CreateSubscriptionRequest struct {
	PlanID         string            `json:"plan_id"`
	TotalCount     int               `json:"total_count"`
	Quantity       int               `json:"quantity,omitempty"`
	CustomerNotify int               `json:"customer_notify"`
	Notes          map[string]string `json:"notes,omitempty"`
}

type CreateOrderRequest struct {
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Receipt  string            `json:"receipt,omitempty"`
	Notes    map[string]string `json:"notes,omitempty"`
}

// Error is a failed gateway call. StatusCode is 0 when no HTTP response was received.
type Error struct {
	Op          string
	StatusCode  int
	Code        string
	Description string
	Err         error
}

func (e *Error) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("razorpay %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("razorpay %s: status %d %s: %s", e.Op, e.StatusCode, e.Code, e.Description)
}

func (e *Error) Unwrap() error { return e.Err }

// IsNotFound reports whether err is a gateway 404.
func IsNotFound(err error) bool {
	var gwErr *Error
	return errors.As(err, &gwErr) && gwErr.StatusCode == http.StatusNotFound
}

type errorBody struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
		Field       string `json:"field"`
	} `json:"error"`
}

// Client calls the Razorpay REST API with key-id/key-secret basic auth.
type Client struct {
	http *resty.Client
	log  *zap.SugaredLogger
}

func New(cfg *config.Config, log *zap.SugaredLogger) *Client {
	timeout := cfg.Gateway.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	httpClient := resty.New().
		SetBaseURL(strings.TrimRight(cfg.Gateway.BaseURL, "/")).
		SetBasicAuth(cfg.Gateway.KeyID, cfg.Gateway.KeySecret).
		SetHeader("Content-Type", "application/json").
		SetTimeout(timeout)
	return &Client{http: httpClient, log: log}
}

// AsGateway exposes the client through the Gateway interface for injection.
func AsGateway(c *Client) Gateway { return c }

func (c *Client) CreatePlan(ctx context.Context, req *CreatePlanRequest) (*Plan, error) {
	var out Plan
	if err := c.do(ctx, "create_plan", http.MethodPost, "/plans", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateSubscription(ctx context.Context, req *CreateSubscriptionRequest) (*Subscription, error) {
	var out Subscription
	if err := c.do(ctx, "create_subscription", http.MethodPost, "/subscriptions", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateOrder(ctx context.Context, req *CreateOrderRequest) (*Order, error) {
	var out Order
	if err := c.do(ctx, "create_order", http.MethodPost, "/orders", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CancelSubscription(ctx context.Context, subscriptionID string, atCycleEnd bool) (*Subscription, error) {
	flag := 0
	if atCycleEnd {
		flag = 1
	}
	var out Subscription
	path := "/subscriptions/" + subscriptionID + "/cancel"
	if err := c.do(ctx, "cancel_subscription", http.MethodPost, path, map[string]int{"cancel_at_cycle_end": flag}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) FetchInvoice(ctx context.Context, invoiceID string) (*Invoice, error) {
	var out Invoice
	if err := c.do(ctx, "fetch_invoice", http.MethodGet, "/invoices/"+invoiceID, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) FetchPayment(ctx context.Context, paymentID string) (*Payment, error) {
	var out Payment
	if err := c.do(ctx, "fetch_payment", http.MethodGet, "/payments/"+paymentID, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, op, method, path string, body, out any) (err error) {
	start := time.Now()
	defer func() { metrics.ObserveGatewayCall(op, start, err) }()

	var errBody errorBody
	req := c.http.R().
		SetContext(ctx).
		SetResult(out).
		SetError(&errBody)
	if body != nil {
		req.SetBody(body)
	}
	resp, err := req.Execute(method, path)
	if err != nil {
		logctx.FromCtx(ctx, c.log).Warnw("razorpay_call_failed", "op", op, "err", err)
		return &Error{Op: op, Err: err}
	}
	if resp.IsError() {
		gwErr := &Error{
			Op:          op,
			StatusCode:  resp.StatusCode(),
			Code:        errBody.Error.Code,
			Description: errBody.Error.Description,
		}
		if gwErr.Description == "" {
			gwErr.Description = strings.TrimSpace(string(resp.Body()))
		}
		logctx.FromCtx(ctx, c.log).Warnw("razorpay_call_rejected", "op", op, "status", gwErr.StatusCode, "code", gwErr.Code)
		return gwErr
	}
	return nil
}

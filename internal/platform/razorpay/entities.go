package razorpay

import "time"

// Entities mirror the subset of Razorpay REST v1 objects the billing core reads.
// Timestamps are unix seconds; zero or missing means unset.

type Item struct {
	ID          string `json:"id,omitempty"`
	Name        string `json:"name"`
	Amount      int64  `json:"amount"`
	Currency    string `json:"currency"`
	Description string `json:"description,omitempty"`
}

type Plan struct {
	ID       string            `json:"id"`
	Entity   string            `json:"entity"`
	Interval int               `json:"interval"`
	Period   string            `json:"period"`
	Item     Item              `json:"item"`
	Notes    map[string]string `json:"notes,omitempty"`
}

type Subscription struct {
	ID           string            `json:"id"`
	Entity       string            `json:"entity"`
	PlanID       string            `json:"plan_id"`
	CustomerID   string            `json:"customer_id"`
	Status       string            `json:"status"`
	CurrentStart *int64            `json:"current_start"`
	CurrentEnd   *int64            `json:"current_end"`
	EndedAt      *int64            `json:"ended_at"`
	ChargeAt     *int64            `json:"charge_at"`
	StartAt      *int64            `json:"start_at"`
	EndAt        *int64            `json:"end_at"`
	TotalCount   int               `json:"total_count"`
	PaidCount    int               `json:"paid_count"`
	ShortURL     string            `json:"short_url"`
	Notes        map[string]string `json:"notes,omitempty"`
}

type Order struct {
	ID         string            `json:"id"`
	Entity     string            `json:"entity"`
	Amount     int64             `json:"amount"`
	AmountPaid int64             `json:"amount_paid"`
	Currency   string            `json:"currency"`
	Receipt    string            `json:"receipt"`
	Status     string            `json:"status"`
	Notes      map[string]string `json:"notes,omitempty"`
}

type Invoice struct {
	ID             string  `json:"id"`
	Entity         string  `json:"entity"`
	SubscriptionID string  `json:"subscription_id"`
	OrderID        string  `json:"order_id"`
	PaymentID      string  `json:"payment_id"`
	CustomerID     string  `json:"customer_id"`
	Status         string  `json:"status"`
	Amount         int64   `json:"amount"`
	AmountPaid     int64   `json:"amount_paid"`
	Currency       string  `json:"currency"`
	Receipt        string  `json:"receipt"`
	IssuedAt       *int64  `json:"issued_at"`
	PaidAt         *int64  `json:"paid_at"`
	BillingStart   *int64  `json:"billing_start"`
	BillingEnd     *int64  `json:"billing_end"`
	Date           *int64  `json:"date"`
	InvoiceNumber  *string `json:"invoice_number"`
}

type Card struct {
	Last4   string `json:"last4"`
	Network string `json:"network"`
}

type Payment struct {
	ID             string            `json:"id"`
	Entity         string            `json:"entity"`
	Amount         int64             `json:"amount"`
	Currency       string            `json:"currency"`
	Status         string            `json:"status"`
	OrderID        string            `json:"order_id"`
	InvoiceID      string            `json:"invoice_id"`
	SubscriptionID string            `json:"subscription_id"`
	CustomerID     string            `json:"customer_id"`
	Method         string            `json:"method"`
	Captured       bool              `json:"captured"`
	Card           *Card             `json:"card"`
	VPA            string            `json:"vpa"`
	Bank           string            `json:"bank"`
	ErrorCode      string            `json:"error_code"`
	ErrorReason    string            `json:"error_reason"`
	CreatedAt      int64             `json:"created_at"`
	Notes          map[string]string `json:"notes,omitempty"`
}

// UnixTime converts an optional unix-seconds timestamp.
func UnixTime(ts *int64) *time.Time {
	if ts == nil || *ts <= 0 {
		return nil
	}
	t := time.Unix(*ts, 0).UTC()
	return &t
}

package ledger

import (
	"context"
	"fmt"
	"testing"

	"github.com/fatflowers/agrobill/internal/models"
	"github.com/fatflowers/agrobill/internal/platform/db/dbtest"
	"github.com/fatflowers/agrobill/internal/platform/razorpay"
	"github.com/fatflowers/agrobill/pkg/types"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func newService(t *testing.T) *Service {
	t.Helper()
	return NewService(dbtest.New(t), zap.NewNop().Sugar())
}

func payment(providerID string) *models.Payment {
	return &models.Payment{
		SubscriptionID:    "0190c0de-0000-7000-8000-000000000001",
		UserID:            "u1",
		FieldID:           "f1",
		ProviderPaymentID: providerID,
		AmountMinor:       12500,
		Currency:          "INR",
		Status:            types.PaymentStatusCaptured,
		Source:            SourceWebhook,
	}
}

func TestRecordPaymentIsIdempotent(t *testing.T) {
	s := newService(t)
	ctx := context.Background()

	inserted, err := s.RecordPayment(ctx, payment("pay_1"))
	require.NoError(t, err)
	require.True(t, inserted)

	dup := payment("pay_1")
	dup.AmountMinor = 1
	dup.Source = SourceCheckout
	inserted, err = s.RecordPayment(ctx, dup)
	require.NoError(t, err)
	require.False(t, inserted)

	items, err := s.ListBySubscription(ctx, dup.SubscriptionID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, int64(12500), items[0].AmountMinor)
	require.Equal(t, SourceWebhook, items[0].Source)
}

func TestRecordPaymentWithoutProviderIDIsNoop(t *testing.T) {
	s := newService(t)

	inserted, err := s.RecordPayment(context.Background(), payment(""))
	require.NoError(t, err)
	require.False(t, inserted)

	inserted, err = s.RecordPayment(context.Background(), nil)
	require.NoError(t, err)
	require.False(t, inserted)
}

func TestRecordPaymentRequiresSubscription(t *testing.T) {
	s := newService(t)
	p := payment("pay_2")
	p.SubscriptionID = ""
	_, err := s.RecordPayment(context.Background(), p)
	require.Error(t, err)
}

func TestRecordPaymentConcurrentWriters(t *testing.T) {
	s := newService(t)
	ctx := context.Background()

	var g errgroup.Group
	results := make([]bool, 8)
	for i := range results {
		g.Go(func() error {
			inserted, err := s.RecordPayment(ctx, payment("pay_race"))
			results[i] = inserted
			return err
		})
	}
	require.NoError(t, g.Wait())

	count := 0
	for _, ok := range results {
		if ok {
			count++
		}
	}
	require.Equal(t, 1, count)
}

func TestList(t *testing.T) {
	s := newService(t)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		p := payment(fmt.Sprintf("pay_%d", i))
		if i%2 == 0 {
			p.Status = types.PaymentStatusFailed
		}
		_, err := s.RecordPayment(ctx, p)
		require.NoError(t, err)
	}

	items, total, err := s.List(ctx, []*types.CommonFilter{
		{Field: "status", Operator: types.CommonFilterOperatorEq, Values: []any{"failed"}},
	}, types.Pagination{Page: 1, PageSize: 2})
	require.NoError(t, err)
	require.Equal(t, int64(3), total)
	require.Len(t, items, 2)

	_, _, err = s.List(ctx, []*types.CommonFilter{
		{Field: "raw", Operator: types.CommonFilterOperatorEq, Values: []any{"x"}},
	}, types.Pagination{})
	require.Error(t, err)
}

func TestFromGateway(t *testing.T) {
	inr := "INR"
	sub := &models.Subscription{ID: "sub-local", UserID: "u1", FieldID: "f1", ChargedCurrency: &inr, ChargedAmountMinor: 12500}
	start, end := int64(1767225600), int64(1769904000)
	row := FromGateway(sub, &razorpay.Payment{
		ID: "pay_1", Amount: 12500, Currency: "INR", Status: "captured", Method: "card",
		Card: &razorpay.Card{Last4: "1111"}, InvoiceID: "inv_1",
	}, &razorpay.Invoice{ID: "inv_1", Receipt: "R-1", BillingStart: &start, BillingEnd: &end}, SourceWebhook)

	require.Equal(t, "sub-local", row.SubscriptionID)
	require.Equal(t, types.PaymentStatusCaptured, row.Status)
	require.Equal(t, "1111", *row.CardLast4)
	require.Equal(t, "card", *row.Method)
	require.Nil(t, row.VPA)
	require.Equal(t, "inv_1", *row.ProviderInvoiceID)
	require.Equal(t, "R-1", *row.InvoiceNumber)
	require.Equal(t, start, row.PeriodStart.Unix())
	require.Equal(t, end, row.PeriodEnd.Unix())
	require.NotEmpty(t, row.Raw)
}

func TestPaymentStatusOf(t *testing.T) {
	require.Equal(t, types.PaymentStatusFailed, PaymentStatusOf("failed"))
	require.Equal(t, types.PaymentStatusCreated, PaymentStatusOf("weird"))
}

package notification_log

import (
	"context"
	"testing"
	"time"

	"github.com/fatflowers/agrobill/internal/models"
	"github.com/fatflowers/agrobill/internal/platform/db/dbtest"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRecord(t *testing.T) {
	s := New(dbtest.New(t), zap.NewNop().Sugar())
	ctx := context.Background()

	s.Record(ctx, &Delivery{
		EventID:        "evt_1",
		EventType:      "payment.captured",
		SubscriptionID: "sub-local",
		Raw:            []byte(`{"event":"payment.captured"}`),
		Status:         models.PaymentNotificationLogStatusHandled,
		Result:         map[string]any{"outcome": "processed"},
		ReceivedAt:     time.Now(),
	})
	s.Record(ctx, &Delivery{EventID: "evt_1", Raw: []byte("not json"), Status: models.PaymentNotificationLogStatusIgnored})
	s.Record(ctx, nil)

	var items []*models.PaymentNotificationLog
	require.Eventually(t, func() bool {
		var err error
		items, err = s.ListByEventID(ctx, "evt_1")
		return err == nil && len(items) == 2
	}, time.Second, 10*time.Millisecond)

	byStatus := map[models.PaymentNotificationLogStatus]*models.PaymentNotificationLog{}
	for _, it := range items {
		byStatus[it.Status] = it
	}
	handled := byStatus[models.PaymentNotificationLogStatusHandled]
	require.NotNil(t, handled)
	require.Equal(t, "sub-local", *handled.SubscriptionID)
	require.JSONEq(t, `{"outcome":"processed"}`, string(*handled.Result))

	ignored := byStatus[models.PaymentNotificationLogStatusIgnored]
	require.NotNil(t, ignored)
	require.JSONEq(t, `"not json"`, string(ignored.Data))
}

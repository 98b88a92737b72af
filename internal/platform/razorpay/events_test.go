package razorpay

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseEvent(t *testing.T) {
	body := []byte(`{
		"entity": "event",
		"event": "subscription.charged",
		"contains": ["subscription", "payment"],
		"payload": {
			"subscription": {"entity": {"id": "sub_1", "status": "active", "current_end": 1767225600}},
			"payment": {"entity": {"id": "pay_1", "amount": 12500, "currency": "INR", "status": "captured", "card": {"last4": "4242"}}}
		},
		"created_at": 1764547200
	}`)

	ev, err := ParseEvent(body)
	require.NoError(t, err)
	require.Equal(t, EventSubscriptionCharged, ev.Event)
	require.Equal(t, "sub_1", ev.Payload.SubscriptionEntity().ID)
	require.Equal(t, int64(12500), ev.Payload.PaymentEntity().Amount)
	require.Equal(t, "4242", ev.Payload.PaymentEntity().Card.Last4)
	require.Nil(t, ev.Payload.InvoiceEntity())
	require.Nil(t, ev.Payload.OrderEntity())

	end := UnixTime(ev.Payload.SubscriptionEntity().CurrentEnd)
	require.NotNil(t, end)
	require.Equal(t, int64(1767225600), end.Unix())
}

func TestParseEventMalformed(t *testing.T) {
	_, err := ParseEvent([]byte(`{"event":`))
	require.Error(t, err)
}

func TestUnixTime(t *testing.T) {
	require.Nil(t, UnixTime(nil))
	zero := int64(0)
	require.Nil(t, UnixTime(&zero))
}

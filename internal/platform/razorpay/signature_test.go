package razorpay

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSignKnownVector(t *testing.T) {
	// echo -n 'order_1|pay_1' | openssl dgst -sha256 -hmac secret
	sig := Sign("secret", []byte("order_1|pay_1"))
	require.Equal(t, "52115a0d3400de9e86aade1f1b6eba9e8974604f4e267a9e9a16633a4c8dd2cb", sig)
	require.NotEqual(t, sig, Sign("other", []byte("order_1|pay_1")))
}

func TestVerifyWebhookSignature(t *testing.T) {
	body := []byte(`{"event":"payment.captured"}`)
	sig := Sign("whsec", body)

	require.True(t, VerifyWebhookSignature(body, sig, "whsec"))
	require.False(t, VerifyWebhookSignature(body, sig, "wrong"))
	require.False(t, VerifyWebhookSignature(body, "", "whsec"))
	require.False(t, VerifyWebhookSignature(body, sig, ""))
	require.False(t, VerifyWebhookSignature([]byte(`{"event":"payment.captured" }`), sig, "whsec"))
}

func TestVerifyCheckoutSignatures(t *testing.T) {
	orderSig := Sign("key", []byte("order_9|pay_9"))
	require.True(t, VerifyOrderPayment("order_9", "pay_9", orderSig, "key"))
	require.False(t, VerifyOrderPayment("order_9", "pay_8", orderSig, "key"))
	require.False(t, VerifyOrderPayment("", "pay_9", orderSig, "key"))

	subSig := Sign("key", []byte("pay_9|sub_9"))
	require.True(t, VerifySubscriptionPayment("pay_9", "sub_9", subSig, "key"))
	// order of the signed pair matters
	require.False(t, VerifySubscriptionPayment("pay_9", "sub_9", Sign("key", []byte("sub_9|pay_9")), "key"))
}

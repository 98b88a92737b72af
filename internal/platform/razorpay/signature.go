package razorpay

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// Sign returns the lowercase hex HMAC-SHA256 of payload under secret.
func Sign(secret string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

func verify(secret string, payload []byte, signature string) bool {
	if secret == "" || signature == "" {
		return false
	}
	expected := Sign(secret, payload)
	return hmac.Equal([]byte(expected), []byte(signature))
}

// VerifyWebhookSignature checks the X-Razorpay-Signature header against the raw body.
func VerifyWebhookSignature(body []byte, signature, webhookSecret string) bool {
	return verify(webhookSecret, body, signature)
}

// VerifyOrderPayment checks a checkout signature for a one-time order.
func VerifyOrderPayment(orderID, paymentID, signature, keySecret string) bool {
	if orderID == "" || paymentID == "" {
		return false
	}
	return verify(keySecret, []byte(orderID+"|"+paymentID), signature)
}

// VerifySubscriptionPayment checks a checkout signature for a recurring subscription.
// Razorpay signs payment id first for subscriptions.
func VerifySubscriptionPayment(paymentID, subscriptionID, signature, keySecret string) bool {
	if subscriptionID == "" || paymentID == "" {
		return false
	}
	return verify(keySecret, []byte(paymentID+"|"+subscriptionID), signature)
}

package types

type SubscriptionStatus string

const (
	SubscriptionStatusPending   SubscriptionStatus = "pending"
	SubscriptionStatusActive    SubscriptionStatus = "active"
	SubscriptionStatusCancelled SubscriptionStatus = "cancelled"
	SubscriptionStatusPaused    SubscriptionStatus = "paused"
	SubscriptionStatusCompleted SubscriptionStatus = "completed"
	SubscriptionStatusExpired   SubscriptionStatus = "expired"
	SubscriptionStatusFailed    SubscriptionStatus = "failed"
)

// Terminal statuses accept no further transitions.
func (s SubscriptionStatus) Terminal() bool {
	switch s {
	case SubscriptionStatusCancelled, SubscriptionStatusExpired, SubscriptionStatusCompleted, SubscriptionStatusFailed:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentStatusCreated    PaymentStatus = "created"
	PaymentStatusAuthorized PaymentStatus = "authorized"
	PaymentStatusCaptured   PaymentStatus = "captured"
	PaymentStatusFailed     PaymentStatus = "failed"
	PaymentStatusRefunded   PaymentStatus = "refunded"
)

type SubscriptionChangeReason string

const (
	SubscriptionChangeReasonCreate        SubscriptionChangeReason = "create"
	SubscriptionChangeReasonTrial         SubscriptionChangeReason = "trial"
	SubscriptionChangeReasonGatewayLinked SubscriptionChangeReason = "gatewayLinked"
	SubscriptionChangeReasonCheckout      SubscriptionChangeReason = "checkout"
	SubscriptionChangeReasonWebhook       SubscriptionChangeReason = "webhook"
	SubscriptionChangeReasonRenewal       SubscriptionChangeReason = "renewal"
	SubscriptionChangeReasonCancel        SubscriptionChangeReason = "cancel"
	SubscriptionChangeReasonPause         SubscriptionChangeReason = "pause"
	SubscriptionChangeReasonResume        SubscriptionChangeReason = "resume"
	SubscriptionChangeReasonComplete      SubscriptionChangeReason = "complete"
	SubscriptionChangeReasonExpire        SubscriptionChangeReason = "expire"
	SubscriptionChangeReasonRollback      SubscriptionChangeReason = "rollback"
)

package models

import (
	"time"

	"github.com/fatflowers/agrobill/pkg/types"

	"gorm.io/datatypes"
)

// SubscriptionLog records every applied subscription transition.
// Use case: troubleshooting webhook/checkout reconciliation.
type SubscriptionLog struct {
	ID             string `gorm:"column:id;type:uuid;primary_key" json:"id"`
	SubscriptionID string `gorm:"column:subscription_id;type:uuid;index:idx_subscription_id_id,priority:1;not null"`
	UserID         string `gorm:"column:user_id;type:varchar(64);not null"`
	// Reason is the change reason.
	Reason types.SubscriptionChangeReason `gorm:"column:reason;type:varchar(64);not null"`
	// Before stores subscription data before the change in JSON format.
	Before datatypes.JSONType[*Subscription] `gorm:"column:before;type:jsonb;default:'null'"`
	// After stores subscription data after the change in JSON format.
	After datatypes.JSONType[*Subscription] `gorm:"column:after;type:jsonb;default:'null'"`
	// Extra stores trigger context such as the webhook event id or the operator.
	Extra     datatypes.JSONMap `gorm:"column:extra;type:jsonb;default:'{}'"`
	CreatedAt time.Time
}

func (SubscriptionLog) TableName() string {
	return "subscription_log"
}

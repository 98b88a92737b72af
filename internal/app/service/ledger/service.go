package ledger

import (
	"context"
	"fmt"

	"github.com/fatflowers/agrobill/internal/models"
	"github.com/fatflowers/agrobill/pkg/apperr"
	"github.com/fatflowers/agrobill/pkg/logctx"
	"github.com/fatflowers/agrobill/pkg/metrics"
	"github.com/fatflowers/agrobill/pkg/tool"
	"github.com/fatflowers/agrobill/pkg/types"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Source names the path that recorded a payment.
const (
	SourceCheckout = "checkout"
	SourceWebhook  = "webhook"
)

// ListableFields are the payment columns admin filters may reference.
var ListableFields = []string{
	"subscription_id", "user_id", "field_id", "provider_payment_id", "provider_order_id",
	"status", "currency", "method", "source", "created_at",
}

// Service is the insert-only payment ledger.
type Service struct {
	db  *gorm.DB
	log *zap.SugaredLogger
}

func NewService(db *gorm.DB, log *zap.SugaredLogger) *Service {
	return &Service{db: db, log: log}
}

// RecordPayment inserts p unless a row with the same provider payment id exists.
// It reports whether a row was inserted. A payment without a provider id is ignored.
func (s *Service) RecordPayment(ctx context.Context, p *models.Payment) (bool, error) {
	if p == nil || p.ProviderPaymentID == "" {
		return false, nil
	}
	if p.SubscriptionID == "" {
		return false, fmt.Errorf("payment %s: subscription id is required", p.ProviderPaymentID)
	}
	if p.ID == "" {
		p.ID = tool.GenerateUUIDV7()
	}
	if p.ProviderID == "" {
		p.ProviderID = types.PaymentProviderRazorpay
	}

	res := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "provider_payment_id"}}, DoNothing: true}).
		Create(p)
	if res.Error != nil {
		metrics.ObserveLedgerWrite(p.Source, "error")
		return false, fmt.Errorf("failed to record payment %s: %w", p.ProviderPaymentID, res.Error)
	}

	inserted := res.RowsAffected > 0
	log := logctx.FromCtx(ctx, s.log)
	if inserted {
		metrics.ObserveLedgerWrite(p.Source, "inserted")
		log.Infow("payment_recorded", "subscription_id", p.SubscriptionID, "payment_id", p.ProviderPaymentID,
			"status", p.Status, "amount_minor", p.AmountMinor, "currency", p.Currency, "source", p.Source)
	} else {
		metrics.ObserveLedgerWrite(p.Source, "duplicate")
		log.Infow("payment_duplicate_ignored", "payment_id", p.ProviderPaymentID, "source", p.Source)
	}
	return inserted, nil
}

func (s *Service) GetByProviderPaymentID(ctx context.Context, providerPaymentID string) (*models.Payment, error) {
	var p models.Payment
	if err := s.db.WithContext(ctx).Where("provider_payment_id = ?", providerPaymentID).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// ListBySubscription returns a subscription's payments, newest first.
func (s *Service) ListBySubscription(ctx context.Context, subscriptionID string) ([]*models.Payment, error) {
	var items []*models.Payment
	if err := s.db.WithContext(ctx).
		Where("subscription_id = ?", subscriptionID).
		Order("created_at desc").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// List returns one page of payments matching filters plus the total match count.
func (s *Service) List(ctx context.Context, filters []*types.CommonFilter, page types.Pagination) ([]*models.Payment, int64, error) {
	exprs, err := types.Expressions(filters, ListableFields)
	if err != nil {
		return nil, 0, apperr.Wrap(apperr.CodeValidation, err, err.Error())
	}
	q := s.db.WithContext(ctx).Model(&models.Payment{})
	if len(exprs) > 0 {
		q = q.Where(clause.Where{Exprs: exprs})
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset, limit := page.Normalize()
	var items []*models.Payment
	if err := q.Order("created_at desc").Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

var Module = fx.Options(
	fx.Provide(NewService),
)

package subscription

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fatflowers/agrobill/internal/models"
	"github.com/fatflowers/agrobill/pkg/apperr"
	"github.com/fatflowers/agrobill/pkg/types"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ListableFields are the subscription columns admin filters may reference.
var ListableFields = []string{
	"user_id", "field_id", "plan_id", "billing_cycle", "status", "active", "currency",
	"gateway_ref", "start_date", "end_date", "next_billing_at", "created_at",
}

// Store persists subscriptions. Every mutation after creation goes through CompareAndSet.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store { return &Store{db: db} }

func (st *Store) Create(ctx context.Context, sub *models.Subscription) error {
	err := st.db.WithContext(ctx).Create(sub).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fieldTaken(sub.FieldID, err)
	}
	if err != nil {
		return fmt.Errorf("failed to create subscription: %w", err)
	}
	return nil
}

func fieldTaken(fieldID string, err error) error {
	return apperr.Wrap(apperr.CodeConflict, err, fmt.Sprintf("field %s already has a live subscription", fieldID)).
		WithDetails(map[string]string{"field_id": fieldID})
}

// Delete removes a row; only used to roll back a pending subscription whose gateway call failed.
func (st *Store) Delete(ctx context.Context, id string) error {
	if err := st.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Subscription{}).Error; err != nil {
		return fmt.Errorf("failed to delete subscription %s: %w", id, err)
	}
	return nil
}

// DeleteOrphan removes a pending row that never got a gateway reference.
// It reports false when the row has since been linked, moved on or removed.
func (st *Store) DeleteOrphan(ctx context.Context, id string) (bool, error) {
	res := st.db.WithContext(ctx).
		Where("id = ? AND status = ? AND gateway_ref IS NULL", id, types.SubscriptionStatusPending).
		Delete(&models.Subscription{})
	if res.Error != nil {
		return false, fmt.Errorf("failed to delete orphan subscription %s: %w", id, res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (st *Store) Get(ctx context.Context, id string) (*models.Subscription, error) {
	return st.first(ctx, "id = ?", id)
}

func (st *Store) GetByGatewayRef(ctx context.Context, ref string) (*models.Subscription, error) {
	if ref == "" {
		return nil, apperr.New(apperr.CodeNotFound, "subscription not found")
	}
	return st.first(ctx, "gateway_ref = ?", ref)
}

// FindForField returns the most recent subscription on fieldID in status, or nil.
func (st *Store) FindForField(ctx context.Context, fieldID string, status types.SubscriptionStatus) (*models.Subscription, error) {
	sub, err := st.first(ctx, "field_id = ? AND status = ?", fieldID, status)
	if apperr.IsCode(err, apperr.CodeNotFound) {
		return nil, nil
	}
	return sub, err
}

// FindOtherActive returns an active subscription on fieldID other than id, or nil.
func (st *Store) FindOtherActive(ctx context.Context, fieldID, id string) (*models.Subscription, error) {
	sub, err := st.first(ctx, "field_id = ? AND status = ? AND id <> ?", fieldID, types.SubscriptionStatusActive, id)
	if apperr.IsCode(err, apperr.CodeNotFound) {
		return nil, nil
	}
	return sub, err
}

func (st *Store) first(ctx context.Context, query string, args ...any) (*models.Subscription, error) {
	var sub models.Subscription
	err := st.db.WithContext(ctx).Where(query, args...).Order("created_at desc").First(&sub).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.New(apperr.CodeNotFound, "subscription not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load subscription: %w", err)
	}
	return &sub, nil
}

// CompareAndSet writes the mutable columns of next if the stored row still has
// expectedVersion. It reports false when another writer got there first.
func (st *Store) CompareAndSet(ctx context.Context, next *models.Subscription, expectedVersion int64) (bool, error) {
	now := time.Now()
	res := st.db.WithContext(ctx).
		Model(&models.Subscription{}).
		Where("id = ? AND version = ?", next.ID, expectedVersion).
		Updates(map[string]any{
			"status":              next.Status,
			"active":              next.Active,
			"start_date":          next.StartDate,
			"end_date":            next.EndDate,
			"next_billing_at":     next.NextBillingAt,
			"gateway_ref":         next.GatewayRef,
			"gateway_plan_id":     next.GatewayPlanID,
			"gateway_customer_id": next.GatewayCustomerID,
			"gateway_invoice_id":  next.GatewayInvoiceID,
			"notes":               next.Notes,
			"version":             gorm.Expr("version + 1"),
			"updated_at":          now,
		})
	if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
		return false, fieldTaken(next.FieldID, res.Error)
	}
	if res.Error != nil {
		return false, fmt.Errorf("failed to update subscription %s: %w", next.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	next.Version = expectedVersion + 1
	next.UpdatedAt = now
	return true, nil
}

// ListDue returns active subscriptions whose end date is before now.
func (st *Store) ListDue(ctx context.Context, now time.Time, limit int) ([]*models.Subscription, error) {
	var items []*models.Subscription
	err := st.db.WithContext(ctx).
		Where("status = ? AND end_date IS NOT NULL AND end_date < ?", types.SubscriptionStatusActive, now).
		Order("end_date").
		Limit(limit).
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list due subscriptions: %w", err)
	}
	return items, nil
}

func (st *Store) ListByUser(ctx context.Context, userID string) ([]*models.Subscription, error) {
	var items []*models.Subscription
	if err := st.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at desc").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}
	return items, nil
}

// List returns one page of subscriptions matching filters plus the total match count.
func (st *Store) List(ctx context.Context, filters []*types.CommonFilter, page types.Pagination) ([]*models.Subscription, int64, error) {
	exprs, err := types.Expressions(filters, ListableFields)
	if err != nil {
		return nil, 0, apperr.Wrap(apperr.CodeValidation, err, err.Error())
	}
	q := st.db.WithContext(ctx).Model(&models.Subscription{})
	if len(exprs) > 0 {
		q = q.Where(clause.Where{Exprs: exprs})
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset, limit := page.Normalize()
	var items []*models.Subscription
	if err := q.Order("created_at desc").Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

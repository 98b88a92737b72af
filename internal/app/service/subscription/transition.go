package subscription

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fatflowers/agrobill/internal/models"
	"github.com/fatflowers/agrobill/pkg/apperr"
	"github.com/fatflowers/agrobill/pkg/logctx"
	"github.com/fatflowers/agrobill/pkg/metrics"
	"github.com/fatflowers/agrobill/pkg/types"

	"github.com/samber/lo"
)

const maxCASAttempts = 5

var ErrVersionConflict = errors.New("subscription was modified concurrently")

// applyFunc mutates a copy of the current row and reports whether anything changed.
type applyFunc func(sub *models.Subscription) (bool, error)

// transition reloads the row, applies fn and compare-and-sets the result, retrying
// when a concurrent writer bumped the version in between.
func (s *Service) transition(ctx context.Context, id string, reason types.SubscriptionChangeReason, extra map[string]any, fn applyFunc) (*models.Subscription, bool, error) {
	for attempt := 0; attempt < maxCASAttempts; attempt++ {
		current, err := s.store.Get(ctx, id)
		if err != nil {
			return nil, false, err
		}
		next := current.Clone()
		changed, err := fn(next)
		if err != nil {
			return current, false, err
		}
		if !changed {
			return current, false, nil
		}
		ok, err := s.store.CompareAndSet(ctx, next, current.Version)
		if err != nil {
			return nil, false, err
		}
		if !ok {
			continue
		}
		if current.Status != next.Status {
			metrics.ObserveTransition(string(current.Status), string(next.Status), string(reason))
			logctx.FromCtx(ctx, s.log).Infow("subscription_transition", "subscription_id", id,
				"from", current.Status, "to", next.Status, "reason", reason)
		}
		s.writeLog(ctx, current, next, reason, extra)
		return next, true, nil
	}
	return nil, false, fmt.Errorf("%w: %s", ErrVersionConflict, id)
}

// ActivateInput carries what the caller learned from the gateway.
type ActivateInput struct {
	Reason        types.SubscriptionChangeReason
	CustomerID    string
	InvoiceID     string
	StartAt       *time.Time
	NextBillingAt *time.Time
	Extra         map[string]any
}

// Activate moves a pending subscription to active. It is idempotent: activating an
// active row only advances next_billing_at forward and fills missing gateway ids.
// Terminal rows are left untouched.
func (s *Service) Activate(ctx context.Context, id string, in ActivateInput) (*models.Subscription, error) {
	now := s.now()
	sub, _, err := s.transition(ctx, id, lo.CoalesceOrEmpty(in.Reason, types.SubscriptionChangeReasonWebhook), in.Extra, func(sub *models.Subscription) (bool, error) {
		changed := false
		switch sub.Status {
		case types.SubscriptionStatusPending:
			if err := s.ensureSoleActive(ctx, sub); err != nil {
				return false, err
			}
			sub.SetStatus(types.SubscriptionStatusActive)
			if sub.StartDate == nil {
				sub.StartDate = lo.CoalesceOrEmpty(in.StartAt, &now)
			}
			changed = true
		case types.SubscriptionStatusActive, types.SubscriptionStatusPaused:
		default:
			logctx.FromCtx(ctx, s.log).Warnw("activation_ignored_terminal", "subscription_id", sub.ID, "status", sub.Status)
			return false, nil
		}
		if sub.BillingCycle.Recurring() && advance(sub, in.NextBillingAt) {
			changed = true
		}
		if in.CustomerID != "" && sub.GatewayCustomerID == nil {
			sub.GatewayCustomerID = &in.CustomerID
			changed = true
		}
		if in.InvoiceID != "" && lo.FromPtr(sub.GatewayInvoiceID) != in.InvoiceID {
			sub.GatewayInvoiceID = &in.InvoiceID
			changed = true
		}
		return changed, nil
	})
	return sub, err
}

// advance moves next_billing_at to next only if that is later than the stored value.
func advance(sub *models.Subscription, next *time.Time) bool {
	if next == nil {
		return false
	}
	if sub.NextBillingAt != nil && !next.After(*sub.NextBillingAt) {
		return false
	}
	t := *next
	sub.NextBillingAt = &t
	return true
}

// Pause handles the gateway pausing an active subscription.
func (s *Service) Pause(ctx context.Context, id string, extra map[string]any) (*models.Subscription, error) {
	return s.setStatus(ctx, id, types.SubscriptionStatusPaused, types.SubscriptionChangeReasonPause, extra, types.SubscriptionStatusActive)
}

// Resume handles the gateway resuming a paused subscription.
func (s *Service) Resume(ctx context.Context, id string, next *time.Time, extra map[string]any) (*models.Subscription, error) {
	sub, _, err := s.transition(ctx, id, types.SubscriptionChangeReasonResume, extra, func(sub *models.Subscription) (bool, error) {
		if sub.Status != types.SubscriptionStatusPaused {
			return false, nil
		}
		if err := s.ensureSoleActive(ctx, sub); err != nil {
			return false, err
		}
		sub.SetStatus(types.SubscriptionStatusActive)
		advance(sub, next)
		return true, nil
	})
	return sub, err
}

// ensureSoleActive refuses to activate sub while another subscription is active on its field.
func (s *Service) ensureSoleActive(ctx context.Context, sub *models.Subscription) error {
	other, err := s.store.FindOtherActive(ctx, sub.FieldID, sub.ID)
	if err != nil {
		return err
	}
	if other != nil {
		logctx.FromCtx(ctx, s.log).Warnw("activation_blocked_by_active", "subscription_id", sub.ID, "field_id", sub.FieldID, "active_id", other.ID)
		return apperr.Newf(apperr.CodeConflict, "field %s already has an active subscription", sub.FieldID).
			WithDetails(map[string]string{"subscription_id": other.ID, "status": string(other.Status)})
	}
	return nil
}

// Complete handles the gateway finishing all billing cycles.
func (s *Service) Complete(ctx context.Context, id string, endedAt *time.Time, extra map[string]any) (*models.Subscription, error) {
	now := s.now()
	sub, _, err := s.transition(ctx, id, types.SubscriptionChangeReasonComplete, extra, func(sub *models.Subscription) (bool, error) {
		if sub.Status != types.SubscriptionStatusActive && sub.Status != types.SubscriptionStatusPaused {
			return false, nil
		}
		sub.SetStatus(types.SubscriptionStatusCompleted)
		sub.EndDate = lo.CoalesceOrEmpty(endedAt, &now)
		sub.NextBillingAt = nil
		return true, nil
	})
	return sub, err
}

func (s *Service) setStatus(ctx context.Context, id string, to types.SubscriptionStatus, reason types.SubscriptionChangeReason, extra map[string]any, from ...types.SubscriptionStatus) (*models.Subscription, error) {
	sub, _, err := s.transition(ctx, id, reason, extra, func(sub *models.Subscription) (bool, error) {
		if !lo.Contains(from, sub.Status) {
			return false, nil
		}
		sub.SetStatus(to)
		return true, nil
	})
	return sub, err
}

// Who cancelled, recorded in notes.cancelledBy.
const (
	CancelledByUser    = "user"
	CancelledByAdmin   = "admin"
	CancelledByGateway = "gateway"
)

type CancelInput struct {
	By string
	// OperatorID is the user or admin performing the cancel.
	OperatorID string
	Extra      map[string]any
}

// Cancel ends a subscription. User and admin cancellations also cancel the gateway
// subscription on a best-effort basis; the local cancel stands even if that fails.
// Cancelling an already cancelled subscription returns it unchanged.
func (s *Service) Cancel(ctx context.Context, id string, in CancelInput) (*models.Subscription, error) {
	now := s.now()
	sub, changed, err := s.transition(ctx, id, types.SubscriptionChangeReasonCancel, in.Extra, func(sub *models.Subscription) (bool, error) {
		switch sub.Status {
		case types.SubscriptionStatusCancelled:
			return false, nil
		case types.SubscriptionStatusActive, types.SubscriptionStatusPaused, types.SubscriptionStatusPending:
		default:
			return false, apperr.Newf(apperr.CodeConflict, "subscription in status %s cannot be cancelled", sub.Status).
				WithDetails(map[string]string{"subscription_id": sub.ID, "status": string(sub.Status)})
		}
		sub.SetStatus(types.SubscriptionStatusCancelled)
		sub.EndDate = &now
		sub.NextBillingAt = nil
		if sub.Notes == nil {
			sub.Notes = map[string]any{}
		}
		sub.Notes["cancelledBy"] = in.By
		sub.Notes["cancelledAt"] = now.UTC().Format(time.RFC3339)
		if in.OperatorID != "" {
			sub.Notes["cancelledByID"] = in.OperatorID
		}
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	if changed && in.By != CancelledByGateway && sub.BillingCycle.Recurring() && sub.GatewayRef != nil {
		s.cancelAtGateway(ctx, sub)
	}
	return sub, nil
}

func (s *Service) cancelAtGateway(ctx context.Context, sub *models.Subscription) {
	log := logctx.FromCtx(ctx, s.log)
	gctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.gatewayTimeout())
	defer cancel()
	if _, err := s.gateway.CancelSubscription(gctx, *sub.GatewayRef, false); err != nil {
		log.Warnw("gateway_cancel_failed", "subscription_id", sub.ID, "gateway_ref", *sub.GatewayRef, "err", err)
		return
	}
	log.Infow("gateway_subscription_cancelled", "subscription_id", sub.ID, "gateway_ref", *sub.GatewayRef)
}

// CancelForUser cancels a subscription owned by userID.
func (s *Service) CancelForUser(ctx context.Context, userID, id string) (*models.Subscription, error) {
	if _, err := s.GetForUser(ctx, userID, id); err != nil {
		return nil, err
	}
	return s.Cancel(ctx, id, CancelInput{By: CancelledByUser, OperatorID: userID})
}

// ExpireDue moves active subscriptions whose end date has passed to expired and
// returns how many were expired.
func (s *Service) ExpireDue(ctx context.Context) (int, error) {
	now := s.now()
	due, err := s.store.ListDue(ctx, now, 500)
	if err != nil {
		return 0, err
	}
	expired := 0
	for _, d := range due {
		_, changed, err := s.transition(ctx, d.ID, types.SubscriptionChangeReasonExpire, nil, func(sub *models.Subscription) (bool, error) {
			if sub.Status != types.SubscriptionStatusActive || sub.EndDate == nil || !sub.EndDate.Before(now) {
				return false, nil
			}
			sub.SetStatus(types.SubscriptionStatusExpired)
			sub.NextBillingAt = nil
			return true, nil
		})
		if err != nil {
			return expired, err
		}
		if changed {
			expired++
		}
	}
	logctx.FromCtx(ctx, s.log).Infow("subscriptions_expired", "count", expired)
	return expired, nil
}

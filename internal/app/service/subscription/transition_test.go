package subscription

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fatflowers/agrobill/internal/models"
	"github.com/fatflowers/agrobill/pkg/apperr"
	"github.com/fatflowers/agrobill/pkg/types"

	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func (h *harness) createPending(t *testing.T, fieldID string) *models.Subscription {
	t.Helper()
	res, err := h.svc.Create(context.Background(), monthlyRequest(fieldID))
	require.NoError(t, err)
	return res.Subscription
}

func TestActivateIsIdempotent(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	sub := h.createPending(t, "field-1")

	first, err := h.svc.Activate(ctx, sub.ID, ActivateInput{Reason: types.SubscriptionChangeReasonCheckout})
	require.NoError(t, err)
	require.Equal(t, types.SubscriptionStatusActive, first.Status)
	require.True(t, first.Active)
	require.NotNil(t, first.StartDate)

	second, err := h.svc.Activate(ctx, sub.ID, ActivateInput{Reason: types.SubscriptionChangeReasonWebhook})
	require.NoError(t, err)
	require.Equal(t, types.SubscriptionStatusActive, second.Status)
	require.Equal(t, first.Version, second.Version)
	require.Equal(t, first.StartDate.Unix(), second.StartDate.Unix())
}

func TestActivateAdvancesNextBillingMonotonically(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	sub := h.createPending(t, "field-1")

	may := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	june := may.AddDate(0, 1, 0)

	_, err := h.svc.Activate(ctx, sub.ID, ActivateInput{NextBillingAt: &june, CustomerID: "cust_1"})
	require.NoError(t, err)

	// an older, out-of-order delivery must not move the date back
	got, err := h.svc.Activate(ctx, sub.ID, ActivateInput{NextBillingAt: &may, CustomerID: "cust_2"})
	require.NoError(t, err)
	require.True(t, got.NextBillingAt.Equal(june))
	require.Equal(t, "cust_1", *got.GatewayCustomerID)

	july := june.AddDate(0, 1, 0)
	got, err = h.svc.Activate(ctx, sub.ID, ActivateInput{Reason: types.SubscriptionChangeReasonRenewal, NextBillingAt: &july, InvoiceID: "inv_2"})
	require.NoError(t, err)
	require.True(t, got.NextBillingAt.Equal(july))
	require.Equal(t, "inv_2", *got.GatewayInvoiceID)
}

func TestActivateConcurrentCallers(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	sub := h.createPending(t, "field-1")

	var g errgroup.Group
	for i := 0; i < 8; i++ {
		g.Go(func() error {
			_, err := h.svc.Activate(ctx, sub.ID, ActivateInput{})
			return err
		})
	}
	require.NoError(t, g.Wait())

	stored, err := h.svc.Get(ctx, sub.ID)
	require.NoError(t, err)
	require.Equal(t, types.SubscriptionStatusActive, stored.Status)
	require.Equal(t, sub.Version+1, stored.Version)
}

func TestActivateIgnoresTerminal(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	sub := h.createPending(t, "field-1")

	_, err := h.svc.Cancel(ctx, sub.ID, CancelInput{By: CancelledByUser})
	require.NoError(t, err)

	got, err := h.svc.Activate(ctx, sub.ID, ActivateInput{})
	require.NoError(t, err)
	require.Equal(t, types.SubscriptionStatusCancelled, got.Status)
	require.False(t, got.Active)
}

func TestActivateUnknownSubscription(t *testing.T) {
	h := newHarness(t)
	_, err := h.svc.Activate(context.Background(), "0190c0de-0000-7000-8000-00000000ffff", ActivateInput{})
	require.True(t, apperr.IsCode(err, apperr.CodeNotFound))
}

func TestCancelActiveRecurring(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	sub := h.createPending(t, "field-1")
	_, err := h.svc.Activate(ctx, sub.ID, ActivateInput{})
	require.NoError(t, err)

	got, err := h.svc.CancelForUser(ctx, "user-1", sub.ID)
	require.NoError(t, err)
	require.Equal(t, types.SubscriptionStatusCancelled, got.Status)
	require.False(t, got.Active)
	require.NotNil(t, got.EndDate)
	require.Nil(t, got.NextBillingAt)
	require.Equal(t, CancelledByUser, got.Notes["cancelledBy"])
	require.NotEmpty(t, got.Notes["cancelledAt"])
	require.Equal(t, []string{*sub.GatewayRef}, h.gw.CancelledIDs())

	// repeated cancel is a no-op and does not call the gateway again
	again, err := h.svc.Cancel(ctx, sub.ID, CancelInput{By: CancelledByAdmin})
	require.NoError(t, err)
	require.Equal(t, got.Version, again.Version)
	require.Len(t, h.gw.CancelledIDs(), 1)
}

func TestCancelSurvivesGatewayFailure(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	sub := h.createPending(t, "field-1")
	h.gw.CancelErr = errors.New("gateway down")

	got, err := h.svc.Cancel(ctx, sub.ID, CancelInput{By: CancelledByAdmin, OperatorID: "admin-1"})
	require.NoError(t, err)
	require.Equal(t, types.SubscriptionStatusCancelled, got.Status)
	require.Equal(t, "admin-1", got.Notes["cancelledByID"])
}

func TestCancelFromGatewaySkipsGatewayCall(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	sub := h.createPending(t, "field-1")

	_, err := h.svc.Cancel(ctx, sub.ID, CancelInput{By: CancelledByGateway})
	require.NoError(t, err)
	require.Empty(t, h.gw.CancelledIDs())
}

func TestCancelForUserRejectsOtherUsers(t *testing.T) {
	h := newHarness(t)
	sub := h.createPending(t, "field-1")

	_, err := h.svc.CancelForUser(context.Background(), "intruder", sub.ID)
	require.True(t, apperr.IsCode(err, apperr.CodeNotFound))

	stored, err := h.svc.Get(context.Background(), sub.ID)
	require.NoError(t, err)
	require.Equal(t, types.SubscriptionStatusPending, stored.Status)
}

func TestPauseResumeComplete(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	sub := h.createPending(t, "field-1")

	// pausing a pending subscription is not a valid transition
	got, err := h.svc.Pause(ctx, sub.ID, nil)
	require.NoError(t, err)
	require.Equal(t, types.SubscriptionStatusPending, got.Status)

	_, err = h.svc.Activate(ctx, sub.ID, ActivateInput{})
	require.NoError(t, err)

	got, err = h.svc.Pause(ctx, sub.ID, nil)
	require.NoError(t, err)
	require.Equal(t, types.SubscriptionStatusPaused, got.Status)
	require.False(t, got.Active)

	next := time.Now().Add(24 * time.Hour).UTC().Truncate(time.Second)
	got, err = h.svc.Resume(ctx, sub.ID, &next, nil)
	require.NoError(t, err)
	require.Equal(t, types.SubscriptionStatusActive, got.Status)
	require.True(t, got.NextBillingAt.Equal(next))

	got, err = h.svc.Complete(ctx, sub.ID, nil, nil)
	require.NoError(t, err)
	require.Equal(t, types.SubscriptionStatusCompleted, got.Status)
	require.NotNil(t, got.EndDate)

	_, err = h.svc.Cancel(ctx, sub.ID, CancelInput{By: CancelledByUser})
	require.True(t, apperr.IsCode(err, apperr.CodeConflict))
}

func TestResumeRefusedWhileFieldHasAnotherActive(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	first := h.createPending(t, "field-1")
	_, err := h.svc.Activate(ctx, first.ID, ActivateInput{})
	require.NoError(t, err)
	_, err = h.svc.Pause(ctx, first.ID, nil)
	require.NoError(t, err)

	// a paused subscription does not hold the field
	second := h.createPending(t, "field-1")
	_, err = h.svc.Activate(ctx, second.ID, ActivateInput{})
	require.NoError(t, err)

	_, err = h.svc.Resume(ctx, first.ID, nil, nil)
	require.True(t, apperr.IsCode(err, apperr.CodeConflict))
	got, err := h.svc.Get(ctx, first.ID)
	require.NoError(t, err)
	require.Equal(t, types.SubscriptionStatusPaused, got.Status)
	require.Equal(t, int64(1), h.activeForField(t, "field-1"))
}

func TestExpireDue(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	res, err := h.svc.Create(ctx, &CreateRequest{UserID: "user-1", FieldID: "field-1", PlanID: "trial"})
	require.NoError(t, err)
	live, err := h.svc.Create(ctx, &CreateRequest{UserID: "user-1", FieldID: "field-2", PlanID: "trial"})
	require.NoError(t, err)

	past := time.Now().Add(-time.Hour)
	require.NoError(t, h.db.Model(&models.Subscription{}).Where("id = ?", res.Subscription.ID).Update("end_date", past).Error)

	n, err := h.svc.ExpireDue(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	expired, err := h.svc.Get(ctx, res.Subscription.ID)
	require.NoError(t, err)
	require.Equal(t, types.SubscriptionStatusExpired, expired.Status)
	require.False(t, expired.Active)

	still, err := h.svc.Get(ctx, live.Subscription.ID)
	require.NoError(t, err)
	require.Equal(t, types.SubscriptionStatusActive, still.Status)

	// nothing left to expire
	n, err = h.svc.ExpireDue(ctx)
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestCompareAndSetRejectsStaleVersion(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	sub := h.createPending(t, "field-1")

	stale := sub.Clone()
	_, err := h.svc.Activate(ctx, sub.ID, ActivateInput{})
	require.NoError(t, err)

	stale.SetStatus(types.SubscriptionStatusFailed)
	ok, err := h.svc.Store().CompareAndSet(ctx, stale, stale.Version)
	require.NoError(t, err)
	require.False(t, ok)

	stored, err := h.svc.Get(ctx, sub.ID)
	require.NoError(t, err)
	require.Equal(t, types.SubscriptionStatusActive, stored.Status)
}

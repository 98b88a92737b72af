package subscription

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fatflowers/agrobill/internal/app/service/pricing"
	"github.com/fatflowers/agrobill/internal/models"
	"github.com/fatflowers/agrobill/internal/platform/razorpay"
	"github.com/fatflowers/agrobill/pkg/apperr"
	"github.com/fatflowers/agrobill/pkg/config"
	"github.com/fatflowers/agrobill/pkg/logctx"
	"github.com/fatflowers/agrobill/pkg/tool"
	"github.com/fatflowers/agrobill/pkg/types"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Service owns the subscription lifecycle: creation, gateway linkage and every status transition.
type Service struct {
	cfg      *config.Config
	db       *gorm.DB
	store    *Store
	gateway  razorpay.Gateway
	resolver *pricing.Resolver
	log      *zap.SugaredLogger
	now      func() time.Time
}

func NewService(cfg *config.Config, db *gorm.DB, gateway razorpay.Gateway, resolver *pricing.Resolver, log *zap.SugaredLogger) *Service {
	return &Service{
		cfg:      cfg,
		db:       db,
		store:    NewStore(db),
		gateway:  gateway,
		resolver: resolver,
		log:      log,
		now:      time.Now,
	}
}

func (s *Service) Store() *Store { return s.store }

// CreateRequest asks for a new subscription of a field on a plan.
type CreateRequest struct {
	UserID       string             `json:"-"`
	FieldID      string             `json:"field_id" validate:"required,max=64"`
	PlanID       string             `json:"plan_id" validate:"required,max=64"`
	Currency     string             `json:"currency" validate:"omitempty,len=3,alpha"`
	BillingCycle types.BillingCycle `json:"billing_cycle" validate:"omitempty,oneof=trial monthly yearly season"`
	Quantity     string             `json:"quantity" validate:"omitempty,numeric"`
	Unit         types.AreaUnit     `json:"unit" validate:"omitempty,oneof=hectare acre"`
}

// CheckoutInfo is what a client needs to open the gateway checkout.
type CheckoutInfo struct {
	// Kind is "subscription" for recurring cycles and "order" for season payments.
	Kind        string `json:"kind"`
	GatewayRef  string `json:"gateway_ref"`
	KeyID       string `json:"key_id"`
	AmountMinor int64  `json:"amount_minor"`
	Currency    string `json:"currency"`
	ShortURL    string `json:"short_url,omitempty"`
}

type CreateResult struct {
	Subscription *models.Subscription `json:"subscription"`
	Checkout     *CheckoutInfo        `json:"checkout,omitempty"`
}

const (
	CheckoutKindSubscription = "subscription"
	CheckoutKindOrder        = "order"
)

const rollbackTimeout = 10 * time.Second

// Create prices the request, stores the subscription and, for paid cycles, creates the
// gateway object. A failed gateway call leaves no pending row behind.
func (s *Service) Create(ctx context.Context, req *CreateRequest) (*CreateResult, error) {
	log := logctx.FromCtx(ctx, s.log)

	plan := s.cfg.GetPlanByID(req.PlanID)
	if plan == nil || !plan.Active {
		return nil, apperr.Newf(apperr.CodeNotFound, "plan %s not found", req.PlanID)
	}
	if !plan.IsTrial && !req.BillingCycle.Valid() {
		return nil, apperr.New(apperr.CodeValidation, "invalid request").
			WithDetails(map[string]string{"billing_cycle": "must be one of monthly yearly season"})
	}
	if !plan.IsTrial && strings.TrimSpace(req.Currency) == "" {
		return nil, apperr.New(apperr.CodeValidation, "invalid request").
			WithDetails(map[string]string{"currency": "is required"})
	}
	if !plan.IsTrial && req.BillingCycle == types.BillingCycleTrial {
		return nil, apperr.Newf(apperr.CodePricingNotFound, "plan %s has no trial", plan.ID)
	}

	quantity := decimal.Zero
	if req.Quantity != "" {
		q, err := decimal.NewFromString(req.Quantity)
		if err != nil {
			return nil, apperr.New(apperr.CodeValidation, "invalid request").
				WithDetails(map[string]string{"quantity": "must be a decimal number"})
		}
		quantity = q
	}

	quote, err := s.resolver.Resolve(plan, pricing.Request{
		Currency:     req.Currency,
		BillingCycle: req.BillingCycle,
		Quantity:     quantity,
		Unit:         req.Unit,
	})
	if err != nil {
		return nil, err
	}

	if err := s.checkFieldConflicts(ctx, req.FieldID); err != nil {
		return nil, err
	}

	sub := newFromQuote(req, plan, quote, s.now())
	if err := s.store.Create(ctx, sub); err != nil {
		return nil, err
	}
	s.writeLog(ctx, nil, sub, lo.Ternary(quote.Trial, types.SubscriptionChangeReasonTrial, types.SubscriptionChangeReasonCreate), nil)

	if quote.Trial {
		log.Infow("trial_subscription_created", "subscription_id", sub.ID, "field_id", sub.FieldID, "end_date", sub.EndDate)
		return &CreateResult{Subscription: sub}, nil
	}

	checkout, err := s.linkGateway(ctx, plan, sub)
	if err != nil {
		s.rollback(ctx, sub, err)
		return nil, err
	}
	log.Infow("subscription_created", "subscription_id", sub.ID, "field_id", sub.FieldID,
		"gateway_ref", checkout.GatewayRef, "amount_minor", sub.ChargedAmountMinor, "currency", checkout.Currency)
	return &CreateResult{Subscription: sub, Checkout: checkout}, nil
}

// checkFieldConflicts rejects a new subscription while the field has an active one or
// a checkout in flight. A pending row without a gateway reference is in flight only
// while its creating request could still be talking to the gateway; older ones are
// orphans left by a crash and are removed.
func (s *Service) checkFieldConflicts(ctx context.Context, fieldID string) error {
	active, err := s.store.FindForField(ctx, fieldID, types.SubscriptionStatusActive)
	if err != nil {
		return err
	}
	if active != nil {
		return apperr.Newf(apperr.CodeConflict, "field %s already has an active subscription", fieldID).
			WithDetails(map[string]string{"subscription_id": active.ID, "status": string(active.Status)})
	}
	pending, err := s.store.FindForField(ctx, fieldID, types.SubscriptionStatusPending)
	if err != nil || pending == nil {
		return err
	}
	if pending.GatewayRef == nil && s.now().Sub(pending.CreatedAt) > s.orphanAge() {
		removed, err := s.store.DeleteOrphan(ctx, pending.ID)
		if err != nil {
			return err
		}
		if removed {
			s.writeLog(ctx, pending, nil, types.SubscriptionChangeReasonRollback, map[string]any{"error": "orphaned pending subscription"})
			logctx.FromCtx(ctx, s.log).Warnw("orphan_pending_removed", "subscription_id", pending.ID, "field_id", fieldID, "created_at", pending.CreatedAt)
			return nil
		}
	}
	details := map[string]string{"subscription_id": pending.ID, "status": string(pending.Status)}
	if pending.GatewayRef != nil {
		details["gateway_ref"] = *pending.GatewayRef
	}
	return apperr.Newf(apperr.CodeConflict, "field %s has a subscription awaiting payment", fieldID).WithDetails(details)
}

func newFromQuote(req *CreateRequest, plan *types.Plan, quote *pricing.Quote, now time.Time) *models.Subscription {
	sub := &models.Subscription{
		ID:                 tool.GenerateUUIDV7(),
		UserID:             req.UserID,
		FieldID:            req.FieldID,
		PlanID:             plan.ID,
		BillingCycle:       quote.BillingCycle,
		Unit:               quote.Unit,
		Quantity:           quote.Quantity.String(),
		Currency:           quote.Currency,
		UnitPriceMinor:     quote.UnitPriceMinor,
		AmountMinor:        quote.AmountMinor,
		ChargedCurrency:    quote.ChargedCurrency,
		ChargedAmountMinor: quote.ChargedAmountMinor,
		Notes:              datatypes.JSONMap{"isTrial": quote.Trial, "planName": plan.Name},
		Version:            1,
	}
	if quote.ExchangeRate != nil {
		sub.ExchangeRate = lo.ToPtr(quote.ExchangeRate.String())
	}
	if quote.Trial {
		sub.SetStatus(types.SubscriptionStatusActive)
		sub.StartDate = &now
		sub.EndDate = quote.TrialEnd
	} else {
		sub.SetStatus(types.SubscriptionStatusPending)
	}
	return sub
}

// linkGateway creates the gateway object for a pending subscription and stores its reference.
func (s *Service) linkGateway(ctx context.Context, plan *types.Plan, sub *models.Subscription) (*CheckoutInfo, error) {
	gctx, cancel := context.WithTimeout(ctx, s.gatewayTimeout())
	defer cancel()

	currency := lo.FromPtr(sub.ChargedCurrency)
	checkout := &CheckoutInfo{KeyID: s.cfg.Gateway.KeyID, AmountMinor: sub.ChargedAmountMinor, Currency: currency}
	notes := map[string]string{"subscription_id": sub.ID, "user_id": sub.UserID, "field_id": sub.FieldID, "plan_id": sub.PlanID}

	next := sub.Clone()
	if sub.BillingCycle.Recurring() {
		gwPlan, err := s.gateway.CreatePlan(gctx, &razorpay.CreatePlanRequest{
			Period:   string(sub.BillingCycle),
			Interval: 1,
			Item: razorpay.Item{
				Name:     fmt.Sprintf("%s %s %s", plan.Name, sub.Quantity, sub.Unit),
				Amount:   sub.ChargedAmountMinor,
				Currency: currency,
			},
			Notes: notes,
		})
		if err != nil {
			return nil, apperr.Wrap(apperr.CodeGateway, err, "failed to create gateway plan")
		}
		gwSub, err := s.gateway.CreateSubscription(gctx, &razorpay.CreateSubscriptionRequest{
			PlanID:         gwPlan.ID,
			TotalCount:     s.totalCount(sub.BillingCycle),
			CustomerNotify: 1,
			Notes:          notes,
		})
		if err != nil {
			return nil, apperr.Wrap(apperr.CodeGateway, err, "failed to create gateway subscription")
		}
		next.GatewayRef = &gwSub.ID
		next.GatewayPlanID = &gwPlan.ID
		if gwSub.CustomerID != "" {
			next.GatewayCustomerID = &gwSub.CustomerID
		}
		checkout.Kind = CheckoutKindSubscription
		checkout.GatewayRef = gwSub.ID
		checkout.ShortURL = gwSub.ShortURL
	} else {
		order, err := s.gateway.CreateOrder(gctx, &razorpay.CreateOrderRequest{
			Amount:   sub.ChargedAmountMinor,
			Currency: currency,
			Receipt:  tool.Receipt("agb", sub.ID),
			Notes:    notes,
		})
		if err != nil {
			return nil, apperr.Wrap(apperr.CodeGateway, err, "failed to create gateway order")
		}
		next.GatewayRef = &order.ID
		checkout.Kind = CheckoutKindOrder
		checkout.GatewayRef = order.ID
	}

	ok, err := s.store.CompareAndSet(ctx, next, sub.Version)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("subscription %s changed while linking gateway", sub.ID)
	}
	s.writeLog(ctx, sub, next, types.SubscriptionChangeReasonGatewayLinked, nil)
	*sub = *next
	return checkout, nil
}

func (s *Service) gatewayTimeout() time.Duration {
	if s.cfg.Gateway.Timeout <= 0 {
		return 15 * time.Second
	}
	return s.cfg.Gateway.Timeout
}

// orphanAge is how long a pending row may stay unlinked before no request can still own it.
func (s *Service) orphanAge() time.Duration {
	return 2*s.gatewayTimeout() + rollbackTimeout
}

func (s *Service) totalCount(cycle types.BillingCycle) int {
	if cycle == types.BillingCycleYearly {
		return lo.Ternary(s.cfg.Gateway.YearlyTotalCount > 0, s.cfg.Gateway.YearlyTotalCount, 10)
	}
	return lo.Ternary(s.cfg.Gateway.MonthlyTotalCount > 0, s.cfg.Gateway.MonthlyTotalCount, 120)
}

// rollback deletes a pending row after its gateway call failed. It runs detached from
// the request context so a cancelled client cannot leave an orphan behind.
func (s *Service) rollback(ctx context.Context, sub *models.Subscription, cause error) {
	log := logctx.FromCtx(ctx, s.log)
	dctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), rollbackTimeout)
	defer cancel()
	if err := s.store.Delete(dctx, sub.ID); err != nil {
		log.Errorw("subscription_rollback_failed", "subscription_id", sub.ID, "cause", cause, "err", err)
		return
	}
	s.writeLog(dctx, sub, nil, types.SubscriptionChangeReasonRollback, map[string]any{"error": cause.Error()})
	log.Warnw("subscription_rolled_back", "subscription_id", sub.ID, "cause", cause)
}

// Get returns a subscription by id.
func (s *Service) Get(ctx context.Context, id string) (*models.Subscription, error) {
	return s.store.Get(ctx, id)
}

// GetForUser returns a subscription owned by userID; other users' rows read as not found.
func (s *Service) GetForUser(ctx context.Context, userID, id string) (*models.Subscription, error) {
	sub, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if sub.UserID != userID {
		return nil, apperr.New(apperr.CodeNotFound, "subscription not found")
	}
	return sub, nil
}

func (s *Service) GetByGatewayRef(ctx context.Context, ref string) (*models.Subscription, error) {
	return s.store.GetByGatewayRef(ctx, ref)
}

// ActiveForField returns the active subscription on fieldID, or nil.
func (s *Service) ActiveForField(ctx context.Context, fieldID string) (*models.Subscription, error) {
	return s.store.FindForField(ctx, fieldID, types.SubscriptionStatusActive)
}

func (s *Service) ListByUser(ctx context.Context, userID string) ([]*models.Subscription, error) {
	return s.store.ListByUser(ctx, userID)
}

func (s *Service) List(ctx context.Context, filters []*types.CommonFilter, page types.Pagination) ([]*models.Subscription, int64, error) {
	return s.store.List(ctx, filters, page)
}

// writeLog appends a subscription_log row asynchronously; failures are only logged.
func (s *Service) writeLog(ctx context.Context, before, after *models.Subscription, reason types.SubscriptionChangeReason, extra map[string]any) {
	ref := lo.CoalesceOrEmpty(after, before)
	if ref == nil {
		return
	}
	entry := &models.SubscriptionLog{
		ID:             tool.GenerateUUIDV7(),
		SubscriptionID: ref.ID,
		UserID:         ref.UserID,
		Reason:         reason,
		Before:         datatypes.NewJSONType(before.Clone()),
		After:          datatypes.NewJSONType(after.Clone()),
		Extra:          datatypes.JSONMap(lo.Assign(map[string]any{}, extra)),
	}
	if traceID := logctx.TraceID(ctx); traceID != "" {
		entry.Extra["trace_id"] = traceID
	}
	go func() {
		if err := s.db.Save(entry).Error; err != nil {
			logctx.FromCtx(ctx, s.log).Errorf("failed to save subscription log: %v", err)
		}
	}()
}

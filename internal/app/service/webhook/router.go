package webhook

import (
	"context"
	"net/http"
	"time"

	"github.com/fatflowers/agrobill/internal/app/service/ledger"
	"github.com/fatflowers/agrobill/internal/app/service/notification_log"
	"github.com/fatflowers/agrobill/internal/app/service/subscription"
	"github.com/fatflowers/agrobill/internal/models"
	"github.com/fatflowers/agrobill/internal/platform/archive"
	"github.com/fatflowers/agrobill/internal/platform/razorpay"
	"github.com/fatflowers/agrobill/internal/platform/redis"
	"github.com/fatflowers/agrobill/pkg/config"
	"github.com/fatflowers/agrobill/pkg/logctx"
	"github.com/fatflowers/agrobill/pkg/metrics"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Outcome classifies how a delivery was handled.
type Outcome string

const (
	OutcomeProcessed  Outcome = "processed"
	OutcomeIgnored    Outcome = "ignored"
	OutcomeUnresolved Outcome = "unresolved"
	OutcomeDuplicate  Outcome = "duplicate"
	OutcomeMalformed  Outcome = "malformed"
	OutcomeRejected   Outcome = "rejected"
	OutcomeFailed     Outcome = "failed"
)

// Result is what the HTTP layer needs to answer the gateway.
type Result struct {
	StatusCode     int
	Outcome        Outcome
	Event          string
	SubscriptionID string
	Err            error
}

type Router struct {
	cfg           *config.Config
	subs          *subscription.Service
	ledger        *ledger.Service
	gateway       razorpay.Gateway
	guard         *redis.EventGuard
	archive       *archive.Archiver
	notifications *notification_log.Service
	log           *zap.SugaredLogger
	now           func() time.Time
}

type Params struct {
	fx.In

	Config        *config.Config
	Subscriptions *subscription.Service
	Ledger        *ledger.Service
	Gateway       razorpay.Gateway
	Guard         *redis.EventGuard
	Archive       *archive.Archiver
	Notifications *notification_log.Service
	Log           *zap.SugaredLogger
}

func NewRouter(p Params) *Router {
	return &Router{
		cfg:           p.Config,
		subs:          p.Subscriptions,
		ledger:        p.Ledger,
		gateway:       p.Gateway,
		guard:         p.Guard,
		archive:       p.Archive,
		notifications: p.Notifications,
		log:           p.Log,
		now:           time.Now,
	}
}

// Handle authenticates and applies one webhook delivery. Rejected signatures answer 400
// without touching any state; business no-ops answer 200; store or gateway failures
// answer 500 so the gateway redelivers.
func (r *Router) Handle(ctx context.Context, raw []byte, signature, eventID string) *Result {
	log := logctx.FromCtx(ctx, r.log)
	receivedAt := r.now()

	if !razorpay.VerifyWebhookSignature(raw, signature, r.cfg.Gateway.WebhookSecret) {
		metrics.ObserveWebhookEvent("unknown", string(OutcomeRejected))
		log.Warnw("webhook_signature_rejected", "event_id", eventID, "has_signature", signature != "")
		return &Result{StatusCode: http.StatusBadRequest, Outcome: OutcomeRejected}
	}

	if eventID != "" {
		seen, err := r.guard.CheckAndMark(ctx, eventID)
		if err != nil {
			log.Warnw("webhook_guard_unavailable", "event_id", eventID, "err", err)
		} else if seen {
			metrics.ObserveWebhookEvent("unknown", string(OutcomeDuplicate))
			log.Infow("webhook_duplicate_event", "event_id", eventID)
			return &Result{StatusCode: http.StatusOK, Outcome: OutcomeDuplicate}
		}
	}

	r.archiveAsync(ctx, eventID, raw, receivedAt)

	delivery := &notification_log.Delivery{EventID: eventID, Raw: raw, ReceivedAt: receivedAt}
	ev, err := razorpay.ParseEvent(raw)
	if err != nil || ev.Event == "" {
		metrics.ObserveWebhookEvent("unknown", string(OutcomeMalformed))
		log.Warnw("webhook_malformed_payload", "event_id", eventID, "err", err)
		delivery.Status = models.PaymentNotificationLogStatusIgnored
		delivery.Result = map[string]any{"outcome": OutcomeMalformed}
		r.notifications.Record(ctx, delivery)
		return &Result{StatusCode: http.StatusOK, Outcome: OutcomeMalformed}
	}
	delivery.EventType = ev.Event
	log.Infow("webhook_received", "event", ev.Event, "event_id", eventID)

	res := r.dispatch(ctx, ev)
	res.Event = ev.Event
	delivery.SubscriptionID = res.SubscriptionID
	delivery.Result = map[string]any{"outcome": res.Outcome}
	metrics.ObserveWebhookEvent(ev.Event, string(res.Outcome))

	if res.Err != nil {
		res.StatusCode = http.StatusInternalServerError
		delivery.Status = models.PaymentNotificationLogStatusHandleFailed
		delivery.Result["error"] = res.Err.Error()
		if err := r.guard.Release(context.WithoutCancel(ctx), eventID); err != nil {
			log.Warnw("webhook_guard_release_failed", "event_id", eventID, "err", err)
		}
		log.Errorw("webhook_handle_failed", "event", ev.Event, "event_id", eventID, "subscription_id", res.SubscriptionID, "err", res.Err)
	} else {
		res.StatusCode = http.StatusOK
		delivery.Status = models.PaymentNotificationLogStatusHandled
		if res.Outcome != OutcomeProcessed {
			delivery.Status = models.PaymentNotificationLogStatusIgnored
		}
		log.Infow("webhook_handled", "event", ev.Event, "event_id", eventID, "subscription_id", res.SubscriptionID, "outcome", res.Outcome)
	}
	r.notifications.Record(ctx, delivery)
	return res
}

func (r *Router) archiveAsync(ctx context.Context, eventID string, raw []byte, at time.Time) {
	if !r.archive.Enabled() {
		return
	}
	actx := context.WithoutCancel(ctx)
	go func() {
		actx, cancel := context.WithTimeout(actx, 30*time.Second)
		defer cancel()
		if _, err := r.archive.Put(actx, eventID, raw, at); err != nil {
			logctx.FromCtx(actx, r.log).Warnw("webhook_archive_failed", "event_id", eventID, "err", err)
		}
	}()
}

var Module = fx.Options(
	fx.Provide(NewRouter),
)

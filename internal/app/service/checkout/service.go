package checkout

import (
	"context"
	"fmt"
	"time"

	"github.com/fatflowers/agrobill/internal/app/service/ledger"
	"github.com/fatflowers/agrobill/internal/app/service/subscription"
	"github.com/fatflowers/agrobill/internal/models"
	"github.com/fatflowers/agrobill/internal/platform/razorpay"
	"github.com/fatflowers/agrobill/pkg/apperr"
	"github.com/fatflowers/agrobill/pkg/config"
	"github.com/fatflowers/agrobill/pkg/logctx"
	"github.com/fatflowers/agrobill/pkg/types"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

// VerifyRequest is what the checkout widget hands back to the client after a payment.
// Exactly one of RazorpayOrderID and RazorpaySubscriptionID is expected.
type VerifyRequest struct {
	RazorpayPaymentID      string `json:"razorpay_payment_id" validate:"required"`
	RazorpayOrderID        string `json:"razorpay_order_id"`
	RazorpaySubscriptionID string `json:"razorpay_subscription_id"`
	RazorpaySignature      string `json:"razorpay_signature" validate:"required"`
}

type VerifyResult struct {
	Subscription *models.Subscription `json:"subscription"`
	// Payment is nil while the gateway has not confirmed the payment; the webhook records it then.
	Payment *models.Payment `json:"payment"`
	// Recorded is false when the payment was already in the ledger or was not written yet.
	Recorded bool `json:"recorded"`
}

type Service struct {
	cfg     *config.Config
	subs    *subscription.Service
	ledger  *ledger.Service
	gateway razorpay.Gateway
	log     *zap.SugaredLogger
}

func NewService(cfg *config.Config, subs *subscription.Service, led *ledger.Service, gateway razorpay.Gateway, log *zap.SugaredLogger) *Service {
	return &Service{cfg: cfg, subs: subs, ledger: led, gateway: gateway, log: log}
}

// Verify authenticates a client-reported checkout, activates the subscription it paid
// for and records the payment as the gateway reports it. Repeating a verification, or
// racing it with the gateway webhook for the same payment, is harmless.
func (s *Service) Verify(ctx context.Context, userID string, req *VerifyRequest) (*VerifyResult, error) {
	log := logctx.FromCtx(ctx, s.log)
	if req == nil || req.RazorpayPaymentID == "" || (req.RazorpayOrderID == "" && req.RazorpaySubscriptionID == "") {
		return nil, apperr.New(apperr.CodeValidation, "invalid request").
			WithDetails(map[string]string{"razorpay_order_id": "order id or subscription id is required"})
	}

	secret := s.cfg.Gateway.KeySecret
	ref := req.RazorpayOrderID
	var ok bool
	if req.RazorpaySubscriptionID != "" {
		ref = req.RazorpaySubscriptionID
		ok = razorpay.VerifySubscriptionPayment(req.RazorpayPaymentID, req.RazorpaySubscriptionID, req.RazorpaySignature, secret)
	} else {
		ok = razorpay.VerifyOrderPayment(req.RazorpayOrderID, req.RazorpayPaymentID, req.RazorpaySignature, secret)
	}
	if !ok {
		log.Warnw("checkout_signature_rejected", "payment_id", req.RazorpayPaymentID, "gateway_ref", ref)
		return nil, apperr.New(apperr.CodeSignature, "checkout signature mismatch")
	}

	sub, err := s.subs.GetByGatewayRef(ctx, ref)
	if err != nil {
		return nil, err
	}
	if userID != "" && sub.UserID != userID {
		return nil, apperr.New(apperr.CodeNotFound, "subscription not found")
	}

	activated, err := s.subs.Activate(ctx, sub.ID, subscription.ActivateInput{
		Reason: types.SubscriptionChangeReasonCheckout,
		Extra:  map[string]any{"payment_id": req.RazorpayPaymentID},
	})
	if err != nil {
		return nil, fmt.Errorf("activate subscription %s: %w", sub.ID, err)
	}

	payment, recorded, err := s.record(ctx, activated, req)
	if err != nil {
		return nil, err
	}

	log.Infow("checkout_verified", "subscription_id", activated.ID, "payment_id", req.RazorpayPaymentID,
		"gateway_ref", ref, "status", activated.Status, "recorded", recorded)
	return &VerifyResult{Subscription: activated, Payment: payment, Recorded: recorded}, nil
}

// record writes the payment as the gateway reports it. When the gateway cannot be
// reached nothing is written: the webhook for the same payment carries the
// authoritative row, and the ledger keeps whichever row arrives first.
func (s *Service) record(ctx context.Context, sub *models.Subscription, req *VerifyRequest) (*models.Payment, bool, error) {
	log := logctx.FromCtx(ctx, s.log)
	timeout := s.cfg.Gateway.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	gctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	p, fetchErr := s.gateway.FetchPayment(gctx, req.RazorpayPaymentID)
	if fetchErr != nil {
		log.Warnw("checkout_payment_deferred", "payment_id", req.RazorpayPaymentID, "subscription_id", sub.ID, "err", fetchErr)
		return s.existing(ctx, req.RazorpayPaymentID), false, nil
	}

	row := ledger.FromGateway(sub, p, nil, ledger.SourceCheckout)
	if row.ProviderOrderID == nil && req.RazorpayOrderID != "" {
		row.ProviderOrderID = &req.RazorpayOrderID
	}
	recorded, err := s.ledger.RecordPayment(ctx, row)
	if err != nil {
		return nil, false, fmt.Errorf("record payment %s: %w", req.RazorpayPaymentID, err)
	}
	if !recorded {
		if prior := s.existing(ctx, req.RazorpayPaymentID); prior != nil {
			row = prior
		}
	}
	return row, recorded, nil
}

// existing returns the ledger row for paymentID, or nil.
func (s *Service) existing(ctx context.Context, paymentID string) *models.Payment {
	p, err := s.ledger.GetByProviderPaymentID(ctx, paymentID)
	if err != nil {
		return nil
	}
	return p
}

var Module = fx.Options(
	fx.Provide(NewService),
)

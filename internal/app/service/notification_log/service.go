package notification_log

import (
	"context"
	"encoding/json"
	"time"

	"github.com/fatflowers/agrobill/internal/models"
	"github.com/fatflowers/agrobill/pkg/logctx"
	"github.com/fatflowers/agrobill/pkg/tool"
	"github.com/fatflowers/agrobill/pkg/types"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Service struct {
	db  *gorm.DB
	log *zap.SugaredLogger
}

func New(db *gorm.DB, log *zap.SugaredLogger) *Service { return &Service{db: db, log: log} }

// Delivery describes one processed webhook delivery.
type Delivery struct {
	EventID        string
	EventType      string
	SubscriptionID string
	Raw            []byte
	Status         models.PaymentNotificationLogStatus
	Result         map[string]any
	ReceivedAt     time.Time
}

// Record builds a notification log row from d and saves it asynchronously.
func (s *Service) Record(ctx context.Context, d *Delivery) {
	if d == nil {
		return
	}
	entry := &models.PaymentNotificationLog{
		ID:               tool.GenerateUUIDV7(),
		ProviderID:       string(types.PaymentProviderRazorpay),
		EventID:          d.EventID,
		EventType:        d.EventType,
		TraceID:          logctx.TraceID(ctx),
		NotificationTime: d.ReceivedAt,
		Status:           d.Status,
	}
	if d.SubscriptionID != "" {
		entry.SubscriptionID = &d.SubscriptionID
	}
	if json.Valid(d.Raw) {
		entry.Data = datatypes.JSON(d.Raw)
	} else {
		raw, _ := json.Marshal(string(d.Raw))
		entry.Data = datatypes.JSON(raw)
	}
	if len(d.Result) > 0 {
		if raw, err := json.Marshal(d.Result); err == nil {
			result := datatypes.JSON(raw)
			entry.Result = &result
		}
	}
	s.Save(ctx, entry)
}

// Save asynchronously persists a payment notification log. Nil input is ignored.
func (s *Service) Save(ctx context.Context, log *models.PaymentNotificationLog) {
	go func() {
		if log == nil {
			return
		}
		if log.ID == "" {
			log.ID = tool.GenerateUUIDV7()
		}
		if err := s.db.Save(log).Error; err != nil {
			logctx.FromCtx(ctx, s.log).Errorf("failed to save notification log: %v", err)
		}
	}()
}

// ListByEventID returns every logged delivery of one gateway event, oldest first.
func (s *Service) ListByEventID(ctx context.Context, eventID string) ([]*models.PaymentNotificationLog, error) {
	var items []*models.PaymentNotificationLog
	if err := s.db.WithContext(ctx).Where("event_id = ?", eventID).Order("created_at").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

var Module = fx.Options(
	fx.Provide(New),
)

package statistics

import (
	"context"
	"fmt"
	"sync"

	"github.com/fatflowers/agrobill/internal/models"
	"github.com/fatflowers/agrobill/pkg/apperr"
	"github.com/fatflowers/agrobill/pkg/types"

	"github.com/samber/lo"
	"go.uber.org/fx"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type StatisticType string

const (
	// Ledger based
	StatisticTypeDailyPaymentCount StatisticType = "daily_payment_count"
	StatisticTypeDailyGmv          StatisticType = "daily_gmv"
	StatisticTypeTotalGmv          StatisticType = "total_gmv"

	// Subscription based
	StatisticTypeSubscriptionCountByStatus StatisticType = "subscription_count_by_status"
	StatisticTypeDailyNewSubscriptionCount StatisticType = "daily_new_subscription_count"
	StatisticTypeActiveSubscriptionCount   StatisticType = "active_subscription_count"
)

var (
	paymentFilterFields      = []string{"currency", "status", "method", "source", "user_id", "field_id", "created_at"}
	subscriptionFilterFields = []string{"plan_id", "billing_cycle", "unit", "currency", "status", "user_id", "field_id", "created_at"}
)

// filterFields lists the columns a statistic can be filtered on.
var filterFields = map[StatisticType][]string{
	StatisticTypeDailyPaymentCount:         paymentFilterFields,
	StatisticTypeDailyGmv:                  paymentFilterFields,
	StatisticTypeTotalGmv:                  paymentFilterFields,
	StatisticTypeSubscriptionCountByStatus: subscriptionFilterFields,
	StatisticTypeDailyNewSubscriptionCount: subscriptionFilterFields,
	StatisticTypeActiveSubscriptionCount:   lo.Without(subscriptionFilterFields, "status"),
}

type StatisticDataItem struct {
	ID StatisticType `json:"id"`
}

type StatisticRequest struct {
	Filters   []*types.CommonFilter `json:"filters"`
	DataItems []*StatisticDataItem  `json:"data_items"`
}

// applicable reports whether every filter can be applied to statisticType.
func (r *StatisticRequest) applicable(statisticType StatisticType) bool {
	return lo.EveryBy(r.Filters, func(f *types.CommonFilter) bool {
		return lo.Contains(filterFields[statisticType], f.Field)
	})
}

// scope adds the request filters to q.
func (r *StatisticRequest) scope(q *gorm.DB) *gorm.DB {
	if len(r.Filters) == 0 {
		return q
	}
	return q.Where(clause.Where{Exprs: lo.Map(r.Filters, func(f *types.CommonFilter, _ int) clause.Expression { return f })})
}

type StatisticResponseDataItem struct {
	Date  string `json:"date,omitempty"`
	Label string `json:"label,omitempty"`
	Value int64  `json:"value"`
}

type StatisticResponse struct {
	DataItems map[StatisticType][]StatisticResponseDataItem `json:"data_items"`
}

// Service answers the admin billing dashboard.
type Service struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Service { return &Service{db: db} }

// dateExpr renders the calendar day of created_at as YYYY-MM-DD.
func (s *Service) dateExpr() string {
	if s.db.Dialector.Name() == "postgres" {
		return "TO_CHAR(created_at, 'YYYY-MM-DD')"
	}
	return "DATE(created_at)"
}

func (s *Service) getDailyPaymentCount(ctx context.Context, request *StatisticRequest) ([]StatisticResponseDataItem, error) {
	var results []StatisticResponseDataItem
	date := s.dateExpr()
	q := s.db.WithContext(ctx).Table((models.Payment{}).TableName()).
		Select(date + " as date, count(*) as value").
		Scopes(request.scope).
		Group(date).
		Order("date")
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Service) getDailyGmv(ctx context.Context, request *StatisticRequest) ([]StatisticResponseDataItem, error) {
	var results []StatisticResponseDataItem
	date := s.dateExpr()
	q := s.db.WithContext(ctx).Table((models.Payment{}).TableName()).
		Select(date+" as date, currency as label, sum(amount_minor) as value").
		Where("status = ?", types.PaymentStatusCaptured).
		Scopes(request.scope).
		Group(date).
		Group("currency").
		Order(clause.OrderByColumn{Column: clause.Column{Name: "date"}, Desc: true}).
		Order("label")
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Service) getTotalGmv(ctx context.Context, request *StatisticRequest) ([]StatisticResponseDataItem, error) {
	var results []StatisticResponseDataItem
	q := s.db.WithContext(ctx).Table((models.Payment{}).TableName()).
		Select("currency as label, sum(amount_minor) as value").
		Where("status = ?", types.PaymentStatusCaptured).
		Scopes(request.scope).
		Group("currency").
		Order("label")
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Service) getSubscriptionCountByStatus(ctx context.Context, request *StatisticRequest) ([]StatisticResponseDataItem, error) {
	var results []StatisticResponseDataItem
	q := s.db.WithContext(ctx).Table((models.Subscription{}).TableName()).
		Select("status as label, count(*) as value").
		Scopes(request.scope).
		Group("status").
		Order("label")
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Service) getDailyNewSubscriptionCount(ctx context.Context, request *StatisticRequest) ([]StatisticResponseDataItem, error) {
	var results []StatisticResponseDataItem
	date := s.dateExpr()
	q := s.db.WithContext(ctx).Table((models.Subscription{}).TableName()).
		Select(date + " as date, count(*) as value").
		Scopes(request.scope).
		Group(date).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "date"}, Desc: true})
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Service) getActiveSubscriptionCount(ctx context.Context, request *StatisticRequest) ([]StatisticResponseDataItem, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Subscription{}).
		Where("status = ?", types.SubscriptionStatusActive).
		Scopes(request.scope).
		Count(&count).Error
	if err != nil {
		return nil, err
	}
	return []StatisticResponseDataItem{{Value: count}}, nil
}

func (s *Service) getStatistic(ctx context.Context, request *StatisticRequest, dataItem *StatisticDataItem) ([]StatisticResponseDataItem, error) {
	switch dataItem.ID {
	case StatisticTypeDailyPaymentCount:
		return s.getDailyPaymentCount(ctx, request)
	case StatisticTypeDailyGmv:
		return s.getDailyGmv(ctx, request)
	case StatisticTypeTotalGmv:
		return s.getTotalGmv(ctx, request)
	case StatisticTypeSubscriptionCountByStatus:
		return s.getSubscriptionCountByStatus(ctx, request)
	case StatisticTypeDailyNewSubscriptionCount:
		return s.getDailyNewSubscriptionCount(ctx, request)
	case StatisticTypeActiveSubscriptionCount:
		return s.getActiveSubscriptionCount(ctx, request)
	default:
		return nil, fmt.Errorf("invalid data item id: %s", dataItem.ID)
	}
}

// GetBillingStatistic computes every requested data item concurrently. A data item that
// cannot honour one of the filters yields a nil series instead of unfiltered numbers.
func (s *Service) GetBillingStatistic(ctx context.Context, request *StatisticRequest) (*StatisticResponse, error) {
	if request == nil || len(request.DataItems) == 0 {
		return nil, apperr.New(apperr.CodeValidation, "invalid request").
			WithDetails(map[string]string{"data_items": "at least one data item is required"})
	}
	details := map[string]string{}
	for _, item := range request.DataItems {
		if item == nil {
			details["data_items"] = "data item must not be null"
		} else if _, ok := filterFields[item.ID]; !ok {
			details["data_items"] = fmt.Sprintf("unsupported data item %q", item.ID)
		}
	}
	for i, f := range request.Filters {
		if f == nil {
			details[fmt.Sprintf("filters[%d]", i)] = "filter must not be null"
			continue
		}
		if err := f.Validate(lo.Union(paymentFilterFields, subscriptionFilterFields)); err != nil {
			details[f.Field] = err.Error()
		}
	}
	if len(details) > 0 {
		return nil, apperr.New(apperr.CodeValidation, "invalid request").WithDetails(details)
	}

	var mu sync.Mutex
	results := make(map[StatisticType][]StatisticResponseDataItem, len(request.DataItems))
	g, gctx := errgroup.WithContext(ctx)
	for _, item := range request.DataItems {
		g.Go(func() error {
			var res []StatisticResponseDataItem
			if request.applicable(item.ID) {
				var err error
				if res, err = s.getStatistic(gctx, request, item); err != nil {
					return fmt.Errorf("statistic %s: %w", item.ID, err)
				}
			}
			mu.Lock()
			results[item.ID] = res
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &StatisticResponse{DataItems: results}, nil
}

var Module = fx.Options(
	fx.Provide(New),
)

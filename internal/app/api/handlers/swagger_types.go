package handlers

import (
	"github.com/fatflowers/agrobill/internal/app/service/checkout"
	"github.com/fatflowers/agrobill/internal/app/service/statistics"
	subsvc "github.com/fatflowers/agrobill/internal/app/service/subscription"
	"github.com/fatflowers/agrobill/internal/models"
	"github.com/fatflowers/agrobill/pkg/response"
)

// RespOK is a generic envelope for endpoints returning no specific data, and for errors.
type RespOK struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    interface{}              `json:"data"`
}

type RespCreateSubscription struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    subsvc.CreateResult      `json:"data"`
}

type RespSubscription struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    models.Subscription      `json:"data"`
}

type RespSubscriptionList struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    []models.Subscription    `json:"data"`
}

type RespPaymentList struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    []models.Payment         `json:"data"`
}

type RespFieldSubscriptionStatus struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    FieldSubscriptionStatus  `json:"data"`
}

type RespVerifyCheckout struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    checkout.VerifyResult    `json:"data"`
}

type RespListSubscriptions struct {
	Code    response.APIResponseCode  `json:"code"`
	Message string                    `json:"message"`
	Data    ListSubscriptionsResponse `json:"data"`
}

type RespListPayments struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    ListPaymentsResponse     `json:"data"`
}

type RespBillingStatistic struct {
	Code    response.APIResponseCode     `json:"code"`
	Message string                       `json:"message"`
	Data    statistics.StatisticResponse `json:"data"`
}

type RespExpireDue struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    ExpireDueResponse        `json:"data"`
}

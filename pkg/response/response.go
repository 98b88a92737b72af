package response

import (
	"github.com/fatflowers/agrobill/pkg/apperr"
)

// New generic response spec
type APIResponseCode int

const (
	APIResponseCodeOK              APIResponseCode = 0
	APIResponseCodeBadRequest      APIResponseCode = 40000
	APIResponseCodeUnauthorized    APIResponseCode = 40100
	APIResponseCodeForbidden       APIResponseCode = 40300
	APIResponseCodeNotFound        APIResponseCode = 40400
	APIResponseCodeConflict        APIResponseCode = 40900
	APIResponseCodePricingNotFound APIResponseCode = 42200
	APIResponseCodeError           APIResponseCode = 50000
	APIResponseCodeGateway         APIResponseCode = 50200
)

var codeToMsg = map[APIResponseCode]string{
	APIResponseCodeOK:              "ok",
	APIResponseCodeBadRequest:      "validation failed",
	APIResponseCodeUnauthorized:    "authentication required",
	APIResponseCodeForbidden:       "access denied",
	APIResponseCodeNotFound:        "resource not found",
	APIResponseCodeConflict:        "subscription conflict",
	APIResponseCodePricingNotFound: "pricing not found",
	APIResponseCodeError:           "unexpected error",
	APIResponseCodeGateway:         "payment gateway request failed",
}

var appCodeToResponse = map[apperr.Code]APIResponseCode{
	apperr.CodeValidation:      APIResponseCodeBadRequest,
	apperr.CodeSignature:       APIResponseCodeBadRequest,
	apperr.CodeUnauthorized:    APIResponseCodeUnauthorized,
	apperr.CodeForbidden:       APIResponseCodeForbidden,
	apperr.CodeNotFound:        APIResponseCodeNotFound,
	apperr.CodeConflict:        APIResponseCodeConflict,
	apperr.CodePricingNotFound: APIResponseCodePricingNotFound,
	apperr.CodeGateway:         APIResponseCodeGateway,
	apperr.CodeInternal:        APIResponseCodeError,
}

// APIResponse is the generic response envelope used by HTTP APIs.
// Use OKT / ErrorT helpers to construct instances.
type APIResponse[T any] struct {
	Code    APIResponseCode `json:"code"`
	Message string          `json:"message"`
	Data    T               `json:"data"`
}

// OKT returns a successful response with data.
func OKT[T any](data T) *APIResponse[T] {
	return &APIResponse[T]{Code: APIResponseCodeOK, Message: codeToMsg[APIResponseCodeOK], Data: data}
}

// ErrorT returns an error response with message and optional data.
func ErrorT[T any](code APIResponseCode, data T) *APIResponse[T] {
	return &APIResponse[T]{Code: code, Message: codeToMsg[code], Data: data}
}

// FromError builds the envelope for err along with the HTTP status to send it with.
// Messages of coded errors are returned; anything else is reported as a generic failure.
func FromError(err error) (int, *APIResponse[any]) {
	code := apperr.CodeOf(err)
	md := apperr.MetadataFor(code)
	resp := ErrorT[any](appCodeToResponse[code], nil)
	if e := apperr.As(err); e != nil && code != apperr.CodeSignature && code != apperr.CodeInternal && code != apperr.CodeGateway {
		resp.Message = e.Message()
		resp.Data = e.Details()
	}
	return md.HTTPStatus, resp
}

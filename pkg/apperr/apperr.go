// Package apperr defines the coded errors surfaced by the billing core and how
// each code maps onto an HTTP status and a public message.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Code string

const (
	CodeValidation      Code = "VALIDATION_ERROR"
	CodePricingNotFound Code = "PRICING_NOT_FOUND"
	CodeConflict        Code = "CONFLICT"
	CodeSignature       Code = "SIGNATURE_ERROR"
	CodeGateway         Code = "GATEWAY_ERROR"
	CodeNotFound        Code = "NOT_FOUND"
	CodeUnauthorized    Code = "UNAUTHORIZED"
	CodeForbidden       Code = "FORBIDDEN"
	CodeInternal        Code = "INTERNAL_ERROR"
)

type Metadata struct {
	HTTPStatus     int
	PublicMessage  string
	DetailsAllowed bool
}

var metadataByCode = map[Code]Metadata{
	CodeValidation:      {HTTPStatus: http.StatusBadRequest, PublicMessage: "validation failed", DetailsAllowed: true},
	CodePricingNotFound: {HTTPStatus: http.StatusUnprocessableEntity, PublicMessage: "pricing not found", DetailsAllowed: true},
	CodeConflict:        {HTTPStatus: http.StatusConflict, PublicMessage: "subscription conflict", DetailsAllowed: true},
	// signature failures never carry details
	CodeSignature:    {HTTPStatus: http.StatusBadRequest, PublicMessage: "invalid signature"},
	CodeGateway:      {HTTPStatus: http.StatusBadGateway, PublicMessage: "payment gateway request failed"},
	CodeNotFound:     {HTTPStatus: http.StatusNotFound, PublicMessage: "resource not found"},
	CodeUnauthorized: {HTTPStatus: http.StatusUnauthorized, PublicMessage: "authentication required"},
	CodeForbidden:    {HTTPStatus: http.StatusForbidden, PublicMessage: "access denied"},
	CodeInternal:     {HTTPStatus: http.StatusInternalServerError, PublicMessage: "internal error"},
}

// MetadataFor returns the metadata for code, falling back to CodeInternal.
func MetadataFor(code Code) Metadata {
	if md, ok := metadataByCode[code]; ok {
		return md
	}
	return metadataByCode[CodeInternal]
}

type Error struct {
	code    Code
	message string
	details any
	err     error
}

func New(code Code, message string) *Error {
	return &Error{code: code, message: message}
}

func Newf(code Code, format string, args ...any) *Error {
	return &Error{code: code, message: fmt.Sprintf(format, args...)}
}

func Wrap(code Code, err error, message string) *Error {
	return &Error{code: code, message: message, err: err}
}

func (e *Error) WithDetails(details any) *Error {
	e.details = details
	return e
}

func (e *Error) Code() Code { return e.code }

func (e *Error) Message() string { return e.message }

// Details returns the machine-readable details, or nil when the code does not allow them.
func (e *Error) Details() any {
	if !MetadataFor(e.code).DetailsAllowed {
		return nil
	}
	return e.details
}

func (e *Error) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.message, e.err)
	}
	return e.message
}

func (e *Error) Unwrap() error { return e.err }

// Is matches another *Error by code so callers can use errors.Is(err, apperr.New(code, "")).
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.code == e.code
}

// As returns the first *Error in err's chain, or nil.
func As(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return nil
}

// CodeOf returns the code carried by err, or CodeInternal.
func CodeOf(err error) Code {
	if e := As(err); e != nil {
		return e.code
	}
	return CodeInternal
}

// IsCode reports whether err carries code.
func IsCode(err error, code Code) bool {
	return err != nil && CodeOf(err) == code
}

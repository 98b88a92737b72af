package response

import (
	"errors"
	"net/http"
	"testing"

	"github.com/fatflowers/agrobill/pkg/apperr"
	"github.com/stretchr/testify/require"
)

func TestFromError_ConflictCarriesDetails(t *testing.T) {
	err := apperr.New(apperr.CodeConflict, "field already has an active subscription").
		WithDetails(map[string]string{"existing_subscription_id": "sub-1"})

	status, resp := FromError(err)
	require.Equal(t, http.StatusConflict, status)
	require.Equal(t, APIResponseCodeConflict, resp.Code)
	require.Equal(t, "field already has an active subscription", resp.Message)
	require.Equal(t, map[string]string{"existing_subscription_id": "sub-1"}, resp.Data)
}

func TestFromError_SignatureHidesReason(t *testing.T) {
	status, resp := FromError(apperr.New(apperr.CodeSignature, "hmac mismatch on order_1"))
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, "validation failed", resp.Message)
	require.Nil(t, resp.Data)
}

func TestFromError_UncodedIsGeneric(t *testing.T) {
	status, resp := FromError(errors.New("pq: connection refused"))
	require.Equal(t, http.StatusInternalServerError, status)
	require.Equal(t, APIResponseCodeError, resp.Code)
	require.Equal(t, "unexpected error", resp.Message)
}

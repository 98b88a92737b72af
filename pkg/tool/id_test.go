package tool

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestGenerateUUIDV7_Version(t *testing.T) {
	id, err := uuid.Parse(GenerateUUIDV7())
	require.NoError(t, err)
	require.Equal(t, uuid.Version(7), id.Version())
}

func TestReceipt_TruncatesToGatewayLimit(t *testing.T) {
	r := Receipt("sub", "0192f1e4-7c1a-7b7e-9f3a-3c2d1e0f9a8b")
	require.LessOrEqual(t, len(r), 40)
	require.Equal(t, "sub_0192f1e47c1a7b7e9f3a3c2d1e0f9a8b", r)

	long := Receipt("season-order", "0192f1e4-7c1a-7b7e-9f3a-3c2d1e0f9a8b")
	require.Len(t, long, 40)
}

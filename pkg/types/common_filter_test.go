package types

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCommonFilterValidate(t *testing.T) {
	allowed := []string{"status", "created_at"}

	require.NoError(t, (&CommonFilter{Field: "status", Operator: CommonFilterOperatorEq, Values: []any{"active"}}).Validate(allowed))
	require.NoError(t, (&CommonFilter{Field: "created_at", Operator: CommonFilterOperatorRange, Values: []any{"2026-01-01", "2026-02-01"}}).Validate(allowed))

	require.Error(t, (&CommonFilter{Field: "notes->>'x'", Operator: CommonFilterOperatorEq, Values: []any{"1"}}).Validate(allowed))
	require.Error(t, (&CommonFilter{Field: "status", Operator: CommonFilterOperatorEq}).Validate(allowed))
	require.Error(t, (&CommonFilter{Field: "created_at", Operator: CommonFilterOperatorRange, Values: []any{"2026-01-01"}}).Validate(allowed))
	require.Error(t, (&CommonFilter{Field: "status", Operator: "like", Values: []any{"a%"}}).Validate(allowed))
}

func TestExpressions(t *testing.T) {
	exprs, err := Expressions([]*CommonFilter{
		{Field: "status", Operator: CommonFilterOperatorIn, Values: []any{"active", "paused"}},
	}, []string{"status"})
	require.NoError(t, err)
	require.Len(t, exprs, 1)

	_, err = Expressions([]*CommonFilter{{Field: "password", Operator: CommonFilterOperatorEq, Values: []any{"x"}}}, []string{"status"})
	require.Error(t, err)
}

func TestPaginationNormalize(t *testing.T) {
	offset, limit := Pagination{}.Normalize()
	require.Equal(t, 0, offset)
	require.Equal(t, 20, limit)

	offset, limit = Pagination{Page: 3, PageSize: 50}.Normalize()
	require.Equal(t, 100, offset)
	require.Equal(t, 50, limit)

	_, limit = Pagination{PageSize: 10000}.Normalize()
	require.Equal(t, 200, limit)
}

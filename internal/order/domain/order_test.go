package domain_test

import (
	"testing"

	"github.com/Vishal-21-lang/supplychain-inventory-orchestrator/internal/order/domain"
	"github.com/stretchr/testify/require"
)

func TestBatchIDsRoundTrip(t *testing.T) {
	formatted := domain.FormatBatchIDs([]int64{9, 10, 3})
	require.Equal(t, "9,10,3", formatted)

	order := domain.Order{ReservedBatchIDs: formatted}
	require.Equal(t, []int64{9, 10, 3}, order.BatchIDs())
}

func TestBatchIDsEmpty(t *testing.T) {
	order := domain.Order{ReservedBatchIDs: ""}
	require.Nil(t, order.BatchIDs())

	require.Equal(t, "", domain.FormatBatchIDs(nil))
}

func TestBatchIDsSkipsGarbage(t *testing.T) {
	order := domain.Order{ReservedBatchIDs: "9, x ,10"}
	require.Equal(t, []int64{9, 10}, order.BatchIDs())
}

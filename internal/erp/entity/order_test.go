package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderNumberPrefix(t *testing.T) {
	day := time.Date(2024, 3, 7, 15, 4, 5, 0, time.UTC)
	assert.Equal(t, "PO20240307", OrderNumberPrefix(PurchaseOrderPrefix, day))
	assert.Equal(t, "SO20240307", OrderNumberPrefix(SalesOrderPrefix, day))
}

func TestNextOrderNumber(t *testing.T) {
	first, err := NextOrderNumber("PO20240307", "")
	require.NoError(t, err)
	assert.Equal(t, "PO202403070001", first)

	next, err := NextOrderNumber("PO20240307", "PO202403070041")
	require.NoError(t, err)
	assert.Equal(t, "PO202403070042", next)

	_, err = NextOrderNumber("PO20240307", "PO202403079999")
	assert.ErrorIs(t, err, ErrOrderSeqExhausted)

	_, err = NextOrderNumber("PO20240307", "SO202403070001")
	assert.Error(t, err)
}

func TestParseOrderSeq(t *testing.T) {
	seq, err := ParseOrderSeq("SO20240101", "SO202401010123")
	require.NoError(t, err)
	assert.Equal(t, 123, seq)

	_, err = ParseOrderSeq("SO20240101", "SO2024010101")
	assert.Error(t, err)
	_, err = ParseOrderSeq("SO20240101", "SO20240101abcd")
	assert.Error(t, err)
}

func TestFulfilmentStatus(t *testing.T) {
	cases := []struct {
		name      string
		ordered   []int
		fulfilled []int
		want      string
	}{
		{"nothing yet", []int{5, 3}, []int{0, 0}, OrderStatusPartial},
		{"one line done", []int{5, 3}, []int{5, 0}, OrderStatusPartial},
		{"all done", []int{5, 3}, []int{5, 3}, OrderStatusCompleted},
		{"single line partial", []int{10}, []int{4}, OrderStatusPartial},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, FulfilmentStatus(tc.ordered, tc.fulfilled))
		})
	}
}

func TestOrderDeriveStatus(t *testing.T) {
	po := &PurchaseOrder{Items: []PurchaseOrderItem{
		{Quantity: 10, ReceivedQuantity: 10},
		{Quantity: 5, ReceivedQuantity: 2},
	}}
	assert.Equal(t, OrderStatusPartial, po.DeriveStatus())
	po.Items[1].ReceivedQuantity = 5
	assert.Equal(t, OrderStatusCompleted, po.DeriveStatus())
	assert.Equal(t, 0, po.Items[1].Remaining())

	so := &SalesOrder{Items: []SalesOrderItem{{Quantity: 2, DeliveredQuantity: 1}}}
	assert.Equal(t, OrderStatusPartial, so.DeriveStatus())
	assert.Equal(t, 1, so.Items[0].Remaining())
}

func TestTransitionGuards(t *testing.T) {
	assert.True(t, CanFulfil(OrderStatusPending))
	assert.True(t, CanFulfil(OrderStatusPartial))
	assert.False(t, CanFulfil(OrderStatusCompleted))
	assert.False(t, CanFulfil(OrderStatusCancelled))

	assert.True(t, CanCancel(OrderStatusPending))
	assert.False(t, CanCancel(OrderStatusPartial))
	assert.False(t, CanCancel(OrderStatusCompleted))
	assert.False(t, CanCancel(OrderStatusCancelled))
}

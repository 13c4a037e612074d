package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInventoryRecordConsistent(t *testing.T) {
	assert.True(t, (&InventoryRecord{Quantity: 10, AvailableQuantity: 4}).Consistent())
	assert.True(t, (&InventoryRecord{}).Consistent())
	assert.False(t, (&InventoryRecord{Quantity: 3, AvailableQuantity: 4}).Consistent())
	assert.False(t, (&InventoryRecord{Quantity: 3, AvailableQuantity: -1}).Consistent())

	rec := &InventoryRecord{Quantity: 10, AvailableQuantity: 4, MinStockLevel: 5}
	assert.Equal(t, 6, rec.Reserved())
	assert.True(t, rec.LowStock())
}

func TestInventoryTransactionSignedQuantity(t *testing.T) {
	assert.Equal(t, 5, (&InventoryTransaction{Direction: DirectionIn, Quantity: 5}).SignedQuantity())
	assert.Equal(t, -5, (&InventoryTransaction{Direction: DirectionOut, Quantity: 5}).SignedQuantity())
}

func TestInventoryTransactionImmutable(t *testing.T) {
	tx := &InventoryTransaction{}
	assert.ErrorIs(t, tx.BeforeUpdate(nil), ErrLedgerImmutable)
	assert.ErrorIs(t, tx.BeforeDelete(nil), ErrLedgerImmutable)
}

func TestPhoneModelDisplayName(t *testing.T) {
	m := &PhoneModel{ModelName: "iPhone 15"}
	assert.Equal(t, "iPhone 15", m.DisplayName())
	m.Brand = &Brand{Name: "Apple"}
	assert.Equal(t, "Apple iPhone 15", m.DisplayName())
}

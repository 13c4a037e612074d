package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/newNamejj/mobile-inventory-system/internal/erp/entity"
	"github.com/newNamejj/mobile-inventory-system/internal/erp/repository"
)

// Accessor 库存数量的唯一修改入口
// 所有方法都在调用方的事务内执行，每次修改后复核 0 <= available <= quantity
type Accessor struct{}

// Reserve 预留库存: available -= qty
func (a *Accessor) Reserve(ctx context.Context, tx *repository.Repositories, modelID string, qty int) error {
	if qty <= 0 {
		return Invalid("reserve quantity must be positive")
	}
	ok, err := tx.Inventory.Reserve(ctx, modelID, qty)
	if err != nil {
		return fmt.Errorf("reserve stock: %w", err)
	}
	if !ok {
		return a.insufficient(ctx, tx, modelID, qty)
	}
	return a.verify(ctx, tx, modelID)
}

// Release 释放预留: available += qty
func (a *Accessor) Release(ctx context.Context, tx *repository.Repositories, modelID string, qty int) error {
	if qty <= 0 {
		return Invalid("release quantity must be positive")
	}
	ok, err := tx.Inventory.Release(ctx, modelID, qty)
	if err != nil {
		return fmt.Errorf("release stock: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: releasing %d of model %s exceeds reserved quantity", ErrInvariantViolation, qty, modelID)
	}
	return a.verify(ctx, tx, modelID)
}

// Receive 入库: quantity += qty, available += qty
func (a *Accessor) Receive(ctx context.Context, tx *repository.Repositories, modelID string, qty int) error {
	if qty <= 0 {
		return Invalid("receive quantity must be positive")
	}
	if err := tx.Inventory.Receive(ctx, modelID, qty); err != nil {
		return fmt.Errorf("receive stock: %w", err)
	}
	return a.verify(ctx, tx, modelID)
}

// Ship 未预留出库: quantity -= qty, available -= qty
func (a *Accessor) Ship(ctx context.Context, tx *repository.Repositories, modelID string, qty int) error {
	if qty <= 0 {
		return Invalid("ship quantity must be positive")
	}
	ok, err := tx.Inventory.Ship(ctx, modelID, qty)
	if err != nil {
		return fmt.Errorf("ship stock: %w", err)
	}
	if !ok {
		return a.insufficient(ctx, tx, modelID, qty)
	}
	return a.verify(ctx, tx, modelID)
}

// ShipReserved 已预留出库: quantity -= qty，available 在预留时已扣减
func (a *Accessor) ShipReserved(ctx context.Context, tx *repository.Repositories, modelID string, qty int) error {
	if qty <= 0 {
		return Invalid("ship quantity must be positive")
	}
	ok, err := tx.Inventory.ShipReserved(ctx, modelID, qty)
	if err != nil {
		return fmt.Errorf("ship reserved stock: %w", err)
	}
	if !ok {
		rec, err := tx.Inventory.FindByModelID(ctx, modelID)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return err
		}
		reserved := 0
		if rec != nil {
			reserved = rec.Reserved()
		}
		return &InsufficientStockError{ModelID: modelID, Available: reserved, Requested: qty}
	}
	return a.verify(ctx, tx, modelID)
}

// Adjust 盘点调整到 newQty，保持预留量不变
// 返回调整后的记录和数量差（正为盘盈，负为盘亏）
func (a *Accessor) Adjust(ctx context.Context, tx *repository.Repositories, inventoryID string, newQty int) (*entity.InventoryRecord, int, error) {
	if newQty < 0 {
		return nil, 0, Invalid("quantity must not be negative")
	}
	rec, err := tx.Inventory.FindByIDForUpdate(ctx, inventoryID)
	if err != nil {
		return nil, 0, missing(err, "inventory", inventoryID)
	}
	reserved := rec.Reserved()
	if newQty < reserved {
		return nil, 0, &InsufficientStockError{ModelID: rec.ModelID, Available: reserved, Requested: newQty}
	}
	delta := newQty - rec.Quantity
	if delta == 0 {
		return rec, 0, nil
	}
	if err := tx.Inventory.SetLevels(ctx, rec.ID, newQty, newQty-reserved); err != nil {
		return nil, 0, fmt.Errorf("adjust stock: %w", err)
	}
	if err := a.verify(ctx, tx, rec.ModelID); err != nil {
		return nil, 0, err
	}
	rec.Quantity = newQty
	rec.AvailableQuantity = newQty - reserved
	return rec, delta, nil
}

func (a *Accessor) insufficient(ctx context.Context, tx *repository.Repositories, modelID string, qty int) error {
	rec, err := tx.Inventory.FindByModelID(ctx, modelID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return err
	}
	available := 0
	if rec != nil {
		available = rec.AvailableQuantity
	}
	return &InsufficientStockError{ModelID: modelID, Available: available, Requested: qty}
}

// verify 复核库存不变量
func (a *Accessor) verify(ctx context.Context, tx *repository.Repositories, modelID string) error {
	rec, err := tx.Inventory.FindByModelID(ctx, modelID)
	if err != nil {
		return fmt.Errorf("verify stock: %w", err)
	}
	if !rec.Consistent() {
		return fmt.Errorf("%w: model %s quantity=%d available=%d",
			ErrInvariantViolation, modelID, rec.Quantity, rec.AvailableQuantity)
	}
	return nil
}

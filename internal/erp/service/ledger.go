package service

import (
	"context"
	"fmt"
	"time"

	"github.com/newNamejj/mobile-inventory-system/internal/erp/entity"
	"github.com/newNamejj/mobile-inventory-system/internal/erp/repository"
)

// Movement 一次库存变动
type Movement struct {
	ModelID      string
	Direction    string
	Quantity     int
	RelatedTable string
	RelatedID    string
	Actor        string
	Remarks      string
}

// Recorder 库存流水记录器，只追加
type Recorder struct{}

// Record 在调用方事务内写入一条流水
func (r *Recorder) Record(ctx context.Context, tx *repository.Repositories, m Movement) error {
	if m.Quantity <= 0 {
		return Invalid("movement quantity must be positive")
	}
	if m.Direction != entity.DirectionIn && m.Direction != entity.DirectionOut {
		return Invalid("movement direction must be in or out")
	}
	row := &entity.InventoryTransaction{
		ID:           entity.NewID(),
		ModelID:      m.ModelID,
		Direction:    m.Direction,
		Quantity:     m.Quantity,
		RelatedTable: m.RelatedTable,
		RelatedID:    m.RelatedID,
		Remarks:      m.Remarks,
		CreatedBy:    m.Actor,
		CreatedAt:    time.Now(),
	}
	if err := tx.Ledger.Append(ctx, row); err != nil {
		return fmt.Errorf("record inventory transaction: %w", err)
	}
	return nil
}

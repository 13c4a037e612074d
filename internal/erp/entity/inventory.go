package entity

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

// 库存流水方向
const (
	DirectionIn  = "in"
	DirectionOut = "out"
)

// 流水来源表
const (
	RelatedPurchaseOrder = "purchase_orders"
	RelatedSalesOrder    = "sales_orders"
	RelatedManual        = "manual"
	RelatedAdjustment    = "adjustment"
)

// ErrLedgerImmutable 库存流水只允许追加
var ErrLedgerImmutable = errors.New("inventory transactions are append-only")

// InventoryRecord 库存记录，每个机型一条
// 约束: 0 <= available_quantity <= quantity
type InventoryRecord struct {
	ID                string    `json:"id" gorm:"primaryKey;size:36"`
	ModelID           string    `json:"model_id" gorm:"size:36;not null;uniqueIndex"`
	Quantity          int       `json:"quantity" gorm:"not null;default:0;check:chk_inventory_quantity,quantity >= 0"`
	AvailableQuantity int       `json:"available_quantity" gorm:"not null;default:0;check:chk_inventory_available,available_quantity >= 0 AND available_quantity <= quantity"`
	MinStockLevel     int       `json:"min_stock_level" gorm:"not null;default:0"`
	Location          string    `json:"location" gorm:"size:100"`
	LastUpdated       time.Time `json:"last_updated"`
	CreatedAt         time.Time `json:"created_at"`

	Model *PhoneModel `json:"model,omitempty" gorm:"foreignKey:ModelID"`
}

func (InventoryRecord) TableName() string {
	return "erp_inventory"
}

// Reserved 已被销售单预留的数量
func (r *InventoryRecord) Reserved() int {
	return r.Quantity - r.AvailableQuantity
}

// Consistent 校验 0 <= available <= quantity
func (r *InventoryRecord) Consistent() bool {
	return r.AvailableQuantity >= 0 && r.AvailableQuantity <= r.Quantity
}

// LowStock 可用库存低于预警线
func (r *InventoryRecord) LowStock() bool {
	return r.AvailableQuantity <= r.MinStockLevel
}

// InventoryTransaction 库存流水，只增不改
type InventoryTransaction struct {
	ID           string    `json:"id" gorm:"primaryKey;size:36"`
	ModelID      string    `json:"model_id" gorm:"size:36;not null;index"`
	Direction    string    `json:"transaction_type" gorm:"size:10;not null;check:chk_inventory_tx_direction,direction IN ('in','out')"`
	Quantity     int       `json:"quantity" gorm:"not null;check:chk_inventory_tx_quantity,quantity > 0"`
	RelatedTable string    `json:"related_table" gorm:"size:50;index:idx_inventory_tx_related"`
	RelatedID    string    `json:"related_id" gorm:"size:36;index:idx_inventory_tx_related"`
	Remarks      string    `json:"remarks" gorm:"type:text"`
	CreatedBy    string    `json:"created_by" gorm:"size:64"`
	CreatedAt    time.Time `json:"created_at" gorm:"index"`

	Model *PhoneModel `json:"model,omitempty" gorm:"foreignKey:ModelID"`
}

func (InventoryTransaction) TableName() string {
	return "erp_inventory_transactions"
}

// SignedQuantity 入库为正，出库为负
func (t *InventoryTransaction) SignedQuantity() int {
	if t.Direction == DirectionOut {
		return -t.Quantity
	}
	return t.Quantity
}

// BeforeUpdate 拒绝修改流水
func (t *InventoryTransaction) BeforeUpdate(tx *gorm.DB) error {
	return ErrLedgerImmutable
}

// BeforeDelete 拒绝删除流水
func (t *InventoryTransaction) BeforeDelete(tx *gorm.DB) error {
	return ErrLedgerImmutable
}

package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// PurchaseOrder 采购订单
type PurchaseOrder struct {
	ID          string          `json:"id" gorm:"primaryKey;size:36"`
	OrderNumber string          `json:"order_number" gorm:"size:20;not null;uniqueIndex"`
	SupplierID  string          `json:"supplier_id" gorm:"size:36;not null;index"`
	TotalAmount decimal.Decimal `json:"total_amount" gorm:"type:decimal(12,2);not null"`
	Status      string          `json:"status" gorm:"size:20;not null;default:pending;index"`
	Remarks     string          `json:"remarks" gorm:"type:text"`
	CreatedBy   string          `json:"created_by" gorm:"size:64"`
	CompletedAt *time.Time      `json:"completed_at"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`

	Supplier *Supplier           `json:"supplier,omitempty" gorm:"foreignKey:SupplierID"`
	Items    []PurchaseOrderItem `json:"items,omitempty" gorm:"foreignKey:PurchaseOrderID"`
}

func (PurchaseOrder) TableName() string {
	return "erp_purchase_orders"
}

// DeriveStatus 按明细收货进度推导状态
func (o *PurchaseOrder) DeriveStatus() string {
	ordered := make([]int, len(o.Items))
	received := make([]int, len(o.Items))
	for i, item := range o.Items {
		ordered[i] = item.Quantity
		received[i] = item.ReceivedQuantity
	}
	return FulfilmentStatus(ordered, received)
}

// PurchaseOrderItem 采购明细
type PurchaseOrderItem struct {
	ID               string          `json:"id" gorm:"primaryKey;size:36"`
	PurchaseOrderID  string          `json:"purchase_order_id" gorm:"size:36;not null;index"`
	LineNo           int             `json:"line_no" gorm:"not null;default:0"`
	ModelID          string          `json:"model_id" gorm:"size:36;not null;index"`
	Quantity         int             `json:"quantity" gorm:"not null;check:chk_po_item_quantity,quantity > 0"`
	UnitPrice        decimal.Decimal `json:"unit_price" gorm:"type:decimal(12,2);not null"`
	TotalPrice       decimal.Decimal `json:"total_price" gorm:"type:decimal(12,2);not null"`
	ReceivedQuantity int             `json:"received_quantity" gorm:"not null;default:0;check:chk_po_item_received,received_quantity >= 0 AND received_quantity <= quantity"`

	Model *PhoneModel `json:"model,omitempty" gorm:"foreignKey:ModelID"`
}

func (PurchaseOrderItem) TableName() string {
	return "erp_purchase_order_items"
}

// Remaining 尚未收货的数量
func (i *PurchaseOrderItem) Remaining() int {
	return i.Quantity - i.ReceivedQuantity
}

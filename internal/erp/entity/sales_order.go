package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// SalesOrder 销售订单
// FinalAmount = TotalAmount - Discount
type SalesOrder struct {
	ID            string          `json:"id" gorm:"primaryKey;size:36"`
	OrderNumber   string          `json:"order_number" gorm:"size:20;not null;uniqueIndex"`
	CustomerID    string          `json:"customer_id" gorm:"size:36;not null;index"`
	TotalAmount   decimal.Decimal `json:"total_amount" gorm:"type:decimal(12,2);not null"`
	Discount      decimal.Decimal `json:"discount" gorm:"type:decimal(12,2);not null;default:0"`
	FinalAmount   decimal.Decimal `json:"final_amount" gorm:"type:decimal(12,2);not null"`
	Status        string          `json:"status" gorm:"size:20;not null;default:pending;index"`
	PaymentStatus string          `json:"payment_status" gorm:"size:20;not null;default:unpaid"`
	Remarks       string          `json:"remarks" gorm:"type:text"`
	CreatedBy     string          `json:"created_by" gorm:"size:64"`
	CompletedAt   *time.Time      `json:"completed_at"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`

	Customer *Customer        `json:"customer,omitempty" gorm:"foreignKey:CustomerID"`
	Items    []SalesOrderItem `json:"items,omitempty" gorm:"foreignKey:SalesOrderID"`
}

func (SalesOrder) TableName() string {
	return "erp_sales_orders"
}

// DeriveStatus 按明细发货进度推导状态
func (o *SalesOrder) DeriveStatus() string {
	ordered := make([]int, len(o.Items))
	delivered := make([]int, len(o.Items))
	for i, item := range o.Items {
		ordered[i] = item.Quantity
		delivered[i] = item.DeliveredQuantity
	}
	return FulfilmentStatus(ordered, delivered)
}

// SalesOrderItem 销售明细
type SalesOrderItem struct {
	ID                string          `json:"id" gorm:"primaryKey;size:36"`
	SalesOrderID      string          `json:"sales_order_id" gorm:"size:36;not null;index"`
	LineNo            int             `json:"line_no" gorm:"not null;default:0"`
	ModelID           string          `json:"model_id" gorm:"size:36;not null;index"`
	Quantity          int             `json:"quantity" gorm:"not null;check:chk_so_item_quantity,quantity > 0"`
	UnitPrice         decimal.Decimal `json:"unit_price" gorm:"type:decimal(12,2);not null"`
	TotalPrice        decimal.Decimal `json:"total_price" gorm:"type:decimal(12,2);not null"`
	DeliveredQuantity int             `json:"delivered_quantity" gorm:"not null;default:0;check:chk_so_item_delivered,delivered_quantity >= 0 AND delivered_quantity <= quantity"`

	Model *PhoneModel `json:"model,omitempty" gorm:"foreignKey:ModelID"`
}

func (SalesOrderItem) TableName() string {
	return "erp_sales_order_items"
}

// Remaining 尚未发货的数量
func (i *SalesOrderItem) Remaining() int {
	return i.Quantity - i.DeliveredQuantity
}

package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// 返利类型
const (
	RebateTypeSales    = "sales"
	RebateTypePurchase = "purchase"
)

// 返利状态
const (
	RebateStatusPending   = "pending"
	RebateStatusConfirmed = "confirmed"
	RebateStatusRedeemed  = "redeemed"
	RebateStatusCancelled = "cancelled"
)

// Rebate 返利
// 销售返利关联客户，采购返利关联供应商
type Rebate struct {
	ID           string          `json:"id" gorm:"primaryKey;size:36"`
	RebateType   string          `json:"rebate_type" gorm:"size:20;not null;index"`
	RelatedTable string          `json:"related_table" gorm:"size:50"`
	RelatedID    string          `json:"related_id" gorm:"size:36"`
	CustomerID   *string         `json:"customer_id" gorm:"size:36;index"`
	SupplierID   *string         `json:"supplier_id" gorm:"size:36;index"`
	Amount       decimal.Decimal `json:"amount" gorm:"type:decimal(12,2);not null"`
	Status       string          `json:"status" gorm:"size:20;not null;default:pending;index"`
	ExpiryDate   *time.Time      `json:"expiry_date"`
	Remarks      string          `json:"remarks" gorm:"type:text"`
	CreatedBy    string          `json:"created_by" gorm:"size:64"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`

	Customer *Customer `json:"customer,omitempty" gorm:"foreignKey:CustomerID"`
	Supplier *Supplier `json:"supplier,omitempty" gorm:"foreignKey:SupplierID"`
}

func (Rebate) TableName() string {
	return "erp_rebates"
}

// Redeemable 待确认或已确认且未过期的返利计入可用余额
func (r *Rebate) Redeemable(today time.Time) bool {
	if r.Status != RebateStatusPending && r.Status != RebateStatusConfirmed {
		return false
	}
	if r.ExpiryDate == nil {
		return true
	}
	y, m, d := today.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, today.Location())
	return !r.ExpiryDate.Before(start)
}

// RebateBalance 返利余额
type RebateBalance struct {
	TotalRebate decimal.Decimal `json:"total_rebate"`
	TotalCount  int64           `json:"total_count"`
}

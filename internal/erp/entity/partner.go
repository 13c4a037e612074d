package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Supplier 供应商
// Balance 为未结清应付总额
type Supplier struct {
	ID            string          `json:"id" gorm:"primaryKey;size:36"`
	Name          string          `json:"name" gorm:"size:200;not null"`
	ContactPerson string          `json:"contact_person" gorm:"size:100"`
	Phone         string          `json:"phone" gorm:"size:50"`
	Email         string          `json:"email" gorm:"size:100"`
	Address       string          `json:"address" gorm:"type:text"`
	CreditLimit   decimal.Decimal `json:"credit_limit" gorm:"type:decimal(12,2);not null;default:0"`
	Balance       decimal.Decimal `json:"balance" gorm:"type:decimal(12,2);not null;default:0"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

func (Supplier) TableName() string {
	return "erp_suppliers"
}

// Customer 客户
// Balance 为未结清应收总额
type Customer struct {
	ID            string          `json:"id" gorm:"primaryKey;size:36"`
	Name          string          `json:"name" gorm:"size:200;not null"`
	ContactPerson string          `json:"contact_person" gorm:"size:100"`
	Phone         string          `json:"phone" gorm:"size:50"`
	Email         string          `json:"email" gorm:"size:100"`
	Address       string          `json:"address" gorm:"type:text"`
	CreditLimit   decimal.Decimal `json:"credit_limit" gorm:"type:decimal(12,2);not null;default:0"`
	Balance       decimal.Decimal `json:"balance" gorm:"type:decimal(12,2);not null;default:0"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

func (Customer) TableName() string {
	return "erp_customers"
}

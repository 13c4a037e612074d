package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Brand 品牌
type Brand struct {
	ID          string    `json:"id" gorm:"primaryKey;size:36"`
	Name        string    `json:"name" gorm:"size:100;not null;uniqueIndex"`
	Description string    `json:"description" gorm:"type:text"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Brand) TableName() string {
	return "erp_brands"
}

// PhoneModel 机型（SKU）
type PhoneModel struct {
	ID             string              `json:"id" gorm:"primaryKey;size:36"`
	BrandID        string              `json:"brand_id" gorm:"size:36;not null;index"`
	ModelName      string              `json:"model_name" gorm:"size:100;not null"`
	Specifications string              `json:"specifications" gorm:"type:text"`
	PurchasePrice  decimal.Decimal     `json:"purchase_price" gorm:"type:decimal(12,2);not null"`
	RetailPrice    decimal.Decimal     `json:"retail_price" gorm:"type:decimal(12,2);not null"`
	WholesalePrice decimal.NullDecimal `json:"wholesale_price" gorm:"type:decimal(12,2)"`
	IMEIRequired   bool                `json:"imei_required" gorm:"default:true"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`

	Brand *Brand `json:"brand,omitempty" gorm:"foreignKey:BrandID"`
}

func (PhoneModel) TableName() string {
	return "erp_models"
}

// DisplayName 品牌 + 型号
func (m *PhoneModel) DisplayName() string {
	if m.Brand != nil && m.Brand.Name != "" {
		return m.Brand.Name + " " + m.ModelName
	}
	return m.ModelName
}

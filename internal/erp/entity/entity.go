package entity

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NewID 生成实体主键
func NewID() string {
	return uuid.New().String()
}

// AutoMigrate 自动迁移所有ERP表
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		// 基础数据
		&Brand{},
		&PhoneModel{},
		&Supplier{},
		&Customer{},

		// 库存
		&InventoryRecord{},
		&InventoryTransaction{},

		// 采购
		&PurchaseOrder{},
		&PurchaseOrderItem{},

		// 销售
		&SalesOrder{},
		&SalesOrderItem{},

		// 财务
		&Receivable{},
		&Payable{},
		&PaymentRecord{},
		&ProfitRecord{},
		&Rebate{},
	)
}

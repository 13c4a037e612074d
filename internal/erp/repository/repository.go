package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrNotFound = errors.New("record not found")
)

// forUpdate 行级写锁
var forUpdate = clause.Locking{Strength: "UPDATE"}

// Repositories ERP仓库集合
// 同一实例内的所有仓库共享一个连接（或同一个事务）
type Repositories struct {
	db *gorm.DB

	Brand         *BrandRepository
	Model         *ModelRepository
	Supplier      *SupplierRepository
	Customer      *CustomerRepository
	Inventory     *InventoryRepository
	Ledger        *LedgerRepository
	PurchaseOrder *PurchaseOrderRepository
	SalesOrder    *SalesOrderRepository
	Receivable    *ReceivableRepository
	Payable       *PayableRepository
	Payment       *PaymentRepository
	Profit        *ProfitRepository
	Rebate        *RebateRepository
}

// NewRepositories 创建ERP仓库集合
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		db:            db,
		Brand:         NewBrandRepository(db),
		Model:         NewModelRepository(db),
		Supplier:      NewSupplierRepository(db),
		Customer:      NewCustomerRepository(db),
		Inventory:     NewInventoryRepository(db),
		Ledger:        NewLedgerRepository(db),
		PurchaseOrder: NewPurchaseOrderRepository(db),
		SalesOrder:    NewSalesOrderRepository(db),
		Receivable:    NewReceivableRepository(db),
		Payable:       NewPayableRepository(db),
		Payment:       NewPaymentRepository(db),
		Profit:        NewProfitRepository(db),
		Rebate:        NewRebateRepository(db),
	}
}

// Transaction 在一个数据库事务内执行 fn，fn 返回错误或 panic 时整体回滚
func (r *Repositories) Transaction(ctx context.Context, fn func(tx *Repositories) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepositories(tx))
	})
}

// Ping 检查数据库连通性
func (r *Repositories) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// paginate 分页 scope
func paginate(page, pageSize int) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if page < 1 {
			page = 1
		}
		if pageSize < 1 {
			pageSize = 20
		}
		return db.Offset((page - 1) * pageSize).Limit(pageSize)
	}
}

// countRefs 统计各表中 column = id 的行数之和
func countRefs(db *gorm.DB, column, id string, models ...interface{}) (int64, error) {
	var total int64
	for _, m := range models {
		var n int64
		if err := db.Model(m).Where(column+" = ?", id).Count(&n).Error; err != nil {
			return 0, err
		}
		total += n
	}
	return total, nil
}

// deleted 检查删除是否命中
func deleted(result *gorm.DB) error {
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// notFound 将 gorm.ErrRecordNotFound 转换为 ErrNotFound
func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

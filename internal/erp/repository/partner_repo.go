package repository

import (
	"context"

	"github.com/newNamejj/mobile-inventory-system/internal/erp/entity"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SupplierRepository 供应商仓库
type SupplierRepository struct {
	db *gorm.DB
}

func NewSupplierRepository(db *gorm.DB) *SupplierRepository {
	return &SupplierRepository{db: db}
}

func (r *SupplierRepository) Create(ctx context.Context, s *entity.Supplier) error {
	return r.db.WithContext(ctx).Create(s).Error
}

// Update 更新资料，余额只能通过 AdjustBalance 修改
func (r *SupplierRepository) Update(ctx context.Context, s *entity.Supplier) error {
	return r.db.WithContext(ctx).Omit("balance", "created_at").Save(s).Error
}

func (r *SupplierRepository) FindByID(ctx context.Context, id string) (*entity.Supplier, error) {
	var s entity.Supplier
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&s).Error; err != nil {
		return nil, notFound(err)
	}
	return &s, nil
}

func (r *SupplierRepository) Delete(ctx context.Context, id string) error {
	return deleted(r.db.WithContext(ctx).Where("id = ?", id).Delete(&entity.Supplier{}))
}

// References 引用该供应商的采购单、应付与返利行数
func (r *SupplierRepository) References(ctx context.Context, id string) (int64, error) {
	return countRefs(r.db.WithContext(ctx), "supplier_id", id,
		&entity.PurchaseOrder{}, &entity.Payable{}, &entity.Rebate{})
}

func (r *SupplierRepository) FindAll(ctx context.Context, page, pageSize int, keyword string) ([]entity.Supplier, int64, error) {
	var items []entity.Supplier
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Supplier{})
	if keyword != "" {
		query = query.Where("name ILIKE ? OR contact_person ILIKE ? OR phone ILIKE ?",
			"%"+keyword+"%", "%"+keyword+"%", "%"+keyword+"%")
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.Order("created_at DESC").Scopes(paginate(page, pageSize)).Find(&items).Error
	return items, total, err
}

// AdjustBalance balance += delta
func (r *SupplierRepository) AdjustBalance(ctx context.Context, id string, delta decimal.Decimal) error {
	result := r.db.WithContext(ctx).Model(&entity.Supplier{}).
		Where("id = ?", id).
		Update("balance", gorm.Expr("balance + ?", delta))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// CustomerRepository 客户仓库
type CustomerRepository struct {
	db *gorm.DB
}

func NewCustomerRepository(db *gorm.DB) *CustomerRepository {
	return &CustomerRepository{db: db}
}

func (r *CustomerRepository) Create(ctx context.Context, c *entity.Customer) error {
	return r.db.WithContext(ctx).Create(c).Error
}

// Update 更新资料，余额只能通过 AdjustBalance 修改
func (r *CustomerRepository) Update(ctx context.Context, c *entity.Customer) error {
	return r.db.WithContext(ctx).Omit("balance", "created_at").Save(c).Error
}

func (r *CustomerRepository) FindByID(ctx context.Context, id string) (*entity.Customer, error) {
	var c entity.Customer
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&c).Error; err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}

func (r *CustomerRepository) Delete(ctx context.Context, id string) error {
	return deleted(r.db.WithContext(ctx).Where("id = ?", id).Delete(&entity.Customer{}))
}

// References 引用该客户的销售单、应收与返利行数
func (r *CustomerRepository) References(ctx context.Context, id string) (int64, error) {
	return countRefs(r.db.WithContext(ctx), "customer_id", id,
		&entity.SalesOrder{}, &entity.Receivable{}, &entity.Rebate{})
}

func (r *CustomerRepository) FindAll(ctx context.Context, page, pageSize int, keyword string) ([]entity.Customer, int64, error) {
	var items []entity.Customer
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Customer{})
	if keyword != "" {
		query = query.Where("name ILIKE ? OR contact_person ILIKE ? OR phone ILIKE ?",
			"%"+keyword+"%", "%"+keyword+"%", "%"+keyword+"%")
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.Order("created_at DESC").Scopes(paginate(page, pageSize)).Find(&items).Error
	return items, total, err
}

// AdjustBalance balance += delta
func (r *CustomerRepository) AdjustBalance(ctx context.Context, id string, delta decimal.Decimal) error {
	result := r.db.WithContext(ctx).Model(&entity.Customer{}).
		Where("id = ?", id).
		Update("balance", gorm.Expr("balance + ?", delta))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

package repository

import (
	"context"
	"time"

	"github.com/newNamejj/mobile-inventory-system/internal/erp/entity"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// RebateRepository 返利仓库
type RebateRepository struct {
	db *gorm.DB
}

func NewRebateRepository(db *gorm.DB) *RebateRepository {
	return &RebateRepository{db: db}
}

func (r *RebateRepository) Create(ctx context.Context, rb *entity.Rebate) error {
	return r.db.WithContext(ctx).Omit("Customer", "Supplier").Create(rb).Error
}

func (r *RebateRepository) FindByID(ctx context.Context, id string) (*entity.Rebate, error) {
	var rb entity.Rebate
	if err := r.db.WithContext(ctx).Preload("Customer").Preload("Supplier").Where("id = ?", id).First(&rb).Error; err != nil {
		return nil, notFound(err)
	}
	return &rb, nil
}

// FindByIDForUpdate 加行锁读取
func (r *RebateRepository) FindByIDForUpdate(ctx context.Context, id string) (*entity.Rebate, error) {
	var rb entity.Rebate
	if err := r.db.WithContext(ctx).Clauses(forUpdate).Where("id = ?", id).First(&rb).Error; err != nil {
		return nil, notFound(err)
	}
	return &rb, nil
}

func (r *RebateRepository) Delete(ctx context.Context, id string) error {
	return deleted(r.db.WithContext(ctx).Where("id = ?", id).Delete(&entity.Rebate{}))
}

// UpdateStatus 更新返利状态
func (r *RebateRepository) UpdateStatus(ctx context.Context, id, status string) error {
	result := r.db.WithContext(ctx).Model(&entity.Rebate{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"status": status, "updated_at": time.Now()})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *RebateRepository) FindAll(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.Rebate, int64, error) {
	var items []entity.Rebate
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Rebate{})
	if rebateType := filters["rebate_type"]; rebateType != "" {
		query = query.Where("rebate_type = ?", rebateType)
	}
	if status := filters["status"]; status != "" {
		query = query.Where("status = ?", status)
	}
	if customerID := filters["customer_id"]; customerID != "" {
		query = query.Where("customer_id = ?", customerID)
	}
	if supplierID := filters["supplier_id"]; supplierID != "" {
		query = query.Where("supplier_id = ?", supplierID)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.
		Preload("Customer").
		Preload("Supplier").
		Order("created_at DESC").
		Scopes(paginate(page, pageSize)).
		Find(&items).Error
	return items, total, err
}

// Balance 统计可用返利: pending/confirmed 且未过期
// column 为 customer_id 或 supplier_id
func (r *RebateRepository) Balance(ctx context.Context, column, partnerID string, today time.Time) (*entity.RebateBalance, error) {
	var row struct {
		TotalRebate decimal.Decimal
		TotalCount  int64
	}
	err := r.db.WithContext(ctx).Model(&entity.Rebate{}).
		Select("COALESCE(SUM(amount), 0) AS total_rebate, COUNT(*) AS total_count").
		Where(column+" = ?", partnerID).
		Where("status IN ?", []string{entity.RebateStatusPending, entity.RebateStatusConfirmed}).
		Where("expiry_date IS NULL OR expiry_date >= ?", today.Format("2006-01-02")).
		Scan(&row).Error
	if err != nil {
		return nil, err
	}
	return &entity.RebateBalance{TotalRebate: row.TotalRebate, TotalCount: row.TotalCount}, nil
}

package repository

import (
	"context"

	"github.com/newNamejj/mobile-inventory-system/internal/erp/entity"
	"gorm.io/gorm"
)

// PurchaseOrderRepository 采购订单仓库
type PurchaseOrderRepository struct {
	db *gorm.DB
}

func NewPurchaseOrderRepository(db *gorm.DB) *PurchaseOrderRepository {
	return &PurchaseOrderRepository{db: db}
}

// Create 创建订单及明细
func (r *PurchaseOrderRepository) Create(ctx context.Context, po *entity.PurchaseOrder) error {
	return r.db.WithContext(ctx).Omit("Supplier", "Items.Model").Create(po).Error
}

// FindByID 查询订单详情
func (r *PurchaseOrderRepository) FindByID(ctx context.Context, id string) (*entity.PurchaseOrder, error) {
	var po entity.PurchaseOrder
	err := r.db.WithContext(ctx).
		Preload("Supplier").
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("line_no ASC") }).
		Preload("Items.Model.Brand").
		Where("id = ?", id).
		First(&po).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &po, nil
}

// FindByIDForUpdate 锁定订单行并加载明细
func (r *PurchaseOrderRepository) FindByIDForUpdate(ctx context.Context, id string) (*entity.PurchaseOrder, error) {
	var po entity.PurchaseOrder
	if err := r.db.WithContext(ctx).Clauses(forUpdate).Where("id = ?", id).First(&po).Error; err != nil {
		return nil, notFound(err)
	}
	if err := r.db.WithContext(ctx).
		Where("purchase_order_id = ?", po.ID).
		Order("line_no ASC").
		Find(&po.Items).Error; err != nil {
		return nil, err
	}
	return &po, nil
}

// FindAll 查询订单列表
func (r *PurchaseOrderRepository) FindAll(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.PurchaseOrder, int64, error) {
	var items []entity.PurchaseOrder
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.PurchaseOrder{})
	if supplierID := filters["supplier_id"]; supplierID != "" {
		query = query.Where("supplier_id = ?", supplierID)
	}
	if status := filters["status"]; status != "" {
		query = query.Where("status = ?", status)
	}
	if keyword := filters["keyword"]; keyword != "" {
		query = query.Where("order_number ILIKE ?", "%"+keyword+"%")
	}
	if startDate := filters["start_date"]; startDate != "" {
		query = query.Where("created_at >= ?", startDate)
	}
	if endDate := filters["end_date"]; endDate != "" {
		query = query.Where("created_at < (?::date + 1)", endDate)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Preload("Supplier").
		Order("created_at DESC").
		Scopes(paginate(page, pageSize)).
		Find(&items).Error
	return items, total, err
}

// LastOrderNumber 在事务内获取前缀的咨询锁，返回该前缀当前最大单号
func (r *PurchaseOrderRepository) LastOrderNumber(ctx context.Context, prefix string) (string, error) {
	db := r.db.WithContext(ctx)
	if err := db.Exec("SELECT pg_advisory_xact_lock(hashtext(?))", prefix).Error; err != nil {
		return "", err
	}
	var last string
	err := db.Model(&entity.PurchaseOrder{}).
		Select("COALESCE(MAX(order_number), '')").
		Where("order_number LIKE ?", prefix+"%").
		Scan(&last).Error
	return last, err
}

// UpdateStatus 更新订单状态
func (r *PurchaseOrderRepository) UpdateStatus(ctx context.Context, po *entity.PurchaseOrder) error {
	return r.db.WithContext(ctx).Model(po).
		Select("status", "completed_at", "updated_at").
		Updates(po).Error
}

// UpdateReceived 写入明细已收数量
func (r *PurchaseOrderRepository) UpdateReceived(ctx context.Context, itemID string, received int) error {
	return r.db.WithContext(ctx).Model(&entity.PurchaseOrderItem{}).
		Where("id = ?", itemID).
		Update("received_quantity", received).Error
}

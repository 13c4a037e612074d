package repository

import (
	"context"

	"github.com/newNamejj/mobile-inventory-system/internal/erp/entity"
	"gorm.io/gorm"
)

// SalesOrderRepository 销售订单仓库
type SalesOrderRepository struct {
	db *gorm.DB
}

func NewSalesOrderRepository(db *gorm.DB) *SalesOrderRepository {
	return &SalesOrderRepository{db: db}
}

// Create 创建订单及明细
func (r *SalesOrderRepository) Create(ctx context.Context, so *entity.SalesOrder) error {
	return r.db.WithContext(ctx).Omit("Customer", "Items.Model").Create(so).Error
}

// FindByID 查询订单详情
func (r *SalesOrderRepository) FindByID(ctx context.Context, id string) (*entity.SalesOrder, error) {
	var so entity.SalesOrder
	err := r.db.WithContext(ctx).
		Preload("Customer").
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("line_no ASC") }).
		Preload("Items.Model.Brand").
		Where("id = ?", id).
		First(&so).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &so, nil
}

// FindByIDForUpdate 锁定订单行并加载明细
func (r *SalesOrderRepository) FindByIDForUpdate(ctx context.Context, id string) (*entity.SalesOrder, error) {
	var so entity.SalesOrder
	if err := r.db.WithContext(ctx).Clauses(forUpdate).Where("id = ?", id).First(&so).Error; err != nil {
		return nil, notFound(err)
	}
	if err := r.db.WithContext(ctx).
		Where("sales_order_id = ?", so.ID).
		Order("line_no ASC").
		Find(&so.Items).Error; err != nil {
		return nil, err
	}
	return &so, nil
}

// FindAll 查询订单列表
func (r *SalesOrderRepository) FindAll(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.SalesOrder, int64, error) {
	var items []entity.SalesOrder
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.SalesOrder{})
	if customerID := filters["customer_id"]; customerID != "" {
		query = query.Where("customer_id = ?", customerID)
	}
	if status := filters["status"]; status != "" {
		query = query.Where("status = ?", status)
	}
	if paymentStatus := filters["payment_status"]; paymentStatus != "" {
		query = query.Where("payment_status = ?", paymentStatus)
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
		Preload("Customer").
		Order("created_at DESC").
		Scopes(paginate(page, pageSize)).
		Find(&items).Error
	return items, total, err
}

// LastOrderNumber 在事务内获取前缀的咨询锁，返回该前缀当前最大单号
func (r *SalesOrderRepository) LastOrderNumber(ctx context.Context, prefix string) (string, error) {
	db := r.db.WithContext(ctx)
	if err := db.Exec("SELECT pg_advisory_xact_lock(hashtext(?))", prefix).Error; err != nil {
		return "", err
	}
	var last string
	err := db.Model(&entity.SalesOrder{}).
		Select("COALESCE(MAX(order_number), '')").
		Where("order_number LIKE ?", prefix+"%").
		Scan(&last).Error
	return last, err
}

// UpdateStatus 更新订单状态
func (r *SalesOrderRepository) UpdateStatus(ctx context.Context, so *entity.SalesOrder) error {
	return r.db.WithContext(ctx).Model(so).
		Select("status", "completed_at", "updated_at").
		Updates(so).Error
}

// UpdatePaymentStatus 同步应收结算状态
func (r *SalesOrderRepository) UpdatePaymentStatus(ctx context.Context, id, status string) error {
	return r.db.WithContext(ctx).Model(&entity.SalesOrder{}).
		Where("id = ?", id).
		Update("payment_status", status).Error
}

// UpdateDelivered 写入明细已发数量
func (r *SalesOrderRepository) UpdateDelivered(ctx context.Context, itemID string, delivered int) error {
	return r.db.WithContext(ctx).Model(&entity.SalesOrderItem{}).
		Where("id = ?", itemID).
		Update("delivered_quantity", delivered).Error
}

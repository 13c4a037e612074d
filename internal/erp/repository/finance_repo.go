package repository

import (
	"context"

	"github.com/newNamejj/mobile-inventory-system/internal/erp/entity"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// sumRow 金额汇总扫描结构
type sumRow struct {
	Total decimal.Decimal
}

// ReceivableRepository 应收账款仓库
type ReceivableRepository struct {
	db *gorm.DB
}

func NewReceivableRepository(db *gorm.DB) *ReceivableRepository {
	return &ReceivableRepository{db: db}
}

func (r *ReceivableRepository) Create(ctx context.Context, rec *entity.Receivable) error {
	return r.db.WithContext(ctx).Omit("Customer").Create(rec).Error
}

// FindByIDForUpdate 加行锁读取
func (r *ReceivableRepository) FindByIDForUpdate(ctx context.Context, id string) (*entity.Receivable, error) {
	var rec entity.Receivable
	if err := r.db.WithContext(ctx).Clauses(forUpdate).Where("id = ?", id).First(&rec).Error; err != nil {
		return nil, notFound(err)
	}
	return &rec, nil
}

// FindByRelated 查询单据对应的应收
func (r *ReceivableRepository) FindByRelated(ctx context.Context, relatedTable, relatedID string) (*entity.Receivable, error) {
	var rec entity.Receivable
	err := r.db.WithContext(ctx).
		Where("related_table = ? AND related_id = ?", relatedTable, relatedID).
		First(&rec).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &rec, nil
}

// UpdatePaid 写入已收金额和状态
func (r *ReceivableRepository) UpdatePaid(ctx context.Context, rec *entity.Receivable) error {
	return r.db.WithContext(ctx).Model(rec).
		Select("paid_amount", "status", "updated_at").
		Updates(rec).Error
}

// OutstandingByCustomer 客户未收总额
func (r *ReceivableRepository) OutstandingByCustomer(ctx context.Context, customerID string) (decimal.Decimal, error) {
	var row sumRow
	err := r.db.WithContext(ctx).Model(&entity.Receivable{}).
		Select("COALESCE(SUM(amount - paid_amount), 0) AS total").
		Where("customer_id = ?", customerID).
		Scan(&row).Error
	return row.Total, err
}

func (r *ReceivableRepository) FindAll(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.Receivable, int64, error) {
	var items []entity.Receivable
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Receivable{})
	if customerID := filters["customer_id"]; customerID != "" {
		query = query.Where("customer_id = ?", customerID)
	}
	if status := filters["status"]; status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.Preload("Customer").Order("created_at DESC").Scopes(paginate(page, pageSize)).Find(&items).Error
	return items, total, err
}

// PayableRepository 应付账款仓库
type PayableRepository struct {
	db *gorm.DB
}

func NewPayableRepository(db *gorm.DB) *PayableRepository {
	return &PayableRepository{db: db}
}

func (r *PayableRepository) Create(ctx context.Context, p *entity.Payable) error {
	return r.db.WithContext(ctx).Omit("Supplier").Create(p).Error
}

// FindByIDForUpdate 加行锁读取
func (r *PayableRepository) FindByIDForUpdate(ctx context.Context, id string) (*entity.Payable, error) {
	var p entity.Payable
	if err := r.db.WithContext(ctx).Clauses(forUpdate).Where("id = ?", id).First(&p).Error; err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

// FindByRelated 查询单据对应的应付
func (r *PayableRepository) FindByRelated(ctx context.Context, relatedTable, relatedID string) (*entity.Payable, error) {
	var p entity.Payable
	err := r.db.WithContext(ctx).
		Where("related_table = ? AND related_id = ?", relatedTable, relatedID).
		First(&p).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

// UpdatePaid 写入已付金额和状态
func (r *PayableRepository) UpdatePaid(ctx context.Context, p *entity.Payable) error {
	return r.db.WithContext(ctx).Model(p).
		Select("paid_amount", "status", "updated_at").
		Updates(p).Error
}

// OutstandingBySupplier 供应商未付总额
func (r *PayableRepository) OutstandingBySupplier(ctx context.Context, supplierID string) (decimal.Decimal, error) {
	var row sumRow
	err := r.db.WithContext(ctx).Model(&entity.Payable{}).
		Select("COALESCE(SUM(amount - paid_amount), 0) AS total").
		Where("supplier_id = ?", supplierID).
		Scan(&row).Error
	return row.Total, err
}

func (r *PayableRepository) FindAll(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.Payable, int64, error) {
	var items []entity.Payable
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Payable{})
	if supplierID := filters["supplier_id"]; supplierID != "" {
		query = query.Where("supplier_id = ?", supplierID)
	}
	if status := filters["status"]; status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.Preload("Supplier").Order("created_at DESC").Scopes(paginate(page, pageSize)).Find(&items).Error
	return items, total, err
}

// PaymentRepository 收付款记录仓库
type PaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) Create(ctx context.Context, p *entity.PaymentRecord) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *PaymentRepository) FindAll(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.PaymentRecord, int64, error) {
	var items []entity.PaymentRecord
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.PaymentRecord{})
	if paymentType := filters["payment_type"]; paymentType != "" {
		query = query.Where("payment_type = ?", paymentType)
	}
	if relatedID := filters["related_id"]; relatedID != "" {
		query = query.Where("related_id = ?", relatedID)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.Order("payment_date DESC").Scopes(paginate(page, pageSize)).Find(&items).Error
	return items, total, err
}

// ProfitRepository 利润记录仓库
type ProfitRepository struct {
	db *gorm.DB
}

func NewProfitRepository(db *gorm.DB) *ProfitRepository {
	return &ProfitRepository{db: db}
}

// Create 写入利润记录，sales_order_item_id 唯一
func (r *ProfitRepository) Create(ctx context.Context, p *entity.ProfitRecord) error {
	return r.db.WithContext(ctx).Omit("Model").Create(p).Error
}

func (r *ProfitRepository) FindBySalesOrder(ctx context.Context, salesOrderID string) ([]entity.ProfitRecord, error) {
	var items []entity.ProfitRecord
	err := r.db.WithContext(ctx).Where("sales_order_id = ?", salesOrderID).Find(&items).Error
	return items, err
}

func (r *ProfitRepository) FindAll(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.ProfitRecord, int64, error) {
	var items []entity.ProfitRecord
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.ProfitRecord{}).Scopes(dateRange(filters))
	if modelID := filters["model_id"]; modelID != "" {
		query = query.Where("model_id = ?", modelID)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.Preload("Model.Brand").Order("created_at DESC").Scopes(paginate(page, pageSize)).Find(&items).Error
	return items, total, err
}

// Summary 汇总收入、成本、利润
func (r *ProfitRepository) Summary(ctx context.Context, filters map[string]string) (*entity.ProfitSummary, error) {
	var row struct {
		TotalRevenue decimal.Decimal
		TotalCost    decimal.Decimal
		TotalProfit  decimal.Decimal
		RecordCount  int64
	}
	err := r.db.WithContext(ctx).Model(&entity.ProfitRecord{}).
		Scopes(dateRange(filters)).
		Select("COALESCE(SUM(revenue), 0) AS total_revenue, " +
			"COALESCE(SUM(cost), 0) AS total_cost, " +
			"COALESCE(SUM(profit), 0) AS total_profit, " +
			"COUNT(*) AS record_count").
		Scan(&row).Error
	if err != nil {
		return nil, err
	}
	return &entity.ProfitSummary{
		TotalRevenue: row.TotalRevenue,
		TotalCost:    row.TotalCost,
		TotalProfit:  row.TotalProfit,
		RecordCount:  row.RecordCount,
	}, nil
}

// dateRange 按 start_date / end_date 过滤 created_at
func dateRange(filters map[string]string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if startDate := filters["start_date"]; startDate != "" {
			db = db.Where("created_at >= ?", startDate)
		}
		if endDate := filters["end_date"]; endDate != "" {
			db = db.Where("created_at < (?::date + 1)", endDate)
		}
		return db
	}
}

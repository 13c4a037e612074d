package repository

import (
	"context"
	"time"

	"github.com/newNamejj/mobile-inventory-system/internal/erp/entity"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// InventoryRepository 库存仓库
// 所有数量变更都是带条件的原子 UPDATE，返回 false 表示条件不满足
type InventoryRepository struct {
	db *gorm.DB
}

func NewInventoryRepository(db *gorm.DB) *InventoryRepository {
	return &InventoryRepository{db: db}
}

// Create 为新机型建立库存记录
func (r *InventoryRepository) Create(ctx context.Context, rec *entity.InventoryRecord) error {
	return r.db.WithContext(ctx).Omit("Model").Create(rec).Error
}

func (r *InventoryRepository) FindByID(ctx context.Context, id string) (*entity.InventoryRecord, error) {
	var rec entity.InventoryRecord
	if err := r.db.WithContext(ctx).Preload("Model.Brand").Where("id = ?", id).First(&rec).Error; err != nil {
		return nil, notFound(err)
	}
	return &rec, nil
}

// FindByIDForUpdate 加行锁读取
func (r *InventoryRepository) FindByIDForUpdate(ctx context.Context, id string) (*entity.InventoryRecord, error) {
	var rec entity.InventoryRecord
	if err := r.db.WithContext(ctx).Clauses(forUpdate).Where("id = ?", id).First(&rec).Error; err != nil {
		return nil, notFound(err)
	}
	return &rec, nil
}

func (r *InventoryRepository) FindByModelID(ctx context.Context, modelID string) (*entity.InventoryRecord, error) {
	var rec entity.InventoryRecord
	if err := r.db.WithContext(ctx).Preload("Model.Brand").Where("model_id = ?", modelID).First(&rec).Error; err != nil {
		return nil, notFound(err)
	}
	return &rec, nil
}

// DeleteByModel 删除机型的库存记录，仅允许零库存
func (r *InventoryRepository) DeleteByModel(ctx context.Context, modelID string) (bool, error) {
	return changed(r.db.WithContext(ctx).
		Where("model_id = ? AND quantity = 0 AND available_quantity = 0", modelID).
		Delete(&entity.InventoryRecord{}))
}

// changed 执行条件更新并返回是否命中
func changed(result *gorm.DB) (bool, error) {
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// Reserve available -= qty，要求 available >= qty
func (r *InventoryRepository) Reserve(ctx context.Context, modelID string, qty int) (bool, error) {
	return changed(r.db.WithContext(ctx).Model(&entity.InventoryRecord{}).
		Where("model_id = ? AND available_quantity >= ?", modelID, qty).
		Updates(map[string]interface{}{
			"available_quantity": gorm.Expr("available_quantity - ?", qty),
			"last_updated":       time.Now(),
		}))
}

// Release available += qty，要求 available + qty <= quantity
func (r *InventoryRepository) Release(ctx context.Context, modelID string, qty int) (bool, error) {
	return changed(r.db.WithContext(ctx).Model(&entity.InventoryRecord{}).
		Where("model_id = ? AND available_quantity + ? <= quantity", modelID, qty).
		Updates(map[string]interface{}{
			"available_quantity": gorm.Expr("available_quantity + ?", qty),
			"last_updated":       time.Now(),
		}))
}

// Receive quantity += qty, available += qty，记录不存在时创建
func (r *InventoryRepository) Receive(ctx context.Context, modelID string, qty int) error {
	now := time.Now()
	rec := entity.InventoryRecord{
		ID:                entity.NewID(),
		ModelID:           modelID,
		Quantity:          qty,
		AvailableQuantity: qty,
		LastUpdated:       now,
	}
	return r.db.WithContext(ctx).Omit("Model").Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "model_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"quantity":           gorm.Expr("erp_inventory.quantity + ?", qty),
			"available_quantity": gorm.Expr("erp_inventory.available_quantity + ?", qty),
			"last_updated":       now,
		}),
	}).Create(&rec).Error
}

// Ship 未预留出库: quantity -= qty, available -= qty，要求 available >= qty
func (r *InventoryRepository) Ship(ctx context.Context, modelID string, qty int) (bool, error) {
	return changed(r.db.WithContext(ctx).Model(&entity.InventoryRecord{}).
		Where("model_id = ? AND available_quantity >= ?", modelID, qty).
		Updates(map[string]interface{}{
			"quantity":           gorm.Expr("quantity - ?", qty),
			"available_quantity": gorm.Expr("available_quantity - ?", qty),
			"last_updated":       time.Now(),
		}))
}

// ShipReserved 已预留出库: quantity -= qty，要求预留量 quantity - available >= qty
func (r *InventoryRepository) ShipReserved(ctx context.Context, modelID string, qty int) (bool, error) {
	return changed(r.db.WithContext(ctx).Model(&entity.InventoryRecord{}).
		Where("model_id = ? AND quantity - ? >= available_quantity", modelID, qty).
		Updates(map[string]interface{}{
			"quantity":     gorm.Expr("quantity - ?", qty),
			"last_updated": time.Now(),
		}))
}

// SetLevels 直接写入数量，调用方需持有行锁
func (r *InventoryRepository) SetLevels(ctx context.Context, id string, quantity, available int) error {
	result := r.db.WithContext(ctx).Model(&entity.InventoryRecord{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"quantity":           quantity,
			"available_quantity": available,
			"last_updated":       time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// SetMinStock 设置预警线
func (r *InventoryRepository) SetMinStock(ctx context.Context, id string, level int) error {
	result := r.db.WithContext(ctx).Model(&entity.InventoryRecord{}).
		Where("id = ?", id).
		Update("min_stock_level", level)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// FindAll 查询库存列表
func (r *InventoryRepository) FindAll(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.InventoryRecord, int64, error) {
	var items []entity.InventoryRecord
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.InventoryRecord{}).
		Joins("JOIN erp_models ON erp_models.id = erp_inventory.model_id")

	if brandID := filters["brand_id"]; brandID != "" {
		query = query.Where("erp_models.brand_id = ?", brandID)
	}
	if keyword := filters["keyword"]; keyword != "" {
		query = query.Where("erp_models.model_name ILIKE ?", "%"+keyword+"%")
	}
	if filters["low_stock"] == "true" {
		query = query.Where("erp_inventory.available_quantity <= erp_inventory.min_stock_level")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Preload("Model.Brand").
		Order("erp_models.model_name ASC").
		Scopes(paginate(page, pageSize)).
		Find(&items).Error
	return items, total, err
}

// FindLowStock 低于预警线的库存
func (r *InventoryRepository) FindLowStock(ctx context.Context) ([]entity.InventoryRecord, error) {
	var items []entity.InventoryRecord
	err := r.db.WithContext(ctx).
		Preload("Model.Brand").
		Where("available_quantity <= min_stock_level").
		Order("available_quantity ASC").
		Find(&items).Error
	return items, err
}

// FindAllForExport 导出全部库存
func (r *InventoryRepository) FindAllForExport(ctx context.Context) ([]entity.InventoryRecord, error) {
	var items []entity.InventoryRecord
	err := r.db.WithContext(ctx).
		Preload("Model.Brand").
		Order("model_id ASC").
		Find(&items).Error
	return items, err
}

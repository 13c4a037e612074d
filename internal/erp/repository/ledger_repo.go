package repository

import (
	"context"

	"github.com/newNamejj/mobile-inventory-system/internal/erp/entity"
	"gorm.io/gorm"
)

// LedgerRepository 库存流水仓库，只提供追加和查询
type LedgerRepository struct {
	db *gorm.DB
}

func NewLedgerRepository(db *gorm.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

// Append 追加一条流水
func (r *LedgerRepository) Append(ctx context.Context, tx *entity.InventoryTransaction) error {
	return r.db.WithContext(ctx).Omit("Model").Create(tx).Error
}

// FindByModel 按机型查询流水，最新在前
func (r *LedgerRepository) FindByModel(ctx context.Context, modelID string, page, pageSize int) ([]entity.InventoryTransaction, int64, error) {
	var items []entity.InventoryTransaction
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.InventoryTransaction{}).Where("model_id = ?", modelID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.Order("created_at DESC").Scopes(paginate(page, pageSize)).Find(&items).Error
	return items, total, err
}

// FindByRelated 查询某张单据产生的流水
func (r *LedgerRepository) FindByRelated(ctx context.Context, relatedTable, relatedID string) ([]entity.InventoryTransaction, error) {
	var items []entity.InventoryTransaction
	err := r.db.WithContext(ctx).
		Where("related_table = ? AND related_id = ?", relatedTable, relatedID).
		Order("created_at ASC").
		Find(&items).Error
	return items, err
}

// NetQuantity 流水净额（入库 - 出库）
func (r *LedgerRepository) NetQuantity(ctx context.Context, modelID string) (int, error) {
	var net int
	err := r.db.WithContext(ctx).Model(&entity.InventoryTransaction{}).
		Select("COALESCE(SUM(CASE WHEN direction = 'in' THEN quantity ELSE -quantity END), 0)").
		Where("model_id = ?", modelID).
		Scan(&net).Error
	return net, err
}

package repository

import (
	"context"

	"github.com/newNamejj/mobile-inventory-system/internal/erp/entity"
	"gorm.io/gorm"
)

// BrandRepository 品牌仓库
type BrandRepository struct {
	db *gorm.DB
}

func NewBrandRepository(db *gorm.DB) *BrandRepository {
	return &BrandRepository{db: db}
}

func (r *BrandRepository) Create(ctx context.Context, b *entity.Brand) error {
	return r.db.WithContext(ctx).Create(b).Error
}

func (r *BrandRepository) Update(ctx context.Context, b *entity.Brand) error {
	return r.db.WithContext(ctx).Save(b).Error
}

func (r *BrandRepository) FindByID(ctx context.Context, id string) (*entity.Brand, error) {
	var b entity.Brand
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&b).Error; err != nil {
		return nil, notFound(err)
	}
	return &b, nil
}

func (r *BrandRepository) Delete(ctx context.Context, id string) error {
	return deleted(r.db.WithContext(ctx).Where("id = ?", id).Delete(&entity.Brand{}))
}

func (r *BrandRepository) FindAll(ctx context.Context, keyword string) ([]entity.Brand, error) {
	var items []entity.Brand
	query := r.db.WithContext(ctx).Model(&entity.Brand{})
	if keyword != "" {
		query = query.Where("name ILIKE ?", "%"+keyword+"%")
	}
	err := query.Order("name ASC").Find(&items).Error
	return items, err
}

// ModelRepository 机型仓库
type ModelRepository struct {
	db *gorm.DB
}

func NewModelRepository(db *gorm.DB) *ModelRepository {
	return &ModelRepository{db: db}
}

func (r *ModelRepository) Create(ctx context.Context, m *entity.PhoneModel) error {
	return r.db.WithContext(ctx).Omit("Brand").Create(m).Error
}

func (r *ModelRepository) Update(ctx context.Context, m *entity.PhoneModel) error {
	return r.db.WithContext(ctx).Omit("Brand").Save(m).Error
}

func (r *ModelRepository) FindByID(ctx context.Context, id string) (*entity.PhoneModel, error) {
	var m entity.PhoneModel
	if err := r.db.WithContext(ctx).Preload("Brand").Where("id = ?", id).First(&m).Error; err != nil {
		return nil, notFound(err)
	}
	return &m, nil
}

func (r *ModelRepository) Delete(ctx context.Context, id string) error {
	return deleted(r.db.WithContext(ctx).Where("id = ?", id).Delete(&entity.PhoneModel{}))
}

// CountByBrand 品牌下的机型数
func (r *ModelRepository) CountByBrand(ctx context.Context, brandID string) (int64, error) {
	return countRefs(r.db.WithContext(ctx), "brand_id", brandID, &entity.PhoneModel{})
}

// References 引用该机型的流水、订单明细与利润记录行数
func (r *ModelRepository) References(ctx context.Context, id string) (int64, error) {
	return countRefs(r.db.WithContext(ctx), "model_id", id,
		&entity.InventoryTransaction{}, &entity.PurchaseOrderItem{}, &entity.SalesOrderItem{}, &entity.ProfitRecord{})
}

// FindByIDs 批量查询机型，返回 id -> 机型
func (r *ModelRepository) FindByIDs(ctx context.Context, ids []string) (map[string]*entity.PhoneModel, error) {
	var items []entity.PhoneModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&items).Error; err != nil {
		return nil, err
	}
	result := make(map[string]*entity.PhoneModel, len(items))
	for i := range items {
		result[items[i].ID] = &items[i]
	}
	return result, nil
}

func (r *ModelRepository) FindAll(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.PhoneModel, int64, error) {
	var items []entity.PhoneModel
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.PhoneModel{})
	if brandID := filters["brand_id"]; brandID != "" {
		query = query.Where("brand_id = ?", brandID)
	}
	if keyword := filters["keyword"]; keyword != "" {
		query = query.Where("model_name ILIKE ?", "%"+keyword+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Preload("Brand").
		Order("created_at DESC").
		Scopes(paginate(page, pageSize)).
		Find(&items).Error
	return items, total, err
}

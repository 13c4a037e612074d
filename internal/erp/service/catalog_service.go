package service

import (
	"context"
	"errors"
	"time"

	"github.com/newNamejj/mobile-inventory-system/internal/erp/entity"
	"github.com/newNamejj/mobile-inventory-system/internal/erp/repository"
	"github.com/shopspring/decimal"
)

// CatalogService 品牌与机型
type CatalogService struct {
	run *runner
}

func NewCatalogService(run *runner) *CatalogService {
	return &CatalogService{run: run}
}

type BrandRequest struct {
	Name        string `json:"name" binding:"required,max=100"`
	Description string `json:"description"`
}

type ModelRequest struct {
	BrandID        string              `json:"brand_id" binding:"required"`
	ModelName      string              `json:"model_name" binding:"required,max=100"`
	Specifications string              `json:"specifications"`
	PurchasePrice  decimal.Decimal     `json:"purchase_price"`
	RetailPrice    decimal.Decimal     `json:"retail_price"`
	WholesalePrice decimal.NullDecimal `json:"wholesale_price"`
	IMEIRequired   *bool               `json:"imei_required"`
	Location       string              `json:"location"`
}

func (r *ModelRequest) validate() error {
	if r.PurchasePrice.IsNegative() || r.RetailPrice.IsNegative() {
		return Invalid("prices must not be negative")
	}
	if r.WholesalePrice.Valid && r.WholesalePrice.Decimal.IsNegative() {
		return Invalid("wholesale_price must not be negative")
	}
	return nil
}

func (s *CatalogService) CreateBrand(ctx context.Context, req *BrandRequest) (*entity.Brand, error) {
	b := &entity.Brand{ID: entity.NewID(), Name: req.Name, Description: req.Description}
	err := s.run.tx(ctx, func(ctx context.Context, tx *repository.Repositories) error {
		return tx.Brand.Create(ctx, b)
	})
	return b, err
}

func (s *CatalogService) UpdateBrand(ctx context.Context, id string, req *BrandRequest) (*entity.Brand, error) {
	var b *entity.Brand
	err := s.run.tx(ctx, func(ctx context.Context, tx *repository.Repositories) error {
		var err error
		b, err = tx.Brand.FindByID(ctx, id)
		if err != nil {
			return missing(err, "brand", id)
		}
		b.Name = req.Name
		b.Description = req.Description
		return tx.Brand.Update(ctx, b)
	})
	return b, err
}

func (s *CatalogService) GetBrand(ctx context.Context, id string) (*entity.Brand, error) {
	var b *entity.Brand
	err := s.run.read(ctx, func(ctx context.Context, repos *repository.Repositories) error {
		var err error
		b, err = repos.Brand.FindByID(ctx, id)
		return missing(err, "brand", id)
	})
	return b, err
}

func (s *CatalogService) ListBrands(ctx context.Context, keyword string) ([]entity.Brand, error) {
	var items []entity.Brand
	err := s.run.read(ctx, func(ctx context.Context, repos *repository.Repositories) error {
		var err error
		items, err = repos.Brand.FindAll(ctx, keyword)
		return err
	})
	return items, err
}

// DeleteBrand 品牌下仍有机型时拒绝删除
func (s *CatalogService) DeleteBrand(ctx context.Context, id string) error {
	return s.run.tx(ctx, func(ctx context.Context, tx *repository.Repositories) error {
		b, err := tx.Brand.FindByID(ctx, id)
		if err != nil {
			return missing(err, "brand", id)
		}
		n, err := tx.Model.CountByBrand(ctx, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return Invalid("brand %s still has %d models", b.Name, n)
		}
		return tx.Brand.Delete(ctx, id)
	})
}

// CreateModel 新增机型并建立零库存记录
func (s *CatalogService) CreateModel(ctx context.Context, req *ModelRequest) (*entity.PhoneModel, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	m := &entity.PhoneModel{
		ID:             entity.NewID(),
		BrandID:        req.BrandID,
		ModelName:      req.ModelName,
		Specifications: req.Specifications,
		PurchasePrice:  req.PurchasePrice,
		RetailPrice:    req.RetailPrice,
		WholesalePrice: req.WholesalePrice,
		IMEIRequired:   req.IMEIRequired == nil || *req.IMEIRequired,
	}
	err := s.run.tx(ctx, func(ctx context.Context, tx *repository.Repositories) error {
		brand, err := tx.Brand.FindByID(ctx, req.BrandID)
		if err != nil {
			return missing(err, "brand", req.BrandID)
		}
		if err := tx.Model.Create(ctx, m); err != nil {
			return err
		}
		m.Brand = brand
		return tx.Inventory.Create(ctx, &entity.InventoryRecord{
			ID:          entity.NewID(),
			ModelID:     m.ID,
			Location:    req.Location,
			LastUpdated: time.Now(),
		})
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

// UpdateModel 修改机型资料，已下单的价格不受影响
func (s *CatalogService) UpdateModel(ctx context.Context, id string, req *ModelRequest) (*entity.PhoneModel, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	var m *entity.PhoneModel
	err := s.run.tx(ctx, func(ctx context.Context, tx *repository.Repositories) error {
		var err error
		m, err = tx.Model.FindByID(ctx, id)
		if err != nil {
			return missing(err, "model", id)
		}
		if req.BrandID != m.BrandID {
			brand, err := tx.Brand.FindByID(ctx, req.BrandID)
			if err != nil {
				return missing(err, "brand", req.BrandID)
			}
			m.Brand = brand
		}
		m.BrandID = req.BrandID
		m.ModelName = req.ModelName
		m.Specifications = req.Specifications
		m.PurchasePrice = req.PurchasePrice
		m.RetailPrice = req.RetailPrice
		m.WholesalePrice = req.WholesalePrice
		if req.IMEIRequired != nil {
			m.IMEIRequired = *req.IMEIRequired
		}
		return tx.Model.Update(ctx, m)
	})
	return m, err
}

func (s *CatalogService) GetModel(ctx context.Context, id string) (*entity.PhoneModel, error) {
	var m *entity.PhoneModel
	err := s.run.read(ctx, func(ctx context.Context, repos *repository.Repositories) error {
		var err error
		m, err = repos.Model.FindByID(ctx, id)
		return missing(err, "model", id)
	})
	return m, err
}

func (s *CatalogService) ListModels(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.PhoneModel, int64, error) {
	var items []entity.PhoneModel
	var total int64
	err := s.run.read(ctx, func(ctx context.Context, repos *repository.Repositories) error {
		var err error
		items, total, err = repos.Model.FindAll(ctx, page, pageSize, filters)
		return err
	})
	return items, total, err
}

// DeleteModel 删除从未入账的机型及其零库存记录
// 有库存、库存流水、订单明细或利润记录的机型不可删除
func (s *CatalogService) DeleteModel(ctx context.Context, id string) error {
	return s.run.tx(ctx, func(ctx context.Context, tx *repository.Repositories) error {
		m, err := tx.Model.FindByID(ctx, id)
		if err != nil {
			return missing(err, "model", id)
		}
		refs, err := tx.Model.References(ctx, id)
		if err != nil {
			return err
		}
		if refs > 0 {
			return Invalid("model %s is referenced by %d transactions or order lines", m.DisplayName(), refs)
		}
		rec, err := tx.Inventory.FindByModelID(ctx, id)
		switch {
		case errors.Is(err, repository.ErrNotFound):
		case err != nil:
			return err
		case rec.Quantity > 0:
			return Invalid("model %s still has %d units in stock", m.DisplayName(), rec.Quantity)
		default:
			ok, err := tx.Inventory.DeleteByModel(ctx, id)
			if err != nil {
				return err
			}
			if !ok {
				return Invalid("model %s still has stock", m.DisplayName())
			}
		}
		return tx.Model.Delete(ctx, id)
	})
}

package service

import (
	"context"
	"time"

	"github.com/newNamejj/mobile-inventory-system/internal/erp/entity"
	"github.com/newNamejj/mobile-inventory-system/internal/erp/repository"
	"github.com/shopspring/decimal"
)

// RebateService 返利
type RebateService struct {
	run *runner
}

func NewRebateService(run *runner) *RebateService {
	return &RebateService{run: run}
}

type CreateRebateRequest struct {
	RebateType   string          `json:"rebate_type" binding:"required,oneof=sales purchase"`
	RelatedTable string          `json:"related_table"`
	RelatedID    string          `json:"related_id"`
	CustomerID   string          `json:"customer_id"`
	SupplierID   string          `json:"supplier_id"`
	Amount       decimal.Decimal `json:"amount"`
	ExpiryDate   string          `json:"expiry_date"`
	Remarks      string          `json:"remarks"`
}

type RebateStatusRequest struct {
	Status string `json:"status" binding:"required,rebate_status"`
}

// Create 销售返利必须指定客户，采购返利必须指定供应商
func (s *RebateService) Create(ctx context.Context, req *CreateRebateRequest, userID string) (*entity.Rebate, error) {
	if !req.Amount.IsPositive() {
		return nil, Invalid("amount must be positive")
	}

	rb := &entity.Rebate{
		ID:           entity.NewID(),
		RebateType:   req.RebateType,
		RelatedTable: req.RelatedTable,
		RelatedID:    req.RelatedID,
		Amount:       req.Amount,
		Status:       entity.RebateStatusPending,
		Remarks:      req.Remarks,
		CreatedBy:    userID,
	}
	if req.ExpiryDate != "" {
		expiry, err := time.ParseInLocation("2006-01-02", req.ExpiryDate, time.Local)
		if err != nil {
			return nil, Invalid("expiry_date must be YYYY-MM-DD")
		}
		rb.ExpiryDate = &expiry
	}

	switch req.RebateType {
	case entity.RebateTypeSales:
		if req.CustomerID == "" {
			return nil, Invalid("customer_id is required for sales rebates")
		}
		rb.CustomerID = &req.CustomerID
	case entity.RebateTypePurchase:
		if req.SupplierID == "" {
			return nil, Invalid("supplier_id is required for purchase rebates")
		}
		rb.SupplierID = &req.SupplierID
	default:
		return nil, Invalid("rebate_type must be sales or purchase")
	}

	err := s.run.tx(ctx, func(ctx context.Context, tx *repository.Repositories) error {
		if rb.CustomerID != nil {
			if _, err := tx.Customer.FindByID(ctx, *rb.CustomerID); err != nil {
				return missing(err, "customer", *rb.CustomerID)
			}
		}
		if rb.SupplierID != nil {
			if _, err := tx.Supplier.FindByID(ctx, *rb.SupplierID); err != nil {
				return missing(err, "supplier", *rb.SupplierID)
			}
		}
		return tx.Rebate.Create(ctx, rb)
	})
	if err != nil {
		return nil, err
	}
	return rb, nil
}

// UpdateStatus 更新返利状态，兑现要求返利待确认或已确认且未过期
func (s *RebateService) UpdateStatus(ctx context.Context, id string, req *RebateStatusRequest) (*entity.Rebate, error) {
	switch req.Status {
	case entity.RebateStatusPending, entity.RebateStatusConfirmed, entity.RebateStatusRedeemed, entity.RebateStatusCancelled:
	default:
		return nil, Invalid("invalid rebate status %q", req.Status)
	}
	var rb *entity.Rebate
	err := s.run.tx(ctx, func(ctx context.Context, tx *repository.Repositories) error {
		cur, err := tx.Rebate.FindByIDForUpdate(ctx, id)
		if err != nil {
			return missing(err, "rebate", id)
		}
		if req.Status == entity.RebateStatusRedeemed && !cur.Redeemable(time.Now()) {
			return Invalid("rebate %s is %s or expired and cannot be redeemed", id, cur.Status)
		}
		if err := tx.Rebate.UpdateStatus(ctx, id, req.Status); err != nil {
			return missing(err, "rebate", id)
		}
		rb, err = tx.Rebate.FindByID(ctx, id)
		return err
	})
	return rb, err
}

func (s *RebateService) Get(ctx context.Context, id string) (*entity.Rebate, error) {
	var rb *entity.Rebate
	err := s.run.read(ctx, func(ctx context.Context, repos *repository.Repositories) error {
		var err error
		rb, err = repos.Rebate.FindByID(ctx, id)
		return missing(err, "rebate", id)
	})
	return rb, err
}

// Delete 已兑现的返利不可删除
func (s *RebateService) Delete(ctx context.Context, id string) error {
	return s.run.tx(ctx, func(ctx context.Context, tx *repository.Repositories) error {
		rb, err := tx.Rebate.FindByIDForUpdate(ctx, id)
		if err != nil {
			return missing(err, "rebate", id)
		}
		if rb.Status == entity.RebateStatusRedeemed {
			return Invalid("redeemed rebate %s cannot be deleted", id)
		}
		return tx.Rebate.Delete(ctx, id)
	})
}

func (s *RebateService) List(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.Rebate, int64, error) {
	var items []entity.Rebate
	var total int64
	err := s.run.read(ctx, func(ctx context.Context, repos *repository.Repositories) error {
		var err error
		items, total, err = repos.Rebate.FindAll(ctx, page, pageSize, filters)
		return err
	})
	return items, total, err
}

// CustomerBalance 客户可用返利
func (s *RebateService) CustomerBalance(ctx context.Context, customerID string) (*entity.RebateBalance, error) {
	var bal *entity.RebateBalance
	err := s.run.read(ctx, func(ctx context.Context, repos *repository.Repositories) error {
		if _, err := repos.Customer.FindByID(ctx, customerID); err != nil {
			return missing(err, "customer", customerID)
		}
		var err error
		bal, err = repos.Rebate.Balance(ctx, "customer_id", customerID, time.Now())
		return err
	})
	return bal, err
}

// SupplierBalance 供应商可用返利
func (s *RebateService) SupplierBalance(ctx context.Context, supplierID string) (*entity.RebateBalance, error) {
	var bal *entity.RebateBalance
	err := s.run.read(ctx, func(ctx context.Context, repos *repository.Repositories) error {
		if _, err := repos.Supplier.FindByID(ctx, supplierID); err != nil {
			return missing(err, "supplier", supplierID)
		}
		var err error
		bal, err = repos.Rebate.Balance(ctx, "supplier_id", supplierID, time.Now())
		return err
	})
	return bal, err
}

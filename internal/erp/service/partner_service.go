package service

import (
	"context"

	"github.com/newNamejj/mobile-inventory-system/internal/erp/entity"
	"github.com/newNamejj/mobile-inventory-system/internal/erp/repository"
	"github.com/shopspring/decimal"
)

// PartnerService 供应商与客户
// 余额由财务流程维护，这里不接受 balance
type PartnerService struct {
	run *runner
}

func NewPartnerService(run *runner) *PartnerService {
	return &PartnerService{run: run}
}

type PartnerRequest struct {
	Name          string          `json:"name" binding:"required,max=200"`
	ContactPerson string          `json:"contact_person"`
	Phone         string          `json:"phone"`
	Email         string          `json:"email" binding:"omitempty,email"`
	Address       string          `json:"address"`
	CreditLimit   decimal.Decimal `json:"credit_limit"`
}

func (r *PartnerRequest) validate() error {
	if r.CreditLimit.IsNegative() {
		return Invalid("credit_limit must not be negative")
	}
	return nil
}

func (s *PartnerService) CreateSupplier(ctx context.Context, req *PartnerRequest) (*entity.Supplier, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	sp := &entity.Supplier{
		ID:            entity.NewID(),
		Name:          req.Name,
		ContactPerson: req.ContactPerson,
		Phone:         req.Phone,
		Email:         req.Email,
		Address:       req.Address,
		CreditLimit:   req.CreditLimit,
		Balance:       decimal.Zero,
	}
	err := s.run.tx(ctx, func(ctx context.Context, tx *repository.Repositories) error {
		return tx.Supplier.Create(ctx, sp)
	})
	return sp, err
}

func (s *PartnerService) UpdateSupplier(ctx context.Context, id string, req *PartnerRequest) (*entity.Supplier, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	var sp *entity.Supplier
	err := s.run.tx(ctx, func(ctx context.Context, tx *repository.Repositories) error {
		var err error
		sp, err = tx.Supplier.FindByID(ctx, id)
		if err != nil {
			return missing(err, "supplier", id)
		}
		sp.Name = req.Name
		sp.ContactPerson = req.ContactPerson
		sp.Phone = req.Phone
		sp.Email = req.Email
		sp.Address = req.Address
		sp.CreditLimit = req.CreditLimit
		return tx.Supplier.Update(ctx, sp)
	})
	return sp, err
}

func (s *PartnerService) GetSupplier(ctx context.Context, id string) (*entity.Supplier, error) {
	var sp *entity.Supplier
	err := s.run.read(ctx, func(ctx context.Context, repos *repository.Repositories) error {
		var err error
		sp, err = repos.Supplier.FindByID(ctx, id)
		return missing(err, "supplier", id)
	})
	return sp, err
}

func (s *PartnerService) ListSuppliers(ctx context.Context, page, pageSize int, keyword string) ([]entity.Supplier, int64, error) {
	var items []entity.Supplier
	var total int64
	err := s.run.read(ctx, func(ctx context.Context, repos *repository.Repositories) error {
		var err error
		items, total, err = repos.Supplier.FindAll(ctx, page, pageSize, keyword)
		return err
	})
	return items, total, err
}

// DeleteSupplier 有采购单、应付或返利的供应商不可删除
func (s *PartnerService) DeleteSupplier(ctx context.Context, id string) error {
	return s.run.tx(ctx, func(ctx context.Context, tx *repository.Repositories) error {
		sp, err := tx.Supplier.FindByID(ctx, id)
		if err != nil {
			return missing(err, "supplier", id)
		}
		refs, err := tx.Supplier.References(ctx, id)
		if err != nil {
			return err
		}
		if refs > 0 {
			return Invalid("supplier %s has %d related orders, payables or rebates", sp.Name, refs)
		}
		return tx.Supplier.Delete(ctx, id)
	})
}

func (s *PartnerService) CreateCustomer(ctx context.Context, req *PartnerRequest) (*entity.Customer, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	c := &entity.Customer{
		ID:            entity.NewID(),
		Name:          req.Name,
		ContactPerson: req.ContactPerson,
		Phone:         req.Phone,
		Email:         req.Email,
		Address:       req.Address,
		CreditLimit:   req.CreditLimit,
		Balance:       decimal.Zero,
	}
	err := s.run.tx(ctx, func(ctx context.Context, tx *repository.Repositories) error {
		return tx.Customer.Create(ctx, c)
	})
	return c, err
}

func (s *PartnerService) UpdateCustomer(ctx context.Context, id string, req *PartnerRequest) (*entity.Customer, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	var c *entity.Customer
	err := s.run.tx(ctx, func(ctx context.Context, tx *repository.Repositories) error {
		var err error
		c, err = tx.Customer.FindByID(ctx, id)
		if err != nil {
			return missing(err, "customer", id)
		}
		c.Name = req.Name
		c.ContactPerson = req.ContactPerson
		c.Phone = req.Phone
		c.Email = req.Email
		c.Address = req.Address
		c.CreditLimit = req.CreditLimit
		return tx.Customer.Update(ctx, c)
	})
	return c, err
}

func (s *PartnerService) GetCustomer(ctx context.Context, id string) (*entity.Customer, error) {
	var c *entity.Customer
	err := s.run.read(ctx, func(ctx context.Context, repos *repository.Repositories) error {
		var err error
		c, err = repos.Customer.FindByID(ctx, id)
		return missing(err, "customer", id)
	})
	return c, err
}

func (s *PartnerService) ListCustomers(ctx context.Context, page, pageSize int, keyword string) ([]entity.Customer, int64, error) {
	var items []entity.Customer
	var total int64
	err := s.run.read(ctx, func(ctx context.Context, repos *repository.Repositories) error {
		var err error
		items, total, err = repos.Customer.FindAll(ctx, page, pageSize, keyword)
		return err
	})
	return items, total, err
}

// DeleteCustomer 有销售单、应收或返利的客户不可删除
func (s *PartnerService) DeleteCustomer(ctx context.Context, id string) error {
	return s.run.tx(ctx, func(ctx context.Context, tx *repository.Repositories) error {
		c, err := tx.Customer.FindByID(ctx, id)
		if err != nil {
			return missing(err, "customer", id)
		}
		refs, err := tx.Customer.References(ctx, id)
		if err != nil {
			return err
		}
		if refs > 0 {
			return Invalid("customer %s has %d related orders, receivables or rebates", c.Name, refs)
		}
		return tx.Customer.Delete(ctx, id)
	})
}

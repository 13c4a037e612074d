package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/newNamejj/mobile-inventory-system/internal/erp/entity"
	"github.com/newNamejj/mobile-inventory-system/internal/erp/repository"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// FinanceService 财务对账: 应收应付、收付款、利润
// 往来单位 balance 始终等于其未结应收/应付之和
type FinanceService struct {
	run      *runner
	termDays int
	logger   *zap.Logger
	nowFunc  func() time.Time
}

func NewFinanceService(run *runner, termDays int, logger *zap.Logger) *FinanceService {
	return &FinanceService{run: run, termDays: termDays, logger: logger, nowFunc: time.Now}
}

const paymentDateLayout = "2006-01-02"

// ReceivePaymentRequest 收款核销应收
type ReceivePaymentRequest struct {
	ReceivableID  string          `json:"receivable_id" binding:"required"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentMethod string          `json:"payment_method" binding:"required,payment_method"`
	PaymentDate   string          `json:"payment_date" binding:"required"`
	Remarks       string          `json:"remarks"`
}

// MakePaymentRequest 付款核销应付
type MakePaymentRequest struct {
	PayableID     string          `json:"payable_id" binding:"required"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentMethod string          `json:"payment_method" binding:"required,payment_method"`
	PaymentDate   string          `json:"payment_date" binding:"required"`
	Remarks       string          `json:"remarks"`
}

// settlement 校验后的一笔收付款
type settlement struct {
	amount  decimal.Decimal
	method  string
	date    time.Time
	remarks string
}

func newSettlement(amount decimal.Decimal, method, date, remarks string) (*settlement, error) {
	if !amount.IsPositive() {
		return nil, Invalid("amount must be positive")
	}
	if !amount.Equal(amount.Round(2)) {
		return nil, Invalid("amount supports at most two decimal places")
	}
	if method == "" {
		return nil, Invalid("payment_method is required")
	}
	paidOn, err := time.ParseInLocation(paymentDateLayout, date, time.UTC)
	if err != nil {
		return nil, Invalid("payment_date must be YYYY-MM-DD")
	}
	return &settlement{amount: amount, method: method, date: paidOn, remarks: remarks}, nil
}

func (s *FinanceService) dueDate() *time.Time {
	due := s.nowFunc().AddDate(0, 0, s.termDays)
	return &due
}

// OpenPayable 采购单完成时生成应付，供应商余额增加
func (s *FinanceService) OpenPayable(ctx context.Context, tx *repository.Repositories, po *entity.PurchaseOrder) (*entity.Payable, error) {
	p := &entity.Payable{
		ID:           entity.NewID(),
		SupplierID:   po.SupplierID,
		RelatedTable: entity.RelatedPurchaseOrder,
		RelatedID:    po.ID,
		Amount:       po.TotalAmount,
		PaidAmount:   decimal.Zero,
		DueDate:      s.dueDate(),
		Status:       entity.SettlementStatus(po.TotalAmount, decimal.Zero),
		Remarks:      "采购单 " + po.OrderNumber,
	}
	if err := tx.Payable.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("open payable: %w", err)
	}
	if err := tx.Supplier.AdjustBalance(ctx, po.SupplierID, p.Amount); err != nil {
		return nil, missing(err, "supplier", po.SupplierID)
	}
	if err := s.verifySupplier(ctx, tx, po.SupplierID); err != nil {
		return nil, err
	}
	return p, nil
}

// OpenReceivable 销售单完成时按实收金额生成应收，客户余额增加
func (s *FinanceService) OpenReceivable(ctx context.Context, tx *repository.Repositories, so *entity.SalesOrder) (*entity.Receivable, error) {
	rec := &entity.Receivable{
		ID:           entity.NewID(),
		CustomerID:   so.CustomerID,
		RelatedTable: entity.RelatedSalesOrder,
		RelatedID:    so.ID,
		Amount:       so.FinalAmount,
		PaidAmount:   decimal.Zero,
		DueDate:      s.dueDate(),
		Status:       entity.SettlementStatus(so.FinalAmount, decimal.Zero),
		Remarks:      "销售单 " + so.OrderNumber,
	}
	if err := tx.Receivable.Create(ctx, rec); err != nil {
		return nil, fmt.Errorf("open receivable: %w", err)
	}
	if err := tx.Customer.AdjustBalance(ctx, so.CustomerID, rec.Amount); err != nil {
		return nil, missing(err, "customer", so.CustomerID)
	}
	if err := tx.SalesOrder.UpdatePaymentStatus(ctx, so.ID, rec.Status); err != nil {
		return nil, err
	}
	so.PaymentStatus = rec.Status
	if err := s.verifyCustomer(ctx, tx, so.CustomerID); err != nil {
		return nil, err
	}
	return rec, nil
}

// RecordProfit 为销售明细写入利润记录，每个明细只写一次
func (s *FinanceService) RecordProfit(ctx context.Context, tx *repository.Repositories, salesOrderID string, item *entity.SalesOrderItem, costPrice decimal.Decimal) (*entity.ProfitRecord, error) {
	rec := entity.CalculateProfit(item.UnitPrice, costPrice, item.Quantity)
	rec.ID = entity.NewID()
	rec.SalesOrderID = salesOrderID
	rec.SalesOrderItemID = item.ID
	rec.ModelID = item.ModelID
	if err := tx.Profit.Create(ctx, &rec); err != nil {
		return nil, fmt.Errorf("record profit: %w", err)
	}
	return &rec, nil
}

// ReceivePayment 收款核销应收
func (s *FinanceService) ReceivePayment(ctx context.Context, req *ReceivePaymentRequest, userID string) (*entity.Receivable, error) {
	pay, err := newSettlement(req.Amount, req.PaymentMethod, req.PaymentDate, req.Remarks)
	if err != nil {
		return nil, err
	}

	var rec *entity.Receivable
	err = s.run.tx(ctx, func(ctx context.Context, tx *repository.Repositories) error {
		var err error
		rec, err = tx.Receivable.FindByIDForUpdate(ctx, req.ReceivableID)
		if err != nil {
			return missing(err, "receivable", req.ReceivableID)
		}
		if err := rec.ApplyPayment(pay.amount); err != nil {
			if errors.Is(err, entity.ErrExceedsOutstanding) {
				return &OverpaymentError{Remaining: rec.Outstanding()}
			}
			return err
		}
		if err := tx.Receivable.UpdatePaid(ctx, rec); err != nil {
			return err
		}
		if err := tx.Customer.AdjustBalance(ctx, rec.CustomerID, pay.amount.Neg()); err != nil {
			return missing(err, "customer", rec.CustomerID)
		}
		if err := tx.Payment.Create(ctx, &entity.PaymentRecord{
			ID:            entity.NewID(),
			PaymentType:   entity.PaymentTypeReceive,
			RelatedTable:  entity.RelatedReceivable,
			RelatedID:     rec.ID,
			Amount:        pay.amount,
			PaymentMethod: pay.method,
			PaymentDate:   pay.date,
			OperatorID:    userID,
			Remarks:       pay.remarks,
		}); err != nil {
			return fmt.Errorf("record payment: %w", err)
		}
		if rec.RelatedTable == entity.RelatedSalesOrder {
			if err := tx.SalesOrder.UpdatePaymentStatus(ctx, rec.RelatedID, rec.Status); err != nil {
				return err
			}
		}
		return s.verifyCustomer(ctx, tx, rec.CustomerID)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("payment received",
		zap.String("receivable_id", rec.ID),
		zap.String("amount", pay.amount.StringFixed(2)),
		zap.String("status", rec.Status),
		zap.String("user_id", userID),
	)
	return rec, nil
}

// MakePayment 付款核销应付
func (s *FinanceService) MakePayment(ctx context.Context, req *MakePaymentRequest, userID string) (*entity.Payable, error) {
	pay, err := newSettlement(req.Amount, req.PaymentMethod, req.PaymentDate, req.Remarks)
	if err != nil {
		return nil, err
	}

	var p *entity.Payable
	err = s.run.tx(ctx, func(ctx context.Context, tx *repository.Repositories) error {
		var err error
		p, err = tx.Payable.FindByIDForUpdate(ctx, req.PayableID)
		if err != nil {
			return missing(err, "payable", req.PayableID)
		}
		if err := p.ApplyPayment(pay.amount); err != nil {
			if errors.Is(err, entity.ErrExceedsOutstanding) {
				return &OverpaymentError{Remaining: p.Outstanding()}
			}
			return err
		}
		if err := tx.Payable.UpdatePaid(ctx, p); err != nil {
			return err
		}
		if err := tx.Supplier.AdjustBalance(ctx, p.SupplierID, pay.amount.Neg()); err != nil {
			return missing(err, "supplier", p.SupplierID)
		}
		if err := tx.Payment.Create(ctx, &entity.PaymentRecord{
			ID:            entity.NewID(),
			PaymentType:   entity.PaymentTypePay,
			RelatedTable:  entity.RelatedPayable,
			RelatedID:     p.ID,
			Amount:        pay.amount,
			PaymentMethod: pay.method,
			PaymentDate:   pay.date,
			OperatorID:    userID,
			Remarks:       pay.remarks,
		}); err != nil {
			return fmt.Errorf("record payment: %w", err)
		}
		return s.verifySupplier(ctx, tx, p.SupplierID)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("payment made",
		zap.String("payable_id", p.ID),
		zap.String("amount", pay.amount.StringFixed(2)),
		zap.String("status", p.Status),
		zap.String("user_id", userID),
	)
	return p, nil
}

// verifyCustomer 客户余额必须等于未收应收之和
func (s *FinanceService) verifyCustomer(ctx context.Context, tx *repository.Repositories, customerID string) error {
	c, err := tx.Customer.FindByID(ctx, customerID)
	if err != nil {
		return missing(err, "customer", customerID)
	}
	outstanding, err := tx.Receivable.OutstandingByCustomer(ctx, customerID)
	if err != nil {
		return err
	}
	if !c.Balance.Equal(outstanding) {
		return fmt.Errorf("%w: customer %s balance %s, outstanding receivables %s",
			ErrInvariantViolation, customerID, c.Balance.StringFixed(2), outstanding.StringFixed(2))
	}
	return nil
}

// verifySupplier 供应商余额必须等于未付应付之和
func (s *FinanceService) verifySupplier(ctx context.Context, tx *repository.Repositories, supplierID string) error {
	sp, err := tx.Supplier.FindByID(ctx, supplierID)
	if err != nil {
		return missing(err, "supplier", supplierID)
	}
	outstanding, err := tx.Payable.OutstandingBySupplier(ctx, supplierID)
	if err != nil {
		return err
	}
	if !sp.Balance.Equal(outstanding) {
		return fmt.Errorf("%w: supplier %s balance %s, outstanding payables %s",
			ErrInvariantViolation, supplierID, sp.Balance.StringFixed(2), outstanding.StringFixed(2))
	}
	return nil
}

// ListReceivables 应收列表
func (s *FinanceService) ListReceivables(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.Receivable, int64, error) {
	var items []entity.Receivable
	var total int64
	err := s.run.read(ctx, func(ctx context.Context, repos *repository.Repositories) error {
		var err error
		items, total, err = repos.Receivable.FindAll(ctx, page, pageSize, filters)
		return err
	})
	return items, total, err
}

// ListPayables 应付列表
func (s *FinanceService) ListPayables(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.Payable, int64, error) {
	var items []entity.Payable
	var total int64
	err := s.run.read(ctx, func(ctx context.Context, repos *repository.Repositories) error {
		var err error
		items, total, err = repos.Payable.FindAll(ctx, page, pageSize, filters)
		return err
	})
	return items, total, err
}

// ListPayments 收付款记录
func (s *FinanceService) ListPayments(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.PaymentRecord, int64, error) {
	var items []entity.PaymentRecord
	var total int64
	err := s.run.read(ctx, func(ctx context.Context, repos *repository.Repositories) error {
		var err error
		items, total, err = repos.Payment.FindAll(ctx, page, pageSize, filters)
		return err
	})
	return items, total, err
}

// ListProfit 利润明细
func (s *FinanceService) ListProfit(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.ProfitRecord, int64, error) {
	var items []entity.ProfitRecord
	var total int64
	err := s.run.read(ctx, func(ctx context.Context, repos *repository.Repositories) error {
		var err error
		items, total, err = repos.Profit.FindAll(ctx, page, pageSize, filters)
		return err
	})
	return items, total, err
}

// ProfitSummary 利润汇总
func (s *FinanceService) ProfitSummary(ctx context.Context, filters map[string]string) (*entity.ProfitSummary, error) {
	var summary *entity.ProfitSummary
	err := s.run.read(ctx, func(ctx context.Context, repos *repository.Repositories) error {
		var err error
		summary, err = repos.Profit.Summary(ctx, filters)
		return err
	})
	return summary, err
}

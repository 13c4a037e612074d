package service

import (
	"context"
	"time"

	"github.com/newNamejj/mobile-inventory-system/internal/erp/entity"
	"github.com/newNamejj/mobile-inventory-system/internal/erp/repository"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// SalesService 销售订单状态机
// 下单即预留库存，发货消耗预留，取消释放预留
type SalesService struct {
	run     *runner
	stock   *Accessor
	ledger  *Recorder
	finance *FinanceService
	logger  *zap.Logger
}

func NewSalesService(run *runner, stock *Accessor, ledger *Recorder, finance *FinanceService, logger *zap.Logger) *SalesService {
	return &SalesService{run: run, stock: stock, ledger: ledger, finance: finance, logger: logger}
}

// CreateSalesOrderRequest 创建销售单
type CreateSalesOrderRequest struct {
	CustomerID string           `json:"customer_id" binding:"required"`
	Items      []OrderItemInput `json:"items" binding:"required,min=1,dive"`
	Discount   decimal.Decimal  `json:"discount"`
	Remarks    string           `json:"remarks"`
}

// Create 创建销售单并预留全部明细库存，任一明细库存不足则整单失败
func (s *SalesService) Create(ctx context.Context, req *CreateSalesOrderRequest, userID string) (*entity.SalesOrder, error) {
	if req.CustomerID == "" {
		return nil, Invalid("customer_id is required")
	}
	if req.Discount.IsNegative() {
		return nil, Invalid("discount must not be negative")
	}

	var so *entity.SalesOrder
	err := s.run.tx(ctx, func(ctx context.Context, tx *repository.Repositories) error {
		if _, err := tx.Customer.FindByID(ctx, req.CustomerID); err != nil {
			return missing(err, "customer", req.CustomerID)
		}
		lines, total, err := priceItems(ctx, tx, req.Items)
		if err != nil {
			return err
		}
		if req.Discount.GreaterThan(total) {
			return Invalid("discount %s exceeds order total %s", req.Discount.StringFixed(2), total.StringFixed(2))
		}
		number, err := nextOrderNumber(entity.SalesOrderPrefix, time.Now(), func(prefix string) (string, error) {
			return tx.SalesOrder.LastOrderNumber(ctx, prefix)
		})
		if err != nil {
			return err
		}

		so = &entity.SalesOrder{
			ID:            entity.NewID(),
			OrderNumber:   number,
			CustomerID:    req.CustomerID,
			TotalAmount:   total,
			Discount:      req.Discount,
			FinalAmount:   total.Sub(req.Discount),
			Status:        entity.OrderStatusPending,
			PaymentStatus: entity.PaymentStatusUnpaid,
			Remarks:       req.Remarks,
			CreatedBy:     userID,
		}
		for i, line := range lines {
			if err := s.stock.Reserve(ctx, tx, line.model.ID, line.quantity); err != nil {
				return err
			}
			so.Items = append(so.Items, entity.SalesOrderItem{
				ID:           entity.NewID(),
				SalesOrderID: so.ID,
				LineNo:       i + 1,
				ModelID:      line.model.ID,
				Quantity:     line.quantity,
				UnitPrice:    line.unitPrice,
				TotalPrice:   line.total,
			})
		}
		return tx.SalesOrder.Create(ctx, so)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("sales order created",
		zap.String("order_number", so.OrderNumber),
		zap.String("customer_id", so.CustomerID),
		zap.String("final_amount", so.FinalAmount.StringFixed(2)),
		zap.String("user_id", userID),
	)
	return so, nil
}

// Deliver 销售发货，可分批
func (s *SalesService) Deliver(ctx context.Context, id string, req *DeliverRequest, userID string) (*entity.SalesOrder, error) {
	requested, err := aggregateLines(req.lines())
	if err != nil {
		return nil, err
	}

	var so *entity.SalesOrder
	err = s.run.tx(ctx, func(ctx context.Context, tx *repository.Repositories) error {
		var err error
		so, err = tx.SalesOrder.FindByIDForUpdate(ctx, id)
		if err != nil {
			return missing(err, "sales order", id)
		}
		return s.deliver(ctx, tx, so, requested, userID)
	})
	if err != nil {
		return nil, err
	}
	return so, nil
}

// deliver 唯一的发货路径，调用方需持有订单行锁
func (s *SalesService) deliver(ctx context.Context, tx *repository.Repositories, so *entity.SalesOrder, requested map[string]int, userID string) error {
	if !entity.CanFulfil(so.Status) {
		return &transitionError{from: so.Status, to: "delivered"}
	}

	plan, err := planFulfilment(salesFulfilItems(so), requested)
	if err != nil {
		return err
	}

	for i := range so.Items {
		qty := plan[i]
		if qty == 0 {
			continue
		}
		item := &so.Items[i]
		if err := s.stock.ShipReserved(ctx, tx, item.ModelID, qty); err != nil {
			return err
		}
		if err := s.ledger.Record(ctx, tx, Movement{
			ModelID:      item.ModelID,
			Direction:    entity.DirectionOut,
			Quantity:     qty,
			RelatedTable: entity.RelatedSalesOrder,
			RelatedID:    so.ID,
			Actor:        userID,
			Remarks:      "销售出库 " + so.OrderNumber,
		}); err != nil {
			return err
		}
		item.DeliveredQuantity += qty
		if err := tx.SalesOrder.UpdateDelivered(ctx, item.ID, item.DeliveredQuantity); err != nil {
			return err
		}
	}

	so.Status = so.DeriveStatus()
	if so.Status == entity.OrderStatusCompleted {
		now := time.Now()
		so.CompletedAt = &now
		if err := s.complete(ctx, tx, so); err != nil {
			return err
		}
	}
	if err := tx.SalesOrder.UpdateStatus(ctx, so); err != nil {
		return err
	}

	if so.Status == entity.OrderStatusCompleted {
		s.logger.Info("sales order completed",
			zap.String("order_number", so.OrderNumber),
			zap.String("user_id", userID),
		)
	}
	return nil
}

// complete 写入每个明细的利润记录并生成应收
func (s *SalesService) complete(ctx context.Context, tx *repository.Repositories, so *entity.SalesOrder) error {
	ids := make([]string, len(so.Items))
	for i, item := range so.Items {
		ids[i] = item.ModelID
	}
	models, err := tx.Model.FindByIDs(ctx, ids)
	if err != nil {
		return err
	}
	for i := range so.Items {
		item := &so.Items[i]
		m, ok := models[item.ModelID]
		if !ok {
			return &notFoundError{what: "model", id: item.ModelID}
		}
		if _, err := s.finance.RecordProfit(ctx, tx, so.ID, item, m.PurchasePrice); err != nil {
			return err
		}
	}
	_, err = s.finance.OpenReceivable(ctx, tx, so)
	return err
}

// Cancel 取消销售单，仅限 pending，释放全部预留
func (s *SalesService) Cancel(ctx context.Context, id, userID string) (*entity.SalesOrder, error) {
	var so *entity.SalesOrder
	err := s.run.tx(ctx, func(ctx context.Context, tx *repository.Repositories) error {
		var err error
		so, err = tx.SalesOrder.FindByIDForUpdate(ctx, id)
		if err != nil {
			return missing(err, "sales order", id)
		}
		if !entity.CanCancel(so.Status) {
			return &transitionError{from: so.Status, to: entity.OrderStatusCancelled}
		}
		for _, item := range so.Items {
			if err := s.stock.Release(ctx, tx, item.ModelID, item.Quantity); err != nil {
				return err
			}
		}
		so.Status = entity.OrderStatusCancelled
		return tx.SalesOrder.UpdateStatus(ctx, so)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("sales order cancelled",
		zap.String("order_number", so.OrderNumber),
		zap.String("user_id", userID),
	)
	return so, nil
}

// UpdateStatus 状态覆盖: completed 走发货路径补齐剩余数量，cancelled 走取消
func (s *SalesService) UpdateStatus(ctx context.Context, id string, req *StatusRequest, userID string) (*entity.SalesOrder, error) {
	switch req.Status {
	case entity.OrderStatusCompleted:
	case entity.OrderStatusCancelled:
		return s.Cancel(ctx, id, userID)
	default:
		return nil, Invalid("status can only be set to completed or cancelled")
	}

	var so *entity.SalesOrder
	err := s.run.tx(ctx, func(ctx context.Context, tx *repository.Repositories) error {
		var err error
		so, err = tx.SalesOrder.FindByIDForUpdate(ctx, id)
		if err != nil {
			return missing(err, "sales order", id)
		}
		if !entity.CanFulfil(so.Status) {
			return &transitionError{from: so.Status, to: entity.OrderStatusCompleted}
		}
		requested, err := aggregateLines(remainingLines(salesFulfilItems(so)))
		if err != nil {
			return err
		}
		return s.deliver(ctx, tx, so, requested, userID)
	})
	if err != nil {
		return nil, err
	}
	return so, nil
}

// Get 销售单详情
func (s *SalesService) Get(ctx context.Context, id string) (*entity.SalesOrder, error) {
	var so *entity.SalesOrder
	err := s.run.read(ctx, func(ctx context.Context, repos *repository.Repositories) error {
		var err error
		so, err = repos.SalesOrder.FindByID(ctx, id)
		return missing(err, "sales order", id)
	})
	return so, err
}

// List 销售单列表
func (s *SalesService) List(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.SalesOrder, int64, error) {
	var items []entity.SalesOrder
	var total int64
	err := s.run.read(ctx, func(ctx context.Context, repos *repository.Repositories) error {
		var err error
		items, total, err = repos.SalesOrder.FindAll(ctx, page, pageSize, filters)
		return err
	})
	return items, total, err
}

func salesFulfilItems(so *entity.SalesOrder) []fulfilItem {
	items := make([]fulfilItem, len(so.Items))
	for i, item := range so.Items {
		items[i] = fulfilItem{id: item.ID, modelID: item.ModelID, remaining: item.Remaining()}
	}
	return items
}

package service

import (
	"context"
	"time"

	"github.com/newNamejj/mobile-inventory-system/internal/erp/entity"
	"github.com/newNamejj/mobile-inventory-system/internal/erp/repository"
	"go.uber.org/zap"
)

// PurchaseService 采购订单状态机
// pending -> partial -> completed, pending -> cancelled
type PurchaseService struct {
	run     *runner
	stock   *Accessor
	ledger  *Recorder
	finance *FinanceService
	logger  *zap.Logger
}

func NewPurchaseService(run *runner, stock *Accessor, ledger *Recorder, finance *FinanceService, logger *zap.Logger) *PurchaseService {
	return &PurchaseService{run: run, stock: stock, ledger: ledger, finance: finance, logger: logger}
}

// CreatePurchaseOrderRequest 创建采购单
type CreatePurchaseOrderRequest struct {
	SupplierID string           `json:"supplier_id" binding:"required"`
	Items      []OrderItemInput `json:"items" binding:"required,min=1,dive"`
	Remarks    string           `json:"remarks"`
}

// Create 创建采购单
func (s *PurchaseService) Create(ctx context.Context, req *CreatePurchaseOrderRequest, userID string) (*entity.PurchaseOrder, error) {
	if req.SupplierID == "" {
		return nil, Invalid("supplier_id is required")
	}

	var po *entity.PurchaseOrder
	err := s.run.tx(ctx, func(ctx context.Context, tx *repository.Repositories) error {
		if _, err := tx.Supplier.FindByID(ctx, req.SupplierID); err != nil {
			return missing(err, "supplier", req.SupplierID)
		}
		lines, total, err := priceItems(ctx, tx, req.Items)
		if err != nil {
			return err
		}
		number, err := nextOrderNumber(entity.PurchaseOrderPrefix, time.Now(), func(prefix string) (string, error) {
			return tx.PurchaseOrder.LastOrderNumber(ctx, prefix)
		})
		if err != nil {
			return err
		}

		po = &entity.PurchaseOrder{
			ID:          entity.NewID(),
			OrderNumber: number,
			SupplierID:  req.SupplierID,
			TotalAmount: total,
			Status:      entity.OrderStatusPending,
			Remarks:     req.Remarks,
			CreatedBy:   userID,
		}
		for i, line := range lines {
			po.Items = append(po.Items, entity.PurchaseOrderItem{
				ID:              entity.NewID(),
				PurchaseOrderID: po.ID,
				LineNo:          i + 1,
				ModelID:         line.model.ID,
				Quantity:        line.quantity,
				UnitPrice:       line.unitPrice,
				TotalPrice:      line.total,
			})
		}
		return tx.PurchaseOrder.Create(ctx, po)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("purchase order created",
		zap.String("order_number", po.OrderNumber),
		zap.String("supplier_id", po.SupplierID),
		zap.String("total", po.TotalAmount.StringFixed(2)),
		zap.String("user_id", userID),
	)
	return po, nil
}

// Receive 采购收货，可分批
func (s *PurchaseService) Receive(ctx context.Context, id string, req *ReceiveRequest, userID string) (*entity.PurchaseOrder, error) {
	requested, err := aggregateLines(req.lines())
	if err != nil {
		return nil, err
	}

	var po *entity.PurchaseOrder
	err = s.run.tx(ctx, func(ctx context.Context, tx *repository.Repositories) error {
		var err error
		po, err = tx.PurchaseOrder.FindByIDForUpdate(ctx, id)
		if err != nil {
			return missing(err, "purchase order", id)
		}
		return s.receive(ctx, tx, po, requested, userID)
	})
	if err != nil {
		return nil, err
	}
	return po, nil
}

// receive 唯一的收货路径，调用方需持有订单行锁
func (s *PurchaseService) receive(ctx context.Context, tx *repository.Repositories, po *entity.PurchaseOrder, requested map[string]int, userID string) error {
	if !entity.CanFulfil(po.Status) {
		return &transitionError{from: po.Status, to: "received"}
	}

	plan, err := planFulfilment(purchaseFulfilItems(po), requested)
	if err != nil {
		return err
	}

	for i := range po.Items {
		qty := plan[i]
		if qty == 0 {
			continue
		}
		item := &po.Items[i]
		if err := s.stock.Receive(ctx, tx, item.ModelID, qty); err != nil {
			return err
		}
		if err := s.ledger.Record(ctx, tx, Movement{
			ModelID:      item.ModelID,
			Direction:    entity.DirectionIn,
			Quantity:     qty,
			RelatedTable: entity.RelatedPurchaseOrder,
			RelatedID:    po.ID,
			Actor:        userID,
			Remarks:      "采购入库 " + po.OrderNumber,
		}); err != nil {
			return err
		}
		item.ReceivedQuantity += qty
		if err := tx.PurchaseOrder.UpdateReceived(ctx, item.ID, item.ReceivedQuantity); err != nil {
			return err
		}
	}

	po.Status = po.DeriveStatus()
	if po.Status == entity.OrderStatusCompleted {
		now := time.Now()
		po.CompletedAt = &now
		if _, err := s.finance.OpenPayable(ctx, tx, po); err != nil {
			return err
		}
	}
	if err := tx.PurchaseOrder.UpdateStatus(ctx, po); err != nil {
		return err
	}

	if po.Status == entity.OrderStatusCompleted {
		s.logger.Info("purchase order completed",
			zap.String("order_number", po.OrderNumber),
			zap.String("user_id", userID),
		)
	}
	return nil
}

// Cancel 取消采购单，仅限 pending，无库存影响
func (s *PurchaseService) Cancel(ctx context.Context, id, userID string) (*entity.PurchaseOrder, error) {
	var po *entity.PurchaseOrder
	err := s.run.tx(ctx, func(ctx context.Context, tx *repository.Repositories) error {
		var err error
		po, err = tx.PurchaseOrder.FindByIDForUpdate(ctx, id)
		if err != nil {
			return missing(err, "purchase order", id)
		}
		return s.cancel(ctx, tx, po)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("purchase order cancelled",
		zap.String("order_number", po.OrderNumber),
		zap.String("user_id", userID),
	)
	return po, nil
}

func (s *PurchaseService) cancel(ctx context.Context, tx *repository.Repositories, po *entity.PurchaseOrder) error {
	if !entity.CanCancel(po.Status) {
		return &transitionError{from: po.Status, to: entity.OrderStatusCancelled}
	}
	po.Status = entity.OrderStatusCancelled
	return tx.PurchaseOrder.UpdateStatus(ctx, po)
}

// UpdateStatus 状态覆盖: completed 走收货路径补齐剩余数量，cancelled 走取消
func (s *PurchaseService) UpdateStatus(ctx context.Context, id string, req *StatusRequest, userID string) (*entity.PurchaseOrder, error) {
	switch req.Status {
	case entity.OrderStatusCompleted:
	case entity.OrderStatusCancelled:
		return s.Cancel(ctx, id, userID)
	default:
		return nil, Invalid("status can only be set to completed or cancelled")
	}

	var po *entity.PurchaseOrder
	err := s.run.tx(ctx, func(ctx context.Context, tx *repository.Repositories) error {
		var err error
		po, err = tx.PurchaseOrder.FindByIDForUpdate(ctx, id)
		if err != nil {
			return missing(err, "purchase order", id)
		}
		if !entity.CanFulfil(po.Status) {
			return &transitionError{from: po.Status, to: entity.OrderStatusCompleted}
		}
		requested, err := aggregateLines(remainingLines(purchaseFulfilItems(po)))
		if err != nil {
			return err
		}
		return s.receive(ctx, tx, po, requested, userID)
	})
	if err != nil {
		return nil, err
	}
	return po, nil
}

// Get 采购单详情
func (s *PurchaseService) Get(ctx context.Context, id string) (*entity.PurchaseOrder, error) {
	var po *entity.PurchaseOrder
	err := s.run.read(ctx, func(ctx context.Context, repos *repository.Repositories) error {
		var err error
		po, err = repos.PurchaseOrder.FindByID(ctx, id)
		return missing(err, "purchase order", id)
	})
	return po, err
}

// List 采购单列表
func (s *PurchaseService) List(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.PurchaseOrder, int64, error) {
	var items []entity.PurchaseOrder
	var total int64
	err := s.run.read(ctx, func(ctx context.Context, repos *repository.Repositories) error {
		var err error
		items, total, err = repos.PurchaseOrder.FindAll(ctx, page, pageSize, filters)
		return err
	})
	return items, total, err
}

func purchaseFulfilItems(po *entity.PurchaseOrder) []fulfilItem {
	items := make([]fulfilItem, len(po.Items))
	for i, item := range po.Items {
		items[i] = fulfilItem{id: item.ID, modelID: item.ModelID, remaining: item.Remaining()}
	}
	return items
}

package service

import (
	"context"
	"errors"
	"time"

	"github.com/newNamejj/mobile-inventory-system/internal/erp/entity"
	"github.com/newNamejj/mobile-inventory-system/internal/erp/repository"
	"github.com/shopspring/decimal"
)

// OrderItemInput 下单明细，单价由调用方给出并在下单时固化
type OrderItemInput struct {
	ModelID   string          `json:"model_id" binding:"required"`
	Quantity  int             `json:"quantity" binding:"required,gt=0"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// FulfilLine 一次收货/发货的明细行
type FulfilLine struct {
	ItemID   string
	Quantity int
}

// ReceiveLine 收货明细
type ReceiveLine struct {
	ItemID           string `json:"item_id" binding:"required"`
	ReceivedQuantity int    `json:"received_quantity" binding:"required,gt=0"`
}

// ReceiveRequest PUT /purchases/orders/:id/receive
type ReceiveRequest struct {
	Items []ReceiveLine `json:"items" binding:"required,min=1,dive"`
}

func (r *ReceiveRequest) lines() []FulfilLine {
	lines := make([]FulfilLine, 0, len(r.Items))
	for _, item := range r.Items {
		lines = append(lines, FulfilLine{ItemID: item.ItemID, Quantity: item.ReceivedQuantity})
	}
	return lines
}

// DeliverLine 发货明细
type DeliverLine struct {
	ItemID            string `json:"item_id" binding:"required"`
	DeliveredQuantity int    `json:"delivered_quantity" binding:"required,gt=0"`
}

// DeliverRequest PUT /sales/orders/:id/deliver
type DeliverRequest struct {
	Items []DeliverLine `json:"items" binding:"required,min=1,dive"`
}

func (r *DeliverRequest) lines() []FulfilLine {
	lines := make([]FulfilLine, 0, len(r.Items))
	for _, item := range r.Items {
		lines = append(lines, FulfilLine{ItemID: item.ItemID, Quantity: item.DeliveredQuantity})
	}
	return lines
}

// StatusRequest 状态覆盖请求，只接受 completed / cancelled
type StatusRequest struct {
	Status string `json:"status" binding:"required,order_status"`
}

// pricedLine 校验后的下单明细
type pricedLine struct {
	model     *entity.PhoneModel
	quantity  int
	unitPrice decimal.Decimal
	total     decimal.Decimal
}

// priceItems 校验明细并计算金额，机型不存在返回 NotFound
func priceItems(ctx context.Context, tx *repository.Repositories, items []OrderItemInput) ([]pricedLine, decimal.Decimal, error) {
	if len(items) == 0 {
		return nil, decimal.Zero, Invalid("order must contain at least one item")
	}

	ids := make([]string, 0, len(items))
	for i, item := range items {
		if item.ModelID == "" {
			return nil, decimal.Zero, Invalid("item %d: model_id is required", i+1)
		}
		if item.Quantity <= 0 {
			return nil, decimal.Zero, Invalid("item %d: quantity must be positive", i+1)
		}
		if item.UnitPrice.IsNegative() {
			return nil, decimal.Zero, Invalid("item %d: unit_price must not be negative", i+1)
		}
		ids = append(ids, item.ModelID)
	}

	models, err := tx.Model.FindByIDs(ctx, ids)
	if err != nil {
		return nil, decimal.Zero, err
	}

	lines := make([]pricedLine, 0, len(items))
	total := decimal.Zero
	for _, item := range items {
		m, ok := models[item.ModelID]
		if !ok {
			return nil, decimal.Zero, &notFoundError{what: "model", id: item.ModelID}
		}
		lineTotal := item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
		total = total.Add(lineTotal)
		lines = append(lines, pricedLine{
			model:     m,
			quantity:  item.Quantity,
			unitPrice: item.UnitPrice,
			total:     lineTotal,
		})
	}
	return lines, total, nil
}

// nextOrderNumber 事务内生成单号
func nextOrderNumber(kind string, now time.Time, last func(prefix string) (string, error)) (string, error) {
	prefix := entity.OrderNumberPrefix(kind, now)
	lastNumber, err := last(prefix)
	if err != nil {
		return "", err
	}
	number, err := entity.NextOrderNumber(prefix, lastNumber)
	if errors.Is(err, entity.ErrOrderSeqExhausted) {
		return "", Invalid("order numbers for %s are exhausted", prefix)
	}
	return number, err
}

// aggregateLines 合并重复明细，校验数量为正
func aggregateLines(lines []FulfilLine) (map[string]int, error) {
	if len(lines) == 0 {
		return nil, Invalid("items are required")
	}
	qty := make(map[string]int, len(lines))
	for i, line := range lines {
		if line.ItemID == "" {
			return nil, Invalid("line %d: item_id is required", i+1)
		}
		if line.Quantity <= 0 {
			return nil, Invalid("line %d: quantity must be positive", i+1)
		}
		qty[line.ItemID] += line.Quantity
	}
	return qty, nil
}

// fulfilItem 订单明细的履约视图
type fulfilItem struct {
	id        string
	modelID   string
	remaining int
}

// planFulfilment 校验每行都属于订单且不超过剩余数量，按明细顺序返回
func planFulfilment(items []fulfilItem, requested map[string]int) ([]int, error) {
	known := make(map[string]bool, len(items))
	plan := make([]int, len(items))
	for i, item := range items {
		known[item.id] = true
		q, ok := requested[item.id]
		if !ok {
			continue
		}
		if q > item.remaining {
			return nil, Invalid("item %s: quantity %d exceeds remaining %d", item.id, q, item.remaining)
		}
		plan[i] = q
	}
	for id := range requested {
		if !known[id] {
			return nil, Invalid("item %s does not belong to this order", id)
		}
	}
	return plan, nil
}

// remainingLines 覆盖为 completed 时，按剩余数量生成履约行
func remainingLines(items []fulfilItem) []FulfilLine {
	var lines []FulfilLine
	for _, item := range items {
		if item.remaining > 0 {
			lines = append(lines, FulfilLine{ItemID: item.id, Quantity: item.remaining})
		}
	}
	return lines
}

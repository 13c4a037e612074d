package service

import (
	"context"
	"fmt"
	"time"

	"github.com/newNamejj/mobile-inventory-system/internal/erp/entity"
	"github.com/newNamejj/mobile-inventory-system/internal/erp/repository"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// InventoryService 库存服务
type InventoryService struct {
	run    *runner
	stock  *Accessor
	ledger *Recorder
	logger *zap.Logger
}

func NewInventoryService(run *runner, stock *Accessor, ledger *Recorder, logger *zap.Logger) *InventoryService {
	return &InventoryService{run: run, stock: stock, ledger: ledger, logger: logger}
}

// StockMoveRequest 手工出入库
type StockMoveRequest struct {
	ModelID  string `json:"model_id" binding:"required"`
	Quantity int    `json:"quantity" binding:"required,gt=0"`
	Remarks  string `json:"remarks"`
}

// AdjustRequest 盘点调整
type AdjustRequest struct {
	Quantity *int   `json:"quantity" binding:"required,gte=0"`
	Remarks  string `json:"remarks"`
}

// MinStockRequest 设置预警线
type MinStockRequest struct {
	MinStockLevel *int `json:"min_stock_level" binding:"required,gte=0"`
}

// StockIn 手工入库
func (s *InventoryService) StockIn(ctx context.Context, req *StockMoveRequest, userID string) (*entity.InventoryRecord, error) {
	return s.move(ctx, req, userID, entity.DirectionIn)
}

// StockOut 手工出库，只能出可用库存
func (s *InventoryService) StockOut(ctx context.Context, req *StockMoveRequest, userID string) (*entity.InventoryRecord, error) {
	return s.move(ctx, req, userID, entity.DirectionOut)
}

func (s *InventoryService) move(ctx context.Context, req *StockMoveRequest, userID, direction string) (*entity.InventoryRecord, error) {
	if req.Quantity <= 0 {
		return nil, Invalid("quantity must be positive")
	}

	var rec *entity.InventoryRecord
	err := s.run.tx(ctx, func(ctx context.Context, tx *repository.Repositories) error {
		if _, err := tx.Model.FindByID(ctx, req.ModelID); err != nil {
			return missing(err, "model", req.ModelID)
		}

		var err error
		if direction == entity.DirectionIn {
			err = s.stock.Receive(ctx, tx, req.ModelID, req.Quantity)
		} else {
			err = s.stock.Ship(ctx, tx, req.ModelID, req.Quantity)
		}
		if err != nil {
			return err
		}

		if err := s.ledger.Record(ctx, tx, Movement{
			ModelID:      req.ModelID,
			Direction:    direction,
			Quantity:     req.Quantity,
			RelatedTable: entity.RelatedManual,
			Actor:        userID,
			Remarks:      req.Remarks,
		}); err != nil {
			return err
		}

		rec, err = tx.Inventory.FindByModelID(ctx, req.ModelID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("stock moved",
		zap.String("model_id", req.ModelID),
		zap.String("direction", direction),
		zap.Int("quantity", req.Quantity),
		zap.String("user_id", userID),
	)
	return rec, nil
}

// Adjust 盘点调整，差额写入流水
func (s *InventoryService) Adjust(ctx context.Context, inventoryID string, req *AdjustRequest, userID string) (*entity.InventoryRecord, error) {
	if req.Quantity == nil {
		return nil, Invalid("quantity is required")
	}

	var rec *entity.InventoryRecord
	var delta int
	err := s.run.tx(ctx, func(ctx context.Context, tx *repository.Repositories) error {
		var err error
		rec, delta, err = s.stock.Adjust(ctx, tx, inventoryID, *req.Quantity)
		if err != nil {
			return err
		}
		if delta == 0 {
			return nil
		}

		direction, qty := entity.DirectionIn, delta
		if delta < 0 {
			direction, qty = entity.DirectionOut, -delta
		}
		remarks := req.Remarks
		if remarks == "" {
			remarks = fmt.Sprintf("库存调整: %d -> %d", rec.Quantity-delta, rec.Quantity)
		}
		return s.ledger.Record(ctx, tx, Movement{
			ModelID:      rec.ModelID,
			Direction:    direction,
			Quantity:     qty,
			RelatedTable: entity.RelatedAdjustment,
			RelatedID:    rec.ID,
			Actor:        userID,
			Remarks:      remarks,
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("stock adjusted",
		zap.String("inventory_id", inventoryID),
		zap.Int("delta", delta),
		zap.String("user_id", userID),
	)
	return rec, nil
}

// SetMinStock 设置预警线
func (s *InventoryService) SetMinStock(ctx context.Context, inventoryID string, req *MinStockRequest) (*entity.InventoryRecord, error) {
	if req.MinStockLevel == nil || *req.MinStockLevel < 0 {
		return nil, Invalid("min_stock_level must not be negative")
	}
	var rec *entity.InventoryRecord
	err := s.run.tx(ctx, func(ctx context.Context, tx *repository.Repositories) error {
		if err := tx.Inventory.SetMinStock(ctx, inventoryID, *req.MinStockLevel); err != nil {
			return missing(err, "inventory", inventoryID)
		}
		var err error
		rec, err = tx.Inventory.FindByID(ctx, inventoryID)
		return err
	})
	return rec, err
}

// List 库存列表
func (s *InventoryService) List(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.InventoryRecord, int64, error) {
	var items []entity.InventoryRecord
	var total int64
	err := s.run.read(ctx, func(ctx context.Context, repos *repository.Repositories) error {
		var err error
		items, total, err = repos.Inventory.FindAll(ctx, page, pageSize, filters)
		return err
	})
	return items, total, err
}

func (s *InventoryService) Get(ctx context.Context, inventoryID string) (*entity.InventoryRecord, error) {
	var rec *entity.InventoryRecord
	err := s.run.read(ctx, func(ctx context.Context, repos *repository.Repositories) error {
		var err error
		rec, err = repos.Inventory.FindByID(ctx, inventoryID)
		return missing(err, "inventory", inventoryID)
	})
	return rec, err
}

// GetByModel 查询机型库存
func (s *InventoryService) GetByModel(ctx context.Context, modelID string) (*entity.InventoryRecord, error) {
	var rec *entity.InventoryRecord
	err := s.run.read(ctx, func(ctx context.Context, repos *repository.Repositories) error {
		var err error
		rec, err = repos.Inventory.FindByModelID(ctx, modelID)
		return missing(err, "inventory for model", modelID)
	})
	return rec, err
}

// Alerts 低库存预警
func (s *InventoryService) Alerts(ctx context.Context) ([]entity.InventoryRecord, error) {
	var items []entity.InventoryRecord
	err := s.run.read(ctx, func(ctx context.Context, repos *repository.Repositories) error {
		var err error
		items, err = repos.Inventory.FindLowStock(ctx)
		return err
	})
	return items, err
}

// Transactions 机型库存流水
func (s *InventoryService) Transactions(ctx context.Context, modelID string, page, pageSize int) ([]entity.InventoryTransaction, int64, error) {
	var items []entity.InventoryTransaction
	var total int64
	err := s.run.read(ctx, func(ctx context.Context, repos *repository.Repositories) error {
		var err error
		items, total, err = repos.Ledger.FindByModel(ctx, modelID, page, pageSize)
		return err
	})
	return items, total, err
}

// Export 导出库存表
func (s *InventoryService) Export(ctx context.Context) (*excelize.File, string, error) {
	var items []entity.InventoryRecord
	err := s.run.read(ctx, func(ctx context.Context, repos *repository.Repositories) error {
		var err error
		items, err = repos.Inventory.FindAllForExport(ctx)
		return err
	})
	if err != nil {
		return nil, "", err
	}
	f, err := InventoryWorkbook(items)
	if err != nil {
		return nil, "", err
	}
	filename := fmt.Sprintf("inventory_%s.xlsx", time.Now().Format("20060102"))
	return f, filename, nil
}

// inventorySheet 导出工作表名
const inventorySheet = "库存"

var inventoryHeaders = []string{"品牌", "型号", "库存数量", "可用数量", "预留数量", "预警线", "库位", "更新时间"}

// InventoryWorkbook 生成库存工作簿，首行为表头
func InventoryWorkbook(items []entity.InventoryRecord) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", inventorySheet); err != nil {
		return nil, err
	}

	boldStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9E1F2"}},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	lowStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Color: "#C00000"},
	})

	for i, h := range inventoryHeaders {
		col, _ := excelize.ColumnNumberToName(i + 1)
		cell := col + "1"
		f.SetCellValue(inventorySheet, cell, h)
		f.SetCellStyle(inventorySheet, cell, cell, boldStyle)
	}

	for i, item := range items {
		row := i + 2
		brand, model := "", item.ModelID
		if item.Model != nil {
			model = item.Model.ModelName
			if item.Model.Brand != nil {
				brand = item.Model.Brand.Name
			}
		}
		f.SetCellValue(inventorySheet, fmt.Sprintf("A%d", row), brand)
		f.SetCellValue(inventorySheet, fmt.Sprintf("B%d", row), model)
		f.SetCellValue(inventorySheet, fmt.Sprintf("C%d", row), item.Quantity)
		f.SetCellValue(inventorySheet, fmt.Sprintf("D%d", row), item.AvailableQuantity)
		f.SetCellValue(inventorySheet, fmt.Sprintf("E%d", row), item.Reserved())
		f.SetCellValue(inventorySheet, fmt.Sprintf("F%d", row), item.MinStockLevel)
		f.SetCellValue(inventorySheet, fmt.Sprintf("G%d", row), item.Location)
		f.SetCellValue(inventorySheet, fmt.Sprintf("H%d", row), item.LastUpdated.Format("2006-01-02 15:04"))
		if item.LowStock() {
			f.SetCellStyle(inventorySheet, fmt.Sprintf("A%d", row), fmt.Sprintf("H%d", row), lowStyle)
		}
	}

	colWidths := []float64{12, 24, 10, 10, 10, 8, 14, 18}
	for i, w := range colWidths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(inventorySheet, col, col, w)
	}
	return f, nil
}

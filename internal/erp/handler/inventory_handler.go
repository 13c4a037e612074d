package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/newNamejj/mobile-inventory-system/internal/erp/service"
)

type InventoryHandler struct {
	svc *service.InventoryService
}

func NewInventoryHandler(svc *service.InventoryService) *InventoryHandler {
	return &InventoryHandler{svc: svc}
}

// List GET /inventory
func (h *InventoryHandler) List(c *gin.Context) {
	page, pageSize := GetPagination(c)
	filters := queryFilters(c, "brand_id", "keyword", "low_stock")
	items, total, err := h.svc.List(c.Request.Context(), page, pageSize, filters)
	if err != nil {
		respondError(c, err)
		return
	}
	SuccessList(c, items, total, page, pageSize)
}

// Get GET /inventory/:id
func (h *InventoryHandler) Get(c *gin.Context) {
	rec, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	Success(c, rec)
}

// GetByModel GET /inventory/model/:modelId
func (h *InventoryHandler) GetByModel(c *gin.Context) {
	rec, err := h.svc.GetByModel(c.Request.Context(), c.Param("modelId"))
	if err != nil {
		respondError(c, err)
		return
	}
	Success(c, rec)
}

// StockIn POST /inventory/in
func (h *InventoryHandler) StockIn(c *gin.Context) {
	var req service.StockMoveRequest
	if !bindJSON(c, &req) {
		return
	}
	rec, err := h.svc.StockIn(c.Request.Context(), &req, GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	Success(c, rec)
}

// StockOut POST /inventory/out
func (h *InventoryHandler) StockOut(c *gin.Context) {
	var req service.StockMoveRequest
	if !bindJSON(c, &req) {
		return
	}
	rec, err := h.svc.StockOut(c.Request.Context(), &req, GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	Success(c, rec)
}

// Adjust PUT /inventory/adjust/:id
func (h *InventoryHandler) Adjust(c *gin.Context) {
	var req service.AdjustRequest
	if !bindJSON(c, &req) {
		return
	}
	rec, err := h.svc.Adjust(c.Request.Context(), c.Param("id"), &req, GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	Success(c, rec)
}

// SetMinStock PUT /inventory/min-stock/:id
func (h *InventoryHandler) SetMinStock(c *gin.Context) {
	var req service.MinStockRequest
	if !bindJSON(c, &req) {
		return
	}
	rec, err := h.svc.SetMinStock(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	Success(c, rec)
}

// Alerts GET /inventory/alerts
func (h *InventoryHandler) Alerts(c *gin.Context) {
	items, err := h.svc.Alerts(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	Success(c, items)
}

// Transactions GET /inventory/transactions/:modelId
func (h *InventoryHandler) Transactions(c *gin.Context) {
	page, pageSize := GetPagination(c)
	items, total, err := h.svc.Transactions(c.Request.Context(), c.Param("modelId"), page, pageSize)
	if err != nil {
		respondError(c, err)
		return
	}
	SuccessList(c, items, total, page, pageSize)
}

// Export GET /inventory/export
func (h *InventoryHandler) Export(c *gin.Context) {
	f, filename, err := h.svc.Export(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	defer f.Close()

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", "attachment; filename=\""+filename+"\"")
	c.Header("Content-Transfer-Encoding", "binary")

	if err := f.Write(c.Writer); err != nil {
		c.Error(err)
	}
}

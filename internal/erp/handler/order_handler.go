package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/newNamejj/mobile-inventory-system/internal/erp/service"
)

// PurchaseHandler 采购订单
type PurchaseHandler struct {
	svc *service.PurchaseService
}

func NewPurchaseHandler(svc *service.PurchaseService) *PurchaseHandler {
	return &PurchaseHandler{svc: svc}
}

// List GET /purchases/orders
func (h *PurchaseHandler) List(c *gin.Context) {
	page, pageSize := GetPagination(c)
	filters := queryFilters(c, "supplier_id", "status", "keyword", "start_date", "end_date")
	items, total, err := h.svc.List(c.Request.Context(), page, pageSize, filters)
	if err != nil {
		respondError(c, err)
		return
	}
	SuccessList(c, items, total, page, pageSize)
}

// Get GET /purchases/orders/:id
func (h *PurchaseHandler) Get(c *gin.Context) {
	po, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	Success(c, po)
}

// Create POST /purchases/orders
func (h *PurchaseHandler) Create(c *gin.Context) {
	var req service.CreatePurchaseOrderRequest
	if !bindJSON(c, &req) {
		return
	}
	po, err := h.svc.Create(c.Request.Context(), &req, GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	Created(c, po)
}

// UpdateStatus PUT /purchases/orders/:id/status
func (h *PurchaseHandler) UpdateStatus(c *gin.Context) {
	var req service.StatusRequest
	if !bindJSON(c, &req) {
		return
	}
	po, err := h.svc.UpdateStatus(c.Request.Context(), c.Param("id"), &req, GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	Success(c, po)
}

// Receive PUT /purchases/orders/:id/receive
func (h *PurchaseHandler) Receive(c *gin.Context) {
	var req service.ReceiveRequest
	if !bindJSON(c, &req) {
		return
	}
	po, err := h.svc.Receive(c.Request.Context(), c.Param("id"), &req, GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	Success(c, po)
}

// SalesHandler 销售订单
type SalesHandler struct {
	svc *service.SalesService
}

func NewSalesHandler(svc *service.SalesService) *SalesHandler {
	return &SalesHandler{svc: svc}
}

// List GET /sales/orders
func (h *SalesHandler) List(c *gin.Context) {
	page, pageSize := GetPagination(c)
	filters := queryFilters(c, "customer_id", "status", "payment_status", "keyword", "start_date", "end_date")
	items, total, err := h.svc.List(c.Request.Context(), page, pageSize, filters)
	if err != nil {
		respondError(c, err)
		return
	}
	SuccessList(c, items, total, page, pageSize)
}

// Get GET /sales/orders/:id
func (h *SalesHandler) Get(c *gin.Context) {
	so, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	Success(c, so)
}

// Create POST /sales/orders
func (h *SalesHandler) Create(c *gin.Context) {
	var req service.CreateSalesOrderRequest
	if !bindJSON(c, &req) {
		return
	}
	so, err := h.svc.Create(c.Request.Context(), &req, GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	Created(c, so)
}

// UpdateStatus PUT /sales/orders/:id/status
func (h *SalesHandler) UpdateStatus(c *gin.Context) {
	var req service.StatusRequest
	if !bindJSON(c, &req) {
		return
	}
	so, err := h.svc.UpdateStatus(c.Request.Context(), c.Param("id"), &req, GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	Success(c, so)
}

// Deliver PUT /sales/orders/:id/deliver
func (h *SalesHandler) Deliver(c *gin.Context) {
	var req service.DeliverRequest
	if !bindJSON(c, &req) {
		return
	}
	so, err := h.svc.Deliver(c.Request.Context(), c.Param("id"), &req, GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	Success(c, so)
}

package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/newNamejj/mobile-inventory-system/internal/erp/service"
)

type RebateHandler struct {
	svc *service.RebateService
}

func NewRebateHandler(svc *service.RebateService) *RebateHandler {
	return &RebateHandler{svc: svc}
}

// List GET /rebates
func (h *RebateHandler) List(c *gin.Context) {
	page, pageSize := GetPagination(c)
	filters := queryFilters(c, "rebate_type", "status", "customer_id", "supplier_id")
	items, total, err := h.svc.List(c.Request.Context(), page, pageSize, filters)
	if err != nil {
		respondError(c, err)
		return
	}
	SuccessList(c, items, total, page, pageSize)
}

// Get GET /rebates/:id
func (h *RebateHandler) Get(c *gin.Context) {
	rb, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	Success(c, rb)
}

// Create POST /rebates
func (h *RebateHandler) Create(c *gin.Context) {
	var req service.CreateRebateRequest
	if !bindJSON(c, &req) {
		return
	}
	rb, err := h.svc.Create(c.Request.Context(), &req, GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	Created(c, rb)
}

// UpdateStatus PUT /rebates/:id/status
func (h *RebateHandler) UpdateStatus(c *gin.Context) {
	var req service.RebateStatusRequest
	if !bindJSON(c, &req) {
		return
	}
	rb, err := h.svc.UpdateStatus(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	Success(c, rb)
}

// Delete DELETE /rebates/:id
func (h *RebateHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	Success(c, nil)
}

// CustomerBalance GET /rebates/customer/:id/balance
func (h *RebateHandler) CustomerBalance(c *gin.Context) {
	bal, err := h.svc.CustomerBalance(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	Success(c, bal)
}

// SupplierBalance GET /rebates/supplier/:id/balance
func (h *RebateHandler) SupplierBalance(c *gin.Context) {
	bal, err := h.svc.SupplierBalance(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	Success(c, bal)
}

package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/newNamejj/mobile-inventory-system/internal/erp/service"
)

type FinanceHandler struct {
	svc *service.FinanceService
}

func NewFinanceHandler(svc *service.FinanceService) *FinanceHandler {
	return &FinanceHandler{svc: svc}
}

// ListReceivables GET /finance/receivables
func (h *FinanceHandler) ListReceivables(c *gin.Context) {
	page, pageSize := GetPagination(c)
	items, total, err := h.svc.ListReceivables(c.Request.Context(), page, pageSize, queryFilters(c, "customer_id", "status"))
	if err != nil {
		respondError(c, err)
		return
	}
	SuccessList(c, items, total, page, pageSize)
}

// ListPayables GET /finance/payables
func (h *FinanceHandler) ListPayables(c *gin.Context) {
	page, pageSize := GetPagination(c)
	items, total, err := h.svc.ListPayables(c.Request.Context(), page, pageSize, queryFilters(c, "supplier_id", "status"))
	if err != nil {
		respondError(c, err)
		return
	}
	SuccessList(c, items, total, page, pageSize)
}

// ReceivePayment POST /finance/receive-payment
func (h *FinanceHandler) ReceivePayment(c *gin.Context) {
	var req service.ReceivePaymentRequest
	if !bindJSON(c, &req) {
		return
	}
	rec, err := h.svc.ReceivePayment(c.Request.Context(), &req, GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	Success(c, rec)
}

// MakePayment POST /finance/make-payment
func (h *FinanceHandler) MakePayment(c *gin.Context) {
	var req service.MakePaymentRequest
	if !bindJSON(c, &req) {
		return
	}
	p, err := h.svc.MakePayment(c.Request.Context(), &req, GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	Success(c, p)
}

// ListPayments GET /finance/payments
func (h *FinanceHandler) ListPayments(c *gin.Context) {
	page, pageSize := GetPagination(c)
	items, total, err := h.svc.ListPayments(c.Request.Context(), page, pageSize, queryFilters(c, "payment_type", "related_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	SuccessList(c, items, total, page, pageSize)
}

// ListProfit GET /finance/profit
func (h *FinanceHandler) ListProfit(c *gin.Context) {
	page, pageSize := GetPagination(c)
	items, total, err := h.svc.ListProfit(c.Request.Context(), page, pageSize, queryFilters(c, "model_id", "start_date", "end_date"))
	if err != nil {
		respondError(c, err)
		return
	}
	SuccessList(c, items, total, page, pageSize)
}

// ProfitSummary GET /finance/profit-summary
func (h *FinanceHandler) ProfitSummary(c *gin.Context) {
	summary, err := h.svc.ProfitSummary(c.Request.Context(), queryFilters(c, "start_date", "end_date"))
	if err != nil {
		respondError(c, err)
		return
	}
	Success(c, summary)
}

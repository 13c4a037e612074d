package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/newNamejj/mobile-inventory-system/internal/erp/service"
)

// Handlers ERP处理器集合
type Handlers struct {
	Catalog   *CatalogHandler
	Partner   *PartnerHandler
	Inventory *InventoryHandler
	Purchase  *PurchaseHandler
	Sales     *SalesHandler
	Finance   *FinanceHandler
	Rebate    *RebateHandler
}

// NewHandlers 创建ERP处理器集合
func NewHandlers(svc *service.Services) *Handlers {
	return &Handlers{
		Catalog:   NewCatalogHandler(svc.Catalog),
		Partner:   NewPartnerHandler(svc.Partner),
		Inventory: NewInventoryHandler(svc.Inventory),
		Purchase:  NewPurchaseHandler(svc.Purchase),
		Sales:     NewSalesHandler(svc.Sales),
		Finance:   NewFinanceHandler(svc.Finance),
		Rebate:    NewRebateHandler(svc.Rebate),
	}
}

// === 响应辅助函数 ===

// Response 统一响应 {success, message, data}
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

type ListResponse struct {
	Items      interface{} `json:"items"`
	Pagination *Pagination `json:"pagination"`
}

type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"total_pages"`
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{Success: true, Data: data})
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{Success: true, Data: data})
}

// SuccessList 分页列表
func SuccessList(c *gin.Context, items interface{}, total int64, page, pageSize int) {
	totalPages := total / int64(pageSize)
	if total%int64(pageSize) != 0 {
		totalPages++
	}
	Success(c, ListResponse{
		Items: items,
		Pagination: &Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      total,
			TotalPages: totalPages,
		},
	})
}

func Error(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, Response{Success: false, Message: message, Data: data})
}

func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message, nil)
}

func NotFound(c *gin.Context, message string) {
	Error(c, http.StatusNotFound, message, nil)
}

func InternalError(c *gin.Context, message string) {
	Error(c, http.StatusInternalServerError, message, nil)
}

// respondError 按业务错误分类返回状态码，5xx 错误挂到 gin 上下文由日志中间件记录
func respondError(c *gin.Context, err error) {
	var stockErr *service.InsufficientStockError
	var payErr *service.OverpaymentError

	switch {
	case errors.As(err, &stockErr):
		Error(c, http.StatusBadRequest, err.Error(), gin.H{
			"model_id":  stockErr.ModelID,
			"available": stockErr.Available,
			"requested": stockErr.Requested,
		})
	case errors.As(err, &payErr):
		Error(c, http.StatusBadRequest, err.Error(), gin.H{
			"remaining": payErr.Remaining.StringFixed(2),
		})
	case errors.Is(err, service.ErrNotFound):
		NotFound(c, err.Error())
	case errors.Is(err, service.ErrValidation), errors.Is(err, service.ErrInvalidTransition):
		BadRequest(c, err.Error())
	case errors.Is(err, service.ErrStorageTimeout):
		c.Error(err)
		InternalError(c, service.ErrStorageTimeout.Error())
	case errors.Is(err, service.ErrInvariantViolation):
		c.Error(err)
		InternalError(c, service.ErrInvariantViolation.Error())
	default:
		c.Error(err)
		InternalError(c, "internal server error")
	}
}

// bindJSON 解析请求体，失败时返回 400
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		BadRequest(c, "Invalid request: "+err.Error())
		return false
	}
	return true
}

func GetUserID(c *gin.Context) string {
	userID, _ := c.Get("user_id")
	if id, ok := userID.(string); ok {
		return id
	}
	return ""
}

func GetPagination(c *gin.Context) (page, pageSize int) {
	page = 1
	pageSize = 20

	if p := c.Query("page"); p != "" {
		if v, err := strconv.Atoi(p); err == nil && v > 0 {
			page = v
		}
	}

	if ps := c.Query("page_size"); ps != "" {
		if v, err := strconv.Atoi(ps); err == nil && v > 0 && v <= 100 {
			pageSize = v
		}
	}

	return page, pageSize
}

// queryFilters 收集非空查询参数
func queryFilters(c *gin.Context, keys ...string) map[string]string {
	filters := make(map[string]string, len(keys))
	for _, k := range keys {
		if v := c.Query(k); v != "" {
			filters[k] = v
		}
	}
	return filters
}

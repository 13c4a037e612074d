package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/newNamejj/mobile-inventory-system/internal/erp/service"
)

// CatalogHandler 品牌与机型
type CatalogHandler struct {
	svc *service.CatalogService
}

func NewCatalogHandler(svc *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{svc: svc}
}

func (h *CatalogHandler) ListBrands(c *gin.Context) {
	items, err := h.svc.ListBrands(c.Request.Context(), c.Query("keyword"))
	if err != nil {
		respondError(c, err)
		return
	}
	Success(c, items)
}

func (h *CatalogHandler) GetBrand(c *gin.Context) {
	b, err := h.svc.GetBrand(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	Success(c, b)
}

func (h *CatalogHandler) CreateBrand(c *gin.Context) {
	var req service.BrandRequest
	if !bindJSON(c, &req) {
		return
	}
	b, err := h.svc.CreateBrand(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	Created(c, b)
}

func (h *CatalogHandler) UpdateBrand(c *gin.Context) {
	var req service.BrandRequest
	if !bindJSON(c, &req) {
		return
	}
	b, err := h.svc.UpdateBrand(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	Success(c, b)
}

func (h *CatalogHandler) ListModels(c *gin.Context) {
	page, pageSize := GetPagination(c)
	items, total, err := h.svc.ListModels(c.Request.Context(), page, pageSize, queryFilters(c, "brand_id", "keyword"))
	if err != nil {
		respondError(c, err)
		return
	}
	SuccessList(c, items, total, page, pageSize)
}

func (h *CatalogHandler) GetModel(c *gin.Context) {
	m, err := h.svc.GetModel(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	Success(c, m)
}

func (h *CatalogHandler) CreateModel(c *gin.Context) {
	var req service.ModelRequest
	if !bindJSON(c, &req) {
		return
	}
	m, err := h.svc.CreateModel(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	Created(c, m)
}

func (h *CatalogHandler) UpdateModel(c *gin.Context) {
	var req service.ModelRequest
	if !bindJSON(c, &req) {
		return
	}
	m, err := h.svc.UpdateModel(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	Success(c, m)
}

func (h *CatalogHandler) DeleteBrand(c *gin.Context) {
	if err := h.svc.DeleteBrand(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	Success(c, nil)
}

func (h *CatalogHandler) DeleteModel(c *gin.Context) {
	if err := h.svc.DeleteModel(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	Success(c, nil)
}

// PartnerHandler 供应商与客户
type PartnerHandler struct {
	svc *service.PartnerService
}

func NewPartnerHandler(svc *service.PartnerService) *PartnerHandler {
	return &PartnerHandler{svc: svc}
}

func (h *PartnerHandler) ListSuppliers(c *gin.Context) {
	page, pageSize := GetPagination(c)
	items, total, err := h.svc.ListSuppliers(c.Request.Context(), page, pageSize, c.Query("keyword"))
	if err != nil {
		respondError(c, err)
		return
	}
	SuccessList(c, items, total, page, pageSize)
}

func (h *PartnerHandler) GetSupplier(c *gin.Context) {
	s, err := h.svc.GetSupplier(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	Success(c, s)
}

func (h *PartnerHandler) CreateSupplier(c *gin.Context) {
	var req service.PartnerRequest
	if !bindJSON(c, &req) {
		return
	}
	s, err := h.svc.CreateSupplier(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	Created(c, s)
}

func (h *PartnerHandler) UpdateSupplier(c *gin.Context) {
	var req service.PartnerRequest
	if !bindJSON(c, &req) {
		return
	}
	s, err := h.svc.UpdateSupplier(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	Success(c, s)
}

func (h *PartnerHandler) ListCustomers(c *gin.Context) {
	page, pageSize := GetPagination(c)
	items, total, err := h.svc.ListCustomers(c.Request.Context(), page, pageSize, c.Query("keyword"))
	if err != nil {
		respondError(c, err)
		return
	}
	SuccessList(c, items, total, page, pageSize)
}

func (h *PartnerHandler) GetCustomer(c *gin.Context) {
	cu, err := h.svc.GetCustomer(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	Success(c, cu)
}

func (h *PartnerHandler) CreateCustomer(c *gin.Context) {
	var req service.PartnerRequest
	if !bindJSON(c, &req) {
		return
	}
	cu, err := h.svc.CreateCustomer(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	Created(c, cu)
}

func (h *PartnerHandler) UpdateCustomer(c *gin.Context) {
	var req service.PartnerRequest
	if !bindJSON(c, &req) {
		return
	}
	cu, err := h.svc.UpdateCustomer(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	Success(c, cu)
}

func (h *PartnerHandler) DeleteSupplier(c *gin.Context) {
	if err := h.svc.DeleteSupplier(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	Success(c, nil)
}

func (h *PartnerHandler) DeleteCustomer(c *gin.Context) {
	if err := h.svc.DeleteCustomer(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	Success(c, nil)
}

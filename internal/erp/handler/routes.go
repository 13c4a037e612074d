package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/newNamejj/mobile-inventory-system/internal/middleware"
)

// RegisterRoutes 注册 ERP 路由，api 需已挂载 JWTAuth；idem 用于创建类请求
func RegisterRoutes(api *gin.RouterGroup, h *Handlers, idem gin.HandlerFunc) {
	if idem == nil {
		idem = func(c *gin.Context) { c.Next() }
	}
	writer := middleware.RequireRole(middleware.RoleManager, middleware.RoleStaff)
	manager := middleware.RequireRole(middleware.RoleManager)

	// 品牌与机型
	brands := api.Group("/brands")
	{
		brands.GET("", h.Catalog.ListBrands)
		brands.GET("/:id", h.Catalog.GetBrand)
		brands.POST("", manager, idem, h.Catalog.CreateBrand)
		brands.PUT("/:id", manager, h.Catalog.UpdateBrand)
		brands.DELETE("/:id", manager, h.Catalog.DeleteBrand)
	}
	models := api.Group("/models")
	{
		models.GET("", h.Catalog.ListModels)
		models.GET("/:id", h.Catalog.GetModel)
		models.POST("", manager, idem, h.Catalog.CreateModel)
		models.PUT("/:id", manager, h.Catalog.UpdateModel)
		models.DELETE("/:id", manager, h.Catalog.DeleteModel)
	}

	// 供应商与客户
	suppliers := api.Group("/suppliers")
	{
		suppliers.GET("", h.Partner.ListSuppliers)
		suppliers.GET("/:id", h.Partner.GetSupplier)
		suppliers.POST("", manager, idem, h.Partner.CreateSupplier)
		suppliers.PUT("/:id", manager, h.Partner.UpdateSupplier)
		suppliers.DELETE("/:id", manager, h.Partner.DeleteSupplier)
	}
	customers := api.Group("/customers")
	{
		customers.GET("", h.Partner.ListCustomers)
		customers.GET("/:id", h.Partner.GetCustomer)
		customers.POST("", manager, idem, h.Partner.CreateCustomer)
		customers.PUT("/:id", manager, h.Partner.UpdateCustomer)
		customers.DELETE("/:id", manager, h.Partner.DeleteCustomer)
	}

	// 库存
	inventory := api.Group("/inventory")
	{
		inventory.GET("", h.Inventory.List)
		inventory.GET("/alerts", h.Inventory.Alerts)
		inventory.GET("/export", h.Inventory.Export)
		inventory.GET("/model/:modelId", h.Inventory.GetByModel)
		inventory.GET("/transactions/:modelId", h.Inventory.Transactions)
		inventory.GET("/:id", h.Inventory.Get)
		inventory.POST("/in", writer, idem, h.Inventory.StockIn)
		inventory.POST("/out", writer, idem, h.Inventory.StockOut)
		inventory.PUT("/adjust/:id", manager, h.Inventory.Adjust)
		inventory.PUT("/min-stock/:id", manager, h.Inventory.SetMinStock)
	}

	// 采购订单
	purchases := api.Group("/purchases/orders")
	{
		purchases.GET("", h.Purchase.List)
		purchases.GET("/:id", h.Purchase.Get)
		purchases.POST("", writer, idem, h.Purchase.Create)
		purchases.PUT("/:id/status", manager, h.Purchase.UpdateStatus)
		purchases.PUT("/:id/receive", writer, h.Purchase.Receive)
	}

	// 销售订单
	sales := api.Group("/sales/orders")
	{
		sales.GET("", h.Sales.List)
		sales.GET("/:id", h.Sales.Get)
		sales.POST("", writer, idem, h.Sales.Create)
		sales.PUT("/:id/status", manager, h.Sales.UpdateStatus)
		sales.PUT("/:id/deliver", writer, h.Sales.Deliver)
	}

	// 财务
	finance := api.Group("/finance")
	{
		finance.GET("/receivables", h.Finance.ListReceivables)
		finance.GET("/payables", h.Finance.ListPayables)
		finance.GET("/payments", h.Finance.ListPayments)
		finance.GET("/profit", h.Finance.ListProfit)
		finance.GET("/profit-summary", h.Finance.ProfitSummary)
		finance.POST("/receive-payment", writer, idem, h.Finance.ReceivePayment)
		finance.POST("/make-payment", writer, idem, h.Finance.MakePayment)
	}

	// 返利
	rebates := api.Group("/rebates")
	{
		rebates.GET("", h.Rebate.List)
		rebates.GET("/customer/:id/balance", h.Rebate.CustomerBalance)
		rebates.GET("/supplier/:id/balance", h.Rebate.SupplierBalance)
		rebates.GET("/:id", h.Rebate.Get)
		rebates.POST("", manager, idem, h.Rebate.Create)
		rebates.PUT("/:id/status", manager, h.Rebate.UpdateStatus)
		rebates.DELETE("/:id", manager, h.Rebate.Delete)
	}
}

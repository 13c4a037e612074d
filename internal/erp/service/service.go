package service

import (
	"context"
	"time"

	"github.com/newNamejj/mobile-inventory-system/internal/erp/repository"
	"go.uber.org/zap"
)

// Options 服务层参数
type Options struct {
	// OpTimeout 单次业务操作的数据库超时
	OpTimeout time.Duration
	// PaymentTermDays 应收/应付账期
	PaymentTermDays int
	Logger          *zap.Logger
}

// Services ERP服务集合
type Services struct {
	Catalog   *CatalogService
	Partner   *PartnerService
	Inventory *InventoryService
	Purchase  *PurchaseService
	Sales     *SalesService
	Finance   *FinanceService
	Rebate    *RebateService
}

// NewServices 创建ERP服务集合
func NewServices(repos *repository.Repositories, opts Options) *Services {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.OpTimeout <= 0 {
		opts.OpTimeout = 5 * time.Second
	}

	run := &runner{repos: repos, timeout: opts.OpTimeout}
	stock := &Accessor{}
	ledger := &Recorder{}
	reconciler := NewFinanceService(run, opts.PaymentTermDays, opts.Logger)

	return &Services{
		Catalog:   NewCatalogService(run),
		Partner:   NewPartnerService(run),
		Inventory: NewInventoryService(run, stock, ledger, opts.Logger),
		Purchase:  NewPurchaseService(run, stock, ledger, reconciler, opts.Logger),
		Sales:     NewSalesService(run, stock, ledger, reconciler, opts.Logger),
		Finance:   reconciler,
		Rebate:    NewRebateService(run),
	}
}

// runner 为每次操作设置超时并统一错误分类
type runner struct {
	repos   *repository.Repositories
	timeout time.Duration
}

// tx 在单个事务内执行 fn
func (r *runner) tx(ctx context.Context, fn func(ctx context.Context, tx *repository.Repositories) error) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	err := r.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		return fn(ctx, tx)
	})
	return classify(ctx, err)
}

// read 只读操作，不开事务
func (r *runner) read(ctx context.Context, fn func(ctx context.Context, repos *repository.Repositories) error) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	return classify(ctx, fn(ctx, r.repos))
}

// Ping 健康检查
func (s *Services) Ping(ctx context.Context) error {
	return s.Catalog.run.read(ctx, func(ctx context.Context, repos *repository.Repositories) error {
		return repos.Ping(ctx)
	})
}

package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/newNamejj/mobile-inventory-system/internal/erp/entity"
	"github.com/newNamejj/mobile-inventory-system/internal/erp/repository"
	"github.com/newNamejj/mobile-inventory-system/internal/erp/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type flowEnv struct {
	db    *gorm.DB
	repos *repository.Repositories
	svc   *Services
}

func setupFlow(t *testing.T) *flowEnv {
	t.Helper()
	db := testutil.SetupTestDB(t)
	repos := repository.NewRepositories(db)
	svc := NewServices(repos, Options{OpTimeout: 10 * time.Second, PaymentTermDays: 30})
	return &flowEnv{db: db, repos: repos, svc: svc}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func (e *flowEnv) sell(t *testing.T, customerID, modelID string, qty int, price string) *entity.SalesOrder {
	t.Helper()
	so, err := e.svc.Sales.Create(context.Background(), &CreateSalesOrderRequest{
		CustomerID: customerID,
		Items:      []OrderItemInput{{ModelID: modelID, Quantity: qty, UnitPrice: dec(price)}},
	}, "u1")
	require.NoError(t, err)
	return so
}

func TestSalesOrder_ReserveDeliverComplete(t *testing.T) {
	env := setupFlow(t)
	ctx := context.Background()
	model := testutil.SeedModel(t, env.db, "60", "100", 10)
	customer := testutil.SeedCustomer(t, env.db, "Retail Co")

	so := env.sell(t, customer.ID, model.ID, 3, "100")
	assert.Equal(t, entity.OrderStatusPending, so.Status)
	assert.True(t, so.FinalAmount.Equal(dec("300")))

	inv := testutil.Inventory(t, env.db, model.ID)
	assert.Equal(t, 10, inv.Quantity)
	assert.Equal(t, 7, inv.AvailableQuantity)

	itemID := so.Items[0].ID
	so, err := env.svc.Sales.Deliver(ctx, so.ID, &DeliverRequest{Items: []DeliverLine{{ItemID: itemID, DeliveredQuantity: 2}}}, "u1")
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusPartial, so.Status)

	inv = testutil.Inventory(t, env.db, model.ID)
	assert.Equal(t, 8, inv.Quantity)
	assert.Equal(t, 7, inv.AvailableQuantity)

	so, err = env.svc.Sales.Deliver(ctx, so.ID, &DeliverRequest{Items: []DeliverLine{{ItemID: itemID, DeliveredQuantity: 1}}}, "u1")
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusCompleted, so.Status)
	assert.NotNil(t, so.CompletedAt)

	inv = testutil.Inventory(t, env.db, model.ID)
	assert.Equal(t, 7, inv.Quantity)
	assert.Equal(t, 7, inv.AvailableQuantity)

	profits, err := env.repos.Profit.FindBySalesOrder(ctx, so.ID)
	require.NoError(t, err)
	require.Len(t, profits, 1)
	assert.True(t, profits[0].Revenue.Equal(dec("300")))
	assert.True(t, profits[0].Cost.Equal(dec("180")))
	assert.True(t, profits[0].Profit.Equal(dec("120")))

	rec, err := env.repos.Receivable.FindByRelated(ctx, entity.RelatedSalesOrder, so.ID)
	require.NoError(t, err)
	assert.True(t, rec.Amount.Equal(dec("300")))
	assert.Equal(t, entity.PaymentStatusUnpaid, rec.Status)

	c, err := env.repos.Customer.FindByID(ctx, customer.ID)
	require.NoError(t, err)
	assert.True(t, c.Balance.Equal(dec("300")))

	// 已完成订单不能再发货或取消
	_, err = env.svc.Sales.Deliver(ctx, so.ID, &DeliverRequest{Items: []DeliverLine{{ItemID: itemID, DeliveredQuantity: 1}}}, "u1")
	assert.ErrorIs(t, err, ErrInvalidTransition)
	_, err = env.svc.Sales.Cancel(ctx, so.ID, "u1")
	assert.ErrorIs(t, err, ErrInvalidTransition)

	movements, err := env.repos.Ledger.FindByRelated(ctx, entity.RelatedSalesOrder, so.ID)
	require.NoError(t, err)
	assert.Len(t, movements, 2)
}

func TestSalesOrder_InsufficientStockRollsBack(t *testing.T) {
	env := setupFlow(t)
	ctx := context.Background()
	phone := testutil.SeedModel(t, env.db, "60", "100", 5)
	scarce := testutil.SeedModel(t, env.db, "60", "100", 2)
	customer := testutil.SeedCustomer(t, env.db, "Retail Co")

	_, err := env.svc.Sales.Create(ctx, &CreateSalesOrderRequest{
		CustomerID: customer.ID,
		Items: []OrderItemInput{
			{ModelID: phone.ID, Quantity: 1, UnitPrice: dec("100")},
			{ModelID: scarce.ID, Quantity: 3, UnitPrice: dec("100")},
		},
	}, "u1")
	require.Error(t, err)

	var stockErr *InsufficientStockError
	require.True(t, errors.As(err, &stockErr))
	assert.Equal(t, scarce.ID, stockErr.ModelID)
	assert.Equal(t, 2, stockErr.Available)
	assert.Equal(t, 3, stockErr.Requested)

	// 第一行的预留随事务回滚
	assert.Equal(t, 5, testutil.Inventory(t, env.db, phone.ID).AvailableQuantity)
	assert.Equal(t, 2, testutil.Inventory(t, env.db, scarce.ID).AvailableQuantity)

	_, total, err := env.svc.Sales.List(ctx, 1, 20, nil)
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestSalesOrder_CancelReleasesReservation(t *testing.T) {
	env := setupFlow(t)
	ctx := context.Background()
	model := testutil.SeedModel(t, env.db, "60", "100", 10)
	customer := testutil.SeedCustomer(t, env.db, "Retail Co")

	so := env.sell(t, customer.ID, model.ID, 4, "100")
	assert.Equal(t, 6, testutil.Inventory(t, env.db, model.ID).AvailableQuantity)

	so, err := env.svc.Sales.Cancel(ctx, so.ID, "u1")
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusCancelled, so.Status)

	inv := testutil.Inventory(t, env.db, model.ID)
	assert.Equal(t, 10, inv.Quantity)
	assert.Equal(t, 10, inv.AvailableQuantity)

	_, err = env.svc.Sales.Cancel(ctx, so.ID, "u1")
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, 10, testutil.Inventory(t, env.db, model.ID).AvailableQuantity)
}

func TestSalesOrder_CancelAfterPartialDeliveryRejected(t *testing.T) {
	env := setupFlow(t)
	ctx := context.Background()
	model := testutil.SeedModel(t, env.db, "60", "100", 10)
	customer := testutil.SeedCustomer(t, env.db, "Retail Co")

	so := env.sell(t, customer.ID, model.ID, 3, "100")
	_, err := env.svc.Sales.Deliver(ctx, so.ID, &DeliverRequest{Items: []DeliverLine{{ItemID: so.Items[0].ID, DeliveredQuantity: 1}}}, "u1")
	require.NoError(t, err)

	_, err = env.svc.Sales.UpdateStatus(ctx, so.ID, &StatusRequest{Status: entity.OrderStatusCancelled}, "u1")
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestSalesOrder_StatusOverwriteCompletesRemaining(t *testing.T) {
	env := setupFlow(t)
	ctx := context.Background()
	model := testutil.SeedModel(t, env.db, "60", "100", 10)
	customer := testutil.SeedCustomer(t, env.db, "Retail Co")

	so := env.sell(t, customer.ID, model.ID, 3, "100")
	_, err := env.svc.Sales.Deliver(ctx, so.ID, &DeliverRequest{Items: []DeliverLine{{ItemID: so.Items[0].ID, DeliveredQuantity: 1}}}, "u1")
	require.NoError(t, err)

	_, err = env.svc.Sales.UpdateStatus(ctx, so.ID, &StatusRequest{Status: entity.OrderStatusPartial}, "u1")
	assert.ErrorIs(t, err, ErrValidation)

	so, err = env.svc.Sales.UpdateStatus(ctx, so.ID, &StatusRequest{Status: entity.OrderStatusCompleted}, "u1")
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusCompleted, so.Status)
	assert.Equal(t, 3, so.Items[0].DeliveredQuantity)

	inv := testutil.Inventory(t, env.db, model.ID)
	assert.Equal(t, 7, inv.Quantity)
	assert.Equal(t, 7, inv.AvailableQuantity)

	profits, err := env.repos.Profit.FindBySalesOrder(ctx, so.ID)
	require.NoError(t, err)
	assert.Len(t, profits, 1)
}

func TestPurchaseOrder_ReceiveAndSettle(t *testing.T) {
	env := setupFlow(t)
	ctx := context.Background()
	model := testutil.SeedModel(t, env.db, "60", "100", 0)
	supplier := testutil.SeedSupplier(t, env.db, "Wholesale Ltd")

	po, err := env.svc.Purchase.Create(ctx, &CreatePurchaseOrderRequest{
		SupplierID: supplier.ID,
		Items:      []OrderItemInput{{ModelID: model.ID, Quantity: 5, UnitPrice: dec("60")}},
	}, "u1")
	require.NoError(t, err)
	assert.True(t, po.TotalAmount.Equal(dec("300")))
	itemID := po.Items[0].ID

	po, err = env.svc.Purchase.Receive(ctx, po.ID, &ReceiveRequest{Items: []ReceiveLine{{ItemID: itemID, ReceivedQuantity: 2}}}, "u1")
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusPartial, po.Status)
	assert.Equal(t, 2, testutil.Inventory(t, env.db, model.ID).AvailableQuantity)

	_, err = env.svc.Purchase.Receive(ctx, po.ID, &ReceiveRequest{Items: []ReceiveLine{{ItemID: itemID, ReceivedQuantity: 4}}}, "u1")
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, 2, testutil.Inventory(t, env.db, model.ID).Quantity)

	po, err = env.svc.Purchase.Receive(ctx, po.ID, &ReceiveRequest{Items: []ReceiveLine{{ItemID: itemID, ReceivedQuantity: 3}}}, "u1")
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusCompleted, po.Status)

	inv := testutil.Inventory(t, env.db, model.ID)
	assert.Equal(t, 5, inv.Quantity)
	assert.Equal(t, 5, inv.AvailableQuantity)

	net, err := env.repos.Ledger.NetQuantity(ctx, model.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, net)

	payable, err := env.repos.Payable.FindByRelated(ctx, entity.RelatedPurchaseOrder, po.ID)
	require.NoError(t, err)
	assert.True(t, payable.Amount.Equal(dec("300")))

	_, err = env.svc.Finance.MakePayment(ctx, &MakePaymentRequest{PayableID: payable.ID, Amount: dec("10"), PaymentMethod: entity.PaymentMethodCash, PaymentDate: "05/01/2024"}, "u1")
	assert.ErrorIs(t, err, ErrValidation)

	// 超额付款被拒绝，返回剩余金额
	_, err = env.svc.Finance.MakePayment(ctx, &MakePaymentRequest{PayableID: payable.ID, Amount: dec("400"), PaymentMethod: entity.PaymentMethodTransfer, PaymentDate: "2024-05-01"}, "u1")
	var payErr *OverpaymentError
	require.True(t, errors.As(err, &payErr))
	assert.True(t, payErr.Remaining.Equal(dec("300")))

	p, err := env.svc.Finance.MakePayment(ctx, &MakePaymentRequest{PayableID: payable.ID, Amount: dec("100"), PaymentMethod: entity.PaymentMethodCash, PaymentDate: "2024-05-01"}, "u1")
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentStatusPartiallyPaid, p.Status)

	sp, err := env.repos.Supplier.FindByID(ctx, supplier.ID)
	require.NoError(t, err)
	assert.True(t, sp.Balance.Equal(dec("200")))

	p, err = env.svc.Finance.MakePayment(ctx, &MakePaymentRequest{PayableID: payable.ID, Amount: dec("200"), PaymentMethod: entity.PaymentMethodCash, PaymentDate: "2024-05-01"}, "u1")
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentStatusPaid, p.Status)

	sp, err = env.repos.Supplier.FindByID(ctx, supplier.ID)
	require.NoError(t, err)
	assert.True(t, sp.Balance.IsZero())

	payments, total, err := env.svc.Finance.ListPayments(ctx, 1, 20, map[string]string{"related_id": payable.ID})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, payments, 2)
	for _, pr := range payments {
		assert.Equal(t, "2024-05-01", pr.PaymentDate.Format("2006-01-02"))
	}
}

func TestPurchaseOrder_CancelHasNoStockEffect(t *testing.T) {
	env := setupFlow(t)
	ctx := context.Background()
	model := testutil.SeedModel(t, env.db, "60", "100", 4)
	supplier := testutil.SeedSupplier(t, env.db, "Wholesale Ltd")

	po, err := env.svc.Purchase.Create(ctx, &CreatePurchaseOrderRequest{
		SupplierID: supplier.ID,
		Items:      []OrderItemInput{{ModelID: model.ID, Quantity: 5, UnitPrice: dec("60")}},
	}, "u1")
	require.NoError(t, err)

	po, err = env.svc.Purchase.UpdateStatus(ctx, po.ID, &StatusRequest{Status: entity.OrderStatusCancelled}, "u1")
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusCancelled, po.Status)
	assert.Equal(t, 4, testutil.Inventory(t, env.db, model.ID).Quantity)

	_, err = env.svc.Purchase.Receive(ctx, po.ID, &ReceiveRequest{Items: []ReceiveLine{{ItemID: po.Items[0].ID, ReceivedQuantity: 1}}}, "u1")
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestPurchaseOrder_NumbersAreSequential(t *testing.T) {
	env := setupFlow(t)
	ctx := context.Background()
	model := testutil.SeedModel(t, env.db, "60", "100", 0)
	supplier := testutil.SeedSupplier(t, env.db, "Wholesale Ltd")

	req := &CreatePurchaseOrderRequest{
		SupplierID: supplier.ID,
		Items:      []OrderItemInput{{ModelID: model.ID, Quantity: 1, UnitPrice: dec("60")}},
	}
	first, err := env.svc.Purchase.Create(ctx, req, "u1")
	require.NoError(t, err)
	second, err := env.svc.Purchase.Create(ctx, req, "u1")
	require.NoError(t, err)

	prefix := entity.OrderNumberPrefix(entity.PurchaseOrderPrefix, time.Now())
	seq1, err := entity.ParseOrderSeq(prefix, first.OrderNumber)
	require.NoError(t, err)
	seq2, err := entity.ParseOrderSeq(prefix, second.OrderNumber)
	require.NoError(t, err)
	assert.Equal(t, 1, seq1)
	assert.Equal(t, 2, seq2)
}

func TestCreateOrder_UnknownReferences(t *testing.T) {
	env := setupFlow(t)
	ctx := context.Background()
	model := testutil.SeedModel(t, env.db, "60", "100", 1)
	customer := testutil.SeedCustomer(t, env.db, "Retail Co")

	_, err := env.svc.Sales.Create(ctx, &CreateSalesOrderRequest{
		CustomerID: "missing",
		Items:      []OrderItemInput{{ModelID: model.ID, Quantity: 1, UnitPrice: dec("100")}},
	}, "u1")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = env.svc.Sales.Create(ctx, &CreateSalesOrderRequest{
		CustomerID: customer.ID,
		Items:      []OrderItemInput{{ModelID: "missing", Quantity: 1, UnitPrice: dec("100")}},
	}, "u1")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = env.svc.Sales.Create(ctx, &CreateSalesOrderRequest{
		CustomerID: customer.ID,
		Items:      []OrderItemInput{{ModelID: model.ID, Quantity: 1, UnitPrice: dec("100")}},
		Discount:   dec("150"),
	}, "u1")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = env.svc.Sales.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSalesOrder_ConcurrentReservationsNeverOversell(t *testing.T) {
	env := setupFlow(t)
	model := testutil.SeedModel(t, env.db, "60", "100", 5)
	customer := testutil.SeedCustomer(t, env.db, "Retail Co")

	const workers = 10
	var wg sync.WaitGroup
	var mu sync.Mutex
	var ok, short int
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.svc.Sales.Create(context.Background(), &CreateSalesOrderRequest{
				CustomerID: customer.ID,
				Items:      []OrderItemInput{{ModelID: model.ID, Quantity: 1, UnitPrice: dec("100")}},
			}, "u1")
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case errors.Is(err, ErrInsufficientStock):
				short++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 5, ok)
	assert.Equal(t, 5, short)

	inv := testutil.Inventory(t, env.db, model.ID)
	assert.Equal(t, 5, inv.Quantity)
	assert.Equal(t, 0, inv.AvailableQuantity)
	assert.True(t, inv.Consistent())
}

func TestReceivePayment_SettlesSalesOrder(t *testing.T) {
	env := setupFlow(t)
	ctx := context.Background()
	model := testutil.SeedModel(t, env.db, "60", "100", 5)
	customer := testutil.SeedCustomer(t, env.db, "Retail Co")

	so := env.sell(t, customer.ID, model.ID, 2, "100")
	so, err := env.svc.Sales.UpdateStatus(ctx, so.ID, &StatusRequest{Status: entity.OrderStatusCompleted}, "u1")
	require.NoError(t, err)

	rec, err := env.repos.Receivable.FindByRelated(ctx, entity.RelatedSalesOrder, so.ID)
	require.NoError(t, err)

	_, err = env.svc.Finance.ReceivePayment(ctx, &ReceivePaymentRequest{ReceivableID: rec.ID, Amount: dec("0"), PaymentMethod: entity.PaymentMethodCash, PaymentDate: "2024-05-01"}, "u1")
	assert.ErrorIs(t, err, ErrValidation)
	_, err = env.svc.Finance.ReceivePayment(ctx, &ReceivePaymentRequest{ReceivableID: rec.ID, Amount: dec("10.005"), PaymentMethod: entity.PaymentMethodCash, PaymentDate: "2024-05-01"}, "u1")
	assert.ErrorIs(t, err, ErrValidation)

	rec, err = env.svc.Finance.ReceivePayment(ctx, &ReceivePaymentRequest{ReceivableID: rec.ID, Amount: dec("50"), PaymentMethod: entity.PaymentMethodWechat, PaymentDate: "2024-05-01"}, "u1")
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentStatusPartiallyPaid, rec.Status)

	got, err := env.svc.Sales.Get(ctx, so.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentStatusPartiallyPaid, got.PaymentStatus)

	_, err = env.svc.Finance.ReceivePayment(ctx, &ReceivePaymentRequest{ReceivableID: rec.ID, Amount: dec("200"), PaymentMethod: entity.PaymentMethodCash, PaymentDate: "2024-05-01"}, "u1")
	assert.ErrorIs(t, err, ErrOverpayment)

	rec, err = env.svc.Finance.ReceivePayment(ctx, &ReceivePaymentRequest{ReceivableID: rec.ID, Amount: dec("150"), PaymentMethod: entity.PaymentMethodCash, PaymentDate: "2024-05-01"}, "u1")
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentStatusPaid, rec.Status)

	c, err := env.repos.Customer.FindByID(ctx, customer.ID)
	require.NoError(t, err)
	assert.True(t, c.Balance.IsZero())

	got, err = env.svc.Sales.Get(ctx, so.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentStatusPaid, got.PaymentStatus)

	summary, err := env.svc.Finance.ProfitSummary(ctx, nil)
	require.NoError(t, err)
	assert.True(t, summary.TotalProfit.Equal(dec("80")))
	assert.EqualValues(t, 1, summary.RecordCount)
}

func TestInventoryAdjust_PreservesReservation(t *testing.T) {
	env := setupFlow(t)
	ctx := context.Background()
	model := testutil.SeedModel(t, env.db, "60", "100", 10)
	customer := testutil.SeedCustomer(t, env.db, "Retail Co")
	env.sell(t, customer.ID, model.ID, 4, "100")

	inv := testutil.Inventory(t, env.db, model.ID)
	qty := 8
	rec, err := env.svc.Inventory.Adjust(ctx, inv.ID, &AdjustRequest{Quantity: &qty}, "u1")
	require.NoError(t, err)
	assert.Equal(t, 8, rec.Quantity)
	assert.Equal(t, 4, rec.AvailableQuantity)

	qty = 3
	_, err = env.svc.Inventory.Adjust(ctx, inv.ID, &AdjustRequest{Quantity: &qty}, "u1")
	assert.ErrorIs(t, err, ErrInsufficientStock)

	movements, err := env.repos.Ledger.FindByRelated(ctx, entity.RelatedAdjustment, inv.ID)
	require.NoError(t, err)
	require.Len(t, movements, 1)
	assert.Equal(t, entity.DirectionOut, movements[0].Direction)
	assert.Equal(t, 2, movements[0].Quantity)
}

func TestInventoryStockOut_OnlyAvailable(t *testing.T) {
	env := setupFlow(t)
	ctx := context.Background()
	model := testutil.SeedModel(t, env.db, "60", "100", 5)
	customer := testutil.SeedCustomer(t, env.db, "Retail Co")
	env.sell(t, customer.ID, model.ID, 3, "100")

	_, err := env.svc.Inventory.StockOut(ctx, &StockMoveRequest{ModelID: model.ID, Quantity: 3}, "u1")
	assert.ErrorIs(t, err, ErrInsufficientStock)

	rec, err := env.svc.Inventory.StockOut(ctx, &StockMoveRequest{ModelID: model.ID, Quantity: 2}, "u1")
	require.NoError(t, err)
	assert.Equal(t, 3, rec.Quantity)
	assert.Equal(t, 0, rec.AvailableQuantity)

	rec, err = env.svc.Inventory.StockIn(ctx, &StockMoveRequest{ModelID: model.ID, Quantity: 6}, "u1")
	require.NoError(t, err)
	assert.Equal(t, 9, rec.Quantity)
	assert.Equal(t, 6, rec.AvailableQuantity)
}

func TestRunner_TimeoutMapsToStorageTimeout(t *testing.T) {
	env := setupFlow(t)
	run := &runner{repos: env.repos, timeout: time.Nanosecond}

	err := run.tx(context.Background(), func(ctx context.Context, tx *repository.Repositories) error {
		_, err := tx.Inventory.FindAllForExport(ctx)
		return err
	})
	assert.Equal(t, ErrStorageTimeout, err)
}

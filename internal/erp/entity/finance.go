package entity

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// 应收/应付状态，也用于销售单付款状态
const (
	PaymentStatusUnpaid        = "unpaid"
	PaymentStatusPartiallyPaid = "partially_paid"
	PaymentStatusPaid          = "paid"
)

// 收付款类型
const (
	PaymentTypeReceive = "receive"
	PaymentTypePay     = "pay"
)

// 常用付款方式，payment_method 也接受其他文本
const (
	PaymentMethodCash     = "cash"
	PaymentMethodTransfer = "bank_transfer"
	PaymentMethodWechat   = "wechat"
	PaymentMethodAlipay   = "alipay"
	PaymentMethodCard     = "card"
	PaymentMethodOther    = "other"
)

// PaymentMethodMaxLen payment_method 列宽
const PaymentMethodMaxLen = 20

const (
	RelatedReceivable = "receivables"
	RelatedPayable    = "payables"
)

// ErrExceedsOutstanding 核销金额超过未结金额
var ErrExceedsOutstanding = errors.New("payment exceeds outstanding amount")

var hundred = decimal.NewFromInt(100)

// SettlementStatus 按已付金额推导结算状态
func SettlementStatus(amount, paid decimal.Decimal) string {
	switch {
	case paid.GreaterThanOrEqual(amount):
		return PaymentStatusPaid
	case paid.IsPositive():
		return PaymentStatusPartiallyPaid
	default:
		return PaymentStatusUnpaid
	}
}

// applyPayment paid + payment 不得超过 amount
func applyPayment(amount decimal.Decimal, paid *decimal.Decimal, status *string, payment decimal.Decimal) error {
	next := paid.Add(payment)
	if next.GreaterThan(amount) {
		return ErrExceedsOutstanding
	}
	*paid = next
	*status = SettlementStatus(amount, next)
	return nil
}

// Receivable 应收账款
type Receivable struct {
	ID           string          `json:"id" gorm:"primaryKey;size:36"`
	CustomerID   string          `json:"customer_id" gorm:"size:36;not null;index"`
	RelatedTable string          `json:"related_table" gorm:"size:50;not null;uniqueIndex:idx_receivable_related"`
	RelatedID    string          `json:"related_id" gorm:"size:36;not null;uniqueIndex:idx_receivable_related"`
	Amount       decimal.Decimal `json:"amount" gorm:"type:decimal(12,2);not null"`
	PaidAmount   decimal.Decimal `json:"paid_amount" gorm:"type:decimal(12,2);not null;default:0"`
	DueDate      *time.Time      `json:"due_date"`
	Status       string          `json:"status" gorm:"size:20;not null;default:unpaid;index"`
	Remarks      string          `json:"remarks" gorm:"type:text"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`

	Customer *Customer `json:"customer,omitempty" gorm:"foreignKey:CustomerID"`
}

func (Receivable) TableName() string {
	return "erp_receivables"
}

// Outstanding 未收金额
func (r *Receivable) Outstanding() decimal.Decimal {
	return r.Amount.Sub(r.PaidAmount)
}

// ApplyPayment 核销一笔收款
func (r *Receivable) ApplyPayment(payment decimal.Decimal) error {
	return applyPayment(r.Amount, &r.PaidAmount, &r.Status, payment)
}

// Payable 应付账款
type Payable struct {
	ID           string          `json:"id" gorm:"primaryKey;size:36"`
	SupplierID   string          `json:"supplier_id" gorm:"size:36;not null;index"`
	RelatedTable string          `json:"related_table" gorm:"size:50;not null;uniqueIndex:idx_payable_related"`
	RelatedID    string          `json:"related_id" gorm:"size:36;not null;uniqueIndex:idx_payable_related"`
	Amount       decimal.Decimal `json:"amount" gorm:"type:decimal(12,2);not null"`
	PaidAmount   decimal.Decimal `json:"paid_amount" gorm:"type:decimal(12,2);not null;default:0"`
	DueDate      *time.Time      `json:"due_date"`
	Status       string          `json:"status" gorm:"size:20;not null;default:unpaid;index"`
	Remarks      string          `json:"remarks" gorm:"type:text"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`

	Supplier *Supplier `json:"supplier,omitempty" gorm:"foreignKey:SupplierID"`
}

func (Payable) TableName() string {
	return "erp_payables"
}

// Outstanding 未付金额
func (p *Payable) Outstanding() decimal.Decimal {
	return p.Amount.Sub(p.PaidAmount)
}

// ApplyPayment 核销一笔付款
func (p *Payable) ApplyPayment(payment decimal.Decimal) error {
	return applyPayment(p.Amount, &p.PaidAmount, &p.Status, payment)
}

// PaymentRecord 收付款记录
type PaymentRecord struct {
	ID            string          `json:"id" gorm:"primaryKey;size:36"`
	PaymentType   string          `json:"payment_type" gorm:"size:10;not null;index"`
	RelatedTable  string          `json:"related_table" gorm:"size:50;not null"`
	RelatedID     string          `json:"related_id" gorm:"size:36;not null;index"`
	Amount        decimal.Decimal `json:"amount" gorm:"type:decimal(12,2);not null"`
	PaymentMethod string          `json:"payment_method" gorm:"size:20;not null"`
	PaymentDate   time.Time       `json:"payment_date" gorm:"type:date;not null;index"`
	OperatorID    string          `json:"operator_id" gorm:"size:64"`
	Remarks       string          `json:"remarks" gorm:"type:text"`
	CreatedAt     time.Time       `json:"created_at"`
}

func (PaymentRecord) TableName() string {
	return "erp_payment_records"
}

// ProfitRecord 利润记录，每个销售明细一条
type ProfitRecord struct {
	ID               string              `json:"id" gorm:"primaryKey;size:36"`
	SalesOrderID     string              `json:"sales_order_id" gorm:"size:36;not null;index"`
	SalesOrderItemID string              `json:"sales_order_item_id" gorm:"size:36;not null;uniqueIndex"`
	ModelID          string              `json:"model_id" gorm:"size:36;not null;index"`
	CostPrice        decimal.Decimal     `json:"cost_price" gorm:"type:decimal(12,2);not null"`
	SellPrice        decimal.Decimal     `json:"sell_price" gorm:"type:decimal(12,2);not null"`
	Quantity         int                 `json:"quantity" gorm:"not null"`
	Revenue          decimal.Decimal     `json:"revenue" gorm:"type:decimal(12,2);not null"`
	Cost             decimal.Decimal     `json:"cost" gorm:"type:decimal(12,2);not null"`
	Profit           decimal.Decimal     `json:"profit" gorm:"type:decimal(12,2);not null"`
	ProfitMargin     decimal.NullDecimal `json:"profit_margin" gorm:"type:decimal(7,2)"`
	CreatedAt        time.Time           `json:"created_at" gorm:"index"`

	Model *PhoneModel `json:"model,omitempty" gorm:"foreignKey:ModelID"`
}

func (ProfitRecord) TableName() string {
	return "erp_profit_records"
}

// CalculateProfit 计算利润
// revenue = 售价 × 数量，cost = 进价 × 数量，margin = profit / revenue × 100
// revenue 为 0 时 margin 为空
func CalculateProfit(sellPrice, costPrice decimal.Decimal, quantity int) ProfitRecord {
	qty := decimal.NewFromInt(int64(quantity))
	revenue := sellPrice.Mul(qty)
	cost := costPrice.Mul(qty)
	profit := revenue.Sub(cost)

	rec := ProfitRecord{
		CostPrice: costPrice,
		SellPrice: sellPrice,
		Quantity:  quantity,
		Revenue:   revenue,
		Cost:      cost,
		Profit:    profit,
	}
	if !revenue.IsZero() {
		rec.ProfitMargin = decimal.NewNullDecimal(profit.Div(revenue).Mul(hundred).Round(2))
	}
	return rec
}

// ProfitSummary 利润汇总
type ProfitSummary struct {
	TotalRevenue decimal.Decimal `json:"total_revenue"`
	TotalCost    decimal.Decimal `json:"total_cost"`
	TotalProfit  decimal.Decimal `json:"total_profit"`
	RecordCount  int64           `json:"record_count"`
}

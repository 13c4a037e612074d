package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/newNamejj/mobile-inventory-system/internal/erp/repository"
	"github.com/shopspring/decimal"
)

// 业务错误分类，handler 按分类映射 HTTP 状态码
var (
	ErrValidation         = errors.New("validation failed")
	ErrNotFound           = errors.New("not found")
	ErrInsufficientStock  = errors.New("insufficient stock")
	ErrOverpayment        = errors.New("payment exceeds outstanding amount")
	ErrInvalidTransition  = errors.New("invalid order status transition")
	ErrInvariantViolation = errors.New("ledger invariant violated")
	ErrStorage            = errors.New("storage failure")
	ErrStorageTimeout     = errors.New("storage operation timed out, please retry")
)

// validationError 携带具体原因的校验错误
type validationError struct {
	msg string
}

func (e *validationError) Error() string { return e.msg }

func (e *validationError) Is(target error) bool { return target == ErrValidation }

// Invalid 构造校验错误
func Invalid(format string, args ...interface{}) error {
	return &validationError{msg: fmt.Sprintf(format, args...)}
}

// notFoundError 携带实体名称的不存在错误
type notFoundError struct {
	what string
	id   string
}

func (e *notFoundError) Error() string { return fmt.Sprintf("%s %s not found", e.what, e.id) }

func (e *notFoundError) Is(target error) bool { return target == ErrNotFound }

// missing 将仓库层 ErrNotFound 转换为业务错误，其余错误原样返回
func missing(err error, what, id string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return &notFoundError{what: what, id: id}
	}
	return err
}

// InsufficientStockError 库存不足
type InsufficientStockError struct {
	ModelID   string
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for model %s: available %d, requested %d", e.ModelID, e.Available, e.Requested)
}

func (e *InsufficientStockError) Is(target error) bool { return target == ErrInsufficientStock }

// OverpaymentError 核销金额超过未结金额
type OverpaymentError struct {
	Remaining decimal.Decimal
}

func (e *OverpaymentError) Error() string {
	return fmt.Sprintf("payment exceeds outstanding amount, remaining %s", e.Remaining.StringFixed(2))
}

func (e *OverpaymentError) Is(target error) bool { return target == ErrOverpayment }

// transitionError 非法状态迁移
type transitionError struct {
	from string
	to   string
}

func (e *transitionError) Error() string {
	return fmt.Sprintf("order in status %s cannot be %s", e.from, e.to)
}

func (e *transitionError) Is(target error) bool { return target == ErrInvalidTransition }

// storageError 包装底层存储错误
type storageError struct {
	err error
}

func (e *storageError) Error() string { return "storage failure: " + e.err.Error() }

func (e *storageError) Unwrap() error { return e.err }

func (e *storageError) Is(target error) bool { return target == ErrStorage }

// isBusiness 已分类的业务错误
func isBusiness(err error) bool {
	for _, target := range []error{
		ErrValidation, ErrNotFound, ErrInsufficientStock, ErrOverpayment,
		ErrInvalidTransition, ErrInvariantViolation, ErrStorageTimeout,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// classify 将事务返回的错误归类，超时优先
func classify(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return ErrStorageTimeout
	}
	if isBusiness(err) {
		return err
	}
	return &storageError{err: err}
}

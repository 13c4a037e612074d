package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/newNamejj/mobile-inventory-system/internal/erp/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	ctx := context.Background()

	assert.NoError(t, classify(ctx, nil))

	err := classify(ctx, Invalid("bad %s", "input"))
	assert.ErrorIs(t, err, ErrValidation)
	assert.EqualError(t, err, "bad input")

	stock := &InsufficientStockError{ModelID: "m1", Available: 2, Requested: 3}
	err = classify(ctx, stock)
	assert.ErrorIs(t, err, ErrInsufficientStock)
	var target *InsufficientStockError
	assert.True(t, errors.As(err, &target))
	assert.Equal(t, 2, target.Available)

	err = classify(ctx, fmt.Errorf("%w: drift", ErrInvariantViolation))
	assert.ErrorIs(t, err, ErrInvariantViolation)
	assert.NotErrorIs(t, err, ErrStorage)

	raw := errors.New("connection reset")
	err = classify(ctx, raw)
	assert.ErrorIs(t, err, ErrStorage)
	assert.ErrorIs(t, err, raw)
	assert.NotErrorIs(t, err, ErrValidation)
}

func TestClassify_DeadlineWins(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), -time.Second)
	defer cancel()

	assert.Equal(t, ErrStorageTimeout, classify(ctx, errors.New("canceling statement")))
	assert.Equal(t, ErrStorageTimeout, classify(context.Background(), fmt.Errorf("begin: %w", context.DeadlineExceeded)))
}

func TestMissing(t *testing.T) {
	err := missing(repository.ErrNotFound, "customer", "c1")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.EqualError(t, err, "customer c1 not found")

	other := errors.New("other")
	assert.Equal(t, other, missing(other, "customer", "c1"))
	assert.NoError(t, missing(nil, "customer", "c1"))
}

func TestBusinessErrorMessages(t *testing.T) {
	err := &OverpaymentError{Remaining: decimal.RequireFromString("200")}
	assert.ErrorIs(t, err, ErrOverpayment)
	assert.Contains(t, err.Error(), "200.00")

	tr := &transitionError{from: "completed", to: "cancelled"}
	assert.ErrorIs(t, tr, ErrInvalidTransition)
	assert.Contains(t, tr.Error(), "completed")
}

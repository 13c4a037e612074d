package service

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"github.com/newNamejj/mobile-inventory-system/internal/erp/entity"
	"github.com/newNamejj/mobile-inventory-system/internal/erp/repository"
	"github.com/newNamejj/mobile-inventory-system/internal/erp/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 随机操作序列经 Accessor 落库，每步之后库存记录满足 0 <= available <= quantity 且等于流水净额
func TestAccessor_RandomSequenceKeepsStockAndLedgerInLine(t *testing.T) {
	env := setupFlow(t)
	ctx := context.Background()
	model := testutil.SeedModel(t, env.db, "60", "100", 0)
	inventoryID := testutil.Inventory(t, env.db, model.ID).ID

	stock := &Accessor{}
	ledger := &Recorder{}
	rng := rand.New(rand.NewSource(42))
	ops := []string{"receive", "reserve", "release", "ship", "ship_reserved", "adjust"}

	// 预期状态，仅在操作被接受时推进
	quantity, available := 0, 0
	accepted := map[string]int{}

	for step := 0; step < 300; step++ {
		op := ops[rng.Intn(len(ops))]
		qty := rng.Intn(8) + 1
		target := rng.Intn(quantity + 10)

		err := env.repos.Transaction(ctx, func(tx *repository.Repositories) error {
			move := func(direction string, n int) error {
				return ledger.Record(ctx, tx, Movement{
					ModelID:      model.ID,
					Direction:    direction,
					Quantity:     n,
					RelatedTable: entity.RelatedManual,
					Actor:        "u1",
				})
			}
			switch op {
			case "receive":
				if err := stock.Receive(ctx, tx, model.ID, qty); err != nil {
					return err
				}
				return move(entity.DirectionIn, qty)
			case "reserve":
				return stock.Reserve(ctx, tx, model.ID, qty)
			case "release":
				return stock.Release(ctx, tx, model.ID, qty)
			case "ship":
				if err := stock.Ship(ctx, tx, model.ID, qty); err != nil {
					return err
				}
				return move(entity.DirectionOut, qty)
			case "ship_reserved":
				if err := stock.ShipReserved(ctx, tx, model.ID, qty); err != nil {
					return err
				}
				return move(entity.DirectionOut, qty)
			default:
				_, delta, err := stock.Adjust(ctx, tx, inventoryID, target)
				if err != nil || delta == 0 {
					return err
				}
				if delta > 0 {
					return move(entity.DirectionIn, delta)
				}
				return move(entity.DirectionOut, -delta)
			}
		})

		reserved := quantity - available
		switch {
		case err == nil:
			accepted[op]++
			switch op {
			case "receive":
				quantity += qty
				available += qty
			case "reserve":
				available -= qty
			case "release":
				available += qty
			case "ship":
				quantity -= qty
				available -= qty
			case "ship_reserved":
				quantity -= qty
			default:
				quantity = target
				available = target - reserved
			}
		case errors.Is(err, ErrInsufficientStock):
		case op == "release" && errors.Is(err, ErrInvariantViolation):
			// 释放量超过预留量，整笔回滚
			require.Greater(t, qty, reserved, "step %d: release of %d rejected with %d reserved", step, qty, reserved)
		default:
			t.Fatalf("step %d (%s %d): unexpected error: %v", step, op, qty, err)
		}

		rec := testutil.Inventory(t, env.db, model.ID)
		require.True(t, rec.Consistent(), "step %d (%s): quantity=%d available=%d", step, op, rec.Quantity, rec.AvailableQuantity)
		require.Equal(t, quantity, rec.Quantity, "step %d (%s): quantity", step, op)
		require.Equal(t, available, rec.AvailableQuantity, "step %d (%s): available", step, op)

		net, err := env.repos.Ledger.NetQuantity(ctx, model.ID)
		require.NoError(t, err)
		require.Equal(t, rec.Quantity, net, "step %d (%s): ledger net differs from quantity", step, op)
	}

	// 种子固定，每类操作都至少被接受过一次
	for _, op := range ops {
		assert.Positive(t, accepted[op], "operation %s never accepted", op)
	}
}

func TestAccessor_RejectsNonPositiveQuantities(t *testing.T) {
	env := setupFlow(t)
	ctx := context.Background()
	model := testutil.SeedModel(t, env.db, "60", "100", 5)
	stock := &Accessor{}

	calls := map[string]func(tx *repository.Repositories) error{
		"receive":       func(tx *repository.Repositories) error { return stock.Receive(ctx, tx, model.ID, 0) },
		"reserve":       func(tx *repository.Repositories) error { return stock.Reserve(ctx, tx, model.ID, -1) },
		"release":       func(tx *repository.Repositories) error { return stock.Release(ctx, tx, model.ID, 0) },
		"ship":          func(tx *repository.Repositories) error { return stock.Ship(ctx, tx, model.ID, 0) },
		"ship_reserved": func(tx *repository.Repositories) error { return stock.ShipReserved(ctx, tx, model.ID, -3) },
	}
	for name, call := range calls {
		err := env.repos.Transaction(ctx, call)
		assert.ErrorIs(t, err, ErrValidation, name)
	}

	rec := testutil.Inventory(t, env.db, model.ID)
	assert.Equal(t, 5, rec.Quantity)
	assert.Equal(t, 5, rec.AvailableQuantity)
}

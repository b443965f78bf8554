package inventory

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

func key(wh, unit string) entity.StockKey {
	return entity.StockKey{ProductID: "p1", WarehouseID: wh, UnitID: unit}
}

func TestMovementDeltas_Traslado(t *testing.T) {
	m := &entity.StockMovement{
		ProductID:       "p1",
		FromWarehouseID: "w1",
		ToWarehouseID:   "w2",
		Items: []entity.MovementItem{
			{UnitID: "unit", Quantity: 10},
			{UnitID: "box", Quantity: 2},
		},
	}
	ds := MovementDeltas(m)
	assert.Equal(t, []Delta{
		{StockKey: key("w1", "unit"), Amount: -10},
		{StockKey: key("w2", "unit"), Amount: 10},
		{StockKey: key("w1", "box"), Amount: -2},
		{StockKey: key("w2", "box"), Amount: 2},
	}, ds)

	var total int64
	for _, d := range ds {
		total += d.Amount
	}
	assert.Zero(t, total, "un traslado conserva la cantidad")
}

func TestMovementDeltas_EntradaYSalida(t *testing.T) {
	in := &entity.StockMovement{ProductID: "p1", ToWarehouseID: "w1", Items: []entity.MovementItem{{UnitID: "box", Quantity: 5}}}
	assert.Equal(t, []Delta{{StockKey: key("w1", "box"), Amount: 5}}, MovementDeltas(in))

	out := &entity.StockMovement{ProductID: "p1", FromWarehouseID: "w1", Items: []entity.MovementItem{{UnitID: "box", Quantity: 5}}}
	assert.Equal(t, []Delta{{StockKey: key("w1", "box"), Amount: -5}}, MovementDeltas(out))
}

func TestInverseDeltas(t *testing.T) {
	ds := []Delta{{StockKey: key("w1", "u"), Amount: -3}, {StockKey: key("w2", "u"), Amount: 3}}
	inv := InverseDeltas(ds)
	assert.Equal(t, int64(3), inv[0].Amount)
	assert.Equal(t, int64(-3), inv[1].Amount)
	assert.Equal(t, int64(-3), ds[0].Amount, "no modifica la entrada")
}

func TestSortedKeys_SinDuplicadosYOrdenadas(t *testing.T) {
	ds := []Delta{
		{StockKey: key("w2", "u"), Amount: 1},
		{StockKey: key("w1", "u"), Amount: 1},
		{StockKey: key("w2", "u"), Amount: 1},
		{StockKey: key("w1", "a"), Amount: 1},
	}
	assert.Equal(t, []entity.StockKey{key("w1", "a"), key("w1", "u"), key("w2", "u")}, SortedKeys(ds))
}

func TestCheckAvailability(t *testing.T) {
	ds := []Delta{{StockKey: key("w1", "u"), Amount: -10}, {StockKey: key("w2", "u"), Amount: 10}}

	require.NoError(t, CheckAvailability(ds, map[entity.StockKey]int64{key("w1", "u"): 10}))

	err := CheckAvailability(ds, map[entity.StockKey]int64{key("w1", "u"): 9})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))
	assert.True(t, errors.Is(err, domain.ErrConflict))

	err = CheckAvailability(ds, map[entity.StockKey]int64{})
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock), "entrada ausente = 0")
}

func TestCheckAvailability_Desborde(t *testing.T) {
	credit := []Delta{{StockKey: key("w1", "u"), Amount: math.MaxInt64}}

	require.NoError(t, CheckAvailability(credit, map[entity.StockKey]int64{}))

	err := CheckAvailability(credit, map[entity.StockKey]int64{key("w1", "u"): 10})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrStockOverflow))
	assert.True(t, errors.Is(err, domain.ErrConflict))

	twice := []Delta{
		{StockKey: key("w1", "u"), Amount: math.MaxInt64},
		{StockKey: key("w1", "u"), Amount: 1},
	}
	err = CheckAvailability(twice, map[entity.StockKey]int64{})
	assert.True(t, errors.Is(err, domain.ErrStockOverflow), "la suma de líneas también se desborda")
}

func TestCheckAvailability_LineasRepetidasSeSuman(t *testing.T) {
	ds := []Delta{{StockKey: key("w1", "u"), Amount: -2}, {StockKey: key("w1", "u"), Amount: -3}}
	require.NoError(t, CheckAvailability(ds, map[entity.StockKey]int64{key("w1", "u"): 5}))
	err := CheckAvailability(ds, map[entity.StockKey]int64{key("w1", "u"): 4})
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))
}

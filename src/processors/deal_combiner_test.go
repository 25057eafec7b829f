package processors

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/username/dealfolio/backend/src/models"
)

func fptr(v float64) *float64     { return &v }
func tptr(t time.Time) *time.Time { return &t }

func TestCombinePartials(t *testing.T) {
	t1 := time.Date(2024, 1, 10, 9, 30, 0, 0, time.UTC)
	t2 := time.Date(2024, 1, 10, 15, 45, 0, 0, time.UTC)

	deals := []models.ParsedDeal{
		{Symbol: "EURUSD", Type: "buy", Quantity: 1.0, PnL: 10, EntryPrice: 1.0950, EntryTime: tptr(t1), StopLoss: fptr(1.09), DealID: "101"},
		{Symbol: "EURUSD", Type: "buy", Quantity: 0.5, PnL: -2, EntryPrice: 1.0960, ExitPrice: fptr(1.1010), ExitTime: tptr(t2), DealID: "102"},
	}

	combined := NewDealCombiner().Combine(deals)
	require.NotNil(t, combined)
	assert.Equal(t, "EURUSD", combined.Symbol)
	assert.Equal(t, "buy", combined.Type)
	assert.InDelta(t, 1.5, combined.Quantity, 1e-9)
	assert.InDelta(t, 8.0, combined.PnL, 1e-9)
	require.NotNil(t, combined.Comment)
	assert.Equal(t, "Combined 2 partials", *combined.Comment)
	assert.Equal(t, "101,102", combined.DealID)

	// Entry side from the first partial, exit side from the last.
	assert.InDelta(t, 1.0950, combined.EntryPrice, 1e-9)
	require.NotNil(t, combined.EntryTime)
	assert.Equal(t, t1, *combined.EntryTime)
	require.NotNil(t, combined.ExitPrice)
	assert.InDelta(t, 1.1010, *combined.ExitPrice, 1e-9)
	require.NotNil(t, combined.ExitTime)
	assert.Equal(t, t2, *combined.ExitTime)

	// Stop loss / take profit come from the first partial only.
	require.NotNil(t, combined.StopLoss)
	assert.InDelta(t, 1.09, *combined.StopLoss, 1e-9)
	assert.Nil(t, combined.TakeProfit)
}

func TestCombineRefusesMixedInput(t *testing.T) {
	c := NewDealCombiner()

	assert.Nil(t, c.Combine([]models.ParsedDeal{
		{Symbol: "EURUSD", Type: "buy", Quantity: 1},
		{Symbol: "GBPUSD", Type: "buy", Quantity: 1},
	}), "mixed symbols must refuse the whole combination")

	assert.Nil(t, c.Combine([]models.ParsedDeal{
		{Symbol: "EURUSD", Type: "buy", Quantity: 1},
		{Symbol: "EURUSD", Type: "sell", Quantity: 1},
	}), "mixed directions must refuse the whole combination")

	assert.Nil(t, c.Combine(nil))
}

func TestCombineSingleDealPassesCommentThrough(t *testing.T) {
	comment := "manual entry"
	combined := NewDealCombiner().Combine([]models.ParsedDeal{
		{Symbol: "AAPL", Type: "buy", Quantity: 10, EntryPrice: 185.2, Comment: &comment},
	})
	require.NotNil(t, combined)
	require.NotNil(t, combined.Comment)
	assert.Equal(t, "manual entry", *combined.Comment)
	assert.InDelta(t, 10, combined.Quantity, 1e-9)
}

func TestCombineEntryExitFallbacks(t *testing.T) {
	t2 := time.Date(2024, 1, 10, 15, 45, 0, 0, time.UTC)

	// First partial has no entry fields of its own: entry falls back to
	// the last partial's exit side.
	combined := NewDealCombiner().Combine([]models.ParsedDeal{
		{Symbol: "EURUSD", Type: "buy", Quantity: 0.5},
		{Symbol: "EURUSD", Type: "buy", Quantity: 0.5, ExitPrice: fptr(1.1010), ExitTime: tptr(t2)},
	})
	require.NotNil(t, combined)
	assert.InDelta(t, 1.1010, combined.EntryPrice, 1e-9)
	require.NotNil(t, combined.EntryTime)
	assert.Equal(t, t2, *combined.EntryTime)

	// Last partial has no exit fields: exit falls back to the first
	// partial's entry side.
	t1 := time.Date(2024, 1, 10, 9, 30, 0, 0, time.UTC)
	combined = NewDealCombiner().Combine([]models.ParsedDeal{
		{Symbol: "EURUSD", Type: "buy", Quantity: 0.5, EntryPrice: 1.0950, EntryTime: tptr(t1)},
		{Symbol: "EURUSD", Type: "buy", Quantity: 0.5},
	})
	require.NotNil(t, combined)
	require.NotNil(t, combined.ExitPrice)
	assert.InDelta(t, 1.0950, *combined.ExitPrice, 1e-9)
	require.NotNil(t, combined.ExitTime)
	assert.Equal(t, t1, *combined.ExitTime)
}

func TestCombineBySymbol(t *testing.T) {
	deals := []models.ParsedDeal{
		{Symbol: "EURUSD", Type: "buy", Quantity: 1.0, PnL: 10, EntryPrice: 1.0950},
		{Symbol: "AAPL", Type: "sell", Quantity: 5, PnL: 3, EntryPrice: 185},
		{Symbol: "EURUSD", Type: "buy", Quantity: 0.5, PnL: -2, EntryPrice: 1.0960},
		{Symbol: "EURUSD", Type: "sell", Quantity: 2, PnL: 1, EntryPrice: 1.1000},
	}

	out := CombineBySymbol(NewDealCombiner(), deals)
	require.Len(t, out, 3, "groups are symbol plus direction")

	assert.Equal(t, "EURUSD", out[0].Symbol)
	assert.Equal(t, "buy", out[0].Type)
	assert.InDelta(t, 1.5, out[0].Quantity, 1e-9)
	assert.Equal(t, "AAPL", out[1].Symbol)
	assert.Equal(t, "EURUSD", out[2].Symbol)
	assert.Equal(t, "sell", out[2].Type)
}

package processors

import (
	"fmt"
	"strings"

	"github.com/username/dealfolio/backend/src/logger"
	"github.com/username/dealfolio/backend/src/models"
	"github.com/username/dealfolio/backend/src/utils"
)

type dealCombiner struct{}

// NewDealCombiner creates the partial-fill combiner.
func NewDealCombiner() DealCombiner {
	return &dealCombiner{}
}

// Combine merges partial deals into one aggregate trade. All inputs must
// share the same symbol and normalized direction; a violation refuses the
// whole combination rather than merging a subset.
func (c *dealCombiner) Combine(deals []models.ParsedDeal) *models.ParsedDeal {
	if len(deals) == 0 {
		return nil
	}

	first := deals[0]
	last := deals[len(deals)-1]

	var quantity, pnl float64
	var ids []string
	for _, d := range deals {
		if d.Symbol != first.Symbol || d.Type != first.Type {
			logger.L.Warn("Refusing to combine deals with mixed symbol/direction",
				"symbol", first.Symbol, "other", d.Symbol, "type", first.Type, "otherType", d.Type)
			return nil
		}
		quantity += d.Quantity
		pnl += d.PnL
		if d.DealID != "" {
			ids = append(ids, d.DealID)
		}
	}

	combined := models.ParsedDeal{
		Source:     first.Source,
		Symbol:     first.Symbol,
		Type:       first.Type,
		Quantity:   utils.RoundFloat(quantity, 8),
		PnL:        utils.RoundFloat(pnl, 2),
		StopLoss:   first.StopLoss,
		TakeProfit: first.TakeProfit,
		DealID:     strings.Join(ids, ","),
	}

	// Entry fields come from the first partial, falling back to the last
	// partial's exit side when the first carries no entry of its own; exit
	// fields mirror that from the last partial.
	combined.EntryPrice = first.EntryPrice
	if combined.EntryPrice == 0 && last.ExitPrice != nil {
		combined.EntryPrice = *last.ExitPrice
	}
	combined.EntryTime = first.EntryTime
	if combined.EntryTime == nil {
		combined.EntryTime = last.ExitTime
	}

	combined.ExitPrice = last.ExitPrice
	if combined.ExitPrice == nil && first.EntryPrice > 0 {
		entry := first.EntryPrice
		combined.ExitPrice = &entry
	}
	combined.ExitTime = last.ExitTime
	if combined.ExitTime == nil {
		combined.ExitTime = first.EntryTime
	}

	if len(deals) > 1 {
		comment := fmt.Sprintf("Combined %d partials", len(deals))
		combined.Comment = &comment
	} else {
		combined.Comment = first.Comment
	}

	return &combined
}

// CombineBySymbol groups deals by symbol and direction in order of first
// appearance and combines each group. Deals that refuse combination are
// impossible here because grouping guarantees the precondition.
func CombineBySymbol(c DealCombiner, deals []models.ParsedDeal) []models.ParsedDeal {
	type key struct{ symbol, direction string }
	groups := make(map[key][]models.ParsedDeal)
	var order []key

	for _, d := range deals {
		k := key{d.Symbol, d.Type}
		if _, seen := groups[k]; !seen {
			order = append(order, k)
		}
		groups[k] = append(groups[k], d)
	}

	var out []models.ParsedDeal
	for _, k := range order {
		if combined := c.Combine(groups[k]); combined != nil {
			out = append(out, *combined)
		}
	}
	return out
}

// Package tabular holds the table heuristics shared by the HTML and
// spreadsheet extractors: deciding whether a row of header cells describes
// a positions table, mapping semantic column roles to indices, and turning
// a data row into a deal through that mapping.
//
// Header detection (the predicate) and row extraction (the RoleMap) are
// deliberately decoupled so new role patterns can be added without touching
// row-parsing logic.
package tabular

import (
	"strings"
	"time"

	"github.com/username/dealfolio/backend/src/models"
	"github.com/username/dealfolio/backend/src/utils"
)

// Role identifies the semantic meaning assigned to a table column after
// header inspection.
type Role string

const (
	RoleSymbol     Role = "symbol"
	RoleDirection  Role = "direction"
	RoleVolume     Role = "volume"
	RoleStopLoss   Role = "stopLoss"
	RoleTakeProfit Role = "takeProfit"
	RoleProfit     Role = "profit"
	RoleEntryTime  Role = "entryTime"
	RoleExitTime   Role = "exitTime"
	RoleEntryPrice Role = "entryPrice"
	RoleExitPrice  Role = "exitPrice"
	RoleTicket     Role = "ticket"
)

// RoleMap maps column roles to cell indices for one detected table.
type RoleMap map[Role]int

// Normalize lower-cases a header cell and collapses internal whitespace.
func Normalize(cell string) string {
	return strings.Join(strings.Fields(strings.ToLower(cell)), " ")
}

// NormalizeRow applies Normalize to every cell.
func NormalizeRow(cells []string) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = Normalize(c)
	}
	return out
}

func isSymbolHeader(s string) bool {
	return strings.Contains(s, "symbol") || strings.Contains(s, "instrument") || strings.Contains(s, "ticker")
}

func isDirectionHeader(s string) bool {
	return strings.Contains(s, "type") || strings.Contains(s, "direction") || s == "side"
}

func isVolumeHeader(s string) bool {
	for _, kw := range []string{"volume", "lots", "size", "qty", "quantity"} {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

// isTakeProfitHeader must be tested before isProfitHeader: "take profit"
// contains "profit".
func isTakeProfitHeader(s string) bool {
	return s == "t/p" || s == "t / p" || s == "tp" || strings.Contains(s, "take")
}

func isStopLossHeader(s string) bool {
	return s == "s/l" || s == "s / l" || s == "sl" || strings.Contains(s, "stop")
}

func isProfitHeader(s string) bool {
	if strings.Contains(s, "take") || strings.Contains(s, "stop") {
		return false
	}
	return strings.Contains(s, "profit") || strings.Contains(s, "p/l") || strings.Contains(s, "pnl") || s == "pl" || s == "net"
}

func isTimeHeader(s string) bool {
	return strings.Contains(s, "time") || strings.Contains(s, "date")
}

func isPriceHeader(s string) bool {
	return strings.Contains(s, "price") && !isTimeHeader(s)
}

func isTicketHeader(s string) bool {
	return s == "position" || s == "deal" || s == "order" || s == "#" || strings.Contains(s, "ticket")
}

// BuildRoleMap derives a RoleMap from a header row. The first column
// matching each role pattern wins; the first matching time column is
// treated as entry time and the second as exit time, and likewise for
// price columns. Header cells are normalized internally, so callers pass
// raw cells.
func BuildRoleMap(header []string) RoleMap {
	rm := RoleMap{}
	var timeCols, priceCols []int

	assign := func(role Role, idx int) {
		if _, ok := rm[role]; !ok {
			rm[role] = idx
		}
	}

	for i, cell := range header {
		s := Normalize(cell)
		if s == "" {
			continue
		}
		switch {
		case isTicketHeader(s):
			assign(RoleTicket, i)
		case isSymbolHeader(s):
			assign(RoleSymbol, i)
		case isDirectionHeader(s):
			assign(RoleDirection, i)
		case isVolumeHeader(s):
			assign(RoleVolume, i)
		case isTakeProfitHeader(s):
			assign(RoleTakeProfit, i)
		case isStopLossHeader(s):
			assign(RoleStopLoss, i)
		case isProfitHeader(s):
			assign(RoleProfit, i)
		case isTimeHeader(s):
			timeCols = append(timeCols, i)
		case isPriceHeader(s):
			priceCols = append(priceCols, i)
		}
	}

	if len(timeCols) > 0 {
		rm[RoleEntryTime] = timeCols[0]
	}
	if len(timeCols) > 1 {
		rm[RoleExitTime] = timeCols[1]
	}
	if len(priceCols) > 0 {
		rm[RoleEntryPrice] = priceCols[0]
	}
	if len(priceCols) > 1 {
		rm[RoleExitPrice] = priceCols[1]
	}
	return rm
}

// hasRequired reports whether the four mandatory roles resolved.
func (rm RoleMap) hasRequired() bool {
	for _, role := range []Role{RoleSymbol, RoleDirection, RoleVolume, RoleProfit} {
		if _, ok := rm[role]; !ok {
			return false
		}
	}
	return true
}

// LooksLikeHeader is the strict positions-header predicate: the four
// required roles plus at least one time column and one price column must
// resolve, or the table is not a positions table.
func LooksLikeHeader(cells []string) bool {
	rm := BuildRoleMap(cells)
	if !rm.hasRequired() {
		return false
	}
	_, hasTime := rm[RoleEntryTime]
	_, hasPrice := rm[RoleEntryPrice]
	return hasTime && hasPrice
}

// LooksLikeHeaderLoose drops the time/price requirement. Used when probing
// the rows after a "Positions" section title, where the real header may sit
// past merged or blank filler rows.
func LooksLikeHeaderLoose(cells []string) bool {
	return BuildRoleMap(cells).hasRequired()
}

func cellAt(cells []string, rm RoleMap, role Role) (string, bool) {
	idx, ok := rm[role]
	if !ok || idx < 0 || idx >= len(cells) {
		return "", false
	}
	return cells[idx], true
}

func numberAt(cells []string, rm RoleMap, role Role) (float64, bool) {
	raw, ok := cellAt(cells, rm, role)
	if !ok {
		return 0, false
	}
	return utils.ParseNumber(raw)
}

func priceAt(cells []string, rm RoleMap, role Role) *float64 {
	if v, ok := numberAt(cells, rm, role); ok && v > 0 {
		return &v
	}
	return nil
}

func timeAt(cells []string, rm RoleMap, role Role) *time.Time {
	raw, ok := cellAt(cells, rm, role)
	if !ok {
		return nil
	}
	if t, ok := utils.ParseDate(raw); ok {
		return &t
	}
	return nil
}

// ParseRow extracts one deal from a data row through the role map.
// Rejection rules: implausible symbol, a type cell that matches no
// direction pattern, non-positive volume or entry price. Header-duplicate
// rows are the caller's concern (LooksLikeHeaderLoose).
func ParseRow(cells []string, rm RoleMap, source string) (models.ParsedDeal, bool) {
	var deal models.ParsedDeal

	rawSymbol, ok := cellAt(cells, rm, RoleSymbol)
	if !ok {
		return deal, false
	}
	symbol := utils.CleanSymbol(rawSymbol)
	if !utils.IsPlausibleSymbol(symbol) {
		return deal, false
	}

	rawType, ok := cellAt(cells, rm, RoleDirection)
	if !ok || !utils.LooksLikeDirection(rawType) {
		return deal, false
	}

	volume, ok := func() (float64, bool) {
		raw, ok := cellAt(cells, rm, RoleVolume)
		if !ok {
			return 0, false
		}
		return utils.ParseVolume(raw)
	}()
	if !ok || volume <= 0 {
		return deal, false
	}

	entryPrice, ok := numberAt(cells, rm, RoleEntryPrice)
	exitPrice := priceAt(cells, rm, RoleExitPrice)
	if !ok {
		// No usable entry price column (loose header maps). Fall back to
		// the exit price when present; otherwise the row is unusable.
		if exitPrice == nil {
			return deal, false
		}
		entryPrice = *exitPrice
	}
	if entryPrice <= 0 {
		return deal, false
	}

	pnl, _ := numberAt(cells, rm, RoleProfit)

	deal = models.ParsedDeal{
		Source:     source,
		Symbol:     symbol,
		Type:       utils.NormalizeDirection(rawType),
		Quantity:   volume,
		EntryPrice: entryPrice,
		ExitPrice:  exitPrice,
		PnL:        pnl,
		EntryTime:  timeAt(cells, rm, RoleEntryTime),
		ExitTime:   timeAt(cells, rm, RoleExitTime),
		StopLoss:   priceAt(cells, rm, RoleStopLoss),
		TakeProfit: priceAt(cells, rm, RoleTakeProfit),
	}
	if ticket, ok := cellAt(cells, rm, RoleTicket); ok {
		deal.DealID = strings.TrimSpace(ticket)
	}
	return deal, true
}

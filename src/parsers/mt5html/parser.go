// Package mt5html extracts closed-position rows from HTML trade reports.
// Two strategies run in order: a fast path keyed to the fixed MT5 report
// layout, then a generic header heuristic for everything else.
package mt5html

import (
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/username/dealfolio/backend/src/logger"
	"github.com/username/dealfolio/backend/src/models"
	"github.com/username/dealfolio/backend/src/parsers/tabular"
	"github.com/username/dealfolio/backend/src/utils"
)

const sourceName = "mt5html"

// The MT5 positions section renders data rows with this many cells, the
// profit cell carrying colspan="2" because the exported profit column is
// merged.
const mt5RowCells = 13

// HTMLParser implements the parsers.Parser interface for HTML reports.
type HTMLParser struct{}

// NewParser creates a new instance of the HTMLParser.
func NewParser() *HTMLParser {
	return &HTMLParser{}
}

// Parse reads an HTML document and extracts positions rows. A document
// that fails to parse, or that contains no positions-shaped table, yields
// zero deals rather than an error so the dispatcher can try another
// strategy.
func (p *HTMLParser) Parse(file io.Reader) ([]models.ParsedDeal, error) {
	doc, err := goquery.NewDocumentFromReader(file)
	if err != nil {
		logger.L.Warn("HTML parser: document failed to parse", "error", err)
		return nil, nil
	}

	if deals := parseFixedLayout(doc); len(deals) > 0 {
		return deals, nil
	}
	return parseGeneric(doc), nil
}

// htmlRow is one table row with its cell texts and colspan markers.
type htmlRow struct {
	cells       []string
	hasColspan2 bool
}

func collectRows(table *goquery.Selection) []htmlRow {
	var rows []htmlRow
	table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		row := htmlRow{}
		tr.Find("td,th").Each(func(_ int, cell *goquery.Selection) {
			row.cells = append(row.cells, cellText(cell))
			if span, ok := cell.Attr("colspan"); ok && strings.TrimSpace(span) == "2" {
				row.hasColspan2 = true
			}
		})
		rows = append(rows, row)
	})
	return rows
}

// cellText walks the cell's nodes directly; goquery's Text() would also
// pick up script/style content nested in decorated report cells.
func cellText(cell *goquery.Selection) string {
	var sb strings.Builder
	for _, n := range cell.Nodes {
		writeNodeText(n, &sb)
	}
	return strings.Join(strings.Fields(sb.String()), " ")
}

func writeNodeText(n *html.Node, sb *strings.Builder) {
	if n.Type == html.TextNode {
		sb.WriteString(n.Data)
		sb.WriteString(" ")
		return
	}
	if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		writeNodeText(c, sb)
	}
}

// --- Strategy A: fixed MT5 layout ---

func isMT5Header(cells []string) bool {
	norm := tabular.NormalizeRow(cells)
	var hasPosition, hasSymbol, hasType, hasVolume, hasProfit bool
	for _, s := range norm {
		switch {
		case s == "position":
			hasPosition = true
		case s == "symbol":
			hasSymbol = true
		case s == "type":
			hasType = true
		case strings.Contains(s, "volume") || strings.Contains(s, "lots"):
			hasVolume = true
		case strings.Contains(s, "profit"):
			hasProfit = true
		}
	}
	return hasPosition && hasSymbol && hasType && hasVolume && hasProfit
}

// isSectionTitle spots the short rows that open the trailing report
// sections (Orders, Deals, Results, balance graph) after the positions
// block.
func isSectionTitle(cells []string) bool {
	nonEmpty := 0
	joined := ""
	for _, c := range cells {
		if s := strings.TrimSpace(c); s != "" {
			nonEmpty++
			joined += strings.ToLower(s) + " "
		}
	}
	if nonEmpty == 0 || nonEmpty > 2 {
		return false
	}
	for _, title := range []string{"orders", "deals", "results", "balance"} {
		if strings.Contains(joined, title) {
			return true
		}
	}
	return false
}

func parseFixedLayout(doc *goquery.Document) []models.ParsedDeal {
	var deals []models.ParsedDeal
	doc.Find("table").EachWithBreak(func(_ int, table *goquery.Selection) bool {
		rows := collectRows(table)
		headerIdx := -1
		for i, row := range rows {
			if isMT5Header(row.cells) {
				headerIdx = i
				break
			}
		}
		if headerIdx < 0 {
			return true
		}

		for _, row := range rows[headerIdx+1:] {
			if isSectionTitle(row.cells) {
				break
			}
			// Positions rows carry the merged profit cell; anything else in
			// this table is a summary or filler row.
			if len(row.cells) < mt5RowCells || !row.hasColspan2 {
				continue
			}
			if deal, ok := parseMT5Row(row.cells); ok {
				deals = append(deals, deal)
			}
		}
		return len(deals) == 0
	})
	return deals
}

// parseMT5Row reads trailing fields from the end of the row backwards:
// leading columns vary more across exporter versions than trailing ones.
func parseMT5Row(cells []string) (models.ParsedDeal, bool) {
	var deal models.ParsedDeal
	n := len(cells)

	symbol := utils.CleanSymbol(cells[2])
	if !utils.IsPlausibleSymbol(symbol) {
		return deal, false
	}
	rawType := cells[3]
	if !utils.LooksLikeDirection(rawType) {
		return deal, false
	}

	volume, ok := utils.ParseVolume(cells[n-9])
	if !ok || volume <= 0 {
		return deal, false
	}
	entryPrice, ok := utils.ParseNumber(cells[n-8])
	if !ok || entryPrice <= 0 {
		return deal, false
	}
	pnl, _ := utils.ParseNumber(cells[n-1])

	deal = models.ParsedDeal{
		Source:     sourceName,
		Symbol:     symbol,
		Type:       utils.NormalizeDirection(rawType),
		Quantity:   volume,
		EntryPrice: entryPrice,
		PnL:        pnl,
		DealID:     strings.TrimSpace(cells[1]),
	}
	if t, ok := utils.ParseDate(cells[0]); ok {
		deal.EntryTime = &t
	}
	if sl, ok := utils.ParseNumber(cells[n-7]); ok && sl > 0 {
		deal.StopLoss = &sl
	}
	if tp, ok := utils.ParseNumber(cells[n-6]); ok && tp > 0 {
		deal.TakeProfit = &tp
	}
	if t, ok := utils.ParseDate(cells[n-5]); ok {
		deal.ExitTime = &t
	}
	if exit, ok := utils.ParseNumber(cells[n-4]); ok && exit > 0 {
		deal.ExitPrice = &exit
	}
	return deal, true
}

// --- Strategy B: generic header heuristic ---

// headerProbeRows bounds how deep into a table the header search goes.
const headerProbeRows = 10

func parseGeneric(doc *goquery.Document) []models.ParsedDeal {
	var deals []models.ParsedDeal
	doc.Find("table").EachWithBreak(func(_ int, table *goquery.Selection) bool {
		rows := collectRows(table)
		limit := utils.MinInt(len(rows), headerProbeRows)

		for i := 0; i < limit; i++ {
			if !tabular.LooksLikeHeader(rows[i].cells) {
				continue
			}
			rm := tabular.BuildRoleMap(rows[i].cells)
			for _, row := range rows[i+1:] {
				if isSectionTitle(row.cells) {
					break
				}
				if tabular.LooksLikeHeaderLoose(row.cells) {
					continue // duplicate header row mistaken for data
				}
				if deal, ok := tabular.ParseRow(row.cells, rm, sourceName); ok {
					deals = append(deals, deal)
				}
			}
			break
		}
		// First table yielding rows wins; results are never merged across
		// tables.
		return len(deals) == 0
	})
	return deals
}

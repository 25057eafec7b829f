// Package xlsreport extracts closed positions from spreadsheet workbooks.
// Sheets are scanned in file order and the first sheet yielding at least
// one parsed row wins. Within a sheet a direct header scan runs first; if
// nothing matches, a "Positions" section title is located and the rows
// after it probed for a looser header, because exports frequently place a
// bold title with blank or merged filler rows above the real column
// header.
package xlsreport

import (
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/username/dealfolio/backend/src/logger"
	"github.com/username/dealfolio/backend/src/models"
	"github.com/username/dealfolio/backend/src/parsers/tabular"
	"github.com/username/dealfolio/backend/src/utils"
)

const sourceName = "xlsx"

// headerScanRows bounds the direct header scan per sheet.
const headerScanRows = 250

// sectionProbeRows is how many rows after a "positions" title are probed
// for a header.
const sectionProbeRows = 4

// XLSParser implements the parsers.Parser interface for workbooks.
type XLSParser struct{}

// NewParser creates a new instance of the XLSParser.
func NewParser() *XLSParser {
	return &XLSParser{}
}

// Parse loads the workbook and scans its sheets. Any failure to load or
// read the workbook yields zero deals rather than an error.
func (p *XLSParser) Parse(file io.Reader) ([]models.ParsedDeal, error) {
	f, err := excelize.OpenReader(file)
	if err != nil {
		logger.L.Warn("Spreadsheet parser: workbook failed to load", "error", err)
		return nil, nil
	}
	defer f.Close()

	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			logger.L.Warn("Spreadsheet parser: skipping unreadable sheet", "sheet", sheet, "error", err)
			continue
		}
		if deals := scanSheet(rows); len(deals) > 0 {
			logger.L.Debug("Spreadsheet parser: positions found", "sheet", sheet, "deals", len(deals))
			return deals, nil
		}
	}
	return nil, nil
}

func scanSheet(rows [][]string) []models.ParsedDeal {
	limit := utils.MinInt(len(rows), headerScanRows)

	// Direct scan: any row satisfying the strict positions-header
	// predicate.
	for i := 0; i < limit; i++ {
		if tabular.LooksLikeHeader(rows[i]) {
			return parseBelow(rows, i)
		}
	}

	// Section-title fallback: find a row whose joined text mentions
	// "positions", then probe the next few rows with the loose predicate.
	for i := 0; i < limit; i++ {
		joined := strings.ToLower(strings.Join(rows[i], " "))
		if !strings.Contains(joined, "positions") {
			continue
		}
		probeEnd := utils.MinInt(len(rows), i+1+sectionProbeRows)
		for j := i + 1; j < probeEnd; j++ {
			if tabular.LooksLikeHeaderLoose(rows[j]) {
				return parseBelow(rows, j)
			}
		}
	}
	return nil
}

func parseBelow(rows [][]string, headerIdx int) []models.ParsedDeal {
	rm := tabular.BuildRoleMap(rows[headerIdx])
	var deals []models.ParsedDeal
	for _, row := range rows[headerIdx+1:] {
		if isTrailingSection(row) {
			break
		}
		if tabular.LooksLikeHeaderLoose(row) {
			continue // duplicate header row mistaken for data
		}
		if deal, ok := tabular.ParseRow(row, rm, sourceName); ok {
			deals = append(deals, deal)
		}
	}
	return deals
}

// isTrailingSection spots the short title rows that open the sections
// after the positions block (orders, deals, results).
func isTrailingSection(row []string) bool {
	nonEmpty := 0
	joined := ""
	for _, c := range row {
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

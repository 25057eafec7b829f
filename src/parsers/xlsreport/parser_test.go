package xlsreport

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func workbookBytes(t *testing.T, sheets map[string][][]interface{}, order []string) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	for _, name := range order {
		if name != "Sheet1" {
			_, err := f.NewSheet(name)
			require.NoError(t, err)
		}
		for i, row := range sheets[name] {
			cell, err := excelize.CoordinatesToCellName(1, i+1)
			require.NoError(t, err)
			require.NoError(t, f.SetSheetRow(name, cell, &row))
		}
	}

	var buf bytes.Buffer
	_, err := f.WriteTo(&buf)
	require.NoError(t, err)
	return buf.Bytes()
}

var positionsHeader = []interface{}{"Open Time", "Symbol", "Type", "Volume", "Open Price", "S/L", "T/P", "Close Time", "Close Price", "Profit"}

func TestParseDirectHeaderScan(t *testing.T) {
	data := workbookBytes(t, map[string][][]interface{}{
		"Sheet1": {
			{"Trade History Report"},
			{},
			positionsHeader,
			{"2024.01.10 09:30:00", "EURUSD", "Buy", "0.50/1.00", "1.0950", "1.0900", "1.1100", "2024.01.10 15:45:00", "1.1010", "30.00"},
			{"2024.01.11 10:00:00", "XAUUSD", "Sell", "0.10", "2030.50", "", "", "2024.01.11 12:00:00", "2025.10", "54.00"},
			{"Orders"},
			{"2024.01.12 10:00:00", "GBPUSD", "Buy Limit", "1.00", "1.2600", "", "", "", "", "0.00"},
		},
	}, []string{"Sheet1"})

	deals, err := NewParser().Parse(bytes.NewReader(data))
	require.NoError(t, err)
	require.Len(t, deals, 2, "rows after the Orders section must not be parsed")

	assert.Equal(t, "EURUSD", deals[0].Symbol)
	assert.Equal(t, "buy", deals[0].Type)
	assert.InDelta(t, 0.5, deals[0].Quantity, 1e-9)
	assert.InDelta(t, 1.0950, deals[0].EntryPrice, 1e-9)
	require.NotNil(t, deals[0].ExitPrice)
	assert.InDelta(t, 1.1010, *deals[0].ExitPrice, 1e-9)
	assert.Equal(t, "sell", deals[1].Type)
}

func TestParseSecondSheetFallback(t *testing.T) {
	data := workbookBytes(t, map[string][][]interface{}{
		"Sheet1": {
			{"Summary"},
			{"Balance", "10000"},
		},
		"Trades": {
			positionsHeader,
			{"2024.02.01 14:30:00", "AAPL", "Buy", "100", "185.20", "", "", "2024.02.02 20:00:00", "188.40", "320"},
		},
	}, []string{"Sheet1", "Trades"})

	deals, err := NewParser().Parse(bytes.NewReader(data))
	require.NoError(t, err)
	require.Len(t, deals, 1)
	assert.Equal(t, "AAPL", deals[0].Symbol)
}

func TestParseSectionTitleProbe(t *testing.T) {
	// The real header sits two filler rows below the bold section title and
	// carries no time column, so only the loose probe can find it.
	data := workbookBytes(t, map[string][][]interface{}{
		"Sheet1": {
			{"Closed Positions"},
			{},
			{"Symbol", "Type", "Volume", "Price", "Profit"},
			{"EURUSD", "buy", "1.00", "1.0950", "25.00"},
			{"BTC-USD", "sell", "0.25", "43000", "-80.00"},
		},
	}, []string{"Sheet1"})

	deals, err := NewParser().Parse(bytes.NewReader(data))
	require.NoError(t, err)
	require.Len(t, deals, 2)
	assert.Equal(t, "EURUSD", deals[0].Symbol)
	assert.InDelta(t, 1.0950, deals[0].EntryPrice, 1e-9)
	assert.Equal(t, "BTC-USD", deals[1].Symbol)
	assert.Equal(t, "sell", deals[1].Type)
}

func TestParseNoPositionsAnywhere(t *testing.T) {
	data := workbookBytes(t, map[string][][]interface{}{
		"Sheet1": {
			{"Company", "Code", "Closing Price", "Traded Volume"},
			{"Acme Corp", "ACME", "12.34", "1000"},
		},
	}, []string{"Sheet1"})

	deals, err := NewParser().Parse(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Empty(t, deals)
}

func TestParseCorruptWorkbook(t *testing.T) {
	deals, err := NewParser().Parse(strings.NewReader("this is not a zip archive"))
	require.NoError(t, err, "a workbook that fails to load must yield zero rows, not an error")
	assert.Empty(t, deals)
}

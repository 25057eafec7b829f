package mt5xml

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const xmlExport = `<?xml version="1.0" encoding="utf-8"?>
<Report>
  <Positions>
    <Position>
      <Symbol>EURUSD</Symbol>
      <Type>Buy</Type>
      <Volume>0.50/1.00</Volume>
      <OpenPrice>1.0950</OpenPrice>
      <ClosePrice>1.1010</ClosePrice>
      <Profit>30.00</Profit>
      <OpenTime>2024.01.10 09:30:00</OpenTime>
      <CloseTime>2024.01.10 15:45:00</CloseTime>
      <SL>1.0900</SL>
      <TP>1.1100</TP>
      <Comment>scalp</Comment>
      <Ticket>123456</Ticket>
    </Position>
    <position>
      <symbol>XAUUSD</symbol>
      <direction>short</direction>
      <lots>0.10</lots>
      <open_price>2030.50</open_price>
      <profit>54.00</profit>
      <open_time>2024.01.11 10:00:00</open_time>
    </position>
    <Position>
      <Symbol></Symbol>
      <Type>Buy</Type>
      <Volume>1.00</Volume>
    </Position>
    <Position>
      <Symbol>GBPUSD</Symbol>
      <Type>Sell</Type>
      <Volume>0</Volume>
    </Position>
  </Positions>
</Report>`

func TestParsePositions(t *testing.T) {
	deals, err := NewParser().Parse(strings.NewReader(xmlExport))
	require.NoError(t, err)
	require.Len(t, deals, 2, "empty-symbol and zero-volume nodes must be skipped")

	d := deals[0]
	assert.Equal(t, "EURUSD", d.Symbol)
	assert.Equal(t, "buy", d.Type)
	assert.InDelta(t, 0.5, d.Quantity, 1e-9)
	assert.InDelta(t, 1.0950, d.EntryPrice, 1e-9)
	require.NotNil(t, d.ExitPrice)
	assert.InDelta(t, 1.1010, *d.ExitPrice, 1e-9)
	assert.InDelta(t, 30.0, d.PnL, 1e-9)
	require.NotNil(t, d.EntryTime)
	require.NotNil(t, d.ExitTime)
	require.NotNil(t, d.StopLoss)
	require.NotNil(t, d.TakeProfit)
	require.NotNil(t, d.Comment)
	assert.Equal(t, "scalp", *d.Comment)
	assert.Equal(t, "123456", d.DealID)

	// Lower-case element names and alias variants resolve to the same
	// fields; missing optionals stay nil.
	d = deals[1]
	assert.Equal(t, "XAUUSD", d.Symbol)
	assert.Equal(t, "sell", d.Type)
	assert.InDelta(t, 0.10, d.Quantity, 1e-9)
	assert.InDelta(t, 2030.50, d.EntryPrice, 1e-9)
	assert.Nil(t, d.ExitPrice)
	assert.Nil(t, d.ExitTime)
	assert.Nil(t, d.StopLoss)
	assert.Nil(t, d.TakeProfit)
	assert.Nil(t, d.Comment)
}

func TestParseAttributeStyleExport(t *testing.T) {
	export := `<Report><Position Symbol="EURUSD" Type="sell" Volume="1.25" Price="1.0800" Profit="-12.5" Time="2024.03.01 10:00:00"/></Report>`

	deals, err := NewParser().Parse(strings.NewReader(export))
	require.NoError(t, err)
	require.Len(t, deals, 1)
	assert.Equal(t, "EURUSD", deals[0].Symbol)
	assert.Equal(t, "sell", deals[0].Type)
	assert.InDelta(t, 1.25, deals[0].Quantity, 1e-9)
	assert.InDelta(t, 1.08, deals[0].EntryPrice, 1e-9)
	assert.InDelta(t, -12.5, deals[0].PnL, 1e-9)
	require.NotNil(t, deals[0].EntryTime)
}

func TestParseTruncatedDocument(t *testing.T) {
	truncated := `<?xml version="1.0"?><Report><Positions><Position><Symbol>EURUSD`

	deals, err := NewParser().Parse(strings.NewReader(truncated))
	require.NoError(t, err, "malformed XML must yield zero rows, not an error")
	assert.Empty(t, deals)
}

func TestParseNonXML(t *testing.T) {
	deals, err := NewParser().Parse(strings.NewReader("just some text"))
	require.NoError(t, err)
	assert.Empty(t, deals)
}

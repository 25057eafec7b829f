// Package mt5xml extracts closed positions from XML position exports.
// Exporter versions disagree on tag names and on whether fields are child
// elements or attributes, so every logical field resolves through an
// ordered alias list.
package mt5xml

import (
	"encoding/xml"
	"io"
	"strings"

	"github.com/username/dealfolio/backend/src/logger"
	"github.com/username/dealfolio/backend/src/models"
	"github.com/username/dealfolio/backend/src/utils"
)

const sourceName = "mt5xml"

// node is a generic element tree; exports bury <Position> elements at
// varying depths under varying wrappers.
type node struct {
	XMLName xml.Name
	Attrs   []xml.Attr `xml:",any,attr"`
	Content string     `xml:",chardata"`
	Nodes   []node     `xml:",any"`
}

// Field alias lists, tried in order. Case variance is tolerated only at
// the element-name level listed here, not recursively.
var (
	symbolAliases     = []string{"Symbol", "symbol"}
	typeAliases       = []string{"Type", "type", "Direction", "direction", "Action", "action"}
	volumeAliases     = []string{"Volume", "volume", "Lots", "lots"}
	entryPriceAliases = []string{"OpenPrice", "open_price", "Price", "price"}
	exitPriceAliases  = []string{"ClosePrice", "close_price"}
	profitAliases     = []string{"Profit", "profit"}
	entryTimeAliases  = []string{"OpenTime", "open_time", "Time", "time"}
	exitTimeAliases   = []string{"CloseTime", "close_time"}
	stopLossAliases   = []string{"SL", "sl", "StopLoss", "stop_loss"}
	takeProfitAliases = []string{"TP", "tp", "TakeProfit", "take_profit"}
	commentAliases    = []string{"Comment", "comment"}
	ticketAliases     = []string{"Ticket", "ticket", "Position", "position", "ID", "id"}
)

// XMLParser implements the parsers.Parser interface for XML exports.
type XMLParser struct{}

// NewParser creates a new instance of the XMLParser.
func NewParser() *XMLParser {
	return &XMLParser{}
}

// Parse decodes the document and extracts every <Position>/<position>
// element. A document that is not well-formed XML yields zero deals rather
// than an error.
func (p *XMLParser) Parse(file io.Reader) ([]models.ParsedDeal, error) {
	var root node
	if err := xml.NewDecoder(file).Decode(&root); err != nil {
		logger.L.Warn("XML parser: document is not well-formed", "error", err)
		return nil, nil
	}

	var deals []models.ParsedDeal
	walkPositions(&root, func(pos *node) {
		if deal, ok := parsePosition(pos); ok {
			deals = append(deals, deal)
		}
	})
	return deals, nil
}

func walkPositions(n *node, visit func(*node)) {
	if n.XMLName.Local == "Position" || n.XMLName.Local == "position" {
		visit(n)
		return
	}
	for i := range n.Nodes {
		walkPositions(&n.Nodes[i], visit)
	}
}

// field resolves an alias list against child elements first, then
// attributes.
func field(pos *node, aliases []string) (string, bool) {
	for _, name := range aliases {
		for i := range pos.Nodes {
			if pos.Nodes[i].XMLName.Local == name {
				return strings.TrimSpace(pos.Nodes[i].Content), true
			}
		}
	}
	for _, name := range aliases {
		for _, attr := range pos.Attrs {
			if attr.Name.Local == name {
				return strings.TrimSpace(attr.Value), true
			}
		}
	}
	return "", false
}

func parsePosition(pos *node) (models.ParsedDeal, bool) {
	var deal models.ParsedDeal

	rawSymbol, _ := field(pos, symbolAliases)
	symbol := utils.CleanSymbol(rawSymbol)
	if symbol == "" || !utils.IsPlausibleSymbol(symbol) {
		return deal, false
	}

	rawVolume, _ := field(pos, volumeAliases)
	volume, ok := utils.ParseVolume(rawVolume)
	if !ok || volume <= 0 {
		return deal, false
	}

	rawType, _ := field(pos, typeAliases)

	deal = models.ParsedDeal{
		Source:   sourceName,
		Symbol:   symbol,
		Type:     utils.NormalizeDirection(rawType),
		Quantity: volume,
	}

	if raw, ok := field(pos, entryPriceAliases); ok {
		if v, ok := utils.ParseNumber(raw); ok {
			deal.EntryPrice = v
		}
	}
	if raw, ok := field(pos, exitPriceAliases); ok {
		if v, ok := utils.ParseNumber(raw); ok && v > 0 {
			deal.ExitPrice = &v
		}
	}
	if raw, ok := field(pos, profitAliases); ok {
		if v, ok := utils.ParseNumber(raw); ok {
			deal.PnL = v
		}
	}
	if raw, ok := field(pos, entryTimeAliases); ok {
		if t, ok := utils.ParseDate(raw); ok {
			deal.EntryTime = &t
		}
	}
	if raw, ok := field(pos, exitTimeAliases); ok {
		if t, ok := utils.ParseDate(raw); ok {
			deal.ExitTime = &t
		}
	}
	if raw, ok := field(pos, stopLossAliases); ok {
		if v, ok := utils.ParseNumber(raw); ok && v > 0 {
			deal.StopLoss = &v
		}
	}
	if raw, ok := field(pos, takeProfitAliases); ok {
		if v, ok := utils.ParseNumber(raw); ok && v > 0 {
			deal.TakeProfit = &v
		}
	}
	if raw, ok := field(pos, commentAliases); ok && raw != "" {
		deal.Comment = &raw
	}
	if raw, ok := field(pos, ticketAliases); ok {
		deal.DealID = raw
	}
	return deal, true
}

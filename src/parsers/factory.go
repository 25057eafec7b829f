// backend/src/parsers/factory.go
package parsers

import (
	"fmt"

	"github.com/username/dealfolio/backend/src/parsers/mt5html"
	"github.com/username/dealfolio/backend/src/parsers/mt5xml"
	"github.com/username/dealfolio/backend/src/parsers/xlsreport"
)

func GetParser(format Format) (Parser, error) {
	switch format {
	case FormatHTML:
		return mt5html.NewParser(), nil
	case FormatXML:
		return mt5xml.NewParser(), nil
	case FormatSpreadsheet:
		return xlsreport.NewParser(), nil
	default:
		return nil, fmt.Errorf("no parser available for format: %s", format)
	}
}

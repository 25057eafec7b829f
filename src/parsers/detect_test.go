package parsers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		content  string
		want     Format
		sniffed  bool
	}{
		{"xlsx extension", "report.xlsx", "", FormatSpreadsheet, false},
		{"xls extension", "REPORT.XLS", "", FormatSpreadsheet, false},
		{"xml extension", "positions.xml", "", FormatXML, false},
		{"html extension", "statement.html", "", FormatHTML, false},
		{"htm extension", "statement.htm", "", FormatHTML, false},
		{"txt with xml declaration", "export.txt", `<?xml version="1.0"?><Report/>`, FormatXML, true},
		{"txt with markup", "export.txt", "  <html><body></body></html>", FormatXML, true},
		{"txt with plain text", "export.txt", "symbol,type,volume", FormatHTML, true},
		{"no extension", "export", "<Report/>", FormatXML, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			format, sniffed := DetectFormat(tt.filename, []byte(tt.content))
			assert.Equal(t, tt.want, format)
			assert.Equal(t, tt.sniffed, sniffed)
		})
	}
}

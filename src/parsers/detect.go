package parsers

import (
	"bytes"
	"path/filepath"
	"strings"
)

// Format identifies which parse strategy handles a report.
type Format string

const (
	FormatHTML        Format = "html"
	FormatXML         Format = "xml"
	FormatSpreadsheet Format = "xlsx"
)

// DetectFormat picks a parse strategy from the filename extension and, when
// the extension decides nothing, a content sniff. sniffed reports whether
// the choice came from content rather than the extension; sniffed XML that
// yields no rows is retried as HTML by the dispatcher, because some exports
// ship HTML under a .txt-like extension.
func DetectFormat(filename string, content []byte) (format Format, sniffed bool) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xls":
		return FormatSpreadsheet, false
	case ".xml":
		return FormatXML, false
	case ".htm", ".html":
		return FormatHTML, false
	}

	trimmed := bytes.TrimSpace(content)
	if bytes.HasPrefix(trimmed, []byte("<?xml")) {
		return FormatXML, true
	}
	if bytes.HasPrefix(trimmed, []byte("<")) {
		// Could be either; XML is tried first and HTML is the fallback.
		return FormatXML, true
	}
	return FormatHTML, true
}

package parsers

import (
	"bytes"
	"fmt"
	"io"

	"github.com/username/dealfolio/backend/src/logger"
	"github.com/username/dealfolio/backend/src/models"
	"github.com/username/dealfolio/backend/src/parsers/mt5html"
)

// ParseReport reads the whole report into memory, selects a parse strategy
// and returns the extracted deals. An empty list is success ("nothing
// recognizable"); an error is returned only when the file itself cannot be
// read.
func ParseReport(filename string, file io.Reader) ([]models.ParsedDeal, error) {
	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("reading report %q: %w", filename, err)
	}

	format, sniffed := DetectFormat(filename, data)
	parser, err := GetParser(format)
	if err != nil {
		return nil, err
	}

	deals, err := parser.Parse(bytes.NewReader(data))
	if err != nil {
		// Extractor errors mean reader failure, which an in-memory reader
		// cannot produce; treat any as zero rows.
		logger.L.Warn("Report parse failed", "filename", filename, "format", format, "error", err)
		deals = nil
	}

	// Sniffed XML that produced nothing is frequently HTML with a
	// misleading extension.
	if len(deals) == 0 && sniffed && format == FormatXML {
		logger.L.Debug("Sniffed XML yielded no rows, retrying as HTML", "filename", filename)
		deals, _ = mt5html.NewParser().Parse(bytes.NewReader(data))
	}

	logger.L.Info("Report parsed", "filename", filename, "format", format, "deals", len(deals))
	return deals, nil
}

// ReportResult carries the outcome of an asynchronous parse.
type ReportResult struct {
	Deals []models.ParsedDeal
	Err   error
}

// ParseReportAsync runs ParseReport on its own goroutine and delivers the
// result on the returned channel. There is no cancellation once a parse
// begins; callers wanting it must abort at the read boundary.
func ParseReportAsync(filename string, file io.Reader) <-chan ReportResult {
	ch := make(chan ReportResult, 1)
	go func() {
		deals, err := ParseReport(filename, file)
		ch <- ReportResult{Deals: deals, Err: err}
	}()
	return ch
}

package services

import (
	"errors"
	"io"

	"github.com/username/dealfolio/backend/src/models"
)

// ImportResult is the outcome of one ProcessUpload call: the raw deal list
// extracted from the uploaded file and, when combining was requested, the
// per-symbol aggregates.
type ImportResult struct {
	ImportID string              `json:"import_id"`
	Filename string              `json:"filename"`
	Deals    []models.ParsedDeal `json:"deals"`
	Combined []models.ParsedDeal `json:"combined,omitempty"`
}

// Common service errors.
var (
	ErrParsingFailed = errors.New("report parsing failed")
	ErrStorageFailed = errors.New("deal storage failed")
)

// ImportService defines the core upload processing logic.
type ImportService interface {
	ProcessUpload(fileReader io.Reader, userID int64, filename string) (*ImportResult, error)
	GetLatestImportResult(userID int64) (*ImportResult, error)
	CombineDeals(deals []models.ParsedDeal) []models.ParsedDeal
	InvalidateUserCache(userID int64)
}

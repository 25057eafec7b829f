// backend/src/services/import_service.go
package services

import (
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/username/dealfolio/backend/src/config"
	"github.com/username/dealfolio/backend/src/database"
	"github.com/username/dealfolio/backend/src/logger"
	"github.com/username/dealfolio/backend/src/models"
	"github.com/username/dealfolio/backend/src/parsers"
	"github.com/username/dealfolio/backend/src/processors"
)

const (
	ckLatestImportResult = "agg_latest_import_result_user_%d"

	DefaultCacheExpiration = 15 * time.Minute
	CacheCleanupInterval   = 30 * time.Minute
)

type importServiceImpl struct {
	combiner    processors.DealCombiner
	resultCache *cache.Cache
}

func NewImportService(combiner processors.DealCombiner, resultCache *cache.Cache) ImportService {
	return &importServiceImpl{
		combiner:    combiner,
		resultCache: resultCache,
	}
}

func (s *importServiceImpl) ProcessUpload(fileReader io.Reader, userID int64, filename string) (*ImportResult, error) {
	overallStartTime := time.Now()
	logger.L.Info("ProcessUpload START", "userID", userID, "filename", filename)

	deals, err := parsers.ParseReport(filename, fileReader)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParsingFailed, err)
	}

	result := &ImportResult{
		ImportID: uuid.NewString(),
		Filename: filename,
		Deals:    deals,
	}
	if config.Cfg != nil && config.Cfg.CombineOnUpload {
		result.Combined = s.CombineDeals(deals)
	}

	if len(deals) > 0 {
		if err := s.storeDeals(userID, result.ImportID, deals); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStorageFailed, err)
		}
	}

	cacheKey := fmt.Sprintf(ckLatestImportResult, userID)
	s.resultCache.Set(cacheKey, result, DefaultCacheExpiration)

	logger.L.Info("ProcessUpload END", "userID", userID, "deals", len(deals), "duration", time.Since(overallStartTime))
	return result, nil
}

func (s *importServiceImpl) storeDeals(userID int64, importID string, deals []models.ParsedDeal) error {
	dbTx, err := database.DB.Begin()
	if err != nil {
		return fmt.Errorf("error beginning database transaction: %w", err)
	}
	defer dbTx.Rollback()

	stmt, err := dbTx.Prepare(`INSERT INTO parsed_deals (user_id, import_id, source, symbol, type, quantity, entry_price, exit_price, pnl, entry_time, exit_time, stop_loss, take_profit, comment, deal_id) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("error preparing insert statement: %w", err)
	}
	defer stmt.Close()

	for _, d := range deals {
		_, err := stmt.Exec(userID, importID, d.Source, d.Symbol, d.Type, d.Quantity, d.EntryPrice,
			d.ExitPrice, d.PnL, d.EntryTime, d.ExitTime, d.StopLoss, d.TakeProfit, d.Comment, d.DealID)
		if err != nil {
			return fmt.Errorf("error inserting deal (symbol: %s, dealID: %s): %w", d.Symbol, d.DealID, err)
		}
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("error committing deals: %w", err)
	}
	return nil
}

func (s *importServiceImpl) GetLatestImportResult(userID int64) (*ImportResult, error) {
	cacheKey := fmt.Sprintf(ckLatestImportResult, userID)
	if cached, found := s.resultCache.Get(cacheKey); found {
		logger.L.Debug("Cache hit for GetLatestImportResult", "userID", userID)
		return cached.(*ImportResult), nil
	}
	logger.L.Info("Cache miss for GetLatestImportResult, rebuilding from DB", "userID", userID)

	deals, importID, err := fetchLatestUserDeals(userID)
	if err != nil {
		return nil, err
	}

	result := &ImportResult{
		ImportID: importID,
		Deals:    deals,
	}
	if len(deals) > 0 {
		result.Combined = s.CombineDeals(deals)
		s.resultCache.Set(cacheKey, result, DefaultCacheExpiration)
	}
	return result, nil
}

// CombineDeals collapses partial fills per symbol/direction. The raw list
// is left untouched; callers decide which view to use.
func (s *importServiceImpl) CombineDeals(deals []models.ParsedDeal) []models.ParsedDeal {
	return processors.CombineBySymbol(s.combiner, deals)
}

func (s *importServiceImpl) InvalidateUserCache(userID int64) {
	s.resultCache.Delete(fmt.Sprintf(ckLatestImportResult, userID))
	logger.L.Info("Invalidated import result cache for user", "userID", userID)
}

// fetchLatestUserDeals loads the deals of the user's most recent import.
func fetchLatestUserDeals(userID int64) ([]models.ParsedDeal, string, error) {
	row := database.DB.QueryRow(`SELECT import_id FROM parsed_deals WHERE user_id = ? ORDER BY created_at DESC, id DESC LIMIT 1`, userID)
	var importID string
	if err := row.Scan(&importID); err != nil {
		// No imports yet is not an error; the result is simply empty.
		logger.L.Debug("No stored imports for user", "userID", userID, "error", err)
		return nil, "", nil
	}

	rows, err := database.DB.Query(`SELECT source, symbol, type, quantity, entry_price, exit_price, pnl, entry_time, exit_time, stop_loss, take_profit, comment, deal_id FROM parsed_deals WHERE user_id = ? AND import_id = ? ORDER BY id ASC`, userID, importID)
	if err != nil {
		return nil, "", fmt.Errorf("error querying deals for userID %d: %w", userID, err)
	}
	defer rows.Close()

	var deals []models.ParsedDeal
	for rows.Next() {
		var d models.ParsedDeal
		scanErr := rows.Scan(&d.Source, &d.Symbol, &d.Type, &d.Quantity, &d.EntryPrice,
			&d.ExitPrice, &d.PnL, &d.EntryTime, &d.ExitTime, &d.StopLoss, &d.TakeProfit, &d.Comment, &d.DealID)
		if scanErr != nil {
			return nil, "", fmt.Errorf("error scanning deal row for userID %d: %w", userID, scanErr)
		}
		deals = append(deals, d)
	}
	if err = rows.Err(); err != nil {
		return nil, "", fmt.Errorf("error iterating over deal rows for userID %d: %w", userID, err)
	}
	return deals, importID, nil
}

package processors

import (
	"github.com/username/dealfolio/backend/src/models"
)

// DealCombiner merges partial-fill deals that share a symbol and direction
// into one aggregate trade.
type DealCombiner interface {
	Combine(deals []models.ParsedDeal) *models.ParsedDeal
}

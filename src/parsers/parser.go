// backend/src/parsers/parser.go
package parsers

import (
	"io"

	"github.com/username/dealfolio/backend/src/models"
)

// Parser converts one report document into a flat list of deals.
// Implementations return zero deals (nil error) when the document parses
// but contains nothing recognizable, and also when the document itself is
// malformed for their format; an error is reserved for I/O failure.
type Parser interface {
	Parse(file io.Reader) ([]models.ParsedDeal, error)
}

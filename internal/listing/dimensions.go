package listing

import (
	"fmt"

	"github.com/odyssey-erp/stockroom/internal/platform/httpx"
	"github.com/odyssey-erp/stockroom/internal/urlstate"
)

// Dimension keys shared by every list page.
const (
	SearchKey    = "search"
	PageKey      = "page"
	StartDateKey = "startDate"
	EndDateKey   = "endDate"
)

// MaxPage bounds the page dimension; larger values fall back to page 1.
const MaxPage = 1_000_000

// AllValue is the select option meaning "no filter".
const AllValue = "all"

// Search is the free-text search dimension.
func Search() urlstate.Dimension {
	return urlstate.String(SearchKey, "")
}

// PageNumber is the 1-based page dimension.
func PageNumber() urlstate.Dimension {
	return urlstate.Int(PageKey, 1, 1, MaxPage)
}

// StartDate is the first day of a date range.
func StartDate() urlstate.Dimension {
	return urlstate.Date(StartDateKey)
}

// EndDate is the last day of a date range, inclusive.
func EndDate() urlstate.Dimension {
	return urlstate.Date(EndDateKey)
}

// CheckDateRange rejects an end date before the start date.
func CheckDateRange(filters urlstate.FilterSet) error {
	start, okStart := filters.Date(StartDateKey)
	end, okEnd := filters.Date(EndDateKey)
	if okStart && okEnd && end.Before(start) {
		return fmt.Errorf("%w: end date before start date", httpx.ErrValidation)
	}
	return nil
}

package expenses

import (
	"github.com/odyssey-erp/stockroom/internal/listing"
	"github.com/odyssey-erp/stockroom/internal/urlstate"
)

// CategoryKey filters by expense category.
const CategoryKey = "category"

// Schema describes the filters of the expense list.
var Schema = urlstate.NewSchema("expenses", urlstate.OmitDefaults,
	listing.Search(),
	urlstate.Enum(CategoryKey, "", Categories...),
	listing.StartDate(),
	listing.EndDate(),
	listing.PageNumber(),
)

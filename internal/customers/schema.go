package customers

import (
	"github.com/odyssey-erp/stockroom/internal/listing"
	"github.com/odyssey-erp/stockroom/internal/urlstate"
)

// Customer filter keys.
const (
	TypeKey     = "type"
	IsActiveKey = "isActive"
)

// Schema describes the filters of the customer list. Every filter is always
// written to the URL, so shared links spell out isActive=true.
var Schema = urlstate.NewSchema("customers", urlstate.IncludeAll,
	listing.Search(),
	urlstate.Enum(TypeKey, "", Types...),
	urlstate.Bool(IsActiveKey, true),
	listing.PageNumber(),
)

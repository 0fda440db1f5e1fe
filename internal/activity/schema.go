package activity

import (
	"github.com/odyssey-erp/stockroom/internal/listing"
	"github.com/odyssey-erp/stockroom/internal/urlstate"
)

// TypeKey filters by action or movement reason.
const TypeKey = "type"

// LogSchema describes the filters of the activity feed.
var LogSchema = urlstate.NewSchema("activity", urlstate.OmitDefaults,
	listing.Search(),
	urlstate.Enum(TypeKey, "", Actions...),
	listing.StartDate(),
	listing.EndDate(),
	listing.PageNumber(),
)

// InventorySchema describes the filters of the stock movement list.
var InventorySchema = urlstate.NewSchema("inventory-logs", urlstate.OmitDefaults,
	listing.Search(),
	urlstate.Enum(TypeKey, "", Reasons...),
	listing.StartDate(),
	listing.EndDate(),
	listing.PageNumber(),
)

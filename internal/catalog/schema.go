package catalog

import (
	"github.com/odyssey-erp/stockroom/internal/listing"
	"github.com/odyssey-erp/stockroom/internal/urlstate"
)

// Product filter keys.
const (
	CategoryKey = "category"
	InStockKey  = "inStock"
	LowStockKey = "lowStock"
	IsActiveKey = "isActive"
)

// ProductSchema describes the filters of the product list. Only active
// products are listed unless isActive=false is given.
var ProductSchema = urlstate.NewSchema("products", urlstate.OmitDefaults,
	listing.Search(),
	urlstate.Int(CategoryKey, 0, 1, 0),
	urlstate.Bool(InStockKey, false),
	urlstate.Bool(LowStockKey, false),
	urlstate.Bool(IsActiveKey, true),
	listing.PageNumber(),
)

// CategorySchema describes the filters of the category list.
var CategorySchema = urlstate.NewSchema("categories", urlstate.OmitDefaults,
	listing.Search(),
	listing.PageNumber(),
)

package orders

import (
	"github.com/odyssey-erp/stockroom/internal/listing"
	"github.com/odyssey-erp/stockroom/internal/urlstate"
)

// Filter keys of the order and payment lists.
const (
	StatusKey        = "status"
	PaymentStatusKey = "paymentStatus"
	MethodKey        = "method"
)

// OrderSchema describes the filters of the order list.
var OrderSchema = urlstate.NewSchema("orders", urlstate.OmitDefaults,
	listing.Search(),
	urlstate.Enum(StatusKey, "", Statuses...),
	urlstate.Enum(PaymentStatusKey, "", PaymentStatuses...),
	listing.StartDate(),
	listing.EndDate(),
	listing.PageNumber(),
)

// PaymentSchema describes the filters of the payment list.
var PaymentSchema = urlstate.NewSchema("payments", urlstate.OmitDefaults,
	listing.Search(),
	urlstate.Enum(StatusKey, "", PaymentStatuses...),
	urlstate.Enum(MethodKey, "", Methods...),
	listing.StartDate(),
	listing.EndDate(),
	listing.PageNumber(),
)

package activity

import (
	"time"

	"gorm.io/datatypes"
)

// Action classifies an activity entry.
type Action string

const (
	ActionCreate Action = "CREATE"
	ActionUpdate Action = "UPDATE"
	ActionDelete Action = "DELETE"
	ActionLogin  Action = "LOGIN"
	ActionAlert  Action = "ALERT"
)

// Actions lists every action in display order.
var Actions = []string{string(ActionCreate), string(ActionUpdate), string(ActionDelete), string(ActionLogin), string(ActionAlert)}

// Reason explains a stock movement.
type Reason string

const (
	ReasonSale       Reason = "SALE"
	ReasonRestock    Reason = "RESTOCK"
	ReasonAdjustment Reason = "ADJUSTMENT"
	ReasonReturn     Reason = "RETURN"
)

// Reasons lists every stock movement reason.
var Reasons = []string{string(ReasonSale), string(ReasonRestock), string(ReasonAdjustment), string(ReasonReturn)}

// Log is one entry of the activity feed.
type Log struct {
	ID          int64          `gorm:"primaryKey" json:"id"`
	UserID      *int64         `gorm:"index" json:"user_id,omitempty"`
	Action      Action         `gorm:"size:16;index;not null" json:"action"`
	EntityType  string         `gorm:"size:32;not null" json:"entity_type"`
	EntityID    *int64         `json:"entity_id,omitempty"`
	Description string         `gorm:"size:500;not null" json:"description"`
	Details     datatypes.JSON `json:"details,omitempty"`
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`
}

// TableName pins the table name.
func (Log) TableName() string { return "activity_logs" }

// InventoryLog records one change of a product's stock.
type InventoryLog struct {
	ID         int64     `gorm:"primaryKey" json:"id"`
	ProductID  int64     `gorm:"index;not null" json:"product_id"`
	Change     int       `gorm:"not null" json:"change"`
	StockAfter int       `gorm:"not null" json:"stock_after"`
	Reason     Reason    `gorm:"size:16;index;not null" json:"reason"`
	Reference  string    `gorm:"size:64" json:"reference,omitempty"`
	Note       string    `gorm:"size:500" json:"note,omitempty"`
	UserID     *int64    `json:"user_id,omitempty"`
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
}

// TableName pins the table name.
func (InventoryLog) TableName() string { return "inventory_logs" }

// InventoryEntry is an inventory log row with its product.
type InventoryEntry struct {
	InventoryLog
	ProductName string `json:"product_name"`
	ProductSKU  string `json:"product_sku"`
}

// Entry describes an activity to record.
type Entry struct {
	UserID      int64
	Action      Action
	EntityType  string
	EntityID    int64
	Description string
	Details     map[string]any
}

// Models returns the tables owned by this package.
func Models() []any {
	return []any{&Log{}, &InventoryLog{}}
}

func optionalID(id int64) *int64 {
	if id <= 0 {
		return nil
	}
	return &id
}

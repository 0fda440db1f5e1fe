package dashboard

import "time"

// RevenueDays is the length of the revenue series.
const RevenueDays = 30

// Counts are the headline numbers of the dashboard.
type Counts struct {
	Products      int64   `json:"products"`
	LowStock      int64   `json:"low_stock"`
	Customers     int64   `json:"customers"`
	PendingOrders int64   `json:"pending_orders"`
	Revenue       float64 `json:"revenue"`
	Expenses      float64 `json:"expenses"`
}

// RevenuePoint is the paid amount of one day.
type RevenuePoint struct {
	Day    string  `json:"day"`
	Amount float64 `json:"amount"`
}

// LowStockItem is a product at or below its reorder level.
type LowStockItem struct {
	ID           int64  `json:"id"`
	SKU          string `json:"sku"`
	Name         string `json:"name"`
	Stock        int    `json:"stock"`
	ReorderLevel int    `json:"reorder_level"`
}

// ActivityItem is a recent activity entry.
type ActivityItem struct {
	ID          int64     `json:"id"`
	Action      string    `json:"action"`
	EntityType  string    `json:"entity_type"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// Summary is everything the dashboard shows.
type Summary struct {
	Counts      Counts         `json:"counts"`
	Revenue     []RevenuePoint `json:"revenue"`
	LowStock    []LowStockItem `json:"low_stock"`
	Recent      []ActivityItem `json:"recent"`
	GeneratedAt time.Time      `json:"generated_at"`
}

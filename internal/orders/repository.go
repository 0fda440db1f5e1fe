package orders

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/odyssey-erp/stockroom/internal/activity"
	"github.com/odyssey-erp/stockroom/internal/catalog"
	"github.com/odyssey-erp/stockroom/internal/customers"
	"github.com/odyssey-erp/stockroom/internal/listing"
	"github.com/odyssey-erp/stockroom/internal/platform/db"
	"github.com/odyssey-erp/stockroom/internal/platform/httpx"
	"github.com/odyssey-erp/stockroom/internal/urlstate"
)

// Repository persists orders and payments.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a Repository.
func NewRepository(gdb *gorm.DB) *Repository {
	return &Repository{db: gdb}
}

// List returns the order page selected by filters, newest first.
func (r *Repository) List(ctx context.Context, filters urlstate.FilterSet) (listing.Page[Order], error) {
	page, err := listing.FindPage[Order](r.orderBase(ctx, filters), filters, "orders.ordered_at DESC, orders.id DESC", preloadCustomer)
	return page, db.Translate(err)
}

// Export returns up to limit orders matching filters, ignoring the page.
func (r *Repository) Export(ctx context.Context, filters urlstate.FilterSet, limit int) ([]Order, error) {
	var out []Order
	err := r.orderBase(ctx, filters).
		Scopes(preloadCustomer).
		Order("orders.ordered_at DESC, orders.id DESC").
		Limit(limit).
		Find(&out).Error
	return out, db.Translate(err)
}

func (r *Repository) orderBase(ctx context.Context, filters urlstate.FilterSet) *gorm.DB {
	return r.db.WithContext(ctx).Model(&Order{}).
		Joins("JOIN customers c ON c.id = orders.customer_id").
		Scopes(
			listing.Matching(filters.String(listing.SearchKey), "orders.number", "c.name", "c.email"),
			listing.Equals("orders.status", filters.String(StatusKey)),
			listing.Equals("orders.payment_status", filters.String(PaymentStatusKey)),
			listing.Between("orders.ordered_at", filters),
		)
}

func preloadCustomer(tx *gorm.DB) *gorm.DB {
	return tx.Preload("Customer")
}

// ListPayments returns the payment page selected by filters.
func (r *Repository) ListPayments(ctx context.Context, filters urlstate.FilterSet) (listing.Page[Payment], error) {
	base := r.db.WithContext(ctx).Model(&Payment{}).
		Joins("JOIN orders o ON o.id = payments.order_id").
		Scopes(
			listing.Matching(filters.String(listing.SearchKey), "payments.reference", "o.number"),
			listing.Equals("payments.status", filters.String(StatusKey)),
			listing.Equals("payments.method", filters.String(MethodKey)),
			listing.Between("payments.created_at", filters),
		)
	page, err := listing.FindPage[Payment](base, filters, "payments.created_at DESC, payments.id DESC", func(tx *gorm.DB) *gorm.DB {
		return tx.Preload("Order")
	})
	return page, db.Translate(err)
}

// Get loads an order with its customer, items and payments.
func (r *Repository) Get(ctx context.Context, id int64) (Order, error) {
	var o Order
	err := r.db.WithContext(ctx).
		Preload("Customer").
		Preload("Items").
		Preload("Payments", func(tx *gorm.DB) *gorm.DB { return tx.Order("created_at ASC") }).
		First(&o, id).Error
	return o, db.Translate(err)
}

// Create locks the ordered products, takes their stock and stores the order
// with its items and SALE movements in one transaction.
func (r *Repository) Create(ctx context.Context, o *Order, lines []ItemInput, userID *int64) error {
	return db.Translate(db.WithTx(ctx, r.db, func(tx *gorm.DB) error {
		var customer customers.Customer
		if err := tx.Select("id").First(&customer, o.CustomerID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: unknown customer %d", httpx.ErrValidation, o.CustomerID)
			}
			return err
		}

		ids := make([]int64, len(lines))
		for i, line := range lines {
			ids[i] = line.ProductID
		}
		var products []catalog.Product
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id IN ?", ids).
			Order("id").
			Find(&products).Error
		if err != nil {
			return err
		}
		byID := make(map[int64]*catalog.Product, len(products))
		for i := range products {
			byID[products[i].ID] = &products[i]
		}

		o.Items = make([]OrderItem, 0, len(lines))
		o.Total = 0
		moves := make([]activity.InventoryLog, 0, len(lines))
		for _, line := range lines {
			p, ok := byID[line.ProductID]
			if !ok || !p.IsActive {
				return fmt.Errorf("%w: unknown product %d", httpx.ErrValidation, line.ProductID)
			}
			if p.Stock < line.Quantity {
				return fmt.Errorf("%w: %s has %d, %d ordered", ErrInsufficientStock, p.SKU, p.Stock, line.Quantity)
			}
			p.Stock -= line.Quantity
			if err := tx.Model(&catalog.Product{}).Where("id = ?", p.ID).Update("stock", p.Stock).Error; err != nil {
				return err
			}
			item := OrderItem{ProductID: p.ID, ProductName: p.Name, Quantity: line.Quantity, UnitPrice: p.Price}
			o.Items = append(o.Items, item)
			o.Total += item.Subtotal()
			moves = append(moves, activity.InventoryLog{
				ProductID:  p.ID,
				Change:     -line.Quantity,
				StockAfter: p.Stock,
				Reason:     activity.ReasonSale,
				Reference:  o.Number,
				UserID:     userID,
			})
		}
		o.Total = math.Round(o.Total*100) / 100

		if err := tx.Omit("Customer").Create(o).Error; err != nil {
			return err
		}
		return tx.Create(&moves).Error
	}))
}

// UpdateStatus moves an order through the workflow. Cancelling returns the
// items to stock and refunds a paid order.
func (r *Repository) UpdateStatus(ctx context.Context, id int64, to Status, userID *int64) (Order, error) {
	var o Order
	err := db.WithTx(ctx, r.db, func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Preload("Items").First(&o, id).Error; err != nil {
			return err
		}
		if !CanTransition(o.Status, to) {
			return fmt.Errorf("%w: %s to %s", ErrInvalidTransition, o.Status, to)
		}
		updates := map[string]any{"status": to}
		if to == StatusCancelled {
			if err := restock(tx, o, userID); err != nil {
				return err
			}
			if o.PaymentStatus == PaymentPaid {
				updates["payment_status"] = PaymentRefunded
				o.PaymentStatus = PaymentRefunded
			}
		}
		o.Status = to
		return tx.Model(&Order{}).Where("id = ?", o.ID).Updates(updates).Error
	})
	return o, db.Translate(err)
}

func restock(tx *gorm.DB, o Order, userID *int64) error {
	for _, item := range o.Items {
		var p catalog.Product
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&p, item.ProductID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			return err
		}
		p.Stock += item.Quantity
		if err := tx.Model(&catalog.Product{}).Where("id = ?", p.ID).Update("stock", p.Stock).Error; err != nil {
			return err
		}
		move := activity.InventoryLog{
			ProductID:  p.ID,
			Change:     item.Quantity,
			StockAfter: p.Stock,
			Reason:     activity.ReasonReturn,
			Reference:  o.Number,
			UserID:     userID,
		}
		if err := tx.Create(&move).Error; err != nil {
			return err
		}
	}
	return nil
}

// RecordPayment stores a payment and re-derives the order's payment status.
func (r *Repository) RecordPayment(ctx context.Context, orderID int64, p *Payment) (Order, error) {
	var o Order
	err := db.WithTx(ctx, r.db, func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&o, orderID).Error; err != nil {
			return err
		}
		if o.Status == StatusCancelled || o.PaymentStatus == PaymentRefunded {
			return ErrOrderClosed
		}
		p.OrderID = o.ID
		if p.Status == PaymentPaid {
			now := time.Now().UTC()
			p.PaidAt = &now
		}
		if err := tx.Omit("Order").Create(p).Error; err != nil {
			return err
		}
		var paid float64
		err := tx.Model(&Payment{}).
			Where("order_id = ? AND status = ?", o.ID, PaymentPaid).
			Select("COALESCE(SUM(amount), 0)").
			Scan(&paid).Error
		if err != nil {
			return err
		}
		o.PaymentStatus = Settle(o.Total, paid, p.Status == PaymentFailed)
		return tx.Model(&Order{}).Where("id = ?", o.ID).Update("payment_status", o.PaymentStatus).Error
	})
	return o, db.Translate(err)
}

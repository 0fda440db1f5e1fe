package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

type columnKind int

const (
	text columnKind = iota
	numeric
	money
	date
	timestamp
	flag
)

type column struct {
	header string
	path   string
	kind   columnKind
}

var pageColumns = map[string][]column{
	"products": {
		{"SKU", "sku", text}, {"NAME", "name", text}, {"CATEGORY", "category.name", text},
		{"PRICE", "price", money}, {"STOCK", "stock", numeric}, {"REORDER", "reorder_level", numeric},
		{"ACTIVE", "is_active", flag},
	},
	"categories": {
		{"ID", "id", numeric}, {"NAME", "name", text}, {"PRODUCTS", "product_count", numeric},
	},
	"customers": {
		{"ID", "id", numeric}, {"NAME", "name", text}, {"EMAIL", "email", text}, {"TYPE", "type", text},
		{"ORDERS", "order_count", numeric}, {"SPENT", "total_spent", money}, {"ACTIVE", "is_active", flag},
	},
	"orders": {
		{"NUMBER", "number", text}, {"ORDERED", "ordered_at", date}, {"CUSTOMER", "customer.name", text},
		{"STATUS", "status", text}, {"PAYMENT", "payment_status", text}, {"TOTAL", "total", money},
	},
	"payments": {
		{"ID", "id", numeric}, {"ORDER", "order.number", text}, {"METHOD", "method", text},
		{"STATUS", "status", text}, {"AMOUNT", "amount", money}, {"PAID", "paid_at", timestamp},
	},
	"expenses": {
		{"DATE", "spent_at", date}, {"CATEGORY", "category", text}, {"DESCRIPTION", "description", text},
		{"AMOUNT", "amount", money},
	},
	"activity": {
		{"AT", "created_at", timestamp}, {"ACTION", "action", text}, {"ENTITY", "entity_type", text},
		{"DESCRIPTION", "description", text},
	},
	"inventory-logs": {
		{"AT", "created_at", timestamp}, {"SKU", "product_sku", text}, {"PRODUCT", "product_name", text},
		{"CHANGE", "change", numeric}, {"AFTER", "stock_after", numeric}, {"REASON", "reason", text},
		{"REFERENCE", "reference", text},
	},
}

func renderTable(w io.Writer, page string, items []map[string]any, unit currency.Unit) error {
	cols, ok := pageColumns[page]
	if !ok {
		cols = []column{{"ID", "id", numeric}}
	}
	p := message.NewPrinter(language.English)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	headers := make([]string, len(cols))
	for i, c := range cols {
		headers[i] = c.header
	}
	fmt.Fprintln(tw, strings.Join(headers, "\t"))
	if len(items) == 0 {
		fmt.Fprintln(tw, "(no rows)")
	}
	cells := make([]string, len(cols))
	for _, item := range items {
		for i, c := range cols {
			cells[i] = format(p, unit, c.kind, lookup(item, c.path))
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	return tw.Flush()
}

// lookup walks a dotted path through decoded JSON objects.
func lookup(item map[string]any, path string) any {
	var cur any = item
	for _, part := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur = obj[part]
	}
	return cur
}

func format(p *message.Printer, unit currency.Unit, kind columnKind, v any) string {
	if v == nil {
		return "-"
	}
	switch kind {
	case money:
		if f, ok := v.(float64); ok {
			scale, _ := currency.Standard.Rounding(unit)
			return p.Sprintf("%v %v", currency.Symbol(unit), number.Decimal(f, number.Scale(scale)))
		}
	case numeric:
		if f, ok := v.(float64); ok {
			return p.Sprint(number.Decimal(int64(f)))
		}
	case flag:
		if b, ok := v.(bool); ok {
			if b {
				return "yes"
			}
			return "no"
		}
	case date, timestamp:
		if s, ok := v.(string); ok {
			t, err := time.Parse(time.RFC3339, s)
			if err != nil {
				return s
			}
			if kind == date {
				return t.Format("2006-01-02")
			}
			return t.Local().Format("2006-01-02 15:04")
		}
	}
	return fmt.Sprint(v)
}

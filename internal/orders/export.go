package orders

import (
	"bufio"
	"encoding/csv"
	"io"
	"strconv"
	"time"
)

const csvBufferSize = 32 * 1024

var exportHeader = []string{"number", "ordered_at", "customer", "email", "status", "payment_status", "total"}

// WriteCSV streams orders as CSV with a header row.
func WriteCSV(w io.Writer, rows []Order) error {
	buf := bufio.NewWriterSize(w, csvBufferSize)
	writer := csv.NewWriter(buf)
	writer.UseCRLF = true
	if err := writer.Write(exportHeader); err != nil {
		return err
	}
	for _, o := range rows {
		var name, email string
		if o.Customer != nil {
			name, email = o.Customer.Name, o.Customer.Email
		}
		record := []string{
			o.Number,
			o.OrderedAt.UTC().Format(time.RFC3339),
			name,
			email,
			string(o.Status),
			string(o.PaymentStatus),
			strconv.FormatFloat(o.Total, 'f', 2, 64),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return err
	}
	return buf.Flush()
}

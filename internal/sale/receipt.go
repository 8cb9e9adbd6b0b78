package sale

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// FormatReceipt renders a plain-text receipt for a sale. Amounts use
// grouped decimal formatting so large totals stay readable on thermal
// printers.
func FormatReceipt(s *Sale) string {
	p := message.NewPrinter(language.English)
	var b strings.Builder

	fmt.Fprintf(&b, "Receipt %s\n", s.ReceiptNo)
	fmt.Fprintf(&b, "Date    %s\n", s.CreatedAt.Format("2006-01-02 15:04"))
	fmt.Fprintf(&b, "Status  %s\n", s.Status)
	b.WriteString(strings.Repeat("-", 40) + "\n")

	for _, item := range s.Items {
		p.Fprintf(&b, "#%d x%d @ %.2f", item.ProductID, item.Quantity, item.UnitPrice)
		if item.Discount > 0 {
			p.Fprintf(&b, " -%.2f", item.Discount)
		}
		p.Fprintf(&b, "  %.2f\n", item.TotalPrice)
	}

	b.WriteString(strings.Repeat("-", 40) + "\n")
	p.Fprintf(&b, "Subtotal  %.2f\n", s.Subtotal)
	p.Fprintf(&b, "Tax       %.2f\n", s.TaxAmount)
	if s.DiscountAmount > 0 {
		p.Fprintf(&b, "Discount  %.2f\n", s.DiscountAmount)
	}
	p.Fprintf(&b, "Total     %.2f\n", s.TotalAmount)

	if s.Notes != nil && *s.Notes != "" {
		fmt.Fprintf(&b, "\n%s\n", *s.Notes)
	}
	return b.String()
}

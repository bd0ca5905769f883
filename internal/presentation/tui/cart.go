package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/cartsync/pkg/domain"
)

// CartMarkdown renders a snapshot as a markdown document.
func CartMarkdown(snap domain.Snapshot) string {
	c := snap.Checkout
	var b strings.Builder

	b.WriteString("## Cart\n\n")
	if c.IsPlaceholder() {
		b.WriteString("_No checkout yet. Run `reconcile` to retry._\n")
		return b.String()
	}

	fmt.Fprintf(&b, "Checkout `%s` (%s)", c.ID, c.Status())
	if !snap.CheckoutEditable {
		b.WriteString(", updating")
	}
	b.WriteString("\n\n")

	if len(c.LineItems) == 0 {
		b.WriteString("_Your cart is empty._\n")
	} else {
		b.WriteString("| Line | Item | Qty | Price |\n")
		b.WriteString("|---|---|---:|---:|\n")
		for _, item := range c.LineItems {
			title := item.Title
			if title == "" {
				title = item.VariantID
			}
			fmt.Fprintf(&b, "| `%s` | %s | %d | %s |\n", item.ID, title, item.Quantity, item.Price)
		}
	}

	fmt.Fprintf(&b, "\n**Items:** %d  **Total:** %s\n", c.TotalQuantity(), c.TotalPrice)
	return b.String()
}

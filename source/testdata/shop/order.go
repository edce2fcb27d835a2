package shop

// Order is a purchase with its line items.
type Order struct {
	Receipt
	ID     int
	Note   string
	Lines  []Line
	Payer  *Customer
	Alerts Notifier
	tags   map[string]string
}

// Line is one ordered item.
type Line struct {
	SKU string
	Qty int
}

// Describe renders the order for humans.
func (o *Order) Describe(verbose bool) string {
	if verbose {
		return o.Note
	}

	return ""
}

// Total sums the order lines.
func (o Order) Total() (int, error) {
	total := 0
	for _, line := range o.Lines {
		total += line.Qty
	}

	return total, nil
}

// Split reports the quantities on settled and unsettled lines.
func (o Order) Split() (settled, pending int) {
	if o.Settled {
		return len(o.Lines), 0
	}

	return 0, len(o.Lines)
}

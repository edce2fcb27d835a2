package shop

// Receipt records settlement state for an order.
type Receipt struct {
	Settled bool
}

// Customer places orders.
type Customer struct {
	Name string
}

// Closer releases a notifier's transport.
type Closer interface {
	Close() error
}

// Notifier pushes order events somewhere else.
type Notifier interface {
	Closer
	Notify(event string, urgent bool) error
}

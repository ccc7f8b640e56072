package engine

import "limitbook/internal/domain"

// PriceLevel aggregates every resting order at one price on one side of
// an instrument's book. Orders are held in strict arrival order; TotalQty
// always equals the sum of their quantities and a PriceLevel is never
// allowed to exist with TotalQty == 0.
type PriceLevel struct {
	Price    float64
	TotalQty int64

	orders []*domain.Order // FIFO: orders[0] arrived first
}

func newPriceLevel(o *domain.Order) *PriceLevel {
	return &PriceLevel{
		Price:    o.Price,
		TotalQty: o.Quantity,
		orders:   []*domain.Order{o},
	}
}

// append adds an order to the back of the FIFO queue.
func (l *PriceLevel) append(o *domain.Order) {
	l.orders = append(l.orders, o)
	l.TotalQty += o.Quantity
}

// removeByID deletes the order with the given id from the FIFO queue by
// identity and reports whether it was found.
func (l *PriceLevel) removeByID(id int64) bool {
	for i, o := range l.orders {
		if o.ID == id {
			l.orders = append(l.orders[:i], l.orders[i+1:]...)
			l.TotalQty -= o.Quantity
			return true
		}
	}
	return false
}

// Orders returns the FIFO queue resting at this level, earliest arrival
// first. Callers must not mutate the returned slice.
func (l *PriceLevel) Orders() []*domain.Order {
	return l.orders
}

func (l *PriceLevel) isEmpty() bool {
	return len(l.orders) == 0
}

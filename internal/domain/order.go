package domain

// Side indicates whether a resting order sits on the buy (bid) or sell
// (ask) side of an instrument's order book.
type Side string

const (
	Buy  Side = "BUY"
	Sell Side = "SELL"
)

// Order is a resting instruction to buy or sell Quantity at Price. ID and
// Side are fixed at creation; Quantity is mutated in place by MODIFY and
// by trade fills, which is why callers reach it through a pointer shared
// between the book's by-id index and the owning PriceLevel.
type Order struct {
	ID       int64
	Side     Side
	Price    float64
	Quantity int64
}

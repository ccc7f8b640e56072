package engine

import "limitbook/internal/domain"

// OrderBook maintains the resting bid and ask liquidity for a single
// instrument, an order-id index for O(1) lookup/modify/delete, and the
// most recently observed trade print.
//
// byOrderID is the single owner of each *domain.Order; the owning
// PriceLevel's FIFO queue holds the same pointer, so mutating Quantity
// through ModifyOrder or a trade fill is visible from both places.
type OrderBook struct {
	ProductID int64

	bids *SideBook
	asks *SideBook

	byOrderID map[int64]*domain.Order

	lastTradedPrice    float64
	lastTradedQuantity int64
}

// NewOrderBook creates an empty order book for one instrument.
func NewOrderBook(productID int64) *OrderBook {
	return &OrderBook{
		ProductID: productID,
		bids:      newSideBook(domain.Buy),
		asks:      newSideBook(domain.Sell),
		byOrderID: make(map[int64]*domain.Order),
	}
}

func (ob *OrderBook) sideBook(side domain.Side) *SideBook {
	if side == domain.Buy {
		return ob.bids
	}
	return ob.asks
}

// EnterOrder rests a new order on the book.
func (ob *OrderBook) EnterOrder(id int64, side domain.Side, price float64, quantity int64) error {
	if _, exists := ob.byOrderID[id]; exists {
		return domain.ErrDuplicateOrderID
	}
	if side != domain.Buy && side != domain.Sell {
		return domain.ErrInvalidSide
	}
	if price <= 0 {
		return domain.ErrInvalidPrice
	}
	if quantity <= 0 {
		return domain.ErrInvalidQuantity
	}

	o := &domain.Order{ID: id, Side: side, Price: price, Quantity: quantity}
	ob.byOrderID[id] = o
	ob.sideBook(side).insert(o)
	return nil
}

// ModifyOrder updates the resting quantity of an order in place. Price and
// side are immutable under modify. Reports whether it mutated state, so
// callers can distinguish a no-op from an error.
func (ob *OrderBook) ModifyOrder(id int64, newQuantity int64) (bool, error) {
	if newQuantity <= 0 {
		return false, domain.ErrInvalidQuantity
	}
	o, ok := ob.byOrderID[id]
	if !ok {
		return false, domain.ErrUnknownOrderID
	}
	if newQuantity == o.Quantity {
		return false, nil
	}

	delta := newQuantity - o.Quantity
	o.Quantity = newQuantity
	ob.sideBook(o.Side).adjustQuantity(o, delta)
	return true, nil
}

// DeleteOrder removes a resting order from the book entirely.
func (ob *OrderBook) DeleteOrder(id int64) error {
	o, ok := ob.byOrderID[id]
	if !ok {
		return domain.ErrUnknownOrderID
	}
	ob.sideBook(o.Side).remove(o)
	delete(ob.byOrderID, id)
	return nil
}

// GetOrder returns a read-only snapshot of the order, if known.
func (ob *OrderBook) GetOrder(id int64) (domain.Order, bool) {
	o, ok := ob.byOrderID[id]
	if !ok {
		return domain.Order{}, false
	}
	return *o, true
}

// BestBid returns the top-of-book bid price and aggregate quantity.
func (ob *OrderBook) BestBid() (price float64, qty int64, ok bool) {
	lvl, found := ob.bids.bestLevel()
	if !found {
		return 0, 0, false
	}
	return lvl.Price, lvl.TotalQty, true
}

// BestAsk returns the top-of-book ask price and aggregate quantity.
func (ob *OrderBook) BestAsk() (price float64, qty int64, ok bool) {
	lvl, found := ob.asks.bestLevel()
	if !found {
		return 0, 0, false
	}
	return lvl.Price, lvl.TotalQty, true
}

// TopBids returns up to k bid PriceLevels, best first.
func (ob *OrderBook) TopBids(k int) []*PriceLevel {
	return ob.bids.topLevels(k)
}

// TopAsks returns up to k ask PriceLevels, best first.
func (ob *OrderBook) TopAsks(k int) []*PriceLevel {
	return ob.asks.topLevels(k)
}

// LastTrade returns the most recently observed trade price and the
// cumulative quantity traded at that price.
func (ob *OrderBook) LastTrade() (price float64, quantity int64) {
	return ob.lastTradedPrice, ob.lastTradedQuantity
}

// Snapshot is a read-only view of the book sufficient to check
// INV-1..INV-4 externally, used by property tests.
type Snapshot struct {
	Bids      []*PriceLevel
	Asks      []*PriceLevel
	ByOrderID map[int64]domain.Order
}

// Snapshot captures the current state of the book for invariant checks.
func (ob *OrderBook) Snapshot() Snapshot {
	byID := make(map[int64]domain.Order, len(ob.byOrderID))
	for id, o := range ob.byOrderID {
		byID[id] = *o
	}
	return Snapshot{
		Bids:      ob.bids.topLevels(ob.bids.numLevels()),
		Asks:      ob.asks.topLevels(ob.asks.numLevels()),
		ByOrderID: byID,
	}
}

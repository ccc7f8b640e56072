package engine

import (
	"math"

	"limitbook/internal/domain"
)

// lastTradeEpsilon is the tolerance used only for coalescing the last-trade
// price; the level walk itself always compares prices exactly.
const lastTradeEpsilon = 1e-9

// FillKind distinguishes a full fill (the order is removed from the book)
// from a partial fill (the order survives with a reduced quantity).
type FillKind int

const (
	FillFull FillKind = iota
	FillPartial
)

// Fill describes the effect a trade print has on one resting order.
type Fill struct {
	OrderID     int64
	Kind        FillKind
	NewQuantity int64 // meaningful only when Kind == FillPartial
}

// TradeResult reports the fills a successful HandleTrade produced on each
// side, plus the last-trade state after applying it.
type TradeResult struct {
	BidFills           []Fill
	AskFills           []Fill
	LastTradedPrice    float64
	LastTradedQuantity int64
}

// HandleTrade consumes qty of resting liquidity at or better than price
// from both the bid and the ask side. It is total: either it fully
// consumes qty from each side and commits, or it leaves the book
// completely unchanged and returns an error.
//
// Both sides' fill plans are computed before anything is mutated, so a
// shortfall on one side never leaves the other side half-applied.
func (ob *OrderBook) HandleTrade(price float64, qty int64) (*TradeResult, error) {
	if price <= 0 || qty <= 0 {
		return nil, domain.ErrInvalidPrice
	}
	if ob.bids.isEmpty() || ob.asks.isEmpty() {
		return nil, domain.ErrTradeOnEmptyBook
	}

	bestBid, _, _ := ob.BestBid()
	bestAsk, _, _ := ob.BestAsk()
	if bestBid < price || bestAsk > price {
		return nil, domain.ErrTradeOutOfBand
	}

	bidFills, bidFilled := planSideFill(ob.bids, domain.Buy, price, qty)
	askFills, askFilled := planSideFill(ob.asks, domain.Sell, price, qty)
	if !bidFilled || !askFilled {
		return nil, domain.ErrInsufficientLiquidity
	}

	ob.commitFills(bidFills)
	ob.commitFills(askFills)

	if math.Abs(ob.lastTradedPrice-price) < lastTradeEpsilon {
		ob.lastTradedQuantity += qty
	} else {
		ob.lastTradedPrice = price
		ob.lastTradedQuantity = qty
	}

	return &TradeResult{
		BidFills:           bidFills,
		AskFills:           askFills,
		LastTradedPrice:    ob.lastTradedPrice,
		LastTradedQuantity: ob.lastTradedQuantity,
	}, nil
}

// planSideFill walks one side from the best level toward price, building
// the fills needed to consume qty of resting liquidity. It never mutates
// the book. The bool result reports whether qty was fully consumed.
func planSideFill(sb *SideBook, side domain.Side, price float64, qty int64) ([]Fill, bool) {
	var fills []Fill
	remaining := qty

	sb.ascend(func(lvl *PriceLevel) bool {
		if side == domain.Buy && lvl.Price < price {
			return false
		}
		if side == domain.Sell && lvl.Price > price {
			return false
		}

		switch {
		case lvl.TotalQty == remaining:
			// Every order at this level fully fills; level empties exactly.
			for _, o := range lvl.Orders() {
				fills = append(fills, Fill{OrderID: o.ID, Kind: FillFull})
			}
			remaining = 0
			return false

		case lvl.TotalQty > remaining:
			// Walk the FIFO queue; the earliest arrivals absorb the trade
			// first, and whichever order holds the residual absorbs the
			// partial (or the full fill, if its quantity equals it exactly).
			rest := remaining
			for _, o := range lvl.Orders() {
				switch {
				case o.Quantity == rest:
					fills = append(fills, Fill{OrderID: o.ID, Kind: FillFull})
					rest = 0
				case o.Quantity > rest:
					fills = append(fills, Fill{OrderID: o.ID, Kind: FillPartial, NewQuantity: o.Quantity - rest})
					rest = 0
				default:
					fills = append(fills, Fill{OrderID: o.ID, Kind: FillFull})
					rest -= o.Quantity
				}
				if rest == 0 {
					break
				}
			}
			remaining = 0
			return false

		default: // lvl.TotalQty < remaining
			for _, o := range lvl.Orders() {
				fills = append(fills, Fill{OrderID: o.ID, Kind: FillFull})
			}
			remaining -= lvl.TotalQty
			return remaining > 0
		}
	})

	return fills, remaining == 0
}

// commitFills applies a previously computed fill plan through the book's
// own ModifyOrder/DeleteOrder operations, so every invariant re-establishes
// naturally: PriceLevels that empty are pruned, the by-id index is cleaned,
// partial fills reduce their level's TotalQty.
func (ob *OrderBook) commitFills(fills []Fill) {
	for _, f := range fills {
		switch f.Kind {
		case FillFull:
			_ = ob.DeleteOrder(f.OrderID)
		case FillPartial:
			_, _ = ob.ModifyOrder(f.OrderID, f.NewQuantity)
		}
	}
}

package engine

import (
	"github.com/google/btree"

	"limitbook/internal/domain"
)

const btreeDegree = 32

// bidLess orders the bid side by price descending, so Min() and the first
// entry visited by Ascend are always the best (highest) bid.
func bidLess(a, b *PriceLevel) bool {
	return a.Price > b.Price
}

// askLess orders the ask side by price ascending, so Min() and the first
// entry visited by Ascend are always the best (lowest) ask.
func askLess(a, b *PriceLevel) bool {
	return a.Price < b.Price
}

// SideBook is one side (bid or ask) of one instrument's order book: a
// price→PriceLevel map for O(1) lookup by price, plus a price-ordered
// btree index for O(log n) top-of-book queries and ordered walks.
type SideBook struct {
	side    domain.Side
	byPrice map[float64]*PriceLevel
	levels  *btree.BTreeG[*PriceLevel]
}

func newSideBook(side domain.Side) *SideBook {
	less := askLess
	if side == domain.Buy {
		less = bidLess
	}
	return &SideBook{
		side:    side,
		byPrice: make(map[float64]*PriceLevel),
		levels:  btree.NewG(btreeDegree, less),
	}
}

// insert rests an order on this side, creating a new PriceLevel when none
// exists yet at its price.
func (sb *SideBook) insert(o *domain.Order) {
	if lvl, ok := sb.byPrice[o.Price]; ok {
		lvl.append(o)
		return
	}
	lvl := newPriceLevel(o)
	sb.byPrice[o.Price] = lvl
	sb.levels.ReplaceOrInsert(lvl)
}

// remove deletes an order from this side, pruning its PriceLevel from both
// indices once it empties.
func (sb *SideBook) remove(o *domain.Order) {
	lvl, ok := sb.byPrice[o.Price]
	if !ok {
		return
	}
	lvl.removeByID(o.ID)
	if lvl.TotalQty == 0 {
		delete(sb.byPrice, o.Price)
		sb.levels.Delete(lvl)
	}
}

// adjustQuantity updates the TotalQty at order's level by delta. The
// caller must update order.Quantity itself; adjustQuantity never drives a
// level to zero (MODIFY requires a positive quantity and full fills go
// through remove).
func (sb *SideBook) adjustQuantity(o *domain.Order, delta int64) {
	if lvl, ok := sb.byPrice[o.Price]; ok {
		lvl.TotalQty += delta
	}
}

// bestLevel returns the top-of-book PriceLevel for this side, if any.
func (sb *SideBook) bestLevel() (*PriceLevel, bool) {
	return sb.levels.Min()
}

// topLevels returns up to k PriceLevels in this side's priority order
// (best first).
func (sb *SideBook) topLevels(k int) []*PriceLevel {
	if k <= 0 {
		return nil
	}
	out := make([]*PriceLevel, 0, k)
	sb.levels.Ascend(func(lvl *PriceLevel) bool {
		out = append(out, lvl)
		return len(out) < k
	})
	return out
}

// ascend walks every level on this side in priority order (best first),
// stopping early if fn returns false.
func (sb *SideBook) ascend(fn func(*PriceLevel) bool) {
	sb.levels.Ascend(fn)
}

func (sb *SideBook) isEmpty() bool {
	return sb.levels.Len() == 0
}

func (sb *SideBook) numLevels() int {
	return sb.levels.Len()
}

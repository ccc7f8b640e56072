package engine

import (
	"fmt"
	"testing"

	"limitbook/internal/domain"
	"pgregory.net/rapid"
)

func TestProperty_NewThenRemoveRoundTrips(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		ob := NewOrderBook(1)
		side := domain.Buy
		if rapid.Bool().Draw(t, "isAsk") {
			side = domain.Sell
		}
		price := rapid.Float64Range(0.01, 1000).Draw(t, "price")
		qty := rapid.Int64Range(1, 10000).Draw(t, "qty")

		before := ob.Snapshot()

		if err := ob.EnterOrder(1, side, price, qty); err != nil {
			t.Fatalf("EnterOrder: %v", err)
		}
		if err := ob.DeleteOrder(1); err != nil {
			t.Fatalf("DeleteOrder: %v", err)
		}

		after := ob.Snapshot()
		if len(after.Bids) != len(before.Bids) || len(after.Asks) != len(before.Asks) {
			t.Fatalf("book shape changed after NEW+REMOVE round trip: before bids=%d asks=%d, after bids=%d asks=%d",
				len(before.Bids), len(before.Asks), len(after.Bids), len(after.Asks))
		}
		if len(after.ByOrderID) != len(before.ByOrderID) {
			t.Fatalf("order index size changed after NEW+REMOVE round trip: before=%d after=%d",
				len(before.ByOrderID), len(after.ByOrderID))
		}
	})
}

func TestProperty_ModifyIsIdempotentAtFixedQuantity(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		ob := NewOrderBook(1)
		side := domain.Buy
		if rapid.Bool().Draw(t, "isAsk") {
			side = domain.Sell
		}
		price := rapid.Float64Range(0.01, 1000).Draw(t, "price")
		initialQty := rapid.Int64Range(1, 10000).Draw(t, "initialQty")
		newQty := rapid.Int64Range(1, 10000).Draw(t, "newQty")

		if err := ob.EnterOrder(1, side, price, initialQty); err != nil {
			t.Fatalf("EnterOrder: %v", err)
		}

		if _, err := ob.ModifyOrder(1, newQty); err != nil {
			t.Fatalf("first ModifyOrder: %v", err)
		}
		afterFirst := ob.Snapshot()
		var bestQtyFirst, bestQtySecond int64
		if side == domain.Buy {
			_, bestQtyFirst, _ = ob.BestBid()
		} else {
			_, bestQtyFirst, _ = ob.BestAsk()
		}

		if _, err := ob.ModifyOrder(1, newQty); err != nil {
			t.Fatalf("second ModifyOrder: %v", err)
		}
		afterSecond := ob.Snapshot()
		if side == domain.Buy {
			_, bestQtySecond, _ = ob.BestBid()
		} else {
			_, bestQtySecond, _ = ob.BestAsk()
		}

		if afterFirst.ByOrderID[1] != afterSecond.ByOrderID[1] {
			t.Fatalf("re-modifying to the same quantity changed order state: %+v != %+v",
				afterFirst.ByOrderID[1], afterSecond.ByOrderID[1])
		}
		if bestQtyFirst != newQty || bestQtySecond != newQty {
			t.Fatalf("aggregate quantity after first/second modify = %d/%d, want %d", bestQtyFirst, bestQtySecond, newQty)
		}
	})
}

func TestProperty_TradeConservation(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		ob := NewOrderBook(1)

		numBids := rapid.IntRange(1, 6).Draw(t, "numBids")
		numAsks := rapid.IntRange(1, 6).Draw(t, "numAsks")

		var bidTotal, askTotal int64
		nextID := int64(1)

		for i := 0; i < numBids; i++ {
			price := rapid.Float64Range(5.0, 10.0).Draw(t, fmt.Sprintf("bidPrice-%d", i))
			qty := rapid.Int64Range(1, 100).Draw(t, fmt.Sprintf("bidQty-%d", i))
			if err := ob.EnterOrder(nextID, domain.Buy, price, qty); err != nil {
				t.Fatalf("EnterOrder bid: %v", err)
			}
			bidTotal += qty
			nextID++
		}
		for i := 0; i < numAsks; i++ {
			price := rapid.Float64Range(5.0, 10.0).Draw(t, fmt.Sprintf("askPrice-%d", i))
			qty := rapid.Int64Range(1, 100).Draw(t, fmt.Sprintf("askQty-%d", i))
			if err := ob.EnterOrder(nextID, domain.Sell, price, qty); err != nil {
				t.Fatalf("EnterOrder ask: %v", err)
			}
			askTotal += qty
			nextID++
		}

		bestBid, _, hasBid := ob.BestBid()
		bestAsk, _, hasAsk := ob.BestAsk()
		if !hasBid || !hasAsk || bestBid < bestAsk {
			// Uncrossed or empty randomly-generated book: no trade price can sit
			// inside both sides' band, so there is nothing meaningful to trade.
			return
		}

		tradeQty := rapid.Int64Range(1, minInt64(bidTotal, askTotal)).Draw(t, "tradeQty")

		before := ob.Snapshot()
		result, err := ob.HandleTrade(bestAsk, tradeQty)
		if err != nil {
			// Trading at bestAsk is always in band here, but insufficient
			// liquidity can legitimately occur (bid levels below bestAsk are
			// outside the walk); verify the book is untouched.
			after := ob.Snapshot()
			if len(before.ByOrderID) != len(after.ByOrderID) {
				t.Fatalf("order count changed on failed trade: before=%d after=%d", len(before.ByOrderID), len(after.ByOrderID))
			}
			for id, wantOrder := range before.ByOrderID {
				gotOrder, ok := after.ByOrderID[id]
				if !ok || gotOrder != wantOrder {
					t.Fatalf("order %d changed on failed trade: before=%+v after=%+v (present=%v)", id, wantOrder, gotOrder, ok)
				}
			}
			return
		}

		var bidRemoved, askRemoved int64
		for _, f := range result.BidFills {
			bidRemoved += fillQtyRemoved(before, f)
		}
		for _, f := range result.AskFills {
			askRemoved += fillQtyRemoved(before, f)
		}
		if bidRemoved != tradeQty {
			t.Fatalf("bid side removed %d, want %d", bidRemoved, tradeQty)
		}
		if askRemoved != tradeQty {
			t.Fatalf("ask side removed %d, want %d", askRemoved, tradeQty)
		}
	})
}

func fillQtyRemoved(before Snapshot, f Fill) int64 {
	prior := before.ByOrderID[f.OrderID]
	if f.Kind == FillFull {
		return prior.Quantity
	}
	return prior.Quantity - f.NewQuantity
}

func minInt64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}

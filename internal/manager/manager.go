package manager

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"

	"github.com/google/uuid"

	"limitbook/internal/domain"
	"limitbook/internal/engine"
	"limitbook/internal/parser"
)

// dumpLevels caps how many price levels the console dump prints per side,
// matching the original driver's "till level 5" output.
const dumpLevels = 5

// OrderBookManager dispatches commands to per-instrument order books,
// keeps an orderId -> productId index so MODIFY/REMOVE/trade fill
// notifications can find the right book without the caller repeating the
// productId, and accumulates every rejected command into an exception log
// instead of aborting the run.
type OrderBookManager struct {
	logger *slog.Logger
	out    io.Writer

	books         map[int64]*engine.OrderBook
	orderProducts map[int64]int64

	exceptions []exceptionRecord
}

// New creates an empty manager. A nil logger falls back to slog's default;
// a nil out falls back to os.Stdout.
func New(logger *slog.Logger, out io.Writer) *OrderBookManager {
	if logger == nil {
		logger = slog.Default()
	}
	if out == nil {
		out = os.Stdout
	}
	return &OrderBookManager{
		logger:        logger,
		out:           out,
		books:         make(map[int64]*engine.OrderBook),
		orderProducts: make(map[int64]int64),
	}
}

// Apply dispatches a single parsed command. Any failure is caught and
// appended to the exception log under the command's orderId (0 for TRADE,
// whose failures have no associated order); Apply itself never returns an
// error.
func (m *OrderBookManager) Apply(cmd parser.Command) {
	sessionID := uuid.New().String()
	log := m.logger.With(slog.String("session_id", sessionID), slog.String("action", string(cmd.Action)))

	var err error
	switch cmd.Action {
	case parser.ActionNew:
		err = m.applyNew(cmd)
	case parser.ActionModify:
		err = m.applyModify(cmd)
	case parser.ActionRemove:
		err = m.applyRemove(cmd)
	case parser.ActionTrade:
		err = m.applyTrade(cmd)
	default:
		err = &domain.ParseError{Message: "invalid action provided"}
	}

	if err != nil {
		log.Warn("command rejected", slog.Int64("order_id", cmd.OrderID), slog.String("error", err.Error()))
		m.recordException(err.Error(), cmd.OrderID)
		return
	}
	log.Debug("command applied", slog.Int64("order_id", cmd.OrderID), slog.Int64("product_id", cmd.ProductID))
}

func (m *OrderBookManager) applyNew(cmd parser.Command) error {
	if cmd.ProductID <= 0 {
		return &domain.InvalidFieldError{Field: "productId", Message: "must be positive"}
	}
	if cmd.OrderID <= 0 {
		return &domain.InvalidFieldError{Field: "orderId", Message: "must be positive"}
	}
	if _, exists := m.orderProducts[cmd.OrderID]; exists {
		return domain.ErrDuplicateOrderID
	}

	book, ok := m.books[cmd.ProductID]
	if !ok {
		book = engine.NewOrderBook(cmd.ProductID)
		m.books[cmd.ProductID] = book
	}

	if err := book.EnterOrder(cmd.OrderID, cmd.Side, cmd.Price, cmd.Quantity); err != nil {
		return err
	}
	m.orderProducts[cmd.OrderID] = cmd.ProductID
	return nil
}

// applyModify rejects a line whose side/price disagree with the resting
// order rather than silently ignoring them — a command's side/price are
// descriptive fields here, not a request to move the order.
func (m *OrderBookManager) applyModify(cmd parser.Command) error {
	book, resting, err := m.lookupRestingOrder(cmd.OrderID)
	if err != nil {
		return err
	}
	if resting.Side != cmd.Side {
		return &domain.InvalidFieldError{Field: "side", Message: "does not match resting order"}
	}
	if resting.Price != cmd.Price {
		return &domain.InvalidFieldError{Field: "price", Message: "does not match resting order"}
	}

	_, err = book.ModifyOrder(cmd.OrderID, cmd.Quantity)
	return err
}

// applyRemove sanitizes the line's side/quantity/price for basic
// well-formedness, same as MODIFY's input gate, even though REMOVE never
// uses those fields to reinterpret the order it removes.
func (m *OrderBookManager) applyRemove(cmd parser.Command) error {
	if err := validateShape(cmd); err != nil {
		return err
	}
	book, _, err := m.lookupRestingOrder(cmd.OrderID)
	if err != nil {
		return err
	}
	if err := book.DeleteOrder(cmd.OrderID); err != nil {
		return err
	}
	delete(m.orderProducts, cmd.OrderID)
	return nil
}

// validateShape checks a command's side/quantity/price for basic
// well-formedness, independent of whether those fields are actually used.
func validateShape(cmd parser.Command) error {
	if cmd.Side != domain.Buy && cmd.Side != domain.Sell {
		return &domain.InvalidFieldError{Field: "side", Message: "must be B or S"}
	}
	if cmd.Quantity <= 0 {
		return domain.ErrInvalidQuantity
	}
	if cmd.Price <= 0 {
		return domain.ErrInvalidPrice
	}
	return nil
}

func (m *OrderBookManager) applyTrade(cmd parser.Command) error {
	book, ok := m.books[cmd.ProductID]
	if !ok {
		return domain.ErrUnknownProductID
	}

	result, err := book.HandleTrade(cmd.Price, cmd.Quantity)
	if err != nil {
		return err
	}

	for _, f := range result.BidFills {
		m.reportFill(f)
	}
	for _, f := range result.AskFills {
		m.reportFill(f)
	}

	fmt.Fprintf(m.out, "Trade Received for productId [%d] Total Traded Quantity [%d] Traded Price [%v]\n",
		cmd.ProductID, result.LastTradedQuantity, result.LastTradedPrice)
	m.logger.Info("trade applied",
		slog.Int64("product_id", cmd.ProductID),
		slog.Float64("traded_price", result.LastTradedPrice),
		slog.Int64("traded_quantity", result.LastTradedQuantity),
	)
	return nil
}

// reportFill prints the plain-text fill notification the console output
// requires, mirrors it into the structured log, and — for a full fill —
// removes the order from orderProducts so a later NEW can reuse its id.
// The engine's own byOrderID index is already cleaned up inside
// commitFills; this is the manager-level mirror of that same cleanup.
func (m *OrderBookManager) reportFill(f engine.Fill) {
	if f.Kind == engine.FillFull {
		fmt.Fprintf(m.out, "Order id [%d] totally filled!!\n", f.OrderID)
		m.logger.Debug("order fully filled", slog.Int64("order_id", f.OrderID))
		delete(m.orderProducts, f.OrderID)
	} else {
		fmt.Fprintf(m.out, "Order id [%d] partially filled!! New Qty [%d]\n", f.OrderID, f.NewQuantity)
		m.logger.Debug("order partially filled", slog.Int64("order_id", f.OrderID), slog.Int64("new_quantity", f.NewQuantity))
	}
}

func (m *OrderBookManager) lookupRestingOrder(orderID int64) (*engine.OrderBook, domain.Order, error) {
	productID, ok := m.orderProducts[orderID]
	if !ok {
		return nil, domain.Order{}, domain.ErrUnknownOrderID
	}
	book := m.books[productID]
	o, ok := book.GetOrder(orderID)
	if !ok {
		return nil, domain.Order{}, domain.ErrUnknownOrderID
	}
	return book, o, nil
}

// Dump writes a plain-text snapshot of every tracked order book to w: the
// top dumpLevels price levels on each side plus the last trade, in
// ascending productId order. This is a distinct concern from structured
// logging — it is the human-readable console output the command feed is
// meant to produce.
func (m *OrderBookManager) Dump(w io.Writer) {
	for _, productID := range m.sortedProductIDs() {
		book := m.books[productID]
		fmt.Fprintf(w, "ProductId [%d]\n", productID)
		dumpSide(w, "Printing Bid OrderBook (till level 5)", book.TopBids(dumpLevels))
		dumpSide(w, "Printing Offer OrderBook (till level 5)", book.TopAsks(dumpLevels))

		price, qty := book.LastTrade()
		fmt.Fprintf(w, "Last Traded Price [%v] Last Traded Quantity [%d]\n", price, qty)
	}
}

func dumpSide(w io.Writer, header string, levels []*engine.PriceLevel) {
	fmt.Fprintln(w, header)
	for _, lvl := range levels {
		fmt.Fprintf(w, "%v : %d\n", lvl.Price, lvl.TotalQty)
	}
}

func (m *OrderBookManager) sortedProductIDs() []int64 {
	ids := make([]int64, 0, len(m.books))
	for id := range m.books {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

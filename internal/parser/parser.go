package parser

import (
	"regexp"
	"strconv"

	"limitbook/internal/domain"
)

// fieldSplit matches any of the delimiters a command line may use to
// separate its tokens: comma, semicolon, colon, or whitespace.
var fieldSplit = regexp.MustCompile(`[,;:\s]+`)

// tokenize splits a line on fieldSplit and drops any empty tokens a
// leading/trailing delimiter would otherwise leave behind.
func tokenize(line string) []string {
	raw := fieldSplit.Split(line, -1)
	tokens := make([]string, 0, len(raw))
	for _, tok := range raw {
		if tok != "" {
			tokens = append(tokens, tok)
		}
	}
	return tokens
}

// Parse tokenizes and structurally validates a single command line,
// producing a Command ready for manager.Apply. Field-level business rules
// (positive price, known side, etc.) are left to the manager and engine — Parse only
// guarantees the line had the right shape and its numeric fields convert.
func Parse(line string) (Command, error) {
	tokens := tokenize(line)
	if len(tokens) == 0 {
		return Command{}, &domain.ParseError{Message: "empty command line"}
	}

	action := Action(tokens[0][0])
	switch action {
	case ActionNew:
		return parseNew(tokens)
	case ActionModify, ActionRemove:
		return parseModifyOrRemove(action, tokens)
	case ActionTrade:
		return parseTrade(tokens)
	default:
		return Command{}, &domain.ParseError{Message: "invalid action provided"}
	}
}

// parseNew expects: N,productId,orderId,side,quantity,price
func parseNew(tokens []string) (Command, error) {
	if len(tokens) != 6 {
		return Command{}, &domain.ParseError{Message: "invalid arguments for new order"}
	}
	productID, err := parseInt(tokens[1])
	if err != nil {
		return Command{}, err
	}
	orderID, err := parseInt(tokens[2])
	if err != nil {
		return Command{}, err
	}
	quantity, err := parseInt(tokens[4])
	if err != nil {
		return Command{}, err
	}
	price, err := parseFloat(tokens[5])
	if err != nil {
		return Command{}, err
	}
	return Command{
		Action:    ActionNew,
		ProductID: productID,
		OrderID:   orderID,
		Side:      parseSide(tokens[3]),
		Quantity:  quantity,
		Price:     price,
	}, nil
}

// parseModifyOrRemove expects: M|R,orderId,side,quantity,price
func parseModifyOrRemove(action Action, tokens []string) (Command, error) {
	if len(tokens) != 5 {
		return Command{}, &domain.ParseError{Message: "invalid arguments for modify/cancel order"}
	}
	orderID, err := parseInt(tokens[1])
	if err != nil {
		return Command{}, err
	}
	quantity, err := parseInt(tokens[3])
	if err != nil {
		return Command{}, err
	}
	price, err := parseFloat(tokens[4])
	if err != nil {
		return Command{}, err
	}
	return Command{
		Action:   action,
		OrderID:  orderID,
		Side:     parseSide(tokens[2]),
		Quantity: quantity,
		Price:    price,
	}, nil
}

// parseTrade expects: X,productId,quantity,price
func parseTrade(tokens []string) (Command, error) {
	if len(tokens) != 4 {
		return Command{}, &domain.ParseError{Message: "invalid arguments for trade"}
	}
	productID, err := parseInt(tokens[1])
	if err != nil {
		return Command{}, err
	}
	quantity, err := parseInt(tokens[2])
	if err != nil {
		return Command{}, err
	}
	price, err := parseFloat(tokens[3])
	if err != nil {
		return Command{}, err
	}
	return Command{
		Action:    ActionTrade,
		ProductID: productID,
		Quantity:  quantity,
		Price:     price,
	}, nil
}

// parseSide maps the first character of the side token onto domain.Side
// without judging whether it's a recognized side; unrecognized values
// flow through and are rejected downstream: by the engine with
// ErrInvalidSide on NEW, by the manager with an InvalidFieldError on
// MODIFY/REMOVE.
func parseSide(tok string) domain.Side {
	if len(tok) == 0 {
		return domain.Side("")
	}
	switch tok[0] {
	case 'B':
		return domain.Buy
	case 'S':
		return domain.Sell
	default:
		return domain.Side(tok[:1])
	}
}

func parseInt(tok string) (int64, error) {
	v, err := strconv.ParseInt(tok, 10, 64)
	if err != nil {
		return 0, &domain.ParseError{Message: "invalid integer field: " + tok}
	}
	return v, nil
}

func parseFloat(tok string) (float64, error) {
	v, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		return 0, &domain.ParseError{Message: "invalid numeric field: " + tok}
	}
	return v, nil
}

package pricing

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/shopspring/decimal"
)

// Validate checks presence of user_id and items, then the shape of every item.
// The first failure wins; items are scanned left to right.
func Validate(f Fields) error {
	_, err := validate(f)
	return err
}

func validate(f Fields) ([]LineItem, error) {
	if f.UserID == nil {
		return nil, newError(ErrMissingField, "user_id", "user_id is required")
	}
	if f.Items == nil {
		return nil, newError(ErrMissingField, "items", "items is required")
	}
	return lineItems(f.Items)
}

func lineItems(raw any) ([]LineItem, error) {
	var records []any
	switch v := raw.(type) {
	case []any:
		records = v
	case []map[string]any:
		records = make([]any, len(v))
		for i := range v {
			records[i] = v[i]
		}
	case []Request:
		records = make([]any, len(v))
		for i := range v {
			records[i] = v[i]
		}
	default:
		return nil, newError(ErrInvalidItemsShape, "items", "items must be a list")
	}
	if len(records) == 0 {
		return nil, newError(ErrInvalidItemsShape, "items", "items must not be empty")
	}

	items := make([]LineItem, 0, len(records))
	for i, rec := range records {
		it, err := lineItem(i, rec)
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, nil
}

func lineItem(idx int, rec any) (LineItem, error) {
	var fields map[string]any
	switch m := rec.(type) {
	case map[string]any:
		fields = m
	case Request:
		fields = m
	}
	path := fmt.Sprintf("items[%d]", idx)
	rawPrice, hasPrice := fields["price"]
	rawQty, hasQty := fields["qty"]
	if !hasPrice || !hasQty {
		return LineItem{}, itemError(path, "", "item must have price and qty")
	}

	price, ok := toDecimal(rawPrice)
	if !ok {
		return LineItem{}, itemError(path, "price", "price must be a number")
	}
	if price.Sign() <= 0 {
		return LineItem{}, itemError(path, "price", "price must be positive")
	}
	qty, ok := toDecimal(rawQty)
	if !ok {
		return LineItem{}, itemError(path, "qty", "qty must be a number")
	}
	if qty.Sign() <= 0 {
		return LineItem{}, itemError(path, "qty", "qty must be positive")
	}
	return LineItem{Price: price, Qty: qty}, nil
}

func itemError(path, field, msg string) *Error {
	if field != "" {
		return newError(ErrInvalidItem, path+"."+field, path+": "+msg)
	}
	return newError(ErrInvalidItem, path, path+": "+msg)
}

// toDecimal accepts Go numeric kinds, json.Number and decimal.Decimal. Booleans,
// strings, NaN and infinities are not numbers.
func toDecimal(v any) (decimal.Decimal, bool) {
	switch n := v.(type) {
	case int:
		return decimal.NewFromInt(int64(n)), true
	case int8:
		return decimal.NewFromInt(int64(n)), true
	case int16:
		return decimal.NewFromInt(int64(n)), true
	case int32:
		return decimal.NewFromInt(int64(n)), true
	case int64:
		return decimal.NewFromInt(n), true
	case uint:
		return decimal.RequireFromString(strconv.FormatUint(uint64(n), 10)), true
	case uint8:
		return decimal.NewFromInt(int64(n)), true
	case uint16:
		return decimal.NewFromInt(int64(n)), true
	case uint32:
		return decimal.NewFromInt(int64(n)), true
	case uint64:
		return decimal.RequireFromString(strconv.FormatUint(n, 10)), true
	case float32:
		if math.IsNaN(float64(n)) || math.IsInf(float64(n), 0) {
			return decimal.Decimal{}, false
		}
		return decimal.NewFromFloat32(n), true
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return decimal.Decimal{}, false
		}
		return decimal.NewFromFloat(n), true
	case json.Number:
		d, err := decimal.NewFromString(string(n))
		if err != nil {
			return decimal.Decimal{}, false
		}
		return d, true
	case decimal.Decimal:
		return n, true
	default:
		return decimal.Decimal{}, false
	}
}

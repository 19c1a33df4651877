package pricing

import "fmt"

const (
	// OrderSuffix terminates every generated order id.
	OrderSuffix = "X"
	// DefaultCurrency is used when the request carries no currency.
	DefaultCurrency = "USD"
)

// OrderResult is the priced checkout returned to callers.
type OrderResult struct {
	OrderID    string `json:"order_id"`
	UserID     any    `json:"user_id"`
	Currency   string `json:"currency"`
	Subtotal   Money  `json:"subtotal"`
	Discount   Money  `json:"discount"`
	Tax        Money  `json:"tax"`
	Total      Money  `json:"total"`
	ItemsCount int    `json:"items_count"`
}

// OrderID builds "{user_id}-{items_count}-X". Identical inputs give identical
// ids; it is not a uniqueness or dedup key.
func OrderID(userID any, itemsCount int) string {
	return fmt.Sprintf("%v-%d-%s", userID, itemsCount, OrderSuffix)
}

// Currency returns raw verbatim when it is a non-empty string and
// DefaultCurrency when it is absent or falsy.
func Currency(raw any) string {
	switch v := raw.(type) {
	case nil:
		return DefaultCurrency
	case string:
		if v == "" {
			return DefaultCurrency
		}
		return v
	case bool:
		if !v {
			return DefaultCurrency
		}
		return fmt.Sprint(v)
	}
	if n, ok := toDecimal(raw); ok && n.IsZero() {
		return DefaultCurrency
	}
	return fmt.Sprint(raw)
}

// ProcessCheckout validates req, prices it and assembles the order result.
// Any failure aborts the whole calculation.
func ProcessCheckout(req Request) (OrderResult, error) {
	f := ParseRequest(req)
	items, err := validate(f)
	if err != nil {
		return OrderResult{}, err
	}
	coupon, err := ParseCoupon(f.Coupon)
	if err != nil {
		return OrderResult{}, err
	}
	summary, err := Compute(items, coupon)
	if err != nil {
		return OrderResult{}, err
	}
	return OrderResult{
		OrderID:    OrderID(f.UserID, len(items)),
		UserID:     f.UserID,
		Currency:   Currency(f.Currency),
		Subtotal:   summary.Subtotal,
		Discount:   summary.Discount,
		Tax:        summary.Tax,
		Total:      summary.Total,
		ItemsCount: len(items),
	}, nil
}

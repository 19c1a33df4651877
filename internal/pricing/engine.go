package pricing

import "github.com/shopspring/decimal"

// Money represents a monetary value stored in minor units.
type Money = int64

// TaxBps is the flat tax rate applied to the discounted total, in basis points.
const TaxBps = 2100

// LineItem is a validated line of a checkout request.
type LineItem struct {
	Price decimal.Decimal
	Qty   decimal.Decimal
}

// Amount returns price * qty without any truncation.
func (it LineItem) Amount() decimal.Decimal {
	return it.Price.Mul(it.Qty)
}

// Summary aggregates computed pricing components.
type Summary struct {
	Subtotal Money
	Discount Money
	Tax      Money
	Total    Money
}

// Subtotal sums price * qty over all items and truncates the result to minor units.
// A sum that does not fit in Money fails with ErrInvalidItem.
func Subtotal(items []LineItem) (Money, error) {
	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(it.Amount())
	}
	return toMoney(sum.Truncate(0))
}

// Tax returns the tax owed on the discounted total, truncated toward zero.
func Tax(discounted Money) Money {
	return applyBps(discounted, TaxBps)
}

// Compute runs subtotal, discount and tax in order, truncating after every step.
// A discount larger than the subtotal is not clamped.
func Compute(items []LineItem, coupon Coupon) (Summary, error) {
	subtotal, err := Subtotal(items)
	if err != nil {
		return Summary{}, err
	}
	discount := coupon.Discount(subtotal)
	discounted := decimal.NewFromInt(subtotal).Sub(decimal.NewFromInt(discount))
	if _, err := toMoney(discounted); err != nil {
		return Summary{}, err
	}
	tax := Tax(discounted.IntPart())
	total, err := toMoney(discounted.Add(decimal.NewFromInt(tax)))
	if err != nil {
		return Summary{}, err
	}
	return Summary{
		Subtotal: subtotal,
		Discount: discount,
		Tax:      tax,
		Total:    total,
	}, nil
}

// applyBps scales amount by bps/10000 and truncates toward zero. The result never
// exceeds amount in magnitude for bps <= 10000.
func applyBps(amount Money, bps int64) Money {
	return decimal.NewFromInt(amount).Mul(decimal.New(bps, -4)).Truncate(0).IntPart()
}

func toMoney(d decimal.Decimal) (Money, error) {
	if !d.BigInt().IsInt64() {
		return 0, newError(ErrInvalidItem, "items", "amount out of range")
	}
	return d.IntPart(), nil
}

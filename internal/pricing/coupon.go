package pricing

// Coupon is the closed set of discount codes understood by the calculator.
type Coupon int

const (
	CouponNone Coupon = iota
	CouponSave10
	CouponSave20
	CouponVIP
)

// Discount rule parameters.
const (
	Save10Bps         = 1000
	Save20Bps         = 2000
	Save20FallbackBps = 500
	Save20Threshold   = Money(200)
	VIPFlat           = Money(50)
	VIPFlatSmall      = Money(10)
	VIPThreshold      = Money(100)
)

var couponCodes = map[string]Coupon{
	"SAVE10": CouponSave10,
	"SAVE20": CouponSave20,
	"VIP":    CouponVIP,
}

// ParseCoupon maps a raw coupon value onto the enumeration. nil means no coupon;
// anything else that is not an exact known code fails with ErrUnknownCoupon.
func ParseCoupon(raw any) (Coupon, error) {
	if raw == nil {
		return CouponNone, nil
	}
	code, ok := raw.(string)
	if ok {
		if c, known := couponCodes[code]; known {
			return c, nil
		}
	}
	return CouponNone, newError(ErrUnknownCoupon, "coupon", "unknown coupon")
}

// String returns the wire code, or an empty string for CouponNone.
func (c Coupon) String() string {
	switch c {
	case CouponSave10:
		return "SAVE10"
	case CouponSave20:
		return "SAVE20"
	case CouponVIP:
		return "VIP"
	default:
		return ""
	}
}

// Discount computes the amount taken off subtotal. Percentage rules truncate.
func (c Coupon) Discount(subtotal Money) Money {
	switch c {
	case CouponSave10:
		return applyBps(subtotal, Save10Bps)
	case CouponSave20:
		if subtotal >= Save20Threshold {
			return applyBps(subtotal, Save20Bps)
		}
		return applyBps(subtotal, Save20FallbackBps)
	case CouponVIP:
		if subtotal < VIPThreshold {
			return VIPFlatSmall
		}
		return VIPFlat
	default:
		return 0
	}
}

package pricing

// Request is the untyped checkout record supplied by callers. Values are
// inspected, never modified.
type Request map[string]any

// Fields holds the four values the pipeline reads from a Request.
type Fields struct {
	UserID   any
	Items    any
	Coupon   any
	Currency any
}

// ParseRequest looks up user_id, items, coupon and currency. Missing keys
// become nil; no validation or coercion happens here.
func ParseRequest(req Request) Fields {
	return Fields{
		UserID:   req["user_id"],
		Items:    req["items"],
		Coupon:   req["coupon"],
		Currency: req["currency"],
	}
}

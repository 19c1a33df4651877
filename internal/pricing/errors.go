package pricing

import "errors"

var (
	// ErrInvalidRequest matches every validation failure (missing fields, bad items).
	ErrInvalidRequest = errors.New("invalid request")
	// ErrMissingField is returned when user_id or items is absent.
	ErrMissingField = errors.New("missing field")
	// ErrInvalidItemsShape is returned when items is not a list or is empty.
	ErrInvalidItemsShape = errors.New("invalid items shape")
	// ErrInvalidItem is returned when an item lacks price/qty or carries a non-positive value.
	ErrInvalidItem = errors.New("invalid item")
	// ErrUnknownCoupon is returned when the coupon is present but not a recognised code.
	ErrUnknownCoupon = errors.New("unknown coupon")
)

// Error describes why a checkout request was rejected.
type Error struct {
	Kind    error
	Field   string
	Message string
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

// Unwrap exposes the kind so callers can use errors.Is with the sentinels above.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Kind
}

// Is reports validation kinds as ErrInvalidRequest as well.
func (e *Error) Is(target error) bool {
	if e == nil || target != ErrInvalidRequest {
		return false
	}
	return e.Kind == ErrMissingField || e.Kind == ErrInvalidItemsShape || e.Kind == ErrInvalidItem
}

func newError(kind error, field, message string) *Error {
	return &Error{Kind: kind, Field: field, Message: message}
}

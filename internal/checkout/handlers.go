package checkout

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/noah-isme/toko-pricing/internal/common"
	"github.com/noah-isme/toko-pricing/internal/pricing"
)

var (
	errBadRequest    = common.NewAppError("BAD_REQUEST", "request body must be a JSON object", http.StatusBadRequest, nil)
	errMissingField  = common.NewAppError("MISSING_FIELD", "missing field", http.StatusBadRequest, pricing.ErrMissingField)
	errInvalidItems  = common.NewAppError("INVALID_ITEMS", "invalid items", http.StatusBadRequest, pricing.ErrInvalidItemsShape)
	errInvalidItem   = common.NewAppError("INVALID_ITEM", "invalid item", http.StatusBadRequest, pricing.ErrInvalidItem)
	errUnknownCoupon = common.NewAppError("UNKNOWN_COUPON", "unknown coupon", http.StatusUnprocessableEntity, pricing.ErrUnknownCoupon)
)

// Handler exposes the quote endpoint.
type Handler struct {
	Svc    *Service
	Logger zerolog.Logger
}

// Quote prices the JSON object in the request body.
func (h *Handler) Quote(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "checkout service not configured", nil)
		return
	}
	req, err := decodeRequest(r)
	if err != nil {
		common.WriteAppError(w, errBadRequest)
		return
	}
	out, err := h.Svc.Quote(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": out})
}

func decodeRequest(r *http.Request) (pricing.Request, error) {
	if r.Body == nil {
		return nil, errors.New("empty body")
	}
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	var body any
	if err := dec.Decode(&body); err != nil {
		return nil, err
	}
	obj, ok := body.(map[string]any)
	if !ok {
		return nil, errors.New("body is not an object")
	}
	return pricing.Request(obj), nil
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	appErr := ToAppError(err)
	event := h.Logger.Debug()
	if appErr.HTTPStatus >= http.StatusInternalServerError {
		event = h.Logger.Error()
	}
	if subject, ok := common.Subject(r.Context()); ok {
		event = event.Str("subject", subject)
	}
	event.Err(err).Str("code", appErr.Code).Msg("quote rejected")
	common.WriteAppError(w, appErr)
}

// ToAppError maps pricing failures to transport errors. The message is the
// pricing message and details carry the offending field.
func ToAppError(err error) *common.AppError {
	var base *common.AppError
	switch {
	case errors.Is(err, pricing.ErrMissingField):
		base = errMissingField
	case errors.Is(err, pricing.ErrInvalidItemsShape):
		base = errInvalidItems
	case errors.Is(err, pricing.ErrInvalidItem):
		base = errInvalidItem
	case errors.Is(err, pricing.ErrUnknownCoupon):
		base = errUnknownCoupon
	default:
		return common.AsAppError(err)
	}
	out := *base
	out.Err = err
	var pe *pricing.Error
	if errors.As(err, &pe) {
		out.Message = pe.Message
		if pe.Field != "" {
			out.Details = map[string]string{"field": pe.Field}
		}
	}
	return &out
}

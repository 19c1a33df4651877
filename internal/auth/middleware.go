package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/noah-isme/toko-pricing/internal/common"
)

var errNoToken = errors.New("auth: token missing")

// Middleware gates handlers behind a bearer token. A nil Verifier disables the check.
type Middleware struct {
	Verifier *Verifier
}

// RequireAuth enforces that a valid token is present before executing the next handler.
func (m Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.Verifier == nil {
			next.ServeHTTP(w, r)
			return
		}
		subject, err := m.Verifier.Subject(bearerToken(r))
		if err != nil {
			appErr := common.AsAppError(err)
			if appErr.HTTPStatus >= http.StatusInternalServerError {
				appErr = invalidToken(err)
			}
			common.WriteAppError(w, appErr)
			return
		}
		next.ServeHTTP(w, r.WithContext(common.WithSubject(r.Context(), subject)))
	})
}

func bearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}

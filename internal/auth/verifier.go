package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jws"
	"github.com/lestrrat-go/jwx/v2/jwt"

	"github.com/noah-isme/toko-pricing/internal/common"
)

// Verifier checks HMAC-signed bearer tokens and yields their subject.
type Verifier struct {
	secret    []byte
	algorithm jwa.SignatureAlgorithm
	policy    claimsPolicy
	now       func() time.Time
}

// NewVerifier builds a Verifier for HS256 tokens signed with secret. Empty
// issuer or audience skip that check.
func NewVerifier(secret, issuer, audience string, clockSkew time.Duration) *Verifier {
	return &Verifier{
		secret:    []byte(secret),
		algorithm: jwa.HS256,
		policy:    claimsPolicy{issuer: issuer, audience: audience, skew: clockSkew},
		now:       time.Now,
	}
}

// claimsPolicy is the set of registered claims a quote token must satisfy.
type claimsPolicy struct {
	issuer   string
	audience string
	skew     time.Duration
}

func (p claimsPolicy) validate(tok jwt.Token, now time.Time) error {
	options := []jwt.ValidateOption{
		jwt.WithClock(jwt.ClockFunc(func() time.Time { return now })),
		jwt.WithRequiredClaim(jwt.SubjectKey),
		jwt.WithRequiredClaim(jwt.ExpirationKey),
	}
	if p.skew > 0 {
		options = append(options, jwt.WithAcceptableSkew(p.skew))
	}
	if p.issuer != "" {
		options = append(options, jwt.WithIssuer(p.issuer))
	}
	if p.audience != "" {
		options = append(options, jwt.WithAudience(p.audience))
	}
	return jwt.Validate(tok, options...)
}

// Subject validates token and returns its subject claim.
func (v *Verifier) Subject(token string) (string, error) {
	trimmed := strings.TrimSpace(token)
	if trimmed == "" {
		return "", common.NewAppError("UNAUTHORIZED", "missing token", http.StatusUnauthorized, errNoToken)
	}
	algorithm, err := tokenAlgorithm(trimmed)
	if err != nil {
		return "", invalidToken(err)
	}
	if algorithm != v.algorithm {
		return "", invalidToken(fmt.Errorf("unexpected token algorithm %s", algorithm))
	}
	parsed, err := jwt.ParseString(trimmed, jwt.WithKey(algorithm, v.secret), jwt.WithValidate(false))
	if err != nil {
		return "", invalidToken(err)
	}
	if err := v.policy.validate(parsed, v.now()); err != nil {
		return "", invalidToken(err)
	}
	if parsed.Subject() == "" {
		return "", invalidToken(errors.New("auth: token missing subject"))
	}
	return parsed.Subject(), nil
}

func invalidToken(err error) *common.AppError {
	return common.NewAppError("UNAUTHORIZED", "invalid token", http.StatusUnauthorized, err)
}

func tokenAlgorithm(token string) (jwa.SignatureAlgorithm, error) {
	message, err := jws.ParseString(token)
	if err != nil {
		return "", err
	}
	signatures := message.Signatures()
	if len(signatures) == 0 {
		return "", errors.New("auth: token contains no signatures")
	}
	var algorithm jwa.SignatureAlgorithm
	for _, sig := range signatures {
		headers := sig.ProtectedHeaders()
		if headers == nil {
			return "", errors.New("auth: token missing protected headers")
		}
		alg := headers.Algorithm()
		if alg == "" {
			return "", errors.New("auth: token missing algorithm")
		}
		if alg == jwa.NoSignature {
			return "", errors.New("auth: token uses none algorithm")
		}
		if algorithm == "" {
			algorithm = alg
		} else if algorithm != alg {
			return "", errors.New("auth: mixed token algorithms detected")
		}
	}
	return algorithm, nil
}

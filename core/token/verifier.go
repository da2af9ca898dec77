package token

import (
	"crypto/rsa"
	"errors"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// MaxTokenLength bounds the input accepted by Verify. Anything longer is
// rejected before decoding.
const MaxTokenLength = 8 << 10

// ErrInvalidToken is the only error Verify returns.
var ErrInvalidToken = errors.New("token: invalid token")

// Verifier checks that a token is a well-formed RS256 JWT signed by the
// configured key and decodes its claims. It does not judge expiry or
// issuer; see IsValid.
type Verifier struct {
	key    *rsa.PublicKey
	parser *jwt.Parser
}

func NewVerifier(keys *KeySet) (*Verifier, error) {
	if keys == nil || keys.PublicKey() == nil {
		return nil, ErrNoPublicKey
	}
	return &Verifier{
		key: keys.PublicKey(),
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
			jwt.WithoutClaimsValidation(),
		),
	}, nil
}

// Verify returns the decoded claims of tokenString or ErrInvalidToken. It
// is safe to call with attacker-controlled input.
func (v *Verifier) Verify(tokenString string) (claims *Claims, err error) {
	if !wellFormed(tokenString) {
		return nil, ErrInvalidToken
	}

	defer func() {
		if r := recover(); r != nil {
			claims, err = nil, ErrInvalidToken
		}
	}()

	var registered jwt.RegisteredClaims
	parsed, err := v.parser.ParseWithClaims(tokenString, &registered, v.keyFunc)
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}

	if registered.Subject == "" || registered.Issuer == "" ||
		registered.NotBefore == nil || registered.ExpiresAt == nil {
		return nil, ErrInvalidToken
	}

	claims = &Claims{
		Subject:   registered.Subject,
		Issuer:    registered.Issuer,
		ID:        registered.ID,
		NotBefore: registered.NotBefore.Time,
		ExpiresAt: registered.ExpiresAt.Time,
	}
	if registered.IssuedAt != nil {
		claims.IssuedAt = registered.IssuedAt.Time
	}
	return claims, nil
}

func (v *Verifier) keyFunc(t *jwt.Token) (any, error) {
	if t.Method != jwt.SigningMethodRS256 {
		return nil, ErrInvalidToken
	}
	return v.key, nil
}

// wellFormed is a cheap structural pre-check: bounded length, exactly three
// non-empty base64url segments.
func wellFormed(tokenString string) bool {
	if tokenString == "" || len(tokenString) > MaxTokenLength {
		return false
	}
	if strings.Count(tokenString, ".") != 2 {
		return false
	}
	for _, segment := range strings.Split(tokenString, ".") {
		if segment == "" {
			return false
		}
		for i := 0; i < len(segment); i++ {
			c := segment[i]
			if !(c >= 'A' && c <= 'Z' || c >= 'a' && c <= 'z' || c >= '0' && c <= '9' || c == '-' || c == '_') {
				return false
			}
		}
	}
	return true
}

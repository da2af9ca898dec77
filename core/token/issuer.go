package token

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Issuer mints RS256 tokens. Only the auth service constructs one.
type Issuer struct {
	key    *rsa.PrivateKey
	issuer string
}

func NewIssuer(keys *KeySet, issuer string) (*Issuer, error) {
	if keys == nil || !keys.CanSign() {
		return nil, ErrNoPrivateKey
	}
	if strings.TrimSpace(issuer) == "" {
		return nil, errors.New("token: issuer must not be empty")
	}
	return &Issuer{key: keys.PrivateKey(), issuer: issuer}, nil
}

func (i *Issuer) Name() string {
	return i.issuer
}

// Issue signs a token for subject that becomes valid at now and expires
// lifespan later. Times are truncated to whole seconds.
func (i *Issuer) Issue(subject string, lifespan time.Duration, now time.Time) (string, error) {
	if subject == "" {
		return "", errors.New("token: subject must not be empty")
	}
	if lifespan <= 0 {
		return "", errors.New("token: lifespan must be positive")
	}

	issuedAt := now.Truncate(time.Second)
	claims := jwt.RegisteredClaims{
		Issuer:    i.issuer,
		Subject:   subject,
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(issuedAt),
		NotBefore: jwt.NewNumericDate(issuedAt),
		ExpiresAt: jwt.NewNumericDate(issuedAt.Add(lifespan)),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(i.key)
	if err != nil {
		return "", fmt.Errorf("token: signing: %w", err)
	}
	return signed, nil
}

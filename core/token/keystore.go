package token

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// MinKeyBits is the smallest RSA modulus accepted for signing or verifying.
const MinKeyBits = 2048

var (
	ErrNoPublicKey  = errors.New("token: public key is not configured")
	ErrKeyMismatch  = errors.New("token: public key does not match private key")
	ErrKeyTooWeak   = fmt.Errorf("token: RSA key must be at least %d bits", MinKeyBits)
	ErrNoPrivateKey = errors.New("token: private key is not configured")
)

// KeySet is the process-wide key material. It is built once at startup and
// never mutated, so it can be shared freely between goroutines.
type KeySet struct {
	public  *rsa.PublicKey
	private *rsa.PrivateKey
}

// LoadKeySet parses PEM-encoded key material. privatePEM may be empty for
// services that only verify tokens. When both are given they must form a
// pair.
func LoadKeySet(publicPEM, privatePEM string) (*KeySet, error) {
	publicPEM = NormalizePEM(publicPEM)
	privatePEM = NormalizePEM(privatePEM)

	if publicPEM == "" {
		return nil, ErrNoPublicKey
	}

	public, err := jwt.ParseRSAPublicKeyFromPEM([]byte(publicPEM))
	if err != nil {
		return nil, fmt.Errorf("token: parsing public key: %w", err)
	}
	if public.N.BitLen() < MinKeyBits {
		return nil, ErrKeyTooWeak
	}

	keys := &KeySet{public: public}
	if privatePEM == "" {
		return keys, nil
	}

	private, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(privatePEM))
	if err != nil {
		return nil, fmt.Errorf("token: parsing private key: %w", err)
	}
	if private.N.BitLen() < MinKeyBits {
		return nil, ErrKeyTooWeak
	}
	if !private.PublicKey.Equal(public) {
		return nil, ErrKeyMismatch
	}

	keys.private = private
	return keys, nil
}

func (k *KeySet) PublicKey() *rsa.PublicKey {
	return k.public
}

// PrivateKey returns the signing key, or nil on verify-only services.
func (k *KeySet) PrivateKey() *rsa.PrivateKey {
	return k.private
}

func (k *KeySet) CanSign() bool {
	return k.private != nil
}

// NormalizePEM accepts PEM text as it usually arrives through environment
// variables: surrounding whitespace and quotes, literal "\n" sequences
// instead of line breaks.
func NormalizePEM(value string) string {
	value = strings.TrimSpace(value)
	value = strings.Trim(value, `"'`)
	value = strings.ReplaceAll(value, `\n`, "\n")
	return strings.TrimSpace(value)
}

// ReadPEM returns value when set, otherwise the contents of path. Both empty
// yields an empty string.
func ReadPEM(value, path string) (string, error) {
	if strings.TrimSpace(value) != "" || path == "" {
		return value, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("token: reading key file %s: %w", path, err)
	}
	return string(raw), nil
}

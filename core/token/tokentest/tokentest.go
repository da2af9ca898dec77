// Package tokentest provides RSA key material and ready-made token
// components for tests in other packages.
package tokentest

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"sync"
	"testing"
	"time"

	"go-coordinator/core/clock"
	"go-coordinator/core/token"
)

const Issuer = "coord-auth"

var (
	keyOnce  sync.Once
	keyPair  [2]*rsa.PrivateKey
	keyError error
)

// Keys returns two distinct 2048-bit RSA keys, generated once per test
// binary.
func Keys(t testing.TB) (*rsa.PrivateKey, *rsa.PrivateKey) {
	t.Helper()
	keyOnce.Do(func() {
		for i := range keyPair {
			keyPair[i], keyError = rsa.GenerateKey(rand.Reader, token.MinKeyBits)
			if keyError != nil {
				return
			}
		}
	})
	if keyError != nil {
		t.Fatalf("generating RSA keys: %v", keyError)
	}
	return keyPair[0], keyPair[1]
}

func PublicPEM(t testing.TB, key *rsa.PrivateKey) string {
	t.Helper()
	der, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	if err != nil {
		t.Fatalf("MarshalPKIXPublicKey: %v", err)
	}
	return string(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der}))
}

func PrivatePEM(t testing.TB, key *rsa.PrivateKey) string {
	t.Helper()
	der, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		t.Fatalf("MarshalPKCS8PrivateKey: %v", err)
	}
	return string(pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der}))
}

// Fixture bundles a signing key set, an issuer named Issuer, and an
// authenticator that trusts it, driven by a fake clock.
type Fixture struct {
	Keys          *token.KeySet
	Issuer        *token.Issuer
	Verifier      *token.Verifier
	Authenticator *token.Authenticator
	Clock         *clock.FakeClock
}

func NewFixture(t testing.TB, now time.Time) *Fixture {
	t.Helper()
	private, _ := Keys(t)

	keys, err := token.LoadKeySet(PublicPEM(t, private), PrivatePEM(t, private))
	if err != nil {
		t.Fatalf("LoadKeySet: %v", err)
	}
	issuer, err := token.NewIssuer(keys, Issuer)
	if err != nil {
		t.Fatalf("NewIssuer: %v", err)
	}
	verifier, err := token.NewVerifier(keys)
	if err != nil {
		t.Fatalf("NewVerifier: %v", err)
	}
	fake := clock.Fake(now)

	return &Fixture{
		Keys:          keys,
		Issuer:        issuer,
		Verifier:      verifier,
		Authenticator: token.NewAuthenticator(verifier, []string{Issuer}, fake),
		Clock:         fake,
	}
}

// Token issues a token for subject valid for lifespan from the fixture's
// current time.
func (f *Fixture) Token(t testing.TB, subject string, lifespan time.Duration) string {
	t.Helper()
	signed, err := f.Issuer.Issue(subject, lifespan, f.Clock.Now())
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	return signed
}

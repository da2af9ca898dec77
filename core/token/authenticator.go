package token

import (
	"go-coordinator/core/clock"
	"slices"
)

// Result is the outcome of authenticating a request token.
type Result struct {
	Claims *Claims
	Reason Reason
}

func (r Result) OK() bool {
	return r.Reason == ReasonNone && r.Claims != nil
}

// Subject returns the claimed subject when the signature was good, even if
// the claims were rejected, so audit logs can record it.
func (r Result) Subject() string {
	if r.Claims == nil {
		return ""
	}
	return r.Claims.Subject
}

// TokenAuthenticator is what request handlers depend on.
type TokenAuthenticator interface {
	Authenticate(tokenString string) Result
}

// Authenticator composes Verify and IsValid for one service.
type Authenticator struct {
	verifier       *Verifier
	allowedIssuers []string
	clock          clock.Clock
}

func NewAuthenticator(verifier *Verifier, allowedIssuers []string, c clock.Clock) *Authenticator {
	if c == nil {
		c = clock.Real()
	}
	return &Authenticator{
		verifier:       verifier,
		allowedIssuers: slices.Clone(allowedIssuers),
		clock:          c,
	}
}

func (a *Authenticator) Authenticate(tokenString string) Result {
	if tokenString == "" {
		return Result{Reason: ReasonMissing}
	}

	claims, err := a.verifier.Verify(tokenString)
	if err != nil {
		return Result{Reason: ReasonMalformed}
	}

	return Result{
		Claims: claims,
		Reason: Evaluate(claims, a.clock.Now(), a.allowedIssuers),
	}
}

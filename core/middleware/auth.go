package middleware

import (
	"net/http"
	"strings"

	"go-coordinator/core/constants"
	"go-coordinator/core/controller"
	"go-coordinator/core/errors"
	"go-coordinator/core/logger"
	"go-coordinator/core/metrics"
	"go-coordinator/core/token"
	"go-coordinator/core/utils"

	"github.com/labstack/echo/v4"
)

type Middleware struct {
	auth token.TokenAuthenticator
}

func NewMiddleware(auth token.TokenAuthenticator) *Middleware {
	return &Middleware{auth: auth}
}

// AuthMiddleware guards a route with the Auth-Token header. Every failure is
// the same 403; the reason only goes to the audit log.
func (m *Middleware) AuthMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := strings.TrimSpace(c.Request().Header.Get(constants.HeaderAuthToken))
			result := m.auth.Authenticate(raw)

			Audit(result, AuditInfo{
				IP:     utils.ClientIP(c),
				Path:   c.Request().URL.Path,
				Method: c.Request().Method,
			})
			if !result.OK() {
				return controller.NewErrorResponse(http.StatusForbidden, errors.ErrForbidden, "forbidden")
			}

			c.Set(constants.ContextTokenData, result.Claims)
			return next(c)
		}
	}
}

// OptionalAuthMiddleware stores the claims of a valid Auth-Token but never
// rejects. Handlers decide with TokenClaims whether the caller is trusted.
func (m *Middleware) OptionalAuthMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := strings.TrimSpace(c.Request().Header.Get(constants.HeaderAuthToken))
			if raw == "" {
				return next(c)
			}

			result := m.auth.Authenticate(raw)
			Audit(result, AuditInfo{
				IP:     utils.ClientIP(c),
				Path:   c.Request().URL.Path,
				Method: c.Request().Method,
			})
			if result.OK() {
				c.Set(constants.ContextTokenData, result.Claims)
			}
			return next(c)
		}
	}
}

// AuditInfo describes where an authentication attempt came from.
type AuditInfo struct {
	IP     string
	Path   string
	Method string
}

// Audit records an authentication outcome. Rejections are logged at warn
// level with the internal reason; successes at debug.
func Audit(result token.Result, info AuditInfo) {
	if result.OK() {
		metrics.AuthResults.WithLabelValues("ok").Inc()
		logger.Debug("Auth:Authenticate:Success",
			"ip", info.IP,
			"path", info.Path,
			"method", info.Method,
			"subject", result.Subject(),
		)
		return
	}

	metrics.AuthResults.WithLabelValues(string(result.Reason)).Inc()
	logger.Warn("Auth:Authenticate:Rejected",
		"ip", info.IP,
		"path", info.Path,
		"method", info.Method,
		"reason", string(result.Reason),
		"subject", result.Subject(),
	)
}

// TokenClaims returns the claims stored by AuthMiddleware, or nil on an
// unprotected route.
func TokenClaims(c echo.Context) *token.Claims {
	claims, _ := c.Get(constants.ContextTokenData).(*token.Claims)
	return claims
}

// Subject is a convenience for audit logging in handlers.
func Subject(c echo.Context) string {
	if claims := TokenClaims(c); claims != nil {
		return claims.Subject
	}
	return ""
}

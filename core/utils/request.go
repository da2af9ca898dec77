package utils

import (
	"strconv"
	"strings"

	"go-coordinator/core/constants"

	"github.com/labstack/echo/v4"
)

// ClientIP prefers the X-Real-Ip header set by the fronting proxy.
func ClientIP(c echo.Context) string {
	if ip := strings.TrimSpace(c.Request().Header.Get(constants.HeaderRealIP)); ip != "" {
		return ip
	}
	return c.RealIP()
}

// ParseID reads a positive numeric path parameter.
func ParseID(c echo.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

package util

import (
	"github.com/labstack/echo/v4"
)

// DefaultQuery returns the value of the query parameter or the default
// value if the parameter is not set.
func DefaultQuery(c echo.Context, name, defValue string) string {
	param := c.QueryParam(name)

	if len(param) == 0 {
		return defValue
	}

	return param
}

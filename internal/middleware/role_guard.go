package middleware

import (
	"net/http"

	"freshmart/internal/domain/model"

	"github.com/labstack/echo/v4"
)

const accessDenied = "Access denied: You don't have permission to access this resource"

// contextのroleが許可リストに入っているか確認する。
func RequireRoles(roles ...model.Role) echo.MiddlewareFunc {
	allowed := make(map[model.Role]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, ok := IdentityFrom(c)
			if !ok {
				return c.JSON(http.StatusUnauthorized, errorJSON("Not authorized, token failed"))
			}
			if _, ok := allowed[id.Role]; !ok {
				return c.JSON(http.StatusForbidden, errorJSON(accessDenied))
			}
			return next(c)
		}
	}
}

package middleware

import (
	"errors"
	"net/http"

	repo "freshmart/internal/repository"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// トークンのユーザーがまだ存在するか確認し、roleはDBの値で上書きする。
// 削除済みユーザーのトークンはここで弾く。
func ActiveUserGuard(users repo.UserRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, ok := IdentityFrom(c)
			if !ok {
				return c.JSON(http.StatusUnauthorized, errorJSON("Not authorized, token failed"))
			}

			//DBから最新のuserを取得する
			user, err := users.FindByID(c.Request().Context(), id.UserID)
			if errors.Is(err, repo.ErrNotFound) {
				return c.JSON(http.StatusUnauthorized, errorJSON("Not authorized, user not found"))
			}
			if err != nil {
				zap.L().Error("active user lookup failed", zap.String("user_id", id.UserID), zap.Error(err))
				return c.JSON(http.StatusInternalServerError, errorJSON("Server error"))
			}

			c.Set(CtxUserRoleKey, user.Role)
			return next(c)
		}
	}
}

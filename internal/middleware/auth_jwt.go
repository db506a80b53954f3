package middleware

import (
	"net/http"
	"strings"

	"freshmart/internal/domain/model"
	"freshmart/internal/infra/security"
	"freshmart/internal/usecase"

	"github.com/labstack/echo/v4"
)

const (
	CtxUserIDKey   = "user_id"   // string
	CtxUserRoleKey = "user_role" // model.Role
)

// JWTの検証だけを切り出した約束
type TokenParser interface {
	Parse(raw string) (security.Claims, error)
}

// bearerAuth用のJWT検証ミドルウェア。
func AuthJWT(parser TokenParser) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			//Bearer形式か確認してtokenを抜く
			authz := c.Request().Header.Get("Authorization")
			parts := strings.SplitN(authz, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				return c.JSON(http.StatusUnauthorized, errorJSON("Not authorized, no token"))
			}
			rawToken := strings.TrimSpace(parts[1])
			if rawToken == "" {
				return c.JSON(http.StatusUnauthorized, errorJSON("Not authorized, no token"))
			}

			claims, err := parser.Parse(rawToken)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, errorJSON("Not authorized, token failed"))
			}

			//contextへ保存
			c.Set(CtxUserIDKey, claims.UserID)
			c.Set(CtxUserRoleKey, claims.Role)

			return next(c)
		}
	}
}

// AuthJWTが入れた本人情報を取り出す
func IdentityFrom(c echo.Context) (usecase.Identity, bool) {
	userID, ok := c.Get(CtxUserIDKey).(string)
	if !ok || userID == "" {
		return usecase.Identity{}, false
	}
	role, ok := c.Get(CtxUserRoleKey).(model.Role)
	if !ok || !role.Valid() {
		return usecase.Identity{}, false
	}
	return usecase.Identity{UserID: userID, Role: role}, true
}

type errorResponse struct {
	Message string `json:"message"`
}

func errorJSON(msg string) errorResponse {
	return errorResponse{Message: msg}
}

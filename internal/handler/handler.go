package handler

import (
	"errors"
	"net/http"

	"freshmart/internal/domain/model"
	"freshmart/internal/middleware"
	"freshmart/internal/repository"
	"freshmart/internal/usecase"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type ErrorResponse struct {
	Message string `json:"message"`
}

type SuccessResponse struct {
	Message string `json:"message"`
}

func writeError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}
	if he, ok := usecase.AsHTTPError(err); ok {
		return c.JSON(he.Status, ErrorResponse{Message: he.Message})
	}

	//500
	zap.L().Error("unhandled error", zap.String("path", c.Path()), zap.Error(err))
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "Server error"})
}

// echoのHTTPErrorHandler。bind失敗や404もすべて{message}で返す。
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var ee *echo.HTTPError
	if errors.As(err, &ee) {
		msg := http.StatusText(ee.Code)
		if s, ok := ee.Message.(string); ok && s != "" {
			msg = s
		}
		if ee.Code >= http.StatusInternalServerError {
			zap.L().Error("request failed", zap.String("path", c.Path()), zap.Error(err))
			msg = "Server error"
		}
		_ = c.JSON(ee.Code, ErrorResponse{Message: msg})
		return
	}
	_ = writeError(c, err)
}

// ルートごとの認証ミドルウェアを組み立てる
type Guard struct {
	parser middleware.TokenParser
	users  repository.UserRepository
}

func NewGuard(parser middleware.TokenParser, users repository.UserRepository) Guard {
	return Guard{parser: parser, users: users}
}

// ログイン必須。rolesを渡すとそのroleだけ通す。
func (g Guard) Require(roles ...model.Role) []echo.MiddlewareFunc {
	mws := []echo.MiddlewareFunc{
		middleware.AuthJWT(g.parser),
		middleware.ActiveUserGuard(g.users),
	}
	if len(roles) > 0 {
		mws = append(mws, middleware.RequireRoles(roles...))
	}
	return mws
}

func identity(c echo.Context) (usecase.Identity, bool) {
	return middleware.IdentityFrom(c)
}

func unauthorized(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "Not authorized, token failed"})
}

// bodyを読んでタグ検証する
func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return usecase.ValidationError("Invalid request body")
	}
	if c.Echo().Validator != nil {
		if err := c.Validate(req); err != nil {
			return err
		}
	}
	return nil
}

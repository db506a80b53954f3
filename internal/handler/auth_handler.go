package handler

import (
	"net/http"

	"freshmart/internal/domain/model"
	"freshmart/internal/middleware"
	"freshmart/internal/usecase"

	"github.com/labstack/echo/v4"
)

type AuthHandler struct {
	uc *usecase.AuthUsecase
}

// DIコンストラクタ
func NewAuthHandler(uc *usecase.AuthUsecase) *AuthHandler {
	return &AuthHandler{uc: uc}
}

// /auth/register のリクエストボディ。
type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// /auth/login のリクエストボディ。
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type profileRequest struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
	Phone    *string `json:"phone"`
	Address  *string `json:"address"`
	City     *string `json:"city"`
	State    *string `json:"state"`
	Pincode  *string `json:"pincode"`
}

// プロフィール応答。idは"id"で返す。
type profileResponse struct {
	ID      string     `json:"id"`
	Name    string     `json:"name"`
	Email   string     `json:"email"`
	Role    model.Role `json:"role"`
	Phone   string     `json:"phone,omitempty"`
	Address string     `json:"address,omitempty"`
	City    string     `json:"city,omitempty"`
	State   string     `json:"state,omitempty"`
	Pincode string     `json:"pincode,omitempty"`
}

func toProfile(u model.User) profileResponse {
	return profileResponse{
		ID:      u.ID,
		Name:    u.Name,
		Email:   u.Email,
		Role:    u.Role,
		Phone:   u.Phone,
		Address: u.Address,
		City:    u.City,
		State:   u.State,
		Pincode: u.Pincode,
	}
}

// /auth/* はIPごとに回数制限する
func (h *AuthHandler) RegisterRoutes(e *echo.Echo, guard Guard, limiter middleware.RateLimiter) {
	g := e.Group("/auth", middleware.RateLimit(limiter, "auth"))
	g.POST("/register", h.register)
	g.POST("/login", h.login)

	e.GET("/user/profile", h.getProfile, guard.Require()...)
	e.PUT("/user/profile", h.updateProfile, guard.Require()...)
}

func (h *AuthHandler) register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return writeError(c, usecase.ValidationError("Invalid request body"))
	}

	out, err := h.uc.Register(c.Request().Context(), usecase.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     model.Role(req.Role),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *AuthHandler) login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return writeError(c, usecase.ValidationError("Invalid request body"))
	}

	out, err := h.uc.Login(c.Request().Context(), usecase.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AuthHandler) getProfile(c echo.Context) error {
	id, ok := identity(c)
	if !ok {
		return unauthorized(c)
	}

	user, err := h.uc.GetProfile(c.Request().Context(), id.UserID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toProfile(user))
}

func (h *AuthHandler) updateProfile(c echo.Context) error {
	id, ok := identity(c)
	if !ok {
		return unauthorized(c)
	}

	var req profileRequest
	if err := c.Bind(&req); err != nil {
		return writeError(c, usecase.ValidationError("Invalid request body"))
	}

	user, err := h.uc.UpdateProfile(c.Request().Context(), id.UserID, usecase.ProfileInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Phone:    req.Phone,
		Address:  req.Address,
		City:     req.City,
		State:    req.State,
		Pincode:  req.Pincode,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toProfile(user))
}

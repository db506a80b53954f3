package handler

import (
	"net/http"

	"freshmart/internal/domain/model"
	"freshmart/internal/usecase"

	"github.com/labstack/echo/v4"
)

// 承認待ち一覧と承認
type AdminProductHandler struct {
	uc *usecase.ProductUsecase
}

// DI
func NewAdminProductHandler(uc *usecase.ProductUsecase) *AdminProductHandler {
	return &AdminProductHandler{uc: uc}
}

func (h *AdminProductHandler) RegisterRoutes(e *echo.Echo, guard Guard) {
	admin := guard.Require(model.RoleAdmin)
	e.GET("/products/pending", h.pending, admin...)
	e.PUT("/products/approve/:id", h.approve, admin...)
}

func (h *AdminProductHandler) pending(c echo.Context) error {
	out, err := h.uc.ListPending(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AdminProductHandler) approve(c echo.Context) error {
	id, ok := identity(c)
	if !ok {
		return unauthorized(c)
	}

	out, err := h.uc.Approve(c.Request().Context(), id.UserID, c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

package handler

import (
	"net/http"
	"strings"

	"freshmart/internal/domain/model"
	"freshmart/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// /products の公開APIと出品
type ProductHandler struct {
	uc *usecase.ProductUsecase
}

// DI
func NewProductHandler(uc *usecase.ProductUsecase) *ProductHandler {
	return &ProductHandler{uc: uc}
}

type productCreateRequest struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int64           `json:"stock"`
	Category    string          `json:"category"`
	Image       string          `json:"image"`
}

// 出品者が変えられる項目だけ受け取る
type productPatchRequest struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Stock       *int64           `json:"stock"`
	Category    *string          `json:"category"`
	Image       *string          `json:"image"`
}

func (r productPatchRequest) toPatch() usecase.ProductPatch {
	return usecase.ProductPatch{
		Name:        r.Name,
		Description: r.Description,
		Price:       r.Price,
		Stock:       r.Stock,
		Category:    r.Category,
		Image:       r.Image,
	}
}

func (h *ProductHandler) RegisterRoutes(e *echo.Echo, guard Guard) {
	e.GET("/products", h.list)
	e.POST("/products", h.create, guard.Require(model.RoleVendor)...)
}

func parsePrice(c echo.Context, key string) (*decimal.Decimal, error) {
	v := strings.TrimSpace(c.QueryParam(key))
	if v == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return nil, usecase.ValidationError("invalid " + key)
	}
	return &d, nil
}

func (h *ProductHandler) list(c echo.Context) error {
	minPrice, err := parsePrice(c, "minPrice")
	if err != nil {
		return writeError(c, err)
	}
	maxPrice, err := parsePrice(c, "maxPrice")
	if err != nil {
		return writeError(c, err)
	}

	out, err := h.uc.ListApproved(c.Request().Context(), usecase.ListProductsInput{
		Keyword:  c.QueryParam("keyword"),
		Category: c.QueryParam("category"),
		MinPrice: minPrice,
		MaxPrice: maxPrice,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// POST /products と POST /vendor/products
func (h *ProductHandler) create(c echo.Context) error {
	id, ok := identity(c)
	if !ok {
		return unauthorized(c)
	}

	var req productCreateRequest
	if err := c.Bind(&req); err != nil {
		return writeError(c, usecase.ValidationError("Invalid request body"))
	}

	out, err := h.uc.Create(c.Request().Context(), id.UserID, usecase.ProductInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		Category:    req.Category,
		Image:       req.Image,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

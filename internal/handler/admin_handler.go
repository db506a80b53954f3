package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"freshmart/internal/domain/model"
	"freshmart/internal/repository"
	"freshmart/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /admin 管理者ダッシュボード
type AdminHandler struct {
	uc    *usecase.AdminUsecase
	stats *usecase.StatsUsecase
}

// DI
func NewAdminHandler(uc *usecase.AdminUsecase, stats *usecase.StatsUsecase) *AdminHandler {
	return &AdminHandler{uc: uc, stats: stats}
}

func (h *AdminHandler) RegisterRoutes(e *echo.Echo, guard Guard) {
	g := e.Group("/admin", guard.Require(model.RoleAdmin)...)

	g.GET("/stats", h.getStats)
	g.GET("/users", h.listUsers)
	g.GET("/vendors", h.listVendors)
	g.DELETE("/users/:id", h.deleteUser)
	g.GET("/audit-logs", h.auditLogs)
}

func (h *AdminHandler) getStats(c echo.Context) error {
	out, err := h.stats.Admin(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AdminHandler) listUsers(c echo.Context) error {
	out, err := h.uc.ListUsers(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AdminHandler) listVendors(c echo.Context) error {
	out, err := h.uc.ListVendors(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AdminHandler) deleteUser(c echo.Context) error {
	id, ok := identity(c)
	if !ok {
		return unauthorized(c)
	}

	out, err := h.uc.DeleteUser(c.Request().Context(), id.UserID, c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// クエリ: actor, action, resourceType, resourceId, from, to (RFC3339), limit, offset
func (h *AdminHandler) auditLogs(c echo.Context) error {
	var f repository.AuditLogFilter

	if v := strings.TrimSpace(c.QueryParam("actor")); v != "" {
		f.ActorUserID = &v
	}
	if v := strings.TrimSpace(c.QueryParam("action")); v != "" {
		a := model.AuditAction(v)
		f.Action = &a
	}
	if v := strings.TrimSpace(c.QueryParam("resourceType")); v != "" {
		rt := model.AuditResourceType(v)
		f.ResourceType = &rt
	}
	if v := strings.TrimSpace(c.QueryParam("resourceId")); v != "" {
		f.ResourceID = &v
	}
	if v := c.QueryParam("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return writeError(c, usecase.ValidationError("invalid from"))
		}
		f.CreatedFrom = &t
	}
	if v := c.QueryParam("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return writeError(c, usecase.ValidationError("invalid to"))
		}
		f.CreatedTo = &t
	}
	if v := c.QueryParam("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return writeError(c, usecase.ValidationError("invalid limit"))
		}
		f.Limit = n
	}
	if v := c.QueryParam("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return writeError(c, usecase.ValidationError("invalid offset"))
		}
		f.Offset = n
	}

	out, err := h.uc.AuditLogs(c.Request().Context(), f)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

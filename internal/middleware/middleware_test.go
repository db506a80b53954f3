package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"freshmart/internal/domain/model"
	"freshmart/internal/infra/security"
	repo "freshmart/internal/repository"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type fakeUsers struct {
	byID map[string]model.User
	err  error
}

func (f *fakeUsers) Create(context.Context, *model.User) error { return nil }
func (f *fakeUsers) FindByEmail(context.Context, string) (*model.User, error) {
	return nil, repo.ErrNotFound
}
func (f *fakeUsers) FindByID(_ context.Context, id string) (*model.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.byID[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return &u, nil
}
func (f *fakeUsers) Update(context.Context, *model.User) error { return nil }
func (f *fakeUsers) Delete(context.Context, string) error      { return nil }
func (f *fakeUsers) ListByRole(context.Context, model.Role) ([]model.User, error) {
	return nil, nil
}
func (f *fakeUsers) Count(context.Context) (int64, error) { return int64(len(f.byID)), nil }

type fakeLimiter struct {
	allow bool
	err   error
	scope string
}

func (f *fakeLimiter) Allow(_ context.Context, scope string) (bool, int64, error) {
	f.scope = scope
	return f.allow, 1, f.err
}

// 本人情報をそのまま返すハンドラ
func whoami(c echo.Context) error {
	id, ok := IdentityFrom(c)
	if !ok {
		return c.NoContent(http.StatusTeapot)
	}
	return c.String(http.StatusOK, id.UserID+":"+string(id.Role))
}

func serve(t *testing.T, h echo.HandlerFunc, mws []echo.MiddlewareFunc, authz string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	e.GET("/", h, mws...)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authz != "" {
		req.Header.Set(echo.HeaderAuthorization, authz)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestAuthJWT(t *testing.T) {
	issuer := security.NewJWTIssuer("secret", time.Hour)
	tok, _, err := issuer.Issue("u1", model.RoleVendor, time.Now())
	require.NoError(t, err)
	mw := []echo.MiddlewareFunc{AuthJWT(issuer)}

	rec := serve(t, whoami, mw, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"message":"Not authorized, no token"}`, rec.Body.String())

	rec = serve(t, whoami, mw, "Basic abc")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = serve(t, whoami, mw, "Bearer nope")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"message":"Not authorized, token failed"}`, rec.Body.String())

	rec = serve(t, whoami, mw, "Bearer "+tok)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u1:vendor", rec.Body.String())
}

// Test: 削除済みユーザーは弾き、roleはDBの値を使う
func TestActiveUserGuard(t *testing.T) {
	issuer := security.NewJWTIssuer("secret", time.Hour)
	tok, _, err := issuer.Issue("u1", model.RoleUser, time.Now())
	require.NoError(t, err)

	users := &fakeUsers{byID: map[string]model.User{"u1": {ID: "u1", Role: model.RoleVendor}}}
	mw := []echo.MiddlewareFunc{AuthJWT(issuer), ActiveUserGuard(users)}

	rec := serve(t, whoami, mw, "Bearer "+tok)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u1:vendor", rec.Body.String())

	delete(users.byID, "u1")
	rec = serve(t, whoami, mw, "Bearer "+tok)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"message":"Not authorized, user not found"}`, rec.Body.String())

	users.err = errors.New("db down")
	rec = serve(t, whoami, mw, "Bearer "+tok)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestRequireRoles(t *testing.T) {
	issuer := security.NewJWTIssuer("secret", time.Hour)
	userTok, _, err := issuer.Issue("u1", model.RoleUser, time.Now())
	require.NoError(t, err)
	adminTok, _, err := issuer.Issue("a1", model.RoleAdmin, time.Now())
	require.NoError(t, err)

	mw := []echo.MiddlewareFunc{AuthJWT(issuer), RequireRoles(model.RoleAdmin, model.RoleVendor)}

	rec := serve(t, whoami, mw, "Bearer "+userTok)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.JSONEq(t, `{"message":"Access denied: You don't have permission to access this resource"}`, rec.Body.String())

	rec = serve(t, whoami, mw, "Bearer "+adminTok)
	assert.Equal(t, http.StatusOK, rec.Code)

	// AuthJWT無しで呼ばれた
	rec = serve(t, whoami, []echo.MiddlewareFunc{RequireRoles(model.RoleAdmin)}, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRateLimit(t *testing.T) {
	ok := func(c echo.Context) error { return c.NoContent(http.StatusNoContent) }

	lim := &fakeLimiter{allow: true}
	rec := serve(t, ok, []echo.MiddlewareFunc{RateLimit(lim, "auth")}, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "auth:192.0.2.1", lim.scope)

	lim.allow = false
	rec = serve(t, ok, []echo.MiddlewareFunc{RateLimit(lim, "auth")}, "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.JSONEq(t, `{"message":"Too many requests"}`, rec.Body.String())

	// redis障害時は通す
	lim.err = errors.New("redis down")
	rec = serve(t, ok, []echo.MiddlewareFunc{RateLimit(lim, "auth")}, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = serve(t, ok, []echo.MiddlewareFunc{RateLimit(nil, "auth")}, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

type recordingObserver struct {
	route  string
	status int
}

func (o *recordingObserver) ObserveHTTP(_ string, route string, status int, _ time.Duration) {
	o.route = route
	o.status = status
}

func TestRequestLogger(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	obs := &recordingObserver{}

	e := echo.New()
	e.Use(RequestLogger(zap.New(core), obs))
	e.GET("/items/:id", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusNotFound, "nope")
	})

	req := httptest.NewRequest(http.MethodGet, "/items/42", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "/items/:id", obs.route)
	assert.Equal(t, http.StatusNotFound, obs.status)

	entries := logs.FilterMessage("request").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zap.WarnLevel, entries[0].Level)
	assert.Equal(t, "/items/42", entries[0].ContextMap()["path"])
}

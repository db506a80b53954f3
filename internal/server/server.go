package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"freshmart/internal/handler"
	"freshmart/internal/middleware"
	"freshmart/internal/validator"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

type Options struct {
	Handlers Handlers
	Guard    handler.Guard
	Limiter  middleware.RateLimiter
	Gatherer prometheus.Gatherer
	Observer middleware.HTTPObserver
	Logger   *zap.Logger
}

// echoを組み立てる
func New(opts Options) *echo.Echo {
	log := opts.Logger
	if log == nil {
		log = zap.L()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = validator.NewEchoValidator()
	e.HTTPErrorHandler = handler.ErrorHandler

	e.Use(echomw.RequestID())
	e.Use(middleware.RequestLogger(log.Named("http"), opts.Observer))
	e.Use(echomw.Recover())
	e.Use(echomw.CORS())
	e.Use(echomw.BodyLimit("1M"))

	RegisterRoutes(e, opts.Handlers, opts.Guard, opts.Limiter, opts.Gatherer)
	return e
}

// ctxが終わるまで待ち受け、終わったら処理中のリクエストを待って止める
func Start(ctx context.Context, e *echo.Echo, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		zap.L().Info("server listening", zap.String("addr", addr))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	zap.L().Info("shutting down server")
	return e.Shutdown(shutdownCtx)
}

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"freshmart/internal/config"
	"freshmart/internal/handler"
	"freshmart/internal/infra/mailer"
	"freshmart/internal/infra/payment"
	"freshmart/internal/infra/pdf"
	"freshmart/internal/infra/ratelimit"
	"freshmart/internal/infra/security"
	"freshmart/internal/logger"
	"freshmart/internal/metrics"
	"freshmart/internal/middleware"
	"freshmart/internal/notification"
	"freshmart/internal/server"
	"freshmart/internal/usecase"
	"freshmart/internal/validator"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

func main() {
	app := &cli.App{
		Name:  "freshmart",
		Usage: "FreshMart grocery marketplace API",
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the HTTP API",
				Action: serve,
			},
			{
				Name:  "create-admin",
				Usage: "create an admin account or promote an existing one",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Value: "Super Admin"},
					&cli.StringFlag{Name: "email", Required: true},
					&cli.StringFlag{Name: "password", Required: true},
				},
				Action: createAdmin,
			},
			{
				Name:   "seed",
				Usage:  "insert demo users and approved products",
				Action: seed,
			},
		},
		// サブコマンド無しはserve
		Action: serve,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.RunContext(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// 設定・ロガー・DBを用意する
func bootstrap(ctx context.Context) (config.Config, *zap.Logger, *store, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, nil, nil, err
	}
	log, err := logger.New(cfg)
	if err != nil {
		return config.Config{}, nil, nil, err
	}
	st, err := openStore(ctx, cfg)
	if err != nil {
		_ = log.Sync()
		return config.Config{}, nil, nil, err
	}
	return cfg, log, st, nil
}

func serve(c *cli.Context) error {
	ctx := c.Context
	cfg, log, st, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()
	defer func() {
		if err := st.close(context.Background()); err != nil {
			log.Warn("close store", zap.Error(err))
		}
	}()

	//metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.New(reg)

	//通知（ants pool）
	dispatcher, err := notification.NewDispatcher(cfg.Notify.Workers, mailer.New(cfg.SMTP, log), appMetrics, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := dispatcher.Release(5 * time.Second); err != nil {
			log.Warn("notification pool release", zap.Error(err))
		}
	}()
	notifier := notification.NewService(dispatcher)

	//usecaseに渡す部品
	idGen := security.UUIDGenerator{}
	clock := security.SystemClock{}
	hasher := security.NewBcryptPasswordHasher(cfg.BcryptCost)
	verifier := security.NewBcryptPasswordVerifier()
	issuer := security.NewJWTIssuer(cfg.JWT.Secret, cfg.JWT.TTL)

	var gateway usecase.PaymentGateway
	if cfg.Razorpay.IsMock() {
		log.Warn("razorpay keys not configured, using mock gateway")
		gateway = payment.NewMock(clock)
	} else {
		gateway = payment.NewRazorpay(cfg.Razorpay.KeyID, cfg.Razorpay.KeySecret)
	}

	//レート制限（redis未設定なら無効）
	var limiter middleware.RateLimiter
	if cfg.Redis.URL != "" {
		rdb, err := ratelimit.Dial(ctx, cfg.Redis.URL)
		if err != nil {
			log.Warn("redis unavailable, auth rate limit disabled", zap.Error(err))
		} else {
			defer func() { _ = rdb.Close() }()
			limiter = ratelimit.NewLimiter(rdb, cfg.Redis.AuthRateLimit, cfg.Redis.AuthRateWindow)
		}
	}

	//Usecase生成
	authUC := usecase.NewAuthUsecase(st.users, validator.NewAuthValidator(), hasher, verifier, issuer, idGen, clock, notifier)
	productUC := usecase.NewProductUsecase(st.products, st.tx, idGen, clock)
	cartUC := usecase.NewCartUsecase(st.carts, st.products, idGen, clock)
	orderUC := usecase.NewOrderUsecase(usecase.OrderDeps{
		Tx:                    st.tx,
		Orders:                st.orders,
		Products:              st.products,
		Users:                 st.users,
		Addresses:             validator.NewAddressValidator(),
		Notifier:              notifier,
		Invoices:              pdf.NewInvoiceRenderer(),
		Metrics:               appMetrics,
		IDGen:                 idGen,
		Clock:                 clock,
		OnlineDecrementsStock: cfg.OnlineDecrementsStock,
	})
	paymentUC := usecase.NewPaymentUsecase(gateway, orderUC, clock)
	statsUC := usecase.NewStatsUsecase(st.users, st.orders, st.products)
	adminUC := usecase.NewAdminUsecase(st.users, st.products, st.audit, st.tx, hasher, idGen, clock)

	//Handler生成
	productH := handler.NewProductHandler(productUC)
	e := server.New(server.Options{
		Handlers: server.Handlers{
			Auth:         handler.NewAuthHandler(authUC),
			Product:      productH,
			AdminProduct: handler.NewAdminProductHandler(productUC),
			Vendor:       handler.NewVendorHandler(productH, orderUC, statsUC),
			Cart:         handler.NewCartHandler(cartUC),
			Order:        handler.NewOrderHandler(orderUC),
			Payment:      handler.NewPaymentHandler(paymentUC),
			Admin:        handler.NewAdminHandler(adminUC, statsUC),
		},
		Guard:    handler.NewGuard(issuer, st.users),
		Limiter:  limiter,
		Gatherer: reg,
		Observer: appMetrics,
		Logger:   log,
	})

	//Server起動
	return server.Start(ctx, e, ":"+cfg.Port)
}

func newAdminUsecase(st *store, cfg config.Config) *usecase.AdminUsecase {
	return usecase.NewAdminUsecase(
		st.users, st.products, st.audit, st.tx,
		security.NewBcryptPasswordHasher(cfg.BcryptCost),
		security.UUIDGenerator{}, security.SystemClock{},
	)
}

func createAdmin(c *cli.Context) error {
	cfg, log, st, err := bootstrap(c.Context)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()
	defer func() { _ = st.close(context.Background()) }()

	user, err := newAdminUsecase(st, cfg).EnsureAdmin(c.Context, usecase.EnsureAdminInput{
		Name:     c.String("name"),
		Email:    c.String("email"),
		Password: c.String("password"),
	})
	if err != nil {
		return err
	}
	log.Info("admin account ready", zap.String("email", user.Email), zap.String("id", user.ID))
	return nil
}

func seed(c *cli.Context) error {
	cfg, log, st, err := bootstrap(c.Context)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()
	defer func() { _ = st.close(context.Background()) }()

	res, err := newAdminUsecase(st, cfg).Seed(c.Context)
	if err != nil {
		return err
	}
	log.Info("seed complete", zap.Int("users", res.Users), zap.Int("products", res.Products))
	return nil
}

package main

import (
	"context"

	"freshmart/internal/config"
	"freshmart/internal/infra/db"
	"freshmart/internal/infra/docstore"
	infraRepo "freshmart/internal/infra/repository"
	repo "freshmart/internal/repository"

	"github.com/pkg/errors"
)

// 永続化の実装一式。ドライバで切り替える。
type store struct {
	users    repo.UserRepository
	products repo.ProductRepository
	carts    repo.CartRepository
	orders   repo.OrderRepository
	audit    repo.AuditLogRepository
	tx       repo.TransactionManager

	close func(ctx context.Context) error
}

func openStore(ctx context.Context, cfg config.Config) (*store, error) {
	if cfg.DB.Driver == config.DriverMongo {
		return openMongoStore(ctx, cfg)
	}
	return openGormStore(cfg)
}

func openGormStore(cfg config.Config) (*store, error) {
	gormDB, err := db.Connect(cfg.DB)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(gormDB); err != nil {
		_ = db.Close(gormDB)
		return nil, err
	}

	return &store{
		users:    infraRepo.NewUserGormRepository(gormDB),
		products: infraRepo.NewProductGormRepository(gormDB),
		carts:    infraRepo.NewCartGormRepository(gormDB),
		orders:   infraRepo.NewOrderGormRepository(gormDB),
		audit:    infraRepo.NewAuditLogGormRepository(gormDB),
		tx:       infraRepo.NewTxManagerGorm(gormDB),
		close: func(context.Context) error {
			return db.Close(gormDB)
		},
	}, nil
}

func openMongoStore(ctx context.Context, cfg config.Config) (*store, error) {
	client, err := db.ConnectMongo(ctx, cfg.Mongo)
	if err != nil {
		return nil, err
	}
	mdb := client.Database(cfg.Mongo.Database)
	if err := docstore.EnsureIndexes(ctx, mdb); err != nil {
		_ = client.Disconnect(ctx)
		return nil, errors.Wrap(err, "ensure indexes")
	}

	return &store{
		users:    docstore.NewUserMongoRepository(mdb),
		products: docstore.NewProductMongoRepository(mdb),
		carts:    docstore.NewCartMongoRepository(mdb),
		orders:   docstore.NewOrderMongoRepository(mdb),
		audit:    docstore.NewAuditLogMongoRepository(mdb),
		tx:       docstore.NewTxManagerMongo(client, mdb),
		close:    client.Disconnect,
	}, nil
}

package docstore

import (
	"context"
	"time"

	repo "freshmart/internal/repository"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	colUsers     = "users"
	colProducts  = "products"
	colCarts     = "carts"
	colOrders    = "orders"
	colAuditLogs = "auditlogs"
)

// コレクション操作の共通部分。Tx中はsessionを持つ。
type base struct {
	db   *mongo.Database
	sess mongo.Session
}

func (b base) col(name string) *mongo.Collection {
	return b.db.Collection(name)
}

// Tx中ならセッションに紐づけたctxを返す
func (b base) ctx(ctx context.Context) context.Context {
	if b.sess == nil {
		return ctx
	}
	return mongo.NewSessionContext(ctx, b.sess)
}

// mongoのエラーをリポジトリのエラーに寄せる
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return repo.ErrNotFound
	}
	if mongo.IsDuplicateKeyError(err) {
		return repo.ErrConflict
	}
	return errors.WithStack(err)
}

func newestFirst() *options.FindOptions {
	return options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
}

// EnsureIndexes は一意制約と検索用のインデックスを作る
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	specs := map[string][]mongo.IndexModel{
		colUsers: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "role", Value: 1}}},
		},
		colProducts: {
			{Keys: bson.D{{Key: "isApproved", Value: 1}, {Key: "category", Value: 1}}},
			{Keys: bson.D{{Key: "vendor", Value: 1}}},
		},
		colCarts: {
			{Keys: bson.D{{Key: "user", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		colOrders: {
			{Keys: bson.D{{Key: "user", Value: 1}, {Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "items.product", Value: 1}}},
		},
		colAuditLogs: {
			{Keys: bson.D{{Key: "createdAt", Value: -1}}},
		},
	}
	for name, models := range specs {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return errors.Wrapf(err, "create indexes on %s", name)
		}
	}
	return nil
}

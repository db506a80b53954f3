package docstore

import (
	"context"

	repo "freshmart/internal/repository"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/mongo"
)

type txReposMongo struct {
	b base
}

func (r *txReposMongo) Orders() repo.OrderRepository        { return &orderMongoRepository{r.b} }
func (r *txReposMongo) Carts() repo.CartRepository          { return &cartMongoRepository{r.b} }
func (r *txReposMongo) Inventory() repo.InventoryRepository { return &inventoryMongoRepository{r.b} }
func (r *txReposMongo) Products() repo.ProductRepository    { return &productMongoRepository{r.b} }
func (r *txReposMongo) AuditLogs() repo.AuditLogRepository  { return &auditLogMongoRepository{r.b} }
func (r *txReposMongo) Users() repo.UserRepository           { return &userMongoRepository{r.b} }

// マルチドキュメントトランザクション（レプリカセットが必要）
type TxManagerMongo struct {
	client *mongo.Client
	db     *mongo.Database
}

func NewTxManagerMongo(client *mongo.Client, db *mongo.Database) *TxManagerMongo {
	return &TxManagerMongo{client: client, db: db}
}

func (tm *TxManagerMongo) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	sess, err := tm.client.StartSession()
	if err != nil {
		return errors.Wrap(err, "start session")
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(&txReposMongo{b: base{db: tm.db, sess: sess}})
	})
	return err
}

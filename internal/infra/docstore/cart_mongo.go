package docstore

import (
	"context"
	"time"

	"freshmart/internal/domain/model"
	repo "freshmart/internal/repository"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type cartMongoRepository struct {
	base
}

func NewCartMongoRepository(db *mongo.Database) repo.CartRepository {
	return &cartMongoRepository{base{db: db}}
}

func (r *cartMongoRepository) FindByUserID(ctx context.Context, userID string) (*model.Cart, error) {
	var c model.Cart
	if err := r.col(colCarts).FindOne(r.ctx(ctx), bson.M{"user": userID}).Decode(&c); err != nil {
		return nil, translate(err)
	}
	if c.Items == nil {
		c.Items = []model.CartItem{}
	}
	return &c, nil
}

// ユーザー単位でupsertして明細を置き換える
func (r *cartMongoRepository) Save(ctx context.Context, cart *model.Cart) error {
	if cart.ID == "" {
		cart.ID = uuid.NewString()
	}
	items := cart.Items
	if items == nil {
		items = []model.CartItem{}
	}
	now := time.Now()
	cart.UpdatedAt = now

	_, err := r.col(colCarts).UpdateOne(r.ctx(ctx),
		bson.M{"user": cart.UserID},
		bson.M{
			"$set":         bson.M{"items": items, "updatedAt": now},
			"$setOnInsert": bson.M{"_id": cart.ID, "createdAt": now},
		},
		options.Update().SetUpsert(true))
	return translate(err)
}

func (r *cartMongoRepository) Clear(ctx context.Context, userID string) error {
	_, err := r.col(colCarts).UpdateOne(r.ctx(ctx),
		bson.M{"user": userID},
		bson.M{"$set": bson.M{"items": []model.CartItem{}, "updatedAt": time.Now()}})
	return translate(err)
}

package docstore

import (
	"context"
	"regexp"
	"strings"
	"time"

	"freshmart/internal/domain/model"
	repo "freshmart/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type productMongoRepository struct {
	base
}

func NewProductMongoRepository(db *mongo.Database) repo.ProductRepository {
	return &productMongoRepository{base{db: db}}
}

// 公開一覧の検索条件。常に承認済みだけ。
func approvedFilter(f repo.ProductFilter) bson.M {
	q := bson.M{"isApproved": true}
	if kw := strings.TrimSpace(f.Keyword); kw != "" {
		q["name"] = primitive.Regex{Pattern: regexp.QuoteMeta(kw), Options: "i"}
	}
	if f.Category != "" {
		q["category"] = f.Category
	}
	price := bson.M{}
	if f.MinPrice != nil {
		price["$gte"] = *f.MinPrice
	}
	if f.MaxPrice != nil {
		price["$lte"] = *f.MaxPrice
	}
	if len(price) > 0 {
		q["price"] = price
	}
	return q
}

func (r *productMongoRepository) find(ctx context.Context, filter bson.M) ([]model.Product, error) {
	cur, err := r.col(colProducts).Find(r.ctx(ctx), filter, newestFirst())
	if err != nil {
		return nil, translate(err)
	}
	products := []model.Product{}
	if err := cur.All(r.ctx(ctx), &products); err != nil {
		return nil, translate(err)
	}
	return products, nil
}

func (r *productMongoRepository) ListApproved(ctx context.Context, f repo.ProductFilter) ([]model.Product, error) {
	return r.find(ctx, approvedFilter(f))
}

func (r *productMongoRepository) ListPending(ctx context.Context) ([]model.Product, error) {
	return r.find(ctx, bson.M{"isApproved": false})
}

func (r *productMongoRepository) ListByVendor(ctx context.Context, vendorID string) ([]model.Product, error) {
	return r.find(ctx, bson.M{"vendor": vendorID})
}

func (r *productMongoRepository) FindByIDs(ctx context.Context, ids []string) ([]model.Product, error) {
	if len(ids) == 0 {
		return []model.Product{}, nil
	}
	return r.find(ctx, bson.M{"_id": bson.M{"$in": ids}})
}

func (r *productMongoRepository) FindByID(ctx context.Context, id string) (*model.Product, error) {
	var p model.Product
	if err := r.col(colProducts).FindOne(r.ctx(ctx), bson.M{"_id": id}).Decode(&p); err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

// 他人の商品も「無い」扱い
func (r *productMongoRepository) FindOwned(ctx context.Context, id string, vendorID string) (*model.Product, error) {
	var p model.Product
	if err := r.col(colProducts).FindOne(r.ctx(ctx), bson.M{"_id": id, "vendor": vendorID}).Decode(&p); err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r *productMongoRepository) Create(ctx context.Context, p *model.Product) error {
	now := time.Now()
	p.CreatedAt, p.UpdatedAt = now, now
	_, err := r.col(colProducts).InsertOne(r.ctx(ctx), p)
	return translate(err)
}

func (r *productMongoRepository) UpdateOwned(ctx context.Context, id string, vendorID string, u repo.ProductUpdate) error {
	res, err := r.col(colProducts).UpdateOne(r.ctx(ctx),
		bson.M{"_id": id, "vendor": vendorID},
		bson.M{"$set": productSet(u, time.Now())})
	if err != nil {
		return translate(err)
	}
	if res.MatchedCount == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// $setはパッチにある項目とupdatedAtだけ
func productSet(u repo.ProductUpdate, now time.Time) bson.M {
	set := bson.M{"updatedAt": now}
	if u.Name != nil {
		set["name"] = *u.Name
	}
	if u.Description != nil {
		set["description"] = *u.Description
	}
	if u.Price != nil {
		set["price"] = *u.Price
	}
	if u.Stock != nil {
		set["stock"] = *u.Stock
	}
	if u.Category != nil {
		set["category"] = *u.Category
	}
	if u.Image != nil {
		set["image"] = *u.Image
	}
	return set
}

func (r *productMongoRepository) DeleteOwned(ctx context.Context, id string, vendorID string) error {
	res, err := r.col(colProducts).DeleteOne(r.ctx(ctx), bson.M{"_id": id, "vendor": vendorID})
	if err != nil {
		return translate(err)
	}
	if res.DeletedCount == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *productMongoRepository) Approve(ctx context.Context, id string) error {
	res, err := r.col(colProducts).UpdateOne(r.ctx(ctx), bson.M{"_id": id},
		bson.M{"$set": bson.M{"isApproved": true, "updatedAt": time.Now()}})
	if err != nil {
		return translate(err)
	}
	if res.MatchedCount == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *productMongoRepository) Count(ctx context.Context) (int64, error) {
	n, err := r.col(colProducts).CountDocuments(r.ctx(ctx), bson.M{})
	return n, translate(err)
}

type inventoryMongoRepository struct {
	base
}

func NewInventoryMongoRepository(db *mongo.Database) repo.InventoryRepository {
	return &inventoryMongoRepository{base{db: db}}
}

// 在庫が足りるときだけ$incで減らす
func (r *inventoryMongoRepository) DecreaseStockIfEnough(ctx context.Context, productID string, qty int64) (bool, error) {
	res, err := r.col(colProducts).UpdateOne(r.ctx(ctx),
		bson.M{"_id": productID, "stock": bson.M{"$gte": qty}},
		bson.M{"$inc": bson.M{"stock": -qty}})
	if err != nil {
		return false, translate(err)
	}
	return res.MatchedCount == 1, nil
}

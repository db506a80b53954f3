package docstore

import (
	"context"
	"time"

	"freshmart/internal/domain/model"
	repo "freshmart/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type orderMongoRepository struct {
	base
}

func NewOrderMongoRepository(db *mongo.Database) repo.OrderRepository {
	return &orderMongoRepository{base{db: db}}
}

func (r *orderMongoRepository) Create(ctx context.Context, order *model.Order) error {
	if order.ID == "" {
		order.ID = uuid.NewString()
	}
	now := time.Now()
	order.CreatedAt, order.UpdatedAt = now, now
	_, err := r.col(colOrders).InsertOne(r.ctx(ctx), order)
	return translate(err)
}

func (r *orderMongoRepository) FindByID(ctx context.Context, id string) (*model.Order, error) {
	var o model.Order
	if err := r.col(colOrders).FindOne(r.ctx(ctx), bson.M{"_id": id}).Decode(&o); err != nil {
		return nil, translate(err)
	}
	return &o, nil
}

func (r *orderMongoRepository) find(ctx context.Context, filter bson.M) ([]model.Order, error) {
	cur, err := r.col(colOrders).Find(r.ctx(ctx), filter, newestFirst())
	if err != nil {
		return nil, translate(err)
	}
	orders := []model.Order{}
	if err := cur.All(r.ctx(ctx), &orders); err != nil {
		return nil, translate(err)
	}
	return orders, nil
}

func (r *orderMongoRepository) ListByUserID(ctx context.Context, userID string) ([]model.Order, error) {
	return r.find(ctx, bson.M{"user": userID})
}

func (r *orderMongoRepository) ListAll(ctx context.Context) ([]model.Order, error) {
	return r.find(ctx, bson.M{})
}

func (r *orderMongoRepository) ListByProductIDs(ctx context.Context, productIDs []string) ([]model.Order, error) {
	if len(productIDs) == 0 {
		return []model.Order{}, nil
	}
	return r.find(ctx, bson.M{"items.product": bson.M{"$in": productIDs}})
}

func (r *orderMongoRepository) UpdateStatus(ctx context.Context, id string, u repo.OrderStatusUpdate) error {
	set := bson.M{"updatedAt": time.Now()}
	if u.Status != nil {
		set["status"] = *u.Status
	}
	if u.PaymentStatus != nil {
		set["paymentStatus"] = *u.PaymentStatus
	}
	filter := bson.M{"_id": id}
	if u.From != nil {
		filter["status"] = *u.From
	}
	res, err := r.col(colOrders).UpdateOne(r.ctx(ctx), filter, bson.M{"$set": set})
	if err != nil {
		return translate(err)
	}
	if res.MatchedCount > 0 {
		return nil
	}
	if u.From == nil {
		return repo.ErrNotFound
	}
	n, err := r.col(colOrders).CountDocuments(r.ctx(ctx), bson.M{"_id": id})
	if err != nil {
		return translate(err)
	}
	if n == 0 {
		return repo.ErrNotFound
	}
	return repo.ErrStaleState
}

func (r *orderMongoRepository) Count(ctx context.Context) (int64, error) {
	n, err := r.col(colOrders).CountDocuments(r.ctx(ctx), bson.M{})
	return n, translate(err)
}

func (r *orderMongoRepository) SumTotalByPaymentStatus(ctx context.Context, status model.PaymentStatus) (decimal.Decimal, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"paymentStatus": status}}},
		{{Key: "$group", Value: bson.M{"_id": nil, "total": bson.M{"$sum": "$totalAmount"}}}},
	}
	cur, err := r.col(colOrders).Aggregate(r.ctx(ctx), pipeline)
	if err != nil {
		return decimal.Zero, translate(err)
	}
	var rows []struct {
		Total decimal.Decimal `bson:"total"`
	}
	if err := cur.All(r.ctx(ctx), &rows); err != nil {
		return decimal.Zero, translate(err)
	}
	if len(rows) == 0 {
		return decimal.Zero, nil
	}
	return rows[0].Total, nil
}

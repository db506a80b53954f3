package docstore

import (
	"context"
	"time"

	"freshmart/internal/domain/model"
	repo "freshmart/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type userMongoRepository struct {
	base
}

func NewUserMongoRepository(db *mongo.Database) repo.UserRepository {
	return &userMongoRepository{base{db: db}}
}

func (r *userMongoRepository) Create(ctx context.Context, user *model.User) error {
	now := time.Now()
	user.CreatedAt, user.UpdatedAt = now, now
	_, err := r.col(colUsers).InsertOne(r.ctx(ctx), user)
	return translate(err)
}

func (r *userMongoRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var u model.User
	if err := r.col(colUsers).FindOne(r.ctx(ctx), bson.M{"email": email}).Decode(&u); err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (r *userMongoRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	var u model.User
	if err := r.col(colUsers).FindOne(r.ctx(ctx), bson.M{"_id": id}).Decode(&u); err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (r *userMongoRepository) Update(ctx context.Context, user *model.User) error {
	user.UpdatedAt = time.Now()
	res, err := r.col(colUsers).UpdateOne(r.ctx(ctx), bson.M{"_id": user.ID}, bson.M{"$set": bson.M{
		"name":      user.Name,
		"email":     user.Email,
		"password":  user.PasswordHash,
		"role":      user.Role,
		"phone":     user.Phone,
		"address":   user.Address,
		"city":      user.City,
		"state":     user.State,
		"pincode":   user.Pincode,
		"updatedAt": user.UpdatedAt,
	}})
	if err != nil {
		return translate(err)
	}
	if res.MatchedCount == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *userMongoRepository) Delete(ctx context.Context, id string) error {
	res, err := r.col(colUsers).DeleteOne(r.ctx(ctx), bson.M{"_id": id})
	if err != nil {
		return translate(err)
	}
	if res.DeletedCount == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *userMongoRepository) ListByRole(ctx context.Context, role model.Role) ([]model.User, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cur, err := r.col(colUsers).Find(r.ctx(ctx), bson.M{"role": role}, opts)
	if err != nil {
		return nil, translate(err)
	}
	users := []model.User{}
	if err := cur.All(r.ctx(ctx), &users); err != nil {
		return nil, translate(err)
	}
	return users, nil
}

func (r *userMongoRepository) Count(ctx context.Context) (int64, error) {
	n, err := r.col(colUsers).CountDocuments(r.ctx(ctx), bson.M{})
	return n, translate(err)
}

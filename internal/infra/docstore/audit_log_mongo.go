package docstore

import (
	"context"

	"freshmart/internal/domain/model"
	repo "freshmart/internal/repository"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type auditLogMongoRepository struct {
	base
}

func NewAuditLogMongoRepository(db *mongo.Database) repo.AuditLogRepository {
	return &auditLogMongoRepository{base{db: db}}
}

func (r *auditLogMongoRepository) Create(ctx context.Context, log model.AuditLog) error {
	if log.ID == "" {
		log.ID = uuid.NewString()
	}
	_, err := r.col(colAuditLogs).InsertOne(r.ctx(ctx), log)
	return translate(err)
}

func auditFilter(f repo.AuditLogFilter) bson.M {
	q := bson.M{}
	if f.ActorUserID != nil {
		q["actor"] = *f.ActorUserID
	}
	if f.Action != nil {
		q["action"] = *f.Action
	}
	if f.ResourceType != nil {
		q["resourceType"] = *f.ResourceType
	}
	if f.ResourceID != nil {
		q["resourceId"] = *f.ResourceID
	}
	created := bson.M{}
	if f.CreatedFrom != nil {
		created["$gte"] = *f.CreatedFrom
	}
	if f.CreatedTo != nil {
		created["$lte"] = *f.CreatedTo
	}
	if len(created) > 0 {
		q["createdAt"] = created
	}
	return q
}

func (r *auditLogMongoRepository) List(ctx context.Context, filter repo.AuditLogFilter) ([]model.AuditLog, error) {
	filter = filter.Normalized()
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(int64(filter.Limit)).
		SetSkip(int64(filter.Offset))

	cur, err := r.col(colAuditLogs).Find(r.ctx(ctx), auditFilter(filter), opts)
	if err != nil {
		return nil, translate(err)
	}
	logs := []model.AuditLog{}
	if err := cur.All(r.ctx(ctx), &logs); err != nil {
		return nil, translate(err)
	}
	return logs, nil
}

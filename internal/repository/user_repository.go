package repository

import (
	"context"

	"freshmart/internal/domain/model"
)

// ユーザーの永続化の約束
type UserRepository interface {
	// emailが重複したらErrConflict
	Create(ctx context.Context, user *model.User) error
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByID(ctx context.Context, id string) (*model.User, error)
	Update(ctx context.Context, user *model.User) error
	Delete(ctx context.Context, id string) error
	ListByRole(ctx context.Context, role model.Role) ([]model.User, error)
	Count(ctx context.Context) (int64, error)
}

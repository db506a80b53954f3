package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"freshmart/internal/domain/model"
	repo "freshmart/internal/repository"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type AdminUsecase struct {
	users    repo.UserRepository
	products repo.ProductRepository
	audit    repo.AuditLogRepository
	tx       repo.TransactionManager
	hasher   PasswordHasher
	idGen    IDGenerator
	clock    Clock
}

// DI
func NewAdminUsecase(
	users repo.UserRepository,
	products repo.ProductRepository,
	audit repo.AuditLogRepository,
	tx repo.TransactionManager,
	hasher PasswordHasher,
	idGen IDGenerator,
	clock Clock,
) *AdminUsecase {
	return &AdminUsecase{
		users:    users,
		products: products,
		audit:    audit,
		tx:       tx,
		hasher:   hasher,
		idGen:    idGen,
		clock:    clock,
	}
}

type MessageOutput struct {
	Message string `json:"message"`
}

func (u *AdminUsecase) ListUsers(ctx context.Context) ([]model.User, error) {
	users, err := u.users.ListByRole(ctx, model.RoleUser)
	if err != nil {
		return nil, internalError("admin.list_users", err)
	}
	return users, nil
}

func (u *AdminUsecase) ListVendors(ctx context.Context) ([]model.User, error) {
	users, err := u.users.ListByRole(ctx, model.RoleVendor)
	if err != nil {
		return nil, internalError("admin.list_vendors", err)
	}
	return users, nil
}

// ユーザー削除。自分自身は消せない。
func (u *AdminUsecase) DeleteUser(ctx context.Context, actorID string, userID string) (MessageOutput, error) {
	if actorID == userID {
		return MessageOutput{}, ValidationError("You cannot delete your own account")
	}

	// 削除と監査ログは同じTxで書く
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		target, err := r.Users().FindByID(ctx, userID)
		if errors.Is(err, repo.ErrNotFound) {
			return NotFound("User not found")
		}
		if err != nil {
			return err
		}

		if err := r.Users().Delete(ctx, userID); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return NotFound("User not found")
			}
			return err
		}

		return r.AuditLogs().Create(ctx, model.AuditLog{
			ID:           u.idGen.NewID(),
			ActorUserID:  actorID,
			Action:       model.AuditActionDeleteUser,
			ResourceType: model.AuditResourceUser,
			ResourceID:   userID,
			BeforeJSON:   fmt.Sprintf(`{"email":%q,"role":%q}`, target.Email, target.Role),
			CreatedAt:    u.clock.Now(),
		})
	})
	if err != nil {
		return MessageOutput{}, passOrInternal("admin.delete_user", err)
	}
	return MessageOutput{Message: "User removed"}, nil
}

// GET /admin/audit-logs
func (u *AdminUsecase) AuditLogs(ctx context.Context, f repo.AuditLogFilter) ([]model.AuditLog, error) {
	f = f.Normalized()
	if f.Action != nil {
		switch *f.Action {
		case model.AuditActionApproveProduct, model.AuditActionUpdateOrderStatus, model.AuditActionDeleteUser:
		default:
			return nil, ValidationError("invalid action")
		}
	}
	if f.CreatedFrom != nil && f.CreatedTo != nil && f.CreatedFrom.After(*f.CreatedTo) {
		return nil, ValidationError("from must be before to")
	}

	logs, err := u.audit.List(ctx, f)
	if err != nil {
		return nil, internalError("admin.audit_logs", err)
	}
	return logs, nil
}

type EnsureAdminInput struct {
	Name     string
	Email    string
	Password string
}

// 管理者を作る。同じemailがあれば管理者に昇格しパスワードを置き換える。
// CLIからだけ呼ぶ。
func (u *AdminUsecase) EnsureAdmin(ctx context.Context, in EnsureAdminInput) (model.User, error) {
	email := normalizeEmail(in.Email)
	name := strings.TrimSpace(in.Name)
	if email == "" || in.Password == "" {
		return model.User{}, ValidationError("email and password are required")
	}
	if name == "" {
		name = "Admin"
	}

	hashed, err := u.hasher.Hash(in.Password)
	if err != nil {
		return model.User{}, fmt.Errorf("hash password: %w", err)
	}
	now := u.clock.Now()

	existing, err := u.users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		existing.Name = name
		existing.PasswordHash = hashed
		existing.Role = model.RoleAdmin
		existing.UpdatedAt = now
		if err := u.users.Update(ctx, existing); err != nil {
			return model.User{}, fmt.Errorf("promote admin: %w", err)
		}
		return *existing, nil
	case errors.Is(err, repo.ErrNotFound):
		user := &model.User{
			ID:           u.idGen.NewID(),
			Name:         name,
			Email:        email,
			PasswordHash: hashed,
			Role:         model.RoleAdmin,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := u.users.Create(ctx, user); err != nil {
			return model.User{}, fmt.Errorf("create admin: %w", err)
		}
		return *user, nil
	default:
		return model.User{}, fmt.Errorf("find admin: %w", err)
	}
}

// デモ用の出品者・顧客と承認済み商品
var seedProducts = []ProductInput{
	{Name: "Fresh Apples", Description: "Crisp, juicy apples sourced daily.", Price: decimal.NewFromInt(99), Stock: 100, Category: "Fruits", Image: "https://images.pexels.com/photos/102104/pexels-photo-102104.jpeg"},
	{Name: "Organic Bananas", Description: "Sweet and ripe organic bananas.", Price: decimal.NewFromInt(60), Stock: 100, Category: "Fruits", Image: "https://images.pexels.com/photos/461208/pexels-photo-461208.jpeg"},
	{Name: "Farm Fresh Tomatoes", Description: "Juicy red tomatoes perfect for salads.", Price: decimal.NewFromInt(80), Stock: 100, Category: "Vegetables", Image: "https://images.pexels.com/photos/8390/food-wood-red-tomato.jpg"},
	{Name: "Green Leaf Spinach", Description: "Cleaned and ready-to-cook spinach leaves.", Price: decimal.NewFromInt(40), Stock: 100, Category: "Vegetables", Image: "https://images.pexels.com/photos/143133/pexels-photo-143133.jpeg"},
	{Name: "Whole Wheat Bread", Description: "Soft, high-fiber whole wheat bread loaf.", Price: decimal.NewFromInt(55), Stock: 50, Category: "Bakery", Image: "https://images.pexels.com/photos/209206/pexels-photo-209206.jpeg"},
}

type seedUser struct {
	name, email, password string
	role                  model.Role
}

var seedUsers = []seedUser{
	{"Vendor User", "vendor@freshmart.com", "Vendor123!", model.RoleVendor},
	{"Customer User", "user@freshmart.com", "User123!", model.RoleUser},
}

type SeedResult struct {
	Users    int
	Products int
}

// デモデータ投入。既にあるユーザーは飛ばし、商品はカタログが空のときだけ入れる。
func (u *AdminUsecase) Seed(ctx context.Context) (SeedResult, error) {
	var res SeedResult
	var vendorID string
	now := u.clock.Now()

	for _, su := range seedUsers {
		existing, err := u.users.FindByEmail(ctx, su.email)
		if err == nil {
			if su.role == model.RoleVendor {
				vendorID = existing.ID
			}
			zap.L().Info("seed user exists, skipping", zap.String("email", su.email))
			continue
		}
		if !errors.Is(err, repo.ErrNotFound) {
			return res, fmt.Errorf("find seed user: %w", err)
		}

		hashed, err := u.hasher.Hash(su.password)
		if err != nil {
			return res, fmt.Errorf("hash seed password: %w", err)
		}
		user := &model.User{
			ID:           u.idGen.NewID(),
			Name:         su.name,
			Email:        su.email,
			PasswordHash: hashed,
			Role:         su.role,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := u.users.Create(ctx, user); err != nil {
			return res, fmt.Errorf("create seed user: %w", err)
		}
		if su.role == model.RoleVendor {
			vendorID = user.ID
		}
		res.Users++
	}

	count, err := u.products.Count(ctx)
	if err != nil {
		return res, fmt.Errorf("count products: %w", err)
	}
	if count > 0 {
		zap.L().Info("catalog not empty, skipping products", zap.Int64("products", count))
		return res, nil
	}

	for _, in := range seedProducts {
		p := model.Product{
			ID:          u.idGen.NewID(),
			Name:        in.Name,
			Description: in.Description,
			Price:       in.Price,
			Stock:       in.Stock,
			Category:    in.Category,
			Image:       in.Image,
			VendorID:    vendorID,
			IsApproved:  true,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := u.products.Create(ctx, &p); err != nil {
			return res, fmt.Errorf("create seed product: %w", err)
		}
		res.Products++
	}
	return res, nil
}

package usecase

import (
	"context"
	"errors"
	"strings"

	"freshmart/internal/domain/model"
	"freshmart/internal/repository"
)

type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     model.Role
}

type RegisterOutput struct {
	Message string `json:"message"`
	UserID  string `json:"userId"`
}

type LoginInput struct {
	Email    string
	Password string
}

// ログイン応答に載せる公開プロフィール
type PublicUser struct {
	ID    string     `json:"id"`
	Name  string     `json:"name"`
	Email string     `json:"email"`
	Role  model.Role `json:"role"`
}

type LoginOutput struct {
	Message string     `json:"message"`
	Token   string     `json:"token"`
	User    PublicUser `json:"user"`
}

// プロフィール更新。nilや空文字の項目は変更しない。
type ProfileInput struct {
	Name     *string
	Email    *string
	Password *string
	Phone    *string
	Address  *string
	City     *string
	State    *string
	Pincode  *string
}

type AuthUsecase struct {
	users     repository.UserRepository
	validator AuthValidator
	hasher    PasswordHasher
	verifier  PasswordVerifier
	issuer    TokenIssuer
	idGen     IDGenerator
	clock     Clock
	notifier  Notifier
}

// DI
func NewAuthUsecase(
	users repository.UserRepository,
	validator AuthValidator,
	hasher PasswordHasher,
	verifier PasswordVerifier,
	issuer TokenIssuer,
	idGen IDGenerator,
	clock Clock,
	notifier Notifier,
) *AuthUsecase {
	return &AuthUsecase{
		users:     users,
		validator: validator,
		hasher:    hasher,
		verifier:  verifier,
		issuer:    issuer,
		idGen:     idGen,
		clock:     clock,
		notifier:  notifier,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// 会員登録。adminは公開APIからは作れない。
func (u *AuthUsecase) Register(ctx context.Context, in RegisterInput) (RegisterOutput, error) {
	if in.Role == model.RoleAdmin {
		return RegisterOutput{}, Forbidden("Registration of admin role is restricted")
	}
	if in.Role == "" {
		in.Role = model.RoleUser
	}
	in.Name = strings.TrimSpace(in.Name)
	in.Email = normalizeEmail(in.Email)

	if err := u.validator.ValidateRegister(ctx, in); err != nil {
		return RegisterOutput{}, err
	}

	// email重複チェック
	_, err := u.users.FindByEmail(ctx, in.Email)
	if err == nil {
		return RegisterOutput{}, Conflict("User already exists")
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return RegisterOutput{}, internalError("auth.register.find", err)
	}

	hashed, err := u.hasher.Hash(in.Password)
	if err != nil {
		return RegisterOutput{}, internalError("auth.register.hash", err)
	}

	now := u.clock.Now()
	user := &model.User{
		ID:           u.idGen.NewID(),
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hashed,
		Role:         in.Role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := u.users.Create(ctx, user); err != nil {
		// 同時登録で一意制約に当たった
		if errors.Is(err, repository.ErrConflict) {
			return RegisterOutput{}, Conflict("User already exists")
		}
		return RegisterOutput{}, internalError("auth.register.create", err)
	}

	u.notifier.Welcome(*user)

	return RegisterOutput{Message: "User registered successfully", UserID: user.ID}, nil
}

// ログインしてトークンを発行
func (u *AuthUsecase) Login(ctx context.Context, in LoginInput) (LoginOutput, error) {
	in.Email = normalizeEmail(in.Email)
	if err := u.validator.ValidateLogin(ctx, in); err != nil {
		return LoginOutput{}, err
	}

	user, err := u.users.FindByEmail(ctx, in.Email)
	if errors.Is(err, repository.ErrNotFound) {
		return LoginOutput{}, InvalidCredentials()
	}
	if err != nil {
		return LoginOutput{}, internalError("auth.login.find", err)
	}

	if !u.verifier.Verify(in.Password, user.PasswordHash) {
		return LoginOutput{}, InvalidCredentials()
	}

	token, _, err := u.issuer.Issue(user.ID, user.Role, u.clock.Now())
	if err != nil {
		return LoginOutput{}, internalError("auth.login.issue", err)
	}

	return LoginOutput{
		Message: "Login successful",
		Token:   token,
		User: PublicUser{
			ID:    user.ID,
			Name:  user.Name,
			Email: user.Email,
			Role:  user.Role,
		},
	}, nil
}

func (u *AuthUsecase) GetProfile(ctx context.Context, userID string) (model.User, error) {
	user, err := u.users.FindByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return model.User{}, NotFound("User not found")
	}
	if err != nil {
		return model.User{}, internalError("auth.profile.find", err)
	}
	return *user, nil
}

// 指定された項目だけ上書きする
func (u *AuthUsecase) UpdateProfile(ctx context.Context, userID string, in ProfileInput) (model.User, error) {
	if err := u.validator.ValidateProfile(ctx, in); err != nil {
		return model.User{}, err
	}

	user, err := u.users.FindByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return model.User{}, NotFound("User not found")
	}
	if err != nil {
		return model.User{}, internalError("auth.profile.find", err)
	}

	set := func(dst *string, v *string) {
		if v != nil && strings.TrimSpace(*v) != "" {
			*dst = strings.TrimSpace(*v)
		}
	}
	set(&user.Name, in.Name)
	set(&user.Phone, in.Phone)
	set(&user.Address, in.Address)
	set(&user.City, in.City)
	set(&user.State, in.State)
	set(&user.Pincode, in.Pincode)
	if in.Email != nil && strings.TrimSpace(*in.Email) != "" {
		user.Email = normalizeEmail(*in.Email)
	}

	//パスワードは再ハッシュ
	if in.Password != nil && *in.Password != "" {
		hashed, err := u.hasher.Hash(*in.Password)
		if err != nil {
			return model.User{}, internalError("auth.profile.hash", err)
		}
		user.PasswordHash = hashed
	}

	user.UpdatedAt = u.clock.Now()
	if err := u.users.Update(ctx, user); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return model.User{}, Conflict("Email already in use")
		}
		if errors.Is(err, repository.ErrNotFound) {
			return model.User{}, NotFound("User not found")
		}
		return model.User{}, internalError("auth.profile.update", err)
	}
	return *user, nil
}

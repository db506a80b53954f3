package validator

import (
	"context"
	"strings"

	"freshmart/internal/usecase"

	"github.com/go-playground/validator/v10"
)

type authValidator struct {
	v *validator.Validate
}

// Usecaseは interface を依存注入
func NewAuthValidator() usecase.AuthValidator {
	return &authValidator{v: New()}
}

type registerRules struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role" validate:"oneof=user vendor"`
}

// 空なら未指定扱い
type profileRules struct {
	Name     string `json:"name" validate:"omitempty,max=100"`
	Email    string `json:"email" validate:"omitempty,email"`
	Password string `json:"password" validate:"omitempty,min=6"`
}

type loginRules struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// サインアップの入力を検証
func (a *authValidator) ValidateRegister(ctx context.Context, in usecase.RegisterInput) error {
	err := a.v.StructCtx(ctx, registerRules{
		Name:     in.Name,
		Email:    in.Email,
		Password: in.Password,
		Role:     string(in.Role),
	})
	if err != nil {
		return usecase.ValidationError(Message(err))
	}
	return nil
}

// ログインの入力を検証
func (a *authValidator) ValidateLogin(ctx context.Context, in usecase.LoginInput) error {
	if err := a.v.StructCtx(ctx, loginRules{Email: in.Email, Password: in.Password}); err != nil {
		return usecase.ValidationError(Message(err))
	}
	return nil
}

// プロフィール更新の入力を検証
func (a *authValidator) ValidateProfile(ctx context.Context, in usecase.ProfileInput) error {
	deref := func(s *string) string {
		if s == nil {
			return ""
		}
		return *s
	}
	err := a.v.StructCtx(ctx, profileRules{
		Name:     strings.TrimSpace(deref(in.Name)),
		Email:    strings.TrimSpace(deref(in.Email)),
		Password: deref(in.Password),
	})
	if err != nil {
		return usecase.ValidationError(Message(err))
	}
	return nil
}

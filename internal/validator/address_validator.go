package validator

import (
	"errors"

	"freshmart/internal/domain/model"
	"freshmart/internal/usecase"

	"github.com/go-playground/validator/v10"
)

type addressValidator struct {
	v *validator.Validate
}

func NewAddressValidator() usecase.AddressValidator {
	return &addressValidator{v: New()}
}

// 配送先を検証する。必須の欠落を先に見てから桁数を見る。
func (a *addressValidator) ValidateDeliveryAddress(addr model.DeliveryAddress) error {
	err := a.v.Struct(addr)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return usecase.ValidationError("Invalid delivery address")
	}
	for _, fe := range verrs {
		if fe.Tag() == "required" {
			return usecase.ValidationError("Complete delivery address is required")
		}
	}
	for _, fe := range verrs {
		switch fe.StructField() {
		case "Phone":
			return usecase.ValidationError("Phone must be 10 digits")
		case "Pincode":
			return usecase.ValidationError("Pincode must be 6 digits")
		}
	}
	return usecase.ValidationError(Message(err))
}

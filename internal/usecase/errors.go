package usecase

import (
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"
)

// エラーの分類。HTTPステータスはここで決まる。
type ErrorCode string

const (
	CodeValidation         ErrorCode = "ValidationError"
	CodeUnauthenticated    ErrorCode = "Unauthenticated"
	CodeForbidden          ErrorCode = "Forbidden"
	CodeNotFound           ErrorCode = "NotFound"
	CodeConflict           ErrorCode = "Conflict"
	CodeInsufficientStock  ErrorCode = "InsufficientStock"
	CodeEmptyCart          ErrorCode = "EmptyCart"
	CodeInvalidState       ErrorCode = "InvalidState"
	CodeInvalidCredentials ErrorCode = "InvalidCredentials"
	CodeInvalidSignature   ErrorCode = "InvalidSignature"
	CodeInternal           ErrorCode = "Internal"
)

var codeStatus = map[ErrorCode]int{
	CodeValidation:         http.StatusBadRequest,
	CodeUnauthenticated:    http.StatusUnauthorized,
	CodeForbidden:          http.StatusForbidden,
	CodeNotFound:           http.StatusNotFound,
	CodeConflict:           http.StatusBadRequest,
	CodeInsufficientStock:  http.StatusBadRequest,
	CodeEmptyCart:          http.StatusBadRequest,
	CodeInvalidState:       http.StatusBadRequest,
	CodeInvalidCredentials: http.StatusBadRequest,
	CodeInvalidSignature:   http.StatusBadRequest,
	CodeInternal:           http.StatusInternalServerError,
}

// 500で返すときの文言。原因はログにだけ出す。
const internalMessage = "Server error"

type HTTPError struct {
	Status  int
	Code    ErrorCode
	Message string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func NewHTTPError(status int, message string) error {
	return &HTTPError{
		Status:  status,
		Message: message,
	}
}

func newError(code ErrorCode, message string) error {
	return &HTTPError{
		Status:  codeStatus[code],
		Code:    code,
		Message: message,
	}
}

func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	ok := errors.As(err, &he)
	return he, ok
}

// codeが一致するか（テストやハンドラで使う）
func IsCode(err error, code ErrorCode) bool {
	he, ok := AsHTTPError(err)
	return ok && he.Code == code
}

func ValidationError(message string) error { return newError(CodeValidation, message) }
func Unauthenticated(message string) error { return newError(CodeUnauthenticated, message) }
func Forbidden(message string) error       { return newError(CodeForbidden, message) }
func NotFound(message string) error        { return newError(CodeNotFound, message) }
func Conflict(message string) error        { return newError(CodeConflict, message) }
func InvalidState(message string) error    { return newError(CodeInvalidState, message) }

func InsufficientStock(name string, available int64) error {
	return newError(CodeInsufficientStock, fmt.Sprintf("Insufficient stock for %s. Available: %d", name, available))
}

func EmptyCart() error {
	return newError(CodeEmptyCart, "Cart is empty")
}

func InvalidCredentials() error {
	return newError(CodeInvalidCredentials, "Invalid credentials")
}

func InvalidSignature() error {
	return newError(CodeInvalidSignature, "Invalid payment signature")
}

func Internal() error {
	return newError(CodeInternal, internalMessage)
}

// 想定外のエラーはログに残して500にする
func internalError(op string, err error) error {
	zap.L().Error("usecase failed", zap.String("op", op), zap.Error(err))
	return Internal()
}

// HTTPErrorならそのまま返し、それ以外は500にする
func passOrInternal(op string, err error) error {
	if _, ok := AsHTTPError(err); ok {
		return err
	}
	return internalError(op, err)
}

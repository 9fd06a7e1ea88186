package errors

import (
	"errors"
	"fmt"
)

const (
	CodeValidation   = "VALIDATION_ERROR"
	CodeWeakPassword = "WEAK_PASSWORD"
)

var (
	ErrInvalidCredentials       = errors.New("invalid email or password")
	ErrInvalidSession           = errors.New("invalid or expired session")
	ErrUnauthorized             = errors.New("unauthorized access")
	ErrForbidden                = errors.New("insufficient permissions")
	ErrCurrentPasswordIncorrect = errors.New("current password is incorrect")

	ErrUserNotFound        = errors.New("user not found")
	ErrUserAlreadyExists   = errors.New("a user with this email already exists")
	ErrInvalidUserRole     = errors.New(`role must be either "admin" or "user"`)
	ErrRoleChangeForbidden = errors.New("only admins can change user roles")
	ErrCannotDeleteSelf    = errors.New("you cannot delete your own account")

	ErrResetTokenInvalid = errors.New("invalid or expired reset token")
	ErrAccountNotFound   = errors.New("no account found with this email address, please check your email or contact your administrator")
)

type AppError struct {
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}

	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewAppError(code, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Validation builds a VALIDATION_ERROR whose message is safe to show to clients.
func Validation(message string) *AppError {
	return NewAppError(CodeValidation, message, nil)
}

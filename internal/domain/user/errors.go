package user

import appErrors "portfolio-cms/pkg/errors"

// Repository implementations return these so callers can match with errors.Is
// against either this package or pkg/errors.
var (
	ErrUserNotFound      = appErrors.ErrUserNotFound
	ErrUserAlreadyExists = appErrors.ErrUserAlreadyExists
	ErrInvalidUserRole   = appErrors.ErrInvalidUserRole

	ErrResetTokenInvalid = appErrors.ErrResetTokenInvalid
)

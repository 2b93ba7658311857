package errors

import (
	"errors"
	"fmt"
)

// Common error types shared by the client library and the dev backend
var (
	// Authentication errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserInactive       = errors.New("user is inactive")
	ErrUserNotVerified    = errors.New("user is not verified")
	ErrUserNotFound       = errors.New("user not found")

	// Token errors
	ErrInvalidToken        = errors.New("invalid token")
	ErrTokenExpired        = errors.New("token expired")
	ErrNoToken             = errors.New("no token")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")

	// OTP errors
	ErrInvalidOTP = errors.New("invalid otp")
	ErrOTPExpired = errors.New("otp expired")

	// Storage errors
	ErrNotFound     = errors.New("not found")
	ErrEntryExpired = errors.New("entry expired")

	// General errors
	ErrInternal    = errors.New("internal error")
	ErrUnsupported = errors.New("unsupported operation")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// CodedError is a rejection the backend reports to callers with a user facing
// message, a machine readable code and the HTTP status it maps to.
type CodedError struct {
	Status  int
	Code    string
	Message string
}

func (e *CodedError) Error() string {
	if e.Code == "" {
		return e.Message
	}
	return fmt.Sprintf("%s (%s)", e.Message, e.Code)
}

// NewCoded builds a CodedError.
func NewCoded(status int, code, message string) *CodedError {
	return &CodedError{Status: status, Code: code, Message: message}
}

// AsCoded returns the CodedError in err's chain, if any.
func AsCoded(err error) (*CodedError, bool) {
	var ce *CodedError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

package session

import (
	"github.com/jrsteele09/flow-client/apiclient"
	"github.com/jrsteele09/flow-client/internal/validation"
	"github.com/jrsteele09/flow-client/users"
)

const (
	CodeCancelled        = "CANCELLED"
	CodeNotAuthenticated = "NOT_AUTHENTICATED"
	CodeStorage          = "STORAGE_ERROR"
)

// LoginResult is returned by Login and VerifyOTP.
type LoginResult struct {
	Success            bool
	RequiresOnboarding bool
	Error              *apiclient.APIError
}

// SignupResult carries the pending registration email on success.
type SignupResult struct {
	Success     bool
	Email       string
	Error       *apiclient.APIError
	FieldErrors validation.FieldErrors
}

// ActionResult is returned by operations that only acknowledge.
type ActionResult struct {
	Success     bool
	Message     string
	Error       *apiclient.APIError
	FieldErrors validation.FieldErrors
}

type ProfileResult struct {
	Success     bool
	Profile     *users.Profile
	Error       *apiclient.APIError
	FieldErrors validation.FieldErrors
}

// Consents are the signup agreements. Privacy and DataProcessing are required.
type Consents struct {
	Privacy        bool
	DataProcessing bool
	Marketing      bool
}

func cancelledError() *apiclient.APIError {
	return &apiclient.APIError{Message: "The request was cancelled.", Code: CodeCancelled}
}

func notAuthenticatedError() *apiclient.APIError {
	return &apiclient.APIError{Message: "Please sign in to continue.", Code: CodeNotAuthenticated}
}

func storageError() *apiclient.APIError {
	return &apiclient.APIError{Message: "Your session could not be saved on this device. Please try again.", Code: CodeStorage}
}

func validationError() *apiclient.APIError {
	return &apiclient.APIError{Message: "Please correct the highlighted fields.", Code: "VALIDATION_ERROR"}
}

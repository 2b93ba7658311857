package auth

import (
	"github.com/jrsteele09/flow-client/internal/validation"
)

// validateRequest runs the struct tag rules on req. The returned error is a
// validation.FieldErrors when any field fails.
func validateRequest(req any) error {
	return validation.Struct(req).Err()
}

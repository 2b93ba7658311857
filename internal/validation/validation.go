// Package validation turns struct tag validation failures into field scoped
// messages that flows can render next to inputs and the dev backend can
// return as a 422 body.
package validation

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// FieldErrors maps a JSON field name to a human readable problem.
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	fields := make([]string, 0, len(fe))
	for f := range fe {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+" "+fe[f])
	}
	return strings.Join(parts, "; ")
}

// Add records msg against field, keeping the first message per field.
func (fe FieldErrors) Add(field, msg string) {
	if _, ok := fe[field]; !ok {
		fe[field] = msg
	}
}

// Merge copies other into fe without overwriting existing entries.
func (fe FieldErrors) Merge(other FieldErrors) {
	for k, v := range other {
		fe.Add(k, v)
	}
}

// Err returns nil when there are no field errors so callers can use the
// usual `if err := ...; err != nil` shape.
func (fe FieldErrors) Err() error {
	if len(fe) == 0 {
		return nil
	}
	return fe
}

var (
	once     sync.Once
	validate *validator.Validate
)

func instance() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return fld.Name
			}
			return name
		})
	})
	return validate
}

// Struct validates v using its `validate` tags.
func Struct(v any) FieldErrors {
	fe := FieldErrors{}
	err := instance().Struct(v)
	if err == nil {
		return fe
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		fe.Add("_", err.Error())
		return fe
	}
	for _, e := range verrs {
		fe.Add(fieldName(e), message(e))
	}
	return fe
}

// Var validates a single value against tag, reporting failures under field.
func Var(field string, value any, tag string) FieldErrors {
	fe := FieldErrors{}
	err := instance().Var(value, tag)
	if err == nil {
		return fe
	}
	if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
		fe.Add(field, message(verrs[0]))
		return fe
	}
	fe.Add(field, err.Error())
	return fe
}

// fieldName drops the top level struct name from the namespace so nested
// and slice fields read as "preferred_days[1]".
func fieldName(e validator.FieldError) string {
	ns := e.Namespace()
	if idx := strings.Index(ns, "."); idx >= 0 {
		return ns[idx+1:]
	}
	return e.Field()
}

func message(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		if e.Kind() == reflect.Bool {
			return "must be accepted"
		}
		return "is required"
	case "email":
		return "must be a valid email address"
	case "oneof":
		return "must be one of: " + strings.Join(strings.Fields(e.Param()), ", ")
	case "min":
		if e.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", e.Param())
		}
		return "must be at least " + e.Param()
	case "max":
		if e.Kind() == reflect.String {
			return fmt.Sprintf("must be at most %s characters", e.Param())
		}
		return "must be at most " + e.Param()
	case "len":
		return fmt.Sprintf("must be exactly %s characters", e.Param())
	case "numeric":
		return "must contain only digits"
	case "eq":
		return "must be " + e.Param()
	case "eqfield":
		return "does not match"
	}
	return "is invalid"
}

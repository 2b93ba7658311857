package validation_test

import (
	"testing"

	"github.com/jrsteele09/flow-client/internal/validation"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Email    string   `json:"email" validate:"required,email"`
	Level    *string  `json:"fitness_level" validate:"omitempty,oneof=beginner intermediate advanced"`
	Days     []string `json:"preferred_days" validate:"omitempty,dive,oneof=monday tuesday"`
	Accepted bool     `json:"accepted" validate:"required"`
}

func TestStruct(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		level := "beginner"
		fe := validation.Struct(sample{Email: "a@b.com", Level: &level, Accepted: true})
		require.Empty(t, fe)
		require.NoError(t, fe.Err())
	})

	t.Run("field scoped messages use json names", func(t *testing.T) {
		level := "elite"
		fe := validation.Struct(sample{Email: "nope", Level: &level, Days: []string{"monday", "funday"}})
		require.Equal(t, "must be a valid email address", fe["email"])
		require.Equal(t, "must be one of: beginner, intermediate, advanced", fe["fitness_level"])
		require.Equal(t, "must be one of: monday, tuesday", fe["preferred_days[1]"])
		require.Equal(t, "must be accepted", fe["accepted"])
		require.Error(t, fe.Err())
	})
}

func TestVar(t *testing.T) {
	require.Empty(t, validation.Var("code", "123456", "required,len=6,numeric"))
	fe := validation.Var("code", "12ab", "required,len=6,numeric")
	require.Equal(t, "must be exactly 6 characters", fe["code"])
}

func TestFieldErrors_Error(t *testing.T) {
	fe := validation.FieldErrors{}
	fe.Add("b", "is required")
	fe.Add("a", "is invalid")
	fe.Add("a", "ignored")
	require.Equal(t, "a is invalid; b is required", fe.Error())
}

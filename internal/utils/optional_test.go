package utils_test

import (
	"testing"

	"github.com/jrsteele09/flow-client/internal/utils"
	"github.com/stretchr/testify/require"
)

func TestValueOr(t *testing.T) {
	require.Equal(t, 7, utils.ValueOr(nil, 7))
	require.Equal(t, 3, utils.ValueOr(utils.Ptr(3), 7))
	require.Equal(t, "", utils.Value[string](nil))
}

func TestSet(t *testing.T) {
	t.Run("nil keeps the stored value", func(t *testing.T) {
		title := "Swings"
		utils.Set(&title, nil)
		require.Equal(t, "Swings", title)
		utils.Set(&title, utils.Ptr("Squats"))
		require.Equal(t, "Squats", title)
	})

	t.Run("pointer fields are copied", func(t *testing.T) {
		var stored *int
		in := utils.Ptr(30)
		utils.SetPtr(&stored, in)
		*in = 45
		require.Equal(t, 30, utils.Value(stored))
	})

	t.Run("empty slice clears", func(t *testing.T) {
		tags := []string{"hiit"}
		utils.SetSlice(&tags, nil)
		require.Equal(t, []string{"hiit"}, tags)
		utils.SetSlice(&tags, []string{})
		require.Empty(t, tags)
		require.NotNil(t, tags)
	})
}

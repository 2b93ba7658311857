package errors_test

import (
	"net/http"
	"testing"

	pkgerrors "github.com/pkg/errors"

	"github.com/jrsteele09/flow-client/internal/errors"
	"github.com/stretchr/testify/require"
)

func TestAsCoded(t *testing.T) {
	err := pkgerrors.Wrap(errors.NewCoded(http.StatusBadRequest, "ALREADY_ENROLLED", "Already enrolled in this program"), "[Service.Enroll]")

	ce, ok := errors.AsCoded(err)
	require.True(t, ok)
	require.Equal(t, "ALREADY_ENROLLED", ce.Code)
	require.Equal(t, http.StatusBadRequest, ce.Status)

	_, ok = errors.AsCoded(errors.ErrNotFound)
	require.False(t, ok)
}

func TestWrapf(t *testing.T) {
	require.NoError(t, errors.Wrapf(nil, "ignored"))
	err := errors.Wrapf(errors.ErrNotFound, "loading %s", "auth-storage")
	require.True(t, errors.Is(err, errors.ErrNotFound))
	require.Equal(t, "loading auth-storage: not found", err.Error())
}

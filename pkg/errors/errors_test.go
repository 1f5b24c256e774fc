package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCloneKeepsIdentity(t *testing.T) {
	err := Clone(ErrValidation, "region is required")

	assert.Equal(t, "region is required", err.Message)
	assert.Equal(t, "validation failed", ErrValidation.Message)
	assert.True(t, stderrors.Is(err, ErrValidation))
	assert.False(t, stderrors.Is(err, ErrNotFound))
}

func TestFromErrorWrapsUnknown(t *testing.T) {
	appErr := FromError(fmt.Errorf("boom"))

	assert.Equal(t, ErrInternal.Code, appErr.Code)
	assert.Equal(t, http.StatusInternalServerError, appErr.Status)
	assert.EqualError(t, appErr, "internal server error: boom")
}

func TestFromErrorFindsWrapped(t *testing.T) {
	inner := Clone(ErrNotFound, "report not found")
	appErr := FromError(fmt.Errorf("load: %w", inner))

	assert.Same(t, inner, appErr)
	assert.Nil(t, FromError(nil))
}

func TestInvalidFormatsMessage(t *testing.T) {
	err := Invalid("invalid report id %q", "abc")

	assert.Equal(t, `invalid report id "abc"`, err.Message)
	assert.Equal(t, http.StatusBadRequest, err.Status)
	assert.True(t, stderrors.Is(err, ErrValidation))
}

func TestRelabelKeepsCodeAndCause(t *testing.T) {
	cause := Wrap(fmt.Errorf("dial tcp: refused"), ErrUpstreamUnavailable.Code, ErrUpstreamUnavailable.Status, ErrUpstreamUnavailable.Message)
	err := Relabel(cause, "Gagal menghapus laporan")

	assert.Equal(t, "Gagal menghapus laporan", err.Message)
	assert.Equal(t, http.StatusBadGateway, err.Status)
	assert.True(t, stderrors.Is(err, ErrUpstreamUnavailable))
	assert.Same(t, cause, err.Unwrap())
	assert.Nil(t, Relabel(nil, "unused"))
}

package domainerr

import (
	"testing"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvalid(t *testing.T) {
	err := Invalid("qty", "must be greater than 0")

	require.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, "qty: must be greater than 0", err.Error())

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "qty", vErr.Field)
}

func TestInvalid_NoField(t *testing.T) {
	assert.Equal(t, "selections required", Invalid("", "selections required").Error())
}

func TestPersistence(t *testing.T) {
	cause := errors.New("connection reset")
	err := Persistence(cause, "save order")

	assert.ErrorIs(t, err, ErrPersistence)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "save order: connection reset", err.Error())
	assert.NoError(t, Persistence(nil, "noop"))
}

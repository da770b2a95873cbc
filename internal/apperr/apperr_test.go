package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/jonathan/campus-placement/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrom(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"malformed id", fmt.Errorf("get drive: %w", store.ErrMalformedID), KindValidation},
		{"duplicate", fmt.Errorf("insert application: %w", store.ErrDuplicate), KindConflict},
		{"unknown", errors.New("connection refused"), KindInfrastructure},
		{"already classified", NotFound("drive not found"), KindNotFound},
		{"wrapped classified", fmt.Errorf("ctx: %w", Authorization("no")), KindAuthorization},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := From(tt.err)
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got.Kind)
		})
	}

	assert.Nil(t, From(nil))
}

func TestGuard(t *testing.T) {
	op := func(inner error) (err error) {
		defer Guard(&err)
		return inner
	}

	assert.NoError(t, op(nil))

	err := op(errors.New("boom"))
	require.Error(t, err)
	assert.Equal(t, KindInfrastructure, KindOf(err))

	err = op(Conflict("invalid transition"))
	assert.True(t, Is(err, KindConflict))
	assert.Equal(t, "conflict: invalid transition", err.Error())
}

func TestGuard_RecoversPanic(t *testing.T) {
	op := func() (err error) {
		defer Guard(&err)
		panic("nil map")
	}

	err := op()
	require.Error(t, err)
	assert.True(t, Is(err, KindInfrastructure))
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("pool closed")
	err := Infrastructure(cause, "failed to load drive")
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "pool closed")
}

func TestInvalid(t *testing.T) {
	type req struct {
		Email string `validate:"required,email"`
	}
	err := validator.New().Struct(req{})
	require.Error(t, err)

	got := Invalid(err)
	assert.Equal(t, KindValidation, got.Kind)
	assert.Equal(t, "validation error: Email - required", got.Message)

	assert.Equal(t, "validation error: invalid request", Invalid(errors.New("bad json")).Message)
}

package validation

import (
	"testing"

	"taskhub-backend/pkg/apperr"

	"github.com/stretchr/testify/assert"
)

type signup struct {
	Name  string  `json:"name" validate:"required"`
	Email string  `json:"email" validate:"required,email"`
	Role  *string `json:"role,omitempty" validate:"omitempty,oneof=Admin Manager User"`
}

func TestStruct(t *testing.T) {
	role := "Manager"
	assert.NoError(t, Struct(&signup{Name: "Alice", Email: "alice@x.com", Role: &role}))

	err := Struct(&signup{Email: "alice@x.com"})
	assert.ErrorIs(t, err, apperr.ErrValidationFailed)
	assert.Equal(t, "The field 'name' is required.", apperr.MessageOf(err))

	err = Struct(&signup{Name: "Alice", Email: "nope"})
	assert.Equal(t, "The field 'email' must be a valid email address.", apperr.MessageOf(err))

	bad := "Root"
	err = Struct(&signup{Name: "Alice", Email: "alice@x.com", Role: &bad})
	assert.Equal(t, "The field 'role' must be one of Admin Manager User.", apperr.MessageOf(err))
}

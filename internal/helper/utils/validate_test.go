package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Email string `validate:"required,email"`
	NIK   string `validate:"required,len=16,numeric"`
	Bank  string `validate:"omitempty,oneof=bca bni"`
}

func TestValidateStruct(t *testing.T) {
	require.NoError(t, ValidateStruct(sample{Email: "a@b.co", NIK: "3201234567890001"}))

	err := ValidateStruct(sample{Email: "nope", NIK: "12"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "email must be a valid email")
	assert.Contains(t, err.Error(), "nik must be 16 characters")

	err = ValidateStruct(sample{Email: "a@b.co", NIK: "320123456789000x", Bank: "xyz"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nik must contain digits only")
	assert.Contains(t, err.Error(), "bank must be one of [bca bni]")
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "jane@example.com", NormalizeEmail("  Jane@Example.COM "))
}

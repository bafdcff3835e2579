// internal/utils/validator_test.go
package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type registerPayload struct {
	Username string `validate:"required,min=3,max=50"`
	Email    string `validate:"required,email"`
	Password string `validate:"required,strong_password"`
}

func TestValidateStructPasses(t *testing.T) {
	err := ValidateStruct(&registerPayload{
		Username: "dana",
		Email:    "dana@example.com",
		Password: "Sup3rSecret",
	})
	assert.NoError(t, err)
}

func TestStrongPassword(t *testing.T) {
	cases := []struct {
		name     string
		password string
		ok       bool
	}{
		{"all classes present", "Sup3rSecret", true},
		{"too short", "Ab1", false},
		{"no uppercase", "lowercase1", false},
		{"no lowercase", "UPPERCASE1", false},
		{"no number", "NoNumbersHere", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateStruct(&registerPayload{
				Username: "dana",
				Email:    "dana@example.com",
				Password: tc.password,
			})
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestGetValidationErrors(t *testing.T) {
	err := ValidateStruct(&registerPayload{
		Username: "ab",
		Email:    "not-an-email",
		Password: "weak",
	})
	require.Error(t, err)

	fieldErrors := GetValidationErrors(err)
	require.Len(t, fieldErrors, 3)

	byField := map[string]ValidationError{}
	for _, fe := range fieldErrors {
		byField[fe.Field] = fe
	}

	assert.Equal(t, "min", byField["username"].Tag)
	assert.Equal(t, "email", byField["email"].Tag)
	assert.Equal(t, "strong_password", byField["password"].Tag)
	assert.Contains(t, byField["password"].Message, "8 characters")
}

func TestGetValidationErrorsIgnoresOtherErrors(t *testing.T) {
	assert.Empty(t, GetValidationErrors(nil))
	assert.Empty(t, GetValidationErrors(assert.AnError))
}

// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package validate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/adminauth/internal/platform/apperr"
	"github.com/taibuivan/adminauth/internal/platform/validate"
)

type codePayload struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code"  validate:"required,len=6,alphanum"`
}

/*
TestStruct_Rules tests each rule used by the authentication payloads.
*/
func TestStruct_Rules(t *testing.T) {
	tests := []struct {
		name    string
		input   codePayload
		fields  []string
		message string
	}{
		{"valid", codePayload{"admin@example.com", "k3f9qz"}, nil, ""},
		{"missing_email", codePayload{"", "K3F9QZ"}, []string{"email"}, "This field is required"},
		{"invalid_email", codePayload{"not-an-email", "K3F9QZ"}, []string{"email"}, "Must be a valid email address"},
		{"short_code", codePayload{"admin@example.com", "K3F9"}, []string{"code"}, "Must be exactly 6 characters"},
		{"symbol_in_code", codePayload{"admin@example.com", "K3F9Q!"}, []string{"code"}, "Must contain only letters and digits"},
		{"everything_missing", codePayload{}, []string{"email", "code"}, "This field is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validate.Struct(tt.input)

			if tt.fields == nil {
				assert.NoError(t, err)
				return
			}

			ae := apperr.As(err)
			require.NotNil(t, ae)
			assert.Equal(t, "VALIDATION_ERROR", ae.Code)
			require.Len(t, ae.Details, len(tt.fields))

			for i, field := range tt.fields {
				assert.Equal(t, field, ae.Details[i].Field)
				assert.Equal(t, tt.message, ae.Details[i].Message)
			}
		})
	}
}

/*
TestStruct_NonStruct verifies programming mistakes surface as internal errors.
*/
func TestStruct_NonStruct(t *testing.T) {
	ae := apperr.As(validate.Struct("not a struct"))
	require.NotNil(t, ae)
	assert.Equal(t, "INTERNAL_ERROR", ae.Code)
}

package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		wantErr bool
	}{
		{"Valid", "user@example.com", false},
		{"Valid With Plus", "user+tag@example.com", false},
		{"Valid Subdomain", "user@mail.example.co.uk", false},
		{"Empty", "", true},
		{"No At", "userexample.com", true},
		{"No TLD", "user@example", true},
		{"Spaces", "user @example.com", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEmail(tt.email)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidatePassword(t *testing.T) {
	assert.NoError(t, ValidatePassword("123456"))
	assert.NoError(t, ValidatePassword(strings.Repeat("a", MaxPasswordLen)))

	err := ValidatePassword("12345")
	assert.Error(t, err)
	// The message must quote the actual limit.
	assert.Contains(t, err.Error(), "6 or more characters")

	assert.Error(t, ValidatePassword(strings.Repeat("a", MaxPasswordLen+1)))
}

func TestValidatePostText(t *testing.T) {
	assert.NoError(t, ValidatePostText("x"))
	assert.NoError(t, ValidatePostText(strings.Repeat("a", MaxPostTextLen)))
	assert.Error(t, ValidatePostText(""))
	assert.Error(t, ValidatePostText(strings.Repeat("a", MaxPostTextLen+1)))
}

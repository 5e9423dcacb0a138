package Identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatToE164(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{"already canonical", "+15551234567", "+15551234567"},
		{"ten digit national", "5551234567", "+15551234567"},
		{"eleven digits with country code", "15551234567", "+15551234567"},
		{"dashes and spaces", "555-123-4567", "+15551234567"},
		{"parentheses", "(555) 123-4567", "+15551234567"},
		{"dots", "555.123.4567", "+15551234567"},
		{"seven digit local", "1234567", "+11234567"},
		{"international with plus", "+442071234567", "+442071234567"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := FormatToE164(tc.input)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestFormatToE164Idempotent(t *testing.T) {
	once, err := FormatToE164("555-123-4567")
	require.NoError(t, err)

	twice, err := FormatToE164(once)
	require.NoError(t, err)
	assert.Equal(t, once, twice)
}

func TestFormatToE164Invalid(t *testing.T) {
	cases := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"too short", "12345"},
		{"too long", "123456789012345678"},
		{"letters only", "call me maybe"},
		{"plus with leading zero", "+0123456789"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := FormatToE164(tc.input)
			assert.ErrorIs(t, err, ErrInvalidPhoneFormat)
		})
	}
}

func TestValidPhone(t *testing.T) {
	assert.True(t, ValidPhone("+15551234567"))
	assert.True(t, ValidPhone("+442071234567"))
	assert.False(t, ValidPhone("5551234567"))
	assert.False(t, ValidPhone("+0551234567"))
	assert.False(t, ValidPhone(""))
}

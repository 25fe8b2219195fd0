package auth_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"partner-media-backend/internal/client/auth"
)

func TestClassifyAuthError(t *testing.T) {
	tests := []struct {
		raw  string
		want auth.ErrorCode
	}{
		{"Invalid login credentials", auth.CodeInvalidCredentials},
		{"invalid_grant: bad password", auth.CodeInvalidCredentials},
		{"Email not confirmed", auth.CodeEmailNotConfirmed},
		{"over_email_send_rate_limit", auth.CodeRateLimited},
		{"429 Too Many Requests", auth.CodeRateLimited},
		{"Token has expired or is invalid", auth.CodeOTPExpired},
		{"otp_expired", auth.CodeOTPExpired},
		{"Invalid OTP", auth.CodeOTPInvalid},
		{"dial tcp: connection refused", auth.CodeNetworkError},
		{"context deadline exceeded: timeout", auth.CodeNetworkError},
		{"lookup supabase.co: no such host", auth.CodeNetworkError},
		{"something went sideways", auth.CodeAuthFailed},
		{"", auth.CodeAuthFailed},
	}
	for _, tt := range tests {
		code, msg := auth.ClassifyAuthError(tt.raw)
		assert.Equal(t, tt.want, code, "raw: %q", tt.raw)
		assert.NotEmpty(t, msg)
	}
}

func TestClassifyAuthError_IsCaseInsensitive(t *testing.T) {
	code, _ := auth.ClassifyAuthError("INVALID LOGIN CREDENTIALS")
	assert.Equal(t, auth.CodeInvalidCredentials, code)
}

func TestClassifyAuthError_FirstRuleWins(t *testing.T) {
	// A message matching both credential and network rules maps to the
	// earlier credential rule.
	code, _ := auth.ClassifyAuthError("invalid login credentials after network retry")
	assert.Equal(t, auth.CodeInvalidCredentials, code)
}

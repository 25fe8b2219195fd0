package auth

import "strings"

// ErrorCode is the client-facing category for an auth failure. The UI only
// ever sees these, never raw backend error objects.
type ErrorCode string

const (
	CodeInvalidEmail       ErrorCode = "invalid_email"
	CodeInvalidPassword    ErrorCode = "invalid_password"
	CodeInvalidOTPInput    ErrorCode = "invalid_otp_input"
	CodeInvalidCredentials ErrorCode = "invalid_credentials"
	CodeEmailNotConfirmed  ErrorCode = "email_not_confirmed"
	CodeRateLimited        ErrorCode = "rate_limited"
	CodeOTPExpired         ErrorCode = "otp_expired"
	CodeOTPInvalid         ErrorCode = "otp_invalid"
	CodeNetworkError       ErrorCode = "network_error"
	CodeAuthRejected       ErrorCode = "auth_rejected"
	CodeAuthFailed         ErrorCode = "auth_failed"
)

type AuthError struct {
	Code    ErrorCode
	Message string
}

type Result struct {
	Success bool
	Error   *AuthError
}

func failure(code ErrorCode, message string) Result {
	return Result{Success: false, Error: &AuthError{Code: code, Message: message}}
}

func success() Result {
	return Result{Success: true}
}

// mapping rules are ordered: the first matching substring wins.
type mappingRule struct {
	needles []string
	code    ErrorCode
	message string
}

var authErrorRules = []mappingRule{
	{[]string{"invalid login credentials", "invalid_credentials", "invalid_grant"},
		CodeInvalidCredentials, "Invalid email or password"},
	{[]string{"email not confirmed"},
		CodeEmailNotConfirmed, "Please verify your email address"},
	{[]string{"rate limit", "too many requests", "over_email_send_rate_limit"},
		CodeRateLimited, "Too many attempts. Please wait and try again"},
	{[]string{"token has expired", "otp_expired", "otp has expired"},
		CodeOTPExpired, "The code has expired. Please request a new one"},
	{[]string{"invalid otp", "token is invalid", "otp_invalid"},
		CodeOTPInvalid, "Invalid code. Please check and try again"},
	{[]string{"network", "fetch", "connection refused", "timeout", "no such host"},
		CodeNetworkError, "Network error. Please check your connection"},
}

// ClassifyAuthError maps a raw backend error message to a stable category
// and user-facing message. Pure: deterministic case-insensitive substring
// match against an ordered list, with a generic fallback.
func ClassifyAuthError(raw string) (ErrorCode, string) {
	lower := strings.ToLower(raw)
	for _, rule := range authErrorRules {
		for _, needle := range rule.needles {
			if strings.Contains(lower, needle) {
				return rule.code, rule.message
			}
		}
	}
	return CodeAuthFailed, "Authentication failed. Please try again"
}

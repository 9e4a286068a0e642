package constants

// HTTP Header Names
const (
	HeaderContentType        = "Content-Type"
	HeaderAuthorization      = "Authorization"
	HeaderXRequestID         = "X-Request-ID"
	HeaderRetryAfter         = "Retry-After"
	HeaderRateLimitLimit     = "X-RateLimit-Limit"
	HeaderRateLimitRemaining = "X-RateLimit-Remaining"
	HeaderRateLimitReset     = "X-RateLimit-Reset"
)

const BearerPrefix = "Bearer "

// Refresh token cookie
const (
	RefreshCookieName = "refreshToken"
	RefreshCookiePath = "/"
)

// Common HTTP Error Messages
const (
	MsgUnauthorized     = "Unauthorized"
	MsgForbidden        = "Insufficient permissions"
	MsgNotFound         = "Resource not found"
	MsgBadRequest       = "Invalid request format"
	MsgInternalError    = "Internal server error"
	MsgTimeout          = "Request timeout"
	MsgTooManyRequests  = "Too many requests, please try again later"
	MsgValidationFailed = "Validation failed"
)

// Auth Messages
const (
	MsgRegistered     = "User registered successfully"
	MsgLoggedIn       = "Login successful"
	MsgRefreshed      = "Token refreshed successfully"
	MsgLoggedOut      = "Logged out successfully"
	MsgForgotPassword = "If an account with that email exists, a password reset link has been sent."
	MsgPasswordReset  = "Password has been reset successfully"
)

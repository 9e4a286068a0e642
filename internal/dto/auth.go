package dto

type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=8,maxbytes=72"`
	Name     string `json:"name" binding:"required,min=2,max=100,nohtml"`
	Role     string `json:"role" binding:"omitempty,oneof=student instructor admin"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type ResetPasswordRequest struct {
	Token    string `json:"token" binding:"required,hexadecimal,len=64"`
	Password string `json:"password" binding:"required,min=8,maxbytes=72"`
}

// AuthResponse is returned by register, login and refresh. The refresh
// token travels only in the cookie.
type AuthResponse struct {
	Message   string       `json:"message"`
	User      UserResponse `json:"user"`
	Token     string       `json:"token"`
	ExpiresIn int          `json:"expiresIn"`
}

// AuthResult is the service level outcome of an authentication call.
type AuthResult struct {
	User         UserResponse
	AccessToken  string
	RefreshToken string
	ExpiresIn    int
}

package dto

import "github.com/golang-jwt/jwt/v5"

// AdminLoginRequest authenticates an operator with a TOTP code.
type AdminLoginRequest struct {
	Username string `json:"username" binding:"required"`
	Code     string `json:"code" binding:"required"`
}

// AdminLoginResponse carries the issued admin JWT.
type AdminLoginResponse struct {
	Success   bool   `json:"success"`
	Token     string `json:"token,omitempty"`
	ExpiresAt int64  `json:"expires_at,omitempty"`
	Message   string `json:"message,omitempty"`
}

// AdminJWTClaims are the claims of an admin session token.
type AdminJWTClaims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// ReviewDecisionRequest resolves one pending manual-review task.
type ReviewDecisionRequest struct {
	Approve bool   `json:"approve"`
	Reason  string `json:"reason"`
}

package api

import "github.com/clinicore/clinicore/pkg/verification"

// GenerateRequest asks for a verification token for the given user
type GenerateRequest struct {
	UserID string `json:"user_id"`
}

// GenerateResponse carries the stored (possibly reused) token
type GenerateResponse struct {
	Success bool                `json:"success"`
	Data    *verification.Token `json:"data"`
}

// VerifyResponse is returned after a token is consumed
type VerifyResponse struct {
	Success bool `json:"success"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

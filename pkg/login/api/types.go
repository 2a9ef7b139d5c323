package api

import "github.com/clinicore/clinicore/pkg/user"

// RegisterRequest is the payload for creating a new account
type RegisterRequest struct {
	Username    string `json:"username"`
	Usersurname string `json:"usersurname"`
	Email       string `json:"email"`
	Password    string `json:"password"`
}

// Valid reports whether the required fields are present
func (r RegisterRequest) Valid() bool {
	return r.Username != "" && r.Email != "" && r.Password != ""
}

// RegisterResponse is returned after a successful registration
type RegisterResponse struct {
	Success bool `json:"success"`
}

// LoginRequest is the payload for a password login
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Valid reports whether the required fields are present
func (r LoginRequest) Valid() bool {
	return r.Username != "" && r.Password != ""
}

// LoginResponse carries the signed access token
type LoginResponse struct {
	JWT     string `json:"jwt"`
	Success bool   `json:"success"`
}

// OnboardRequest marks a user as onboarded
type OnboardRequest struct {
	UserID string `json:"user_id"`
}

// OnboardResponse is returned after a successful onboarding update
type OnboardResponse struct {
	Success bool `json:"success"`
}

// GetAllUsersResponse lists every account
type GetAllUsersResponse struct {
	Success bool        `json:"success"`
	Data    []user.User `json:"data"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

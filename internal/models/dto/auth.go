package dto

import "github.com/hongminglow/forum-be/internal/models"

type RegisterRequest struct {
	Username        string `json:"username"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// SessionResponse is returned by register and login. Token is a bearer JWT for API clients;
// browsers rely on the session cookie instead.
type SessionResponse struct {
	Token string          `json:"token"`
	User  models.Identity `json:"user"`
}

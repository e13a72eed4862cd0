package model

import "time"

// LoginRequest accepts either a JSON body or an OAuth2 password form.
type LoginRequest struct {
	Email    string `json:"email" form:"username" binding:"required"`
	Password string `json:"password" form:"password" binding:"required"`
}

// AuthResult is returned by a successful login
type AuthResult struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expiresAt"`
	User        *User     `json:"user"`
}

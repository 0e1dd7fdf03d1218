package dto

import (
	"strings"
	"time"
)

// LoginRequest represents the login credentials
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email" example:"advisor@uni.edu"`
	Password string `json:"password" validate:"required" example:"secret123"`
}

// Normalize trims and lowercases the email so lookups match stored accounts
func (r *LoginRequest) Normalize() {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
}

// TokenResponse is the issued access token
type TokenResponse struct {
	AccessToken string    `json:"accessToken"`
	TokenType   string    `json:"tokenType" example:"Bearer"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// ProfileResponse describes the calling user
type ProfileResponse struct {
	ID        int64    `json:"id" example:"1"`
	Email     string   `json:"email" example:"student@uni.edu"`
	FirstName string   `json:"firstName" example:"Ada"`
	LastName  string   `json:"lastName" example:"Lovelace"`
	Roles     []string `json:"roles" example:"STUDENT"`
}

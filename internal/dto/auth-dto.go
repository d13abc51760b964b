package dto

import "time"

type UserLogin struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Token     string         `json:"token"`
	ExpiresAt time.Time      `json:"expires_at"`
	Member    MemberResponse `json:"member"`
}

// AuthResponse is the verified content of an access token.
type AuthResponse struct {
	MemberID  string  `json:"member_id"`
	Email     string  `json:"email"`
	Role      string  `json:"role"`
	SessionID string  `json:"sid"`
	Iat       float64 `json:"iat"`
	Expiry    float64 `json:"expiry"`
}

func (a AuthResponse) IsAdmin() bool {
	return a.Role == "admin"
}

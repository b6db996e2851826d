package domain

import "time"

// User represents a registered player account. The password hash and
// creation time never leave the server; the JSON shape is what the
// front end receives.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	HighScore    int64     `json:"highScore"`
	CreatedAt    time.Time `json:"-"`
}

// AuthResponse is returned by signup and login
type AuthResponse struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

// SignupRequest represents a registration request
type SignupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

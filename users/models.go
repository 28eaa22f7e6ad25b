// Package users implements account management and the login flow: model,
// persistence, business rules and HTTP handlers.
package users

import (
	"time"

	"github.com/google/uuid"
)

// User is the account record as stored in the users table. Password holds the
// argon2id hash and is never serialized.
type User struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Password  string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserResponse is the client representation of a user. It exists so no code
// path can accidentally expose the password hash.
type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ToResponse strips the password hash from a user record.
func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// RegisterRequest is the payload for creating an account.
type RegisterRequest struct {
	Username string `json:"username" validate:"required" example:"johndoe"`
	Email    string `json:"email" validate:"required,email" example:"john@example.com"`
	Password string `json:"password" validate:"required,min=8" example:"strongpassword123"`
}

// LoginRequest is the payload for authenticating.
type LoginRequest struct {
	Email    string `json:"email" validate:"required" example:"john@example.com"`
	Password string `json:"password" validate:"required" example:"strongpassword123"`
}

// AuthResponse is returned on successful login.
type AuthResponse struct {
	User  UserResponse `json:"user"`
	Token string       `json:"token"`
}

// UpdateUserRequest is the payload for partial account updates. The password
// is re-hashed only when supplied.
type UpdateUserRequest struct {
	Username *string `json:"username,omitempty" validate:"omitempty,min=1"`
	Email    *string `json:"email,omitempty" validate:"omitempty,email"`
	Password *string `json:"password,omitempty" validate:"omitempty,min=8"`
}

// Filter holds the optional criteria for listing users.
type Filter struct {
	Username *string
	Email    *string
	Limit    *int64
	Offset   *int64
}

// DeleteResponse confirms a successful delete.
type DeleteResponse struct {
	Success bool   `json:"success" example:"true"`
	Message string `json:"message" example:"User with ID ... successfully deleted"`
}

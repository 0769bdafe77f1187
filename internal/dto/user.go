package dto

import (
	"github.com/splitstack/splitledger/internal/core/domain"
)

// CreateUserRequest carries the signup fields. Password confirmation is
// checked here rather than re-prompting, since the API driver cannot loop.
type CreateUserRequest struct {
	Name                 string `json:"name" binding:"required"`
	Email                string `json:"email" binding:"required,email"`
	Password             string `json:"password" binding:"required,min=8"`
	PasswordConfirmation string `json:"passwordConfirmation" binding:"required"`
}

// UpdateUserRequest defines the data allowed for updating a user.
// Using pointers to differentiate between omitted fields and zero-value fields.
type UpdateUserRequest struct {
	Name  *string `json:"name"`
	Email *string `json:"email" binding:"omitempty,email"`
}

// UserResponse is the API representation of a user.
type UserResponse struct {
	UserID  string `json:"userID"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Balance string `json:"balance"`
}

// ToUserResponse converts a domain.User to its API representation.
func ToUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		UserID:  user.UserID,
		Name:    user.Name,
		Email:   user.Email,
		Balance: user.Balance.StringFixed(2),
	}
}

package services

import (
	"context"

	"github.com/splitstack/splitledger/internal/core/domain"
	"github.com/splitstack/splitledger/internal/dto"
)

// UserReaderSvc defines read operations for user data
type UserReaderSvc interface {
	// GetUserByID retrieves a user by ID.
	GetUserByID(ctx context.Context, userID string) (*domain.User, error)

	// GetUserByEmail retrieves a user by their unique email.
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)

	// GetProfile renders the user's profile text, including balance and group
	// memberships.
	GetProfile(ctx context.Context, userID string) (string, error)

	// GetExpenses retrieves the expenses the user participates in, in
	// creation order.
	GetExpenses(ctx context.Context, userID string) ([]domain.Expense, error)
}

// UserWriterSvc defines write operations for user data
type UserWriterSvc interface {
	// CreateUser registers a new user. The email must not already be taken.
	CreateUser(ctx context.Context, req dto.CreateUserRequest) (*domain.User, error)

	// UpdateUser updates an existing user's name and/or email.
	UpdateUser(ctx context.Context, userID string, req dto.UpdateUserRequest) (*domain.User, error)
}

// UserLifecycleSvc defines operations for managing user lifecycle
type UserLifecycleSvc interface {
	// DeleteUser removes the user's account. Users may only delete their own
	// account.
	DeleteUser(ctx context.Context, userID string, requestingUserID string) error
}

// UserAuthSvc defines operations for user authentication
type UserAuthSvc interface {
	// AuthenticateUser authenticates a user with email and password.
	AuthenticateUser(ctx context.Context, email, password string) (*domain.User, error)
}

// UserSvcFacade combines all user-related service interfaces
type UserSvcFacade interface {
	UserReaderSvc
	UserWriterSvc
	UserLifecycleSvc
	UserAuthSvc
}

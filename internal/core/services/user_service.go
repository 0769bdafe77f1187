package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/splitstack/splitledger/internal/apperrors"
	"github.com/splitstack/splitledger/internal/core/domain"
	portsrepo "github.com/splitstack/splitledger/internal/core/ports/repositories"
	portssvc "github.com/splitstack/splitledger/internal/core/ports/services"
	"github.com/splitstack/splitledger/internal/dto"
	"github.com/splitstack/splitledger/internal/middleware"
	"github.com/splitstack/splitledger/internal/utils"
)

// userService manages registered accounts and their credentials.
type userService struct {
	userRepo    portsrepo.UserRepository
	groupRepo   portsrepo.GroupRepository
	expenseRepo portsrepo.ExpenseRepository
}

// NewUserService creates a new UserService.
func NewUserService(userRepo portsrepo.UserRepository, groupRepo portsrepo.GroupRepository, expenseRepo portsrepo.ExpenseRepository) portssvc.UserSvcFacade {
	return &userService{
		userRepo:    userRepo,
		groupRepo:   groupRepo,
		expenseRepo: expenseRepo,
	}
}

var _ portssvc.UserSvcFacade = (*userService)(nil)

// CreateUser registers a new user. Email is the unique directory key; the
// password is stored only as a bcrypt hash, and the account starts with a
// zero balance.
func (s *userService) CreateUser(ctx context.Context, req dto.CreateUserRequest) (*domain.User, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if req.Password != req.PasswordConfirmation {
		return nil, fmt.Errorf("%w: passwords do not match", apperrors.ErrValidation)
	}

	_, err := s.userRepo.FindUserByEmail(ctx, req.Email)
	if err == nil {
		return nil, fmt.Errorf("%w: email %s is already registered", apperrors.ErrDuplicate, req.Email)
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to check email %s: %w", req.Email, err)
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	userID := uuid.NewString()
	now := time.Now().UTC()
	user := domain.User{
		Person: domain.Person{
			Name:  req.Name,
			Email: req.Email,
		},
		UserID:       userID,
		PasswordHash: hash,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	if _, err := s.userRepo.Save(ctx, &user); err != nil {
		return nil, fmt.Errorf("failed to save user: %w", err)
	}

	logger.Info("User registered", slog.String("user_id", userID))
	return &user, nil
}

// GetUserByID retrieves a user by ID.
func (s *userService) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user %s: %w", userID, err)
	}
	return user, nil
}

// GetUserByEmail retrieves a user by their unique email.
func (s *userService) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	user, err := s.userRepo.FindUserByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email %s: %w", email, err)
	}
	return user, nil
}

// GetProfile renders the user's profile text: identity, current balance, and
// group memberships. A positive balance means the user owes money overall, a
// negative one means they are owed.
func (s *userService) GetProfile(ctx context.Context, userID string) (string, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("failed to resolve user %s: %w", userID, err)
	}

	groups, err := s.groupRepo.FindGroupsByMember(ctx, user.Email)
	if err != nil {
		return "", fmt.Errorf("failed to list groups for %s: %w", user.Email, err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Name: %s\n", user.Name)
	fmt.Fprintf(&b, "Email: %s\n", user.Email)
	switch {
	case user.Balance.IsPositive():
		fmt.Fprintf(&b, "Balance: you owe %s\n", user.Balance)
	case user.Balance.IsNegative():
		fmt.Fprintf(&b, "Balance: you are owed %s\n", user.Balance.Neg())
	default:
		b.WriteString("Balance: settled up\n")
	}
	if len(groups) == 0 {
		b.WriteString("Groups: none")
	} else {
		names := make([]string, 0, len(groups))
		for i := range groups {
			names = append(names, groups[i].Name)
		}
		fmt.Fprintf(&b, "Groups: %s", strings.Join(names, ", "))
	}
	return b.String(), nil
}

// GetExpenses retrieves the expenses the user participates in, in the order
// the references were recorded.
func (s *userService) GetExpenses(ctx context.Context, userID string) ([]domain.Expense, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve user %s: %w", userID, err)
	}

	expenses := make([]domain.Expense, 0, len(user.ExpenseIDs))
	for _, expenseID := range user.ExpenseIDs {
		expense, err := s.expenseRepo.FindByID(ctx, expenseID)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve expense %s: %w", expenseID, err)
		}
		expenses = append(expenses, *expense)
	}
	return expenses, nil
}

// UpdateUser updates the user's name and/or email. Changing the email keeps
// the directory key unique; nil fields are left untouched.
func (s *userService) UpdateUser(ctx context.Context, userID string, req dto.UpdateUserRequest) (*domain.User, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve user %s: %w", userID, err)
	}

	if req.Email != nil && *req.Email != user.Email {
		if _, err := s.userRepo.FindUserByEmail(ctx, *req.Email); err == nil {
			return nil, fmt.Errorf("%w: email %s is already registered", apperrors.ErrDuplicate, *req.Email)
		} else if !errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("failed to check email %s: %w", *req.Email, err)
		}
		user.Email = *req.Email
	}
	if req.Name != nil {
		user.Name = *req.Name
	}
	user.LastUpdatedAt = time.Now().UTC()
	user.LastUpdatedBy = userID

	if _, err := s.userRepo.Save(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to save user: %w", err)
	}

	logger.Info("User updated", slog.String("user_id", userID))
	return user, nil
}

// DeleteUser removes the account. Only the account owner may delete it.
// Balances and expense records referencing the account are left as they
// stand; the directory entry alone is removed.
func (s *userService) DeleteUser(ctx context.Context, userID string, requestingUserID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	if userID != requestingUserID {
		return fmt.Errorf("%w: users may only delete their own account", apperrors.ErrForbidden)
	}

	if err := s.userRepo.DeleteByID(ctx, userID); err != nil {
		return fmt.Errorf("failed to delete user %s: %w", userID, err)
	}

	logger.Info("User deleted", slog.String("user_id", userID))
	return nil
}

// AuthenticateUser verifies the email/password pair against the stored hash.
// A missing account and a wrong password are indistinguishable to the caller.
func (s *userService) AuthenticateUser(ctx context.Context, email, password string) (*domain.User, error) {
	user, err := s.userRepo.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: invalid credentials", apperrors.ErrForbidden)
		}
		return nil, fmt.Errorf("failed to resolve user by email: %w", err)
	}
	if !utils.CheckPasswordHash(password, user.PasswordHash) {
		return nil, fmt.Errorf("%w: invalid credentials", apperrors.ErrForbidden)
	}
	return user, nil
}

package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/splitstack/splitledger/internal/adapters/database/memory"
	"github.com/splitstack/splitledger/internal/apperrors"
	portsrepo "github.com/splitstack/splitledger/internal/core/ports/repositories"
	portssvc "github.com/splitstack/splitledger/internal/core/ports/services"
	"github.com/splitstack/splitledger/internal/core/services"
	"github.com/splitstack/splitledger/internal/dto"
)

type userFixture struct {
	repos    *portsrepo.RepositoryProvider
	userSvc  portssvc.UserSvcFacade
	groupSvc portssvc.GroupSvcFacade
}

func newUserFixture(t *testing.T) *userFixture {
	t.Helper()
	repos := memory.NewRepositoryProvider()
	return &userFixture{
		repos:    repos,
		userSvc:  services.NewUserService(repos.Users, repos.Groups, repos.Expenses),
		groupSvc: services.NewGroupService(repos.Groups, repos.Users),
	}
}

func signupRequest(name, email string) dto.CreateUserRequest {
	return dto.CreateUserRequest{
		Name:                 name,
		Email:                email,
		Password:             "hunter2secret",
		PasswordConfirmation: "hunter2secret",
	}
}

func TestCreateUser(t *testing.T) {
	ctx := context.Background()
	f := newUserFixture(t)

	user, err := f.userSvc.CreateUser(ctx, signupRequest("Ana", "ana@example.com"))
	require.NoError(t, err)
	assert.NotEmpty(t, user.UserID)
	assert.True(t, user.Balance.IsZero())
	assert.NotEqual(t, "hunter2secret", user.PasswordHash)

	found, err := f.userSvc.GetUserByEmail(ctx, "ana@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.UserID, found.UserID)
}

func TestCreateUser_Failures(t *testing.T) {
	ctx := context.Background()
	f := newUserFixture(t)

	_, err := f.userSvc.CreateUser(ctx, signupRequest("Ana", "ana@example.com"))
	require.NoError(t, err)

	_, err = f.userSvc.CreateUser(ctx, signupRequest("Other Ana", "ana@example.com"))
	assert.ErrorIs(t, err, apperrors.ErrDuplicate)

	mismatched := signupRequest("Bob", "bob@example.com")
	mismatched.PasswordConfirmation = "different"
	_, err = f.userSvc.CreateUser(ctx, mismatched)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestAuthenticateUser(t *testing.T) {
	ctx := context.Background()
	f := newUserFixture(t)

	created, err := f.userSvc.CreateUser(ctx, signupRequest("Ana", "ana@example.com"))
	require.NoError(t, err)

	user, err := f.userSvc.AuthenticateUser(ctx, "ana@example.com", "hunter2secret")
	require.NoError(t, err)
	assert.Equal(t, created.UserID, user.UserID)

	// Wrong password and unknown account fail the same way.
	_, err = f.userSvc.AuthenticateUser(ctx, "ana@example.com", "wrong")
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
	_, err = f.userSvc.AuthenticateUser(ctx, "nobody@example.com", "hunter2secret")
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestUpdateUser(t *testing.T) {
	ctx := context.Background()
	f := newUserFixture(t)

	user, err := f.userSvc.CreateUser(ctx, signupRequest("Ana", "ana@example.com"))
	require.NoError(t, err)
	_, err = f.userSvc.CreateUser(ctx, signupRequest("Bob", "bob@example.com"))
	require.NoError(t, err)

	newName := "Ana Maria"
	updated, err := f.userSvc.UpdateUser(ctx, user.UserID, dto.UpdateUserRequest{Name: &newName})
	require.NoError(t, err)
	assert.Equal(t, "Ana Maria", updated.Name)
	assert.Equal(t, "ana@example.com", updated.Email)

	// Moving to a taken email is rejected.
	takenEmail := "bob@example.com"
	_, err = f.userSvc.UpdateUser(ctx, user.UserID, dto.UpdateUserRequest{Email: &takenEmail})
	assert.ErrorIs(t, err, apperrors.ErrDuplicate)

	freshEmail := "ana.maria@example.com"
	updated, err = f.userSvc.UpdateUser(ctx, user.UserID, dto.UpdateUserRequest{Email: &freshEmail})
	require.NoError(t, err)
	assert.Equal(t, freshEmail, updated.Email)
}

func TestDeleteUser_OwnAccountOnly(t *testing.T) {
	ctx := context.Background()
	f := newUserFixture(t)

	ana, err := f.userSvc.CreateUser(ctx, signupRequest("Ana", "ana@example.com"))
	require.NoError(t, err)
	bob, err := f.userSvc.CreateUser(ctx, signupRequest("Bob", "bob@example.com"))
	require.NoError(t, err)

	err = f.userSvc.DeleteUser(ctx, ana.UserID, bob.UserID)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	require.NoError(t, f.userSvc.DeleteUser(ctx, ana.UserID, ana.UserID))
	_, err = f.userSvc.GetUserByID(ctx, ana.UserID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestGetProfile(t *testing.T) {
	ctx := context.Background()
	f := newUserFixture(t)

	user, err := f.userSvc.CreateUser(ctx, signupRequest("Ana", "ana@example.com"))
	require.NoError(t, err)
	_, err = f.groupSvc.CreateGroup(ctx, dto.CreateGroupRequest{Name: "flat"}, user.UserID)
	require.NoError(t, err)

	profile, err := f.userSvc.GetProfile(ctx, user.UserID)
	require.NoError(t, err)
	assert.Contains(t, profile, "Name: Ana")
	assert.Contains(t, profile, "Email: ana@example.com")
	assert.Contains(t, profile, "settled up")
	assert.Contains(t, profile, "Groups: flat")
}

func TestGetProfile_OwingBalance(t *testing.T) {
	ctx := context.Background()
	f := newUserFixture(t)

	user, err := f.userSvc.CreateUser(ctx, signupRequest("Ana", "ana@example.com"))
	require.NoError(t, err)

	stored, err := f.repos.Users.FindByID(ctx, user.UserID)
	require.NoError(t, err)
	stored.ApplyDelta(d("12.50"))
	_, err = f.repos.Users.Save(ctx, stored)
	require.NoError(t, err)

	profile, err := f.userSvc.GetProfile(ctx, user.UserID)
	require.NoError(t, err)
	assert.Contains(t, profile, "you owe 12.5")
}

func TestGetExpenses_CreationOrder(t *testing.T) {
	ctx := context.Background()
	f := newUserFixture(t)

	user, err := f.userSvc.CreateUser(ctx, signupRequest("Ana", "ana@example.com"))
	require.NoError(t, err)

	expenseSvc := services.NewExpenseService(f.repos.Expenses, f.repos.Users, f.groupSvc)
	for _, title := range []string{"first", "second", "third"} {
		_, err := expenseSvc.CreateExpense(ctx, dto.CreateExpenseRequest{
			Title:  title,
			Amount: d("5"),
			Lent:   []dto.ExpenseShare{{Email: "ana@example.com", Amount: d("5")}},
		}, user.UserID)
		require.NoError(t, err)
	}

	expenses, err := f.userSvc.GetExpenses(ctx, user.UserID)
	require.NoError(t, err)
	require.Len(t, expenses, 3)
	for i, title := range []string{"first", "second", "third"} {
		assert.Equal(t, title, expenses[i].Title)
	}
}

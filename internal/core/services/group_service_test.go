package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/splitstack/splitledger/internal/adapters/database/memory"
	"github.com/splitstack/splitledger/internal/apperrors"
	"github.com/splitstack/splitledger/internal/core/domain"
	portsrepo "github.com/splitstack/splitledger/internal/core/ports/repositories"
	portssvc "github.com/splitstack/splitledger/internal/core/ports/services"
	"github.com/splitstack/splitledger/internal/core/services"
	"github.com/splitstack/splitledger/internal/dto"
)

type groupFixture struct {
	repos    *portsrepo.RepositoryProvider
	groupSvc portssvc.GroupSvcFacade
}

func newGroupFixture(t *testing.T) *groupFixture {
	t.Helper()
	repos := memory.NewRepositoryProvider()
	return &groupFixture{
		repos:    repos,
		groupSvc: services.NewGroupService(repos.Groups, repos.Users),
	}
}

func (f *groupFixture) registerUser(t *testing.T, name, email string) *domain.User {
	t.Helper()
	user := domain.User{Person: domain.Person{Name: name, Email: email}}
	_, err := f.repos.Users.Save(context.Background(), &user)
	require.NoError(t, err)
	return &user
}

func TestCreateGroup_CreatorIsFirstMember(t *testing.T) {
	ctx := context.Background()
	f := newGroupFixture(t)
	ana := f.registerUser(t, "Ana", "ana@example.com")

	group, err := f.groupSvc.CreateGroup(ctx, dto.CreateGroupRequest{
		Name:         "trip",
		Description:  "weekend trip",
		MemberEmails: []string{"bob@example.com", "ana@example.com"},
	}, ana.UserID)
	require.NoError(t, err)

	assert.NotEmpty(t, group.GroupID)
	// Creator first, then the extra email; the duplicate creator entry is
	// skipped.
	assert.Equal(t, []string{"ana@example.com", "bob@example.com"}, group.MemberEmails)
}

func TestAddMembers_MembersOnly(t *testing.T) {
	ctx := context.Background()
	f := newGroupFixture(t)
	ana := f.registerUser(t, "Ana", "ana@example.com")
	eve := f.registerUser(t, "Eve", "eve@example.com")

	group, err := f.groupSvc.CreateGroup(ctx, dto.CreateGroupRequest{Name: "trip"}, ana.UserID)
	require.NoError(t, err)

	_, err = f.groupSvc.AddMembers(ctx, group.GroupID, []string{"mallory@example.com"}, eve.UserID)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	updated, err := f.groupSvc.AddMembers(ctx, group.GroupID, []string{"bob@example.com", "bob@example.com"}, ana.UserID)
	require.NoError(t, err)
	assert.Equal(t, []string{"ana@example.com", "bob@example.com"}, updated.MemberEmails)
}

func TestListGroupsForUser(t *testing.T) {
	ctx := context.Background()
	f := newGroupFixture(t)
	ana := f.registerUser(t, "Ana", "ana@example.com")
	bob := f.registerUser(t, "Bob", "bob@example.com")

	_, err := f.groupSvc.CreateGroup(ctx, dto.CreateGroupRequest{Name: "trip"}, ana.UserID)
	require.NoError(t, err)
	_, err = f.groupSvc.CreateGroup(ctx, dto.CreateGroupRequest{Name: "flat", MemberEmails: []string{"ana@example.com"}}, bob.UserID)
	require.NoError(t, err)
	_, err = f.groupSvc.CreateGroup(ctx, dto.CreateGroupRequest{Name: "solo"}, bob.UserID)
	require.NoError(t, err)

	groups, err := f.groupSvc.ListGroupsForUser(ctx, "ana@example.com")
	require.NoError(t, err)
	require.Len(t, groups, 2)
	assert.Equal(t, "trip", groups[0].Name)
	assert.Equal(t, "flat", groups[1].Name)
}

func TestDescribeGroups(t *testing.T) {
	ctx := context.Background()
	f := newGroupFixture(t)
	ana := f.registerUser(t, "Ana", "ana@example.com")

	listing, err := f.groupSvc.DescribeGroups(ctx, "ana@example.com")
	require.NoError(t, err)
	assert.Equal(t, "No groups yet.", listing)

	_, err = f.groupSvc.CreateGroup(ctx, dto.CreateGroupRequest{
		Name:         "trip",
		Description:  "weekend trip",
		MemberEmails: []string{"bob@example.com"},
	}, ana.UserID)
	require.NoError(t, err)

	listing, err = f.groupSvc.DescribeGroups(ctx, "ana@example.com")
	require.NoError(t, err)
	assert.Equal(t, "trip: weekend trip (2 members)", listing)
}

func TestAddExpenseToGroup_Dedupes(t *testing.T) {
	ctx := context.Background()
	f := newGroupFixture(t)
	ana := f.registerUser(t, "Ana", "ana@example.com")

	group, err := f.groupSvc.CreateGroup(ctx, dto.CreateGroupRequest{Name: "trip"}, ana.UserID)
	require.NoError(t, err)

	require.NoError(t, f.groupSvc.AddExpenseToGroup(ctx, group.GroupID, "e-1"))
	require.NoError(t, f.groupSvc.AddExpenseToGroup(ctx, group.GroupID, "e-1"))

	saved, err := f.repos.Groups.FindByID(ctx, group.GroupID)
	require.NoError(t, err)
	assert.Equal(t, []string{"e-1"}, saved.ExpenseIDs)
}

func TestDeleteGroup(t *testing.T) {
	ctx := context.Background()
	f := newGroupFixture(t)
	ana := f.registerUser(t, "Ana", "ana@example.com")
	eve := f.registerUser(t, "Eve", "eve@example.com")

	group, err := f.groupSvc.CreateGroup(ctx, dto.CreateGroupRequest{Name: "trip"}, ana.UserID)
	require.NoError(t, err)

	err = f.groupSvc.DeleteGroup(ctx, group.GroupID, eve.UserID)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	require.NoError(t, f.groupSvc.DeleteGroup(ctx, group.GroupID, ana.UserID))
	_, err = f.groupSvc.GetGroupByID(ctx, group.GroupID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

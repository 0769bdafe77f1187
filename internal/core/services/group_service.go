package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/splitstack/splitledger/internal/apperrors"
	"github.com/splitstack/splitledger/internal/core/domain"
	portsrepo "github.com/splitstack/splitledger/internal/core/ports/repositories"
	portssvc "github.com/splitstack/splitledger/internal/core/ports/services"
	"github.com/splitstack/splitledger/internal/dto"
	"github.com/splitstack/splitledger/internal/middleware"
)

// groupService manages group membership and the references a group keeps to
// its expenses and budgets.
type groupService struct {
	groupRepo portsrepo.GroupRepository
	userRepo  portsrepo.UserRepository
}

// NewGroupService creates a new GroupService.
func NewGroupService(groupRepo portsrepo.GroupRepository, userRepo portsrepo.UserRepository) portssvc.GroupSvcFacade {
	return &groupService{
		groupRepo: groupRepo,
		userRepo:  userRepo,
	}
}

var _ portssvc.GroupSvcFacade = (*groupService)(nil)

// CreateGroup creates a group with the creator as its first member. Further
// member emails from the request are added after the creator, duplicates
// skipped. Member emails are not required to belong to registered users.
func (s *groupService) CreateGroup(ctx context.Context, req dto.CreateGroupRequest, creatorUserID string) (*domain.Group, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	creator, err := s.userRepo.FindByID(ctx, creatorUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve creator %s: %w", creatorUserID, err)
	}

	now := time.Now().UTC()
	group := domain.Group{
		Name:        req.Name,
		Description: req.Description,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}
	group.AddMember(creator.Email)
	for _, email := range req.MemberEmails {
		if email == "" {
			return nil, fmt.Errorf("%w: member email must not be empty", apperrors.ErrValidation)
		}
		group.AddMember(email)
	}

	groupID, err := s.groupRepo.Save(ctx, &group)
	if err != nil {
		return nil, fmt.Errorf("failed to save group: %w", err)
	}

	logger.Info("Group created",
		slog.String("group_id", groupID),
		slog.Int("member_count", len(group.MemberEmails)),
	)
	return &group, nil
}

// GetGroupByID retrieves a group by ID.
func (s *groupService) GetGroupByID(ctx context.Context, groupID string) (*domain.Group, error) {
	group, err := s.groupRepo.FindByID(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to get group %s: %w", groupID, err)
	}
	return group, nil
}

// ListGroupsForUser retrieves every group the given email belongs to, in
// persisted order.
func (s *groupService) ListGroupsForUser(ctx context.Context, email string) ([]domain.Group, error) {
	groups, err := s.groupRepo.FindGroupsByMember(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups for %s: %w", email, err)
	}
	return groups, nil
}

// DescribeGroups renders a one-line-per-group listing of the user's groups,
// with each group's name, description, and member count.
func (s *groupService) DescribeGroups(ctx context.Context, email string) (string, error) {
	groups, err := s.ListGroupsForUser(ctx, email)
	if err != nil {
		return "", err
	}
	if len(groups) == 0 {
		return "No groups yet.", nil
	}

	var b strings.Builder
	for i := range groups {
		g := &groups[i]
		fmt.Fprintf(&b, "%s: %s (%d members)\n", g.Name, g.Description, len(g.MemberEmails))
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

// AddMembers adds member emails to the group. Only an existing member may
// extend the group. Emails already present are skipped without error.
func (s *groupService) AddMembers(ctx context.Context, groupID string, emails []string, requestingUserID string) (*domain.Group, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	group, err := s.groupRepo.FindByID(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve group %s: %w", groupID, err)
	}

	requester, err := s.userRepo.FindByID(ctx, requestingUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve requesting user %s: %w", requestingUserID, err)
	}
	if !group.HasMember(requester.Email) {
		return nil, fmt.Errorf("%w: only members may add members to group %s", apperrors.ErrForbidden, groupID)
	}

	for _, email := range emails {
		if email == "" {
			return nil, fmt.Errorf("%w: member email must not be empty", apperrors.ErrValidation)
		}
		group.AddMember(email)
	}
	group.LastUpdatedAt = time.Now().UTC()
	group.LastUpdatedBy = requestingUserID

	if _, err := s.groupRepo.Save(ctx, group); err != nil {
		return nil, fmt.Errorf("failed to save group: %w", err)
	}

	logger.Info("Group members added",
		slog.String("group_id", groupID),
		slog.Int("member_count", len(group.MemberEmails)),
	)
	return group, nil
}

// AddExpenseToGroup records an expense reference on the group. Duplicate
// references are ignored.
func (s *groupService) AddExpenseToGroup(ctx context.Context, groupID string, expenseID string) error {
	group, err := s.groupRepo.FindByID(ctx, groupID)
	if err != nil {
		return fmt.Errorf("failed to resolve group %s: %w", groupID, err)
	}

	group.AddExpense(expenseID)
	group.LastUpdatedAt = time.Now().UTC()

	if _, err := s.groupRepo.Save(ctx, group); err != nil {
		return fmt.Errorf("failed to save group: %w", err)
	}
	return nil
}

// DeleteGroup removes the group entirely. Only a member may delete it. The
// group's budgets are orphaned rather than cascaded; expenses always outlive
// their group.
func (s *groupService) DeleteGroup(ctx context.Context, groupID string, requestingUserID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	group, err := s.groupRepo.FindByID(ctx, groupID)
	if err != nil {
		return fmt.Errorf("failed to resolve group %s: %w", groupID, err)
	}

	requester, err := s.userRepo.FindByID(ctx, requestingUserID)
	if err != nil {
		return fmt.Errorf("failed to resolve requesting user %s: %w", requestingUserID, err)
	}
	if !group.HasMember(requester.Email) {
		return fmt.Errorf("%w: only members may delete group %s", apperrors.ErrForbidden, groupID)
	}

	if err := s.groupRepo.DeleteByID(ctx, groupID); err != nil {
		return fmt.Errorf("failed to delete group %s: %w", groupID, err)
	}

	logger.Info("Group deleted", slog.String("group_id", groupID))
	return nil
}

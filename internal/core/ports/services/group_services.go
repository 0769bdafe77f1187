package services

import (
	"context"

	"github.com/splitstack/splitledger/internal/core/domain"
	"github.com/splitstack/splitledger/internal/dto"
)

// GroupReaderSvc defines read operations for group data
type GroupReaderSvc interface {
	// GetGroupByID retrieves a group by ID.
	GetGroupByID(ctx context.Context, groupID string) (*domain.Group, error)

	// ListGroupsForUser retrieves every group the given email belongs to.
	ListGroupsForUser(ctx context.Context, email string) ([]domain.Group, error)

	// DescribeGroups renders a listing of the user's groups.
	DescribeGroups(ctx context.Context, email string) (string, error)
}

// GroupWriterSvc defines write operations for group data
type GroupWriterSvc interface {
	// CreateGroup creates a group; the creator becomes the first member.
	CreateGroup(ctx context.Context, req dto.CreateGroupRequest, creatorUserID string) (*domain.Group, error)

	// AddMembers adds member emails to a group; duplicates are skipped.
	AddMembers(ctx context.Context, groupID string, emails []string, requestingUserID string) (*domain.Group, error)

	// AddExpenseToGroup records an expense reference on the group.
	AddExpenseToGroup(ctx context.Context, groupID string, expenseID string) error

	// DeleteGroup removes the group entirely.
	DeleteGroup(ctx context.Context, groupID string, requestingUserID string) error
}

// GroupSvcFacade combines all group-related service interfaces
type GroupSvcFacade interface {
	GroupReaderSvc
	GroupWriterSvc
}

package dto

import (
	"github.com/splitstack/splitledger/internal/core/domain"
)

// CreateGroupRequest carries the fields for creating a group. The creator is
// taken from the session and becomes the first member; MemberEmails may list
// additional members.
type CreateGroupRequest struct {
	Name         string   `json:"name" binding:"required"`
	Description  string   `json:"description"`
	MemberEmails []string `json:"memberEmails" binding:"omitempty,dive,email"`
}

// AddMembersRequest lists member emails to add to a group.
type AddMembersRequest struct {
	Emails []string `json:"emails" binding:"required,min=1,dive,email"`
}

// GroupResponse is the API representation of a group.
type GroupResponse struct {
	GroupID      string   `json:"groupID"`
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	MemberEmails []string `json:"memberEmails"`
	ExpenseIDs   []string `json:"expenseIDs"`
	BudgetIDs    []string `json:"budgetIDs"`
}

// ToGroupResponse converts a domain.Group to its API representation.
func ToGroupResponse(group *domain.Group) GroupResponse {
	return GroupResponse{
		GroupID:      group.GroupID,
		Name:         group.Name,
		Description:  group.Description,
		MemberEmails: group.MemberEmails,
		ExpenseIDs:   group.ExpenseIDs,
		BudgetIDs:    group.BudgetIDs,
	}
}

// ToListGroupResponse converts a slice of domain.Group to API representations.
func ToListGroupResponse(groups []domain.Group) []GroupResponse {
	responses := make([]GroupResponse, len(groups))
	for i := range groups {
		responses[i] = ToGroupResponse(&groups[i])
	}
	return responses
}

package domain

// Group is a set of people sharing expenses and budgets. The first member
// email is always the creator; member emails are unique and a group never has
// fewer than one member. Budgets and expenses are owned by reference so that
// entities can be persisted independently.
type Group struct {
	GroupID      string   `json:"groupID"` // Primary Key (UUID)
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	MemberEmails []string `json:"memberEmails"`
	ExpenseIDs   []string `json:"expenseIDs"`
	BudgetIDs    []string `json:"budgetIDs"`
	AuditFields
}

// HasMember reports whether the given email belongs to the group.
func (g *Group) HasMember(email string) bool {
	for _, m := range g.MemberEmails {
		if m == email {
			return true
		}
	}
	return false
}

// AddMember appends a member email, preserving uniqueness. It reports whether
// the member was actually added.
func (g *Group) AddMember(email string) bool {
	if email == "" || g.HasMember(email) {
		return false
	}
	g.MemberEmails = append(g.MemberEmails, email)
	return true
}

// AddBudget records a budget reference on the group.
func (g *Group) AddBudget(budgetID string) {
	for _, id := range g.BudgetIDs {
		if id == budgetID {
			return
		}
	}
	g.BudgetIDs = append(g.BudgetIDs, budgetID)
}

// RemoveBudget drops a budget reference. It reports whether the budget was
// present.
func (g *Group) RemoveBudget(budgetID string) bool {
	for i, id := range g.BudgetIDs {
		if id == budgetID {
			g.BudgetIDs = append(g.BudgetIDs[:i], g.BudgetIDs[i+1:]...)
			return true
		}
	}
	return false
}

// AddExpense records an expense reference on the group. An already recorded
// reference is ignored.
func (g *Group) AddExpense(expenseID string) {
	for _, id := range g.ExpenseIDs {
		if id == expenseID {
			return
		}
	}
	g.ExpenseIDs = append(g.ExpenseIDs, expenseID)
}

package domain

// User is a registered account: the common Person record plus the
// registration extension (immutable UserID, credentials, and the list of
// expenses the user participates in). The presence of this extension, not a
// type hierarchy, is what distinguishes a registered user from a stand-in.
type User struct {
	Person
	UserID       string   `json:"userID"` // Primary Key (UUID), assigned once at signup
	PasswordHash string   `json:"passwordHash,omitempty"`
	ExpenseIDs   []string `json:"expenseIDs"` // Expenses this user participates in, in creation order
	AuditFields
}

// AddExpenseRef appends a reference to an expense this user participates in.
// Duplicate references are ignored.
func (u *User) AddExpenseRef(expenseID string) {
	for _, id := range u.ExpenseIDs {
		if id == expenseID {
			return
		}
	}
	u.ExpenseIDs = append(u.ExpenseIDs, expenseID)
}

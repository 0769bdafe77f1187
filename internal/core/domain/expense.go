package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Expense is an immutable record of a shared cost. LentBy maps lender email
// to the amount that person paid; BorrowedBy maps borrower email to the
// amount that person owes. The two maps are fixed at creation; repayment
// mutates Outstanding and the participants' aggregate balances, never the
// original split.
type Expense struct {
	ExpenseID  string                     `json:"expenseID"` // Primary Key (UUID)
	Title      string                     `json:"title"`
	Amount     decimal.Decimal            `json:"amount"`     // Positive total
	LentBy     map[string]decimal.Decimal `json:"lentBy"`     // email -> amount paid
	BorrowedBy map[string]decimal.Decimal `json:"borrowedBy"` // email -> amount owed
	// Participants carries the identity of unregistered (stand-in) people who
	// appear in the split maps; registered users live in the user directory.
	Participants map[string]Person `json:"participants"`
	// Outstanding tracks the amount still unsettled per participant email,
	// initialized from the split maps at creation.
	Outstanding map[string]decimal.Decimal `json:"outstanding"`
	AuditFields
}

// ValidateSplit checks the expense construction invariants: a non-negative
// total, positive per-person amounts, and both split maps summing to the
// total. A zero total is only valid for an empty split (a zero-cost personal
// record); any populated split forces a positive total through the sum checks.
func (e *Expense) ValidateSplit() error {
	if e.Amount.IsNegative() {
		return fmt.Errorf("expense amount must not be negative, got %s", e.Amount)
	}
	lentSum := decimal.Zero
	for email, amount := range e.LentBy {
		if !amount.IsPositive() {
			return fmt.Errorf("lent amount for %s must be positive, got %s", email, amount)
		}
		lentSum = lentSum.Add(amount)
	}
	borrowedSum := decimal.Zero
	for email, amount := range e.BorrowedBy {
		if !amount.IsPositive() {
			return fmt.Errorf("borrowed amount for %s must be positive, got %s", email, amount)
		}
		borrowedSum = borrowedSum.Add(amount)
	}
	if !lentSum.Equal(e.Amount) {
		return fmt.Errorf("lent amounts sum to %s, expected %s", lentSum, e.Amount)
	}
	if len(e.BorrowedBy) > 0 && !borrowedSum.Equal(e.Amount) {
		return fmt.Errorf("borrowed amounts sum to %s, expected %s", borrowedSum, e.Amount)
	}
	return nil
}

// InitOutstanding seeds the outstanding amounts from the split maps. A person
// appearing on both sides owes or is owed the sum of both entries.
func (e *Expense) InitOutstanding() {
	e.Outstanding = make(map[string]decimal.Decimal, len(e.LentBy)+len(e.BorrowedBy))
	for email, amount := range e.LentBy {
		e.Outstanding[email] = e.Outstanding[email].Add(amount)
	}
	for email, amount := range e.BorrowedBy {
		e.Outstanding[email] = e.Outstanding[email].Add(amount)
	}
}

// OutstandingFor returns the unsettled amount for the given participant.
func (e *Expense) OutstandingFor(email string) decimal.Decimal {
	return e.Outstanding[email]
}

// ReduceOutstanding lowers the unsettled amount for the given participant.
// It reports whether the participant had any outstanding amount at all.
func (e *Expense) ReduceOutstanding(email string, amount decimal.Decimal) bool {
	current, ok := e.Outstanding[email]
	if !ok {
		return false
	}
	e.Outstanding[email] = current.Sub(amount)
	return true
}

// IsParticipant reports whether the given email appears in either split map.
func (e *Expense) IsParticipant(email string) bool {
	if _, ok := e.LentBy[email]; ok {
		return true
	}
	_, ok := e.BorrowedBy[email]
	return ok
}

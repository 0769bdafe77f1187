package domain

import "github.com/shopspring/decimal"

// Person is the common identity record shared by registered users and
// stand-in participants. Balance is the signed net amount this person owes
// across all expenses: positive means they owe, negative means they are owed.
type Person struct {
	Name    string          `json:"name"`
	Email   string          `json:"email"` // Unique key across the system
	Balance decimal.Decimal `json:"balance"`
}

// NewStandIn builds an unregistered participant for an expense. Stand-ins are
// recorded on the expense itself, never in the user directory, and start with
// a zero balance.
func NewStandIn(name, email string) Person {
	return Person{
		Name:    name,
		Email:   email,
		Balance: decimal.Zero,
	}
}

// ApplyDelta shifts the person's balance by the given signed amount.
func (p *Person) ApplyDelta(delta decimal.Decimal) {
	p.Balance = p.Balance.Add(delta)
}

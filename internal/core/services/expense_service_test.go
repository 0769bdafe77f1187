package services_test

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/splitstack/splitledger/internal/adapters/database/memory"
	"github.com/splitstack/splitledger/internal/apperrors"
	"github.com/splitstack/splitledger/internal/core/domain"
	portsevents "github.com/splitstack/splitledger/internal/core/ports/events"
	portsrepo "github.com/splitstack/splitledger/internal/core/ports/repositories"
	portssvc "github.com/splitstack/splitledger/internal/core/ports/services"
	"github.com/splitstack/splitledger/internal/core/services"
	"github.com/splitstack/splitledger/internal/dto"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

// capturePublisher records published events for assertions.
type capturePublisher struct {
	mu     sync.Mutex
	topics []string
	events []any
}

func (p *capturePublisher) Publish(ctx context.Context, topic string, event any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.topics = append(p.topics, topic)
	p.events = append(p.events, event)
	return nil
}

type expenseFixture struct {
	repos      *portsrepo.RepositoryProvider
	groupSvc   portssvc.GroupSvcFacade
	expenseSvc portssvc.ExpenseSvcFacade
	publisher  *capturePublisher
}

func newExpenseFixture(t *testing.T, opts ...services.ExpenseServiceOption) *expenseFixture {
	t.Helper()
	repos := memory.NewRepositoryProvider()
	groupSvc := services.NewGroupService(repos.Groups, repos.Users)
	publisher := &capturePublisher{}
	opts = append([]services.ExpenseServiceOption{services.WithEventPublisher(publisher)}, opts...)
	expenseSvc := services.NewExpenseService(repos.Expenses, repos.Users, groupSvc, opts...)
	return &expenseFixture{
		repos:      repos,
		groupSvc:   groupSvc,
		expenseSvc: expenseSvc,
		publisher:  publisher,
	}
}

func (f *expenseFixture) registerUser(t *testing.T, name, email string) *domain.User {
	t.Helper()
	user := domain.User{
		Person: domain.Person{Name: name, Email: email},
	}
	_, err := f.repos.Users.Save(context.Background(), &user)
	require.NoError(t, err)
	return &user
}

func (f *expenseFixture) balanceOf(t *testing.T, email string) decimal.Decimal {
	t.Helper()
	user, err := f.repos.Users.FindUserByEmail(context.Background(), email)
	require.NoError(t, err)
	return user.Balance
}

func TestCreateExpense_BalancesConserve(t *testing.T) {
	ctx := context.Background()
	f := newExpenseFixture(t)
	ana := f.registerUser(t, "Ana", "ana@example.com")
	f.registerUser(t, "Bob", "bob@example.com")
	f.registerUser(t, "Cat", "cat@example.com")

	expense, err := f.expenseSvc.CreateExpense(ctx, dto.CreateExpenseRequest{
		Title:  "dinner",
		Amount: d("30"),
		Lent:   []dto.ExpenseShare{{Email: "ana@example.com", Amount: d("30")}},
		Borrowed: []dto.ExpenseShare{
			{Email: "bob@example.com", Amount: d("10")},
			{Email: "cat@example.com", Amount: d("20")},
		},
	}, ana.UserID)
	require.NoError(t, err)

	// Lenders are owed (negative), borrowers owe (positive), net zero.
	anaBal := f.balanceOf(t, "ana@example.com")
	bobBal := f.balanceOf(t, "bob@example.com")
	catBal := f.balanceOf(t, "cat@example.com")
	assert.True(t, anaBal.Equal(d("-30")), "ana balance %s", anaBal)
	assert.True(t, bobBal.Equal(d("10")), "bob balance %s", bobBal)
	assert.True(t, catBal.Equal(d("20")), "cat balance %s", catBal)
	assert.True(t, anaBal.Add(bobBal).Add(catBal).IsZero())

	// Every registered participant holds a reference to the expense.
	for _, email := range []string{"ana@example.com", "bob@example.com", "cat@example.com"} {
		user, err := f.repos.Users.FindUserByEmail(ctx, email)
		require.NoError(t, err)
		assert.Contains(t, user.ExpenseIDs, expense.ExpenseID)
	}

	// Outstanding starts at the full split amounts.
	saved, err := f.repos.Expenses.FindByID(ctx, expense.ExpenseID)
	require.NoError(t, err)
	assert.True(t, saved.OutstandingFor("bob@example.com").Equal(d("10")))
	assert.True(t, saved.OutstandingFor("ana@example.com").Equal(d("30")))

	require.NotEmpty(t, f.publisher.topics)
	assert.Equal(t, portsevents.TopicExpenseCreated, f.publisher.topics[0])
}

func TestCreateExpense_StandInParticipant(t *testing.T) {
	ctx := context.Background()
	f := newExpenseFixture(t)
	ana := f.registerUser(t, "Ana", "ana@example.com")

	expense, err := f.expenseSvc.CreateExpense(ctx, dto.CreateExpenseRequest{
		Title:    "taxi",
		Amount:   d("12"),
		Lent:     []dto.ExpenseShare{{Email: "ana@example.com", Amount: d("12")}},
		Borrowed: []dto.ExpenseShare{{Name: "Guest", Email: "guest@example.com", Amount: d("12")}},
	}, ana.UserID)
	require.NoError(t, err)

	// The stand-in is recorded on the expense only, with a zero balance.
	standIn, ok := expense.Participants["guest@example.com"]
	require.True(t, ok)
	assert.Equal(t, "Guest", standIn.Name)
	assert.True(t, standIn.Balance.IsZero())

	// No directory entry was created for the stand-in.
	_, err = f.repos.Users.FindUserByEmail(ctx, "guest@example.com")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	// The registered lender's balance still moves.
	assert.True(t, f.balanceOf(t, "ana@example.com").Equal(d("-12")))
}

func TestCreateExpense_ValidationFailures(t *testing.T) {
	ctx := context.Background()
	f := newExpenseFixture(t)
	ana := f.registerUser(t, "Ana", "ana@example.com")

	tests := []struct {
		name string
		req  dto.CreateExpenseRequest
	}{
		{
			name: "no lenders",
			req: dto.CreateExpenseRequest{
				Title:  "empty",
				Amount: d("10"),
			},
		},
		{
			name: "duplicate email in split",
			req: dto.CreateExpenseRequest{
				Title:  "dup",
				Amount: d("10"),
				Lent: []dto.ExpenseShare{
					{Email: "ana@example.com", Amount: d("5")},
					{Email: "ana@example.com", Amount: d("5")},
				},
			},
		},
		{
			name: "lent does not cover total",
			req: dto.CreateExpenseRequest{
				Title:    "short",
				Amount:   d("30"),
				Lent:     []dto.ExpenseShare{{Email: "ana@example.com", Amount: d("20")}},
				Borrowed: []dto.ExpenseShare{{Email: "x@example.com", Amount: d("30")}},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.expenseSvc.CreateExpense(ctx, tt.req, ana.UserID)
			assert.ErrorIs(t, err, apperrors.ErrValidation)
		})
	}
}

func TestCreateExpense_CreatorKeepsReferenceWithoutShare(t *testing.T) {
	ctx := context.Background()
	f := newExpenseFixture(t)
	ana := f.registerUser(t, "Ana", "ana@example.com")
	bob := f.registerUser(t, "Bob", "bob@example.com")
	f.registerUser(t, "Cat", "cat@example.com")

	expense, err := f.expenseSvc.CreateExpense(ctx, dto.CreateExpenseRequest{
		Title:    "recorded by ana",
		Amount:   d("8"),
		Lent:     []dto.ExpenseShare{{Email: "bob@example.com", Amount: d("8")}},
		Borrowed: []dto.ExpenseShare{{Email: "cat@example.com", Amount: d("8")}},
	}, ana.UserID)
	require.NoError(t, err)

	creator, err := f.repos.Users.FindByID(ctx, ana.UserID)
	require.NoError(t, err)
	assert.Contains(t, creator.ExpenseIDs, expense.ExpenseID)
	assert.True(t, creator.Balance.IsZero())

	lender, err := f.repos.Users.FindByID(ctx, bob.UserID)
	require.NoError(t, err)
	assert.True(t, lender.Balance.Equal(d("-8")))
}

func TestCreateExpense_AttachesToGroup(t *testing.T) {
	ctx := context.Background()
	f := newExpenseFixture(t)
	ana := f.registerUser(t, "Ana", "ana@example.com")

	group, err := f.groupSvc.CreateGroup(ctx, dto.CreateGroupRequest{Name: "flat"}, ana.UserID)
	require.NoError(t, err)

	expense, err := f.expenseSvc.CreateExpense(ctx, dto.CreateExpenseRequest{
		Title:   "rent",
		Amount:  d("100"),
		Lent:    []dto.ExpenseShare{{Email: "ana@example.com", Amount: d("100")}},
		GroupID: group.GroupID,
	}, ana.UserID)
	require.NoError(t, err)

	saved, err := f.repos.Groups.FindByID(ctx, group.GroupID)
	require.NoError(t, err)
	assert.Contains(t, saved.ExpenseIDs, expense.ExpenseID)
}

func TestCreateExpenseFromItem(t *testing.T) {
	ctx := context.Background()
	f := newExpenseFixture(t)
	ana := f.registerUser(t, "Ana", "ana@example.com")

	item := domain.Item{ItemID: "i-1", Name: "Milk", Cost: d("3"), Quantity: 2}
	expense, err := f.expenseSvc.CreateExpenseFromItem(ctx, item, ana.UserID)
	require.NoError(t, err)

	assert.Equal(t, "Milk", expense.Title)
	assert.True(t, expense.Amount.Equal(d("6")))
	assert.True(t, expense.LentBy["ana@example.com"].Equal(d("6")))
	assert.Empty(t, expense.BorrowedBy)

	// A personal record moves nobody's balance.
	assert.True(t, f.balanceOf(t, "ana@example.com").IsZero())

	creator, err := f.repos.Users.FindByID(ctx, ana.UserID)
	require.NoError(t, err)
	assert.Contains(t, creator.ExpenseIDs, expense.ExpenseID)
}

func TestPayDebt_BorrowerSettlesInTwoPayments(t *testing.T) {
	ctx := context.Background()
	f := newExpenseFixture(t)
	ana := f.registerUser(t, "Ana", "ana@example.com")
	bob := f.registerUser(t, "Bob", "bob@example.com")

	expense, err := f.expenseSvc.CreateExpense(ctx, dto.CreateExpenseRequest{
		Title:    "groceries",
		Amount:   d("20"),
		Lent:     []dto.ExpenseShare{{Email: "ana@example.com", Amount: d("20")}},
		Borrowed: []dto.ExpenseShare{{Email: "bob@example.com", Amount: d("20")}},
	}, ana.UserID)
	require.NoError(t, err)

	require.NoError(t, f.expenseSvc.PayDebt(ctx, bob.UserID, expense.ExpenseID, d("10"), true))

	assert.True(t, f.balanceOf(t, "bob@example.com").Equal(d("10")))
	saved, err := f.repos.Expenses.FindByID(ctx, expense.ExpenseID)
	require.NoError(t, err)
	assert.True(t, saved.OutstandingFor("bob@example.com").Equal(d("10")))

	require.NoError(t, f.expenseSvc.PayDebt(ctx, bob.UserID, expense.ExpenseID, d("10"), true))
	assert.True(t, f.balanceOf(t, "bob@example.com").IsZero())

	// The debt is settled; another payment has nothing left to claim.
	err = f.expenseSvc.PayDebt(ctx, bob.UserID, expense.ExpenseID, d("1"), true)
	assert.ErrorIs(t, err, apperrors.ErrOverpayment)

	assert.Contains(t, f.publisher.topics, portsevents.TopicDebtSettled)
}

func TestPayDebt_LenderCreditShrinks(t *testing.T) {
	ctx := context.Background()
	f := newExpenseFixture(t)
	ana := f.registerUser(t, "Ana", "ana@example.com")
	f.registerUser(t, "Bob", "bob@example.com")

	expense, err := f.expenseSvc.CreateExpense(ctx, dto.CreateExpenseRequest{
		Title:    "tickets",
		Amount:   d("15"),
		Lent:     []dto.ExpenseShare{{Email: "ana@example.com", Amount: d("15")}},
		Borrowed: []dto.ExpenseShare{{Email: "bob@example.com", Amount: d("15")}},
	}, ana.UserID)
	require.NoError(t, err)

	require.NoError(t, f.expenseSvc.PayDebt(ctx, ana.UserID, expense.ExpenseID, d("15"), false))
	assert.True(t, f.balanceOf(t, "ana@example.com").IsZero())
}

func TestPayDebt_Failures(t *testing.T) {
	ctx := context.Background()
	f := newExpenseFixture(t)
	ana := f.registerUser(t, "Ana", "ana@example.com")
	bob := f.registerUser(t, "Bob", "bob@example.com")
	outsider := f.registerUser(t, "Eve", "eve@example.com")

	expense, err := f.expenseSvc.CreateExpense(ctx, dto.CreateExpenseRequest{
		Title:    "lunch",
		Amount:   d("10"),
		Lent:     []dto.ExpenseShare{{Email: "ana@example.com", Amount: d("10")}},
		Borrowed: []dto.ExpenseShare{{Email: "bob@example.com", Amount: d("10")}},
	}, ana.UserID)
	require.NoError(t, err)

	err = f.expenseSvc.PayDebt(ctx, bob.UserID, expense.ExpenseID, d("0"), true)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	err = f.expenseSvc.PayDebt(ctx, bob.UserID, expense.ExpenseID, d("25"), true)
	assert.ErrorIs(t, err, apperrors.ErrOverpayment)

	err = f.expenseSvc.PayDebt(ctx, outsider.UserID, expense.ExpenseID, d("5"), true)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestPayDebt_OverpaymentAllowedByOption(t *testing.T) {
	ctx := context.Background()
	f := newExpenseFixture(t, services.WithOverpaymentAllowed())
	ana := f.registerUser(t, "Ana", "ana@example.com")
	bob := f.registerUser(t, "Bob", "bob@example.com")

	expense, err := f.expenseSvc.CreateExpense(ctx, dto.CreateExpenseRequest{
		Title:    "lunch",
		Amount:   d("10"),
		Lent:     []dto.ExpenseShare{{Email: "ana@example.com", Amount: d("10")}},
		Borrowed: []dto.ExpenseShare{{Email: "bob@example.com", Amount: d("10")}},
	}, ana.UserID)
	require.NoError(t, err)

	require.NoError(t, f.expenseSvc.PayDebt(ctx, bob.UserID, expense.ExpenseID, d("25"), true))

	// Overpaying flips the payer's position past zero.
	assert.True(t, f.balanceOf(t, "bob@example.com").Equal(d("-15")))
	saved, err := f.repos.Expenses.FindByID(ctx, expense.ExpenseID)
	require.NoError(t, err)
	assert.True(t, saved.OutstandingFor("bob@example.com").Equal(d("-15")))
}
